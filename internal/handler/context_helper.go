package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/patto-app/patto-api/internal/middleware"
	"github.com/patto-app/patto-api/internal/models"
)

func actorFromContext(c *gin.Context) models.Actor {
	value, exists := c.Get(middleware.ContextActorKey)
	if !exists {
		return models.Actor{}
	}
	actor, ok := value.(models.Actor)
	if !ok {
		return models.Actor{}
	}
	return actor
}
