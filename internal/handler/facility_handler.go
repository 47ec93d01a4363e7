package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/patto-app/patto-api/internal/service"
	appErrors "github.com/patto-app/patto-api/pkg/errors"
	"github.com/patto-app/patto-api/pkg/response"
)

// FacilityHandler serves the facility's own settings screen.
type FacilityHandler struct {
	service *service.FacilityService
}

// NewFacilityHandler creates a new handler.
func NewFacilityHandler(svc *service.FacilityService) *FacilityHandler {
	return &FacilityHandler{service: svc}
}

// Get godoc
// @Summary Get own facility
// @Tags Facility
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /facility [get]
func (h *FacilityHandler) Get(c *gin.Context) {
	actor := actorFromContext(c)
	facility, err := h.service.GetOwn(c.Request.Context(), actor)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, facility, nil)
}

// Update godoc
// @Summary Rename own facility
// @Description Admin only; plan and active state are operator-controlled
// @Tags Facility
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body object true "Facility name"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /facility [put]
func (h *FacilityHandler) Update(c *gin.Context) {
	actor := actorFromContext(c)

	var payload struct {
		Name string `json:"name" binding:"required"`
	}
	if err := c.ShouldBindJSON(&payload); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "facility name required"))
		return
	}

	facility, err := h.service.UpdateOwn(c.Request.Context(), actor, payload.Name)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, facility, nil)
}
