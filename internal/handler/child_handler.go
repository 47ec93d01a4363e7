package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/patto-app/patto-api/internal/models"
	"github.com/patto-app/patto-api/internal/service"
	appErrors "github.com/patto-app/patto-api/pkg/errors"
	"github.com/patto-app/patto-api/pkg/response"
)

// ChildHandler wires roster management to HTTP.
type ChildHandler struct {
	service *service.ChildService
}

// NewChildHandler creates a new handler.
func NewChildHandler(svc *service.ChildService) *ChildHandler {
	return &ChildHandler{service: svc}
}

// List godoc
// @Summary List children
// @Description Facility roster in phonetic order
// @Tags Children
// @Produce json
// @Security BearerAuth
// @Param active query bool false "Only active children"
// @Param search query string false "Name or kana substring"
// @Success 200 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /children [get]
func (h *ChildHandler) List(c *gin.Context) {
	actor := actorFromContext(c)
	activeOnly := c.Query("active") == "true"
	rows, err := h.service.List(c.Request.Context(), actor, activeOnly, c.Query("search"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, rows, nil)
}

// Get godoc
// @Summary Get child
// @Tags Children
// @Produce json
// @Security BearerAuth
// @Param id path string true "Child ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /children/{id} [get]
func (h *ChildHandler) Get(c *gin.Context) {
	actor := actorFromContext(c)
	child, err := h.service.Get(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, child, nil)
}

// Create godoc
// @Summary Enroll child
// @Tags Children
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body service.ChildRequest true "Child payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /children [post]
func (h *ChildHandler) Create(c *gin.Context) {
	actor := actorFromContext(c)

	var req service.ChildRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid child payload"))
		return
	}

	child, err := h.service.Create(c.Request.Context(), actor, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, child)
}

// Update godoc
// @Summary Update child
// @Tags Children
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Child ID"
// @Param payload body service.ChildRequest true "Child payload"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /children/{id} [put]
func (h *ChildHandler) Update(c *gin.Context) {
	actor := actorFromContext(c)

	var req service.ChildRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid child payload"))
		return
	}

	child, err := h.service.Update(c.Request.Context(), actor, c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, child, nil)
}

// Deactivate godoc
// @Summary Deactivate child
// @Description Soft-delete; records stay intact
// @Tags Children
// @Produce json
// @Security BearerAuth
// @Param id path string true "Child ID"
// @Success 204 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /children/{id} [delete]
func (h *ChildHandler) Deactivate(c *gin.Context) {
	actor := actorFromContext(c)
	if err := h.service.Deactivate(c.Request.Context(), actor, c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Catalogs godoc
// @Summary Form catalogs
// @Description Fixed activity, pickup, and support-domain catalogs
// @Tags Children
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Router /catalogs [get]
func (h *ChildHandler) Catalogs(c *gin.Context) {
	response.JSON(c, http.StatusOK, gin.H{
		"activities":     models.Activities,
		"pickup_methods": models.PickupMethods,
		"domain_tags":    models.DomainTags,
	}, nil)
}
