package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/patto-app/patto-api/internal/service"
	appErrors "github.com/patto-app/patto-api/pkg/errors"
	"github.com/patto-app/patto-api/pkg/response"
)

// PhraseHandler wires phrase bank management to HTTP.
type PhraseHandler struct {
	service *service.PhraseService
}

// NewPhraseHandler creates a new handler.
func NewPhraseHandler(svc *service.PhraseService) *PhraseHandler {
	return &PhraseHandler{service: svc}
}

// List godoc
// @Summary List phrases
// @Description Facility phrases plus global defaults in stored order
// @Tags Phrases
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /phrases [get]
func (h *PhraseHandler) List(c *gin.Context) {
	actor := actorFromContext(c)
	rows, err := h.service.List(c.Request.Context(), actor)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, rows, nil)
}

// Create godoc
// @Summary Create phrase
// @Tags Phrases
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body service.PhraseRequest true "Phrase payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /phrases [post]
func (h *PhraseHandler) Create(c *gin.Context) {
	actor := actorFromContext(c)

	var req service.PhraseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid phrase payload"))
		return
	}

	phrase, err := h.service.Create(c.Request.Context(), actor, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, phrase)
}

// Update godoc
// @Summary Update phrase
// @Description Facility-owned phrases only; defaults are read-only
// @Tags Phrases
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Phrase ID"
// @Param payload body service.PhraseRequest true "Phrase payload"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /phrases/{id} [put]
func (h *PhraseHandler) Update(c *gin.Context) {
	actor := actorFromContext(c)

	var req service.PhraseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid phrase payload"))
		return
	}

	phrase, err := h.service.Update(c.Request.Context(), actor, c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, phrase, nil)
}

// Delete godoc
// @Summary Delete phrase
// @Description Facility-owned phrases only; defaults are read-only
// @Tags Phrases
// @Produce json
// @Security BearerAuth
// @Param id path string true "Phrase ID"
// @Success 204 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /phrases/{id} [delete]
func (h *PhraseHandler) Delete(c *gin.Context) {
	actor := actorFromContext(c)
	if err := h.service.Delete(c.Request.Context(), actor, c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
