package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/patto-app/patto-api/internal/models"
	"github.com/patto-app/patto-api/internal/service"
	appErrors "github.com/patto-app/patto-api/pkg/errors"
	"github.com/patto-app/patto-api/pkg/response"
)

// RecordHandler wires the record capture workflow to HTTP.
type RecordHandler struct {
	records    *service.RecordService
	generation *service.GenerationService
}

// NewRecordHandler creates a new handler.
func NewRecordHandler(records *service.RecordService, generation *service.GenerationService) *RecordHandler {
	return &RecordHandler{records: records, generation: generation}
}

// Form godoc
// @Summary Load record capture form
// @Description Everything the capture screen needs: child, ranked phrases, existing record, roster, recorded ids
// @Tags Records
// @Produce json
// @Security BearerAuth
// @Param childId path string true "Child ID"
// @Param date query string false "Date (YYYY-MM-DD), defaults to today"
// @Success 200 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /records/form/{childId} [get]
func (h *RecordHandler) Form(c *gin.Context) {
	actor := actorFromContext(c)
	form, err := h.records.LoadForm(c.Request.Context(), actor, c.Param("childId"), c.Query("date"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, form, nil)
}

// Save godoc
// @Summary Save daily record
// @Description Upsert the record for (child, date) and return the next unrecorded child
// @Tags Records
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body service.SaveRecordRequest true "Record payload"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /records [post]
func (h *RecordHandler) Save(c *gin.Context) {
	actor := actorFromContext(c)

	var req service.SaveRecordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid record payload"))
		return
	}

	result, err := h.records.Save(c.Request.Context(), actor, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// History godoc
// @Summary List record history
// @Description Saved records for the facility, newest first
// @Tags Records
// @Produce json
// @Security BearerAuth
// @Param child_id query string false "Filter by child"
// @Param date query string false "Exact date (YYYY-MM-DD)"
// @Param from query string false "Range start (YYYY-MM-DD)"
// @Param to query string false "Range end (YYYY-MM-DD)"
// @Success 200 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /records [get]
func (h *RecordHandler) History(c *gin.Context) {
	actor := actorFromContext(c)

	filter := models.RecordFilter{ChildID: c.Query("child_id")}
	if v := c.Query("date"); v != "" {
		t, err := time.Parse("2006-01-02", v)
		if err != nil {
			response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid date"))
			return
		}
		filter.Date = &t
	}
	if v := c.Query("from"); v != "" {
		t, err := time.Parse("2006-01-02", v)
		if err != nil {
			response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid from date"))
			return
		}
		filter.DateFrom = &t
	}
	if v := c.Query("to"); v != "" {
		t, err := time.Parse("2006-01-02", v)
		if err != nil {
			response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid to date"))
			return
		}
		filter.DateTo = &t
	}

	rows, err := h.records.History(c.Request.Context(), actor, filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, rows, nil)
}

// Delete godoc
// @Summary Delete record
// @Description Remove one record from history
// @Tags Records
// @Produce json
// @Security BearerAuth
// @Param id path string true "Record ID"
// @Success 204 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /records/{id} [delete]
func (h *RecordHandler) Delete(c *gin.Context) {
	actor := actorFromContext(c)
	if err := h.records.Delete(c.Request.Context(), actor, c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Generate godoc
// @Summary Generate record draft
// @Description Draft parent-facing text from the form state; nothing is persisted
// @Tags Records
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body service.GenerateRequest true "Form state"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Failure 502 {object} response.Envelope
// @Router /records/generate [post]
func (h *RecordHandler) Generate(c *gin.Context) {
	actor := actorFromContext(c)

	var req service.GenerateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid generation payload"))
		return
	}

	res, err := h.generation.Generate(c.Request.Context(), actor, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, res, nil)
}
