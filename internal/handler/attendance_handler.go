package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/patto-app/patto-api/internal/service"
	appErrors "github.com/patto-app/patto-api/pkg/errors"
	"github.com/patto-app/patto-api/pkg/response"
)

// AttendanceHandler wires present/absent tracking to HTTP.
type AttendanceHandler struct {
	service *service.AttendanceService
}

// NewAttendanceHandler creates a new handler.
func NewAttendanceHandler(svc *service.AttendanceService) *AttendanceHandler {
	return &AttendanceHandler{service: svc}
}

// Mark godoc
// @Summary Mark attendance
// @Description Upsert the present/absent flag for (child, date)
// @Tags Attendance
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body service.MarkAttendanceRequest true "Attendance payload"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /attendances [put]
func (h *AttendanceHandler) Mark(c *gin.Context) {
	actor := actorFromContext(c)

	var req service.MarkAttendanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid attendance payload"))
		return
	}

	stored, err := h.service.Mark(c.Request.Context(), actor, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, stored, nil)
}

// DailySheet godoc
// @Summary Daily attendance sheet
// @Tags Attendance
// @Produce json
// @Security BearerAuth
// @Param date query string false "Date (YYYY-MM-DD), defaults to today"
// @Success 200 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /attendances [get]
func (h *AttendanceHandler) DailySheet(c *gin.Context) {
	actor := actorFromContext(c)
	rows, err := h.service.DailySheet(c.Request.Context(), actor, c.Query("date"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, rows, nil)
}

// MonthlyByChild godoc
// @Summary Monthly attendance for one child
// @Tags Attendance
// @Produce json
// @Security BearerAuth
// @Param childId path string true "Child ID"
// @Param month query string true "Month (YYYY-MM)"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /attendances/children/{childId} [get]
func (h *AttendanceHandler) MonthlyByChild(c *gin.Context) {
	actor := actorFromContext(c)
	rows, err := h.service.MonthlyByChild(c.Request.Context(), actor, c.Param("childId"), c.Query("month"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, rows, nil)
}
