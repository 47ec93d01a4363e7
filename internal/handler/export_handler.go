package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/patto-app/patto-api/internal/service"
	"github.com/patto-app/patto-api/pkg/response"
)

// ExportHandler streams printable documents.
type ExportHandler struct {
	service *service.ExportService
}

// NewExportHandler creates a new handler.
func NewExportHandler(svc *service.ExportService) *ExportHandler {
	return &ExportHandler{service: svc}
}

// DailyLog godoc
// @Summary Export daily log
// @Description All of one date's records as CSV or PDF
// @Tags Exports
// @Produce octet-stream
// @Security BearerAuth
// @Param date query string false "Date (YYYY-MM-DD), defaults to today"
// @Param format query string false "csv or pdf (default csv)"
// @Success 200 {file} file
// @Failure 401 {object} response.Envelope
// @Router /exports/daily-log [get]
func (h *ExportHandler) DailyLog(c *gin.Context) {
	actor := actorFromContext(c)
	file, err := h.service.DailyLog(c.Request.Context(), actor, c.Query("date"), exportFormat(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	serveFile(c, file)
}

// MonthlyAttendance godoc
// @Summary Export monthly attendance sheet
// @Tags Exports
// @Produce octet-stream
// @Security BearerAuth
// @Param child_id query string true "Child ID"
// @Param month query string true "Month (YYYY-MM)"
// @Param format query string false "csv or pdf (default csv)"
// @Success 200 {file} file
// @Failure 400 {object} response.Envelope
// @Router /exports/monthly-attendance [get]
func (h *ExportHandler) MonthlyAttendance(c *gin.Context) {
	actor := actorFromContext(c)
	file, err := h.service.MonthlyAttendance(c.Request.Context(), actor, c.Query("child_id"), c.Query("month"), exportFormat(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	serveFile(c, file)
}

// ServiceRecord godoc
// @Summary Export service record
// @Description One child's record for one date as a PDF
// @Tags Exports
// @Produce octet-stream
// @Security BearerAuth
// @Param child_id query string true "Child ID"
// @Param date query string false "Date (YYYY-MM-DD), defaults to today"
// @Success 200 {file} file
// @Failure 404 {object} response.Envelope
// @Router /exports/service-record [get]
func (h *ExportHandler) ServiceRecord(c *gin.Context) {
	actor := actorFromContext(c)
	file, err := h.service.ServiceRecord(c.Request.Context(), actor, c.Query("child_id"), c.Query("date"))
	if err != nil {
		response.Error(c, err)
		return
	}
	serveFile(c, file)
}

func exportFormat(c *gin.Context) service.ExportFormat {
	if c.Query("format") == "pdf" {
		return service.FormatPDF
	}
	return service.FormatCSV
}

func serveFile(c *gin.Context, file *service.ExportFile) {
	c.Header("Content-Disposition", `attachment; filename="`+file.Filename+`"`)
	c.Data(200, file.ContentType, file.Content)
}
