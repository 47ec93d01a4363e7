package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/patto-app/patto-api/internal/middleware"
	"github.com/patto-app/patto-api/internal/service"
	appErrors "github.com/patto-app/patto-api/pkg/errors"
	"github.com/patto-app/patto-api/pkg/response"
)

// AdminHandler serves the operator dashboard: shared-secret login and
// cross-tenant reads. Every data handler re-checks the session cookie
// itself in addition to the route gate.
type AdminHandler struct {
	stats      *service.StatsService
	facilities *service.FacilityService
	signer     *middleware.AdminSessionSigner
	password   string
}

// NewAdminHandler creates a new handler.
func NewAdminHandler(stats *service.StatsService, facilities *service.FacilityService, signer *middleware.AdminSessionSigner, password string) *AdminHandler {
	return &AdminHandler{stats: stats, facilities: facilities, signer: signer, password: password}
}

// Login godoc
// @Summary Operator login
// @Description Shared-secret password; sets the HTTP-only session cookie
// @Tags Admin
// @Accept json
// @Produce json
// @Param payload body object true "Password"
// @Success 200 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /admin/login [post]
func (h *AdminHandler) Login(c *gin.Context) {
	var payload struct {
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&payload); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "password required"))
		return
	}

	if h.password == "" || payload.Password != h.password {
		response.Error(c, appErrors.Clone(appErrors.ErrInvalidCredentials, "パスワードが正しくありません"))
		return
	}

	value, maxAge := h.signer.Mint()
	c.SetCookie(middleware.AdminCookieName, value, maxAge, "/", "", false, true)
	response.JSON(c, http.StatusOK, gin.H{"success": true}, nil)
}

// Logout godoc
// @Summary Operator logout
// @Description Clears the session cookie
// @Tags Admin
// @Produce json
// @Success 204 {object} response.Envelope
// @Router /admin/logout [post]
func (h *AdminHandler) Logout(c *gin.Context) {
	c.SetCookie(middleware.AdminCookieName, "", -1, "/", "", false, true)
	response.NoContent(c)
}

// Stats godoc
// @Summary Dashboard summary counts
// @Tags Admin
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /admin/api/stats [get]
func (h *AdminHandler) Stats(c *gin.Context) {
	if !h.sessionOK(c) {
		return
	}
	stats, err := h.stats.Summary(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, stats, nil)
}

// Facilities godoc
// @Summary List facilities with counts
// @Tags Admin
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /admin/api/facilities [get]
func (h *AdminHandler) Facilities(c *gin.Context) {
	if !h.sessionOK(c) {
		return
	}
	rows, err := h.facilities.ListAll(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, rows, nil)
}

// FacilityDetail godoc
// @Summary Facility detail with counts
// @Tags Admin
// @Produce json
// @Param id path string true "Facility ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /admin/api/facilities/{id} [get]
func (h *AdminHandler) FacilityDetail(c *gin.Context) {
	if !h.sessionOK(c) {
		return
	}
	detail, err := h.facilities.Detail(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, detail, nil)
}

// CreateFacility godoc
// @Summary Provision facility
// @Tags Admin
// @Accept json
// @Produce json
// @Param payload body service.FacilityRequest true "Facility payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /admin/api/facilities [post]
func (h *AdminHandler) CreateFacility(c *gin.Context) {
	if !h.sessionOK(c) {
		return
	}
	var req service.FacilityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid facility payload"))
		return
	}
	facility, err := h.facilities.CreateFacility(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, facility)
}

// UpdateFacility godoc
// @Summary Edit facility
// @Tags Admin
// @Accept json
// @Produce json
// @Param id path string true "Facility ID"
// @Param payload body service.FacilityRequest true "Facility payload"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /admin/api/facilities/{id} [put]
func (h *AdminHandler) UpdateFacility(c *gin.Context) {
	if !h.sessionOK(c) {
		return
	}
	var req service.FacilityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid facility payload"))
		return
	}
	facility, err := h.facilities.UpdateFacility(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, facility, nil)
}

// Users godoc
// @Summary List all profiles with facility names
// @Tags Admin
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /admin/api/users [get]
func (h *AdminHandler) Users(c *gin.Context) {
	if !h.sessionOK(c) {
		return
	}
	rows, err := h.stats.Users(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, rows, nil)
}

// Breakdown godoc
// @Summary Per-facility record counts
// @Tags Admin
// @Produce json
// @Param start query string false "Range start (YYYY-MM-DD)"
// @Param end query string false "Range end (YYYY-MM-DD)"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /admin/api/records/breakdown [get]
func (h *AdminHandler) Breakdown(c *gin.Context) {
	if !h.sessionOK(c) {
		return
	}
	rows, err := h.stats.Breakdown(c.Request.Context(), c.Query("start"), c.Query("end"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, rows, nil)
}

// RecentRecords godoc
// @Summary Latest records across tenants
// @Tags Admin
// @Produce json
// @Param limit query int false "Max rows (default 10)"
// @Success 200 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /admin/api/records/recent [get]
func (h *AdminHandler) RecentRecords(c *gin.Context) {
	if !h.sessionOK(c) {
		return
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))
	rows, err := h.stats.RecentRecords(c.Request.Context(), limit)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, rows, nil)
}

// sessionOK re-checks the cookie independently of the route gate.
func (h *AdminHandler) sessionOK(c *gin.Context) bool {
	if middleware.SessionValid(c, h.signer) {
		return true
	}
	response.Error(c, appErrors.Clone(appErrors.ErrUnauthorized, "admin session required"))
	return false
}
