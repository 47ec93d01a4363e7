package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/patto-app/patto-api/internal/service"
	appErrors "github.com/patto-app/patto-api/pkg/errors"
	"github.com/patto-app/patto-api/pkg/response"
)

// StaffHandler wires facility staff management and invites to HTTP.
type StaffHandler struct {
	profiles *service.ProfileService
	invites  *service.InviteService
}

// NewStaffHandler creates a new handler.
func NewStaffHandler(profiles *service.ProfileService, invites *service.InviteService) *StaffHandler {
	return &StaffHandler{profiles: profiles, invites: invites}
}

// Me godoc
// @Summary Current profile
// @Tags Staff
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /me [get]
func (h *StaffHandler) Me(c *gin.Context) {
	actor := actorFromContext(c)
	profile, err := h.profiles.Me(c.Request.Context(), actor)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, profile, nil)
}

// UpdateDisplayName godoc
// @Summary Rename current profile
// @Tags Staff
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body service.UpdateDisplayNameRequest true "Display name"
// @Success 204 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /profile [patch]
func (h *StaffHandler) UpdateDisplayName(c *gin.Context) {
	actor := actorFromContext(c)

	var req service.UpdateDisplayNameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid profile payload"))
		return
	}

	if err := h.profiles.UpdateDisplayName(c.Request.Context(), actor, req); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// List godoc
// @Summary List facility staff
// @Description Members in sign-up order; admin only
// @Tags Staff
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /staff [get]
func (h *StaffHandler) List(c *gin.Context) {
	actor := actorFromContext(c)
	rows, err := h.profiles.ListStaff(c.Request.Context(), actor)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, rows, nil)
}

// ToggleRole godoc
// @Summary Toggle member role
// @Description Flip a member between admin and staff; self-demotion is rejected
// @Tags Staff
// @Produce json
// @Security BearerAuth
// @Param id path string true "Profile ID"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /staff/{id}/role [patch]
func (h *StaffHandler) ToggleRole(c *gin.Context) {
	actor := actorFromContext(c)
	profile, err := h.profiles.ToggleRole(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, profile, nil)
}

// IssueInvite godoc
// @Summary Issue staff invite
// @Description Create a single-use signed invite link; admin only
// @Tags Staff
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body service.IssueInviteRequest true "Invite payload"
// @Success 201 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /invites [post]
func (h *StaffHandler) IssueInvite(c *gin.Context) {
	actor := actorFromContext(c)

	var req service.IssueInviteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid invite payload"))
		return
	}

	issued, err := h.invites.Issue(c.Request.Context(), actor, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, issued)
}
