package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/patto-app/patto-api/internal/service"
	appErrors "github.com/patto-app/patto-api/pkg/errors"
	"github.com/patto-app/patto-api/pkg/response"
)

// JoinHandler serves the public invite redemption flow.
type JoinHandler struct {
	invites *service.InviteService
}

// NewJoinHandler creates a new handler.
func NewJoinHandler(invites *service.InviteService) *JoinHandler {
	return &JoinHandler{invites: invites}
}

// Inspect godoc
// @Summary Inspect invite
// @Description Validate an invite token and return its pending role
// @Tags Join
// @Produce json
// @Param token query string true "Invite token"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Failure 410 {object} response.Envelope
// @Router /join [get]
func (h *JoinHandler) Inspect(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "token required"))
		return
	}
	invite, err := h.invites.Inspect(c.Request.Context(), token)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{
		"role":       invite.Role,
		"expires_at": invite.ExpiresAt,
	}, nil)
}

// Redeem godoc
// @Summary Redeem invite
// @Description Consume an invite, create the profile, and sign in
// @Tags Join
// @Accept json
// @Produce json
// @Param payload body service.RedeemInviteRequest true "Join payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Failure 410 {object} response.Envelope
// @Router /join [post]
func (h *JoinHandler) Redeem(c *gin.Context) {
	var req service.RedeemInviteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid join payload"))
		return
	}

	res, err := h.invites.Redeem(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, res)
}
