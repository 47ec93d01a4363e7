package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/patto-app/patto-api/internal/models"
	appErrors "github.com/patto-app/patto-api/pkg/errors"
	"github.com/patto-app/patto-api/pkg/token"
)

type inviteRepository interface {
	Create(ctx context.Context, invite *models.StaffInvite) error
	FindByID(ctx context.Context, id string) (*models.StaffInvite, error)
	MarkUsed(ctx context.Context, id string, usedAt time.Time) error
}

type inviteProfileRepository interface {
	FindByEmail(ctx context.Context, email string) (*models.Profile, error)
	Create(ctx context.Context, profile *models.Profile) error
}

type tokenIssuer interface {
	IssueTokens(ctx context.Context, profile *models.Profile) (*models.LoginResponse, error)
}

// InviteService issues and redeems single-use staff invites. The share
// URL carries a signed token only; facility and role stay server-side.
type InviteService struct {
	invites   inviteRepository
	profiles  inviteProfileRepository
	auth      tokenIssuer
	signer    *token.InviteSigner
	joinBase  string
	validator *validator.Validate
	logger    *zap.Logger
	now       func() time.Time
}

// NewInviteService constructs an InviteService instance.
func NewInviteService(invites inviteRepository, profiles inviteProfileRepository, auth tokenIssuer, signer *token.InviteSigner, joinBase string, validate *validator.Validate, logger *zap.Logger) *InviteService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &InviteService{
		invites:   invites,
		profiles:  profiles,
		auth:      auth,
		signer:    signer,
		joinBase:  joinBase,
		validator: validate,
		logger:    logger,
		now:       time.Now,
	}
}

// IssueInviteRequest selects the role the invited member will receive.
type IssueInviteRequest struct {
	Role string `json:"role" validate:"required,oneof=admin staff"`
}

// IssuedInvite is the shareable result of creating an invite.
type IssuedInvite struct {
	URL       string      `json:"url"`
	Token     string      `json:"token"`
	Role      models.Role `json:"role"`
	ExpiresAt time.Time   `json:"expires_at"`
}

// RedeemInviteRequest carries the invite token plus the new account's
// credentials.
type RedeemInviteRequest struct {
	Token       string `json:"token" validate:"required"`
	Email       string `json:"email" validate:"required,email"`
	Password    string `json:"password" validate:"required,min=6"`
	DisplayName string `json:"display_name" validate:"required,max=100"`
}

// Issue creates an invite row and returns its signed share URL. Only
// facility admins may invite.
func (s *InviteService) Issue(ctx context.Context, actor models.Actor, req IssueInviteRequest) (*IssuedInvite, error) {
	if actor.IsZero() {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "no authenticated profile")
	}
	if !actor.IsAdmin() {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "admin role required")
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid invite payload")
	}

	invite := &models.StaffInvite{
		ID:         uuid.NewString(),
		FacilityID: actor.FacilityID,
		Role:       models.Role(req.Role),
		CreatedBy:  actor.ProfileID,
	}

	signed, expiresAt, err := s.signer.Generate(invite.ID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to sign invite")
	}
	invite.ExpiresAt = expiresAt.UTC()

	if err := s.invites.Create(ctx, invite); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create invite")
	}

	return &IssuedInvite{
		URL:       fmt.Sprintf("%s/join?token=%s", s.joinBase, signed),
		Token:     signed,
		Role:      invite.Role,
		ExpiresAt: invite.ExpiresAt,
	}, nil
}

// Inspect validates a token and returns the pending invite, so the join
// page can show the facility role before asking for credentials.
func (s *InviteService) Inspect(ctx context.Context, signed string) (*models.StaffInvite, error) {
	invite, err := s.resolve(ctx, signed)
	if err != nil {
		return nil, err
	}
	return invite, nil
}

// Redeem consumes an invite: creates the profile with the invite's
// facility and role, marks the invite used, and signs the new member in.
func (s *InviteService) Redeem(ctx context.Context, req RedeemInviteRequest) (*models.LoginResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid join payload")
	}

	invite, err := s.resolve(ctx, req.Token)
	if err != nil {
		return nil, err
	}

	if _, err := s.profiles.FindByEmail(ctx, req.Email); err == nil {
		return nil, appErrors.Clone(appErrors.ErrConflict, "email already registered")
	} else if !errors.Is(err, sql.ErrNoRows) {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check email")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to hash password")
	}

	// Consume before creating the profile so a racing duplicate
	// redemption fails here instead of creating a second account.
	if err := s.invites.MarkUsed(ctx, invite.ID, s.now().UTC()); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrInviteUsed, "invite already used")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to consume invite")
	}

	profile := &models.Profile{
		ID:           uuid.NewString(),
		FacilityID:   invite.FacilityID,
		Email:        req.Email,
		PasswordHash: string(hash),
		DisplayName:  req.DisplayName,
		Role:         invite.Role,
	}
	if err := s.profiles.Create(ctx, profile); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create profile")
	}

	return s.auth.IssueTokens(ctx, profile)
}

func (s *InviteService) resolve(ctx context.Context, signed string) (*models.StaffInvite, error) {
	inviteID, _, err := s.signer.Parse(signed)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrInviteExpired, "invite link is invalid or expired")
	}
	invite, err := s.invites.FindByID(ctx, inviteID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "invite not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch invite")
	}
	if invite.UsedAt != nil {
		return nil, appErrors.Clone(appErrors.ErrInviteUsed, "invite already used")
	}
	if s.now().After(invite.ExpiresAt) {
		return nil, appErrors.Clone(appErrors.ErrInviteExpired, "invite expired")
	}
	return invite, nil
}
