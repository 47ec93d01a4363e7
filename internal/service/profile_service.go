package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/patto-app/patto-api/internal/models"
	appErrors "github.com/patto-app/patto-api/pkg/errors"
)

type profileRepository interface {
	FindByID(ctx context.Context, id string) (*models.Profile, error)
	ListByFacility(ctx context.Context, facilityID string) ([]models.Profile, error)
	UpdateRole(ctx context.Context, facilityID, id string, role models.Role) error
	UpdateDisplayName(ctx context.Context, id, displayName string) error
}

// ProfileService manages staff membership within a facility.
type ProfileService struct {
	repo      profileRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewProfileService constructs a ProfileService instance.
func NewProfileService(repo profileRepository, validate *validator.Validate, logger *zap.Logger) *ProfileService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &ProfileService{repo: repo, validator: validate, logger: logger}
}

// ListStaff returns the facility's members in sign-up order. Admins only.
func (s *ProfileService) ListStaff(ctx context.Context, actor models.Actor) ([]models.Profile, error) {
	if actor.IsZero() {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "no authenticated profile")
	}
	if !actor.IsAdmin() {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "admin role required")
	}
	rows, err := s.repo.ListByFacility(ctx, actor.FacilityID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list staff")
	}
	return rows, nil
}

// ToggleRole flips a member between admin and staff. Self-demotion is
// rejected so a facility cannot lock itself out of administration.
func (s *ProfileService) ToggleRole(ctx context.Context, actor models.Actor, targetID string) (*models.Profile, error) {
	if actor.IsZero() {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "no authenticated profile")
	}
	if !actor.IsAdmin() {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "admin role required")
	}
	if targetID == actor.ProfileID {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "cannot change your own role")
	}

	target, err := s.repo.FindByID(ctx, targetID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "profile not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch profile")
	}
	if target.FacilityID != actor.FacilityID {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "profile not found")
	}

	next := models.RoleAdmin
	if target.Role == models.RoleAdmin {
		next = models.RoleStaff
	}
	if err := s.repo.UpdateRole(ctx, actor.FacilityID, targetID, next); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update role")
	}
	target.Role = next
	return target, nil
}

// UpdateDisplayNameRequest renames the caller's own profile.
type UpdateDisplayNameRequest struct {
	DisplayName string `json:"display_name" validate:"required,max=100"`
}

// UpdateDisplayName renames the caller.
func (s *ProfileService) UpdateDisplayName(ctx context.Context, actor models.Actor, req UpdateDisplayNameRequest) error {
	if actor.IsZero() {
		return appErrors.Clone(appErrors.ErrUnauthorized, "no authenticated profile")
	}
	if err := s.validator.Struct(req); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid profile payload")
	}
	if err := s.repo.UpdateDisplayName(ctx, actor.ProfileID, req.DisplayName); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update display name")
	}
	return nil
}

// Me returns the caller's profile.
func (s *ProfileService) Me(ctx context.Context, actor models.Actor) (*models.Profile, error) {
	if actor.IsZero() {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "no authenticated profile")
	}
	profile, err := s.repo.FindByID(ctx, actor.ProfileID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "profile not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch profile")
	}
	return profile, nil
}
