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

type facilityRepository interface {
	FindByID(ctx context.Context, id string) (*models.Facility, error)
	ListWithCounts(ctx context.Context) ([]models.FacilityOverview, error)
	DetailWithCounts(ctx context.Context, id string) (*models.FacilityDetail, error)
	Create(ctx context.Context, facility *models.Facility) error
	Update(ctx context.Context, facility *models.Facility) error
}

// FacilityService serves both the facility's own settings screen and the
// operator dashboard's tenant management.
type FacilityService struct {
	repo      facilityRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewFacilityService constructs a FacilityService instance.
func NewFacilityService(repo facilityRepository, validate *validator.Validate, logger *zap.Logger) *FacilityService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &FacilityService{repo: repo, validator: validate, logger: logger}
}

// FacilityRequest is the payload for creating or editing a facility.
type FacilityRequest struct {
	Name     string `json:"name" validate:"required,max=100"`
	IsActive *bool  `json:"is_active"`
	Plan     string `json:"plan" validate:"max=50"`
	Notes    string `json:"notes" validate:"max=1000"`
}

// GetOwn returns the actor's facility.
func (s *FacilityService) GetOwn(ctx context.Context, actor models.Actor) (*models.Facility, error) {
	if actor.IsZero() {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "no authenticated profile")
	}
	facility, err := s.repo.FindByID(ctx, actor.FacilityID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "facility not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch facility")
	}
	return facility, nil
}

// UpdateOwn renames the actor's facility. Admins only; plan and active
// state are operator-controlled and cannot be changed from here.
func (s *FacilityService) UpdateOwn(ctx context.Context, actor models.Actor, name string) (*models.Facility, error) {
	if actor.IsZero() {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "no authenticated profile")
	}
	if !actor.IsAdmin() {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "admin role required")
	}
	if name == "" || len(name) > 100 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "invalid facility name")
	}
	facility, err := s.GetOwn(ctx, actor)
	if err != nil {
		return nil, err
	}
	facility.Name = name
	if err := s.repo.Update(ctx, facility); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update facility")
	}
	return facility, nil
}

// ListAll returns every facility with aggregate counts (operator only;
// the admin session gate runs before this).
func (s *FacilityService) ListAll(ctx context.Context) ([]models.FacilityOverview, error) {
	rows, err := s.repo.ListWithCounts(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list facilities")
	}
	return rows, nil
}

// Detail returns one facility with counts for the operator dashboard.
func (s *FacilityService) Detail(ctx context.Context, id string) (*models.FacilityDetail, error) {
	detail, err := s.repo.DetailWithCounts(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "facility not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch facility")
	}
	return detail, nil
}

// CreateFacility provisions a new tenant (operator only).
func (s *FacilityService) CreateFacility(ctx context.Context, req FacilityRequest) (*models.Facility, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid facility payload")
	}
	facility := &models.Facility{
		Name:     req.Name,
		IsActive: true,
		Plan:     optionalString(req.Plan),
		Notes:    optionalString(req.Notes),
	}
	if req.IsActive != nil {
		facility.IsActive = *req.IsActive
	}
	if err := s.repo.Create(ctx, facility); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create facility")
	}
	return facility, nil
}

// UpdateFacility edits a tenant (operator only).
func (s *FacilityService) UpdateFacility(ctx context.Context, id string, req FacilityRequest) (*models.Facility, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid facility payload")
	}
	facility, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "facility not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch facility")
	}
	facility.Name = req.Name
	facility.Plan = optionalString(req.Plan)
	facility.Notes = optionalString(req.Notes)
	if req.IsActive != nil {
		facility.IsActive = *req.IsActive
	}
	if err := s.repo.Update(ctx, facility); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update facility")
	}
	return facility, nil
}
