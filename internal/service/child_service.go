package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/patto-app/patto-api/internal/models"
	appErrors "github.com/patto-app/patto-api/pkg/errors"
)

type childRepository interface {
	List(ctx context.Context, filter models.ChildFilter) ([]models.Child, error)
	FindByID(ctx context.Context, facilityID, id string) (*models.Child, error)
	Create(ctx context.Context, child *models.Child) error
	Update(ctx context.Context, child *models.Child) error
	Deactivate(ctx context.Context, facilityID, id string) error
}

// ChildService manages the facility roster.
type ChildService struct {
	repo      childRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewChildService constructs a ChildService instance.
func NewChildService(repo childRepository, validate *validator.Validate, logger *zap.Logger) *ChildService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &ChildService{repo: repo, validator: validate, logger: logger}
}

// ChildRequest is the payload for enrolling or editing a child.
type ChildRequest struct {
	Name       string   `json:"name" validate:"required,max=100"`
	NameKana   string   `json:"name_kana" validate:"max=100"`
	BirthDate  string   `json:"birth_date" validate:"omitempty,datetime=2006-01-02"`
	School     string   `json:"school" validate:"max=100"`
	Grade      string   `json:"grade" validate:"max=20"`
	IconColor  string   `json:"icon_color" validate:"omitempty,hexcolor"`
	Goals      []string `json:"goals" validate:"dive,max=200"`
	DomainTags []string `json:"domain_tags" validate:"dive,max=30"`
	IsActive   *bool    `json:"is_active"`
}

// List returns the facility roster in kana order.
func (s *ChildService) List(ctx context.Context, actor models.Actor, activeOnly bool, search string) ([]models.Child, error) {
	if actor.IsZero() {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "no authenticated profile")
	}
	filter := models.ChildFilter{FacilityID: actor.FacilityID, Search: search}
	if activeOnly {
		active := true
		filter.Active = &active
	}
	rows, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list children")
	}
	return rows, nil
}

// Get returns one child scoped to the actor's facility.
func (s *ChildService) Get(ctx context.Context, actor models.Actor, id string) (*models.Child, error) {
	if actor.IsZero() {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "no authenticated profile")
	}
	child, err := s.repo.FindByID(ctx, actor.FacilityID, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "child not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch child")
	}
	return child, nil
}

// Create enrolls a child into the actor's facility.
func (s *ChildService) Create(ctx context.Context, actor models.Actor, req ChildRequest) (*models.Child, error) {
	if actor.IsZero() {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "no authenticated profile")
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid child payload")
	}
	child := &models.Child{
		FacilityID: actor.FacilityID,
		Name:       req.Name,
		NameKana:   optionalString(req.NameKana),
		School:     optionalString(req.School),
		Grade:      optionalString(req.Grade),
		IconColor:  req.IconColor,
		Goals:      req.Goals,
		DomainTags: req.DomainTags,
		IsActive:   true,
	}
	if child.IconColor == "" {
		child.IconColor = "#4F46E5"
	}
	if req.BirthDate != "" {
		birth, err := time.Parse("2006-01-02", req.BirthDate)
		if err != nil {
			return nil, appErrors.Clone(appErrors.ErrValidation, "invalid birth date")
		}
		child.BirthDate = &birth
	}
	if req.IsActive != nil {
		child.IsActive = *req.IsActive
	}
	if err := s.repo.Create(ctx, child); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create child")
	}
	return child, nil
}

// Update edits an enrolled child.
func (s *ChildService) Update(ctx context.Context, actor models.Actor, id string, req ChildRequest) (*models.Child, error) {
	child, err := s.Get(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid child payload")
	}
	child.Name = req.Name
	child.NameKana = optionalString(req.NameKana)
	child.School = optionalString(req.School)
	child.Grade = optionalString(req.Grade)
	child.Goals = req.Goals
	child.DomainTags = req.DomainTags
	if req.IconColor != "" {
		child.IconColor = req.IconColor
	}
	child.BirthDate = nil
	if req.BirthDate != "" {
		birth, err := time.Parse("2006-01-02", req.BirthDate)
		if err != nil {
			return nil, appErrors.Clone(appErrors.ErrValidation, "invalid birth date")
		}
		child.BirthDate = &birth
	}
	if req.IsActive != nil {
		child.IsActive = *req.IsActive
	}
	if err := s.repo.Update(ctx, child); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update child")
	}
	return child, nil
}

// Deactivate soft-deletes a child; records stay intact for history.
func (s *ChildService) Deactivate(ctx context.Context, actor models.Actor, id string) error {
	if _, err := s.Get(ctx, actor, id); err != nil {
		return err
	}
	if err := s.repo.Deactivate(ctx, actor.FacilityID, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to deactivate child")
	}
	return nil
}
