// Package service holds the application's use cases on top of the repositories.
package service

import (
	"context"
	"strconv"

	"forum/internal/cache"
	"forum/internal/middleware"
	"forum/internal/models"
	"forum/internal/observability"
	"forum/internal/repository"
	"forum/internal/validation"

	"go.opentelemetry.io/otel/attribute"
)

// CommunityEventPublisher fans a newly created community out to realtime subscribers.
type CommunityEventPublisher interface {
	PublishCommunityCreated(ctx context.Context, community *models.Community) error
}

type CommunityService struct {
	repo   repository.CommunityRepository
	events CommunityEventPublisher
}

// CreateCommunityInput is a create request on behalf of UserID.
type CreateCommunityInput struct {
	UserID      uint
	Name        string
	Description string
}

// NewCommunityService wires the service. events may be nil.
func NewCommunityService(repo repository.CommunityRepository, events CommunityEventPublisher) *CommunityService {
	return &CommunityService{repo: repo, events: events}
}

// Create validates and stores a community owned by in.UserID.
// Validation failures carry per-field messages and never reach the database.
func (s *CommunityService) Create(ctx context.Context, in CreateCommunityInput) (_ *models.Community, err error) {
	ctx, span := observability.StartSpan(ctx, "service.CommunityCreate", attribute.Int64("user.id", int64(in.UserID)))
	defer func() { observability.EndSpan(span, err) }()

	if in.UserID == 0 {
		return nil, models.NewUnauthorizedError("Login required")
	}

	form := validation.CommunityForm{Name: in.Name, Description: in.Description}
	form.Normalize()
	if fieldErrs := validation.Struct(&form); fieldErrs != nil {
		middleware.CommunityCreateFailures.WithLabelValues(models.CodeValidation).Inc()
		return nil, models.NewFieldValidationError(fieldErrs)
	}

	community := &models.Community{
		Name:        form.Name,
		Description: form.Description,
		UserID:      in.UserID,
	}
	if err := s.repo.Create(ctx, community); err != nil {
		middleware.CommunityCreateFailures.WithLabelValues(models.ErrorCode(err)).Inc()
		middleware.Logger.WarnContext(ctx, "community create failed",
			"name", community.Name, "error", err)
		return nil, err
	}

	middleware.CommunitiesCreated.Inc()
	cache.InvalidateCommunityList(ctx)

	if s.events != nil {
		if err := s.events.PublishCommunityCreated(ctx, community); err != nil {
			middleware.Logger.WarnContext(ctx, "community event publish failed",
				"community_id", community.ID, "error", err)
		}
	}

	middleware.Logger.InfoContext(ctx, "community created",
		"community_id", community.ID, "name", community.Name)
	return community, nil
}

// List returns every community ordered by name.
func (s *CommunityService) List(ctx context.Context) ([]models.Community, error) {
	var list []models.Community
	err := cache.Aside(ctx, cache.CommunityListKey, &list, cache.CommunityListTTL, func() error {
		var err error
		list, err = s.repo.ListByName(ctx)
		return err
	})
	if err != nil {
		return nil, err
	}
	return list, nil
}

// GetByIdentifier looks a community up by numeric ID, or by exact name otherwise.
func (s *CommunityService) GetByIdentifier(ctx context.Context, identifier string) (*models.Community, error) {
	if identifier == "" {
		return nil, models.NewValidationError("Community identifier is required")
	}

	var (
		community *models.Community
		key       string
		fetch     func() (*models.Community, error)
	)
	if id, err := strconv.ParseUint(identifier, 10, 32); err == nil {
		key = cache.CommunityIDKey(uint(id))
		fetch = func() (*models.Community, error) { return s.repo.GetByID(ctx, uint(id)) }
	} else {
		key = cache.CommunityNameKey(identifier)
		fetch = func() (*models.Community, error) { return s.repo.GetByName(ctx, identifier) }
	}

	err := cache.Aside(ctx, key, &community, cache.CommunityTTL, func() error {
		var err error
		community, err = fetch()
		return err
	})
	if err != nil {
		return nil, err
	}
	return community, nil
}
