package repository

import (
	"context"
	"errors"
	"fmt"

	"forum/internal/database"
	"forum/internal/models"
	"forum/internal/observability"

	"go.opentelemetry.io/otel/attribute"
	"gorm.io/gorm"
)

// CommunityRepository defines persistence operations for communities.
// Communities are only ever inserted and read.
type CommunityRepository interface {
	Create(ctx context.Context, community *models.Community) error
	ListByName(ctx context.Context) ([]models.Community, error)
	GetByID(ctx context.Context, id uint) (*models.Community, error)
	GetByName(ctx context.Context, name string) (*models.Community, error)
	Count(ctx context.Context) (int64, error)
}

type communityRepository struct {
	db *gorm.DB
}

// NewCommunityRepository returns a new CommunityRepository implementation.
func NewCommunityRepository(db *gorm.DB) CommunityRepository {
	return &communityRepository{db: db}
}

// Create inserts community and loads its creator in one transaction. A taken name
// yields a CONFLICT AppError; nothing is written on any failure.
func (r *communityRepository) Create(ctx context.Context, community *models.Community) (err error) {
	ctx, span := observability.StartSpan(ctx, "repository.CommunityCreate",
		attribute.String("db.table", "communities"))
	defer func() { observability.EndSpan(span, err) }()

	err = r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(community).Error; err != nil {
			return err
		}
		return tx.Preload("Creator").First(community, community.ID).Error
	})
	if err != nil {
		if database.IsUniqueViolation(err) {
			return models.NewConflictError(fmt.Sprintf("a community named %q already exists", community.Name), nil)
		}
		return models.NewInternalError(err)
	}
	return nil
}

func (r *communityRepository) ListByName(ctx context.Context) (_ []models.Community, err error) {
	ctx, span := observability.StartSpan(ctx, "repository.CommunityListByName",
		attribute.String("db.table", "communities"))
	defer func() { observability.EndSpan(span, err) }()

	var communities []models.Community
	if err = r.db.WithContext(ctx).Preload("Creator").Order("name ASC").Find(&communities).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return communities, nil
}

func (r *communityRepository) GetByID(ctx context.Context, id uint) (*models.Community, error) {
	var community models.Community
	if err := r.db.WithContext(ctx).Preload("Creator").First(&community, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Community", id)
		}
		return nil, models.NewInternalError(err)
	}
	return &community, nil
}

func (r *communityRepository) GetByName(ctx context.Context, name string) (*models.Community, error) {
	var community models.Community
	if err := r.db.WithContext(ctx).Preload("Creator").Where("name = ?", name).First(&community).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &models.AppError{
				Code:    models.CodeNotFound,
				Message: fmt.Sprintf("Community %q not found", name),
			}
		}
		return nil, models.NewInternalError(err)
	}
	return &community, nil
}

func (r *communityRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(&models.Community{}).Count(&n).Error; err != nil {
		return 0, models.NewInternalError(err)
	}
	return n, nil
}
