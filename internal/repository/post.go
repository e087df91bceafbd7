package repository

import (
	"context"
	"errors"

	"forum/internal/models"
	"forum/internal/observability"

	"go.opentelemetry.io/otel/attribute"
	"gorm.io/gorm"
)

// PostRepository defines persistence operations for posts.
// Every read preloads the author and the community.
type PostRepository interface {
	Create(ctx context.Context, post *models.Post) error
	GetByID(ctx context.Context, id uint) (*models.Post, error)
	List(ctx context.Context, limit, offset int) ([]models.Post, error)
	ListByCommunity(ctx context.Context, communityID uint, limit, offset int) ([]models.Post, error)
	ListByAuthor(ctx context.Context, userID uint, limit, offset int) ([]models.Post, error)
	Update(ctx context.Context, post *models.Post) error
	Delete(ctx context.Context, id uint) error
}

type postRepository struct {
	db *gorm.DB
}

// NewPostRepository returns a new PostRepository implementation.
func NewPostRepository(db *gorm.DB) PostRepository {
	return &postRepository{db: db}
}

func (r *postRepository) withDetails(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Preload("Author").Preload("Community")
}

func (r *postRepository) Create(ctx context.Context, post *models.Post) (err error) {
	ctx, span := observability.StartSpan(ctx, "repository.PostCreate",
		attribute.String("db.table", "posts"))
	defer func() { observability.EndSpan(span, err) }()

	err = r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(post).Error; err != nil {
			return err
		}
		return tx.Preload("Author").Preload("Community").First(post, post.ID).Error
	})
	if err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *postRepository) GetByID(ctx context.Context, id uint) (*models.Post, error) {
	var post models.Post
	if err := r.withDetails(ctx).First(&post, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Post", id)
		}
		return nil, models.NewInternalError(err)
	}
	return &post, nil
}

// List returns the newest posts first.
func (r *postRepository) List(ctx context.Context, limit, offset int) ([]models.Post, error) {
	return r.find(ctx, r.withDetails(ctx), limit, offset)
}

func (r *postRepository) ListByCommunity(ctx context.Context, communityID uint, limit, offset int) ([]models.Post, error) {
	return r.find(ctx, r.withDetails(ctx).Where("community_id = ?", communityID), limit, offset)
}

func (r *postRepository) ListByAuthor(ctx context.Context, userID uint, limit, offset int) ([]models.Post, error) {
	return r.find(ctx, r.withDetails(ctx).Where("user_id = ?", userID), limit, offset)
}

func (r *postRepository) find(ctx context.Context, q *gorm.DB, limit, offset int) (_ []models.Post, err error) {
	_, span := observability.StartSpan(ctx, "repository.PostList",
		attribute.String("db.table", "posts"))
	defer func() { observability.EndSpan(span, err) }()

	var posts []models.Post
	err = q.Order("created_at DESC").Order("id DESC").
		Limit(limit).
		Offset(offset).
		Find(&posts).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return posts, nil
}

// Update writes the title and content only. Vote counters are owned by VoteRepository.
func (r *postRepository) Update(ctx context.Context, post *models.Post) error {
	err := r.db.WithContext(ctx).Model(post).
		Select("title", "content", "updated_at").
		Updates(post).Error
	if err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

// Delete removes the post with its comments and every vote on either, in one transaction.
func (r *postRepository) Delete(ctx context.Context, id uint) (err error) {
	ctx, span := observability.StartSpan(ctx, "repository.PostDelete",
		attribute.Int64("post.id", int64(id)))
	defer func() { observability.EndSpan(span, err) }()

	err = r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		commentIDs := tx.Model(&models.Comment{}).Select("id").Where("post_id = ?", id)
		if err := tx.Where("comment_id IN (?)", commentIDs).Delete(&models.CommentLike{}).Error; err != nil {
			return err
		}
		if err := tx.Where("post_id = ?", id).Delete(&models.Comment{}).Error; err != nil {
			return err
		}
		if err := tx.Where("post_id = ?", id).Delete(&models.PostLike{}).Error; err != nil {
			return err
		}
		res := tx.Delete(&models.Post{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.NewNotFoundError("Post", id)
		}
		return models.NewInternalError(err)
	}
	return nil
}
