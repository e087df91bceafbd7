package repository

import (
	"context"
	"errors"

	"forum/internal/database"
	"forum/internal/models"
	"forum/internal/observability"

	"go.opentelemetry.io/otel/attribute"
	"gorm.io/gorm"
)

// VoteRepository records likes and dislikes. Each call runs in one transaction:
// the caller's vote row is inserted, switched, or removed, then the target's
// counters are recounted from the vote rows.
type VoteRepository interface {
	VotePost(ctx context.Context, userID, postID uint, voteType string) (*models.Post, error)
	VoteComment(ctx context.Context, userID, commentID uint, voteType string) (*models.Comment, error)
}

type voteRepository struct {
	db *gorm.DB
}

// NewVoteRepository returns a new VoteRepository implementation.
func NewVoteRepository(db *gorm.DB) VoteRepository {
	return &voteRepository{db: db}
}

func (r *voteRepository) VotePost(ctx context.Context, userID, postID uint, voteType string) (_ *models.Post, err error) {
	ctx, span := observability.StartSpan(ctx, "repository.VotePost",
		attribute.Int64("post.id", int64(postID)),
		attribute.String("vote.type", voteType))
	defer func() { observability.EndSpan(span, err) }()

	var post models.Post
	err = r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&post, postID).Error; err != nil {
			return err
		}

		var existing models.PostLike
		found, err := firstOrNone(tx.Where("user_id = ? AND post_id = ?", userID, postID), &existing)
		if err != nil {
			return err
		}
		if err := applyVote(tx, found, &existing, existing.Type, voteType, &models.PostLike{
			Type: voteType, UserID: userID, PostID: postID,
		}); err != nil {
			return err
		}

		likes, dislikes, err := countVotes(tx, &models.PostLike{}, "post_id", postID)
		if err != nil {
			return err
		}
		post.LikeCount, post.DislikeCount = likes, dislikes
		if err := tx.Model(&post).UpdateColumns(map[string]interface{}{
			"like_count":    likes,
			"dislike_count": dislikes,
		}).Error; err != nil {
			return err
		}
		return tx.Preload("Author").Preload("Community").First(&post, postID).Error
	})
	if err != nil {
		return nil, voteError(err, "Post", postID)
	}
	return &post, nil
}

func (r *voteRepository) VoteComment(ctx context.Context, userID, commentID uint, voteType string) (_ *models.Comment, err error) {
	ctx, span := observability.StartSpan(ctx, "repository.VoteComment",
		attribute.Int64("comment.id", int64(commentID)),
		attribute.String("vote.type", voteType))
	defer func() { observability.EndSpan(span, err) }()

	var comment models.Comment
	err = r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&comment, commentID).Error; err != nil {
			return err
		}

		var existing models.CommentLike
		found, err := firstOrNone(tx.Where("user_id = ? AND comment_id = ?", userID, commentID), &existing)
		if err != nil {
			return err
		}
		if err := applyVote(tx, found, &existing, existing.Type, voteType, &models.CommentLike{
			Type: voteType, UserID: userID, CommentID: commentID,
		}); err != nil {
			return err
		}

		likes, dislikes, err := countVotes(tx, &models.CommentLike{}, "comment_id", commentID)
		if err != nil {
			return err
		}
		if err := tx.Model(&comment).UpdateColumns(map[string]interface{}{
			"like_count":    likes,
			"dislike_count": dislikes,
		}).Error; err != nil {
			return err
		}
		return tx.Preload("Author").First(&comment, commentID).Error
	})
	if err != nil {
		return nil, voteError(err, "Comment", commentID)
	}
	return &comment, nil
}

func firstOrNone(q *gorm.DB, dest interface{}) (bool, error) {
	if err := q.First(dest).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// applyVote toggles the caller's vote row. Repeating the current type or sending
// "none" removes it; a different type switches it; no row plus like/dislike inserts.
func applyVote(tx *gorm.DB, found bool, existing interface{}, currentType, voteType string, fresh interface{}) error {
	switch {
	case found && (voteType == models.VoteNone || voteType == currentType):
		return tx.Delete(existing).Error
	case found:
		return tx.Model(existing).Update("type", voteType).Error
	case voteType == models.VoteNone:
		return nil
	default:
		return tx.Create(fresh).Error
	}
}

func countVotes(tx *gorm.DB, model interface{}, column string, id uint) (likes, dislikes int, err error) {
	var rows []struct {
		Type  string
		Total int
	}
	err = tx.Model(model).
		Select("type, COUNT(*) AS total").
		Where(column+" = ?", id).
		Group("type").
		Scan(&rows).Error
	if err != nil {
		return 0, 0, err
	}
	for _, row := range rows {
		switch row.Type {
		case models.VoteLike:
			likes = row.Total
		case models.VoteDislike:
			dislikes = row.Total
		}
	}
	return likes, dislikes, nil
}

func voteError(err error, resource string, id uint) error {
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return models.NewNotFoundError(resource, id)
	case database.IsUniqueViolation(err):
		return models.NewConflictError("Vote changed concurrently, please retry", nil)
	default:
		return models.NewInternalError(err)
	}
}
