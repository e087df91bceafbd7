package service

import (
	"context"

	"forum/internal/middleware"
	"forum/internal/models"
	"forum/internal/repository"
	"forum/internal/validation"
)

// CommentEventPublisher fans a newly created comment out to realtime subscribers.
type CommentEventPublisher interface {
	PublishCommentCreated(ctx context.Context, comment *models.Comment) error
}

type CommentService struct {
	comments repository.CommentRepository
	posts    repository.PostRepository
	votes    repository.VoteRepository
	events   CommentEventPublisher
}

type CreateCommentInput struct {
	UserID  uint
	PostID  uint
	Content string
}

// NewCommentService wires the service. events may be nil.
func NewCommentService(
	comments repository.CommentRepository,
	posts repository.PostRepository,
	votes repository.VoteRepository,
	events CommentEventPublisher,
) *CommentService {
	return &CommentService{comments: comments, posts: posts, votes: votes, events: events}
}

// Create adds a comment to an existing post.
func (s *CommentService) Create(ctx context.Context, in CreateCommentInput) (*models.Comment, error) {
	if in.UserID == 0 {
		return nil, models.NewUnauthorizedError("Login required")
	}

	form := validation.CommentForm{Content: in.Content, PostID: in.PostID}
	form.Normalize()
	if fieldErrs := validation.Struct(&form); fieldErrs != nil {
		return nil, models.NewFieldValidationError(fieldErrs)
	}
	if _, err := s.posts.GetByID(ctx, form.PostID); err != nil {
		return nil, err
	}

	comment := &models.Comment{Content: form.Content, UserID: in.UserID, PostID: form.PostID}
	if err := s.comments.Create(ctx, comment); err != nil {
		return nil, err
	}

	middleware.CommentsCreated.Inc()
	if s.events != nil {
		if err := s.events.PublishCommentCreated(ctx, comment); err != nil {
			middleware.Logger.WarnContext(ctx, "comment event publish failed",
				"comment_id", comment.ID, "error", err)
		}
	}
	middleware.Logger.InfoContext(ctx, "comment created",
		"comment_id", comment.ID, "post_id", comment.PostID)
	return comment, nil
}

// ListByPost returns the comments of an existing post, oldest first.
func (s *CommentService) ListByPost(ctx context.Context, postID uint) ([]models.Comment, error) {
	if _, err := s.posts.GetByID(ctx, postID); err != nil {
		return nil, err
	}
	return s.comments.ListByPost(ctx, postID)
}

// Vote records the caller's like or dislike and returns the recounted comment.
func (s *CommentService) Vote(ctx context.Context, in VoteInput) (*models.Comment, error) {
	voteType, err := normalizeVote(in)
	if err != nil {
		return nil, err
	}
	comment, err := s.votes.VoteComment(ctx, in.UserID, in.TargetID, voteType)
	if err != nil {
		return nil, err
	}
	middleware.VotesCast.WithLabelValues("comment", voteType).Inc()
	return comment, nil
}
