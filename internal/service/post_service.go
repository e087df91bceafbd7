package service

import (
	"context"
	"strconv"

	"forum/internal/middleware"
	"forum/internal/models"
	"forum/internal/observability"
	"forum/internal/repository"
	"forum/internal/validation"

	"go.opentelemetry.io/otel/attribute"
)

// PostEventPublisher fans a newly created post out to realtime subscribers.
type PostEventPublisher interface {
	PublishPostCreated(ctx context.Context, post *models.Post) error
}

type PostService struct {
	posts       repository.PostRepository
	votes       repository.VoteRepository
	users       repository.UserRepository
	communities *CommunityService
	events      PostEventPublisher
}

type CreatePostInput struct {
	UserID      uint
	Title       string
	Content     string
	CommunityID uint
}

// UpdatePostInput changes only the fields that are non-nil.
type UpdatePostInput struct {
	UserID  uint
	PostID  uint
	Title   *string
	Content *string
}

type DeletePostInput struct {
	UserID uint
	PostID uint
}

// VoteInput is a like, dislike or removal by UserID on TargetID.
type VoteInput struct {
	UserID   uint
	TargetID uint
	Type     string
}

// NewPostService wires the service. events may be nil.
func NewPostService(
	posts repository.PostRepository,
	votes repository.VoteRepository,
	users repository.UserRepository,
	communities *CommunityService,
	events PostEventPublisher,
) *PostService {
	return &PostService{
		posts:       posts,
		votes:       votes,
		users:       users,
		communities: communities,
		events:      events,
	}
}

// Create stores a post in an existing community.
func (s *PostService) Create(ctx context.Context, in CreatePostInput) (_ *models.Post, err error) {
	ctx, span := observability.StartSpan(ctx, "service.PostCreate",
		attribute.Int64("user.id", int64(in.UserID)),
		attribute.Int64("community.id", int64(in.CommunityID)))
	defer func() { observability.EndSpan(span, err) }()

	if in.UserID == 0 {
		return nil, models.NewUnauthorizedError("Login required")
	}

	form := validation.PostForm{Title: in.Title, Content: in.Content, CommunityID: in.CommunityID}
	form.Normalize()
	if fieldErrs := validation.Struct(&form); fieldErrs != nil {
		return nil, models.NewFieldValidationError(fieldErrs)
	}

	if _, err := s.communities.GetByIdentifier(ctx, strconv.FormatUint(uint64(form.CommunityID), 10)); err != nil {
		if models.ErrorCode(err) == models.CodeNotFound {
			return nil, &models.AppError{Code: models.CodeNotFound, Message: "Community not found"}
		}
		return nil, err
	}

	post := &models.Post{
		Title:       form.Title,
		Content:     form.Content,
		UserID:      in.UserID,
		CommunityID: form.CommunityID,
	}
	if err := s.posts.Create(ctx, post); err != nil {
		middleware.Logger.WarnContext(ctx, "post create failed",
			"community_id", post.CommunityID, "error", err)
		return nil, err
	}

	middleware.PostsCreated.Inc()
	if s.events != nil {
		if err := s.events.PublishPostCreated(ctx, post); err != nil {
			middleware.Logger.WarnContext(ctx, "post event publish failed",
				"post_id", post.ID, "error", err)
		}
	}

	middleware.Logger.InfoContext(ctx, "post created",
		"post_id", post.ID, "community_id", post.CommunityID)
	return post, nil
}

// List returns posts across all communities, newest first.
func (s *PostService) List(ctx context.Context, limit, offset int) ([]models.Post, error) {
	return s.posts.List(ctx, limit, offset)
}

// ListByCommunity resolves identifier as an ID or a name, like community lookups do.
func (s *PostService) ListByCommunity(ctx context.Context, identifier string, limit, offset int) ([]models.Post, error) {
	community, err := s.communities.GetByIdentifier(ctx, identifier)
	if err != nil {
		return nil, err
	}
	return s.posts.ListByCommunity(ctx, community.ID, limit, offset)
}

func (s *PostService) ListByAuthor(ctx context.Context, userID uint, limit, offset int) ([]models.Post, error) {
	if _, err := s.users.GetByID(ctx, userID); err != nil {
		return nil, err
	}
	return s.posts.ListByAuthor(ctx, userID, limit, offset)
}

func (s *PostService) Get(ctx context.Context, id uint) (*models.Post, error) {
	return s.posts.GetByID(ctx, id)
}

// Update edits the caller's own post.
func (s *PostService) Update(ctx context.Context, in UpdatePostInput) (*models.Post, error) {
	post, err := s.posts.GetByID(ctx, in.PostID)
	if err != nil {
		return nil, err
	}
	if post.UserID != in.UserID {
		return nil, models.NewForbiddenError("You can only update your own posts")
	}

	form := validation.PostUpdateForm{Title: in.Title, Content: in.Content}
	form.Normalize()
	if fieldErrs := validation.Struct(&form); fieldErrs != nil {
		return nil, models.NewFieldValidationError(fieldErrs)
	}
	if form.Title != nil {
		post.Title = *form.Title
	}
	if form.Content != nil {
		post.Content = *form.Content
	}

	if err := s.posts.Update(ctx, post); err != nil {
		return nil, err
	}
	middleware.Logger.InfoContext(ctx, "post updated", "post_id", post.ID)
	return post, nil
}

// Delete removes the caller's own post with its comments and votes.
func (s *PostService) Delete(ctx context.Context, in DeletePostInput) error {
	post, err := s.posts.GetByID(ctx, in.PostID)
	if err != nil {
		return err
	}
	if post.UserID != in.UserID {
		return models.NewForbiddenError("You can only delete your own posts")
	}
	if err := s.posts.Delete(ctx, post.ID); err != nil {
		return err
	}
	middleware.Logger.InfoContext(ctx, "post deleted", "post_id", post.ID)
	return nil
}

// Vote records the caller's like or dislike and returns the recounted post.
func (s *PostService) Vote(ctx context.Context, in VoteInput) (*models.Post, error) {
	voteType, err := normalizeVote(in)
	if err != nil {
		return nil, err
	}
	post, err := s.votes.VotePost(ctx, in.UserID, in.TargetID, voteType)
	if err != nil {
		return nil, err
	}
	middleware.VotesCast.WithLabelValues("post", voteType).Inc()
	return post, nil
}

func normalizeVote(in VoteInput) (string, error) {
	if in.UserID == 0 {
		return "", models.NewUnauthorizedError("Login required")
	}
	form := validation.VoteForm{Type: in.Type}
	form.Normalize()
	if fieldErrs := validation.Struct(&form); fieldErrs != nil {
		return "", &models.AppError{Code: models.CodeValidation, Message: "Invalid vote type", Fields: fieldErrs}
	}
	return form.Type, nil
}
