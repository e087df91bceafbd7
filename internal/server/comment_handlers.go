package server

import (
	"forum/internal/models"
	"forum/internal/service"
	"forum/internal/validation"

	"github.com/gofiber/fiber/v2"
)

// CreateComment handles POST /api/comments
func (s *Server) CreateComment(c *fiber.Ctx) error {
	var form validation.CommentForm
	if err := c.BodyParser(&form); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	uid, _ := currentUserID(c)
	comment, err := s.commentService.Create(c.UserContext(), service.CreateCommentInput{
		UserID:  uid,
		PostID:  form.PostID,
		Content: form.Content,
	})
	if err != nil {
		return models.RespondWithError(c, models.StatusFor(err), err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Comment created successfully",
		"comment": models.NewCommentView(comment),
	})
}

// ListPostComments handles GET /api/comments/post/:postId
func (s *Server) ListPostComments(c *fiber.Ctx) error {
	postID, err := parseID(c, "postId")
	if err != nil {
		return nil
	}

	comments, err := s.commentService.ListByPost(c.UserContext(), postID)
	if err != nil {
		return models.RespondWithError(c, models.StatusFor(err), err)
	}
	return c.JSON(models.NewCommentViews(comments))
}

// VoteComment handles POST /api/votes/comment/:commentId
func (s *Server) VoteComment(c *fiber.Ctx) error {
	commentID, err := parseID(c, "commentId")
	if err != nil {
		return nil
	}

	var form validation.VoteForm
	if err := c.BodyParser(&form); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	uid, _ := currentUserID(c)
	comment, err := s.commentService.Vote(c.UserContext(), service.VoteInput{UserID: uid, TargetID: commentID, Type: form.Type})
	if err != nil {
		return models.RespondWithError(c, models.StatusFor(err), err)
	}

	return c.JSON(fiber.Map{
		"message": "Vote recorded",
		"comment": models.NewCommentView(comment),
	})
}
