package server

import (
	"net/url"

	"forum/internal/models"
	"forum/internal/service"
	"forum/internal/validation"

	"github.com/gofiber/fiber/v2"
)

// CreatePost handles POST /api/posts
func (s *Server) CreatePost(c *fiber.Ctx) error {
	var form validation.PostForm
	if err := c.BodyParser(&form); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	uid, _ := currentUserID(c)
	post, err := s.postService.Create(c.UserContext(), service.CreatePostInput{
		UserID:      uid,
		Title:       form.Title,
		Content:     form.Content,
		CommunityID: form.CommunityID,
	})
	if err != nil {
		return models.RespondWithError(c, models.StatusFor(err), err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Post created successfully",
		"post":    models.NewPostView(post),
	})
}

// ListPosts handles GET /api/posts
func (s *Server) ListPosts(c *fiber.Ctx) error {
	page := parsePagination(c, defaultPaginationLimit)
	posts, err := s.postService.List(c.UserContext(), page.Limit, page.Offset)
	if err != nil {
		return models.RespondWithError(c, models.StatusFor(err), err)
	}
	return c.JSON(models.NewPostViews(posts))
}

// ListCommunityPosts handles GET /api/posts/community/:communityIdentifier
func (s *Server) ListCommunityPosts(c *fiber.Ctx) error {
	identifier, err := url.PathUnescape(c.Params("communityIdentifier"))
	if err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid community identifier"))
	}

	page := parsePagination(c, defaultPaginationLimit)
	posts, err := s.postService.ListByCommunity(c.UserContext(), identifier, page.Limit, page.Offset)
	if err != nil {
		return models.RespondWithError(c, models.StatusFor(err), err)
	}
	return c.JSON(models.NewPostViews(posts))
}

// ListUserPosts handles GET /api/posts/author/:userId
func (s *Server) ListUserPosts(c *fiber.Ctx) error {
	userID, err := parseID(c, "userId")
	if err != nil {
		return nil
	}

	page := parsePagination(c, defaultPaginationLimit)
	posts, err := s.postService.ListByAuthor(c.UserContext(), userID, page.Limit, page.Offset)
	if err != nil {
		return models.RespondWithError(c, models.StatusFor(err), err)
	}
	return c.JSON(models.NewPostViews(posts))
}

// GetPost handles GET /api/posts/:postId
func (s *Server) GetPost(c *fiber.Ctx) error {
	postID, err := parseID(c, "postId")
	if err != nil {
		return nil
	}

	post, err := s.postService.Get(c.UserContext(), postID)
	if err != nil {
		return models.RespondWithError(c, models.StatusFor(err), err)
	}
	return c.JSON(models.NewPostView(post))
}

// UpdatePost handles PUT /api/posts/:postId
func (s *Server) UpdatePost(c *fiber.Ctx) error {
	postID, err := parseID(c, "postId")
	if err != nil {
		return nil
	}

	var form validation.PostUpdateForm
	if err := c.BodyParser(&form); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	uid, _ := currentUserID(c)
	post, err := s.postService.Update(c.UserContext(), service.UpdatePostInput{
		UserID:  uid,
		PostID:  postID,
		Title:   form.Title,
		Content: form.Content,
	})
	if err != nil {
		return models.RespondWithError(c, models.StatusFor(err), err)
	}

	return c.JSON(fiber.Map{
		"message": "Post updated successfully",
		"post":    models.NewPostView(post),
	})
}

// DeletePost handles DELETE /api/posts/:postId
func (s *Server) DeletePost(c *fiber.Ctx) error {
	postID, err := parseID(c, "postId")
	if err != nil {
		return nil
	}

	uid, _ := currentUserID(c)
	if err := s.postService.Delete(c.UserContext(), service.DeletePostInput{UserID: uid, PostID: postID}); err != nil {
		return models.RespondWithError(c, models.StatusFor(err), err)
	}
	return c.JSON(fiber.Map{"message": "Post deleted successfully"})
}

// VotePost handles POST /api/votes/post/:postId
func (s *Server) VotePost(c *fiber.Ctx) error {
	postID, err := parseID(c, "postId")
	if err != nil {
		return nil
	}

	var form validation.VoteForm
	if err := c.BodyParser(&form); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	uid, _ := currentUserID(c)
	post, err := s.postService.Vote(c.UserContext(), service.VoteInput{UserID: uid, TargetID: postID, Type: form.Type})
	if err != nil {
		return models.RespondWithError(c, models.StatusFor(err), err)
	}

	return c.JSON(fiber.Map{
		"message": "Vote recorded",
		"post":    models.NewPostView(post),
	})
}
