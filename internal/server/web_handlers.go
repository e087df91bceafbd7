package server

import (
	"errors"
	"fmt"

	"forum/internal/middleware"
	"forum/internal/models"
	"forum/internal/service"
	"forum/internal/validation"

	"github.com/gofiber/fiber/v2"
)

const (
	communityCreatedMessage = "Community created successfully!"
	communityErrorPrefix    = "Error creating community: "
)

// Index handles GET / and GET /index
func (s *Server) Index(c *fiber.Ctx) error {
	return s.render(c, "index", fiber.Map{"Title": "Home"})
}

// ShowCreateCommunity handles GET /communities/create
func (s *Server) ShowCreateCommunity(c *fiber.Ctx) error {
	return s.render(c, "communities/create", fiber.Map{
		"Title": "Create Community",
		"Form":  validation.CommunityForm{},
	})
}

// CreateCommunity handles POST /communities/create.
// Invalid input re-renders the form with field messages. Persistence failures are
// flashed and redirect back to the empty form.
func (s *Server) CreateCommunity(c *fiber.Ctx) error {
	var form validation.CommunityForm
	if err := c.BodyParser(&form); err != nil {
		return s.render(c, "communities/create", fiber.Map{
			"Title":  "Create Community",
			"Form":   form,
			"Errors": map[string]string{"name": "Invalid form submission."},
		})
	}

	uid, _ := currentUserID(c)
	community, err := s.communityService.Create(c.UserContext(), service.CreateCommunityInput{
		UserID:      uid,
		Name:        form.Name,
		Description: form.Description,
	})
	if err != nil {
		var appErr *models.AppError
		if errors.As(err, &appErr) && appErr.Code == models.CodeValidation && len(appErr.Fields) > 0 {
			form.Normalize()
			return s.render(c, "communities/create", fiber.Map{
				"Title":  "Create Community",
				"Form":   form,
				"Errors": appErr.Fields,
			})
		}

		return s.flashAndRedirect(c, middleware.FlashDanger, communityErrorPrefix+flashDetail(c, err), "/communities/create")
	}

	middleware.Logger.InfoContext(c.UserContext(), "community created via web",
		"community_id", community.ID)
	return s.flashAndRedirect(c, middleware.FlashSuccess, communityCreatedMessage, "/")
}

// flashDetail is the user-facing cause of err. Internal failures never show their
// cause; they carry the request ID so the logged error can be found.
func flashDetail(c *fiber.Ctx, err error) string {
	var appErr *models.AppError
	if errors.As(err, &appErr) && appErr.Code != models.CodeInternal {
		return appErr.Message
	}

	rid, _ := c.Locals("requestid").(string)
	middleware.Logger.ErrorContext(c.UserContext(), "community create failed",
		"request_id", rid, "error", err)
	if rid == "" {
		return "Internal server error"
	}
	return fmt.Sprintf("Internal server error (reference %s)", rid)
}

// ListCommunities handles GET /communities/
func (s *Server) ListCommunities(c *fiber.Ctx) error {
	list, err := s.communityService.List(c.UserContext())
	if err != nil {
		return err
	}
	return s.render(c, "communities/list", fiber.Map{
		"Title":       "Communities",
		"Communities": models.NewCommunityViews(list),
	})
}
