package server

import (
	"net/url"

	"forum/internal/models"
	"forum/internal/service"
	"forum/internal/validation"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
)

// APIRegister handles POST /api/auth/register
func (s *Server) APIRegister(c *fiber.Ctx) error {
	var form validation.RegisterForm
	if err := c.BodyParser(&form); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	user, err := s.authService.Register(c.UserContext(), form)
	if err != nil {
		return models.RespondWithError(c, models.StatusFor(err), err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "User registered successfully",
		"user_id": user.ID,
	})
}

// APILogin handles POST /api/auth/login
func (s *Server) APILogin(c *fiber.Ctx) error {
	var form validation.LoginForm
	if err := c.BodyParser(&form); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	user, err := s.authService.Authenticate(c.UserContext(), form)
	if err != nil {
		return models.RespondWithError(c, models.StatusFor(err), err)
	}

	token, err := s.authService.IssueToken(user)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}

	return c.JSON(fiber.Map{
		"message": "Logged in successfully",
		"token":   token,
		"user":    models.UserSummary{ID: user.ID, Username: user.Username},
	})
}

// APILogout handles POST /api/auth/logout. The token's jti is blacklisted until expiry.
func (s *Server) APILogout(c *fiber.Ctx) error {
	claims, _ := c.Locals("claims").(*jwt.RegisteredClaims)
	if err := s.authService.RevokeToken(c.UserContext(), claims); err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}
	return c.JSON(fiber.Map{"message": "Logged out successfully"})
}

// APIListCommunities handles GET /api/communities
func (s *Server) APIListCommunities(c *fiber.Ctx) error {
	list, err := s.communityService.List(c.UserContext())
	if err != nil {
		return models.RespondWithError(c, models.StatusFor(err), err)
	}
	return c.JSON(models.NewCommunityViews(list))
}

// APICreateCommunity handles POST /api/communities
func (s *Server) APICreateCommunity(c *fiber.Ctx) error {
	var form validation.CommunityForm
	if err := c.BodyParser(&form); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	uid, _ := currentUserID(c)
	community, err := s.communityService.Create(c.UserContext(), service.CreateCommunityInput{
		UserID:      uid,
		Name:        form.Name,
		Description: form.Description,
	})
	if err != nil {
		return models.RespondWithError(c, models.StatusFor(err), err)
	}

	return c.Status(fiber.StatusCreated).JSON(models.NewCommunityView(community))
}

// APIGetCommunity handles GET /api/communities/:identifier. Numeric identifiers are
// IDs; anything else is matched against the name.
func (s *Server) APIGetCommunity(c *fiber.Ctx) error {
	identifier, err := url.PathUnescape(c.Params("identifier"))
	if err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid community identifier"))
	}

	community, err := s.communityService.GetByIdentifier(c.UserContext(), identifier)
	if err != nil {
		return models.RespondWithError(c, models.StatusFor(err), err)
	}
	return c.JSON(models.NewCommunityView(community))
}
