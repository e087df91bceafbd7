package server

import (
	"forum/internal/models"
	"forum/internal/validation"

	"github.com/gofiber/fiber/v2"
)

// GetMyProfile handles GET /api/users/profile
func (s *Server) GetMyProfile(c *fiber.Ctx) error {
	uid, _ := currentUserID(c)
	user, err := s.userService.GetProfile(c.UserContext(), uid)
	if err != nil {
		return models.RespondWithError(c, models.StatusFor(err), err)
	}
	return c.JSON(models.NewProfile(user))
}

// UpdateMyProfile handles PUT /api/users/profile
func (s *Server) UpdateMyProfile(c *fiber.Ctx) error {
	var form validation.ProfileForm
	if err := c.BodyParser(&form); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	uid, _ := currentUserID(c)
	user, err := s.userService.UpdateProfile(c.UserContext(), uid, form)
	if err != nil {
		return models.RespondWithError(c, models.StatusFor(err), err)
	}

	return c.JSON(fiber.Map{
		"message": "Profile updated successfully",
		"user":    models.NewProfile(user),
	})
}

// ChangePassword handles PUT /api/users/profile/change-password
func (s *Server) ChangePassword(c *fiber.Ctx) error {
	var form validation.ChangePasswordForm
	if err := c.BodyParser(&form); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	uid, _ := currentUserID(c)
	if err := s.userService.ChangePassword(c.UserContext(), uid, form); err != nil {
		return models.RespondWithError(c, models.StatusFor(err), err)
	}
	return c.JSON(fiber.Map{"message": "Password changed successfully"})
}
