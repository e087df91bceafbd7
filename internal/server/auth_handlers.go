package server

import (
	"errors"

	"forum/internal/middleware"
	"forum/internal/models"
	"forum/internal/validation"

	"github.com/gofiber/fiber/v2"
)

// ShowRegister handles GET /auth/register
func (s *Server) ShowRegister(c *fiber.Ctx) error {
	return s.render(c, "auth/register", fiber.Map{
		"Title": "Register",
		"Form":  validation.RegisterForm{},
	})
}

// Register handles POST /auth/register
func (s *Server) Register(c *fiber.Ctx) error {
	var form validation.RegisterForm
	if err := c.BodyParser(&form); err != nil {
		return s.renderRegister(c, form, models.NewValidationError("Invalid form submission."))
	}

	if _, err := s.authService.Register(c.UserContext(), form); err != nil {
		return s.renderRegister(c, form, err)
	}

	return s.flashAndRedirect(c, middleware.FlashSuccess,
		"Registration successful. Please log in.", middleware.LoginPath)
}

func (s *Server) renderRegister(c *fiber.Ctx, form validation.RegisterForm, err error) error {
	var appErr *models.AppError
	if !errors.As(err, &appErr) || appErr.Code == models.CodeInternal {
		return err
	}

	form.Password = ""
	data := fiber.Map{"Title": "Register", "Form": form}
	if len(appErr.Fields) > 0 {
		data["Errors"] = appErr.Fields
	} else {
		data["Error"] = appErr.Message
	}
	return s.render(c, "auth/register", data)
}

// ShowLogin handles GET /auth/login
func (s *Server) ShowLogin(c *fiber.Ctx) error {
	return s.render(c, "auth/login", fiber.Map{
		"Title": "Login",
		"Form":  validation.LoginForm{},
		"Next":  c.Query("next"),
	})
}

// Login handles POST /auth/login. On success the session is regenerated and the
// browser is sent to the local `next` path, or home.
func (s *Server) Login(c *fiber.Ctx) error {
	next := c.FormValue("next", c.Query("next"))

	var form validation.LoginForm
	if err := c.BodyParser(&form); err != nil {
		return s.renderLogin(c, form, next, models.NewValidationError("Invalid form submission."))
	}

	user, err := s.authService.Authenticate(c.UserContext(), form)
	if err != nil {
		return s.renderLogin(c, form, next, err)
	}

	sess, err := s.sessions.Get(c)
	if err != nil {
		return err
	}
	if err := sess.Regenerate(); err != nil {
		return err
	}
	sess.Set(middleware.SessionUserIDKey, user.ID)
	sess.Set(middleware.SessionUsernameKey, user.Username)
	middleware.AddFlash(sess, middleware.FlashSuccess, "Logged in successfully.")
	if err := sess.Save(); err != nil {
		return err
	}

	middleware.Logger.InfoContext(c.UserContext(), "user logged in", "user_id", user.ID)
	return c.Redirect(safeNext(next))
}

func (s *Server) renderLogin(c *fiber.Ctx, form validation.LoginForm, next string, err error) error {
	var appErr *models.AppError
	if !errors.As(err, &appErr) || appErr.Code == models.CodeInternal {
		return err
	}

	form.Password = ""
	data := fiber.Map{"Title": "Login", "Form": form, "Next": next}
	if len(appErr.Fields) > 0 {
		data["Errors"] = appErr.Fields
	} else {
		data["Error"] = appErr.Message
	}
	return s.render(c, "auth/login", data)
}

// Logout handles GET and POST /auth/logout
func (s *Server) Logout(c *fiber.Ctx) error {
	sess, err := s.sessions.Get(c)
	if err != nil {
		return err
	}
	sess.Delete(middleware.SessionUserIDKey)
	sess.Delete(middleware.SessionUsernameKey)
	if err := sess.Regenerate(); err != nil {
		return err
	}
	middleware.AddFlash(sess, middleware.FlashInfo, "You have been logged out.")
	if err := sess.Save(); err != nil {
		return err
	}
	return c.Redirect("/")
}
