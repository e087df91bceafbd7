// Package server contains the HTML, JSON and WebSocket handlers of the forum.
package server

import (
	"errors"
	"net/url"
	"strings"

	"forum/internal/middleware"
	"forum/internal/models"

	"github.com/gofiber/fiber/v2"
)

const csrfContextKey = "csrf"

// errResponseWritten means a helper already sent the response. Handlers return nil on it.
var errResponseWritten = errors.New("response already written")

// Pagination holds parsed limit/offset query parameters.
type Pagination struct {
	Limit  int
	Offset int
}

const (
	defaultPaginationLimit = 50
	maxPaginationLimit     = 100
)

// parsePagination extracts limit and offset query parameters with the given default limit.
func parsePagination(c *fiber.Ctx, defaultLimit int) Pagination {
	limit := c.QueryInt("limit", defaultLimit)
	if limit <= 0 {
		limit = defaultLimit
	}
	if limit > maxPaginationLimit {
		limit = maxPaginationLimit
	}

	offset := c.QueryInt("offset", 0)
	if offset < 0 {
		offset = 0
	}
	return Pagination{Limit: limit, Offset: offset}
}

// parseID extracts a route parameter as a positive uint.
// On failure it writes a 400 JSON response and returns errResponseWritten.
func parseID(c *fiber.Ctx, param string) (uint, error) {
	id, err := c.ParamsInt(param)
	if err != nil || id <= 0 {
		_ = models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid "+humanizeParam(param)))
		return 0, errResponseWritten
	}
	return uint(id), nil
}

// humanizeParam turns "postId" into "post ID".
func humanizeParam(param string) string {
	if param == "id" {
		return "ID"
	}
	if prefix, ok := strings.CutSuffix(param, "Id"); ok {
		return strings.ToLower(prefix) + " ID"
	}
	return param
}

// render adds the session flashes, the current user and the CSRF token to data and
// renders name inside the main layout. Popped flashes are persisted immediately.
func (s *Server) render(c *fiber.Ctx, name string, data fiber.Map) error {
	if data == nil {
		data = fiber.Map{}
	}

	if sess, err := s.sessions.Get(c); err == nil {
		if flashes := middleware.PopFlashes(sess); len(flashes) > 0 {
			data["Flashes"] = flashes
			if err := sess.Save(); err != nil {
				middleware.Logger.WarnContext(c.UserContext(), "session save failed", "error", err)
			}
		}
	}

	if uid, ok := c.Locals("userID").(uint); ok {
		data["CurrentUserID"] = uid
		data["CurrentUsername"] = c.Locals("username")
	}
	if token, ok := c.Locals(csrfContextKey).(string); ok {
		data["CSRFToken"] = token
	}
	if _, ok := data["Errors"]; !ok {
		data["Errors"] = map[string]string{}
	}

	return c.Render(name, data)
}

// flashAndRedirect queues a flash message and sends the browser to location.
func (s *Server) flashAndRedirect(c *fiber.Ctx, category, message, location string) error {
	sess, err := s.sessions.Get(c)
	if err != nil {
		return err
	}
	middleware.AddFlash(sess, category, message)
	if err := sess.Save(); err != nil {
		return err
	}
	return c.Redirect(location)
}

// safeNext returns next if it is a path on this site, or "/" otherwise.
func safeNext(next string) string {
	if next == "" || !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.Contains(next, `\`) {
		return "/"
	}
	u, err := url.Parse(next)
	if err != nil || u.Scheme != "" || u.Host != "" {
		return "/"
	}
	return next
}

// currentUserID returns the authenticated user set by LoginRequired or TokenRequired.
func currentUserID(c *fiber.Ctx) (uint, bool) {
	uid, ok := c.Locals("userID").(uint)
	return uid, ok && uid != 0
}

func isAPIPath(path string) bool {
	return path == "/api" || strings.HasPrefix(path, "/api/")
}
