package middleware

import (
	"errors"
	"net/url"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/session"
	"github.com/golang-jwt/jwt/v5"
	"github.com/redis/go-redis/v9"
)

// Session keys written on login.
const (
	SessionUserIDKey   = "user_id"
	SessionUsernameKey = "username"
)

// Token claims issued by the JSON API.
const (
	TokenIssuer   = "forum-api"
	TokenAudience = "forum-client"
)

// LoginPath is where unauthenticated browsers are sent.
const LoginPath = "/auth/login"

// LoginMessage is flashed when a protected page is requested without a session.
const LoginMessage = "Please log in to access this page."

// BlacklistKey is the Redis key marking a revoked token ID.
func BlacklistKey(jti string) string {
	return "jwt:blacklist:" + jti
}

// SessionUser reads the logged-in user from the session, if any.
func SessionUser(sess *session.Session) (uint, string, bool) {
	uid, ok := sess.Get(SessionUserIDKey).(uint)
	if !ok || uid == 0 {
		return 0, "", false
	}
	username, _ := sess.Get(SessionUsernameKey).(string)
	return uid, username, true
}

// CurrentUser exposes the session user to every handler and view without enforcing it.
func CurrentUser(store *session.Store) fiber.Handler {
	return func(c *fiber.Ctx) error {
		sess, err := store.Get(c)
		if err != nil {
			return c.Next()
		}
		if uid, username, ok := SessionUser(sess); ok {
			c.Locals("userID", uid)
			c.Locals("username", username)
		}
		return c.Next()
	}
}

// LoginRequired protects HTML routes. Anonymous requests are redirected to the login
// page with the original path in `next` and an info flash.
func LoginRequired(store *session.Store) fiber.Handler {
	return func(c *fiber.Ctx) error {
		sess, err := store.Get(c)
		if err != nil {
			return err
		}

		uid, username, ok := SessionUser(sess)
		if !ok {
			AddFlash(sess, FlashInfo, LoginMessage)
			if err := sess.Save(); err != nil {
				return err
			}
			return c.Redirect(LoginPath + "?next=" + url.QueryEscape(c.OriginalURL()))
		}

		c.Locals("userID", uid)
		c.Locals("username", username)
		return c.Next()
	}
}

// TokenRequired protects JSON routes with a Bearer JWT. Revoked token IDs are looked up
// in Redis when a client is configured.
func TokenRequired(secret string, rdb *redis.Client) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get(fiber.HeaderAuthorization)
		if authHeader == "" {
			return fiber.NewError(fiber.StatusUnauthorized, "Authorization header required")
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			return fiber.NewError(fiber.StatusUnauthorized, "Invalid authorization header format")
		}

		claims, err := ParseToken(parts[1], secret)
		if err != nil {
			return fiber.NewError(fiber.StatusUnauthorized, "Invalid or expired token")
		}

		if rdb != nil && claims.ID != "" {
			n, err := rdb.Exists(c.UserContext(), BlacklistKey(claims.ID)).Result()
			if err != nil {
				RedisErrors.WithLabelValues("exists").Inc()
				Logger.WarnContext(c.UserContext(), "token blacklist lookup failed", "error", err)
			} else if n > 0 {
				return fiber.NewError(fiber.StatusUnauthorized, "Token has been revoked")
			}
		}

		userID, err := strconv.ParseUint(claims.Subject, 10, 32)
		if err != nil {
			return fiber.NewError(fiber.StatusUnauthorized, "Invalid user ID in token")
		}

		c.Locals("userID", uint(userID))
		c.Locals("claims", claims)
		return c.Next()
	}
}

// ParseToken validates signature, issuer, audience and expiry.
func ParseToken(tokenString, secret string) (*jwt.RegisteredClaims, error) {
	claims := &jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(secret), nil
	},
		jwt.WithIssuer(TokenIssuer),
		jwt.WithAudience(TokenAudience),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, err
	}
	if !token.Valid || claims.Subject == "" {
		return nil, errors.New("invalid token")
	}
	return claims, nil
}
