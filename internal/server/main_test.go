package server

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"forum/internal/cache"
	"forum/internal/config"
	"forum/internal/database"
	"forum/internal/models"

	"github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const testSecret = "test-secret-that-is-long-enough-for-hs256"

func testConfig() *config.Config {
	return &config.Config{
		Env:                    "test",
		Port:                   "0",
		JWTSecret:              testSecret,
		SessionExpirationHours: 1,
		AllowedOrigins:         "http://localhost:3000",
	}
}

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, database.AutoMigrate(db))
	return db
}

// setupTestServer builds a server without Redis unless rdb is given.
func setupTestServer(t *testing.T, cfg *config.Config, rdb *redis.Client) (*Server, *fiber.App, *gorm.DB) {
	t.Helper()
	cache.SetClient(rdb)
	t.Cleanup(func() { cache.SetClient(nil) })

	db := setupTestDB(t)
	s, err := NewServerWithDeps(cfg, db, rdb)
	require.NoError(t, err)

	app, err := s.NewApp()
	require.NoError(t, err)
	return s, app, db
}

func setupMiniredis(t *testing.T) *redis.Client {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return rdb
}

func createUser(t *testing.T, db *gorm.DB, username, email, password string) *models.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	user := &models.User{Username: username, Email: email, Password: string(hash)}
	require.NoError(t, db.Create(user).Error)
	return user
}

func countCommunities(t *testing.T, db *gorm.DB) int64 {
	t.Helper()
	var n int64
	require.NoError(t, db.Model(&models.Community{}).Count(&n).Error)
	return n
}

// browser replays cookies between requests like a real user agent.
type browser struct {
	t       *testing.T
	app     *fiber.App
	cookies map[string]*http.Cookie
}

type page struct {
	Status   int
	Location string
	Body     string
}

func newBrowser(t *testing.T, app *fiber.App) *browser {
	return &browser{t: t, app: app, cookies: map[string]*http.Cookie{}}
}

func (b *browser) get(path string) page {
	return b.do(http.MethodGet, path, nil)
}

func (b *browser) post(path string, form url.Values) page {
	return b.do(http.MethodPost, path, form)
}

func (b *browser) do(method, path string, form url.Values) page {
	b.t.Helper()

	var body io.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	}
	req := httptest.NewRequest(method, path, body)
	if form != nil {
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationForm)
	}
	for _, c := range b.cookies {
		req.AddCookie(&http.Cookie{Name: c.Name, Value: c.Value})
	}

	resp, err := b.app.Test(req, -1)
	require.NoError(b.t, err)
	defer func() { _ = resp.Body.Close() }()

	for _, c := range resp.Cookies() {
		if c.Value == "" || c.MaxAge < 0 || (!c.Expires.IsZero() && c.Expires.Before(time.Now())) {
			delete(b.cookies, c.Name)
			continue
		}
		b.cookies[c.Name] = c
	}

	raw, err := io.ReadAll(resp.Body)
	require.NoError(b.t, err)
	return page{
		Status:   resp.StatusCode,
		Location: resp.Header.Get(fiber.HeaderLocation),
		Body:     string(raw),
	}
}

func (b *browser) login(email, password string) page {
	return b.post("/auth/login", url.Values{"email": {email}, "password": {password}})
}

func doJSON(t *testing.T, app *fiber.App, method, path, token string, payload any) (*http.Response, map[string]any) {
	t.Helper()

	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		require.NoError(t, err)
		body = strings.NewReader(string(raw))
	}
	req := httptest.NewRequest(method, path, body)
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	if token != "" {
		req.Header.Set(fiber.HeaderAuthorization, "Bearer "+token)
	}

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	out := map[string]any{}
	if len(raw) > 0 && raw[0] == '{' {
		require.NoError(t, json.Unmarshal(raw, &out))
	} else if len(raw) > 0 && raw[0] == '[' {
		var list []any
		require.NoError(t, json.Unmarshal(raw, &list))
		out["items"] = list
	}
	return resp, out
}
