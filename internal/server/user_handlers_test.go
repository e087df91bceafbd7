package server

import (
	"net/http"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAPIProfile(t *testing.T) {
	_, app, _ := setupTestServer(t, testConfig(), nil)
	token := registerAndLogin(t, app, "alice", "alice@example.com")

	resp, _ := doJSON(t, app, http.MethodGet, "/api/users/profile", "", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp, body := doJSON(t, app, http.MethodGet, "/api/users/profile", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "alice", body["username"])
	assert.Equal(t, "alice@example.com", body["email"])
	assert.Equal(t, "", body["bio"])
	assert.NotContains(t, body, "password")

	resp, body = doJSON(t, app, http.MethodPut, "/api/users/profile", token, fiber.Map{"bio": "Gopher"})
	require.Equal(t, http.StatusOK, resp.StatusCode, body)
	assert.Equal(t, "Profile updated successfully", body["message"])
	assert.Equal(t, "Gopher", body["user"].(map[string]any)["bio"])

	resp, body = doJSON(t, app, http.MethodPut, "/api/users/profile", token, fiber.Map{})
	require.Equal(t, http.StatusOK, resp.StatusCode, body)
	assert.Equal(t, "Gopher", body["user"].(map[string]any)["bio"])

	resp, body = doJSON(t, app, http.MethodPut, "/api/users/profile", token, fiber.Map{"bio": strings.Repeat("b", 501)})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, body["fields"], "bio")
}

func TestAPIChangePassword(t *testing.T) {
	_, app, _ := setupTestServer(t, testConfig(), nil)
	token := registerAndLogin(t, app, "alice", "alice@example.com")
	const path = "/api/users/profile/change-password"

	resp, body := doJSON(t, app, http.MethodPut, path, token, fiber.Map{
		"current_password":     "password123",
		"new_password":         "newpassword1",
		"confirm_new_password": "mismatch123",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "Passwords do not match.", body["fields"].(map[string]any)["confirm_new_password"])

	resp, body = doJSON(t, app, http.MethodPut, path, token, fiber.Map{
		"current_password":     "wrong-password",
		"new_password":         "newpassword1",
		"confirm_new_password": "newpassword1",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "Incorrect current password", body["error"])

	resp, body = doJSON(t, app, http.MethodPut, path, token, fiber.Map{
		"current_password":     "password123",
		"new_password":         "newpassword1",
		"confirm_new_password": "newpassword1",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode, body)
	assert.Equal(t, "Password changed successfully", body["message"])

	resp, _ = doJSON(t, app, http.MethodPost, "/api/auth/login", "", fiber.Map{"email": "alice@example.com", "password": "password123"})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	resp, _ = doJSON(t, app, http.MethodPost, "/api/auth/login", "", fiber.Map{"email": "alice@example.com", "password": "newpassword1"})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
