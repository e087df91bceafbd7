package server

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAPIComments_Flow(t *testing.T) {
	_, app, _ := setupTestServer(t, testConfig(), nil)
	alice := registerAndLogin(t, app, "alice", "alice@example.com")
	bob := registerAndLogin(t, app, "bob", "bob@example.com")
	postID := createPostAPI(t, app, alice, createCommunityAPI(t, app, alice, "golang"), "Thread")

	resp, _ := doJSON(t, app, http.MethodPost, "/api/comments", "", fiber.Map{"post_id": postID, "content": "hi"})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp, body := doJSON(t, app, http.MethodPost, "/api/comments", bob, fiber.Map{"post_id": 9999, "content": "hi"})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, body = doJSON(t, app, http.MethodPost, "/api/comments", bob, fiber.Map{"post_id": postID})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, body["fields"], "content")

	for _, text := range []string{"first", "second"} {
		resp, body = doJSON(t, app, http.MethodPost, "/api/comments", bob, fiber.Map{"post_id": postID, "content": text})
		require.Equal(t, http.StatusCreated, resp.StatusCode, body)
		assert.Equal(t, "Comment created successfully", body["message"])
	}
	comment := body["comment"].(map[string]any)
	assert.Equal(t, "bob", comment["author"].(map[string]any)["username"])
	commentID := uint(comment["id"].(float64))

	resp, body = doJSON(t, app, http.MethodGet, fmt.Sprintf("/api/comments/post/%d", postID), "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	items := body["items"].([]any)
	require.Len(t, items, 2)
	assert.Equal(t, "first", items[0].(map[string]any)["content"])
	assert.Equal(t, "second", items[1].(map[string]any)["content"])

	resp, _ = doJSON(t, app, http.MethodGet, "/api/comments/post/9999", "", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	path := fmt.Sprintf("/api/votes/comment/%d", commentID)
	resp, body = doJSON(t, app, http.MethodPost, path, alice, fiber.Map{"type": "like"})
	require.Equal(t, http.StatusOK, resp.StatusCode, body)
	assert.Equal(t, float64(1), body["comment"].(map[string]any)["like_count"])

	resp, body = doJSON(t, app, http.MethodPost, path, alice, fiber.Map{"type": "like"})
	require.Equal(t, http.StatusOK, resp.StatusCode, body)
	assert.Equal(t, float64(0), body["comment"].(map[string]any)["like_count"])
}
