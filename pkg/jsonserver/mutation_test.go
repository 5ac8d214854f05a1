package jsonserver_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bitechdev/RASpec/pkg/common"
	"github.com/bitechdev/RASpec/pkg/testmodels"
)

func TestGetOne(t *testing.T) {
	env := setupTestEnv(t)
	env.seedUsersAndPosts(t)

	resp, body := env.do(t, http.MethodGet, "/api/posts/3", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, testmodels.PostDTO{ID: 3, Title: "Charlie", Content: "Say HELLO again", UserID: 1, Status: "published"},
		decode[testmodels.PostDTO](t, body))

	resp, body = env.do(t, http.MethodGet, "/api/posts/999", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	apiErr := decode[common.APIError](t, body)
	assert.Equal(t, "not_found", apiErr.Code)
	assert.Equal(t, "posts not found with id: 999", apiErr.Message)

	resp, body = env.do(t, http.MethodGet, "/api/posts/abc", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "validation_error", decode[common.APIError](t, body).Code)
}

func TestCreateRoundTrip(t *testing.T) {
	env := setupTestEnv(t)
	env.seedUsersAndPosts(t)

	input := testmodels.PostCreate{Title: "Hotel", Content: "Created over HTTP", UserID: 3, Status: "draft"}
	resp, body := env.do(t, http.MethodPost, "/api/posts", input)
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))

	created := decode[testmodels.PostDTO](t, body)
	assert.Equal(t, int64(8), created.ID)

	resp, body = env.do(t, http.MethodGet, "/api/posts/8", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	fetched := decode[testmodels.PostDTO](t, body)

	assert.Equal(t, created, fetched)
	assert.Equal(t, input.Title, fetched.Title)
	assert.Equal(t, input.Content, fetched.Content)
	assert.Equal(t, input.UserID, fetched.UserID)
	assert.Equal(t, input.Status, fetched.Status)
}

func TestCreateValidation(t *testing.T) {
	env := setupTestEnv(t)

	tests := []struct {
		name   string
		body   interface{}
		status int
		code   string
	}{
		{"missing title", map[string]interface{}{"userId": 1}, http.StatusBadRequest, "validation_error"},
		{"missing user", map[string]interface{}{"title": "x"}, http.StatusBadRequest, "validation_error"},
		{"unknown status", map[string]interface{}{"title": "x", "userId": 1, "status": "gone"}, http.StatusBadRequest, "validation_error"},
		{"malformed json", `{"title":`, http.StatusBadRequest, "invalid_request"},
		{"empty body", "", http.StatusBadRequest, "invalid_request"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, body := env.do(t, http.MethodPost, "/api/posts", tt.body)
			assert.Equal(t, tt.status, resp.StatusCode)
			assert.Equal(t, tt.code, decode[common.APIError](t, body).Code)
		})
	}

	var count int64
	require.NoError(t, env.db.Model(&testmodels.Post{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestUpdate(t *testing.T) {
	env := setupTestEnv(t)
	env.seedUsersAndPosts(t)

	resp, body := env.do(t, http.MethodPut, "/api/posts/2", map[string]interface{}{
		"title":  "Bravo v2",
		"status": "published",
		"views":  100,
		"id":     55,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	assert.Equal(t, testmodels.PostDTO{ID: 2, Title: "Bravo v2", Content: "Second post", UserID: 1, Status: "published"},
		decode[testmodels.PostDTO](t, body))

	var stored testmodels.Post
	require.NoError(t, env.db.First(&stored, 2).Error)
	assert.Equal(t, "Bravo v2", stored.Title)
	assert.Equal(t, "Second post", stored.Content)
}

func TestUpdateErrors(t *testing.T) {
	env := setupTestEnv(t)
	env.seedUsersAndPosts(t)

	resp, body := env.do(t, http.MethodPut, "/api/posts/999", map[string]interface{}{"title": "x"})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "not_found", decode[common.APIError](t, body).Code)

	resp, body = env.do(t, http.MethodPut, "/api/posts/1", map[string]interface{}{"userId": "nobody"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "validation_error", decode[common.APIError](t, body).Code)

	resp, body = env.do(t, http.MethodPut, "/api/posts/1", map[string]interface{}{"status": "deleted"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "validation_error", decode[common.APIError](t, body).Code)
}

func TestUpdateRejectsNonIntegerValues(t *testing.T) {
	env := setupTestEnv(t)
	env.seedUsersAndPosts(t)

	tests := map[string]interface{}{
		"fraction":          2.5,
		"null":              nil,
		"boolean":           true,
		"fractional string": "7.9",
	}

	for name, value := range tests {
		t.Run(name, func(t *testing.T) {
			resp, body := env.do(t, http.MethodPut, "/api/posts/1", map[string]interface{}{"userId": value})
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode, string(body))
			assert.Equal(t, "validation_error", decode[common.APIError](t, body).Code)

			var stored testmodels.Post
			require.NoError(t, env.db.First(&stored, 1).Error)
			assert.Equal(t, int64(1), stored.UserID)
		})
	}

	resp, body := env.do(t, http.MethodPut, "/api/posts/1", map[string]interface{}{"userId": "2"})
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	assert.Equal(t, int64(2), decode[testmodels.PostDTO](t, body).UserID)
}

func TestUpdateManyReturnsRequestedIDs(t *testing.T) {
	env := setupTestEnv(t)
	env.seedUsersAndPosts(t)

	resp, body := env.do(t, http.MethodPut, "/api/posts?id=1&id=2&id=999", map[string]interface{}{"status": "archived", "unknown": true})
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	assert.Equal(t, []int64{1, 2, 999}, decode[[]int64](t, body))

	var posts []testmodels.Post
	require.NoError(t, env.db.Order("id").Find(&posts).Error)
	assert.Equal(t, "archived", posts[0].Status)
	assert.Equal(t, "archived", posts[1].Status)
	assert.Equal(t, "published", posts[2].Status)
	assert.Equal(t, "Alpha", posts[0].Title)
}

func TestUpdateManyEdgeCases(t *testing.T) {
	env := setupTestEnv(t)
	env.seedUsersAndPosts(t)

	t.Run("duplicates collapse", func(t *testing.T) {
		resp, body := env.do(t, http.MethodPut, "/api/posts?id=2&id=1&id=2", map[string]interface{}{"title": "same"})
		require.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, []int64{2, 1}, decode[[]int64](t, body))
	})

	t.Run("no ids", func(t *testing.T) {
		resp, body := env.do(t, http.MethodPut, "/api/posts", map[string]interface{}{"title": "none"})
		require.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, []int64{}, decode[[]int64](t, body))
	})

	t.Run("coercion failure persists nothing", func(t *testing.T) {
		resp, body := env.do(t, http.MethodPut, "/api/posts?id=3&id=4", map[string]interface{}{"title": "changed", "userId": 1.5})
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, "validation_error", decode[common.APIError](t, body).Code)

		var titles []string
		require.NoError(t, env.db.Model(&testmodels.Post{}).Where("id IN ?", []int64{3, 4}).Order("id").Pluck("title", &titles).Error)
		assert.Equal(t, []string{"Charlie", "Delta"}, titles)
	})
}

func TestDelete(t *testing.T) {
	env := setupTestEnv(t)
	env.seedUsersAndPosts(t)

	resp, body := env.do(t, http.MethodDelete, "/api/posts/4", nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	assert.Empty(t, body)

	resp, _ = env.do(t, http.MethodGet, "/api/posts/4", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, body = env.do(t, http.MethodDelete, "/api/posts/4", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "not_found", decode[common.APIError](t, body).Code)
}

func TestDeleteManyReturnsFoundIDs(t *testing.T) {
	env := setupTestEnv(t)
	env.seedUsersAndPosts(t)

	resp, body := env.do(t, http.MethodDelete, "/api/posts?id=1&id=2&id=999", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	assert.Equal(t, []int64{1, 2}, decode[[]int64](t, body))

	var remaining int64
	require.NoError(t, env.db.Model(&testmodels.Post{}).Count(&remaining).Error)
	assert.Equal(t, int64(5), remaining)

	resp, body = env.do(t, http.MethodDelete, "/api/posts?id=1&id=2", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, []int64{}, decode[[]int64](t, body))
}

func TestMethodNotAllowed(t *testing.T) {
	env := setupTestEnv(t)

	resp, _ := env.do(t, http.MethodPatch, "/api/posts/1", map[string]interface{}{"title": "x"})
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
}
