package handler_test

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakif/portfolio/internal/content"
	"github.com/sakif/portfolio/internal/model"
)

func decodeData(t *testing.T, body []byte) []model.BlogPost {
	t.Helper()
	var resp struct {
		Success bool             `json:"success"`
		Data    []model.BlogPost `json:"data"`
	}
	require.NoError(t, json.Unmarshal(body, &resp))
	require.True(t, resp.Success)
	return resp.Data
}

func TestDeleteBlogPost(t *testing.T) {
	tests := []struct {
		name        string
		query       string
		wantStatus  int
		wantPosts   int
		wantBackups int
	}{
		{name: "existing post", query: "?id=2", wantStatus: http.StatusOK, wantPosts: 3, wantBackups: 1},
		{name: "unknown id", query: "?id=42", wantStatus: http.StatusNotFound, wantBackups: 0},
		{name: "missing id", query: "", wantStatus: http.StatusBadRequest, wantBackups: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			rr := do(t, env.contentRouter(), http.MethodDelete, "/api/portfolio/blog"+tt.query, "")
			require.Equal(t, tt.wantStatus, rr.Code, rr.Body.String())
			assert.Len(t, env.backups(t, content.Blog), tt.wantBackups)

			if tt.wantStatus != http.StatusOK {
				return
			}
			posts := decodeData(t, rr.Body.Bytes())
			assert.Len(t, posts, tt.wantPosts)
			for _, p := range posts {
				assert.NotEqual(t, "2", p.ID)
			}
		})
	}
}

func TestDeleteMissingIDMessage(t *testing.T) {
	env := newTestEnv(t)
	rr := do(t, env.contentRouter(), http.MethodDelete, "/api/portfolio/blog", "")
	assert.Contains(t, rr.Body.String(), "Post ID required")
}

func TestSaveBlogSinglePost(t *testing.T) {
	env := newTestEnv(t)
	router := env.contentRouter()

	rr := do(t, router, http.MethodPost, "/api/portfolio/blog",
		`{"title":"Go Generics & You","content":"one two three","category":"Go"}`)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	posts := decodeData(t, rr.Body.Bytes())
	require.Len(t, posts, 5)
	added := posts[4]
	assert.Equal(t, "5", added.ID)
	assert.Equal(t, "go-generics-and-you", added.Slug)
	assert.Equal(t, 1, added.ReadingTime)
	assert.NotEmpty(t, added.PublishedAt)

	rr = do(t, router, http.MethodGet, "/api/portfolio/blog/go-generics-and-you", "")
	require.Equal(t, http.StatusOK, rr.Code)
	var got model.BlogPost
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))
	assert.Equal(t, "Go Generics & You", got.Title)
}

func TestSaveBlogMergesExistingPost(t *testing.T) {
	env := newTestEnv(t)
	rr := do(t, env.contentRouter(), http.MethodPost, "/api/portfolio/blog", `{"id":"1","featured":false}`)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	posts := decodeData(t, rr.Body.Bytes())
	require.Len(t, posts, 4)
	assert.Equal(t, "building-scalable-microservices-nodejs-docker", posts[0].Slug)
	assert.False(t, posts[0].Featured)
	assert.NotEmpty(t, posts[0].UpdatedAt)
}

func TestListBlogByCategory(t *testing.T) {
	env := newTestEnv(t)
	rr := do(t, env.contentRouter(), http.MethodGet, "/api/portfolio/blog?category=frontend%20development", "")
	require.Equal(t, http.StatusOK, rr.Code)

	var posts []model.BlogPost
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &posts))
	require.Len(t, posts, 1)
	assert.Equal(t, "2", posts[0].ID)
}

func TestGetBlogPostUnknownSlug(t *testing.T) {
	env := newTestEnv(t)
	rr := do(t, env.contentRouter(), http.MethodGet, "/api/portfolio/blog/nope", "")
	assert.Equal(t, http.StatusNotFound, rr.Code)
}
