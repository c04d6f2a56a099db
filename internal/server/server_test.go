package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"inkwell/internal/config"
	"inkwell/internal/database"
	"inkwell/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func testConfig() *config.Config {
	return &config.Config{
		Port:           "0",
		Env:            "test",
		JWTSecret:      "test-secret",
		DBMaxOpenConns: 5,
	}
}

func newTestApp(t *testing.T) (*fiber.App, *Server, *gorm.DB) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))

	srv, err := NewServerWithDeps(testConfig(), db, nil)
	require.NoError(t, err)

	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			return models.RespondWithError(c, err)
		},
	})
	srv.SetupRoutes(app)
	return app, srv, db
}

// request performs an HTTP call against the app and decodes the JSON
// response body into out when out is non-nil.
func request(t *testing.T, app *fiber.App, method, path string, body any, token string, out any) int {
	t.Helper()

	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(encoded)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	if out != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode
}

// signup registers an account and returns its token and user payload.
func signup(t *testing.T, app *fiber.App, name, email string) (string, map[string]any) {
	t.Helper()
	var resp struct {
		Token string         `json:"token"`
		User  map[string]any `json:"user"`
	}
	status := request(t, app, http.MethodPost, "/api/auth/signup", map[string]string{
		"name":     name,
		"email":    email,
		"password": "correct-horse-battery",
	}, "", &resp)
	require.Equal(t, http.StatusCreated, status)
	require.NotEmpty(t, resp.Token)
	return resp.Token, resp.User
}

func publishedPayload(title string) map[string]any {
	return map[string]any{
		"title":    title,
		"excerpt":  "a short excerpt",
		"content":  "the full content of the piece",
		"category": "Go",
		"image":    "/images/cover.png",
		"status":   "published",
	}
}

func TestSignupAndLogin(t *testing.T) {
	app, _, _ := newTestApp(t)

	_, user := signup(t, app, "Jane Doe", "jane@example.com")
	assert.Equal(t, "jane-doe", user["slug"])
	_, hasHash := user["password_hash"]
	assert.False(t, hasHash, "password hash must never serialize")

	t.Run("duplicate email rejected", func(t *testing.T) {
		status := request(t, app, http.MethodPost, "/api/auth/signup", map[string]string{
			"name": "Jane Again", "email": "jane@example.com", "password": "another-password",
		}, "", nil)
		assert.Equal(t, http.StatusBadRequest, status)
	})

	t.Run("name collision gets suffixed slug", func(t *testing.T) {
		_, other := signup(t, app, "Jane Doe", "jane2@example.com")
		assert.Equal(t, "jane-doe-1", other["slug"])
	})

	t.Run("login with wrong password", func(t *testing.T) {
		status := request(t, app, http.MethodPost, "/api/auth/login", map[string]string{
			"email": "jane@example.com", "password": "wrong",
		}, "", nil)
		assert.Equal(t, http.StatusUnauthorized, status)
	})

	t.Run("login success", func(t *testing.T) {
		var resp struct {
			Token string `json:"token"`
		}
		status := request(t, app, http.MethodPost, "/api/auth/login", map[string]string{
			"email": "jane@example.com", "password": "correct-horse-battery",
		}, "", &resp)
		assert.Equal(t, http.StatusOK, status)
		assert.NotEmpty(t, resp.Token)
	})
}

func TestPostLifecycle(t *testing.T) {
	app, _, _ := newTestApp(t)
	token, _ := signup(t, app, "Author", "author@example.com")

	t.Run("create requires auth", func(t *testing.T) {
		status := request(t, app, http.MethodPost, "/api/posts",
			map[string]any{"title": "Nope"}, "", nil)
		assert.Equal(t, http.StatusUnauthorized, status)
	})

	var draft models.Post
	status := request(t, app, http.MethodPost, "/api/posts",
		map[string]any{"title": "My Great Piece"}, token, &draft)
	require.Equal(t, http.StatusCreated, status)
	assert.Equal(t, "my-great-piece", draft.Slug)
	assert.Equal(t, models.PostStatusDraft, draft.Status)

	t.Run("draft invisible publicly", func(t *testing.T) {
		status := request(t, app, http.MethodGet, "/api/posts/my-great-piece", nil, "", nil)
		assert.Equal(t, http.StatusNotFound, status)
	})

	t.Run("owner can load draft for editing", func(t *testing.T) {
		var post models.Post
		status := request(t, app, http.MethodGet, "/api/posts/my-great-piece/edit", nil, token, &post)
		assert.Equal(t, http.StatusOK, status)
		assert.Equal(t, models.PostStatusDraft, post.Status)
	})

	t.Run("publishing an incomplete draft fails", func(t *testing.T) {
		status := request(t, app, http.MethodPut, "/api/posts/my-great-piece",
			map[string]any{"status": "published"}, token, nil)
		assert.Equal(t, http.StatusBadRequest, status)
	})

	var published models.Post
	status = request(t, app, http.MethodPut, "/api/posts/my-great-piece",
		publishedPayload("My Great Piece"), token, &published)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, models.PostStatusPublished, published.Status)
	assert.Equal(t, "my-great-piece", published.Slug, "slug survives updates")

	t.Run("published post is public and counts views", func(t *testing.T) {
		for i := 0; i < 2; i++ {
			status := request(t, app, http.MethodPost, "/api/posts/my-great-piece/view", nil, "", nil)
			assert.Equal(t, http.StatusNoContent, status)
		}
		// Unknown slug is still a 204; the caller has nothing to act on.
		status := request(t, app, http.MethodPost, "/api/posts/ghost/view", nil, "", nil)
		assert.Equal(t, http.StatusNoContent, status)

		var post models.Post
		status = request(t, app, http.MethodGet, "/api/posts/my-great-piece", nil, "", &post)
		require.Equal(t, http.StatusOK, status)
		assert.EqualValues(t, 2, post.Views)
		assert.Equal(t, "Author", post.Author.Name)
	})

	t.Run("other users cannot edit or delete", func(t *testing.T) {
		otherToken, _ := signup(t, app, "Rival", "rival@example.com")
		status := request(t, app, http.MethodPut, "/api/posts/my-great-piece",
			map[string]any{"title": "Hijacked"}, otherToken, nil)
		assert.Equal(t, http.StatusNotFound, status, "foreign posts look like missing posts")

		status = request(t, app, http.MethodDelete, "/api/posts/my-great-piece", nil, otherToken, nil)
		assert.Equal(t, http.StatusNotFound, status)
	})

	t.Run("delete", func(t *testing.T) {
		status := request(t, app, http.MethodDelete, "/api/posts/my-great-piece", nil, token, nil)
		assert.Equal(t, http.StatusNoContent, status)
		status = request(t, app, http.MethodGet, "/api/posts/my-great-piece", nil, "", nil)
		assert.Equal(t, http.StatusNotFound, status)
	})
}

func TestSlugCollisionSuffixes(t *testing.T) {
	app, _, _ := newTestApp(t)
	token, _ := signup(t, app, "Author", "author@example.com")

	var first, second models.Post
	request(t, app, http.MethodPost, "/api/posts", map[string]any{"title": "Hello, World!"}, token, &first)
	request(t, app, http.MethodPost, "/api/posts", map[string]any{"title": "Hello, World!"}, token, &second)

	assert.Equal(t, "hello-world", first.Slug)
	assert.Equal(t, "hello-world-1", second.Slug)
}

func TestListingEnvelope(t *testing.T) {
	app, _, _ := newTestApp(t)
	token, _ := signup(t, app, "Author", "author@example.com")

	for i := 1; i <= 5; i++ {
		status := request(t, app, http.MethodPost, "/api/posts",
			publishedPayload(fmt.Sprintf("Piece %d", i)), token, nil)
		require.Equal(t, http.StatusCreated, status)
	}

	var page pagedResponse
	status := request(t, app, http.MethodGet, "/api/posts?page=2&limit=2", nil, "", &page)
	require.Equal(t, http.StatusOK, status)
	assert.EqualValues(t, 5, page.Total)
	assert.Equal(t, 2, page.Page)
	assert.Len(t, page.Posts, 2)

	t.Run("page past the end is empty", func(t *testing.T) {
		var empty pagedResponse
		status := request(t, app, http.MethodGet, "/api/posts?page=9&limit=2", nil, "", &empty)
		require.Equal(t, http.StatusOK, status)
		assert.Empty(t, empty.Posts)
		assert.EqualValues(t, 5, empty.Total)
	})

	t.Run("related degrades to empty for a missing post", func(t *testing.T) {
		var related []models.Post
		status := request(t, app, http.MethodGet, "/api/posts/ghost/related", nil, "", &related)
		require.Equal(t, http.StatusOK, status)
		assert.Empty(t, related)
	})

	t.Run("search returns empty for empty query", func(t *testing.T) {
		var results []models.Post
		status := request(t, app, http.MethodGet, "/api/posts/search?q=", nil, "", &results)
		require.Equal(t, http.StatusOK, status)
		assert.Empty(t, results)
	})

	t.Run("categories aggregate", func(t *testing.T) {
		var categories []models.CategoryCount
		status := request(t, app, http.MethodGet, "/api/categories", nil, "", &categories)
		require.Equal(t, http.StatusOK, status)
		require.Len(t, categories, 1)
		assert.Equal(t, "Go", categories[0].Name)
		assert.EqualValues(t, 5, categories[0].Count)
	})
}

func TestFollowAndSaveToggles(t *testing.T) {
	app, _, _ := newTestApp(t)
	readerToken, _ := signup(t, app, "Reader", "reader@example.com")
	writerToken, writer := signup(t, app, "Writer", "writer@example.com")
	writerID := int(writer["id"].(float64))

	status := request(t, app, http.MethodPost, "/api/posts",
		publishedPayload("A Piece Worth Saving"), writerToken, nil)
	require.Equal(t, http.StatusCreated, status)

	t.Run("follow toggles on and off", func(t *testing.T) {
		var resp struct {
			Following bool `json:"following"`
		}
		path := fmt.Sprintf("/api/authors/%d/follow", writerID)

		status := request(t, app, http.MethodPost, path, nil, readerToken, &resp)
		require.Equal(t, http.StatusOK, status)
		assert.True(t, resp.Following)

		var followed []models.User
		request(t, app, http.MethodGet, "/api/me/following", nil, readerToken, &followed)
		require.Len(t, followed, 1)
		assert.Equal(t, "writer", followed[0].Slug)

		status = request(t, app, http.MethodPost, path, nil, readerToken, &resp)
		require.Equal(t, http.StatusOK, status)
		assert.False(t, resp.Following)
	})

	t.Run("cannot follow yourself", func(t *testing.T) {
		path := fmt.Sprintf("/api/authors/%d/follow", writerID)
		status := request(t, app, http.MethodPost, path, nil, writerToken, nil)
		assert.Equal(t, http.StatusBadRequest, status)
	})

	t.Run("save toggles on and off", func(t *testing.T) {
		var resp struct {
			Saved bool `json:"saved"`
		}
		status := request(t, app, http.MethodGet, "/api/posts/a-piece-worth-saving/saved", nil, readerToken, &resp)
		require.Equal(t, http.StatusOK, status)
		assert.False(t, resp.Saved)

		status = request(t, app, http.MethodPost, "/api/posts/a-piece-worth-saving/save", nil, readerToken, &resp)
		require.Equal(t, http.StatusOK, status)
		assert.True(t, resp.Saved)

		status = request(t, app, http.MethodGet, "/api/posts/a-piece-worth-saving/saved", nil, readerToken, &resp)
		require.Equal(t, http.StatusOK, status)
		assert.True(t, resp.Saved)

		var saved []models.Post
		request(t, app, http.MethodGet, "/api/me/saved", nil, readerToken, &saved)
		require.Len(t, saved, 1)
		assert.Equal(t, "a-piece-worth-saving", saved[0].Slug)

		status = request(t, app, http.MethodPost, "/api/posts/a-piece-worth-saving/save", nil, readerToken, &resp)
		require.Equal(t, http.StatusOK, status)
		assert.False(t, resp.Saved)
	})

	t.Run("saving a missing post fails", func(t *testing.T) {
		status := request(t, app, http.MethodPost, "/api/posts/nothing-here/save", nil, readerToken, nil)
		assert.Equal(t, http.StatusNotFound, status)
	})
}

func TestAuthorDirectory(t *testing.T) {
	app, _, _ := newTestApp(t)
	readerToken, _ := signup(t, app, "Reader", "reader@example.com")
	writerToken, writer := signup(t, app, "Writer", "writer@example.com")
	writerID := int(writer["id"].(float64))

	status := request(t, app, http.MethodPost, "/api/posts",
		publishedPayload("Popular Piece"), writerToken, nil)
	require.Equal(t, http.StatusCreated, status)
	request(t, app, http.MethodPost, "/api/posts/popular-piece/view", nil, "", nil)

	t.Run("profile with aggregates and follow state", func(t *testing.T) {
		var resp struct {
			Author    models.User `json:"author"`
			Following bool        `json:"following"`
		}
		status := request(t, app, http.MethodGet, "/api/authors/writer", nil, readerToken, &resp)
		require.Equal(t, http.StatusOK, status)
		assert.EqualValues(t, 1, resp.Author.PostCount)
		assert.EqualValues(t, 1, resp.Author.TotalViews)
		assert.False(t, resp.Following)

		request(t, app, http.MethodPost, fmt.Sprintf("/api/authors/%d/follow", writerID), nil, readerToken, nil)
		request(t, app, http.MethodGet, "/api/authors/writer", nil, readerToken, &resp)
		assert.True(t, resp.Following)
	})

	t.Run("suggested excludes followed authors", func(t *testing.T) {
		var suggested []models.User
		status := request(t, app, http.MethodGet, "/api/authors/suggested", nil, readerToken, &suggested)
		require.Equal(t, http.StatusOK, status)
		assert.Empty(t, suggested, "only author is already followed")

		status = request(t, app, http.MethodGet, "/api/authors/suggested", nil, "", &suggested)
		require.Equal(t, http.StatusOK, status)
		assert.Len(t, suggested, 2, "anonymous viewers see everyone")
	})

	t.Run("author post listing", func(t *testing.T) {
		var page pagedResponse
		status := request(t, app, http.MethodGet, "/api/authors/writer/posts", nil, "", &page)
		require.Equal(t, http.StatusOK, status)
		assert.EqualValues(t, 1, page.Total)
	})
}

func TestMyPostsIncludesDrafts(t *testing.T) {
	app, _, _ := newTestApp(t)
	token, _ := signup(t, app, "Author", "author@example.com")

	request(t, app, http.MethodPost, "/api/posts", publishedPayload("Live One"), token, nil)
	request(t, app, http.MethodPost, "/api/posts", map[string]any{"title": "Still Cooking"}, token, nil)

	var page pagedResponse
	status := request(t, app, http.MethodGet, "/api/me/posts", nil, token, &page)
	require.Equal(t, http.StatusOK, status)
	assert.EqualValues(t, 2, page.Total)
}

func TestHealthEndpoints(t *testing.T) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	srv, err := NewServerWithDeps(testConfig(), db, nil)
	require.NoError(t, err)

	app := fiber.New()
	app.Get("/health/live", srv.LivenessCheck)
	app.Get("/health/ready", srv.ReadinessCheck)

	status := request(t, app, http.MethodGet, "/health/live", nil, "", nil)
	assert.Equal(t, http.StatusOK, status)

	var ready struct {
		Status string `json:"status"`
		Checks struct {
			Database string `json:"database"`
			Redis    string `json:"redis"`
		} `json:"checks"`
	}
	status = request(t, app, http.MethodGet, "/health/ready", nil, "", &ready)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "healthy", ready.Status)
	assert.Equal(t, "healthy", ready.Checks.Database)
	assert.Equal(t, "unavailable", ready.Checks.Redis)
}
