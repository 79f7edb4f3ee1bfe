package rest

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/dfryer1193/website/api"
	"github.com/dfryer1193/website/blog/domain"
	"github.com/dfryer1193/website/internal/site"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var postDate = time.Date(2018, time.June, 15, 15, 0, 0, 0, time.UTC)

type fakePosts struct {
	err        error
	limit      int
	query      string
	getPostErr error
	slug       string
}

func (f *fakePosts) Summaries(_ context.Context, limit int) ([]*domain.Summary, error) {
	f.limit = limit
	if f.err != nil {
		return nil, f.err
	}
	return []*domain.Summary{{
		Title:   "Hello World",
		Date:    postDate,
		URL:     "/blog/2018/6/15/hello-world",
		Summary: `<p>Hi</p>… <a href="/blog/2018/6/15/hello-world">Continue→</a>`,
	}}, nil
}

func (f *fakePosts) GetPost(_ context.Context, year, month, day int, slug string) (*domain.Post, error) {
	f.slug = slug
	if f.getPostErr != nil {
		return nil, f.getPostErr
	}
	if year != 2018 || month != 6 || day != 15 || slug != "hello-world" {
		return nil, domain.ErrPostNotFound
	}
	return &domain.Post{
		Title:    "Hello World",
		Date:     postDate,
		URL:      "/blog/2018/6/15/hello-world",
		HTML:     "<p>Hi <em>there</em></p>",
		Tags:     []string{"intro"},
		Previous: &domain.PostLink{Title: "Older", URL: "/blog/2017/3/1/older"},
	}, nil
}

func (f *fakePosts) Search(_ context.Context, query string) ([]*domain.Summary, error) {
	f.query = query
	if f.err != nil {
		return nil, f.err
	}
	if query == "hello" {
		return f.Summaries(context.Background(), 0)
	}
	return []*domain.Summary{}, nil
}

func setupRouter(t *testing.T, posts *fakePosts) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	staticDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(staticDir, "robots.txt"), []byte("User-agent: *\n"), 0o644))
	slideshow := filepath.Join(staticDir, "images", "slideshow")
	require.NoError(t, os.MkdirAll(slideshow, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(slideshow, "hike.jpg"), []byte("jpg"), 0o644))

	s, err := site.New(posts,
		site.WithResumeLink("https://example.com/resume.pdf"),
		site.WithStaticDir(staticDir),
	)
	require.NoError(t, err)

	return NewRouter(s, posts, staticDir)
}

func get(router *gin.Engine, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	return w
}

func TestPages(t *testing.T) {
	tests := []struct {
		name     string
		path     string
		status   int
		contains string
	}{
		{"index", "/", http.StatusOK, "Recent posts"},
		{"blog", "/blog", http.StatusOK, "Hello World"},
		{"post", "/blog/2018/6/15/hello-world", http.StatusOK, "<p>Hi <em>there</em></p>"},
		{"search", "/blog/search?q=hello", http.StatusOK, "Hello World"},
		{"empty search", "/blog/search?q=nothing", http.StatusOK, "No posts found."},
		{"projects", "/projects", http.StatusOK, "Projects"},
		{"resume", "/resume", http.StatusOK, "https://example.com/resume.pdf"},
		{"about", "/about", http.StatusOK, `src="/static/images/slideshow/hike.jpg"`},
		{"slideshow image", "/static/images/slideshow/hike.jpg", http.StatusOK, "jpg"},
		{"static", "/robots.txt", http.StatusOK, "User-agent"},
		{"unknown post", "/blog/2018/6/15/nope", http.StatusNotFound, "Page not found"},
		{"non numeric date", "/blog/2018/june/15/hello-world", http.StatusNotFound, "Page not found"},
		{"impossible date", "/blog/2018/2/30/hello-world", http.StatusNotFound, "Page not found"},
		{"unknown route", "/about/me", http.StatusNotFound, "Page not found"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := setupRouter(t, &fakePosts{})

			w := get(router, tt.path)
			assert.Equal(t, tt.status, w.Code)
			assert.Contains(t, w.Body.String(), tt.contains)
		})
	}
}

func TestPages_SlugParam(t *testing.T) {
	tests := []struct {
		path string
		slug string
	}{
		{"/blog/2018/6/15/hello-world", "hello-world"},
		{"/blog/2018/6/15/either/or", "either/or"},
		{"/blog/2018/6/15/100%25-done", "100%-done"},
		{"/blog/2018/6/15/why%3F", "why?"},
		{"/posts/v1/2018/6/15/either/or", "either/or"},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			posts := &fakePosts{}
			router := setupRouter(t, posts)

			get(router, tt.path)
			assert.Equal(t, tt.slug, posts.slug)
		})
	}
}

func TestPages_StoreFailure(t *testing.T) {
	router := setupRouter(t, &fakePosts{err: errors.New("store down"), getPostErr: errors.New("store down")})

	for _, path := range []string{"/", "/blog", "/blog/search?q=x", "/blog/2018/6/15/hello-world"} {
		w := get(router, path)
		assert.Equal(t, http.StatusInternalServerError, w.Code, path)
		assert.Contains(t, w.Body.String(), "Something went wrong", path)
		assert.NotContains(t, w.Body.String(), "store down", path)
	}
}

func TestApi_GetPosts(t *testing.T) {
	posts := &fakePosts{}
	router := setupRouter(t, posts)

	w := get(router, "/posts/v1/?limit=5")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 5, posts.limit)

	var list api.SummaryList
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	require.Len(t, list.Posts, 1)
	assert.Equal(t, "Hello World", list.Posts[0].Title)
	assert.Equal(t, "/blog/2018/6/15/hello-world", list.Posts[0].URL)
	assert.True(t, list.Posts[0].Date.Equal(postDate))
}

func TestApi_GetPostsBadLimit(t *testing.T) {
	router := setupRouter(t, &fakePosts{})

	for _, limit := range []string{"abc", "-1"} {
		w := get(router, "/posts/v1/?limit="+limit)
		assert.Equal(t, http.StatusBadRequest, w.Code, limit)
	}
}

func TestApi_SearchPosts(t *testing.T) {
	posts := &fakePosts{}
	router := setupRouter(t, posts)

	w := get(router, "/posts/v1/search?q=hello")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "hello", posts.query)

	var list api.SummaryList
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	assert.Equal(t, "hello", list.Query)
	assert.Len(t, list.Posts, 1)

	w = get(router, "/posts/v1/search?q=nothing")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"query": "nothing", "posts": []}`, w.Body.String())
}

func TestApi_GetPost(t *testing.T) {
	router := setupRouter(t, &fakePosts{})

	w := get(router, "/posts/v1/2018/6/15/hello-world")
	require.Equal(t, http.StatusOK, w.Code)

	var post api.Post
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &post))
	assert.Equal(t, "Hello World", post.Title)
	assert.Equal(t, "<p>Hi <em>there</em></p>", post.HTML)
	assert.Equal(t, []string{"intro"}, post.Tags)
	require.NotNil(t, post.Previous)
	assert.Equal(t, "/blog/2017/3/1/older", post.Previous.URL)
	assert.Nil(t, post.Next)
}

func TestApi_GetPostErrors(t *testing.T) {
	tests := []struct {
		name   string
		posts  *fakePosts
		path   string
		status int
	}{
		{"not found", &fakePosts{}, "/posts/v1/2018/6/15/nope", http.StatusNotFound},
		{"bad year", &fakePosts{}, "/posts/v1/twenty/6/15/hello-world", http.StatusNotFound},
		{"store failure", &fakePosts{getPostErr: errors.New("store down")}, "/posts/v1/2018/6/15/hello-world", http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := setupRouter(t, tt.posts)

			w := get(router, tt.path)
			assert.Equal(t, tt.status, w.Code)

			var body api.Error
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.NotEmpty(t, body.Error)
			assert.NotContains(t, body.Error, "store down")
		})
	}
}
