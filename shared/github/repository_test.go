package github

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/dfryer1193/website/projects/domain"
	"github.com/google/go-github/v75/github"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestSource(t *testing.T, mux *http.ServeMux) *RepositorySource {
	t.Helper()

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	client := github.NewClient(nil)
	baseURL, err := url.Parse(srv.URL + "/")
	require.NoError(t, err)
	client.BaseURL = baseURL

	return NewRepositorySource(client)
}

func TestRepositorySource_GetRepository(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/repos/euclio/website", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{
			"name": "website",
			"owner": {"login": "euclio"},
			"html_url": "https://github.com/euclio/website",
			"description": "My personal website"
		}`)
	})
	mux.HandleFunc("/repos/euclio/website/languages", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"HTML": 2000, "Go": 50000, "CSS": 2000, "Shell": 10}`)
	})

	source := setupTestSource(t, mux)

	repo, err := source.GetRepository(context.Background(), "euclio", "website")
	require.NoError(t, err)

	assert.Equal(t, "euclio", repo.Owner)
	assert.Equal(t, "https://github.com/euclio/website", repo.URL)
	assert.Equal(t, "My personal website", repo.Description)
	assert.Equal(t, []string{"Go", "CSS", "HTML", "Shell"}, repo.Languages)
}

func TestRepositorySource_NotFound(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/repos/euclio/gone", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		fmt.Fprint(w, `{"message": "Not Found"}`)
	})

	source := setupTestSource(t, mux)

	_, err := source.GetRepository(context.Background(), "euclio", "gone")
	assert.ErrorIs(t, err, domain.ErrRepositoryNotFound)
}

func TestRepositorySource_ServerError(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/repos/euclio/website", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		fmt.Fprint(w, `{"message": "oops"}`)
	})

	source := setupTestSource(t, mux)

	_, err := source.GetRepository(context.Background(), "euclio", "website")
	require.Error(t, err)
	assert.NotErrorIs(t, err, domain.ErrRepositoryNotFound)
	assert.Contains(t, err.Error(), "status 500")
}

func TestSortLanguages(t *testing.T) {
	assert.Equal(t, []string{}, sortLanguages(nil))
	assert.Equal(t, []string{"Rust", "C", "Python"}, sortLanguages(map[string]int{"Python": 1, "C": 10, "Rust": 100}))
}

func TestNewClient(t *testing.T) {
	assert.NotNil(t, NewClient(""))
	assert.NotNil(t, NewClient("token"))
}
