package github

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sort"

	"github.com/dfryer1193/website/projects/domain"
	"github.com/google/go-github/v75/github"
)

var _ domain.RepositorySource = (*RepositorySource)(nil)

// RepositorySource is an implementation of domain.RepositorySource that uses the GitHub API.
type RepositorySource struct {
	client *github.Client
}

// NewClient returns a GitHub client, authenticated when token is not empty.
func NewClient(token string) *github.Client {
	client := github.NewClient(nil)
	if token != "" {
		client = client.WithAuthToken(token)
	}
	return client
}

// NewRepositorySource creates a new RepositorySource.
func NewRepositorySource(client *github.Client) *RepositorySource {
	return &RepositorySource{
		client: client,
	}
}

// GetRepository fetches the repository metadata and its languages.
func (g *RepositorySource) GetRepository(ctx context.Context, owner, name string) (*domain.Repository, error) {
	op := fmt.Sprintf("getting repository %s/%s", owner, name)
	repo, _, err := g.client.Repositories.Get(ctx, owner, name)
	if err != nil {
		return nil, handleGithubError(op, err)
	}

	languages, err := g.ListLanguages(ctx, owner, name)
	if err != nil {
		return nil, err
	}

	return &domain.Repository{
		Owner:       repo.GetOwner().GetLogin(),
		URL:         repo.GetHTMLURL(),
		Description: repo.GetDescription(),
		Languages:   languages,
	}, nil
}

// ListLanguages returns the languages of a repository, ordered by bytes of code descending.
func (g *RepositorySource) ListLanguages(ctx context.Context, owner, name string) ([]string, error) {
	op := fmt.Sprintf("listing languages for %s/%s", owner, name)
	bytesByLanguage, _, err := g.client.Repositories.ListLanguages(ctx, owner, name)
	if err != nil {
		return nil, handleGithubError(op, err)
	}

	return sortLanguages(bytesByLanguage), nil
}

func sortLanguages(bytesByLanguage map[string]int) []string {
	languages := make([]string, 0, len(bytesByLanguage))
	for language := range bytesByLanguage {
		languages = append(languages, language)
	}

	sort.Slice(languages, func(i, j int) bool {
		a, b := languages[i], languages[j]
		if bytesByLanguage[a] != bytesByLanguage[b] {
			return bytesByLanguage[a] > bytesByLanguage[b]
		}
		return a < b
	})
	return languages
}

// handleGithubError inspects an error from the go-github client and returns a more informative, structured error.
func handleGithubError(op string, err error) error {
	if err == nil {
		return nil
	}

	var errResp *github.ErrorResponse
	if errors.As(err, &errResp) {
		var status int
		if errResp.Response != nil {
			status = errResp.Response.StatusCode
		}
		if status == http.StatusNotFound {
			return fmt.Errorf("github: %s: %w", op, domain.ErrRepositoryNotFound)
		}
		return fmt.Errorf("github: %s failed with status %d: %s", op, status, errResp.Message)
	}

	return fmt.Errorf("github: %s failed: %w", op, err)
}
