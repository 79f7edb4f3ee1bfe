package domain

import (
	"context"
	"errors"

	blog "github.com/dfryer1193/website/blog/domain"
)

// ErrRepositoryNotFound is returned by a RepositorySource that does not know the repository.
var ErrRepositoryNotFound = errors.New("repository not found")

// Project is a project shown on the projects page.
type Project struct {
	Name  string `json:"name"`
	Owner string `json:"owner"`
	// Languages are ordered by the amount of code written in them, most first.
	Languages   []string  `json:"languages"`
	Description blog.HTML `json:"description"`
	URL         string    `json:"url"`
}

// Entry is a project as listed in the projects file.
type Entry struct {
	Name string `yaml:"name" validate:"required"`
	// Repo is the GitHub repository in owner/name form.
	Repo        string        `yaml:"repo" validate:"required,repo"`
	Description blog.Markdown `yaml:"description"`
}

// Repository is what a RepositorySource knows about a repository.
type Repository struct {
	Owner       string
	URL         string
	Description string
	Languages   []string
}

// RepositorySource looks up repositories on a code hosting service.
type RepositorySource interface {
	GetRepository(ctx context.Context, owner, name string) (*Repository, error)
}
