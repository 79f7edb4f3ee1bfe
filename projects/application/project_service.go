package application

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	blogapp "github.com/dfryer1193/website/blog/application"
	blog "github.com/dfryer1193/website/blog/domain"
	"github.com/dfryer1193/website/projects/domain"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"
)

type projectsFile struct {
	Projects []*domain.Entry `yaml:"projects" validate:"dive,required"`
}

var entryValidator = newEntryValidator()

func newEntryValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("repo", func(fl validator.FieldLevel) bool {
		_, _, ok := splitRepo(fl.Field().String())
		return ok
	})
	return v
}

// splitRepo splits "owner/name".
func splitRepo(repo string) (owner, name string, ok bool) {
	owner, name, found := strings.Cut(repo, "/")
	if !found || owner == "" || name == "" || strings.Contains(name, "/") {
		return "", "", false
	}
	return owner, name, true
}

// ParseEntries decodes and validates the contents of a projects file.
func ParseEntries(raw []byte) ([]*domain.Entry, error) {
	var file projectsFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("could not parse projects: %w", err)
	}

	if err := entryValidator.Struct(&file); err != nil {
		return nil, fmt.Errorf("invalid projects: %w", err)
	}

	return file.Projects, nil
}

type ProjectService struct {
	source   domain.RepositorySource
	markdown blogapp.MarkdownRenderer
}

// NewProjectService creates a ProjectService. source may be nil, in which case projects are
// built from the projects file alone.
func NewProjectService(source domain.RepositorySource, markdown blogapp.MarkdownRenderer) *ProjectService {
	return &ProjectService{
		source:   source,
		markdown: markdown,
	}
}

// Load reads the projects file at path and enriches every entry with repository metadata.
// A missing file yields no projects.
func (s *ProjectService) Load(ctx context.Context, path string) ([]*domain.Project, error) {
	raw, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		log.Warn().Str("path", path).Msg("Projects file not found, no projects will be shown")
		return []*domain.Project{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("could not read projects file %s: %w", path, err)
	}

	entries, err := ParseEntries(raw)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	projects := make([]*domain.Project, 0, len(entries))
	for _, entry := range entries {
		project, err := s.build(ctx, entry)
		if err != nil {
			return nil, err
		}
		projects = append(projects, project)
	}

	log.Info().Int("count", len(projects)).Str("path", path).Msg("Loaded projects")
	return projects, nil
}

// build fills in a project from its repository. Lookup failures are logged and the project is
// built from what the entry alone provides.
func (s *ProjectService) build(ctx context.Context, entry *domain.Entry) (*domain.Project, error) {
	owner, name, _ := splitRepo(entry.Repo)

	repo := &domain.Repository{
		Owner:     owner,
		URL:       fmt.Sprintf("https://github.com/%s/%s", owner, name),
		Languages: []string{},
	}
	if s.source != nil {
		found, err := s.source.GetRepository(ctx, owner, name)
		if err != nil {
			log.Warn().Err(err).Str("repo", entry.Repo).Msg("Failed to look up project repository")
		} else {
			repo = found
		}
	}

	description := entry.Description
	if strings.TrimSpace(string(description)) == "" {
		description = blog.Markdown(repo.Description)
	}

	rendered, err := s.markdown.Render(description)
	if err != nil {
		return nil, fmt.Errorf("failed to render description of %s: %w", entry.Name, err)
	}

	languages := repo.Languages
	if languages == nil {
		languages = []string{}
	}

	return &domain.Project{
		Name:        entry.Name,
		Owner:       repo.Owner,
		Languages:   languages,
		Description: rendered,
		URL:         repo.URL,
	}, nil
}
