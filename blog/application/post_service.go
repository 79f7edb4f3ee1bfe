package application

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/dfryer1193/website/blog/domain"
	"github.com/rs/zerolog/log"
)

type PostService struct {
	repo     domain.PostRepository
	markdown MarkdownRenderer
}

func NewPostService(repo domain.PostRepository, markdown MarkdownRenderer) *PostService {
	return &PostService{
		repo:     repo,
		markdown: markdown,
	}
}

// Load parses every post in dir and ingests them into the store in one batch.
// Any file that fails to parse or render aborts the whole load; nothing is stored in that case.
// Load must run once, against an empty store, before the store is queried.
func (s *PostService) Load(ctx context.Context, dir string) (int, error) {
	parsed, err := ParsePosts(dir)
	if err != nil {
		return 0, err
	}
	log.Info().Int("count", len(parsed)).Str("dir", dir).Msg("Parsed blog posts")

	posts := make([]*domain.NewPost, 0, len(parsed))
	for _, p := range parsed {
		post, err := s.enrich(p)
		if err != nil {
			return 0, err
		}
		posts = append(posts, post)
	}

	if err := s.repo.Ingest(ctx, posts); err != nil {
		return 0, fmt.Errorf("failed to ingest posts from %s: %w", dir, err)
	}
	log.Info().Int("count", len(posts)).Msg("Indexed blog posts")

	return len(posts), nil
}

// enrich renders a parsed post and derives everything the store needs from it.
func (s *PostService) enrich(p *domain.ParsedPost) (*domain.NewPost, error) {
	rendered, err := s.markdown.Render(p.Content)
	if err != nil {
		return nil, fmt.Errorf("failed to render %s: %w", p.Source, err)
	}

	url := p.URL()
	return &domain.NewPost{
		Title:      p.Title,
		Date:       p.Date,
		HTML:       rendered,
		Summary:    Summarize(rendered, url),
		URL:        url,
		Slug:       p.Slug(),
		Categories: p.Categories,
		Tags:       p.Tags,
		Content:    p.Content,
	}, nil
}

// ParsePosts parses every regular file in dir, in file name order.
// Hidden files and subdirectories are skipped.
func ParsePosts(dir string) ([]*domain.ParsedPost, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("could not read blog posts directory %s: %w", dir, err)
	}

	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })

	posts := make([]*domain.ParsedPost, 0, len(entries))
	for _, entry := range entries {
		if !isPostFile(entry) {
			continue
		}

		path := filepath.Join(dir, entry.Name())
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("could not read blog post %s: %w", path, err)
		}

		post, err := ParsePost(path, raw)
		if err != nil {
			log.Error().Err(err).Str("path", path).Msg("Failed to parse post")
			return nil, err
		}
		posts = append(posts, post)
	}

	return posts, nil
}

// isPostFile checks if a directory entry is a post source file
func isPostFile(entry os.DirEntry) bool {
	return entry.Type().IsRegular() && !strings.HasPrefix(entry.Name(), ".")
}

// GetPost returns the post written on the given day with the given slug, with links to its
// chronological neighbours. It returns domain.ErrPostNotFound if there is no such post.
func (s *PostService) GetPost(ctx context.Context, year, month, day int, slug string) (*domain.Post, error) {
	date, ok := calendarDate(year, month, day)
	if !ok {
		return nil, domain.ErrPostNotFound
	}

	post, err := s.repo.FindBySlugAndDate(ctx, date, slug)
	if err != nil {
		return nil, err
	}

	post.Previous, post.Next, err = s.repo.Adjacent(ctx, post.Date)
	if err != nil {
		return nil, fmt.Errorf("failed to find posts adjacent to %s: %w", post.URL, err)
	}

	return post, nil
}

// Summaries returns the most recent limit summaries, newest first. A limit <= 0 returns all.
func (s *PostService) Summaries(ctx context.Context, limit int) ([]*domain.Summary, error) {
	return s.repo.ListSummaries(ctx, limit)
}

// Search returns summaries of posts whose title or content match query.
// A blank or unparseable query matches nothing.
func (s *PostService) Search(ctx context.Context, query string) ([]*domain.Summary, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return []*domain.Summary{}, nil
	}

	results, err := s.repo.Search(ctx, query)
	if errors.Is(err, domain.ErrInvalidQuery) {
		log.Debug().Err(err).Str("query", query).Msg("Ignoring invalid search query")
		return []*domain.Summary{}, nil
	}
	return results, err
}

// calendarDate rejects dates time.Date would silently normalise, such as February 30th.
func calendarDate(year, month, day int) (time.Time, bool) {
	date := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	if date.Year() != year || int(date.Month()) != month || date.Day() != day {
		return time.Time{}, false
	}
	return date, true
}
