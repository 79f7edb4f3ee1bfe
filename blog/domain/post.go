package domain

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// Markdown is raw, unrendered post content.
type Markdown string

// HTML is markup produced by the renderer or the summarizer.
// Keeping it distinct from Markdown makes mixing the two a compile error.
type HTML string

// ParsedPost is a post source file split into its front matter and Markdown content.
// It only lives for the duration of an ingestion run.
type ParsedPost struct {
	Source     string
	Title      string
	Date       time.Time
	Categories []string
	Tags       []string
	Content    Markdown
}

// Slug returns the URL component that disambiguates posts written on the same day.
func (p *ParsedPost) Slug() string {
	return Slug(p.Title)
}

// URL returns the canonical relative path of the post.
func (p *ParsedPost) URL() string {
	return PostURL(p.Date, p.Slug())
}

// NewPost is a parsed post enriched with rendered HTML and a summary, ready for ingestion.
type NewPost struct {
	Title      string
	Date       time.Time
	HTML       HTML
	Summary    HTML
	URL        string
	Slug       string
	Categories []string
	Tags       []string
	Content    Markdown
}

// Post is a blog post as stored and served.
// Previous and Next are filled in by the service from adjacency queries, they are never persisted.
type Post struct {
	ID         string
	Title      string
	Date       time.Time
	HTML       HTML
	Summary    HTML
	URL        string
	Slug       string
	Categories []string
	Tags       []string
	Content    Markdown

	Previous *PostLink
	Next     *PostLink
}

// PostLink is the information needed to link to a post.
type PostLink struct {
	Title string `json:"title"`
	URL   string `json:"url"`
}

// Summary is a short preview of a post for listing pages.
type Summary struct {
	Title   string    `json:"title"`
	Date    time.Time `json:"date"`
	Summary HTML      `json:"summary"`
	URL     string    `json:"url"`
	Slug    string    `json:"slug"`
}

// PostRepository is the post store.
//
// Ingest is expected to run exactly once per store, before any reads. Re-ingesting into a store
// that already holds posts fails with ErrAlreadyIngested instead of merging.
type PostRepository interface {
	Ingest(ctx context.Context, posts []*NewPost) error
	Count(ctx context.Context) (int, error)

	FindBySlugAndDate(ctx context.Context, date time.Time, slug string) (*Post, error)
	Adjacent(ctx context.Context, date time.Time) (previous *PostLink, next *PostLink, err error)
	ListSummaries(ctx context.Context, limit int) ([]*Summary, error)
	Search(ctx context.Context, query string) ([]*Summary, error)
}

// Slug lowercases the title and replaces spaces with hyphens.
func Slug(title string) string {
	return strings.ReplaceAll(strings.ToLower(title), " ", "-")
}

// PostURL builds /blog/{year}/{month}/{day}/{slug} with unpadded date components.
func PostURL(date time.Time, slug string) string {
	return fmt.Sprintf("/blog/%d/%d/%d/%s", date.Year(), int(date.Month()), date.Day(), slug)
}
