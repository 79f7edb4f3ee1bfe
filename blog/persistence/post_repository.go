package persistence

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dfryer1193/website/blog/domain"
	"github.com/dfryer1193/website/shared/db"
	"github.com/google/uuid"
)

var _ domain.PostRepository = (*SQLitePostRepository)(nil)

const (
	// dateLayout sorts lexically in chronological order.
	dateLayout = time.DateTime
	dayLayout  = time.DateOnly
)

// SQLitePostRepository implements domain.PostRepository using SQL database (SQLite)
type SQLitePostRepository struct {
	db *sql.DB
}

// NewPostRepository creates a new SQLitePostRepository from a standard sql.DB
func NewPostRepository(db *sql.DB) *SQLitePostRepository {
	return &SQLitePostRepository{
		db: db,
	}
}

const countPostsQuery = `SELECT COUNT(*) FROM posts`

const insertPostQuery = `
	INSERT INTO posts (id, title, date, day, slug, url, html, summary, content, categories, tags)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
`

const insertPostContentQuery = `
	INSERT INTO post_content (docid, title, content)
	VALUES (?, ?, ?)
`

const optimizePostContentQuery = `INSERT INTO post_content(post_content) VALUES ('optimize')`

// Ingest stores every post and indexes its title and Markdown content for search, all in one
// transaction. It fails with domain.ErrAlreadyIngested if the store is not empty.
func (r *SQLitePostRepository) Ingest(ctx context.Context, posts []*domain.NewPost) error {
	return db.RunInTransaction(ctx, r.db, func(txCtx context.Context) error {
		executor := db.GetExecutor(txCtx, r.db)

		var existing int
		if err := executor.QueryRowContext(txCtx, countPostsQuery).Scan(&existing); err != nil {
			return fmt.Errorf("failed to count posts: %w", err)
		}
		if existing > 0 {
			return fmt.Errorf("%w: %d posts present", domain.ErrAlreadyIngested, existing)
		}

		for _, p := range posts {
			if err := insertPost(txCtx, executor, p); err != nil {
				return err
			}
		}

		if _, err := executor.ExecContext(txCtx, optimizePostContentQuery); err != nil {
			return fmt.Errorf("failed to optimize post content index: %w", err)
		}

		return nil
	})
}

func insertPost(ctx context.Context, executor db.Executor, p *domain.NewPost) error {
	if p == nil {
		return fmt.Errorf("post cannot be nil")
	}

	categories, err := json.Marshal(nonNil(p.Categories))
	if err != nil {
		return fmt.Errorf("failed to encode categories of %s: %w", p.URL, err)
	}
	tags, err := json.Marshal(nonNil(p.Tags))
	if err != nil {
		return fmt.Errorf("failed to encode tags of %s: %w", p.URL, err)
	}

	day := p.Date.Format(dayLayout)
	res, err := executor.ExecContext(ctx, insertPostQuery,
		uuid.NewString(),
		p.Title,
		p.Date.Format(dateLayout),
		day,
		p.Slug,
		p.URL,
		string(p.HTML),
		string(p.Summary),
		string(p.Content),
		string(categories),
		string(tags),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: %s on %s: %v", domain.ErrDuplicatePost, p.Slug, day, err)
		}
		return fmt.Errorf("failed to insert post %s: %w", p.URL, err)
	}

	docID, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get row id of post %s: %w", p.URL, err)
	}

	if _, err := executor.ExecContext(ctx, insertPostContentQuery, docID, p.Title, string(p.Content)); err != nil {
		return fmt.Errorf("failed to index post %s: %w", p.URL, err)
	}

	return nil
}

// Count returns the number of stored posts.
func (r *SQLitePostRepository) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.db.QueryRowContext(ctx, countPostsQuery).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count posts: %w", err)
	}
	return count, nil
}

const findPostQuery = `
	SELECT id, title, date, html, summary, url, slug, content, categories, tags
	FROM posts
	WHERE day = ? AND slug = ?
`

// FindBySlugAndDate returns the post with the given slug written on the calendar day of date.
func (r *SQLitePostRepository) FindBySlugAndDate(ctx context.Context, date time.Time, slug string) (*domain.Post, error) {
	var row postRow
	err := r.db.QueryRowContext(ctx, findPostQuery, date.Format(dayLayout), slug).Scan(
		&row.ID,
		&row.Title,
		&row.Date,
		&row.HTML,
		&row.Summary,
		&row.URL,
		&row.Slug,
		&row.Content,
		&row.Categories,
		&row.Tags,
	)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrPostNotFound
	}

	if err != nil {
		return nil, fmt.Errorf("failed to get post: %w", err)
	}

	return row.toDomain()
}

const previousPostQuery = `
	SELECT title, url
	FROM posts
	WHERE date < ?
	ORDER BY date DESC
	LIMIT 1
`

const nextPostQuery = `
	SELECT title, url
	FROM posts
	WHERE date > ?
	ORDER BY date ASC
	LIMIT 1
`

// Adjacent returns the latest post strictly before date and the earliest post strictly after
// it. Either is nil at the ends of the timeline. Among posts sharing a timestamp, which one is
// returned is unspecified.
func (r *SQLitePostRepository) Adjacent(ctx context.Context, date time.Time) (*domain.PostLink, *domain.PostLink, error) {
	key := date.Format(dateLayout)

	previous, err := r.findLink(ctx, previousPostQuery, key)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get previous post: %w", err)
	}

	next, err := r.findLink(ctx, nextPostQuery, key)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get next post: %w", err)
	}

	return previous, next, nil
}

func (r *SQLitePostRepository) findLink(ctx context.Context, query string, key string) (*domain.PostLink, error) {
	var link domain.PostLink
	err := r.db.QueryRowContext(ctx, query, key).Scan(&link.Title, &link.URL)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &link, nil
}

const listSummariesQuery = `
	SELECT title, date, summary, url, slug
	FROM posts
	ORDER BY date DESC
	LIMIT ?
`

// ListSummaries returns post summaries, most recent first. A limit <= 0 returns all posts.
func (r *SQLitePostRepository) ListSummaries(ctx context.Context, limit int) ([]*domain.Summary, error) {
	if limit <= 0 {
		limit = -1 // no limit in SQLite
	}

	rows, err := r.db.QueryContext(ctx, listSummariesQuery, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list summaries: %w", err)
	}

	summaries, err := scanSummaries(rows)
	if err != nil {
		return nil, fmt.Errorf("failed to list summaries: %w", err)
	}
	return summaries, nil
}

const searchSummariesQuery = `
	SELECT title, date, summary, url, slug
	FROM posts
	WHERE rowid IN (
		SELECT docid
		FROM post_content
		WHERE post_content MATCH ?
	)
	ORDER BY date DESC
`

// Search returns summaries of posts whose title or content match the full-text query.
func (r *SQLitePostRepository) Search(ctx context.Context, query string) ([]*domain.Summary, error) {
	rows, err := r.db.QueryContext(ctx, searchSummariesQuery, query)
	if err != nil {
		return nil, searchError(query, err)
	}

	summaries, err := scanSummaries(rows)
	if err != nil {
		return nil, searchError(query, err)
	}
	return summaries, nil
}

func searchError(query string, err error) error {
	if isMalformedMatch(err) {
		return fmt.Errorf("%w %q: %v", domain.ErrInvalidQuery, query, err)
	}
	return fmt.Errorf("failed to search posts: %w", err)
}

func scanSummaries(rows *sql.Rows) ([]*domain.Summary, error) {
	defer rows.Close()

	summaries := make([]*domain.Summary, 0)
	for rows.Next() {
		var (
			s    domain.Summary
			date string
		)
		if err := rows.Scan(&s.Title, &date, &s.Summary, &s.URL, &s.Slug); err != nil {
			return nil, fmt.Errorf("failed to scan summary row: %w", err)
		}

		parsed, err := time.Parse(dateLayout, date)
		if err != nil {
			return nil, fmt.Errorf("invalid date %q for %s: %w", date, s.URL, err)
		}
		s.Date = parsed

		summaries = append(summaries, &s)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating summary rows: %w", err)
	}

	return summaries, nil
}

// postRow is a private struct used to scan database rows
type postRow struct {
	ID         string `db:"id"`
	Title      string `db:"title"`
	Date       string `db:"date"`
	HTML       string `db:"html"`
	Summary    string `db:"summary"`
	URL        string `db:"url"`
	Slug       string `db:"slug"`
	Content    string `db:"content"`
	Categories string `db:"categories"`
	Tags       string `db:"tags"`
}

// toDomain converts a postRow to a domain.Post, decoding the date and the JSON list columns
func (pr *postRow) toDomain() (*domain.Post, error) {
	date, err := time.Parse(dateLayout, pr.Date)
	if err != nil {
		return nil, fmt.Errorf("invalid date %q for post %s: %w", pr.Date, pr.ID, err)
	}

	post := &domain.Post{
		ID:      pr.ID,
		Title:   pr.Title,
		Date:    date,
		HTML:    domain.HTML(pr.HTML),
		Summary: domain.HTML(pr.Summary),
		URL:     pr.URL,
		Slug:    pr.Slug,
		Content: domain.Markdown(pr.Content),
	}

	if err := json.Unmarshal([]byte(pr.Categories), &post.Categories); err != nil {
		return nil, fmt.Errorf("invalid categories for post %s: %w", pr.ID, err)
	}
	if err := json.Unmarshal([]byte(pr.Tags), &post.Tags); err != nil {
		return nil, fmt.Errorf("invalid tags for post %s: %w", pr.ID, err)
	}

	return post, nil
}

func nonNil(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}

// isUniqueViolation matches the message both sqlite drivers report for UNIQUE failures.
func isUniqueViolation(err error) bool {
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}

func isMalformedMatch(err error) bool {
	return strings.Contains(err.Error(), "malformed MATCH expression")
}
