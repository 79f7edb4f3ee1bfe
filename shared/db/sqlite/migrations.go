package sqlite

import (
	"database/sql"
	"fmt"
)

// migration is one versioned schema change, recorded in schema_migrations once applied.
type migration struct {
	version int
	name    string
	up      string
}

// migrations builds the post store: one row per post, unique per (day, slug), plus the FTS4
// table whose docid is the rowid of the matching post.
var migrations = []migration{
	{
		version: 1,
		name:    "create_posts_table",
		up: `
			CREATE TABLE IF NOT EXISTS posts (
				id TEXT PRIMARY KEY,
				title TEXT NOT NULL,
				date TEXT NOT NULL,
				day TEXT NOT NULL,
				slug TEXT NOT NULL,
				url TEXT NOT NULL,
				html TEXT NOT NULL,
				summary TEXT NOT NULL,
				content TEXT NOT NULL,
				categories TEXT NOT NULL DEFAULT '[]',
				tags TEXT NOT NULL DEFAULT '[]'
			);

			CREATE UNIQUE INDEX IF NOT EXISTS idx_posts_day_slug
			ON posts(day, slug);

			CREATE INDEX IF NOT EXISTS idx_posts_date
			ON posts(date DESC);
		`,
	},
	{
		version: 2,
		name:    "create_post_content_index",
		up: `
			CREATE VIRTUAL TABLE IF NOT EXISTS post_content
			USING fts4(title, content);
		`,
	},
}

const createSchemaMigrations = `
	CREATE TABLE IF NOT EXISTS schema_migrations (
		version INTEGER PRIMARY KEY,
		name TEXT NOT NULL,
		applied_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	)
`

// runMigrations brings the schema up to the last version in migrations. Each version is applied
// and recorded in a single transaction.
func runMigrations(db *sql.DB) error {
	if _, err := db.Exec(createSchemaMigrations); err != nil {
		return fmt.Errorf("failed to create schema_migrations table: %w", err)
	}

	var current int
	if err := db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations").Scan(&current); err != nil {
		return fmt.Errorf("failed to get current schema version: %w", err)
	}

	for _, m := range migrations {
		if m.version > current {
			if err := applyMigration(db, m); err != nil {
				return err
			}
		}
	}
	return nil
}

func applyMigration(db *sql.DB, m migration) (err error) {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin migration %d: %w", m.version, err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.Exec(m.up); err != nil {
		return fmt.Errorf("failed to execute migration %d (%s): %w", m.version, m.name, err)
	}
	if _, err = tx.Exec("INSERT INTO schema_migrations (version, name) VALUES (?, ?)", m.version, m.name); err != nil {
		return fmt.Errorf("failed to record migration %d: %w", m.version, err)
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit migration %d: %w", m.version, err)
	}
	return nil
}
