package sqlite

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/dfryer1193/website/shared/db"
	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog/log"
	_ "modernc.org/sqlite"
)

const (
	// DefaultPath keeps the store in memory; posts are re-ingested on every start.
	DefaultPath = ":memory:"

	// DriverModernc is the pure Go driver registered by modernc.org/sqlite.
	DriverModernc = "sqlite"
	// DriverCGO is the cgo driver registered by github.com/mattn/go-sqlite3.
	DriverCGO = "sqlite3"
)

type SQLiteConfig struct {
	Path   string
	Driver string
}

// NewSQLiteConfig fills in defaults for empty values.
func NewSQLiteConfig(path, driver string) *SQLiteConfig {
	if path == "" {
		path = DefaultPath
	}
	if driver == "" {
		driver = DriverModernc
	}

	return &SQLiteConfig{
		Path:   path,
		Driver: driver,
	}
}

// SQLiteDB implements the db.Database interface for SQLite
type SQLiteDB struct {
	dbPath string
	driver string
	db     *sql.DB
}

// NewSQLiteDB creates a new SQLite database instance
func NewSQLiteDB(cfg *SQLiteConfig) *SQLiteDB {
	return &SQLiteDB{
		dbPath: cfg.Path,
		driver: cfg.Driver,
	}
}

var _ db.Database = (*SQLiteDB)(nil)

// Connect opens a connection to the SQLite database
func (s *SQLiteDB) Connect() error {
	if s.db != nil {
		return fmt.Errorf("database already connected")
	}

	switch s.driver {
	case DriverModernc, DriverCGO:
	default:
		return fmt.Errorf("unsupported sqlite driver %q", s.driver)
	}

	conn, err := sql.Open(s.driver, s.dbPath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}

	// Every connection to :memory: is a separate database.
	if isInMemory(s.dbPath) {
		conn.SetMaxOpenConns(1)
	}

	// Test the connection
	if err := conn.Ping(); err != nil {
		conn.Close()
		return fmt.Errorf("failed to ping database: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA foreign_keys=ON",
		"PRAGMA busy_timeout=5000",
		"PRAGMA cache_size=-64000",
	}

	for _, pragma := range pragmas {
		if _, err := conn.Exec(pragma); err != nil {
			conn.Close()
			return fmt.Errorf("failed to set pragma %q: %w", pragma, err)
		}
	}

	s.db = conn

	if err := runMigrations(conn); err != nil {
		conn.Close()
		s.db = nil
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	log.Debug().Str("path", s.dbPath).Str("driver", s.driver).Msg("Connected to database")

	return nil
}

// Close closes the database connection
func (s *SQLiteDB) Close() error {
	if s.db == nil {
		return nil
	}

	err := s.db.Close()
	s.db = nil
	return err
}

// DB returns the underlying *sql.DB instance
func (s *SQLiteDB) DB() *sql.DB {
	return s.db
}

func isInMemory(path string) bool {
	return path == ":memory:" || strings.Contains(path, "mode=memory")
}
