package db

import (
	"database/sql"
)

// Database owns a connection pool and the schema migrations run against it.
type Database interface {
	Connect() error
	Close() error
	DB() *sql.DB
}
