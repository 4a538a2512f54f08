package db

import (
	"database/sql"
)

// Database is a file-backed connection that brings its schema up to date on
// Connect.
type Database interface {
	Connect() error
	Close() error
	DB() *sql.DB
	// Path is the file other processes open to share the same state.
	Path() string
}
