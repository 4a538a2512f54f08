package sqlite

import (
	"database/sql"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/dfryer1193/journal/shared/db"
	_ "modernc.org/sqlite"
)

const (
	memoryPath         = ":memory:"
	defaultBusyTimeout = 5 * time.Second
)

type SQLiteConfig struct {
	Path string
	// BusyTimeout is how long a writer waits for another process's lock.
	// Zero means five seconds.
	BusyTimeout time.Duration
}

var _ db.Database = (*SQLiteDB)(nil)

// SQLiteDB is the journal's shared database file.
type SQLiteDB struct {
	cfg SQLiteConfig
	db  *sql.DB
}

func NewSQLiteDB(cfg *SQLiteConfig) *SQLiteDB {
	c := *cfg
	if c.BusyTimeout <= 0 {
		c.BusyTimeout = defaultBusyTimeout
	}
	return &SQLiteDB{cfg: c}
}

func (s *SQLiteDB) Path() string {
	return s.cfg.Path
}

// Connect opens the file, creating its directory if needed, tunes it for
// several processes and applies pending migrations.
func (s *SQLiteDB) Connect() error {
	if s.db != nil {
		return fmt.Errorf("database already connected")
	}

	inMemory := s.cfg.Path == memoryPath
	if !inMemory {
		if err := os.MkdirAll(filepath.Dir(s.cfg.Path), 0o755); err != nil {
			return fmt.Errorf("failed to create directory for %s: %w", s.cfg.Path, err)
		}
	}

	sqlDB, err := sql.Open("sqlite", s.dsn(inMemory))
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	if inMemory {
		sqlDB.SetMaxOpenConns(1)
	}

	if err := sqlDB.Ping(); err != nil {
		sqlDB.Close()
		return fmt.Errorf("failed to ping database: %w", err)
	}

	if err := runMigrations(sqlDB); err != nil {
		sqlDB.Close()
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	s.db = sqlDB
	return nil
}

// dsn carries the pragmas so every pooled connection gets them. File
// databases use WAL so readers in other processes do not block the writer.
func (s *SQLiteDB) dsn(inMemory bool) string {
	q := url.Values{}
	q.Add("_pragma", fmt.Sprintf("busy_timeout(%d)", s.cfg.BusyTimeout.Milliseconds()))
	if !inMemory {
		q.Add("_pragma", "journal_mode(WAL)")
		q.Add("_pragma", "synchronous(NORMAL)")
	}
	return s.cfg.Path + "?" + q.Encode()
}

func (s *SQLiteDB) Close() error {
	if s.db == nil {
		return nil
	}

	err := s.db.Close()
	s.db = nil
	return err
}

// DB returns nil until Connect succeeds.
func (s *SQLiteDB) DB() *sql.DB {
	return s.db
}
