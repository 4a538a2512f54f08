// Package sqlitekv implements kv.Store on a SQLite file so several processes on
// one host can share journal state.
package sqlitekv

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/dfryer1193/journal/shared/db"
	"github.com/dfryer1193/journal/shared/kv"
)

var _ kv.Store = (*Store)(nil)

// Store implements kv.Store on the kv_entries table.
type Store struct {
	db       *sql.DB
	capacity int64
	notifier *kv.Notifier

	// lastSeen holds the latest value of each watched key known to this
	// process, so Watch only publishes writes made elsewhere.
	mu       sync.Mutex
	lastSeen map[string]string
}

// New creates a Store. A capacity <= 0 disables the quota.
func New(sqlDB *sql.DB, capacity int64) *Store {
	return &Store{
		db:       sqlDB,
		capacity: capacity,
		notifier: kv.NewNotifier(),
		lastSeen: make(map[string]string),
	}
}

const usedBytesQuery = `
	SELECT COALESCE(SUM(LENGTH(CAST(key AS BLOB)) + LENGTH(CAST(value AS BLOB))), 0)
	FROM kv_entries
	WHERE key != ?
`

const upsertEntryQuery = `
	INSERT INTO kv_entries (key, value, updated_at)
	VALUES (?, ?, ?)
	ON CONFLICT(key) DO UPDATE SET
		value = excluded.value,
		updated_at = excluded.updated_at
`

// Put writes value under key. The capacity check and the write happen in one
// transaction.
func (s *Store) Put(ctx context.Context, key, value string) error {
	if key == "" {
		return fmt.Errorf("kv: key cannot be empty")
	}

	err := db.RunInTransaction(ctx, s.db, func(txCtx context.Context, exec db.Executor) error {
		if s.capacity > 0 {
			var used int64
			if err := exec.QueryRowContext(txCtx, usedBytesQuery, key).Scan(&used); err != nil {
				return fmt.Errorf("failed to compute store usage: %w", err)
			}
			total := used + int64(len(key)+len(value))
			if total > s.capacity {
				return fmt.Errorf("failed to write %q (%d of %d bytes): %w", key, total, s.capacity, kv.ErrQuotaExceeded)
			}
		}

		if _, err := exec.ExecContext(txCtx, upsertEntryQuery, key, value, time.Now().UTC()); err != nil {
			return fmt.Errorf("failed to upsert entry: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.remember(key, value)
	s.notifier.Publish(kv.Change{Key: key, Value: value})
	return nil
}

const getEntryQuery = `SELECT value FROM kv_entries WHERE key = ?`

func (s *Store) Get(ctx context.Context, key string) (string, error) {
	var value string
	err := s.db.QueryRowContext(ctx, getEntryQuery, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", kv.ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("failed to get entry %q: %w", key, err)
	}
	return value, nil
}

const deleteEntryQuery = `DELETE FROM kv_entries WHERE key = ?`

func (s *Store) Remove(ctx context.Context, key string) error {
	if _, err := s.db.ExecContext(ctx, deleteEntryQuery, key); err != nil {
		return fmt.Errorf("failed to delete entry %q: %w", key, err)
	}
	s.forget(key)
	return nil
}

const listKeysQuery = `SELECT key FROM kv_entries ORDER BY key`

func (s *Store) Keys(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, listKeysQuery)
	if err != nil {
		return nil, fmt.Errorf("failed to list keys: %w", err)
	}
	defer rows.Close()

	keys := make([]string, 0)
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, fmt.Errorf("failed to scan key: %w", err)
		}
		keys = append(keys, key)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating keys: %w", err)
	}
	return keys, nil
}

func (s *Store) Subscribe(key string, fn func(kv.Change)) func() {
	return s.notifier.Subscribe(key, fn)
}

func (s *Store) remember(key, value string) {
	if !s.notifier.Watched(key) {
		return
	}
	s.mu.Lock()
	s.lastSeen[key] = value
	s.mu.Unlock()
}

func (s *Store) forget(key string) {
	s.mu.Lock()
	delete(s.lastSeen, key)
	s.mu.Unlock()
}
