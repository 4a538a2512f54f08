package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dfryer1193/journal/shared/db"
)

type migration struct {
	version int
	name    string
	up      string
}

// migrations run in version order. A version is recorded in the same
// transaction that applies it.
var migrations = []migration{
	{
		version: 1,
		name:    "create_kv_entries_table",
		up: `
			CREATE TABLE IF NOT EXISTS kv_entries (
				key TEXT PRIMARY KEY,
				value TEXT NOT NULL,
				updated_at TIMESTAMP NOT NULL
			);
		`,
	},
	{
		version: 2,
		name:    "index_kv_entries_updated_at",
		up: `
			CREATE INDEX IF NOT EXISTS idx_kv_entries_updated_at
			ON kv_entries(updated_at DESC);
		`,
	},
}

const createMigrationsTable = `
	CREATE TABLE IF NOT EXISTS schema_migrations (
		version INTEGER PRIMARY KEY,
		name TEXT NOT NULL,
		applied_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	)
`

func runMigrations(sqlDB *sql.DB) error {
	ctx := context.Background()

	if _, err := sqlDB.ExecContext(ctx, createMigrationsTable); err != nil {
		return fmt.Errorf("failed to create schema_migrations table: %w", err)
	}

	for _, m := range migrations {
		err := db.RunInTransaction(ctx, sqlDB, func(ctx context.Context, exec db.Executor) error {
			// Another process may have applied m since we last looked.
			var applied int
			if err := exec.QueryRowContext(ctx, "SELECT COUNT(*) FROM schema_migrations WHERE version = ?", m.version).Scan(&applied); err != nil {
				return fmt.Errorf("failed to check migration %d: %w", m.version, err)
			}
			if applied > 0 {
				return nil
			}

			if _, err := exec.ExecContext(ctx, m.up); err != nil {
				return fmt.Errorf("failed to execute migration %d (%s): %w", m.version, m.name, err)
			}
			if _, err := exec.ExecContext(ctx, "INSERT INTO schema_migrations (version, name) VALUES (?, ?)", m.version, m.name); err != nil {
				return fmt.Errorf("failed to record migration %d: %w", m.version, err)
			}
			return nil
		})
		if err != nil {
			return err
		}
	}

	return nil
}
