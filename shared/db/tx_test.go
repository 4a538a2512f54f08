package db

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"
)

var errAbort = errors.New("abort")

func openEntries(t *testing.T) *sql.DB {
	t.Helper()

	sqlDB, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	// Each pooled connection to :memory: would get its own database.
	sqlDB.SetMaxOpenConns(1)

	_, err = sqlDB.Exec(`CREATE TABLE kv_entries (key TEXT PRIMARY KEY, value TEXT NOT NULL)`)
	require.NoError(t, err)
	return sqlDB
}

func putEntry(ctx context.Context, exec Executor, key, value string) error {
	_, err := exec.ExecContext(ctx, `INSERT INTO kv_entries (key, value) VALUES (?, ?)`, key, value)
	return err
}

func storedKeys(t *testing.T, sqlDB *sql.DB) []string {
	t.Helper()

	rows, err := sqlDB.Query(`SELECT key FROM kv_entries ORDER BY key`)
	require.NoError(t, err)
	defer rows.Close()

	keys := []string{}
	for rows.Next() {
		var k string
		require.NoError(t, rows.Scan(&k))
		keys = append(keys, k)
	}
	require.NoError(t, rows.Err())
	return keys
}

func TestRunInTransaction(t *testing.T) {
	tests := []struct {
		name     string
		fn       func(sqlDB *sql.DB) func(context.Context, Executor) error
		wantErr  error
		wantKeys []string
	}{
		{
			name: "commits on success",
			fn: func(*sql.DB) func(context.Context, Executor) error {
				return func(ctx context.Context, exec Executor) error {
					return putEntry(ctx, exec, "posts", "[]")
				}
			},
			wantKeys: []string{"posts"},
		},
		{
			name: "rolls back on error",
			fn: func(*sql.DB) func(context.Context, Executor) error {
				return func(ctx context.Context, exec Executor) error {
					if err := putEntry(ctx, exec, "posts", "[]"); err != nil {
						return err
					}
					return errAbort
				}
			},
			wantErr:  errAbort,
			wantKeys: []string{},
		},
		{
			name: "nested call joins the outer transaction",
			fn: func(sqlDB *sql.DB) func(context.Context, Executor) error {
				return func(ctx context.Context, exec Executor) error {
					if err := putEntry(ctx, exec, "posts", "[]"); err != nil {
						return err
					}
					return RunInTransaction(ctx, sqlDB, func(ctx context.Context, inner Executor) error {
						if inner != exec {
							return errors.New("nested call started a new transaction")
						}
						return putEntry(ctx, inner, "postsVersion", "1")
					})
				}
			},
			wantKeys: []string{"posts", "postsVersion"},
		},
		{
			name: "nested failure discards outer writes",
			fn: func(sqlDB *sql.DB) func(context.Context, Executor) error {
				return func(ctx context.Context, exec Executor) error {
					if err := putEntry(ctx, exec, "posts", "[]"); err != nil {
						return err
					}
					return RunInTransaction(ctx, sqlDB, func(ctx context.Context, inner Executor) error {
						if err := putEntry(ctx, inner, "postsVersion", "1"); err != nil {
							return err
						}
						return errAbort
					})
				}
			},
			wantErr:  errAbort,
			wantKeys: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sqlDB := openEntries(t)

			err := RunInTransaction(context.Background(), sqlDB, tt.fn(sqlDB))
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
			assert.Equal(t, tt.wantKeys, storedKeys(t, sqlDB))
		})
	}
}

func TestGetExecutor(t *testing.T) {
	sqlDB := openEntries(t)
	ctx := context.Background()

	assert.Same(t, sqlDB, GetExecutor(ctx, sqlDB))

	tx, err := sqlDB.BeginTx(ctx, nil)
	require.NoError(t, err)
	defer tx.Rollback()

	got, ok := GetTx(WithTx(ctx, tx))
	require.True(t, ok)
	assert.Same(t, tx, got)
	assert.Same(t, tx, GetExecutor(WithTx(ctx, tx), sqlDB))
}
