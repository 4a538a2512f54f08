package db

import (
	"context"
	"database/sql"
	"fmt"
)

type txKey struct{}

// Executor is satisfied by both *sql.DB and *sql.Tx.
type Executor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func WithTx(ctx context.Context, tx *sql.Tx) context.Context {
	return context.WithValue(ctx, txKey{}, tx)
}

func GetTx(ctx context.Context) (*sql.Tx, bool) {
	tx, ok := ctx.Value(txKey{}).(*sql.Tx)
	return tx, ok
}

// GetExecutor returns the transaction carried by ctx, falling back to sqlDB.
func GetExecutor(ctx context.Context, sqlDB *sql.DB) Executor {
	if tx, ok := GetTx(ctx); ok {
		return tx
	}
	return sqlDB
}

// RunInTransaction calls fn with an executor bound to a transaction. When ctx
// already carries one, fn joins it and the outer caller decides the outcome.
// Otherwise the transaction commits if fn returns nil and rolls back if not.
func RunInTransaction(ctx context.Context, sqlDB *sql.DB, fn func(ctx context.Context, exec Executor) error) error {
	if tx, ok := GetTx(ctx); ok {
		return fn(ctx, tx)
	}

	tx, err := sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	if err := fn(WithTx(ctx, tx), tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("failed to roll back after %v: %w", err, rbErr)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}
