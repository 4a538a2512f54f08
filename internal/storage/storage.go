// Package storage opens the configured key/value backend.
package storage

import (
	"context"
	"fmt"

	"github.com/dfryer1193/journal/blog/persistence"
	"github.com/dfryer1193/journal/internal/config"
	"github.com/dfryer1193/journal/shared/db/sqlite"
	"github.com/dfryer1193/journal/shared/kv"
	"github.com/dfryer1193/journal/shared/kv/natskv"
	"github.com/dfryer1193/journal/shared/kv/sqlitekv"
	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
)

// Backend is an opened store together with its change watcher and cleanup.
type Backend struct {
	Store kv.Store
	// Watch blocks until ctx is done, publishing writes made elsewhere. Nil
	// for backends no other process can write to.
	Watch func(ctx context.Context) error
	Close func() error
}

func Open(ctx context.Context, cfg config.StoreConfig) (*Backend, error) {
	switch cfg.Backend {
	case config.BackendMemory:
		return &Backend{
			Store: kv.NewMemoryStore(int(cfg.Capacity)),
			Close: func() error { return nil },
		}, nil

	case config.BackendSQLite:
		database := sqlite.NewSQLiteDB(&sqlite.SQLiteConfig{Path: cfg.SQLitePath})
		if err := database.Connect(); err != nil {
			return nil, fmt.Errorf("failed to open %s: %w", cfg.SQLitePath, err)
		}
		store := sqlitekv.New(database.DB(), cfg.Capacity)
		return &Backend{
			Store: store,
			Watch: func(ctx context.Context) error { return store.Watch(ctx, database.Path()) },
			Close: database.Close,
		}, nil

	case config.BackendNATS:
		nc, err := nats.Connect(cfg.NATSURL, nats.Name("journal"))
		if err != nil {
			return nil, fmt.Errorf("failed to connect to NATS at %s: %w", cfg.NATSURL, err)
		}
		js, err := jetstream.New(nc)
		if err != nil {
			nc.Close()
			return nil, fmt.Errorf("failed to create JetStream context: %w", err)
		}
		store, err := natskv.Open(ctx, js, natskv.Config{Bucket: cfg.NATSBucket, MaxBytes: cfg.Capacity})
		if err != nil {
			nc.Close()
			return nil, err
		}
		return &Backend{
			Store: store,
			Watch: func(ctx context.Context) error { return store.Watch(ctx, persistence.PostsKey) },
			Close: func() error {
				return nc.Drain()
			},
		}, nil
	}

	return nil, fmt.Errorf("unknown store Backend %q", cfg.Backend)
}
