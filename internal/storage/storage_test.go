package storage

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/dfryer1193/journal/internal/config"
	"github.com/dfryer1193/journal/shared/kv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpen(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name      string
		cfg       config.StoreConfig
		wantWatch bool
	}{
		{name: "memory", cfg: config.StoreConfig{Backend: config.BackendMemory, Capacity: 64}},
		{name: "sqlite", cfg: config.StoreConfig{Backend: config.BackendSQLite, Capacity: 64, SQLitePath: filepath.Join(t.TempDir(), "journal.db")}, wantWatch: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			be, err := Open(ctx, tt.cfg)
			require.NoError(t, err)
			defer be.Close()

			assert.Equal(t, tt.wantWatch, be.Watch != nil)

			require.NoError(t, be.Store.Put(ctx, "posts", "[]"))
			got, err := be.Store.Get(ctx, "posts")
			require.NoError(t, err)
			assert.Equal(t, "[]", got)

			err = be.Store.Put(ctx, "media_big", string(make([]byte, 128)))
			assert.ErrorIs(t, err, kv.ErrQuotaExceeded, "capacity is applied")
		})
	}
}

func TestOpen_UnknownBackend(t *testing.T) {
	_, err := Open(context.Background(), config.StoreConfig{Backend: "redis"})
	assert.ErrorContains(t, err, "unknown store backend")
}
