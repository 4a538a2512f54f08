// Package kv provides the size-bounded string key/value store that backs all
// journal state, together with change notification for shared stores.
package kv

import (
	"context"
	"errors"
)

var (
	// ErrNotFound is returned by Get when a key is absent.
	ErrNotFound = errors.New("kv: key not found")

	// ErrQuotaExceeded is returned by Put when the value does not fit.
	ErrQuotaExceeded = errors.New("kv: quota exceeded")
)

// Store is a synchronous string store. A successful Put is immediately
// visible to subsequent Gets and is published to the key's subscribers.
type Store interface {
	Put(ctx context.Context, key, value string) error
	Get(ctx context.Context, key string) (string, error)
	// Remove deletes key. Removing an absent key is not an error.
	Remove(ctx context.Context, key string) error
	Keys(ctx context.Context) ([]string, error)
	// Subscribe registers fn for changes to key and returns a func that
	// removes the registration.
	Subscribe(key string, fn func(Change)) (unsubscribe func())
}

// Change is published after a successful write to a key.
type Change struct {
	Key   string
	Value string
	// External is set when the write happened in another process or host.
	External bool
}
