// Package natskv implements kv.Store on a NATS JetStream key/value bucket so
// several hosts can share journal state.
package natskv

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/dfryer1193/journal/shared/kv"
	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
	"github.com/rs/zerolog/log"
)

var _ kv.Store = (*Store)(nil)

// Config describes the bucket backing the store.
type Config struct {
	Bucket string
	// MaxBytes bounds the bucket; it is the store's quota. <= 0 means unlimited.
	MaxBytes int64
}

// Store implements kv.Store on a JetStream KV bucket. Keys are stored as-is;
// journal keys only use characters NATS allows in KV keys.
type Store struct {
	bucket   jetstream.KeyValue
	notifier *kv.Notifier

	mu sync.Mutex
	// written maps a key to the revision of this process's last write to it.
	written map[string]uint64
}

// Open creates or updates the bucket described by cfg.
func Open(ctx context.Context, js jetstream.JetStream, cfg Config) (*Store, error) {
	kvCfg := jetstream.KeyValueConfig{
		Bucket:      cfg.Bucket,
		Description: "journal posts, media and markdown artifacts",
		History:     1,
	}
	if cfg.MaxBytes > 0 {
		kvCfg.MaxBytes = cfg.MaxBytes
	}

	bucket, err := js.CreateOrUpdateKeyValue(ctx, kvCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to open KV bucket %s: %w", cfg.Bucket, err)
	}
	return New(bucket), nil
}

// New wraps an existing bucket.
func New(bucket jetstream.KeyValue) *Store {
	return &Store{
		bucket:   bucket,
		notifier: kv.NewNotifier(),
		written:  make(map[string]uint64),
	}
}

func (s *Store) Put(ctx context.Context, key, value string) error {
	if key == "" {
		return fmt.Errorf("kv: key cannot be empty")
	}

	rev, err := s.bucket.PutString(ctx, key, value)
	if err != nil {
		if isQuotaError(err) {
			return fmt.Errorf("failed to write %q: %w: %v", key, kv.ErrQuotaExceeded, err)
		}
		return fmt.Errorf("failed to write %q: %w", key, err)
	}
	s.remember(key, rev)

	s.notifier.Publish(kv.Change{Key: key, Value: value})
	return nil
}

func (s *Store) Get(ctx context.Context, key string) (string, error) {
	entry, err := s.bucket.Get(ctx, key)
	if errors.Is(err, jetstream.ErrKeyNotFound) || errors.Is(err, jetstream.ErrKeyDeleted) {
		return "", kv.ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("failed to get %q: %w", key, err)
	}
	return string(entry.Value()), nil
}

// Remove purges key so its bytes stop counting against the bucket limit.
func (s *Store) Remove(ctx context.Context, key string) error {
	err := s.bucket.Purge(ctx, key)
	if err != nil && !errors.Is(err, jetstream.ErrKeyNotFound) {
		return fmt.Errorf("failed to remove %q: %w", key, err)
	}

	s.mu.Lock()
	delete(s.written, key)
	s.mu.Unlock()
	return nil
}

func (s *Store) Keys(ctx context.Context) ([]string, error) {
	keys, err := s.bucket.Keys(ctx)
	if errors.Is(err, jetstream.ErrNoKeysFound) {
		return []string{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to list keys: %w", err)
	}
	return keys, nil
}

func (s *Store) Subscribe(key string, fn func(kv.Change)) func() {
	return s.notifier.Subscribe(key, fn)
}

// Watch publishes bucket updates made by other processes to subscribers of
// key, marked External, until ctx is done. Revisions this process wrote were
// already published by Put and are skipped.
func (s *Store) Watch(ctx context.Context, key string) error {
	watcher, err := s.bucket.Watch(ctx, key, jetstream.UpdatesOnly())
	if err != nil {
		return fmt.Errorf("failed to watch %q: %w", key, err)
	}
	defer watcher.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case entry, ok := <-watcher.Updates():
			if !ok {
				return nil
			}
			if entry == nil || entry.Operation() != jetstream.KeyValuePut {
				continue
			}
			if s.isOwn(entry.Key(), entry.Revision()) {
				continue
			}
			log.Debug().Str("key", entry.Key()).Uint64("revision", entry.Revision()).Msg("Bucket update")
			s.notifier.Publish(kv.Change{Key: entry.Key(), Value: string(entry.Value()), External: true})
		}
	}
}

func (s *Store) remember(key string, rev uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.written[key] = rev
}

// isOwn reports whether rev is at or before this process's latest write to
// key. Older revisions are superseded by a value subscribers already saw.
func (s *Store) isOwn(key string, rev uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return rev <= s.written[key]
}

func isQuotaError(err error) bool {
	if errors.Is(err, nats.ErrMaxPayload) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "maximum bytes") || strings.Contains(msg, "insufficient resources")
}
