package sqlitekv

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/dfryer1193/journal/shared/kv"
	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog/log"
)

// Watch publishes writes made by other processes to the subscribers of the
// affected keys. It watches the directory holding dbPath (SQLite rewrites the
// -wal and -journal siblings) and blocks until ctx is done.
func (s *Store) Watch(ctx context.Context, dbPath string) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	defer func() {
		_ = watcher.Close()
	}()

	absPath, err := filepath.Abs(dbPath)
	if err != nil {
		return fmt.Errorf("failed to resolve %s: %w", dbPath, err)
	}
	if err := watcher.Add(filepath.Dir(absPath)); err != nil {
		return fmt.Errorf("failed to watch %s: %w", filepath.Dir(absPath), err)
	}

	s.prime(ctx)

	for {
		select {
		case <-ctx.Done():
			return nil
		case evt, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !isDatabaseFile(absPath, evt.Name) || !(evt.Has(fsnotify.Write) || evt.Has(fsnotify.Create)) {
				continue
			}
			s.CheckExternal(ctx)
		case werr, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.Warn().Err(werr).Str("path", absPath).Msg("File watcher error")
		}
	}
}

// CheckExternal compares every watched key against the last value this
// process saw and publishes the ones that changed.
func (s *Store) CheckExternal(ctx context.Context) {
	for _, key := range s.notifier.WatchedKeys() {
		value, err := s.Get(ctx, key)
		if errors.Is(err, kv.ErrNotFound) {
			continue
		}
		if err != nil {
			log.Warn().Err(err).Str("key", key).Msg("Failed to read watched key")
			continue
		}

		s.mu.Lock()
		prev, seen := s.lastSeen[key]
		changed := !seen || prev != value
		s.lastSeen[key] = value
		s.mu.Unlock()

		if changed {
			s.notifier.Publish(kv.Change{Key: key, Value: value, External: true})
		}
	}
}

// prime records the current value of every watched key without publishing.
func (s *Store) prime(ctx context.Context) {
	for _, key := range s.notifier.WatchedKeys() {
		value, err := s.Get(ctx, key)
		if err != nil {
			continue
		}
		s.mu.Lock()
		s.lastSeen[key] = value
		s.mu.Unlock()
	}
}

func isDatabaseFile(dbPath, name string) bool {
	switch name {
	case dbPath, dbPath + "-wal", dbPath + "-journal":
		return true
	}
	return false
}
