package persistence

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/dfryer1193/journal/blog/domain"
	"github.com/dfryer1193/journal/shared/kv"
)

var _ domain.ArtifactStore = (*KVArtifactStore)(nil)

const MarkdownFilesKey = "markdownFiles"

// KVArtifactStore keeps every artifact in one JSON object keyed by post id.
type KVArtifactStore struct {
	store kv.Store
	mu    sync.Mutex
}

func NewArtifactStore(store kv.Store) *KVArtifactStore {
	return &KVArtifactStore{store: store}
}

func (s *KVArtifactStore) Store(ctx context.Context, postID string, artifact domain.MarkdownArtifact) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	// A corrupt document is replaced rather than blocking every later write.
	files, err := s.load(ctx)
	if errors.Is(err, domain.ErrCorruptState) {
		files = map[string]domain.MarkdownArtifact{}
	} else if err != nil {
		return err
	}

	files[postID] = artifact
	return s.save(ctx, files)
}

func (s *KVArtifactStore) Fetch(ctx context.Context, postID string) (*domain.MarkdownArtifact, error) {
	files, err := s.load(ctx)
	if err != nil {
		return nil, err
	}

	artifact, ok := files[postID]
	if !ok {
		return nil, nil
	}
	return &artifact, nil
}

func (s *KVArtifactStore) Discard(ctx context.Context, postID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	files, err := s.load(ctx)
	if err != nil {
		return err
	}

	if _, ok := files[postID]; !ok {
		return nil
	}

	delete(files, postID)
	return s.save(ctx, files)
}

func (s *KVArtifactStore) All(ctx context.Context) (map[string]domain.MarkdownArtifact, error) {
	return s.load(ctx)
}

func (s *KVArtifactStore) load(ctx context.Context) (map[string]domain.MarkdownArtifact, error) {
	raw, err := s.store.Get(ctx, MarkdownFilesKey)
	if errors.Is(err, kv.ErrNotFound) {
		return map[string]domain.MarkdownArtifact{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read markdown files: %w", err)
	}

	files := map[string]domain.MarkdownArtifact{}
	if err := json.Unmarshal([]byte(raw), &files); err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrCorruptState, err)
	}
	return files, nil
}

func (s *KVArtifactStore) save(ctx context.Context, files map[string]domain.MarkdownArtifact) error {
	data, err := json.Marshal(files)
	if err != nil {
		return fmt.Errorf("failed to encode markdown files: %w", err)
	}

	if err := s.store.Put(ctx, MarkdownFilesKey, string(data)); err != nil {
		return fmt.Errorf("failed to write markdown files: %w", err)
	}
	return nil
}
