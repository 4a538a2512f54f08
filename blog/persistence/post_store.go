package persistence

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/dfryer1193/journal/blog/domain"
	"github.com/dfryer1193/journal/shared/kv"
	"github.com/rs/zerolog/log"
)

var _ domain.PostStore = (*KVPostStore)(nil)

const (
	PostsKey        = "posts"
	PostsVersionKey = "postsVersion"

	// DefaultPostsBudget leaves headroom below the 5 MiB store default for
	// artifacts and media payloads.
	DefaultPostsBudget = 4.5 * 1024 * 1024
)

// KVPostStore keeps the post list as one JSON document under PostsKey.
type KVPostStore struct {
	store  kv.Store
	budget int
	now    func() time.Time
}

func NewPostStore(store kv.Store, budget int) *KVPostStore {
	if budget <= 0 {
		budget = DefaultPostsBudget
	}
	return &KVPostStore{
		store:  store,
		budget: budget,
		now:    time.Now,
	}
}

// Load reads the persisted list. An absent or empty list reports ok=false.
func (s *KVPostStore) Load(ctx context.Context) ([]domain.Post, bool, error) {
	raw, err := s.store.Get(ctx, PostsKey)
	if errors.Is(err, kv.ErrNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to read posts: %w", err)
	}

	var posts []domain.Post
	if err := json.Unmarshal([]byte(raw), &posts); err != nil {
		return nil, false, fmt.Errorf("%w: %w", domain.ErrCorruptState, err)
	}

	if len(posts) == 0 {
		return nil, false, nil
	}

	return posts, true, nil
}

// Save strips full image URLs, checks the budget and writes the list followed
// by a new version stamp. Nothing is written when the budget is exceeded. Once
// the list is written the save has succeeded; a failed version stamp is only
// logged.
func (s *KVPostStore) Save(ctx context.Context, posts []domain.Post) error {
	data, err := json.Marshal(stripImageURLs(posts))
	if err != nil {
		return fmt.Errorf("failed to encode posts: %w", err)
	}

	if len(data) > s.budget {
		return fmt.Errorf("%w: posts need %d bytes, budget is %d", domain.ErrStorageQuotaExceeded, len(data), s.budget)
	}

	if err := s.store.Put(ctx, PostsKey, string(data)); err != nil {
		if errors.Is(err, kv.ErrQuotaExceeded) {
			return fmt.Errorf("%w: %w", domain.ErrStorageQuotaExceeded, err)
		}
		return fmt.Errorf("failed to write posts: %w", err)
	}

	version := strconv.FormatInt(s.now().UnixMilli(), 10)
	if err := s.store.Put(ctx, PostsVersionKey, version); err != nil {
		log.Warn().Err(err).Str("version", version).Msg("Saved posts but failed to write posts version")
	}

	return nil
}

func (s *KVPostStore) Reset(ctx context.Context) error {
	if err := s.store.Remove(ctx, PostsKey); err != nil {
		return fmt.Errorf("failed to remove posts: %w", err)
	}
	if err := s.store.Remove(ctx, PostsVersionKey); err != nil {
		return fmt.Errorf("failed to remove posts version: %w", err)
	}
	return nil
}

// Version returns "" when nothing has been saved yet.
func (s *KVPostStore) Version(ctx context.Context) (string, error) {
	v, err := s.store.Get(ctx, PostsVersionKey)
	if errors.Is(err, kv.ErrNotFound) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to read posts version: %w", err)
	}
	return v, nil
}

func (s *KVPostStore) OnChange(fn func(external bool)) func() {
	return s.store.Subscribe(PostsKey, func(c kv.Change) {
		fn(c.External)
	})
}

func stripImageURLs(posts []domain.Post) []domain.Post {
	out := make([]domain.Post, len(posts))
	for i, p := range posts {
		out[i] = p.Clone()
		for j := range out[i].MediaFiles {
			if out[i].MediaFiles[j].Type == domain.MediaImage {
				out[i].MediaFiles[j].URL = ""
			}
		}
	}
	return out
}
