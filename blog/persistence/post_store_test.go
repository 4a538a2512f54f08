package persistence

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/dfryer1193/journal/blog/domain"
	"github.com/dfryer1193/journal/shared/kv"
)

func TestPostStore_LoadEmpty(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name  string
		setup func(s *kv.MemoryStore)
	}{
		{name: "absent", setup: func(*kv.MemoryStore) {}},
		{name: "empty list", setup: func(s *kv.MemoryStore) { _ = s.Put(ctx, PostsKey, "[]") }},
		{name: "null", setup: func(s *kv.MemoryStore) { _ = s.Put(ctx, PostsKey, "null") }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mem := kv.NewMemoryStore(kv.DefaultCapacity)
			tt.setup(mem)

			posts, ok, err := NewPostStore(mem, 0).Load(ctx)
			if err != nil {
				t.Fatalf("Load() error = %v", err)
			}
			if ok {
				t.Errorf("Load() ok = true, want false")
			}
			if len(posts) != 0 {
				t.Errorf("Load() returned %d posts, want 0", len(posts))
			}
		})
	}
}

func TestPostStore_LoadCorrupt(t *testing.T) {
	ctx := context.Background()
	mem := kv.NewMemoryStore(kv.DefaultCapacity)
	_ = mem.Put(ctx, PostsKey, "{not json")

	_, _, err := NewPostStore(mem, 0).Load(ctx)
	if !errors.Is(err, domain.ErrCorruptState) {
		t.Errorf("Load() error = %v, want ErrCorruptState", err)
	}
}

func TestPostStore_SaveStripsImageURLs(t *testing.T) {
	ctx := context.Background()
	mem := kv.NewMemoryStore(kv.DefaultCapacity)
	store := NewPostStore(mem, 0)

	post := domain.DefaultPosts()[0]
	post.MediaFiles = []domain.MediaRef{
		{ID: "img", Name: "a.jpg", Type: domain.MediaImage, URL: "data:image/jpeg;base64,FULL", Thumbnail: "data:image/jpeg;base64,THUMB"},
		{ID: "snd", Name: "a.mp3", Type: domain.MediaAudio, URL: "data:audio/mpeg;base64,AUDIO"},
	}

	if err := store.Save(ctx, []domain.Post{post}); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	// The caller's copy keeps its URL.
	if post.MediaFiles[0].URL == "" {
		t.Error("Save() modified the caller's post")
	}

	raw, err := mem.Get(ctx, PostsKey)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if strings.Contains(raw, "FULL") {
		t.Error("persisted posts still contain the full image url")
	}

	var persisted []domain.Post
	if err := json.Unmarshal([]byte(raw), &persisted); err != nil {
		t.Fatalf("persisted posts are not JSON: %v", err)
	}
	media := persisted[0].MediaFiles
	if media[0].Thumbnail != "data:image/jpeg;base64,THUMB" {
		t.Errorf("thumbnail = %q, want it kept", media[0].Thumbnail)
	}
	if media[1].URL != "data:audio/mpeg;base64,AUDIO" {
		t.Errorf("audio url = %q, want it kept", media[1].URL)
	}
}

func TestPostStore_SaveBumpsVersion(t *testing.T) {
	ctx := context.Background()
	store := NewPostStore(kv.NewMemoryStore(kv.DefaultCapacity), 0)
	store.now = func() time.Time { return time.UnixMilli(1700000000123) }

	v, err := store.Version(ctx)
	if err != nil || v != "" {
		t.Fatalf("Version() = %q, %v; want empty", v, err)
	}

	if err := store.Save(ctx, domain.DefaultPosts()); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	v, err = store.Version(ctx)
	if err != nil {
		t.Fatalf("Version() error = %v", err)
	}
	if v != "1700000000123" {
		t.Errorf("Version() = %q, want %q", v, "1700000000123")
	}

	posts, ok, err := store.Load(ctx)
	if err != nil || !ok {
		t.Fatalf("Load() = %v, %v", ok, err)
	}
	if len(posts) != 3 || posts[0].ID != "1" {
		t.Errorf("Load() returned %d posts, first %q", len(posts), posts[0].ID)
	}
}

// failingPutStore rejects writes to one key.
type failingPutStore struct {
	*kv.MemoryStore
	key string
}

func (s failingPutStore) Put(ctx context.Context, key, value string) error {
	if key == s.key {
		return errors.New("disk on fire")
	}
	return s.MemoryStore.Put(ctx, key, value)
}

func TestPostStore_SaveSurvivesVersionFailure(t *testing.T) {
	ctx := context.Background()
	mem := kv.NewMemoryStore(kv.DefaultCapacity)
	store := NewPostStore(failingPutStore{MemoryStore: mem, key: PostsVersionKey}, 0)

	if err := store.Save(ctx, domain.DefaultPosts()); err != nil {
		t.Fatalf("Save() error = %v, want nil once posts are written", err)
	}

	posts, ok, err := store.Load(ctx)
	if err != nil || !ok || len(posts) != 3 {
		t.Fatalf("Load() = %d posts, %v, %v", len(posts), ok, err)
	}
	if v, err := store.Version(ctx); err != nil || v != "" {
		t.Errorf("Version() = %q, %v; want no stamp", v, err)
	}
}

func TestPostStore_SaveOverBudget(t *testing.T) {
	ctx := context.Background()
	mem := kv.NewMemoryStore(kv.DefaultCapacity)
	store := NewPostStore(mem, 1024)

	post := domain.DefaultPosts()[0]
	post.Content = strings.Repeat("x", 2048)

	err := store.Save(ctx, []domain.Post{post})
	if !errors.Is(err, domain.ErrStorageQuotaExceeded) {
		t.Fatalf("Save() error = %v, want ErrStorageQuotaExceeded", err)
	}
	if errors.Is(err, kv.ErrQuotaExceeded) {
		t.Error("budget rejection should not look like a store quota failure")
	}

	if keys, _ := mem.Keys(ctx); len(keys) != 0 {
		t.Errorf("store has keys %v after a rejected save", keys)
	}
}

func TestPostStore_SaveStoreQuota(t *testing.T) {
	ctx := context.Background()
	store := NewPostStore(kv.NewMemoryStore(64), 0)

	err := store.Save(ctx, domain.DefaultPosts())
	if !errors.Is(err, domain.ErrStorageQuotaExceeded) || !errors.Is(err, kv.ErrQuotaExceeded) {
		t.Errorf("Save() error = %v, want both quota errors", err)
	}
}

func TestPostStore_Reset(t *testing.T) {
	ctx := context.Background()
	mem := kv.NewMemoryStore(kv.DefaultCapacity)
	store := NewPostStore(mem, 0)

	if err := store.Save(ctx, domain.DefaultPosts()); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if err := store.Reset(ctx); err != nil {
		t.Fatalf("Reset() error = %v", err)
	}

	if keys, _ := mem.Keys(ctx); len(keys) != 0 {
		t.Errorf("keys after Reset() = %v, want none", keys)
	}
}
