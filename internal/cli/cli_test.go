package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/dfryer1193/journal/blog/domain"
	"github.com/dfryer1193/journal/blog/persistence"
	"github.com/dfryer1193/journal/internal/config"
	"github.com/dfryer1193/journal/internal/storage"
	"github.com/dfryer1193/journal/shared/kv"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// run executes one journalctl invocation against mem.
func run(t *testing.T, mem *kv.MemoryStore, args ...string) (string, error) {
	t.Helper()

	deps := &Deps{
		Store: config.StoreConfig{
			Backend:     config.BackendMemory,
			Capacity:    kv.DefaultCapacity,
			PostsBudget: persistence.DefaultPostsBudget,
		},
		Log: zerolog.Nop(),
		Open: func(ctx context.Context, cfg config.StoreConfig) (*storage.Backend, error) {
			return &storage.Backend{Store: mem, Close: func() error { return nil }}, nil
		},
	}

	var out bytes.Buffer
	cmd := NewRootCmd(deps)
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)

	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestList(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		want    []string
		notWant []string
	}{
		{
			name: "published",
			args: []string{"list"},
			want: []string{"philosophy-of-art-and-life", "music-universal-language", "digital-canvas-modern-art"},
		},
		{
			name:    "by category",
			args:    []string{"list", "--category", "Music"},
			want:    []string{"music-universal-language"},
			notWant: []string{"philosophy-of-art-and-life"},
		},
		{
			name:    "by tag",
			args:    []string{"list", "--tag", "art"},
			want:    []string{"philosophy-of-art-and-life"},
			notWant: []string{"digital-canvas-modern-art"},
		},
		{
			name:    "search",
			args:    []string{"search", "social med"},
			want:    []string{"digital-canvas-modern-art"},
			notWant: []string{"music-universal-language"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := run(t, kv.NewMemoryStore(kv.DefaultCapacity), tt.args...)
			require.NoError(t, err)

			assert.Contains(t, out, "ID")
			for _, s := range tt.want {
				assert.Contains(t, out, s)
			}
			for _, s := range tt.notWant {
				assert.NotContains(t, out, s)
			}
		})
	}
}

func TestList_RejectsBadBackend(t *testing.T) {
	deps := &Deps{
		Store: config.StoreConfig{Backend: "redis", PostsBudget: 1},
		Log:   zerolog.Nop(),
	}
	cmd := NewRootCmd(deps)
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetArgs([]string{"list"})

	assert.ErrorContains(t, cmd.ExecuteContext(context.Background()), "unknown STORE_BACKEND")
}

func TestExport(t *testing.T) {
	mem := kv.NewMemoryStore(kv.DefaultCapacity)

	t.Run("post by slug", func(t *testing.T) {
		out, err := run(t, mem, "export", "post", "music-universal-language")
		require.NoError(t, err)
		assert.Contains(t, out, `title: "Music as the Universal Language"`)
		assert.Contains(t, out, `slug: "music-universal-language"`)
	})

	t.Run("post by id", func(t *testing.T) {
		out, err := run(t, mem, "export", "post", "1")
		require.NoError(t, err)
		assert.Contains(t, out, `slug: "philosophy-of-art-and-life"`)
	})

	t.Run("unknown post", func(t *testing.T) {
		_, err := run(t, mem, "export", "post", "nope")
		assert.ErrorContains(t, err, `post "nope" not found`)
	})

	t.Run("index", func(t *testing.T) {
		out, err := run(t, mem, "export", "index")
		require.NoError(t, err)
		assert.Contains(t, out, "The Digital Canvas: Art in the Modern Age")
	})

	t.Run("bulk", func(t *testing.T) {
		out, err := run(t, mem, "export", "bulk")
		require.NoError(t, err)
		assert.Contains(t, out, "Total posts: 3")
	})

	t.Run("archive to file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "archive.md")
		out, err := run(t, mem, "export", "archive", "--out", path)
		require.NoError(t, err)
		assert.Empty(t, out)

		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Contains(t, string(data), `slug: "digital-canvas-modern-art"`)
	})
}

func TestSweep(t *testing.T) {
	ctx := context.Background()
	mem := kv.NewMemoryStore(kv.DefaultCapacity)
	require.NoError(t, mem.Put(ctx, persistence.MediaKey("stray"), "data:image/png;base64,AAAA"))

	out, err := run(t, mem, "sweep")
	require.NoError(t, err)
	assert.Equal(t, "removed 1 orphaned media\n", out)

	_, err = mem.Get(ctx, persistence.MediaKey("stray"))
	assert.ErrorIs(t, err, kv.ErrNotFound)
}

func TestVerify(t *testing.T) {
	ctx := context.Background()
	mem := kv.NewMemoryStore(kv.DefaultCapacity)

	out, err := run(t, mem, "verify")
	require.NoError(t, err)
	assert.Contains(t, out, "ok       music-universal-language")

	artifacts := persistence.NewArtifactStore(mem)
	require.NoError(t, artifacts.Discard(ctx, "2"))
	require.NoError(t, artifacts.Store(ctx, "ghost", domain.MarkdownArtifact{
		Filename:  "ghost.md",
		Content:   "---\ntitle: Ghost\n---\n",
		CreatedAt: time.Now(),
	}))

	out, err = run(t, mem, "verify")
	assert.ErrorContains(t, err, "2 artifact problems found")
	assert.Contains(t, out, "missing  music-universal-language")
	assert.Contains(t, out, "orphan   ghost")
	assert.Contains(t, out, "ok       philosophy-of-art-and-life")
}

func TestCompareArtifact(t *testing.T) {
	post := domain.Post{Title: "A", Slug: "a", Content: "Body text.", Published: true}
	fresh := func(title, slug, body string) domain.MarkdownArtifact {
		return domain.MarkdownArtifact{Content: "---\ntitle: " + title + "\nslug: " + slug + "\npublished: true\n---\n\n" + body}
	}

	tests := []struct {
		name     string
		artifact domain.MarkdownArtifact
		want     string
	}{
		{name: "match", artifact: fresh("A", "a", "Body text.\n")},
		{name: "title", artifact: fresh("B", "a", "Body text.\n"), want: `title is "B"`},
		{name: "slug", artifact: fresh("A", "b", "Body text.\n"), want: `slug is "b"`},
		{name: "body", artifact: fresh("A", "a", "Other.\n"), want: "body differs"},
		{name: "no front matter", artifact: domain.MarkdownArtifact{Content: "# A"}, want: "artifact does not start with front matter"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, compareArtifact(post, tt.artifact))
		})
	}
}
