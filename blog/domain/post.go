package domain

import (
	"context"
	"slices"
	"time"
)

// Post represents a journal entry.
// Posts are created from a PostDraft, which is assigned an ID, timestamps and a
// zero view count. Only published posts are visible to readers.
type Post struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Slug        string     `json:"slug"`
	Excerpt     string     `json:"excerpt"`
	Content     string     `json:"content"`
	Author      string     `json:"author"`
	PublishedAt time.Time  `json:"publishedAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
	Tags        []string   `json:"tags"`
	Category    string     `json:"category"`
	Featured    bool       `json:"featured"`
	Published   bool       `json:"published"`
	Views       int        `json:"views"`
	MediaFiles  []MediaRef `json:"mediaFiles"`
}

// Clone returns a deep copy of the post so callers can never alias the
// repository's working list.
func (p Post) Clone() Post {
	out := p
	out.Tags = slices.Clone(p.Tags)
	out.MediaFiles = slices.Clone(p.MediaFiles)
	return out
}

// PostDraft holds the caller-supplied fields of a new post.
type PostDraft struct {
	Title      string
	Slug       string
	Excerpt    string
	Content    string
	Author     string
	Tags       []string
	Category   string
	Featured   bool
	Published  bool
	MediaFiles []MediaRef
}

// PostPatch lists the updatable fields of a post. A nil field is left as is.
// ID, PublishedAt and UpdatedAt are deliberately absent.
type PostPatch struct {
	Title      *string
	Slug       *string
	Excerpt    *string
	Content    *string
	Author     *string
	Tags       *[]string
	Category   *string
	Featured   *bool
	Published  *bool
	Views      *int
	MediaFiles *[]MediaRef
}

// Apply overlays the patch onto p and returns the result.
func (patch PostPatch) Apply(p Post) Post {
	out := p.Clone()
	if patch.Title != nil {
		out.Title = *patch.Title
	}
	if patch.Slug != nil {
		out.Slug = *patch.Slug
	}
	if patch.Excerpt != nil {
		out.Excerpt = *patch.Excerpt
	}
	if patch.Content != nil {
		out.Content = *patch.Content
	}
	if patch.Author != nil {
		out.Author = *patch.Author
	}
	if patch.Tags != nil {
		out.Tags = slices.Clone(*patch.Tags)
	}
	if patch.Category != nil {
		out.Category = *patch.Category
	}
	if patch.Featured != nil {
		out.Featured = *patch.Featured
	}
	if patch.Published != nil {
		out.Published = *patch.Published
	}
	if patch.Views != nil {
		out.Views = *patch.Views
	}
	if patch.MediaFiles != nil {
		out.MediaFiles = slices.Clone(*patch.MediaFiles)
	}
	return out
}

// PostStore persists the whole post list as a single snapshot.
type PostStore interface {
	// Load returns the persisted list. ErrCorruptState is returned when the
	// stored snapshot cannot be decoded; ok is false when nothing is stored.
	Load(ctx context.Context) (posts []Post, ok bool, err error)

	// Save replaces the persisted list and bumps the storage version.
	Save(ctx context.Context, posts []Post) error

	// Reset removes the persisted list and its version.
	Reset(ctx context.Context) error

	// Version returns the opaque version of the last successful Save.
	Version(ctx context.Context) (string, error)

	// OnChange calls fn after every successful Save, including Saves made by
	// other processes sharing the store (external is then true).
	OnChange(fn func(external bool)) (unsubscribe func())
}
