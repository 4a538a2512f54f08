package domain

import (
	"context"
	"time"
)

// MarkdownArtifact is a generated markdown projection of a post.
type MarkdownArtifact struct {
	Filename  string    `json:"filename"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
}

type ArtifactStore interface {
	Store(ctx context.Context, postID string, artifact MarkdownArtifact) error

	// Fetch returns nil when no artifact exists for postID.
	Fetch(ctx context.Context, postID string) (*MarkdownArtifact, error)

	// Discard removes the artifact for postID; absence is not an error.
	Discard(ctx context.Context, postID string) error

	All(ctx context.Context) (map[string]MarkdownArtifact, error)
}
