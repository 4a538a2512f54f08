package domain

import (
	"context"
	"math"
	"strconv"
)

// MediaType is the kind of an uploaded asset.
type MediaType string

const (
	MediaImage MediaType = "image"
	MediaAudio MediaType = "audio"
	MediaVideo MediaType = "video"
)

// MediaRef describes one asset attached to a post. It is embedded by value in
// exactly one post. For images the full-resolution payload lives separately in
// the store under the ref's ID; URL is a cache of it and may be stripped.
type MediaRef struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Type      MediaType `json:"type"`
	Size      int64     `json:"size"`
	URL       string    `json:"url,omitempty"`
	Thumbnail string    `json:"thumbnail,omitempty"`
}

// Upload is a raw file offered to the media repository.
type Upload struct {
	Name     string
	MIMEType string
	Size     int64
	Data     []byte
}

// IngestResult is the per-file outcome of a batch ingest.
type IngestResult struct {
	Name string
	Ref  *MediaRef
	Err  error
}

type MediaRepository interface {
	// Ingest validates an upload and stores its derived representations.
	Ingest(ctx context.Context, up Upload) (MediaRef, error)

	// IngestBatch ingests every upload independently; one rejection never
	// aborts the batch.
	IngestBatch(ctx context.Context, uploads []Upload) []IngestResult

	// ResolveDisplayURL picks the best available representation. It never fails.
	ResolveDisplayURL(ctx context.Context, ref MediaRef) string

	// Remove deletes the stored full payload of one asset.
	Remove(ctx context.Context, mediaID string) error

	// SweepOrphans removes every stored payload whose ID is not referenced.
	SweepOrphans(ctx context.Context, referenced map[string]struct{}) (int, error)
}

var sizeUnits = []string{"Bytes", "KB", "MB", "GB"}

// FormatSize renders a byte count for humans, e.g. 1536 -> "1.5 KB".
func FormatSize(bytes int64) string {
	if bytes <= 0 {
		return "0 Bytes"
	}

	i := 0
	for v := bytes; v >= 1024 && i < len(sizeUnits)-1; v /= 1024 {
		i++
	}

	v := math.Round(float64(bytes)/math.Pow(1024, float64(i))*100) / 100
	return strconv.FormatFloat(v, 'f', -1, 64) + " " + sizeUnits[i]
}
