package persistence

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	"image/color"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"
	"strings"

	"github.com/dfryer1193/journal/blog/domain"
	"github.com/dfryer1193/journal/internal/metrics"
	"github.com/dfryer1193/journal/shared/kv"
	"github.com/gabriel-vasile/mimetype"
	"github.com/rs/zerolog"
	"github.com/teris-io/shortid"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
)

var _ domain.MediaRepository = (*KVMediaRepository)(nil)

const (
	MediaKeyPrefix = "media_"

	maxImageSize = 5 * 1024 * 1024
	maxOtherSize = 10 * 1024 * 1024

	thumbnailBound = 200
	thumbnailQual  = 70
	fullBound      = 800
	fullQual       = 80

	// maxImagePixels bounds the decoded bitmap; compressed formats can declare
	// far larger images than their byte size suggests.
	maxImagePixels = 40_000_000

	imagePlaceholder = "/placeholder.svg?height=128&width=200&text=Image"
	mediaPlaceholder = "/placeholder.svg?height=128&width=200&text=Media"
)

var allowedTypes = map[string]domain.MediaType{
	"image/jpeg": domain.MediaImage,
	"image/jpg":  domain.MediaImage,
	"image/png":  domain.MediaImage,
	"image/gif":  domain.MediaImage,
	"image/webp": domain.MediaImage,
	"audio/mpeg": domain.MediaAudio,
	"audio/mp3":  domain.MediaAudio,
	"audio/wav":  domain.MediaAudio,
	"audio/ogg":  domain.MediaAudio,
	"video/mp4":  domain.MediaVideo,
	"video/webm": domain.MediaVideo,
	"video/ogg":  domain.MediaVideo,
}

// MediaKey is the store key of a full image payload.
func MediaKey(id string) string {
	return MediaKeyPrefix + id
}

// KVMediaRepository stores full image payloads as data URIs under media_<id>.
type KVMediaRepository struct {
	store   kv.Store
	log     zerolog.Logger
	metrics *metrics.Metrics
	newID   func() (string, error)
}

func NewMediaRepository(store kv.Store, log zerolog.Logger, m *metrics.Metrics) *KVMediaRepository {
	return &KVMediaRepository{
		store:   store,
		log:     log.With().Str("component", "media").Logger(),
		metrics: m,
		newID:   shortid.Generate,
	}
}

// Validate applies the upload policy: MIME allow-list first, then the size
// cap of the media type.
func Validate(up domain.Upload) (domain.MediaType, error) {
	mimeType := strings.ToLower(strings.TrimSpace(up.MIMEType))
	mediaType, ok := allowedTypes[mimeType]
	if !ok {
		return "", fmt.Errorf("%w: %s is not an accepted type", domain.ErrInvalidMedia, up.MIMEType)
	}

	size := max(up.Size, int64(len(up.Data)))
	limit := int64(maxOtherSize)
	if mediaType == domain.MediaImage {
		limit = maxImageSize
	}
	if size > limit {
		return "", fmt.Errorf("%w: %s is %s, maximum for %s files is %s",
			domain.ErrTooLarge, up.Name, domain.FormatSize(size), mediaType, domain.FormatSize(limit))
	}

	return mediaType, nil
}

func (r *KVMediaRepository) Ingest(ctx context.Context, up domain.Upload) (domain.MediaRef, error) {
	mediaType, err := Validate(up)
	if err != nil {
		r.reject(up, err)
		return domain.MediaRef{}, err
	}

	id, err := r.newID()
	if err != nil {
		return domain.MediaRef{}, fmt.Errorf("failed to generate media id: %w", err)
	}

	ref := domain.MediaRef{
		ID:   id,
		Name: up.Name,
		Type: mediaType,
		Size: max(up.Size, int64(len(up.Data))),
	}

	if mediaType != domain.MediaImage {
		ref.URL = dataURI(strings.ToLower(up.MIMEType), up.Data)
		r.metrics.MediaIngested(string(mediaType))
		return ref, nil
	}

	thumbnail, full, err := deriveImages(up.Data)
	if err != nil {
		err = fmt.Errorf("%w: %s: %w", domain.ErrMediaDecode, up.Name, err)
		r.reject(up, err)
		return domain.MediaRef{}, err
	}

	ref.Thumbnail = thumbnail
	ref.URL = full

	if err := r.store.Put(ctx, MediaKey(id), full); err != nil {
		if errors.Is(err, kv.ErrQuotaExceeded) {
			err = fmt.Errorf("%w: %w", domain.ErrStorageQuotaExceeded, err)
		}
		r.reject(up, err)
		return domain.MediaRef{}, fmt.Errorf("failed to store image %s: %w", up.Name, err)
	}

	r.metrics.MediaIngested(string(mediaType))
	r.log.Debug().Str("media_id", id).Str("name", up.Name).Int64("size", ref.Size).Msg("Stored image payload")

	return ref, nil
}

func (r *KVMediaRepository) IngestBatch(ctx context.Context, uploads []domain.Upload) []domain.IngestResult {
	results := make([]domain.IngestResult, 0, len(uploads))
	for _, up := range uploads {
		ref, err := r.Ingest(ctx, up)
		result := domain.IngestResult{Name: up.Name, Err: err}
		if err == nil {
			result.Ref = &ref
		}
		results = append(results, result)
	}
	return results
}

// Payload returns the stored full image for id. ok is false when absent.
func (r *KVMediaRepository) Payload(ctx context.Context, id string) (string, bool, error) {
	v, err := r.store.Get(ctx, MediaKey(id))
	if errors.Is(err, kv.ErrNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to read media %s: %w", id, err)
	}
	return v, true, nil
}

func (r *KVMediaRepository) ResolveDisplayURL(ctx context.Context, ref domain.MediaRef) string {
	if ref.Type != domain.MediaImage {
		if ref.URL != "" {
			return ref.URL
		}
		return mediaPlaceholder
	}

	full, ok, err := r.Payload(ctx, ref.ID)
	if err != nil {
		r.log.Warn().Err(err).Str("media_id", ref.ID).Msg("Falling back from stored payload")
	}

	switch {
	case ok && full != "":
		return full
	case ref.Thumbnail != "":
		return ref.Thumbnail
	case ref.URL != "":
		return ref.URL
	default:
		return imagePlaceholder
	}
}

func (r *KVMediaRepository) Remove(ctx context.Context, mediaID string) error {
	if err := r.store.Remove(ctx, MediaKey(mediaID)); err != nil {
		return fmt.Errorf("failed to remove media %s: %w", mediaID, err)
	}
	return nil
}

func (r *KVMediaRepository) SweepOrphans(ctx context.Context, referenced map[string]struct{}) (int, error) {
	keys, err := r.store.Keys(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to list keys: %w", err)
	}

	removed := 0
	for _, key := range keys {
		id, ok := strings.CutPrefix(key, MediaKeyPrefix)
		if !ok {
			continue
		}
		if _, used := referenced[id]; used {
			continue
		}
		if err := r.store.Remove(ctx, key); err != nil {
			return removed, fmt.Errorf("failed to remove orphan %s: %w", key, err)
		}
		removed++
	}

	r.metrics.OrphansSwept(removed)
	r.log.Info().Int("removed", removed).Msg("Cleaned up orphaned media files")

	return removed, nil
}

func (r *KVMediaRepository) reject(up domain.Upload, err error) {
	reason := "store"
	switch {
	case errors.Is(err, domain.ErrInvalidMedia):
		reason = "invalid_type"
	case errors.Is(err, domain.ErrTooLarge):
		reason = "too_large"
	case errors.Is(err, domain.ErrMediaDecode):
		reason = "decode"
	}
	r.metrics.MediaRejected(reason)
	r.log.Warn().Err(err).Str("name", up.Name).Str("mime_type", up.MIMEType).Msg("Rejected media upload")
}

// deriveImages decodes an image and returns its thumbnail and full-size JPEG
// data URIs.
func deriveImages(data []byte) (string, string, error) {
	detected := mimetype.Detect(data)
	if !strings.HasPrefix(detected.String(), "image/") {
		return "", "", fmt.Errorf("content is %s, not an image", detected.String())
	}

	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return "", "", fmt.Errorf("failed to read image header: %w", err)
	}
	if int64(cfg.Width)*int64(cfg.Height) > maxImagePixels {
		return "", "", fmt.Errorf("image is %dx%d, over the %d pixel limit", cfg.Width, cfg.Height, maxImagePixels)
	}

	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return "", "", fmt.Errorf("failed to decode image: %w", err)
	}

	thumbnail, err := encodeJPEG(scaleWithin(src, thumbnailBound), thumbnailQual)
	if err != nil {
		return "", "", err
	}

	full, err := encodeJPEG(scaleWithin(src, fullBound), fullQual)
	if err != nil {
		return "", "", err
	}

	return thumbnail, full, nil
}

// boundedSize clamps the longest side of w×h to bound, keeping the aspect
// ratio. Images already within bound are returned unchanged.
func boundedSize(w, h, bound int) (int, int) {
	if w > h {
		if w > bound {
			h = h * bound / w
			w = bound
		}
	} else if h > bound {
		w = w * bound / h
		h = bound
	}
	return max(w, 1), max(h, 1)
}

func scaleWithin(src image.Image, bound int) image.Image {
	b := src.Bounds()
	w, h := boundedSize(b.Dx(), b.Dy(), bound)

	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	// JPEG has no alpha; transparent areas become white.
	draw.Draw(dst, dst.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, b, draw.Over, nil)
	return dst
}

func encodeJPEG(img image.Image, quality int) (string, error) {
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: quality}); err != nil {
		return "", fmt.Errorf("failed to encode jpeg: %w", err)
	}
	return dataURI("image/jpeg", buf.Bytes()), nil
}

func dataURI(mimeType string, data []byte) string {
	return "data:" + mimeType + ";base64," + base64.StdEncoding.EncodeToString(data)
}
