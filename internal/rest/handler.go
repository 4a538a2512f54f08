package rest

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/dfryer1193/journal/api"
	"github.com/dfryer1193/journal/blog/application"
	"github.com/dfryer1193/journal/blog/domain"
	"github.com/dfryer1193/journal/shared/auth"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// MediaStore is the media repository plus direct payload access for serving
// full images.
type MediaStore interface {
	domain.MediaRepository
	Payload(ctx context.Context, id string) (string, bool, error)
}

// Deps lists everything the handlers need.
type Deps struct {
	Posts     *application.PostService
	Comments  *application.CommentService
	Media     MediaStore
	Artifacts domain.ArtifactStore
	Generator *application.MarkdownGenerator
	Renderer  application.HTMLRenderer
	Gate      *auth.Gate
	// MaxUploadSize bounds one multipart upload request.
	MaxUploadSize int64
}

type Handler struct {
	posts     *application.PostService
	comments  *application.CommentService
	media     MediaStore
	artifacts domain.ArtifactStore
	generator *application.MarkdownGenerator
	renderer  application.HTMLRenderer
	gate      *auth.Gate
	maxUpload int64
}

func NewHandler(deps Deps) *Handler {
	return &Handler{
		posts:     deps.Posts,
		comments:  deps.Comments,
		media:     deps.Media,
		artifacts: deps.Artifacts,
		generator: deps.Generator,
		renderer:  deps.Renderer,
		gate:      deps.Gate,
		maxUpload: deps.MaxUploadSize,
	}
}

// statusFor maps domain errors onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrInvalidPost),
		errors.Is(err, domain.ErrInvalidComment),
		errors.Is(err, domain.ErrInvalidMedia):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrTooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, domain.ErrMediaDecode):
		return http.StatusUnprocessableEntity
	case errors.Is(err, domain.ErrDuplicateSlug):
		return http.StatusConflict
	case errors.Is(err, domain.ErrStorageQuotaExceeded):
		return http.StatusInsufficientStorage
	default:
		return http.StatusInternalServerError
	}
}

func writeError(c *gin.Context, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		log.Error().Err(err).Str("path", c.Request.URL.Path).Msg("Request failed")
		c.JSON(status, api.Error{Error: "internal server error"})
		return
	}
	c.JSON(status, api.Error{Error: err.Error()})
}

func badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, api.Error{Error: err.Error()})
}

func notFound(c *gin.Context, what, id string) {
	c.JSON(http.StatusNotFound, api.Error{Error: fmt.Sprintf("%s %q not found", what, id)})
}

func (h *Handler) toPost(ctx context.Context, p domain.Post) api.Post {
	media := make([]api.Media, 0, len(p.MediaFiles))
	for _, ref := range p.MediaFiles {
		media = append(media, api.Media{
			MediaRef:   toMediaRef(ref),
			DisplayURL: h.media.ResolveDisplayURL(ctx, ref),
			SizeLabel:  domain.FormatSize(ref.Size),
		})
	}

	tags := p.Tags
	if tags == nil {
		tags = []string{}
	}

	return api.Post{
		ID:          p.ID,
		Title:       p.Title,
		Slug:        p.Slug,
		Excerpt:     p.Excerpt,
		Content:     p.Content,
		Author:      p.Author,
		PublishedAt: p.PublishedAt,
		UpdatedAt:   p.UpdatedAt,
		Tags:        tags,
		Category:    p.Category,
		Featured:    p.Featured,
		Published:   p.Published,
		Views:       p.Views,
		MediaFiles:  media,
	}
}

func (h *Handler) toPosts(ctx context.Context, posts []domain.Post) []api.Post {
	out := make([]api.Post, 0, len(posts))
	for _, p := range posts {
		out = append(out, h.toPost(ctx, p))
	}
	return out
}

func (h *Handler) toWriteResult(ctx context.Context, r *application.WriteResult) api.WriteResult {
	out := api.WriteResult{
		Post:   h.toPost(ctx, r.Post),
		Status: r.Status.String(),
	}
	if r.ArtifactErr != nil {
		out.ArtifactError = r.ArtifactErr.Error()
	}
	return out
}

func toMediaRef(ref domain.MediaRef) api.MediaRef {
	return api.MediaRef{
		ID:        ref.ID,
		Name:      ref.Name,
		Type:      string(ref.Type),
		Size:      ref.Size,
		URL:       ref.URL,
		Thumbnail: ref.Thumbnail,
	}
}

func fromMediaRefs(refs []api.MediaRef) ([]domain.MediaRef, error) {
	out := make([]domain.MediaRef, 0, len(refs))
	for _, ref := range refs {
		t := domain.MediaType(ref.Type)
		switch t {
		case domain.MediaImage, domain.MediaAudio, domain.MediaVideo:
		default:
			return nil, fmt.Errorf("media %q has unknown type %q", ref.ID, ref.Type)
		}
		if ref.ID == "" {
			return nil, errors.New("media id is required")
		}
		out = append(out, domain.MediaRef{
			ID:        ref.ID,
			Name:      ref.Name,
			Type:      t,
			Size:      ref.Size,
			URL:       ref.URL,
			Thumbnail: ref.Thumbnail,
		})
	}
	return out, nil
}
