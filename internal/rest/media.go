package rest

import (
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/dfryer1193/journal/api"
	"github.com/dfryer1193/journal/blog/domain"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

const uploadField = "files"

// GetMedia serves the stored full-size image for id.
func (h *Handler) GetMedia(c *gin.Context) {
	id := c.Param("id")
	payload, ok, err := h.media.Payload(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	if !ok {
		notFound(c, "media", id)
		return
	}

	mimeType, data, err := decodeDataURI(payload)
	if err != nil {
		writeError(c, fmt.Errorf("failed to decode media %s: %w", id, err))
		return
	}

	c.Header("Cache-Control", "private, max-age=3600")
	c.Data(http.StatusOK, mimeType, data)
}

// UploadMedia ingests every file of a multipart request independently.
func (h *Handler) UploadMedia(c *gin.Context) {
	if h.maxUpload > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUpload)
	}

	form, err := c.MultipartForm()
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			c.JSON(http.StatusRequestEntityTooLarge, api.Error{Error: err.Error()})
			return
		}
		badRequest(c, err)
		return
	}

	files := form.File[uploadField]
	if len(files) == 0 {
		badRequest(c, fmt.Errorf("no files in field %q", uploadField))
		return
	}

	uploads := make([]domain.Upload, 0, len(files))
	for _, fh := range files {
		f, err := fh.Open()
		if err != nil {
			badRequest(c, fmt.Errorf("failed to open %s: %w", fh.Filename, err))
			return
		}
		data, err := io.ReadAll(f)
		f.Close()
		if err != nil {
			badRequest(c, fmt.Errorf("failed to read %s: %w", fh.Filename, err))
			return
		}

		uploads = append(uploads, domain.Upload{
			Name:     fh.Filename,
			MIMEType: fh.Header.Get("Content-Type"),
			Size:     fh.Size,
			Data:     data,
		})
	}

	results := h.media.IngestBatch(c.Request.Context(), uploads)
	out := make([]api.UploadResult, 0, len(results))
	for _, r := range results {
		res := api.UploadResult{Name: r.Name}
		if r.Err != nil {
			res.Error = r.Err.Error()
		} else {
			ref := toMediaRef(*r.Ref)
			res.Ref = &ref
		}
		out = append(out, res)
	}

	c.JSON(http.StatusOK, out)
}

func (h *Handler) DeleteMedia(c *gin.Context) {
	if err := h.media.Remove(c.Request.Context(), c.Param("id")); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) SweepMedia(c *gin.Context) {
	removed, err := h.posts.SweepOrphans(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	log.Info().Int("removed", removed).Msg("Swept orphaned media on request")
	c.JSON(http.StatusOK, api.SweepResult{Removed: removed})
}

// decodeDataURI splits a base64 data URI into its MIME type and bytes.
func decodeDataURI(uri string) (string, []byte, error) {
	rest, ok := strings.CutPrefix(uri, "data:")
	if !ok {
		return "", nil, errors.New("not a data URI")
	}
	meta, payload, ok := strings.Cut(rest, ",")
	if !ok {
		return "", nil, errors.New("data URI has no payload")
	}
	mimeType, ok := strings.CutSuffix(meta, ";base64")
	if !ok {
		return "", nil, errors.New("data URI is not base64 encoded")
	}

	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return "", nil, err
	}
	return mimeType, data, nil
}
