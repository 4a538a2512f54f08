package rest

import (
	"fmt"
	"net/http"
	"time"

	"github.com/dfryer1193/journal/blog/application"
	"github.com/gin-gonic/gin"
)

const markdownContentType = "text/markdown; charset=utf-8"

// ExportPost downloads the stored artifact of a post, regenerating it when
// none is stored.
func (h *Handler) ExportPost(c *gin.Context) {
	id := c.Param("id")
	post := h.posts.GetByID(id)
	if post == nil {
		notFound(c, "post", id)
		return
	}

	artifact, err := h.artifacts.Fetch(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	if artifact == nil {
		fresh, err := h.generator.Render(*post)
		if err != nil {
			writeError(c, err)
			return
		}
		artifact = &fresh
	}

	download(c, artifact.Filename, artifact.Content)
}

func (h *Handler) ExportIndex(c *gin.Context) {
	index := h.generator.RenderIndex(h.posts.ListAll())
	download(c, index.Filename, index.Content)
}

func (h *Handler) ExportArchive(c *gin.Context) {
	content, err := h.generator.RenderArchive(h.posts.ListAll())
	if err != nil {
		writeError(c, err)
		return
	}
	download(c, application.ArchiveFilename(time.Now()), content)
}

func (h *Handler) ExportBulk(c *gin.Context) {
	bulk := h.generator.RenderBulk(h.posts.ListAll())
	download(c, bulk.Filename, bulk.Content)
}

func download(c *gin.Context, filename, content string) {
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, markdownContentType, []byte(content))
}
