package rest

import (
	"net/http"
	"strconv"

	"github.com/dfryer1193/journal/blog/domain"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// ListPosts serves published posts. At most one filter applies, in the order
// q, category, tag, featured.
func (h *Handler) ListPosts(c *gin.Context) {
	var posts []domain.Post
	switch {
	case c.Query("q") != "":
		posts = h.posts.Search(c.Query("q"))
	case c.Query("category") != "":
		posts = h.posts.ListByCategory(c.Query("category"))
	case c.Query("tag") != "":
		posts = h.posts.ListByTag(c.Query("tag"))
	case c.Query("featured") != "":
		featured, err := strconv.ParseBool(c.Query("featured"))
		if err != nil {
			badRequest(c, err)
			return
		}
		if featured {
			posts = h.posts.ListFeatured()
		} else {
			posts = h.posts.ListPublished()
		}
	default:
		posts = h.posts.ListPublished()
	}

	c.JSON(http.StatusOK, h.toPosts(c.Request.Context(), posts))
}

// GetPost serves one published post with its body rendered to HTML.
func (h *Handler) GetPost(c *gin.Context) {
	slug := c.Param("slug")
	post := h.posts.GetBySlug(slug)
	if post == nil {
		notFound(c, "post", slug)
		return
	}

	out := h.toPost(c.Request.Context(), *post)
	body, err := h.renderer.Render([]byte(post.Content))
	if err != nil {
		log.Warn().Err(err).Str("slug", slug).Msg("Failed to render post body")
	} else {
		out.HTML = string(body.HTML)
	}

	c.JSON(http.StatusOK, out)
}

func (h *Handler) ListCategories(c *gin.Context) {
	c.JSON(http.StatusOK, h.posts.Categories())
}

func (h *Handler) ListTags(c *gin.Context) {
	c.JSON(http.StatusOK, h.posts.Tags())
}
