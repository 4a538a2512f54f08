package rest

import (
	"net/http"

	"github.com/dfryer1193/journal/api"
	"github.com/dfryer1193/journal/blog/application"
	"github.com/dfryer1193/journal/blog/domain"
	"github.com/gin-gonic/gin"
)

func (h *Handler) GetComments(c *gin.Context) {
	slug := c.Param("slug")
	post := h.posts.GetBySlug(slug)
	if post == nil {
		notFound(c, "post", slug)
		return
	}

	comments := h.comments.ListByPost(post.ID)
	out := make([]api.Comment, 0, len(comments))
	for _, cm := range comments {
		out = append(out, toComment(cm))
	}
	c.JSON(http.StatusOK, out)
}

// PostComment validates a submission and acknowledges it. Comments are held
// for review and never listed.
func (h *Handler) PostComment(c *gin.Context) {
	slug := c.Param("slug")
	proto := &api.CommentProto{}
	if err := c.ShouldBindJSON(proto); err != nil {
		badRequest(c, err)
		return
	}

	post := h.posts.GetBySlug(slug)
	if post == nil {
		notFound(c, "post", slug)
		return
	}

	comment, err := h.comments.Submit(post.ID, application.CommentDraft{
		Author:  proto.Name,
		Email:   proto.Email,
		Content: proto.Content,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	if comment == nil {
		notFound(c, "post", slug)
		return
	}

	c.JSON(http.StatusAccepted, api.CommentReceipt{
		Comment: toComment(*comment),
		Message: "Comment submitted for review",
	})
}

func toComment(cm domain.Comment) api.Comment {
	return api.Comment{
		ID:        cm.ID,
		PostID:    cm.PostID,
		Author:    cm.Author,
		Content:   cm.Content,
		CreatedAt: cm.CreatedAt,
		Approved:  cm.Approved,
	}
}
