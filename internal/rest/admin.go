package rest

import (
	"net/http"

	"github.com/dfryer1193/journal/api"
	"github.com/dfryer1193/journal/blog/application"
	"github.com/dfryer1193/journal/blog/domain"
	"github.com/dfryer1193/journal/internal/middleware"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

func (h *Handler) Login(c *gin.Context) {
	creds := &api.Credentials{}
	if err := c.ShouldBindJSON(creds); err != nil {
		badRequest(c, err)
		return
	}

	if !h.gate.ValidateCredentials(creds.Username, creds.Password) {
		c.JSON(http.StatusUnauthorized, api.Error{Error: "invalid credentials"})
		return
	}
	token, err := h.gate.StartSession(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}

	setSessionCookie(c, token, int(h.gate.TTL().Seconds()))
	c.JSON(http.StatusOK, api.Session{Authenticated: true, Token: token})
}

func (h *Handler) Logout(c *gin.Context) {
	if err := h.gate.SetAuthenticated(c.Request.Context(), middleware.SessionToken(c), false); err != nil {
		writeError(c, err)
		return
	}
	setSessionCookie(c, "", -1)
	c.JSON(http.StatusOK, api.Session{Authenticated: false})
}

func (h *Handler) Session(c *gin.Context) {
	c.JSON(http.StatusOK, api.Session{Authenticated: true})
}

func setSessionCookie(c *gin.Context, token string, maxAge int) {
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(middleware.SessionCookie, token, maxAge, "/", "", c.Request.TLS != nil, true)
}

// AdminListPosts includes drafts.
func (h *Handler) AdminListPosts(c *gin.Context) {
	c.JSON(http.StatusOK, h.toPosts(c.Request.Context(), h.posts.ListAll()))
}

func (h *Handler) AdminGetPost(c *gin.Context) {
	id := c.Param("id")
	post := h.posts.GetByID(id)
	if post == nil {
		notFound(c, "post", id)
		return
	}
	c.JSON(http.StatusOK, h.toPost(c.Request.Context(), *post))
}

func (h *Handler) CreatePost(c *gin.Context) {
	proto := &api.PostProto{}
	if err := c.ShouldBindJSON(proto); err != nil {
		badRequest(c, err)
		return
	}

	media, err := fromMediaRefs(proto.MediaFiles)
	if err != nil {
		badRequest(c, err)
		return
	}

	tags := proto.Tags
	if tags == nil {
		tags = application.ParseTags(proto.TagsField)
	}

	result, err := h.posts.Create(c.Request.Context(), domain.PostDraft{
		Title:      proto.Title,
		Slug:       proto.Slug,
		Excerpt:    proto.Excerpt,
		Content:    proto.Content,
		Author:     proto.Author,
		Tags:       tags,
		Category:   proto.Category,
		Featured:   proto.Featured,
		Published:  proto.Published,
		MediaFiles: media,
	})
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, h.toWriteResult(c.Request.Context(), result))
}

func (h *Handler) UpdatePost(c *gin.Context) {
	id := c.Param("id")
	proto := &api.PostPatch{}
	if err := c.ShouldBindJSON(proto); err != nil {
		badRequest(c, err)
		return
	}

	patch := domain.PostPatch{
		Title:     proto.Title,
		Slug:      proto.Slug,
		Excerpt:   proto.Excerpt,
		Content:   proto.Content,
		Author:    proto.Author,
		Tags:      proto.Tags,
		Category:  proto.Category,
		Featured:  proto.Featured,
		Published: proto.Published,
		Views:     proto.Views,
	}
	if patch.Tags == nil && proto.TagsField != nil {
		tags := application.ParseTags(*proto.TagsField)
		patch.Tags = &tags
	}
	if proto.MediaFiles != nil {
		media, err := fromMediaRefs(*proto.MediaFiles)
		if err != nil {
			badRequest(c, err)
			return
		}
		patch.MediaFiles = &media
	}

	result, err := h.posts.Update(c.Request.Context(), id, patch)
	if err != nil {
		writeError(c, err)
		return
	}
	if result == nil {
		notFound(c, "post", id)
		return
	}

	c.JSON(http.StatusOK, h.toWriteResult(c.Request.Context(), result))
}

func (h *Handler) DeletePost(c *gin.Context) {
	if err := h.posts.Delete(c.Request.Context(), c.Param("id")); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Reload drops the cached list and reads it from the store again.
func (h *Handler) Reload(c *gin.Context) {
	posts, err := h.posts.ForceReload(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	log.Info().Int("count", len(posts)).Msg("Reloaded posts on request")
	c.JSON(http.StatusOK, h.toPosts(c.Request.Context(), posts))
}

func (h *Handler) Storage(c *gin.Context) {
	version, err := h.posts.StorageVersion(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, api.StorageInfo{Version: version, Posts: len(h.posts.ListAll())})
}
