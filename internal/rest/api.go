package rest

import (
	"net/http"
	"time"

	"github.com/dfryer1193/journal/internal/middleware"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

// NewRouter builds the engine with recovery, request logging, health and
// metrics endpoints, and the journal API.
func NewRouter(h *Handler, gatherer prometheus.Gatherer, log zerolog.Logger) *gin.Engine {
	router := gin.New()
	router.Use(gin.CustomRecovery(middleware.HandlePanics(log)))
	router.Use(middleware.LoggingMiddleware(log))

	router.GET("/health", healthCheck)
	if gatherer != nil {
		router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))
	}

	NewApi(router, h)
	return router
}

func NewApi(router *gin.Engine, h *Handler) {
	public := router.Group("/api")
	{
		public.GET("/posts", h.ListPosts)
		public.GET("/posts/:slug", h.GetPost)
		public.GET("/posts/:slug/comments", h.GetComments)
		public.POST("/posts/:slug/comments", h.PostComment)
		public.GET("/categories", h.ListCategories)
		public.GET("/tags", h.ListTags)
		public.GET("/media/:id", h.GetMedia)
	}

	router.POST("/api/admin/login", h.Login)

	admin := router.Group("/api/admin", middleware.RequireAdmin(h.gate))
	{
		admin.POST("/logout", h.Logout)
		admin.GET("/session", h.Session)

		admin.GET("/posts", h.AdminListPosts)
		admin.GET("/posts/:id", h.AdminGetPost)
		admin.POST("/posts", h.CreatePost)
		admin.PATCH("/posts/:id", h.UpdatePost)
		admin.DELETE("/posts/:id", h.DeletePost)

		admin.POST("/media", h.UploadMedia)
		admin.DELETE("/media/:id", h.DeleteMedia)
		admin.POST("/media/sweep", h.SweepMedia)

		admin.POST("/reload", h.Reload)
		admin.GET("/storage", h.Storage)

		admin.GET("/export/posts/:id", h.ExportPost)
		admin.GET("/export/index", h.ExportIndex)
		admin.GET("/export/archive", h.ExportArchive)
		admin.GET("/export/bulk", h.ExportBulk)
	}
}

func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"timestamp": time.Now().Format(time.RFC3339),
		"service":   "journal",
	})
}
