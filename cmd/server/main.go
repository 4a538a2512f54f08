package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/dfryer1193/journal/blog/application"
	"github.com/dfryer1193/journal/blog/domain"
	"github.com/dfryer1193/journal/blog/persistence"
	"github.com/dfryer1193/journal/internal/config"
	"github.com/dfryer1193/journal/internal/logger"
	"github.com/dfryer1193/journal/internal/metrics"
	"github.com/dfryer1193/journal/internal/rest"
	"github.com/dfryer1193/journal/internal/storage"
	"github.com/dfryer1193/journal/shared/auth"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog/log"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid configuration")
	}

	log.Logger = logger.New(cfg.Log)
	if cfg.Log.Env != "development" {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	be, err := storage.Open(ctx, cfg.Store)
	if err != nil {
		log.Fatal().Err(err).Str("backend", cfg.Store.Backend).Msg("Failed to open store")
	}
	defer func() {
		if err := be.Close(); err != nil {
			log.Error().Err(err).Msg("Failed to close store")
		}
	}()

	media := persistence.NewMediaRepository(be.Store, log.Logger, m)
	artifacts := persistence.NewArtifactStore(be.Store)
	generator := application.NewMarkdownGenerator()

	postService, err := application.NewPostService(ctx, persistence.NewPostStore(be.Store, cfg.Store.PostsBudget), media, artifacts, generator, log.Logger, m)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load posts")
	}
	defer func() {
		if err := postService.Close(); err != nil {
			log.Error().Err(err).Msg("Failed to gracefully close post service")
		}
	}()

	postService.OnPostsChanged(func(c application.PostsChange) {
		if !c.External {
			return
		}
		posts, err := postService.ForceReload(ctx)
		if err != nil {
			log.Error().Err(err).Msg("Failed to reload posts after external change")
			return
		}
		log.Info().Int("count", len(posts)).Msg("Reloaded posts after external change")
	})

	if be.Watch != nil {
		go func() {
			if err := be.Watch(ctx); err != nil {
				log.Error().Err(err).Msg("Store watcher stopped")
			}
		}()
	}

	gate, err := newGate(cfg, be)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to set up admin gate")
	}

	handler := rest.NewHandler(rest.Deps{
		Posts:         postService,
		Comments:      application.NewCommentService(domain.DefaultComments(), postService, log.Logger),
		Media:         media,
		Artifacts:     artifacts,
		Generator:     generator,
		Renderer:      application.NewHTMLRenderer(cfg.Site.PostBase, cfg.Site.MediaBase),
		Gate:          gate,
		MaxUploadSize: cfg.Server.MaxUploadSize,
	})

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:      rest.NewRouter(handler, reg, log.Logger),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		log.Info().Str("backend", cfg.Store.Backend).Msg("Starting server on port :" + cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	<-ctx.Done()

	log.Info().Msg("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Failed to shutdown server")
	}

	log.Info().Msg("Server stopped")
}

func newGate(cfg *config.Config, be *storage.Backend) (*auth.Gate, error) {
	if cfg.Admin.PasswordHash != "" {
		return auth.NewGateWithHash(be.Store, cfg.Admin.Username, []byte(cfg.Admin.PasswordHash), log.Logger)
	}
	return auth.NewGate(be.Store, cfg.Admin.Username, cfg.Admin.Password, log.Logger)
}
