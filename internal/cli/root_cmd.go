// Package cli implements journalctl, the maintenance tool for a journal store.
package cli

import (
	"context"
	"fmt"

	"github.com/dfryer1193/journal/blog/application"
	"github.com/dfryer1193/journal/blog/persistence"
	"github.com/dfryer1193/journal/internal/config"
	"github.com/dfryer1193/journal/internal/storage"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

// Deps is shared by every command. Store is filled from the environment and
// may be overridden by flags.
type Deps struct {
	Store config.StoreConfig
	Log   zerolog.Logger

	// Open defaults to storage.Open.
	Open func(ctx context.Context, cfg config.StoreConfig) (*storage.Backend, error)

	backend   *storage.Backend
	posts     *application.PostService
	media     *persistence.KVMediaRepository
	artifacts *persistence.KVArtifactStore
	generator *application.MarkdownGenerator
}

func NewRootCmd(deps *Deps) *cobra.Command {
	if deps.Open == nil {
		deps.Open = storage.Open
	}

	cmd := &cobra.Command{
		Use:           "journalctl",
		Short:         "Inspect and maintain a journal store",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Name() == "help" {
				return nil
			}
			return deps.open(cmd.Context())
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return deps.Close()
		},
	}

	cmd.PersistentFlags().StringVar(&deps.Store.Backend, "backend", deps.Store.Backend, "store backend (memory, sqlite, nats)")
	cmd.PersistentFlags().StringVar(&deps.Store.SQLitePath, "db", deps.Store.SQLitePath, "SQLite database path")
	cmd.PersistentFlags().StringVar(&deps.Store.NATSURL, "nats-url", deps.Store.NATSURL, "NATS server URL")
	cmd.PersistentFlags().StringVar(&deps.Store.NATSBucket, "bucket", deps.Store.NATSBucket, "NATS KV bucket")

	cmd.AddCommand(
		NewListCmd(deps),
		NewSearchCmd(deps),
		NewExportCmd(deps),
		NewSweepCmd(deps),
		NewVerifyCmd(deps),
	)

	return cmd
}

func (d *Deps) open(ctx context.Context) error {
	if err := d.Store.Validate(); err != nil {
		return err
	}

	be, err := d.Open(ctx, d.Store)
	if err != nil {
		return fmt.Errorf("failed to open store: %w", err)
	}
	d.backend = be

	d.media = persistence.NewMediaRepository(be.Store, d.Log, nil)
	d.artifacts = persistence.NewArtifactStore(be.Store)
	d.generator = application.NewMarkdownGenerator()

	posts, err := application.NewPostService(ctx, persistence.NewPostStore(be.Store, d.Store.PostsBudget), d.media, d.artifacts, d.generator, d.Log, nil)
	if err != nil {
		return err
	}
	d.posts = posts
	return nil
}

// Close releases the store. It is safe to call more than once, and callers
// should call it after Execute since cobra skips PersistentPostRunE when a
// command fails.
func (d *Deps) Close() error {
	if d.posts != nil {
		d.posts.Close()
		d.posts = nil
	}
	if d.backend != nil {
		err := d.backend.Close()
		d.backend = nil
		return err
	}
	return nil
}
