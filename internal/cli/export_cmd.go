package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/dfryer1193/journal/blog/application"
	"github.com/spf13/cobra"
)

// NewExportCmd returns `export` and its post, index, archive and bulk
// subcommands. Output goes to stdout unless --out is given.
func NewExportCmd(deps *Deps) *cobra.Command {
	var out string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "export posts as markdown",
	}
	cmd.PersistentFlags().StringVarP(&out, "out", "o", "", "write to this file instead of stdout")

	write := func(cmd *cobra.Command, content string) error {
		if out == "" {
			_, err := fmt.Fprint(cmd.OutOrStdout(), content)
			return err
		}
		if err := os.WriteFile(out, []byte(content), 0o644); err != nil {
			return fmt.Errorf("failed to write %s: %w", out, err)
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "wrote %s\n", out)
		return nil
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "post ID|SLUG",
			Short: "export the stored artifact of one post",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				post := deps.posts.GetByID(args[0])
				if post == nil {
					post = deps.posts.GetBySlug(args[0])
				}
				if post == nil {
					return fmt.Errorf("post %q not found", args[0])
				}

				artifact, err := deps.artifacts.Fetch(cmd.Context(), post.ID)
				if err != nil {
					return err
				}
				if artifact == nil {
					fresh, err := deps.generator.Render(*post)
					if err != nil {
						return err
					}
					artifact = &fresh
				}
				return write(cmd, artifact.Content)
			},
		},
		&cobra.Command{
			Use:   "index",
			Short: "export " + application.IndexFilename,
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return write(cmd, deps.generator.RenderIndex(deps.posts.ListAll()).Content)
			},
		},
		&cobra.Command{
			Use:   "archive",
			Short: "export the index followed by every post artifact",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				content, err := deps.generator.RenderArchive(deps.posts.ListAll())
				if err != nil {
					return err
				}
				if out == "" {
					fmt.Fprintf(cmd.ErrOrStderr(), "suggested name: %s\n", application.ArchiveFilename(time.Now()))
				}
				return write(cmd, content)
			},
		},
		&cobra.Command{
			Use:   "bulk",
			Short: "export every post body in one readable document",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return write(cmd, deps.generator.RenderBulk(deps.posts.ListAll()).Content)
			},
		},
	)

	return cmd
}
