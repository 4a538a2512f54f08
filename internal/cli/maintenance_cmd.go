package cli

import (
	"fmt"
	"sort"
	"strings"

	"github.com/dfryer1193/journal/blog/application"
	"github.com/dfryer1193/journal/blog/domain"
	"github.com/spf13/cobra"
)

// NewSweepCmd returns the `sweep` command, which removes media payloads no
// post references.
func NewSweepCmd(deps *Deps) *cobra.Command {
	return &cobra.Command{
		Use:   "sweep",
		Short: "remove orphaned media payloads",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			removed, err := deps.posts.SweepOrphans(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "removed %d orphaned media\n", removed)
			return nil
		},
	}
}

// NewVerifyCmd returns the `verify` command. It checks that every post has an
// artifact whose front matter and body match the post.
func NewVerifyCmd(deps *Deps) *cobra.Command {
	return &cobra.Command{
		Use:   "verify",
		Short: "check markdown artifacts against the post list",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			files, err := deps.artifacts.All(cmd.Context())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			problems := 0
			seen := make(map[string]struct{})

			for _, post := range deps.posts.ListAll() {
				seen[post.ID] = struct{}{}
				artifact, ok := files[post.ID]
				if !ok {
					problems++
					fmt.Fprintf(out, "missing  %s\n", post.Slug)
					continue
				}
				if reason := compareArtifact(post, artifact); reason != "" {
					problems++
					fmt.Fprintf(out, "stale    %s: %s\n", post.Slug, reason)
					continue
				}
				fmt.Fprintf(out, "ok       %s\n", post.Slug)
			}

			var orphans []string
			for id := range files {
				if _, ok := seen[id]; !ok {
					orphans = append(orphans, id)
				}
			}
			sort.Strings(orphans)
			for _, id := range orphans {
				problems++
				fmt.Fprintf(out, "orphan   %s\n", id)
			}

			if problems > 0 {
				return fmt.Errorf("%d artifact problems found", problems)
			}
			return nil
		},
	}
}

func compareArtifact(post domain.Post, artifact domain.MarkdownArtifact) string {
	fm, body, err := application.ParseFrontMatter(artifact.Content)
	switch {
	case err != nil:
		return err.Error()
	case fm.Title != post.Title:
		return fmt.Sprintf("title is %q", fm.Title)
	case fm.Slug != post.Slug:
		return fmt.Sprintf("slug is %q", fm.Slug)
	case fm.Published != post.Published:
		return "published flag differs"
	case !strings.Contains(body, post.Content):
		return "body differs"
	}
	return ""
}
