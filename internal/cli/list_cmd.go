package cli

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/dfryer1193/journal/blog/domain"
	"github.com/spf13/cobra"
)

// NewListCmd returns the `list` command.
//
// Usage examples:
//
//	journalctl list
//	journalctl list --all
//	journalctl list --category Music
func NewListCmd(deps *Deps) *cobra.Command {
	var (
		all      bool
		category string
		tag      string
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "list posts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var posts []domain.Post
			switch {
			case category != "":
				posts = deps.posts.ListByCategory(category)
			case tag != "":
				posts = deps.posts.ListByTag(tag)
			case all:
				posts = deps.posts.ListAll()
			default:
				posts = deps.posts.ListPublished()
			}
			return printPosts(cmd.OutOrStdout(), posts)
		},
	}

	cmd.Flags().BoolVar(&all, "all", false, "include unpublished posts")
	cmd.Flags().StringVar(&category, "category", "", "only published posts in this category")
	cmd.Flags().StringVar(&tag, "tag", "", "only published posts with this tag")

	return cmd
}

// NewSearchCmd returns the `search QUERY` command.
func NewSearchCmd(deps *Deps) *cobra.Command {
	return &cobra.Command{
		Use:   "search QUERY",
		Short: "search published posts",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return printPosts(cmd.OutOrStdout(), deps.posts.Search(args[0]))
		},
	}
}

func printPosts(out io.Writer, posts []domain.Post) error {
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tSLUG\tCATEGORY\tPUBLISHED\tMEDIA\tTITLE")
	for _, p := range posts {
		var size int64
		for _, m := range p.MediaFiles {
			size += m.Size
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%t\t%s\t%s\n", p.ID, p.Slug, p.Category, p.Published, domain.FormatSize(size), p.Title)
	}
	return tw.Flush()
}
