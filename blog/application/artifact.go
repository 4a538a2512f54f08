package application

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/dfryer1193/journal/blog/domain"
	"gopkg.in/yaml.v3"
)

const (
	IndexFilename = "journal-index.md"

	frontMatterFence = "---"
	footerDateLayout = "January 2, 2006"
	archiveRule      = "================================================================================"
)

// MarkdownGenerator renders posts into markdown artifacts. Output depends only
// on the posts passed in, apart from creation timestamps.
type MarkdownGenerator struct {
	now func() time.Time
}

func NewMarkdownGenerator() *MarkdownGenerator {
	return &MarkdownGenerator{now: time.Now}
}

// WithClock replaces the generator's time source.
func (g *MarkdownGenerator) WithClock(now func() time.Time) *MarkdownGenerator {
	g.now = now
	return g
}

// FrontMatter is the metadata block at the top of a post artifact.
type FrontMatter struct {
	Title       string   `yaml:"title"`
	Slug        string   `yaml:"slug"`
	Author      string   `yaml:"author"`
	PublishedAt string   `yaml:"publishedAt"`
	UpdatedAt   string   `yaml:"updatedAt"`
	Category    string   `yaml:"category"`
	Tags        []string `yaml:"tags"`
	Featured    bool     `yaml:"featured"`
	Published   bool     `yaml:"published"`
	Views       int      `yaml:"views"`
	Excerpt     string   `yaml:"excerpt"`
}

// Render produces the single-post artifact <slug>.md.
func (g *MarkdownGenerator) Render(post domain.Post) (domain.MarkdownArtifact, error) {
	fm, err := encodeFrontMatter(post)
	if err != nil {
		return domain.MarkdownArtifact{}, err
	}

	var b strings.Builder
	b.WriteString(frontMatterFence + "\n")
	b.Write(fm)
	b.WriteString(frontMatterFence + "\n\n")

	if len(post.MediaFiles) > 0 {
		b.WriteString("## Media Files\n\n")
		for _, m := range post.MediaFiles {
			switch m.Type {
			case domain.MediaImage:
				src := m.Thumbnail
				if src == "" {
					src = m.URL
				}
				fmt.Fprintf(&b, "![%s](%s)\n\n", m.Name, src)
			case domain.MediaAudio:
				fmt.Fprintf(&b, "**Audio:** [%s](%s)\n\n", m.Name, m.URL)
			case domain.MediaVideo:
				fmt.Fprintf(&b, "**Video:** [%s](%s)\n\n", m.Name, m.URL)
			}
		}
		b.WriteString("---\n\n")
	}

	b.WriteString(post.Content)

	b.WriteString("\n\n---\n\n")
	fmt.Fprintf(&b, "**Published:** %s\n", formatDate(post.PublishedAt))
	fmt.Fprintf(&b, "**Category:** %s\n", post.Category)
	fmt.Fprintf(&b, "**Tags:** %s\n", strings.Join(post.Tags, ", "))
	fmt.Fprintf(&b, "**Views:** %d\n", post.Views)

	return domain.MarkdownArtifact{
		Filename:  post.Slug + ".md",
		Content:   b.String(),
		CreatedAt: g.now().UTC(),
	}, nil
}

// RenderIndex produces journal-index.md listing posts in the order given.
func (g *MarkdownGenerator) RenderIndex(posts []domain.Post) domain.MarkdownArtifact {
	now := g.now().UTC()

	entries := make([]string, 0, len(posts))
	for _, p := range posts {
		var e strings.Builder
		fmt.Fprintf(&e, "\n### [%s](%s.md)\n\n", p.Title, p.Slug)
		fmt.Fprintf(&e, "**Published:** %s  \n", formatDate(p.PublishedAt))
		fmt.Fprintf(&e, "**Category:** %s  \n", p.Category)
		fmt.Fprintf(&e, "**Tags:** %s  \n\n", strings.Join(p.Tags, ", "))
		fmt.Fprintf(&e, "%s\n\n---\n", p.Excerpt)
		entries = append(entries, e.String())
	}

	var b strings.Builder
	b.WriteString("# Journal Posts Index\n\n")
	fmt.Fprintf(&b, "Generated on: %s\n\n", formatDate(now))
	fmt.Fprintf(&b, "Total Posts: %d\n\n", len(posts))
	b.WriteString("## Posts\n\n")
	b.WriteString(strings.Join(entries, "\n"))
	b.WriteString("\n")

	return domain.MarkdownArtifact{
		Filename:  IndexFilename,
		Content:   b.String(),
		CreatedAt: now,
	}
}

// RenderArchive bundles the index and every post artifact into one plain text
// document. Each artifact is preceded by a FILE: <filename> banner.
func (g *MarkdownGenerator) RenderArchive(posts []domain.Post) (string, error) {
	sections := make([]string, 0, len(posts))
	for _, p := range posts {
		artifact, err := g.Render(p)
		if err != nil {
			return "", fmt.Errorf("failed to render post %s: %w", p.ID, err)
		}
		sections = append(sections, fmt.Sprintf("\n%s\nFILE: %s\n%s\n\n%s\n\n", archiveRule, artifact.Filename, archiveRule, artifact.Content))
	}

	index := g.RenderIndex(posts)
	return index.Content + "\n\n" + strings.Join(sections, "\n"), nil
}

// ArchiveFilename is the download name of a bulk export made on day.
func ArchiveFilename(day time.Time) string {
	return "journal-archive-" + day.UTC().Format("2006-01-02") + ".md"
}

// RenderBulk produces a single readable document with every post body, the
// format of the admin "download all" action.
func (g *MarkdownGenerator) RenderBulk(posts []domain.Post) domain.MarkdownArtifact {
	now := g.now().UTC()

	var b strings.Builder
	fmt.Fprintf(&b, "# Journal Archive\n\nGenerated on %s\n\n", formatDate(now))
	fmt.Fprintf(&b, "Total posts: %d\n\n---\n\n", len(posts))

	for i, p := range posts {
		fmt.Fprintf(&b, "# %d. %s\n\n", i+1, p.Title)
		fmt.Fprintf(&b, "**Author:** %s\n", p.Author)
		fmt.Fprintf(&b, "**Published:** %s\n", formatDate(p.PublishedAt))
		fmt.Fprintf(&b, "**Category:** %s\n", p.Category)
		fmt.Fprintf(&b, "**Tags:** %s\n\n", strings.Join(p.Tags, ", "))
		fmt.Fprintf(&b, "%s\n\n", p.Content)
		b.WriteString("---\n\n")
	}

	return domain.MarkdownArtifact{
		Filename:  ArchiveFilename(now),
		Content:   b.String(),
		CreatedAt: now,
	}
}

// ParseFrontMatter splits an artifact into its front matter and the remainder.
func ParseFrontMatter(content string) (*FrontMatter, string, error) {
	rest, ok := strings.CutPrefix(content, frontMatterFence+"\n")
	if !ok {
		return nil, "", fmt.Errorf("artifact does not start with front matter")
	}

	raw, body, ok := strings.Cut(rest, "\n"+frontMatterFence+"\n")
	if !ok {
		return nil, "", fmt.Errorf("front matter is not terminated")
	}

	var fm FrontMatter
	if err := yaml.Unmarshal([]byte(raw), &fm); err != nil {
		return nil, "", fmt.Errorf("failed to decode front matter: %w", err)
	}

	return &fm, strings.TrimPrefix(body, "\n"), nil
}

func encodeFrontMatter(post domain.Post) ([]byte, error) {
	doc := &yaml.Node{Kind: yaml.MappingNode}

	add := func(key string, value *yaml.Node) {
		doc.Content = append(doc.Content, &yaml.Node{Kind: yaml.ScalarNode, Value: key}, value)
	}

	add("title", quoted(post.Title))
	add("slug", quoted(post.Slug))
	add("author", quoted(post.Author))
	add("publishedAt", quoted(post.PublishedAt.UTC().Format(time.RFC3339)))
	add("updatedAt", quoted(post.UpdatedAt.UTC().Format(time.RFC3339)))
	add("category", quoted(post.Category))

	tags := &yaml.Node{Kind: yaml.SequenceNode, Style: yaml.FlowStyle}
	for _, t := range post.Tags {
		tags.Content = append(tags.Content, quoted(t))
	}
	add("tags", tags)

	add("featured", &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!bool", Value: strconv.FormatBool(post.Featured)})
	add("published", &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!bool", Value: strconv.FormatBool(post.Published)})
	add("views", &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!int", Value: strconv.Itoa(post.Views)})
	add("excerpt", quoted(post.Excerpt))

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return nil, fmt.Errorf("failed to encode front matter: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("failed to encode front matter: %w", err)
	}

	return buf.Bytes(), nil
}

func quoted(s string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Style: yaml.DoubleQuotedStyle, Value: s}
}

func formatDate(t time.Time) string {
	return t.UTC().Format(footerDateLayout)
}
