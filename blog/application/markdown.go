package application

import (
	"bytes"
	"fmt"
	"path"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer/html"
	"github.com/yuin/goldmark/text"
	"github.com/yuin/goldmark/util"
)

const (
	maxSnippetLength = 200

	// mediaScheme marks an image destination that refers to a stored media
	// payload by id, e.g. ![cover](media:k3Jx9a).
	mediaScheme = "media:"
)

// RenderedBody is the HTML rendering of a post body.
type RenderedBody struct {
	HTML    []byte
	Snippet string
}

// HTMLRenderer converts post bodies to HTML for the public read endpoints.
type HTMLRenderer interface {
	Render(markdown []byte) (*RenderedBody, error)
}

type linkRewriter struct {
	postBase  string
	mediaBase string
}

// Transform points media: images at the media endpoint and links between
// exported artifacts (<slug>.md) at the post pages.
func (t *linkRewriter) Transform(node *ast.Document, reader text.Reader, pc parser.Context) {
	ast.Walk(node, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}

		switch v := n.(type) {
		case *ast.Image:
			if id, ok := strings.CutPrefix(string(v.Destination), mediaScheme); ok && id != "" {
				v.Destination = []byte(t.mediaBase + "/" + id)
			}
		case *ast.Link:
			dest := string(v.Destination)
			if isRelativeLink(dest) && !strings.HasPrefix(dest, "/") {
				slug := strings.TrimSuffix(strings.TrimSuffix(path.Base(dest), ".md"), ".html")
				v.Destination = []byte(t.postBase + "/" + slug)
			}
		}
		return ast.WalkContinue, nil
	})
}

func isRelativeLink(dest string) bool {
	switch {
	case dest == "":
		return false
	case strings.HasPrefix(dest, "//"):
		return false
	case strings.HasPrefix(dest, "/"), strings.HasPrefix(dest, "./"), strings.HasPrefix(dest, "../"):
		return true
	case strings.HasPrefix(dest, "#"), strings.Contains(dest, ":"):
		return false
	}
	return true
}

type goldmarkRenderer struct {
	md goldmark.Markdown
}

// NewHTMLRenderer returns a GFM renderer that rewrites links between posts to
// postBase/<slug> and media: image references to mediaBase/<id>. Raw HTML in
// post bodies is dropped.
func NewHTMLRenderer(postBase, mediaBase string) HTMLRenderer {
	md := goldmark.New(
		goldmark.WithExtensions(extension.GFM),
		goldmark.WithParserOptions(
			parser.WithAutoHeadingID(),
			parser.WithASTTransformers(
				util.Prioritized(&linkRewriter{
					postBase:  strings.TrimSuffix(postBase, "/"),
					mediaBase: strings.TrimSuffix(mediaBase, "/"),
				}, 100),
			),
		),
		goldmark.WithRendererOptions(
			html.WithHardWraps(),
			html.WithXHTML(),
		),
	)

	return &goldmarkRenderer{md: md}
}

func (r *goldmarkRenderer) Render(markdown []byte) (*RenderedBody, error) {
	doc := r.md.Parser().Parse(text.NewReader(markdown))

	var buf bytes.Buffer
	if err := r.md.Renderer().Render(&buf, markdown, doc); err != nil {
		return nil, fmt.Errorf("failed to convert markdown to HTML: %w", err)
	}

	return &RenderedBody{
		HTML:    buf.Bytes(),
		Snippet: snippetOf(doc, markdown),
	}, nil
}

var snippetParser = goldmark.New(goldmark.WithExtensions(extension.GFM)).Parser()

// extractSnippet returns the plain text of the first top-level paragraph of a
// markdown body, cut at a word boundary once it exceeds maxSnippetLength.
func extractSnippet(markdown []byte) string {
	return snippetOf(snippetParser.Parse(text.NewReader(markdown)), markdown)
}

func snippetOf(doc ast.Node, source []byte) string {
	for n := doc.FirstChild(); n != nil; n = n.NextSibling() {
		if n.Kind() != ast.KindParagraph {
			continue
		}
		if s := plainText(n, source); s != "" {
			return truncate(s, maxSnippetLength)
		}
	}
	return ""
}

// plainText flattens inline content, dropping images and markup.
func plainText(n ast.Node, source []byte) string {
	var b strings.Builder
	_ = ast.Walk(n, func(c ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch v := c.(type) {
		case *ast.Image:
			return ast.WalkSkipChildren, nil
		case *ast.Text:
			b.Write(v.Segment.Value(source))
			if v.SoftLineBreak() || v.HardLineBreak() {
				b.WriteByte(' ')
			}
		case *ast.String:
			b.Write(v.Value)
		case *ast.AutoLink:
			b.Write(v.Label(source))
		}
		return ast.WalkContinue, nil
	})
	return strings.Join(strings.Fields(b.String()), " ")
}

func truncate(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	cut := s[:limit]
	if i := strings.LastIndexAny(cut, " \t"); i > 0 {
		cut = cut[:i]
	}
	return cut + "..."
}
