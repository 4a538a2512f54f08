package application

import (
	"strings"
	"testing"
)

func TestExtractSnippet(t *testing.T) {
	tests := []struct {
		name     string
		markdown []byte
		expected string
	}{
		{
			name:     "First paragraph after title",
			markdown: []byte("# Title\nThis is the first paragraph\n\nMore content"),
			expected: "This is the first paragraph",
		},
		{
			name:     "Multi-line first paragraph",
			markdown: []byte("# Title\nFirst line of paragraph.\nSecond line of paragraph.\n\nSecond paragraph"),
			expected: "First line of paragraph. Second line of paragraph.",
		},
		{
			name:     "Skip empty lines after title",
			markdown: []byte("# Title\n\n\nThis is the content after blank lines"),
			expected: "This is the content after blank lines",
		},
		{
			name:     "Multiple headings",
			markdown: []byte("# Title\n## Subtitle\nFirst paragraph content"),
			expected: "First paragraph content",
		},
		{
			name:     "Stop at code block",
			markdown: []byte("# Title\nFirst paragraph\n```\ncode\n```"),
			expected: "First paragraph",
		},
		{
			name:     "Stop at list",
			markdown: []byte("# Title\nIntro text\n- List item"),
			expected: "Intro text",
		},
		{
			name:     "Stop at horizontal rule",
			markdown: []byte("# Title\nContent before rule\n***\nAfter"),
			expected: "Content before rule",
		},
		{
			name:     "Image-only paragraph is skipped",
			markdown: []byte("![cover](media:abc123)\n\nOpening line."),
			expected: "Opening line.",
		},
		{
			name:     "Truncate long paragraph",
			markdown: []byte("# Title\nThis is a very long paragraph that exceeds the maximum length limit and should be truncated at a word boundary to ensure that the snippet looks clean and professional without cutting words in the middle which would look unprofessional."),
			expected: "This is a very long paragraph that exceeds the maximum length limit and should be truncated at a word boundary to ensure that the snippet looks clean and professional without cutting words in the...",
		},
		{
			name:     "Only title, no content",
			markdown: []byte("# Title"),
			expected: "",
		},
		{
			name:     "Empty markdown",
			markdown: []byte(""),
			expected: "",
		},
		{
			name:     "No title, direct content",
			markdown: []byte("This is content without a title.\nSecond line."),
			expected: "This is content without a title. Second line.",
		},
		{
			name:     "Stop at image",
			markdown: []byte("# Title\nCaption text\n![cover](media:abc123)"),
			expected: "Caption text",
		},
		{
			name:     "Inline formatting is dropped",
			markdown: []byte("# Title\nThis has **bold**, *italic* and `code` [linked](other.md) text."),
			expected: "This has bold, italic and code linked text.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := extractSnippet(tt.markdown)
			if result != tt.expected {
				t.Errorf("extractSnippet() = %q, want %q", result, tt.expected)
			}
		})
	}
}

func TestGoldmarkRenderer_Render(t *testing.T) {
	renderer := NewHTMLRenderer("/journal", "/api/media")

	tests := []struct {
		name         string
		markdown     []byte
		expectedSnip string
	}{
		{
			name:         "Basic markdown rendering",
			markdown:     []byte("# Hello World\nThis is a test paragraph.\n\nSome **bold** text"),
			expectedSnip: "This is a test paragraph.",
		},
		{
			name:         "Markdown without title",
			markdown:     []byte("Just some content here.\nMore content on line two."),
			expectedSnip: "Just some content here. More content on line two.",
		},
		{
			name:         "Complex markdown with GFM features",
			markdown:     []byte("# Complex Post\nThis is my introduction paragraph.\n\n- [ ] Task 1\n- [x] Task 2\n\n| Col1 | Col2 |\n|------|------|\n| A    | B    |"),
			expectedSnip: "This is my introduction paragraph.",
		},
		{
			name:         "Markdown with only title",
			markdown:     []byte("# Only a Title"),
			expectedSnip: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := renderer.Render(tt.markdown)
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}

			if result.Snippet != tt.expectedSnip {
				t.Errorf("Snippet = %q, want %q", result.Snippet, tt.expectedSnip)
			}
			if len(result.HTML) == 0 {
				t.Error("HTML is empty")
			}
		})
	}
}

func TestIsRelativeLink(t *testing.T) {
	tests := []struct {
		name     string
		url      string
		expected bool
	}{
		{name: "Absolute HTTP URL", url: "http://example.com/page", expected: false},
		{name: "Absolute HTTPS URL", url: "https://example.com/page", expected: false},
		{name: "Protocol-relative URL", url: "//example.com/page", expected: false},
		{name: "Mailto link", url: "mailto:user@example.com", expected: false},
		{name: "Data URI", url: "data:image/png;base64,iVBOR...", expected: false},
		{name: "Media reference", url: "media:abc123", expected: false},
		{name: "Fragment", url: "#section", expected: false},
		{name: "Absolute path", url: "/about/contact", expected: true},
		{name: "Relative path with ./", url: "./images/photo.jpg", expected: true},
		{name: "Relative path with ../", url: "../docs/readme.md", expected: true},
		{name: "Simple filename", url: "music-universal-language.md", expected: true},
		{name: "Empty string", url: "", expected: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := isRelativeLink(tt.url)
			if result != tt.expected {
				t.Errorf("isRelativeLink(%q) = %v, want %v", tt.url, result, tt.expected)
			}
		})
	}
}

func TestRelativeLinkTransformer(t *testing.T) {
	renderer := NewHTMLRenderer("/journal/", "/api/media")

	tests := []struct {
		name           string
		markdown       string
		expectedInHTML []string
	}{
		{
			name:           "Artifact link to another post",
			markdown:       "[Next](music-universal-language.md)",
			expectedInHTML: []string{`href="/journal/music-universal-language"`},
		},
		{
			name:           "Relative path with directory",
			markdown:       "[Link](posts/my-post.md)",
			expectedInHTML: []string{`href="/journal/my-post"`},
		},
		{
			name:           "Relative path with parent directory",
			markdown:       "[Link](../other/page.html)",
			expectedInHTML: []string{`href="/journal/page"`},
		},
		{
			name:           "Absolute path unchanged",
			markdown:       "[About](/about)",
			expectedInHTML: []string{`href="/about"`},
		},
		{
			name:           "Media image reference",
			markdown:       "![Cover](media:k3Jx9a)",
			expectedInHTML: []string{`src="/api/media/k3Jx9a"`},
		},
		{
			name:           "Absolute image unchanged",
			markdown:       "![Image](https://cdn.example.com/image.jpg)",
			expectedInHTML: []string{`src="https://cdn.example.com/image.jpg"`},
		},
		{
			name:           "Mailto unchanged",
			markdown:       "[Email](mailto:test@example.com)",
			expectedInHTML: []string{`href="mailto:test@example.com"`},
		},
		{
			name: "Mixed links",
			markdown: `[Relative](digital-canvas-modern-art.md)
[Absolute](https://google.com)
![Stored](media:abc)`,
			expectedInHTML: []string{
				`href="/journal/digital-canvas-modern-art"`,
				`href="https://google.com"`,
				`src="/api/media/abc"`,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := renderer.Render([]byte(tt.markdown))
			if err != nil {
				t.Fatalf("Render failed: %v", err)
			}

			html := string(result.HTML)
			for _, expected := range tt.expectedInHTML {
				if !strings.Contains(html, expected) {
					t.Errorf("HTML does not contain expected string %q\nHTML:\n%s", expected, html)
				}
			}
		})
	}
}

func TestGoldmarkRenderer_Render_HTMLOutput(t *testing.T) {
	renderer := NewHTMLRenderer("/journal", "/api/media")

	tests := []struct {
		name           string
		markdown       []byte
		expectedInHTML []string
	}{
		{
			name:           "Bold text conversion",
			markdown:       []byte("# Test\nTest\n\n**bold text**"),
			expectedInHTML: []string{"<strong>bold text</strong>"},
		},
		{
			name:           "Link conversion",
			markdown:       []byte("# Test\nSnippet\n\n[Link](https://example.com)"),
			expectedInHTML: []string{"<a href=\"https://example.com\">Link</a>"},
		},
		{
			name:           "Code block conversion",
			markdown:       []byte("# Test\nSnippet\n\n```go\nfunc main() {}\n```"),
			expectedInHTML: []string{"<code"},
		},
		{
			name:           "Strikethrough (GFM extension)",
			markdown:       []byte("# Test\nSnippet\n\n~~strikethrough~~"),
			expectedInHTML: []string{"<del>strikethrough</del>"},
		},
		{
			name: "Table (GFM extension)",
			markdown: []byte(`# Test
Snippet

| Header1 | Header2 |
|---------|---------|
| Cell1   | Cell2   |`),
			expectedInHTML: []string{"<table>", "<thead>", "<tbody>"},
		},
		{
			name:           "Raw HTML is not passed through",
			markdown:       []byte("# Test\n\n<script>alert(1)</script>"),
			expectedInHTML: []string{"<!-- raw HTML omitted -->"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := renderer.Render(tt.markdown)
			if err != nil {
				t.Fatalf("Render failed: %v", err)
			}

			htmlStr := string(result.HTML)
			for _, expected := range tt.expectedInHTML {
				if !strings.Contains(htmlStr, expected) {
					t.Errorf("HTML does not contain expected string %q", expected)
				}
			}
		})
	}
}
