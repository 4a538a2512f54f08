package application

import (
	"strings"
	"testing"
	"time"

	"github.com/dfryer1193/journal/blog/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2024, 2, 1, 12, 0, 0, 0, time.UTC)

func testGenerator() *MarkdownGenerator {
	return NewMarkdownGenerator().WithClock(func() time.Time { return fixedNow })
}

func samplePost() domain.Post {
	return domain.Post{
		ID:          "p1",
		Title:       "Test Entry",
		Slug:        "test-entry",
		Excerpt:     "A short \"quoted\" excerpt",
		Content:     "# Test Entry\n\nBody text.",
		Author:      "Eli Cadieux",
		PublishedAt: time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC),
		UpdatedAt:   time.Date(2024, 1, 16, 8, 30, 0, 0, time.UTC),
		Tags:        []string{"a", "b", "b"},
		Category:    "Philosophy",
		Featured:    true,
		Published:   true,
		Views:       42,
	}
}

func TestMarkdownGenerator_Render(t *testing.T) {
	post := samplePost()

	artifact, err := testGenerator().Render(post)
	require.NoError(t, err)

	assert.Equal(t, "test-entry.md", artifact.Filename)
	assert.Equal(t, fixedNow, artifact.CreatedAt)

	want := `---
title: "Test Entry"
slug: "test-entry"
author: "Eli Cadieux"
publishedAt: "2024-01-15T10:00:00Z"
updatedAt: "2024-01-16T08:30:00Z"
category: "Philosophy"
tags: ["a", "b", "b"]
featured: true
published: true
views: 42
excerpt: "A short \"quoted\" excerpt"
---

# Test Entry

Body text.

---

**Published:** January 15, 2024
**Category:** Philosophy
**Tags:** a, b, b
**Views:** 42
`
	assert.Equal(t, want, artifact.Content)
}

func TestMarkdownGenerator_RenderMediaSection(t *testing.T) {
	post := samplePost()
	post.MediaFiles = []domain.MediaRef{
		{ID: "m1", Name: "cover.jpg", Type: domain.MediaImage, Thumbnail: "data:image/jpeg;base64,AAA", URL: "data:image/jpeg;base64,BBB"},
		{ID: "m2", Name: "plain.png", Type: domain.MediaImage, URL: "data:image/jpeg;base64,CCC"},
		{ID: "m3", Name: "song.mp3", Type: domain.MediaAudio, URL: "data:audio/mpeg;base64,DDD"},
		{ID: "m4", Name: "clip.mp4", Type: domain.MediaVideo, URL: "data:video/mp4;base64,EEE"},
	}

	artifact, err := testGenerator().Render(post)
	require.NoError(t, err)

	section := "## Media Files\n\n" +
		"![cover.jpg](data:image/jpeg;base64,AAA)\n\n" +
		"![plain.png](data:image/jpeg;base64,CCC)\n\n" +
		"**Audio:** [song.mp3](data:audio/mpeg;base64,DDD)\n\n" +
		"**Video:** [clip.mp4](data:video/mp4;base64,EEE)\n\n" +
		"---\n\n# Test Entry"
	assert.Contains(t, artifact.Content, section)
}

func TestMarkdownGenerator_RenderIsDeterministic(t *testing.T) {
	g := testGenerator()
	first, err := g.Render(samplePost())
	require.NoError(t, err)
	second, err := g.Render(samplePost())
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestParseFrontMatter(t *testing.T) {
	tests := []struct {
		name string
		post func() domain.Post
	}{
		{name: "sample post", post: samplePost},
		{
			name: "no tags and special characters",
			post: func() domain.Post {
				p := samplePost()
				p.Tags = nil
				p.Title = "Colons: and # hashes, \"quotes\" and\nnewlines"
				p.Excerpt = ""
				return p
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			post := tt.post()
			artifact, err := testGenerator().Render(post)
			require.NoError(t, err)

			fm, body, err := ParseFrontMatter(artifact.Content)
			require.NoError(t, err)

			assert.Equal(t, post.Title, fm.Title)
			assert.Equal(t, post.Slug, fm.Slug)
			assert.Equal(t, post.Excerpt, fm.Excerpt)
			assert.Equal(t, post.Views, fm.Views)
			assert.Equal(t, post.Featured, fm.Featured)
			assert.Equal(t, post.Published, fm.Published)
			assert.Equal(t, len(post.Tags), len(fm.Tags))
			assert.Equal(t, post.PublishedAt.Format(time.RFC3339), fm.PublishedAt)
			assert.True(t, strings.HasPrefix(body, post.Content))
		})
	}
}

func TestParseFrontMatter_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{name: "no fence", content: "# Just a body"},
		{name: "unterminated", content: "---\ntitle: \"x\"\n"},
		{name: "bad yaml", content: "---\ntitle: [unclosed\n---\n\nbody"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := ParseFrontMatter(tt.content)
			assert.Error(t, err)
		})
	}
}

func TestMarkdownGenerator_RenderIndex(t *testing.T) {
	first := samplePost()
	second := samplePost()
	second.ID = "p2"
	second.Title = "Second"
	second.Slug = "second"
	second.Excerpt = "Second excerpt"

	index := testGenerator().RenderIndex([]domain.Post{second, first})

	assert.Equal(t, IndexFilename, index.Filename)
	assert.True(t, strings.HasPrefix(index.Content, "# Journal Posts Index\n\nGenerated on: February 1, 2024\n\nTotal Posts: 2\n\n## Posts\n\n"))
	assert.Contains(t, index.Content, "### [Second](second.md)\n\n**Published:** January 15, 2024  \n**Category:** Philosophy  \n**Tags:** a, b, b  \n\nSecond excerpt\n\n---\n")

	// Input order is kept.
	assert.Less(t, strings.Index(index.Content, "[Second]"), strings.Index(index.Content, "[Test Entry]"))
}

func TestMarkdownGenerator_RenderArchive(t *testing.T) {
	g := testGenerator()
	posts := []domain.Post{samplePost()}

	archive, err := g.RenderArchive(posts)
	require.NoError(t, err)

	index := g.RenderIndex(posts)
	artifact, err := g.Render(posts[0])
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(archive, index.Content+"\n\n"))
	assert.Contains(t, archive, archiveRule+"\nFILE: test-entry.md\n"+archiveRule+"\n\n"+artifact.Content)
}

func TestMarkdownGenerator_RenderBulk(t *testing.T) {
	bulk := testGenerator().RenderBulk([]domain.Post{samplePost()})

	assert.Equal(t, "journal-archive-2024-02-01.md", bulk.Filename)
	assert.True(t, strings.HasPrefix(bulk.Content, "# Journal Archive\n\nGenerated on February 1, 2024\n\nTotal posts: 1\n\n---\n\n"))
	assert.Contains(t, bulk.Content, "# 1. Test Entry\n\n**Author:** Eli Cadieux\n")
}
