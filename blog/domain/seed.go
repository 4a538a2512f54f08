package domain

import "time"

const defaultAuthor = "Eli Cadieux"

// DefaultPosts returns the posts a fresh journal is seeded with.
func DefaultPosts() []Post {
	return []Post{
		{
			ID:          "1",
			Title:       "The Philosophy of Art and Life",
			Slug:        "philosophy-of-art-and-life",
			Excerpt:     "Exploring the deep connection between artistic expression and the meaning of existence.",
			Content:     philosophyOfArtContent,
			Author:      defaultAuthor,
			PublishedAt: mustTime("2024-01-15T10:00:00Z"),
			UpdatedAt:   mustTime("2024-01-15T10:00:00Z"),
			Tags:        []string{"philosophy", "art", "creativity"},
			Category:    "Philosophy",
			Featured:    true,
			Published:   true,
			Views:       1247,
			MediaFiles:  []MediaRef{},
		},
		{
			ID:          "2",
			Title:       "Music as the Universal Language",
			Slug:        "music-universal-language",
			Excerpt:     "How music transcends barriers and connects souls across cultures and time.",
			Content:     universalLanguageContent,
			Author:      defaultAuthor,
			PublishedAt: mustTime("2024-01-10T14:30:00Z"),
			UpdatedAt:   mustTime("2024-01-10T14:30:00Z"),
			Tags:        []string{"music", "culture", "connection"},
			Category:    "Music",
			Published:   true,
			Views:       892,
			MediaFiles:  []MediaRef{},
		},
		{
			ID:          "3",
			Title:       "The Digital Canvas: Art in the Modern Age",
			Slug:        "digital-canvas-modern-art",
			Excerpt:     "Exploring how technology has transformed artistic expression and creativity.",
			Content:     digitalCanvasContent,
			Author:      defaultAuthor,
			PublishedAt: mustTime("2024-01-05T09:15:00Z"),
			UpdatedAt:   mustTime("2024-01-05T09:15:00Z"),
			Tags:        []string{"digital art", "technology", "social media"},
			Category:    "Technology",
			Published:   true,
			Views:       654,
			MediaFiles:  []MediaRef{},
		},
	}
}

// DefaultComments returns the static reader comments.
func DefaultComments() []Comment {
	return []Comment{
		{
			ID:        "1",
			PostID:    "1",
			Author:    "Sarah Johnson",
			Email:     "sarah@example.com",
			Content:   "This really resonates with me. I've been struggling with whether to pursue my art full-time.",
			CreatedAt: mustTime("2024-01-16T08:30:00Z"),
			Approved:  true,
		},
		{
			ID:        "2",
			PostID:    "1",
			Author:    "Mike Chen",
			Email:     "mike@example.com",
			Content:   "Beautiful perspective on the relationship between art and life. Thank you for sharing.",
			CreatedAt: mustTime("2024-01-16T12:45:00Z"),
			Approved:  true,
		},
	}
}

func mustTime(s string) time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		panic(err)
	}
	return t
}

const philosophyOfArtContent = `# The Philosophy of Art and Life

Art is not merely decoration or entertainment—it is the very essence of human expression and understanding. When we create, we touch something divine within ourselves.

## The Creative Process

The act of creation is both deeply personal and universally human. It connects us to:

- Our innermost thoughts and feelings
- The collective human experience
- The divine spark of creativity
- The eternal quest for meaning

## Art as Life's Purpose

Perhaps the greatest tragedy is not pursuing one's artistic calling. As the saying goes, "pity you didn't dedicate your life to Art"—for in art, we find not just expression, but purpose itself.

The equation LIFE⁴ (ART) = ¹LOVE suggests that life raised to the fourth power through art equals pure love. This mathematical poetry captures the transformative power of creative expression.

## Conclusion

Every moment we don't create is a moment we're not fully alive. Art isn't just what we do—it's who we are.`

const universalLanguageContent = `# Music as the Universal Language

Music speaks where words fail. It's the one language that every human heart understands, regardless of culture, age, or background.

## The Power of Melody

A simple melody can:
- Evoke memories from decades past
- Bring strangers together in harmony
- Express emotions too complex for words
- Heal wounds that time cannot touch

## Rhythm of Life

Every heartbeat is a drum, every breath a note. We are all musicians in the grand symphony of existence.

## Request a Song

Music is meant to be shared. If there's a song that speaks to your soul, don't hesitate to request it. Let's create a playlist of human experience together.`

const digitalCanvasContent = `# The Digital Canvas: Art in the Modern Age

The digital revolution has not killed traditional art—it has expanded its possibilities infinitely.

## New Mediums, Timeless Expression

Digital tools offer artists:
- Unlimited colors and textures
- The ability to undo and iterate
- Global reach and instant sharing
- Collaborative possibilities

## The Instagram Generation

Social media platforms like Instagram have democratized art sharing. Every post is a potential masterpiece, every story a canvas for creativity.

## Preserving the Human Touch

Despite technological advances, the most powerful art still comes from the human heart. Technology is just the brush—the artist's soul is still the paint.`
