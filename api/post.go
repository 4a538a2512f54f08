package api

import "time"

// Post is the public representation of a journal entry. Media URLs are
// resolved for display.
type Post struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Slug        string    `json:"slug"`
	Excerpt     string    `json:"excerpt"`
	Content     string    `json:"content"`
	HTML        string    `json:"html,omitempty"`
	Author      string    `json:"author"`
	PublishedAt time.Time `json:"publishedAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
	Tags        []string  `json:"tags"`
	Category    string    `json:"category"`
	Featured    bool      `json:"featured"`
	Published   bool      `json:"published"`
	Views       int       `json:"views"`
	MediaFiles  []Media   `json:"mediaFiles"`
}

// PostProto is the body of a create request. Tags may be sent as a list or
// as TagsField, the comma separated form of the editor.
type PostProto struct {
	Title      string     `json:"title"`
	Slug       string     `json:"slug"`
	Excerpt    string     `json:"excerpt"`
	Content    string     `json:"content"`
	Author     string     `json:"author"`
	Tags       []string   `json:"tags"`
	TagsField  string     `json:"tagsField"`
	Category   string     `json:"category"`
	Featured   bool       `json:"featured"`
	Published  bool       `json:"published"`
	MediaFiles []MediaRef `json:"mediaFiles"`
}

// PostPatch is the body of an update request; omitted fields are unchanged.
type PostPatch struct {
	Title      *string     `json:"title"`
	Slug       *string     `json:"slug"`
	Excerpt    *string     `json:"excerpt"`
	Content    *string     `json:"content"`
	Author     *string     `json:"author"`
	Tags       *[]string   `json:"tags"`
	TagsField  *string     `json:"tagsField"`
	Category   *string     `json:"category"`
	Featured   *bool       `json:"featured"`
	Published  *bool       `json:"published"`
	Views      *int        `json:"views"`
	MediaFiles *[]MediaRef `json:"mediaFiles"`
}

// WriteResult reports a create or update. Status is "artifact_stale" when the
// post was saved but its markdown artifact was not refreshed.
type WriteResult struct {
	Post          Post   `json:"post"`
	Status        string `json:"status"`
	ArtifactError string `json:"artifactError,omitempty"`
}
