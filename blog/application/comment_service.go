package application

import (
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/dfryer1193/journal/blog/domain"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// PostLookup finds a post by id, returning nil when it does not exist.
type PostLookup interface {
	GetByID(id string) *domain.Post
}

// CommentDraft is a reader's comment submission.
type CommentDraft struct {
	Author  string
	Email   string
	Content string
}

// CommentService serves the static comments. Submissions are validated and
// acknowledged but never stored.
type CommentService struct {
	comments []domain.Comment
	posts    PostLookup
	log      zerolog.Logger
	now      func() time.Time
}

func NewCommentService(comments []domain.Comment, posts PostLookup, log zerolog.Logger) *CommentService {
	return &CommentService{
		comments: comments,
		posts:    posts,
		log:      log.With().Str("component", "comments").Logger(),
		now:      time.Now,
	}
}

// ListByPost returns the approved comments of a post.
func (s *CommentService) ListByPost(postID string) []domain.Comment {
	out := []domain.Comment{}
	for _, c := range s.comments {
		if c.PostID == postID && c.Approved {
			out = append(out, c)
		}
	}
	return out
}

// Submit validates a comment and returns it awaiting moderation.
func (s *CommentService) Submit(postID string, draft CommentDraft) (*domain.Comment, error) {
	post := s.posts.GetByID(postID)
	if post == nil || !post.Published {
		return nil, nil
	}

	author := strings.TrimSpace(draft.Author)
	content := strings.TrimSpace(draft.Content)
	email := strings.TrimSpace(draft.Email)

	switch {
	case author == "":
		return nil, fmt.Errorf("%w: name is required", domain.ErrInvalidComment)
	case content == "":
		return nil, fmt.Errorf("%w: comment is required", domain.ErrInvalidComment)
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, fmt.Errorf("%w: email %q: %w", domain.ErrInvalidComment, email, err)
	}

	comment := &domain.Comment{
		ID:        uuid.NewString(),
		PostID:    postID,
		Author:    author,
		Email:     email,
		Content:   content,
		CreatedAt: s.now().UTC(),
		Approved:  false,
	}

	s.log.Info().Str("post_id", postID).Str("comment_id", comment.ID).Msg("Comment submitted for review")
	return comment, nil
}
