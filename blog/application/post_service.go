package application

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/dfryer1193/journal/blog/domain"
	"github.com/dfryer1193/journal/internal/metrics"
	"github.com/dfryer1193/journal/shared/kv"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// WriteStatus tells whether a write also refreshed its markdown artifact.
type WriteStatus int

const (
	WriteComplete WriteStatus = iota
	// WriteArtifactStale means the post was saved but its artifact was not
	// regenerated.
	WriteArtifactStale
)

func (s WriteStatus) String() string {
	if s == WriteArtifactStale {
		return "artifact_stale"
	}
	return "complete"
}

// WriteResult is the outcome of a successful Create or Update.
type WriteResult struct {
	Post        domain.Post
	Status      WriteStatus
	ArtifactErr error
}

// PostsChange is delivered to OnPostsChanged subscribers.
type PostsChange struct {
	// External is set when another process wrote the post list; call
	// ForceReload to pick the change up.
	External bool
}

const changeKey = "posts"

// PostService owns the canonical post list. Reads are served from an
// in-memory copy that only changes after a successful write to the store.
type PostService struct {
	posts     domain.PostStore
	media     domain.MediaRepository
	artifacts domain.ArtifactStore
	generator *MarkdownGenerator
	log       zerolog.Logger
	metrics   *metrics.Metrics

	now   func() time.Time
	newID func() string

	// mu serializes every read-modify-write of the list.
	mu    sync.RWMutex
	cache []domain.Post

	subscribers *kv.Notifier
	unsubscribe func()
}

// NewPostService loads the persisted list, seeding the default posts when the
// store holds no usable list.
func NewPostService(
	ctx context.Context,
	posts domain.PostStore,
	media domain.MediaRepository,
	artifacts domain.ArtifactStore,
	generator *MarkdownGenerator,
	log zerolog.Logger,
	m *metrics.Metrics,
) (*PostService, error) {
	s := &PostService{
		posts:       posts,
		media:       media,
		artifacts:   artifacts,
		generator:   generator,
		log:         log.With().Str("component", "posts").Logger(),
		metrics:     m,
		now:         time.Now,
		newID:       uuid.NewString,
		subscribers: kv.NewNotifier(),
	}

	if _, err := s.ForceReload(ctx); err != nil {
		return nil, err
	}

	s.unsubscribe = posts.OnChange(func(external bool) {
		// Local writes are announced by the service once its lock is released.
		if external {
			s.subscribers.Publish(kv.Change{Key: changeKey, External: true})
		}
	})

	return s, nil
}

// Close stops listening for store changes.
func (s *PostService) Close() error {
	if s.unsubscribe != nil {
		s.unsubscribe()
	}
	return nil
}

// OnPostsChanged registers fn for every change to the post list. fn runs on
// the goroutine that observed the change, after the service lock is released.
func (s *PostService) OnPostsChanged(fn func(PostsChange)) (unsubscribe func()) {
	return s.subscribers.Subscribe(changeKey, func(c kv.Change) {
		fn(PostsChange{External: c.External})
	})
}

// ForceReload discards the in-memory list and reads it from the store again.
func (s *PostService) ForceReload(ctx context.Context) ([]domain.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	posts, err := s.load(ctx)
	if err != nil {
		return nil, err
	}

	s.cache = posts
	return cloneAll(posts), nil
}

func (s *PostService) load(ctx context.Context) ([]domain.Post, error) {
	posts, ok, err := s.posts.Load(ctx)
	if errors.Is(err, domain.ErrCorruptState) {
		s.log.Warn().Err(err).Msg("Discarding corrupt post list")
		if err := s.posts.Reset(ctx); err != nil {
			return nil, fmt.Errorf("failed to reset corrupt post list: %w", err)
		}
		ok = false
	} else if err != nil {
		return nil, fmt.Errorf("failed to load posts: %w", err)
	}

	if ok {
		return posts, nil
	}

	return s.seed(ctx)
}

func (s *PostService) seed(ctx context.Context) ([]domain.Post, error) {
	defaults := domain.DefaultPosts()
	if err := s.posts.Save(ctx, defaults); err != nil {
		return nil, fmt.Errorf("failed to seed default posts: %w", err)
	}

	for _, p := range defaults {
		s.refreshArtifact(ctx, p)
	}

	s.log.Info().Int("count", len(defaults)).Msg("Seeded default posts")
	return defaults, nil
}

// StorageVersion returns the version stamp of the last persisted list.
func (s *PostService) StorageVersion(ctx context.Context) (string, error) {
	return s.posts.Version(ctx)
}

func (s *PostService) ListAll() []domain.Post {
	return s.filter(func(domain.Post) bool { return true })
}

func (s *PostService) ListPublished() []domain.Post {
	return s.filter(func(p domain.Post) bool { return p.Published })
}

func (s *PostService) ListFeatured() []domain.Post {
	return s.filter(func(p domain.Post) bool { return p.Published && p.Featured })
}

func (s *PostService) ListByCategory(category string) []domain.Post {
	return s.filter(func(p domain.Post) bool { return p.Published && p.Category == category })
}

func (s *PostService) ListByTag(tag string) []domain.Post {
	return s.filter(func(p domain.Post) bool { return p.Published && slices.Contains(p.Tags, tag) })
}

// Search matches published posts whose title, excerpt, content or any tag
// contains query, ignoring case. An empty query matches nothing.
func (s *PostService) Search(query string) []domain.Post {
	q := strings.ToLower(query)
	if q == "" {
		return []domain.Post{}
	}

	return s.filter(func(p domain.Post) bool {
		if !p.Published {
			return false
		}
		if strings.Contains(strings.ToLower(p.Title), q) ||
			strings.Contains(strings.ToLower(p.Excerpt), q) ||
			strings.Contains(strings.ToLower(p.Content), q) {
			return true
		}
		return slices.ContainsFunc(p.Tags, func(t string) bool {
			return strings.Contains(strings.ToLower(t), q)
		})
	})
}

// GetByID returns nil when no post has id.
func (s *PostService) GetByID(id string) *domain.Post {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if i := indexOf(s.cache, id); i >= 0 {
		p := s.cache[i].Clone()
		return &p
	}
	return nil
}

// GetBySlug looks among published posts only.
func (s *PostService) GetBySlug(slug string) *domain.Post {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, p := range s.cache {
		if p.Published && p.Slug == slug {
			out := p.Clone()
			return &out
		}
	}
	return nil
}

// Categories lists distinct categories in order of first appearance.
func (s *PostService) Categories() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return distinct(s.cache, func(p domain.Post) []string { return []string{p.Category} })
}

// Tags lists distinct tags in order of first appearance.
func (s *PostService) Tags() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return distinct(s.cache, func(p domain.Post) []string { return p.Tags })
}

// Create assigns identity and timestamps to draft, prepends it to the list and
// persists the list. The artifact is generated afterwards on a best-effort
// basis; a failure there is reported through the result, not as an error.
func (s *PostService) Create(ctx context.Context, draft domain.PostDraft) (*WriteResult, error) {
	result, err := s.create(ctx, draft)
	if err == nil {
		s.announce()
	}
	return result, err
}

func (s *PostService) create(ctx context.Context, draft domain.PostDraft) (*WriteResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now().UTC()
	post := domain.Post{
		ID:          s.newID(),
		Title:       strings.TrimSpace(draft.Title),
		Slug:        strings.TrimSpace(draft.Slug),
		Excerpt:     strings.TrimSpace(draft.Excerpt),
		Content:     strings.TrimSpace(draft.Content),
		Author:      strings.TrimSpace(draft.Author),
		PublishedAt: now,
		UpdatedAt:   now,
		Tags:        slices.Clone(draft.Tags),
		Category:    strings.TrimSpace(draft.Category),
		Featured:    draft.Featured,
		Published:   draft.Published,
		Views:       0,
		MediaFiles:  slices.Clone(draft.MediaFiles),
	}

	if err := s.normalize(&post); err != nil {
		return nil, err
	}

	next := make([]domain.Post, 0, len(s.cache)+1)
	next = append(next, post)
	next = append(next, s.cache...)

	if err := s.commit(ctx, next); err != nil {
		return nil, err
	}

	s.log.Info().Str("post_id", post.ID).Str("slug", post.Slug).Int("total", len(next)).Msg("Created post")
	return s.finishWrite(ctx, post), nil
}

// Update overlays patch onto the post with id. It returns nil, nil when the
// post does not exist. Image payloads dropped from the post's media are
// deleted before the list is written.
func (s *PostService) Update(ctx context.Context, id string, patch domain.PostPatch) (*WriteResult, error) {
	result, err := s.update(ctx, id, patch)
	if err == nil && result != nil {
		s.announce()
	}
	return result, err
}

func (s *PostService) update(ctx context.Context, id string, patch domain.PostPatch) (*WriteResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := indexOf(s.cache, id)
	if i < 0 {
		return nil, nil
	}
	old := s.cache[i]

	updated := patch.Apply(old)
	updated.Title = strings.TrimSpace(updated.Title)
	updated.Slug = strings.TrimSpace(updated.Slug)
	updated.Excerpt = strings.TrimSpace(updated.Excerpt)
	updated.Content = strings.TrimSpace(updated.Content)
	updated.Author = strings.TrimSpace(updated.Author)
	updated.Category = strings.TrimSpace(updated.Category)
	updated.UpdatedAt = s.now().UTC()

	if err := s.normalize(&updated); err != nil {
		return nil, err
	}

	if patch.MediaFiles != nil {
		for _, ref := range removedImages(old.MediaFiles, updated.MediaFiles) {
			if err := s.media.Remove(ctx, ref.ID); err != nil {
				s.log.Warn().Err(err).Str("media_id", ref.ID).Msg("Failed to remove dropped image")
			}
		}
	}

	next := cloneAll(s.cache)
	next[i] = updated

	if err := s.commit(ctx, next); err != nil {
		return nil, err
	}

	s.log.Info().Str("post_id", id).Msg("Updated post")
	return s.finishWrite(ctx, updated), nil
}

// Delete removes the post with id together with its image payloads and its
// artifact. Deleting an unknown id is a no-op.
func (s *PostService) Delete(ctx context.Context, id string) error {
	deleted, err := s.delete(ctx, id)
	if deleted {
		s.announce()
	}
	return err
}

func (s *PostService) delete(ctx context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := indexOf(s.cache, id)
	if i < 0 {
		s.log.Debug().Str("post_id", id).Msg("Delete of unknown post ignored")
		return false, nil
	}
	target := s.cache[i]

	for _, ref := range target.MediaFiles {
		if ref.Type != domain.MediaImage {
			continue
		}
		if err := s.media.Remove(ctx, ref.ID); err != nil {
			s.log.Warn().Err(err).Str("media_id", ref.ID).Msg("Failed to remove image of deleted post")
		}
	}

	if err := s.artifacts.Discard(ctx, id); err != nil {
		s.metrics.ArtifactFailed()
		s.log.Warn().Err(err).Str("post_id", id).Msg("Failed to discard markdown artifact")
	}

	next := slices.Delete(cloneAll(s.cache), i, i+1)
	if err := s.commit(ctx, next); err != nil {
		return false, err
	}

	s.log.Info().Str("post_id", id).Int("total", len(next)).Msg("Deleted post")
	return true, nil
}

// SweepOrphans removes every stored media payload no post references.
func (s *PostService) SweepOrphans(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.media.SweepOrphans(ctx, referencedMedia(s.cache))
}

// commit persists next and makes it the working list. A store quota failure
// triggers one orphan sweep and one retry. The sweep keeps every id referenced
// by either the current or the next list, so a failed retry leaves all
// persisted references intact.
func (s *PostService) commit(ctx context.Context, next []domain.Post) error {
	err := s.posts.Save(ctx, next)
	if err == nil {
		s.cache = next
		return nil
	}

	if !errors.Is(err, kv.ErrQuotaExceeded) {
		if errors.Is(err, domain.ErrStorageQuotaExceeded) {
			s.metrics.QuotaRejected("budget")
		}
		return err
	}

	s.metrics.QuotaRejected("store")
	s.log.Warn().Err(err).Msg("Store is full, sweeping orphaned media before retrying")

	removed, sweepErr := s.media.SweepOrphans(ctx, referencedMedia(s.cache, next))
	if sweepErr != nil {
		s.log.Warn().Err(sweepErr).Msg("Orphan sweep failed")
	}

	s.metrics.WriteRetried()
	if err := s.posts.Save(ctx, next); err != nil {
		s.log.Error().Err(err).Int("orphans_removed", removed).Msg("Retry after orphan sweep failed")
		return fmt.Errorf("failed to save posts after removing %d orphaned media: %w", removed, err)
	}

	s.cache = next
	return nil
}

func (s *PostService) finishWrite(ctx context.Context, post domain.Post) *WriteResult {
	result := &WriteResult{Post: post.Clone(), Status: WriteComplete}
	if err := s.refreshArtifact(ctx, post); err != nil {
		result.Status = WriteArtifactStale
		result.ArtifactErr = err
	}
	return result
}

func (s *PostService) refreshArtifact(ctx context.Context, post domain.Post) error {
	artifact, err := s.generator.Render(post)
	if err == nil {
		err = s.artifacts.Store(ctx, post.ID, artifact)
	}
	if err != nil {
		s.metrics.ArtifactFailed()
		s.log.Warn().Err(err).Str("post_id", post.ID).Msg("Failed to generate markdown artifact")
		return err
	}

	s.log.Debug().Str("post_id", post.ID).Str("filename", artifact.Filename).Msg("Stored markdown artifact")
	return nil
}

// normalize fills derived fields and validates p against the rest of the list.
func (s *PostService) normalize(p *domain.Post) error {
	if p.Excerpt == "" {
		p.Excerpt = extractSnippet([]byte(p.Content))
	}
	if p.Slug == "" {
		p.Slug = Slugify(p.Title)
	}
	if p.Tags == nil {
		p.Tags = []string{}
	}
	if p.MediaFiles == nil {
		p.MediaFiles = []domain.MediaRef{}
	}

	switch {
	case p.Title == "":
		return fmt.Errorf("%w: title is required", domain.ErrInvalidPost)
	case p.Excerpt == "":
		return fmt.Errorf("%w: excerpt is required", domain.ErrInvalidPost)
	case p.Category == "":
		return fmt.Errorf("%w: category is required", domain.ErrInvalidPost)
	case p.Slug == "":
		return fmt.Errorf("%w: slug cannot be derived from title %q", domain.ErrInvalidPost, p.Title)
	case p.Views < 0:
		return fmt.Errorf("%w: views cannot be negative", domain.ErrInvalidPost)
	}

	for _, other := range s.cache {
		if other.ID != p.ID && other.Slug == p.Slug {
			return fmt.Errorf("%w: %q is used by post %s", domain.ErrDuplicateSlug, p.Slug, other.ID)
		}
	}
	return nil
}

func (s *PostService) announce() {
	s.subscribers.Publish(kv.Change{Key: changeKey})
}

func (s *PostService) filter(keep func(domain.Post) bool) []domain.Post {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []domain.Post{}
	for _, p := range s.cache {
		if keep(p) {
			out = append(out, p.Clone())
		}
	}
	return out
}

func indexOf(posts []domain.Post, id string) int {
	return slices.IndexFunc(posts, func(p domain.Post) bool { return p.ID == id })
}

func distinct(posts []domain.Post, values func(domain.Post) []string) []string {
	seen := map[string]struct{}{}
	out := []string{}
	for _, p := range posts {
		for _, v := range values(p) {
			if _, ok := seen[v]; ok {
				continue
			}
			seen[v] = struct{}{}
			out = append(out, v)
		}
	}
	return out
}

// removedImages returns the image refs of before whose id is absent from after.
func removedImages(before, after []domain.MediaRef) []domain.MediaRef {
	kept := make(map[string]struct{}, len(after))
	for _, ref := range after {
		kept[ref.ID] = struct{}{}
	}

	var removed []domain.MediaRef
	for _, ref := range before {
		if _, ok := kept[ref.ID]; !ok && ref.Type == domain.MediaImage {
			removed = append(removed, ref)
		}
	}
	return removed
}

func referencedMedia(lists ...[]domain.Post) map[string]struct{} {
	ids := map[string]struct{}{}
	for _, posts := range lists {
		for _, p := range posts {
			for _, ref := range p.MediaFiles {
				ids[ref.ID] = struct{}{}
			}
		}
	}
	return ids
}

func cloneAll(posts []domain.Post) []domain.Post {
	out := make([]domain.Post, len(posts))
	for i, p := range posts {
		out[i] = p.Clone()
	}
	return out
}
