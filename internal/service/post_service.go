// Package service implements the business rules on top of the repositories.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"inkwell/internal/middleware"
	"inkwell/internal/models"
	"inkwell/internal/notifications"
	"inkwell/internal/observability"
	"inkwell/internal/repository"
)

const (
	defaultPageSize = 10
	maxPageSize     = 50
	defaultLatest   = 5
	maxLatest       = 20
	// popularLimit is a product decision: the popular rail always shows at
	// most four posts.
	popularLimit = 4
)

// PostService owns the post lifecycle: draft/publish transitions, slug
// assignment, view counting and all listing surfaces.
type PostService struct {
	postRepo repository.PostRepository
	notifier *notifications.Notifier
}

// NewPostService returns a new PostService. notifier may be nil when Redis
// is unavailable.
func NewPostService(postRepo repository.PostRepository, notifier *notifications.Notifier) *PostService {
	return &PostService{postRepo: postRepo, notifier: notifier}
}

// PostInput carries the author-editable fields of a post.
type PostInput struct {
	Title    string    `json:"title"`
	Excerpt  string    `json:"excerpt"`
	Content  string    `json:"content"`
	Category string    `json:"category"`
	Image    string    `json:"image"`
	Status   string    `json:"status"`
	ReadTime string    `json:"read_time"`
	Date     time.Time `json:"date"`
}

// validatePublishable enforces the publish-time contract: a published post
// must be complete. Drafts are exempt and may carry only a title.
func validatePublishable(p *models.Post) error {
	required := []struct{ name, value string }{
		{"title", p.Title},
		{"excerpt", p.Excerpt},
		{"content", p.Content},
		{"category", p.Category},
		{"image", p.Image},
	}
	for _, f := range required {
		if strings.TrimSpace(f.value) == "" {
			return models.NewValidationError(fmt.Sprintf("%s is required to publish", f.name))
		}
	}
	return nil
}

// estimateReadTime derives the display read time from content length at
// roughly 200 words per minute. It is computed once at creation and never
// recalculated afterwards.
func estimateReadTime(content string) string {
	words := len(strings.Fields(content))
	minutes := (words + 199) / 200
	if minutes < 1 {
		minutes = 1
	}
	return fmt.Sprintf("%d min read", minutes)
}

// uniqueSlug derives the post slug from the title, appending a numeric
// suffix until the slug is free.
func (s *PostService) uniqueSlug(ctx context.Context, title string) (string, error) {
	base := models.Slugify(title)
	if base == "" {
		base = "post"
	}
	slug := base
	for i := 1; ; i++ {
		exists, err := s.postRepo.SlugExists(ctx, slug)
		if err != nil {
			return "", err
		}
		if !exists {
			return slug, nil
		}
		slug = fmt.Sprintf("%s-%d", base, i)
	}
}

// Create inserts a new post owned by authorID. Status defaults to draft;
// publishing directly requires all content fields.
func (s *PostService) Create(ctx context.Context, in PostInput, authorID uint) (*models.Post, error) {
	status := models.PostStatus(in.Status)
	if status == "" {
		status = models.PostStatusDraft
	}
	if !status.Valid() {
		return nil, models.NewValidationError("status must be draft or published")
	}
	if strings.TrimSpace(in.Title) == "" {
		return nil, models.NewValidationError("title is required")
	}

	date := in.Date
	if date.IsZero() {
		date = time.Now().UTC()
	}
	readTime := in.ReadTime
	if readTime == "" {
		readTime = estimateReadTime(in.Content)
	}

	post := &models.Post{
		Title:    in.Title,
		Excerpt:  in.Excerpt,
		Content:  in.Content,
		Category: in.Category,
		Image:    in.Image,
		ReadTime: readTime,
		Date:     date,
		Status:   status,
		AuthorID: authorID,
	}

	if status == models.PostStatusPublished {
		if err := validatePublishable(post); err != nil {
			return nil, err
		}
	}

	slug, err := s.uniqueSlug(ctx, in.Title)
	if err != nil {
		return nil, err
	}
	post.Slug = slug

	if err := s.postRepo.Create(ctx, post); err != nil {
		return nil, err
	}

	if post.Published() {
		s.publishEvent(ctx, post)
	}
	return post, nil
}

// Update modifies the caller's post. Non-empty input fields override the
// stored values; the slug never changes. Moving a draft to published
// re-applies the publish-time validation.
func (s *PostService) Update(ctx context.Context, slug string, in PostInput, callerID uint) (*models.Post, error) {
	post, err := s.postRepo.GetOwnedBySlug(ctx, slug, callerID)
	if err != nil {
		return nil, err
	}

	if in.Title != "" {
		post.Title = in.Title
	}
	if in.Excerpt != "" {
		post.Excerpt = in.Excerpt
	}
	if in.Content != "" {
		post.Content = in.Content
	}
	if in.Category != "" {
		post.Category = in.Category
	}
	if in.Image != "" {
		post.Image = in.Image
	}
	if in.ReadTime != "" {
		post.ReadTime = in.ReadTime
	}
	if !in.Date.IsZero() {
		post.Date = in.Date
	}

	wasPublished := post.Published()
	if in.Status != "" {
		status := models.PostStatus(in.Status)
		if !status.Valid() {
			return nil, models.NewValidationError("status must be draft or published")
		}
		post.Status = status
	}

	if post.Published() {
		if err := validatePublishable(post); err != nil {
			return nil, err
		}
	}

	if err := s.postRepo.Update(ctx, post); err != nil {
		return nil, err
	}

	if !wasPublished && post.Published() {
		s.publishEvent(ctx, post)
	}
	return post, nil
}

// Delete removes the caller's post together with any save edges on it.
func (s *PostService) Delete(ctx context.Context, slug string, callerID uint) error {
	return s.postRepo.Delete(ctx, slug, callerID)
}

// GetBySlug is the public read; it never reveals drafts. A transient store
// failure degrades to not-found rather than failing the page.
func (s *PostService) GetBySlug(ctx context.Context, slug string) (*models.Post, error) {
	post, err := s.postRepo.GetBySlug(ctx, slug)
	if err != nil {
		if models.HasCode(err, models.CodeStore) {
			s.warn(ctx, "post read degraded to not-found", err, slog.String("slug", slug))
			return nil, models.NewNotFoundError("post")
		}
		return nil, err
	}
	return post, nil
}

// GetForEdit loads the caller's own post regardless of status, for the
// editing surface.
func (s *PostService) GetForEdit(ctx context.Context, slug string, callerID uint) (*models.Post, error) {
	return s.postRepo.GetOwnedBySlug(ctx, slug, callerID)
}

// IncrementView bumps the view counter. It never reports failure: the call
// is fire-and-forget from page loads and a lost view is an accepted loss.
// Session-level deduplication is the calling surface's responsibility.
func (s *PostService) IncrementView(ctx context.Context, slug string) {
	if err := s.postRepo.IncrementViews(ctx, slug); err != nil {
		observability.PostViewsDropped.Inc()
		s.warn(ctx, "view increment dropped", err, slog.String("slug", slug))
	}
}

// normalizePage clamps pagination input; page is 1-indexed.
func normalizePage(page, limit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit <= 0 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	return page, limit
}

// List returns the page window of all published posts plus the total count.
func (s *PostService) List(ctx context.Context, page, limit int) ([]*models.Post, int64) {
	page, limit = normalizePage(page, limit)
	posts, total, err := s.postRepo.List(ctx, page, limit)
	if err != nil {
		s.warn(ctx, "post listing degraded to empty", err)
		return []*models.Post{}, 0
	}
	return posts, total
}

// ListOwn returns the caller's own dashboard window, drafts included.
func (s *PostService) ListOwn(ctx context.Context, authorID uint, page, limit int) ([]*models.Post, int64) {
	page, limit = normalizePage(page, limit)
	posts, total, err := s.postRepo.ListOwn(ctx, authorID, page, limit)
	if err != nil {
		s.warn(ctx, "own post listing degraded to empty", err)
		return []*models.Post{}, 0
	}
	return posts, total
}

// ListByAuthor returns the page window of one author's published posts.
func (s *PostService) ListByAuthor(ctx context.Context, authorSlug string, page, limit int) ([]*models.Post, int64) {
	page, limit = normalizePage(page, limit)
	posts, total, err := s.postRepo.ListByAuthor(ctx, authorSlug, page, limit)
	if err != nil {
		s.warn(ctx, "author post listing degraded to empty", err, slog.String("author", authorSlug))
		return []*models.Post{}, 0
	}
	return posts, total
}

// ListByCategory returns the page window of a category's published posts.
func (s *PostService) ListByCategory(ctx context.Context, category string, page, limit int) ([]*models.Post, int64) {
	page, limit = normalizePage(page, limit)
	posts, total, err := s.postRepo.ListByCategory(ctx, category, page, limit)
	if err != nil {
		s.warn(ctx, "category listing degraded to empty", err, slog.String("category", category))
		return []*models.Post{}, 0
	}
	return posts, total
}

// Latest returns the n most recently published posts.
func (s *PostService) Latest(ctx context.Context, n int) []*models.Post {
	if n <= 0 {
		n = defaultLatest
	}
	if n > maxLatest {
		n = maxLatest
	}
	posts, err := s.postRepo.Latest(ctx, n)
	if err != nil {
		s.warn(ctx, "latest listing degraded to empty", err)
		return []*models.Post{}
	}
	return posts
}

// Popular returns the most viewed published posts, capped at four.
func (s *PostService) Popular(ctx context.Context) []*models.Post {
	posts, err := s.postRepo.Popular(ctx, popularLimit)
	if err != nil {
		s.warn(ctx, "popular listing degraded to empty", err)
		return []*models.Post{}
	}
	return posts
}

// Related returns up to n same-category posts excluding the given slug. It
// degrades to an empty list when the slug or category is absent.
func (s *PostService) Related(ctx context.Context, slug, category string, n int) []*models.Post {
	if slug == "" || category == "" {
		return []*models.Post{}
	}
	if n <= 0 {
		n = 3
	}
	posts, err := s.postRepo.Related(ctx, slug, category, n)
	if err != nil {
		s.warn(ctx, "related listing degraded to empty", err, slog.String("slug", slug))
		return []*models.Post{}
	}
	return posts
}

// Search matches the query against title, content and excerpt. An empty
// query returns an empty result: search is never a way to enumerate the
// full corpus.
func (s *PostService) Search(ctx context.Context, query string) []*models.Post {
	if strings.TrimSpace(query) == "" {
		return []*models.Post{}
	}
	posts, err := s.postRepo.Search(ctx, query)
	if err != nil {
		s.warn(ctx, "search degraded to empty", err)
		return []*models.Post{}
	}
	return posts
}

// Categories returns every category label with its slug and published post
// count, aggregated on demand.
func (s *PostService) Categories(ctx context.Context) []models.CategoryCount {
	rows, err := s.postRepo.Categories(ctx)
	if err != nil {
		s.warn(ctx, "category aggregation degraded to empty", err)
		return []models.CategoryCount{}
	}
	return rows
}

func (s *PostService) publishEvent(ctx context.Context, post *models.Post) {
	if s.notifier == nil {
		return
	}
	s.notifier.PublishPostEvent(ctx, notifications.EventPostPublished, post.Slug, post.AuthorID)
}

func (s *PostService) warn(ctx context.Context, msg string, err error, attrs ...any) {
	attrs = append(attrs, slog.String("error", err.Error()))
	middleware.Logger.WarnContext(ctx, msg, attrs...)
}
