// Package repository provides data access layer implementations for the application.
package repository

import (
	"context"
	"errors"
	"strings"

	"inkwell/internal/cache"
	"inkwell/internal/models"
	"inkwell/internal/observability"

	"gorm.io/gorm"
)

// PostRepository defines the interface for post data operations.
type PostRepository interface {
	Create(ctx context.Context, post *models.Post) error
	GetBySlug(ctx context.Context, slug string) (*models.Post, error)
	GetOwnedBySlug(ctx context.Context, slug string, authorID uint) (*models.Post, error)
	SlugExists(ctx context.Context, slug string) (bool, error)
	Update(ctx context.Context, post *models.Post) error
	Delete(ctx context.Context, slug string, authorID uint) error
	IncrementViews(ctx context.Context, slug string) error
	List(ctx context.Context, page, limit int) ([]*models.Post, int64, error)
	ListOwn(ctx context.Context, authorID uint, page, limit int) ([]*models.Post, int64, error)
	ListByAuthor(ctx context.Context, authorSlug string, page, limit int) ([]*models.Post, int64, error)
	ListByCategory(ctx context.Context, category string, page, limit int) ([]*models.Post, int64, error)
	Latest(ctx context.Context, n int) ([]*models.Post, error)
	Popular(ctx context.Context, n int) ([]*models.Post, error)
	Related(ctx context.Context, slug, category string, n int) ([]*models.Post, error)
	Search(ctx context.Context, query string) ([]*models.Post, error)
	Categories(ctx context.Context) ([]models.CategoryCount, error)
}

// postRepository implements PostRepository.
type postRepository struct {
	db *gorm.DB
}

// NewPostRepository creates a new post repository.
func NewPostRepository(db *gorm.DB) PostRepository {
	return &postRepository{db: db}
}

// published narrows a query to publicly visible posts.
func published(db *gorm.DB) *gorm.DB {
	return db.Where("posts.status = ?", models.PostStatusPublished)
}

// byDate is the canonical listing order: publish date descending, with ties
// broken by insertion order so a listing call is reproducible.
func byDate(db *gorm.DB) *gorm.DB {
	return db.Order("posts.date DESC, posts.id ASC")
}

func (r *postRepository) Create(ctx context.Context, post *models.Post) error {
	defer observability.TrackQuery("insert", "posts")()
	if err := r.db.WithContext(ctx).Create(post).Error; err != nil {
		return models.NewStoreError(err)
	}
	cache.Invalidate(ctx, cache.CategoriesKey, cache.PopularKey)
	return nil
}

func (r *postRepository) GetBySlug(ctx context.Context, slug string) (*models.Post, error) {
	var post models.Post
	err := cache.Aside(ctx, cache.PostKey(slug), &post, cache.PostTTL, func() error {
		defer observability.TrackQuery("select", "posts")()
		if err := published(r.db.WithContext(ctx)).
			Preload("Author").
			Where("posts.slug = ?", slug).
			First(&post).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return models.NewNotFoundError("post")
			}
			return models.NewStoreError(err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &post, nil
}

// GetOwnedBySlug loads a post of any status, scoped to its owner. A slug that
// does not exist and a slug owned by someone else produce the same error.
func (r *postRepository) GetOwnedBySlug(ctx context.Context, slug string, authorID uint) (*models.Post, error) {
	defer observability.TrackQuery("select", "posts")()
	var post models.Post
	if err := r.db.WithContext(ctx).
		Where("slug = ? AND author_id = ?", slug, authorID).
		First(&post).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("post")
		}
		return nil, models.NewStoreError(err)
	}
	return &post, nil
}

func (r *postRepository) SlugExists(ctx context.Context, slug string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.Post{}).
		Where("slug = ?", slug).
		Count(&count).Error; err != nil {
		return false, models.NewStoreError(err)
	}
	return count > 0, nil
}

// Update persists author edits. The view counter is excluded from the
// write: it moves only through IncrementViews, and a full-row save would
// clobber increments that landed after the post was loaded.
func (r *postRepository) Update(ctx context.Context, post *models.Post) error {
	defer observability.TrackQuery("update", "posts")()
	if err := r.db.WithContext(ctx).Omit("views").Save(post).Error; err != nil {
		return models.NewStoreError(err)
	}
	cache.InvalidatePost(ctx, post.Slug)
	return nil
}

// Delete removes the owner's post and its save edges in one transaction.
// The persistence layer has no cascading delete for save edges, which
// reference the slug, so the cleanup is explicit.
func (r *postRepository) Delete(ctx context.Context, slug string, authorID uint) error {
	defer observability.TrackQuery("delete", "posts")()
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("slug = ? AND author_id = ?", slug, authorID).Delete(&models.Post{})
		if res.Error != nil {
			return models.NewStoreError(res.Error)
		}
		if res.RowsAffected == 0 {
			return models.NewNotFoundError("post")
		}
		if err := tx.Where("post_slug = ?", slug).Delete(&models.SavedPost{}).Error; err != nil {
			return models.NewStoreError(err)
		}
		return nil
	})
	if err != nil {
		return err
	}
	cache.InvalidatePost(ctx, slug)
	return nil
}

// IncrementViews applies a relative bump so concurrent increments are all
// durably reflected. A missing slug is a no-op, not an error; the call is
// fire-and-forget from page loads.
func (r *postRepository) IncrementViews(ctx context.Context, slug string) error {
	defer observability.TrackQuery("update", "posts")()
	res := r.db.WithContext(ctx).
		Model(&models.Post{}).
		Where("slug = ?", slug).
		UpdateColumn("views", gorm.Expr("views + ?", 1))
	if res.Error != nil {
		return models.NewStoreError(res.Error)
	}
	if res.RowsAffected > 0 {
		observability.PostViewsRecorded.Inc()
	}
	return nil
}

func (r *postRepository) List(ctx context.Context, page, limit int) ([]*models.Post, int64, error) {
	return r.listPosts(ctx, published(r.db.WithContext(ctx).Model(&models.Post{})), page, limit)
}

// ListOwn is the owner's dashboard listing: every post of the author, drafts
// included.
func (r *postRepository) ListOwn(ctx context.Context, authorID uint, page, limit int) ([]*models.Post, int64, error) {
	base := r.db.WithContext(ctx).Model(&models.Post{}).Where("posts.author_id = ?", authorID)
	return r.listPosts(ctx, base, page, limit)
}

func (r *postRepository) ListByAuthor(ctx context.Context, authorSlug string, page, limit int) ([]*models.Post, int64, error) {
	base := published(r.db.WithContext(ctx).Model(&models.Post{})).
		Joins("JOIN users ON users.id = posts.author_id").
		Where("users.slug = ?", authorSlug)
	return r.listPosts(ctx, base, page, limit)
}

func (r *postRepository) ListByCategory(ctx context.Context, category string, page, limit int) ([]*models.Post, int64, error) {
	base := published(r.db.WithContext(ctx).Model(&models.Post{})).
		Where("posts.category = ?", category)
	return r.listPosts(ctx, base, page, limit)
}

// listPosts applies the canonical order and page window to an eligible set
// and returns the window plus the full count. A page past the end yields an
// empty slice, not an error.
func (r *postRepository) listPosts(ctx context.Context, base *gorm.DB, page, limit int) ([]*models.Post, int64, error) {
	defer observability.TrackQuery("select", "posts")()

	var total int64
	if err := base.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, models.NewStoreError(err)
	}

	var posts []*models.Post
	if err := byDate(base.Session(&gorm.Session{})).
		Preload("Author").
		Limit(limit).
		Offset((page - 1) * limit).
		Find(&posts).Error; err != nil {
		return nil, 0, models.NewStoreError(err)
	}
	return posts, total, nil
}

func (r *postRepository) Latest(ctx context.Context, n int) ([]*models.Post, error) {
	defer observability.TrackQuery("select", "posts")()
	var posts []*models.Post
	if err := byDate(published(r.db.WithContext(ctx))).
		Preload("Author").
		Limit(n).
		Find(&posts).Error; err != nil {
		return nil, models.NewStoreError(err)
	}
	return posts, nil
}

func (r *postRepository) Popular(ctx context.Context, n int) ([]*models.Post, error) {
	var posts []*models.Post
	err := cache.Aside(ctx, cache.PopularKey, &posts, cache.PopularTTL, func() error {
		defer observability.TrackQuery("select", "posts")()
		if err := published(r.db.WithContext(ctx)).
			Preload("Author").
			Order("posts.views DESC, posts.id ASC").
			Limit(n).
			Find(&posts).Error; err != nil {
			return models.NewStoreError(err)
		}
		return nil
	})
	return posts, err
}

func (r *postRepository) Related(ctx context.Context, slug, category string, n int) ([]*models.Post, error) {
	defer observability.TrackQuery("select", "posts")()
	var posts []*models.Post
	if err := byDate(published(r.db.WithContext(ctx))).
		Preload("Author").
		Where("posts.category = ? AND posts.slug <> ?", category, slug).
		Limit(n).
		Find(&posts).Error; err != nil {
		return nil, models.NewStoreError(err)
	}
	return posts, nil
}

// likeEscaper neutralizes LIKE metacharacters so user queries always match
// literal substrings. Without it, "%" would enumerate the whole corpus.
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// Search matches a case-insensitive substring against title, content or
// excerpt. LOWER/LIKE keeps the predicate portable across the supported
// dialects.
func (r *postRepository) Search(ctx context.Context, query string) ([]*models.Post, error) {
	defer observability.TrackQuery("select", "posts")()
	like := "%" + likeEscaper.Replace(strings.ToLower(query)) + "%"
	var posts []*models.Post
	if err := byDate(published(r.db.WithContext(ctx))).
		Preload("Author").
		Where("LOWER(posts.title) LIKE ? ESCAPE '\\' OR LOWER(posts.content) LIKE ? ESCAPE '\\' OR LOWER(posts.excerpt) LIKE ? ESCAPE '\\'", like, like, like).
		Find(&posts).Error; err != nil {
		return nil, models.NewStoreError(err)
	}
	return posts, nil
}

func (r *postRepository) Categories(ctx context.Context) ([]models.CategoryCount, error) {
	var rows []models.CategoryCount
	err := cache.Aside(ctx, cache.CategoriesKey, &rows, cache.CategoriesTTL, func() error {
		defer observability.TrackQuery("select", "posts")()
		if err := published(r.db.WithContext(ctx).Model(&models.Post{})).
			Select("posts.category AS name, COUNT(*) AS count").
			Group("posts.category").
			Order("posts.category ASC").
			Scan(&rows).Error; err != nil {
			return models.NewStoreError(err)
		}
		for i := range rows {
			rows[i].Slug = models.Slugify(rows[i].Name)
		}
		return nil
	})
	return rows, err
}
