package repository

import (
	"context"
	"errors"

	"inkwell/internal/cache"
	"inkwell/internal/models"
	"inkwell/internal/observability"

	"gorm.io/gorm"
)

// authorAggregates selects each user together with the count and summed
// views of their published posts.
const authorAggregates = "users.*, " +
	"(SELECT COUNT(*) FROM posts WHERE posts.author_id = users.id AND posts.status = 'published') AS post_count, " +
	"(SELECT COALESCE(SUM(posts.views), 0) FROM posts WHERE posts.author_id = users.id AND posts.status = 'published') AS total_views"

// displayNameOrder sorts by the alias override when present, else the name.
const displayNameOrder = "CASE WHEN users.alias_name <> '' THEN users.alias_name ELSE users.name END ASC"

// AuthorRepository defines persistence operations for users and the public
// author directory.
type AuthorRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id uint) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetBySlug(ctx context.Context, slug string) (*models.User, error)
	SlugExists(ctx context.Context, slug string) (bool, error)
	ListAuthors(ctx context.Context) ([]models.User, error)
	Suggested(ctx context.Context, excludeFollowerID uint, limit int) ([]models.User, error)
}

type authorRepository struct {
	db *gorm.DB
}

// NewAuthorRepository returns a new AuthorRepository implementation.
func NewAuthorRepository(db *gorm.DB) AuthorRepository {
	return &authorRepository{db: db}
}

func (r *authorRepository) Create(ctx context.Context, user *models.User) error {
	defer observability.TrackQuery("insert", "users")()
	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		return models.NewStoreError(err)
	}
	return nil
}

func (r *authorRepository) GetByID(ctx context.Context, id uint) (*models.User, error) {
	defer observability.TrackQuery("select", "users")()
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("user")
		}
		return nil, models.NewStoreError(err)
	}
	return &user, nil
}

func (r *authorRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	defer observability.TrackQuery("select", "users")()
	var user models.User
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("user")
		}
		return nil, models.NewStoreError(err)
	}
	return &user, nil
}

// GetBySlug resolves a public author profile with its aggregates. Users
// without a public slug are not reachable here.
func (r *authorRepository) GetBySlug(ctx context.Context, slug string) (*models.User, error) {
	var user models.User
	err := cache.Aside(ctx, cache.AuthorKey(slug), &user, cache.AuthorTTL, func() error {
		defer observability.TrackQuery("select", "users")()
		if err := r.db.WithContext(ctx).
			Model(&models.User{}).
			Select(authorAggregates).
			Where("users.slug = ? AND users.slug <> ''", slug).
			First(&user).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return models.NewNotFoundError("author")
			}
			return models.NewStoreError(err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *authorRepository) SlugExists(ctx context.Context, slug string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.User{}).
		Where("slug = ?", slug).
		Count(&count).Error; err != nil {
		return false, models.NewStoreError(err)
	}
	return count > 0, nil
}

// ListAuthors returns every public author with post/view aggregates; authors
// with zero posts are included.
func (r *authorRepository) ListAuthors(ctx context.Context) ([]models.User, error) {
	defer observability.TrackQuery("select", "users")()
	var users []models.User
	if err := r.db.WithContext(ctx).
		Model(&models.User{}).
		Select(authorAggregates).
		Where("users.slug <> ''").
		Order(displayNameOrder).
		Find(&users).Error; err != nil {
		return nil, models.NewStoreError(err)
	}
	return users, nil
}

// Suggested ranks public authors by total published views, excluding anyone
// the caller already follows and the caller themselves. excludeFollowerID 0
// means the caller is anonymous.
func (r *authorRepository) Suggested(ctx context.Context, excludeFollowerID uint, limit int) ([]models.User, error) {
	defer observability.TrackQuery("select", "users")()
	q := r.db.WithContext(ctx).
		Model(&models.User{}).
		Select(authorAggregates).
		Where("users.slug <> ''")

	if excludeFollowerID != 0 {
		q = q.Where("users.id <> ?", excludeFollowerID).
			Where("users.id NOT IN (SELECT followed_id FROM follows WHERE follower_id = ?)", excludeFollowerID)
	}

	var users []models.User
	if err := q.Order("total_views DESC, users.id ASC").
		Limit(limit).
		Find(&users).Error; err != nil {
		return nil, models.NewStoreError(err)
	}
	return users, nil
}
