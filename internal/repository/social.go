package repository

import (
	"context"

	"inkwell/internal/models"
	"inkwell/internal/observability"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SocialRepository defines persistence operations for the follow and save
// edges. Inserts ride on the unique pair indexes: a conflicting concurrent
// insert is absorbed by ON CONFLICT DO NOTHING and reported as "already
// present" instead of an error.
type SocialRepository interface {
	IsFollowing(ctx context.Context, followerID, authorID uint) (bool, error)
	InsertFollow(ctx context.Context, followerID, authorID uint) (bool, error)
	DeleteFollow(ctx context.Context, followerID, authorID uint) (bool, error)
	ListFollowed(ctx context.Context, followerID uint) ([]models.User, error)
	IsSaved(ctx context.Context, userID uint, postSlug string) (bool, error)
	InsertSave(ctx context.Context, userID uint, postSlug string) (bool, error)
	DeleteSave(ctx context.Context, userID uint, postSlug string) (bool, error)
	ListSaved(ctx context.Context, userID uint) ([]*models.Post, error)
}

type socialRepository struct {
	db *gorm.DB
}

// NewSocialRepository returns a new SocialRepository implementation.
func NewSocialRepository(db *gorm.DB) SocialRepository {
	return &socialRepository{db: db}
}

func (r *socialRepository) IsFollowing(ctx context.Context, followerID, authorID uint) (bool, error) {
	defer observability.TrackQuery("select", "follows")()
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.Follow{}).
		Where("follower_id = ? AND followed_id = ?", followerID, authorID).
		Count(&count).Error; err != nil {
		return false, models.NewStoreError(err)
	}
	return count > 0, nil
}

// InsertFollow creates the edge if absent. Returns false when the edge was
// already there, including when a racing insert won the unique index.
func (r *socialRepository) InsertFollow(ctx context.Context, followerID, authorID uint) (bool, error) {
	defer observability.TrackQuery("insert", "follows")()
	res := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&models.Follow{FollowerID: followerID, FollowedID: authorID})
	if res.Error != nil {
		return false, models.NewStoreError(res.Error)
	}
	if res.RowsAffected == 0 {
		observability.ToggleConflictsResolved.WithLabelValues("follow").Inc()
		return false, nil
	}
	return true, nil
}

func (r *socialRepository) DeleteFollow(ctx context.Context, followerID, authorID uint) (bool, error) {
	defer observability.TrackQuery("delete", "follows")()
	res := r.db.WithContext(ctx).
		Where("follower_id = ? AND followed_id = ?", followerID, authorID).
		Delete(&models.Follow{})
	if res.Error != nil {
		return false, models.NewStoreError(res.Error)
	}
	return res.RowsAffected > 0, nil
}

// ListFollowed returns the authors the user follows, with their published
// post counts, ordered by display name.
func (r *socialRepository) ListFollowed(ctx context.Context, followerID uint) ([]models.User, error) {
	defer observability.TrackQuery("select", "follows")()
	var users []models.User
	if err := r.db.WithContext(ctx).
		Model(&models.User{}).
		Select(authorAggregates).
		Joins("JOIN follows ON follows.followed_id = users.id").
		Where("follows.follower_id = ?", followerID).
		Order(displayNameOrder).
		Find(&users).Error; err != nil {
		return nil, models.NewStoreError(err)
	}
	return users, nil
}

func (r *socialRepository) IsSaved(ctx context.Context, userID uint, postSlug string) (bool, error) {
	defer observability.TrackQuery("select", "saved_posts")()
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.SavedPost{}).
		Where("user_id = ? AND post_slug = ?", userID, postSlug).
		Count(&count).Error; err != nil {
		return false, models.NewStoreError(err)
	}
	return count > 0, nil
}

func (r *socialRepository) InsertSave(ctx context.Context, userID uint, postSlug string) (bool, error) {
	defer observability.TrackQuery("insert", "saved_posts")()
	res := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&models.SavedPost{UserID: userID, PostSlug: postSlug})
	if res.Error != nil {
		return false, models.NewStoreError(res.Error)
	}
	if res.RowsAffected == 0 {
		observability.ToggleConflictsResolved.WithLabelValues("save").Inc()
		return false, nil
	}
	return true, nil
}

func (r *socialRepository) DeleteSave(ctx context.Context, userID uint, postSlug string) (bool, error) {
	defer observability.TrackQuery("delete", "saved_posts")()
	res := r.db.WithContext(ctx).
		Where("user_id = ? AND post_slug = ?", userID, postSlug).
		Delete(&models.SavedPost{})
	if res.Error != nil {
		return false, models.NewStoreError(res.Error)
	}
	return res.RowsAffected > 0, nil
}

// ListSaved returns the user's bookmarked posts, most recently saved first.
// The inner join doubles as a guard: a save edge whose post is gone can
// never surface here, and the status filter keeps posts pulled back to
// draft out of other readers' lists.
func (r *socialRepository) ListSaved(ctx context.Context, userID uint) ([]*models.Post, error) {
	defer observability.TrackQuery("select", "saved_posts")()
	var posts []*models.Post
	if err := r.db.WithContext(ctx).
		Model(&models.Post{}).
		Select("posts.*, saved_posts.created_at AS saved_at").
		Joins("JOIN saved_posts ON saved_posts.post_slug = posts.slug").
		Where("saved_posts.user_id = ?", userID).
		Where("posts.status = ?", models.PostStatusPublished).
		Order("saved_posts.created_at DESC, saved_posts.id DESC").
		Preload("Author").
		Find(&posts).Error; err != nil {
		return nil, models.NewStoreError(err)
	}
	return posts, nil
}
