package models

import (
	"time"
)

// SavedPost is a bookmark edge between a reader and a post. The post is
// referenced by slug, its external identifier; the (user, slug) pair is
// unique so a racing double-save cannot create duplicates.
type SavedPost struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;index;uniqueIndex:idx_saved_user_post" json:"user_id"`
	PostSlug  string    `gorm:"not null;uniqueIndex:idx_saved_user_post" json:"post_slug"`
	CreatedAt time.Time `json:"saved_at"`
}

// TableName specifies the table name for GORM.
func (SavedPost) TableName() string {
	return "saved_posts"
}
