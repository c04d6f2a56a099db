// Package models contains data structures for the application's domain models.
package models

import (
	"time"
)

// PostStatus is the lifecycle state of a post.
type PostStatus string

const (
	// PostStatusDraft marks a post visible only to its author.
	PostStatusDraft PostStatus = "draft"
	// PostStatusPublished marks a post visible to all readers.
	PostStatusPublished PostStatus = "published"
)

// Valid reports whether s is a known post status.
func (s PostStatus) Valid() bool {
	return s == PostStatusDraft || s == PostStatusPublished
}

// Post represents a unit of authored content. The slug is the external
// identifier and never changes once assigned; the numeric ID is internal.
type Post struct {
	ID       uint       `gorm:"primaryKey" json:"id"`
	Slug     string     `gorm:"uniqueIndex;not null" json:"slug"`
	Title    string     `gorm:"not null" json:"title"`
	Excerpt  string     `gorm:"type:text" json:"excerpt"`
	Content  string     `gorm:"type:text" json:"content"`
	Category string     `gorm:"index" json:"category"`
	Image    string     `json:"image"`
	ReadTime string     `json:"read_time"`
	Date     time.Time  `gorm:"index" json:"date"`
	Views    int64      `gorm:"not null;default:0" json:"views"`
	Status   PostStatus `gorm:"type:varchar(20);not null;default:'draft';index" json:"status"`
	AuthorID uint       `gorm:"not null;index" json:"author_id"`
	Author   User       `gorm:"foreignKey:AuthorID" json:"author"`

	// SavedAt is not persisted on posts; it is selected from the save edge
	// when listing a reader's saved posts.
	SavedAt *time.Time `gorm:"->" json:"saved_at,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName specifies the table name for GORM.
func (Post) TableName() string {
	return "posts"
}

// Published reports whether the post is in the published state.
func (p *Post) Published() bool {
	return p.Status == PostStatusPublished
}
