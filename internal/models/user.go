// Package models contains data structures for the application's domain models.
package models

import (
	"time"
)

// User represents an account in the platform. A user with a non-empty Slug is
// a public author; users without one never appear in the author directory.
type User struct {
	ID           uint   `gorm:"primaryKey" json:"id"`
	Email        string `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash string `gorm:"not null" json:"-"`
	Name         string `gorm:"not null" json:"name"`
	AliasName    string `json:"alias_name,omitempty"`
	Slug         string `gorm:"uniqueIndex:idx_users_slug,where:slug <> ''" json:"slug"`
	Bio          string `gorm:"type:text" json:"bio"`
	Avatar       string `json:"avatar"`
	Role         string `gorm:"default:'author'" json:"role"`

	// PostCount and TotalViews are not persisted; computed at query time
	// by the author directory.
	PostCount  int64 `gorm:"->" json:"post_count"`
	TotalViews int64 `gorm:"->" json:"total_views"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName specifies the table name for GORM.
func (User) TableName() string {
	return "users"
}

// DisplayName returns the alias override when set, otherwise the real name.
func (u *User) DisplayName() string {
	if u.AliasName != "" {
		return u.AliasName
	}
	return u.Name
}

// PublicAuthor reports whether the user has a public author identity.
func (u *User) PublicAuthor() bool {
	return u.Slug != ""
}
