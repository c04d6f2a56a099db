package repository

import (
	"testing"
	"time"

	"inkwell/internal/database"
	"inkwell/internal/models"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		t.Fatalf("failed to migrate database: %v", err)
	}
	return db
}

func seedAuthor(t *testing.T, db *gorm.DB, name, slug string) *models.User {
	t.Helper()
	user := &models.User{
		Email:        slug + "@example.com",
		PasswordHash: "x",
		Name:         name,
		Slug:         slug,
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to seed author %s: %v", slug, err)
	}
	return user
}

type postSpec struct {
	slug     string
	title    string
	category string
	status   models.PostStatus
	date     time.Time
	views    int64
}

func seedPost(t *testing.T, db *gorm.DB, authorID uint, spec postSpec) *models.Post {
	t.Helper()
	if spec.status == "" {
		spec.status = models.PostStatusPublished
	}
	if spec.date.IsZero() {
		spec.date = time.Date(2026, 1, 15, 12, 0, 0, 0, time.UTC)
	}
	if spec.title == "" {
		spec.title = spec.slug
	}
	post := &models.Post{
		Slug:     spec.slug,
		Title:    spec.title,
		Excerpt:  "excerpt of " + spec.slug,
		Content:  "content of " + spec.slug,
		Category: spec.category,
		Image:    "/images/" + spec.slug + ".png",
		ReadTime: "3 min read",
		Date:     spec.date,
		Views:    spec.views,
		Status:   spec.status,
		AuthorID: authorID,
	}
	if err := db.Create(post).Error; err != nil {
		t.Fatalf("failed to seed post %s: %v", spec.slug, err)
	}
	return post
}
