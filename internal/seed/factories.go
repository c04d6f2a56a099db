// Package seed provides helpers to create demo and fixture data for the
// application database. These helpers are intended for development and
// testing only.
package seed

import (
	"fmt"
	"math/rand"
	"strings"
	"time"

	"inkwell/internal/models"

	"github.com/brianvoe/gofakeit/v6"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var categories = []string{
	"Go", "Databases", "Distributed Systems", "Web Development", "DevOps",
	"Machine Learning", "Security", "Career", "Open Source", "Tooling",
}

// Factory builds domain entities and persists them to the database.
// It is a thin helper used by seed presets and tests.
type Factory struct {
	db   *gorm.DB
	opts Options
	rng  *rand.Rand
	seq  int
}

// NewFactory creates a new Factory bound to the provided Gorm DB.
func NewFactory(db *gorm.DB, opts Options) *Factory {
	gofakeit.Seed(time.Now().UnixNano())
	//nolint:gosec // weak randomness is fine for demo data
	return &Factory{db: db, opts: opts, rng: rand.New(rand.NewSource(time.Now().UnixNano()))}
}

// CreateAuthor constructs and persists a sample author account.
// Optional override functions may modify the generated user before saving.
func (f *Factory) CreateAuthor(overrides ...func(*models.User)) (*models.User, error) {
	f.seq++
	name := gofakeit.Name()
	user := &models.User{
		Name:   name,
		Email:  fmt.Sprintf("%d.%s", f.seq, gofakeit.Email()),
		Slug:   fmt.Sprintf("%s-%d", models.Slugify(name), f.seq),
		Bio:    gofakeit.Sentence(10),
		Avatar: fmt.Sprintf("https://i.pravatar.cc/150?u=%s", gofakeit.UUID()),
	}

	// Allow skipping bcrypt in dev fast mode.
	if f.opts.SkipBcrypt {
		user.PasswordHash = "password123"
	} else {
		hashed, _ := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.DefaultCost)
		user.PasswordHash = string(hashed)
	}

	for _, override := range overrides {
		override(user)
	}

	if err := f.db.Create(user).Error; err != nil {
		return nil, err
	}
	return user, nil
}

// CreatePost constructs and persists a published post for the given author.
func (f *Factory) CreatePost(author *models.User, overrides ...func(*models.Post)) (*models.Post, error) {
	f.seq++
	title := strings.TrimSuffix(gofakeit.Sentence(5), ".")
	content := gofakeit.Paragraph(3, 4, 8, "\n\n")

	// realistic publication date spread
	maxDays := f.opts.MaxDays
	if maxDays <= 0 {
		maxDays = 90
	}
	daysBack := f.rng.Intn(maxDays)
	hoursBack := f.rng.Intn(24)
	date := time.Now().UTC().Add(-time.Duration(daysBack)*24*time.Hour - time.Duration(hoursBack)*time.Hour)

	words := len(strings.Fields(content))
	minutes := (words + 199) / 200
	if minutes < 1 {
		minutes = 1
	}

	post := &models.Post{
		Title:    title,
		Slug:     fmt.Sprintf("%s-%d", models.Slugify(title), f.seq),
		Excerpt:  gofakeit.Sentence(12),
		Content:  content,
		Category: categories[f.rng.Intn(len(categories))],
		Image:    fmt.Sprintf("https://picsum.photos/seed/%s/800/450", gofakeit.UUID()),
		ReadTime: fmt.Sprintf("%d min read", minutes),
		Date:     date,
		Views:    int64(f.rng.Intn(5000)),
		Status:   models.PostStatusPublished,
		AuthorID: author.ID,
	}

	for _, override := range overrides {
		override(post)
	}

	if err := f.db.Create(post).Error; err != nil {
		return nil, err
	}
	return post, nil
}

// CreateFollow persists a follow edge from follower to author. Duplicate
// edges are skipped, matching the toggle semantics of the live API.
func (f *Factory) CreateFollow(follower, author *models.User) error {
	if follower.ID == author.ID {
		return nil
	}
	return f.db.
		Where(models.Follow{FollowerID: follower.ID, FollowedID: author.ID}).
		FirstOrCreate(&models.Follow{}).Error
}

// CreateSave persists a save edge from user to post, skipping duplicates.
func (f *Factory) CreateSave(user *models.User, post *models.Post) error {
	return f.db.
		Where(models.SavedPost{UserID: user.ID, PostSlug: post.Slug}).
		FirstOrCreate(&models.SavedPost{}).Error
}
