package seed

import (
	"fmt"
	"os"
	"time"

	"inkwell/internal/models"

	"golang.org/x/crypto/bcrypt"
	"gopkg.in/yaml.v3"
	"gorm.io/gorm"
)

// Fixture is the YAML shape of a deterministic seed file. Posts reference
// authors by slug, and edges reference both sides by slug, so fixtures stay
// readable and independent of numeric IDs.
type Fixture struct {
	Authors []FixtureAuthor `yaml:"authors"`
	Posts   []FixturePost   `yaml:"posts"`
	Follows []FixtureFollow `yaml:"follows"`
	Saves   []FixtureSave   `yaml:"saves"`
}

type FixtureAuthor struct {
	Name     string `yaml:"name"`
	Email    string `yaml:"email"`
	Slug     string `yaml:"slug"`
	Bio      string `yaml:"bio"`
	Avatar   string `yaml:"avatar"`
	Password string `yaml:"password"`
}

type FixturePost struct {
	Title    string    `yaml:"title"`
	Slug     string    `yaml:"slug"`
	Author   string    `yaml:"author"` // author slug
	Category string    `yaml:"category"`
	Excerpt  string    `yaml:"excerpt"`
	Content  string    `yaml:"content"`
	Image    string    `yaml:"image"`
	Status   string    `yaml:"status"`
	Date     time.Time `yaml:"date"`
	Views    int64     `yaml:"views"`
}

type FixtureFollow struct {
	Follower string `yaml:"follower"` // author slug
	Author   string `yaml:"author"`   // author slug
}

type FixtureSave struct {
	User string `yaml:"user"` // author slug
	Post string `yaml:"post"` // post slug
}

// LoadFixtureFile reads a YAML fixture from disk and applies it.
func LoadFixtureFile(db *gorm.DB, path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read fixture %s: %w", path, err)
	}

	var fixture Fixture
	if err := yaml.Unmarshal(raw, &fixture); err != nil {
		return fmt.Errorf("failed to parse fixture %s: %w", path, err)
	}
	return ApplyFixture(db, &fixture)
}

// ApplyFixture inserts the fixture's entities in dependency order.
func ApplyFixture(db *gorm.DB, fixture *Fixture) error {
	authorsBySlug := make(map[string]*models.User, len(fixture.Authors))
	for _, fa := range fixture.Authors {
		if fa.Slug == "" {
			return fmt.Errorf("fixture author %q has no slug", fa.Name)
		}
		password := fa.Password
		if password == "" {
			password = "password123"
		}
		hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
		if err != nil {
			return err
		}
		user := &models.User{
			Name:         fa.Name,
			Email:        fa.Email,
			Slug:         fa.Slug,
			Bio:          fa.Bio,
			Avatar:       fa.Avatar,
			PasswordHash: string(hashed),
		}
		if err := db.Create(user).Error; err != nil {
			return fmt.Errorf("failed to create fixture author %s: %w", fa.Slug, err)
		}
		authorsBySlug[fa.Slug] = user
	}

	postsBySlug := make(map[string]*models.Post, len(fixture.Posts))
	for _, fp := range fixture.Posts {
		author, ok := authorsBySlug[fp.Author]
		if !ok {
			return fmt.Errorf("fixture post %s references unknown author %q", fp.Slug, fp.Author)
		}
		status := models.PostStatus(fp.Status)
		if fp.Status == "" {
			status = models.PostStatusPublished
		}
		if !status.Valid() {
			return fmt.Errorf("fixture post %s has invalid status %q", fp.Slug, fp.Status)
		}
		date := fp.Date
		if date.IsZero() {
			date = time.Now().UTC()
		}
		post := &models.Post{
			Title:    fp.Title,
			Slug:     fp.Slug,
			Excerpt:  fp.Excerpt,
			Content:  fp.Content,
			Category: fp.Category,
			Image:    fp.Image,
			Status:   status,
			Date:     date,
			Views:    fp.Views,
			AuthorID: author.ID,
		}
		if err := db.Create(post).Error; err != nil {
			return fmt.Errorf("failed to create fixture post %s: %w", fp.Slug, err)
		}
		postsBySlug[fp.Slug] = post
	}

	for _, ff := range fixture.Follows {
		follower, ok := authorsBySlug[ff.Follower]
		if !ok {
			return fmt.Errorf("fixture follow references unknown follower %q", ff.Follower)
		}
		author, ok := authorsBySlug[ff.Author]
		if !ok {
			return fmt.Errorf("fixture follow references unknown author %q", ff.Author)
		}
		edge := &models.Follow{FollowerID: follower.ID, FollowedID: author.ID}
		if err := db.Create(edge).Error; err != nil {
			return fmt.Errorf("failed to create fixture follow %s -> %s: %w", ff.Follower, ff.Author, err)
		}
	}

	for _, fs := range fixture.Saves {
		user, ok := authorsBySlug[fs.User]
		if !ok {
			return fmt.Errorf("fixture save references unknown user %q", fs.User)
		}
		if _, ok := postsBySlug[fs.Post]; !ok {
			return fmt.Errorf("fixture save references unknown post %q", fs.Post)
		}
		edge := &models.SavedPost{UserID: user.ID, PostSlug: fs.Post}
		if err := db.Create(edge).Error; err != nil {
			return fmt.Errorf("failed to create fixture save %s -> %s: %w", fs.User, fs.Post, err)
		}
	}

	return nil
}
