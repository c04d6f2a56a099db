package seed

import (
	"fmt"
	"log"

	"inkwell/internal/models"

	"gorm.io/gorm"
)

// Options configures the seeder.
type Options struct {
	NumAuthors  int
	NumPosts    int
	ShouldClean bool
	// MaxDays bounds how far back generated publication dates reach.
	MaxDays int
	// SkipBcrypt stores plaintext demo passwords to speed up large seeds.
	SkipBcrypt bool
}

// Seed populates the database with generated demo data: authors, published
// posts (plus a few drafts), a follow mesh and saved posts.
func Seed(db *gorm.DB, opts Options) error {
	if opts.NumAuthors <= 0 {
		opts.NumAuthors = 10
	}
	if opts.NumPosts <= 0 {
		opts.NumPosts = 50
	}
	log.Printf("seeding %d authors and %d posts...", opts.NumAuthors, opts.NumPosts)

	if opts.ShouldClean {
		if err := clearData(db); err != nil {
			return fmt.Errorf("failed to clear existing data: %w", err)
		}
	}

	f := NewFactory(db, opts)

	authors := make([]*models.User, 0, opts.NumAuthors)
	for i := 0; i < opts.NumAuthors; i++ {
		author, err := f.CreateAuthor()
		if err != nil {
			return fmt.Errorf("failed to create author: %w", err)
		}
		authors = append(authors, author)
	}
	log.Printf("created %d authors", len(authors))

	posts := make([]*models.Post, 0, opts.NumPosts)
	for i := 0; i < opts.NumPosts; i++ {
		author := authors[f.rng.Intn(len(authors))]

		// roughly one post in ten stays a draft
		var overrides []func(*models.Post)
		if f.rng.Intn(10) == 0 {
			overrides = append(overrides, func(p *models.Post) {
				p.Status = models.PostStatusDraft
				p.Views = 0
			})
		}

		post, err := f.CreatePost(author, overrides...)
		if err != nil {
			return fmt.Errorf("failed to create post: %w", err)
		}
		posts = append(posts, post)
	}
	log.Printf("created %d posts", len(posts))

	// follow mesh: every author follows a handful of others
	follows := 0
	for _, follower := range authors {
		for i := 0; i < 3; i++ {
			target := authors[f.rng.Intn(len(authors))]
			if target.ID == follower.ID {
				continue
			}
			if err := f.CreateFollow(follower, target); err != nil {
				return fmt.Errorf("failed to create follow: %w", err)
			}
			follows++
		}
	}
	log.Printf("created %d follow edges", follows)

	// saves: each author bookmarks a few published posts
	saves := 0
	for _, reader := range authors {
		for i := 0; i < 2; i++ {
			post := posts[f.rng.Intn(len(posts))]
			if post.Status != models.PostStatusPublished {
				continue
			}
			if err := f.CreateSave(reader, post); err != nil {
				return fmt.Errorf("failed to create save: %w", err)
			}
			saves++
		}
	}
	log.Printf("created %d save edges", saves)

	log.Println("database seeding completed")
	return nil
}

func clearData(db *gorm.DB) error {
	log.Println("clearing existing data...")
	for _, table := range []string{"saved_posts", "follows", "posts", "users"} {
		if err := db.Exec("DELETE FROM " + table).Error; err != nil {
			return err
		}
	}
	return nil
}
