// Command seed populates the database with demo data or a YAML fixture.
package main

import (
	"flag"
	"log"

	"inkwell/internal/config"
	"inkwell/internal/database"
	"inkwell/internal/seed"
)

func main() {
	numAuthors := flag.Int("authors", 10, "number of authors to create")
	numPosts := flag.Int("posts", 50, "number of posts to create")
	shouldClean := flag.Bool("clean", true, "clear existing data before seeding")
	fixture := flag.String("fixture", "", "YAML fixture file to load instead of generated data")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}
	if cfg.Production() {
		log.Fatal("refusing to seed a production database")
	}

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}

	if *fixture != "" {
		if err := seed.LoadFixtureFile(db, *fixture); err != nil {
			log.Fatalf("fixture loading failed: %v", err)
		}
		log.Printf("fixture %s applied", *fixture)
		return
	}

	err = seed.Seed(db, seed.Options{
		NumAuthors:  *numAuthors,
		NumPosts:    *numPosts,
		ShouldClean: *shouldClean,
	})
	if err != nil {
		log.Fatalf("seeding failed: %v", err)
	}
	log.Println("all demo accounts use the password: password123")
}
