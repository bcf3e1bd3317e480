// Command main runs the database seeder for Byline.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"byline/internal/config"
	"byline/internal/database"
	"byline/internal/seed"

	"gopkg.in/yaml.v3"
)

// profile describes a seeding run. Flags override file values.
type profile struct {
	Authors    int   `yaml:"authors"`
	MinPosts   int   `yaml:"min_posts"`
	MaxPosts   int   `yaml:"max_posts"`
	Seed       int64 `yaml:"seed"`
	CleanFirst bool  `yaml:"clean_first"`
}

func loadProfile(path string) (*profile, error) {
	p := &profile{
		Authors:    25,
		MinPosts:   0,
		MaxPosts:   12,
		Seed:       1,
		CleanFirst: true,
	}
	if path == "" {
		return p, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read profile %s: %w", path, err)
	}
	if err := yaml.Unmarshal(raw, p); err != nil {
		return nil, fmt.Errorf("failed to parse profile %s: %w", path, err)
	}
	return p, nil
}

func main() {
	profilePath := flag.String("profile", "", "Path to a yaml seeding profile")
	numAuthors := flag.Int("authors", 0, "Number of authors to create (overrides profile)")
	shouldClean := flag.Bool("clean", true, "Clean database before seeding")
	flag.Parse()

	log.Println("Database Seeder")
	log.Println("===============")

	p, err := loadProfile(*profilePath)
	if err != nil {
		log.Fatalf("Profile error: %v", err)
	}
	if *numAuthors > 0 {
		p.Authors = *numAuthors
	}
	if !*shouldClean {
		p.CleanFirst = false
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	s := seed.NewSeeder(db, p.Seed)

	if p.CleanFirst {
		if err := s.ClearAll(); err != nil {
			log.Fatalf("Cleanup failed: %v", err)
		}
	}

	authors, err := s.Authors(p.Authors)
	if err != nil {
		log.Fatalf("Author seeding failed: %v", err)
	}
	posts, err := s.PostsFor(authors, p.MinPosts, p.MaxPosts)
	if err != nil {
		log.Fatalf("Post seeding failed: %v", err)
	}

	log.Printf("Seeded %d authors and %d posts", len(authors), posts)
}
