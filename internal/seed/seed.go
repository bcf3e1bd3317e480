// Package seed populates the database with generated authors and posts for
// development and testing.
package seed

import (
	"fmt"
	"math/rand"
	"time"

	"byline/internal/models"

	"github.com/brianvoe/gofakeit/v6"
	"gorm.io/gorm"
)

// Seeder generates demo data.
type Seeder struct {
	db   *gorm.DB
	fake *gofakeit.Faker
	rng  *rand.Rand
}

// NewSeeder returns a Seeder with a fixed source so repeated runs against a
// clean database produce the same data.
func NewSeeder(db *gorm.DB, seed int64) *Seeder {
	return &Seeder{
		db:   db,
		fake: gofakeit.New(seed),
		rng:  rand.New(rand.NewSource(seed)),
	}
}

// ClearAll removes all seeded rows.
func (s *Seeder) ClearAll() error {
	if err := s.db.Exec("DELETE FROM posts").Error; err != nil {
		return fmt.Errorf("failed to clear posts: %w", err)
	}
	if err := s.db.Exec("DELETE FROM authors").Error; err != nil {
		return fmt.Errorf("failed to clear authors: %w", err)
	}
	return nil
}

// Authors creates n authors without posts.
func (s *Seeder) Authors(n int) ([]models.Author, error) {
	authors := make([]models.Author, 0, n)
	for i := 0; i < n; i++ {
		authors = append(authors, s.NewAuthor())
	}
	if err := s.db.Create(&authors).Error; err != nil {
		return nil, fmt.Errorf("failed to seed authors: %w", err)
	}
	return authors, nil
}

// PostsFor creates between minPosts and maxPosts posts for every author.
func (s *Seeder) PostsFor(authors []models.Author, minPosts, maxPosts int) (int, error) {
	var posts []models.Post
	for _, author := range authors {
		n := minPosts
		if maxPosts > minPosts {
			n += s.rng.Intn(maxPosts - minPosts + 1)
		}
		for i := 0; i < n; i++ {
			posts = append(posts, s.NewPost(author.ID))
		}
	}
	if len(posts) == 0 {
		return 0, nil
	}
	if err := s.db.CreateInBatches(&posts, 200).Error; err != nil {
		return 0, fmt.Errorf("failed to seed posts: %w", err)
	}
	return len(posts), nil
}

// NewAuthor builds an unsaved author.
func (s *Seeder) NewAuthor() models.Author {
	gender := "male"
	if s.rng.Intn(2) == 0 {
		gender = "female"
	}
	return models.Author{
		FirstName: s.fake.FirstName(),
		LastName:  s.fake.LastName(),
		Gender:    gender,
	}
}

// NewPost builds an unsaved post for the given author. Publication dates are
// spread over the last year, roughly one in ten posts is an unpublished
// draft, and roughly half the posts are private.
func (s *Seeder) NewPost(authorID uint) models.Post {
	post := models.Post{
		AuthorID: authorID,
		Title:    s.fake.Sentence(s.rng.Intn(5) + 3),
		Content:  s.fake.Paragraph(1, s.rng.Intn(3)+2, s.rng.Intn(10)+8, " "),
		Rating:   float64(s.rng.Intn(91)+10) / 10, // 1.0 .. 10.0
	}
	if s.rng.Intn(10) > 0 {
		publishedAt := time.Now().Add(-time.Duration(s.rng.Intn(365*24)) * time.Hour)
		post.PublishedAt = &publishedAt
	}
	if s.rng.Intn(2) == 1 {
		post.IsPrivate = models.PostPrivate
	}
	return post
}
