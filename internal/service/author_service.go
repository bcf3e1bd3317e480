// Package service contains the application's business logic.
package service

import (
	"context"
	"strings"
	"time"

	"byline/internal/models"
	"byline/internal/observability"
	"byline/internal/repository"

	"go.opentelemetry.io/otel/attribute"
)

// latestPostContentLimit caps the latest-post content summary length.
const latestPostContentLimit = 100

// lastMonthWindowDays is the size of the trailing window for the
// last-month aggregates.
const lastMonthWindowDays = 30

// AuthorService assembles author listings with per-author post aggregates.
type AuthorService struct {
	authorRepo repository.AuthorRepository
	now        func() time.Time
}

// ListAuthorsInput carries the validated listing parameters. The handler
// layer is responsible for defaults and range checks.
type ListAuthorsInput struct {
	Columns       []string
	Offset        int
	Limit         int // 0 means no limit
	SortColumn    string
	SortDirection string
	FilterColumn  string
	FilterValue   string
	IncludeTotals bool
}

// NewAuthorService creates a new author service.
func NewAuthorService(authorRepo repository.AuthorRepository) *AuthorService {
	return &AuthorService{
		authorRepo: authorRepo,
		now:        time.Now,
	}
}

// GetAuthorsPosts returns the author listing for the given parameters:
// projected author columns plus post aggregates computed over each author's
// public posts, optionally with total and filtered counts.
func (s *AuthorService) GetAuthorsPosts(ctx context.Context, in ListAuthorsInput) (*models.AuthorsResponse, error) {
	span, ctx := observability.NewSpan(ctx, "AuthorService.GetAuthorsPosts")
	defer span.End()
	span.AddAttributes(
		attribute.Int("authors.offset", in.Offset),
		attribute.Int("authors.limit", in.Limit),
		attribute.String("authors.sort", in.SortColumn),
	)

	q := s.authorRepo.AuthorsWithPublicPosts(ctx)
	q = s.authorRepo.SortByColumn(q, in.SortColumn, in.SortDirection)

	q, err := s.authorRepo.FilterByColumn(ctx, q, in.FilterColumn, in.FilterValue)
	if err != nil {
		span.SetError(err)
		return nil, err
	}

	// Counts run against the filtered, unpaginated query.
	var totalCount, filteredCount *int64
	if in.IncludeTotals {
		total, err := s.authorRepo.CountAuthors(ctx)
		if err != nil {
			span.SetError(err)
			return nil, err
		}
		filtered, err := s.authorRepo.Count(q)
		if err != nil {
			span.SetError(err)
			return nil, err
		}
		totalCount, filteredCount = &total, &filtered
	}

	q, projected, err := s.authorRepo.SelectColumns(ctx, q, in.Columns)
	if err != nil {
		span.SetError(err)
		return nil, err
	}

	authors, err := s.authorRepo.Find(q, in.Offset, in.Limit)
	if err != nil {
		span.SetError(err)
		return nil, err
	}

	views := make([]models.AuthorView, 0, len(authors))
	nowDate := dateOf(s.now())
	for i := range authors {
		views = append(views, s.buildView(&authors[i], projected, nowDate))
	}

	return &models.AuthorsResponse{
		Data:                 views,
		TotalAuthorsCount:    totalCount,
		FilteredAuthorsCount: filteredCount,
	}, nil
}

// GetAuthorByID returns a single author without posts, or (nil, nil) when
// the author does not exist.
func (s *AuthorService) GetAuthorByID(ctx context.Context, id uint) (*models.Author, error) {
	author, err := s.authorRepo.GetByID(ctx, id)
	if err != nil || author == nil {
		return nil, err
	}
	author.Name = author.FullName()
	return author, nil
}

// buildView flattens an author row into the output shape. projected is the
// surviving requested column list; nil means every column was selected.
func (s *AuthorService) buildView(author *models.Author, projected []string, nowDate time.Time) models.AuthorView {
	view := models.AuthorView{
		ID:   author.ID,
		Name: author.Name,
	}
	if view.Name == "" {
		view.Name = author.FullName()
	}

	// Raw name parts only appear when asked for by name; everything else
	// follows the projection (full set when projected is nil).
	if containsColumn(projected, "first_name") {
		view.FirstName = &author.FirstName
	}
	if containsColumn(projected, "last_name") {
		view.LastName = &author.LastName
	}
	if projected == nil || containsColumn(projected, "gender") {
		view.Gender = &author.Gender
	}
	if projected == nil || containsColumn(projected, "created_at") {
		view.CreatedAt = &author.CreatedAt
	}
	if projected == nil || containsColumn(projected, "updated_at") {
		view.UpdatedAt = &author.UpdatedAt
	}

	windowStart := nowDate.AddDate(0, 0, -lastMonthWindowDays)

	posts := author.Posts
	view.TotalPostsCount = len(posts)

	var ratingSum, windowRatingSum float64
	var latest *models.Post
	for i := range posts {
		p := &posts[i]
		ratingSum += p.Rating
		if p.PublishedAt != nil && !dateOf(*p.PublishedAt).Before(windowStart) {
			view.LastMonthPostsCount++
			windowRatingSum += p.Rating
		}
		if latest == nil || publishedAfter(p, latest) {
			latest = p
		}
	}

	if latest != nil {
		view.LatestPost = &models.LatestPostView{
			Title:   latest.Title,
			Content: limitContent(latest.Content, latestPostContentLimit),
		}
	}
	if len(posts) > 0 {
		avg := ratingSum / float64(len(posts))
		view.AverageRating = &avg
	}
	if view.LastMonthPostsCount > 0 {
		avg := windowRatingSum / float64(view.LastMonthPostsCount)
		view.AverageRatingLastMonth = &avg
	}

	return view
}

// publishedAfter reports whether a was published strictly after b. A missing
// publication date sorts earliest, so ties keep the first post seen.
func publishedAfter(a, b *models.Post) bool {
	if a.PublishedAt == nil {
		return false
	}
	if b.PublishedAt == nil {
		return true
	}
	return a.PublishedAt.After(*b.PublishedAt)
}

// dateOf truncates t to its calendar date.
func dateOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// limitContent truncates s to at most limit runes, appending "..." when
// anything was cut.
func limitContent(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return strings.TrimRight(string(runes[:limit]), " ") + "..."
}

func containsColumn(columns []string, name string) bool {
	for _, c := range columns {
		if c == name {
			return true
		}
	}
	return false
}
