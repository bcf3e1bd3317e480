// Package repository provides data access layer implementations for the application.
package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"byline/internal/cache"
	"byline/internal/models"
	"byline/internal/observability"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// nameExpr is the SQL expression backing the virtual "name" column.
const nameExpr = "CONCAT(first_name, ' ', last_name)"

// AuthorRepository defines the interface for author data operations.
// The query-building methods take and return a *gorm.DB so the service layer
// can compose base query, projection, sort, filter, and counts in any order.
type AuthorRepository interface {
	AuthorsWithPublicPosts(ctx context.Context) *gorm.DB
	ExistingColumns(ctx context.Context) ([]string, error)
	SelectColumns(ctx context.Context, q *gorm.DB, requested []string) (*gorm.DB, []string, error)
	SortByColumn(q *gorm.DB, column, direction string) *gorm.DB
	FilterByColumn(ctx context.Context, q *gorm.DB, column, value string) (*gorm.DB, error)
	CountAuthors(ctx context.Context) (int64, error)
	Count(q *gorm.DB) (int64, error)
	Find(q *gorm.DB, offset, limit int) ([]models.Author, error)
	GetByID(ctx context.Context, id uint) (*models.Author, error)
}

// authorRepository implements AuthorRepository
type authorRepository struct {
	db      *gorm.DB
	store   cache.Store
	metrics *observability.DatabaseMetrics
}

// NewAuthorRepository creates a new author repository. store may be nil, in
// which case the column catalog is read from the database on every call.
func NewAuthorRepository(db *gorm.DB, store cache.Store) AuthorRepository {
	return &authorRepository{
		db:      db,
		store:   store,
		metrics: observability.NewDatabaseMetrics("authors"),
	}
}

// AuthorsWithPublicPosts returns the base query: all authors with their
// public posts preloaded. Private posts never reach the result set.
func (r *authorRepository) AuthorsWithPublicPosts(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Model(&models.Author{}).
		Preload("Posts", "is_private = ?", models.PostPublic)
}

// ExistingColumns returns the column names of the authors table, cached for
// cache.ColumnsTTL. Cache failures fall back to reading the schema.
func (r *authorRepository) ExistingColumns(ctx context.Context) ([]string, error) {
	var columns []string
	err := cache.Aside(ctx, r.store, cache.ColumnsKey("authors"), &columns, cache.ColumnsTTL, func() error {
		types, err := r.db.WithContext(ctx).Migrator().ColumnTypes(&models.Author{})
		if err != nil {
			return err
		}
		columns = columns[:0]
		for _, ct := range types {
			columns = append(columns, ct.Name())
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return columns, nil
}

// SelectColumns applies the requested projection to q. An empty request keeps
// the full column set. Unknown column names are silently dropped; requesting
// "name" projects the CONCAT expression together with its source columns, and
// "id" is always kept so preloading still works. Returns the surviving
// requested names (nil when everything is projected).
func (r *authorRepository) SelectColumns(ctx context.Context, q *gorm.DB, requested []string) (*gorm.DB, []string, error) {
	if len(requested) == 0 {
		return q, nil, nil
	}

	catalog, err := r.ExistingColumns(ctx)
	if err != nil {
		return nil, nil, err
	}
	known := make(map[string]bool, len(catalog))
	for _, c := range catalog {
		known[c] = true
	}

	// kept stays non-nil so callers can tell "nothing survived" apart from
	// "no projection was requested".
	kept := make([]string, 0, len(requested))
	var selects []string
	hasID := false
	for _, col := range requested {
		switch {
		case col == "name":
			kept = append(kept, col)
			selects = append(selects, nameExpr+" AS name", "first_name", "last_name")
		case known[col]:
			kept = append(kept, col)
			selects = append(selects, col)
			if col == "id" {
				hasID = true
			}
		}
	}
	if !hasID {
		selects = append(selects, "id")
	}

	return q.Select(strings.Join(selects, ", ")), kept, nil
}

// SortByColumn orders q by the given column. "name" sorts by the CONCAT
// expression. direction must already be validated to asc/desc.
func (r *authorRepository) SortByColumn(q *gorm.DB, column, direction string) *gorm.DB {
	if column == "" {
		return q
	}
	if column == "name" {
		return q.Order(fmt.Sprintf("%s %s", nameExpr, direction))
	}
	return q.Order(clause.OrderByColumn{
		Column: clause.Column{Name: column},
		Desc:   direction == "desc",
	})
}

// FilterByColumn restricts q to rows matching value in column. gender is an
// exact match, "name" matches the CONCAT expression with LIKE, every other
// known column matches with LIKE. An unknown column is a validation error.
func (r *authorRepository) FilterByColumn(ctx context.Context, q *gorm.DB, column, value string) (*gorm.DB, error) {
	switch column {
	case "":
		return q, nil
	case "gender":
		return q.Where("gender = ?", value), nil
	case "name":
		return q.Where(nameExpr+" LIKE ?", "%"+value+"%"), nil
	}

	catalog, err := r.ExistingColumns(ctx)
	if err != nil {
		return nil, err
	}
	for _, c := range catalog {
		if c == column {
			return q.Where(fmt.Sprintf("%s LIKE ?", column), "%"+value+"%"), nil
		}
	}
	return nil, models.NewValidationError(fmt.Sprintf("Filter column '%s' not found", column))
}

// CountAuthors returns the unconditional author count.
func (r *authorRepository) CountAuthors(ctx context.Context) (int64, error) {
	defer r.metrics.TrackQuery("count")()

	var count int64
	err := r.db.WithContext(ctx).Model(&models.Author{}).Count(&count).Error
	return count, err
}

// Count returns the number of rows q matches without consuming q.
func (r *authorRepository) Count(q *gorm.DB) (int64, error) {
	defer r.metrics.TrackQuery("count_filtered")()

	var count int64
	err := q.Session(&gorm.Session{}).Count(&count).Error
	return count, err
}

// Find executes q with the given pagination. A non-positive limit means no
// limit at all.
func (r *authorRepository) Find(q *gorm.DB, offset, limit int) ([]models.Author, error) {
	defer r.metrics.TrackQuery("list")()

	q = q.Offset(offset)
	if limit > 0 {
		q = q.Limit(limit)
	}

	var authors []models.Author
	if err := q.Find(&authors).Error; err != nil {
		return nil, err
	}
	return authors, nil
}

// GetByID returns the author with the given id, or (nil, nil) when absent.
func (r *authorRepository) GetByID(ctx context.Context, id uint) (*models.Author, error) {
	defer r.metrics.TrackQuery("get_by_id")()

	var author models.Author
	err := r.db.WithContext(ctx).First(&author, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &author, nil
}
