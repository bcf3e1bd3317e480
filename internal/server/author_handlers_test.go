package server

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"byline/internal/cache"
	"byline/internal/config"
	"byline/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupAuthorTestApp(t *testing.T) *fiber.App {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(&models.Author{}, &models.Post{}); err != nil {
		t.Fatalf("migrate sqlite: %v", err)
	}
	seedAuthorsAndPosts(t, db)

	cfg := &config.Config{Env: "test", Port: "0"}
	srv := NewServerWithDeps(cfg, db, nil, cache.NewMemoryStore())

	app := fiber.New()
	srv.SetupRoutes(app)
	return app
}

func seedAuthorsAndPosts(t *testing.T, db *gorm.DB) {
	t.Helper()

	authors := []models.Author{
		{FirstName: "Ada", LastName: "Lovelace", Gender: "female"},
		{FirstName: "Alan", LastName: "Turing", Gender: "male"},
		{FirstName: "Grace", LastName: "Hopper", Gender: "female"},
	}
	require.NoError(t, db.Create(&authors).Error)

	recent := time.Now().AddDate(0, 0, -5)
	old := time.Now().AddDate(0, 0, -60)
	yesterday := time.Now().AddDate(0, 0, -1)
	posts := []models.Post{
		// Ada: one recent and one old public post, one private post.
		{AuthorID: authors[0].ID, Title: "Engines", Content: strings.Repeat("x", 150), PublishedAt: &recent, Rating: 8},
		{AuthorID: authors[0].ID, Title: "Notes", Content: "short", PublishedAt: &old, Rating: 4},
		{AuthorID: authors[0].ID, Title: "Hidden", Content: "private", PublishedAt: &yesterday, Rating: 10, IsPrivate: models.PostPrivate},
		// Alan: a single unpublished public post.
		{AuthorID: authors[1].ID, Title: "Machines", Content: "draft", Rating: 6},
		// Grace: private posts only.
		{AuthorID: authors[2].ID, Title: "Compilers", Content: "private", PublishedAt: &recent, Rating: 9, IsPrivate: models.PostPrivate},
	}
	require.NoError(t, db.Create(&posts).Error)
}

func getJSON(t *testing.T, app *fiber.App, url string) (int, map[string]any) {
	t.Helper()

	req := httptest.NewRequest(http.MethodGet, url, nil)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var body map[string]any
	if len(raw) > 0 && raw[0] == '{' {
		require.NoError(t, json.Unmarshal(raw, &body))
	}
	return resp.StatusCode, body
}

func dataRows(t *testing.T, body map[string]any) []map[string]any {
	t.Helper()

	raw, ok := body["data"].([]any)
	require.True(t, ok, "response must have a data array")
	rows := make([]map[string]any, 0, len(raw))
	for _, r := range raw {
		m, ok := r.(map[string]any)
		require.True(t, ok)
		rows = append(rows, m)
	}
	return rows
}

func TestGetAuthorsPosts_DefaultListing(t *testing.T) {
	t.Parallel()

	app := setupAuthorTestApp(t)
	status, body := getJSON(t, app, "/api/get-authors-posts")
	require.Equal(t, http.StatusOK, status)

	rows := dataRows(t, body)
	require.Len(t, rows, 3)

	// Default sort is first_name ascending.
	assert.Equal(t, "Ada Lovelace", rows[0]["name"])
	assert.Equal(t, "Alan Turing", rows[1]["name"])
	assert.Equal(t, "Grace Hopper", rows[2]["name"])

	ada := rows[0]
	assert.Equal(t, float64(2), ada["total_posts_count"], "private posts never count")
	assert.Equal(t, float64(1), ada["last_month_posts_count"])
	assert.Equal(t, float64(6), ada["average_rating"])
	assert.Equal(t, float64(8), ada["average_rating_last_month"])
	latest, ok := ada["latest_post"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "Engines", latest["title"])
	assert.Equal(t, strings.Repeat("x", 100)+"...", latest["content"])

	// Raw name parts stay hidden without an explicit request; gender shows.
	_, hasFirst := ada["first_name"]
	assert.False(t, hasFirst)
	assert.Equal(t, "female", ada["gender"])
	_, hasPosts := ada["posts"]
	assert.False(t, hasPosts)

	alan := rows[1]
	assert.Equal(t, float64(1), alan["total_posts_count"])
	assert.Equal(t, float64(0), alan["last_month_posts_count"])
	assert.Nil(t, alan["average_rating_last_month"])
	latest, ok = alan["latest_post"].(map[string]any)
	require.True(t, ok, "an unpublished post still surfaces as latest")
	assert.Equal(t, "Machines", latest["title"])

	grace := rows[2]
	assert.Equal(t, float64(0), grace["total_posts_count"])
	assert.Nil(t, grace["latest_post"])
	assert.Nil(t, grace["average_rating"])

	// Totals are omitted entirely when not requested.
	_, hasTotal := body["total_authors_count"]
	_, hasFiltered := body["filtered_authors_count"]
	assert.False(t, hasTotal)
	assert.False(t, hasFiltered)
}

func TestGetAuthorsPosts_FilterAndTotals(t *testing.T) {
	t.Parallel()

	app := setupAuthorTestApp(t)
	status, body := getJSON(t, app,
		"/api/get-authors-posts?filter_column=gender&filter_value=female&include_totals=true")
	require.Equal(t, http.StatusOK, status)

	rows := dataRows(t, body)
	require.Len(t, rows, 2)
	assert.Equal(t, "Ada Lovelace", rows[0]["name"])
	assert.Equal(t, "Grace Hopper", rows[1]["name"])

	assert.Equal(t, float64(3), body["total_authors_count"])
	assert.Equal(t, float64(2), body["filtered_authors_count"])
}

func TestGetAuthorsPosts_ColumnProjection(t *testing.T) {
	t.Parallel()

	app := setupAuthorTestApp(t)
	status, body := getJSON(t, app,
		"/api/get-authors-posts?columns[]=name&columns[]=shoe_size")
	require.Equal(t, http.StatusOK, status)

	rows := dataRows(t, body)
	require.Len(t, rows, 3)
	for _, row := range rows {
		assert.NotEmpty(t, row["name"])
		_, hasGender := row["gender"]
		assert.False(t, hasGender, "unprojected columns are omitted")
		_, hasShoeSize := row["shoe_size"]
		assert.False(t, hasShoeSize, "unknown columns are silently dropped")
	}
}

func TestGetAuthorsPosts_NameSortDescending(t *testing.T) {
	t.Parallel()

	app := setupAuthorTestApp(t)
	status, body := getJSON(t, app,
		"/api/get-authors-posts?sort_column=name&sort_direction=desc")
	require.Equal(t, http.StatusOK, status)

	rows := dataRows(t, body)
	require.Len(t, rows, 3)
	assert.Equal(t, "Grace Hopper", rows[0]["name"])
	assert.Equal(t, "Ada Lovelace", rows[2]["name"])
}

func TestGetAuthorsPosts_Pagination(t *testing.T) {
	t.Parallel()

	app := setupAuthorTestApp(t)
	status, body := getJSON(t, app, "/api/get-authors-posts?offset=1&limit=1")
	require.Equal(t, http.StatusOK, status)

	rows := dataRows(t, body)
	require.Len(t, rows, 1)
	assert.Equal(t, "Alan Turing", rows[0]["name"])
}

func TestGetAuthorsPosts_UnknownFilterColumn(t *testing.T) {
	t.Parallel()

	app := setupAuthorTestApp(t)
	status, body := getJSON(t, app,
		"/api/get-authors-posts?filter_column=shoe_size&filter_value=44")
	require.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "Filter column 'shoe_size' not found", body["error"])
}

func TestGetAuthorsPosts_ParameterValidation(t *testing.T) {
	t.Parallel()

	app := setupAuthorTestApp(t)

	tests := []struct {
		name  string
		query string
	}{
		{name: "zero limit", query: "limit=0"},
		{name: "limit above cap", query: "limit=51"},
		{name: "non-numeric limit", query: "limit=abc"},
		{name: "negative offset", query: "offset=-1"},
		{name: "non-numeric offset", query: "offset=abc"},
		{name: "bad sort direction", query: "sort_direction=sideways"},
		{name: "bad include_totals", query: "include_totals=maybe"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			status, _ := getJSON(t, app, "/api/get-authors-posts?"+tt.query)
			assert.Equal(t, http.StatusBadRequest, status)
		})
	}
}

func TestGetAuthor(t *testing.T) {
	t.Parallel()

	app := setupAuthorTestApp(t)

	t.Run("found", func(t *testing.T) {
		status, body := getJSON(t, app, "/api/author?id=1")
		require.Equal(t, http.StatusOK, status)
		assert.Equal(t, "Ada Lovelace", body["name"])
		assert.Equal(t, "Ada", body["first_name"])
		_, hasPosts := body["posts"]
		assert.False(t, hasPosts)
	})

	t.Run("absent returns null", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/author?id=9999", nil)
		resp, err := app.Test(req, -1)
		require.NoError(t, err)
		defer resp.Body.Close()
		require.Equal(t, http.StatusOK, resp.StatusCode)
		raw, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		assert.Equal(t, "null", strings.TrimSpace(string(raw)))
	})

	t.Run("invalid id", func(t *testing.T) {
		status, _ := getJSON(t, app, "/api/author?id=abc")
		assert.Equal(t, http.StatusBadRequest, status)
	})
}

func TestHealthEndpoints(t *testing.T) {
	t.Parallel()

	app := setupAuthorTestApp(t)

	status, body := getJSON(t, app, "/health/live")
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "up", body["status"])

	status, body = getJSON(t, app, "/health/ready")
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "healthy", body["status"])
}
