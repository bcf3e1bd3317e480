package server

import (
	"errors"
	"strconv"

	"byline/internal/models"
	"byline/internal/service"

	"github.com/gofiber/fiber/v2"
)

const (
	defaultSortColumn = "first_name"
	maxListingLimit   = 50
)

// GetAuthorsPosts handles GET /api/get-authors-posts
func (s *Server) GetAuthorsPosts(c *fiber.Ctx) error {
	in, err := parseListAuthorsInput(c)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest, err)
	}

	resp, err := s.authorService.GetAuthorsPosts(c.UserContext(), *in)
	if err != nil {
		var appErr *models.AppError
		if errors.As(err, &appErr) && appErr.Code == "VALIDATION_ERROR" {
			return models.RespondWithError(c, fiber.StatusBadRequest, err)
		}
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}

	return c.JSON(resp)
}

// GetAuthor handles GET /api/author?id=...
// Mirrors a bare point lookup: the body is the raw author or JSON null.
func (s *Server) GetAuthor(c *fiber.Ctx) error {
	id, err := strconv.Atoi(c.Query("id"))
	if err != nil || id <= 0 {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid author ID"))
	}

	author, err := s.authorService.GetAuthorByID(c.UserContext(), uint(id))
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}
	if author == nil {
		return c.JSON(nil)
	}
	return c.JSON(author)
}

// parseListAuthorsInput validates the listing query parameters. Any
// malformed parameter rejects the request before the service runs.
func parseListAuthorsInput(c *fiber.Ctx) (*service.ListAuthorsInput, error) {
	in := &service.ListAuthorsInput{
		Columns:       queryStrings(c, "columns"),
		SortColumn:    defaultSortColumn,
		SortDirection: "asc",
		FilterColumn:  c.Query("filter_column"),
		FilterValue:   c.Query("filter_value"),
	}

	if raw := c.Query("offset"); raw != "" {
		offset, err := strconv.Atoi(raw)
		if err != nil || offset < 0 {
			return nil, models.NewValidationError("offset must be a non-negative integer")
		}
		in.Offset = offset
	}

	if raw := c.Query("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 1 || limit > maxListingLimit {
			return nil, models.NewValidationError("limit must be an integer between 1 and 50")
		}
		in.Limit = limit
	}

	if raw := c.Query("sort_column"); raw != "" {
		in.SortColumn = raw
	}
	if raw := c.Query("sort_direction"); raw != "" {
		if raw != "asc" && raw != "desc" {
			return nil, models.NewValidationError("sort_direction must be asc or desc")
		}
		in.SortDirection = raw
	}

	if raw := c.Query("include_totals"); raw != "" {
		include, err := strconv.ParseBool(raw)
		if err != nil {
			return nil, models.NewValidationError("include_totals must be a boolean")
		}
		in.IncludeTotals = include
	}

	return in, nil
}

// queryStrings collects a repeated query parameter, accepting both the
// bare key and the PHP-style key[] form.
func queryStrings(c *fiber.Ctx, key string) []string {
	var out []string
	args := c.Context().QueryArgs()
	for _, form := range []string{key, key + "[]"} {
		for _, v := range args.PeekMulti(form) {
			if len(v) > 0 {
				out = append(out, string(v))
			}
		}
	}
	return out
}
