package models

import "time"

// LatestPostView summarizes an author's most recently published post.
// Content is truncated for listing purposes.
type LatestPostView struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

// AuthorView is a single transformed row of the authors listing. The raw
// first/last name fields and any column the client did not project are
// omitted from the JSON output; the aggregate fields are always present and
// null when the author has no qualifying posts.
type AuthorView struct {
	ID        uint       `json:"id"`
	Name      string     `json:"name"`
	FirstName *string    `json:"first_name,omitempty"`
	LastName  *string    `json:"last_name,omitempty"`
	Gender    *string    `json:"gender,omitempty"`
	CreatedAt *time.Time `json:"created_at,omitempty"`
	UpdatedAt *time.Time `json:"updated_at,omitempty"`

	TotalPostsCount        int             `json:"total_posts_count"`
	LastMonthPostsCount    int             `json:"last_month_posts_count"`
	LatestPost             *LatestPostView `json:"latest_post"`
	AverageRating          *float64        `json:"average_rating"`
	AverageRatingLastMonth *float64        `json:"average_rating_last_month"`
}

// AuthorsResponse is the listing response envelope. The two counts are only
// populated when the client asked for totals; otherwise they are omitted
// entirely rather than reported as zero.
type AuthorsResponse struct {
	Data                 []AuthorView `json:"data"`
	TotalAuthorsCount    *int64       `json:"total_authors_count,omitempty"`
	FilteredAuthorsCount *int64       `json:"filtered_authors_count,omitempty"`
}
