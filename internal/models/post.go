package models

import "time"

// PostVisibility encodes the is_private flag stored on a post.
type PostVisibility int

const (
	// PostPublic marks a post visible in author listings.
	PostPublic PostVisibility = 0
	// PostPrivate marks a post hidden from author listings.
	PostPrivate PostVisibility = 1
)

// Post represents a piece of content belonging to exactly one author.
type Post struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	AuthorID    uint           `gorm:"not null;index" json:"author_id"`
	Title       string         `gorm:"not null" json:"title"`
	Content     string         `gorm:"type:text;not null" json:"content"`
	PublishedAt *time.Time     `json:"published_at"`
	IsPrivate   PostVisibility `gorm:"not null;default:0" json:"is_private"`
	Rating      float64        `json:"rating"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

// IsPublic reports whether the post may appear in author listings.
func (p *Post) IsPublic() bool {
	return p.IsPrivate == PostPublic
}
