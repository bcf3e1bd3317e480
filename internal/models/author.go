// Package models contains data structures for the application's domain models.
package models

import (
	"strings"
	"time"
)

// Author represents a writer who owns zero or more posts.
type Author struct {
	ID        uint   `gorm:"primaryKey" json:"id"`
	FirstName string `gorm:"not null" json:"first_name"`
	LastName  string `gorm:"not null" json:"last_name"`
	Gender    string `json:"gender"`
	// Name is not persisted; populated by the CONCAT projection when the
	// client asks for it, otherwise synthesized from FirstName and LastName.
	Name      string    `gorm:"->;-:migration" json:"name,omitempty"`
	Posts     []Post    `gorm:"foreignKey:AuthorID" json:"posts,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// FullName returns the author's display name, first and last name joined by
// a single space.
func (a *Author) FullName() string {
	return a.FirstName + " " + a.LastName
}

// SetName splits a display name on the first space into first and last name.
// Single-word and multi-word given names get no special handling; everything
// after the first space becomes the last name.
func (a *Author) SetName(name string) {
	before, after, _ := strings.Cut(name, " ")
	a.FirstName = strings.TrimSpace(before)
	a.LastName = strings.TrimSpace(after)
}
