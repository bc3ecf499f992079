package models

import (
	"time"
)

// Post is a single craft entry. UserID is the owning user, set once at
// creation and never reassigned.
type Post struct {
	ID           uint   `gorm:"primaryKey" json:"id"`
	Title        string `gorm:"not null" json:"title"`
	Category     string `gorm:"index;not null" json:"category"`
	Description  string `json:"description"`
	Materials    string `json:"materials"`
	Instructions string `json:"instructions"`
	ImageURL     string `json:"image_url"`
	UserID       uint   `gorm:"not null" json:"user_id"`
	User         User   `gorm:"foreignKey:UserID" json:"user"`
	// FavoritesCount is not persisted; computed at query time
	FavoritesCount int `gorm:"->;-:migration" json:"favorites_count"`
	// Favorited indicates whether the current requesting user favorited this post (computed)
	Favorited bool      `gorm:"->;-:migration" json:"favorited"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
