package models

import (
	"time"
)

// Favorite links a user to a post they marked as a favorite.
// The combination of UserID and PostID must be unique; these rows are the
// single source of truth for the relation: a user's favorites and a post's
// favoritedBy set are both views over the same table, so the two sides can
// never disagree.
type Favorite struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_user_post" json:"user_id"`
	PostID    uint      `gorm:"not null;uniqueIndex:idx_user_post" json:"post_id"`
	CreatedAt time.Time `json:"created_at"`

	// Relationships
	User User `gorm:"foreignKey:UserID" json:"-"`
	Post Post `gorm:"foreignKey:PostID" json:"-"`
}
