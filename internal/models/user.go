// Package models contains data structures for the application's domain models.
package models

import (
	"time"
)

// User represents a registered account. The password field holds the bcrypt
// hash (salt included) and is never serialized. Authored posts and favorites
// are not materialized on the document; both are derived by query so the
// user↔post relations have a single source of truth.
type User struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Username  string    `gorm:"uniqueIndex:uni_users_username;not null" json:"username"`
	Email     string    `gorm:"uniqueIndex:uni_users_email;not null" json:"email"`
	Password  string    `gorm:"not null" json:"-"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
