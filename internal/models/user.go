// Package models contains data structures for the application's domain models.
package models

import (
	"time"

	"gorm.io/gorm"
)

// User represents a registered account.
type User struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	Username    string         `gorm:"size:64;not null;uniqueIndex" json:"username"`
	Email       string         `gorm:"size:255;not null;uniqueIndex" json:"email"`
	Password    string         `gorm:"size:255;not null" json:"-"`
	Bio         string         `gorm:"type:text" json:"bio"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName specifies the table name for GORM.
func (User) TableName() string {
	return "users"
}

// UserSummary is the public author view embedded in community, post and comment responses.
type UserSummary struct {
	ID       uint   `json:"id"`
	Username string `json:"username"`
}

func summarize(u *User) *UserSummary {
	if u == nil {
		return nil
	}
	return &UserSummary{ID: u.ID, Username: u.Username}
}

// Profile is what a signed-in user sees about their own account.
type Profile struct {
	ID        uint      `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	Bio       string    `json:"bio"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewProfile converts u to its owner-facing shape.
func NewProfile(u *User) Profile {
	return Profile{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		Bio:       u.Bio,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}
