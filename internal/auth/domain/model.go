// Package domain contains core types for the auth service.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// User represents an account that can authenticate against the API.
type User struct {
	ID           snowflake.ID `gorm:"primaryKey;autoIncrement:false"`
	Username     string       `gorm:"type:varchar(150);not null;uniqueIndex"`
	Email        string       `gorm:"column:email;type:varchar(255);not null;uniqueIndex"`
	PasswordHash string       `gorm:"column:password_hash;type:text;not null"`
	FirstName    string       `gorm:"column:first_name;type:varchar(150);not null"`
	LastName     string       `gorm:"column:last_name;type:varchar(150);not null"`
	IsStaff      bool         `gorm:"column:is_staff;not null;default:false"`
	IsActive     bool         `gorm:"column:is_active;not null;default:true"`
	LastLogin    *time.Time   `gorm:"column:last_login"`
	CreatedAt    time.Time    `gorm:"not null"`
	UpdatedAt    time.Time    `gorm:"not null"`
}

// TableName sets the database table name.
func (User) TableName() string { return "users" }

// Identity is the authenticated caller resolved from an access token.
type Identity struct {
	UserID   snowflake.ID
	Username string
	IsStaff  bool
}

// UserResponse is the public view of a user.
type UserResponse struct {
	ID        string `json:"id"`
	Username  string `json:"username"`
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	IsStaff   bool   `json:"is_staff"`
}

func (u User) Response() UserResponse {
	return UserResponse{
		ID:        u.ID.String(),
		Username:  u.Username,
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		IsStaff:   u.IsStaff,
	}
}
