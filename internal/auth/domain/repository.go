package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	Create(ctx context.Context, db *gorm.DB, user *User) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*User, error)
	FindByUsername(ctx context.Context, db *gorm.DB, username string) (*User, error)
	ExistsByUsernameOrEmail(ctx context.Context, db *gorm.DB, username, email string) (bool, error)
	UpdateLastLogin(ctx context.Context, db *gorm.DB, id snowflake.ID, at time.Time) error
	SetStaff(ctx context.Context, db *gorm.DB, id snowflake.ID, isStaff bool) error
}
