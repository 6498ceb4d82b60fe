package seed

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	authdomain "github.com/smallbiznis/storefront/internal/auth/domain"
	"github.com/smallbiznis/storefront/internal/auth/password"
	"github.com/smallbiznis/storefront/internal/config"
	"gorm.io/gorm"
)

// EnsureStaffUser creates the bootstrap staff account, or promotes an existing
// account with the same username. It does nothing when no password is configured.
func EnsureStaffUser(db *gorm.DB, node *snowflake.Node, cfg config.BootstrapConfig) error {
	if db == nil {
		return errors.New("seed database handle is required")
	}
	if cfg.AdminPassword == "" {
		return nil
	}
	username := strings.TrimSpace(cfg.AdminUsername)
	if username == "" {
		return errors.New("seed admin username is required")
	}

	ctx := context.Background()
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var user authdomain.User
		err := tx.WithContext(ctx).Where("username = ?", username).First(&user).Error
		if err == nil {
			if user.IsStaff {
				return nil
			}
			return tx.WithContext(ctx).Model(&authdomain.User{}).
				Where("id = ?", user.ID).
				Update("is_staff", true).Error
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		hashed, err := password.Hash(cfg.AdminPassword)
		if err != nil {
			return err
		}
		now := time.Now().UTC()
		user = authdomain.User{
			ID:           node.Generate(),
			Username:     username,
			Email:        strings.ToLower(strings.TrimSpace(cfg.AdminEmail)),
			PasswordHash: hashed,
			FirstName:    "Store",
			LastName:     "Admin",
			IsStaff:      true,
			IsActive:     true,
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		return tx.WithContext(ctx).Create(&user).Error
	})
}
