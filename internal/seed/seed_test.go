package seed_test

import (
	"testing"

	"github.com/bwmarrin/snowflake"
	authdomain "github.com/smallbiznis/storefront/internal/auth/domain"
	"github.com/smallbiznis/storefront/internal/auth/password"
	"github.com/smallbiznis/storefront/internal/config"
	"github.com/smallbiznis/storefront/internal/migration"
	"github.com/smallbiznis/storefront/internal/seed"
	"github.com/smallbiznis/storefront/pkg/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnsureStaffUser(t *testing.T) {
	conn, err := db.NewTest()
	require.NoError(t, err)
	require.NoError(t, migration.AutoMigrate(conn))
	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	cfg := config.BootstrapConfig{AdminUsername: "admin", AdminEmail: "Admin@Example.com", AdminPassword: "s3cret-pass"}

	t.Run("skips without password", func(t *testing.T) {
		require.NoError(t, seed.EnsureStaffUser(conn, node, config.BootstrapConfig{AdminUsername: "admin"}))
		var count int64
		require.NoError(t, conn.Model(&authdomain.User{}).Count(&count).Error)
		assert.Zero(t, count)
	})

	t.Run("creates staff user once", func(t *testing.T) {
		require.NoError(t, seed.EnsureStaffUser(conn, node, cfg))
		require.NoError(t, seed.EnsureStaffUser(conn, node, cfg))

		var users []authdomain.User
		require.NoError(t, conn.Find(&users).Error)
		require.Len(t, users, 1)
		assert.True(t, users[0].IsStaff)
		assert.Equal(t, "admin@example.com", users[0].Email)
		assert.True(t, password.Verify("s3cret-pass", users[0].PasswordHash))
	})

	t.Run("promotes existing user", func(t *testing.T) {
		require.NoError(t, conn.Model(&authdomain.User{}).Where("username = ?", "admin").Update("is_staff", false).Error)
		require.NoError(t, seed.EnsureStaffUser(conn, node, cfg))

		var user authdomain.User
		require.NoError(t, conn.Where("username = ?", "admin").First(&user).Error)
		assert.True(t, user.IsStaff)
	})
}
