package token

import (
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/golang-jwt/jwt/v5"
	"github.com/smallbiznis/storefront/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestManager(t *testing.T) *Manager {
	t.Helper()
	m, err := NewManager(config.Config{AppName: "storefront", AuthJWTSecret: "test-secret", AuthAccessTTLMin: 5})
	require.NoError(t, err)
	return m
}

func TestIssueAndParse(t *testing.T) {
	m := newTestManager(t)

	raw, expiresAt, err := m.Issue(snowflake.ID(42), "alice", true)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(5*time.Minute), expiresAt, 5*time.Second)

	claims, err := m.Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, "42", claims.Subject)
	assert.Equal(t, "alice", claims.Username)
	assert.True(t, claims.IsStaff)
}

func TestParseRejectsExpiredToken(t *testing.T) {
	m := newTestManager(t)
	m.now = func() time.Time { return time.Now().Add(-time.Hour) }
	raw, _, err := m.Issue(snowflake.ID(1), "bob", false)
	require.NoError(t, err)

	m.now = time.Now
	_, err = m.Parse(raw)
	assert.ErrorIs(t, err, jwt.ErrTokenExpired)
}

func TestParseRejectsForeignSignature(t *testing.T) {
	m := newTestManager(t)
	other, err := NewManager(config.Config{AuthJWTSecret: "other-secret", AuthAccessTTLMin: 5})
	require.NoError(t, err)

	raw, _, err := other.Issue(snowflake.ID(1), "mallory", true)
	require.NoError(t, err)

	_, err = m.Parse(raw)
	assert.ErrorIs(t, err, jwt.ErrTokenSignatureInvalid)
}

func TestNewManagerRequiresSecret(t *testing.T) {
	_, err := NewManager(config.Config{})
	assert.ErrorIs(t, err, ErrMissingSecret)
}
