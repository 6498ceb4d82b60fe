package password

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashAndVerify(t *testing.T) {
	encoded, err := Hash("correct horse")
	require.NoError(t, err)

	assert.True(t, Verify("correct horse", encoded))
	assert.False(t, Verify("wrong horse", encoded))
	assert.False(t, Verify("correct horse", "$bcrypt$whatever"))
}

func TestHashUsesFreshSalt(t *testing.T) {
	a, err := Hash("same-password")
	require.NoError(t, err)
	b, err := Hash("same-password")
	require.NoError(t, err)

	assert.NotEqual(t, a, b)
}

func TestValidate(t *testing.T) {
	assert.ErrorIs(t, Validate("short", "alice"), ErrTooShort)
	assert.ErrorIs(t, Validate("1234567890", "alice"), ErrEntirelyNumber)
	assert.ErrorIs(t, Validate("alice-smith", "Alice-Smith"), ErrTooSimilar)
	assert.NoError(t, Validate("s3cret-pass", "alice"))
}
