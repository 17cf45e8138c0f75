package auth

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestPasswordHasher_HashAndVerify(t *testing.T) {
	h := NewPasswordHasher(bcrypt.MinCost)

	digest, err := h.Hash("password123")
	require.NoError(t, err)
	assert.NotEqual(t, "password123", digest)

	assert.True(t, h.Verify("password123", digest))
	assert.False(t, h.Verify("password124", digest))
	assert.False(t, h.Verify("", digest))
}

func TestPasswordHasher_FreshSaltPerCall(t *testing.T) {
	h := NewPasswordHasher(bcrypt.MinCost)

	first, err := h.Hash("same-password")
	require.NoError(t, err)
	second, err := h.Hash("same-password")
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
	assert.True(t, h.Verify("same-password", first))
	assert.True(t, h.Verify("same-password", second))
}

func TestPasswordHasher_TruncatesConsistently(t *testing.T) {
	h := NewPasswordHasher(bcrypt.MinCost)
	prefix := strings.Repeat("a", MaxPasswordBytes)

	digest, err := h.Hash(prefix + "first-suffix")
	require.NoError(t, err)

	assert.True(t, h.Verify(prefix+"first-suffix", digest))
	assert.True(t, h.Verify(prefix+"another-suffix", digest))
	assert.True(t, h.Verify(prefix, digest))
	assert.False(t, h.Verify(prefix[:MaxPasswordBytes-1], digest))
}

func TestNewPasswordHasher_InvalidCostFallsBack(t *testing.T) {
	assert.Equal(t, DefaultBcryptCost, NewPasswordHasher(0).cost)
	assert.Equal(t, DefaultBcryptCost, NewPasswordHasher(bcrypt.MaxCost+1).cost)
	assert.Equal(t, bcrypt.MinCost, NewPasswordHasher(bcrypt.MinCost).cost)
}
