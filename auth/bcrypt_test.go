package auth_test

import (
	"testing"

	"github.com/goliatone/go-boards/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashPassword(t *testing.T) {
	hash, err := auth.HashPassword("Str0ng!Pass")
	require.NoError(t, err)
	assert.NotEqual(t, "Str0ng!Pass", hash)

	assert.NoError(t, auth.ComparePasswordAndHash("Str0ng!Pass", hash))
	assert.ErrorIs(t, auth.ComparePasswordAndHash("wrong", hash), auth.ErrMismatchedHashAndPassword)
}

func TestHashPassword_Salted(t *testing.T) {
	a, err := fastHasher.HashPassword("Str0ng!Pass")
	require.NoError(t, err)
	b, err := fastHasher.HashPassword("Str0ng!Pass")
	require.NoError(t, err)

	assert.NotEqual(t, a, b)
	assert.True(t, fastHasher.VerifyPassword("Str0ng!Pass", a))
	assert.True(t, fastHasher.VerifyPassword("Str0ng!Pass", b))
}

func TestHashPassword_Empty(t *testing.T) {
	_, err := fastHasher.HashPassword("")
	assert.ErrorIs(t, err, auth.ErrNoEmptyString)
}

func TestVerifyPassword_GarbageHash(t *testing.T) {
	assert.False(t, fastHasher.VerifyPassword("Str0ng!Pass", "not-a-hash"))
	assert.False(t, fastHasher.VerifyPassword("Str0ng!Pass", ""))
}

func TestRandomPasswordHash(t *testing.T) {
	hash := auth.RandomPasswordHash()
	assert.NotEmpty(t, hash)
	assert.False(t, fastHasher.VerifyPassword("", hash))
	assert.NotEqual(t, hash, auth.RandomPasswordHash())
}
