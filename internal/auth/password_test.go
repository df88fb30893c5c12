package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestHashAndVerify(t *testing.T) {
	h, err := HashPassword("s3cret-pass")
	require.NoError(t, err)
	assert.NotEqual(t, "s3cret-pass", h)

	assert.NoError(t, VerifyPassword("s3cret-pass", h))
	assert.Error(t, VerifyPassword("wrong-pass", h))
}

func TestValidatePassword(t *testing.T) {
	assert.ErrorIs(t, ValidatePassword("short"), ErrWeakPassword)
	assert.NoError(t, ValidatePassword("long enough"))
	assert.NoError(t, ValidatePassword("çççççççç"))
}

func TestTimingHashIsUsable(t *testing.T) {
	h := timingHash()
	cost, err := bcrypt.Cost(h)
	require.NoError(t, err)
	assert.Equal(t, bcrypt.DefaultCost, cost)

	// a mismatch, not a malformed hash that would return early
	assert.ErrorIs(t, bcrypt.CompareHashAndPassword(h, []byte("guess")), bcrypt.ErrMismatchedHashAndPassword)
	assert.Equal(t, h, timingHash())
}
