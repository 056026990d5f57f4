package hash

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestBcryptRoundTrip(t *testing.T) {
	hasher := MustBcryptHasher(bcrypt.MinCost)

	hashed, err := hasher.Hash("s3cret")
	require.NoError(t, err)
	require.NotEmpty(t, hashed)

	assert.NoError(t, hasher.Compare(hashed, "s3cret"))
	assert.ErrorIs(t, hasher.Compare(hashed, "wrong"), ErrPasswordMismatch)
}

func TestBcryptCostBounds(t *testing.T) {
	_, err := NewBcryptHasher(bcrypt.MaxCost + 1)
	require.Error(t, err)

	h, err := NewBcryptHasher(0)
	require.NoError(t, err)
	assert.Equal(t, bcrypt.DefaultCost, h.cost)
}

func TestBcryptCompareGarbageHash(t *testing.T) {
	hasher := MustBcryptHasher(bcrypt.MinCost)
	err := hasher.Compare("not-a-hash", "pw")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrPasswordMismatch)
}
