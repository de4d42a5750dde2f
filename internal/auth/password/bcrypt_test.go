package password

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestHashAndMatches(t *testing.T) {
	h := NewBcrypt(bcrypt.MinCost)

	hash, err := h.Hash("s3cret")
	require.NoError(t, err)
	assert.NotEqual(t, "s3cret", hash)

	assert.True(t, h.Matches("s3cret", hash))
	assert.False(t, h.Matches("wrong", hash))
}

func TestHashesAreSalted(t *testing.T) {
	h := NewBcrypt(bcrypt.MinCost)

	first, err := h.Hash("same-secret")
	require.NoError(t, err)
	second, err := h.Hash("same-secret")
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
}

func TestMatchesRejectsMalformedHash(t *testing.T) {
	h := NewBcrypt(bcrypt.MinCost)
	assert.False(t, h.Matches("anything", "not-a-bcrypt-hash"))
}

func TestOutOfRangeCostFallsBackToDefault(t *testing.T) {
	h := NewBcrypt(99)
	assert.Equal(t, bcrypt.DefaultCost, h.cost)
}
