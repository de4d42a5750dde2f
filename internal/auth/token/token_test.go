package token

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testKey = "0123456789abcdef0123456789abcdef"

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func TestNewRejectsWeakKey(t *testing.T) {
	_, err := New("too-short")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "at least 32 bytes")
}

func TestIssueAndVerifyRoundTrip(t *testing.T) {
	codec, err := New(testKey)
	require.NoError(t, err)

	signed, err := codec.Issue("42", []string{"ADMIN"}, time.Hour)
	require.NoError(t, err)

	claims, ok := codec.Verify(signed)
	require.True(t, ok)
	assert.Equal(t, "42", claims.Subject())
	assert.Equal(t, []string{"ADMIN"}, claims.Roles)
}

func TestVerifyRejectsExpiredToken(t *testing.T) {
	issuedAt := time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)

	issuer, err := New(testKey, WithClock(fixedClock(issuedAt)))
	require.NoError(t, err)
	signed, err := issuer.Issue("42", []string{"CLIENT"}, time.Hour)
	require.NoError(t, err)

	// Same key, clock advanced past expiry.
	verifier, err := New(testKey, WithClock(fixedClock(issuedAt.Add(2*time.Hour))))
	require.NoError(t, err)

	claims, ok := verifier.Verify(signed)
	assert.False(t, ok)
	assert.Nil(t, claims)
}

func TestVerifyRejectsTamperedToken(t *testing.T) {
	codec, err := New(testKey)
	require.NoError(t, err)

	signed, err := codec.Issue("42", []string{"ADMIN"}, time.Hour)
	require.NoError(t, err)

	// Flip one byte in the payload segment.
	parts := strings.Split(signed, ".")
	require.Len(t, parts, 3)
	payload := []byte(parts[1])
	if payload[0] == 'A' {
		payload[0] = 'B'
	} else {
		payload[0] = 'A'
	}
	tampered := parts[0] + "." + string(payload) + "." + parts[2]

	_, ok := codec.Verify(tampered)
	assert.False(t, ok)
}

func TestVerifyRejectsGarbage(t *testing.T) {
	codec, err := New(testKey)
	require.NoError(t, err)

	for _, input := range []string{"", "not-a-token", "a.b.c"} {
		_, ok := codec.Verify(input)
		assert.False(t, ok, "input %q should not verify", input)
	}
}

func TestVerifyRejectsForeignKey(t *testing.T) {
	codec, err := New(testKey)
	require.NoError(t, err)
	other, err := New("ffffffffffffffffffffffffffffffff")
	require.NoError(t, err)

	signed, err := other.Issue("42", nil, time.Hour)
	require.NoError(t, err)

	_, ok := codec.Verify(signed)
	assert.False(t, ok)
}
