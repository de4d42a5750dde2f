package dErrors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCarriesCodeAndMessage(t *testing.T) {
	err := New(CodeValidation, "base salary out of range")

	assert.Equal(t, "base salary out of range", err.Error())
	assert.True(t, HasCode(err, CodeValidation))
	assert.False(t, HasCode(err, CodeInternal))
}

func TestWrap(t *testing.T) {
	t.Run("preserves cause chain", func(t *testing.T) {
		cause := errors.New("connection refused")
		err := Wrap(cause, CodeUnavailable, "lockout check failed")

		require.ErrorIs(t, err, cause)
		assert.Equal(t, "lockout check failed: connection refused", err.Error())
		assert.True(t, HasCode(err, CodeUnavailable))
	})

	t.Run("nil cause yields nil", func(t *testing.T) {
		assert.Nil(t, Wrap(nil, CodeInternal, "ignored"))
	})
}

func TestHasCodeThroughFmtWrapping(t *testing.T) {
	inner := New(CodeRateLimited, "account temporarily locked")
	outer := fmt.Errorf("authenticate: %w", inner)

	assert.True(t, HasCode(outer, CodeRateLimited))
	assert.Equal(t, CodeRateLimited, CodeOf(outer))
}

func TestCodeOfDefaultsToInternal(t *testing.T) {
	assert.Equal(t, CodeInternal, CodeOf(errors.New("plain")))
}

func TestIsMatchesCodedSentinels(t *testing.T) {
	sentinel := New(CodeUnauthorized, "invalid credentials")
	got := fmt.Errorf("login: %w", New(CodeUnauthorized, "invalid credentials"))

	assert.True(t, Is(got, sentinel))
	assert.False(t, Is(got, New(CodeUnauthorized, "different message")))
}
