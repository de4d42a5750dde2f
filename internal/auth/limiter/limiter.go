// Package limiter tracks failed login attempts per (identifier, origin)
// pair and enforces temporary lockouts once a failure threshold is reached
// inside a sliding window.
//
// State machine per key: clean (no entry) -> accumulating (count below
// threshold, within window) -> locked (blocks every attempt until the lock
// expires). A successful login clears all state for its key.
package limiter

import (
	"context"
	"strings"
	"time"

	dErrors "userdir/pkg/domain-errors"
)

// ErrLocked is returned by Check while a lockout is active. The message is
// deliberately generic; remaining lock time never leaks to callers.
var ErrLocked = dErrors.New(dErrors.CodeRateLimited, "account temporarily locked after repeated failed attempts")

// Limiter is the login attempt guard consulted by the authentication flow.
type Limiter interface {
	// Check fails with ErrLocked while the key is locked out. An expired
	// lock is evicted lazily and the attempt is allowed.
	Check(ctx context.Context, identifier, origin string) error

	// RecordFailure counts one failed attempt, starting a fresh window when
	// none is active or the previous one has elapsed. It reports whether
	// this failure triggered a lockout.
	RecordFailure(ctx context.Context, identifier, origin string) (locked bool, err error)

	// Clear drops both the accumulating entry and any lock for the key.
	Clear(ctx context.Context, identifier, origin string) error
}

// Config bounds the limiter. Zero values are replaced by defaults so a
// partially populated config stays safe.
type Config struct {
	MaxFailures  int
	Window       time.Duration
	LockDuration time.Duration
}

// DefaultConfig returns the production defaults: three strikes inside
// fifteen minutes, fifteen-minute lockout.
func DefaultConfig() Config {
	return Config{
		MaxFailures:  3,
		Window:       15 * time.Minute,
		LockDuration: 15 * time.Minute,
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.MaxFailures <= 0 {
		c.MaxFailures = d.MaxFailures
	}
	if c.Window <= 0 {
		c.Window = d.Window
	}
	if c.LockDuration <= 0 {
		c.LockDuration = d.LockDuration
	}
	return c
}

// sanitizeSegment escapes delimiter characters in key segments so a
// user-controlled identifier containing '|' or ':' cannot collide with an
// adjacent key.
func sanitizeSegment(s string) string {
	if s == "" {
		return "unknown"
	}
	s = strings.ReplaceAll(s, ":", "_")
	return strings.ReplaceAll(s, "|", "_")
}

// compositeKey joins identifier and origin into the limiter key. Both
// segments participate so an attacker rotating source addresses does not
// lock a victim out, and a single address spraying identifiers is still
// bounded per target.
func compositeKey(identifier, origin string) string {
	return "u:" + sanitizeSegment(identifier) + "|ip:" + sanitizeSegment(origin)
}
