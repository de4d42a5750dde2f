// Package token signs and verifies the bearer tokens issued at login.
package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// minKeyBytes is the floor for HS256 signing keys (256-bit entropy). A
// shorter key is a configuration error and must stop the process, not
// surface per-request.
const minKeyBytes = 32

// Claims is the decoded payload of a verified token.
type Claims struct {
	Roles []string `json:"roles"`
	jwt.RegisteredClaims
}

// Subject returns the authenticated account identifier carried in the token.
func (c *Claims) Subject() string {
	return c.RegisteredClaims.Subject
}

// Codec issues and verifies HS256-signed tokens.
type Codec struct {
	signingKey []byte
	clock      func() time.Time
}

// Option configures a Codec.
type Option func(*Codec)

// WithClock overrides the time source. Tests pin it to make expiry
// deterministic.
func WithClock(clock func() time.Time) Option {
	return func(c *Codec) {
		if clock != nil {
			c.clock = clock
		}
	}
}

// New builds a Codec, rejecting cryptographically weak signing keys.
func New(signingKey string, opts ...Option) (*Codec, error) {
	if len(signingKey) < minKeyBytes {
		return nil, fmt.Errorf("signing key must be at least %d bytes, got %d", minKeyBytes, len(signingKey))
	}
	c := &Codec{
		signingKey: []byte(signingKey),
		clock:      time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Issue mints a signed token for the subject carrying its role names,
// valid for ttl from now.
func (c *Codec) Issue(subject string, roles []string, ttl time.Duration) (string, error) {
	now := c.clock()
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		Roles: roles,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	})

	signed, err := t.SignedString(c.signingKey)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Verify parses and validates a token. It returns the claims and true only
// when the signature verifies and the token has not expired; every failure
// mode (malformed input, tampering, expiry, wrong algorithm) is the same
// normal "no claims" outcome rather than an error.
func (c *Codec) Verify(tokenString string) (*Claims, bool) {
	parsed, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return c.signingKey, nil
	}, jwt.WithTimeFunc(c.clock), jwt.WithExpirationRequired())
	if err != nil || !parsed.Valid {
		return nil, false
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok {
		return nil, false
	}
	return claims, true
}
