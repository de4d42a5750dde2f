// Package service implements the login flow: lockout gate, credential
// verification and token issuance.
package service

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"userdir/internal/auth/device"
	"userdir/internal/auth/limiter"
	"userdir/internal/auth/password"
	"userdir/internal/auth/token"
	"userdir/internal/identity/models"
	"userdir/internal/platform/metrics"
	"userdir/pkg/audit"
	dErrors "userdir/pkg/domain-errors"
	"userdir/pkg/platform/sentinel"
	"userdir/pkg/requestcontext"
)

// DefaultTokenTTL is how long issued tokens stay valid.
const DefaultTokenTTL = 4 * time.Hour

// ErrInvalidCredentials is the single error surfaced for every credential
// failure. Unknown account and wrong secret are indistinguishable to the
// caller, so login responses cannot be used to enumerate accounts.
var ErrInvalidCredentials = dErrors.New(dErrors.CodeUnauthorized, "invalid credentials")

// UserStore is the account lookup the login flow needs.
type UserStore interface {
	FindByEmail(ctx context.Context, email string) (*models.User, error)
}

// RoleStore resolves the role carried in issued tokens.
type RoleStore interface {
	FindByID(ctx context.Context, id int) (*models.Role, error)
}

// Service orchestrates authentication.
type Service struct {
	limiter  limiter.Limiter
	users    UserStore
	roles    RoleStore
	hasher   password.Hasher
	codec    *token.Codec
	tokenTTL time.Duration

	logger         *slog.Logger
	auditPublisher audit.Publisher
	metrics        *metrics.Metrics
	tracer         trace.Tracer
}

// Option configures a Service.
type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

func WithAuditPublisher(publisher audit.Publisher) Option {
	return func(s *Service) { s.auditPublisher = publisher }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// WithTokenTTL overrides the issued token lifetime.
func WithTokenTTL(ttl time.Duration) Option {
	return func(s *Service) {
		if ttl > 0 {
			s.tokenTTL = ttl
		}
	}
}

// New builds the authentication service. All four collaborators are
// required.
func New(lim limiter.Limiter, users UserStore, roles RoleStore, hasher password.Hasher, codec *token.Codec, opts ...Option) (*Service, error) {
	switch {
	case lim == nil:
		return nil, errors.New("attempt limiter is required")
	case users == nil:
		return nil, errors.New("user store is required")
	case roles == nil:
		return nil, errors.New("role store is required")
	case hasher == nil:
		return nil, errors.New("password hasher is required")
	case codec == nil:
		return nil, errors.New("token codec is required")
	}

	svc := &Service{
		limiter:  lim,
		users:    users,
		roles:    roles,
		hasher:   hasher,
		codec:    codec,
		tokenTTL: DefaultTokenTTL,
		tracer:   otel.Tracer("userdir/auth"),
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc, nil
}

// Authenticate verifies the identifier/secret pair and returns a signed
// bearer token. Every failed verification counts toward the caller's
// lockout; a success clears accumulated failures for the
// (identifier, origin) pair.
func (s *Service) Authenticate(ctx context.Context, identifier, secret string) (string, error) {
	ctx, span := s.tracer.Start(ctx, "auth.Authenticate",
		trace.WithAttributes(attribute.String("auth.identifier", identifier)))
	defer span.End()

	origin := requestcontext.ClientIP(ctx)
	deviceName := device.ParseUserAgent(requestcontext.UserAgent(ctx))

	if err := s.limiter.Check(ctx, identifier, origin); err != nil {
		if errors.Is(err, limiter.ErrLocked) {
			s.metrics.ObserveLogin(metrics.OutcomeLocked)
			audit.Log(ctx, s.logger, s.auditPublisher, audit.Event{
				Action:     audit.ActionLockoutRejected,
				Identifier: identifier,
				Origin:     origin,
				Device:     deviceName,
			})
			return "", err
		}
		s.metrics.ObserveLogin(metrics.OutcomeError)
		return "", dErrors.Wrap(err, dErrors.CodeInternal, "lockout check failed")
	}

	user, err := s.users.FindByEmail(ctx, identifier)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return "", s.rejectCredentials(ctx, identifier, origin, deviceName)
		}
		// Collaborator failures still count toward the lockout before
		// propagating, so a flapping store cannot be used to probe
		// credentials without consequence.
		s.recordFailure(ctx, identifier, origin, deviceName)
		s.metrics.ObserveLogin(metrics.OutcomeError)
		return "", dErrors.Wrap(err, dErrors.CodeInternal, "looking up account")
	}

	role, err := s.roles.FindByID(ctx, user.RoleID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			// An account pointing at a missing role cannot authenticate;
			// treated like any other credential failure externally.
			return "", s.rejectCredentials(ctx, identifier, origin, deviceName)
		}
		s.recordFailure(ctx, identifier, origin, deviceName)
		s.metrics.ObserveLogin(metrics.OutcomeError)
		return "", dErrors.Wrap(err, dErrors.CodeInternal, "resolving account role")
	}

	start := time.Now()
	matched := s.hasher.Matches(secret, user.Secret)
	s.metrics.ObserveVerifyDuration(float64(time.Since(start).Milliseconds()))
	if !matched {
		return "", s.rejectCredentials(ctx, identifier, origin, deviceName)
	}

	subject := strconv.FormatInt(user.IdentificationNumber, 10)
	signed, err := s.codec.Issue(subject, []string{role.Name}, s.tokenTTL)
	if err != nil {
		s.metrics.ObserveLogin(metrics.OutcomeError)
		return "", dErrors.Wrap(err, dErrors.CodeInternal, "issuing token")
	}

	if err := s.limiter.Clear(ctx, identifier, origin); err != nil {
		// The login already succeeded; stale failure counts only shorten
		// the runway of the next mistake, so log and proceed.
		if s.logger != nil {
			s.logger.WarnContext(ctx, "failed to clear lockout state", "error", err)
		}
	} else {
		audit.Log(ctx, s.logger, s.auditPublisher, audit.Event{
			Action:     audit.ActionLockoutCleared,
			Identifier: identifier,
			Origin:     origin,
			Device:     deviceName,
		})
	}

	s.metrics.ObserveLogin(metrics.OutcomeSuccess)
	audit.Log(ctx, s.logger, s.auditPublisher, audit.Event{
		Action:     audit.ActionLoginSucceeded,
		Identifier: identifier,
		Origin:     origin,
		Device:     deviceName,
	})
	return signed, nil
}

// rejectCredentials records the failed attempt and reports the generic
// credential error.
func (s *Service) rejectCredentials(ctx context.Context, identifier, origin, deviceName string) error {
	s.recordFailure(ctx, identifier, origin, deviceName)
	s.metrics.ObserveLogin(metrics.OutcomeInvalidCredentials)
	return ErrInvalidCredentials
}

// recordFailure books one failed attempt against the key. When the failure
// crosses the lockout threshold the transition is counted and audited
// separately.
func (s *Service) recordFailure(ctx context.Context, identifier, origin, deviceName string) {
	locked, err := s.limiter.RecordFailure(ctx, identifier, origin)
	if err != nil && s.logger != nil {
		s.logger.WarnContext(ctx, "failed to record login failure", "error", err)
	}

	audit.Log(ctx, s.logger, s.auditPublisher, audit.Event{
		Action:     audit.ActionLoginFailed,
		Identifier: identifier,
		Origin:     origin,
		Device:     deviceName,
	})
	if locked {
		s.metrics.IncrementLockouts()
		audit.Log(ctx, s.logger, s.auditPublisher, audit.Event{
			Action:     audit.ActionLockoutSet,
			Identifier: identifier,
			Origin:     origin,
			Device:     deviceName,
		})
	}
}

// TokenTTL reports the configured token lifetime, for handlers that expose
// expiry to clients.
func (s *Service) TokenTTL() time.Duration { return s.tokenTTL }

// VerifyToken delegates to the codec. Middleware uses this so it only
// depends on the service.
func (s *Service) VerifyToken(tokenString string) (*token.Claims, bool) {
	return s.codec.Verify(tokenString)
}
