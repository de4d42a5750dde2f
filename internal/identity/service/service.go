// Package service implements account management for the user directory:
// validation, uniqueness rules and lifecycle operations over the identity
// stores.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"userdir/internal/auth/password"
	"userdir/internal/identity/models"
	"userdir/internal/platform/metrics"
	"userdir/pkg/audit"
	dErrors "userdir/pkg/domain-errors"
	"userdir/pkg/platform/sentinel"
)

// UserStore is the persistence surface the account flows need.
type UserStore interface {
	Save(ctx context.Context, u *models.User) error
	Update(ctx context.Context, u *models.User) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByIdentification(ctx context.Context, idNumber int64) (*models.User, error)
	FindConflicts(ctx context.Context, email string, idNumber int64) ([]*models.User, error)
	List(ctx context.Context) ([]*models.User, error)
	Delete(ctx context.Context, idNumber int64) error
}

// IdTypeStore resolves identification-type reference ids.
type IdTypeStore interface {
	FindByID(ctx context.Context, id int) (*models.IdType, error)
	List(ctx context.Context) ([]*models.IdType, error)
}

// RoleStore resolves role reference ids.
type RoleStore interface {
	FindByID(ctx context.Context, id int) (*models.Role, error)
	List(ctx context.Context) ([]*models.Role, error)
}

// Service owns the account management flows.
type Service struct {
	users        UserStore
	idTypes      IdTypeStore
	roles        RoleStore
	hasher       password.Hasher
	salaryBounds SalaryBounds

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

// WithSalaryBounds overrides the accepted base salary range.
func WithSalaryBounds(bounds SalaryBounds) Option {
	return func(s *Service) {
		if bounds.Min <= bounds.Max {
			s.salaryBounds = bounds
		}
	}
}

// New builds the account management service.
func New(users UserStore, idTypes IdTypeStore, roles RoleStore, hasher password.Hasher, opts ...Option) (*Service, error) {
	switch {
	case users == nil:
		return nil, errors.New("user store is required")
	case idTypes == nil:
		return nil, errors.New("id type store is required")
	case roles == nil:
		return nil, errors.New("role store is required")
	case hasher == nil:
		return nil, errors.New("password hasher is required")
	}

	svc := &Service{
		users:        users,
		idTypes:      idTypes,
		roles:        roles,
		hasher:       hasher,
		salaryBounds: DefaultSalaryBounds(),
		tracer:       otel.Tracer("userdir/identity"),
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc, nil
}

// Create validates and persists a new account. The submitted Secret is
// plaintext and stored hashed.
func (s *Service) Create(ctx context.Context, u *models.User) (*models.User, error) {
	ctx, span := s.tracer.Start(ctx, "identity.Create",
		trace.WithAttributes(attribute.String("user.email", u.Email)))
	defer span.End()

	if err := s.validateFields(u, true); err != nil {
		return nil, err
	}
	if err := s.checkReferences(ctx, u); err != nil {
		return nil, err
	}

	existing, err := s.users.FindConflicts(ctx, u.Email, u.IdentificationNumber)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "checking for conflicting accounts")
	}
	if err := conflictError(u, existing); err != nil {
		return nil, err
	}

	hash, err := s.hasher.Hash(u.Secret)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "hashing secret")
	}
	u.Secret = hash

	if err := s.users.Save(ctx, u); err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			// Lost the race against a concurrent create on the same email
			// or identification number.
			return nil, dErrors.New(dErrors.CodeConflict, "email or identification number already registered")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "saving user")
	}

	s.metrics.IncrementUsersCreated()
	audit.Log(ctx, s.logger, s.auditPublisher, audit.Event{
		Action:     audit.ActionUserCreated,
		Identifier: u.Email,
	})
	return u, nil
}

// Update re-validates and persists changes to an existing account,
// identified by u.ID. Email and identification number are immutable after
// creation. An empty submitted Secret keeps the stored hash; any other
// value is hashed and replaces it.
func (s *Service) Update(ctx context.Context, u *models.User) (*models.User, error) {
	ctx, span := s.tracer.Start(ctx, "identity.Update",
		trace.WithAttributes(attribute.String("user.id", u.ID.String())))
	defer span.End()

	if u.ID == uuid.Nil {
		return nil, dErrors.New(dErrors.CodeValidation, "user id is required")
	}
	if err := s.validateFields(u, false); err != nil {
		return nil, err
	}
	if err := s.checkReferences(ctx, u); err != nil {
		return nil, err
	}

	stored, err := s.users.FindByID(ctx, u.ID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, fmt.Sprintf("no user found with id %s", u.ID))
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "loading stored user")
	}
	if err := immutabilityError(u, stored); err != nil {
		return nil, err
	}

	switch u.Secret {
	case "":
		u.Secret = stored.Secret
	case stored.Secret:
		// Already the stored hash (round-tripped by the caller); keep it.
	default:
		hash, err := s.hasher.Hash(u.Secret)
		if err != nil {
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "hashing secret")
		}
		u.Secret = hash
	}

	if err := s.users.Update(ctx, u); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, fmt.Sprintf("no user found with id %s", u.ID))
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "updating user")
	}

	s.metrics.IncrementUsersUpdated()
	audit.Log(ctx, s.logger, s.auditPublisher, audit.Event{
		Action:     audit.ActionUserUpdated,
		Identifier: u.Email,
	})
	return u, nil
}

// checkReferences verifies the id-type and role references resolve. Both
// lookups run concurrently; the first miss names the offending id.
func (s *Service) checkReferences(ctx context.Context, u *models.User) error {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if _, err := s.idTypes.FindByID(gctx, u.IDTypeID); err != nil {
			if errors.Is(err, sentinel.ErrNotFound) {
				return dErrors.New(dErrors.CodeValidation, fmt.Sprintf("identification type %d does not exist", u.IDTypeID))
			}
			return dErrors.Wrap(err, dErrors.CodeInternal, "resolving identification type")
		}
		return nil
	})
	g.Go(func() error {
		if _, err := s.roles.FindByID(gctx, u.RoleID); err != nil {
			if errors.Is(err, sentinel.ErrNotFound) {
				return dErrors.New(dErrors.CodeValidation, fmt.Sprintf("role %d does not exist", u.RoleID))
			}
			return dErrors.Wrap(err, dErrors.CodeInternal, "resolving role")
		}
		return nil
	})

	return g.Wait()
}

// GetByIdentification returns the account holding the identification
// number.
func (s *Service) GetByIdentification(ctx context.Context, idNumber int64) (*models.User, error) {
	u, err := s.users.FindByIdentification(ctx, idNumber)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, fmt.Sprintf("no user found with identification %d", idNumber))
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "looking up user by identification")
	}
	return u, nil
}

// GetByEmail returns the account registered under the email.
func (s *Service) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	u, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, fmt.Sprintf("no user found with email %s", email))
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "looking up user by email")
	}
	return u, nil
}

// Exists reports whether an account holds the identification number.
func (s *Service) Exists(ctx context.Context, idNumber int64) (bool, error) {
	_, err := s.users.FindByIdentification(ctx, idNumber)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, sentinel.ErrNotFound):
		return false, nil
	default:
		return false, dErrors.Wrap(err, dErrors.CodeInternal, "checking user existence")
	}
}

// List returns all accounts.
func (s *Service) List(ctx context.Context) ([]*models.User, error) {
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "listing users")
	}
	return users, nil
}

// GetBasicByEmails resolves a batch of emails to their accounts, silently
// skipping unknown addresses. Results come back in email order.
func (s *Service) GetBasicByEmails(ctx context.Context, emails []string) ([]*models.User, error) {
	found := make([]*models.User, 0, len(emails))
	for _, email := range emails {
		u, err := s.users.FindByEmail(ctx, email)
		if errors.Is(err, sentinel.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "resolving user batch")
		}
		found = append(found, u)
	}
	sort.Slice(found, func(i, j int) bool { return found[i].Email < found[j].Email })
	return found, nil
}

// Delete removes the account holding the identification number.
func (s *Service) Delete(ctx context.Context, idNumber int64) error {
	if err := s.users.Delete(ctx, idNumber); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return dErrors.New(dErrors.CodeNotFound, fmt.Sprintf("no user found with identification %d", idNumber))
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "deleting user")
	}

	audit.Log(ctx, s.logger, s.auditPublisher, audit.Event{
		Action:     audit.ActionUserDeleted,
		Identifier: fmt.Sprintf("%d", idNumber),
	})
	return nil
}

// IdTypes returns the identification-type reference data.
func (s *Service) IdTypes(ctx context.Context) ([]*models.IdType, error) {
	types, err := s.idTypes.List(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "listing identification types")
	}
	return types, nil
}

// Roles returns the role reference data.
func (s *Service) Roles(ctx context.Context) ([]*models.Role, error) {
	roles, err := s.roles.List(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "listing roles")
	}
	return roles, nil
}
