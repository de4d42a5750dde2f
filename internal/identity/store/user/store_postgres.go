package user

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"userdir/internal/identity/models"
	"userdir/pkg/platform/sentinel"
)

// PostgresStore persists user records in PostgreSQL. This store is pure
// I/O; uniqueness rules and validation belong to the identity service, the
// database constraints are the backstop.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

const userColumns = `id, identification_number, id_type_id, name, lastname, birth_date, address, phone, email, base_salary, role_id, secret`

func (s *PostgresStore) Save(ctx context.Context, u *models.User) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	query := `
		INSERT INTO users (` + userColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`
	_, err := s.db.ExecContext(ctx, query,
		u.ID, u.IdentificationNumber, u.IDTypeID, u.Name, u.Lastname,
		u.BirthDate, u.Address, u.Phone, u.Email, u.BaseSalary, u.RoleID, u.Secret,
	)
	if err != nil {
		return fmt.Errorf("save user: %w", translateErr(err))
	}
	return nil
}

func (s *PostgresStore) Update(ctx context.Context, u *models.User) error {
	query := `
		UPDATE users SET
			identification_number = $2,
			id_type_id = $3,
			name = $4,
			lastname = $5,
			birth_date = $6,
			address = $7,
			phone = $8,
			email = $9,
			base_salary = $10,
			role_id = $11,
			secret = $12
		WHERE id = $1
	`
	res, err := s.db.ExecContext(ctx, query,
		u.ID, u.IdentificationNumber, u.IDTypeID, u.Name, u.Lastname,
		u.BirthDate, u.Address, u.Phone, u.Email, u.BaseSalary, u.RoleID, u.Secret,
	)
	if err != nil {
		return fmt.Errorf("update user: %w", translateErr(err))
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update user: %w", err)
	}
	if affected == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *PostgresStore) FindByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return s.queryOne(ctx, query, id)
}

func (s *PostgresStore) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	return s.queryOne(ctx, query, email)
}

func (s *PostgresStore) FindByIdentification(ctx context.Context, idNumber int64) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE identification_number = $1`
	return s.queryOne(ctx, query, idNumber)
}

func (s *PostgresStore) FindConflicts(ctx context.Context, email string, idNumber int64) ([]*models.User, error) {
	query := `
		SELECT ` + userColumns + `
		FROM users
		WHERE email = $1 OR identification_number = $2
		ORDER BY identification_number
	`
	rows, err := s.db.QueryContext(ctx, query, email, idNumber)
	if err != nil {
		return nil, fmt.Errorf("find conflicts: %w", err)
	}
	defer rows.Close()
	return scanUsers(rows)
}

func (s *PostgresStore) List(ctx context.Context) ([]*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users ORDER BY identification_number`
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()
	return scanUsers(rows)
}

func (s *PostgresStore) Delete(ctx context.Context, idNumber int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM users WHERE identification_number = $1`, idNumber)
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	if affected == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *PostgresStore) queryOne(ctx context.Context, query string, args ...any) (*models.User, error) {
	u, err := scanUser(s.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("query user: %w", err)
	}
	return u, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (*models.User, error) {
	var u models.User
	err := row.Scan(
		&u.ID, &u.IdentificationNumber, &u.IDTypeID, &u.Name, &u.Lastname,
		&u.BirthDate, &u.Address, &u.Phone, &u.Email, &u.BaseSalary, &u.RoleID, &u.Secret,
	)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func scanUsers(rows *sql.Rows) ([]*models.User, error) {
	var out []*models.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		out = append(out, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate users: %w", err)
	}
	return out, nil
}

// translateErr maps driver-level unique violations to the shared conflict
// sentinel so services don't parse pq internals.
func translateErr(err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == "23505" {
		return sentinel.ErrConflict
	}
	return err
}
