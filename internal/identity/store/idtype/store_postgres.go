package idtype

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"userdir/internal/identity/models"
	"userdir/pkg/platform/sentinel"
)

// PostgresStore reads identification-type reference data from PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) FindByID(ctx context.Context, id int) (*models.IdType, error) {
	var t models.IdType
	err := s.db.QueryRowContext(ctx,
		`SELECT id, name, description FROM id_types WHERE id = $1`, id,
	).Scan(&t.ID, &t.Name, &t.Description)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("get id type: %w", err)
	}
	return &t, nil
}

func (s *PostgresStore) List(ctx context.Context) ([]*models.IdType, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, name, description FROM id_types ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list id types: %w", err)
	}
	defer rows.Close()

	var out []*models.IdType
	for rows.Next() {
		var t models.IdType
		if err := rows.Scan(&t.ID, &t.Name, &t.Description); err != nil {
			return nil, fmt.Errorf("scan id type: %w", err)
		}
		out = append(out, &t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate id types: %w", err)
	}
	return out, nil
}
