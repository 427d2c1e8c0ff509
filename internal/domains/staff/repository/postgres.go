package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"bookrental-backend/internal/domains/staff/model"
)

const staffColumns = `id, email, password_hash, full_name, role, is_active, last_login_at, created_at, updated_at`

type postgresRepository struct {
	pool *pgxpool.Pool
}

func NewPostgresRepository(pool *pgxpool.Pool) RepositoryInterface {
	return &postgresRepository{pool: pool}
}

func scanStaff(row pgx.Row) (*model.Staff, error) {
	var s model.Staff
	var role string
	err := row.Scan(&s.ID, &s.Email, &s.PasswordHash, &s.FullName, &role, &s.IsActive, &s.LastLoginAt, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return nil, err
	}
	s.Role = model.Role(role)
	return &s, nil
}

func (r *postgresRepository) Create(ctx context.Context, staff *model.Staff) error {
	query := `
		INSERT INTO staff (` + staffColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err := r.pool.Exec(ctx, query,
		staff.ID, staff.Email, staff.PasswordHash, staff.FullName, string(staff.Role),
		staff.IsActive, staff.LastLoginAt, staff.CreatedAt, staff.UpdatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return model.ErrEmailAlreadyExists
		}
		return fmt.Errorf("insert staff: %w", err)
	}
	return nil
}

func (r *postgresRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Staff, error) {
	query := `SELECT ` + staffColumns + ` FROM staff WHERE id = $1`

	s, err := scanStaff(r.pool.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, model.ErrStaffNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get staff %s: %w", id, err)
	}
	return s, nil
}

func (r *postgresRepository) GetByEmail(ctx context.Context, email string) (*model.Staff, error) {
	query := `SELECT ` + staffColumns + ` FROM staff WHERE email = $1`

	s, err := scanStaff(r.pool.QueryRow(ctx, query, model.NormalizeEmail(email)))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, model.ErrStaffNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get staff by email: %w", err)
	}
	return s, nil
}

func (r *postgresRepository) UpdateLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error {
	_, err := r.pool.Exec(ctx, `UPDATE staff SET last_login_at = $2 WHERE id = $1`, id, at)
	if err != nil {
		return fmt.Errorf("update last login: %w", err)
	}
	return nil
}
