package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"bookrental-backend/internal/domains/reader/model"
	"bookrental-backend/pkg/database"
)

const readerColumns = `id, first_name, last_name, middle_name, phone, email, address,
	category, discount_percentage, is_active, created_at, updated_at`

var dialect = goqu.Dialect("postgres")

type postgresRepository struct {
	pool *pgxpool.Pool
}

func NewPostgresRepository(pool *pgxpool.Pool) RepositoryInterface {
	return &postgresRepository{pool: pool}
}

func scanReader(row pgx.Row) (*model.Reader, error) {
	var r model.Reader
	var category string
	err := row.Scan(
		&r.ID, &r.FirstName, &r.LastName, &r.MiddleName, &r.Phone, &r.Email, &r.Address,
		&category, &r.DiscountPercentage, &r.IsActive, &r.CreatedAt, &r.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	r.Category = model.Category(category)
	return &r, nil
}

// translateError maps unique violations onto the conflicting field
func translateError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		switch {
		case strings.Contains(pgErr.ConstraintName, "email"):
			return model.ErrEmailAlreadyExists
		case strings.Contains(pgErr.ConstraintName, "phone"):
			return model.ErrPhoneAlreadyExists
		}
	}
	return err
}

func (r *postgresRepository) Create(ctx context.Context, reader *model.Reader) error {
	reader.ApplyCategory()

	query := `
		INSERT INTO readers (` + readerColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`
	_, err := r.pool.Exec(ctx, query,
		reader.ID, reader.FirstName, reader.LastName, reader.MiddleName, reader.Phone, reader.Email, reader.Address,
		string(reader.Category), reader.DiscountPercentage, reader.IsActive, reader.CreatedAt, reader.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert reader: %w", translateError(err))
	}
	return nil
}

func (r *postgresRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Reader, error) {
	query := `SELECT ` + readerColumns + ` FROM readers WHERE id = $1`

	reader, err := scanReader(r.pool.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, model.ErrReaderNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get reader %s: %w", id, err)
	}
	return reader, nil
}

func buildListQuery(filter model.ReaderFilter) (string, []interface{}, string, []interface{}, error) {
	ds := dialect.From("readers").Prepared(true)

	var conds []goqu.Expression
	if !filter.IncludeInactive {
		conds = append(conds, goqu.C("is_active").IsTrue())
	}
	if filter.Category != "" {
		conds = append(conds, goqu.C("category").Eq(string(filter.Category)))
	}
	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		fullName := goqu.L("concat_ws(' ', first_name, middle_name, last_name)")
		conds = append(conds, goqu.Or(
			goqu.L("? ILIKE ?", fullName, pattern),
			goqu.C("phone").ILike(pattern),
			goqu.C("email").ILike(pattern),
		))
	}
	if len(conds) > 0 {
		ds = ds.Where(conds...)
	}

	countSQL, countArgs, err := ds.Select(goqu.COUNT("*")).ToSQL()
	if err != nil {
		return "", nil, "", nil, fmt.Errorf("build count query: %w", err)
	}

	pageSQL, pageArgs, err := ds.
		Select(goqu.L(readerColumns)).
		Order(goqu.C("last_name").Asc(), goqu.C("first_name").Asc(), goqu.C("id").Asc()).
		Limit(uint(filter.Limit)).
		Offset(uint((filter.Page - 1) * filter.Limit)).
		ToSQL()
	if err != nil {
		return "", nil, "", nil, fmt.Errorf("build list query: %w", err)
	}

	return pageSQL, pageArgs, countSQL, countArgs, nil
}

func (r *postgresRepository) List(ctx context.Context, filter model.ReaderFilter) ([]model.Reader, int, error) {
	filter.Normalize()

	pageSQL, pageArgs, countSQL, countArgs, err := buildListQuery(filter)
	if err != nil {
		return nil, 0, err
	}

	var total int
	if err := r.pool.QueryRow(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count readers: %w", err)
	}

	rows, err := r.pool.Query(ctx, pageSQL, pageArgs...)
	if err != nil {
		return nil, 0, fmt.Errorf("list readers: %w", err)
	}
	defer rows.Close()

	readers := make([]model.Reader, 0, filter.Limit)
	for rows.Next() {
		reader, err := scanReader(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan reader: %w", err)
		}
		readers = append(readers, *reader)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("rows error: %w", err)
	}

	return readers, total, nil
}

func (r *postgresRepository) Update(ctx context.Context, id uuid.UUID, fn UpdateFunc) (*model.Reader, error) {
	return database.WithTransactionResult(ctx, r.pool, func(tx pgx.Tx) (*model.Reader, error) {
		query := `SELECT ` + readerColumns + ` FROM readers WHERE id = $1 FOR UPDATE`
		reader, err := scanReader(tx.QueryRow(ctx, query, id))
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrReaderNotFound
		}
		if err != nil {
			return nil, fmt.Errorf("lock reader %s: %w", id, err)
		}

		if err := fn(reader); err != nil {
			return nil, err
		}
		reader.ApplyCategory()

		update := `
			UPDATE readers
			SET first_name = $2, last_name = $3, middle_name = $4, phone = $5, email = $6, address = $7,
				category = $8, discount_percentage = $9, is_active = $10, updated_at = $11
			WHERE id = $1
			RETURNING ` + readerColumns
		updated, err := scanReader(tx.QueryRow(ctx, update,
			reader.ID, reader.FirstName, reader.LastName, reader.MiddleName, reader.Phone, reader.Email, reader.Address,
			string(reader.Category), reader.DiscountPercentage, reader.IsActive, time.Now().UTC(),
		))
		if err != nil {
			return nil, fmt.Errorf("update reader %s: %w", id, translateError(err))
		}
		return updated, nil
	})
}
