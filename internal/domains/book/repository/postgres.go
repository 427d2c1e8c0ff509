package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"bookrental-backend/internal/domains/book/model"
	"bookrental-backend/internal/shared/apperr"
	"bookrental-backend/pkg/database"
)

const bookColumns = `id, title, author, genre, description, isbn, deposit_amount, rental_price_per_day,
	total_copies, available_copies, is_active, version, created_at, updated_at`

var dialect = goqu.Dialect("postgres")

type postgresRepository struct {
	pool *pgxpool.Pool
}

func NewPostgresRepository(pool *pgxpool.Pool) RepositoryInterface {
	return &postgresRepository{pool: pool}
}

func scanBook(row pgx.Row) (*model.Book, error) {
	var b model.Book
	err := row.Scan(
		&b.ID, &b.Title, &b.Author, &b.Genre, &b.Description, &b.ISBN,
		&b.DepositAmount, &b.RentalPricePerDay,
		&b.TotalCopies, &b.AvailableCopies, &b.IsActive, &b.Version,
		&b.CreatedAt, &b.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &b, nil
}

// copiesRangeConstraint is the CHECK guarding 0 <= available_copies <= total_copies
const copiesRangeConstraint = "books_available_copies_range"

// translateError maps constraint violations onto domain errors
func translateError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505":
			return fmt.Errorf("%w: %s", model.ErrISBNAlreadyExists, pgErr.ConstraintName)
		case "23514":
			if pgErr.ConstraintName == copiesRangeConstraint {
				return fmt.Errorf("%w: %s", model.ErrInvalidInventoryState, pgErr.ConstraintName)
			}
			return apperr.Validation(fmt.Errorf("violates %s: %w", pgErr.ConstraintName, err))
		}
	}
	return err
}

// ========================================
// CREATE / READ
// ========================================

func (r *postgresRepository) Create(ctx context.Context, b *model.Book) error {
	if err := b.ValidateInventory(); err != nil {
		return err
	}

	query := `
		INSERT INTO books (` + bookColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`
	_, err := r.pool.Exec(ctx, query,
		b.ID, b.Title, b.Author, b.Genre, b.Description, b.ISBN,
		b.DepositAmount, b.RentalPricePerDay,
		b.TotalCopies, b.AvailableCopies, b.IsActive, b.Version,
		b.CreatedAt, b.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert book: %w", translateError(err))
	}
	return nil
}

func (r *postgresRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Book, error) {
	query := `SELECT ` + bookColumns + ` FROM books WHERE id = $1`

	b, err := scanBook(r.pool.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, model.ErrBookNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get book %s: %w", id, err)
	}
	return b, nil
}

// buildListQuery renders the filtered page query and its count query
func buildListQuery(filter model.BookFilter) (string, []interface{}, string, []interface{}, error) {
	ds := dialect.From("books").Prepared(true)

	var conds []goqu.Expression
	if !filter.IncludeInactive {
		conds = append(conds, goqu.C("is_active").IsTrue())
	}
	if filter.Genre != "" {
		conds = append(conds, goqu.Func("LOWER", goqu.C("genre")).Eq(goqu.Func("LOWER", filter.Genre)))
	}
	if filter.Author != "" {
		conds = append(conds, goqu.C("author").ILike("%"+filter.Author+"%"))
	}
	if filter.Available != nil {
		available := goqu.And(goqu.C("is_active").IsTrue(), goqu.C("available_copies").Gt(0))
		if *filter.Available {
			conds = append(conds, available)
		} else {
			conds = append(conds, goqu.Or(goqu.C("is_active").IsFalse(), goqu.C("available_copies").Eq(0)))
		}
	}
	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		conds = append(conds, goqu.Or(
			goqu.C("title").ILike(pattern),
			goqu.C("author").ILike(pattern),
			goqu.C("description").ILike(pattern),
			goqu.C("isbn").ILike(pattern),
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
		Select(goqu.L(bookColumns)).
		Order(goqu.C("title").Asc(), goqu.C("id").Asc()).
		Limit(uint(filter.Limit)).
		Offset(uint((filter.Page - 1) * filter.Limit)).
		ToSQL()
	if err != nil {
		return "", nil, "", nil, fmt.Errorf("build list query: %w", err)
	}

	return pageSQL, pageArgs, countSQL, countArgs, nil
}

func (r *postgresRepository) List(ctx context.Context, filter model.BookFilter) ([]model.Book, int, error) {
	filter.Normalize()

	pageSQL, pageArgs, countSQL, countArgs, err := buildListQuery(filter)
	if err != nil {
		return nil, 0, err
	}

	var total int
	if err := r.pool.QueryRow(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count books: %w", err)
	}

	rows, err := r.pool.Query(ctx, pageSQL, pageArgs...)
	if err != nil {
		return nil, 0, fmt.Errorf("list books: %w", err)
	}
	defer rows.Close()

	books := make([]model.Book, 0, filter.Limit)
	for rows.Next() {
		b, err := scanBook(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan book: %w", err)
		}
		books = append(books, *b)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("rows error: %w", err)
	}

	return books, total, nil
}

// ========================================
// UPDATE (read-modify-write under row lock)
// ========================================

func (r *postgresRepository) Update(ctx context.Context, id uuid.UUID, fn UpdateFunc) (*model.Book, error) {
	return database.WithTransactionResult(ctx, r.pool, func(tx pgx.Tx) (*model.Book, error) {
		query := `SELECT ` + bookColumns + ` FROM books WHERE id = $1 FOR UPDATE`
		b, err := scanBook(tx.QueryRow(ctx, query, id))
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrBookNotFound
		}
		if err != nil {
			return nil, fmt.Errorf("lock book %s: %w", id, err)
		}

		if err := fn(b); err != nil {
			return nil, err
		}
		if err := b.ValidateInventory(); err != nil {
			return nil, err
		}

		update := `
			UPDATE books
			SET title = $2, author = $3, genre = $4, description = $5, isbn = $6,
				deposit_amount = $7, rental_price_per_day = $8,
				total_copies = $9, available_copies = $10, is_active = $11,
				version = version + 1, updated_at = $12
			WHERE id = $1
			RETURNING ` + bookColumns
		updated, err := scanBook(tx.QueryRow(ctx, update,
			b.ID, b.Title, b.Author, b.Genre, b.Description, b.ISBN,
			b.DepositAmount, b.RentalPricePerDay,
			b.TotalCopies, b.AvailableCopies, b.IsActive, time.Now().UTC(),
		))
		if err != nil {
			return nil, fmt.Errorf("update book %s: %w", id, translateError(err))
		}
		return updated, nil
	})
}

// ========================================
// INVENTORY (atomic conditional updates)
// ========================================

func (r *postgresRepository) AllocateCopy(ctx context.Context, id uuid.UUID) (*model.Book, error) {
	query := `
		UPDATE books
		SET available_copies = available_copies - 1, version = version + 1, updated_at = NOW()
		WHERE id = $1 AND is_active = TRUE AND available_copies > 0
		RETURNING ` + bookColumns

	b, err := scanBook(r.pool.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, r.missOrState(ctx, id, model.ErrInventoryExhausted)
	}
	if err != nil {
		return nil, fmt.Errorf("allocate copy of %s: %w", id, translateError(err))
	}
	return b, nil
}

func (r *postgresRepository) ReleaseCopy(ctx context.Context, id uuid.UUID) (*model.Book, error) {
	query := `
		UPDATE books
		SET available_copies = available_copies + 1, version = version + 1, updated_at = NOW()
		WHERE id = $1 AND available_copies < total_copies
		RETURNING ` + bookColumns

	b, err := scanBook(r.pool.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, r.missOrState(ctx, id, model.ErrInventoryOverflow)
	}
	if err != nil {
		return nil, fmt.Errorf("release copy of %s: %w", id, translateError(err))
	}
	return b, nil
}

// missOrState tells a missing book apart from a guard that did not match
func (r *postgresRepository) missOrState(ctx context.Context, id uuid.UUID, stateErr error) error {
	var exists bool
	if err := r.pool.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM books WHERE id = $1)`, id).Scan(&exists); err != nil {
		return fmt.Errorf("check book %s: %w", id, err)
	}
	if !exists {
		return model.ErrBookNotFound
	}
	return stateErr
}
