package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres"
	"github.com/doug-martin/goqu/v9/exp"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"bookrental-backend/internal/domains/rental/model"
)

const rentalColumns = `id, book_id, reader_id, issue_date, expected_return_date, actual_return_date,
	deposit_amount, rental_price_per_day, fine_amount, discount_amount, total_amount,
	status, notes, created_at, updated_at`

var dialect = goqu.Dialect("postgres")

type postgresRepository struct {
	pool *pgxpool.Pool
}

func NewPostgresRepository(pool *pgxpool.Pool) RepositoryInterface {
	return &postgresRepository{pool: pool}
}

func scanRental(row pgx.Row) (*model.Rental, error) {
	var r model.Rental
	var status string
	err := row.Scan(
		&r.ID, &r.BookID, &r.ReaderID, &r.IssueDate, &r.ExpectedReturnDate, &r.ActualReturnDate,
		&r.DepositAmount, &r.RentalPricePerDay, &r.FineAmount, &r.DiscountAmount, &r.TotalAmount,
		&status, &r.Notes, &r.CreatedAt, &r.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	r.Status = model.Status(status)
	return &r, nil
}

// statusCondition expresses a derived status on dates
func statusCondition(status model.Status, now time.Time) exp.Expression {
	switch status {
	case model.StatusReturned:
		return goqu.C("actual_return_date").IsNotNull()
	case model.StatusOverdue:
		return goqu.And(goqu.C("actual_return_date").IsNull(), goqu.C("expected_return_date").Lt(now))
	default:
		return goqu.And(goqu.C("actual_return_date").IsNull(), goqu.C("expected_return_date").Gte(now))
	}
}

func (r *postgresRepository) Create(ctx context.Context, rental *model.Rental) error {
	query := `
		INSERT INTO rentals (` + rentalColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
	`
	_, err := r.pool.Exec(ctx, query,
		rental.ID, rental.BookID, rental.ReaderID, rental.IssueDate, rental.ExpectedReturnDate, rental.ActualReturnDate,
		rental.DepositAmount, rental.RentalPricePerDay, rental.FineAmount, rental.DiscountAmount, rental.TotalAmount,
		string(rental.Status), rental.Notes, rental.CreatedAt, rental.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert rental: %w", err)
	}
	return nil
}

func (r *postgresRepository) GetByID(ctx context.Context, id uuid.UUID, now time.Time) (*model.Rental, error) {
	query := `SELECT ` + rentalColumns + ` FROM rentals WHERE id = $1`

	rental, err := scanRental(r.pool.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, model.ErrRentalNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get rental %s: %w", id, err)
	}
	rental.RefreshStatus(now)
	return rental, nil
}

func buildListQuery(filter model.RentalFilter) (string, []interface{}, string, []interface{}, error) {
	ds := dialect.From("rentals").Prepared(true)

	var conds []goqu.Expression
	if filter.Status != "" {
		conds = append(conds, statusCondition(filter.Status, filter.Now))
	}
	if filter.ReaderID != nil {
		conds = append(conds, goqu.C("reader_id").Eq(*filter.ReaderID))
	}
	if filter.BookID != nil {
		conds = append(conds, goqu.C("book_id").Eq(*filter.BookID))
	}
	if len(conds) > 0 {
		ds = ds.Where(conds...)
	}

	countSQL, countArgs, err := ds.Select(goqu.COUNT("*")).ToSQL()
	if err != nil {
		return "", nil, "", nil, fmt.Errorf("build count query: %w", err)
	}

	pageSQL, pageArgs, err := ds.
		Select(goqu.L(rentalColumns)).
		Order(goqu.C("issue_date").Desc(), goqu.C("id").Asc()).
		Limit(uint(filter.Limit)).
		Offset(uint((filter.Page - 1) * filter.Limit)).
		ToSQL()
	if err != nil {
		return "", nil, "", nil, fmt.Errorf("build list query: %w", err)
	}

	return pageSQL, pageArgs, countSQL, countArgs, nil
}

func (r *postgresRepository) List(ctx context.Context, filter model.RentalFilter) ([]model.Rental, int, error) {
	filter.Normalize(time.Now().UTC())

	pageSQL, pageArgs, countSQL, countArgs, err := buildListQuery(filter)
	if err != nil {
		return nil, 0, err
	}

	var total int
	if err := r.pool.QueryRow(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count rentals: %w", err)
	}

	rows, err := r.pool.Query(ctx, pageSQL, pageArgs...)
	if err != nil {
		return nil, 0, fmt.Errorf("list rentals: %w", err)
	}
	defer rows.Close()

	rentals := make([]model.Rental, 0, filter.Limit)
	for rows.Next() {
		rental, err := scanRental(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan rental: %w", err)
		}
		rental.RefreshStatus(filter.Now)
		rentals = append(rentals, *rental)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("rows error: %w", err)
	}

	return rentals, total, nil
}

func (r *postgresRepository) MarkReturned(ctx context.Context, rental *model.Rental) error {
	query := `
		UPDATE rentals
		SET actual_return_date = $2, fine_amount = $3, total_amount = $4, status = $5, notes = $6, updated_at = $7
		WHERE id = $1 AND actual_return_date IS NULL
	`
	tag, err := r.pool.Exec(ctx, query,
		rental.ID, rental.ActualReturnDate, rental.FineAmount, rental.TotalAmount,
		string(rental.Status), rental.Notes, rental.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("mark rental %s returned: %w", rental.ID, err)
	}
	if tag.RowsAffected() == 1 {
		return nil
	}

	var exists bool
	if err := r.pool.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM rentals WHERE id = $1)`, rental.ID).Scan(&exists); err != nil {
		return fmt.Errorf("check rental %s: %w", rental.ID, err)
	}
	if !exists {
		return model.ErrRentalNotFound
	}
	return model.ErrAlreadyReturned
}

func (r *postgresRepository) CountUnreturnedByReader(ctx context.Context, readerID uuid.UUID) (int, error) {
	var count int
	query := `SELECT COUNT(*) FROM rentals WHERE reader_id = $1 AND actual_return_date IS NULL`
	if err := r.pool.QueryRow(ctx, query, readerID).Scan(&count); err != nil {
		return 0, fmt.Errorf("count open rentals of reader %s: %w", readerID, err)
	}
	return count, nil
}

func (r *postgresRepository) CountUnreturnedByBook(ctx context.Context) (map[uuid.UUID]int, error) {
	query := `
		SELECT book_id, COUNT(*)
		FROM rentals
		WHERE actual_return_date IS NULL
		GROUP BY book_id
	`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("count open rentals per book: %w", err)
	}
	defer rows.Close()

	counts := make(map[uuid.UUID]int)
	for rows.Next() {
		var bookID uuid.UUID
		var n int
		if err := rows.Scan(&bookID, &n); err != nil {
			return nil, fmt.Errorf("scan open rental count: %w", err)
		}
		counts[bookID] = n
	}
	return counts, rows.Err()
}

// ========================================
// REPORTING
// ========================================

func (r *postgresRepository) countWhere(ctx context.Context, cond exp.Expression) (int64, error) {
	ds := dialect.From("rentals").Prepared(true).Select(goqu.COUNT("*"))
	if cond != nil {
		ds = ds.Where(cond)
	}
	query, args, err := ds.ToSQL()
	if err != nil {
		return 0, fmt.Errorf("build count query: %w", err)
	}

	var n int64
	if err := r.pool.QueryRow(ctx, query, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("count rentals: %w", err)
	}
	return n, nil
}

func (r *postgresRepository) CountActive(ctx context.Context, now time.Time) (int64, error) {
	return r.countWhere(ctx, statusCondition(model.StatusActive, now))
}

func (r *postgresRepository) CountOverdue(ctx context.Context, now time.Time) (int64, error) {
	return r.countWhere(ctx, statusCondition(model.StatusOverdue, now))
}

func (r *postgresRepository) CountAll(ctx context.Context) (int64, error) {
	return r.countWhere(ctx, nil)
}

func (r *postgresRepository) SumRevenue(ctx context.Context) (decimal.Decimal, error) {
	var sum decimal.Decimal
	query := `SELECT COALESCE(SUM(total_amount), 0) FROM rentals WHERE actual_return_date IS NOT NULL`
	if err := r.pool.QueryRow(ctx, query).Scan(&sum); err != nil {
		return decimal.Zero, fmt.Errorf("sum revenue: %w", err)
	}
	return sum, nil
}

func (r *postgresRepository) SweepOverdue(ctx context.Context, now time.Time) (int64, error) {
	query := `
		UPDATE rentals
		SET status = 'overdue', updated_at = $1
		WHERE actual_return_date IS NULL AND expected_return_date < $1 AND status <> 'overdue'
	`
	tag, err := r.pool.Exec(ctx, query, now)
	if err != nil {
		return 0, fmt.Errorf("sweep overdue rentals: %w", err)
	}
	return tag.RowsAffected(), nil
}
