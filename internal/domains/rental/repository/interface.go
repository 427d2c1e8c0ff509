package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"bookrental-backend/internal/domains/rental/model"
)

// RepositoryInterface is the data access contract for rentals.
// Every read recomputes status at read time.
type RepositoryInterface interface {
	Create(ctx context.Context, rental *model.Rental) error
	GetByID(ctx context.Context, id uuid.UUID, now time.Time) (*model.Rental, error)
	List(ctx context.Context, filter model.RentalFilter) ([]model.Rental, int, error)

	// MarkReturned persists a finalized rental only if it is still open;
	// otherwise it fails with ErrAlreadyReturned.
	MarkReturned(ctx context.Context, rental *model.Rental) error

	CountUnreturnedByReader(ctx context.Context, readerID uuid.UUID) (int, error)
	CountUnreturnedByBook(ctx context.Context) (map[uuid.UUID]int, error)

	// Reporting
	CountActive(ctx context.Context, now time.Time) (int64, error)
	CountOverdue(ctx context.Context, now time.Time) (int64, error)
	CountAll(ctx context.Context) (int64, error)
	SumRevenue(ctx context.Context) (decimal.Decimal, error)

	// SweepOverdue rewrites the stored status of open past-due rentals
	SweepOverdue(ctx context.Context, now time.Time) (int64, error)
}
