package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	bookModel "bookrental-backend/internal/domains/book/model"
	readerModel "bookrental-backend/internal/domains/reader/model"
	"bookrental-backend/internal/domains/rental/model"
	"bookrental-backend/internal/domains/rental/repository"
	"bookrental-backend/internal/shared/apperr"
	"bookrental-backend/pkg/cache"
)

const (
	defaultMaxActive    = 3
	compensationTimeout = 5 * time.Second
)

// Options tunes the rental rules; zero values fall back to defaults
type Options struct {
	MaxActivePerReader int
	LockTTL            time.Duration
	StatisticsTTL      time.Duration

	// Locker overrides the lock picked from the cache
	Locker Locker
}

type rentalService struct {
	repo    repository.RepositoryInterface
	books   BookInventory
	readers ReaderDirectory
	cache   cache.Cache
	locker  Locker

	maxActive int
	statsTTL  time.Duration
	now       func() time.Time

	// books that disagreed on the last reconciliation, with their drift
	reconcileMu sync.Mutex
	suspects    map[uuid.UUID]int
}

// NewService wires the rental service. cache may be nil, in which case the
// per-reader lock is process local and statistics are not cached.
func NewService(
	repo repository.RepositoryInterface,
	books BookInventory,
	readers ReaderDirectory,
	c cache.Cache,
	opts Options,
) ServiceInterface {
	s := &rentalService{
		repo:      repo,
		books:     books,
		readers:   readers,
		cache:     c,
		locker:    opts.Locker,
		maxActive: opts.MaxActivePerReader,
		statsTTL:  opts.StatisticsTTL,
		now:       func() time.Time { return time.Now().UTC() },
	}

	if s.maxActive <= 0 {
		s.maxActive = defaultMaxActive
	}
	if s.statsTTL <= 0 {
		s.statsTTL = defaultStatisticsTTL
	}
	if s.locker == nil {
		if c != nil {
			s.locker = NewRedisLocker(c, opts.LockTTL)
		} else {
			s.locker = NewLocalLocker()
		}
	}
	return s
}

// ========================================
// LIFECYCLE
// ========================================

func (s *rentalService) CreateRental(ctx context.Context, req model.CreateRentalRequest) (*model.Rental, error) {
	now := s.now()
	if err := req.ValidateAt(now); err != nil {
		return nil, apperr.Validation(err)
	}

	// 1. Book must exist, be active and have a copy on the shelf.
	// Cached counters can be stale, AllocateCopy below stays authoritative.
	book, err := s.books.GetBookFromStore(ctx, req.BookID)
	if err != nil {
		return nil, err
	}
	if !book.IsAvailable() {
		return nil, bookModel.ErrBookUnavailable
	}

	// 2. Reader must exist and be active
	reader, err := s.readers.GetReader(ctx, req.ReaderID)
	if err != nil {
		return nil, err
	}
	if !reader.IsActive {
		return nil, readerModel.ErrReaderInactive
	}

	// 3. Limit check and allocation are serialized per reader
	release, err := s.locker.Acquire(ctx, readerLockKey(reader.ID))
	if err != nil {
		return nil, err
	}
	defer release()

	open, err := s.repo.CountUnreturnedByReader(ctx, reader.ID)
	if err != nil {
		return nil, fmt.Errorf("count open rentals: %w", err)
	}
	if open >= s.maxActive {
		return nil, model.ErrRentalLimitExceeded
	}

	// 4. Take the copy
	allocated, err := s.books.AllocateCopy(ctx, book.ID)
	if err != nil {
		if apperr.Is(err, apperr.KindInvalidState) {
			return nil, fmt.Errorf("%w: %w", bookModel.ErrBookUnavailable, err)
		}
		return nil, err
	}

	// 5. Price against the allocated row, not the possibly cached read
	rental := model.NewRental(model.Snapshot{
		BookID:            allocated.ID,
		DepositAmount:     allocated.DepositAmount,
		RentalPricePerDay: allocated.RentalPricePerDay,
	}, reader.ID, req.ExpectedReturnDate, req.Notes, reader, now)

	// 6. Persist, giving the copy back if that fails
	if err := s.repo.Create(ctx, rental); err != nil {
		return nil, s.compensateAllocation(ctx, allocated.ID, err)
	}

	s.invalidateStatistics(ctx)

	log.Info().
		Str("rental_id", rental.ID.String()).
		Str("book_id", rental.BookID.String()).
		Str("reader_id", rental.ReaderID.String()).
		Str("discount", rental.DiscountAmount.StringFixed(2)).
		Msg("Rental issued")
	return rental, nil
}

func (s *rentalService) compensateAllocation(ctx context.Context, bookID uuid.UUID, cause error) error {
	cause = fmt.Errorf("persist rental: %w", cause)

	cctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), compensationTimeout)
	defer cancel()

	if _, err := s.books.ReleaseCopy(cctx, bookID); err != nil {
		log.Error().
			Err(err).
			AnErr("cause", cause).
			Str("book_id", bookID.String()).
			Msg("[RentalService] compensating release failed, available copies are now too low")
		return errors.Join(cause, fmt.Errorf("%w: %w", model.ErrInventoryIntegrity, err))
	}

	log.Warn().Err(cause).Str("book_id", bookID.String()).Msg("[RentalService] rental not saved, copy released")
	return cause
}

func (s *rentalService) ReturnRental(ctx context.Context, id uuid.UUID, req model.ReturnRentalRequest) (*model.Rental, error) {
	if err := req.Validate(); err != nil {
		return nil, apperr.Validation(err)
	}

	now := s.now()
	rental, err := s.repo.GetByID(ctx, id, now)
	if err != nil {
		return nil, err
	}

	if err := rental.Finalize(now, req.Fine(), req.Notes); err != nil {
		return nil, err
	}

	// Conditional on the rental still being open
	if err := s.repo.MarkReturned(ctx, rental); err != nil {
		return nil, err
	}
	s.invalidateStatistics(ctx)

	rctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), compensationTimeout)
	defer cancel()

	if _, err := s.books.ReleaseCopy(rctx, rental.BookID); err != nil {
		log.Error().
			Err(err).
			Str("rental_id", rental.ID.String()).
			Str("book_id", rental.BookID.String()).
			Msg("[RentalService] rental returned but copy could not be released")
		return rental, fmt.Errorf("%w: %w", model.ErrInventoryIntegrity, err)
	}

	log.Info().
		Str("rental_id", rental.ID.String()).
		Str("total", rental.TotalAmount.StringFixed(2)).
		Str("fine", rental.FineAmount.StringFixed(2)).
		Msg("Rental returned")
	return rental, nil
}

// ========================================
// READS
// ========================================

func (s *rentalService) GetRental(ctx context.Context, id uuid.UUID) (*model.Rental, error) {
	return s.repo.GetByID(ctx, id, s.now())
}

func (s *rentalService) ListRentals(ctx context.Context, filter model.RentalFilter) ([]model.Rental, int, error) {
	if filter.Status != "" && !filter.Status.IsValid() {
		return nil, 0, fmt.Errorf("%w: unknown status %q", apperr.ErrValidation, filter.Status)
	}
	filter.Normalize(s.now())
	return s.repo.List(ctx, filter)
}

func (s *rentalService) ListActive(ctx context.Context, filter model.RentalFilter) ([]model.Rental, int, error) {
	filter.Status = model.StatusActive
	return s.ListRentals(ctx, filter)
}

func (s *rentalService) ListOverdue(ctx context.Context, filter model.RentalFilter) ([]model.Rental, int, error) {
	filter.Status = model.StatusOverdue
	return s.ListRentals(ctx, filter)
}

func (s *rentalService) ListByReader(ctx context.Context, readerID uuid.UUID, filter model.RentalFilter) ([]model.Rental, int, error) {
	if _, err := s.readers.GetReader(ctx, readerID); err != nil {
		return nil, 0, err
	}
	filter.ReaderID = &readerID
	return s.ListRentals(ctx, filter)
}
