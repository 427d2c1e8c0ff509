package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	bookModel "bookrental-backend/internal/domains/book/model"
	bookRepo "bookrental-backend/internal/domains/book/repository"
	bookService "bookrental-backend/internal/domains/book/service"
	readerModel "bookrental-backend/internal/domains/reader/model"
	readerRepo "bookrental-backend/internal/domains/reader/repository"
	readerService "bookrental-backend/internal/domains/reader/service"
	"bookrental-backend/internal/domains/rental/model"
	"bookrental-backend/internal/domains/rental/repository"
	infracache "bookrental-backend/internal/infrastructure/cache"
	"bookrental-backend/internal/shared/apperr"
	"bookrental-backend/pkg/cache"
)

var t0 = time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)

type harness struct {
	svc     *rentalService
	repo    repository.RepositoryInterface
	books   bookService.ServiceInterface
	readers readerService.ServiceInterface
	now     time.Time
}

func newHarness(t *testing.T, c cache.Cache) *harness {
	t.Helper()
	h := &harness{
		repo:    repository.NewMemoryRepository(),
		books:   bookService.NewService(bookRepo.NewMemoryRepository(), nil, 0),
		readers: readerService.NewService(readerRepo.NewMemoryRepository()),
		now:     t0,
	}
	h.svc = NewService(h.repo, h.books, h.readers, c, Options{}).(*rentalService)
	h.svc.now = func() time.Time { return h.now }
	return h
}

func newRedisCache(t *testing.T) (cache.Cache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return infracache.NewRedisCache(client), mr
}

func (h *harness) addBook(t *testing.T, price string, copies int) *bookModel.Book {
	t.Helper()
	b, err := h.books.CreateBook(context.Background(), bookModel.CreateBookRequest{
		Title:             "Dune",
		Author:            "Frank Herbert",
		Genre:             "sci-fi",
		DepositAmount:     decimal.NewFromInt(20),
		RentalPricePerDay: decimal.RequireFromString(price),
		TotalCopies:       copies,
	})
	require.NoError(t, err)
	return b
}

// newCachedHarness puts a Redis detail cache in front of the book repository
func newCachedHarness(t *testing.T) (*harness, bookRepo.RepositoryInterface) {
	t.Helper()
	c, _ := newRedisCache(t)
	store := bookRepo.NewMemoryRepository()
	h := &harness{
		repo:    repository.NewMemoryRepository(),
		books:   bookService.NewService(store, c, time.Minute),
		readers: readerService.NewService(readerRepo.NewMemoryRepository()),
		now:     t0,
	}
	h.svc = NewService(h.repo, h.books, h.readers, nil, Options{}).(*rentalService)
	h.svc.now = func() time.Time { return h.now }
	return h, store
}

var phoneSeq int

func (h *harness) addReader(t *testing.T, category readerModel.Category) *readerModel.Reader {
	t.Helper()
	phoneSeq++
	r, err := h.readers.CreateReader(context.Background(), readerModel.CreateReaderRequest{
		FirstName: "Ada",
		LastName:  "Lovelace",
		Phone:     fmt.Sprintf("+1555000%04d", phoneSeq),
		Category:  category,
	})
	require.NoError(t, err)
	return r
}

func (h *harness) rent(bookID, readerID uuid.UUID, days int) (*model.Rental, error) {
	return h.svc.CreateRental(context.Background(), model.CreateRentalRequest{
		BookID:             bookID,
		ReaderID:           readerID,
		ExpectedReturnDate: h.now.AddDate(0, 0, days),
	})
}

func (h *harness) available(t *testing.T, bookID uuid.UUID) int {
	t.Helper()
	b, err := h.books.GetBook(context.Background(), bookID)
	require.NoError(t, err)
	return b.AvailableCopies
}

// ========================================
// CREATE
// ========================================

func TestRentalService_CreateRental_StudentDiscount(t *testing.T) {
	h := newHarness(t, nil)
	book := h.addBook(t, "2.50", 2)
	reader := h.addReader(t, readerModel.CategoryStudent)

	rental, err := h.rent(book.ID, reader.ID, 14)
	require.NoError(t, err)

	assert.Equal(t, model.StatusActive, rental.Status)
	assert.Equal(t, t0, rental.IssueDate)
	assert.Equal(t, "5.25", rental.DiscountAmount.StringFixed(2))
	assert.Equal(t, "2.50", rental.RentalPricePerDay.StringFixed(2))
	assert.Equal(t, "20.00", rental.DepositAmount.StringFixed(2))
	assert.True(t, rental.FineAmount.IsZero())
	assert.Equal(t, 1, h.available(t, book.ID))
}

func TestRentalService_CreateRental_FourthIsRejected(t *testing.T) {
	h := newHarness(t, nil)
	book := h.addBook(t, "1.00", 5)
	reader := h.addReader(t, readerModel.CategoryRegular)

	for i := 0; i < 3; i++ {
		_, err := h.rent(book.ID, reader.ID, 7)
		require.NoError(t, err)
	}

	_, err := h.rent(book.ID, reader.ID, 7)
	assert.ErrorIs(t, err, model.ErrRentalLimitExceeded)
	assert.True(t, apperr.Is(err, apperr.KindInvalidState))
	assert.Equal(t, 2, h.available(t, book.ID))

	// another reader is unaffected
	_, err = h.rent(book.ID, h.addReader(t, readerModel.CategoryRegular).ID, 7)
	assert.NoError(t, err)
}

func TestRentalService_CreateRental_Rejections(t *testing.T) {
	h := newHarness(t, nil)
	ctx := context.Background()
	book := h.addBook(t, "1.00", 1)
	reader := h.addReader(t, readerModel.CategoryRegular)

	t.Run("book not found", func(t *testing.T) {
		_, err := h.rent(uuid.New(), reader.ID, 3)
		assert.ErrorIs(t, err, bookModel.ErrBookNotFound)
	})

	t.Run("reader not found", func(t *testing.T) {
		_, err := h.rent(book.ID, uuid.New(), 3)
		assert.ErrorIs(t, err, readerModel.ErrReaderNotFound)
		assert.Equal(t, 1, h.available(t, book.ID))
	})

	t.Run("expected return not after now", func(t *testing.T) {
		_, err := h.svc.CreateRental(ctx, model.CreateRentalRequest{
			BookID: book.ID, ReaderID: reader.ID, ExpectedReturnDate: h.now,
		})
		assert.True(t, apperr.Is(err, apperr.KindValidation))
	})

	t.Run("last copy taken", func(t *testing.T) {
		_, err := h.rent(book.ID, reader.ID, 3)
		require.NoError(t, err)

		_, err = h.rent(book.ID, h.addReader(t, readerModel.CategoryRegular).ID, 3)
		assert.ErrorIs(t, err, bookModel.ErrBookUnavailable)
		assert.Equal(t, 0, h.available(t, book.ID))
	})

	t.Run("inactive reader", func(t *testing.T) {
		other := h.addBook(t, "1.00", 1)
		gone := h.addReader(t, readerModel.CategoryRegular)
		require.NoError(t, h.readers.DeleteReader(ctx, gone.ID))

		_, err := h.rent(other.ID, gone.ID, 3)
		assert.ErrorIs(t, err, readerModel.ErrReaderInactive)
		assert.Equal(t, 1, h.available(t, other.ID))
	})

	t.Run("inactive book", func(t *testing.T) {
		other := h.addBook(t, "1.00", 1)
		require.NoError(t, h.books.DeleteBook(ctx, other.ID))

		_, err := h.rent(other.ID, reader.ID, 3)
		assert.ErrorIs(t, err, bookModel.ErrBookUnavailable)
	})
}

func TestRentalService_CreateRental_ConcurrentLimit(t *testing.T) {
	h := newHarness(t, nil)
	book := h.addBook(t, "1.00", 10)
	reader := h.addReader(t, readerModel.CategoryRegular)

	const attempts = 8
	var wg sync.WaitGroup
	errs := make([]error, attempts)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = h.rent(book.ID, reader.ID, 5)
		}(i)
	}
	wg.Wait()

	ok, limited := 0, 0
	for _, err := range errs {
		switch {
		case err == nil:
			ok++
		case errors.Is(err, model.ErrRentalLimitExceeded):
			limited++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	assert.Equal(t, 3, ok)
	assert.Equal(t, attempts-3, limited)
	assert.Equal(t, 7, h.available(t, book.ID))
}

func TestRentalService_CreateRental_ConcurrentLastCopy(t *testing.T) {
	h := newHarness(t, nil)
	book := h.addBook(t, "1.00", 1)
	a := h.addReader(t, readerModel.CategoryRegular)
	b := h.addReader(t, readerModel.CategoryRegular)

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i, reader := range []uuid.UUID{a.ID, b.ID} {
		wg.Add(1)
		go func(i int, readerID uuid.UUID) {
			defer wg.Done()
			_, errs[i] = h.rent(book.ID, readerID, 5)
		}(i, reader)
	}
	wg.Wait()

	failed := 0
	for _, err := range errs {
		if err != nil {
			assert.ErrorIs(t, err, bookModel.ErrBookUnavailable)
			failed++
		}
	}
	assert.Equal(t, 1, failed)
	assert.Equal(t, 0, h.available(t, book.ID))
}

// ========================================
// COMPENSATION
// ========================================

func TestRentalService_CreateRental_IgnoresStaleCachedCounters(t *testing.T) {
	h, store := newCachedHarness(t)
	ctx := context.Background()
	book := h.addBook(t, "1.00", 1)
	first := h.addReader(t, readerModel.CategoryRegular)
	second := h.addReader(t, readerModel.CategoryRegular)

	_, err := h.rent(book.ID, first.ID, 3)
	require.NoError(t, err)

	// cache now holds available=0
	cached, err := h.books.GetBook(ctx, book.ID)
	require.NoError(t, err)
	require.Equal(t, 0, cached.AvailableCopies)

	// a release that lands after the cache fill leaves the cached row stale
	_, err = store.ReleaseCopy(ctx, book.ID)
	require.NoError(t, err)
	stale, err := h.books.GetBook(ctx, book.ID)
	require.NoError(t, err)
	require.Equal(t, 0, stale.AvailableCopies)

	rental, err := h.rent(book.ID, second.ID, 3)
	require.NoError(t, err)
	assert.Equal(t, book.ID, rental.BookID)

	fresh, err := store.GetByID(ctx, book.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, fresh.AvailableCopies)
}

var errDiskFull = errors.New("disk full")

type failingCreateRepo struct {
	repository.RepositoryInterface
}

func (failingCreateRepo) Create(context.Context, *model.Rental) error { return errDiskFull }

type failingRelease struct {
	BookInventory
}

func (failingRelease) ReleaseCopy(context.Context, uuid.UUID) (*bookModel.Book, error) {
	return nil, errors.New("connection reset")
}

func TestRentalService_CreateRental_CompensatesOnPersistFailure(t *testing.T) {
	h := newHarness(t, nil)
	book := h.addBook(t, "1.00", 2)
	reader := h.addReader(t, readerModel.CategoryRegular)
	h.svc.repo = failingCreateRepo{h.repo}

	_, err := h.rent(book.ID, reader.ID, 3)
	require.Error(t, err)
	assert.ErrorIs(t, err, errDiskFull)
	assert.NotErrorIs(t, err, model.ErrInventoryIntegrity)
	assert.Equal(t, 2, h.available(t, book.ID))
}

func TestRentalService_CreateRental_DoubleFailureIsFlagged(t *testing.T) {
	h := newHarness(t, nil)
	book := h.addBook(t, "1.00", 2)
	reader := h.addReader(t, readerModel.CategoryRegular)
	h.svc.repo = failingCreateRepo{h.repo}
	h.svc.books = failingRelease{h.books}

	_, err := h.rent(book.ID, reader.ID, 3)
	require.Error(t, err)
	assert.ErrorIs(t, err, errDiskFull)
	assert.ErrorIs(t, err, model.ErrInventoryIntegrity)
	assert.Equal(t, 1, h.available(t, book.ID), "copy stays allocated")
}

// ========================================
// RETURN
// ========================================

func TestRentalService_ReturnRental(t *testing.T) {
	h := newHarness(t, nil)
	ctx := context.Background()
	book := h.addBook(t, "2.00", 1)
	reader := h.addReader(t, readerModel.CategoryRegular)

	rental, err := h.rent(book.ID, reader.ID, 7)
	require.NoError(t, err)

	h.now = t0.AddDate(0, 0, 10)
	fine := decimal.RequireFromString("3.50")
	notes := "late"
	returned, err := h.svc.ReturnRental(ctx, rental.ID, model.ReturnRentalRequest{FineAmount: &fine, Notes: &notes})
	require.NoError(t, err)

	assert.Equal(t, model.StatusReturned, returned.Status)
	assert.Equal(t, h.now, *returned.ActualReturnDate)
	assert.Equal(t, "23.50", returned.TotalAmount.StringFixed(2))
	assert.Equal(t, "late", *returned.Notes)
	assert.Equal(t, 1, h.available(t, book.ID))

	t.Run("second return conflicts and changes nothing", func(t *testing.T) {
		h.now = t0.AddDate(0, 0, 20)
		big := decimal.NewFromInt(100)
		_, err := h.svc.ReturnRental(ctx, rental.ID, model.ReturnRentalRequest{FineAmount: &big})
		assert.ErrorIs(t, err, model.ErrAlreadyReturned)
		assert.True(t, apperr.Is(err, apperr.KindConflict))

		stored, err := h.svc.GetRental(ctx, rental.ID)
		require.NoError(t, err)
		assert.True(t, returned.TotalAmount.Equal(stored.TotalAmount))
		assert.True(t, fine.Equal(stored.FineAmount))
		assert.Equal(t, 1, h.available(t, book.ID))
	})

	t.Run("unknown rental", func(t *testing.T) {
		_, err := h.svc.ReturnRental(ctx, uuid.New(), model.ReturnRentalRequest{})
		assert.ErrorIs(t, err, model.ErrRentalNotFound)
	})
}

func TestRentalService_ReturnRental_NegativeFineAndSameDay(t *testing.T) {
	h := newHarness(t, nil)
	book := h.addBook(t, "2.50", 1)
	reader := h.addReader(t, readerModel.CategoryStudent)

	rental, err := h.rent(book.ID, reader.ID, 14)
	require.NoError(t, err)

	h.now = t0.Add(time.Minute)
	negative := decimal.NewFromInt(-5)
	returned, err := h.svc.ReturnRental(context.Background(), rental.ID, model.ReturnRentalRequest{FineAmount: &negative})
	require.NoError(t, err)

	assert.True(t, returned.FineAmount.IsZero())
	// one billable day minus the discount quoted over fourteen
	assert.Equal(t, "-2.75", returned.TotalAmount.StringFixed(2))
}

func TestRentalService_ReturnRental_ReleaseFailureKeepsReturn(t *testing.T) {
	h := newHarness(t, nil)
	book := h.addBook(t, "1.00", 1)
	reader := h.addReader(t, readerModel.CategoryRegular)

	rental, err := h.rent(book.ID, reader.ID, 3)
	require.NoError(t, err)
	h.svc.books = failingRelease{h.books}

	returned, err := h.svc.ReturnRental(context.Background(), rental.ID, model.ReturnRentalRequest{})
	require.Error(t, err)
	assert.ErrorIs(t, err, model.ErrInventoryIntegrity)
	require.NotNil(t, returned)
	assert.Equal(t, model.StatusReturned, returned.Status)

	stored, err := h.svc.GetRental(context.Background(), rental.ID)
	require.NoError(t, err)
	assert.True(t, stored.IsReturned())
}

// ========================================
// READS
// ========================================

func TestRentalService_ListsDeriveStatus(t *testing.T) {
	h := newHarness(t, nil)
	ctx := context.Background()
	book := h.addBook(t, "1.00", 5)
	reader := h.addReader(t, readerModel.CategoryRegular)

	_, err := h.rent(book.ID, reader.ID, 2)
	require.NoError(t, err)
	_, err = h.rent(book.ID, reader.ID, 30)
	require.NoError(t, err)

	h.now = t0.AddDate(0, 0, 5)

	overdue, total, err := h.svc.ListOverdue(ctx, model.RentalFilter{})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	assert.Equal(t, model.StatusOverdue, overdue[0].Status)

	active, total, err := h.svc.ListActive(ctx, model.RentalFilter{})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	assert.Equal(t, model.StatusActive, active[0].Status)

	mine, total, err := h.svc.ListByReader(ctx, reader.ID, model.RentalFilter{})
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	assert.Len(t, mine, 2)

	_, _, err = h.svc.ListByReader(ctx, uuid.New(), model.RentalFilter{})
	assert.ErrorIs(t, err, readerModel.ErrReaderNotFound)

	_, _, err = h.svc.ListRentals(ctx, model.RentalFilter{Status: "lost"})
	assert.True(t, apperr.Is(err, apperr.KindValidation))
}

// ========================================
// STATISTICS & MAINTENANCE
// ========================================

func TestRentalService_Statistics(t *testing.T) {
	c, mr := newRedisCache(t)
	h := newHarness(t, c)
	ctx := context.Background()
	book := h.addBook(t, "2.00", 5)
	reader := h.addReader(t, readerModel.CategoryRegular)

	first, err := h.rent(book.ID, reader.ID, 3)
	require.NoError(t, err)
	_, err = h.rent(book.ID, reader.ID, 1)
	require.NoError(t, err)
	_, err = h.rent(book.ID, reader.ID, 30)
	require.NoError(t, err)

	h.now = t0.AddDate(0, 0, 2)
	_, err = h.svc.ReturnRental(ctx, first.ID, model.ReturnRentalRequest{})
	require.NoError(t, err)

	stats, err := h.svc.Statistics(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, stats.ActiveCount)
	assert.EqualValues(t, 1, stats.OverdueCount)
	assert.EqualValues(t, 3, stats.TotalCount)
	assert.Equal(t, "4.00", stats.TotalRevenue.StringFixed(2))
	assert.True(t, mr.Exists(statisticsCacheKey))

	_, err = h.rent(book.ID, h.addReader(t, readerModel.CategoryRegular).ID, 3)
	require.NoError(t, err)
	assert.False(t, mr.Exists(statisticsCacheKey), "writes invalidate the cached figures")
}

func TestRentalService_SweepOverdue(t *testing.T) {
	h := newHarness(t, nil)
	book := h.addBook(t, "1.00", 3)
	reader := h.addReader(t, readerModel.CategoryRegular)

	_, err := h.rent(book.ID, reader.ID, 1)
	require.NoError(t, err)
	_, err = h.rent(book.ID, reader.ID, 10)
	require.NoError(t, err)

	h.now = t0.AddDate(0, 0, 3)
	n, err := h.svc.SweepOverdue(context.Background())
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
}

func TestRentalService_ReconcileInventory(t *testing.T) {
	h := newHarness(t, nil)
	ctx := context.Background()
	book := h.addBook(t, "1.00", 3)
	reader := h.addReader(t, readerModel.CategoryRegular)

	_, err := h.rent(book.ID, reader.ID, 5)
	require.NoError(t, err)

	mismatches, err := h.svc.ReconcileInventory(ctx)
	require.NoError(t, err)
	assert.Empty(t, mismatches)

	// a copy leaves the shelf without a rental
	_, err = h.books.AllocateCopy(ctx, book.ID)
	require.NoError(t, err)

	// first sighting is only rechecked
	mismatches, err = h.svc.ReconcileInventory(ctx)
	require.NoError(t, err)
	assert.Empty(t, mismatches)

	mismatches, err = h.svc.ReconcileInventory(ctx)
	require.NoError(t, err)
	require.Len(t, mismatches, 1)
	assert.Equal(t, book.ID, mismatches[0].BookID)
	assert.Equal(t, 2, mismatches[0].CopiesOut)
	assert.Equal(t, 1, mismatches[0].UnreturnedRentals)
}

func TestRentalService_ReconcileInventory_TransientDifferenceNotReported(t *testing.T) {
	h := newHarness(t, nil)
	ctx := context.Background()
	book := h.addBook(t, "1.00", 3)

	// counters read between the allocation and the rental insert
	_, err := h.books.AllocateCopy(ctx, book.ID)
	require.NoError(t, err)

	mismatches, err := h.svc.ReconcileInventory(ctx)
	require.NoError(t, err)
	assert.Empty(t, mismatches)

	_, err = h.books.ReleaseCopy(ctx, book.ID)
	require.NoError(t, err)

	mismatches, err = h.svc.ReconcileInventory(ctx)
	require.NoError(t, err)
	assert.Empty(t, mismatches)

	// a new difference starts over
	_, err = h.books.AllocateCopy(ctx, book.ID)
	require.NoError(t, err)

	mismatches, err = h.svc.ReconcileInventory(ctx)
	require.NoError(t, err)
	assert.Empty(t, mismatches)
}

func TestRentalService_ExportRentals(t *testing.T) {
	h := newHarness(t, nil)
	book := h.addBook(t, "1.00", 3)
	reader := h.addReader(t, readerModel.CategoryRegular)

	for i := 0; i < 2; i++ {
		_, err := h.rent(book.ID, reader.ID, 5)
		require.NoError(t, err)
	}

	f, n, err := h.svc.ExportRentals(context.Background(), model.RentalFilter{})
	require.NoError(t, err)
	defer f.Close()
	assert.Equal(t, 2, n)

	rows, err := f.GetRows(exportSheetName)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, exportHeaders, rows[0])
	assert.Equal(t, string(model.StatusActive), rows[1][3])
}
