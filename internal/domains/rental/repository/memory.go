package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"bookrental-backend/internal/domains/rental/model"
)

type memoryRepository struct {
	mu      sync.RWMutex
	rentals map[uuid.UUID]model.Rental
}

func NewMemoryRepository() RepositoryInterface {
	return &memoryRepository{rentals: make(map[uuid.UUID]model.Rental)}
}

func (r *memoryRepository) Create(_ context.Context, rental *model.Rental) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.rentals[rental.ID] = *rental
	return nil
}

func (r *memoryRepository) GetByID(_ context.Context, id uuid.UUID, now time.Time) (*model.Rental, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rental, ok := r.rentals[id]
	if !ok {
		return nil, model.ErrRentalNotFound
	}
	rental.RefreshStatus(now)
	return &rental, nil
}

func (r *memoryRepository) List(_ context.Context, filter model.RentalFilter) ([]model.Rental, int, error) {
	filter.Normalize(time.Now().UTC())

	r.mu.RLock()
	matched := make([]model.Rental, 0)
	for _, rental := range r.rentals {
		if filter.Matches(&rental) {
			rental.RefreshStatus(filter.Now)
			matched = append(matched, rental)
		}
	}
	r.mu.RUnlock()

	sort.Slice(matched, func(i, j int) bool {
		if !matched[i].IssueDate.Equal(matched[j].IssueDate) {
			return matched[i].IssueDate.After(matched[j].IssueDate)
		}
		return matched[i].ID.String() < matched[j].ID.String()
	})

	total := len(matched)
	start := (filter.Page - 1) * filter.Limit
	if start >= total {
		return []model.Rental{}, total, nil
	}
	end := start + filter.Limit
	if end > total {
		end = total
	}
	return matched[start:end], total, nil
}

func (r *memoryRepository) MarkReturned(_ context.Context, rental *model.Rental) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.rentals[rental.ID]
	if !ok {
		return model.ErrRentalNotFound
	}
	if stored.ActualReturnDate != nil {
		return model.ErrAlreadyReturned
	}

	stored.ActualReturnDate = rental.ActualReturnDate
	stored.FineAmount = rental.FineAmount
	stored.TotalAmount = rental.TotalAmount
	stored.Status = rental.Status
	stored.Notes = rental.Notes
	stored.UpdatedAt = rental.UpdatedAt
	r.rentals[rental.ID] = stored
	return nil
}

func (r *memoryRepository) CountUnreturnedByReader(_ context.Context, readerID uuid.UUID) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	count := 0
	for _, rental := range r.rentals {
		if rental.ReaderID == readerID && !rental.IsReturned() {
			count++
		}
	}
	return count, nil
}

func (r *memoryRepository) CountUnreturnedByBook(_ context.Context) (map[uuid.UUID]int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	counts := make(map[uuid.UUID]int)
	for _, rental := range r.rentals {
		if !rental.IsReturned() {
			counts[rental.BookID]++
		}
	}
	return counts, nil
}

func (r *memoryRepository) countStatus(status model.Status, now time.Time) int64 {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var n int64
	for _, rental := range r.rentals {
		if model.DeriveStatus(&rental, now) == status {
			n++
		}
	}
	return n
}

func (r *memoryRepository) CountActive(_ context.Context, now time.Time) (int64, error) {
	return r.countStatus(model.StatusActive, now), nil
}

func (r *memoryRepository) CountOverdue(_ context.Context, now time.Time) (int64, error) {
	return r.countStatus(model.StatusOverdue, now), nil
}

func (r *memoryRepository) CountAll(_ context.Context) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return int64(len(r.rentals)), nil
}

func (r *memoryRepository) SumRevenue(_ context.Context) (decimal.Decimal, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	sum := decimal.Zero
	for _, rental := range r.rentals {
		if rental.IsReturned() {
			sum = sum.Add(rental.TotalAmount)
		}
	}
	return sum, nil
}

func (r *memoryRepository) SweepOverdue(_ context.Context, now time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var n int64
	for id, rental := range r.rentals {
		if rental.Status != model.StatusOverdue && model.DeriveStatus(&rental, now) == model.StatusOverdue {
			rental.Status = model.StatusOverdue
			rental.UpdatedAt = now
			r.rentals[id] = rental
			n++
		}
	}
	return n, nil
}
