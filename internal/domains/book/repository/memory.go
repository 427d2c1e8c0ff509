package repository

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"bookrental-backend/internal/domains/book/model"
)

// memoryRepository keeps books in a map guarded by a single mutex, which
// makes every compare-and-update atomic.
type memoryRepository struct {
	mu    sync.Mutex
	books map[uuid.UUID]model.Book
	now   func() time.Time
}

func NewMemoryRepository() RepositoryInterface {
	return &memoryRepository{
		books: make(map[uuid.UUID]model.Book),
		now:   func() time.Time { return time.Now().UTC() },
	}
}

func (r *memoryRepository) Create(_ context.Context, b *model.Book) error {
	if err := b.ValidateInventory(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if b.ISBN != nil {
		for _, existing := range r.books {
			if existing.ISBN != nil && *existing.ISBN == *b.ISBN {
				return model.ErrISBNAlreadyExists
			}
		}
	}
	r.books[b.ID] = *b
	return nil
}

func (r *memoryRepository) GetByID(_ context.Context, id uuid.UUID) (*model.Book, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	b, ok := r.books[id]
	if !ok {
		return nil, model.ErrBookNotFound
	}
	return &b, nil
}

func (r *memoryRepository) List(_ context.Context, filter model.BookFilter) ([]model.Book, int, error) {
	filter.Normalize()

	r.mu.Lock()
	matched := make([]model.Book, 0, len(r.books))
	for _, b := range r.books {
		if filter.Matches(&b) {
			matched = append(matched, b)
		}
	}
	r.mu.Unlock()

	sort.Slice(matched, func(i, j int) bool {
		if c := strings.Compare(matched[i].Title, matched[j].Title); c != 0 {
			return c < 0
		}
		return matched[i].ID.String() < matched[j].ID.String()
	})

	total := len(matched)
	start := (filter.Page - 1) * filter.Limit
	if start >= total {
		return []model.Book{}, total, nil
	}
	end := start + filter.Limit
	if end > total {
		end = total
	}
	return matched[start:end], total, nil
}

func (r *memoryRepository) Update(_ context.Context, id uuid.UUID, fn UpdateFunc) (*model.Book, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, ok := r.books[id]
	if !ok {
		return nil, model.ErrBookNotFound
	}

	working := current
	if err := fn(&working); err != nil {
		return nil, err
	}
	if err := working.ValidateInventory(); err != nil {
		return nil, err
	}
	if working.ISBN != nil {
		for otherID, other := range r.books {
			if otherID != id && other.ISBN != nil && *other.ISBN == *working.ISBN {
				return nil, model.ErrISBNAlreadyExists
			}
		}
	}

	working.ID = id
	working.Version = current.Version + 1
	working.UpdatedAt = r.now()
	r.books[id] = working
	return &working, nil
}

func (r *memoryRepository) AllocateCopy(_ context.Context, id uuid.UUID) (*model.Book, error) {
	return r.mutateCounter(id, (*model.Book).TakeCopy)
}

func (r *memoryRepository) ReleaseCopy(_ context.Context, id uuid.UUID) (*model.Book, error) {
	return r.mutateCounter(id, (*model.Book).ReturnCopy)
}

func (r *memoryRepository) mutateCounter(id uuid.UUID, op func(*model.Book) error) (*model.Book, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	b, ok := r.books[id]
	if !ok {
		return nil, model.ErrBookNotFound
	}
	if err := op(&b); err != nil {
		return nil, err
	}
	b.UpdatedAt = r.now()
	r.books[id] = b
	return &b, nil
}
