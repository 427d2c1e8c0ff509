package repository

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"bookrental-backend/internal/domains/reader/model"
)

type memoryRepository struct {
	mu      sync.Mutex
	readers map[uuid.UUID]model.Reader
}

func NewMemoryRepository() RepositoryInterface {
	return &memoryRepository{readers: make(map[uuid.UUID]model.Reader)}
}

// checkUnique must be called with mu held
func (r *memoryRepository) checkUnique(candidate *model.Reader) error {
	for id, existing := range r.readers {
		if id == candidate.ID {
			continue
		}
		if existing.Phone == candidate.Phone {
			return model.ErrPhoneAlreadyExists
		}
		if candidate.Email != nil && existing.Email != nil && strings.EqualFold(*existing.Email, *candidate.Email) {
			return model.ErrEmailAlreadyExists
		}
	}
	return nil
}

func (r *memoryRepository) Create(_ context.Context, reader *model.Reader) error {
	reader.ApplyCategory()

	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.checkUnique(reader); err != nil {
		return err
	}
	r.readers[reader.ID] = *reader
	return nil
}

func (r *memoryRepository) GetByID(_ context.Context, id uuid.UUID) (*model.Reader, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	reader, ok := r.readers[id]
	if !ok {
		return nil, model.ErrReaderNotFound
	}
	return &reader, nil
}

func (r *memoryRepository) List(_ context.Context, filter model.ReaderFilter) ([]model.Reader, int, error) {
	filter.Normalize()

	r.mu.Lock()
	matched := make([]model.Reader, 0, len(r.readers))
	for _, reader := range r.readers {
		if filter.Matches(&reader) {
			matched = append(matched, reader)
		}
	}
	r.mu.Unlock()

	sort.Slice(matched, func(i, j int) bool {
		a, b := matched[i], matched[j]
		if a.LastName != b.LastName {
			return a.LastName < b.LastName
		}
		if a.FirstName != b.FirstName {
			return a.FirstName < b.FirstName
		}
		return a.ID.String() < b.ID.String()
	})

	total := len(matched)
	start := (filter.Page - 1) * filter.Limit
	if start >= total {
		return []model.Reader{}, total, nil
	}
	end := start + filter.Limit
	if end > total {
		end = total
	}
	return matched[start:end], total, nil
}

func (r *memoryRepository) Update(_ context.Context, id uuid.UUID, fn UpdateFunc) (*model.Reader, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, ok := r.readers[id]
	if !ok {
		return nil, model.ErrReaderNotFound
	}

	working := current
	if err := fn(&working); err != nil {
		return nil, err
	}
	working.ID = id
	working.ApplyCategory()
	if err := r.checkUnique(&working); err != nil {
		return nil, err
	}

	working.UpdatedAt = time.Now().UTC()
	r.readers[id] = working
	return &working, nil
}
