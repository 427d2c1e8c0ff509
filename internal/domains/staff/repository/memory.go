package repository

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"bookrental-backend/internal/domains/staff/model"
)

type memoryRepository struct {
	mu    sync.RWMutex
	staff map[uuid.UUID]model.Staff
}

func NewMemoryRepository() RepositoryInterface {
	return &memoryRepository{staff: make(map[uuid.UUID]model.Staff)}
}

func (r *memoryRepository) Create(_ context.Context, staff *model.Staff) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.staff {
		if existing.Email == staff.Email {
			return model.ErrEmailAlreadyExists
		}
	}
	r.staff[staff.ID] = *staff
	return nil
}

func (r *memoryRepository) GetByID(_ context.Context, id uuid.UUID) (*model.Staff, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.staff[id]
	if !ok {
		return nil, model.ErrStaffNotFound
	}
	return &s, nil
}

func (r *memoryRepository) GetByEmail(_ context.Context, email string) (*model.Staff, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	email = model.NormalizeEmail(email)
	for _, s := range r.staff {
		if s.Email == email {
			return &s, nil
		}
	}
	return nil, model.ErrStaffNotFound
}

func (r *memoryRepository) UpdateLastLogin(_ context.Context, id uuid.UUID, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.staff[id]
	if !ok {
		return model.ErrStaffNotFound
	}
	s.LastLoginAt = &at
	r.staff[id] = s
	return nil
}
