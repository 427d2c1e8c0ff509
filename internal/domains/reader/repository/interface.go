package repository

import (
	"context"

	"github.com/google/uuid"

	"bookrental-backend/internal/domains/reader/model"
)

type UpdateFunc func(r *model.Reader) error

// RepositoryInterface is the data access contract for readers.
// Phone is unique; email is unique when present.
type RepositoryInterface interface {
	Create(ctx context.Context, reader *model.Reader) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.Reader, error)
	List(ctx context.Context, filter model.ReaderFilter) ([]model.Reader, int, error)
	Update(ctx context.Context, id uuid.UUID, fn UpdateFunc) (*model.Reader, error)
}
