package repository

import (
	"context"

	"github.com/google/uuid"

	"bookrental-backend/internal/domains/book/model"
)

// UpdateFunc mutates a locked book; returning an error aborts the write
type UpdateFunc func(b *model.Book) error

// RepositoryInterface is the data access contract for books.
// AllocateCopy and ReleaseCopy are single atomic conditional updates.
type RepositoryInterface interface {
	Create(ctx context.Context, book *model.Book) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.Book, error)
	List(ctx context.Context, filter model.BookFilter) ([]model.Book, int, error)
	Update(ctx context.Context, id uuid.UUID, fn UpdateFunc) (*model.Book, error)
	AllocateCopy(ctx context.Context, id uuid.UUID) (*model.Book, error)
	ReleaseCopy(ctx context.Context, id uuid.UUID) (*model.Book, error)
}
