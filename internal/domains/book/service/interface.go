package service

import (
	"context"

	"github.com/google/uuid"

	"bookrental-backend/internal/domains/book/model"
)

// ServiceInterface is the book catalog and inventory contract
type ServiceInterface interface {
	CreateBook(ctx context.Context, req model.CreateBookRequest) (*model.Book, error)
	GetBook(ctx context.Context, id uuid.UUID) (*model.Book, error)
	GetBookFromStore(ctx context.Context, id uuid.UUID) (*model.Book, error)
	ListBooks(ctx context.Context, filter model.BookFilter) ([]model.Book, int, error)
	UpdateBook(ctx context.Context, id uuid.UUID, req model.UpdateBookRequest) (*model.Book, error)
	DeleteBook(ctx context.Context, id uuid.UUID) error

	AllocateCopy(ctx context.Context, id uuid.UUID) (*model.Book, error)
	ReleaseCopy(ctx context.Context, id uuid.UUID) (*model.Book, error)
}
