package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"

	bookModel "bookrental-backend/internal/domains/book/model"
	readerModel "bookrental-backend/internal/domains/reader/model"
	"bookrental-backend/internal/domains/rental/model"
)

// ServiceInterface is the rental lifecycle contract
type ServiceInterface interface {
	CreateRental(ctx context.Context, req model.CreateRentalRequest) (*model.Rental, error)

	// ReturnRental closes an open rental. When the copy cannot be put back
	// on the shelf the committed rental is still returned together with an
	// error wrapping ErrInventoryIntegrity.
	ReturnRental(ctx context.Context, id uuid.UUID, req model.ReturnRentalRequest) (*model.Rental, error)

	GetRental(ctx context.Context, id uuid.UUID) (*model.Rental, error)
	ListRentals(ctx context.Context, filter model.RentalFilter) ([]model.Rental, int, error)
	ListActive(ctx context.Context, filter model.RentalFilter) ([]model.Rental, int, error)
	ListOverdue(ctx context.Context, filter model.RentalFilter) ([]model.Rental, int, error)
	ListByReader(ctx context.Context, readerID uuid.UUID, filter model.RentalFilter) ([]model.Rental, int, error)

	Statistics(ctx context.Context) (*model.Statistics, error)
	ExportRentals(ctx context.Context, filter model.RentalFilter) (*excelize.File, int, error)

	// Maintenance, run by the worker
	SweepOverdue(ctx context.Context) (int64, error)
	ReconcileInventory(ctx context.Context) ([]model.InventoryMismatch, error)
}

// BookInventory is the part of the book service rentals depend on
type BookInventory interface {
	GetBookFromStore(ctx context.Context, id uuid.UUID) (*bookModel.Book, error)
	ListBooks(ctx context.Context, filter bookModel.BookFilter) ([]bookModel.Book, int, error)
	AllocateCopy(ctx context.Context, id uuid.UUID) (*bookModel.Book, error)
	ReleaseCopy(ctx context.Context, id uuid.UUID) (*bookModel.Book, error)
}

// ReaderDirectory resolves the reader a rental is issued to
type ReaderDirectory interface {
	GetReader(ctx context.Context, id uuid.UUID) (*readerModel.Reader, error)
}
