package model

import "bookrental-backend/internal/shared/apperr"

var (
	ErrBookNotFound          = apperr.New(apperr.KindNotFound, "BOOK_NOT_FOUND", "book not found")
	ErrBookUnavailable       = apperr.New(apperr.KindInvalidState, "BOOK_UNAVAILABLE", "book is not available for rental")
	ErrInventoryExhausted    = apperr.New(apperr.KindInvalidState, "INVENTORY_EXHAUSTED", "no copies of this book are available")
	ErrInventoryOverflow     = apperr.New(apperr.KindInvalidState, "INVENTORY_OVERFLOW", "all copies of this book are already in stock")
	ErrInvalidInventoryState = apperr.New(apperr.KindInvalidState, "INVALID_INVENTORY_STATE", "available copies must be between 0 and total copies")
	ErrISBNAlreadyExists     = apperr.New(apperr.KindConflict, "ISBN_ALREADY_EXISTS", "a book with this ISBN already exists")
)
