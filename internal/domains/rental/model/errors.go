package model

import "bookrental-backend/internal/shared/apperr"

var (
	ErrRentalNotFound      = apperr.New(apperr.KindNotFound, "RENTAL_NOT_FOUND", "rental not found")
	ErrAlreadyReturned     = apperr.New(apperr.KindConflict, "ALREADY_RETURNED", "rental has already been returned")
	ErrRentalLimitExceeded = apperr.New(apperr.KindInvalidState, "RENTAL_LIMIT_EXCEEDED", "reader has reached the maximum number of active rentals")
	ErrRentalInProgress    = apperr.New(apperr.KindConflict, "RENTAL_IN_PROGRESS", "another rental for this reader is being processed, retry shortly")

	// ErrInventoryIntegrity flags a copy counter that could not be brought
	// back in line with the rental records.
	ErrInventoryIntegrity = apperr.New(apperr.KindInternal, "INVENTORY_INTEGRITY", "book inventory could not be reconciled with the rental")
)
