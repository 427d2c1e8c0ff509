package model

import (
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"bookrental-backend/internal/shared/utils"
)

// ========================================
// REQUEST DTOs
// ========================================

type CreateRentalRequest struct {
	BookID             uuid.UUID `json:"book_id"`
	ReaderID           uuid.UUID `json:"reader_id"`
	ExpectedReturnDate time.Time `json:"expected_return_date"`
	Notes              *string   `json:"notes"`
}

// ValidateAt checks the request against the issue instant now
func (r CreateRentalRequest) ValidateAt(now time.Time) error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.BookID, utils.NotNilUUID),
		validation.Field(&r.ReaderID, utils.NotNilUUID),
		validation.Field(&r.ExpectedReturnDate,
			validation.Required,
			validation.Min(now).Exclusive().Error("must be after the issue date"),
		),
		validation.Field(&r.Notes, validation.Length(0, 1000)),
	)
}

type ReturnRentalRequest struct {
	FineAmount *decimal.Decimal `json:"fine_amount"`
	Notes      *string          `json:"notes"`
}

func (r ReturnRentalRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Notes, validation.Length(0, 1000)),
	)
}

// Fine defaults to zero when omitted
func (r ReturnRentalRequest) Fine() decimal.Decimal {
	if r.FineAmount == nil {
		return decimal.Zero
	}
	return *r.FineAmount
}

// ========================================
// FILTER
// ========================================

// RentalFilter selects rentals. Status is evaluated on dates at Now, never
// on the stored status column.
type RentalFilter struct {
	Status   Status
	ReaderID *uuid.UUID
	BookID   *uuid.UUID
	Now      time.Time
	Page     int
	Limit    int
}

func (f *RentalFilter) Normalize(now time.Time) {
	f.Page, f.Limit = utils.NormalizePage(f.Page, f.Limit)
	if f.Now.IsZero() {
		f.Now = now
	}
}

func (f RentalFilter) Matches(r *Rental) bool {
	if f.ReaderID != nil && r.ReaderID != *f.ReaderID {
		return false
	}
	if f.BookID != nil && r.BookID != *f.BookID {
		return false
	}
	if f.Status != "" && DeriveStatus(r, f.Now) != f.Status {
		return false
	}
	return true
}
