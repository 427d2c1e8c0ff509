package model

import (
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"bookrental-backend/internal/shared/utils"
)

// ========================================
// REQUEST DTOs
// ========================================

type CreateBookRequest struct {
	Title             string          `json:"title"`
	Author            string          `json:"author"`
	Genre             string          `json:"genre"`
	Description       *string         `json:"description"`
	ISBN              *string         `json:"isbn"`
	DepositAmount     decimal.Decimal `json:"deposit_amount"`
	RentalPricePerDay decimal.Decimal `json:"rental_price_per_day"`
	TotalCopies       int             `json:"total_copies"`
}

func (r CreateBookRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Title, validation.Required, validation.Length(1, 255)),
		validation.Field(&r.Author, validation.Required, validation.Length(1, 255)),
		validation.Field(&r.Genre, validation.Required, validation.Length(1, 100)),
		validation.Field(&r.ISBN, utils.NotBlankPtr, validation.NilOrNotEmpty, validation.Length(10, 17)),
		validation.Field(&r.DepositAmount, utils.NonNegativeDecimal),
		validation.Field(&r.RentalPricePerDay, utils.NonNegativeDecimal),
		validation.Field(&r.TotalCopies, validation.Required, validation.Min(1)),
	)
}

// ToBook builds a new active book with every copy in stock
func (r CreateBookRequest) ToBook(now time.Time) *Book {
	return &Book{
		ID:                uuid.New(),
		Title:             strings.TrimSpace(r.Title),
		Author:            strings.TrimSpace(r.Author),
		Genre:             strings.TrimSpace(r.Genre),
		Description:       utils.TrimToNil(r.Description),
		ISBN:              utils.TrimToNil(r.ISBN),
		DepositAmount:     utils.RoundMoney(r.DepositAmount),
		RentalPricePerDay: utils.RoundMoney(r.RentalPricePerDay),
		TotalCopies:       r.TotalCopies,
		AvailableCopies:   r.TotalCopies,
		IsActive:          true,
		Version:           1,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
}

// UpdateBookRequest is a partial update: nil fields are left untouched
type UpdateBookRequest struct {
	Title             *string          `json:"title"`
	Author            *string          `json:"author"`
	Genre             *string          `json:"genre"`
	Description       *string          `json:"description"`
	ISBN              *string          `json:"isbn"`
	DepositAmount     *decimal.Decimal `json:"deposit_amount"`
	RentalPricePerDay *decimal.Decimal `json:"rental_price_per_day"`
	TotalCopies       *int             `json:"total_copies"`
	IsActive          *bool            `json:"is_active"`
}

func (r UpdateBookRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Title, utils.NotBlankPtr, validation.Length(1, 255)),
		validation.Field(&r.Author, utils.NotBlankPtr, validation.Length(1, 255)),
		validation.Field(&r.Genre, utils.NotBlankPtr, validation.Length(1, 100)),
		validation.Field(&r.ISBN, validation.Length(10, 17)),
		validation.Field(&r.DepositAmount, utils.NonNegativeDecimal),
		validation.Field(&r.RentalPricePerDay, utils.NonNegativeDecimal),
		validation.Field(&r.TotalCopies, validation.NilOrNotEmpty, validation.Min(1)),
	)
}

// Apply merges the request into b. Copy totals go through ResizeCopies.
func (r UpdateBookRequest) Apply(b *Book) error {
	if r.Title != nil {
		b.Title = strings.TrimSpace(*r.Title)
	}
	if r.Author != nil {
		b.Author = strings.TrimSpace(*r.Author)
	}
	if r.Genre != nil {
		b.Genre = strings.TrimSpace(*r.Genre)
	}
	if r.Description != nil {
		b.Description = utils.TrimToNil(r.Description)
	}
	if r.ISBN != nil {
		b.ISBN = utils.TrimToNil(r.ISBN)
	}
	if r.DepositAmount != nil {
		b.DepositAmount = utils.RoundMoney(*r.DepositAmount)
	}
	if r.RentalPricePerDay != nil {
		b.RentalPricePerDay = utils.RoundMoney(*r.RentalPricePerDay)
	}
	if r.IsActive != nil {
		b.IsActive = *r.IsActive
	}
	if r.TotalCopies != nil && *r.TotalCopies != b.TotalCopies {
		if err := b.ResizeCopies(*r.TotalCopies); err != nil {
			return err
		}
	}
	return b.ValidateInventory()
}

// ========================================
// FILTER
// ========================================

// BookFilter drives list and search queries
type BookFilter struct {
	Search          string
	Genre           string
	Author          string
	Available       *bool
	IncludeInactive bool
	Page            int
	Limit           int
}

// Normalize applies pagination defaults
func (f *BookFilter) Normalize() {
	f.Page, f.Limit = utils.NormalizePage(f.Page, f.Limit)
	f.Search = strings.TrimSpace(f.Search)
}

// Matches evaluates the filter in memory; the SQL builder mirrors it
func (f BookFilter) Matches(b *Book) bool {
	if !f.IncludeInactive && !b.IsActive {
		return false
	}
	if f.Genre != "" && !strings.EqualFold(b.Genre, f.Genre) {
		return false
	}
	if f.Author != "" && !utils.ContainsFold(b.Author, f.Author) {
		return false
	}
	if f.Available != nil && b.IsAvailable() != *f.Available {
		return false
	}
	if f.Search != "" {
		hit := utils.ContainsFold(b.Title, f.Search) || utils.ContainsFold(b.Author, f.Search)
		if !hit && b.Description != nil {
			hit = utils.ContainsFold(*b.Description, f.Search)
		}
		if !hit && b.ISBN != nil {
			hit = utils.ContainsFold(*b.ISBN, f.Search)
		}
		if !hit {
			return false
		}
	}
	return true
}
