package model

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Book is a rentable title together with its copy counters.
// AvailableCopies must stay within [0, TotalCopies] after every mutation.
type Book struct {
	ID          uuid.UUID `json:"id"`
	Title       string    `json:"title"`
	Author      string    `json:"author"`
	Genre       string    `json:"genre"`
	Description *string   `json:"description,omitempty"`
	ISBN        *string   `json:"isbn,omitempty"`

	// Pricing
	DepositAmount     decimal.Decimal `json:"deposit_amount"`
	RentalPricePerDay decimal.Decimal `json:"rental_price_per_day"`

	// Inventory
	TotalCopies     int  `json:"total_copies"`
	AvailableCopies int  `json:"available_copies"`
	IsActive        bool `json:"is_active"`
	Version         int  `json:"version"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// IsAvailable reports whether a copy can be handed out right now
func (b *Book) IsAvailable() bool {
	return b.IsActive && b.AvailableCopies > 0
}

// RentedCopies is the number of copies currently out
func (b *Book) RentedCopies() int {
	return b.TotalCopies - b.AvailableCopies
}

// ValidateInventory checks the copy counter bounds
func (b *Book) ValidateInventory() error {
	if b.TotalCopies < 1 || b.AvailableCopies < 0 || b.AvailableCopies > b.TotalCopies {
		return fmt.Errorf("%w: available=%d total=%d", ErrInvalidInventoryState, b.AvailableCopies, b.TotalCopies)
	}
	return nil
}

// TakeCopy decrements the available counter
func (b *Book) TakeCopy() error {
	if !b.IsAvailable() {
		return ErrInventoryExhausted
	}
	b.AvailableCopies--
	b.Version++
	return nil
}

// ReturnCopy increments the available counter
func (b *Book) ReturnCopy() error {
	if b.AvailableCopies >= b.TotalCopies {
		return ErrInventoryOverflow
	}
	b.AvailableCopies++
	b.Version++
	return nil
}

// ResizeCopies changes the total and shifts the available counter by the
// same delta, so copies already rented out stay accounted for.
func (b *Book) ResizeCopies(total int) error {
	delta := total - b.TotalCopies
	resized := *b
	resized.TotalCopies = total
	resized.AvailableCopies += delta
	if err := resized.ValidateInventory(); err != nil {
		return err
	}
	b.TotalCopies = resized.TotalCopies
	b.AvailableCopies = resized.AvailableCopies
	return nil
}

// BookResponse adds derived fields to the API representation
type BookResponse struct {
	Book
	IsAvailable bool `json:"is_available"`
}

func NewBookResponse(b *Book) BookResponse {
	return BookResponse{Book: *b, IsAvailable: b.IsAvailable()}
}

func NewBookResponses(books []Book) []BookResponse {
	out := make([]BookResponse, 0, len(books))
	for i := range books {
		out = append(out, NewBookResponse(&books[i]))
	}
	return out
}
