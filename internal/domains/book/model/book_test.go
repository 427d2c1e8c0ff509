package model

import (
	"testing"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bookrental-backend/internal/shared/utils"
)

func newBook(total, available int) *Book {
	return &Book{TotalCopies: total, AvailableCopies: available, IsActive: true}
}

func TestBook_TakeAndReturnKeepBounds(t *testing.T) {
	b := newBook(2, 2)

	require.NoError(t, b.TakeCopy())
	require.NoError(t, b.TakeCopy())
	assert.ErrorIs(t, b.TakeCopy(), ErrInventoryExhausted)
	assert.Equal(t, 0, b.AvailableCopies)

	require.NoError(t, b.ReturnCopy())
	require.NoError(t, b.ReturnCopy())
	assert.ErrorIs(t, b.ReturnCopy(), ErrInventoryOverflow)
	assert.Equal(t, 2, b.AvailableCopies)
	assert.NoError(t, b.ValidateInventory())
}

func TestBook_InactiveIsNotAvailable(t *testing.T) {
	b := newBook(3, 3)
	b.IsActive = false

	assert.False(t, b.IsAvailable())
	assert.ErrorIs(t, b.TakeCopy(), ErrInventoryExhausted)
}

func TestBook_ResizeCopies(t *testing.T) {
	tests := []struct {
		name          string
		total, avail  int
		newTotal      int
		wantAvailable int
		wantErr       bool
	}{
		{"grow", 3, 1, 5, 3, false},
		{"shrink with copies in stock", 5, 4, 3, 2, false},
		{"shrink below rented out", 5, 1, 3, 0, true},
		{"zero total", 2, 2, 0, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := newBook(tt.total, tt.avail)
			err := b.ResizeCopies(tt.newTotal)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidInventoryState)
				assert.Equal(t, tt.total, b.TotalCopies)
				assert.Equal(t, tt.avail, b.AvailableCopies)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.newTotal, b.TotalCopies)
			assert.Equal(t, tt.wantAvailable, b.AvailableCopies)
		})
	}
}

func TestCreateBookRequest_Validate(t *testing.T) {
	valid := CreateBookRequest{
		Title:             "Dune",
		Author:            "Frank Herbert",
		Genre:             "sci-fi",
		DepositAmount:     decimal.NewFromInt(20),
		RentalPricePerDay: decimal.RequireFromString("2.50"),
		TotalCopies:       2,
	}
	assert.NoError(t, valid.Validate())

	bad := valid
	bad.Title = ""
	bad.RentalPricePerDay = decimal.NewFromInt(-1)
	bad.TotalCopies = 0

	err := bad.Validate()
	var errs validation.Errors
	require.ErrorAs(t, err, &errs)
	assert.Contains(t, errs, "title")
	assert.Contains(t, errs, "rental_price_per_day")
	assert.Contains(t, errs, "total_copies")
}

func TestCreateBookRequest_ToBook(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	b := CreateBookRequest{Title: " Dune ", Author: "Herbert", Genre: "sci-fi", TotalCopies: 4}.ToBook(now)

	assert.Equal(t, "Dune", b.Title)
	assert.Equal(t, 4, b.AvailableCopies)
	assert.True(t, b.IsActive)
	assert.Equal(t, now, b.CreatedAt)
}

func TestUpdateBookRequest_Apply(t *testing.T) {
	b := newBook(3, 1)
	b.Title = "Old"

	total := 4
	require.NoError(t, UpdateBookRequest{Title: utils.StringPtr("New"), TotalCopies: &total}.Apply(b))
	assert.Equal(t, "New", b.Title)
	assert.Equal(t, 2, b.AvailableCopies)

	total = 1
	assert.ErrorIs(t, UpdateBookRequest{TotalCopies: &total}.Apply(b), ErrInvalidInventoryState)
}

func TestUpdateBookRequest_ValidateISBN(t *testing.T) {
	assert.Error(t, UpdateBookRequest{ISBN: utils.StringPtr("123")}.Validate())
	assert.Error(t, UpdateBookRequest{ISBN: utils.StringPtr("978-0-441-17271-9-000000")}.Validate())
	assert.NoError(t, UpdateBookRequest{ISBN: utils.StringPtr("978-0441172719")}.Validate())
	assert.NoError(t, UpdateBookRequest{}.Validate())
}

func TestBookFilter_Matches(t *testing.T) {
	b := &Book{Title: "Dune", Author: "Frank Herbert", Genre: "Sci-Fi", TotalCopies: 1, AvailableCopies: 0, IsActive: true}
	no := false

	assert.True(t, BookFilter{Genre: "sci-fi"}.Matches(b))
	assert.True(t, BookFilter{Author: "herb"}.Matches(b))
	assert.True(t, BookFilter{Search: "dun"}.Matches(b))
	assert.True(t, BookFilter{Available: &no}.Matches(b))
	assert.False(t, BookFilter{Search: "tolkien"}.Matches(b))

	b.IsActive = false
	assert.False(t, BookFilter{}.Matches(b))
	assert.True(t, BookFilter{IncludeInactive: true}.Matches(b))
}
