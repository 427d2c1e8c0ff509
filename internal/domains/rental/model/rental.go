package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"bookrental-backend/internal/shared/utils"
)

type Status string

const (
	StatusActive   Status = "active"
	StatusOverdue  Status = "overdue"
	StatusReturned Status = "returned"
)

func (s Status) IsValid() bool {
	switch s {
	case StatusActive, StatusOverdue, StatusReturned:
		return true
	}
	return false
}

// Rental is one copy of a book lent to a reader. Pricing fields are a
// snapshot of the book at issue time.
type Rental struct {
	ID                 uuid.UUID  `json:"id"`
	BookID             uuid.UUID  `json:"book_id"`
	ReaderID           uuid.UUID  `json:"reader_id"`
	IssueDate          time.Time  `json:"issue_date"`
	ExpectedReturnDate time.Time  `json:"expected_return_date"`
	ActualReturnDate   *time.Time `json:"actual_return_date"`

	DepositAmount     decimal.Decimal `json:"deposit_amount"`
	RentalPricePerDay decimal.Decimal `json:"rental_price_per_day"`
	FineAmount        decimal.Decimal `json:"fine_amount"`
	DiscountAmount    decimal.Decimal `json:"discount_amount"`
	TotalAmount       decimal.Decimal `json:"total_amount"`

	Status Status  `json:"status"`
	Notes  *string `json:"notes,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (r *Rental) IsReturned() bool {
	return r.ActualReturnDate != nil
}

// ========================================
// DERIVATIONS (pure)
// ========================================

// DeriveStatus: returned wins over any date comparison, otherwise overdue
// once now is past the expected return date.
func DeriveStatus(r *Rental, now time.Time) Status {
	if r.ActualReturnDate != nil {
		return StatusReturned
	}
	if now.After(r.ExpectedReturnDate) {
		return StatusOverdue
	}
	return StatusActive
}

// RentalDays counts billable days up to the return date, or now while out
func RentalDays(r *Rental, now time.Time) int {
	end := now
	if r.ActualReturnDate != nil {
		end = *r.ActualReturnDate
	}
	return utils.BillableDays(r.IssueDate, end)
}

// ComputeTotalAmount = price per day * rental days + fine - discount.
// The result is not clamped: a discount granted on the planned period can
// exceed the charge for an early return.
func ComputeTotalAmount(r *Rental, now time.Time) decimal.Decimal {
	days := decimal.NewFromInt(int64(RentalDays(r, now)))
	total := r.RentalPricePerDay.Mul(days).Add(r.FineAmount).Sub(r.DiscountAmount)
	return utils.RoundMoney(total)
}

// Refresh recomputes every derived field; called before each save
func (r *Rental) Refresh(now time.Time) {
	r.Status = DeriveStatus(r, now)
	r.TotalAmount = ComputeTotalAmount(r, now)
}

// RefreshStatus is applied on every read
func (r *Rental) RefreshStatus(now time.Time) {
	r.Status = DeriveStatus(r, now)
}

// ========================================
// PRICING
// ========================================

// Discounter is satisfied by a reader: it knows its own percentage
type Discounter interface {
	DiscountedPrice(base decimal.Decimal) decimal.Decimal
}

// Quote is the charge computed at issue time
type Quote struct {
	RentalDays     int
	BaseCost       decimal.Decimal
	DiscountAmount decimal.Decimal
}

// QuoteCharges prices the planned period from issue to expected return
func QuoteCharges(pricePerDay decimal.Decimal, issue, expected time.Time, d Discounter) Quote {
	days := utils.BillableDays(issue, expected)
	base := utils.RoundMoney(pricePerDay.Mul(decimal.NewFromInt(int64(days))))
	discount := utils.RoundMoney(utils.NonNegative(base.Sub(d.DiscountedPrice(base))))
	return Quote{RentalDays: days, BaseCost: base, DiscountAmount: discount}
}

// Snapshot is the book data copied onto a rental
type Snapshot struct {
	BookID            uuid.UUID
	DepositAmount     decimal.Decimal
	RentalPricePerDay decimal.Decimal
}

// NewRental issues a rental at now with its charges quoted against d
func NewRental(book Snapshot, readerID uuid.UUID, expected time.Time, notes *string, d Discounter, now time.Time) *Rental {
	quote := QuoteCharges(book.RentalPricePerDay, now, expected, d)

	r := &Rental{
		ID:                 uuid.New(),
		BookID:             book.BookID,
		ReaderID:           readerID,
		IssueDate:          now,
		ExpectedReturnDate: expected,
		DepositAmount:      book.DepositAmount,
		RentalPricePerDay:  book.RentalPricePerDay,
		FineAmount:         decimal.Zero,
		DiscountAmount:     quote.DiscountAmount,
		Notes:              utils.TrimToNil(notes),
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	r.Refresh(now)
	return r
}

// Finalize closes the rental at now. Negative fines are treated as zero.
func (r *Rental) Finalize(now time.Time, fine decimal.Decimal, notes *string) error {
	if r.IsReturned() {
		return ErrAlreadyReturned
	}

	returnedAt := now
	r.ActualReturnDate = &returnedAt
	r.FineAmount = utils.RoundMoney(utils.NonNegative(fine))
	if n := utils.TrimToNil(notes); n != nil {
		r.Notes = n
	}
	r.UpdatedAt = now
	r.Refresh(now)
	return nil
}

// ========================================
// REPORTING
// ========================================

type Statistics struct {
	ActiveCount  int64           `json:"active_count"`
	OverdueCount int64           `json:"overdue_count"`
	TotalCount   int64           `json:"total_count"`
	TotalRevenue decimal.Decimal `json:"total_revenue"`
	GeneratedAt  time.Time       `json:"generated_at"`
}

// InventoryMismatch is a book whose counters disagree with its open rentals
type InventoryMismatch struct {
	BookID            uuid.UUID `json:"book_id"`
	Title             string    `json:"title"`
	CopiesOut         int       `json:"copies_out"`
	UnreturnedRentals int       `json:"unreturned_rentals"`
}
