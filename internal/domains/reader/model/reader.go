package model

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"bookrental-backend/internal/shared/utils"
)

// Category drives the discount a reader gets on the rental base cost
type Category string

const (
	CategoryRegular  Category = "regular"
	CategoryStudent  Category = "student"
	CategorySenior   Category = "senior"
	CategoryEmployee Category = "employee"
)

var discountTable = map[Category]int{
	CategoryRegular:  0,
	CategoryStudent:  15,
	CategorySenior:   20,
	CategoryEmployee: 10,
}

func (c Category) IsValid() bool {
	_, ok := discountTable[c]
	return ok
}

func (c Category) String() string {
	return string(c)
}

// Categories lists every accepted category, for validation messages
func Categories() []interface{} {
	return []interface{}{CategoryRegular, CategoryStudent, CategorySenior, CategoryEmployee}
}

// DiscountFor returns the percentage for c; unknown categories get none
func DiscountFor(c Category) int {
	return discountTable[c]
}

type Reader struct {
	ID                 uuid.UUID `json:"id"`
	FirstName          string    `json:"first_name"`
	LastName           string    `json:"last_name"`
	MiddleName         *string   `json:"middle_name,omitempty"`
	Phone              string    `json:"phone"`
	Email              *string   `json:"email,omitempty"`
	Address            *string   `json:"address,omitempty"`
	Category           Category  `json:"category"`
	DiscountPercentage int       `json:"discount_percentage"`
	IsActive           bool      `json:"is_active"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}

// ApplyCategory recomputes the stored percentage from the category.
// Called before every save; the percentage is never taken from input.
func (r *Reader) ApplyCategory() {
	r.DiscountPercentage = DiscountFor(r.Category)
}

// FullName is "First Middle Last" without empty parts
func (r *Reader) FullName() string {
	parts := []string{r.FirstName}
	if r.MiddleName != nil && *r.MiddleName != "" {
		parts = append(parts, *r.MiddleName)
	}
	parts = append(parts, r.LastName)
	return strings.Join(parts, " ")
}

// DiscountedPrice applies the stored percentage to base, floored at zero
func (r *Reader) DiscountedPrice(base decimal.Decimal) decimal.Decimal {
	return utils.ApplyPercentageOff(base, r.DiscountPercentage)
}

// ReaderResponse exposes derived fields
type ReaderResponse struct {
	Reader
	FullName string `json:"full_name"`
}

func NewReaderResponse(r *Reader) ReaderResponse {
	return ReaderResponse{Reader: *r, FullName: r.FullName()}
}

func NewReaderResponses(readers []Reader) []ReaderResponse {
	out := make([]ReaderResponse, 0, len(readers))
	for i := range readers {
		out = append(out, NewReaderResponse(&readers[i]))
	}
	return out
}
