package model

import (
	"regexp"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"github.com/google/uuid"

	"bookrental-backend/internal/shared/utils"
)

var phonePattern = regexp.MustCompile(`^\+?[0-9][0-9 \-]{5,18}[0-9]$`)

// ========================================
// REQUEST DTOs
// ========================================

// CreateReaderRequest has no discount field: the percentage always comes
// from the category.
type CreateReaderRequest struct {
	FirstName  string   `json:"first_name"`
	LastName   string   `json:"last_name"`
	MiddleName *string  `json:"middle_name"`
	Phone      string   `json:"phone"`
	Email      *string  `json:"email"`
	Address    *string  `json:"address"`
	Category   Category `json:"category"`
}

func (r CreateReaderRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.FirstName, validation.Required, validation.Length(1, 100)),
		validation.Field(&r.LastName, validation.Required, validation.Length(1, 100)),
		validation.Field(&r.MiddleName, validation.Length(0, 100)),
		validation.Field(&r.Phone, validation.Required, validation.Match(phonePattern).Error("invalid phone number")),
		validation.Field(&r.Email, utils.NotBlankPtr, is.EmailFormat),
		validation.Field(&r.Address, validation.Length(0, 500)),
		validation.Field(&r.Category, validation.In(Categories()...).Error("must be one of regular, student, senior, employee")),
	)
}

func (r CreateReaderRequest) ToReader(now time.Time) *Reader {
	category := r.Category
	if category == "" {
		category = CategoryRegular
	}

	reader := &Reader{
		ID:         uuid.New(),
		FirstName:  strings.TrimSpace(r.FirstName),
		LastName:   strings.TrimSpace(r.LastName),
		MiddleName: utils.TrimToNil(r.MiddleName),
		Phone:      strings.TrimSpace(r.Phone),
		Email:      normalizeEmail(r.Email),
		Address:    utils.TrimToNil(r.Address),
		Category:   category,
		IsActive:   true,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	reader.ApplyCategory()
	return reader
}

// UpdateReaderRequest is a partial update
type UpdateReaderRequest struct {
	FirstName  *string   `json:"first_name"`
	LastName   *string   `json:"last_name"`
	MiddleName *string   `json:"middle_name"`
	Phone      *string   `json:"phone"`
	Email      *string   `json:"email"`
	Address    *string   `json:"address"`
	Category   *Category `json:"category"`
	IsActive   *bool     `json:"is_active"`
}

func (r UpdateReaderRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.FirstName, utils.NotBlankPtr, validation.Length(1, 100)),
		validation.Field(&r.LastName, utils.NotBlankPtr, validation.Length(1, 100)),
		validation.Field(&r.MiddleName, validation.Length(0, 100)),
		validation.Field(&r.Phone, utils.NotBlankPtr, validation.Match(phonePattern).Error("invalid phone number")),
		validation.Field(&r.Email, is.EmailFormat),
		validation.Field(&r.Address, validation.Length(0, 500)),
		validation.Field(&r.Category, validation.NilOrNotEmpty, validation.In(Categories()...).Error("must be one of regular, student, senior, employee")),
	)
}

// Apply merges the request into reader. An empty email clears it.
func (r UpdateReaderRequest) Apply(reader *Reader) error {
	if r.FirstName != nil {
		reader.FirstName = strings.TrimSpace(*r.FirstName)
	}
	if r.LastName != nil {
		reader.LastName = strings.TrimSpace(*r.LastName)
	}
	if r.MiddleName != nil {
		reader.MiddleName = utils.TrimToNil(r.MiddleName)
	}
	if r.Phone != nil {
		reader.Phone = strings.TrimSpace(*r.Phone)
	}
	if r.Email != nil {
		reader.Email = normalizeEmail(r.Email)
	}
	if r.Address != nil {
		reader.Address = utils.TrimToNil(r.Address)
	}
	if r.Category != nil {
		reader.Category = *r.Category
	}
	if r.IsActive != nil {
		reader.IsActive = *r.IsActive
	}
	reader.ApplyCategory()
	return nil
}

func normalizeEmail(email *string) *string {
	trimmed := utils.TrimToNil(email)
	if trimmed == nil {
		return nil
	}
	lower := strings.ToLower(*trimmed)
	return &lower
}

// ========================================
// FILTER
// ========================================

type ReaderFilter struct {
	Search          string
	Category        Category
	IncludeInactive bool
	Page            int
	Limit           int
}

func (f *ReaderFilter) Normalize() {
	f.Page, f.Limit = utils.NormalizePage(f.Page, f.Limit)
	f.Search = strings.TrimSpace(f.Search)
}

// Matches evaluates the filter in memory; the SQL builder mirrors it
func (f ReaderFilter) Matches(r *Reader) bool {
	if !f.IncludeInactive && !r.IsActive {
		return false
	}
	if f.Category != "" && r.Category != f.Category {
		return false
	}
	if f.Search != "" {
		hit := utils.ContainsFold(r.FullName(), f.Search) ||
			utils.ContainsFold(r.Phone, f.Search)
		if !hit && r.Email != nil {
			hit = utils.ContainsFold(*r.Email, f.Search)
		}
		if !hit {
			return false
		}
	}
	return true
}
