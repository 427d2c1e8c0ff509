package utils

import (
	"errors"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

func init() {
	// Monetary fields go over the wire as JSON numbers
	decimal.MarshalJSONWithoutQuotes = true
}

var (
	errNegativeAmount = errors.New("must be greater than or equal to 0")
	errBlank          = errors.New("cannot be blank")
	errNilUUID        = errors.New("must be a valid id")
)

// NonNegativeDecimal validates decimal.Decimal and *decimal.Decimal values
var NonNegativeDecimal = validation.By(func(value interface{}) error {
	switch v := value.(type) {
	case decimal.Decimal:
		if v.IsNegative() {
			return errNegativeAmount
		}
	case *decimal.Decimal:
		if v != nil && v.IsNegative() {
			return errNegativeAmount
		}
	}
	return nil
})

// NotBlankPtr rejects optional strings that are present but only whitespace
var NotBlankPtr = validation.By(func(value interface{}) error {
	s, ok := value.(*string)
	if !ok || s == nil {
		return nil
	}
	if strings.TrimSpace(*s) == "" {
		return errBlank
	}
	return nil
})

// NotNilUUID rejects the zero UUID, which ozzo's Required cannot detect on arrays
var NotNilUUID = validation.By(func(value interface{}) error {
	if id, ok := value.(uuid.UUID); ok && id == uuid.Nil {
		return errNilUUID
	}
	return nil
})
