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

func TestDiscountFor(t *testing.T) {
	tests := []struct {
		category Category
		want     int
	}{
		{CategoryStudent, 15},
		{CategorySenior, 20},
		{CategoryEmployee, 10},
		{CategoryRegular, 0},
		{Category("vip"), 0},
	}
	for _, tt := range tests {
		t.Run(string(tt.category), func(t *testing.T) {
			assert.Equal(t, tt.want, DiscountFor(tt.category))
		})
	}
}

func TestReader_ApplyCategoryOverridesAnyStoredValue(t *testing.T) {
	for _, c := range []Category{CategoryRegular, CategoryStudent, CategorySenior, CategoryEmployee} {
		r := &Reader{Category: c, DiscountPercentage: 99}
		r.ApplyCategory()
		assert.Equal(t, DiscountFor(c), r.DiscountPercentage, c)
	}
}

func TestReader_DiscountedPrice(t *testing.T) {
	r := &Reader{Category: CategoryStudent}
	r.ApplyCategory()

	base := decimal.RequireFromString("35.00")
	discounted := r.DiscountedPrice(base)
	assert.Equal(t, "29.75", discounted.StringFixed(2))
	assert.Equal(t, "5.25", base.Sub(discounted).StringFixed(2))

	r.DiscountPercentage = 150
	assert.True(t, r.DiscountedPrice(base).IsZero())
}

func TestReader_FullName(t *testing.T) {
	r := &Reader{FirstName: "Ada", LastName: "Lovelace"}
	assert.Equal(t, "Ada Lovelace", r.FullName())

	r.MiddleName = utils.StringPtr("King")
	assert.Equal(t, "Ada King Lovelace", r.FullName())
}

func TestCreateReaderRequest(t *testing.T) {
	req := CreateReaderRequest{
		FirstName: "Ada",
		LastName:  "Lovelace",
		Phone:     "+44 20 7946 0958",
		Email:     utils.StringPtr(" Ada@Example.com "),
		Category:  CategorySenior,
	}
	require.NoError(t, req.Validate())

	reader := req.ToReader(time.Now())
	assert.Equal(t, 20, reader.DiscountPercentage)
	assert.Equal(t, "ada@example.com", *reader.Email)
	assert.True(t, reader.IsActive)

	reader = CreateReaderRequest{FirstName: "A", LastName: "B", Phone: "5551234"}.ToReader(time.Now())
	assert.Equal(t, CategoryRegular, reader.Category)
	assert.Zero(t, reader.DiscountPercentage)
}

func TestCreateReaderRequest_Invalid(t *testing.T) {
	req := CreateReaderRequest{
		FirstName: "Ada",
		Phone:     "call me",
		Email:     utils.StringPtr("nope"),
		Category:  Category("vip"),
	}

	var errs validation.Errors
	require.ErrorAs(t, req.Validate(), &errs)
	assert.Contains(t, errs, "last_name")
	assert.Contains(t, errs, "phone")
	assert.Contains(t, errs, "email")
	assert.Contains(t, errs, "category")
}

func TestUpdateReaderRequest_ApplyRecomputesDiscount(t *testing.T) {
	r := &Reader{FirstName: "A", LastName: "B", Category: CategoryRegular, Email: utils.StringPtr("a@b.c")}
	student := CategoryStudent

	require.NoError(t, UpdateReaderRequest{Category: &student, Email: utils.StringPtr("")}.Apply(r))
	assert.Equal(t, 15, r.DiscountPercentage)
	assert.Nil(t, r.Email)
}

func TestReaderFilter_Matches(t *testing.T) {
	r := &Reader{FirstName: "Ada", LastName: "Lovelace", Phone: "5551234", Email: utils.StringPtr("ada@x.io"), Category: CategoryStudent, IsActive: true}

	assert.True(t, ReaderFilter{Search: "love"}.Matches(r))
	assert.True(t, ReaderFilter{Search: "555"}.Matches(r))
	assert.True(t, ReaderFilter{Search: "x.io"}.Matches(r))
	assert.True(t, ReaderFilter{Category: CategoryStudent}.Matches(r))
	assert.False(t, ReaderFilter{Category: CategorySenior}.Matches(r))

	r.IsActive = false
	assert.False(t, ReaderFilter{}.Matches(r))
}
