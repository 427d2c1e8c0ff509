package utils

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestBillableDays(t *testing.T) {
	start := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		end  time.Time
		want int
	}{
		{"same instant", start, 1},
		{"end before start", start.Add(-time.Hour), 1},
		{"few hours", start.Add(3 * time.Hour), 1},
		{"exactly one day", start.Add(Day), 1},
		{"one day and a minute", start.Add(Day + time.Minute), 2},
		{"two weeks", start.AddDate(0, 0, 14), 14},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, BillableDays(start, tt.end))
		})
	}
}

func TestApplyPercentageOff(t *testing.T) {
	base := decimal.RequireFromString("35.00")

	assert.True(t, decimal.RequireFromString("29.75").Equal(ApplyPercentageOff(base, 15)))
	assert.True(t, decimal.RequireFromString("28.00").Equal(ApplyPercentageOff(base, 20)))
	assert.True(t, base.Equal(ApplyPercentageOff(base, 0)))
	assert.True(t, decimal.Zero.Equal(ApplyPercentageOff(base, 100)))
	assert.True(t, decimal.Zero.Equal(ApplyPercentageOff(decimal.NewFromInt(-10), 10)))
}

func TestRoundMoney(t *testing.T) {
	assert.Equal(t, "1.01", RoundMoney(decimal.RequireFromString("1.005")).StringFixed(2))
	assert.Equal(t, "2.50", RoundMoney(decimal.RequireFromString("2.4999")).StringFixed(2))
}

func TestPagination(t *testing.T) {
	page, limit := NormalizePage(0, 500)
	assert.Equal(t, 1, page)
	assert.Equal(t, MaxLimit, limit)

	page, limit = NormalizePage(3, 0)
	assert.Equal(t, 3, page)
	assert.Equal(t, DefaultLimit, limit)

	assert.Equal(t, 40, Offset(3, 20))
	assert.Equal(t, 1, TotalPages(0, 20))
	assert.Equal(t, 3, TotalPages(41, 20))
}

func TestTrimToNil(t *testing.T) {
	assert.Nil(t, TrimToNil(nil))
	assert.Nil(t, TrimToNil(StringPtr("   ")))
	assert.Equal(t, "abc", *TrimToNil(StringPtr(" abc ")))
}
