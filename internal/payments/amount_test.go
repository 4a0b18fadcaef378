package payments

import (
	"math"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToMinorUnits(t *testing.T) {
	tests := []struct {
		amount   string
		currency string
		want     int64
	}{
		{"100", "INR", 10000},
		{"19.999", "INR", 2000},
		{"19.994", "USD", 1999},
		{"0.005", "EUR", 1},
		{"1500.5", "JPY", 1501},
		{"1.2345", "KWD", 1235},
		{"10.10", "usd", 1010},
	}

	for _, tt := range tests {
		t.Run(tt.amount+" "+tt.currency, func(t *testing.T) {
			got, err := ToMinorUnits(decimal.RequireFromString(tt.amount), tt.currency)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestToMinorUnits_Int64Range(t *testing.T) {
	got, err := ToMinorUnits(decimal.RequireFromString("92233720368547758.07"), "INR")
	require.NoError(t, err)
	assert.Equal(t, int64(math.MaxInt64), got)

	got, err = ToMinorUnits(decimal.RequireFromString("-92233720368547758.08"), "INR")
	require.NoError(t, err)
	assert.Equal(t, int64(math.MinInt64), got)

	tests := []struct {
		amount   string
		currency string
	}{
		{"92233720368547758.08", "INR"},
		{"92233720368547758.075", "INR"},
		{"1e17", "INR"},
		{"1e21", "INR"},
		{"9223372036854775808", "JPY"},
		{"9223372036854775.808", "KWD"},
		{"-92233720368547758.09", "INR"},
	}
	for _, tt := range tests {
		t.Run(tt.amount+" "+tt.currency, func(t *testing.T) {
			_, err := ToMinorUnits(decimal.RequireFromString(tt.amount), tt.currency)
			assert.ErrorIs(t, err, ErrAmountOutOfRange)
		})
	}
}

func TestNormalizeCurrency(t *testing.T) {
	c, err := NormalizeCurrency(" inr ")
	require.NoError(t, err)
	assert.Equal(t, "INR", c)

	for _, bad := range []string{"", "IN", "INRR", "I1R", "€UR"} {
		_, err := NormalizeCurrency(bad)
		assert.Error(t, err, bad)
	}
}
