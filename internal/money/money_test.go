package money

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name     string
		value    string
		currency string
		want     int64
		wantErr  bool
	}{
		{name: "two decimals", value: "12.34", currency: "USD", want: 1234},
		{name: "whole number", value: "100", currency: "EUR", want: 10000},
		{name: "one decimal", value: "0.5", currency: "USD", want: 50},
		{name: "zero-exponent currency", value: "1500", currency: "JPY", want: 1500},
		{name: "three-exponent currency", value: "1.234", currency: "KWD", want: 1234},
		{name: "negative", value: "-3.10", currency: "USD", want: -310},
		{name: "too much precision", value: "1.234", currency: "USD", wantErr: true},
		{name: "fractional yen", value: "10.5", currency: "JPY", wantErr: true},
		{name: "not a number", value: "ten", currency: "USD", wantErr: true},
		{name: "empty", value: "", currency: "USD", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(tt.value, tt.currency)
			if tt.wantErr {
				require.ErrorIs(t, err, ErrInvalidAmount)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFormat(t *testing.T) {
	assert.Equal(t, "12.34", Format(1234, "USD"))
	assert.Equal(t, "0.05", Format(5, "USD"))
	assert.Equal(t, "1500", Format(1500, "JPY"))
	assert.Equal(t, "1.234", Format(1234, "KWD"))
	assert.Equal(t, "-3.10", Format(-310, "USD"))
}

func TestParseFormatRoundTrip(t *testing.T) {
	for _, amount := range []int64{0, 1, 99, 100, 12345, -250} {
		s := Format(amount, "USD")
		got, err := Parse(s, "USD")
		require.NoError(t, err)
		assert.Equal(t, amount, got)
	}
}

func TestValidCurrency(t *testing.T) {
	assert.True(t, ValidCurrency("USD"))
	assert.True(t, ValidCurrency("SAR"))
	assert.False(t, ValidCurrency("usd"))
	assert.False(t, ValidCurrency("US"))
	assert.False(t, ValidCurrency("DOLLARS"))
	assert.False(t, ValidCurrency(""))
}
