package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAmount(t *testing.T) {
	cases := []struct {
		in   string
		want int64
	}{
		{"12", 1200},
		{"12.5", 1250},
		{"12.50", 1250},
		{"-45.80", -4580},
		{"0.07", 7},
		{"+3", 300},
		{"-1200", -120000},
		{" 9.99 ", 999},
	}
	for _, tc := range cases {
		t.Run(tc.in, func(t *testing.T) {
			got, err := parseAmount(tc.in)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestParseAmountRejects(t *testing.T) {
	for _, in := range []string{"", "abc", "1.234", "12,50", "1.2.3"} {
		t.Run(in, func(t *testing.T) {
			_, err := parseAmount(in)
			assert.Error(t, err)
		})
	}
}

func TestFormatAmount(t *testing.T) {
	assert.Equal(t, "-1,200.00 USD", formatAmount(-120000, "USD"))
	assert.Equal(t, "0.07 EUR", formatAmount(7, "EUR"))
	assert.Equal(t, "1,234,567.89 USD", formatAmount(123456789, "USD"))
	assert.Equal(t, "0.00 USD", formatAmount(0, "USD"))
}
