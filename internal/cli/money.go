package cli

import (
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// formatAmount renders signed minor units as a localized decimal with
// the currency code, e.g. -120000 -> "-1,200.00 USD".
func formatAmount(minor int64, currency string) string {
	p := message.NewPrinter(language.English)
	sign := ""
	if minor < 0 {
		sign = "-"
		minor = -minor
	}
	units := float64(minor) / 100
	return p.Sprintf("%s%v %s", sign,
		number.Decimal(units, number.MinFractionDigits(2), number.MaxFractionDigits(2)),
		currency)
}

// parseAmount converts a decimal string ("-45", "12.5", "0.07") into
// signed minor units without going through floats.
func parseAmount(raw string) (int64, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0, fmt.Errorf("amount is required")
	}
	negative := false
	switch s[0] {
	case '-':
		negative = true
		s = s[1:]
	case '+':
		s = s[1:]
	}

	whole, frac, _ := strings.Cut(s, ".")
	if whole == "" {
		whole = "0"
	}
	if len(frac) > 2 {
		return 0, fmt.Errorf("amount %q has more than two decimal places", raw)
	}
	for len(frac) < 2 {
		frac += "0"
	}

	units, err := strconv.ParseInt(whole, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid amount %q", raw)
	}
	cents, err := strconv.ParseInt(frac, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid amount %q", raw)
	}

	minor := units*100 + cents
	if negative {
		minor = -minor
	}
	return minor, nil
}
