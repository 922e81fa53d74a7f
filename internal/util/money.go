package util

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

var satangPerBaht = decimal.NewFromInt(100)

// ParseBaht converts a baht amount string like "1234.50" to satang.
// An empty string parses to 0. More than two decimal places is an error;
// so is a negative amount.
func ParseBaht(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, fmt.Errorf("invalid amount %q: %w", s, err)
	}
	if d.IsNegative() {
		return 0, fmt.Errorf("amount must not be negative: %s", s)
	}
	if d.Exponent() < -2 {
		return 0, fmt.Errorf("amount %q has more than two decimal places", s)
	}
	return d.Mul(satangPerBaht).IntPart(), nil
}

// FormatSatang renders a satang amount as a baht string with two decimals.
func FormatSatang(v int64) string {
	return strconv.FormatFloat(float64(v)/100.0, 'f', 2, 64)
}
