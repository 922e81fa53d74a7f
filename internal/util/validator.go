package util

import (
	"fmt"
	"regexp"
	"time"
)

const citizenIDDigits = 13

var nonDigitRe = regexp.MustCompile(`\D`)

// NormalizeCitizenID strips every non-digit character from s and reports
// whether the remainder is a valid 13-digit citizen id.
func NormalizeCitizenID(s string) (string, bool) {
	id := nonDigitRe.ReplaceAllString(s, "")
	return id, len(id) == citizenIDDigits
}

// ParseDate parses a YYYY-MM-DD date string.
func ParseDate(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, fmt.Errorf("date is empty")
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date format: %w", err)
	}
	return t, nil
}
