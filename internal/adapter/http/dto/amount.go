package dto

import (
	"fmt"
	"strconv"
)

// Monetary amounts cross the API as strings holding integer minor units,
// never as JSON numbers, so large values survive clients that parse JSON
// numbers as floats.

// ParseMinor parses a minor-unit amount string.
func ParseMinor(s string) (int64, error) {
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid minor-unit amount %q", s)
	}

	return v, nil
}

// FormatMinor formats a minor-unit amount as a string.
func FormatMinor(v int64) string {
	return strconv.FormatInt(v, 10)
}
