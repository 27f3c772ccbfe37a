package usecase

import "strconv"

// formatMinor renders a minor-unit amount as its wire representation.
func formatMinor(amountMinor int64) string {
	return strconv.FormatInt(amountMinor, 10)
}
