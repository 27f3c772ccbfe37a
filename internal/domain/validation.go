package domain

import (
	"fmt"
	"strings"
)

// Validation constants
const (
	MaxPolicyNameLength = 255
	MinPolicyNameLength = 1
	MaxMemoLength       = 2048
	// MaxAmountMinor caps single amounts at 10^12 minor units.
	MaxAmountMinor = int64(1_000_000_000_000)
)

// Valid currency codes (ISO 4217) the platform settles in.
var validCurrencies = map[string]bool{
	"TRY": true, "USD": true, "EUR": true, "GBP": true,
}

// ValidatePolicyName validates a policy display name.
func ValidatePolicyName(name string) error {
	name = strings.TrimSpace(name)

	if len(name) < MinPolicyNameLength {
		return fmt.Errorf("%w: name cannot be empty", ErrInvalidPolicy)
	}

	if len(name) > MaxPolicyNameLength {
		return fmt.Errorf("%w: name exceeds %d characters", ErrInvalidPolicy, MaxPolicyNameLength)
	}

	return nil
}

// ValidateCurrency validates a currency code.
func ValidateCurrency(currency string) error {
	currency = strings.ToUpper(strings.TrimSpace(currency))

	if !validCurrencies[currency] {
		return fmt.Errorf("%w: %s is not a supported currency code", ErrInvalidPolicy, currency)
	}

	return nil
}

// ValidateAmountMinor bounds a minor-unit amount.
func ValidateAmountMinor(amountMinor int64) error {
	if amountMinor <= 0 {
		return ErrInvalidAmount
	}

	if amountMinor > MaxAmountMinor {
		return fmt.Errorf("%w: maximum amount is %d minor units", ErrInvalidAmount, MaxAmountMinor)
	}

	return nil
}

// ValidatePagination validates and limits pagination parameters.
func ValidatePagination(limit, offset int) (int, int) {
	const MaxPageSize = 1000
	const DefaultPageSize = 50

	if limit <= 0 {
		limit = DefaultPageSize
	}

	if limit > MaxPageSize {
		limit = MaxPageSize
	}

	if offset < 0 {
		offset = 0
	}

	return limit, offset
}
