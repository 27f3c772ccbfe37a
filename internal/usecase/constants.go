package usecase

import "time"

const (
	// DefaultTransactionTimeout is the maximum duration for a database transaction
	// This prevents long-running transactions from blocking tables
	DefaultTransactionTimeout = 10 * time.Second

	// DefaultSLAWindow is how long a dispute may sit unattended before the
	// overdue sweep escalates it. Overridable via configuration.
	DefaultSLAWindow = 72 * time.Hour

	// IdempotencyKeyTTL is how long idempotency keys are cached
	IdempotencyKeyTTL = 24 * time.Hour

	// PolicyCacheTTL bounds staleness of the effective-policy cache; the
	// cache is also invalidated on every policy upsert.
	PolicyCacheTTL = 5 * time.Minute
)
