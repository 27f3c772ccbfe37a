package domain

import "errors"

var (
	// Policy errors
	ErrInvalidSplit   = errors.New("role splits must sum to exactly 10000 basis points")
	ErrInvalidPolicy  = errors.New("policy is missing required fields for its calculation method")
	ErrNoActivePolicy = errors.New("no commission policy effective at the given time")
	ErrPolicyNotFound = errors.New("policy not found")

	// Snapshot / approval errors
	ErrSnapshotNotFound = errors.New("commission snapshot not found")
	ErrSelfApproval     = errors.New("maker cannot approve their own snapshot")
	ErrInvalidState     = errors.New("operation not allowed in current state")

	// Allocation / money movement errors
	ErrAllocationNotFound = errors.New("commission allocation not found")
	ErrInvalidAmount      = errors.New("amount must be positive")
	ErrOverpayment        = errors.New("payout amount exceeds allocation outstanding balance")
	ErrOverreversal       = errors.New("reversal amount exceeds snapshot outstanding balance")
	ErrCrossDealPayout    = errors.New("payout links must all target allocations of a single deal")
	ErrDuplicateLink      = errors.New("duplicate allocation in payout links")
	ErrPayoutNotFound     = errors.New("payout not found")

	// Dispute errors
	ErrDisputeNotFound    = errors.New("dispute not found")
	ErrInvalidTransition  = errors.New("dispute status transition not allowed")
	ErrInvalidDisputeType = errors.New("unknown dispute type")

	// Period lock errors
	ErrPeriodLocked    = errors.New("operation falls inside an active period lock")
	ErrOverlappingLock = errors.New("an active lock already covers part of this period")
	ErrLockNotFound    = errors.New("period lock not found")
	ErrInvalidPeriod   = errors.New("period start must precede period end")
)
