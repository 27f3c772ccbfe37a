package domain

import "time"

// EntryType classifies a ledger entry.
type EntryType string

const (
	EntryTypeAllocation EntryType = "ALLOCATION"
	EntryTypePayout     EntryType = "PAYOUT"
	EntryTypeReversal   EntryType = "REVERSAL"
	EntryTypeAdjustment EntryType = "ADJUSTMENT"
)

// Direction is the sign of a ledger entry.
type Direction string

const (
	DirectionCredit Direction = "CREDIT"
	DirectionDebit  Direction = "DEBIT"
)

// LedgerEntry is an append-only record of a monetary event. Entries are
// never updated or deleted; corrections are posted as new entries.
type LedgerEntry struct {
	ID          string
	DealID      string
	SnapshotID  *string // nil for deal-level adjustments and payouts
	EntryType   EntryType
	Direction   Direction
	AmountMinor int64
	OccurredAt  time.Time
	Memo        string
	ActorID     string
}

// Validate checks entry shape before it is appended.
func (e *LedgerEntry) Validate() error {
	if e.AmountMinor <= 0 {
		return ErrInvalidAmount
	}

	switch e.EntryType {
	case EntryTypeAllocation, EntryTypePayout, EntryTypeReversal, EntryTypeAdjustment:
	default:
		return ErrInvalidState
	}

	switch e.Direction {
	case DirectionCredit, DirectionDebit:
	default:
		return ErrInvalidState
	}

	return nil
}

// ConsistencyViolation describes one allocation or snapshot breaking the
// ledger balance invariant.
type ConsistencyViolation struct {
	SnapshotID    string
	AllocationID  string
	Detail        string
	AmountMinor   int64
	PaidMinor     int64
	ReversedMinor int64
}
