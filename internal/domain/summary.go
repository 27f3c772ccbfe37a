package domain

// AllocationSummaryItem is one row of a beneficiary's commission summary,
// drawn from a deal's authoritative snapshot.
type AllocationSummaryItem struct {
	DealID        string
	SnapshotID    string
	AllocationID  string
	Role          Role
	Currency      string
	AmountMinor   int64
	PaidMinor     int64
	ReversedMinor int64
}

// OutstandingMinor is what remains payable on the item.
func (i *AllocationSummaryItem) OutstandingMinor() int64 {
	return i.AmountMinor - i.PaidMinor - i.ReversedMinor
}
