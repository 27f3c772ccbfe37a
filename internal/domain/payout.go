package domain

import "time"

// PayoutMethod records how money left the platform.
type PayoutMethod string

const (
	PayoutMethodBankTransfer PayoutMethod = "BANK_TRANSFER"
	PayoutMethodCash         PayoutMethod = "CASH"
	PayoutMethodOther        PayoutMethod = "OTHER"
)

// IsValid reports whether the method is one of the closed set.
func (m PayoutMethod) IsValid() bool {
	switch m {
	case PayoutMethodBankTransfer, PayoutMethodCash, PayoutMethodOther:
		return true
	}
	return false
}

// Payout is a recorded cash movement. Payouts are recorded, not executed;
// gateway integration lives outside this service.
type Payout struct {
	ID          string
	PaidAt      time.Time
	Method      PayoutMethod
	ReferenceNo *string
	CreatedBy   string
	CreatedAt   time.Time
}

// PayoutAllocationLink applies part of a payout to one allocation.
// AmountMinor never exceeds the allocation's outstanding balance at link
// time.
type PayoutAllocationLink struct {
	ID           string
	PayoutID     string
	AllocationID string
	AmountMinor  int64
}
