package domain

// Role identifies a commission beneficiary.
type Role string

const (
	RoleHunter     Role = "HUNTER"
	RoleConsultant Role = "CONSULTANT"
	RoleBroker     Role = "BROKER"
	RoleSystem     Role = "SYSTEM"
)

// AllRoles lists the beneficiary roles in split order. The rounding
// remainder always lands on the last role (SYSTEM), never on a human
// beneficiary.
var AllRoles = []Role{RoleHunter, RoleConsultant, RoleBroker, RoleSystem}

// IsValid reports whether the role is one of the closed set.
func (r Role) IsValid() bool {
	switch r {
	case RoleHunter, RoleConsultant, RoleBroker, RoleSystem:
		return true
	}
	return false
}

// CommissionAllocation is one role's slice of a snapshot's pool.
// All amounts are integer minor currency units.
type CommissionAllocation struct {
	ID            string
	SnapshotID    string
	Role          Role
	UserID        *string // nil for SYSTEM
	BasisPoints   int64
	AmountMinor   int64
	PaidMinor     int64
	ReversedMinor int64
}

// OutstandingMinor is what remains payable on the allocation.
func (a *CommissionAllocation) OutstandingMinor() int64 {
	return a.AmountMinor - a.PaidMinor - a.ReversedMinor
}

// CanApplyPayout checks a payout amount against the outstanding balance.
func (a *CommissionAllocation) CanApplyPayout(amountMinor int64) error {
	if amountMinor <= 0 {
		return ErrInvalidAmount
	}
	if amountMinor > a.OutstandingMinor() {
		return ErrOverpayment
	}
	return nil
}
