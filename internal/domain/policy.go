package domain

import (
	"fmt"
	"time"
)

// CalcMethod selects how the commission pool is derived from a deal.
type CalcMethod string

const (
	CalcMethodPercentage CalcMethod = "PERCENTAGE"
	CalcMethodFixed      CalcMethod = "FIXED"
)

// RoundingRule selects how fractional minor units are rounded per role share.
type RoundingRule string

const (
	RoundHalfUp    RoundingRule = "ROUND_HALF_UP"
	RoundingBanker RoundingRule = "BANKERS"
)

// TotalBasisPoints is the whole of a pool expressed in basis points.
const TotalBasisPoints = 10000

// CommissionPolicy is a versioned, immutable split configuration.
// "Editing" a policy creates a new row with a later EffectiveFrom;
// rows referenced by snapshots are never mutated.
type CommissionPolicy struct {
	ID                       string
	Name                     string
	CalcMethod               CalcMethod
	CommissionRateBasisPoint *int64 // set when CalcMethod is PERCENTAGE
	FixedCommissionMinor     *int64 // set when CalcMethod is FIXED
	Currency                 string
	HunterBp                 int64
	ConsultantBp             int64
	BrokerBp                 int64
	SystemBp                 int64
	RoundingRule             RoundingRule
	EffectiveFrom            time.Time
	CreatedAt                time.Time
}

// SplitFor returns the basis points assigned to a role.
func (p *CommissionPolicy) SplitFor(role Role) int64 {
	switch role {
	case RoleHunter:
		return p.HunterBp
	case RoleConsultant:
		return p.ConsultantBp
	case RoleBroker:
		return p.BrokerBp
	case RoleSystem:
		return p.SystemBp
	}
	return 0
}

// Validate checks the split total and calc-method-specific fields.
func (p *CommissionPolicy) Validate() error {
	total := p.HunterBp + p.ConsultantBp + p.BrokerBp + p.SystemBp
	if total != TotalBasisPoints {
		return fmt.Errorf("%w: got %d", ErrInvalidSplit, total)
	}

	for _, bp := range []int64{p.HunterBp, p.ConsultantBp, p.BrokerBp, p.SystemBp} {
		if bp < 0 {
			return fmt.Errorf("%w: negative role split", ErrInvalidSplit)
		}
	}

	switch p.CalcMethod {
	case CalcMethodPercentage:
		if p.CommissionRateBasisPoint == nil || *p.CommissionRateBasisPoint <= 0 || *p.CommissionRateBasisPoint > TotalBasisPoints {
			return fmt.Errorf("%w: commission rate basis points required for PERCENTAGE", ErrInvalidPolicy)
		}
	case CalcMethodFixed:
		if p.FixedCommissionMinor == nil || *p.FixedCommissionMinor <= 0 {
			return fmt.Errorf("%w: fixed commission amount required for FIXED", ErrInvalidPolicy)
		}
	default:
		return fmt.Errorf("%w: unknown calc method %q", ErrInvalidPolicy, p.CalcMethod)
	}

	if p.RoundingRule != RoundHalfUp && p.RoundingRule != RoundingBanker {
		return fmt.Errorf("%w: unknown rounding rule %q", ErrInvalidPolicy, p.RoundingRule)
	}

	return nil
}
