package domain

import (
	"github.com/shopspring/decimal"
)

// SplitPool divides a pool of minor units across the four beneficiary
// roles according to the policy's basis points and rounding rule. The
// result always sums to poolAmountMinor exactly: the signed rounding
// difference is absorbed by the SYSTEM share so no human beneficiary
// ever receives the remainder.
func SplitPool(poolAmountMinor int64, policy *CommissionPolicy) (map[Role]int64, error) {
	if poolAmountMinor <= 0 {
		return nil, ErrInvalidAmount
	}
	if err := policy.Validate(); err != nil {
		return nil, err
	}

	pool := decimal.NewFromInt(poolAmountMinor)
	total := decimal.NewFromInt(TotalBasisPoints)

	shares := make(map[Role]int64, len(AllRoles))

	var sum int64
	for _, role := range AllRoles {
		raw := pool.Mul(decimal.NewFromInt(policy.SplitFor(role))).Div(total)

		var rounded decimal.Decimal
		switch policy.RoundingRule {
		case RoundingBanker:
			rounded = raw.RoundBank(0)
		default:
			// ROUND_HALF_UP: fractional remainder >= 0.5 rounds up.
			rounded = raw.Round(0)
		}

		share := rounded.IntPart()
		shares[role] = share
		sum += share
	}

	// SYSTEM absorbs the rounding difference in either direction.
	shares[RoleSystem] += poolAmountMinor - sum

	// Half-up rounding can overshoot past the SYSTEM share on degenerate
	// splits; claw the deficit back from the other roles so no share goes
	// negative.
	if shares[RoleSystem] < 0 {
		deficit := -shares[RoleSystem]
		shares[RoleSystem] = 0
		for i := len(AllRoles) - 2; i >= 0 && deficit > 0; i-- {
			role := AllRoles[i]
			take := min(shares[role], deficit)
			shares[role] -= take
			deficit -= take
		}
	}

	return shares, nil
}

// DistributeOutstanding splits totalMinor across allocations in
// proportion to each allocation's outstanding balance, flooring each
// share and assigning the remainder to SYSTEM first (spilling to other
// roles in order when SYSTEM lacks capacity). The caller must ensure
// totalMinor does not exceed the summed outstanding.
func DistributeOutstanding(totalMinor int64, outstanding map[Role]int64) (map[Role]int64, error) {
	if totalMinor <= 0 {
		return nil, ErrInvalidAmount
	}

	var sumOut int64
	for _, out := range outstanding {
		if out < 0 {
			return nil, ErrInvalidAmount
		}
		sumOut += out
	}
	if totalMinor > sumOut {
		return nil, ErrOverreversal
	}

	totalDec := decimal.NewFromInt(totalMinor)
	sumDec := decimal.NewFromInt(sumOut)

	shares := make(map[Role]int64, len(outstanding))

	var assigned int64
	for _, role := range AllRoles {
		out, ok := outstanding[role]
		if !ok || out == 0 {
			continue
		}

		share := totalDec.Mul(decimal.NewFromInt(out)).Div(sumDec).Floor().IntPart()
		shares[role] = share
		assigned += share
	}

	remainder := totalMinor - assigned
	if remainder > 0 {
		order := []Role{RoleSystem, RoleHunter, RoleConsultant, RoleBroker}
		for _, role := range order {
			if remainder == 0 {
				break
			}
			capacity := outstanding[role] - shares[role]
			take := min(capacity, remainder)
			if take > 0 {
				shares[role] += take
				remainder -= take
			}
		}
	}

	return shares, nil
}
