package dto

import (
	"time"

	"github.com/iho/splitledger/internal/domain"
	"github.com/iho/splitledger/internal/usecase"
)

// UpsertPolicyRequest represents a request to create a policy version.
type UpsertPolicyRequest struct {
	Name                 string     `json:"name"`
	CalcMethod           string     `json:"calc_method"`
	CommissionRateBp     *int64     `json:"commission_rate_bp,omitempty"`
	FixedCommissionMinor *string    `json:"fixed_commission_minor,omitempty"`
	Currency             string     `json:"currency"`
	HunterBp             int64      `json:"hunter_bp"`
	ConsultantBp         int64      `json:"consultant_bp"`
	BrokerBp             int64      `json:"broker_bp"`
	SystemBp             int64      `json:"system_bp"`
	RoundingRule         string     `json:"rounding_rule"`
	EffectiveFrom        *time.Time `json:"effective_from,omitempty"`
}

// ToUseCaseInput converts to use case input.
func (r *UpsertPolicyRequest) ToUseCaseInput() (usecase.UpsertPolicyInput, error) {
	var fixedMinor *int64
	if r.FixedCommissionMinor != nil {
		v, err := ParseMinor(*r.FixedCommissionMinor)
		if err != nil {
			return usecase.UpsertPolicyInput{}, err
		}
		fixedMinor = &v
	}

	return usecase.UpsertPolicyInput{
		Name:                     r.Name,
		CalcMethod:               domain.CalcMethod(r.CalcMethod),
		CommissionRateBasisPoint: r.CommissionRateBp,
		FixedCommissionMinor:     fixedMinor,
		Currency:                 r.Currency,
		HunterBp:                 r.HunterBp,
		ConsultantBp:             r.ConsultantBp,
		BrokerBp:                 r.BrokerBp,
		SystemBp:                 r.SystemBp,
		RoundingRule:             domain.RoundingRule(r.RoundingRule),
		EffectiveFrom:            r.EffectiveFrom,
	}, nil
}

// ComputeSnapshotRequest represents a request to compute a snapshot.
type ComputeSnapshotRequest struct {
	DealID          string            `json:"deal_id"`
	PoolAmountMinor string            `json:"pool_amount_minor"`
	Currency        string            `json:"currency"`
	Beneficiaries   map[string]string `json:"beneficiaries"`
}

// ToUseCaseInput converts to use case input; makerID comes from the
// actor header, not the body.
func (r *ComputeSnapshotRequest) ToUseCaseInput(makerID string) (usecase.ComputeSnapshotInput, error) {
	pool, err := ParseMinor(r.PoolAmountMinor)
	if err != nil {
		return usecase.ComputeSnapshotInput{}, err
	}

	beneficiaries := make(map[domain.Role]string, len(r.Beneficiaries))
	for role, userID := range r.Beneficiaries {
		beneficiaries[domain.Role(role)] = userID
	}

	return usecase.ComputeSnapshotInput{
		DealID:          r.DealID,
		PoolAmountMinor: pool,
		Currency:        r.Currency,
		MakerID:         makerID,
		Beneficiaries:   beneficiaries,
	}, nil
}

// DecisionRequest represents an approve or reject body.
type DecisionRequest struct {
	Note string `json:"note,omitempty"`
}

// ToUseCaseInput converts to use case input.
func (r *DecisionRequest) ToUseCaseInput(snapshotID, approverID string) usecase.DecisionInput {
	return usecase.DecisionInput{
		SnapshotID: snapshotID,
		ApproverID: approverID,
		Note:       r.Note,
	}
}

// ReverseRequest represents a reversal body. A missing amount means a
// full reversal of the remaining outstanding.
type ReverseRequest struct {
	Reason      string  `json:"reason"`
	AmountMinor *string `json:"amount_minor,omitempty"`
}

// ToUseCaseInput converts to use case input.
func (r *ReverseRequest) ToUseCaseInput(snapshotID, actorID string) (usecase.ReverseInput, error) {
	var amount *int64
	if r.AmountMinor != nil {
		v, err := ParseMinor(*r.AmountMinor)
		if err != nil {
			return usecase.ReverseInput{}, err
		}
		amount = &v
	}

	return usecase.ReverseInput{
		SnapshotID:  snapshotID,
		ActorID:     actorID,
		Reason:      r.Reason,
		AmountMinor: amount,
	}, nil
}

// PayoutLinkRequest is one allocation's share of a payout.
type PayoutLinkRequest struct {
	AllocationID string `json:"allocation_id"`
	AmountMinor  string `json:"amount_minor"`
}

// RecordPayoutRequest represents a request to record a payout.
type RecordPayoutRequest struct {
	PaidAt      time.Time           `json:"paid_at"`
	Method      string              `json:"method"`
	ReferenceNo *string             `json:"reference_no,omitempty"`
	Links       []PayoutLinkRequest `json:"links"`
}

// ToUseCaseInput converts to use case input.
func (r *RecordPayoutRequest) ToUseCaseInput(createdBy string) (usecase.RecordPayoutInput, error) {
	links := make([]usecase.PayoutLinkInput, 0, len(r.Links))
	for _, link := range r.Links {
		amount, err := ParseMinor(link.AmountMinor)
		if err != nil {
			return usecase.RecordPayoutInput{}, err
		}

		links = append(links, usecase.PayoutLinkInput{
			AllocationID: link.AllocationID,
			AmountMinor:  amount,
		})
	}

	return usecase.RecordPayoutInput{
		PaidAt:      r.PaidAt,
		Method:      domain.PayoutMethod(r.Method),
		ReferenceNo: r.ReferenceNo,
		CreatedBy:   createdBy,
		Links:       links,
	}, nil
}

// OpenDisputeRequest represents a request to open a dispute.
type OpenDisputeRequest struct {
	DealID        string  `json:"deal_id"`
	SnapshotID    *string `json:"snapshot_id,omitempty"`
	AgainstUserID *string `json:"against_user_id,omitempty"`
	Type          string  `json:"type"`
	Note          string  `json:"note,omitempty"`
}

// ToUseCaseInput converts to use case input.
func (r *OpenDisputeRequest) ToUseCaseInput(openerID string) usecase.OpenDisputeInput {
	return usecase.OpenDisputeInput{
		DealID:        r.DealID,
		SnapshotID:    r.SnapshotID,
		OpenerID:      openerID,
		AgainstUserID: r.AgainstUserID,
		Type:          domain.DisputeType(r.Type),
		Note:          r.Note,
	}
}

// SetDisputeStatusRequest represents a manual dispute transition.
type SetDisputeStatusRequest struct {
	Status string `json:"status"`
	Note   string `json:"note,omitempty"`
}

// ToUseCaseInput converts to use case input.
func (r *SetDisputeStatusRequest) ToUseCaseInput(disputeID string) usecase.SetStatusInput {
	return usecase.SetStatusInput{
		DisputeID: disputeID,
		NewStatus: domain.DisputeStatus(r.Status),
		Note:      r.Note,
	}
}

// CreatePeriodLockRequest represents a request to create a period lock.
type CreatePeriodLockRequest struct {
	PeriodFrom time.Time `json:"period_from"`
	PeriodTo   time.Time `json:"period_to"`
	Reason     string    `json:"reason"`
}

// ToUseCaseInput converts to use case input.
func (r *CreatePeriodLockRequest) ToUseCaseInput(createdBy string) usecase.CreateLockInput {
	return usecase.CreateLockInput{
		PeriodFrom: r.PeriodFrom,
		PeriodTo:   r.PeriodTo,
		Reason:     r.Reason,
		CreatedBy:  createdBy,
	}
}

// ReleasePeriodLockRequest represents a request to release a lock.
type ReleasePeriodLockRequest struct {
	Reason string `json:"reason,omitempty"`
}

// ToUseCaseInput converts to use case input.
func (r *ReleasePeriodLockRequest) ToUseCaseInput(lockID, releasedBy string) usecase.ReleaseLockInput {
	return usecase.ReleaseLockInput{
		LockID:     lockID,
		Reason:     r.Reason,
		ReleasedBy: releasedBy,
	}
}
