package dto

import (
	"time"

	"github.com/iho/splitledger/internal/domain"
	"github.com/iho/splitledger/internal/usecase"
)

// ErrorResponse represents an error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// PolicyResponse represents a commission policy.
type PolicyResponse struct {
	ID                   string    `json:"id"`
	Name                 string    `json:"name"`
	CalcMethod           string    `json:"calc_method"`
	CommissionRateBp     *int64    `json:"commission_rate_bp,omitempty"`
	FixedCommissionMinor *string   `json:"fixed_commission_minor,omitempty"`
	Currency             string    `json:"currency"`
	HunterBp             int64     `json:"hunter_bp"`
	ConsultantBp         int64     `json:"consultant_bp"`
	BrokerBp             int64     `json:"broker_bp"`
	SystemBp             int64     `json:"system_bp"`
	RoundingRule         string    `json:"rounding_rule"`
	EffectiveFrom        time.Time `json:"effective_from"`
	CreatedAt            time.Time `json:"created_at"`
}

// PolicyFromDomain converts a domain policy to a response.
func PolicyFromDomain(p *domain.CommissionPolicy) PolicyResponse {
	var fixedMinor *string
	if p.FixedCommissionMinor != nil {
		s := FormatMinor(*p.FixedCommissionMinor)
		fixedMinor = &s
	}

	return PolicyResponse{
		ID:                   p.ID,
		Name:                 p.Name,
		CalcMethod:           string(p.CalcMethod),
		CommissionRateBp:     p.CommissionRateBasisPoint,
		FixedCommissionMinor: fixedMinor,
		Currency:             p.Currency,
		HunterBp:             p.HunterBp,
		ConsultantBp:         p.ConsultantBp,
		BrokerBp:             p.BrokerBp,
		SystemBp:             p.SystemBp,
		RoundingRule:         string(p.RoundingRule),
		EffectiveFrom:        p.EffectiveFrom,
		CreatedAt:            p.CreatedAt,
	}
}

// PoliciesFromDomain converts a slice of domain policies.
func PoliciesFromDomain(policies []*domain.CommissionPolicy) []PolicyResponse {
	out := make([]PolicyResponse, 0, len(policies))
	for _, p := range policies {
		out = append(out, PolicyFromDomain(p))
	}
	return out
}

// SnapshotResponse represents a commission snapshot.
type SnapshotResponse struct {
	ID              string     `json:"id"`
	DealID          string     `json:"deal_id"`
	Version         int64      `json:"version"`
	PolicyID        string     `json:"policy_id"`
	PoolAmountMinor string     `json:"pool_amount_minor"`
	Currency        string     `json:"currency"`
	Status          string     `json:"status"`
	MakerID         string     `json:"maker_id"`
	ApproverID      *string    `json:"approver_id,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	ApprovedAt      *time.Time `json:"approved_at,omitempty"`
}

// SnapshotFromDomain converts a domain snapshot to a response.
func SnapshotFromDomain(s *domain.CommissionSnapshot) SnapshotResponse {
	return SnapshotResponse{
		ID:              s.ID,
		DealID:          s.DealID,
		Version:         s.Version,
		PolicyID:        s.PolicyID,
		PoolAmountMinor: FormatMinor(s.PoolAmountMinor),
		Currency:        s.Currency,
		Status:          string(s.Status),
		MakerID:         s.MakerID,
		ApproverID:      s.ApproverID,
		CreatedAt:       s.CreatedAt,
		ApprovedAt:      s.ApprovedAt,
	}
}

// SnapshotsFromDomain converts a slice of domain snapshots.
func SnapshotsFromDomain(snapshots []*domain.CommissionSnapshot) []SnapshotResponse {
	out := make([]SnapshotResponse, 0, len(snapshots))
	for _, s := range snapshots {
		out = append(out, SnapshotFromDomain(s))
	}
	return out
}

// AllocationResponse represents a commission allocation.
type AllocationResponse struct {
	ID               string  `json:"id"`
	SnapshotID       string  `json:"snapshot_id"`
	Role             string  `json:"role"`
	UserID           *string `json:"user_id,omitempty"`
	BasisPoints      int64   `json:"basis_points"`
	AmountMinor      string  `json:"amount_minor"`
	PaidMinor        string  `json:"paid_minor"`
	ReversedMinor    string  `json:"reversed_minor"`
	OutstandingMinor string  `json:"outstanding_minor"`
}

// AllocationFromDomain converts a domain allocation to a response.
func AllocationFromDomain(a *domain.CommissionAllocation) AllocationResponse {
	return AllocationResponse{
		ID:               a.ID,
		SnapshotID:       a.SnapshotID,
		Role:             string(a.Role),
		UserID:           a.UserID,
		BasisPoints:      a.BasisPoints,
		AmountMinor:      FormatMinor(a.AmountMinor),
		PaidMinor:        FormatMinor(a.PaidMinor),
		ReversedMinor:    FormatMinor(a.ReversedMinor),
		OutstandingMinor: FormatMinor(a.OutstandingMinor()),
	}
}

// AllocationsFromDomain converts a slice of domain allocations.
func AllocationsFromDomain(allocations []*domain.CommissionAllocation) []AllocationResponse {
	out := make([]AllocationResponse, 0, len(allocations))
	for _, a := range allocations {
		out = append(out, AllocationFromDomain(a))
	}
	return out
}

// ComputeSnapshotResponse bundles a snapshot with its allocations.
type ComputeSnapshotResponse struct {
	Snapshot    SnapshotResponse     `json:"snapshot"`
	Allocations []AllocationResponse `json:"allocations"`
}

// ComputeSnapshotFromResult converts a use case result.
func ComputeSnapshotFromResult(res *usecase.ComputeSnapshotResult) ComputeSnapshotResponse {
	return ComputeSnapshotResponse{
		Snapshot:    SnapshotFromDomain(res.Snapshot),
		Allocations: AllocationsFromDomain(res.Allocations),
	}
}

// LedgerEntryResponse represents a ledger entry.
type LedgerEntryResponse struct {
	ID          string    `json:"id"`
	DealID      string    `json:"deal_id"`
	SnapshotID  *string   `json:"snapshot_id,omitempty"`
	EntryType   string    `json:"entry_type"`
	Direction   string    `json:"direction"`
	AmountMinor string    `json:"amount_minor"`
	OccurredAt  time.Time `json:"occurred_at"`
	Memo        string    `json:"memo,omitempty"`
	ActorID     string    `json:"actor_id"`
}

// LedgerEntryFromDomain converts a domain ledger entry to a response.
func LedgerEntryFromDomain(e *domain.LedgerEntry) LedgerEntryResponse {
	return LedgerEntryResponse{
		ID:          e.ID,
		DealID:      e.DealID,
		SnapshotID:  e.SnapshotID,
		EntryType:   string(e.EntryType),
		Direction:   string(e.Direction),
		AmountMinor: FormatMinor(e.AmountMinor),
		OccurredAt:  e.OccurredAt,
		Memo:        e.Memo,
		ActorID:     e.ActorID,
	}
}

// LedgerEntriesFromDomain converts a slice of domain ledger entries.
func LedgerEntriesFromDomain(entries []*domain.LedgerEntry) []LedgerEntryResponse {
	out := make([]LedgerEntryResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, LedgerEntryFromDomain(e))
	}
	return out
}

// ReverseResponse bundles the updated snapshot with the posted entries.
type ReverseResponse struct {
	Snapshot SnapshotResponse      `json:"snapshot"`
	Entries  []LedgerEntryResponse `json:"entries"`
}

// ReverseFromResult converts a use case result.
func ReverseFromResult(res *usecase.ReverseResult) ReverseResponse {
	return ReverseResponse{
		Snapshot: SnapshotFromDomain(res.Snapshot),
		Entries:  LedgerEntriesFromDomain(res.Entries),
	}
}

// PayoutResponse represents a payout.
type PayoutResponse struct {
	ID          string    `json:"id"`
	PaidAt      time.Time `json:"paid_at"`
	Method      string    `json:"method"`
	ReferenceNo *string   `json:"reference_no,omitempty"`
	CreatedBy   string    `json:"created_by"`
	CreatedAt   time.Time `json:"created_at"`
}

// PayoutFromDomain converts a domain payout to a response.
func PayoutFromDomain(p *domain.Payout) PayoutResponse {
	return PayoutResponse{
		ID:          p.ID,
		PaidAt:      p.PaidAt,
		Method:      string(p.Method),
		ReferenceNo: p.ReferenceNo,
		CreatedBy:   p.CreatedBy,
		CreatedAt:   p.CreatedAt,
	}
}

// PayoutLinkResponse represents a payout-to-allocation link.
type PayoutLinkResponse struct {
	ID           string `json:"id"`
	PayoutID     string `json:"payout_id"`
	AllocationID string `json:"allocation_id"`
	AmountMinor  string `json:"amount_minor"`
}

// PayoutLinksFromDomain converts a slice of domain payout links.
func PayoutLinksFromDomain(links []*domain.PayoutAllocationLink) []PayoutLinkResponse {
	out := make([]PayoutLinkResponse, 0, len(links))
	for _, l := range links {
		out = append(out, PayoutLinkResponse{
			ID:           l.ID,
			PayoutID:     l.PayoutID,
			AllocationID: l.AllocationID,
			AmountMinor:  FormatMinor(l.AmountMinor),
		})
	}
	return out
}

// DisputeResponse represents a dispute.
type DisputeResponse struct {
	ID             string    `json:"id"`
	DealID         string    `json:"deal_id"`
	SnapshotID     *string   `json:"snapshot_id,omitempty"`
	OpenerID       string    `json:"opener_id"`
	AgainstUserID  *string   `json:"against_user_id,omitempty"`
	Type           string    `json:"type"`
	Status         string    `json:"status"`
	SLADueAt       time.Time `json:"sla_due_at"`
	CreatedAt      time.Time `json:"created_at"`
	ResolutionNote string    `json:"resolution_note,omitempty"`
}

// DisputeFromDomain converts a domain dispute to a response.
func DisputeFromDomain(d *domain.Dispute) DisputeResponse {
	return DisputeResponse{
		ID:             d.ID,
		DealID:         d.DealID,
		SnapshotID:     d.SnapshotID,
		OpenerID:       d.OpenerID,
		AgainstUserID:  d.AgainstUserID,
		Type:           string(d.Type),
		Status:         string(d.Status),
		SLADueAt:       d.SLADueAt,
		CreatedAt:      d.CreatedAt,
		ResolutionNote: d.ResolutionNote,
	}
}

// DisputesFromDomain converts a slice of domain disputes.
func DisputesFromDomain(disputes []*domain.Dispute) []DisputeResponse {
	out := make([]DisputeResponse, 0, len(disputes))
	for _, d := range disputes {
		out = append(out, DisputeFromDomain(d))
	}
	return out
}

// EscalationResponse reports an SLA escalation sweep.
type EscalationResponse struct {
	Escalated int `json:"escalated"`
}

// PeriodLockResponse represents a period lock.
type PeriodLockResponse struct {
	ID         string     `json:"id"`
	PeriodFrom time.Time  `json:"period_from"`
	PeriodTo   time.Time  `json:"period_to"`
	Reason     string     `json:"reason,omitempty"`
	IsActive   bool       `json:"is_active"`
	CreatedBy  string     `json:"created_by"`
	CreatedAt  time.Time  `json:"created_at"`
	UnlockedAt *time.Time `json:"unlocked_at,omitempty"`
	UnlockedBy *string    `json:"unlocked_by,omitempty"`
}

// PeriodLockFromDomain converts a domain period lock to a response.
func PeriodLockFromDomain(l *domain.PeriodLock) PeriodLockResponse {
	return PeriodLockResponse{
		ID:         l.ID,
		PeriodFrom: l.PeriodFrom,
		PeriodTo:   l.PeriodTo,
		Reason:     l.Reason,
		IsActive:   l.IsActive,
		CreatedBy:  l.CreatedBy,
		CreatedAt:  l.CreatedAt,
		UnlockedAt: l.UnlockedAt,
		UnlockedBy: l.UnlockedBy,
	}
}

// PeriodLocksFromDomain converts a slice of domain period locks.
func PeriodLocksFromDomain(locks []*domain.PeriodLock) []PeriodLockResponse {
	out := make([]PeriodLockResponse, 0, len(locks))
	for _, l := range locks {
		out = append(out, PeriodLockFromDomain(l))
	}
	return out
}

// SummaryItemResponse is one allocation line in a user summary.
type SummaryItemResponse struct {
	DealID           string `json:"deal_id"`
	SnapshotID       string `json:"snapshot_id"`
	AllocationID     string `json:"allocation_id"`
	Role             string `json:"role"`
	Currency         string `json:"currency"`
	AmountMinor      string `json:"amount_minor"`
	PaidMinor        string `json:"paid_minor"`
	ReversedMinor    string `json:"reversed_minor"`
	OutstandingMinor string `json:"outstanding_minor"`
}

// UserSummaryResponse aggregates a user's commission position.
type UserSummaryResponse struct {
	UserID           string                `json:"user_id"`
	EarnedMinor      string                `json:"earned_minor"`
	PaidMinor        string                `json:"paid_minor"`
	ReversedMinor    string                `json:"reversed_minor"`
	OutstandingMinor string                `json:"outstanding_minor"`
	Items            []SummaryItemResponse `json:"items"`
}

// UserSummaryFromUseCase converts a use case summary.
func UserSummaryFromUseCase(s *usecase.UserSummary) UserSummaryResponse {
	items := make([]SummaryItemResponse, 0, len(s.Items))
	for _, item := range s.Items {
		items = append(items, SummaryItemResponse{
			DealID:           item.DealID,
			SnapshotID:       item.SnapshotID,
			AllocationID:     item.AllocationID,
			Role:             string(item.Role),
			Currency:         item.Currency,
			AmountMinor:      FormatMinor(item.AmountMinor),
			PaidMinor:        FormatMinor(item.PaidMinor),
			ReversedMinor:    FormatMinor(item.ReversedMinor),
			OutstandingMinor: FormatMinor(item.OutstandingMinor()),
		})
	}

	return UserSummaryResponse{
		UserID:           s.UserID,
		EarnedMinor:      FormatMinor(s.EarnedMinor),
		PaidMinor:        FormatMinor(s.PaidMinor),
		ReversedMinor:    FormatMinor(s.ReversedMinor),
		OutstandingMinor: FormatMinor(s.OutstandingMinor),
		Items:            items,
	}
}

// SnapshotDetailResponse is one snapshot version with its allocations.
type SnapshotDetailResponse struct {
	Snapshot    SnapshotResponse     `json:"snapshot"`
	Allocations []AllocationResponse `json:"allocations"`
}

// DealDetailResponse is the full commission picture of one deal.
type DealDetailResponse struct {
	DealID      string                   `json:"deal_id"`
	Snapshots   []SnapshotDetailResponse `json:"snapshots"`
	Ledger      []LedgerEntryResponse    `json:"ledger"`
	PayoutLinks []PayoutLinkResponse     `json:"payout_links"`
}

// DealDetailFromUseCase converts a use case deal detail.
func DealDetailFromUseCase(d *usecase.DealDetail) DealDetailResponse {
	snapshots := make([]SnapshotDetailResponse, 0, len(d.Snapshots))
	for _, detail := range d.Snapshots {
		snapshots = append(snapshots, SnapshotDetailResponse{
			Snapshot:    SnapshotFromDomain(detail.Snapshot),
			Allocations: AllocationsFromDomain(detail.Allocations),
		})
	}

	return DealDetailResponse{
		DealID:      d.DealID,
		Snapshots:   snapshots,
		Ledger:      LedgerEntriesFromDomain(d.Ledger),
		PayoutLinks: PayoutLinksFromDomain(d.PayoutLinks),
	}
}

// ConsistencyViolationResponse is one invariant violation.
type ConsistencyViolationResponse struct {
	SnapshotID    string `json:"snapshot_id"`
	AllocationID  string `json:"allocation_id,omitempty"`
	Detail        string `json:"detail"`
	AmountMinor   string `json:"amount_minor"`
	PaidMinor     string `json:"paid_minor"`
	ReversedMinor string `json:"reversed_minor"`
}

// ConsistencyResponse reports a full invariant sweep.
type ConsistencyResponse struct {
	Consistent bool                           `json:"consistent"`
	Violations []ConsistencyViolationResponse `json:"violations"`
}

// ConsistencyFromReport converts a use case consistency report.
func ConsistencyFromReport(r *usecase.ConsistencyReport) ConsistencyResponse {
	violations := make([]ConsistencyViolationResponse, 0, len(r.Violations))
	for _, v := range r.Violations {
		violations = append(violations, ConsistencyViolationResponse{
			SnapshotID:    v.SnapshotID,
			AllocationID:  v.AllocationID,
			Detail:        v.Detail,
			AmountMinor:   FormatMinor(v.AmountMinor),
			PaidMinor:     FormatMinor(v.PaidMinor),
			ReversedMinor: FormatMinor(v.ReversedMinor),
		})
	}

	return ConsistencyResponse{
		Consistent: r.Consistent,
		Violations: violations,
	}
}
