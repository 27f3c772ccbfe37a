package domain

import "time"

// DisputeType classifies what is being contested.
type DisputeType string

const (
	DisputeTypeAttribution DisputeType = "ATTRIBUTION"
	DisputeTypeAmount      DisputeType = "AMOUNT"
	DisputeTypeRole        DisputeType = "ROLE"
	DisputeTypeOther       DisputeType = "OTHER"
)

// IsValid reports whether the type is one of the closed set.
func (t DisputeType) IsValid() bool {
	switch t {
	case DisputeTypeAttribution, DisputeTypeAmount, DisputeTypeRole, DisputeTypeOther:
		return true
	}
	return false
}

// DisputeStatus is the workflow state of a dispute.
type DisputeStatus string

const (
	DisputeStatusOpen             DisputeStatus = "OPEN"
	DisputeStatusUnderReview      DisputeStatus = "UNDER_REVIEW"
	DisputeStatusEscalated        DisputeStatus = "ESCALATED"
	DisputeStatusResolvedApproved DisputeStatus = "RESOLVED_APPROVED"
	DisputeStatusResolvedRejected DisputeStatus = "RESOLVED_REJECTED"
)

// disputeTransitions is the closed edge set of the dispute state machine.
// ESCALATED is additionally reachable from OPEN/UNDER_REVIEW by SLA
// timeout via EscalateOverdue.
var disputeTransitions = map[DisputeStatus][]DisputeStatus{
	DisputeStatusOpen: {
		DisputeStatusUnderReview,
		DisputeStatusEscalated,
		DisputeStatusResolvedApproved,
		DisputeStatusResolvedRejected,
	},
	DisputeStatusUnderReview: {
		DisputeStatusEscalated,
		DisputeStatusResolvedApproved,
		DisputeStatusResolvedRejected,
	},
	DisputeStatusEscalated: {
		DisputeStatusResolvedApproved,
		DisputeStatusResolvedRejected,
	},
}

// CanTransition reports whether from -> to is an allowed edge.
func CanTransition(from, to DisputeStatus) bool {
	for _, next := range disputeTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// IsResolved reports whether the status is terminal.
func (s DisputeStatus) IsResolved() bool {
	return s == DisputeStatusResolvedApproved || s == DisputeStatusResolvedRejected
}

// Dispute is a pure audit/workflow trail tied to a deal or snapshot.
// Resolutions implying monetary corrections are driven separately through
// reversals or recomputation; a dispute never touches the ledger itself.
type Dispute struct {
	ID             string
	DealID         string
	SnapshotID     *string
	OpenerID       string
	AgainstUserID  *string
	Type           DisputeType
	Status         DisputeStatus
	SLADueAt       time.Time
	CreatedAt      time.Time
	ResolutionNote string
}

// IsOverdue reports whether the dispute has blown its SLA and is still
// awaiting attention.
func (d *Dispute) IsOverdue(now time.Time) bool {
	if d.Status != DisputeStatusOpen && d.Status != DisputeStatusUnderReview {
		return false
	}
	return !d.SLADueAt.After(now)
}
