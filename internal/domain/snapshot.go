package domain

import "time"

// SnapshotStatus is the approval-workflow state of a snapshot.
type SnapshotStatus string

const (
	SnapshotStatusDraft             SnapshotStatus = "DRAFT"
	SnapshotStatusPendingApproval   SnapshotStatus = "PENDING_APPROVAL"
	SnapshotStatusApproved          SnapshotStatus = "APPROVED"
	SnapshotStatusRejected          SnapshotStatus = "REJECTED"
	SnapshotStatusPartiallyReversed SnapshotStatus = "PARTIALLY_REVERSED"
	SnapshotStatusReversed          SnapshotStatus = "REVERSED"
)

// CommissionSnapshot is a versioned, immutable computation of a deal's
// commission split. Versions are 1-based and monotonically increasing per
// deal; only the highest-version non-REJECTED snapshot is authoritative.
type CommissionSnapshot struct {
	ID              string
	DealID          string
	Version         int64
	PolicyID        string
	PoolAmountMinor int64
	Currency        string
	Status          SnapshotStatus
	MakerID         string
	ApproverID      *string
	CreatedAt       time.Time
	ApprovedAt      *time.Time
}

// IsOpenForApproval reports whether approve/reject is allowed.
func (s *CommissionSnapshot) IsOpenForApproval() bool {
	return s.Status == SnapshotStatusPendingApproval
}

// IsReversible reports whether a reversal may be posted.
func (s *CommissionSnapshot) IsReversible() bool {
	return s.Status == SnapshotStatusApproved || s.Status == SnapshotStatusPartiallyReversed
}

// IsPayable reports whether payouts may be applied against its allocations.
func (s *CommissionSnapshot) IsPayable() bool {
	return s.Status == SnapshotStatusApproved || s.Status == SnapshotStatusPartiallyReversed
}

// IsTerminal reports whether the snapshot can never change again.
// DRAFT and PENDING_APPROVAL snapshots are still in flight; a recompute
// with identical inputs returns the in-flight snapshot instead of
// creating a duplicate version.
func (s *CommissionSnapshot) IsTerminal() bool {
	return s.Status != SnapshotStatusDraft && s.Status != SnapshotStatusPendingApproval
}

// CheckApprover enforces the maker-checker rule: the creator of a
// financial computation can never be its sole approver.
func (s *CommissionSnapshot) CheckApprover(approverID string) error {
	if approverID == s.MakerID {
		return ErrSelfApproval
	}
	return nil
}
