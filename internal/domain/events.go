package domain

import "time"

// Event types
const (
	EventTypeSnapshotComputed  = "snapshot.computed"
	EventTypeSnapshotApproved  = "snapshot.approved"
	EventTypeSnapshotRejected  = "snapshot.rejected"
	EventTypeSnapshotReversed  = "snapshot.reversed"
	EventTypePayoutRecorded    = "payout.recorded"
	EventTypeDisputeOpened     = "dispute.opened"
	EventTypeDisputeEscalated  = "dispute.escalated"
	EventTypePeriodLocked      = "period.locked"
	EventTypePeriodUnlocked    = "period.unlocked"
)

// Aggregate types
const (
	AggregateTypeSnapshot   = "snapshot"
	AggregateTypePayout     = "payout"
	AggregateTypeDispute    = "dispute"
	AggregateTypePeriodLock = "period_lock"
)

// OutboxEvent represents an event to be published after commit.
type OutboxEvent struct {
	ID            string
	AggregateID   string
	AggregateType string
	EventType     string
	Payload       map[string]any
	CreatedAt     time.Time
	PublishedAt   *time.Time
	Published     bool
}

// SnapshotApprovedEvent payload
type SnapshotApprovedEvent struct {
	SnapshotID      string `json:"snapshot_id"`
	DealID          string `json:"deal_id"`
	Version         int64  `json:"version"`
	PoolAmountMinor string `json:"pool_amount_minor"`
	Currency        string `json:"currency"`
	ApproverID      string `json:"approver_id"`
}

// PayoutRecordedEvent payload
type PayoutRecordedEvent struct {
	PayoutID    string `json:"payout_id"`
	DealID      string `json:"deal_id"`
	AmountMinor string `json:"amount_minor"`
	Method      string `json:"method"`
}

// SnapshotReversedEvent payload
type SnapshotReversedEvent struct {
	SnapshotID  string `json:"snapshot_id"`
	DealID      string `json:"deal_id"`
	AmountMinor string `json:"amount_minor"`
	Status      string `json:"status"`
}

// DisputeEscalatedEvent payload
type DisputeEscalatedEvent struct {
	DisputeID string `json:"dispute_id"`
	DealID    string `json:"deal_id"`
}
