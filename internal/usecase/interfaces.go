package usecase

import (
	"context"
	"time"

	"github.com/iho/splitledger/internal/domain"
)

// PolicyRepository defines data access for commission policies.
type PolicyRepository interface {
	Create(ctx context.Context, policy *domain.CommissionPolicy) error
	GetByID(ctx context.Context, id string) (*domain.CommissionPolicy, error)
	// ResolveEffective returns the policy with the latest effectiveFrom <= at.
	ResolveEffective(ctx context.Context, at time.Time) (*domain.CommissionPolicy, error)
	List(ctx context.Context, limit, offset int) ([]*domain.CommissionPolicy, error)
}

// SnapshotRepository defines data access for commission snapshots.
type SnapshotRepository interface {
	Create(ctx context.Context, tx Transaction, snapshot *domain.CommissionSnapshot) error
	GetByID(ctx context.Context, id string) (*domain.CommissionSnapshot, error)
	GetByIDForUpdate(ctx context.Context, tx Transaction, id string) (*domain.CommissionSnapshot, error)
	// GetLatestByDeal returns the highest-version snapshot for a deal, or
	// ErrSnapshotNotFound when the deal has none.
	GetLatestByDeal(ctx context.Context, tx Transaction, dealID string) (*domain.CommissionSnapshot, error)
	ListByDeal(ctx context.Context, dealID string) ([]*domain.CommissionSnapshot, error)
	ListPending(ctx context.Context, limit, offset int) ([]*domain.CommissionSnapshot, error)
	UpdateStatus(ctx context.Context, tx Transaction, id string, status domain.SnapshotStatus, approverID *string, approvedAt *time.Time) error
	// LockDeal serializes snapshot creation per deal for the duration of
	// the transaction.
	LockDeal(ctx context.Context, tx Transaction, dealID string) error
}

// AllocationRepository defines data access for commission allocations.
type AllocationRepository interface {
	CreateBatch(ctx context.Context, tx Transaction, allocations []*domain.CommissionAllocation) error
	GetBySnapshot(ctx context.Context, snapshotID string) ([]*domain.CommissionAllocation, error)
	// GetBySnapshotForUpdate locks and returns a snapshot's allocations in
	// role order.
	GetBySnapshotForUpdate(ctx context.Context, tx Transaction, snapshotID string) ([]*domain.CommissionAllocation, error)
	// GetByIDsForUpdate locks allocation rows; callers pass ids sorted to
	// keep lock order deterministic.
	GetByIDsForUpdate(ctx context.Context, tx Transaction, ids []string) ([]*domain.CommissionAllocation, error)
	AddPaid(ctx context.Context, tx Transaction, id string, amountMinor int64) error
	AddReversed(ctx context.Context, tx Transaction, id string, amountMinor int64) error
	// ListAuthoritativeByUser returns a user's allocations from each deal's
	// authoritative snapshot.
	ListAuthoritativeByUser(ctx context.Context, userID string) ([]*domain.AllocationSummaryItem, error)
}

// LedgerRepository defines data access for the append-only ledger.
type LedgerRepository interface {
	Append(ctx context.Context, tx Transaction, entry *domain.LedgerEntry) error
	ListByDeal(ctx context.Context, dealID string, limit, offset int) ([]*domain.LedgerEntry, error)
	// CheckConsistency returns every allocation violating
	// paid + reversed <= amount and every snapshot whose allocations do not
	// sum to its pool.
	CheckConsistency(ctx context.Context) ([]*domain.ConsistencyViolation, error)
}

// PayoutRepository defines data access for payouts and their links.
type PayoutRepository interface {
	Create(ctx context.Context, tx Transaction, payout *domain.Payout) error
	CreateLinks(ctx context.Context, tx Transaction, links []*domain.PayoutAllocationLink) error
	GetByID(ctx context.Context, id string) (*domain.Payout, error)
	ListLinksByDeal(ctx context.Context, dealID string) ([]*domain.PayoutAllocationLink, error)
}

// DisputeRepository defines data access for disputes.
type DisputeRepository interface {
	Create(ctx context.Context, dispute *domain.Dispute) error
	GetByID(ctx context.Context, id string) (*domain.Dispute, error)
	UpdateStatus(ctx context.Context, id string, status domain.DisputeStatus, resolutionNote string) error
	// EscalateOverdue transitions every OPEN/UNDER_REVIEW dispute with
	// slaDueAt <= now to ESCALATED and returns the affected disputes.
	// Idempotent: already-escalated disputes are untouched.
	EscalateOverdue(ctx context.Context, tx Transaction, now time.Time) ([]*domain.Dispute, error)
	ListByDeal(ctx context.Context, dealID string, limit, offset int) ([]*domain.Dispute, error)
}

// PeriodLockRepository defines data access for period locks.
type PeriodLockRepository interface {
	Create(ctx context.Context, tx Transaction, lock *domain.PeriodLock) error
	GetByID(ctx context.Context, id string) (*domain.PeriodLock, error)
	GetByIDForUpdate(ctx context.Context, tx Transaction, id string) (*domain.PeriodLock, error)
	Release(ctx context.Context, tx Transaction, id string, unlockedAt time.Time, unlockedBy string) error
	// AnyActiveOverlapping reports whether an active lock's interval
	// intersects [from, to].
	AnyActiveOverlapping(ctx context.Context, tx Transaction, from, to time.Time) (bool, error)
	// AnyActiveCovering reports whether an active lock covers at. Always
	// read inside the caller's transaction, never cached.
	AnyActiveCovering(ctx context.Context, tx Transaction, at time.Time) (bool, error)
	// LockTimeline serializes lock creation against concurrent creates.
	LockTimeline(ctx context.Context, tx Transaction) error
	List(ctx context.Context, limit, offset int) ([]*domain.PeriodLock, error)
}

// OutboxRepository defines data access for outbox events.
type OutboxRepository interface {
	Create(ctx context.Context, tx Transaction, event *domain.OutboxEvent) error
	GetUnpublished(ctx context.Context, limit int) ([]*domain.OutboxEvent, error)
	MarkPublished(ctx context.Context, id string, publishedAt time.Time) error
	DeletePublished(ctx context.Context, before time.Time) error
}

// Transaction represents a database transaction.
type Transaction interface {
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// TransactionManager handles transaction lifecycle.
type TransactionManager interface {
	Begin(ctx context.Context) (Transaction, error)
}

// LockGuard is the cross-cutting period-lock check consulted inside the
// same transaction as every guarded mutation.
type LockGuard interface {
	AssertUnlocked(ctx context.Context, tx Transaction, at time.Time) error
}

// IDGenerator generates unique IDs.
type IDGenerator interface {
	Generate() string
}

// Retrier retries transient storage failures (deadlocks, serialization
// conflicts). Safe for the guarded mutations, which are atomic and
// idempotent-by-construction.
type Retrier interface {
	Retry(ctx context.Context, operation func() error) error
}

// Cache defines caching operations.
type Cache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// IdempotencyStore handles idempotency key storage.
type IdempotencyStore interface {
	// CheckAndSet atomically checks if key exists, sets if not.
	// Returns (exists, existingValue, error).
	CheckAndSet(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error)
	// Update updates an existing key with the final response.
	Update(ctx context.Context, key string, response []byte, ttl time.Duration) error
}
