package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/iho/splitledger/internal/domain"
	"github.com/iho/splitledger/internal/infrastructure/metrics"
)

// ReversalUseCase reverses all or part of an approved snapshot's
// allocations, posting offsetting ledger debits.
type ReversalUseCase struct {
	txManager  TransactionManager
	snapRepo   SnapshotRepository
	allocRepo  AllocationRepository
	ledgerRepo LedgerRepository
	outboxRepo OutboxRepository
	lockGuard  LockGuard
	idGen      IDGenerator
	retrier    Retrier
	metrics    *metrics.Metrics
}

// NewReversalUseCase creates a new ReversalUseCase.
func NewReversalUseCase(
	txManager TransactionManager,
	snapRepo SnapshotRepository,
	allocRepo AllocationRepository,
	ledgerRepo LedgerRepository,
	outboxRepo OutboxRepository,
	lockGuard LockGuard,
	idGen IDGenerator,
	retrier Retrier,
) *ReversalUseCase {
	return &ReversalUseCase{
		txManager:  txManager,
		snapRepo:   snapRepo,
		allocRepo:  allocRepo,
		ledgerRepo: ledgerRepo,
		outboxRepo: outboxRepo,
		lockGuard:  lockGuard,
		idGen:      idGen,
		retrier:    retrier,
		metrics:    metrics.New(),
	}
}

// ReverseInput represents input for a reversal.
type ReverseInput struct {
	SnapshotID string
	ActorID    string
	Reason     string
	// AmountMinor nil means full reversal of the remaining outstanding.
	AmountMinor *int64
}

// ReverseResult bundles the updated snapshot with the posted entries.
type ReverseResult struct {
	Snapshot *domain.CommissionSnapshot
	Entries  []*domain.LedgerEntry
}

// Reverse distributes the requested amount across the snapshot's
// allocations proportionally to their outstanding balances and posts one
// offsetting debit per affected allocation, atomically.
func (uc *ReversalUseCase) Reverse(ctx context.Context, input ReverseInput) (*ReverseResult, error) {
	var result *ReverseResult

	err := uc.retry(ctx, func() error {
		var err error
		result, err = uc.reverse(ctx, input)
		return err
	})

	return result, err
}

func (uc *ReversalUseCase) reverse(ctx context.Context, input ReverseInput) (*ReverseResult, error) {
	if input.ActorID == "" {
		return nil, domain.ErrInvalidState
	}

	now := time.Now().UTC()

	tx, err := uc.txManager.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	snapshot, err := uc.snapRepo.GetByIDForUpdate(ctx, tx, input.SnapshotID)
	if err != nil {
		return nil, err
	}

	if !snapshot.IsReversible() {
		return nil, fmt.Errorf("%w: snapshot is %s", domain.ErrInvalidState, snapshot.Status)
	}

	if err := uc.lockGuard.AssertUnlocked(ctx, tx, now); err != nil {
		if errors.Is(err, domain.ErrPeriodLocked) {
			uc.metrics.LockedOperations.WithLabelValues("reverse_snapshot").Inc()
		}

		return nil, err
	}

	allocations, err := uc.allocRepo.GetBySnapshotForUpdate(ctx, tx, snapshot.ID)
	if err != nil {
		return nil, err
	}

	outstanding := make(map[domain.Role]int64, len(allocations))
	byRole := make(map[domain.Role]*domain.CommissionAllocation, len(allocations))

	var totalOutstanding int64
	for _, alloc := range allocations {
		outstanding[alloc.Role] = alloc.OutstandingMinor()
		byRole[alloc.Role] = alloc
		totalOutstanding += alloc.OutstandingMinor()
	}

	amount := totalOutstanding
	if input.AmountMinor != nil {
		amount = *input.AmountMinor
	}

	if amount <= 0 {
		return nil, domain.ErrInvalidAmount
	}

	if amount > totalOutstanding {
		return nil, fmt.Errorf("%w: requested %d, outstanding %d", domain.ErrOverreversal, amount, totalOutstanding)
	}

	shares, err := domain.DistributeOutstanding(amount, outstanding)
	if err != nil {
		return nil, err
	}

	entries := make([]*domain.LedgerEntry, 0, len(shares))
	for _, role := range domain.AllRoles {
		share := shares[role]
		if share == 0 {
			continue
		}

		alloc := byRole[role]
		if err := uc.allocRepo.AddReversed(ctx, tx, alloc.ID, share); err != nil {
			return nil, err
		}
		alloc.ReversedMinor += share

		entry := &domain.LedgerEntry{
			ID:          uc.idGen.Generate(),
			DealID:      snapshot.DealID,
			SnapshotID:  &snapshot.ID,
			EntryType:   domain.EntryTypeReversal,
			Direction:   domain.DirectionDebit,
			AmountMinor: share,
			OccurredAt:  now,
			Memo:        input.Reason,
			ActorID:     input.ActorID,
		}

		if err := entry.Validate(); err != nil {
			return nil, err
		}

		if err := uc.ledgerRepo.Append(ctx, tx, entry); err != nil {
			return nil, err
		}

		entries = append(entries, entry)
	}

	status := domain.SnapshotStatusPartiallyReversed
	if totalOutstanding-amount == 0 {
		status = domain.SnapshotStatusReversed
	}

	if err := uc.snapRepo.UpdateStatus(ctx, tx, snapshot.ID, status, snapshot.ApproverID, snapshot.ApprovedAt); err != nil {
		return nil, err
	}
	snapshot.Status = status

	if err := uc.outboxRepo.Create(ctx, tx, &domain.OutboxEvent{
		ID:            uc.idGen.Generate(),
		AggregateID:   snapshot.ID,
		AggregateType: domain.AggregateTypeSnapshot,
		EventType:     domain.EventTypeSnapshotReversed,
		Payload: map[string]any{
			"deal_id":      snapshot.DealID,
			"amount_minor": formatMinor(amount),
			"status":       string(status),
			"reason":       input.Reason,
		},
		CreatedAt: now,
	}); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	uc.metrics.SnapshotsReversed.Inc()

	return &ReverseResult{Snapshot: snapshot, Entries: entries}, nil
}

func (uc *ReversalUseCase) retry(ctx context.Context, op func() error) error {
	if uc.retrier == nil {
		return op()
	}
	return uc.retrier.Retry(ctx, op)
}
