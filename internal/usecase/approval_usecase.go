package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/iho/splitledger/internal/domain"
	"github.com/iho/splitledger/internal/infrastructure/metrics"
)

// ApprovalUseCase is the maker-checker state machine over snapshots.
type ApprovalUseCase struct {
	txManager  TransactionManager
	snapRepo   SnapshotRepository
	ledgerRepo LedgerRepository
	outboxRepo OutboxRepository
	lockGuard  LockGuard
	idGen      IDGenerator
	retrier    Retrier
	metrics    *metrics.Metrics
}

// NewApprovalUseCase creates a new ApprovalUseCase.
func NewApprovalUseCase(
	txManager TransactionManager,
	snapRepo SnapshotRepository,
	ledgerRepo LedgerRepository,
	outboxRepo OutboxRepository,
	lockGuard LockGuard,
	idGen IDGenerator,
	retrier Retrier,
) *ApprovalUseCase {
	return &ApprovalUseCase{
		txManager:  txManager,
		snapRepo:   snapRepo,
		ledgerRepo: ledgerRepo,
		outboxRepo: outboxRepo,
		lockGuard:  lockGuard,
		idGen:      idGen,
		retrier:    retrier,
		metrics:    metrics.New(),
	}
}

// DecisionInput represents an approve or reject request.
type DecisionInput struct {
	SnapshotID string
	ApproverID string
	Note       string
}

// Approve moves a PENDING_APPROVAL snapshot to APPROVED and posts its
// allocation credit to the ledger, all in one transaction.
func (uc *ApprovalUseCase) Approve(ctx context.Context, input DecisionInput) (*domain.CommissionSnapshot, error) {
	var snapshot *domain.CommissionSnapshot

	err := uc.retry(ctx, func() error {
		var err error
		snapshot, err = uc.decide(ctx, input, true)
		return err
	})

	return snapshot, err
}

// Reject moves a PENDING_APPROVAL snapshot to REJECTED. No ledger entries
// are posted for a rejected snapshot.
func (uc *ApprovalUseCase) Reject(ctx context.Context, input DecisionInput) (*domain.CommissionSnapshot, error) {
	var snapshot *domain.CommissionSnapshot

	err := uc.retry(ctx, func() error {
		var err error
		snapshot, err = uc.decide(ctx, input, false)
		return err
	})

	return snapshot, err
}

func (uc *ApprovalUseCase) decide(ctx context.Context, input DecisionInput, approve bool) (*domain.CommissionSnapshot, error) {
	if input.ApproverID == "" {
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

	if err := snapshot.CheckApprover(input.ApproverID); err != nil {
		return nil, err
	}

	// The lock table is read inside this transaction so a lock created
	// concurrently either commits before us and is seen, or after us and
	// cannot invalidate the decision.
	if err := uc.lockGuard.AssertUnlocked(ctx, tx, now); err != nil {
		if errors.Is(err, domain.ErrPeriodLocked) {
			uc.metrics.LockedOperations.WithLabelValues("decide_snapshot").Inc()
		}

		return nil, err
	}

	if !snapshot.IsOpenForApproval() {
		return nil, fmt.Errorf("%w: snapshot is %s", domain.ErrInvalidState, snapshot.Status)
	}

	status := domain.SnapshotStatusRejected
	eventType := domain.EventTypeSnapshotRejected

	var approvedAt *time.Time

	if approve {
		status = domain.SnapshotStatusApproved
		eventType = domain.EventTypeSnapshotApproved
		approvedAt = &now
	}

	if err := uc.snapRepo.UpdateStatus(ctx, tx, snapshot.ID, status, &input.ApproverID, approvedAt); err != nil {
		return nil, err
	}

	snapshot.Status = status
	snapshot.ApproverID = &input.ApproverID
	snapshot.ApprovedAt = approvedAt

	if approve {
		entry := &domain.LedgerEntry{
			ID:          uc.idGen.Generate(),
			DealID:      snapshot.DealID,
			SnapshotID:  &snapshot.ID,
			EntryType:   domain.EntryTypeAllocation,
			Direction:   domain.DirectionCredit,
			AmountMinor: snapshot.PoolAmountMinor,
			OccurredAt:  now,
			Memo:        fmt.Sprintf("allocation credit for snapshot %s v%d", snapshot.ID, snapshot.Version),
			ActorID:     input.ApproverID,
		}

		if err := entry.Validate(); err != nil {
			return nil, err
		}

		if err := uc.ledgerRepo.Append(ctx, tx, entry); err != nil {
			return nil, err
		}
	}

	if err := uc.outboxRepo.Create(ctx, tx, &domain.OutboxEvent{
		ID:            uc.idGen.Generate(),
		AggregateID:   snapshot.ID,
		AggregateType: domain.AggregateTypeSnapshot,
		EventType:     eventType,
		Payload: map[string]any{
			"deal_id":           snapshot.DealID,
			"version":           snapshot.Version,
			"pool_amount_minor": formatMinor(snapshot.PoolAmountMinor),
			"approver_id":       input.ApproverID,
			"note":              input.Note,
		},
		CreatedAt: now,
	}); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	if approve {
		uc.metrics.SnapshotsApproved.Inc()
	} else {
		uc.metrics.SnapshotsRejected.Inc()
	}

	return snapshot, nil
}

// ListPending lists PENDING_APPROVAL snapshots with maker identity.
func (uc *ApprovalUseCase) ListPending(ctx context.Context, limit, offset int) ([]*domain.CommissionSnapshot, error) {
	limit, offset = domain.ValidatePagination(limit, offset)
	return uc.snapRepo.ListPending(ctx, limit, offset)
}

func (uc *ApprovalUseCase) retry(ctx context.Context, op func() error) error {
	if uc.retrier == nil {
		return op()
	}
	return uc.retrier.Retry(ctx, op)
}
