package usecase

import (
	"context"
	"time"

	"github.com/iho/splitledger/internal/domain"
	"github.com/iho/splitledger/internal/infrastructure/metrics"
)

// PeriodLockUseCase manages temporal freezes and implements the LockGuard
// consulted by every guarded mutation.
type PeriodLockUseCase struct {
	txManager  TransactionManager
	lockRepo   PeriodLockRepository
	outboxRepo OutboxRepository
	idGen      IDGenerator
	metrics    *metrics.Metrics
}

// NewPeriodLockUseCase creates a new PeriodLockUseCase.
func NewPeriodLockUseCase(
	txManager TransactionManager,
	lockRepo PeriodLockRepository,
	outboxRepo OutboxRepository,
	idGen IDGenerator,
) *PeriodLockUseCase {
	return &PeriodLockUseCase{
		txManager:  txManager,
		lockRepo:   lockRepo,
		outboxRepo: outboxRepo,
		idGen:      idGen,
		metrics:    metrics.New(),
	}
}

// CreateLockInput represents input for creating a period lock.
type CreateLockInput struct {
	PeriodFrom time.Time
	PeriodTo   time.Time
	Reason     string
	CreatedBy  string
}

// CreateLock creates a lock after checking no active lock overlaps it.
// Lock creation is serialized so two concurrent creates cannot both pass
// the overlap check.
func (uc *PeriodLockUseCase) CreateLock(ctx context.Context, input CreateLockInput) (*domain.PeriodLock, error) {
	if input.CreatedBy == "" {
		return nil, domain.ErrInvalidState
	}

	now := time.Now().UTC()

	lock := &domain.PeriodLock{
		ID:         uc.idGen.Generate(),
		PeriodFrom: input.PeriodFrom.UTC(),
		PeriodTo:   input.PeriodTo.UTC(),
		Reason:     input.Reason,
		IsActive:   true,
		CreatedBy:  input.CreatedBy,
		CreatedAt:  now,
	}

	if err := lock.Validate(); err != nil {
		return nil, err
	}

	tx, err := uc.txManager.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	if err := uc.lockRepo.LockTimeline(ctx, tx); err != nil {
		return nil, err
	}

	overlapping, err := uc.lockRepo.AnyActiveOverlapping(ctx, tx, lock.PeriodFrom, lock.PeriodTo)
	if err != nil {
		return nil, err
	}

	if overlapping {
		return nil, domain.ErrOverlappingLock
	}

	if err := uc.lockRepo.Create(ctx, tx, lock); err != nil {
		return nil, err
	}

	if err := uc.outboxRepo.Create(ctx, tx, &domain.OutboxEvent{
		ID:            uc.idGen.Generate(),
		AggregateID:   lock.ID,
		AggregateType: domain.AggregateTypePeriodLock,
		EventType:     domain.EventTypePeriodLocked,
		Payload: map[string]any{
			"period_from": lock.PeriodFrom.Format(time.RFC3339),
			"period_to":   lock.PeriodTo.Format(time.RFC3339),
			"reason":      lock.Reason,
		},
		CreatedAt: now,
	}); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	uc.metrics.PeriodLocksCreated.Inc()

	return lock, nil
}

// ReleaseLockInput represents input for releasing a lock.
type ReleaseLockInput struct {
	LockID     string
	Reason     string
	ReleasedBy string
}

// ReleaseLock deactivates a lock; releasing an inactive lock fails.
func (uc *PeriodLockUseCase) ReleaseLock(ctx context.Context, input ReleaseLockInput) (*domain.PeriodLock, error) {
	if input.ReleasedBy == "" {
		return nil, domain.ErrInvalidState
	}

	now := time.Now().UTC()

	tx, err := uc.txManager.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	lock, err := uc.lockRepo.GetByIDForUpdate(ctx, tx, input.LockID)
	if err != nil {
		return nil, err
	}

	if !lock.IsActive {
		return nil, domain.ErrInvalidState
	}

	if err := uc.lockRepo.Release(ctx, tx, lock.ID, now, input.ReleasedBy); err != nil {
		return nil, err
	}

	lock.IsActive = false
	lock.UnlockedAt = &now
	lock.UnlockedBy = &input.ReleasedBy

	if err := uc.outboxRepo.Create(ctx, tx, &domain.OutboxEvent{
		ID:            uc.idGen.Generate(),
		AggregateID:   lock.ID,
		AggregateType: domain.AggregateTypePeriodLock,
		EventType:     domain.EventTypePeriodUnlocked,
		Payload: map[string]any{
			"reason":      input.Reason,
			"released_by": input.ReleasedBy,
		},
		CreatedAt: now,
	}); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	uc.metrics.PeriodLocksReleased.Inc()

	return lock, nil
}

// AssertUnlocked fails with ErrPeriodLocked if any active lock covers at.
// It reads the lock table inside the caller's transaction; results are
// never cached so a lock created mid-operation cannot be missed.
func (uc *PeriodLockUseCase) AssertUnlocked(ctx context.Context, tx Transaction, at time.Time) error {
	covered, err := uc.lockRepo.AnyActiveCovering(ctx, tx, at.UTC())
	if err != nil {
		return err
	}

	if covered {
		return domain.ErrPeriodLocked
	}

	return nil
}

// ListLocks lists period locks.
func (uc *PeriodLockUseCase) ListLocks(ctx context.Context, limit, offset int) ([]*domain.PeriodLock, error) {
	limit, offset = domain.ValidatePagination(limit, offset)
	return uc.lockRepo.List(ctx, limit, offset)
}
