package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/iho/splitledger/internal/domain"
	"github.com/iho/splitledger/internal/infrastructure/metrics"
)

// SnapshotUseCase computes versioned commission snapshots from a deal's
// sale pool.
type SnapshotUseCase struct {
	txManager  TransactionManager
	policyUC   *PolicyUseCase
	snapRepo   SnapshotRepository
	allocRepo  AllocationRepository
	outboxRepo OutboxRepository
	lockGuard  LockGuard
	idGen      IDGenerator
	metrics    *metrics.Metrics
}

// NewSnapshotUseCase creates a new SnapshotUseCase.
func NewSnapshotUseCase(
	txManager TransactionManager,
	policyUC *PolicyUseCase,
	snapRepo SnapshotRepository,
	allocRepo AllocationRepository,
	outboxRepo OutboxRepository,
	lockGuard LockGuard,
	idGen IDGenerator,
) *SnapshotUseCase {
	return &SnapshotUseCase{
		txManager:  txManager,
		policyUC:   policyUC,
		snapRepo:   snapRepo,
		allocRepo:  allocRepo,
		outboxRepo: outboxRepo,
		lockGuard:  lockGuard,
		idGen:      idGen,
		metrics:    metrics.New(),
	}
}

// ComputeSnapshotInput represents input for computing a snapshot.
type ComputeSnapshotInput struct {
	DealID          string
	PoolAmountMinor int64
	Currency        string
	MakerID         string
	// Beneficiaries maps each human role to its user id; SYSTEM has none.
	Beneficiaries map[domain.Role]string
}

// ComputeSnapshotResult bundles a snapshot with its allocations.
type ComputeSnapshotResult struct {
	Snapshot    *domain.CommissionSnapshot
	Allocations []*domain.CommissionAllocation
}

// ComputeSnapshot resolves the effective policy, splits the pool and
// persists a new snapshot version with its allocations atomically.
// Recomputing with identical inputs while a non-terminal snapshot exists
// returns that snapshot instead of creating a duplicate.
func (uc *SnapshotUseCase) ComputeSnapshot(ctx context.Context, input ComputeSnapshotInput) (*ComputeSnapshotResult, error) {
	if input.DealID == "" || input.MakerID == "" {
		return nil, domain.ErrInvalidState
	}

	if err := domain.ValidateAmountMinor(input.PoolAmountMinor); err != nil {
		return nil, err
	}

	if err := domain.ValidateCurrency(input.Currency); err != nil {
		return nil, err
	}

	now := time.Now().UTC()

	tx, err := uc.txManager.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	// Serialize snapshot creation per deal so two concurrent computations
	// cannot both claim the same version.
	if err := uc.snapRepo.LockDeal(ctx, tx, input.DealID); err != nil {
		return nil, err
	}

	// Recompute is a mutation; period locks apply.
	if err := uc.lockGuard.AssertUnlocked(ctx, tx, now); err != nil {
		if errors.Is(err, domain.ErrPeriodLocked) {
			uc.metrics.LockedOperations.WithLabelValues("compute_snapshot").Inc()
		}

		return nil, err
	}

	policy, err := uc.policyUC.ResolveEffective(ctx, now)
	if err != nil {
		return nil, err
	}

	version := int64(1)

	latest, err := uc.snapRepo.GetLatestByDeal(ctx, tx, input.DealID)
	if err != nil && !errors.Is(err, domain.ErrSnapshotNotFound) {
		return nil, err
	}

	if latest != nil {
		if !latest.IsTerminal() &&
			latest.PoolAmountMinor == input.PoolAmountMinor &&
			latest.PolicyID == policy.ID {
			allocations, err := uc.allocRepo.GetBySnapshot(ctx, latest.ID)
			if err != nil {
				return nil, err
			}

			if err := tx.Commit(ctx); err != nil {
				return nil, err
			}

			return &ComputeSnapshotResult{Snapshot: latest, Allocations: allocations}, nil
		}

		version = latest.Version + 1
	}

	shares, err := domain.SplitPool(input.PoolAmountMinor, policy)
	if err != nil {
		return nil, err
	}

	snapshot := &domain.CommissionSnapshot{
		ID:              uc.idGen.Generate(),
		DealID:          input.DealID,
		Version:         version,
		PolicyID:        policy.ID,
		PoolAmountMinor: input.PoolAmountMinor,
		Currency:        policy.Currency,
		Status:          domain.SnapshotStatusDraft,
		MakerID:         input.MakerID,
		CreatedAt:       now,
	}

	if err := uc.snapRepo.Create(ctx, tx, snapshot); err != nil {
		return nil, err
	}

	allocations := make([]*domain.CommissionAllocation, 0, len(domain.AllRoles))
	for _, role := range domain.AllRoles {
		var userID *string
		if role != domain.RoleSystem {
			if id, ok := input.Beneficiaries[role]; ok && id != "" {
				userID = &id
			}
		}

		allocations = append(allocations, &domain.CommissionAllocation{
			ID:          uc.idGen.Generate(),
			SnapshotID:  snapshot.ID,
			Role:        role,
			UserID:      userID,
			BasisPoints: policy.SplitFor(role),
			AmountMinor: shares[role],
		})
	}

	if err := uc.allocRepo.CreateBatch(ctx, tx, allocations); err != nil {
		return nil, err
	}

	// Fresh snapshots move straight into the approval queue.
	if err := uc.snapRepo.UpdateStatus(ctx, tx, snapshot.ID, domain.SnapshotStatusPendingApproval, nil, nil); err != nil {
		return nil, err
	}
	snapshot.Status = domain.SnapshotStatusPendingApproval

	if err := uc.outboxRepo.Create(ctx, tx, &domain.OutboxEvent{
		ID:            uc.idGen.Generate(),
		AggregateID:   snapshot.ID,
		AggregateType: domain.AggregateTypeSnapshot,
		EventType:     domain.EventTypeSnapshotComputed,
		Payload: map[string]any{
			"deal_id":           snapshot.DealID,
			"version":           snapshot.Version,
			"policy_id":         snapshot.PolicyID,
			"pool_amount_minor": formatMinor(snapshot.PoolAmountMinor),
		},
		CreatedAt: now,
	}); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	uc.metrics.SnapshotsComputed.Inc()
	uc.metrics.PoolAmount.Observe(float64(snapshot.PoolAmountMinor))

	return &ComputeSnapshotResult{Snapshot: snapshot, Allocations: allocations}, nil
}

// GetSnapshot retrieves a snapshot by ID.
func (uc *SnapshotUseCase) GetSnapshot(ctx context.Context, id string) (*domain.CommissionSnapshot, error) {
	return uc.snapRepo.GetByID(ctx, id)
}
