package usecase

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/iho/splitledger/internal/domain"
	"github.com/iho/splitledger/internal/infrastructure/metrics"
)

// PayoutUseCase applies recorded payouts against approved allocations.
type PayoutUseCase struct {
	txManager  TransactionManager
	snapRepo   SnapshotRepository
	allocRepo  AllocationRepository
	payoutRepo PayoutRepository
	ledgerRepo LedgerRepository
	outboxRepo OutboxRepository
	lockGuard  LockGuard
	idGen      IDGenerator
	retrier    Retrier
	metrics    *metrics.Metrics
}

// NewPayoutUseCase creates a new PayoutUseCase.
func NewPayoutUseCase(
	txManager TransactionManager,
	snapRepo SnapshotRepository,
	allocRepo AllocationRepository,
	payoutRepo PayoutRepository,
	ledgerRepo LedgerRepository,
	outboxRepo OutboxRepository,
	lockGuard LockGuard,
	idGen IDGenerator,
	retrier Retrier,
) *PayoutUseCase {
	return &PayoutUseCase{
		txManager:  txManager,
		snapRepo:   snapRepo,
		allocRepo:  allocRepo,
		payoutRepo: payoutRepo,
		ledgerRepo: ledgerRepo,
		outboxRepo: outboxRepo,
		lockGuard:  lockGuard,
		idGen:      idGen,
		retrier:    retrier,
		metrics:    metrics.New(),
	}
}

// PayoutLinkInput is one allocation's share of a payout.
type PayoutLinkInput struct {
	AllocationID string
	AmountMinor  int64
}

// RecordPayoutInput represents input for recording a payout.
type RecordPayoutInput struct {
	PaidAt      time.Time
	Method      domain.PayoutMethod
	ReferenceNo *string
	CreatedBy   string
	Links       []PayoutLinkInput
}

// RecordPayout creates the payout, its links, the paid-amount increments
// and the ledger debit in one all-or-nothing transaction. Any single link
// failure aborts the entire payout.
func (uc *PayoutUseCase) RecordPayout(ctx context.Context, input RecordPayoutInput) (*domain.Payout, error) {
	var payout *domain.Payout

	err := uc.retry(ctx, func() error {
		var err error
		payout, err = uc.record(ctx, input)
		return err
	})

	return payout, err
}

func (uc *PayoutUseCase) record(ctx context.Context, input RecordPayoutInput) (*domain.Payout, error) {
	if err := uc.validate(input); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	paidAt := input.PaidAt.UTC()

	amounts := make(map[string]int64, len(input.Links))

	ids := make([]string, 0, len(input.Links))
	for _, link := range input.Links {
		ids = append(ids, link.AllocationID)
		amounts[link.AllocationID] = link.AmountMinor
	}
	sort.Strings(ids)

	tx, err := uc.txManager.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	// Lock allocation rows in sorted order (deadlock prevention) so two
	// concurrent payouts against the same allocation serialize.
	allocations, err := uc.allocRepo.GetByIDsForUpdate(ctx, tx, ids)
	if err != nil {
		return nil, err
	}

	if len(allocations) != len(ids) {
		return nil, domain.ErrAllocationNotFound
	}

	dealID, err := uc.lockSnapshots(ctx, tx, allocations)
	if err != nil {
		return nil, err
	}

	if err := uc.lockGuard.AssertUnlocked(ctx, tx, paidAt); err != nil {
		if errors.Is(err, domain.ErrPeriodLocked) {
			uc.metrics.LockedOperations.WithLabelValues("record_payout").Inc()
		}

		return nil, err
	}

	var totalMinor int64
	for _, alloc := range allocations {
		amount := amounts[alloc.ID]
		if err := alloc.CanApplyPayout(amount); err != nil {
			return nil, fmt.Errorf("%w: allocation %s", err, alloc.ID)
		}
		totalMinor += amount
	}

	payout := &domain.Payout{
		ID:          uc.idGen.Generate(),
		PaidAt:      paidAt,
		Method:      input.Method,
		ReferenceNo: input.ReferenceNo,
		CreatedBy:   input.CreatedBy,
		CreatedAt:   now,
	}

	if err := uc.payoutRepo.Create(ctx, tx, payout); err != nil {
		return nil, err
	}

	links := make([]*domain.PayoutAllocationLink, 0, len(allocations))
	for _, alloc := range allocations {
		links = append(links, &domain.PayoutAllocationLink{
			ID:           uc.idGen.Generate(),
			PayoutID:     payout.ID,
			AllocationID: alloc.ID,
			AmountMinor:  amounts[alloc.ID],
		})

		if err := uc.allocRepo.AddPaid(ctx, tx, alloc.ID, amounts[alloc.ID]); err != nil {
			return nil, err
		}
	}

	if err := uc.payoutRepo.CreateLinks(ctx, tx, links); err != nil {
		return nil, err
	}

	// PAYOUT entries record cash movement; they do not offset the
	// allocation credit.
	entry := &domain.LedgerEntry{
		ID:          uc.idGen.Generate(),
		DealID:      dealID,
		EntryType:   domain.EntryTypePayout,
		Direction:   domain.DirectionDebit,
		AmountMinor: totalMinor,
		OccurredAt:  paidAt,
		Memo:        fmt.Sprintf("payout %s via %s", payout.ID, payout.Method),
		ActorID:     input.CreatedBy,
	}

	if err := entry.Validate(); err != nil {
		return nil, err
	}

	if err := uc.ledgerRepo.Append(ctx, tx, entry); err != nil {
		return nil, err
	}

	if err := uc.outboxRepo.Create(ctx, tx, &domain.OutboxEvent{
		ID:            uc.idGen.Generate(),
		AggregateID:   payout.ID,
		AggregateType: domain.AggregateTypePayout,
		EventType:     domain.EventTypePayoutRecorded,
		Payload: map[string]any{
			"deal_id":      dealID,
			"amount_minor": formatMinor(totalMinor),
			"method":       string(input.Method),
		},
		CreatedAt: now,
	}); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	uc.metrics.PayoutsRecorded.Inc()
	uc.metrics.PayoutAmount.Observe(float64(totalMinor))

	return payout, nil
}

func (uc *PayoutUseCase) validate(input RecordPayoutInput) error {
	if len(input.Links) == 0 || input.CreatedBy == "" || input.PaidAt.IsZero() {
		return domain.ErrInvalidState
	}

	if !input.Method.IsValid() {
		return fmt.Errorf("%w: unknown payout method %q", domain.ErrInvalidState, input.Method)
	}

	seen := make(map[string]bool, len(input.Links))
	for _, link := range input.Links {
		if err := domain.ValidateAmountMinor(link.AmountMinor); err != nil {
			return err
		}
		if seen[link.AllocationID] {
			return domain.ErrDuplicateLink
		}
		seen[link.AllocationID] = true
	}

	return nil
}

// lockSnapshots locks the distinct parent snapshots, verifies each is
// payable and that all links resolve to a single deal.
func (uc *PayoutUseCase) lockSnapshots(ctx context.Context, tx Transaction, allocations []*domain.CommissionAllocation) (string, error) {
	snapshotIDs := make([]string, 0, len(allocations))

	seen := make(map[string]bool, len(allocations))
	for _, alloc := range allocations {
		if !seen[alloc.SnapshotID] {
			seen[alloc.SnapshotID] = true
			snapshotIDs = append(snapshotIDs, alloc.SnapshotID)
		}
	}
	sort.Strings(snapshotIDs)

	var dealID string
	for _, id := range snapshotIDs {
		snapshot, err := uc.snapRepo.GetByIDForUpdate(ctx, tx, id)
		if err != nil {
			return "", err
		}

		if !snapshot.IsPayable() {
			return "", fmt.Errorf("%w: snapshot %s is %s", domain.ErrInvalidState, snapshot.ID, snapshot.Status)
		}

		if dealID == "" {
			dealID = snapshot.DealID
		} else if dealID != snapshot.DealID {
			return "", domain.ErrCrossDealPayout
		}
	}

	return dealID, nil
}

// GetPayout retrieves a payout by ID.
func (uc *PayoutUseCase) GetPayout(ctx context.Context, id string) (*domain.Payout, error) {
	return uc.payoutRepo.GetByID(ctx, id)
}

func (uc *PayoutUseCase) retry(ctx context.Context, op func() error) error {
	if uc.retrier == nil {
		return op()
	}
	return uc.retrier.Retry(ctx, op)
}
