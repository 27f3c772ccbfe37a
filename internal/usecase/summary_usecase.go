package usecase

import (
	"context"

	"github.com/iho/splitledger/internal/domain"
)

// SummaryUseCase serves the read models: per-user commission summaries
// and full deal commission detail.
type SummaryUseCase struct {
	snapRepo   SnapshotRepository
	allocRepo  AllocationRepository
	ledgerRepo LedgerRepository
	payoutRepo PayoutRepository
}

// NewSummaryUseCase creates a new SummaryUseCase.
func NewSummaryUseCase(
	snapRepo SnapshotRepository,
	allocRepo AllocationRepository,
	ledgerRepo LedgerRepository,
	payoutRepo PayoutRepository,
) *SummaryUseCase {
	return &SummaryUseCase{
		snapRepo:   snapRepo,
		allocRepo:  allocRepo,
		ledgerRepo: ledgerRepo,
		payoutRepo: payoutRepo,
	}
}

// UserSummary aggregates a beneficiary's allocations across the
// authoritative snapshot of every deal they appear in.
type UserSummary struct {
	UserID           string
	EarnedMinor      int64
	PaidMinor        int64
	ReversedMinor    int64
	OutstandingMinor int64
	Items            []*domain.AllocationSummaryItem
}

// GetUserSummary returns a user's commission summary.
func (uc *SummaryUseCase) GetUserSummary(ctx context.Context, userID string) (*UserSummary, error) {
	items, err := uc.allocRepo.ListAuthoritativeByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	summary := &UserSummary{UserID: userID, Items: items}
	for _, item := range items {
		summary.EarnedMinor += item.AmountMinor
		summary.PaidMinor += item.PaidMinor
		summary.ReversedMinor += item.ReversedMinor
		summary.OutstandingMinor += item.OutstandingMinor()
	}

	return summary, nil
}

// SnapshotDetail is a snapshot with its allocations.
type SnapshotDetail struct {
	Snapshot    *domain.CommissionSnapshot
	Allocations []*domain.CommissionAllocation
}

// DealDetail is the full commission picture of one deal.
type DealDetail struct {
	DealID      string
	Snapshots   []*SnapshotDetail
	Ledger      []*domain.LedgerEntry
	PayoutLinks []*domain.PayoutAllocationLink
}

// GetDealDetail returns every snapshot version (retained for audit), the
// deal's ledger entries and payout links.
func (uc *SummaryUseCase) GetDealDetail(ctx context.Context, dealID string) (*DealDetail, error) {
	snapshots, err := uc.snapRepo.ListByDeal(ctx, dealID)
	if err != nil {
		return nil, err
	}

	details := make([]*SnapshotDetail, 0, len(snapshots))
	for _, snapshot := range snapshots {
		allocations, err := uc.allocRepo.GetBySnapshot(ctx, snapshot.ID)
		if err != nil {
			return nil, err
		}

		details = append(details, &SnapshotDetail{Snapshot: snapshot, Allocations: allocations})
	}

	const ledgerPageSize = 1000

	entries, err := uc.ledgerRepo.ListByDeal(ctx, dealID, ledgerPageSize, 0)
	if err != nil {
		return nil, err
	}

	links, err := uc.payoutRepo.ListLinksByDeal(ctx, dealID)
	if err != nil {
		return nil, err
	}

	return &DealDetail{
		DealID:      dealID,
		Snapshots:   details,
		Ledger:      entries,
		PayoutLinks: links,
	}, nil
}
