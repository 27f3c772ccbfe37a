package usecase_test

import (
	"context"
	"testing"
	"time"

	"github.com/iho/splitledger/internal/domain"
	"github.com/iho/splitledger/internal/usecase"
)

func TestGetUserSummary_AggregatesAcrossDeals(t *testing.T) {
	r := newRig()

	r.allocs.ListAuthoritativeByUserFunc = func(ctx context.Context, userID string) ([]*domain.AllocationSummaryItem, error) {
		return []*domain.AllocationSummaryItem{
			{DealID: "deal-1", Role: domain.RoleHunter, Currency: "TRY", AmountMinor: 300_000, PaidMinor: 100_000},
			{DealID: "deal-2", Role: domain.RoleHunter, Currency: "TRY", AmountMinor: 150_000, ReversedMinor: 50_000},
		}, nil
	}

	summary, err := r.summaryUC.GetUserSummary(context.Background(), "user-hunter")
	if err != nil {
		t.Fatalf("GetUserSummary: %v", err)
	}

	if summary.EarnedMinor != 450_000 {
		t.Errorf("earned = %d, want 450000", summary.EarnedMinor)
	}
	if summary.PaidMinor != 100_000 {
		t.Errorf("paid = %d, want 100000", summary.PaidMinor)
	}
	if summary.ReversedMinor != 50_000 {
		t.Errorf("reversed = %d, want 50000", summary.ReversedMinor)
	}
	if summary.OutstandingMinor != 300_000 {
		t.Errorf("outstanding = %d, want 300000", summary.OutstandingMinor)
	}
	if len(summary.Items) != 2 {
		t.Errorf("items = %d, want 2", len(summary.Items))
	}
}

func TestGetDealDetail_FullFlow(t *testing.T) {
	r := newRig()
	seedPolicy(t, r)

	_, allocations := approvedSnapshot(t, r, "deal-1", 1_000_000)
	hunter := allocByRole(t, allocations, domain.RoleHunter)

	if _, err := r.payoutUC.RecordPayout(context.Background(), usecase.RecordPayoutInput{
		PaidAt:    time.Now().UTC(),
		Method:    domain.PayoutMethodBankTransfer,
		CreatedBy: "ops-1",
		Links: []usecase.PayoutLinkInput{
			{AllocationID: hunter.ID, AmountMinor: 100_000},
		},
	}); err != nil {
		t.Fatalf("RecordPayout: %v", err)
	}

	detail, err := r.summaryUC.GetDealDetail(context.Background(), "deal-1")
	if err != nil {
		t.Fatalf("GetDealDetail: %v", err)
	}

	if len(detail.Snapshots) != 1 {
		t.Fatalf("snapshots = %d, want 1", len(detail.Snapshots))
	}
	if len(detail.Snapshots[0].Allocations) != len(domain.AllRoles) {
		t.Errorf("allocations = %d, want %d", len(detail.Snapshots[0].Allocations), len(domain.AllRoles))
	}

	// Allocation credit and payout debit.
	if len(detail.Ledger) != 2 {
		t.Errorf("ledger entries = %d, want 2", len(detail.Ledger))
	}
	if len(detail.PayoutLinks) != 1 {
		t.Errorf("payout links = %d, want 1", len(detail.PayoutLinks))
	}
}

func TestGetDealDetail_RetainsEveryVersion(t *testing.T) {
	r := newRig()
	seedPolicy(t, r)

	approvedSnapshot(t, r, "deal-1", 1_000_000)
	computeSnapshot(t, r, "deal-1", 2_000_000)

	detail, err := r.summaryUC.GetDealDetail(context.Background(), "deal-1")
	if err != nil {
		t.Fatalf("GetDealDetail: %v", err)
	}

	if len(detail.Snapshots) != 2 {
		t.Fatalf("snapshots = %d, want 2", len(detail.Snapshots))
	}
	if detail.Snapshots[0].Snapshot.Version != 1 || detail.Snapshots[1].Snapshot.Version != 2 {
		t.Error("snapshots should be ordered by version")
	}
}
