package usecase_test

import (
	"context"
	"testing"

	"github.com/iho/splitledger/internal/domain"
)

func TestCheckConsistency_CleanLedger(t *testing.T) {
	r := newRig()

	report, err := r.ledgerUC.CheckConsistency(context.Background())
	if err != nil {
		t.Fatalf("CheckConsistency: %v", err)
	}

	if !report.Consistent {
		t.Error("empty ledger should be consistent")
	}
	if len(report.Violations) != 0 {
		t.Errorf("violations = %d, want 0", len(report.Violations))
	}
}

func TestCheckConsistency_ReportsViolations(t *testing.T) {
	r := newRig()

	r.ledger.CheckConsistencyFunc = func(ctx context.Context) ([]*domain.ConsistencyViolation, error) {
		return []*domain.ConsistencyViolation{
			{
				SnapshotID:    "snap-1",
				AllocationID:  "alloc-1",
				Detail:        "paid + reversed exceeds amount",
				AmountMinor:   100,
				PaidMinor:     80,
				ReversedMinor: 30,
			},
		}, nil
	}

	report, err := r.ledgerUC.CheckConsistency(context.Background())
	if err != nil {
		t.Fatalf("CheckConsistency: %v", err)
	}

	if report.Consistent {
		t.Error("report should flag the violation")
	}
	if len(report.Violations) != 1 {
		t.Fatalf("violations = %d, want 1", len(report.Violations))
	}
	if report.Violations[0].AllocationID != "alloc-1" {
		t.Errorf("allocation = %s, want alloc-1", report.Violations[0].AllocationID)
	}
}

func TestLedgerListByDeal_AppliesPaginationDefaults(t *testing.T) {
	r := newRig()

	var gotLimit, gotOffset int
	r.ledger.ListByDealFunc = func(ctx context.Context, dealID string, limit, offset int) ([]*domain.LedgerEntry, error) {
		gotLimit, gotOffset = limit, offset
		return nil, nil
	}

	if _, err := r.ledgerUC.ListByDeal(context.Background(), "deal-1", 0, -3); err != nil {
		t.Fatalf("ListByDeal: %v", err)
	}

	if gotLimit != 50 || gotOffset != 0 {
		t.Errorf("pagination = (%d, %d), want (50, 0)", gotLimit, gotOffset)
	}
}
