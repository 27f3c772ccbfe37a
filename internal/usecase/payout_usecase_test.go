package usecase_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/iho/splitledger/internal/domain"
	"github.com/iho/splitledger/internal/usecase"
)

func TestRecordPayout_AppliesLinksAndPostsDebit(t *testing.T) {
	r := newRig()
	seedPolicy(t, r)

	_, allocations := approvedSnapshot(t, r, "deal-1", 1_000_000)
	hunter := allocByRole(t, allocations, domain.RoleHunter)
	consultant := allocByRole(t, allocations, domain.RoleConsultant)

	ref := "WIRE-42"
	payout, err := r.payoutUC.RecordPayout(context.Background(), usecase.RecordPayoutInput{
		PaidAt:      time.Now().UTC(),
		Method:      domain.PayoutMethodBankTransfer,
		ReferenceNo: &ref,
		CreatedBy:   "ops-1",
		Links: []usecase.PayoutLinkInput{
			{AllocationID: hunter.ID, AmountMinor: 100_000},
			{AllocationID: consultant.ID, AmountMinor: 200_000},
		},
	})
	if err != nil {
		t.Fatalf("RecordPayout: %v", err)
	}

	if _, err := r.payoutUC.GetPayout(context.Background(), payout.ID); err != nil {
		t.Errorf("payout not persisted: %v", err)
	}
	if len(r.payouts.Links) != 2 {
		t.Errorf("links = %d, want 2", len(r.payouts.Links))
	}

	if got := r.allocs.Get(hunter.ID).PaidMinor; got != 100_000 {
		t.Errorf("hunter paid = %d, want 100000", got)
	}
	if got := r.allocs.Get(consultant.ID).PaidMinor; got != 200_000 {
		t.Errorf("consultant paid = %d, want 200000", got)
	}

	// Allocation credit from approval plus one payout debit.
	if len(r.ledger.Entries) != 2 {
		t.Fatalf("ledger entries = %d, want 2", len(r.ledger.Entries))
	}

	debit := r.ledger.Entries[1]
	if debit.EntryType != domain.EntryTypePayout || debit.Direction != domain.DirectionDebit {
		t.Errorf("entry type %s direction %s, want PAYOUT DEBIT", debit.EntryType, debit.Direction)
	}
	if debit.AmountMinor != 300_000 {
		t.Errorf("debit amount = %d, want 300000", debit.AmountMinor)
	}
	if debit.DealID != "deal-1" {
		t.Errorf("debit deal = %s, want deal-1", debit.DealID)
	}

	if n := countOutboxEvents(r, domain.EventTypePayoutRecorded); n != 1 {
		t.Errorf("payout.recorded events = %d, want 1", n)
	}
}

func TestRecordPayout_Overpayment(t *testing.T) {
	r := newRig()
	seedPolicy(t, r)

	_, allocations := approvedSnapshot(t, r, "deal-1", 1_000_000)
	hunter := allocByRole(t, allocations, domain.RoleHunter)

	_, err := r.payoutUC.RecordPayout(context.Background(), usecase.RecordPayoutInput{
		PaidAt:    time.Now().UTC(),
		Method:    domain.PayoutMethodBankTransfer,
		CreatedBy: "ops-1",
		Links: []usecase.PayoutLinkInput{
			{AllocationID: hunter.ID, AmountMinor: hunter.AmountMinor + 1},
		},
	})
	if !errors.Is(err, domain.ErrOverpayment) {
		t.Fatalf("expected ErrOverpayment, got %v", err)
	}

	if got := r.allocs.Get(hunter.ID).PaidMinor; got != 0 {
		t.Errorf("paid = %d after failed payout, want 0", got)
	}
	if len(r.payouts.Payouts) != 0 {
		t.Errorf("payouts = %d, want 0", len(r.payouts.Payouts))
	}
}

func TestRecordPayout_DuplicateLink(t *testing.T) {
	r := newRig()
	seedPolicy(t, r)

	_, allocations := approvedSnapshot(t, r, "deal-1", 1_000_000)
	hunter := allocByRole(t, allocations, domain.RoleHunter)

	_, err := r.payoutUC.RecordPayout(context.Background(), usecase.RecordPayoutInput{
		PaidAt:    time.Now().UTC(),
		Method:    domain.PayoutMethodBankTransfer,
		CreatedBy: "ops-1",
		Links: []usecase.PayoutLinkInput{
			{AllocationID: hunter.ID, AmountMinor: 100},
			{AllocationID: hunter.ID, AmountMinor: 200},
		},
	})
	if !errors.Is(err, domain.ErrDuplicateLink) {
		t.Errorf("expected ErrDuplicateLink, got %v", err)
	}
}

func TestRecordPayout_UnknownAllocation(t *testing.T) {
	r := newRig()
	seedPolicy(t, r)
	approvedSnapshot(t, r, "deal-1", 1_000_000)

	_, err := r.payoutUC.RecordPayout(context.Background(), usecase.RecordPayoutInput{
		PaidAt:    time.Now().UTC(),
		Method:    domain.PayoutMethodBankTransfer,
		CreatedBy: "ops-1",
		Links: []usecase.PayoutLinkInput{
			{AllocationID: "missing", AmountMinor: 100},
		},
	})
	if !errors.Is(err, domain.ErrAllocationNotFound) {
		t.Errorf("expected ErrAllocationNotFound, got %v", err)
	}
}

func TestRecordPayout_CrossDealRefused(t *testing.T) {
	r := newRig()
	seedPolicy(t, r)

	_, first := approvedSnapshot(t, r, "deal-1", 1_000_000)
	_, second := approvedSnapshot(t, r, "deal-2", 500_000)

	_, err := r.payoutUC.RecordPayout(context.Background(), usecase.RecordPayoutInput{
		PaidAt:    time.Now().UTC(),
		Method:    domain.PayoutMethodBankTransfer,
		CreatedBy: "ops-1",
		Links: []usecase.PayoutLinkInput{
			{AllocationID: allocByRole(t, first, domain.RoleHunter).ID, AmountMinor: 100},
			{AllocationID: allocByRole(t, second, domain.RoleHunter).ID, AmountMinor: 100},
		},
	})
	if !errors.Is(err, domain.ErrCrossDealPayout) {
		t.Errorf("expected ErrCrossDealPayout, got %v", err)
	}
}

func TestRecordPayout_RequiresPayableSnapshot(t *testing.T) {
	r := newRig()
	seedPolicy(t, r)

	result := computeSnapshot(t, r, "deal-1", 1_000_000)
	hunter := allocByRole(t, result.Allocations, domain.RoleHunter)

	_, err := r.payoutUC.RecordPayout(context.Background(), usecase.RecordPayoutInput{
		PaidAt:    time.Now().UTC(),
		Method:    domain.PayoutMethodBankTransfer,
		CreatedBy: "ops-1",
		Links: []usecase.PayoutLinkInput{
			{AllocationID: hunter.ID, AmountMinor: 100},
		},
	})
	if !errors.Is(err, domain.ErrInvalidState) {
		t.Errorf("expected ErrInvalidState, got %v", err)
	}
}

func TestRecordPayout_LockCheckedAtPaymentTime(t *testing.T) {
	r := newRig()
	seedPolicy(t, r)

	_, allocations := approvedSnapshot(t, r, "deal-1", 1_000_000)
	hunter := allocByRole(t, allocations, domain.RoleHunter)

	paidAt := time.Date(2026, 1, 15, 12, 0, 0, 0, time.UTC)

	var checkedAt time.Time
	r.guard.AssertUnlockedFunc = func(ctx context.Context, tx usecase.Transaction, at time.Time) error {
		checkedAt = at
		return domain.ErrPeriodLocked
	}

	_, err := r.payoutUC.RecordPayout(context.Background(), usecase.RecordPayoutInput{
		PaidAt:    paidAt,
		Method:    domain.PayoutMethodBankTransfer,
		CreatedBy: "ops-1",
		Links: []usecase.PayoutLinkInput{
			{AllocationID: hunter.ID, AmountMinor: 100},
		},
	})
	if !errors.Is(err, domain.ErrPeriodLocked) {
		t.Fatalf("expected ErrPeriodLocked, got %v", err)
	}
	if !checkedAt.Equal(paidAt) {
		t.Errorf("lock checked at %s, want payment time %s", checkedAt, paidAt)
	}
}

func TestRecordPayout_RejectsBadInput(t *testing.T) {
	link := usecase.PayoutLinkInput{AllocationID: "alloc-1", AmountMinor: 100}

	tests := []struct {
		name    string
		input   usecase.RecordPayoutInput
		wantErr error
	}{
		{
			name:    "no links",
			input:   usecase.RecordPayoutInput{PaidAt: time.Now(), Method: domain.PayoutMethodBankTransfer, CreatedBy: "ops-1"},
			wantErr: domain.ErrInvalidState,
		},
		{
			name:    "missing creator",
			input:   usecase.RecordPayoutInput{PaidAt: time.Now(), Method: domain.PayoutMethodBankTransfer, Links: []usecase.PayoutLinkInput{link}},
			wantErr: domain.ErrInvalidState,
		},
		{
			name:    "zero paid-at",
			input:   usecase.RecordPayoutInput{Method: domain.PayoutMethodBankTransfer, CreatedBy: "ops-1", Links: []usecase.PayoutLinkInput{link}},
			wantErr: domain.ErrInvalidState,
		},
		{
			name:    "unknown method",
			input:   usecase.RecordPayoutInput{PaidAt: time.Now(), Method: "CHEQUE", CreatedBy: "ops-1", Links: []usecase.PayoutLinkInput{link}},
			wantErr: domain.ErrInvalidState,
		},
		{
			name: "non-positive link amount",
			input: usecase.RecordPayoutInput{
				PaidAt: time.Now(), Method: domain.PayoutMethodBankTransfer, CreatedBy: "ops-1",
				Links: []usecase.PayoutLinkInput{{AllocationID: "alloc-1", AmountMinor: 0}},
			},
			wantErr: domain.ErrInvalidAmount,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newRig()

			_, err := r.payoutUC.RecordPayout(context.Background(), tt.input)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}
