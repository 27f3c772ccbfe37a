package usecase_test

import (
	"context"
	"errors"
	"testing"

	"github.com/iho/splitledger/internal/domain"
	"github.com/iho/splitledger/internal/usecase"
)

func TestComputeSnapshot_SplitsPoolIntoPendingAllocations(t *testing.T) {
	r := newRig()
	seedPolicy(t, r)

	result := computeSnapshot(t, r, "deal-1", 1_000_000)

	snapshot := result.Snapshot
	if snapshot.Version != 1 {
		t.Errorf("version = %d, want 1", snapshot.Version)
	}
	if snapshot.Status != domain.SnapshotStatusPendingApproval {
		t.Errorf("status = %s, want PENDING_APPROVAL", snapshot.Status)
	}
	if snapshot.PolicyID != "pol-1" {
		t.Errorf("policy id = %s, want pol-1", snapshot.PolicyID)
	}

	want := map[domain.Role]int64{
		domain.RoleHunter:     300_000,
		domain.RoleConsultant: 500_000,
		domain.RoleBroker:     150_000,
		domain.RoleSystem:     50_000,
	}

	var sum int64
	for _, alloc := range result.Allocations {
		if alloc.AmountMinor != want[alloc.Role] {
			t.Errorf("allocation[%s] = %d, want %d", alloc.Role, alloc.AmountMinor, want[alloc.Role])
		}
		if alloc.Role == domain.RoleSystem && alloc.UserID != nil {
			t.Errorf("SYSTEM allocation should have no beneficiary, got %s", *alloc.UserID)
		}
		if alloc.Role != domain.RoleSystem && alloc.UserID == nil {
			t.Errorf("%s allocation missing beneficiary", alloc.Role)
		}
		sum += alloc.AmountMinor
	}
	if sum != snapshot.PoolAmountMinor {
		t.Errorf("allocations sum to %d, want %d", sum, snapshot.PoolAmountMinor)
	}

	if n := countOutboxEvents(r, domain.EventTypeSnapshotComputed); n != 1 {
		t.Errorf("snapshot.computed events = %d, want 1", n)
	}
}

func TestComputeSnapshot_ReturnsInFlightSnapshotOnRecompute(t *testing.T) {
	r := newRig()
	seedPolicy(t, r)

	first := computeSnapshot(t, r, "deal-1", 1_000_000)
	second := computeSnapshot(t, r, "deal-1", 1_000_000)

	if second.Snapshot.ID != first.Snapshot.ID {
		t.Errorf("recompute created a new snapshot %s, want %s", second.Snapshot.ID, first.Snapshot.ID)
	}
	if second.Snapshot.Version != 1 {
		t.Errorf("version = %d, want 1", second.Snapshot.Version)
	}
	if len(second.Allocations) != len(first.Allocations) {
		t.Errorf("allocations = %d, want %d", len(second.Allocations), len(first.Allocations))
	}

	if n := countOutboxEvents(r, domain.EventTypeSnapshotComputed); n != 1 {
		t.Errorf("snapshot.computed events = %d, want 1", n)
	}
}

func TestComputeSnapshot_NewVersionWhenPoolChanges(t *testing.T) {
	r := newRig()
	seedPolicy(t, r)

	first := computeSnapshot(t, r, "deal-1", 1_000_000)
	second := computeSnapshot(t, r, "deal-1", 2_000_000)

	if second.Snapshot.ID == first.Snapshot.ID {
		t.Error("changed pool should create a new snapshot")
	}
	if second.Snapshot.Version != 2 {
		t.Errorf("version = %d, want 2", second.Snapshot.Version)
	}
}

func TestComputeSnapshot_NewVersionAfterTerminalSnapshot(t *testing.T) {
	r := newRig()
	seedPolicy(t, r)

	snapshot, _ := approvedSnapshot(t, r, "deal-1", 1_000_000)

	// Identical inputs, but the latest version is no longer in flight.
	second := computeSnapshot(t, r, "deal-1", 1_000_000)

	if second.Snapshot.ID == snapshot.ID {
		t.Error("recompute after approval should create a new version")
	}
	if second.Snapshot.Version != 2 {
		t.Errorf("version = %d, want 2", second.Snapshot.Version)
	}
}

func TestComputeSnapshot_RefusedDuringActiveLock(t *testing.T) {
	r := newRig()
	seedPolicy(t, r)
	lockEverything(r)

	_, err := r.snapshotUC.ComputeSnapshot(context.Background(), usecase.ComputeSnapshotInput{
		DealID:          "deal-1",
		PoolAmountMinor: 1_000_000,
		Currency:        "TRY",
		MakerID:         "maker-1",
		Beneficiaries:   testBeneficiaries(),
	})
	if !errors.Is(err, domain.ErrPeriodLocked) {
		t.Errorf("expected ErrPeriodLocked, got %v", err)
	}
}

func TestComputeSnapshot_RejectsBadInput(t *testing.T) {
	tests := []struct {
		name    string
		input   usecase.ComputeSnapshotInput
		wantErr error
	}{
		{
			name:    "missing deal",
			input:   usecase.ComputeSnapshotInput{PoolAmountMinor: 100, Currency: "TRY", MakerID: "maker-1"},
			wantErr: domain.ErrInvalidState,
		},
		{
			name:    "missing maker",
			input:   usecase.ComputeSnapshotInput{DealID: "deal-1", PoolAmountMinor: 100, Currency: "TRY"},
			wantErr: domain.ErrInvalidState,
		},
		{
			name:    "zero pool",
			input:   usecase.ComputeSnapshotInput{DealID: "deal-1", Currency: "TRY", MakerID: "maker-1"},
			wantErr: domain.ErrInvalidAmount,
		},
		{
			name:    "unsupported currency",
			input:   usecase.ComputeSnapshotInput{DealID: "deal-1", PoolAmountMinor: 100, Currency: "BTC", MakerID: "maker-1"},
			wantErr: domain.ErrInvalidPolicy,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newRig()
			seedPolicy(t, r)

			_, err := r.snapshotUC.ComputeSnapshot(context.Background(), tt.input)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestComputeSnapshot_NoEffectivePolicy(t *testing.T) {
	r := newRig()

	_, err := r.snapshotUC.ComputeSnapshot(context.Background(), usecase.ComputeSnapshotInput{
		DealID:          "deal-1",
		PoolAmountMinor: 1_000_000,
		Currency:        "TRY",
		MakerID:         "maker-1",
	})
	if !errors.Is(err, domain.ErrNoActivePolicy) {
		t.Errorf("expected ErrNoActivePolicy, got %v", err)
	}
}
