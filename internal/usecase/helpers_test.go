package usecase_test

import (
	"context"
	"testing"
	"time"

	"github.com/iho/splitledger/internal/domain"
	"github.com/iho/splitledger/internal/usecase"
	"github.com/iho/splitledger/internal/usecase/mocks"
)

// rig wires every use case against the in-memory mocks so tests can
// drive full flows (compute, approve, pay out, reverse) end to end.
type rig struct {
	txm      *mocks.MockTransactionManager
	idGen    *mocks.MockIDGenerator
	guard    *mocks.MockLockGuard
	cache    *mocks.MockCache
	policies *mocks.MockPolicyRepository
	snaps    *mocks.MockSnapshotRepository
	allocs   *mocks.MockAllocationRepository
	ledger   *mocks.MockLedgerRepository
	payouts  *mocks.MockPayoutRepository
	disputes *mocks.MockDisputeRepository
	locks    *mocks.MockPeriodLockRepository
	outbox   *mocks.MockOutboxRepository

	policyUC   *usecase.PolicyUseCase
	snapshotUC *usecase.SnapshotUseCase
	approvalUC *usecase.ApprovalUseCase
	reversalUC *usecase.ReversalUseCase
	payoutUC   *usecase.PayoutUseCase
	disputeUC  *usecase.DisputeUseCase
	lockUC     *usecase.PeriodLockUseCase
	summaryUC  *usecase.SummaryUseCase
	ledgerUC   *usecase.LedgerUseCase
}

func newRig() *rig {
	r := &rig{
		txm:      mocks.NewMockTransactionManager(),
		idGen:    mocks.NewMockIDGenerator(),
		guard:    mocks.NewMockLockGuard(),
		cache:    mocks.NewMockCache(),
		policies: mocks.NewMockPolicyRepository(),
		snaps:    mocks.NewMockSnapshotRepository(),
		allocs:   mocks.NewMockAllocationRepository(),
		ledger:   mocks.NewMockLedgerRepository(),
		payouts:  mocks.NewMockPayoutRepository(),
		disputes: mocks.NewMockDisputeRepository(),
		locks:    mocks.NewMockPeriodLockRepository(),
		outbox:   mocks.NewMockOutboxRepository(),
	}

	retrier := mocks.NewMockRetrier()

	r.policyUC = usecase.NewPolicyUseCase(r.policies, r.cache, r.idGen, time.Minute)
	r.snapshotUC = usecase.NewSnapshotUseCase(r.txm, r.policyUC, r.snaps, r.allocs, r.outbox, r.guard, r.idGen)
	r.approvalUC = usecase.NewApprovalUseCase(r.txm, r.snaps, r.ledger, r.outbox, r.guard, r.idGen, retrier)
	r.reversalUC = usecase.NewReversalUseCase(r.txm, r.snaps, r.allocs, r.ledger, r.outbox, r.guard, r.idGen, retrier)
	r.payoutUC = usecase.NewPayoutUseCase(r.txm, r.snaps, r.allocs, r.payouts, r.ledger, r.outbox, r.guard, r.idGen, retrier)
	r.disputeUC = usecase.NewDisputeUseCase(r.txm, r.disputes, r.outbox, r.idGen, 48*time.Hour)
	r.lockUC = usecase.NewPeriodLockUseCase(r.txm, r.locks, r.outbox, r.idGen)
	r.summaryUC = usecase.NewSummaryUseCase(r.snaps, r.allocs, r.ledger, r.payouts)
	r.ledgerUC = usecase.NewLedgerUseCase(r.ledger)

	return r
}

// seedPolicy installs a 30/50/15/5 percentage policy effective an hour ago.
func seedPolicy(t *testing.T, r *rig) *domain.CommissionPolicy {
	t.Helper()

	rate := int64(1000)
	policy := &domain.CommissionPolicy{
		ID:                       "pol-1",
		Name:                     "standard",
		CalcMethod:               domain.CalcMethodPercentage,
		CommissionRateBasisPoint: &rate,
		Currency:                 "TRY",
		HunterBp:                 3000,
		ConsultantBp:             5000,
		BrokerBp:                 1500,
		SystemBp:                 500,
		RoundingRule:             domain.RoundHalfUp,
		EffectiveFrom:            time.Now().UTC().Add(-time.Hour),
		CreatedAt:                time.Now().UTC().Add(-time.Hour),
	}

	if err := r.policies.Create(context.Background(), policy); err != nil {
		t.Fatalf("seed policy: %v", err)
	}
	return policy
}

func testBeneficiaries() map[domain.Role]string {
	return map[domain.Role]string{
		domain.RoleHunter:     "user-hunter",
		domain.RoleConsultant: "user-consultant",
		domain.RoleBroker:     "user-broker",
	}
}

func computeSnapshot(t *testing.T, r *rig, dealID string, pool int64) *usecase.ComputeSnapshotResult {
	t.Helper()

	result, err := r.snapshotUC.ComputeSnapshot(context.Background(), usecase.ComputeSnapshotInput{
		DealID:          dealID,
		PoolAmountMinor: pool,
		Currency:        "TRY",
		MakerID:         "maker-1",
		Beneficiaries:   testBeneficiaries(),
	})
	if err != nil {
		t.Fatalf("ComputeSnapshot: %v", err)
	}
	return result
}

// approvedSnapshot computes a snapshot and pushes it through approval.
func approvedSnapshot(t *testing.T, r *rig, dealID string, pool int64) (*domain.CommissionSnapshot, []*domain.CommissionAllocation) {
	t.Helper()

	result := computeSnapshot(t, r, dealID, pool)

	snapshot, err := r.approvalUC.Approve(context.Background(), usecase.DecisionInput{
		SnapshotID: result.Snapshot.ID,
		ApproverID: "checker-1",
	})
	if err != nil {
		t.Fatalf("Approve: %v", err)
	}
	return snapshot, result.Allocations
}

func allocByRole(t *testing.T, allocations []*domain.CommissionAllocation, role domain.Role) *domain.CommissionAllocation {
	t.Helper()

	for _, alloc := range allocations {
		if alloc.Role == role {
			return alloc
		}
	}
	t.Fatalf("no allocation for role %s", role)
	return nil
}

// lockEverything makes the guard refuse every mutation.
func lockEverything(r *rig) {
	r.guard.AssertUnlockedFunc = func(ctx context.Context, tx usecase.Transaction, at time.Time) error {
		return domain.ErrPeriodLocked
	}
}

func countOutboxEvents(r *rig, eventType string) int {
	n := 0
	for _, event := range r.outbox.Events {
		if event.EventType == eventType {
			n++
		}
	}
	return n
}
