package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/iho/splitledger/internal/adapter/http/dto"
	"github.com/iho/splitledger/internal/domain"
	"github.com/iho/splitledger/internal/usecase"
	"github.com/iho/splitledger/internal/usecase/mocks"
)

type snapshotFixture struct {
	handler *SnapshotHandler
}

func newSnapshotFixture(t *testing.T) *snapshotFixture {
	t.Helper()

	txm := mocks.NewMockTransactionManager()
	idGen := mocks.NewMockIDGenerator()
	retrier := mocks.NewMockRetrier()
	guard := mocks.NewMockLockGuard()

	policies := mocks.NewMockPolicyRepository()
	snaps := mocks.NewMockSnapshotRepository()
	allocs := mocks.NewMockAllocationRepository()
	ledger := mocks.NewMockLedgerRepository()
	outbox := mocks.NewMockOutboxRepository()

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
	if err := policies.Create(context.Background(), policy); err != nil {
		t.Fatalf("seed policy: %v", err)
	}

	policyUC := usecase.NewPolicyUseCase(policies, mocks.NewMockCache(), idGen, time.Minute)
	snapshotUC := usecase.NewSnapshotUseCase(txm, policyUC, snaps, allocs, outbox, guard, idGen)
	approvalUC := usecase.NewApprovalUseCase(txm, snaps, ledger, outbox, guard, idGen, retrier)
	reversalUC := usecase.NewReversalUseCase(txm, snaps, allocs, ledger, outbox, guard, idGen, retrier)

	return &snapshotFixture{
		handler: NewSnapshotHandler(snapshotUC, approvalUC, reversalUC),
	}
}

func computeRequestBody(t *testing.T) []byte {
	t.Helper()

	body, err := json.Marshal(dto.ComputeSnapshotRequest{
		DealID:          "deal-1",
		PoolAmountMinor: "1000000",
		Currency:        "TRY",
		Beneficiaries: map[string]string{
			"HUNTER":     "user-hunter",
			"CONSULTANT": "user-consultant",
			"BROKER":     "user-broker",
		},
	})
	if err != nil {
		t.Fatalf("marshal request: %v", err)
	}
	return body
}

func TestSnapshotHandler_Compute_Success(t *testing.T) {
	f := newSnapshotFixture(t)

	req := httptest.NewRequest(http.MethodPost, "/snapshots/compute", bytes.NewReader(computeRequestBody(t)))
	rec := serveAsActor(f.handler.Compute, req, "maker-1")

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp dto.ComputeSnapshotResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}

	if resp.Snapshot.Status != string(domain.SnapshotStatusPendingApproval) {
		t.Fatalf("expected pending snapshot, got %s", resp.Snapshot.Status)
	}
	if resp.Snapshot.MakerID != "maker-1" {
		t.Fatalf("expected maker from identity header, got %s", resp.Snapshot.MakerID)
	}
	if len(resp.Allocations) != len(domain.AllRoles) {
		t.Fatalf("expected %d allocations, got %d", len(domain.AllRoles), len(resp.Allocations))
	}
	if resp.Snapshot.PoolAmountMinor != "1000000" {
		t.Fatalf("expected pool echoed as minor units, got %s", resp.Snapshot.PoolAmountMinor)
	}
}

func TestSnapshotHandler_Compute_MissingActor(t *testing.T) {
	f := newSnapshotFixture(t)

	req := httptest.NewRequest(http.MethodPost, "/snapshots/compute", bytes.NewReader(computeRequestBody(t)))
	rec := serveAsActor(f.handler.Compute, req, "")

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestSnapshotHandler_Compute_InvalidBody(t *testing.T) {
	f := newSnapshotFixture(t)

	req := httptest.NewRequest(http.MethodPost, "/snapshots/compute", bytes.NewBufferString("{bad json"))
	rec := serveAsActor(f.handler.Compute, req, "maker-1")

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestSnapshotHandler_Compute_InvalidAmount(t *testing.T) {
	f := newSnapshotFixture(t)

	body := `{"deal_id":"deal-1","pool_amount_minor":"12.50","currency":"TRY"}`
	req := httptest.NewRequest(http.MethodPost, "/snapshots/compute", strings.NewReader(body))
	rec := serveAsActor(f.handler.Compute, req, "maker-1")

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestSnapshotHandler_Approve_Success(t *testing.T) {
	f := newSnapshotFixture(t)
	snapshotID := computeFixtureSnapshot(t, f)

	req := httptest.NewRequest(http.MethodPost, "/snapshots/"+snapshotID+"/approve", strings.NewReader(`{"note":"ok"}`))
	req = setChiURLParam(req, "id", snapshotID)
	rec := serveAsActor(f.handler.Approve, req, "checker-1")

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp dto.SnapshotResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Status != string(domain.SnapshotStatusApproved) {
		t.Fatalf("expected approved, got %s", resp.Status)
	}
	if resp.ApproverID == nil || *resp.ApproverID != "checker-1" {
		t.Fatalf("expected approver to be recorded, got %+v", resp.ApproverID)
	}
}

func TestSnapshotHandler_Approve_SelfApprovalForbidden(t *testing.T) {
	f := newSnapshotFixture(t)
	snapshotID := computeFixtureSnapshot(t, f)

	req := httptest.NewRequest(http.MethodPost, "/snapshots/"+snapshotID+"/approve", nil)
	req = setChiURLParam(req, "id", snapshotID)
	rec := serveAsActor(f.handler.Approve, req, "maker-1")

	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rec.Code)
	}
}

func TestSnapshotHandler_Reverse_RequiresApprovedSnapshot(t *testing.T) {
	f := newSnapshotFixture(t)
	snapshotID := computeFixtureSnapshot(t, f)

	body := `{"reason":"deal fell through"}`
	req := httptest.NewRequest(http.MethodPost, "/snapshots/"+snapshotID+"/reverse", strings.NewReader(body))
	req = setChiURLParam(req, "id", snapshotID)
	rec := serveAsActor(f.handler.Reverse, req, "ops-1")

	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409 for pending snapshot, got %d", rec.Code)
	}
}

func TestSnapshotHandler_Get_NotFound(t *testing.T) {
	f := newSnapshotFixture(t)

	req := httptest.NewRequest(http.MethodGet, "/snapshots/missing", nil)
	req = setChiURLParam(req, "id", "missing")
	rec := httptest.NewRecorder()

	f.handler.Get(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func computeFixtureSnapshot(t *testing.T, f *snapshotFixture) string {
	t.Helper()

	req := httptest.NewRequest(http.MethodPost, "/snapshots/compute", bytes.NewReader(computeRequestBody(t)))
	rec := serveAsActor(f.handler.Compute, req, "maker-1")
	if rec.Code != http.StatusCreated {
		t.Fatalf("compute failed: %d %s", rec.Code, rec.Body.String())
	}

	var resp dto.ComputeSnapshotResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	return resp.Snapshot.ID
}
