package dto

import (
	"testing"
	"time"

	"github.com/iho/splitledger/internal/domain"
)

func TestComputeSnapshotRequest_ToUseCaseInput(t *testing.T) {
	req := &ComputeSnapshotRequest{
		DealID:          "deal-1",
		PoolAmountMinor: "1000000",
		Currency:        "TRY",
		Beneficiaries: map[string]string{
			"HUNTER":     "user-hunter",
			"CONSULTANT": "user-consultant",
		},
	}

	input, err := req.ToUseCaseInput("maker-1")
	if err != nil {
		t.Fatalf("ToUseCaseInput: %v", err)
	}

	if input.PoolAmountMinor != 1_000_000 {
		t.Errorf("pool = %d, want 1000000", input.PoolAmountMinor)
	}
	if input.MakerID != "maker-1" {
		t.Errorf("maker = %q, want maker-1", input.MakerID)
	}
	if input.Beneficiaries[domain.RoleHunter] != "user-hunter" {
		t.Errorf("hunter beneficiary = %q", input.Beneficiaries[domain.RoleHunter])
	}
}

func TestComputeSnapshotRequest_RejectsNonIntegerAmount(t *testing.T) {
	req := &ComputeSnapshotRequest{DealID: "deal-1", PoolAmountMinor: "10000.50", Currency: "TRY"}

	if _, err := req.ToUseCaseInput("maker-1"); err == nil {
		t.Error("expected error for fractional amount string")
	}
}

func TestReverseRequest_ToUseCaseInput(t *testing.T) {
	full := &ReverseRequest{Reason: "deal cancelled"}

	input, err := full.ToUseCaseInput("snap-1", "ops-1")
	if err != nil {
		t.Fatalf("ToUseCaseInput: %v", err)
	}
	if input.AmountMinor != nil {
		t.Error("missing amount should mean full reversal")
	}
	if input.ActorID != "ops-1" || input.SnapshotID != "snap-1" {
		t.Errorf("identifiers not carried: %+v", input)
	}

	amount := "2500"
	partial := &ReverseRequest{Reason: "claw-back", AmountMinor: &amount}

	input, err = partial.ToUseCaseInput("snap-1", "ops-1")
	if err != nil {
		t.Fatalf("ToUseCaseInput: %v", err)
	}
	if input.AmountMinor == nil || *input.AmountMinor != 2500 {
		t.Errorf("amount = %v, want 2500", input.AmountMinor)
	}
}

func TestRecordPayoutRequest_ToUseCaseInput(t *testing.T) {
	req := &RecordPayoutRequest{
		PaidAt: time.Date(2026, 2, 1, 10, 0, 0, 0, time.UTC),
		Method: "BANK_TRANSFER",
		Links: []PayoutLinkRequest{
			{AllocationID: "alloc-1", AmountMinor: "100000"},
			{AllocationID: "alloc-2", AmountMinor: "200000"},
		},
	}

	input, err := req.ToUseCaseInput("ops-1")
	if err != nil {
		t.Fatalf("ToUseCaseInput: %v", err)
	}

	if input.Method != domain.PayoutMethodBankTransfer {
		t.Errorf("method = %s", input.Method)
	}
	if input.CreatedBy != "ops-1" {
		t.Errorf("created by = %q", input.CreatedBy)
	}
	if len(input.Links) != 2 || input.Links[1].AmountMinor != 200_000 {
		t.Errorf("links not converted: %+v", input.Links)
	}

	req.Links[0].AmountMinor = "lots"
	if _, err := req.ToUseCaseInput("ops-1"); err == nil {
		t.Error("expected error for unparseable link amount")
	}
}

func TestUpsertPolicyRequest_ParsesFixedCommission(t *testing.T) {
	fixed := "50000"
	req := &UpsertPolicyRequest{
		Name:                 "flat fee",
		CalcMethod:           "FIXED",
		FixedCommissionMinor: &fixed,
		Currency:             "TRY",
		HunterBp:             3000,
		ConsultantBp:         5000,
		BrokerBp:             1500,
		SystemBp:             500,
		RoundingRule:         "ROUND_HALF_UP",
	}

	input, err := req.ToUseCaseInput()
	if err != nil {
		t.Fatalf("ToUseCaseInput: %v", err)
	}

	if input.CalcMethod != domain.CalcMethodFixed {
		t.Errorf("calc method = %s", input.CalcMethod)
	}
	if input.FixedCommissionMinor == nil || *input.FixedCommissionMinor != 50_000 {
		t.Errorf("fixed commission = %v, want 50000", input.FixedCommissionMinor)
	}

	bad := "fifty"
	req.FixedCommissionMinor = &bad
	if _, err := req.ToUseCaseInput(); err == nil {
		t.Error("expected error for unparseable fixed commission")
	}
}
