package usecase_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/iho/splitledger/internal/domain"
	"github.com/iho/splitledger/internal/usecase"
)

func TestOpenDispute_SetsSLADeadline(t *testing.T) {
	r := newRig()

	against := "user-consultant"
	dispute, err := r.disputeUC.OpenDispute(context.Background(), usecase.OpenDisputeInput{
		DealID:        "deal-1",
		OpenerID:      "user-hunter",
		AgainstUserID: &against,
		Type:          domain.DisputeTypeAttribution,
		Note:          "wrong consultant credited",
	})
	if err != nil {
		t.Fatalf("OpenDispute: %v", err)
	}

	if dispute.Status != domain.DisputeStatusOpen {
		t.Errorf("status = %s, want OPEN", dispute.Status)
	}

	// The rig is built with a 48h SLA window.
	if got := dispute.SLADueAt.Sub(dispute.CreatedAt); got != 48*time.Hour {
		t.Errorf("SLA window = %s, want 48h", got)
	}

	if _, err := r.disputeUC.GetDispute(context.Background(), dispute.ID); err != nil {
		t.Errorf("dispute not persisted: %v", err)
	}
}

func TestOpenDispute_RejectsBadInput(t *testing.T) {
	r := newRig()

	_, err := r.disputeUC.OpenDispute(context.Background(), usecase.OpenDisputeInput{
		OpenerID: "user-hunter",
		Type:     domain.DisputeTypeAmount,
	})
	if !errors.Is(err, domain.ErrInvalidState) {
		t.Errorf("missing deal: expected ErrInvalidState, got %v", err)
	}

	_, err = r.disputeUC.OpenDispute(context.Background(), usecase.OpenDisputeInput{
		DealID:   "deal-1",
		OpenerID: "user-hunter",
		Type:     "FRAUD",
	})
	if !errors.Is(err, domain.ErrInvalidDisputeType) {
		t.Errorf("unknown type: expected ErrInvalidDisputeType, got %v", err)
	}
}

func TestSetStatus_AllowsLegalTransitionsOnly(t *testing.T) {
	r := newRig()

	dispute, err := r.disputeUC.OpenDispute(context.Background(), usecase.OpenDisputeInput{
		DealID:   "deal-1",
		OpenerID: "user-hunter",
		Type:     domain.DisputeTypeAmount,
	})
	if err != nil {
		t.Fatalf("OpenDispute: %v", err)
	}

	reviewed, err := r.disputeUC.SetStatus(context.Background(), usecase.SetStatusInput{
		DisputeID: dispute.ID,
		NewStatus: domain.DisputeStatusUnderReview,
	})
	if err != nil {
		t.Fatalf("SetStatus to UNDER_REVIEW: %v", err)
	}
	if reviewed.Status != domain.DisputeStatusUnderReview {
		t.Errorf("status = %s, want UNDER_REVIEW", reviewed.Status)
	}

	resolved, err := r.disputeUC.SetStatus(context.Background(), usecase.SetStatusInput{
		DisputeID: dispute.ID,
		NewStatus: domain.DisputeStatusResolvedApproved,
		Note:      "split corrected via reversal",
	})
	if err != nil {
		t.Fatalf("SetStatus to RESOLVED_APPROVED: %v", err)
	}
	if resolved.ResolutionNote != "split corrected via reversal" {
		t.Errorf("resolution note = %q", resolved.ResolutionNote)
	}

	// Resolved disputes accept no further transitions.
	_, err = r.disputeUC.SetStatus(context.Background(), usecase.SetStatusInput{
		DisputeID: dispute.ID,
		NewStatus: domain.DisputeStatusOpen,
	})
	if !errors.Is(err, domain.ErrInvalidTransition) {
		t.Errorf("expected ErrInvalidTransition, got %v", err)
	}
}

func TestEscalateOverdue(t *testing.T) {
	r := newRig()
	now := time.Now().UTC()

	r.disputes.Seed(
		&domain.Dispute{
			ID: "d-overdue", DealID: "deal-1", OpenerID: "u-1",
			Type: domain.DisputeTypeAmount, Status: domain.DisputeStatusOpen,
			SLADueAt: now.Add(-time.Hour), CreatedAt: now.Add(-73 * time.Hour),
		},
		&domain.Dispute{
			ID: "d-fresh", DealID: "deal-2", OpenerID: "u-2",
			Type: domain.DisputeTypeRole, Status: domain.DisputeStatusOpen,
			SLADueAt: now.Add(time.Hour), CreatedAt: now,
		},
		&domain.Dispute{
			ID: "d-escalated", DealID: "deal-3", OpenerID: "u-3",
			Type: domain.DisputeTypeOther, Status: domain.DisputeStatusEscalated,
			SLADueAt: now.Add(-time.Hour), CreatedAt: now.Add(-100 * time.Hour),
		},
	)

	count, err := r.disputeUC.EscalateOverdue(context.Background())
	if err != nil {
		t.Fatalf("EscalateOverdue: %v", err)
	}
	if count != 1 {
		t.Errorf("escalated = %d, want 1", count)
	}

	escalated, err := r.disputeUC.GetDispute(context.Background(), "d-overdue")
	if err != nil {
		t.Fatalf("GetDispute: %v", err)
	}
	if escalated.Status != domain.DisputeStatusEscalated {
		t.Errorf("status = %s, want ESCALATED", escalated.Status)
	}

	fresh, err := r.disputeUC.GetDispute(context.Background(), "d-fresh")
	if err != nil {
		t.Fatalf("GetDispute: %v", err)
	}
	if fresh.Status != domain.DisputeStatusOpen {
		t.Errorf("fresh dispute status = %s, want OPEN", fresh.Status)
	}

	if n := countOutboxEvents(r, domain.EventTypeDisputeEscalated); n != 1 {
		t.Errorf("dispute.escalated events = %d, want 1", n)
	}

	// A second sweep finds nothing left to escalate.
	count, err = r.disputeUC.EscalateOverdue(context.Background())
	if err != nil {
		t.Fatalf("second EscalateOverdue: %v", err)
	}
	if count != 0 {
		t.Errorf("second sweep escalated = %d, want 0", count)
	}
}

func TestListDisputesByDeal(t *testing.T) {
	r := newRig()

	for _, dealID := range []string{"deal-1", "deal-1", "deal-2"} {
		if _, err := r.disputeUC.OpenDispute(context.Background(), usecase.OpenDisputeInput{
			DealID:   dealID,
			OpenerID: "user-hunter",
			Type:     domain.DisputeTypeOther,
		}); err != nil {
			t.Fatalf("OpenDispute: %v", err)
		}
	}

	disputes, err := r.disputeUC.ListByDeal(context.Background(), "deal-1", 0, 0)
	if err != nil {
		t.Fatalf("ListByDeal: %v", err)
	}
	if len(disputes) != 2 {
		t.Errorf("disputes = %d, want 2", len(disputes))
	}
}
