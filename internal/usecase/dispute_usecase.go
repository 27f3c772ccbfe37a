package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/iho/splitledger/internal/domain"
	"github.com/iho/splitledger/internal/infrastructure/metrics"
)

// DisputeUseCase runs the dispute workflow and its SLA escalation sweep.
// Disputes are a pure audit trail: resolutions implying money movement
// are driven separately through reversals or recomputation.
type DisputeUseCase struct {
	txManager   TransactionManager
	disputeRepo DisputeRepository
	outboxRepo  OutboxRepository
	idGen       IDGenerator
	slaWindow   time.Duration
	metrics     *metrics.Metrics
}

// NewDisputeUseCase creates a new DisputeUseCase.
func NewDisputeUseCase(
	txManager TransactionManager,
	disputeRepo DisputeRepository,
	outboxRepo OutboxRepository,
	idGen IDGenerator,
	slaWindow time.Duration,
) *DisputeUseCase {
	if slaWindow <= 0 {
		slaWindow = DefaultSLAWindow
	}

	return &DisputeUseCase{
		txManager:   txManager,
		disputeRepo: disputeRepo,
		outboxRepo:  outboxRepo,
		idGen:       idGen,
		slaWindow:   slaWindow,
		metrics:     metrics.New(),
	}
}

// OpenDisputeInput represents input for opening a dispute.
type OpenDisputeInput struct {
	DealID        string
	SnapshotID    *string
	OpenerID      string
	AgainstUserID *string
	Type          domain.DisputeType
	Note          string
}

// OpenDispute opens a dispute with its SLA deadline.
func (uc *DisputeUseCase) OpenDispute(ctx context.Context, input OpenDisputeInput) (*domain.Dispute, error) {
	if input.DealID == "" || input.OpenerID == "" {
		return nil, domain.ErrInvalidState
	}

	if !input.Type.IsValid() {
		return nil, fmt.Errorf("%w: %q", domain.ErrInvalidDisputeType, input.Type)
	}

	now := time.Now().UTC()

	dispute := &domain.Dispute{
		ID:             uc.idGen.Generate(),
		DealID:         input.DealID,
		SnapshotID:     input.SnapshotID,
		OpenerID:       input.OpenerID,
		AgainstUserID:  input.AgainstUserID,
		Type:           input.Type,
		Status:         domain.DisputeStatusOpen,
		SLADueAt:       now.Add(uc.slaWindow),
		CreatedAt:      now,
		ResolutionNote: input.Note,
	}

	if err := uc.disputeRepo.Create(ctx, dispute); err != nil {
		return nil, err
	}

	uc.metrics.DisputesOpened.Inc()

	return dispute, nil
}

// SetStatusInput represents input for a manual status transition.
type SetStatusInput struct {
	DisputeID string
	NewStatus domain.DisputeStatus
	Note      string
}

// SetStatus applies a manual transition, validating it against the
// allowed edge set.
func (uc *DisputeUseCase) SetStatus(ctx context.Context, input SetStatusInput) (*domain.Dispute, error) {
	dispute, err := uc.disputeRepo.GetByID(ctx, input.DisputeID)
	if err != nil {
		return nil, err
	}

	if !domain.CanTransition(dispute.Status, input.NewStatus) {
		return nil, fmt.Errorf("%w: %s -> %s", domain.ErrInvalidTransition, dispute.Status, input.NewStatus)
	}

	if err := uc.disputeRepo.UpdateStatus(ctx, input.DisputeID, input.NewStatus, input.Note); err != nil {
		return nil, err
	}

	dispute.Status = input.NewStatus
	if input.Note != "" {
		dispute.ResolutionNote = input.Note
	}

	if input.NewStatus.IsResolved() {
		uc.metrics.DisputesResolved.WithLabelValues(string(input.NewStatus)).Inc()
	}

	return dispute, nil
}

// EscalateOverdue transitions every overdue OPEN/UNDER_REVIEW dispute to
// ESCALATED and returns the count. Safe to call repeatedly and under
// concurrent invocation: the transition is a conditional update, and
// already-escalated disputes are untouched.
func (uc *DisputeUseCase) EscalateOverdue(ctx context.Context) (int, error) {
	now := time.Now().UTC()

	tx, err := uc.txManager.Begin(ctx)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback(ctx)

	escalated, err := uc.disputeRepo.EscalateOverdue(ctx, tx, now)
	if err != nil {
		return 0, err
	}

	for _, dispute := range escalated {
		if err := uc.outboxRepo.Create(ctx, tx, &domain.OutboxEvent{
			ID:            uc.idGen.Generate(),
			AggregateID:   dispute.ID,
			AggregateType: domain.AggregateTypeDispute,
			EventType:     domain.EventTypeDisputeEscalated,
			Payload: map[string]any{
				"deal_id":    dispute.DealID,
				"sla_due_at": dispute.SLADueAt.Format(time.RFC3339),
			},
			CreatedAt: now,
		}); err != nil {
			return 0, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, err
	}

	uc.metrics.DisputesEscalated.Add(float64(len(escalated)))

	return len(escalated), nil
}

// GetDispute retrieves a dispute by ID.
func (uc *DisputeUseCase) GetDispute(ctx context.Context, id string) (*domain.Dispute, error) {
	return uc.disputeRepo.GetByID(ctx, id)
}

// ListByDeal lists disputes for a deal.
func (uc *DisputeUseCase) ListByDeal(ctx context.Context, dealID string, limit, offset int) ([]*domain.Dispute, error) {
	limit, offset = domain.ValidatePagination(limit, offset)
	return uc.disputeRepo.ListByDeal(ctx, dealID, limit, offset)
}
