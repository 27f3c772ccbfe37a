package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/iho/splitledger/internal/domain"
	"github.com/iho/splitledger/internal/usecase"
)

// DisputeRepository implements usecase.DisputeRepository.
type DisputeRepository struct {
	pool *pgxpool.Pool
}

// NewDisputeRepository creates a new DisputeRepository.
func NewDisputeRepository(pool *pgxpool.Pool) *DisputeRepository {
	return &DisputeRepository{pool: pool}
}

const disputeColumns = `id, deal_id, snapshot_id, opener_id, against_user_id,
	dispute_type, status, sla_due_at, created_at, resolution_note`

// Create inserts a dispute.
func (r *DisputeRepository) Create(ctx context.Context, dispute *domain.Dispute) error {
	const insertSQL = `
		INSERT INTO disputes (` + disputeColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	_, err := r.pool.Exec(ctx, insertSQL,
		dispute.ID,
		dispute.DealID,
		dispute.SnapshotID,
		dispute.OpenerID,
		dispute.AgainstUserID,
		string(dispute.Type),
		string(dispute.Status),
		dispute.SLADueAt,
		dispute.CreatedAt,
		dispute.ResolutionNote,
	)

	return err
}

// GetByID retrieves a dispute by ID.
func (r *DisputeRepository) GetByID(ctx context.Context, id string) (*domain.Dispute, error) {
	const selectSQL = `
		SELECT ` + disputeColumns + `
		FROM disputes
		WHERE id = $1
	`

	dispute, err := scanDispute(r.pool.QueryRow(ctx, selectSQL, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrDisputeNotFound
		}

		return nil, err
	}

	return dispute, nil
}

// UpdateStatus updates a dispute's workflow state.
func (r *DisputeRepository) UpdateStatus(ctx context.Context, id string, status domain.DisputeStatus, resolutionNote string) error {
	const updateSQL = `
		UPDATE disputes
		SET status = $2,
			resolution_note = CASE WHEN $3 <> '' THEN $3 ELSE resolution_note END
		WHERE id = $1
	`

	tag, err := r.pool.Exec(ctx, updateSQL, id, string(status), resolutionNote)
	if err != nil {
		return err
	}

	if tag.RowsAffected() == 0 {
		return domain.ErrDisputeNotFound
	}

	return nil
}

// EscalateOverdue transitions every overdue awaiting dispute to ESCALATED
// in one conditional update. Disputes already escalated or resolved are
// untouched, which makes repeated and concurrent sweeps safe.
func (r *DisputeRepository) EscalateOverdue(ctx context.Context, tx usecase.Transaction, now time.Time) ([]*domain.Dispute, error) {
	const escalateSQL = `
		UPDATE disputes
		SET status = $1
		WHERE status IN ($2, $3) AND sla_due_at <= $4
		RETURNING ` + disputeColumns + `
	`

	rows, err := tx.(*Tx).PgxTx().Query(ctx, escalateSQL,
		string(domain.DisputeStatusEscalated),
		string(domain.DisputeStatusOpen),
		string(domain.DisputeStatusUnderReview),
		now,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var escalated []*domain.Dispute
	for rows.Next() {
		dispute, err := scanDispute(rows)
		if err != nil {
			return nil, err
		}
		escalated = append(escalated, dispute)
	}

	return escalated, rows.Err()
}

// ListByDeal lists a deal's disputes, newest first.
func (r *DisputeRepository) ListByDeal(ctx context.Context, dealID string, limit, offset int) ([]*domain.Dispute, error) {
	const selectSQL = `
		SELECT ` + disputeColumns + `
		FROM disputes
		WHERE deal_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`

	rows, err := r.pool.Query(ctx, selectSQL, dealID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var disputes []*domain.Dispute
	for rows.Next() {
		dispute, err := scanDispute(rows)
		if err != nil {
			return nil, err
		}
		disputes = append(disputes, dispute)
	}

	return disputes, rows.Err()
}

func scanDispute(row pgx.Row) (*domain.Dispute, error) {
	var (
		dispute     domain.Dispute
		disputeType string
		status      string
	)

	err := row.Scan(
		&dispute.ID,
		&dispute.DealID,
		&dispute.SnapshotID,
		&dispute.OpenerID,
		&dispute.AgainstUserID,
		&disputeType,
		&status,
		&dispute.SLADueAt,
		&dispute.CreatedAt,
		&dispute.ResolutionNote,
	)
	if err != nil {
		return nil, err
	}

	dispute.Type = domain.DisputeType(disputeType)
	dispute.Status = domain.DisputeStatus(status)

	return &dispute, nil
}
