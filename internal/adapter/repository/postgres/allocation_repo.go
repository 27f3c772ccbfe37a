package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/iho/splitledger/internal/domain"
	"github.com/iho/splitledger/internal/usecase"
)

// AllocationRepository implements usecase.AllocationRepository.
type AllocationRepository struct {
	pool *pgxpool.Pool
}

// NewAllocationRepository creates a new AllocationRepository.
func NewAllocationRepository(pool *pgxpool.Pool) *AllocationRepository {
	return &AllocationRepository{pool: pool}
}

const allocationColumns = `id, snapshot_id, role, user_id, basis_points,
	amount_minor, paid_minor, reversed_minor`

// CreateBatch inserts a snapshot's allocations in one batch.
func (r *AllocationRepository) CreateBatch(ctx context.Context, tx usecase.Transaction, allocations []*domain.CommissionAllocation) error {
	const insertSQL = `
		INSERT INTO commission_allocations (` + allocationColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	batch := &pgx.Batch{}
	for _, alloc := range allocations {
		batch.Queue(insertSQL,
			alloc.ID,
			alloc.SnapshotID,
			string(alloc.Role),
			alloc.UserID,
			alloc.BasisPoints,
			alloc.AmountMinor,
			alloc.PaidMinor,
			alloc.ReversedMinor,
		)
	}

	return tx.(*Tx).PgxTx().SendBatch(ctx, batch).Close()
}

// GetBySnapshot retrieves a snapshot's allocations in stable role order.
func (r *AllocationRepository) GetBySnapshot(ctx context.Context, snapshotID string) ([]*domain.CommissionAllocation, error) {
	rows, err := r.pool.Query(ctx, selectAllocationsBySnapshot, snapshotID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectAllocations(rows)
}

const selectAllocationsBySnapshot = `
	SELECT ` + allocationColumns + `
	FROM commission_allocations
	WHERE snapshot_id = $1
	ORDER BY array_position(ARRAY['HUNTER','CONSULTANT','BROKER','SYSTEM'], role)
`

// GetBySnapshotForUpdate locks and retrieves a snapshot's allocations in
// stable role order.
func (r *AllocationRepository) GetBySnapshotForUpdate(ctx context.Context, tx usecase.Transaction, snapshotID string) ([]*domain.CommissionAllocation, error) {
	rows, err := tx.(*Tx).PgxTx().Query(ctx, selectAllocationsBySnapshot+" FOR UPDATE", snapshotID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectAllocations(rows)
}

// GetByIDsForUpdate locks allocation rows in the order given. Callers
// sort ids first to keep the lock order deterministic across concurrent
// payouts.
func (r *AllocationRepository) GetByIDsForUpdate(ctx context.Context, tx usecase.Transaction, ids []string) ([]*domain.CommissionAllocation, error) {
	const selectSQL = `
		SELECT ` + allocationColumns + `
		FROM commission_allocations
		WHERE id = ANY($1)
		ORDER BY id
		FOR UPDATE
	`

	rows, err := tx.(*Tx).PgxTx().Query(ctx, selectSQL, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectAllocations(rows)
}

// AddPaid adds to an allocation's paid total within a transaction.
func (r *AllocationRepository) AddPaid(ctx context.Context, tx usecase.Transaction, id string, amountMinor int64) error {
	const updateSQL = `
		UPDATE commission_allocations
		SET paid_minor = paid_minor + $2
		WHERE id = $1
	`

	tag, err := tx.(*Tx).PgxTx().Exec(ctx, updateSQL, id, amountMinor)
	if err != nil {
		return err
	}

	if tag.RowsAffected() == 0 {
		return domain.ErrAllocationNotFound
	}

	return nil
}

// AddReversed adds to an allocation's reversed total within a transaction.
func (r *AllocationRepository) AddReversed(ctx context.Context, tx usecase.Transaction, id string, amountMinor int64) error {
	const updateSQL = `
		UPDATE commission_allocations
		SET reversed_minor = reversed_minor + $2
		WHERE id = $1
	`

	tag, err := tx.(*Tx).PgxTx().Exec(ctx, updateSQL, id, amountMinor)
	if err != nil {
		return err
	}

	if tag.RowsAffected() == 0 {
		return domain.ErrAllocationNotFound
	}

	return nil
}

// ListAuthoritativeByUser retrieves a user's allocations from each deal's
// authoritative snapshot, the highest approved version.
func (r *AllocationRepository) ListAuthoritativeByUser(ctx context.Context, userID string) ([]*domain.AllocationSummaryItem, error) {
	const selectSQL = `
		WITH authoritative AS (
			SELECT DISTINCT ON (deal_id) id, deal_id, currency
			FROM commission_snapshots
			WHERE status IN ('APPROVED', 'PARTIALLY_REVERSED', 'REVERSED')
			ORDER BY deal_id, version DESC
		)
		SELECT s.deal_id, s.id, a.id, a.role, s.currency,
			a.amount_minor, a.paid_minor, a.reversed_minor
		FROM commission_allocations a
		JOIN authoritative s ON s.id = a.snapshot_id
		WHERE a.user_id = $1
		ORDER BY s.deal_id
	`

	rows, err := r.pool.Query(ctx, selectSQL, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []*domain.AllocationSummaryItem
	for rows.Next() {
		var (
			item domain.AllocationSummaryItem
			role string
		)

		err := rows.Scan(
			&item.DealID,
			&item.SnapshotID,
			&item.AllocationID,
			&role,
			&item.Currency,
			&item.AmountMinor,
			&item.PaidMinor,
			&item.ReversedMinor,
		)
		if err != nil {
			return nil, err
		}

		item.Role = domain.Role(role)
		items = append(items, &item)
	}

	return items, rows.Err()
}

func collectAllocations(rows pgx.Rows) ([]*domain.CommissionAllocation, error) {
	var allocations []*domain.CommissionAllocation
	for rows.Next() {
		var (
			alloc domain.CommissionAllocation
			role  string
		)

		err := rows.Scan(
			&alloc.ID,
			&alloc.SnapshotID,
			&role,
			&alloc.UserID,
			&alloc.BasisPoints,
			&alloc.AmountMinor,
			&alloc.PaidMinor,
			&alloc.ReversedMinor,
		)
		if err != nil {
			return nil, err
		}

		alloc.Role = domain.Role(role)
		allocations = append(allocations, &alloc)
	}

	return allocations, rows.Err()
}
