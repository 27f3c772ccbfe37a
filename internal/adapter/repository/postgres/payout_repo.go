package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/iho/splitledger/internal/domain"
	"github.com/iho/splitledger/internal/usecase"
)

// PayoutRepository implements usecase.PayoutRepository.
type PayoutRepository struct {
	pool *pgxpool.Pool
}

// NewPayoutRepository creates a new PayoutRepository.
func NewPayoutRepository(pool *pgxpool.Pool) *PayoutRepository {
	return &PayoutRepository{pool: pool}
}

// Create inserts a payout within a transaction.
func (r *PayoutRepository) Create(ctx context.Context, tx usecase.Transaction, payout *domain.Payout) error {
	const insertSQL = `
		INSERT INTO payouts (id, paid_at, method, reference_no, created_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := tx.(*Tx).PgxTx().Exec(ctx, insertSQL,
		payout.ID,
		payout.PaidAt,
		string(payout.Method),
		payout.ReferenceNo,
		payout.CreatedBy,
		payout.CreatedAt,
	)

	return err
}

// CreateLinks inserts payout-to-allocation links in one batch.
func (r *PayoutRepository) CreateLinks(ctx context.Context, tx usecase.Transaction, links []*domain.PayoutAllocationLink) error {
	const insertSQL = `
		INSERT INTO payout_allocation_links (id, payout_id, allocation_id, amount_minor)
		VALUES ($1, $2, $3, $4)
	`

	batch := &pgx.Batch{}
	for _, link := range links {
		batch.Queue(insertSQL, link.ID, link.PayoutID, link.AllocationID, link.AmountMinor)
	}

	return tx.(*Tx).PgxTx().SendBatch(ctx, batch).Close()
}

// GetByID retrieves a payout by ID.
func (r *PayoutRepository) GetByID(ctx context.Context, id string) (*domain.Payout, error) {
	const selectSQL = `
		SELECT id, paid_at, method, reference_no, created_by, created_at
		FROM payouts
		WHERE id = $1
	`

	var (
		payout domain.Payout
		method string
	)

	err := r.pool.QueryRow(ctx, selectSQL, id).Scan(
		&payout.ID,
		&payout.PaidAt,
		&method,
		&payout.ReferenceNo,
		&payout.CreatedBy,
		&payout.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrPayoutNotFound
		}

		return nil, err
	}

	payout.Method = domain.PayoutMethod(method)

	return &payout, nil
}

// ListLinksByDeal retrieves every payout link applied to a deal's
// allocations, across all snapshot versions.
func (r *PayoutRepository) ListLinksByDeal(ctx context.Context, dealID string) ([]*domain.PayoutAllocationLink, error) {
	const selectSQL = `
		SELECT l.id, l.payout_id, l.allocation_id, l.amount_minor
		FROM payout_allocation_links l
		JOIN commission_allocations a ON a.id = l.allocation_id
		JOIN commission_snapshots s ON s.id = a.snapshot_id
		WHERE s.deal_id = $1
		ORDER BY l.id
	`

	rows, err := r.pool.Query(ctx, selectSQL, dealID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var links []*domain.PayoutAllocationLink
	for rows.Next() {
		var link domain.PayoutAllocationLink

		err := rows.Scan(&link.ID, &link.PayoutID, &link.AllocationID, &link.AmountMinor)
		if err != nil {
			return nil, err
		}

		links = append(links, &link)
	}

	return links, rows.Err()
}
