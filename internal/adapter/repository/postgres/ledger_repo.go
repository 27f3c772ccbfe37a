package postgres

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/iho/splitledger/internal/domain"
	"github.com/iho/splitledger/internal/usecase"
)

// LedgerRepository implements usecase.LedgerRepository. The table is
// append-only: no update or delete statement exists in this file, and the
// schema revokes UPDATE/DELETE from the application role.
type LedgerRepository struct {
	pool *pgxpool.Pool
}

// NewLedgerRepository creates a new LedgerRepository.
func NewLedgerRepository(pool *pgxpool.Pool) *LedgerRepository {
	return &LedgerRepository{pool: pool}
}

// Append inserts a ledger entry within a transaction.
func (r *LedgerRepository) Append(ctx context.Context, tx usecase.Transaction, entry *domain.LedgerEntry) error {
	if err := entry.Validate(); err != nil {
		return err
	}

	const insertSQL = `
		INSERT INTO ledger_entries (id, deal_id, snapshot_id, entry_type, direction,
			amount_minor, occurred_at, memo, actor_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := tx.(*Tx).PgxTx().Exec(ctx, insertSQL,
		entry.ID,
		entry.DealID,
		entry.SnapshotID,
		string(entry.EntryType),
		string(entry.Direction),
		entry.AmountMinor,
		entry.OccurredAt,
		entry.Memo,
		entry.ActorID,
	)

	return err
}

// ListByDeal lists a deal's ledger entries in posting order.
func (r *LedgerRepository) ListByDeal(ctx context.Context, dealID string, limit, offset int) ([]*domain.LedgerEntry, error) {
	const selectSQL = `
		SELECT id, deal_id, snapshot_id, entry_type, direction,
			amount_minor, occurred_at, memo, actor_id
		FROM ledger_entries
		WHERE deal_id = $1
		ORDER BY occurred_at ASC, id ASC
		LIMIT $2 OFFSET $3
	`

	rows, err := r.pool.Query(ctx, selectSQL, dealID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []*domain.LedgerEntry
	for rows.Next() {
		var (
			entry     domain.LedgerEntry
			entryType string
			direction string
		)

		err := rows.Scan(
			&entry.ID,
			&entry.DealID,
			&entry.SnapshotID,
			&entryType,
			&direction,
			&entry.AmountMinor,
			&entry.OccurredAt,
			&entry.Memo,
			&entry.ActorID,
		)
		if err != nil {
			return nil, err
		}

		entry.EntryType = domain.EntryType(entryType)
		entry.Direction = domain.Direction(direction)
		entries = append(entries, &entry)
	}

	return entries, rows.Err()
}

// CheckConsistency sweeps the balance invariant: every allocation must
// satisfy paid + reversed <= amount, and every snapshot's allocations must
// sum exactly to its pool.
func (r *LedgerRepository) CheckConsistency(ctx context.Context) ([]*domain.ConsistencyViolation, error) {
	const sweepSQL = `
		SELECT a.snapshot_id, a.id,
			'allocation overdrawn: paid + reversed exceeds amount',
			a.amount_minor, a.paid_minor, a.reversed_minor
		FROM commission_allocations a
		WHERE a.paid_minor + a.reversed_minor > a.amount_minor
			OR a.paid_minor < 0 OR a.reversed_minor < 0

		UNION ALL

		SELECT s.id, '',
			'snapshot pool mismatch: allocations sum to ' || sums.total,
			s.pool_amount_minor, 0, 0
		FROM commission_snapshots s
		JOIN (
			SELECT snapshot_id, SUM(amount_minor) AS total
			FROM commission_allocations
			GROUP BY snapshot_id
		) sums ON sums.snapshot_id = s.id
		WHERE sums.total <> s.pool_amount_minor
	`

	rows, err := r.pool.Query(ctx, sweepSQL)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var violations []*domain.ConsistencyViolation
	for rows.Next() {
		var v domain.ConsistencyViolation

		err := rows.Scan(
			&v.SnapshotID,
			&v.AllocationID,
			&v.Detail,
			&v.AmountMinor,
			&v.PaidMinor,
			&v.ReversedMinor,
		)
		if err != nil {
			return nil, err
		}

		violations = append(violations, &v)
	}

	return violations, rows.Err()
}
