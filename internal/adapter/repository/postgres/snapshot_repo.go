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

// SnapshotRepository implements usecase.SnapshotRepository.
type SnapshotRepository struct {
	pool *pgxpool.Pool
}

// NewSnapshotRepository creates a new SnapshotRepository.
func NewSnapshotRepository(pool *pgxpool.Pool) *SnapshotRepository {
	return &SnapshotRepository{pool: pool}
}

const snapshotColumns = `id, deal_id, version, policy_id, pool_amount_minor, currency,
	status, maker_id, approver_id, created_at, approved_at`

// Create inserts a snapshot within a transaction. The unique
// (deal_id, version) index backs up the advisory lock taken by LockDeal.
func (r *SnapshotRepository) Create(ctx context.Context, tx usecase.Transaction, snapshot *domain.CommissionSnapshot) error {
	const insertSQL = `
		INSERT INTO commission_snapshots (` + snapshotColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`

	_, err := tx.(*Tx).PgxTx().Exec(ctx, insertSQL,
		snapshot.ID,
		snapshot.DealID,
		snapshot.Version,
		snapshot.PolicyID,
		snapshot.PoolAmountMinor,
		snapshot.Currency,
		string(snapshot.Status),
		snapshot.MakerID,
		snapshot.ApproverID,
		snapshot.CreatedAt,
		snapshot.ApprovedAt,
	)

	return err
}

// GetByID retrieves a snapshot by ID.
func (r *SnapshotRepository) GetByID(ctx context.Context, id string) (*domain.CommissionSnapshot, error) {
	const selectSQL = `
		SELECT ` + snapshotColumns + `
		FROM commission_snapshots
		WHERE id = $1
	`

	snapshot, err := scanSnapshot(r.pool.QueryRow(ctx, selectSQL, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrSnapshotNotFound
		}

		return nil, err
	}

	return snapshot, nil
}

// GetByIDForUpdate retrieves a snapshot by ID with a FOR UPDATE lock.
func (r *SnapshotRepository) GetByIDForUpdate(ctx context.Context, tx usecase.Transaction, id string) (*domain.CommissionSnapshot, error) {
	const selectSQL = `
		SELECT ` + snapshotColumns + `
		FROM commission_snapshots
		WHERE id = $1
		FOR UPDATE
	`

	snapshot, err := scanSnapshot(tx.(*Tx).PgxTx().QueryRow(ctx, selectSQL, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrSnapshotNotFound
		}

		return nil, err
	}

	return snapshot, nil
}

// GetLatestByDeal retrieves the highest-version snapshot of a deal within
// a transaction.
func (r *SnapshotRepository) GetLatestByDeal(ctx context.Context, tx usecase.Transaction, dealID string) (*domain.CommissionSnapshot, error) {
	const selectSQL = `
		SELECT ` + snapshotColumns + `
		FROM commission_snapshots
		WHERE deal_id = $1
		ORDER BY version DESC
		LIMIT 1
		FOR UPDATE
	`

	snapshot, err := scanSnapshot(tx.(*Tx).PgxTx().QueryRow(ctx, selectSQL, dealID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrSnapshotNotFound
		}

		return nil, err
	}

	return snapshot, nil
}

// ListByDeal lists every snapshot version of a deal, oldest first.
func (r *SnapshotRepository) ListByDeal(ctx context.Context, dealID string) ([]*domain.CommissionSnapshot, error) {
	const selectSQL = `
		SELECT ` + snapshotColumns + `
		FROM commission_snapshots
		WHERE deal_id = $1
		ORDER BY version ASC
	`

	rows, err := r.pool.Query(ctx, selectSQL, dealID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectSnapshots(rows)
}

// ListPending lists snapshots awaiting approval, oldest first.
func (r *SnapshotRepository) ListPending(ctx context.Context, limit, offset int) ([]*domain.CommissionSnapshot, error) {
	const selectSQL = `
		SELECT ` + snapshotColumns + `
		FROM commission_snapshots
		WHERE status = $1
		ORDER BY created_at ASC
		LIMIT $2 OFFSET $3
	`

	rows, err := r.pool.Query(ctx, selectSQL, string(domain.SnapshotStatusPendingApproval), limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectSnapshots(rows)
}

// UpdateStatus updates a snapshot's workflow state within a transaction.
func (r *SnapshotRepository) UpdateStatus(ctx context.Context, tx usecase.Transaction, id string, status domain.SnapshotStatus, approverID *string, approvedAt *time.Time) error {
	const updateSQL = `
		UPDATE commission_snapshots
		SET status = $2, approver_id = $3, approved_at = $4
		WHERE id = $1
	`

	tag, err := tx.(*Tx).PgxTx().Exec(ctx, updateSQL, id, string(status), approverID, approvedAt)
	if err != nil {
		return err
	}

	if tag.RowsAffected() == 0 {
		return domain.ErrSnapshotNotFound
	}

	return nil
}

// LockDeal takes a transaction-scoped advisory lock on the deal so only
// one snapshot computation per deal proceeds at a time. Released
// automatically at commit or rollback.
func (r *SnapshotRepository) LockDeal(ctx context.Context, tx usecase.Transaction, dealID string) error {
	const lockSQL = `SELECT pg_advisory_xact_lock(hashtext('deal:' || $1))`

	_, err := tx.(*Tx).PgxTx().Exec(ctx, lockSQL, dealID)

	return err
}

func scanSnapshot(row pgx.Row) (*domain.CommissionSnapshot, error) {
	var (
		snapshot domain.CommissionSnapshot
		status   string
	)

	err := row.Scan(
		&snapshot.ID,
		&snapshot.DealID,
		&snapshot.Version,
		&snapshot.PolicyID,
		&snapshot.PoolAmountMinor,
		&snapshot.Currency,
		&status,
		&snapshot.MakerID,
		&snapshot.ApproverID,
		&snapshot.CreatedAt,
		&snapshot.ApprovedAt,
	)
	if err != nil {
		return nil, err
	}

	snapshot.Status = domain.SnapshotStatus(status)

	return &snapshot, nil
}

func collectSnapshots(rows pgx.Rows) ([]*domain.CommissionSnapshot, error) {
	var snapshots []*domain.CommissionSnapshot
	for rows.Next() {
		snapshot, err := scanSnapshot(rows)
		if err != nil {
			return nil, err
		}
		snapshots = append(snapshots, snapshot)
	}

	return snapshots, rows.Err()
}
