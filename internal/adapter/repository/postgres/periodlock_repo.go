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

// timelineLockKey is the advisory lock key serializing period-lock
// creation. Locks share one global timeline, so a single key suffices.
const timelineLockKey = 7711

// PeriodLockRepository implements usecase.PeriodLockRepository.
type PeriodLockRepository struct {
	pool *pgxpool.Pool
}

// NewPeriodLockRepository creates a new PeriodLockRepository.
func NewPeriodLockRepository(pool *pgxpool.Pool) *PeriodLockRepository {
	return &PeriodLockRepository{pool: pool}
}

const periodLockColumns = `id, period_from, period_to, reason, is_active,
	created_by, created_at, unlocked_at, unlocked_by`

// Create inserts a period lock within a transaction.
func (r *PeriodLockRepository) Create(ctx context.Context, tx usecase.Transaction, lock *domain.PeriodLock) error {
	const insertSQL = `
		INSERT INTO period_locks (` + periodLockColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := tx.(*Tx).PgxTx().Exec(ctx, insertSQL,
		lock.ID,
		lock.PeriodFrom,
		lock.PeriodTo,
		lock.Reason,
		lock.IsActive,
		lock.CreatedBy,
		lock.CreatedAt,
		lock.UnlockedAt,
		lock.UnlockedBy,
	)

	return err
}

// GetByID retrieves a period lock by ID.
func (r *PeriodLockRepository) GetByID(ctx context.Context, id string) (*domain.PeriodLock, error) {
	const selectSQL = `
		SELECT ` + periodLockColumns + `
		FROM period_locks
		WHERE id = $1
	`

	lock, err := scanPeriodLock(r.pool.QueryRow(ctx, selectSQL, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrLockNotFound
		}

		return nil, err
	}

	return lock, nil
}

// GetByIDForUpdate retrieves a period lock by ID with a FOR UPDATE lock.
func (r *PeriodLockRepository) GetByIDForUpdate(ctx context.Context, tx usecase.Transaction, id string) (*domain.PeriodLock, error) {
	const selectSQL = `
		SELECT ` + periodLockColumns + `
		FROM period_locks
		WHERE id = $1
		FOR UPDATE
	`

	lock, err := scanPeriodLock(tx.(*Tx).PgxTx().QueryRow(ctx, selectSQL, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrLockNotFound
		}

		return nil, err
	}

	return lock, nil
}

// Release deactivates a period lock within a transaction.
func (r *PeriodLockRepository) Release(ctx context.Context, tx usecase.Transaction, id string, unlockedAt time.Time, unlockedBy string) error {
	const updateSQL = `
		UPDATE period_locks
		SET is_active = FALSE, unlocked_at = $2, unlocked_by = $3
		WHERE id = $1
	`

	tag, err := tx.(*Tx).PgxTx().Exec(ctx, updateSQL, id, unlockedAt, unlockedBy)
	if err != nil {
		return err
	}

	if tag.RowsAffected() == 0 {
		return domain.ErrLockNotFound
	}

	return nil
}

// AnyActiveOverlapping reports whether an active lock's closed interval
// intersects [from, to].
func (r *PeriodLockRepository) AnyActiveOverlapping(ctx context.Context, tx usecase.Transaction, from, to time.Time) (bool, error) {
	const existsSQL = `
		SELECT EXISTS (
			SELECT 1 FROM period_locks
			WHERE is_active AND period_to >= $1 AND period_from <= $2
		)
	`

	var exists bool
	err := tx.(*Tx).PgxTx().QueryRow(ctx, existsSQL, from, to).Scan(&exists)

	return exists, err
}

// AnyActiveCovering reports whether an active lock covers the instant.
// Always reads inside the caller's transaction so a lock created by a
// concurrent committed transaction is observed.
func (r *PeriodLockRepository) AnyActiveCovering(ctx context.Context, tx usecase.Transaction, at time.Time) (bool, error) {
	const existsSQL = `
		SELECT EXISTS (
			SELECT 1 FROM period_locks
			WHERE is_active AND period_from <= $1 AND period_to >= $1
		)
	`

	var exists bool
	err := tx.(*Tx).PgxTx().QueryRow(ctx, existsSQL, at).Scan(&exists)

	return exists, err
}

// LockTimeline takes a transaction-scoped advisory lock serializing lock
// creation, so two concurrent creates cannot both pass the overlap check.
func (r *PeriodLockRepository) LockTimeline(ctx context.Context, tx usecase.Transaction) error {
	const lockSQL = `SELECT pg_advisory_xact_lock($1)`

	_, err := tx.(*Tx).PgxTx().Exec(ctx, lockSQL, timelineLockKey)

	return err
}

// List lists period locks, newest first.
func (r *PeriodLockRepository) List(ctx context.Context, limit, offset int) ([]*domain.PeriodLock, error) {
	const selectSQL = `
		SELECT ` + periodLockColumns + `
		FROM period_locks
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2
	`

	rows, err := r.pool.Query(ctx, selectSQL, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var locks []*domain.PeriodLock
	for rows.Next() {
		lock, err := scanPeriodLock(rows)
		if err != nil {
			return nil, err
		}
		locks = append(locks, lock)
	}

	return locks, rows.Err()
}

func scanPeriodLock(row pgx.Row) (*domain.PeriodLock, error) {
	var lock domain.PeriodLock

	err := row.Scan(
		&lock.ID,
		&lock.PeriodFrom,
		&lock.PeriodTo,
		&lock.Reason,
		&lock.IsActive,
		&lock.CreatedBy,
		&lock.CreatedAt,
		&lock.UnlockedAt,
		&lock.UnlockedBy,
	)
	if err != nil {
		return nil, err
	}

	return &lock, nil
}
