package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/iho/splitledger/internal/domain"
)

// PolicyRepository implements usecase.PolicyRepository.
type PolicyRepository struct {
	pool *pgxpool.Pool
}

// NewPolicyRepository creates a new PolicyRepository.
func NewPolicyRepository(pool *pgxpool.Pool) *PolicyRepository {
	return &PolicyRepository{pool: pool}
}

const policyColumns = `id, name, calc_method, commission_rate_bp, fixed_commission_minor,
	currency, hunter_bp, consultant_bp, broker_bp, system_bp, rounding_rule,
	effective_from, created_at`

// Create inserts a new immutable policy row.
func (r *PolicyRepository) Create(ctx context.Context, policy *domain.CommissionPolicy) error {
	const insertSQL = `
		INSERT INTO commission_policies (` + policyColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`

	_, err := r.pool.Exec(ctx, insertSQL,
		policy.ID,
		policy.Name,
		string(policy.CalcMethod),
		policy.CommissionRateBasisPoint,
		policy.FixedCommissionMinor,
		policy.Currency,
		policy.HunterBp,
		policy.ConsultantBp,
		policy.BrokerBp,
		policy.SystemBp,
		string(policy.RoundingRule),
		policy.EffectiveFrom,
		policy.CreatedAt,
	)

	return err
}

// GetByID retrieves a policy by ID.
func (r *PolicyRepository) GetByID(ctx context.Context, id string) (*domain.CommissionPolicy, error) {
	const selectSQL = `
		SELECT ` + policyColumns + `
		FROM commission_policies
		WHERE id = $1
	`

	policy, err := scanPolicy(r.pool.QueryRow(ctx, selectSQL, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrPolicyNotFound
		}

		return nil, err
	}

	return policy, nil
}

// ResolveEffective returns the policy with the latest effective_from not
// after the given instant.
func (r *PolicyRepository) ResolveEffective(ctx context.Context, at time.Time) (*domain.CommissionPolicy, error) {
	const selectSQL = `
		SELECT ` + policyColumns + `
		FROM commission_policies
		WHERE effective_from <= $1
		ORDER BY effective_from DESC, created_at DESC
		LIMIT 1
	`

	policy, err := scanPolicy(r.pool.QueryRow(ctx, selectSQL, at))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNoActivePolicy
		}

		return nil, err
	}

	return policy, nil
}

// List lists policies with pagination, newest effective first.
func (r *PolicyRepository) List(ctx context.Context, limit, offset int) ([]*domain.CommissionPolicy, error) {
	const selectSQL = `
		SELECT ` + policyColumns + `
		FROM commission_policies
		ORDER BY effective_from DESC, created_at DESC
		LIMIT $1 OFFSET $2
	`

	rows, err := r.pool.Query(ctx, selectSQL, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	policies := make([]*domain.CommissionPolicy, 0, limit)
	for rows.Next() {
		policy, err := scanPolicy(rows)
		if err != nil {
			return nil, err
		}
		policies = append(policies, policy)
	}

	return policies, rows.Err()
}

func scanPolicy(row pgx.Row) (*domain.CommissionPolicy, error) {
	var (
		policy       domain.CommissionPolicy
		calcMethod   string
		roundingRule string
	)

	err := row.Scan(
		&policy.ID,
		&policy.Name,
		&calcMethod,
		&policy.CommissionRateBasisPoint,
		&policy.FixedCommissionMinor,
		&policy.Currency,
		&policy.HunterBp,
		&policy.ConsultantBp,
		&policy.BrokerBp,
		&policy.SystemBp,
		&roundingRule,
		&policy.EffectiveFrom,
		&policy.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	policy.CalcMethod = domain.CalcMethod(calcMethod)
	policy.RoundingRule = domain.RoundingRule(roundingRule)

	return &policy, nil
}
