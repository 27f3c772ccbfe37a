package usecase

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/iho/splitledger/internal/domain"
)

const effectivePolicyCacheKey = "policy:effective"

// PolicyUseCase holds versioned commission policies and resolves the one
// effective at a point in time.
type PolicyUseCase struct {
	policyRepo PolicyRepository
	cache      Cache
	idGen      IDGenerator
	cacheTTL   time.Duration
}

// NewPolicyUseCase creates a new PolicyUseCase. cache may be nil.
func NewPolicyUseCase(policyRepo PolicyRepository, cache Cache, idGen IDGenerator, cacheTTL time.Duration) *PolicyUseCase {
	if cacheTTL <= 0 {
		cacheTTL = PolicyCacheTTL
	}

	return &PolicyUseCase{
		policyRepo: policyRepo,
		cache:      cache,
		idGen:      idGen,
		cacheTTL:   cacheTTL,
	}
}

// UpsertPolicyInput represents input for creating a policy version.
type UpsertPolicyInput struct {
	Name                     string
	CalcMethod               domain.CalcMethod
	CommissionRateBasisPoint *int64
	FixedCommissionMinor     *int64
	Currency                 string
	HunterBp                 int64
	ConsultantBp             int64
	BrokerBp                 int64
	SystemBp                 int64
	RoundingRule             domain.RoundingRule
	EffectiveFrom            *time.Time
}

// UpsertPolicy validates and persists a new immutable policy row.
// Existing rows are never mutated; a later EffectiveFrom supersedes them.
func (uc *PolicyUseCase) UpsertPolicy(ctx context.Context, input UpsertPolicyInput) (*domain.CommissionPolicy, error) {
	if err := domain.ValidatePolicyName(input.Name); err != nil {
		return nil, err
	}

	if err := domain.ValidateCurrency(input.Currency); err != nil {
		return nil, err
	}

	now := time.Now().UTC()

	effectiveFrom := now
	if input.EffectiveFrom != nil {
		effectiveFrom = input.EffectiveFrom.UTC()
	}

	policy := &domain.CommissionPolicy{
		ID:                       uc.idGen.Generate(),
		Name:                     strings.TrimSpace(input.Name),
		CalcMethod:               input.CalcMethod,
		CommissionRateBasisPoint: input.CommissionRateBasisPoint,
		FixedCommissionMinor:     input.FixedCommissionMinor,
		Currency:                 strings.ToUpper(strings.TrimSpace(input.Currency)),
		HunterBp:                 input.HunterBp,
		ConsultantBp:             input.ConsultantBp,
		BrokerBp:                 input.BrokerBp,
		SystemBp:                 input.SystemBp,
		RoundingRule:             input.RoundingRule,
		EffectiveFrom:            effectiveFrom,
		CreatedAt:                now,
	}

	if err := policy.Validate(); err != nil {
		return nil, err
	}

	if err := uc.policyRepo.Create(ctx, policy); err != nil {
		return nil, err
	}

	// A new row can change the answer of ResolveEffective immediately.
	if uc.cache != nil {
		_ = uc.cache.Delete(ctx, effectivePolicyCacheKey)
	}

	return policy, nil
}

// ResolveEffective returns the policy with the latest effectiveFrom <= at.
// Resolutions at the current time are served from cache when possible.
func (uc *PolicyUseCase) ResolveEffective(ctx context.Context, at time.Time) (*domain.CommissionPolicy, error) {
	at = at.UTC()

	if cached := uc.fromCache(ctx, at); cached != nil {
		return cached, nil
	}

	policy, err := uc.policyRepo.ResolveEffective(ctx, at)
	if err != nil {
		return nil, err
	}

	uc.toCache(ctx, at, policy)

	return policy, nil
}

// GetPolicy retrieves a policy by ID.
func (uc *PolicyUseCase) GetPolicy(ctx context.Context, id string) (*domain.CommissionPolicy, error) {
	return uc.policyRepo.GetByID(ctx, id)
}

// ListPolicies lists policy versions.
func (uc *PolicyUseCase) ListPolicies(ctx context.Context, limit, offset int) ([]*domain.CommissionPolicy, error) {
	limit, offset = domain.ValidatePagination(limit, offset)
	return uc.policyRepo.List(ctx, limit, offset)
}

// fromCache serves near-now resolutions only; historical lookups always
// hit the store.
func (uc *PolicyUseCase) fromCache(ctx context.Context, at time.Time) *domain.CommissionPolicy {
	if uc.cache == nil || !nearNow(at) {
		return nil
	}

	raw, err := uc.cache.Get(ctx, effectivePolicyCacheKey)
	if err != nil || raw == "" {
		return nil
	}

	var policy domain.CommissionPolicy
	if err := json.Unmarshal([]byte(raw), &policy); err != nil {
		return nil
	}

	if policy.EffectiveFrom.After(at) {
		return nil
	}

	return &policy
}

func (uc *PolicyUseCase) toCache(ctx context.Context, at time.Time, policy *domain.CommissionPolicy) {
	if uc.cache == nil || !nearNow(at) {
		return
	}

	raw, err := json.Marshal(policy)
	if err != nil {
		return
	}

	_ = uc.cache.Set(ctx, effectivePolicyCacheKey, string(raw), uc.cacheTTL)
}

func nearNow(at time.Time) bool {
	d := time.Since(at)
	if d < 0 {
		d = -d
	}
	return d < time.Minute
}
