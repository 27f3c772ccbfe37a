package usecase

import (
	"context"

	"github.com/iho/splitledger/internal/domain"
)

// LedgerUseCase handles ledger-wide operations.
type LedgerUseCase struct {
	ledgerRepo LedgerRepository
}

// NewLedgerUseCase creates a new LedgerUseCase.
func NewLedgerUseCase(ledgerRepo LedgerRepository) *LedgerUseCase {
	return &LedgerUseCase{ledgerRepo: ledgerRepo}
}

// ConsistencyReport is the result of a full invariant sweep.
type ConsistencyReport struct {
	Consistent bool
	Violations []*domain.ConsistencyViolation
}

// CheckConsistency verifies the balance invariant: for every allocation
// paid + reversed <= amount, and every snapshot's allocations sum to its
// pool.
func (uc *LedgerUseCase) CheckConsistency(ctx context.Context) (*ConsistencyReport, error) {
	violations, err := uc.ledgerRepo.CheckConsistency(ctx)
	if err != nil {
		return nil, err
	}

	return &ConsistencyReport{
		Consistent: len(violations) == 0,
		Violations: violations,
	}, nil
}

// ListByDeal lists a deal's ledger entries.
func (uc *LedgerUseCase) ListByDeal(ctx context.Context, dealID string, limit, offset int) ([]*domain.LedgerEntry, error) {
	limit, offset = domain.ValidatePagination(limit, offset)
	return uc.ledgerRepo.ListByDeal(ctx, dealID, limit, offset)
}
