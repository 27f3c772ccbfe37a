package mocks

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/iho/splitledger/internal/domain"
	"github.com/iho/splitledger/internal/usecase"
)

// MockTransaction is a no-op transaction.
type MockTransaction struct {
	Committed  bool
	RolledBack bool
}

func (t *MockTransaction) Commit(ctx context.Context) error {
	t.Committed = true
	return nil
}

func (t *MockTransaction) Rollback(ctx context.Context) error {
	if !t.Committed {
		t.RolledBack = true
	}
	return nil
}

// MockTransactionManager hands out MockTransactions.
type MockTransactionManager struct {
	BeginFunc func(ctx context.Context) (usecase.Transaction, error)

	mu     sync.Mutex
	Opened []*MockTransaction
}

func NewMockTransactionManager() *MockTransactionManager {
	return &MockTransactionManager{}
}

func (m *MockTransactionManager) Begin(ctx context.Context) (usecase.Transaction, error) {
	if m.BeginFunc != nil {
		return m.BeginFunc(ctx)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	tx := &MockTransaction{}
	m.Opened = append(m.Opened, tx)
	return tx, nil
}

// MockIDGenerator generates sequential IDs.
type MockIDGenerator struct {
	GenerateFunc func() string

	mu      sync.Mutex
	counter int
}

func NewMockIDGenerator() *MockIDGenerator {
	return &MockIDGenerator{}
}

func (m *MockIDGenerator) Generate() string {
	if m.GenerateFunc != nil {
		return m.GenerateFunc()
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.counter++
	return fmt.Sprintf("id-%04d", m.counter)
}

// MockRetrier runs the operation once, no backoff.
type MockRetrier struct{}

func NewMockRetrier() *MockRetrier {
	return &MockRetrier{}
}

func (m *MockRetrier) Retry(ctx context.Context, operation func() error) error {
	return operation()
}

// MockLockGuard simulates the period-lock check.
type MockLockGuard struct {
	AssertUnlockedFunc func(ctx context.Context, tx usecase.Transaction, at time.Time) error
}

func NewMockLockGuard() *MockLockGuard {
	return &MockLockGuard{}
}

func (m *MockLockGuard) AssertUnlocked(ctx context.Context, tx usecase.Transaction, at time.Time) error {
	if m.AssertUnlockedFunc != nil {
		return m.AssertUnlockedFunc(ctx, tx, at)
	}
	return nil
}

// MockCache is an in-memory cache.
type MockCache struct {
	GetFunc    func(ctx context.Context, key string) (string, error)
	SetFunc    func(ctx context.Context, key, value string, ttl time.Duration) error
	DeleteFunc func(ctx context.Context, key string) error

	mu     sync.RWMutex
	values map[string]string
}

func NewMockCache() *MockCache {
	return &MockCache{values: make(map[string]string)}
}

func (m *MockCache) Get(ctx context.Context, key string) (string, error) {
	if m.GetFunc != nil {
		return m.GetFunc(ctx, key)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.values[key], nil
}

func (m *MockCache) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	if m.SetFunc != nil {
		return m.SetFunc(ctx, key, value, ttl)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = value
	return nil
}

func (m *MockCache) Delete(ctx context.Context, key string) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, key)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.values, key)
	return nil
}

// MockPolicyRepository is an in-memory PolicyRepository.
type MockPolicyRepository struct {
	CreateFunc           func(ctx context.Context, policy *domain.CommissionPolicy) error
	GetByIDFunc          func(ctx context.Context, id string) (*domain.CommissionPolicy, error)
	ResolveEffectiveFunc func(ctx context.Context, at time.Time) (*domain.CommissionPolicy, error)
	ListFunc             func(ctx context.Context, limit, offset int) ([]*domain.CommissionPolicy, error)

	mu       sync.RWMutex
	policies map[string]*domain.CommissionPolicy
}

func NewMockPolicyRepository() *MockPolicyRepository {
	return &MockPolicyRepository{policies: make(map[string]*domain.CommissionPolicy)}
}

func (m *MockPolicyRepository) Create(ctx context.Context, policy *domain.CommissionPolicy) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, policy)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.policies[policy.ID] = policy
	return nil
}

func (m *MockPolicyRepository) GetByID(ctx context.Context, id string) (*domain.CommissionPolicy, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if policy, ok := m.policies[id]; ok {
		return policy, nil
	}
	return nil, domain.ErrPolicyNotFound
}

func (m *MockPolicyRepository) ResolveEffective(ctx context.Context, at time.Time) (*domain.CommissionPolicy, error) {
	if m.ResolveEffectiveFunc != nil {
		return m.ResolveEffectiveFunc(ctx, at)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	var best *domain.CommissionPolicy
	for _, policy := range m.policies {
		if policy.EffectiveFrom.After(at) {
			continue
		}
		if best == nil || policy.EffectiveFrom.After(best.EffectiveFrom) {
			best = policy
		}
	}
	if best == nil {
		return nil, domain.ErrNoActivePolicy
	}
	return best, nil
}

func (m *MockPolicyRepository) List(ctx context.Context, limit, offset int) ([]*domain.CommissionPolicy, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, limit, offset)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	policies := make([]*domain.CommissionPolicy, 0, len(m.policies))
	for _, policy := range m.policies {
		policies = append(policies, policy)
	}
	sort.Slice(policies, func(i, j int) bool {
		return policies[i].EffectiveFrom.Before(policies[j].EffectiveFrom)
	})
	return policies, nil
}

// MockSnapshotRepository is an in-memory SnapshotRepository.
type MockSnapshotRepository struct {
	CreateFunc           func(ctx context.Context, tx usecase.Transaction, snapshot *domain.CommissionSnapshot) error
	GetByIDFunc          func(ctx context.Context, id string) (*domain.CommissionSnapshot, error)
	GetByIDForUpdateFunc func(ctx context.Context, tx usecase.Transaction, id string) (*domain.CommissionSnapshot, error)
	GetLatestByDealFunc  func(ctx context.Context, tx usecase.Transaction, dealID string) (*domain.CommissionSnapshot, error)
	ListByDealFunc       func(ctx context.Context, dealID string) ([]*domain.CommissionSnapshot, error)
	ListPendingFunc      func(ctx context.Context, limit, offset int) ([]*domain.CommissionSnapshot, error)
	UpdateStatusFunc     func(ctx context.Context, tx usecase.Transaction, id string, status domain.SnapshotStatus, approverID *string, approvedAt *time.Time) error
	LockDealFunc         func(ctx context.Context, tx usecase.Transaction, dealID string) error

	mu        sync.RWMutex
	snapshots map[string]*domain.CommissionSnapshot
}

func NewMockSnapshotRepository() *MockSnapshotRepository {
	return &MockSnapshotRepository{snapshots: make(map[string]*domain.CommissionSnapshot)}
}

func (m *MockSnapshotRepository) Create(ctx context.Context, tx usecase.Transaction, snapshot *domain.CommissionSnapshot) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, tx, snapshot)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	copied := *snapshot
	m.snapshots[snapshot.ID] = &copied
	return nil
}

func (m *MockSnapshotRepository) GetByID(ctx context.Context, id string) (*domain.CommissionSnapshot, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if snapshot, ok := m.snapshots[id]; ok {
		copied := *snapshot
		return &copied, nil
	}
	return nil, domain.ErrSnapshotNotFound
}

func (m *MockSnapshotRepository) GetByIDForUpdate(ctx context.Context, tx usecase.Transaction, id string) (*domain.CommissionSnapshot, error) {
	if m.GetByIDForUpdateFunc != nil {
		return m.GetByIDForUpdateFunc(ctx, tx, id)
	}
	return m.GetByID(ctx, id)
}

func (m *MockSnapshotRepository) GetLatestByDeal(ctx context.Context, tx usecase.Transaction, dealID string) (*domain.CommissionSnapshot, error) {
	if m.GetLatestByDealFunc != nil {
		return m.GetLatestByDealFunc(ctx, tx, dealID)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	var latest *domain.CommissionSnapshot
	for _, snapshot := range m.snapshots {
		if snapshot.DealID != dealID {
			continue
		}
		if latest == nil || snapshot.Version > latest.Version {
			latest = snapshot
		}
	}
	if latest == nil {
		return nil, domain.ErrSnapshotNotFound
	}
	copied := *latest
	return &copied, nil
}

func (m *MockSnapshotRepository) ListByDeal(ctx context.Context, dealID string) ([]*domain.CommissionSnapshot, error) {
	if m.ListByDealFunc != nil {
		return m.ListByDealFunc(ctx, dealID)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	var snapshots []*domain.CommissionSnapshot
	for _, snapshot := range m.snapshots {
		if snapshot.DealID == dealID {
			copied := *snapshot
			snapshots = append(snapshots, &copied)
		}
	}
	sort.Slice(snapshots, func(i, j int) bool {
		return snapshots[i].Version < snapshots[j].Version
	})
	return snapshots, nil
}

func (m *MockSnapshotRepository) ListPending(ctx context.Context, limit, offset int) ([]*domain.CommissionSnapshot, error) {
	if m.ListPendingFunc != nil {
		return m.ListPendingFunc(ctx, limit, offset)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	var pending []*domain.CommissionSnapshot
	for _, snapshot := range m.snapshots {
		if snapshot.Status == domain.SnapshotStatusPendingApproval {
			copied := *snapshot
			pending = append(pending, &copied)
		}
	}
	sort.Slice(pending, func(i, j int) bool {
		return pending[i].CreatedAt.Before(pending[j].CreatedAt)
	})
	return pending, nil
}

func (m *MockSnapshotRepository) UpdateStatus(ctx context.Context, tx usecase.Transaction, id string, status domain.SnapshotStatus, approverID *string, approvedAt *time.Time) error {
	if m.UpdateStatusFunc != nil {
		return m.UpdateStatusFunc(ctx, tx, id, status, approverID, approvedAt)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	snapshot, ok := m.snapshots[id]
	if !ok {
		return domain.ErrSnapshotNotFound
	}
	snapshot.Status = status
	snapshot.ApproverID = approverID
	snapshot.ApprovedAt = approvedAt
	return nil
}

func (m *MockSnapshotRepository) LockDeal(ctx context.Context, tx usecase.Transaction, dealID string) error {
	if m.LockDealFunc != nil {
		return m.LockDealFunc(ctx, tx, dealID)
	}
	return nil
}

// MockAllocationRepository is an in-memory AllocationRepository.
type MockAllocationRepository struct {
	CreateBatchFunc             func(ctx context.Context, tx usecase.Transaction, allocations []*domain.CommissionAllocation) error
	GetBySnapshotFunc           func(ctx context.Context, snapshotID string) ([]*domain.CommissionAllocation, error)
	GetBySnapshotForUpdateFunc  func(ctx context.Context, tx usecase.Transaction, snapshotID string) ([]*domain.CommissionAllocation, error)
	GetByIDsForUpdateFunc       func(ctx context.Context, tx usecase.Transaction, ids []string) ([]*domain.CommissionAllocation, error)
	AddPaidFunc                 func(ctx context.Context, tx usecase.Transaction, id string, amountMinor int64) error
	AddReversedFunc             func(ctx context.Context, tx usecase.Transaction, id string, amountMinor int64) error
	ListAuthoritativeByUserFunc func(ctx context.Context, userID string) ([]*domain.AllocationSummaryItem, error)

	mu          sync.RWMutex
	allocations map[string]*domain.CommissionAllocation
}

func NewMockAllocationRepository() *MockAllocationRepository {
	return &MockAllocationRepository{allocations: make(map[string]*domain.CommissionAllocation)}
}

// Seed inserts allocations directly for test setup.
func (m *MockAllocationRepository) Seed(allocations ...*domain.CommissionAllocation) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, alloc := range allocations {
		copied := *alloc
		m.allocations[alloc.ID] = &copied
	}
}

// Get returns the current state of an allocation for assertions.
func (m *MockAllocationRepository) Get(id string) *domain.CommissionAllocation {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if alloc, ok := m.allocations[id]; ok {
		copied := *alloc
		return &copied
	}
	return nil
}

func (m *MockAllocationRepository) CreateBatch(ctx context.Context, tx usecase.Transaction, allocations []*domain.CommissionAllocation) error {
	if m.CreateBatchFunc != nil {
		return m.CreateBatchFunc(ctx, tx, allocations)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, alloc := range allocations {
		copied := *alloc
		m.allocations[alloc.ID] = &copied
	}
	return nil
}

func (m *MockAllocationRepository) GetBySnapshot(ctx context.Context, snapshotID string) ([]*domain.CommissionAllocation, error) {
	if m.GetBySnapshotFunc != nil {
		return m.GetBySnapshotFunc(ctx, snapshotID)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	var result []*domain.CommissionAllocation
	for _, alloc := range m.allocations {
		if alloc.SnapshotID == snapshotID {
			copied := *alloc
			result = append(result, &copied)
		}
	}
	sort.Slice(result, func(i, j int) bool { return roleIndex(result[i].Role) < roleIndex(result[j].Role) })
	return result, nil
}

func (m *MockAllocationRepository) GetBySnapshotForUpdate(ctx context.Context, tx usecase.Transaction, snapshotID string) ([]*domain.CommissionAllocation, error) {
	if m.GetBySnapshotForUpdateFunc != nil {
		return m.GetBySnapshotForUpdateFunc(ctx, tx, snapshotID)
	}
	return m.GetBySnapshot(ctx, snapshotID)
}

func (m *MockAllocationRepository) GetByIDsForUpdate(ctx context.Context, tx usecase.Transaction, ids []string) ([]*domain.CommissionAllocation, error) {
	if m.GetByIDsForUpdateFunc != nil {
		return m.GetByIDsForUpdateFunc(ctx, tx, ids)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	var result []*domain.CommissionAllocation
	for _, id := range ids {
		if alloc, ok := m.allocations[id]; ok {
			copied := *alloc
			result = append(result, &copied)
		}
	}
	return result, nil
}

func (m *MockAllocationRepository) AddPaid(ctx context.Context, tx usecase.Transaction, id string, amountMinor int64) error {
	if m.AddPaidFunc != nil {
		return m.AddPaidFunc(ctx, tx, id, amountMinor)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	alloc, ok := m.allocations[id]
	if !ok {
		return domain.ErrAllocationNotFound
	}
	alloc.PaidMinor += amountMinor
	return nil
}

func (m *MockAllocationRepository) AddReversed(ctx context.Context, tx usecase.Transaction, id string, amountMinor int64) error {
	if m.AddReversedFunc != nil {
		return m.AddReversedFunc(ctx, tx, id, amountMinor)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	alloc, ok := m.allocations[id]
	if !ok {
		return domain.ErrAllocationNotFound
	}
	alloc.ReversedMinor += amountMinor
	return nil
}

func (m *MockAllocationRepository) ListAuthoritativeByUser(ctx context.Context, userID string) ([]*domain.AllocationSummaryItem, error) {
	if m.ListAuthoritativeByUserFunc != nil {
		return m.ListAuthoritativeByUserFunc(ctx, userID)
	}
	return nil, nil
}

func roleIndex(role domain.Role) int {
	for i, r := range domain.AllRoles {
		if r == role {
			return i
		}
	}
	return len(domain.AllRoles)
}

// MockLedgerRepository is an in-memory LedgerRepository.
type MockLedgerRepository struct {
	AppendFunc           func(ctx context.Context, tx usecase.Transaction, entry *domain.LedgerEntry) error
	ListByDealFunc       func(ctx context.Context, dealID string, limit, offset int) ([]*domain.LedgerEntry, error)
	CheckConsistencyFunc func(ctx context.Context) ([]*domain.ConsistencyViolation, error)

	mu      sync.RWMutex
	Entries []*domain.LedgerEntry
}

func NewMockLedgerRepository() *MockLedgerRepository {
	return &MockLedgerRepository{}
}

func (m *MockLedgerRepository) Append(ctx context.Context, tx usecase.Transaction, entry *domain.LedgerEntry) error {
	if m.AppendFunc != nil {
		return m.AppendFunc(ctx, tx, entry)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	copied := *entry
	m.Entries = append(m.Entries, &copied)
	return nil
}

func (m *MockLedgerRepository) ListByDeal(ctx context.Context, dealID string, limit, offset int) ([]*domain.LedgerEntry, error) {
	if m.ListByDealFunc != nil {
		return m.ListByDealFunc(ctx, dealID, limit, offset)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	var result []*domain.LedgerEntry
	for _, entry := range m.Entries {
		if entry.DealID == dealID {
			copied := *entry
			result = append(result, &copied)
		}
	}
	return result, nil
}

func (m *MockLedgerRepository) CheckConsistency(ctx context.Context) ([]*domain.ConsistencyViolation, error) {
	if m.CheckConsistencyFunc != nil {
		return m.CheckConsistencyFunc(ctx)
	}
	return nil, nil
}

// MockPayoutRepository is an in-memory PayoutRepository.
type MockPayoutRepository struct {
	CreateFunc          func(ctx context.Context, tx usecase.Transaction, payout *domain.Payout) error
	CreateLinksFunc     func(ctx context.Context, tx usecase.Transaction, links []*domain.PayoutAllocationLink) error
	GetByIDFunc         func(ctx context.Context, id string) (*domain.Payout, error)
	ListLinksByDealFunc func(ctx context.Context, dealID string) ([]*domain.PayoutAllocationLink, error)

	mu      sync.RWMutex
	Payouts map[string]*domain.Payout
	Links   []*domain.PayoutAllocationLink
}

func NewMockPayoutRepository() *MockPayoutRepository {
	return &MockPayoutRepository{Payouts: make(map[string]*domain.Payout)}
}

func (m *MockPayoutRepository) Create(ctx context.Context, tx usecase.Transaction, payout *domain.Payout) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, tx, payout)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	copied := *payout
	m.Payouts[payout.ID] = &copied
	return nil
}

func (m *MockPayoutRepository) CreateLinks(ctx context.Context, tx usecase.Transaction, links []*domain.PayoutAllocationLink) error {
	if m.CreateLinksFunc != nil {
		return m.CreateLinksFunc(ctx, tx, links)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, link := range links {
		copied := *link
		m.Links = append(m.Links, &copied)
	}
	return nil
}

func (m *MockPayoutRepository) GetByID(ctx context.Context, id string) (*domain.Payout, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if payout, ok := m.Payouts[id]; ok {
		copied := *payout
		return &copied, nil
	}
	return nil, domain.ErrAllocationNotFound
}

func (m *MockPayoutRepository) ListLinksByDeal(ctx context.Context, dealID string) ([]*domain.PayoutAllocationLink, error) {
	if m.ListLinksByDealFunc != nil {
		return m.ListLinksByDealFunc(ctx, dealID)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]*domain.PayoutAllocationLink, 0, len(m.Links))
	for _, link := range m.Links {
		copied := *link
		result = append(result, &copied)
	}
	return result, nil
}

// MockDisputeRepository is an in-memory DisputeRepository.
type MockDisputeRepository struct {
	CreateFunc          func(ctx context.Context, dispute *domain.Dispute) error
	GetByIDFunc         func(ctx context.Context, id string) (*domain.Dispute, error)
	UpdateStatusFunc    func(ctx context.Context, id string, status domain.DisputeStatus, resolutionNote string) error
	EscalateOverdueFunc func(ctx context.Context, tx usecase.Transaction, now time.Time) ([]*domain.Dispute, error)
	ListByDealFunc      func(ctx context.Context, dealID string, limit, offset int) ([]*domain.Dispute, error)

	mu       sync.RWMutex
	disputes map[string]*domain.Dispute
}

func NewMockDisputeRepository() *MockDisputeRepository {
	return &MockDisputeRepository{disputes: make(map[string]*domain.Dispute)}
}

// Seed inserts disputes directly for test setup.
func (m *MockDisputeRepository) Seed(disputes ...*domain.Dispute) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, dispute := range disputes {
		copied := *dispute
		m.disputes[dispute.ID] = &copied
	}
}

func (m *MockDisputeRepository) Create(ctx context.Context, dispute *domain.Dispute) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, dispute)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	copied := *dispute
	m.disputes[dispute.ID] = &copied
	return nil
}

func (m *MockDisputeRepository) GetByID(ctx context.Context, id string) (*domain.Dispute, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if dispute, ok := m.disputes[id]; ok {
		copied := *dispute
		return &copied, nil
	}
	return nil, domain.ErrDisputeNotFound
}

func (m *MockDisputeRepository) UpdateStatus(ctx context.Context, id string, status domain.DisputeStatus, resolutionNote string) error {
	if m.UpdateStatusFunc != nil {
		return m.UpdateStatusFunc(ctx, id, status, resolutionNote)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	dispute, ok := m.disputes[id]
	if !ok {
		return domain.ErrDisputeNotFound
	}
	dispute.Status = status
	if resolutionNote != "" {
		dispute.ResolutionNote = resolutionNote
	}
	return nil
}

func (m *MockDisputeRepository) EscalateOverdue(ctx context.Context, tx usecase.Transaction, now time.Time) ([]*domain.Dispute, error) {
	if m.EscalateOverdueFunc != nil {
		return m.EscalateOverdueFunc(ctx, tx, now)
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	var escalated []*domain.Dispute
	for _, dispute := range m.disputes {
		if dispute.IsOverdue(now) {
			dispute.Status = domain.DisputeStatusEscalated
			copied := *dispute
			escalated = append(escalated, &copied)
		}
	}
	return escalated, nil
}

func (m *MockDisputeRepository) ListByDeal(ctx context.Context, dealID string, limit, offset int) ([]*domain.Dispute, error) {
	if m.ListByDealFunc != nil {
		return m.ListByDealFunc(ctx, dealID, limit, offset)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	var result []*domain.Dispute
	for _, dispute := range m.disputes {
		if dispute.DealID == dealID {
			copied := *dispute
			result = append(result, &copied)
		}
	}
	return result, nil
}

// MockPeriodLockRepository is an in-memory PeriodLockRepository.
type MockPeriodLockRepository struct {
	CreateFunc               func(ctx context.Context, tx usecase.Transaction, lock *domain.PeriodLock) error
	GetByIDFunc              func(ctx context.Context, id string) (*domain.PeriodLock, error)
	GetByIDForUpdateFunc     func(ctx context.Context, tx usecase.Transaction, id string) (*domain.PeriodLock, error)
	ReleaseFunc              func(ctx context.Context, tx usecase.Transaction, id string, unlockedAt time.Time, unlockedBy string) error
	AnyActiveOverlappingFunc func(ctx context.Context, tx usecase.Transaction, from, to time.Time) (bool, error)
	AnyActiveCoveringFunc    func(ctx context.Context, tx usecase.Transaction, at time.Time) (bool, error)
	LockTimelineFunc         func(ctx context.Context, tx usecase.Transaction) error
	ListFunc                 func(ctx context.Context, limit, offset int) ([]*domain.PeriodLock, error)

	mu    sync.RWMutex
	locks map[string]*domain.PeriodLock
}

func NewMockPeriodLockRepository() *MockPeriodLockRepository {
	return &MockPeriodLockRepository{locks: make(map[string]*domain.PeriodLock)}
}

// Seed inserts locks directly for test setup.
func (m *MockPeriodLockRepository) Seed(locks ...*domain.PeriodLock) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, lock := range locks {
		copied := *lock
		m.locks[lock.ID] = &copied
	}
}

func (m *MockPeriodLockRepository) Create(ctx context.Context, tx usecase.Transaction, lock *domain.PeriodLock) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, tx, lock)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	copied := *lock
	m.locks[lock.ID] = &copied
	return nil
}

func (m *MockPeriodLockRepository) GetByID(ctx context.Context, id string) (*domain.PeriodLock, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if lock, ok := m.locks[id]; ok {
		copied := *lock
		return &copied, nil
	}
	return nil, domain.ErrLockNotFound
}

func (m *MockPeriodLockRepository) GetByIDForUpdate(ctx context.Context, tx usecase.Transaction, id string) (*domain.PeriodLock, error) {
	if m.GetByIDForUpdateFunc != nil {
		return m.GetByIDForUpdateFunc(ctx, tx, id)
	}
	return m.GetByID(ctx, id)
}

func (m *MockPeriodLockRepository) Release(ctx context.Context, tx usecase.Transaction, id string, unlockedAt time.Time, unlockedBy string) error {
	if m.ReleaseFunc != nil {
		return m.ReleaseFunc(ctx, tx, id, unlockedAt, unlockedBy)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	lock, ok := m.locks[id]
	if !ok {
		return domain.ErrLockNotFound
	}
	lock.IsActive = false
	lock.UnlockedAt = &unlockedAt
	lock.UnlockedBy = &unlockedBy
	return nil
}

func (m *MockPeriodLockRepository) AnyActiveOverlapping(ctx context.Context, tx usecase.Transaction, from, to time.Time) (bool, error) {
	if m.AnyActiveOverlappingFunc != nil {
		return m.AnyActiveOverlappingFunc(ctx, tx, from, to)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, lock := range m.locks {
		if lock.IsActive && lock.Overlaps(from, to) {
			return true, nil
		}
	}
	return false, nil
}

func (m *MockPeriodLockRepository) AnyActiveCovering(ctx context.Context, tx usecase.Transaction, at time.Time) (bool, error) {
	if m.AnyActiveCoveringFunc != nil {
		return m.AnyActiveCoveringFunc(ctx, tx, at)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, lock := range m.locks {
		if lock.IsActive && lock.Covers(at) {
			return true, nil
		}
	}
	return false, nil
}

func (m *MockPeriodLockRepository) LockTimeline(ctx context.Context, tx usecase.Transaction) error {
	if m.LockTimelineFunc != nil {
		return m.LockTimelineFunc(ctx, tx)
	}
	return nil
}

func (m *MockPeriodLockRepository) List(ctx context.Context, limit, offset int) ([]*domain.PeriodLock, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, limit, offset)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	locks := make([]*domain.PeriodLock, 0, len(m.locks))
	for _, lock := range m.locks {
		copied := *lock
		locks = append(locks, &copied)
	}
	sort.Slice(locks, func(i, j int) bool { return locks[i].CreatedAt.Before(locks[j].CreatedAt) })
	return locks, nil
}

// MockOutboxRepository is an in-memory OutboxRepository.
type MockOutboxRepository struct {
	CreateFunc func(ctx context.Context, tx usecase.Transaction, event *domain.OutboxEvent) error

	mu     sync.RWMutex
	Events []*domain.OutboxEvent
}

func NewMockOutboxRepository() *MockOutboxRepository {
	return &MockOutboxRepository{}
}

func (m *MockOutboxRepository) Create(ctx context.Context, tx usecase.Transaction, event *domain.OutboxEvent) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, tx, event)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	copied := *event
	m.Events = append(m.Events, &copied)
	return nil
}

func (m *MockOutboxRepository) GetUnpublished(ctx context.Context, limit int) ([]*domain.OutboxEvent, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var result []*domain.OutboxEvent
	for _, event := range m.Events {
		if !event.Published {
			copied := *event
			result = append(result, &copied)
			if len(result) == limit {
				break
			}
		}
	}
	return result, nil
}

func (m *MockOutboxRepository) MarkPublished(ctx context.Context, id string, publishedAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, event := range m.Events {
		if event.ID == id {
			event.Published = true
			event.PublishedAt = &publishedAt
			return nil
		}
	}
	return nil
}

func (m *MockOutboxRepository) DeletePublished(ctx context.Context, before time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	kept := m.Events[:0]
	for _, event := range m.Events {
		if !event.Published || event.PublishedAt == nil || !event.PublishedAt.Before(before) {
			kept = append(kept, event)
		}
	}
	m.Events = kept
	return nil
}
