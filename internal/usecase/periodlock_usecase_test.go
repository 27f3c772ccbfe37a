package usecase_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/iho/splitledger/internal/domain"
	"github.com/iho/splitledger/internal/usecase"
)

func january2026() (time.Time, time.Time) {
	from := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	return from, from.AddDate(0, 1, 0)
}

func TestCreateLock(t *testing.T) {
	r := newRig()
	from, to := january2026()

	lock, err := r.lockUC.CreateLock(context.Background(), usecase.CreateLockInput{
		PeriodFrom: from,
		PeriodTo:   to,
		Reason:     "year-end audit",
		CreatedBy:  "finance-1",
	})
	if err != nil {
		t.Fatalf("CreateLock: %v", err)
	}

	if !lock.IsActive {
		t.Error("new lock should be active")
	}
	if !lock.PeriodFrom.Equal(from) || !lock.PeriodTo.Equal(to) {
		t.Errorf("period = [%s, %s], want [%s, %s]", lock.PeriodFrom, lock.PeriodTo, from, to)
	}

	if n := countOutboxEvents(r, domain.EventTypePeriodLocked); n != 1 {
		t.Errorf("period.locked events = %d, want 1", n)
	}
}

func TestCreateLock_RejectsOverlap(t *testing.T) {
	r := newRig()
	from, to := january2026()

	if _, err := r.lockUC.CreateLock(context.Background(), usecase.CreateLockInput{
		PeriodFrom: from, PeriodTo: to, CreatedBy: "finance-1",
	}); err != nil {
		t.Fatalf("first CreateLock: %v", err)
	}

	_, err := r.lockUC.CreateLock(context.Background(), usecase.CreateLockInput{
		PeriodFrom: from.AddDate(0, 0, 15),
		PeriodTo:   to.AddDate(0, 0, 15),
		CreatedBy:  "finance-2",
	})
	if !errors.Is(err, domain.ErrOverlappingLock) {
		t.Errorf("expected ErrOverlappingLock, got %v", err)
	}
}

func TestCreateLock_RejectsBadInput(t *testing.T) {
	r := newRig()
	from, to := january2026()

	_, err := r.lockUC.CreateLock(context.Background(), usecase.CreateLockInput{
		PeriodFrom: to, PeriodTo: from, CreatedBy: "finance-1",
	})
	if !errors.Is(err, domain.ErrInvalidPeriod) {
		t.Errorf("inverted period: expected ErrInvalidPeriod, got %v", err)
	}

	_, err = r.lockUC.CreateLock(context.Background(), usecase.CreateLockInput{
		PeriodFrom: from, PeriodTo: to,
	})
	if !errors.Is(err, domain.ErrInvalidState) {
		t.Errorf("missing creator: expected ErrInvalidState, got %v", err)
	}
}

func TestReleaseLock(t *testing.T) {
	r := newRig()
	from, to := january2026()

	lock, err := r.lockUC.CreateLock(context.Background(), usecase.CreateLockInput{
		PeriodFrom: from, PeriodTo: to, CreatedBy: "finance-1",
	})
	if err != nil {
		t.Fatalf("CreateLock: %v", err)
	}

	released, err := r.lockUC.ReleaseLock(context.Background(), usecase.ReleaseLockInput{
		LockID:     lock.ID,
		Reason:     "audit complete",
		ReleasedBy: "finance-2",
	})
	if err != nil {
		t.Fatalf("ReleaseLock: %v", err)
	}

	if released.IsActive {
		t.Error("released lock should be inactive")
	}
	if released.UnlockedBy == nil || *released.UnlockedBy != "finance-2" {
		t.Error("releasing actor not recorded")
	}
	if released.UnlockedAt == nil {
		t.Error("release timestamp not recorded")
	}

	if n := countOutboxEvents(r, domain.EventTypePeriodUnlocked); n != 1 {
		t.Errorf("period.unlocked events = %d, want 1", n)
	}

	// Releasing an inactive lock fails.
	_, err = r.lockUC.ReleaseLock(context.Background(), usecase.ReleaseLockInput{
		LockID:     lock.ID,
		ReleasedBy: "finance-2",
	})
	if !errors.Is(err, domain.ErrInvalidState) {
		t.Errorf("double release: expected ErrInvalidState, got %v", err)
	}
}

func TestReleaseLock_UnknownLock(t *testing.T) {
	r := newRig()

	_, err := r.lockUC.ReleaseLock(context.Background(), usecase.ReleaseLockInput{
		LockID:     "missing",
		ReleasedBy: "finance-1",
	})
	if !errors.Is(err, domain.ErrLockNotFound) {
		t.Errorf("expected ErrLockNotFound, got %v", err)
	}
}

func TestAssertUnlocked(t *testing.T) {
	r := newRig()
	from, to := january2026()

	lock, err := r.lockUC.CreateLock(context.Background(), usecase.CreateLockInput{
		PeriodFrom: from, PeriodTo: to, CreatedBy: "finance-1",
	})
	if err != nil {
		t.Fatalf("CreateLock: %v", err)
	}

	inside := from.AddDate(0, 0, 15)
	if err := r.lockUC.AssertUnlocked(context.Background(), nil, inside); !errors.Is(err, domain.ErrPeriodLocked) {
		t.Errorf("inside lock: expected ErrPeriodLocked, got %v", err)
	}

	outside := to.AddDate(0, 1, 0)
	if err := r.lockUC.AssertUnlocked(context.Background(), nil, outside); err != nil {
		t.Errorf("outside lock: unexpected error %v", err)
	}

	if _, err := r.lockUC.ReleaseLock(context.Background(), usecase.ReleaseLockInput{
		LockID:     lock.ID,
		ReleasedBy: "finance-2",
	}); err != nil {
		t.Fatalf("ReleaseLock: %v", err)
	}

	if err := r.lockUC.AssertUnlocked(context.Background(), nil, inside); err != nil {
		t.Errorf("after release: unexpected error %v", err)
	}
}

func TestListLocks(t *testing.T) {
	r := newRig()
	from, to := january2026()

	if _, err := r.lockUC.CreateLock(context.Background(), usecase.CreateLockInput{
		PeriodFrom: from, PeriodTo: to, CreatedBy: "finance-1",
	}); err != nil {
		t.Fatalf("CreateLock: %v", err)
	}

	locks, err := r.lockUC.ListLocks(context.Background(), 0, 0)
	if err != nil {
		t.Fatalf("ListLocks: %v", err)
	}
	if len(locks) != 1 {
		t.Errorf("locks = %d, want 1", len(locks))
	}
}
