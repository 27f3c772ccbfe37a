package domain

import "time"

// PeriodLock freezes approval/payout/reversal mutations inside a date
// range. Locks live on a single global timeline, not per deal.
type PeriodLock struct {
	ID         string
	PeriodFrom time.Time
	PeriodTo   time.Time
	Reason     string
	IsActive   bool
	CreatedBy  string
	CreatedAt  time.Time
	UnlockedAt *time.Time
	UnlockedBy *string
}

// Validate checks the interval shape.
func (l *PeriodLock) Validate() error {
	if !l.PeriodFrom.Before(l.PeriodTo) {
		return ErrInvalidPeriod
	}
	return nil
}

// Covers reports whether at falls inside the lock's closed interval.
func (l *PeriodLock) Covers(at time.Time) bool {
	return !at.Before(l.PeriodFrom) && !at.After(l.PeriodTo)
}

// Overlaps reports whether two closed intervals intersect.
func (l *PeriodLock) Overlaps(from, to time.Time) bool {
	return !l.PeriodTo.Before(from) && !to.Before(l.PeriodFrom)
}
