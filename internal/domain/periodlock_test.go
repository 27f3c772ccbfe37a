package domain

import (
	"errors"
	"testing"
	"time"
)

func TestPeriodLock_Validate(t *testing.T) {
	from := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	lock := &PeriodLock{PeriodFrom: from, PeriodTo: from.AddDate(0, 1, 0)}
	if err := lock.Validate(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}

	inverted := &PeriodLock{PeriodFrom: from, PeriodTo: from.Add(-time.Hour)}
	if err := inverted.Validate(); !errors.Is(err, ErrInvalidPeriod) {
		t.Errorf("inverted interval: expected ErrInvalidPeriod, got %v", err)
	}

	empty := &PeriodLock{PeriodFrom: from, PeriodTo: from}
	if err := empty.Validate(); !errors.Is(err, ErrInvalidPeriod) {
		t.Errorf("empty interval: expected ErrInvalidPeriod, got %v", err)
	}
}

func TestPeriodLock_Covers(t *testing.T) {
	from := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2026, 1, 31, 23, 59, 59, 0, time.UTC)
	lock := &PeriodLock{PeriodFrom: from, PeriodTo: to}

	tests := []struct {
		name    string
		at      time.Time
		covered bool
	}{
		{"before", from.Add(-time.Second), false},
		{"at start", from, true},
		{"inside", from.AddDate(0, 0, 15), true},
		{"at end", to, true},
		{"after", to.Add(time.Second), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := lock.Covers(tt.at); got != tt.covered {
				t.Errorf("Covers(%s) = %v, want %v", tt.at, got, tt.covered)
			}
		})
	}
}

func TestPeriodLock_Overlaps(t *testing.T) {
	from := time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC)
	to := time.Date(2026, 1, 20, 0, 0, 0, 0, time.UTC)
	lock := &PeriodLock{PeriodFrom: from, PeriodTo: to}

	tests := []struct {
		name     string
		from, to time.Time
		overlaps bool
	}{
		{"disjoint before", from.AddDate(0, 0, -10), from.AddDate(0, 0, -5), false},
		{"touching start", from.AddDate(0, 0, -5), from, true},
		{"contained", from.AddDate(0, 0, 2), to.AddDate(0, 0, -2), true},
		{"containing", from.AddDate(0, 0, -2), to.AddDate(0, 0, 2), true},
		{"touching end", to, to.AddDate(0, 0, 5), true},
		{"disjoint after", to.AddDate(0, 0, 5), to.AddDate(0, 0, 10), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := lock.Overlaps(tt.from, tt.to); got != tt.overlaps {
				t.Errorf("Overlaps(%s, %s) = %v, want %v", tt.from, tt.to, got, tt.overlaps)
			}
		})
	}
}
