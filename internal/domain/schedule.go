package domain

import (
	"time"
)

// ScheduleSpec is the computed firing plan: wait InitialDelay, then fire every Period.
type ScheduleSpec struct {
	InitialDelay time.Duration
	Period       time.Duration
}

// ComputeInitialDelay returns the time from now until the next local midnight in
// referenceZone. At exactly midnight the result is one full local day, never zero.
func ComputeInitialDelay(now time.Time, referenceZone string) (time.Duration, error) {
	next, err := NextMidnight(now, referenceZone)
	if err != nil {
		return 0, err
	}

	return next.Sub(now), nil
}

// NextMidnight returns 00:00:00 of the calendar day after now, in referenceZone.
// time.Date normalizes a midnight skipped by a DST jump to the first valid instant.
func NextMidnight(now time.Time, referenceZone string) (time.Time, error) {
	loc, err := LoadZone(referenceZone)
	if err != nil {
		return time.Time{}, err
	}

	localNow := now.In(loc)
	y, m, d := localNow.Date()

	return time.Date(y, m, d+1, 0, 0, 0, 0, loc), nil
}

// ComputePeriod converts the configured hour count into the repeat period.
func ComputePeriod(updateHours int) (time.Duration, error) {
	if updateHours <= 0 {
		return 0, NewInvalidConfigError("schedule.update_hours", updateHours, "must be a positive number of hours")
	}

	return time.Duration(updateHours) * time.Hour, nil
}

// NewScheduleSpec validates the interval and aligns the first fire to the next
// reference-zone midnight.
func NewScheduleSpec(now time.Time, referenceZone string, updateHours int) (ScheduleSpec, error) {
	period, err := ComputePeriod(updateHours)
	if err != nil {
		return ScheduleSpec{}, err
	}

	delay, err := ComputeInitialDelay(now, referenceZone)
	if err != nil {
		return ScheduleSpec{}, err
	}

	return ScheduleSpec{InitialDelay: delay, Period: period}, nil
}

// NextFire returns the first grid point first + k*period (k >= 0) strictly after after.
// Ticks missed while a cycle overran are skipped rather than queued.
func NextFire(after, first time.Time, period time.Duration) time.Time {
	if period <= 0 {
		return first
	}

	if after.Before(first) {
		return first
	}

	elapsed := after.Sub(first)
	steps := elapsed/period + 1

	return first.Add(steps * period)
}

// Upcoming lists the first n fire times of spec when started at start.
func (s ScheduleSpec) Upcoming(start time.Time, n int) []time.Time {
	out := make([]time.Time, 0, n)
	first := start.Add(s.InitialDelay)

	for i := range n {
		out = append(out, first.Add(time.Duration(i)*s.Period))
	}

	return out
}
