// Package services provides orchestration on top of the ledger.
//
// This file implements the Strategy Pattern for recurring expense schedules.
// Each frequency (daily, weekly, monthly, yearly) has its own strategy that
// computes the dates on which a template repeats.
package services

import (
	"fmt"
	"time"

	"finanzapp/internal/core"
)

// Schedule is the strategy interface for recurring expense dates.
type Schedule interface {
	// Occurrence returns the n-th repetition (n >= 1) of a template first
	// recorded at start. Clock time and location are those of start.
	Occurrence(start time.Time, n int) time.Time
}

// DailySchedule repeats every calendar day.
type DailySchedule struct{}

func (DailySchedule) Occurrence(start time.Time, n int) time.Time {
	return start.AddDate(0, 0, n)
}

// WeeklySchedule repeats every seven days.
type WeeklySchedule struct{}

func (WeeklySchedule) Occurrence(start time.Time, n int) time.Time {
	return start.AddDate(0, 0, 7*n)
}

// MonthlySchedule repeats on start's day of month, clamped to the month length.
// A template from Jan 31 falls on Feb 28/29 and is back on Mar 31.
type MonthlySchedule struct{}

func (MonthlySchedule) Occurrence(start time.Time, n int) time.Time {
	return shiftClamped(start, 0, n)
}

// YearlySchedule repeats on start's month and day; Feb 29 falls on Feb 28
// in common years.
type YearlySchedule struct{}

func (YearlySchedule) Occurrence(start time.Time, n int) time.Time {
	return shiftClamped(start, n, 0)
}

// shiftClamped moves start by years and months, keeping its day of month
// unless the target month is shorter.
func shiftClamped(start time.Time, years, months int) time.Time {
	y, m, d := start.Date()
	first := time.Date(y+years, m+time.Month(months), 1, 0, 0, 0, 0, start.Location())
	return time.Date(first.Year(), first.Month(), clampDay(first.Year(), first.Month(), d),
		start.Hour(), start.Minute(), start.Second(), start.Nanosecond(), start.Location())
}

// clampDay maps day 31 to the last day of shorter months.
func clampDay(year int, month time.Month, day int) int {
	lastDay := time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
	if day > lastDay {
		return lastDay
	}
	return day
}

// DueDates lists the scheduled dates after last and not after now, oldest
// first and at most limit of them.
func DueDates(s Schedule, start, last, now time.Time, limit int) []time.Time {
	var due []time.Time
	for n := 1; len(due) < limit; n++ {
		at := s.Occurrence(start, n)
		if at.After(now) {
			break
		}
		if at.After(last) {
			due = append(due, at)
		}
	}
	return due
}

var schedules = map[core.Frequency]Schedule{
	core.Daily:   DailySchedule{},
	core.Weekly:  WeeklySchedule{},
	core.Monthly: MonthlySchedule{},
	core.Yearly:  YearlySchedule{},
}

// GetSchedule returns the schedule for a frequency.
func GetSchedule(frequency core.Frequency) (Schedule, error) {
	s, ok := schedules[frequency]
	if !ok {
		return nil, fmt.Errorf("unknown frequency: %q", frequency)
	}
	return s, nil
}
