// Package recurrence computes next occurrence dates for recurring
// tasks. All arithmetic happens on civil calendar components in the
// planner timezone, never on raw instants, so results stay stable no
// matter what zone the host clock runs in.
package recurrence

import (
	"time"

	"task-delegator/internal/model"
)

// Next returns the occurrence after base for the given rule, as local
// midnight in loc. Monthly-family rules clamp the day-of-month: the
// result's day is min(base day, days in target month), so Jan 31 plus
// one month lands on Feb 28/29 rather than spilling into March.
//
// A rule of RecurrenceNone returns base unchanged.
func Next(base time.Time, rule model.Recurrence, loc *time.Location) time.Time {
	year, month, day := base.In(loc).Date()

	switch rule {
	case model.RecurrenceDaily:
		return civil(year, month, day+1, loc)
	case model.RecurrenceWeekly:
		return civil(year, month, day+7, loc)
	case model.RecurrenceBiweekly:
		return civil(year, month, day+14, loc)
	case model.RecurrenceMonthly:
		return addMonthsClamped(year, month, day, 1, loc)
	case model.RecurrenceQuarterly:
		return addMonthsClamped(year, month, day, 3, loc)
	case model.RecurrenceSemiannual:
		return addMonthsClamped(year, month, day, 6, loc)
	case model.RecurrenceAnnual:
		return addMonthsClamped(year, month, day, 12, loc)
	}
	return base
}

func addMonthsClamped(year int, month time.Month, day, months int, loc *time.Location) time.Time {
	// Normalize the target month via a day-1 date so that time.Date's
	// overflow rules never shift the month a second time.
	first := time.Date(year, month+time.Month(months), 1, 0, 0, 0, 0, loc)
	ty, tm, _ := first.Date()
	if max := daysInMonth(tm, ty); day > max {
		day = max
	}
	return time.Date(ty, tm, day, 0, 0, 0, 0, loc)
}

func civil(year int, month time.Month, day int, loc *time.Location) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, loc)
}

func daysInMonth(month time.Month, year int) int {
	// Move to next month, roll back a day.
	firstOfNext := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 1, 0)
	return firstOfNext.AddDate(0, 0, -1).Day()
}
