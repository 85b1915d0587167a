package retention

import (
	"fmt"
	"time"
)

const (
	// DailyWindowDays is the inclusive upper age bound of the daily tier.
	DailyWindowDays = 14
	// WeeklyWindowDays is the inclusive upper age bound of the weekly tier.
	WeeklyWindowDays = 90

	// WeekStart is the first day of a retention week.
	WeekStart = time.Monday
)

// IsMonthStart reports whether d is the first day of its month.
func IsMonthStart(d time.Time) bool {
	return d.Day() == 1
}

// IsWeekStart reports whether d falls on WeekStart.
func IsWeekStart(d time.Time) bool {
	return d.Weekday() == WeekStart
}

// AgeDays returns the number of calendar days from created to today.
// Time of day is ignored. The result is negative when created is after today.
func AgeDays(today, created time.Time) int {
	return int(civilDate(today).Sub(civilDate(created)).Hours() / 24)
}

// Classify applies the three-tier policy: everything for DailyWindowDays,
// month starts and Mondays up to WeeklyWindowDays, month starts forever.
//
// A created date after today is outside the policy; it lands in the daily
// tier and is kept.
func Classify(today, created time.Time) Decision {
	age := AgeDays(today, created)

	switch {
	case age <= DailyWindowDays:
		reason := fmt.Sprintf("%d days old, within the %d day daily window", age, DailyWindowDays)
		if age < 0 {
			reason = fmt.Sprintf("created %d days in the future", -age)
		}
		return Decision{Keep: true, Tier: TierDaily, AgeDays: age, Reason: reason}

	case age <= WeeklyWindowDays:
		d := Decision{Tier: TierWeekly, AgeDays: age}
		switch {
		case IsMonthStart(created):
			d.Keep, d.Reason = true, fmt.Sprintf("%d days old, first day of the month", age)
		case IsWeekStart(created):
			d.Keep, d.Reason = true, fmt.Sprintf("%d days old, first day of the week", age)
		default:
			d.Reason = fmt.Sprintf("%d days old, neither month nor week start", age)
		}
		return d

	default:
		d := Decision{Tier: TierMonthly, AgeDays: age}
		if IsMonthStart(created) {
			d.Keep, d.Reason = true, fmt.Sprintf("%d days old, first day of the month", age)
		} else {
			d.Reason = fmt.Sprintf("%d days old, older than %d days and not a month start", age, WeeklyWindowDays)
		}
		return d
	}
}

// ShouldKeep reports whether a backup created on created survives a sweep on today.
func ShouldKeep(today, created time.Time) bool {
	return Classify(today, created).Keep
}

// civilDate drops the time of day and location so day arithmetic is DST-safe.
func civilDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
