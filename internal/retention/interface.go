// Package retention decides which backups survive a sweep.
package retention

import "time"

// Tier is the age band a backup falls into.
type Tier string

const (
	// TierDaily covers backups at most DailyWindowDays old; all are kept.
	TierDaily Tier = "daily"
	// TierWeekly covers backups up to WeeklyWindowDays old; month starts and Mondays are kept.
	TierWeekly Tier = "weekly"
	// TierMonthly covers everything older; only month starts are kept.
	TierMonthly Tier = "monthly"
)

// Decision is the outcome of classifying one backup.
type Decision struct {
	Keep    bool
	Tier    Tier
	AgeDays int
	// Reason is a human-readable explanation suitable for logs.
	Reason string
}

// ClassifierFunc matches Classify and lets callers substitute a policy in tests.
type ClassifierFunc func(today, created time.Time) Decision
