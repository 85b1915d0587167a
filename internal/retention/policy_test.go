package retention

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestClassify_Scenario(t *testing.T) {
	today := date(2024, 6, 15)

	tests := []struct {
		filename string
		created  time.Time
		wantKeep bool
		wantTier Tier
		wantAge  int
	}{
		{"hawc-2024-06-10T02_00.sql.gz", time.Date(2024, 6, 10, 2, 0, 0, 0, time.UTC), true, TierDaily, 5},
		{"hawc-2024-05-01T02_00.sql.gz", time.Date(2024, 5, 1, 2, 0, 0, 0, time.UTC), true, TierWeekly, 45},
		{"hawc-2024-05-13T02_00.sql.gz", time.Date(2024, 5, 13, 2, 0, 0, 0, time.UTC), true, TierWeekly, 33},
		{"hawc-2024-05-14T02_00.sql.gz", time.Date(2024, 5, 14, 2, 0, 0, 0, time.UTC), false, TierWeekly, 32},
		{"hawc-2024-01-01T02_00.sql.gz", time.Date(2024, 1, 1, 2, 0, 0, 0, time.UTC), true, TierMonthly, 166},
		{"hawc-2024-01-15T02_00.sql.gz", time.Date(2024, 1, 15, 2, 0, 0, 0, time.UTC), false, TierMonthly, 152},
	}

	for _, tt := range tests {
		t.Run(tt.filename, func(t *testing.T) {
			got := Classify(today, tt.created)
			assert.Equal(t, tt.wantKeep, got.Keep, got.Reason)
			assert.Equal(t, tt.wantTier, got.Tier)
			assert.Equal(t, tt.wantAge, got.AgeDays)
			assert.NotEmpty(t, got.Reason)
			assert.Equal(t, tt.wantKeep, ShouldKeep(today, tt.created))
		})
	}
}

func TestClassify_TierBoundaries(t *testing.T) {
	today := date(2024, 6, 15)

	tests := []struct {
		name     string
		age      int
		wantTier Tier
	}{
		{"today", 0, TierDaily},
		{"last daily day", DailyWindowDays, TierDaily},
		{"first weekly day", DailyWindowDays + 1, TierWeekly},
		{"last weekly day", WeeklyWindowDays, TierWeekly},
		{"first monthly day", WeeklyWindowDays + 1, TierMonthly},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			created := today.AddDate(0, 0, -tt.age)
			got := Classify(today, created)
			assert.Equal(t, tt.wantTier, got.Tier)
			assert.Equal(t, tt.age, got.AgeDays)
		})
	}
}

func TestClassify_DailyTierKeepsEverything(t *testing.T) {
	today := date(2024, 6, 15)
	for age := 0; age <= DailyWindowDays; age++ {
		created := today.AddDate(0, 0, -age)
		assert.True(t, ShouldKeep(today, created), "age %d (%s)", age, created.Weekday())
	}
}

func TestClassify_WeeklyTier(t *testing.T) {
	// Sweep every "today" across two years so every weekday/month-start
	// combination is exercised for every age in the band.
	start := date(2023, 1, 1)
	for offset := 0; offset < 730; offset += 7 {
		today := start.AddDate(0, 0, offset)
		for age := DailyWindowDays + 1; age <= WeeklyWindowDays; age++ {
			created := today.AddDate(0, 0, -age)
			want := created.Day() == 1 || created.Weekday() == time.Monday
			require.Equal(t, want, ShouldKeep(today, created), "today=%s created=%s", today.Format(time.DateOnly), created.Format(time.DateOnly))
		}
	}
}

func TestClassify_MonthlyTier(t *testing.T) {
	start := date(2023, 1, 1)
	for offset := 0; offset < 730; offset += 11 {
		today := start.AddDate(0, 0, offset)
		for age := WeeklyWindowDays + 1; age <= 800; age++ {
			created := today.AddDate(0, 0, -age)
			want := created.Day() == 1
			require.Equal(t, want, ShouldKeep(today, created), "today=%s created=%s", today.Format(time.DateOnly), created.Format(time.DateOnly))
		}
	}
}

func TestClassify_MondayMonthStartKeptInAllTiers(t *testing.T) {
	// 2024-01-01 and 2024-04-01 are Mondays.
	for _, created := range []time.Time{date(2024, 1, 1), date(2024, 4, 1)} {
		for _, age := range []int{0, DailyWindowDays, WeeklyWindowDays, 400} {
			today := created.AddDate(0, 0, age)
			assert.True(t, ShouldKeep(today, created), "created=%s age=%d", created.Format(time.DateOnly), age)
		}
	}
}

func TestClassify_FutureDateIsKept(t *testing.T) {
	today := date(2024, 6, 15)
	got := Classify(today, date(2024, 6, 20))

	assert.True(t, got.Keep)
	assert.Equal(t, TierDaily, got.Tier)
	assert.Equal(t, -5, got.AgeDays)
	assert.Contains(t, got.Reason, "future")
}

func TestClassify_Deterministic(t *testing.T) {
	today := date(2024, 6, 15)
	created := date(2024, 3, 4)
	first := Classify(today, created)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, Classify(today, created))
	}
}

func TestAgeDays(t *testing.T) {
	newYork, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Skipf("timezone database unavailable: %v", err)
	}

	tests := []struct {
		name    string
		today   time.Time
		created time.Time
		want    int
	}{
		{"same day different hours", time.Date(2024, 6, 15, 23, 59, 0, 0, time.UTC), time.Date(2024, 6, 15, 0, 1, 0, 0, time.UTC), 0},
		{"late today, early created", time.Date(2024, 6, 15, 0, 1, 0, 0, time.UTC), time.Date(2024, 6, 14, 23, 59, 0, 0, time.UTC), 1},
		{"leap year february", date(2024, 3, 1), date(2024, 2, 28), 2},
		{"across spring DST change", time.Date(2024, 3, 11, 1, 0, 0, 0, newYork), time.Date(2024, 3, 10, 1, 0, 0, 0, newYork), 1},
		{"across fall DST change", time.Date(2024, 11, 4, 0, 30, 0, 0, newYork), time.Date(2024, 11, 2, 23, 30, 0, 0, newYork), 2},
		{"future", date(2024, 6, 15), date(2024, 6, 16), -1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, AgeDays(tt.today, tt.created))
		})
	}
}

func TestPredicates(t *testing.T) {
	assert.True(t, IsMonthStart(date(2024, 2, 1)))
	assert.False(t, IsMonthStart(date(2024, 2, 2)))
	assert.True(t, IsWeekStart(date(2024, 5, 13)))
	assert.False(t, IsWeekStart(date(2024, 5, 14)))
}
