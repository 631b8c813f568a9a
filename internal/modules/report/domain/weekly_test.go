package domain_test

import (
	"testing"
	"time"

	"faceclass/internal/modules/report/domain"
)

func TestWeekStartIsMonday(t *testing.T) {
	t.Parallel()
	monday := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	for _, at := range []time.Time{
		monday,
		time.Date(2026, 3, 4, 15, 30, 0, 0, time.UTC),
		time.Date(2026, 3, 8, 23, 59, 0, 0, time.UTC),
	} {
		if got := domain.WeekStart(at); !got.Equal(monday) {
			t.Fatalf("WeekStart(%v) = %v", at, got)
		}
	}
}

func TestBuildWeeklyOverview(t *testing.T) {
	t.Parallel()
	week := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	at := func(day, hour int) time.Time { return week.AddDate(0, 0, day).Add(time.Duration(hour) * time.Hour) }
	samples := []domain.SessionSample{
		{SessionID: "mon-a", EndedAt: at(0, 9), Present: 27, Enrolled: 32},
		{SessionID: "mon-b", EndedAt: at(0, 14), Present: 28, Enrolled: 32},
		{SessionID: "wed", EndedAt: at(2, 10), Present: 29, Enrolled: 32},
		{SessionID: "sat", EndedAt: at(5, 10), Present: 10, Enrolled: 20},
		{SessionID: "last-week", EndedAt: at(-1, 10), Present: 0, Enrolled: 32},
	}
	overview := domain.BuildWeeklyOverview(at(3, 12), samples)

	if !overview.WeekStart.Equal(week) {
		t.Fatalf("week start %v", overview.WeekStart)
	}
	var days []time.Weekday
	for _, d := range overview.Days {
		days = append(days, d.Day)
	}
	want := []time.Weekday{time.Monday, time.Tuesday, time.Wednesday, time.Thursday, time.Friday, time.Saturday}
	if len(days) != len(want) {
		t.Fatalf("expected weekdays plus saturday, got %v", days)
	}
	for i := range want {
		if days[i] != want[i] {
			t.Fatalf("day %d: got %v want %v", i, days[i], want[i])
		}
	}
	mon := overview.Days[0]
	if mon.Sessions != 2 || mon.Present != 55 || mon.Enrolled != 64 || mon.RatePercent != 86 {
		t.Fatalf("monday aggregate: %+v", mon)
	}
	if tue := overview.Days[1]; tue.HasSessions() || tue.RatePercent != 0 {
		t.Fatalf("tuesday should be empty: %+v", tue)
	}
	if wed := overview.Days[2]; wed.RatePercent != 91 {
		t.Fatalf("wednesday rate %d", wed.RatePercent)
	}
	// (86 + 91 + 50) / 3 = 75.67
	if overview.AveragePercent != 76 {
		t.Fatalf("average %d", overview.AveragePercent)
	}
}

func TestBuildWeeklyOverviewEmptyWeek(t *testing.T) {
	t.Parallel()
	overview := domain.BuildWeeklyOverview(time.Date(2026, 3, 4, 0, 0, 0, 0, time.UTC), nil)
	if len(overview.Days) != 5 || overview.AveragePercent != 0 {
		t.Fatalf("unexpected empty week: %+v", overview)
	}
}
