package domain

import (
	"math"
	"time"
)

// SessionSample is one archived session's final count.
type SessionSample struct {
	SessionID string
	EndedAt   time.Time
	Present   int
	Enrolled  int
}

type DayRate struct {
	Day         time.Weekday
	Date        time.Time
	Sessions    int
	Present     int
	Enrolled    int
	RatePercent int
}

func (d DayRate) HasSessions() bool {
	return d.Sessions > 0
}

type WeeklyOverview struct {
	WeekStart      time.Time
	Days           []DayRate
	AveragePercent int
}

// WeekStart returns Monday 00:00 of the week holding t, in t's location.
func WeekStart(t time.Time) time.Time {
	offset := (int(t.Weekday()) + 6) % 7
	y, m, d := t.Date()
	return time.Date(y, m, d-offset, 0, 0, 0, 0, t.Location())
}

// BuildWeeklyOverview buckets samples by the weekday they ended on. Monday to
// Friday are always listed; a weekend day only when a session ended on it.
// The average is taken over days that held sessions.
func BuildWeeklyOverview(weekStart time.Time, samples []SessionSample) WeeklyOverview {
	weekStart = WeekStart(weekStart)
	weekEnd := weekStart.AddDate(0, 0, 7)
	var days [7]DayRate
	for i := range days {
		date := weekStart.AddDate(0, 0, i)
		days[i] = DayRate{Day: date.Weekday(), Date: date}
	}
	for _, s := range samples {
		at := s.EndedAt.In(weekStart.Location())
		if at.Before(weekStart) || !at.Before(weekEnd) {
			continue
		}
		day := &days[(int(at.Weekday())+6)%7]
		day.Sessions++
		day.Present += s.Present
		day.Enrolled += s.Enrolled
	}

	overview := WeeklyOverview{WeekStart: weekStart}
	sum, held := 0, 0
	for i, day := range days {
		if day.Enrolled > 0 {
			day.RatePercent = int(math.Round(float64(day.Present) / float64(day.Enrolled) * 100))
		}
		if i >= 5 && !day.HasSessions() {
			continue
		}
		if day.HasSessions() {
			sum += day.RatePercent
			held++
		}
		overview.Days = append(overview.Days, day)
	}
	if held > 0 {
		overview.AveragePercent = int(math.Round(float64(sum) / float64(held)))
	}
	return overview
}
