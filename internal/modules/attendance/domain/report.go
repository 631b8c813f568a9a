package domain

import (
	"cmp"
	"slices"
	"time"
)

type ReportKind string

const (
	ReportAttendanceSummary ReportKind = "attendance_summary"
	ReportIndividual        ReportKind = "individual_report"
	ReportClassAnalytics    ReportKind = "class_analytics"
	ReportWeeklySummary     ReportKind = "weekly_summary"
)

type ReportFormat string

const (
	FormatExcel    ReportFormat = "excel"
	FormatMarkdown ReportFormat = "markdown"
	FormatPDF      ReportFormat = "pdf"
	FormatEmail    ReportFormat = "email"
)

type ScheduleRule struct {
	Name               string
	CadenceDescription string
	Enabled            bool
	NextRun            time.Time
}

type ReportHandle struct {
	ID          string
	Kind        ReportKind
	Format      ReportFormat
	Path        string
	GeneratedAt time.Time
}

// HistoryEntry is one student's attendance across archived sessions.
type HistoryEntry struct {
	DisplayName      string
	SessionsAttended int
	SessionsTotal    int
}

// DayRate is one weekday of the weekly overview. RatePercent is 0 on a day
// without sessions.
type DayRate struct {
	Day         string
	Date        time.Time
	Sessions    int
	Present     int
	Enrolled    int
	RatePercent int
}

type WeeklyOverview struct {
	WeekStart      time.Time
	Days           []DayRate
	AveragePercent int
}

type StudentStanding struct {
	DisplayName      string
	SessionsAttended int
	SessionsTotal    int
	Percent          float64
	Standing         Standing
}

// MergeStanding folds the current session into archived history and buckets
// the result, sorted by name. Students only present in one of the two still
// get a row.
func MergeStanding(history []HistoryEntry, current []AttendanceRecord) []StudentStanding {
	index := map[string]int{}
	out := make([]StudentStanding, 0, len(history)+len(current))
	for _, h := range history {
		index[h.DisplayName] = len(out)
		out = append(out, StudentStanding{DisplayName: h.DisplayName, SessionsAttended: h.SessionsAttended, SessionsTotal: h.SessionsTotal})
	}
	for _, rec := range current {
		idx, ok := index[rec.DisplayName]
		if !ok {
			idx = len(out)
			index[rec.DisplayName] = idx
			out = append(out, StudentStanding{DisplayName: rec.DisplayName})
		}
		out[idx].SessionsTotal++
		if rec.Present() {
			out[idx].SessionsAttended++
		}
	}
	for i := range out {
		if out[i].SessionsTotal > 0 {
			out[i].Percent = float64(out[i].SessionsAttended) / float64(out[i].SessionsTotal) * 100
		}
		out[i].Standing = StandingFor(out[i].Percent)
	}
	slices.SortFunc(out, func(a, b StudentStanding) int { return cmp.Compare(a.DisplayName, b.DisplayName) })
	return out
}
