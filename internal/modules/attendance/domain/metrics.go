package domain

import (
	"math"
	"time"
)

const DefaultGoalPercent = 85

type ClassStatus string

const (
	ClassStarting   ClassStatus = "starting"
	ClassInProgress ClassStatus = "in-progress"
	ClassEnding     ClassStatus = "ending"
)

func ClassStatusFor(progress float64) ClassStatus {
	switch {
	case progress < 30:
		return ClassStarting
	case progress < 70:
		return ClassInProgress
	default:
		return ClassEnding
	}
}

type MetricsSnapshot struct {
	PresentCount          int
	AbsentCount           int
	TotalEnrolled         int
	AttendanceRatePercent int
	ClassProgressPercent  float64
	ElapsedMinutes        float64
	ClassStatus           ClassStatus
	AttendanceGoalPercent float64
	AttendanceGoalMet     bool
	Ended                 bool
	At                    time.Time
}

// Counts are the roster figures the projection reads.
type Counts struct {
	Present    int
	RosterSize int
}

// EffectiveTotal never lets the enrolled total fall below the number of
// distinct students on the roster.
func EffectiveTotal(configured, rosterSize int) int {
	return max(configured, rosterSize)
}

// AttendanceRate rounds present/total to a whole percent; an empty class
// has rate 0.
func AttendanceRate(present, total int) int {
	if total <= 0 {
		return 0
	}
	return int(math.Round(float64(present) / float64(total) * 100))
}

func ComputeMetrics(session Session, counts Counts, clk ClockSnapshot) MetricsSnapshot {
	total := EffectiveTotal(session.TotalEnrolled, counts.RosterSize)
	rate := AttendanceRate(counts.Present, total)
	goal := session.GoalPercent
	return MetricsSnapshot{
		PresentCount:          counts.Present,
		AbsentCount:           total - counts.Present,
		TotalEnrolled:         total,
		AttendanceRatePercent: rate,
		ClassProgressPercent:  clk.ProgressPercent,
		ElapsedMinutes:        clk.ElapsedMinutes,
		ClassStatus:           ClassStatusFor(clk.ProgressPercent),
		AttendanceGoalPercent: goal,
		AttendanceGoalMet:     float64(rate) >= goal,
		Ended:                 clk.Ended,
		At:                    clk.At,
	}
}

// Standing buckets a cumulative attendance percentage for the stats view.
type Standing string

const (
	StandingExcellent Standing = "excellent"
	StandingGood      Standing = "good"
	StandingWarning   Standing = "warning"
	StandingCritical  Standing = "critical"
)

func StandingFor(percent float64) Standing {
	switch {
	case percent >= 90:
		return StandingExcellent
	case percent >= 80:
		return StandingGood
	case percent >= 60:
		return StandingWarning
	default:
		return StandingCritical
	}
}
