package domain

import "time"

type Session struct {
	ID                     string
	ClassLabel             string
	Subject                string
	Instructor             string
	Room                   string
	StartTime              time.Time
	PlannedDurationMinutes float64
	TotalEnrolled          int
	GoalPercent            float64
}

// ElapsedMinutes never goes below zero, even for a clock behind StartTime.
func ElapsedMinutes(start, now time.Time) float64 {
	d := now.Sub(start)
	if d < 0 {
		return 0
	}
	return d.Minutes()
}

// ProgressPercent is elapsed/planned clamped to [0,100]. A session without a
// planned duration counts as complete.
func ProgressPercent(elapsedMinutes, plannedMinutes float64) float64 {
	if plannedMinutes <= 0 {
		return 100
	}
	p := elapsedMinutes / plannedMinutes * 100
	switch {
	case p < 0:
		return 0
	case p > 100:
		return 100
	default:
		return p
	}
}

// ClockSnapshot is what the metrics projection needs from the session clock.
type ClockSnapshot struct {
	At              time.Time
	ElapsedMinutes  float64
	ProgressPercent float64
	Ended           bool
}
