package dto

import "time"

type ScanInput struct {
	Identity  string
	Timestamp time.Time
}

type Record struct {
	StudentID     string
	DisplayName   string
	Status        string
	ScanTimestamp *time.Time
	AvatarTag     string
}

type ScanOutput struct {
	Accepted  bool
	Duplicate bool
	Busy      bool
	Record    Record
}

type MarkAbsentOutput struct {
	Record  Record
	Changed bool
	Known   bool
}

type EnrollInput struct {
	Name   string
	Avatar string
}

type RosterQuery struct {
	PresentOnly bool
}

type Session struct {
	ID                     string
	ClassLabel             string
	Subject                string
	Instructor             string
	Room                   string
	StartTime              time.Time
	PlannedDurationMinutes float64
	TotalEnrolled          int
}

type Metrics struct {
	PresentCount          int
	AbsentCount           int
	TotalEnrolled         int
	AttendanceRatePercent int
	ClassProgressPercent  float64
	ElapsedMinutes        float64
	ClassStatus           string
	AttendanceGoalPercent float64
	AttendanceGoalMet     bool
	Ended                 bool
	At                    time.Time
}

type RosterOutput struct {
	Session Session
	Records []Record
	Metrics Metrics
}

type Event struct {
	Type    string
	At      time.Time
	Record  *Record
	Metrics Metrics
}

type ScheduleRule struct {
	Name               string
	CadenceDescription string
	Enabled            bool
	NextRun            time.Time
}

type ReportRequest struct {
	Kind   string
	Format string
}

type ReportHandle struct {
	ID          string
	Kind        string
	Format      string
	Path        string
	GeneratedAt time.Time
}

type EndSessionOutput struct {
	Metrics Metrics
	Alerts  []ReportHandle
}

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

type Standing struct {
	DisplayName      string
	SessionsAttended int
	SessionsTotal    int
	Percent          float64
	Standing         string
}
