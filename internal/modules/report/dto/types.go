package dto

import "time"

type Rule struct {
	Name               string
	Trigger            string
	Kind               string
	Format             string
	CadenceDescription string
	Enabled            bool
	NextRun            time.Time
}

type Row struct {
	StudentID   string
	DisplayName string
	Status      string
	ScannedAt   *time.Time
}

type Snapshot struct {
	SessionID              string
	ClassLabel             string
	Subject                string
	Instructor             string
	Room                   string
	StartTime              time.Time
	PlannedDurationMinutes float64
	Rows                   []Row
	Present                int
	Absent                 int
	Total                  int
	RatePercent            int
	ProgressPercent        float64
	ElapsedMinutes         float64
	ClassStatus            string
	GoalPercent            float64
	GoalMet                bool
	At                     time.Time
}

type GenerateInput struct {
	Kind     string
	Format   string
	Snapshot Snapshot
}

type Report struct {
	ID          string
	Kind        string
	Format      string
	Path        string
	Rule        string
	ClassLabel  string
	GeneratedAt time.Time
}

type HistoryEntry struct {
	DisplayName      string
	SessionsAttended int
	SessionsTotal    int
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
