package domain

import (
	"fmt"
	"time"

	apperrors "faceclass/internal/platform/errors"
)

type Kind string

const (
	KindAttendanceSummary Kind = "attendance_summary"
	KindIndividual        Kind = "individual_report"
	KindClassAnalytics    Kind = "class_analytics"
	KindWeeklySummary     Kind = "weekly_summary"
)

func (k Kind) Validate() error {
	switch k {
	case KindAttendanceSummary, KindIndividual, KindClassAnalytics, KindWeeklySummary:
		return nil
	default:
		return fmt.Errorf("%w: unknown report kind %q", apperrors.ErrInvalidInput, k)
	}
}

func (k Kind) Title() string {
	switch k {
	case KindAttendanceSummary:
		return "Attendance Summary"
	case KindIndividual:
		return "Individual Report"
	case KindClassAnalytics:
		return "Class Analytics"
	case KindWeeklySummary:
		return "Weekly Summary"
	default:
		return string(k)
	}
}

type Format string

const (
	FormatExcel    Format = "excel"
	FormatMarkdown Format = "markdown"
	FormatPDF      Format = "pdf"
	FormatEmail    Format = "email"
)

// Validate accepts only formats a writer exists for. pdf and email are known
// formats that cannot be rendered yet.
func (f Format) Validate() error {
	switch f {
	case FormatExcel, FormatMarkdown:
		return nil
	case FormatPDF, FormatEmail:
		return fmt.Errorf("%w: %s", apperrors.ErrUnsupportedFormat, f)
	default:
		return fmt.Errorf("%w: unknown report format %q", apperrors.ErrInvalidInput, f)
	}
}

type Handle struct {
	ID          string
	Kind        Kind
	Format      Format
	Path        string
	Rule        string
	ClassLabel  string
	GeneratedAt time.Time
}

type Row struct {
	StudentID   string
	DisplayName string
	Status      string
	ScannedAt   *time.Time
}

func (r Row) Present() bool {
	return r.Status == "present"
}

// Snapshot is the roster and metrics a report is rendered from.
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

	// Week is filled in by the service for weekly reports.
	Week WeeklyOverview
}

type HistoryEntry struct {
	DisplayName      string
	SessionsAttended int
	SessionsTotal    int
}
