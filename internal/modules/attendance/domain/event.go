package domain

import "time"

type EventType string

const (
	EventScanAccepted    EventType = "scan_accepted"
	EventScanDuplicate   EventType = "scan_duplicate"
	EventTick            EventType = "tick"
	EventAbsenceMarked   EventType = "absence_marked"
	EventStudentEnrolled EventType = "student_enrolled"
	EventSessionEnded    EventType = "session_ended"
)

// Event is delivered to observers after the change it describes has been
// applied. Metrics is the projection at that point.
type Event struct {
	Type    EventType
	At      time.Time
	Record  *AttendanceRecord
	Metrics MetricsSnapshot
}

type Projection struct {
	Session Session
	Records []AttendanceRecord
	Metrics MetricsSnapshot
}
