package domain

import (
	"strings"
	"time"
)

type Status string

const (
	StatusPresent Status = "present"
	StatusAbsent  Status = "absent"
)

func (s Status) Valid() bool {
	return s == StatusPresent || s == StatusAbsent
}

type Student struct {
	ID          string
	DisplayName string
}

// AttendanceRecord is the per-student state for the active session.
// Status is present exactly when ScanTimestamp is set.
type AttendanceRecord struct {
	StudentID     string
	DisplayName   string
	Status        Status
	ScanTimestamp *time.Time
	AvatarTag     string
}

func (r AttendanceRecord) Present() bool {
	return r.Status == StatusPresent
}

func (r AttendanceRecord) Consistent() bool {
	return r.Present() == (r.ScanTimestamp != nil)
}

// clone detaches the timestamp pointer so callers never alias roster state.
func (r AttendanceRecord) clone() AttendanceRecord {
	if r.ScanTimestamp != nil {
		ts := *r.ScanTimestamp
		r.ScanTimestamp = &ts
	}
	return r
}

// ScanCandidate is a raw recognition event as produced by a device or the
// simulated scanner. A zero Timestamp means "now".
type ScanCandidate struct {
	Identity  string
	Timestamp time.Time
}

func (c ScanCandidate) Normalized() (ScanCandidate, bool) {
	c.Identity = strings.TrimSpace(c.Identity)
	return c, c.Identity != ""
}

// Identity is the result of resolving a candidate. StudentID is only set
// when the resolver knows a stable identifier; otherwise the roster matches
// on DisplayName.
type Identity struct {
	StudentID   string
	DisplayName string
	AvatarTag   string
	Confidence  float64
}

type ScanOutcome struct {
	Accepted  bool
	Duplicate bool
	Busy      bool
	Record    AttendanceRecord
}
