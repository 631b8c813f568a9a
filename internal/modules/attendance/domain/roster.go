package domain

import (
	"fmt"
	"slices"
	"time"

	apperrors "faceclass/internal/platform/errors"
)

// Roster holds the attendance records of one session. It is not safe for
// concurrent use; the service layer serializes access.
type Roster struct {
	records []AttendanceRecord
	byID    map[string]int
	byName  map[string]int
	scanSeq map[string]uint64
	seq     uint64
}

func NewRoster() *Roster {
	return &Roster{
		byID:    map[string]int{},
		byName:  map[string]int{},
		scanSeq: map[string]uint64{},
	}
}

type UpsertResult struct {
	Record AttendanceRecord
	// Created is set when the identity was not on the roster before.
	Created bool
	// Transitioned is false for a duplicate scan of a present student.
	Transitioned bool
}

// Enroll adds an absent record for a student that has not scanned yet.
// Re-enrolling an existing name returns the current record unchanged.
func (r *Roster) Enroll(student Student, avatar string) (AttendanceRecord, bool, error) {
	if student.ID == "" || student.DisplayName == "" {
		return AttendanceRecord{}, false, fmt.Errorf("%w: student id and name are required", apperrors.ErrInvalidInput)
	}
	if idx, ok := r.lookup(Identity{StudentID: student.ID, DisplayName: student.DisplayName}); ok {
		return r.records[idx].clone(), false, nil
	}
	rec := AttendanceRecord{
		StudentID:   student.ID,
		DisplayName: student.DisplayName,
		Status:      StatusAbsent,
		AvatarTag:   avatar,
	}
	r.insert(rec)
	return rec, true, nil
}

// UpsertScan applies one scan. The first scan of a session wins; later scans
// of a present student are duplicates and leave the record untouched.
func (r *Roster) UpsertScan(identity Identity, at time.Time, newID func() string) UpsertResult {
	idx, ok := r.lookup(identity)
	if !ok {
		id := identity.StudentID
		if id == "" {
			id = newID()
		}
		ts := at
		rec := AttendanceRecord{
			StudentID:     id,
			DisplayName:   identity.DisplayName,
			Status:        StatusPresent,
			ScanTimestamp: &ts,
			AvatarTag:     identity.AvatarTag,
		}
		r.insert(rec)
		r.bump(id)
		return UpsertResult{Record: rec.clone(), Created: true, Transitioned: true}
	}

	rec := &r.records[idx]
	if rec.Present() {
		return UpsertResult{Record: rec.clone()}
	}
	ts := at
	rec.Status = StatusPresent
	rec.ScanTimestamp = &ts
	if rec.AvatarTag == "" {
		rec.AvatarTag = identity.AvatarTag
	}
	r.bump(rec.StudentID)
	return UpsertResult{Record: rec.clone(), Transitioned: true}
}

// MarkAbsent clears the scan of studentID. The bool reports whether the
// record actually changed.
func (r *Roster) MarkAbsent(studentID string) (AttendanceRecord, bool, error) {
	idx, ok := r.byID[studentID]
	if !ok {
		return AttendanceRecord{}, false, fmt.Errorf("%w: %s", apperrors.ErrUnknownStudent, studentID)
	}
	rec := &r.records[idx]
	if !rec.Present() {
		return rec.clone(), false, nil
	}
	rec.Status = StatusAbsent
	rec.ScanTimestamp = nil
	delete(r.scanSeq, rec.StudentID)
	return rec.clone(), true, nil
}

func (r *Roster) Get(studentID string) (AttendanceRecord, bool) {
	idx, ok := r.byID[studentID]
	if !ok {
		return AttendanceRecord{}, false
	}
	return r.records[idx].clone(), true
}

// Records returns a detached copy. The full listing keeps enrollment order;
// the present-only listing puts the most recent scan first.
func (r *Roster) Records(presentOnly bool) []AttendanceRecord {
	out := make([]AttendanceRecord, 0, len(r.records))
	for _, rec := range r.records {
		if presentOnly && !rec.Present() {
			continue
		}
		out = append(out, rec.clone())
	}
	if presentOnly {
		slices.SortStableFunc(out, func(a, b AttendanceRecord) int {
			sa, sb := r.scanSeq[a.StudentID], r.scanSeq[b.StudentID]
			switch {
			case sa > sb:
				return -1
			case sa < sb:
				return 1
			default:
				return 0
			}
		})
	}
	return out
}

func (r *Roster) Count(status Status) int {
	n := 0
	for _, rec := range r.records {
		if rec.Status == status {
			n++
		}
	}
	return n
}

func (r *Roster) Len() int {
	return len(r.records)
}

func (r *Roster) lookup(identity Identity) (int, bool) {
	if identity.StudentID != "" {
		if idx, ok := r.byID[identity.StudentID]; ok {
			return idx, true
		}
	}
	idx, ok := r.byName[identity.DisplayName]
	return idx, ok
}

func (r *Roster) insert(rec AttendanceRecord) {
	r.records = append(r.records, rec)
	idx := len(r.records) - 1
	r.byID[rec.StudentID] = idx
	r.byName[rec.DisplayName] = idx
}

func (r *Roster) bump(studentID string) {
	r.seq++
	r.scanSeq[studentID] = r.seq
}
