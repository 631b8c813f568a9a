package service

import (
	"fmt"
	"iter"
	"slices"
	"strings"
	"sync"
	"time"

	"faceclass/internal/modules/attendance/domain"
	apperrors "faceclass/internal/platform/errors"
	"faceclass/internal/platform/id"
)

type ListFilter struct {
	PresentOnly bool
}

// RosterStore is the single owner of roster state. Writes go through the
// timeline; reads take a snapshot and never block a step for long.
type RosterStore struct {
	mu       sync.RWMutex
	roster   *domain.Roster
	timeline *Timeline
	idGen    id.Generator
	now      func() time.Time
}

func NewRosterStore(timeline *Timeline, idGen id.Generator, now func() time.Time) *RosterStore {
	return &RosterStore{roster: domain.NewRoster(), timeline: timeline, idGen: idGen, now: now}
}

// UpsertScan records a resolved scan. A duplicate is reported through the
// result and a scan_duplicate event, never as an error.
func (s *RosterStore) UpsertScan(identity domain.Identity, at time.Time) (domain.UpsertResult, error) {
	identity.DisplayName = strings.TrimSpace(identity.DisplayName)
	if identity.DisplayName == "" && identity.StudentID == "" {
		return domain.UpsertResult{}, apperrors.ErrInvalidCandidate
	}
	var result domain.UpsertResult
	err := s.timeline.apply(func() (*domain.Event, error) {
		s.mu.Lock()
		result = s.roster.UpsertScan(identity, at, s.idGen.New)
		s.mu.Unlock()
		eventType := domain.EventScanAccepted
		if !result.Transitioned {
			eventType = domain.EventScanDuplicate
		}
		record := result.Record
		return &domain.Event{Type: eventType, At: at, Record: &record}, nil
	})
	return result, err
}

func (s *RosterStore) MarkAbsent(studentID string) (domain.AttendanceRecord, bool, error) {
	var (
		record  domain.AttendanceRecord
		changed bool
	)
	err := s.timeline.apply(func() (*domain.Event, error) {
		s.mu.Lock()
		rec, ok, err := s.roster.MarkAbsent(studentID)
		s.mu.Unlock()
		if err != nil {
			return nil, err
		}
		record, changed = rec, ok
		if !ok {
			return nil, nil
		}
		return &domain.Event{Type: domain.EventAbsenceMarked, At: s.now(), Record: &rec}, nil
	})
	return record, changed, err
}

func (s *RosterStore) Enroll(name, avatar string) (domain.AttendanceRecord, bool, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return domain.AttendanceRecord{}, false, fmt.Errorf("%w: student name is required", apperrors.ErrInvalidInput)
	}
	var (
		record  domain.AttendanceRecord
		created bool
	)
	err := s.timeline.apply(func() (*domain.Event, error) {
		s.mu.Lock()
		rec, ok, err := s.roster.Enroll(domain.Student{ID: s.idGen.New(), DisplayName: name}, avatar)
		s.mu.Unlock()
		if err != nil {
			return nil, err
		}
		record, created = rec, ok
		if !ok {
			return nil, nil
		}
		return &domain.Event{Type: domain.EventStudentEnrolled, At: s.now(), Record: &rec}, nil
	})
	return record, created, err
}

// List yields a snapshot taken at call time, in listing order.
func (s *RosterStore) List(filter ListFilter) iter.Seq[domain.AttendanceRecord] {
	s.mu.RLock()
	records := s.roster.Records(filter.PresentOnly)
	s.mu.RUnlock()
	return slices.Values(records)
}

func (s *RosterStore) Get(studentID string) (domain.AttendanceRecord, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.roster.Get(studentID)
}

func (s *RosterStore) Count(status domain.Status) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.roster.Count(status)
}

func (s *RosterStore) Counts() domain.Counts {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return domain.Counts{Present: s.roster.Count(domain.StatusPresent), RosterSize: s.roster.Len()}
}

// snapshot reads records and counts under one lock so a projection is never
// torn between two steps.
func (s *RosterStore) snapshot(filter ListFilter) ([]domain.AttendanceRecord, domain.Counts) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.roster.Records(filter.PresentOnly), domain.Counts{Present: s.roster.Count(domain.StatusPresent), RosterSize: s.roster.Len()}
}
