package service

import "faceclass/internal/modules/attendance/domain"

// MetricsEngine projects roster counts and the clock into a snapshot. It
// stores nothing.
type MetricsEngine struct {
	session domain.Session
	roster  *RosterStore
	clock   *SessionClock
}

func NewMetricsEngine(session domain.Session, roster *RosterStore, clock *SessionClock) *MetricsEngine {
	return &MetricsEngine{session: session, roster: roster, clock: clock}
}

func (m *MetricsEngine) Snapshot() domain.MetricsSnapshot {
	return domain.ComputeMetrics(m.session, m.roster.Counts(), m.clock.Snapshot())
}

func (m *MetricsEngine) Projection(filter ListFilter) domain.Projection {
	records, counts := m.roster.snapshot(filter)
	return domain.Projection{
		Session: m.session,
		Records: records,
		Metrics: domain.ComputeMetrics(m.session, counts, m.clock.Snapshot()),
	}
}
