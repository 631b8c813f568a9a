package service

import (
	"cmp"
	"fmt"
	"slices"
	"time"

	hclog "github.com/hashicorp/go-hclog"

	"faceclass/internal/modules/attendance/domain"
	attendanceout "faceclass/internal/modules/attendance/port/out"
	"faceclass/internal/platform/clock"
	"faceclass/internal/platform/id"
	"faceclass/internal/platform/logging"
)

type Options struct {
	Session      domain.Session
	TickInterval time.Duration
}

// SeedRecord pre-populates the roster. A nil ScannedAt enrolls the student
// as absent.
type SeedRecord struct {
	Name      string
	Avatar    string
	ScannedAt *time.Time
}

// Engine wires the roster store, session clock, metrics projection and scan
// pipeline around one timeline. There is one engine per class session.
type Engine struct {
	session  domain.Session
	timeline *Timeline
	logger   hclog.Logger

	Roster   *RosterStore
	Clock    *SessionClock
	Metrics  *MetricsEngine
	Pipeline *ScanPipeline
}

func NewEngine(opts Options, clk clock.Clock, idGen id.Generator, resolver attendanceout.IdentityResolver, logger hclog.Logger) *Engine {
	logger = logging.OrDiscard(logger)
	session := opts.Session
	if session.ID == "" {
		session.ID = idGen.New()
	}
	if session.StartTime.IsZero() {
		session.StartTime = clk.Now()
	}
	if session.GoalPercent == 0 {
		session.GoalPercent = domain.DefaultGoalPercent
	}

	timeline := NewTimeline()
	sessionClock := NewSessionClock(clk, session, opts.TickInterval, timeline, logger.Named("clock"))
	roster := NewRosterStore(timeline, idGen, sessionClock.Now)
	metrics := NewMetricsEngine(session, roster, sessionClock)
	timeline.project = metrics.Snapshot

	logger.Info("session started", "session", session.ID, "class", session.ClassLabel, "enrolled", session.TotalEnrolled, "planned_min", session.PlannedDurationMinutes)
	return &Engine{
		session:  session,
		timeline: timeline,
		logger:   logger,
		Roster:   roster,
		Clock:    sessionClock,
		Metrics:  metrics,
		Pipeline: NewScanPipeline(resolver, roster, sessionClock, logger.Named("pipeline")),
	}
}

func (e *Engine) Session() domain.Session {
	return e.session
}

func (e *Engine) Subscribe(notifier attendanceout.Notifier) func() {
	return e.timeline.Subscribe(notifier)
}

func (e *Engine) Projection(filter ListFilter) domain.Projection {
	return e.Metrics.Projection(filter)
}

// Seed enrolls every seed in order, then replays the recorded scans oldest
// first so the present listing shows the latest arrival on top.
func (e *Engine) Seed(seeds []SeedRecord) error {
	for _, seed := range seeds {
		if _, _, err := e.Roster.Enroll(seed.Name, seed.Avatar); err != nil {
			return fmt.Errorf("enroll %q: %w", seed.Name, err)
		}
	}
	scanned := slices.DeleteFunc(slices.Clone(seeds), func(s SeedRecord) bool { return s.ScannedAt == nil })
	slices.SortStableFunc(scanned, func(a, b SeedRecord) int { return cmp.Compare(a.ScannedAt.UnixNano(), b.ScannedAt.UnixNano()) })
	for _, seed := range scanned {
		if _, err := e.Roster.UpsertScan(domain.Identity{DisplayName: seed.Name, AvatarTag: seed.Avatar}, *seed.ScannedAt); err != nil {
			return fmt.Errorf("seed scan %q: %w", seed.Name, err)
		}
	}
	return nil
}

// End freezes the session and returns the final metrics.
func (e *Engine) End() (domain.MetricsSnapshot, error) {
	if _, err := e.Clock.End(); err != nil {
		return domain.MetricsSnapshot{}, err
	}
	return e.Metrics.Snapshot(), nil
}
