package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	hclog "github.com/hashicorp/go-hclog"
	"github.com/robfig/cron/v3"

	"faceclass/internal/modules/report/domain"
	reportout "faceclass/internal/modules/report/port/out"
	"faceclass/internal/platform/logging"
)

const jobTimeout = 2 * time.Minute

// Scheduler runs the enabled cron rules against the live snapshot. A job
// still running when its next slot arrives is skipped, not stacked.
type Scheduler struct {
	svc    *ReportService
	source reportout.SnapshotSource
	logger hclog.Logger

	mu      sync.Mutex
	cron    *cron.Cron
	entries map[string]cron.EntryID
}

func NewScheduler(svc *ReportService, source reportout.SnapshotSource, logger hclog.Logger) *Scheduler {
	return &Scheduler{svc: svc, source: source, logger: logging.OrDiscard(logger), entries: map[string]cron.EntryID{}}
}

// Start registers every enabled cron rule and starts the cron loop. It
// returns the number of scheduled rules.
func (s *Scheduler) Start(ctx context.Context) (int, error) {
	rules, err := s.svc.ListRules(ctx)
	if err != nil {
		return 0, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cron != nil {
		return 0, fmt.Errorf("scheduler already started")
	}
	c := cron.New(cron.WithChain(cron.SkipIfStillRunning(cronLogger{s.logger})), cron.WithLogger(cronLogger{s.logger}))
	for _, rule := range rules {
		if !rule.Enabled || rule.Trigger != domain.TriggerCron {
			continue
		}
		schedule, err := rule.Schedule()
		if err != nil {
			return 0, err
		}
		s.entries[rule.Name] = c.Schedule(schedule, cron.FuncJob(func() {
			if _, err := s.Run(context.Background(), rule); err != nil {
				s.logger.Error("scheduled report failed", "rule", rule.Name, "error", err)
			}
		}))
	}
	s.cron = c
	c.Start()
	s.logger.Info("report scheduler started", "rules", len(s.entries))
	return len(s.entries), nil
}

// Stop waits for running jobs or for ctx, whichever comes first.
func (s *Scheduler) Stop(ctx context.Context) {
	s.mu.Lock()
	c := s.cron
	s.cron = nil
	s.mu.Unlock()
	if c == nil {
		return
	}
	select {
	case <-c.Stop().Done():
	case <-ctx.Done():
	}
}

// Run executes one rule immediately.
func (s *Scheduler) Run(ctx context.Context, rule domain.Rule) (domain.Handle, error) {
	ctx, cancel := context.WithTimeout(ctx, jobTimeout)
	defer cancel()
	snapshot, err := s.source.Snapshot(ctx)
	if err != nil {
		return domain.Handle{}, fmt.Errorf("snapshot: %w", err)
	}
	return s.svc.Generate(ctx, rule.Kind, rule.Format, snapshot, rule.Name)
}

func (s *Scheduler) NextRuns() map[string]time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]time.Time, len(s.entries))
	if s.cron == nil {
		return out
	}
	for name, id := range s.entries {
		out[name] = s.cron.Entry(id).Next
	}
	return out
}

// cronLogger adapts hclog to the cron.Logger interface.
type cronLogger struct {
	logger hclog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Debug(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.logger.Error(msg, append(keysAndValues, "error", err)...)
}
