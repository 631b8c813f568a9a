package service

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"time"

	hclog "github.com/hashicorp/go-hclog"

	"faceclass/internal/modules/report/domain"
	reportout "faceclass/internal/modules/report/port/out"
	"faceclass/internal/platform/clock"
	"faceclass/internal/platform/id"
	"faceclass/internal/platform/logging"
	"faceclass/internal/platform/slug"
)

type ReportService struct {
	clock   clock.Clock
	idGen   id.Generator
	rules   reportout.RuleStore
	writers map[domain.Format]reportout.Writer
	archive reportout.Archive
	dir     string
	logger  hclog.Logger
}

func NewReportService(clock clock.Clock, idGen id.Generator, rules reportout.RuleStore, archive reportout.Archive, dir string, logger hclog.Logger, writers ...reportout.Writer) *ReportService {
	byFormat := make(map[domain.Format]reportout.Writer, len(writers))
	for _, w := range writers {
		byFormat[w.Format()] = w
	}
	return &ReportService{
		clock:   clock,
		idGen:   idGen,
		rules:   rules,
		writers: byFormat,
		archive: archive,
		dir:     dir,
		logger:  logging.OrDiscard(logger),
	}
}

func (s *ReportService) ListRules(ctx context.Context) ([]domain.Rule, error) {
	rules, err := s.rules.Load(ctx)
	if err != nil {
		return nil, err
	}
	seen := map[string]struct{}{}
	for _, rule := range rules {
		if err := rule.Validate(); err != nil {
			return nil, err
		}
		if _, ok := seen[rule.Name]; ok {
			return nil, fmt.Errorf("duplicate rule name: %s", rule.Name)
		}
		seen[rule.Name] = struct{}{}
	}
	return rules, nil
}

// Generate renders kind in format from snapshot into the reports directory
// and records it in the archive. ruleName is empty for manual reports.
func (s *ReportService) Generate(ctx context.Context, kind domain.Kind, format domain.Format, snapshot domain.Snapshot, ruleName string) (domain.Handle, error) {
	if err := kind.Validate(); err != nil {
		return domain.Handle{}, err
	}
	if err := format.Validate(); err != nil {
		return domain.Handle{}, err
	}
	writer, ok := s.writers[format]
	if !ok {
		return domain.Handle{}, fmt.Errorf("no writer registered for %s", format)
	}
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return domain.Handle{}, fmt.Errorf("create reports dir: %w", err)
	}
	if kind == domain.KindWeeklySummary {
		week, err := s.Weekly(ctx, snapshot)
		if err != nil {
			return domain.Handle{}, err
		}
		snapshot.Week = week
	}

	now := s.clock.Now()
	handle := domain.Handle{
		ID:          s.idGen.New(),
		Kind:        kind,
		Format:      format,
		Rule:        ruleName,
		ClassLabel:  snapshot.ClassLabel,
		GeneratedAt: now,
	}
	name := fmt.Sprintf("%s-%s-%s-%s.%s", now.Format("20060102-150405"), slug.Make(string(kind)), slug.Make(snapshot.ClassLabel), shortID(handle.ID), writer.Extension())
	handle.Path = filepath.Join(s.dir, name)

	if err := s.writeFile(handle.Path, writer, kind, snapshot); err != nil {
		return domain.Handle{}, err
	}
	if err := s.archive.Record(ctx, handle); err != nil {
		return domain.Handle{}, err
	}
	s.logger.Info("report generated", "kind", kind, "format", format, "path", handle.Path, "rule", ruleName)
	return handle, nil
}

func (s *ReportService) Recent(ctx context.Context, limit int) ([]domain.Handle, error) {
	if limit <= 0 {
		limit = 10
	}
	return s.archive.Recent(ctx, limit)
}

// SessionEnded archives the final roster and fires every enabled threshold
// rule the final rate falls under.
func (s *ReportService) SessionEnded(ctx context.Context, snapshot domain.Snapshot) ([]domain.Handle, error) {
	if err := s.archive.RecordSession(ctx, snapshot); err != nil {
		return nil, err
	}
	rules, err := s.ListRules(ctx)
	if err != nil {
		return nil, err
	}
	var handles []domain.Handle
	for _, rule := range rules {
		if !rule.Fires(snapshot.RatePercent) {
			continue
		}
		s.logger.Warn("attendance below threshold", "rule", rule.Name, "rate", snapshot.RatePercent, "threshold", rule.Threshold)
		handle, err := s.Generate(ctx, rule.Kind, rule.Format, snapshot, rule.Name)
		if err != nil {
			return handles, fmt.Errorf("rule %s: %w", rule.Name, err)
		}
		handles = append(handles, handle)
	}
	return handles, nil
}

func (s *ReportService) History(ctx context.Context) ([]domain.HistoryEntry, error) {
	return s.archive.History(ctx)
}

// Weekly aggregates the archived sessions of the week holding live.At. The
// live session counts as one more session unless it is already archived.
// A zero live.At means now, and an empty live.SessionID means no live session.
func (s *ReportService) Weekly(ctx context.Context, live domain.Snapshot) (domain.WeeklyOverview, error) {
	at := live.At
	if at.IsZero() {
		at = s.clock.Now()
	}
	start := domain.WeekStart(at)
	samples, err := s.archive.Sessions(ctx, start, start.AddDate(0, 0, 7))
	if err != nil {
		return domain.WeeklyOverview{}, err
	}
	if live.SessionID != "" && live.Total > 0 && !slices.ContainsFunc(samples, func(x domain.SessionSample) bool { return x.SessionID == live.SessionID }) {
		samples = append(samples, domain.SessionSample{SessionID: live.SessionID, EndedAt: at, Present: live.Present, Enrolled: live.Total})
	}
	return domain.BuildWeeklyOverview(start, samples), nil
}

func (s *ReportService) Now() time.Time {
	return s.clock.Now()
}

func (s *ReportService) writeFile(path string, writer reportout.Writer, kind domain.Kind, snapshot domain.Snapshot) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create report file: %w", err)
	}
	if err := writer.Write(f, kind, snapshot); err != nil {
		_ = f.Close()
		_ = os.Remove(path)
		return fmt.Errorf("write %s report: %w", writer.Format(), err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close report file: %w", err)
	}
	return nil
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
