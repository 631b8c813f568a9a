package usecase_test

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"testing"
	"time"

	"faceclass/internal/modules/attendance/domain"
	"faceclass/internal/modules/attendance/dto"
	attendancein "faceclass/internal/modules/attendance/port/in"
	"faceclass/internal/modules/attendance/service"
	"faceclass/internal/modules/attendance/usecase"
	"faceclass/internal/platform/clock"
	apperrors "faceclass/internal/platform/errors"
	"faceclass/internal/platform/future"
)

type counterIDs struct {
	mu sync.Mutex
	n  int
}

func (g *counterIDs) New() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.n++
	return fmt.Sprintf("id-%d", g.n)
}

type echoResolver struct{}

func (echoResolver) Resolve(_ context.Context, c domain.ScanCandidate) (domain.Identity, error) {
	return domain.Identity{DisplayName: c.Identity}, nil
}

type fixedCandidates struct{ name string }

func (f fixedCandidates) Next(context.Context) (domain.ScanCandidate, error) {
	return domain.ScanCandidate{Identity: f.name}, nil
}

type fakeRegistry struct {
	mu        sync.Mutex
	ended     []domain.Projection
	triggered []domain.ReportKind
	history   []domain.HistoryEntry
	weekOf    []domain.Projection
	failWith  error
}

func (r *fakeRegistry) ListScheduleRules(context.Context) ([]domain.ScheduleRule, error) {
	return []domain.ScheduleRule{{Name: "Weekly report", CadenceDescription: "Every Monday at 08:00", Enabled: true}}, nil
}

func (r *fakeRegistry) TriggerReportGeneration(_ context.Context, kind domain.ReportKind, format domain.ReportFormat, p domain.Projection) *future.Future[domain.ReportHandle] {
	r.mu.Lock()
	r.triggered = append(r.triggered, kind)
	r.mu.Unlock()
	if r.failWith != nil {
		return future.Failed[domain.ReportHandle](r.failWith)
	}
	return future.Go(func() (domain.ReportHandle, error) {
		return domain.ReportHandle{ID: "rep-1", Kind: kind, Format: format, Path: fmt.Sprintf("/tmp/%s-%d.md", kind, p.Metrics.PresentCount)}, nil
	})
}

func (r *fakeRegistry) SessionEnded(_ context.Context, p domain.Projection) ([]domain.ReportHandle, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ended = append(r.ended, p)
	if p.Metrics.AttendanceRatePercent < 75 {
		return []domain.ReportHandle{{ID: "alert", Kind: domain.ReportAttendanceSummary, Format: domain.FormatMarkdown}}, nil
	}
	return nil, nil
}

func (r *fakeRegistry) AttendanceHistory(context.Context) ([]domain.HistoryEntry, error) {
	return r.history, nil
}

func (r *fakeRegistry) WeeklyOverview(_ context.Context, p domain.Projection) (domain.WeeklyOverview, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.weekOf = append(r.weekOf, p)
	start := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	return domain.WeeklyOverview{
		WeekStart:      start,
		Days:           []domain.DayRate{{Day: "Mon", Date: start, Sessions: 1, Present: p.Metrics.PresentCount, Enrolled: p.Metrics.TotalEnrolled, RatePercent: p.Metrics.AttendanceRatePercent}},
		AveragePercent: p.Metrics.AttendanceRatePercent,
	}, nil
}

func newUsecase(t *testing.T, registry *fakeRegistry) (attendancein.Usecase, *clock.Manual) {
	t.Helper()
	clk := clock.NewManual(time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC))
	engine := service.NewEngine(service.Options{
		Session: domain.Session{ClassLabel: "1TDSPB", PlannedDurationMinutes: 90, TotalEnrolled: 4, GoalPercent: 85},
	}, clk, &counterIDs{}, echoResolver{}, nil)
	if registry == nil {
		return usecase.NewInteractor(engine, fixedCandidates{name: "Maria Clara"}, nil, nil), clk
	}
	return usecase.NewInteractor(engine, fixedCandidates{name: "Maria Clara"}, registry, nil), clk
}

func TestMarkAbsentUnknownStudentIsNoop(t *testing.T) {
	t.Parallel()
	uc, _ := newUsecase(t, nil)
	ctx := context.Background()
	if _, err := uc.SubmitScan(ctx, dto.ScanInput{Identity: "Ana Silva"}); err != nil {
		t.Fatalf("scan: %v", err)
	}
	out, err := uc.MarkAbsent(ctx, "does-not-exist")
	if err != nil {
		t.Fatalf("unknown student must not error: %v", err)
	}
	if out.Known || out.Changed {
		t.Fatalf("unexpected output: %+v", out)
	}
	m, _ := uc.Metrics(ctx)
	if m.PresentCount != 1 {
		t.Fatalf("state changed: %+v", m)
	}
}

func TestMarkAbsentKnownStudent(t *testing.T) {
	t.Parallel()
	uc, _ := newUsecase(t, nil)
	ctx := context.Background()
	scan, err := uc.SubmitScan(ctx, dto.ScanInput{Identity: "Ana Silva"})
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	out, err := uc.MarkAbsent(ctx, scan.Record.StudentID)
	if err != nil || !out.Known || !out.Changed || out.Record.Status != "absent" || out.Record.ScanTimestamp != nil {
		t.Fatalf("unexpected mark absent: %+v %v", out, err)
	}
}

func TestStartRecognitionUsesCandidateSource(t *testing.T) {
	t.Parallel()
	uc, _ := newUsecase(t, nil)
	out, err := uc.StartRecognition(context.Background())
	if err != nil || !out.Accepted || out.Record.DisplayName != "Maria Clara" {
		t.Fatalf("unexpected recognition: %+v %v", out, err)
	}
	again, err := uc.StartRecognition(context.Background())
	if err != nil || !again.Duplicate {
		t.Fatalf("second recognition of the same student must be a duplicate: %+v %v", again, err)
	}
}

func TestRosterProjection(t *testing.T) {
	t.Parallel()
	uc, clk := newUsecase(t, nil)
	ctx := context.Background()
	if _, err := uc.Enroll(ctx, dto.EnrollInput{Name: "Diego Lima"}); err != nil {
		t.Fatalf("enroll: %v", err)
	}
	for _, name := range []string{"Ana Silva", "Bruno Costa"} {
		clk.Advance(time.Minute)
		if _, err := uc.SubmitScan(ctx, dto.ScanInput{Identity: name}); err != nil {
			t.Fatalf("scan %s: %v", name, err)
		}
	}
	full, err := uc.Roster(ctx, dto.RosterQuery{})
	if err != nil {
		t.Fatalf("roster: %v", err)
	}
	if len(full.Records) != 3 || full.Records[0].DisplayName != "Diego Lima" {
		t.Fatalf("full roster must keep enrollment order: %+v", full.Records)
	}
	present, _ := uc.Roster(ctx, dto.RosterQuery{PresentOnly: true})
	if len(present.Records) != 2 || present.Records[0].DisplayName != "Bruno Costa" {
		t.Fatalf("present roster must list the latest scan first: %+v", present.Records)
	}
	if present.Metrics.PresentCount != 2 || present.Metrics.TotalEnrolled != 4 || present.Metrics.AttendanceRatePercent != 50 {
		t.Fatalf("unexpected metrics: %+v", present.Metrics)
	}
	if present.Session.ClassLabel != "1TDSPB" {
		t.Fatalf("session missing from projection: %+v", present.Session)
	}
}

func TestTriggerReportResolvesFuture(t *testing.T) {
	t.Parallel()
	registry := &fakeRegistry{}
	uc, _ := newUsecase(t, registry)
	ctx := context.Background()
	if _, err := uc.SubmitScan(ctx, dto.ScanInput{Identity: "Ana Silva"}); err != nil {
		t.Fatalf("scan: %v", err)
	}
	pending, err := uc.TriggerReport(ctx, dto.ReportRequest{Kind: "attendance_summary", Format: "markdown"})
	if err != nil {
		t.Fatalf("trigger: %v", err)
	}
	waitCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	handle, err := pending.Wait(waitCtx)
	if err != nil {
		t.Fatalf("wait: %v", err)
	}
	if handle.Kind != "attendance_summary" || handle.Path != "/tmp/attendance_summary-1.md" {
		t.Fatalf("unexpected handle: %+v", handle)
	}

	if _, err := uc.TriggerReport(ctx, dto.ReportRequest{Kind: " ", Format: "excel"}); !errors.Is(err, apperrors.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for empty kind, got %v", err)
	}
}

func TestTriggerReportPropagatesFailure(t *testing.T) {
	t.Parallel()
	registry := &fakeRegistry{failWith: apperrors.ErrUnsupportedFormat}
	uc, _ := newUsecase(t, registry)
	pending, err := uc.TriggerReport(context.Background(), dto.ReportRequest{Kind: "attendance_summary", Format: "pdf"})
	if err != nil {
		t.Fatalf("trigger: %v", err)
	}
	if _, err := pending.Wait(context.Background()); !errors.Is(err, apperrors.ErrUnsupportedFormat) {
		t.Fatalf("expected ErrUnsupportedFormat, got %v", err)
	}
}

func TestEndSessionNotifiesRegistry(t *testing.T) {
	t.Parallel()
	registry := &fakeRegistry{}
	uc, _ := newUsecase(t, registry)
	ctx := context.Background()
	if _, err := uc.SubmitScan(ctx, dto.ScanInput{Identity: "Ana Silva"}); err != nil {
		t.Fatalf("scan: %v", err)
	}
	out, err := uc.EndSession(ctx)
	if err != nil {
		t.Fatalf("end: %v", err)
	}
	if !out.Metrics.Ended || len(out.Alerts) != 1 || out.Alerts[0].ID != "alert" {
		t.Fatalf("unexpected end output: %+v", out)
	}
	if len(registry.ended) != 1 || len(registry.ended[0].Records) != 1 {
		t.Fatalf("registry did not receive the final projection: %+v", registry.ended)
	}
	if _, err := uc.EndSession(ctx); !errors.Is(err, apperrors.ErrSessionEnded) {
		t.Fatalf("second end: expected ErrSessionEnded, got %v", err)
	}
	if _, err := uc.SubmitScan(ctx, dto.ScanInput{Identity: "Bruno Costa"}); !errors.Is(err, apperrors.ErrSessionEnded) {
		t.Fatalf("scan after end: expected ErrSessionEnded, got %v", err)
	}
}

func TestSubscribeDeliversAndCloses(t *testing.T) {
	t.Parallel()
	uc, _ := newUsecase(t, nil)
	events, cancel := uc.Subscribe(8)
	ctx := context.Background()
	if _, err := uc.SubmitScan(ctx, dto.ScanInput{Identity: "Ana Silva"}); err != nil {
		t.Fatalf("scan: %v", err)
	}
	if _, err := uc.SubmitScan(ctx, dto.ScanInput{Identity: "Ana Silva"}); err != nil {
		t.Fatalf("duplicate scan: %v", err)
	}
	first := <-events
	second := <-events
	if first.Type != "scan_accepted" || first.Record == nil || first.Record.DisplayName != "Ana Silva" || first.Metrics.PresentCount != 1 {
		t.Fatalf("unexpected first event: %+v", first)
	}
	if second.Type != "scan_duplicate" {
		t.Fatalf("unexpected second event: %+v", second)
	}
	cancel()
	cancel()
	if _, ok := <-events; ok {
		t.Fatalf("channel must be closed after cancel")
	}
	if _, err := uc.Tick(ctx); err != nil {
		t.Fatalf("tick after unsubscribe: %v", err)
	}
}

func TestSubscribeDropsWhenReaderIsSlow(t *testing.T) {
	t.Parallel()
	uc, _ := newUsecase(t, nil)
	events, cancel := uc.Subscribe(1)
	defer cancel()
	for i := 0; i < 5; i++ {
		if _, err := uc.Tick(context.Background()); err != nil {
			t.Fatalf("tick %d: %v", i, err)
		}
	}
	if got := len(events); got != 1 {
		t.Fatalf("expected a full buffer of one, got %d", got)
	}
}

func TestStandingsMergeHistoryWithCurrentSession(t *testing.T) {
	t.Parallel()
	registry := &fakeRegistry{history: []domain.HistoryEntry{
		{DisplayName: "Ana Silva", SessionsAttended: 9, SessionsTotal: 9},
		{DisplayName: "Diego Lima", SessionsAttended: 5, SessionsTotal: 9},
	}}
	uc, _ := newUsecase(t, registry)
	ctx := context.Background()
	if _, err := uc.SubmitScan(ctx, dto.ScanInput{Identity: "Ana Silva"}); err != nil {
		t.Fatalf("scan: %v", err)
	}
	if _, err := uc.Enroll(ctx, dto.EnrollInput{Name: "Diego Lima"}); err != nil {
		t.Fatalf("enroll: %v", err)
	}
	standings, err := uc.Standings(ctx)
	if err != nil {
		t.Fatalf("standings: %v", err)
	}
	got := map[string]dto.Standing{}
	for _, s := range standings {
		got[s.DisplayName] = s
	}
	if a := got["Ana Silva"]; a.SessionsTotal != 10 || a.Percent != 100 || a.Standing != "excellent" {
		t.Fatalf("unexpected standing for Ana: %+v", a)
	}
	if d := got["Diego Lima"]; d.SessionsTotal != 10 || d.Percent != 50 || d.Standing != "critical" {
		t.Fatalf("unexpected standing for Diego: %+v", d)
	}
}

func TestStandingsSortedByName(t *testing.T) {
	t.Parallel()
	registry := &fakeRegistry{history: []domain.HistoryEntry{
		{DisplayName: "Carla Souza", SessionsAttended: 3, SessionsTotal: 4},
	}}
	uc, _ := newUsecase(t, registry)
	ctx := context.Background()
	for _, name := range []string{"Ana Silva", "Bruno Costa"} {
		if _, err := uc.SubmitScan(ctx, dto.ScanInput{Identity: name}); err != nil {
			t.Fatalf("scan %s: %v", name, err)
		}
	}
	standings, err := uc.Standings(ctx)
	if err != nil {
		t.Fatalf("standings: %v", err)
	}
	var order []string
	for _, s := range standings {
		order = append(order, s.DisplayName)
	}
	want := []string{"Ana Silva", "Bruno Costa", "Carla Souza"}
	if !slices.Equal(order, want) {
		t.Fatalf("expected %v, got %v", want, order)
	}
}

func TestWeeklyPassesLiveProjection(t *testing.T) {
	t.Parallel()
	registry := &fakeRegistry{}
	uc, _ := newUsecase(t, registry)
	ctx := context.Background()
	if _, err := uc.SubmitScan(ctx, dto.ScanInput{Identity: "Ana Silva"}); err != nil {
		t.Fatalf("scan: %v", err)
	}
	week, err := uc.Weekly(ctx)
	if err != nil {
		t.Fatalf("weekly: %v", err)
	}
	if len(registry.weekOf) != 1 || registry.weekOf[0].Metrics.PresentCount != 1 || registry.weekOf[0].Session.ID == "" {
		t.Fatalf("live projection not forwarded: %+v", registry.weekOf)
	}
	if len(week.Days) != 1 || week.Days[0].Day != "Mon" || week.Days[0].RatePercent != 25 || week.AveragePercent != 25 {
		t.Fatalf("unexpected week: %+v", week)
	}
}

func TestWeeklyWithoutRegistryIsEmpty(t *testing.T) {
	t.Parallel()
	uc, _ := newUsecase(t, nil)
	week, err := uc.Weekly(context.Background())
	if err != nil || len(week.Days) != 0 {
		t.Fatalf("expected empty week: %+v %v", week, err)
	}
}

func TestScheduleRulesWithoutRegistry(t *testing.T) {
	t.Parallel()
	uc, _ := newUsecase(t, nil)
	rules, err := uc.ScheduleRules(context.Background())
	if err != nil || len(rules) != 0 {
		t.Fatalf("expected no rules without registry: %+v %v", rules, err)
	}
	if _, err := uc.TriggerReport(context.Background(), dto.ReportRequest{Kind: "attendance_summary", Format: "excel"}); err == nil {
		t.Fatalf("trigger without registry must fail")
	}
}
