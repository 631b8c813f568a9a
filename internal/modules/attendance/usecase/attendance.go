package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	hclog "github.com/hashicorp/go-hclog"

	"faceclass/internal/modules/attendance/domain"
	"faceclass/internal/modules/attendance/dto"
	attendancein "faceclass/internal/modules/attendance/port/in"
	attendanceout "faceclass/internal/modules/attendance/port/out"
	"faceclass/internal/modules/attendance/service"
	apperrors "faceclass/internal/platform/errors"
	"faceclass/internal/platform/future"
	"faceclass/internal/platform/logging"
)

type Interactor struct {
	engine     *service.Engine
	candidates attendanceout.CandidateSource
	reports    attendanceout.ReportRegistry
	logger     hclog.Logger
}

func NewInteractor(engine *service.Engine, candidates attendanceout.CandidateSource, reports attendanceout.ReportRegistry, logger hclog.Logger) attendancein.Usecase {
	return &Interactor{engine: engine, candidates: candidates, reports: reports, logger: logging.OrDiscard(logger)}
}

func (i *Interactor) SubmitScan(ctx context.Context, input dto.ScanInput) (dto.ScanOutput, error) {
	outcome, err := i.engine.Pipeline.Submit(ctx, domain.ScanCandidate{Identity: input.Identity, Timestamp: input.Timestamp})
	return toOutcomeDTO(outcome), err
}

// StartRecognition is the "scan" button: the candidate comes from the
// configured source rather than from the caller.
func (i *Interactor) StartRecognition(ctx context.Context) (dto.ScanOutput, error) {
	if i.candidates == nil {
		return dto.ScanOutput{}, fmt.Errorf("candidate source is not configured")
	}
	if i.engine.Pipeline.Busy() {
		return dto.ScanOutput{Busy: true}, apperrors.ErrPipelineBusy
	}
	candidate, err := i.candidates.Next(ctx)
	if err != nil {
		return dto.ScanOutput{}, fmt.Errorf("next candidate: %w", err)
	}
	return i.SubmitScan(ctx, dto.ScanInput{Identity: candidate.Identity, Timestamp: candidate.Timestamp})
}

// MarkAbsent on an unknown student is a no-op, reported through Known.
func (i *Interactor) MarkAbsent(_ context.Context, studentID string) (dto.MarkAbsentOutput, error) {
	record, changed, err := i.engine.Roster.MarkAbsent(studentID)
	if errors.Is(err, apperrors.ErrUnknownStudent) {
		i.logger.Debug("mark absent ignored", "student", studentID)
		return dto.MarkAbsentOutput{}, nil
	}
	if err != nil {
		return dto.MarkAbsentOutput{}, err
	}
	return dto.MarkAbsentOutput{Record: toRecordDTO(record), Changed: changed, Known: true}, nil
}

func (i *Interactor) Enroll(_ context.Context, input dto.EnrollInput) (dto.Record, error) {
	record, _, err := i.engine.Roster.Enroll(input.Name, input.Avatar)
	if err != nil {
		return dto.Record{}, err
	}
	return toRecordDTO(record), nil
}

func (i *Interactor) Roster(_ context.Context, query dto.RosterQuery) (dto.RosterOutput, error) {
	projection := i.engine.Projection(service.ListFilter{PresentOnly: query.PresentOnly})
	records := make([]dto.Record, 0, len(projection.Records))
	for _, rec := range projection.Records {
		records = append(records, toRecordDTO(rec))
	}
	return dto.RosterOutput{
		Session: toSessionDTO(projection.Session),
		Records: records,
		Metrics: toMetricsDTO(projection.Metrics),
	}, nil
}

func (i *Interactor) Metrics(_ context.Context) (dto.Metrics, error) {
	return toMetricsDTO(i.engine.Metrics.Snapshot()), nil
}

func (i *Interactor) Tick(_ context.Context) (dto.Metrics, error) {
	if err := i.engine.Clock.Tick(); err != nil {
		return dto.Metrics{}, err
	}
	return toMetricsDTO(i.engine.Metrics.Snapshot()), nil
}

func (i *Interactor) RunClock(ctx context.Context) error {
	return i.engine.Clock.Run(ctx)
}

// EndSession freezes the session, then hands the final projection to the
// report registry so threshold rules can fire.
func (i *Interactor) EndSession(ctx context.Context) (dto.EndSessionOutput, error) {
	final, err := i.engine.End()
	if err != nil {
		return dto.EndSessionOutput{}, err
	}
	out := dto.EndSessionOutput{Metrics: toMetricsDTO(final)}
	if i.reports == nil {
		return out, nil
	}
	handles, err := i.reports.SessionEnded(ctx, i.engine.Projection(service.ListFilter{}))
	if err != nil {
		return out, fmt.Errorf("session end reports: %w", err)
	}
	for _, h := range handles {
		out.Alerts = append(out.Alerts, toHandleDTO(h))
	}
	return out, nil
}

func (i *Interactor) Standings(ctx context.Context) ([]dto.Standing, error) {
	var history []domain.HistoryEntry
	if i.reports != nil {
		var err error
		history, err = i.reports.AttendanceHistory(ctx)
		if err != nil {
			return nil, err
		}
	}
	current := i.engine.Projection(service.ListFilter{}).Records
	if i.engine.Clock.Ended() {
		// the archive already holds the ended session
		current = nil
	}
	merged := domain.MergeStanding(history, current)
	out := make([]dto.Standing, 0, len(merged))
	for _, s := range merged {
		out = append(out, dto.Standing{
			DisplayName:      s.DisplayName,
			SessionsAttended: s.SessionsAttended,
			SessionsTotal:    s.SessionsTotal,
			Percent:          s.Percent,
			Standing:         string(s.Standing),
		})
	}
	return out, nil
}

// Weekly returns the current week's per-day rates. Without a registry there is
// no archive, so the week is empty.
func (i *Interactor) Weekly(ctx context.Context) (dto.WeeklyOverview, error) {
	if i.reports == nil {
		return dto.WeeklyOverview{}, nil
	}
	week, err := i.reports.WeeklyOverview(ctx, i.engine.Projection(service.ListFilter{}))
	if err != nil {
		return dto.WeeklyOverview{}, err
	}
	out := dto.WeeklyOverview{WeekStart: week.WeekStart, AveragePercent: week.AveragePercent}
	for _, d := range week.Days {
		out.Days = append(out.Days, dto.DayRate{
			Day:         d.Day,
			Date:        d.Date,
			Sessions:    d.Sessions,
			Present:     d.Present,
			Enrolled:    d.Enrolled,
			RatePercent: d.RatePercent,
		})
	}
	return out, nil
}

func (i *Interactor) ScheduleRules(ctx context.Context) ([]dto.ScheduleRule, error) {
	if i.reports == nil {
		return nil, nil
	}
	rules, err := i.reports.ListScheduleRules(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]dto.ScheduleRule, 0, len(rules))
	for _, r := range rules {
		out = append(out, dto.ScheduleRule{Name: r.Name, CadenceDescription: r.CadenceDescription, Enabled: r.Enabled, NextRun: r.NextRun})
	}
	return out, nil
}

// TriggerReport returns immediately; the future resolves once the registry
// has rendered the report from the projection captured here.
func (i *Interactor) TriggerReport(ctx context.Context, input dto.ReportRequest) (*future.Future[dto.ReportHandle], error) {
	kind := strings.TrimSpace(input.Kind)
	format := strings.TrimSpace(input.Format)
	if kind == "" || format == "" {
		return nil, fmt.Errorf("%w: report kind and format are required", apperrors.ErrInvalidInput)
	}
	if i.reports == nil {
		return nil, fmt.Errorf("report registry is not configured")
	}
	projection := i.engine.Projection(service.ListFilter{})
	pending := i.reports.TriggerReportGeneration(ctx, domain.ReportKind(kind), domain.ReportFormat(format), projection)
	return future.Map(pending, toHandleDTO), nil
}

// Subscribe returns a buffered event channel for views. A slow reader drops
// events instead of stalling the engine; every event carries the full
// metrics so the next one resynchronizes it.
func (i *Interactor) Subscribe(buffer int) (<-chan dto.Event, func()) {
	ch := make(chan dto.Event, max(buffer, 1))
	unsubscribe := i.engine.Subscribe(service.NotifierFunc(func(e domain.Event) {
		select {
		case ch <- toEventDTO(e):
		default:
			i.logger.Trace("event dropped", "type", e.Type)
		}
	}))
	var once sync.Once
	return ch, func() {
		once.Do(func() {
			unsubscribe()
			close(ch)
		})
	}
}
