package out

import (
	"context"
	"time"

	hclog "github.com/hashicorp/go-hclog"

	"faceclass/internal/modules/attendance/domain"
	attendanceout "faceclass/internal/modules/attendance/port/out"
	reportdto "faceclass/internal/modules/report/dto"
	reportin "faceclass/internal/modules/report/port/in"
	"faceclass/internal/platform/future"
	"faceclass/internal/platform/logging"
)

// ReportRegistry forwards registry calls to the report module.
type ReportRegistry struct {
	reports reportin.Usecase
	logger  hclog.Logger
}

func NewReportRegistry(reports reportin.Usecase, logger hclog.Logger) attendanceout.ReportRegistry {
	return &ReportRegistry{reports: reports, logger: logging.OrDiscard(logger)}
}

func (r *ReportRegistry) ListScheduleRules(ctx context.Context) ([]domain.ScheduleRule, error) {
	rules, err := r.reports.ListRules(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]domain.ScheduleRule, 0, len(rules))
	for _, rule := range rules {
		out = append(out, domain.ScheduleRule{
			Name:               rule.Name,
			CadenceDescription: rule.CadenceDescription,
			Enabled:            rule.Enabled,
			NextRun:            rule.NextRun,
		})
	}
	return out, nil
}

// TriggerReportGeneration renders in the background. The caller's
// cancellation does not abort a report that has already been requested.
func (r *ReportRegistry) TriggerReportGeneration(ctx context.Context, kind domain.ReportKind, format domain.ReportFormat, projection domain.Projection) *future.Future[domain.ReportHandle] {
	ctx = context.WithoutCancel(ctx)
	snapshot := toReportSnapshot(projection)
	return future.Go(func() (domain.ReportHandle, error) {
		started := time.Now()
		report, err := r.reports.Generate(ctx, reportdto.GenerateInput{Kind: string(kind), Format: string(format), Snapshot: snapshot})
		if err != nil {
			r.logger.Warn("report generation failed", "kind", kind, "format", format, "error", err)
			return domain.ReportHandle{}, err
		}
		r.logger.Debug("report ready", "path", report.Path, "took", time.Since(started))
		return toHandle(report), nil
	})
}

func (r *ReportRegistry) SessionEnded(ctx context.Context, projection domain.Projection) ([]domain.ReportHandle, error) {
	reports, err := r.reports.SessionEnded(ctx, toReportSnapshot(projection))
	handles := make([]domain.ReportHandle, 0, len(reports))
	for _, report := range reports {
		handles = append(handles, toHandle(report))
	}
	return handles, err
}

func (r *ReportRegistry) AttendanceHistory(ctx context.Context) ([]domain.HistoryEntry, error) {
	entries, err := r.reports.History(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]domain.HistoryEntry, 0, len(entries))
	for _, e := range entries {
		out = append(out, domain.HistoryEntry{DisplayName: e.DisplayName, SessionsAttended: e.SessionsAttended, SessionsTotal: e.SessionsTotal})
	}
	return out, nil
}

func (r *ReportRegistry) WeeklyOverview(ctx context.Context, projection domain.Projection) (domain.WeeklyOverview, error) {
	week, err := r.reports.Weekly(ctx, toReportSnapshot(projection))
	if err != nil {
		return domain.WeeklyOverview{}, err
	}
	out := domain.WeeklyOverview{WeekStart: week.WeekStart, AveragePercent: week.AveragePercent}
	for _, d := range week.Days {
		out.Days = append(out.Days, domain.DayRate{
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

func toHandle(report reportdto.Report) domain.ReportHandle {
	return domain.ReportHandle{
		ID:          report.ID,
		Kind:        domain.ReportKind(report.Kind),
		Format:      domain.ReportFormat(report.Format),
		Path:        report.Path,
		GeneratedAt: report.GeneratedAt,
	}
}

func toReportSnapshot(p domain.Projection) reportdto.Snapshot {
	rows := make([]reportdto.Row, 0, len(p.Records))
	for _, rec := range p.Records {
		row := reportdto.Row{StudentID: rec.StudentID, DisplayName: rec.DisplayName, Status: string(rec.Status)}
		if rec.ScanTimestamp != nil {
			ts := *rec.ScanTimestamp
			row.ScannedAt = &ts
		}
		rows = append(rows, row)
	}
	m := p.Metrics
	return reportdto.Snapshot{
		SessionID:              p.Session.ID,
		ClassLabel:             p.Session.ClassLabel,
		Subject:                p.Session.Subject,
		Instructor:             p.Session.Instructor,
		Room:                   p.Session.Room,
		StartTime:              p.Session.StartTime,
		PlannedDurationMinutes: p.Session.PlannedDurationMinutes,
		Rows:                   rows,
		Present:                m.PresentCount,
		Absent:                 m.AbsentCount,
		Total:                  m.TotalEnrolled,
		RatePercent:            m.AttendanceRatePercent,
		ProgressPercent:        m.ClassProgressPercent,
		ElapsedMinutes:         m.ElapsedMinutes,
		ClassStatus:            string(m.ClassStatus),
		GoalPercent:            m.AttendanceGoalPercent,
		GoalMet:                m.AttendanceGoalMet,
		At:                     m.At,
	}
}
