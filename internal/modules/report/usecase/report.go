package usecase

import (
	"context"

	"faceclass/internal/modules/report/domain"
	"faceclass/internal/modules/report/dto"
	reportin "faceclass/internal/modules/report/port/in"
	"faceclass/internal/modules/report/service"
)

type Interactor struct {
	svc *service.ReportService
}

func NewInteractor(svc *service.ReportService) reportin.Usecase {
	return &Interactor{svc: svc}
}

func (i *Interactor) ListRules(ctx context.Context) ([]dto.Rule, error) {
	rules, err := i.svc.ListRules(ctx)
	if err != nil {
		return nil, err
	}
	now := i.svc.Now()
	out := make([]dto.Rule, 0, len(rules))
	for _, r := range rules {
		out = append(out, dto.Rule{
			Name:               r.Name,
			Trigger:            string(r.Trigger),
			Kind:               string(r.Kind),
			Format:             string(r.Format),
			CadenceDescription: r.CadenceDescription(),
			Enabled:            r.Enabled,
			NextRun:            r.NextRun(now),
		})
	}
	return out, nil
}

func (i *Interactor) Generate(ctx context.Context, input dto.GenerateInput) (dto.Report, error) {
	handle, err := i.svc.Generate(ctx, domain.Kind(input.Kind), domain.Format(input.Format), toSnapshot(input.Snapshot), "")
	if err != nil {
		return dto.Report{}, err
	}
	return toReportDTO(handle), nil
}

func (i *Interactor) Recent(ctx context.Context, limit int) ([]dto.Report, error) {
	handles, err := i.svc.Recent(ctx, limit)
	if err != nil {
		return nil, err
	}
	return toReportDTOs(handles), nil
}

func (i *Interactor) SessionEnded(ctx context.Context, snapshot dto.Snapshot) ([]dto.Report, error) {
	handles, err := i.svc.SessionEnded(ctx, toSnapshot(snapshot))
	return toReportDTOs(handles), err
}

func (i *Interactor) History(ctx context.Context) ([]dto.HistoryEntry, error) {
	entries, err := i.svc.History(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]dto.HistoryEntry, 0, len(entries))
	for _, e := range entries {
		out = append(out, dto.HistoryEntry{DisplayName: e.DisplayName, SessionsAttended: e.SessionsAttended, SessionsTotal: e.SessionsTotal})
	}
	return out, nil
}

func (i *Interactor) Weekly(ctx context.Context, live dto.Snapshot) (dto.WeeklyOverview, error) {
	week, err := i.svc.Weekly(ctx, toSnapshot(live))
	if err != nil {
		return dto.WeeklyOverview{}, err
	}
	out := dto.WeeklyOverview{WeekStart: week.WeekStart, AveragePercent: week.AveragePercent}
	for _, d := range week.Days {
		out.Days = append(out.Days, dto.DayRate{
			Day:         d.Day.String()[:3],
			Date:        d.Date,
			Sessions:    d.Sessions,
			Present:     d.Present,
			Enrolled:    d.Enrolled,
			RatePercent: d.RatePercent,
		})
	}
	return out, nil
}

func toReportDTO(h domain.Handle) dto.Report {
	return dto.Report{
		ID:          h.ID,
		Kind:        string(h.Kind),
		Format:      string(h.Format),
		Path:        h.Path,
		Rule:        h.Rule,
		ClassLabel:  h.ClassLabel,
		GeneratedAt: h.GeneratedAt,
	}
}

func toReportDTOs(handles []domain.Handle) []dto.Report {
	out := make([]dto.Report, 0, len(handles))
	for _, h := range handles {
		out = append(out, toReportDTO(h))
	}
	return out
}

func toSnapshot(s dto.Snapshot) domain.Snapshot {
	rows := make([]domain.Row, 0, len(s.Rows))
	for _, r := range s.Rows {
		rows = append(rows, domain.Row{StudentID: r.StudentID, DisplayName: r.DisplayName, Status: r.Status, ScannedAt: r.ScannedAt})
	}
	return domain.Snapshot{
		SessionID:              s.SessionID,
		ClassLabel:             s.ClassLabel,
		Subject:                s.Subject,
		Instructor:             s.Instructor,
		Room:                   s.Room,
		StartTime:              s.StartTime,
		PlannedDurationMinutes: s.PlannedDurationMinutes,
		Rows:                   rows,
		Present:                s.Present,
		Absent:                 s.Absent,
		Total:                  s.Total,
		RatePercent:            s.RatePercent,
		ProgressPercent:        s.ProgressPercent,
		ElapsedMinutes:         s.ElapsedMinutes,
		ClassStatus:            s.ClassStatus,
		GoalPercent:            s.GoalPercent,
		GoalMet:                s.GoalMet,
		At:                     s.At,
	}
}
