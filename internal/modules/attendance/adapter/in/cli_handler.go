package in

import (
	"context"
	"time"

	"faceclass/internal/modules/attendance/dto"
	attendancein "faceclass/internal/modules/attendance/port/in"
	"faceclass/internal/platform/future"
)

type CLIHandler struct {
	usecase attendancein.Usecase
}

func NewCLIHandler(usecase attendancein.Usecase) CLIHandler {
	return CLIHandler{usecase: usecase}
}

func (h CLIHandler) Scan(ctx context.Context, identity string, at time.Time) (dto.ScanOutput, error) {
	return h.usecase.SubmitScan(ctx, dto.ScanInput{Identity: identity, Timestamp: at})
}

func (h CLIHandler) StartRecognition(ctx context.Context) (dto.ScanOutput, error) {
	return h.usecase.StartRecognition(ctx)
}

func (h CLIHandler) MarkAbsent(ctx context.Context, studentID string) (dto.MarkAbsentOutput, error) {
	return h.usecase.MarkAbsent(ctx, studentID)
}

func (h CLIHandler) Enroll(ctx context.Context, name, avatar string) (dto.Record, error) {
	return h.usecase.Enroll(ctx, dto.EnrollInput{Name: name, Avatar: avatar})
}

func (h CLIHandler) Roster(ctx context.Context, presentOnly bool) (dto.RosterOutput, error) {
	return h.usecase.Roster(ctx, dto.RosterQuery{PresentOnly: presentOnly})
}

func (h CLIHandler) Metrics(ctx context.Context) (dto.Metrics, error) {
	return h.usecase.Metrics(ctx)
}

func (h CLIHandler) Tick(ctx context.Context) (dto.Metrics, error) {
	return h.usecase.Tick(ctx)
}

func (h CLIHandler) RunClock(ctx context.Context) error {
	return h.usecase.RunClock(ctx)
}

func (h CLIHandler) EndSession(ctx context.Context) (dto.EndSessionOutput, error) {
	return h.usecase.EndSession(ctx)
}

func (h CLIHandler) Standings(ctx context.Context) ([]dto.Standing, error) {
	return h.usecase.Standings(ctx)
}

func (h CLIHandler) Weekly(ctx context.Context) (dto.WeeklyOverview, error) {
	return h.usecase.Weekly(ctx)
}

func (h CLIHandler) ScheduleRules(ctx context.Context) ([]dto.ScheduleRule, error) {
	return h.usecase.ScheduleRules(ctx)
}

func (h CLIHandler) TriggerReport(ctx context.Context, kind, format string) (*future.Future[dto.ReportHandle], error) {
	return h.usecase.TriggerReport(ctx, dto.ReportRequest{Kind: kind, Format: format})
}

func (h CLIHandler) Subscribe(buffer int) (<-chan dto.Event, func()) {
	return h.usecase.Subscribe(buffer)
}
