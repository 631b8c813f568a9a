package in

import (
	"context"

	"faceclass/internal/modules/attendance/dto"
	"faceclass/internal/platform/future"
)

type Usecase interface {
	SubmitScan(ctx context.Context, input dto.ScanInput) (dto.ScanOutput, error)
	StartRecognition(ctx context.Context) (dto.ScanOutput, error)
	MarkAbsent(ctx context.Context, studentID string) (dto.MarkAbsentOutput, error)
	Enroll(ctx context.Context, input dto.EnrollInput) (dto.Record, error)
	Roster(ctx context.Context, query dto.RosterQuery) (dto.RosterOutput, error)
	Metrics(ctx context.Context) (dto.Metrics, error)
	Tick(ctx context.Context) (dto.Metrics, error)
	RunClock(ctx context.Context) error
	EndSession(ctx context.Context) (dto.EndSessionOutput, error)
	Standings(ctx context.Context) ([]dto.Standing, error)
	Weekly(ctx context.Context) (dto.WeeklyOverview, error)
	ScheduleRules(ctx context.Context) ([]dto.ScheduleRule, error)
	TriggerReport(ctx context.Context, input dto.ReportRequest) (*future.Future[dto.ReportHandle], error)
	Subscribe(buffer int) (<-chan dto.Event, func())
}
