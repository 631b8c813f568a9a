package out

import (
	"context"

	"faceclass/internal/modules/attendance/domain"
	"faceclass/internal/platform/future"
)

// IdentityResolver turns a raw scan candidate into a roster identity. It may
// block for as long as recognition takes.
type IdentityResolver interface {
	Resolve(ctx context.Context, candidate domain.ScanCandidate) (domain.Identity, error)
}

// CandidateSource produces the next candidate when recognition is started
// without an explicit identity.
type CandidateSource interface {
	Next(ctx context.Context) (domain.ScanCandidate, error)
}

type ReportRegistry interface {
	ListScheduleRules(ctx context.Context) ([]domain.ScheduleRule, error)
	TriggerReportGeneration(ctx context.Context, kind domain.ReportKind, format domain.ReportFormat, projection domain.Projection) *future.Future[domain.ReportHandle]
	// SessionEnded lets threshold rules react to the final projection.
	SessionEnded(ctx context.Context, projection domain.Projection) ([]domain.ReportHandle, error)
	AttendanceHistory(ctx context.Context) ([]domain.HistoryEntry, error)
	// WeeklyOverview covers the week of the projection, counting the live
	// session if it has not been archived yet.
	WeeklyOverview(ctx context.Context, projection domain.Projection) (domain.WeeklyOverview, error)
}

// Notifier receives every engine event. It must not call back into the
// engine's mutating operations.
type Notifier interface {
	Notify(event domain.Event)
}
