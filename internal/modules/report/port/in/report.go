package in

import (
	"context"

	"faceclass/internal/modules/report/dto"
)

type Usecase interface {
	ListRules(ctx context.Context) ([]dto.Rule, error)
	Generate(ctx context.Context, input dto.GenerateInput) (dto.Report, error)
	Recent(ctx context.Context, limit int) ([]dto.Report, error)
	SessionEnded(ctx context.Context, snapshot dto.Snapshot) ([]dto.Report, error)
	History(ctx context.Context) ([]dto.HistoryEntry, error)
	// Weekly aggregates the week holding live.At; live is counted when it is
	// not archived yet. A zero Snapshot means the current week with no live session.
	Weekly(ctx context.Context, live dto.Snapshot) (dto.WeeklyOverview, error)
}
