package in

import (
	"context"

	"faceclass/internal/modules/report/dto"
	reportin "faceclass/internal/modules/report/port/in"
)

type CLIHandler struct {
	usecase reportin.Usecase
}

func NewCLIHandler(usecase reportin.Usecase) CLIHandler {
	return CLIHandler{usecase: usecase}
}

func (h CLIHandler) Rules(ctx context.Context) ([]dto.Rule, error) {
	return h.usecase.ListRules(ctx)
}

func (h CLIHandler) Recent(ctx context.Context, limit int) ([]dto.Report, error) {
	return h.usecase.Recent(ctx, limit)
}

func (h CLIHandler) History(ctx context.Context) ([]dto.HistoryEntry, error) {
	return h.usecase.History(ctx)
}
