package in

import (
	"context"
	"time"

	"faceclass/internal/modules/device/dto"
	devicein "faceclass/internal/modules/device/port/in"
)

type CLIHandler struct {
	usecase devicein.Usecase
}

func NewCLIHandler(usecase devicein.Usecase) CLIHandler {
	return CLIHandler{usecase: usecase}
}

func (h CLIHandler) List(ctx context.Context) ([]dto.DeviceInfo, error) {
	return h.usecase.List(ctx)
}

func (h CLIHandler) Doctor(ctx context.Context) ([]dto.DoctorResult, error) {
	return h.usecase.Doctor(ctx)
}

func (h CLIHandler) Recognize(ctx context.Context, device, hint string) (dto.RecognizeOutput, error) {
	return h.usecase.Recognize(ctx, dto.RecognizeInput{Device: device, Hint: hint, CapturedAt: time.Now()})
}
