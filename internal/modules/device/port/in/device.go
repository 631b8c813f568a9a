package in

import (
	"context"

	"faceclass/internal/modules/device/dto"
)

type Usecase interface {
	List(ctx context.Context) ([]dto.DeviceInfo, error)
	Doctor(ctx context.Context) ([]dto.DoctorResult, error)
	// Recognize fails with apperrors.ErrNotFound when the device is not
	// confident about the candidate.
	Recognize(ctx context.Context, input dto.RecognizeInput) (dto.RecognizeOutput, error)
}
