package usecase

import (
	"context"

	"faceclass/internal/modules/device/dto"
	devicein "faceclass/internal/modules/device/port/in"
	"faceclass/internal/modules/device/service"
)

type Interactor struct {
	svc *service.DeviceService
}

func NewInteractor(svc *service.DeviceService) devicein.Usecase {
	return &Interactor{svc: svc}
}

func (i *Interactor) List(ctx context.Context) ([]dto.DeviceInfo, error) {
	return i.svc.List(ctx)
}

func (i *Interactor) Doctor(ctx context.Context) ([]dto.DoctorResult, error) {
	return i.svc.Doctor(ctx)
}

func (i *Interactor) Recognize(ctx context.Context, input dto.RecognizeInput) (dto.RecognizeOutput, error) {
	return i.svc.Recognize(ctx, input)
}
