package out

import (
	"context"
	"errors"
	"fmt"

	"faceclass/internal/modules/attendance/domain"
	devicedto "faceclass/internal/modules/device/dto"
	devicein "faceclass/internal/modules/device/port/in"
	apperrors "faceclass/internal/platform/errors"
)

// DeviceResolver resolves candidates through a scanner device plugin. An
// empty device name selects the first enabled device. A face the device does
// not recognise with enough confidence is an unresolved candidate.
type DeviceResolver struct {
	devices devicein.Usecase
	device  string
}

func NewDeviceResolver(devices devicein.Usecase, device string) DeviceResolver {
	return DeviceResolver{devices: devices, device: device}
}

func (r DeviceResolver) Resolve(ctx context.Context, candidate domain.ScanCandidate) (domain.Identity, error) {
	out, err := r.devices.Recognize(ctx, devicedto.RecognizeInput{
		Device:     r.device,
		Hint:       candidate.Identity,
		CapturedAt: candidate.Timestamp,
	})
	if errors.Is(err, apperrors.ErrNotFound) {
		return domain.Identity{}, fmt.Errorf("%w: %w", apperrors.ErrInvalidCandidate, err)
	}
	if err != nil {
		return domain.Identity{}, err
	}
	return domain.Identity{
		StudentID:   out.StudentID,
		DisplayName: out.DisplayName,
		Confidence:  out.Confidence,
	}, nil
}
