package out

import (
	"context"

	"faceclass/internal/modules/device/domain"
)

type ManifestStore interface {
	Load(ctx context.Context) ([]domain.Manifest, error)
}

type Host interface {
	CheckLifecycle(ctx context.Context, manifest domain.Manifest) error
	Describe(ctx context.Context, manifest domain.Manifest) (domain.Metadata, error)
	Recognize(ctx context.Context, manifest domain.Manifest, req domain.RecognizeRequest) (domain.Recognition, error)
}
