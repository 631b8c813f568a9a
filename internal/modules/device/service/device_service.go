package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"faceclass/internal/modules/device/domain"
	"faceclass/internal/modules/device/dto"
	deviceout "faceclass/internal/modules/device/port/out"
	apperrors "faceclass/internal/platform/errors"
	"faceclass/internal/platform/logging"

	hclog "github.com/hashicorp/go-hclog"
)

type DeviceService struct {
	store  deviceout.ManifestStore
	host   deviceout.Host
	logger hclog.Logger
}

func NewDeviceService(store deviceout.ManifestStore, host deviceout.Host, logger hclog.Logger) *DeviceService {
	return &DeviceService{store: store, host: host, logger: logging.OrDiscard(logger).Named("device")}
}

func (s *DeviceService) List(ctx context.Context) ([]dto.DeviceInfo, error) {
	manifests, err := s.loadValidated(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]dto.DeviceInfo, 0, len(manifests))
	for _, m := range manifests {
		caps := make([]string, 0, len(m.Capabilities))
		for _, c := range m.Capabilities {
			caps = append(caps, string(c))
		}
		out = append(out, dto.DeviceInfo{
			Name:          m.Name,
			Version:       m.Version,
			Enabled:       m.Enabled,
			Binary:        m.Binary,
			Capabilities:  caps,
			MinConfidence: m.Threshold(),
		})
	}
	return out, nil
}

func (s *DeviceService) Doctor(ctx context.Context) ([]dto.DoctorResult, error) {
	manifests, err := s.store.Load(ctx)
	if err != nil {
		return nil, err
	}
	results := make([]dto.DoctorResult, 0, len(manifests))
	for _, m := range manifests {
		result := dto.DoctorResult{Name: m.Name}
		if err := m.Validate(); err != nil {
			result.Error = err.Error()
			results = append(results, result)
			continue
		}
		binaryOK := fileExists(m.Binary)
		result.BinaryReachable = binaryOK
		checksumOK := binaryOK && checksumMatches(m.Binary, m.SHA256) == nil
		result.ChecksumValid = checksumOK
		switch {
		case !binaryOK:
			result.Error = fmt.Sprintf("binary does not exist: %s", m.Binary)
		case !checksumOK:
			result.Error = "checksum mismatch"
		case m.Enabled && s.host != nil:
			meta, err := s.host.Describe(ctx, m)
			if err != nil {
				result.Error = err.Error()
				break
			}
			result.LifecycleOK = true
			result.Model = meta.Model
		}
		results = append(results, result)
	}
	return results, nil
}

func (s *DeviceService) Recognize(ctx context.Context, input dto.RecognizeInput) (dto.RecognizeOutput, error) {
	req := domain.RecognizeRequest{Hint: strings.TrimSpace(input.Hint), CapturedAt: input.CapturedAt}
	if err := req.Validate(); err != nil {
		return dto.RecognizeOutput{}, fmt.Errorf("%w: %v", apperrors.ErrInvalidInput, err)
	}
	manifest, err := s.runnableManifest(ctx, input.Device, domain.CapabilityRecognize)
	if err != nil {
		return dto.RecognizeOutput{}, err
	}
	recognition, err := s.host.Recognize(ctx, manifest, req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return dto.RecognizeOutput{}, fmt.Errorf("%w: %s", domain.ErrDeviceTimeout, manifest.Name)
		}
		return dto.RecognizeOutput{}, err
	}
	if err := recognition.Accept(manifest.Threshold()); err != nil {
		s.logger.Debug("recognition rejected", "device", manifest.Name, "hint", req.Hint, "confidence", recognition.Confidence)
		return dto.RecognizeOutput{}, fmt.Errorf("%w: %w", apperrors.ErrNotFound, err)
	}
	return dto.RecognizeOutput{
		Device:      manifest.Name,
		StudentID:   recognition.StudentID,
		DisplayName: recognition.DisplayName,
		Confidence:  recognition.Confidence,
	}, nil
}

func (s *DeviceService) loadValidated(ctx context.Context) ([]domain.Manifest, error) {
	manifests, err := s.store.Load(ctx)
	if err != nil {
		return nil, err
	}
	seenNames := map[string]struct{}{}
	for _, manifest := range manifests {
		if err := manifest.Validate(); err != nil {
			return nil, err
		}
		if _, ok := seenNames[manifest.Name]; ok {
			return nil, fmt.Errorf("duplicate device name: %s", manifest.Name)
		}
		seenNames[manifest.Name] = struct{}{}
	}
	return manifests, nil
}

// runnableManifest picks the named device, or the first enabled one when
// name is empty.
func (s *DeviceService) runnableManifest(ctx context.Context, name string, required domain.Capability) (domain.Manifest, error) {
	if s.host == nil {
		return domain.Manifest{}, fmt.Errorf("scanner device host is not configured")
	}
	manifests, err := s.loadValidated(ctx)
	if err != nil {
		return domain.Manifest{}, err
	}
	var manifest domain.Manifest
	found := false
	for _, item := range manifests {
		if (name == "" && item.Enabled) || item.Name == name {
			manifest = item
			found = true
			break
		}
	}
	if !found {
		if name == "" {
			return domain.Manifest{}, fmt.Errorf("%w: no enabled device", domain.ErrDeviceNotFound)
		}
		return domain.Manifest{}, fmt.Errorf("%w: %q", domain.ErrDeviceNotFound, name)
	}
	if !manifest.Enabled {
		return domain.Manifest{}, fmt.Errorf("%w: %s", domain.ErrDeviceDisabled, manifest.Name)
	}
	if !manifest.HasCapability(required) {
		return domain.Manifest{}, fmt.Errorf("%w: %s", domain.ErrCapabilityMissing, required)
	}
	if err := checksumMatches(manifest.Binary, manifest.SHA256); err != nil {
		return domain.Manifest{}, err
	}
	return manifest, nil
}

func checksumMatches(path, expected string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open device binary: %w", err)
	}
	defer f.Close()
	hash := sha256.New()
	if _, err := io.Copy(hash, f); err != nil {
		return fmt.Errorf("hash device binary: %w", err)
	}
	if hex.EncodeToString(hash.Sum(nil)) != expected {
		return fmt.Errorf("%w: %s", domain.ErrChecksumMismatch, path)
	}
	return nil
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
