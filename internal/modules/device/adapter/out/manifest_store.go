package out

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"faceclass/internal/modules/device/domain"
	deviceout "faceclass/internal/modules/device/port/out"
)

const ManifestFileName = "devices.json"

type FileManifestStore struct {
	dir  string
	path string
}

// NewFileManifestStore reads dir/devices.json. Relative binary paths are
// resolved against dir.
func NewFileManifestStore(dir string) deviceout.ManifestStore {
	return &FileManifestStore{dir: dir, path: filepath.Join(dir, ManifestFileName)}
}

func (s *FileManifestStore) Load(_ context.Context) ([]domain.Manifest, error) {
	b, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return []domain.Manifest{}, nil
		}
		return nil, fmt.Errorf("read device manifest store: %w", err)
	}
	var manifests []domain.Manifest
	decoder := json.NewDecoder(bytes.NewReader(b))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&manifests); err != nil {
		return nil, fmt.Errorf("decode device manifests: %w", err)
	}
	for i := range manifests {
		if manifests[i].Binary != "" && !filepath.IsAbs(manifests[i].Binary) {
			manifests[i].Binary = filepath.Clean(filepath.Join(s.dir, manifests[i].Binary))
		}
	}
	return manifests, nil
}
