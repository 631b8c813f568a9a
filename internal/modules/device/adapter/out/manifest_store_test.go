package out_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	deviceout "faceclass/internal/modules/device/adapter/out"
)

func TestFileManifestStoreLoadMissingReturnsEmpty(t *testing.T) {
	t.Parallel()
	store := deviceout.NewFileManifestStore(t.TempDir())
	manifests, err := store.Load(context.Background())
	if err != nil {
		t.Fatalf("load manifests: %v", err)
	}
	if len(manifests) != 0 {
		t.Fatalf("expected empty manifests, got %d", len(manifests))
	}
}

func TestFileManifestStoreResolvesRelativeBinary(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	raw := `[
  {
    "name": "simdevice",
    "version": "1.0.0",
    "binary": "bin/simdevice",
    "sha256": "aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa",
    "enabled": true,
    "capabilities": ["recognize"],
    "min_confidence": 0.9
  }
]`
	if err := os.WriteFile(filepath.Join(dir, deviceout.ManifestFileName), []byte(raw), 0o644); err != nil {
		t.Fatalf("write devices.json: %v", err)
	}
	manifests, err := deviceout.NewFileManifestStore(dir).Load(context.Background())
	if err != nil {
		t.Fatalf("load manifests: %v", err)
	}
	if len(manifests) != 1 {
		t.Fatalf("expected one manifest, got %d", len(manifests))
	}
	if manifests[0].Binary != filepath.Join(dir, "bin", "simdevice") {
		t.Fatalf("expected binary under device dir, got %s", manifests[0].Binary)
	}
	if manifests[0].Threshold() != 0.9 {
		t.Fatalf("expected min confidence 0.9, got %.2f", manifests[0].Threshold())
	}
}

func TestFileManifestStoreRejectsUnknownField(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	raw := `[{"name": "simdevice", "version": "1.0.0", "binary": "/tmp/simdevice", "enabled": true, "camera": 0}]`
	if err := os.WriteFile(filepath.Join(dir, deviceout.ManifestFileName), []byte(raw), 0o644); err != nil {
		t.Fatalf("write devices.json: %v", err)
	}
	if _, err := deviceout.NewFileManifestStore(dir).Load(context.Background()); err == nil {
		t.Fatalf("expected unknown field error")
	}
}
