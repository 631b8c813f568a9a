package out_test

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	deviceout "faceclass/internal/modules/device/adapter/out"
	"faceclass/internal/modules/device/domain"
)

func TestGRPCHostIntegrationSimDevice(t *testing.T) {
	binPath, checksum := buildSimDevice(t)
	manifest := domain.Manifest{
		Name:         "simdevice",
		Version:      "1.0.0",
		Binary:       binPath,
		SHA256:       checksum,
		Enabled:      true,
		Capabilities: []domain.Capability{domain.CapabilityRecognize},
	}

	host := deviceout.NewGRPCHost(nil)
	t.Cleanup(host.Close)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := host.CheckLifecycle(ctx, manifest); err != nil {
		t.Fatalf("check lifecycle: %v", err)
	}
	meta, err := host.Describe(ctx, manifest)
	if err != nil {
		t.Fatalf("describe: %v", err)
	}
	if meta.Name != "simdevice" || meta.Model == "" {
		t.Fatalf("unexpected metadata: %+v", meta)
	}

	got, err := host.Recognize(ctx, manifest, domain.RecognizeRequest{Hint: "Ana Silva", CapturedAt: time.Now()})
	if err != nil {
		t.Fatalf("recognize: %v", err)
	}
	if !got.Matched || got.DisplayName != "Ana Silva" || got.Confidence < 0.85 {
		t.Fatalf("unexpected recognition: %+v", got)
	}
	again, err := host.Recognize(ctx, manifest, domain.RecognizeRequest{Hint: "Ana Silva"})
	if err != nil {
		t.Fatalf("recognize again: %v", err)
	}
	if again.Confidence != got.Confidence {
		t.Fatalf("expected stable confidence, got %.2f then %.2f", got.Confidence, again.Confidence)
	}

	miss, err := host.Recognize(ctx, manifest, domain.RecognizeRequest{Hint: "unknown visitor"})
	if err != nil {
		t.Fatalf("recognize unknown: %v", err)
	}
	if miss.Matched {
		t.Fatalf("expected unknown hint to miss")
	}
}

func buildSimDevice(t *testing.T) (string, string) {
	t.Helper()
	binPath := filepath.Join(t.TempDir(), "simdevice")
	cmd := exec.Command("go", "build", "-o", binPath, "./plugins/simdevice")
	cmd.Dir = repositoryRoot(t)
	if out, err := cmd.CombinedOutput(); err != nil {
		t.Fatalf("build simdevice: %v\n%s", err, string(out))
	}
	payload, err := os.ReadFile(binPath)
	if err != nil {
		t.Fatalf("read built device: %v", err)
	}
	hash := sha256.Sum256(payload)
	return binPath, hex.EncodeToString(hash[:])
}

func repositoryRoot(t *testing.T) string {
	t.Helper()
	_, file, _, ok := runtime.Caller(0)
	if !ok {
		t.Fatalf("runtime caller failed")
	}
	return filepath.Clean(filepath.Join(filepath.Dir(file), "../../../../../"))
}
