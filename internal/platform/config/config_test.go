package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"faceclass/internal/platform/config"
)

func TestLoadDefaultsWithoutConfigFile(t *testing.T) {
	dir := t.TempDir()
	cfg, err := config.Load(dir, "")
	if err != nil {
		t.Fatalf("load defaults: %v", err)
	}
	if cfg.Class.TotalEnrolled != 32 || cfg.Class.PlannedDurationMinutes != 90 || cfg.Class.GoalPercent != 85 {
		t.Fatalf("unexpected class defaults: %+v", cfg.Class)
	}
	if cfg.Scanner.Latency != 2500*time.Millisecond || cfg.Scanner.Resolver != "simulated" {
		t.Fatalf("unexpected scanner defaults: %+v", cfg.Scanner)
	}
	if cfg.DBPath != filepath.Join(dir, ".faceclass", "faceclass.db") {
		t.Fatalf("unexpected db path: %s", cfg.DBPath)
	}
	if len(cfg.Class.Roster) != 5 {
		t.Fatalf("expected five seeded students, got %d", len(cfg.Class.Roster))
	}
}

func TestLoadMergesYAMLFileAndRebasesRelativePaths(t *testing.T) {
	dir := t.TempDir()
	raw := `
log_level: debug
reports_dir: out
class:
  label: 2TDSPA
  total_enrolled: 40
  planned_duration_minutes: 50
  roster:
    - name: Ana Silva
      scanned_at: "07:55"
scanner:
  latency: 0s
  tick_interval: 250ms
`
	if err := os.WriteFile(filepath.Join(dir, config.FileName), []byte(raw), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	cfg, err := config.Load(dir, "")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Class.Label != "2TDSPA" || cfg.Class.TotalEnrolled != 40 || cfg.Class.PlannedDurationMinutes != 50 {
		t.Fatalf("yaml values not applied: %+v", cfg.Class)
	}
	if cfg.Class.GoalPercent != 85 {
		t.Fatalf("untouched default should survive, got goal %.0f", cfg.Class.GoalPercent)
	}
	if len(cfg.Class.Roster) != 1 || cfg.Class.Roster[0].ScannedAt != "07:55" {
		t.Fatalf("roster not replaced: %+v", cfg.Class.Roster)
	}
	if cfg.Scanner.Latency != 0 || cfg.Scanner.TickInterval != 250*time.Millisecond {
		t.Fatalf("durations not decoded: %+v", cfg.Scanner)
	}
	if cfg.ReportsDir != filepath.Join(dir, "out") {
		t.Fatalf("relative reports dir not rebased: %s", cfg.ReportsDir)
	}
}

func TestLoadRejectsUnknownYAMLField(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, config.FileName), []byte("unknown_key: 1\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, err := config.Load(dir, ""); err == nil {
		t.Fatalf("expected unknown field error")
	}
}

func TestLoadRequiresExplicitConfigFile(t *testing.T) {
	dir := t.TempDir()
	if _, err := config.Load(dir, filepath.Join(dir, "missing.yaml")); err == nil {
		t.Fatalf("explicit missing config must fail")
	}
}

func TestLoadDotEnvOverrides(t *testing.T) {
	dir := t.TempDir()
	env := "FACECLASS_TOTAL_ENROLLED=10\nFACECLASS_GOAL_PERCENT=70\nFACECLASS_SCAN_LATENCY=1s\n"
	if err := os.WriteFile(filepath.Join(dir, ".env"), []byte(env), 0o644); err != nil {
		t.Fatalf("write .env: %v", err)
	}
	t.Cleanup(func() {
		for _, key := range []string{"FACECLASS_TOTAL_ENROLLED", "FACECLASS_GOAL_PERCENT", "FACECLASS_SCAN_LATENCY"} {
			_ = os.Unsetenv(key)
		}
	})
	cfg, err := config.Load(dir, "")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Class.TotalEnrolled != 10 || cfg.Class.GoalPercent != 70 || cfg.Scanner.Latency != time.Second {
		t.Fatalf(".env overrides not applied: %+v %+v", cfg.Class, cfg.Scanner)
	}
}

func TestValidateRejectsOutOfRangeValues(t *testing.T) {
	t.Parallel()
	cfg := config.Default(t.TempDir())
	cfg.Class.GoalPercent = 120
	if err := cfg.Validate(); err == nil || !strings.Contains(err.Error(), "GoalPercent") {
		t.Fatalf("expected goal percent validation error, got %v", err)
	}
	cfg = config.Default(t.TempDir())
	cfg.Scanner.Resolver = "camera"
	if err := cfg.Validate(); err == nil {
		t.Fatalf("unknown resolver must fail")
	}
	cfg = config.Default(t.TempDir())
	cfg.Class.Roster = append(cfg.Class.Roster, config.SeedStudent{Name: "Late", ScannedAt: "25:99"})
	if err := cfg.Validate(); err == nil {
		t.Fatalf("invalid scanned_at must fail")
	}
}
