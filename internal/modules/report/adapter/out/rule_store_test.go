package out_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"faceclass/internal/modules/report/adapter/out"
	"faceclass/internal/modules/report/domain"
)

func TestFileRuleStoreMissingFileUsesDefaults(t *testing.T) {
	t.Parallel()
	store := out.NewFileRuleStore(filepath.Join(t.TempDir(), "schedules.yaml"))
	rules, err := store.Load(context.Background())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(rules) != len(domain.DefaultRules()) {
		t.Fatalf("expected default rules, got %+v", rules)
	}
}

func TestFileRuleStoreRoundTrip(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "cfg", "schedules.yaml")
	if err := out.WriteDefaultRules(path); err != nil {
		t.Fatalf("write defaults: %v", err)
	}
	rules, err := out.NewFileRuleStore(path).Load(context.Background())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	defaults := domain.DefaultRules()
	if len(rules) != len(defaults) {
		t.Fatalf("rule count mismatch: %d", len(rules))
	}
	for i := range defaults {
		if rules[i] != defaults[i] {
			t.Fatalf("rule %d mismatch: got %+v want %+v", i, rules[i], defaults[i])
		}
	}
}

func TestFileRuleStoreRejectsUnknownFields(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "schedules.yaml")
	raw := "rules:\n  - name: x\n    trigger: cron\n    spec: \"0 8 * * 1\"\n    cadence: weekly\n"
	if err := os.WriteFile(path, []byte(raw), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := out.NewFileRuleStore(path).Load(context.Background()); err == nil {
		t.Fatalf("expected unknown field error")
	}
}
