package main

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	hclog "github.com/hashicorp/go-hclog"

	"faceclass/internal/platform/config"
)

func runCLI(t *testing.T, args ...string) string {
	t.Helper()
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, config.FileName), []byte("log_level: off\nscanner:\n  latency: 0s\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	var out bytes.Buffer
	root := newRootCmd()
	root.SetOut(&out)
	root.SetErr(&bytes.Buffer{})
	root.SetArgs(append([]string{"--data", dir}, args...))
	if err := root.ExecuteContext(context.Background()); err != nil {
		t.Fatalf("faceclass %v: %v", args, err)
	}
	return out.String()
}

func TestRosterCommandPrintsSeededStudents(t *testing.T) {
	out := runCLI(t, "roster")
	for _, want := range []string{"1TDSPB", "Ana Silva", "Diego Lima", "present 4/32"} {
		if !strings.Contains(out, want) {
			t.Fatalf("roster output missing %q:\n%s", want, out)
		}
	}
}

func TestScanCommandDeduplicates(t *testing.T) {
	out := runCLI(t, "scan", "Ana Silva", "Maria Clara")
	if !strings.Contains(out, "Ana Silva already registered") {
		t.Fatalf("expected duplicate line:\n%s", out)
	}
	if !strings.Contains(out, "Maria Clara marked present") || !strings.Contains(out, "present 5/32") {
		t.Fatalf("expected new scan to count:\n%s", out)
	}
}

func TestReportRulesCommand(t *testing.T) {
	out := runCLI(t, "report", "rules")
	if !strings.Contains(out, "Weekly report") || !strings.Contains(out, "Every Monday at 08:00") {
		t.Fatalf("unexpected rules output:\n%s", out)
	}
}

func TestReportWeeklyCountsLiveSession(t *testing.T) {
	t.Parallel()
	got := runCLI(t, "report", "weekly")
	if !strings.Contains(got, "DAY") || !strings.Contains(got, "4/32") || !strings.Contains(got, "weekly average: 13%") {
		t.Fatalf("unexpected weekly output:\n%s", got)
	}
}

type failingCloser struct{ err error }

func (c failingCloser) Close() error { return c.err }

func TestCloseAppLogsFailure(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	logger := hclog.New(&hclog.LoggerOptions{Output: &buf, Level: hclog.Error})
	closeApp(failingCloser{err: errors.New("archive: database is locked")}, logger)
	if got := buf.String(); !strings.Contains(got, "shutdown incomplete") || !strings.Contains(got, "database is locked") {
		t.Fatalf("close error not logged: %q", got)
	}

	buf.Reset()
	closeApp(failingCloser{}, logger)
	if buf.Len() != 0 {
		t.Fatalf("clean close should log nothing: %q", buf.String())
	}
}
