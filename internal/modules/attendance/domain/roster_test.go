package domain_test

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"faceclass/internal/modules/attendance/domain"
	apperrors "faceclass/internal/platform/errors"
)

func sequentialIDs() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("s-%02d", n)
	}
}

func TestUpsertScanFirstScanWins(t *testing.T) {
	t.Parallel()
	roster := domain.NewRoster()
	ids := sequentialIDs()
	first := time.Date(2026, 3, 2, 8, 15, 0, 0, time.UTC)

	res := roster.UpsertScan(domain.Identity{DisplayName: "Ana Silva"}, first, ids)
	if !res.Created || !res.Transitioned || res.Record.StudentID != "s-01" {
		t.Fatalf("unexpected first scan result: %+v", res)
	}
	again := roster.UpsertScan(domain.Identity{DisplayName: "Ana Silva"}, first.Add(time.Minute), ids)
	if again.Created || again.Transitioned {
		t.Fatalf("duplicate scan must not transition: %+v", again)
	}
	if !again.Record.ScanTimestamp.Equal(first) {
		t.Fatalf("duplicate overwrote timestamp: %v", again.Record.ScanTimestamp)
	}
	if roster.Count(domain.StatusPresent) != 1 || roster.Len() != 1 {
		t.Fatalf("unexpected counts: present=%d len=%d", roster.Count(domain.StatusPresent), roster.Len())
	}
}

func TestUpsertScanMarksEnrolledStudentPresent(t *testing.T) {
	t.Parallel()
	roster := domain.NewRoster()
	if _, created, err := roster.Enroll(domain.Student{ID: "diego", DisplayName: "Diego Lima"}, ""); err != nil || !created {
		t.Fatalf("enroll: created=%v err=%v", created, err)
	}
	at := time.Date(2026, 3, 2, 8, 30, 0, 0, time.UTC)
	res := roster.UpsertScan(domain.Identity{DisplayName: "Diego Lima"}, at, sequentialIDs())
	if res.Created || !res.Transitioned || res.Record.StudentID != "diego" {
		t.Fatalf("expected absent to present transition on existing record: %+v", res)
	}
	if !res.Record.Consistent() || !res.Record.Present() {
		t.Fatalf("record invariant broken: %+v", res.Record)
	}
}

func TestMarkAbsentClearsTimestamp(t *testing.T) {
	t.Parallel()
	roster := domain.NewRoster()
	res := roster.UpsertScan(domain.Identity{DisplayName: "Bruno Costa"}, time.Now(), sequentialIDs())
	rec, changed, err := roster.MarkAbsent(res.Record.StudentID)
	if err != nil || !changed {
		t.Fatalf("mark absent: changed=%v err=%v", changed, err)
	}
	if rec.Status != domain.StatusAbsent || rec.ScanTimestamp != nil {
		t.Fatalf("absent record still carries scan: %+v", rec)
	}
	if _, changed, err := roster.MarkAbsent(res.Record.StudentID); err != nil || changed {
		t.Fatalf("second mark absent must be a no-op: changed=%v err=%v", changed, err)
	}
}

func TestMarkAbsentUnknownStudent(t *testing.T) {
	t.Parallel()
	roster := domain.NewRoster()
	roster.UpsertScan(domain.Identity{DisplayName: "Ana Silva"}, time.Now(), sequentialIDs())
	if _, _, err := roster.MarkAbsent("nobody"); !errors.Is(err, apperrors.ErrUnknownStudent) {
		t.Fatalf("expected ErrUnknownStudent, got %v", err)
	}
	if roster.Count(domain.StatusPresent) != 1 {
		t.Fatalf("failed mark absent changed state")
	}
}

func TestRecordsOrdering(t *testing.T) {
	t.Parallel()
	roster := domain.NewRoster()
	ids := sequentialIDs()
	base := time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC)
	if _, _, err := roster.Enroll(domain.Student{ID: "e-1", DisplayName: "Elena Santos"}, ""); err != nil {
		t.Fatalf("enroll: %v", err)
	}
	for i, name := range []string{"Ana Silva", "Bruno Costa", "Carla Souza"} {
		roster.UpsertScan(domain.Identity{DisplayName: name}, base.Add(time.Duration(i)*time.Minute), ids)
	}
	roster.UpsertScan(domain.Identity{DisplayName: "Elena Santos"}, base.Add(10*time.Minute), ids)

	all := roster.Records(false)
	wantAll := []string{"Elena Santos", "Ana Silva", "Bruno Costa", "Carla Souza"}
	for i, rec := range all {
		if rec.DisplayName != wantAll[i] {
			t.Fatalf("full listing order mismatch at %d: %s", i, rec.DisplayName)
		}
	}
	present := roster.Records(true)
	wantPresent := []string{"Elena Santos", "Carla Souza", "Bruno Costa", "Ana Silva"}
	for i, rec := range present {
		if rec.DisplayName != wantPresent[i] {
			t.Fatalf("present listing order mismatch at %d: %s", i, rec.DisplayName)
		}
	}
}

func TestRecordsAreDetached(t *testing.T) {
	t.Parallel()
	roster := domain.NewRoster()
	at := time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC)
	res := roster.UpsertScan(domain.Identity{DisplayName: "Ana Silva"}, at, sequentialIDs())
	listed := roster.Records(false)
	*listed[0].ScanTimestamp = at.Add(time.Hour)
	got, _ := roster.Get(res.Record.StudentID)
	if !got.ScanTimestamp.Equal(at) {
		t.Fatalf("caller mutation leaked into roster: %v", got.ScanTimestamp)
	}
}

func TestCountInvariantAcrossScans(t *testing.T) {
	t.Parallel()
	roster := domain.NewRoster()
	ids := sequentialIDs()
	names := []string{"A", "B", "A", "C", "B", "D", "A"}
	for _, name := range names {
		roster.UpsertScan(domain.Identity{DisplayName: name}, time.Now(), ids)
		present := roster.Count(domain.StatusPresent)
		absent := roster.Count(domain.StatusAbsent)
		if present+absent != roster.Len() {
			t.Fatalf("count invariant broken: %d+%d != %d", present, absent, roster.Len())
		}
	}
	if roster.Len() != 4 {
		t.Fatalf("expected four distinct students, got %d", roster.Len())
	}
}
