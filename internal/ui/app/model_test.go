package app

import (
	"context"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"faceclass/internal/modules/attendance/dto"
	"faceclass/internal/platform/future"
	"faceclass/internal/ui/components"
)

type fakePort struct {
	events     chan dto.Event
	cancelled  bool
	enrolled   []string
	rosterHits int
}

func newFakePort() *fakePort { return &fakePort{events: make(chan dto.Event, 4)} }

func (f *fakePort) StartRecognition(context.Context) (dto.ScanOutput, error) {
	return dto.ScanOutput{Accepted: true}, nil
}
func (f *fakePort) SubmitScan(_ context.Context, in dto.ScanInput) (dto.ScanOutput, error) {
	return dto.ScanOutput{Accepted: true, Record: dto.Record{DisplayName: in.Identity}}, nil
}
func (f *fakePort) MarkAbsent(context.Context, string) (dto.MarkAbsentOutput, error) {
	return dto.MarkAbsentOutput{}, nil
}
func (f *fakePort) Standings(context.Context) ([]dto.Standing, error) { return nil, nil }
func (f *fakePort) Weekly(context.Context) (dto.WeeklyOverview, error) {
	return dto.WeeklyOverview{}, nil
}
func (f *fakePort) ScheduleRules(context.Context) ([]dto.ScheduleRule, error) {
	return nil, nil
}
func (f *fakePort) TriggerReport(context.Context, dto.ReportRequest) (*future.Future[dto.ReportHandle], error) {
	fut := future.New[dto.ReportHandle]()
	fut.Resolve(dto.ReportHandle{Path: "/tmp/r.xlsx"}, nil)
	return fut, nil
}
func (f *fakePort) Roster(context.Context, dto.RosterQuery) (dto.RosterOutput, error) {
	f.rosterHits++
	return dto.RosterOutput{Session: dto.Session{ClassLabel: "1TDSPB"}, Metrics: dto.Metrics{PresentCount: 1, TotalEnrolled: 32}}, nil
}
func (f *fakePort) Enroll(_ context.Context, in dto.EnrollInput) (dto.Record, error) {
	f.enrolled = append(f.enrolled, in.Name)
	return dto.Record{DisplayName: in.Name}, nil
}
func (f *fakePort) EndSession(context.Context) (dto.EndSessionOutput, error) {
	return dto.EndSessionOutput{}, nil
}
func (f *fakePort) Subscribe(int) (<-chan dto.Event, func()) {
	return f.events, func() { f.cancelled = true }
}

func TestEventShowsToastAndReloadsRoster(t *testing.T) {
	t.Parallel()
	port := newFakePort()
	m := NewModel(port)

	rec := dto.Record{DisplayName: "Ana Silva"}
	next, cmd := m.Update(eventMsg{event: dto.Event{Type: "scan_accepted", Record: &rec}, ok: true})
	model := next.(Model)
	if model.status != "✓ Ana Silva marked present" {
		t.Fatalf("unexpected status: %q", model.status)
	}
	if cmd == nil {
		t.Fatalf("expected follow-up commands")
	}

	loaded, _ := model.Update(rosterLoadedMsg{out: dto.RosterOutput{Metrics: dto.Metrics{PresentCount: 7}}})
	if loaded.(Model).snapshot.Metrics.PresentCount != 7 {
		t.Fatalf("snapshot not applied")
	}
}

func TestToastExpiresOnlyForLatest(t *testing.T) {
	t.Parallel()
	m := NewModel(newFakePort())
	m.toast("first")
	m.toast("second")

	next, _ := m.Update(toastExpiredMsg{seq: 1})
	if next.(Model).status != "second" {
		t.Fatalf("stale expiry must not clear newer toast")
	}
	next, _ = next.Update(toastExpiredMsg{seq: 2})
	if next.(Model).status != "ready" {
		t.Fatalf("expected status reset, got %q", next.(Model).status)
	}
}

func TestPaletteEnrollRunsCommand(t *testing.T) {
	t.Parallel()
	port := newFakePort()
	m := NewModel(port)

	_, cmd := m.Update(components.PaletteSubmitMsg{Input: "enroll Maria Clara"})
	if cmd == nil {
		t.Fatalf("expected enroll command")
	}
	if _, ok := cmd().(enrolledMsg); !ok {
		t.Fatalf("expected enrolledMsg")
	}
	if len(port.enrolled) != 1 || port.enrolled[0] != "Maria Clara" {
		t.Fatalf("unexpected enrollments: %v", port.enrolled)
	}
}

func TestQuitCancelsSubscription(t *testing.T) {
	t.Parallel()
	port := newFakePort()
	m := NewModel(port)
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	if cmd == nil || !port.cancelled {
		t.Fatalf("expected quit to cancel the subscription")
	}
}

func TestToastForIgnoresTicks(t *testing.T) {
	t.Parallel()
	if _, ok := toastFor(dto.Event{Type: "tick"}); ok {
		t.Fatalf("ticks must not toast")
	}
	if text, ok := toastFor(dto.Event{Type: "session_ended", Metrics: dto.Metrics{AttendanceRatePercent: 75}}); !ok || text != "session ended with 75% attendance" {
		t.Fatalf("unexpected session toast: %q", text)
	}
}
