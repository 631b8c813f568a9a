package service

import (
	"slices"
	"sync"
	"sync/atomic"

	"faceclass/internal/modules/attendance/domain"
	attendanceout "faceclass/internal/modules/attendance/port/out"
	apperrors "faceclass/internal/platform/errors"
)

type NotifierFunc func(domain.Event)

func (f NotifierFunc) Notify(event domain.Event) {
	f(event)
}

type subscriber struct {
	id       uint64
	notifier attendanceout.Notifier
}

type mutation func() (*domain.Event, error)

// Timeline serializes engine mutations. A step applies one change and hands
// its event to every subscriber, in subscription order, before the next step
// starts. Subscribers run while the step is held and must not mutate.
type Timeline struct {
	step    sync.Mutex
	subs    []subscriber
	nextID  uint64
	ended   atomic.Bool
	project func() domain.MetricsSnapshot
}

func NewTimeline() *Timeline {
	return &Timeline{}
}

func (t *Timeline) Subscribe(notifier attendanceout.Notifier) func() {
	t.step.Lock()
	defer t.step.Unlock()
	t.nextID++
	id := t.nextID
	t.subs = append(t.subs, subscriber{id: id, notifier: notifier})
	var once sync.Once
	return func() {
		once.Do(func() {
			t.step.Lock()
			defer t.step.Unlock()
			t.subs = slices.DeleteFunc(t.subs, func(s subscriber) bool { return s.id == id })
		})
	}
}

func (t *Timeline) Ended() bool {
	return t.ended.Load()
}

func (t *Timeline) apply(m mutation) error {
	t.step.Lock()
	defer t.step.Unlock()
	if t.ended.Load() {
		return apperrors.ErrSessionEnded
	}
	event, err := m()
	if err != nil || event == nil {
		return err
	}
	t.publish(*event)
	return nil
}

// seal runs the final step. Every later step fails with ErrSessionEnded.
func (t *Timeline) seal(m mutation) error {
	t.step.Lock()
	defer t.step.Unlock()
	if t.ended.Load() {
		return apperrors.ErrSessionEnded
	}
	event, err := m()
	if err != nil {
		return err
	}
	t.ended.Store(true)
	if event != nil {
		t.publish(*event)
	}
	return nil
}

func (t *Timeline) publish(event domain.Event) {
	if t.project != nil {
		event.Metrics = t.project()
	}
	for _, s := range t.subs {
		s.notifier.Notify(event)
	}
}
