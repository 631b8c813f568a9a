package service

import (
	"context"
	"errors"
	"sync"
	"time"

	hclog "github.com/hashicorp/go-hclog"

	"faceclass/internal/modules/attendance/domain"
	"faceclass/internal/platform/clock"
	apperrors "faceclass/internal/platform/errors"
)

const DefaultTickInterval = time.Second

// SessionClock derives elapsed time and progress for the session. Readings
// never move backwards: a wall clock that steps back is held at the latest
// instant already observed. After End the clock is frozen.
type SessionClock struct {
	clock    clock.Clock
	start    time.Time
	planned  float64
	interval time.Duration
	timeline *Timeline
	logger   hclog.Logger

	mu        sync.Mutex
	highWater time.Time
	ended     bool
	stop      chan struct{}
}

func NewSessionClock(clk clock.Clock, session domain.Session, interval time.Duration, timeline *Timeline, logger hclog.Logger) *SessionClock {
	if interval <= 0 {
		interval = DefaultTickInterval
	}
	return &SessionClock{
		clock:     clk,
		start:     session.StartTime,
		planned:   session.PlannedDurationMinutes,
		interval:  interval,
		timeline:  timeline,
		logger:    logger,
		highWater: session.StartTime,
		stop:      make(chan struct{}),
	}
}

func (c *SessionClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.observe()
}

func (c *SessionClock) ElapsedMinutes() float64 {
	return domain.ElapsedMinutes(c.start, c.Now())
}

func (c *SessionClock) ProgressPercent() float64 {
	return domain.ProgressPercent(c.ElapsedMinutes(), c.planned)
}

func (c *SessionClock) Ended() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ended
}

func (c *SessionClock) Snapshot() domain.ClockSnapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	at := c.observe()
	elapsed := domain.ElapsedMinutes(c.start, at)
	return domain.ClockSnapshot{
		At:              at,
		ElapsedMinutes:  elapsed,
		ProgressPercent: domain.ProgressPercent(elapsed, c.planned),
		Ended:           c.ended,
	}
}

// Tick recomputes the projection and notifies subscribers.
func (c *SessionClock) Tick() error {
	return c.timeline.apply(func() (*domain.Event, error) {
		return &domain.Event{Type: domain.EventTick, At: c.Now()}, nil
	})
}

// Run ticks on the configured cadence until ctx is done or the session ends.
func (c *SessionClock) Run(ctx context.Context) error {
	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-c.stop:
			return nil
		case <-ticker.C:
			if err := c.Tick(); err != nil {
				if errors.Is(err, apperrors.ErrSessionEnded) {
					return nil
				}
				c.logger.Warn("tick failed", "error", err)
			}
		}
	}
}

// End freezes the clock at the current instant and stops Run.
func (c *SessionClock) End() (domain.ClockSnapshot, error) {
	err := c.timeline.seal(func() (*domain.Event, error) {
		c.mu.Lock()
		at := c.observe()
		c.ended = true
		close(c.stop)
		c.mu.Unlock()
		return &domain.Event{Type: domain.EventSessionEnded, At: at}, nil
	})
	if err != nil {
		return domain.ClockSnapshot{}, err
	}
	c.logger.Info("session ended", "elapsed_min", c.ElapsedMinutes())
	return c.Snapshot(), nil
}

func (c *SessionClock) observe() time.Time {
	if c.ended {
		return c.highWater
	}
	if now := c.clock.Now(); now.After(c.highWater) {
		c.highWater = now
	}
	return c.highWater
}
