package service

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"

	hclog "github.com/hashicorp/go-hclog"

	"faceclass/internal/modules/attendance/domain"
	attendanceout "faceclass/internal/modules/attendance/port/out"
	apperrors "faceclass/internal/platform/errors"
)

// ScanPipeline admits one scan at a time. A submit that arrives while
// another scan is resolving is rejected as busy, never queued.
type ScanPipeline struct {
	busy     atomic.Bool
	resolver attendanceout.IdentityResolver
	roster   *RosterStore
	clock    *SessionClock
	logger   hclog.Logger
}

func NewScanPipeline(resolver attendanceout.IdentityResolver, roster *RosterStore, clock *SessionClock, logger hclog.Logger) *ScanPipeline {
	return &ScanPipeline{resolver: resolver, roster: roster, clock: clock, logger: logger}
}

func (p *ScanPipeline) Busy() bool {
	return p.busy.Load()
}

func (p *ScanPipeline) Submit(ctx context.Context, candidate domain.ScanCandidate) (domain.ScanOutcome, error) {
	candidate, ok := candidate.Normalized()
	if !ok {
		return domain.ScanOutcome{}, apperrors.ErrInvalidCandidate
	}
	if p.clock.Ended() {
		return domain.ScanOutcome{}, apperrors.ErrSessionEnded
	}
	if !p.busy.CompareAndSwap(false, true) {
		p.logger.Debug("scan rejected, pipeline busy", "identity", candidate.Identity)
		return domain.ScanOutcome{Busy: true}, apperrors.ErrPipelineBusy
	}
	defer p.busy.Store(false)

	if candidate.Timestamp.IsZero() {
		candidate.Timestamp = p.clock.Now()
	}
	identity, err := p.resolver.Resolve(ctx, candidate)
	if err != nil {
		return domain.ScanOutcome{}, fmt.Errorf("resolve %q: %w", candidate.Identity, err)
	}
	if strings.TrimSpace(identity.DisplayName) == "" {
		identity.DisplayName = candidate.Identity
	}

	result, err := p.roster.UpsertScan(identity, candidate.Timestamp)
	if err != nil {
		return domain.ScanOutcome{}, err
	}
	outcome := domain.ScanOutcome{Accepted: result.Transitioned, Duplicate: !result.Transitioned, Record: result.Record}
	p.logger.Debug("scan processed", "student", result.Record.DisplayName, "accepted", outcome.Accepted, "created", result.Created)
	return outcome, nil
}
