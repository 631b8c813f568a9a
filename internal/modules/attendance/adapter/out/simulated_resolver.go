package out

import (
	"context"
	"fmt"
	"math/rand/v2"
	"sync"
	"time"

	"faceclass/internal/modules/attendance/domain"
	"faceclass/internal/platform/clock"
)

const DefaultScanLatency = 2500 * time.Millisecond

// SimulatedResolver stands in for a recognition device: it waits for the
// configured latency and then trusts the candidate name as is.
type SimulatedResolver struct {
	latency time.Duration
}

func NewSimulatedResolver(latency time.Duration) SimulatedResolver {
	if latency < 0 {
		latency = 0
	}
	return SimulatedResolver{latency: latency}
}

func (r SimulatedResolver) Resolve(ctx context.Context, candidate domain.ScanCandidate) (domain.Identity, error) {
	if r.latency > 0 {
		timer := time.NewTimer(r.latency)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return domain.Identity{}, ctx.Err()
		case <-timer.C:
		}
	}
	return domain.Identity{DisplayName: candidate.Identity, Confidence: 1}, nil
}

// RandomCandidates picks a name from a fixed list, the way the demo scanner
// "recognizes" whoever steps in front of it.
type RandomCandidates struct {
	mu    sync.Mutex
	names []string
	rng   *rand.Rand
	clock clock.Clock
}

func NewRandomCandidates(names []string, seed uint64, clk clock.Clock) *RandomCandidates {
	return &RandomCandidates{
		names: append([]string(nil), names...),
		rng:   rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
		clock: clk,
	}
}

func (c *RandomCandidates) Next(_ context.Context) (domain.ScanCandidate, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.names) == 0 {
		return domain.ScanCandidate{}, fmt.Errorf("no candidate names configured")
	}
	name := c.names[c.rng.IntN(len(c.names))]
	return domain.ScanCandidate{Identity: name, Timestamp: c.clock.Now()}, nil
}
