// Package governor bounds in-flight requests globally and per host.
// Callers acquire the global permit first, then the host permit, and
// release in reverse order; backoff sleeps are taken while holding the
// host permit so retries stay polite.
package governor

import (
	"context"
	"sync"

	"golang.org/x/sync/semaphore"
	"golang.org/x/time/rate"
)

// Governor hands out permits. The zero value is unusable; call New.
type Governor struct {
	global  *semaphore.Weighted
	perHost int64

	mu    sync.Mutex
	hosts map[string]*semaphore.Weighted

	limiter *rate.Limiter // optional global pacing, nil = unlimited
}

// New builds a governor with the given global and per-host bounds.
// requestsPerSecond <= 0 disables pacing.
func New(maxConcurrency, maxPerHost int, requestsPerSecond float64) *Governor {
	g := &Governor{
		global:  semaphore.NewWeighted(int64(maxConcurrency)),
		perHost: int64(maxPerHost),
		hosts:   make(map[string]*semaphore.Weighted),
	}
	if requestsPerSecond > 0 {
		g.limiter = rate.NewLimiter(rate.Limit(requestsPerSecond), 1)
	}
	return g
}

// hostLane returns the semaphore for host, creating it on first use.
// Hosts without a name share the default lane.
func (g *Governor) hostLane(host string) *semaphore.Weighted {
	if host == "" {
		host = "<default>"
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	lane, ok := g.hosts[host]
	if !ok {
		lane = semaphore.NewWeighted(g.perHost)
		g.hosts[host] = lane
	}
	return lane
}

// Permit is a held acquisition; Release must be called exactly once.
type Permit struct {
	g    *Governor
	lane *semaphore.Weighted
}

// Acquire blocks until both the global and the host permit are
// available, or ctx is done.
func (g *Governor) Acquire(ctx context.Context, host string) (*Permit, error) {
	if g.limiter != nil {
		if err := g.limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}
	if err := g.global.Acquire(ctx, 1); err != nil {
		return nil, err
	}
	lane := g.hostLane(host)
	if err := lane.Acquire(ctx, 1); err != nil {
		g.global.Release(1)
		return nil, err
	}
	return &Permit{g: g, lane: lane}, nil
}

// Release returns the permits in reverse acquisition order.
func (p *Permit) Release() {
	if p.lane == nil {
		return
	}
	p.lane.Release(1)
	p.g.global.Release(1)
	p.lane = nil
}
