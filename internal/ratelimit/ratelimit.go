// Package ratelimit serializes requests to external services with
// per-service token buckets.
package ratelimit

import (
	"context"
	"time"

	"github.com/rotisserie/eris"
	"golang.org/x/time/rate"
)

// Service names for the external dependencies.
const (
	PostcodesIO = "postcodesio"
	Nominatim   = "nominatim"
	Overpass    = "overpass"
)

// Registry holds one limiter per external service. Each limiter has burst 1
// and a fixed refill interval, so at most one request per interval is
// admitted and waiting callers are served in arrival order.
type Registry struct {
	limiters map[string]*rate.Limiter
}

// New builds a Registry from a service -> minimum-interval mapping.
func New(intervals map[string]time.Duration) *Registry {
	limiters := make(map[string]*rate.Limiter, len(intervals))
	for svc, interval := range intervals {
		if interval <= 0 {
			limiters[svc] = rate.NewLimiter(rate.Inf, 1)
			continue
		}
		limiters[svc] = rate.NewLimiter(rate.Every(interval), 1)
	}
	return &Registry{limiters: limiters}
}

// FromMillis builds a Registry from config intervals in milliseconds.
func FromMillis(ms map[string]int) *Registry {
	intervals := make(map[string]time.Duration, len(ms))
	for svc, v := range ms {
		intervals[svc] = time.Duration(v) * time.Millisecond
	}
	return &Registry{limiters: New(intervals).limiters}
}

// Wait blocks until the named service's limiter grants a token or ctx is
// cancelled. Unknown services are not throttled.
func (r *Registry) Wait(ctx context.Context, service string) error {
	lim, ok := r.limiters[service]
	if !ok {
		return nil
	}
	if err := lim.Wait(ctx); err != nil {
		return eris.Wrapf(err, "ratelimit: wait %s", service)
	}
	return nil
}
