// Package resilience provides bounded retry with exponential backoff and
// jitter for calls to external services.
package resilience

import (
	"context"
	"math"
	"math/rand/v2"
	"time"

	"go.uber.org/zap"
)

// Policy controls retry behavior. The zero value is usable: every field
// falls back to its default.
type Policy struct {
	// MaxAttempts is the total attempt budget including the first try.
	// Default: 3.
	MaxAttempts int

	// InitialBackoff is the base delay unit; the wait before retry n is
	// InitialBackoff * Multiplier^n, capped at MaxBackoff. Default: 2s.
	InitialBackoff time.Duration

	// MaxBackoff caps any single wait. Default: 30s.
	MaxBackoff time.Duration

	// Multiplier scales the backoff per retry. Default: 2.0.
	Multiplier float64

	// JitterFraction adds uniform random jitter of ±fraction of the
	// computed delay. Default: 0.25.
	JitterFraction float64
}

// DefaultPolicy returns the retry policy used for external API calls.
func DefaultPolicy() Policy {
	return Policy{
		MaxAttempts:    3,
		InitialBackoff: 2 * time.Second,
		MaxBackoff:     30 * time.Second,
		Multiplier:     2.0,
		JitterFraction: 0.25,
	}
}

// FromConfig builds a Policy from raw config values, keeping defaults for
// unset fields.
func FromConfig(maxAttempts, initialBackoffMs, maxBackoffMs int, multiplier, jitterFraction float64) Policy {
	p := DefaultPolicy()
	if maxAttempts > 0 {
		p.MaxAttempts = maxAttempts
	}
	if initialBackoffMs > 0 {
		p.InitialBackoff = time.Duration(initialBackoffMs) * time.Millisecond
	}
	if maxBackoffMs > 0 {
		p.MaxBackoff = time.Duration(maxBackoffMs) * time.Millisecond
	}
	if multiplier > 0 {
		p.Multiplier = multiplier
	}
	if jitterFraction >= 0 {
		p.JitterFraction = jitterFraction
	}
	return p
}

func (p Policy) withDefaults() Policy {
	d := DefaultPolicy()
	if p.MaxAttempts <= 0 {
		p.MaxAttempts = d.MaxAttempts
	}
	if p.InitialBackoff <= 0 {
		p.InitialBackoff = d.InitialBackoff
	}
	if p.MaxBackoff <= 0 {
		p.MaxBackoff = d.MaxBackoff
	}
	if p.Multiplier <= 0 {
		p.Multiplier = d.Multiplier
	}
	if p.JitterFraction < 0 {
		p.JitterFraction = 0
	}
	return p
}

// Do executes fn until it succeeds, returns a non-transient error, the
// attempt budget is exhausted, or ctx is cancelled. Each attempt is expected
// to perform its own rate-limit acquisition inside fn. Every retry is logged
// with the service/operation pair for diagnostics.
func Do[T any](ctx context.Context, p Policy, service, operation string, fn func(ctx context.Context) (T, error)) (T, error) {
	p = p.withDefaults()

	var zero T
	var lastErr error
	for attempt := 1; attempt <= p.MaxAttempts; attempt++ {
		val, err := fn(ctx)
		if err == nil {
			return val, nil
		}
		lastErr = err

		if ctx.Err() != nil {
			return zero, lastErr
		}
		if !IsTransient(err) {
			return zero, lastErr
		}
		if attempt == p.MaxAttempts {
			break
		}

		delay := p.backoff(attempt)
		zap.L().Warn("retrying external call",
			zap.String("service", service),
			zap.String("operation", operation),
			zap.Int("attempt", attempt),
			zap.Duration("backoff", delay),
			zap.Error(err),
		)

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return zero, lastErr
		case <-timer.C:
		}
	}

	return zero, lastErr
}

func (p Policy) backoff(attempt int) time.Duration {
	delay := float64(p.InitialBackoff) * math.Pow(p.Multiplier, float64(attempt))
	if delay > float64(p.MaxBackoff) {
		delay = float64(p.MaxBackoff)
	}

	if p.JitterFraction > 0 {
		jitterRange := delay * p.JitterFraction
		delay += (rand.Float64()*2 - 1) * jitterRange
	}

	if delay < 0 {
		delay = 0
	}
	return time.Duration(delay)
}
