// Package geocode resolves postal districts to centroid coordinates via
// postcodes.io (primary) and Nominatim (fallback), with a durable
// write-once cache in front of both.
package geocode

import (
	"context"
	"net/http"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/streetsignal/streetsignal/internal/model"
	"github.com/streetsignal/streetsignal/internal/ratelimit"
	"github.com/streetsignal/streetsignal/internal/resilience"
)

// ErrNotFound indicates the district could not be located by any provider.
var ErrNotFound = eris.New("geocode: district not found")

// Resolver resolves a district code to its centroid coordinate.
type Resolver interface {
	Resolve(ctx context.Context, district string) (model.Coordinate, error)
}

// Option configures the resolver.
type Option func(*resolver)

// WithHTTPClient sets a custom HTTP client for both providers.
func WithHTTPClient(hc *http.Client) Option {
	return func(r *resolver) { r.httpClient = hc }
}

// WithBaseURLs overrides the provider endpoints (used by config and tests).
func WithBaseURLs(postcodesIO, nominatim string) Option {
	return func(r *resolver) {
		if postcodesIO != "" {
			r.postcodesIOBase = postcodesIO
		}
		if nominatim != "" {
			r.nominatimBase = nominatim
		}
	}
}

// WithUserAgent sets the User-Agent header. Nominatim requires an
// identifying agent.
func WithUserAgent(ua string) Option {
	return func(r *resolver) { r.userAgent = ua }
}

// WithRegion sets the region suffix for Nominatim fallback queries.
func WithRegion(region string) Option {
	return func(r *resolver) { r.region = region }
}

// WithRetryPolicy sets the retry policy for provider calls.
func WithRetryPolicy(p resilience.Policy) Option {
	return func(r *resolver) { r.retry = p }
}

type resolver struct {
	cache      Cache
	limiter    *ratelimit.Registry
	httpClient *http.Client
	retry      resilience.Policy

	postcodesIOBase string
	nominatimBase   string
	userAgent       string
	region          string

	sf singleflight.Group
}

// NewResolver creates a Resolver backed by cache and throttled by limiter.
func NewResolver(cache Cache, limiter *ratelimit.Registry, opts ...Option) Resolver {
	r := &resolver{
		cache:           cache,
		limiter:         limiter,
		httpClient:      &http.Client{Timeout: 10 * time.Second},
		retry:           resilience.DefaultPolicy(),
		postcodesIOBase: "https://api.postcodes.io",
		nominatimBase:   "https://nominatim.openstreetmap.org",
		userAgent:       "StreetSignal/1.0",
		region:          "London, UK",
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve returns the district centroid. Cache hits return immediately with
// no external call and no rate-limit consumption. Concurrent misses for the
// same district are collapsed into one provider lookup.
func (r *resolver) Resolve(ctx context.Context, district string) (model.Coordinate, error) {
	district = model.NormalizeDistrict(district)
	if district == "" {
		return model.Coordinate{}, eris.New("geocode: empty district")
	}

	coord, ok, err := r.cache.Get(ctx, district)
	if err != nil {
		zap.L().Warn("geocode cache lookup failed", zap.String("district", district), zap.Error(err))
	} else if ok {
		zap.L().Debug("geocode cache hit", zap.String("district", district))
		return coord, nil
	}

	v, err, _ := r.sf.Do(district, func() (any, error) {
		c, lookupErr := r.lookup(ctx, district)
		if lookupErr != nil {
			return nil, lookupErr
		}
		// Synchronous write-once cache store; the coordinate is still
		// returned if persistence fails, the next resolve re-queries.
		if putErr := r.cache.Put(ctx, district, c); putErr != nil {
			zap.L().Warn("geocode cache store failed", zap.String("district", district), zap.Error(putErr))
		}
		return c, nil
	})
	if err != nil {
		return model.Coordinate{}, err
	}
	return v.(model.Coordinate), nil
}

// lookup queries postcodes.io first (precomputed outcode centroids), then
// falls back to a Nominatim search.
func (r *resolver) lookup(ctx context.Context, district string) (model.Coordinate, error) {
	coord, err := resilience.Do(ctx, r.retry, ratelimit.PostcodesIO, "outcode",
		func(ctx context.Context) (model.Coordinate, error) {
			return r.lookupOutcode(ctx, district)
		})
	if err == nil {
		return coord, nil
	}
	if ctx.Err() != nil {
		return model.Coordinate{}, err
	}

	zap.L().Debug("postcodes.io lookup failed, falling back to nominatim",
		zap.String("district", district), zap.Error(err))

	return resilience.Do(ctx, r.retry, ratelimit.Nominatim, "search",
		func(ctx context.Context) (model.Coordinate, error) {
			return r.searchNominatim(ctx, district)
		})
}
