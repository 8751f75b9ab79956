package main

import (
	"context"
	"net/http"
	"time"

	"github.com/rotisserie/eris"

	"github.com/streetsignal/streetsignal/internal/analyze"
	"github.com/streetsignal/streetsignal/internal/config"
	"github.com/streetsignal/streetsignal/internal/job"
	"github.com/streetsignal/streetsignal/internal/model"
	"github.com/streetsignal/streetsignal/internal/ratelimit"
	"github.com/streetsignal/streetsignal/internal/resilience"
	"github.com/streetsignal/streetsignal/pkg/geocode"
	"github.com/streetsignal/streetsignal/pkg/overpass"
)

// app wires the pipeline components from configuration.
type app struct {
	cache      geocode.Cache
	resolver   geocode.Resolver
	gateway    overpass.Gateway
	controller *job.Controller
}

func initApp(ctx context.Context) (*app, error) {
	cache, err := openCache(ctx, cfg.Cache)
	if err != nil {
		return nil, err
	}

	limiter := ratelimit.FromMillis(cfg.RateLimitMS)
	retry := resilience.FromConfig(
		cfg.Retry.MaxAttempts,
		cfg.Retry.InitialBackoffMs,
		cfg.Retry.MaxBackoffMs,
		cfg.Retry.Multiplier,
		cfg.Retry.JitterFraction,
	)

	resolver := geocode.NewResolver(cache, limiter,
		geocode.WithBaseURLs(cfg.Geocode.PostcodesIOBaseURL, cfg.Geocode.NominatimBaseURL),
		geocode.WithUserAgent(cfg.UserAgent),
		geocode.WithRegion(cfg.Geocode.Region),
		geocode.WithRetryPolicy(retry),
		geocode.WithHTTPClient(&http.Client{Timeout: time.Duration(cfg.Geocode.TimeoutSecs) * time.Second}),
	)

	gateway := overpass.New(limiter,
		overpass.WithBaseURL(cfg.Overpass.BaseURL),
		overpass.WithUserAgent(cfg.UserAgent),
		overpass.WithRetryPolicy(retry),
		overpass.WithHTTPClient(&http.Client{Timeout: time.Duration(cfg.Overpass.TimeoutSecs) * time.Second}),
	)

	processor := analyze.NewProcessor(resolver, gateway)

	return &app{
		cache:      cache,
		resolver:   resolver,
		gateway:    gateway,
		controller: job.NewController(processor),
	}, nil
}

func (a *app) Close() {
	_ = a.cache.Close()
}

func openCache(ctx context.Context, c config.CacheConfig) (geocode.Cache, error) {
	switch c.Driver {
	case "", "sqlite":
		return geocode.NewSQLiteCache(c.Path)
	case "postgres":
		return geocode.NewPostgresCache(ctx, c.DatabaseURL)
	default:
		return nil, eris.Errorf("unknown cache driver %q", c.Driver)
	}
}

// buildParams merges defaults, a preset and custom filters into job params.
func buildParams(preset string, custom model.Filters, radiusM int, maxAssignM float64, topN int) model.Params {
	p := model.Params{
		RadiusM:    cfg.Analysis.RadiusM,
		MaxAssignM: cfg.Analysis.MaxAssignM,
		TopN:       cfg.Analysis.TopN,
		Filters:    config.ResolveFilters(preset, custom),
	}
	if radiusM > 0 {
		p.RadiusM = radiusM
	}
	if maxAssignM > 0 {
		p.MaxAssignM = maxAssignM
	}
	if topN > 0 {
		p.TopN = topN
	}
	return p
}
