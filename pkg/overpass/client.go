// Package overpass queries the Overpass API for POIs and named highways
// around a district centroid.
package overpass

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/streetsignal/streetsignal/internal/model"
	"github.com/streetsignal/streetsignal/internal/ratelimit"
	"github.com/streetsignal/streetsignal/internal/resilience"
)

// Gateway issues the two query kinds the pipeline needs.
type Gateway interface {
	// FetchPOIs returns commercial POIs matching the filters within
	// radiusM of center.
	FetchPOIs(ctx context.Context, center model.Coordinate, radiusM int, filters model.Filters) ([]model.POI, error)

	// FetchStreets returns all named highway ways within radiusM of center.
	FetchStreets(ctx context.Context, center model.Coordinate, radiusM int) ([]model.Street, error)
}

// Option configures the client.
type Option func(*client)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *client) { c.httpClient = hc }
}

// WithBaseURL overrides the Overpass interpreter endpoint.
func WithBaseURL(u string) Option {
	return func(c *client) {
		if u != "" {
			c.baseURL = u
		}
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(c *client) { c.userAgent = ua }
}

// WithRetryPolicy sets the retry policy for queries.
func WithRetryPolicy(p resilience.Policy) Option {
	return func(c *client) { c.retry = p }
}

type client struct {
	httpClient *http.Client
	limiter    *ratelimit.Registry
	retry      resilience.Policy
	baseURL    string
	userAgent  string
}

// New creates a Gateway throttled by limiter. Overpass queries can run for
// minutes, so the default HTTP timeout is generous.
func New(limiter *ratelimit.Registry, opts ...Option) Gateway {
	c := &client{
		httpClient: &http.Client{Timeout: 240 * time.Second},
		limiter:    limiter,
		retry:      resilience.DefaultPolicy(),
		baseURL:    "https://overpass-api.de/api/interpreter",
		userAgent:  "StreetSignal/1.0",
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *client) FetchPOIs(ctx context.Context, center model.Coordinate, radiusM int, filters model.Filters) ([]model.POI, error) {
	raw, err := c.query(ctx, BuildPOIQuery(center, radiusM, filters), "pois")
	if err != nil {
		return nil, err
	}
	pois := parsePOIs(raw.Elements)
	zap.L().Debug("overpass pois fetched", zap.Int("elements", len(raw.Elements)), zap.Int("pois", len(pois)))
	return pois, nil
}

func (c *client) FetchStreets(ctx context.Context, center model.Coordinate, radiusM int) ([]model.Street, error) {
	raw, err := c.query(ctx, BuildStreetQuery(center, radiusM), "streets")
	if err != nil {
		return nil, err
	}
	streets := parseStreets(raw.Elements)
	zap.L().Debug("overpass streets fetched", zap.Int("elements", len(raw.Elements)), zap.Int("streets", len(streets)))
	return streets, nil
}

// query executes one Overpass QL query with rate limiting and retry. The
// token is re-acquired inside every attempt.
func (c *client) query(ctx context.Context, q, operation string) (*response, error) {
	return resilience.Do(ctx, c.retry, ratelimit.Overpass, operation,
		func(ctx context.Context) (*response, error) {
			if err := c.limiter.Wait(ctx, ratelimit.Overpass); err != nil {
				return nil, err
			}
			return c.post(ctx, q)
		})
}

func (c *client) post(ctx context.Context, q string) (*response, error) {
	form := url.Values{"data": {q}}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL,
		strings.NewReader(form.Encode()))
	if err != nil {
		return nil, eris.Wrap(err, "overpass: build request")
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, eris.Wrap(err, "overpass: request")
	}
	defer resp.Body.Close() //nolint:errcheck

	if resilience.IsTransientHTTPStatus(resp.StatusCode) {
		return nil, resilience.MarkTransient(
			eris.Errorf("overpass: returned status %d", resp.StatusCode), resp.StatusCode)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, eris.Errorf("overpass: returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, eris.Wrap(err, "overpass: read body")
	}

	var out response
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, eris.Wrap(err, "overpass: parse response")
	}
	return &out, nil
}
