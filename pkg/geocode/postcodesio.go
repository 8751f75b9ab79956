package geocode

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"

	"github.com/rotisserie/eris"

	"github.com/streetsignal/streetsignal/internal/model"
	"github.com/streetsignal/streetsignal/internal/ratelimit"
	"github.com/streetsignal/streetsignal/internal/resilience"
)

// outcodeResponse is the postcodes.io /outcodes/{outcode} payload.
type outcodeResponse struct {
	Status int `json:"status"`
	Result *struct {
		Latitude  *float64 `json:"latitude"`
		Longitude *float64 `json:"longitude"`
	} `json:"result"`
}

// lookupOutcode resolves a district via the postcodes.io outcode endpoint,
// which serves precomputed centroids for UK postcode districts.
func (r *resolver) lookupOutcode(ctx context.Context, district string) (model.Coordinate, error) {
	if err := r.limiter.Wait(ctx, ratelimit.PostcodesIO); err != nil {
		return model.Coordinate{}, err
	}

	reqURL := r.postcodesIOBase + "/outcodes/" + url.PathEscape(district)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return model.Coordinate{}, eris.Wrap(err, "geocode: postcodes.io build request")
	}
	req.Header.Set("User-Agent", r.userAgent)

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return model.Coordinate{}, eris.Wrap(err, "geocode: postcodes.io request")
	}
	defer resp.Body.Close() //nolint:errcheck

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return model.Coordinate{}, ErrNotFound
	case resilience.IsTransientHTTPStatus(resp.StatusCode):
		return model.Coordinate{}, resilience.MarkTransient(
			eris.Errorf("geocode: postcodes.io returned status %d", resp.StatusCode), resp.StatusCode)
	case resp.StatusCode != http.StatusOK:
		return model.Coordinate{}, eris.Errorf("geocode: postcodes.io returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return model.Coordinate{}, eris.Wrap(err, "geocode: postcodes.io read body")
	}

	var out outcodeResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return model.Coordinate{}, eris.Wrap(err, "geocode: postcodes.io parse response")
	}

	// Some sparsely populated outcodes exist but carry null coordinates.
	if out.Status != http.StatusOK || out.Result == nil ||
		out.Result.Latitude == nil || out.Result.Longitude == nil {
		return model.Coordinate{}, ErrNotFound
	}

	return model.Coordinate{Lat: *out.Result.Latitude, Lon: *out.Result.Longitude}, nil
}
