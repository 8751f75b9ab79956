package geocode

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/streetsignal/streetsignal/internal/model"
	"github.com/streetsignal/streetsignal/internal/ratelimit"
	"github.com/streetsignal/streetsignal/internal/resilience"
)

// nominatimResult is one entry of the Nominatim jsonv2 search response.
type nominatimResult struct {
	Lat     string `json:"lat"`
	Lon     string `json:"lon"`
	Address struct {
		Postcode string `json:"postcode"`
	} `json:"address"`
}

// searchNominatim resolves a district via Nominatim free-text search.
// Results whose postcode is an exact prefix match for the district
// (e.g. "E1 6RH" for "E1") are averaged into a centroid; without exact
// matches the first result wins.
func (r *resolver) searchNominatim(ctx context.Context, district string) (model.Coordinate, error) {
	if err := r.limiter.Wait(ctx, ratelimit.Nominatim); err != nil {
		return model.Coordinate{}, err
	}

	params := url.Values{
		"q":              {district + ", " + r.region},
		"format":         {"jsonv2"},
		"limit":          {"10"},
		"addressdetails": {"1"},
	}
	reqURL := r.nominatimBase + "/search?" + params.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return model.Coordinate{}, eris.Wrap(err, "geocode: nominatim build request")
	}
	req.Header.Set("User-Agent", r.userAgent)

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return model.Coordinate{}, eris.Wrap(err, "geocode: nominatim request")
	}
	defer resp.Body.Close() //nolint:errcheck

	if resilience.IsTransientHTTPStatus(resp.StatusCode) {
		return model.Coordinate{}, resilience.MarkTransient(
			eris.Errorf("geocode: nominatim returned status %d", resp.StatusCode), resp.StatusCode)
	}
	if resp.StatusCode != http.StatusOK {
		return model.Coordinate{}, eris.Errorf("geocode: nominatim returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return model.Coordinate{}, eris.Wrap(err, "geocode: nominatim read body")
	}

	var results []nominatimResult
	if err := json.Unmarshal(body, &results); err != nil {
		return model.Coordinate{}, eris.Wrap(err, "geocode: nominatim parse response")
	}
	if len(results) == 0 {
		return model.Coordinate{}, ErrNotFound
	}

	var exact []model.Coordinate
	for _, res := range results {
		postcode := strings.ToUpper(res.Address.Postcode)
		if !strings.HasPrefix(postcode, district+" ") {
			continue
		}
		coord, convErr := parseCoordinate(res.Lat, res.Lon)
		if convErr != nil {
			continue
		}
		exact = append(exact, coord)
	}

	if len(exact) > 0 {
		var sum model.Coordinate
		for _, c := range exact {
			sum.Lat += c.Lat
			sum.Lon += c.Lon
		}
		n := float64(len(exact))
		return model.Coordinate{Lat: sum.Lat / n, Lon: sum.Lon / n}, nil
	}

	coord, err := parseCoordinate(results[0].Lat, results[0].Lon)
	if err != nil {
		return model.Coordinate{}, eris.Wrap(err, "geocode: nominatim parse coordinates")
	}
	return coord, nil
}

func parseCoordinate(lat, lon string) (model.Coordinate, error) {
	la, err := strconv.ParseFloat(lat, 64)
	if err != nil {
		return model.Coordinate{}, err
	}
	lo, err := strconv.ParseFloat(lon, 64)
	if err != nil {
		return model.Coordinate{}, err
	}
	return model.Coordinate{Lat: la, Lon: lo}, nil
}
