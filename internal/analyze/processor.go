package analyze

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/streetsignal/streetsignal/internal/model"
	"github.com/streetsignal/streetsignal/pkg/geocode"
	"github.com/streetsignal/streetsignal/pkg/overpass"
)

// Processor runs the full pipeline for one district: geocode, fetch POIs,
// fetch streets, attribute, rank. Every failure, including panics, is
// absorbed into a failed Result so the
// surrounding job always makes progress.
type Processor struct {
	resolver geocode.Resolver
	gateway  overpass.Gateway
}

// NewProcessor creates a Processor.
func NewProcessor(resolver geocode.Resolver, gateway overpass.Gateway) *Processor {
	return &Processor{resolver: resolver, gateway: gateway}
}

// Process analyzes one district. It never returns an error; failures are
// reported through the Result.
func (p *Processor) Process(ctx context.Context, district string, params model.Params) (result model.Result) {
	district = model.NormalizeDistrict(district)
	log := zap.L().With(zap.String("district", district))

	defer func() {
		if r := recover(); r != nil {
			log.Error("district processing panicked", zap.Any("panic", r))
			result = failedResult(district, fmt.Sprintf("internal error: %v", r))
		}
	}()

	coord, err := p.resolver.Resolve(ctx, district)
	if err != nil {
		log.Warn("geocode failed", zap.Error(err))
		return failedResult(district, "could not geocode district: "+err.Error())
	}

	pois, err := p.gateway.FetchPOIs(ctx, coord, params.RadiusM, params.Filters)
	if err != nil {
		log.Warn("poi fetch failed", zap.Error(err))
		return failedResult(district, "poi query failed: "+err.Error())
	}
	pois = filterByPostcode(district, pois)

	if len(pois) == 0 {
		log.Info("no pois found")
		return model.Result{District: district, Success: true, Top: []model.StreetCount{}}
	}

	streets, err := p.gateway.FetchStreets(ctx, coord, params.RadiusM)
	if err != nil {
		log.Warn("street fetch failed", zap.Error(err))
		return failedResult(district, "street query failed: "+err.Error())
	}

	attrs := Attribute(pois, streets, params.MaxAssignM)
	ranking := Rank(district, attrs, params.TopN)

	log.Info("district processed",
		zap.Int("pois", ranking.TotalPOIs),
		zap.Int("streets", ranking.TotalStreets),
	)

	return model.Result{
		District:     district,
		Success:      true,
		TotalPOIs:    ranking.TotalPOIs,
		TotalStreets: ranking.TotalStreets,
		Top:          ranking.Top,
		AllStreets:   ranking.All,
	}
}

// filterByPostcode drops POIs that carry an addr:postcode belonging to a
// different district. POIs without a postcode are kept.
func filterByPostcode(district string, pois []model.POI) []model.POI {
	out := pois[:0]
	for _, poi := range pois {
		if pc := poi.Postcode(); pc != "" && !strings.HasPrefix(pc, district) {
			continue
		}
		out = append(out, poi)
	}
	return out
}

func failedResult(district, errText string) model.Result {
	return model.Result{
		District: district,
		Success:  false,
		Error:    errText,
		Top:      []model.StreetCount{},
	}
}
