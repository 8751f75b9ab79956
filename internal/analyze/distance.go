// Package analyze implements the district analysis core: street
// attribution, ranking and the per-district processor.
package analyze

import (
	"math"

	"github.com/streetsignal/streetsignal/internal/model"
)

// earthRadiusM is the mean Earth radius in meters.
const earthRadiusM = 6371000.0

// Haversine returns the great-circle distance between two coordinates in
// meters.
func Haversine(a, b model.Coordinate) float64 {
	phi1 := a.Lat * math.Pi / 180
	phi2 := b.Lat * math.Pi / 180
	dPhi := (b.Lat - a.Lat) * math.Pi / 180
	dLambda := (b.Lon - a.Lon) * math.Pi / 180

	h := math.Sin(dPhi/2)*math.Sin(dPhi/2) +
		math.Cos(phi1)*math.Cos(phi2)*math.Sin(dLambda/2)*math.Sin(dLambda/2)
	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))

	return earthRadiusM * c
}
