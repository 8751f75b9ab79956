package analyze

import (
	"math"

	"github.com/streetsignal/streetsignal/internal/model"
)

// Attribute assigns each POI to a street name. An explicit addr:street tag
// wins unconditionally; otherwise the nearest street by great-circle
// distance is used, but only within maxAssignM meters. POIs with neither
// stay unattributed (empty StreetName).
//
// Nearest-street search is brute force, O(P*S); the named streets within a
// district radius number at most a few hundred, so no spatial index is
// warranted.
func Attribute(pois []model.POI, streets []model.Street, maxAssignM float64) []model.Attribution {
	attrs := make([]model.Attribution, 0, len(pois))
	for _, poi := range pois {
		name := poi.Street()
		if name == "" {
			name = nearestStreet(poi, streets, maxAssignM)
		}
		attrs = append(attrs, model.Attribution{POI: poi, StreetName: name})
	}
	return attrs
}

// nearestStreet returns the name of the closest street within maxAssignM,
// or "". Equidistant streets resolve to the first one in sequence.
func nearestStreet(poi model.POI, streets []model.Street, maxAssignM float64) string {
	if len(streets) == 0 {
		return ""
	}

	var nearest string
	minDist := math.Inf(1)
	for _, st := range streets {
		if d := Haversine(poi.Coord, st.Coord); d < minDist {
			minDist = d
			nearest = st.Name
		}
	}

	if minDist <= maxAssignM {
		return nearest
	}
	return ""
}
