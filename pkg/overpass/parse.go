package overpass

import "github.com/streetsignal/streetsignal/internal/model"

// response is the raw Overpass JSON envelope.
type response struct {
	Elements []element `json:"elements"`
}

// element is one raw Overpass element. Nodes carry lat/lon directly; ways
// and relations carry a computed center when the query asks for one.
type element struct {
	Type   string            `json:"type"`
	ID     int64             `json:"id"`
	Lat    float64           `json:"lat"`
	Lon    float64           `json:"lon"`
	Center *struct {
		Lat float64 `json:"lat"`
		Lon float64 `json:"lon"`
	} `json:"center"`
	Tags map[string]string `json:"tags"`
}

// coordinate returns the element's representative coordinate, false when the
// element has none (a way returned without a center).
func (e element) coordinate() (model.Coordinate, bool) {
	if e.Type == "node" {
		return model.Coordinate{Lat: e.Lat, Lon: e.Lon}, true
	}
	if e.Center != nil {
		return model.Coordinate{Lat: e.Center.Lat, Lon: e.Center.Lon}, true
	}
	return model.Coordinate{}, false
}

func parsePOIs(elements []element) []model.POI {
	pois := make([]model.POI, 0, len(elements))
	for _, el := range elements {
		coord, ok := el.coordinate()
		if !ok {
			continue
		}
		pois = append(pois, model.POI{
			ID:    el.ID,
			Kind:  el.Type,
			Coord: coord,
			Tags:  el.Tags,
		})
	}
	return pois
}

// parseStreets keeps only named ways with a center. Unnamed highways cannot
// rank, so they are dropped at the boundary.
func parseStreets(elements []element) []model.Street {
	streets := make([]model.Street, 0, len(elements))
	for _, el := range elements {
		name := el.Tags["name"]
		if name == "" {
			continue
		}
		if el.Center == nil {
			continue
		}
		streets = append(streets, model.Street{
			ID:      el.ID,
			Name:    name,
			Coord:   model.Coordinate{Lat: el.Center.Lat, Lon: el.Center.Lon},
			Highway: el.Tags["highway"],
		})
	}
	return streets
}
