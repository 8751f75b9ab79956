// Package model defines the domain types shared across the analysis pipeline.
package model

import "strings"

// Coordinate is a WGS84 latitude/longitude pair in degrees.
type Coordinate struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// NormalizeDistrict canonicalizes a postal-district code (e.g. " e1 " -> "E1").
func NormalizeDistrict(d string) string {
	return strings.ToUpper(strings.TrimSpace(d))
}

// NormalizeDistricts normalizes every entry and drops empties, preserving order.
func NormalizeDistricts(districts []string) []string {
	out := make([]string, 0, len(districts))
	for _, d := range districts {
		if n := NormalizeDistrict(d); n != "" {
			out = append(out, n)
		}
	}
	return out
}

// POI is a tagged OpenStreetMap element (shop, amenity, office, ...) scoped
// to one district's processing run.
type POI struct {
	ID    int64             `json:"id"`
	Kind  string            `json:"type"` // node, way or relation
	Coord Coordinate        `json:"coord"`
	Tags  map[string]string `json:"tags,omitempty"`
}

func (p POI) tag(key string) string { return p.Tags[key] }

// Street returns the explicit addr:street tag, or "" when absent.
func (p POI) Street() string { return p.tag("addr:street") }

// Postcode returns the addr:postcode tag normalized for prefix comparison
// (uppercased, spaces removed).
func (p POI) Postcode() string {
	return strings.ToUpper(strings.ReplaceAll(p.tag("addr:postcode"), " ", ""))
}

func (p POI) Name() string     { return p.tag("name") }
func (p POI) Shop() string     { return p.tag("shop") }
func (p POI) Amenity() string  { return p.tag("amenity") }
func (p POI) Office() string   { return p.tag("office") }
func (p POI) Building() string { return p.tag("building") }
func (p POI) Landuse() string  { return p.tag("landuse") }

// Street is a named highway way with a representative (center) coordinate.
// Several Street records may share one name; attribution and ranking operate
// on the name, not the way id.
type Street struct {
	ID      int64      `json:"id"`
	Name    string     `json:"name"`
	Coord   Coordinate `json:"coord"`
	Highway string     `json:"highway,omitempty"`
}

// Attribution maps one POI to a street name. An empty StreetName means the
// POI could not be attributed.
type Attribution struct {
	POI        POI
	StreetName string
}

// Attributed reports whether the POI was assigned to a street.
func (a Attribution) Attributed() bool { return a.StreetName != "" }

// StreetCount is one ranked entry: a street name and its POI count.
type StreetCount struct {
	Name  string `json:"name"`
	Count int    `json:"poi_count"`
}

// Result is the per-district outcome. Failed districts keep the same shape
// with Success=false, Error set and zeroed counts, so export code needs no
// special-casing.
type Result struct {
	District     string        `json:"district"`
	Success      bool          `json:"success"`
	Error        string        `json:"error,omitempty"`
	TotalPOIs    int           `json:"total_pois"`
	TotalStreets int           `json:"total_streets"` // distinct attributed street names
	Top          []StreetCount `json:"top_streets"`
	AllStreets   []StreetCount `json:"all_streets,omitempty"`
}

// Filters selects which POI categories a query includes.
type Filters struct {
	IncludeAllShops   bool     `json:"include_all_shops"`
	ShopTypes         []string `json:"shop_types,omitempty"`
	Amenities         []string `json:"amenities,omitempty"`
	PropertySelectors []string `json:"property_selectors,omitempty"`
}

// Params are the per-job analysis parameters, shared by every district in
// the job.
type Params struct {
	RadiusM    int     `json:"radius_m"`
	MaxAssignM float64 `json:"max_assign_m"`
	TopN       int     `json:"top_n"`
	Filters    Filters `json:"filters"`
}
