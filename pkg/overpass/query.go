package overpass

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/streetsignal/streetsignal/internal/model"
)

// Selector tokens are interpolated into Overpass QL, so they are validated
// against a strict whitelist shape before use.
var (
	tokenRe    = regexp.MustCompile(`^[a-z0-9_]+$`)
	selectorRe = regexp.MustCompile(`^[a-z0-9_]+=(\*|[a-z0-9_]+)$`)
)

// BuildPOIQuery returns the Overpass QL query for commercial POIs around a
// centroid: a union of node/way/relation selectors for shops, amenities and
// property selectors, each with a representative coordinate (`out tags
// center`). With no usable filters it defaults to all shops.
func BuildPOIQuery(center model.Coordinate, radiusM int, filters model.Filters) string {
	around := fmt.Sprintf("around:%d,%f,%f", radiusM, center.Lat, center.Lon)

	shopTypes := filterTokens(filters.ShopTypes)
	amenities := filterTokens(filters.Amenities)
	selectors := filterSelectors(filters.PropertySelectors)

	var parts []string

	switch {
	case filters.IncludeAllShops:
		parts = append(parts, unionFor(around, `["shop"]`)...)
	case len(shopTypes) > 0:
		parts = append(parts, unionFor(around, fmt.Sprintf(`["shop"~"^(%s)$"]`, strings.Join(shopTypes, "|")))...)
	}

	if len(amenities) > 0 {
		parts = append(parts, unionFor(around, fmt.Sprintf(`["amenity"~"^(%s)$"]`, strings.Join(amenities, "|")))...)
	}

	for _, sel := range selectors {
		key, value, _ := strings.Cut(sel, "=")
		if value == "*" {
			parts = append(parts, unionFor(around, fmt.Sprintf(`["%s"]`, key))...)
		} else {
			parts = append(parts, unionFor(around, fmt.Sprintf(`["%s"="%s"]`, key, value))...)
		}
	}

	if len(parts) == 0 {
		parts = unionFor(around, `["shop"]`)
	}

	return fmt.Sprintf("[out:json][timeout:180];\n(\n  %s\n);\nout tags center;",
		strings.Join(parts, "\n  "))
}

// BuildStreetQuery returns the Overpass QL query for all named highway ways
// around a centroid.
func BuildStreetQuery(center model.Coordinate, radiusM int) string {
	return fmt.Sprintf(
		"[out:json][timeout:180];\nway[\"highway\"][\"name\"](around:%d,%f,%f);\nout tags center;",
		radiusM, center.Lat, center.Lon)
}

func unionFor(around, selector string) []string {
	return []string{
		fmt.Sprintf("node(%s)%s;", around, selector),
		fmt.Sprintf("way(%s)%s;", around, selector),
		fmt.Sprintf("relation(%s)%s;", around, selector),
	}
}

func filterTokens(in []string) []string {
	var out []string
	for _, s := range in {
		if tokenRe.MatchString(s) {
			out = append(out, s)
		}
	}
	return out
}

func filterSelectors(in []string) []string {
	var out []string
	for _, s := range in {
		if selectorRe.MatchString(s) {
			out = append(out, s)
		}
	}
	return out
}
