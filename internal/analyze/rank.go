package analyze

import (
	"sort"
	"strings"

	"github.com/streetsignal/streetsignal/internal/model"
)

// Ranking is the aggregated outcome of one district's attributions.
type Ranking struct {
	// Top holds up to topN streets by POI count.
	Top []model.StreetCount
	// All holds every attributed street that passes the postcode-majority
	// filter, ranked the same way.
	All []model.StreetCount
	// TotalPOIs counts every POI that entered attribution.
	TotalPOIs int
	// TotalStreets counts distinct attributed street names, including
	// those beyond topN.
	TotalStreets int
}

// Rank counts attributed POIs per street name and orders streets by count
// descending, ties broken by name ascending so identical inputs always
// produce identical output.
func Rank(district string, attrs []model.Attribution, topN int) Ranking {
	counts := make(map[string]int)
	byStreet := make(map[string][]model.POI)
	for _, a := range attrs {
		if !a.Attributed() {
			continue
		}
		counts[a.StreetName]++
		byStreet[a.StreetName] = append(byStreet[a.StreetName], a.POI)
	}

	ranked := make([]model.StreetCount, 0, len(counts))
	for name, count := range counts {
		ranked = append(ranked, model.StreetCount{Name: name, Count: count})
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Count != ranked[j].Count {
			return ranked[i].Count > ranked[j].Count
		}
		return ranked[i].Name < ranked[j].Name
	})

	top := ranked
	if topN > 0 && len(top) > topN {
		top = top[:topN]
	}

	// The full list additionally drops streets whose postcoded POIs mostly
	// belong to a neighboring district.
	all := make([]model.StreetCount, 0, len(ranked))
	for _, sc := range ranked {
		if majorityInDistrict(district, byStreet[sc.Name]) {
			all = append(all, sc)
		}
	}

	return Ranking{
		Top:          top,
		All:          all,
		TotalPOIs:    len(attrs),
		TotalStreets: len(counts),
	}
}

// majorityInDistrict reports whether at least as many of the street's
// postcoded POIs belong to the district as not. Streets with no postcoded
// POIs get the benefit of the doubt.
func majorityInDistrict(district string, pois []model.POI) bool {
	var in, out int
	for _, poi := range pois {
		postcode := poi.Postcode()
		if postcode == "" {
			continue
		}
		if strings.HasPrefix(postcode, district) {
			in++
		} else {
			out++
		}
	}
	if in == 0 && out == 0 {
		return true
	}
	return in >= out
}
