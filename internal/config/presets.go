package config

import "github.com/streetsignal/streetsignal/internal/model"

// Preset is a named bundle of POI category filters.
type Preset struct {
	Name    string
	Filters model.Filters
}

// Presets are the built-in filter presets. "custom" is the empty preset:
// callers supply their own selections.
var Presets = map[string]Preset{
	"shop": {
		Name: "Shop",
		Filters: model.Filters{
			IncludeAllShops: true,
			Amenities: []string{
				"restaurant", "cafe", "fast_food", "pub", "bar", "pharmacy",
				"post_office", "bank", "atm", "hairdresser", "beauty", "marketplace",
			},
		},
	},
	"industrial": {
		Name: "Industrial",
		Filters: model.Filters{
			PropertySelectors: []string{
				"landuse=industrial", "building=industrial", "building=warehouse", "industrial=*",
			},
		},
	},
	"office": {
		Name: "Office",
		Filters: model.Filters{
			PropertySelectors: []string{"office=*"},
		},
	},
	"custom": {
		Name:    "Custom",
		Filters: model.Filters{},
	},
}

// ResolveFilters returns the filters for a preset name. Unknown names and
// "custom" fall through to the caller-supplied filters.
func ResolveFilters(preset string, custom model.Filters) model.Filters {
	p, ok := Presets[preset]
	if !ok || preset == "custom" {
		return custom
	}
	return p.Filters
}

// ShopTypes lists the shop values accepted in custom filters.
var ShopTypes = []string{
	"supermarket", "convenience", "bakery", "butcher", "greengrocer", "alcohol", "wine", "beverages",
	"clothes", "shoes", "department_store", "mall", "jewelry", "gift", "books", "electronics", "mobile_phone",
	"furniture", "doityourself", "hardware", "florist", "optician", "chemist", "pharmacy",
	"beauty", "hairdresser", "cosmetics", "sports", "bicycle", "car_repair", "car", "motorcycle", "pet",
	"newsagent", "stationery", "toy", "second_hand", "charity", "travel_agency",
}

// AmenityTypes lists the amenity values accepted in custom filters.
var AmenityTypes = []string{
	"restaurant", "cafe", "fast_food", "bar", "pub", "bank", "atm", "pharmacy",
	"clinic", "dentist", "doctors", "hairdresser", "beauty", "post_office", "marketplace",
	"place_of_worship",
}

// PropertySelectors lists the key=value selectors accepted in custom filters.
var PropertySelectors = []string{
	"building=church",
	"building=cathedral",
	"landuse=industrial",
	"building=industrial",
	"building=warehouse",
	"industrial=*",
	"office=*",
	"building=commercial",
	"building=retail",
	"landuse=commercial",
	"landuse=retail",
}
