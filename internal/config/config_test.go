package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/streetsignal/streetsignal/internal/model"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "https://api.postcodes.io", cfg.Geocode.PostcodesIOBaseURL)
	assert.Equal(t, "https://nominatim.openstreetmap.org", cfg.Geocode.NominatimBaseURL)
	assert.Equal(t, "London, UK", cfg.Geocode.Region)
	assert.Equal(t, "https://overpass-api.de/api/interpreter", cfg.Overpass.BaseURL)
	assert.Equal(t, "sqlite", cfg.Cache.Driver)

	assert.Equal(t, 900, cfg.Analysis.RadiusM)
	assert.Equal(t, 200.0, cfg.Analysis.MaxAssignM)
	assert.Equal(t, 3, cfg.Analysis.TopN)

	assert.Equal(t, 3, cfg.Retry.MaxAttempts)
	assert.Equal(t, 2000, cfg.Retry.InitialBackoffMs)

	// Nominatim's usage policy needs the slowest interval.
	assert.Equal(t, 2000, cfg.RateLimitMS["nominatim"])
	assert.Equal(t, 1000, cfg.RateLimitMS["overpass"])
	assert.Equal(t, 1000, cfg.RateLimitMS["postcodesio"])

	assert.Equal(t, 5001, cfg.Server.Port)
	assert.NotEmpty(t, cfg.UserAgent)
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("STREETSIGNAL_SERVER_PORT", "8080")
	t.Setenv("STREETSIGNAL_CACHE_DRIVER", "postgres")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "postgres", cfg.Cache.Driver)
}

func TestResolveFilters_KnownPreset(t *testing.T) {
	f := ResolveFilters("shop", model.Filters{ShopTypes: []string{"bakery"}})
	assert.True(t, f.IncludeAllShops)
	assert.Empty(t, f.ShopTypes)
	assert.NotEmpty(t, f.Amenities)
}

func TestResolveFilters_CustomAndUnknown(t *testing.T) {
	custom := model.Filters{ShopTypes: []string{"bakery"}}

	assert.Equal(t, custom, ResolveFilters("custom", custom))
	assert.Equal(t, custom, ResolveFilters("does-not-exist", custom))
}

func TestResolveFilters_Industrial(t *testing.T) {
	f := ResolveFilters("industrial", model.Filters{})
	assert.Contains(t, f.PropertySelectors, "landuse=industrial")
	assert.Contains(t, f.PropertySelectors, "building=warehouse")
	assert.False(t, f.IncludeAllShops)
}
