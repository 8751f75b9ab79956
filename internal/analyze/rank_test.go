package analyze

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/streetsignal/streetsignal/internal/model"
)

func attrsFor(counts map[string]int) []model.Attribution {
	var attrs []model.Attribution
	var id int64
	// Deterministic order so tests that care about input sequence stay stable.
	for _, name := range []string{"Brick Lane", "Commercial Street", "Hanbury Street", "Wentworth Street"} {
		for i := 0; i < counts[name]; i++ {
			id++
			attrs = append(attrs, model.Attribution{POI: model.POI{ID: id}, StreetName: name})
		}
	}
	return attrs
}

func TestRank_OrdersByCountDescending(t *testing.T) {
	attrs := attrsFor(map[string]int{
		"Brick Lane":        4,
		"Commercial Street": 2,
		"Hanbury Street":    3,
	})

	r := Rank("E1", attrs, 3)
	require.Len(t, r.Top, 3)
	assert.Equal(t, model.StreetCount{Name: "Brick Lane", Count: 4}, r.Top[0])
	assert.Equal(t, model.StreetCount{Name: "Hanbury Street", Count: 3}, r.Top[1])
	assert.Equal(t, model.StreetCount{Name: "Commercial Street", Count: 2}, r.Top[2])
}

func TestRank_TiesBreakByNameAscending(t *testing.T) {
	attrs := attrsFor(map[string]int{
		"Wentworth Street":  2,
		"Brick Lane":        2,
		"Commercial Street": 2,
	})

	r := Rank("E1", attrs, 3)
	require.Len(t, r.Top, 3)
	assert.Equal(t, "Brick Lane", r.Top[0].Name)
	assert.Equal(t, "Commercial Street", r.Top[1].Name)
	assert.Equal(t, "Wentworth Street", r.Top[2].Name)
}

func TestRank_TruncatesToTopN(t *testing.T) {
	attrs := attrsFor(map[string]int{
		"Brick Lane":        4,
		"Commercial Street": 3,
		"Hanbury Street":    2,
		"Wentworth Street":  1,
	})

	r := Rank("E1", attrs, 2)
	require.Len(t, r.Top, 2)
	assert.Equal(t, "Brick Lane", r.Top[0].Name)
	assert.Equal(t, "Commercial Street", r.Top[1].Name)

	// Streets beyond topN still count toward the total.
	assert.Equal(t, 4, r.TotalStreets)
	assert.Len(t, r.All, 4)
}

func TestRank_TotalsAndUnattributed(t *testing.T) {
	attrs := attrsFor(map[string]int{"Brick Lane": 3, "Hanbury Street": 2})
	attrs = append(attrs,
		model.Attribution{POI: model.POI{ID: 100}}, // unattributed
		model.Attribution{POI: model.POI{ID: 101}},
	)

	r := Rank("E1", attrs, 3)
	assert.Equal(t, 7, r.TotalPOIs)
	assert.Equal(t, 2, r.TotalStreets)

	var sum int
	for _, sc := range r.All {
		sum += sc.Count
	}
	assert.Equal(t, 5, sum, "ranked counts should sum to attributed POIs")
}

func TestRank_EmptyInput(t *testing.T) {
	r := Rank("E1", nil, 3)
	assert.Empty(t, r.Top)
	assert.Empty(t, r.All)
	assert.Zero(t, r.TotalPOIs)
	assert.Zero(t, r.TotalStreets)
}

func TestRank_PostcodeMajorityFiltersAllList(t *testing.T) {
	attrs := []model.Attribution{
		// Commercial Street: two POIs postcoded into E2, one into E1.
		{POI: model.POI{ID: 1, Tags: map[string]string{"addr:postcode": "E2 7DG"}}, StreetName: "Commercial Street"},
		{POI: model.POI{ID: 2, Tags: map[string]string{"addr:postcode": "E2 7DG"}}, StreetName: "Commercial Street"},
		{POI: model.POI{ID: 3, Tags: map[string]string{"addr:postcode": "E1 6QL"}}, StreetName: "Commercial Street"},
		// Brick Lane: no postcodes at all, kept by default.
		{POI: model.POI{ID: 4}, StreetName: "Brick Lane"},
	}

	r := Rank("E1", attrs, 3)

	// Top ranking ignores the postcode filter.
	require.Len(t, r.Top, 2)
	assert.Equal(t, "Commercial Street", r.Top[0].Name)

	// The full list drops streets whose postcoded POIs mostly lie outside.
	require.Len(t, r.All, 1)
	assert.Equal(t, "Brick Lane", r.All[0].Name)
}

func TestMajorityInDistrict_EvenSplitKept(t *testing.T) {
	pois := []model.POI{
		{Tags: map[string]string{"addr:postcode": "E1 6QL"}},
		{Tags: map[string]string{"addr:postcode": "E2 7DG"}},
	}
	assert.True(t, majorityInDistrict("E1", pois))
}
