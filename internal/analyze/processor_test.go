package analyze

import (
	"context"
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/streetsignal/streetsignal/internal/model"
)

type fakeResolver struct {
	coord model.Coordinate
	err   error
	calls int
}

func (f *fakeResolver) Resolve(_ context.Context, _ string) (model.Coordinate, error) {
	f.calls++
	return f.coord, f.err
}

type fakeGateway struct {
	pois       []model.POI
	poisErr    error
	streets    []model.Street
	streetsErr error
	panicOnPOI bool
}

func (f *fakeGateway) FetchPOIs(_ context.Context, _ model.Coordinate, _ int, _ model.Filters) ([]model.POI, error) {
	if f.panicOnPOI {
		panic("gateway exploded")
	}
	return f.pois, f.poisErr
}

func (f *fakeGateway) FetchStreets(_ context.Context, _ model.Coordinate, _ int) ([]model.Street, error) {
	return f.streets, f.streetsErr
}

func testParams() model.Params {
	return model.Params{RadiusM: 900, MaxAssignM: 50, TopN: 3}
}

func TestProcess_FullPipeline(t *testing.T) {
	// Ten POIs: four tagged onto Brick Lane, two onto Commercial Street,
	// three untagged within 50 m of Hanbury Street, one untagged far from
	// everything.
	hanbury := offsetLat(center, 0.0002) // ~22 m north
	var pois []model.POI
	for i := 0; i < 4; i++ {
		pois = append(pois, model.POI{
			ID:    int64(i + 1),
			Coord: center,
			Tags:  map[string]string{"addr:street": "Brick Lane"},
		})
	}
	for i := 0; i < 2; i++ {
		pois = append(pois, model.POI{
			ID:    int64(i + 5),
			Coord: center,
			Tags:  map[string]string{"addr:street": "Commercial Street"},
		})
	}
	for i := 0; i < 3; i++ {
		pois = append(pois, model.POI{ID: int64(i + 7), Coord: center})
	}
	pois = append(pois, model.POI{ID: 10, Coord: offsetLat(center, 0.02)}) // ~2.2 km away

	gw := &fakeGateway{
		pois: pois,
		streets: []model.Street{
			{ID: 1, Name: "Hanbury Street", Coord: hanbury},
		},
	}
	p := NewProcessor(&fakeResolver{coord: center}, gw)

	result := p.Process(context.Background(), "e1", testParams())

	require.True(t, result.Success)
	assert.Empty(t, result.Error)
	assert.Equal(t, "E1", result.District)
	assert.Equal(t, 10, result.TotalPOIs)
	assert.Equal(t, 3, result.TotalStreets)

	require.Len(t, result.Top, 3)
	assert.Equal(t, model.StreetCount{Name: "Brick Lane", Count: 4}, result.Top[0])
	assert.Equal(t, model.StreetCount{Name: "Hanbury Street", Count: 3}, result.Top[1])
	assert.Equal(t, model.StreetCount{Name: "Commercial Street", Count: 2}, result.Top[2])
}

func TestProcess_GeocodeFailure(t *testing.T) {
	p := NewProcessor(
		&fakeResolver{err: eris.New("geocode: district not found")},
		&fakeGateway{},
	)

	result := p.Process(context.Background(), "ZZ99", testParams())
	assert.False(t, result.Success)
	assert.Contains(t, result.Error, "could not geocode district")
	assert.Equal(t, "ZZ99", result.District)
}

func TestProcess_POIFetchFailure(t *testing.T) {
	p := NewProcessor(
		&fakeResolver{coord: center},
		&fakeGateway{poisErr: eris.New("overpass: query failed after 3 attempts")},
	)

	result := p.Process(context.Background(), "E1", testParams())
	assert.False(t, result.Success)
	assert.Contains(t, result.Error, "poi query failed")
	assert.NotNil(t, result.Top)
	assert.Empty(t, result.Top)
}

func TestProcess_StreetFetchFailure(t *testing.T) {
	p := NewProcessor(
		&fakeResolver{coord: center},
		&fakeGateway{
			pois:       []model.POI{{ID: 1, Coord: center}},
			streetsErr: eris.New("overpass: query failed after 3 attempts"),
		},
	)

	result := p.Process(context.Background(), "E1", testParams())
	assert.False(t, result.Success)
	assert.Contains(t, result.Error, "street query failed")
}

func TestProcess_NoPOIsIsSuccess(t *testing.T) {
	p := NewProcessor(&fakeResolver{coord: center}, &fakeGateway{})

	result := p.Process(context.Background(), "E1", testParams())
	assert.True(t, result.Success)
	assert.Zero(t, result.TotalPOIs)
	assert.Zero(t, result.TotalStreets)
	assert.NotNil(t, result.Top)
	assert.Empty(t, result.Top)
}

func TestProcess_PanicBecomesFailedResult(t *testing.T) {
	p := NewProcessor(&fakeResolver{coord: center}, &fakeGateway{panicOnPOI: true})

	result := p.Process(context.Background(), "E1", testParams())
	assert.False(t, result.Success)
	assert.Contains(t, result.Error, "internal error")
	assert.Contains(t, result.Error, "gateway exploded")
}

func TestProcess_DropsForeignPostcodes(t *testing.T) {
	gw := &fakeGateway{
		pois: []model.POI{
			{ID: 1, Coord: center, Tags: map[string]string{"addr:street": "Brick Lane", "addr:postcode": "E1 6QL"}},
			{ID: 2, Coord: center, Tags: map[string]string{"addr:street": "Brick Lane", "addr:postcode": "E2 7DG"}},
			{ID: 3, Coord: center, Tags: map[string]string{"addr:street": "Brick Lane"}},
		},
	}
	p := NewProcessor(&fakeResolver{coord: center}, gw)

	result := p.Process(context.Background(), "E1", testParams())
	require.True(t, result.Success)
	assert.Equal(t, 2, result.TotalPOIs, "POI postcoded into E2 should be dropped")
	require.Len(t, result.Top, 1)
	assert.Equal(t, 2, result.Top[0].Count)
}
