package domain

import (
	"testing"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// unitSquare is a closed ring from (0,0) to (10,10) in lon/lat order.
func unitSquare() orb.Polygon {
	return orb.Polygon{orb.Ring{
		{0, 0}, {10, 0}, {10, 10}, {0, 10}, {0, 0},
	}}
}

func farSquare() orb.Polygon {
	return orb.Polygon{orb.Ring{
		{50, 50}, {60, 50}, {60, 60}, {50, 60}, {50, 50},
	}}
}

func TestForecastArea_Contains(t *testing.T) {
	area := NewForecastArea([]orb.Polygon{unitSquare()})

	assert.True(t, area.Contains(5, 5))
	assert.False(t, area.Contains(15, 5))
	assert.False(t, area.Contains(-0.001, 5))
}

func TestForecastArea_UnionSemantics(t *testing.T) {
	area := NewForecastArea([]orb.Polygon{unitSquare(), farSquare()})

	// One polygon hitting is sufficient; the point need not be in all of them.
	assert.True(t, area.Contains(5, 5))
	assert.True(t, area.Contains(55, 55))
	assert.False(t, area.Contains(30, 30))
}

func TestForecastArea_BoundaryCountsAsInside(t *testing.T) {
	area := NewForecastArea([]orb.Polygon{unitSquare()})

	assert.True(t, area.Contains(0, 5), "point on edge")
	assert.True(t, area.Contains(0, 0), "point on vertex")
}

func TestForecastArea_Empty(t *testing.T) {
	var area ForecastArea

	assert.True(t, area.Empty())
	assert.False(t, area.Contains(5, 5), "empty set is never inside everything")
}

func TestNewForecastArea_DropsDegeneratePolygons(t *testing.T) {
	degenerate := orb.Polygon{orb.Ring{{0, 0}, {1, 1}, {0, 0}}}

	area := NewForecastArea([]orb.Polygon{degenerate, unitSquare()})
	assert.Equal(t, 1, area.Size())

	area = NewForecastArea([]orb.Polygon{degenerate, {}})
	assert.True(t, area.Empty())
}

func TestAreaFromFeatures(t *testing.T) {
	t.Run("keeps polygons, ignores other geometry", func(t *testing.T) {
		fc := geojson.NewFeatureCollection()
		fc.Append(geojson.NewFeature(unitSquare()))
		fc.Append(geojson.NewFeature(orb.Point{3, 3}))
		fc.Append(geojson.NewFeature(orb.LineString{{0, 0}, {1, 1}}))

		area := AreaFromFeatures(fc)
		assert.Equal(t, 1, area.Size())
	})

	t.Run("flattens multipolygons", func(t *testing.T) {
		fc := geojson.NewFeatureCollection()
		fc.Append(geojson.NewFeature(orb.MultiPolygon{unitSquare(), farSquare()}))

		area := AreaFromFeatures(fc)
		assert.Equal(t, 2, area.Size())
	})

	t.Run("nil collection", func(t *testing.T) {
		area := AreaFromFeatures(nil)
		assert.True(t, area.Empty())
	})

	t.Run("round trips through GeoJSON", func(t *testing.T) {
		data := []byte(`{"type":"FeatureCollection","features":[
			{"type":"Feature","geometry":{"type":"Polygon","coordinates":[[[0,0],[10,0],[10,10],[0,10],[0,0]]]},"properties":{}},
			{"type":"Feature","geometry":{"type":"Point","coordinates":[3,3]},"properties":{}}
		]}`)
		fc, err := geojson.UnmarshalFeatureCollection(data)
		require.NoError(t, err)

		area := AreaFromFeatures(fc)
		assert.Equal(t, 1, area.Size())
		assert.True(t, area.Contains(5, 5))
	})
}
