package domain

import (
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/paulmach/orb/planar"
)

// ForecastArea is a participant's active polygon set for one scoring session.
// The zero value is an empty area: every point misses.
type ForecastArea struct {
	polygons []orb.Polygon
}

// NewForecastArea builds an area from raw polygons, dropping degenerate ones
// (no outer ring, or an outer ring with fewer than four points; GeoJSON
// rings repeat the first point to close).
func NewForecastArea(polygons []orb.Polygon) ForecastArea {
	kept := make([]orb.Polygon, 0, len(polygons))
	for _, p := range polygons {
		if len(p) == 0 || len(p[0]) < 4 {
			continue
		}
		kept = append(kept, p)
	}
	return ForecastArea{polygons: kept}
}

// AreaFromFeatures extracts polygon-type features from a forecast submission.
// Non-polygon features (points, lines the map editor may emit) are ignored
// for scoring.
func AreaFromFeatures(fc *geojson.FeatureCollection) ForecastArea {
	if fc == nil {
		return ForecastArea{}
	}
	var polygons []orb.Polygon
	for _, f := range fc.Features {
		if f == nil {
			continue
		}
		switch g := f.Geometry.(type) {
		case orb.Polygon:
			polygons = append(polygons, g)
		case orb.MultiPolygon:
			polygons = append(polygons, g...)
		}
	}
	return NewForecastArea(polygons)
}

// Empty reports whether the area has no usable polygons.
func (a ForecastArea) Empty() bool {
	return len(a.polygons) == 0
}

// Size returns the number of usable polygons.
func (a ForecastArea) Size() int {
	return len(a.polygons)
}

// Contains reports whether the point (lon, lat) lies inside any polygon in
// the set. Union semantics: one polygon hitting is sufficient. Points on a
// polygon edge count as inside.
func (a ForecastArea) Contains(lon, lat float64) bool {
	point := orb.Point{lon, lat}
	for _, p := range a.polygons {
		if planar.PolygonContains(p, point) {
			return true
		}
	}
	return false
}
