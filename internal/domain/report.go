package domain

import (
	"math"
	"strings"
	"time"
)

// Hazard is a severe-weather category scored independently.
type Hazard string

const (
	HazardHail    Hazard = "hail"
	HazardWind    Hazard = "wind"
	HazardTornado Hazard = "tornado"
)

// Hazards lists every scored hazard in scoreboard display order.
var Hazards = []Hazard{HazardHail, HazardWind, HazardTornado}

// ParseHazard normalizes a raw hazard string. Returns false for anything
// outside the scored set; such reports are skipped, not errors.
func ParseHazard(value string) (Hazard, bool) {
	switch Hazard(strings.ToLower(strings.TrimSpace(value))) {
	case HazardHail:
		return HazardHail, true
	case HazardWind:
		return HazardWind, true
	case HazardTornado:
		return HazardTornado, true
	default:
		return "", false
	}
}

// Severity is a report's severity flag.
type Severity string

const (
	SeverityNormal      Severity = "NOR"
	SeveritySignificant Severity = "SS"
)

// ParseSeverity normalizes a raw severity code. "SS" (trimmed,
// case-insensitive) is significant; every other value is normal.
func ParseSeverity(value string) Severity {
	if strings.EqualFold(strings.TrimSpace(value), string(SeveritySignificant)) {
		return SeveritySignificant
	}
	return SeverityNormal
}

// Report is a single observed hazard occurrence. Reports are owned by the
// report store; the scoring pass only reads copies.
type Report struct {
	ID         string    `json:"id"`
	Hazard     string    `json:"hazard"`
	Severity   string    `json:"sev"`
	Lat        float64   `json:"lat"`
	Lon        float64   `json:"lon"`
	Author     string    `json:"author,omitempty"`
	ReportedAt time.Time `json:"reported_at"`
}

// HasFiniteCoords reports whether the coordinates are usable for a
// containment test. Reports with NaN or infinite coordinates are excluded
// from scoring rather than failing the whole pass.
func (r Report) HasFiniteCoords() bool {
	return !math.IsNaN(r.Lat) && !math.IsInf(r.Lat, 0) &&
		!math.IsNaN(r.Lon) && !math.IsInf(r.Lon, 0)
}
