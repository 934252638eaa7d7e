package session

import (
	"encoding/json"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"github.com/bswc/forecast-scoring-service/internal/domain"
)

// Outbound event types pushed to the map surface.
const (
	EventScoreUpdate  = "scoreUpdate"
	EventForecastData = "forecastData"
	EventReportsData  = "reportsData"
	EventLayerData    = "layerData"
	EventError        = "error"
)

// Event is the one-way payload pushed to the presentation surface. Exactly
// one of the payload fields is set per type; the surface always receives a
// well-formed event, never a fatal error.
type Event struct {
	Type          string                     `json:"type"`
	ParticipantID string                     `json:"participantId,omitempty"`
	Day           string                     `json:"day,omitempty"`
	Scoreboard    domain.Scoreboard          `json:"scoreboard,omitempty"`
	Features      *geojson.FeatureCollection `json:"features,omitempty"`
	Key           string                     `json:"key,omitempty"`
	Layer         json.RawMessage            `json:"layer,omitempty"`
	Error         string                     `json:"error,omitempty"`
}

// scoreEvent builds a scoreboard push for a day.
func scoreEvent(participantID, day string, board domain.Scoreboard) Event {
	return Event{
		Type:          EventScoreUpdate,
		ParticipantID: participantID,
		Day:           day,
		Scoreboard:    board,
	}
}

// errorEvent builds a structured error payload for the surface.
func errorEvent(participantID, message string) Event {
	return Event{
		Type:          EventError,
		ParticipantID: participantID,
		Error:         message,
	}
}

// reportFeatures converts reports to GeoJSON point features for map
// rendering. Reports with non-finite coordinates are dropped.
func reportFeatures(reports []domain.Report) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	for _, r := range reports {
		if !r.HasFiniteCoords() {
			continue
		}
		f := geojson.NewFeature(orb.Point{r.Lon, r.Lat})
		f.Properties = geojson.Properties{
			"hazard": r.Hazard,
			"sev":    string(domain.ParseSeverity(r.Severity)),
		}
		if r.Author != "" {
			f.Properties["author"] = r.Author
		}
		fc.Append(f)
	}
	return fc
}
