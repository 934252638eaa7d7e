package domain

import (
	"time"

	"github.com/paulmach/orb/geojson"
)

// Forecast is a participant's submitted prediction for one contest day: a
// GeoJSON feature collection drawn on the map surface. Only polygon features
// participate in scoring; anything else rides along for display.
type Forecast struct {
	ID            string
	ParticipantID string
	Day           string
	DayType       string // contest risk-day category chosen by the participant
	Nick          string // display name resolved at save time
	Features      *geojson.FeatureCollection
	SubmittedAt   time.Time
}

// Area extracts the scorable polygon set from the submission.
func (f Forecast) Area() ForecastArea {
	return AreaFromFeatures(f.Features)
}
