package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/paulmach/orb/geojson"
)

// ErrUnknownRequest marks an inbound message whose type is not part of the
// request set. Such messages are ignored without failing the consumer loop.
var ErrUnknownRequest = errors.New("unknown request type")

// Request is the closed set of inbound map-surface messages. Each variant
// maps to exactly one controller operation.
type Request interface {
	// RequestType returns the wire tag, used for logging and metrics.
	RequestType() string
}

// SessionStartRequest is the map surface handshake: a participant's session
// has begun. Triggers the post-deadline scoreboard bootstrap.
type SessionStartRequest struct {
	ParticipantID string
}

// SessionEndRequest tears the session down: active polygons cleared, periodic
// refresh stopped, published state reset.
type SessionEndRequest struct{}

// ScoreRequest asks for a fresh scoreboard for a contest day. The
// participant's latest forecast for that day is reloaded first.
type ScoreRequest struct {
	ParticipantID string
	Day           string
}

// ForecastRequest asks for the participant's latest stored forecast.
type ForecastRequest struct {
	ParticipantID string
	Day           string
}

// SaveForecastRequest stores a forecast submission.
type SaveForecastRequest struct {
	ParticipantID string
	Day           string
	DayType       string
	Features      *geojson.FeatureCollection
}

// ReportsRequest asks for the raw report features inside a time window, for
// map rendering.
type ReportsRequest struct {
	Start time.Time
	End   time.Time
}

// LayerRequest asks for the latest stored map overlay layer by key.
type LayerRequest struct {
	Key string
}

func (SessionStartRequest) RequestType() string { return "sessionStart" }
func (SessionEndRequest) RequestType() string   { return "sessionEnd" }
func (ScoreRequest) RequestType() string        { return "requestScore" }
func (ForecastRequest) RequestType() string     { return "requestForecast" }
func (SaveForecastRequest) RequestType() string { return "saveForecast" }
func (ReportsRequest) RequestType() string      { return "fetchReports" }
func (LayerRequest) RequestType() string        { return "requestLayers" }

// envelope is the tagged wire shape of inbound messages. Fields beyond Type
// are populated per variant; unused ones stay zero.
type envelope struct {
	Type          string          `json:"type"`
	ParticipantID string          `json:"participantId,omitempty"`
	Day           string          `json:"day,omitempty"`
	DayType       string          `json:"dayType,omitempty"`
	Features      json.RawMessage `json:"features,omitempty"`
	Start         time.Time       `json:"start,omitempty"`
	End           time.Time       `json:"end,omitempty"`
	Key           string          `json:"key,omitempty"`
}

// DecodeRequest parses an inbound message into its Request variant. Returns
// ErrUnknownRequest for types outside the set.
func DecodeRequest(data []byte) (Request, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("decode request: %w", err)
	}

	switch env.Type {
	case "sessionStart":
		return SessionStartRequest{ParticipantID: env.ParticipantID}, nil
	case "sessionEnd":
		return SessionEndRequest{}, nil
	case "requestScore":
		return ScoreRequest{ParticipantID: env.ParticipantID, Day: env.Day}, nil
	case "requestForecast":
		return ForecastRequest{ParticipantID: env.ParticipantID, Day: env.Day}, nil
	case "saveForecast":
		req := SaveForecastRequest{
			ParticipantID: env.ParticipantID,
			Day:           env.Day,
			DayType:       env.DayType,
		}
		if len(env.Features) > 0 {
			fc, err := geojson.UnmarshalFeatureCollection(env.Features)
			if err != nil {
				return nil, fmt.Errorf("decode saveForecast features: %w", err)
			}
			req.Features = fc
		}
		return req, nil
	case "fetchReports":
		return ReportsRequest{Start: env.Start, End: env.End}, nil
	case "requestLayers":
		return LayerRequest{Key: env.Key}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownRequest, env.Type)
	}
}
