package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/bswc/forecast-scoring-service/internal/domain"
	"github.com/bswc/forecast-scoring-service/internal/observability"
)

// ErrNotFound is returned by stores when no matching record exists.
var ErrNotFound = errors.New("not found")

// ReportStore fetches hazard reports inside a half-open time window.
type ReportStore interface {
	ReportsInWindow(ctx context.Context, start, end time.Time) ([]domain.Report, error)
}

// ForecastStore persists and fetches participant forecasts.
type ForecastStore interface {
	LatestForecast(ctx context.Context, participantID, day string) (domain.Forecast, error)
	SaveForecast(ctx context.Context, forecast domain.Forecast) error
}

// Identity resolves a participant's display name.
type Identity interface {
	DisplayName(ctx context.Context, participantID string) (string, error)
}

// LayerStore fetches map overlay layers by key.
type LayerStore interface {
	LatestLayer(ctx context.Context, key string) (json.RawMessage, error)
}

// Publisher pushes events one-way to the presentation surface.
type Publisher interface {
	Publish(ctx context.Context, event Event) error
}

// Controller owns one participant's scoring session: the active polygon set,
// the selected day, the last published scoreboard, and the periodic refresh
// timer. All inbound requests dispatch through Handle.
type Controller struct {
	resolver  domain.WindowResolver
	rules     domain.Rules
	reports   ReportStore
	forecasts ForecastStore
	identity  Identity
	layers    LayerStore
	pub       Publisher
	logger    *slog.Logger
	metrics   *observability.Metrics
	clock     clockwork.Clock
	interval  time.Duration

	// refreshSeq tags each refresh pass; a completion whose tag is no longer
	// current is discarded so an older window's result cannot overwrite a
	// newer one.
	refreshSeq atomic.Uint64

	mu            sync.Mutex
	participantID string
	day           string
	area          domain.ForecastArea
	published     domain.Scoreboard
	stopPeriodic  func()
}

// Deps bundles the controller's collaborators.
type Deps struct {
	Resolver  domain.WindowResolver
	Rules     domain.Rules
	Reports   ReportStore
	Forecasts ForecastStore
	Identity  Identity
	Layers    LayerStore
	Publisher Publisher
	Logger    *slog.Logger
	Metrics   *observability.Metrics
	Clock     clockwork.Clock
	Interval  time.Duration // periodic refresh cadence
}

// NewController creates a session controller. A nil clock defaults to the
// real clock; a zero interval defaults to five minutes (the reference
// deployment cadence).
func NewController(deps Deps) *Controller {
	if deps.Clock == nil {
		deps.Clock = clockwork.NewRealClock()
	}
	if deps.Interval <= 0 {
		deps.Interval = 5 * time.Minute
	}
	return &Controller{
		resolver:  deps.Resolver,
		rules:     deps.Rules,
		reports:   deps.Reports,
		forecasts: deps.Forecasts,
		identity:  deps.Identity,
		layers:    deps.Layers,
		pub:       deps.Publisher,
		logger:    deps.Logger,
		metrics:   deps.Metrics,
		clock:     deps.Clock,
		interval:  deps.Interval,
	}
}

// Handle dispatches one inbound request to its controller operation.
// Collaborator failures degrade to empty results and a logged diagnostic;
// the session stays usable, so Handle only returns an error for failures the
// consumer loop should surface.
func (c *Controller) Handle(ctx context.Context, req Request) error {
	c.metrics.RequestsHandled.WithLabelValues(req.RequestType()).Inc()

	switch r := req.(type) {
	case SessionStartRequest:
		return c.Bootstrap(ctx, r.ParticipantID)
	case SessionEndRequest:
		c.Reset()
		return nil
	case ScoreRequest:
		if err := c.LoadForecast(ctx, r.ParticipantID, r.Day); err != nil {
			return err
		}
		return c.Refresh(ctx, r.Day)
	case ForecastRequest:
		return c.deliverForecast(ctx, r)
	case SaveForecastRequest:
		return c.saveForecast(ctx, r)
	case ReportsRequest:
		return c.deliverReports(ctx, r)
	case LayerRequest:
		return c.deliverLayer(ctx, r)
	default:
		// DecodeRequest keeps the set closed; anything else is a bug.
		return fmt.Errorf("unhandled request type %q", req.RequestType())
	}
}

// HandleRaw decodes and dispatches a raw inbound message. Unknown message
// types are counted and dropped without error.
func (c *Controller) HandleRaw(ctx context.Context, data []byte) error {
	req, err := DecodeRequest(data)
	if err != nil {
		if errors.Is(err, ErrUnknownRequest) {
			c.metrics.UnknownRequests.Inc()
			c.logger.Debug("ignoring unknown request", "error", err)
			return nil
		}
		c.metrics.RequestErrors.Inc()
		c.logger.Warn("malformed request, skipping", "error", err)
		return nil
	}
	return c.Handle(ctx, req)
}

// Bootstrap starts a participant's session. If today's deadline has passed,
// the current scoring period is already underway: load today's forecast,
// score once, and begin the periodic refresh.
func (c *Controller) Bootstrap(ctx context.Context, participantID string) error {
	now := c.clock.Now()
	if !c.resolver.IsPastDeadline(now) {
		c.logger.Debug("before deadline, bootstrap deferred", "participant", participantID)
		return nil
	}

	day := c.resolver.Today(now)
	if err := c.LoadForecast(ctx, participantID, day); err != nil {
		return err
	}
	if err := c.Refresh(ctx, day); err != nil {
		return err
	}
	c.StartPeriodicRefresh(ctx)
	return nil
}

// LoadForecast fetches the participant's latest forecast for a day and sets
// its polygon features as the session's active area. A missing forecast
// clears the area; scoring is then suppressed rather than publishing a
// misleading all-miss scoreboard.
func (c *Controller) LoadForecast(ctx context.Context, participantID, day string) error {
	area := domain.ForecastArea{}

	forecast, err := c.forecasts.LatestForecast(ctx, participantID, day)
	switch {
	case errors.Is(err, ErrNotFound):
		c.logger.Info("no active forecast", "participant", participantID, "day", day)
	case err != nil:
		c.metrics.RequestErrors.Inc()
		c.logger.Error("forecast lookup failed", "error", err, "participant", participantID, "day", day)
	default:
		area = forecast.Area()
	}

	c.mu.Lock()
	c.participantID = participantID
	c.day = day
	c.area = area
	c.mu.Unlock()

	if area.Empty() {
		c.metrics.SessionActive.Set(0)
	} else {
		c.metrics.SessionActive.Set(1)
	}
	return nil
}

// Refresh resolves the day's scoring window, fetches its reports, rescores
// the active polygon set, and publishes the scoreboard. A failed report
// fetch degrades to an empty report set (all-zero board) for this cycle and
// is returned upward; it is not retried here.
func (c *Controller) Refresh(ctx context.Context, day string) error {
	seq := c.refreshSeq.Add(1)
	start := c.clock.Now()

	c.mu.Lock()
	area := c.area
	participantID := c.participantID
	c.mu.Unlock()

	if area.Empty() {
		c.logger.Debug("refresh suppressed, no active polygons", "day", day)
		return nil
	}

	c.metrics.RefreshesTotal.Inc()

	window, err := c.resolver.Resolve(day)
	if err != nil {
		c.publish(ctx, errorEvent(participantID, fmt.Sprintf("invalid day %q", day)))
		return err
	}

	reports, fetchErr := c.reports.ReportsInWindow(ctx, window.Start, window.End)
	if fetchErr != nil {
		c.metrics.RefreshErrors.Inc()
		c.logger.Error("report fetch failed, scoring empty set", "error", fetchErr, "day", day)
		reports = nil
	}

	board := c.rules.Score(reports, area)
	c.metrics.ReportsScored.Add(float64(len(reports)))

	// Last result wins: discard if a newer refresh has started since.
	c.mu.Lock()
	if c.refreshSeq.Load() != seq {
		c.mu.Unlock()
		c.metrics.StaleDiscarded.Inc()
		c.logger.Debug("discarding superseded refresh", "day", day, "seq", seq)
		return nil
	}
	c.published = board
	c.mu.Unlock()

	c.publish(ctx, scoreEvent(participantID, day, board))
	c.metrics.RefreshDuration.Observe(c.clock.Since(start).Seconds())

	if fetchErr != nil {
		return fmt.Errorf("refresh %s: %w", day, fetchErr)
	}
	return nil
}

// StartPeriodicRefresh begins rescoring the session's current day on the
// configured cadence. Restarting replaces any running timer. The loop stops
// when ctx is cancelled or Stop/Reset is called.
func (c *Controller) StartPeriodicRefresh(ctx context.Context) {
	tickCtx, cancel := context.WithCancel(ctx)

	c.mu.Lock()
	if c.stopPeriodic != nil {
		c.stopPeriodic()
	}
	c.stopPeriodic = cancel
	c.mu.Unlock()

	ticker := c.clock.NewTicker(c.interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-tickCtx.Done():
				return
			case <-ticker.Chan():
				c.mu.Lock()
				day := c.day
				c.mu.Unlock()
				if day == "" {
					continue
				}
				if err := c.Refresh(tickCtx, day); err != nil {
					c.logger.Warn("periodic refresh failed", "error", err, "day", day)
				}
			}
		}
	}()
}

// Stop cancels the periodic refresh, if running.
func (c *Controller) Stop() {
	c.mu.Lock()
	stop := c.stopPeriodic
	c.stopPeriodic = nil
	c.mu.Unlock()
	if stop != nil {
		stop()
	}
}

// Reset tears the session down on logout: timer stopped, polygons cleared,
// published state emptied.
func (c *Controller) Reset() {
	c.Stop()
	c.mu.Lock()
	c.participantID = ""
	c.day = ""
	c.area = domain.ForecastArea{}
	c.published = nil
	c.mu.Unlock()
	c.metrics.SessionActive.Set(0)
	c.logger.Info("session reset")
}

// Scoreboard returns the last published scoreboard, or nil before the first
// publish.
func (c *Controller) Scoreboard() domain.Scoreboard {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.published
}

func (c *Controller) deliverForecast(ctx context.Context, req ForecastRequest) error {
	event := Event{Type: EventForecastData, ParticipantID: req.ParticipantID, Day: req.Day}

	forecast, err := c.forecasts.LatestForecast(ctx, req.ParticipantID, req.Day)
	switch {
	case errors.Is(err, ErrNotFound):
		// Deliver an empty payload; the surface renders a blank map.
	case err != nil:
		c.metrics.RequestErrors.Inc()
		c.logger.Error("forecast lookup failed", "error", err, "participant", req.ParticipantID, "day", req.Day)
	default:
		event.Features = forecast.Features
	}

	c.publish(ctx, event)
	return nil
}

func (c *Controller) saveForecast(ctx context.Context, req SaveForecastRequest) error {
	if req.ParticipantID == "" || req.Day == "" {
		c.publish(ctx, errorEvent(req.ParticipantID, "saveForecast requires participantId and day"))
		return nil
	}

	nick, err := c.identity.DisplayName(ctx, req.ParticipantID)
	if err != nil {
		// Nick resolution is best effort; the save must not block on it.
		c.logger.Warn("display name lookup failed", "error", err, "participant", req.ParticipantID)
		nick = "—"
	}

	forecast := domain.Forecast{
		ParticipantID: req.ParticipantID,
		Day:           req.Day,
		DayType:       req.DayType,
		Nick:          nick,
		Features:      req.Features,
		SubmittedAt:   c.clock.Now(),
	}
	if err := c.forecasts.SaveForecast(ctx, forecast); err != nil {
		c.metrics.RequestErrors.Inc()
		c.logger.Error("forecast save failed", "error", err, "participant", req.ParticipantID, "day", req.Day)
		c.publish(ctx, errorEvent(req.ParticipantID, "forecast could not be saved"))
		return nil
	}
	return nil
}

func (c *Controller) deliverReports(ctx context.Context, req ReportsRequest) error {
	if !req.End.After(req.Start) {
		c.publish(ctx, errorEvent("", "fetchReports requires start < end"))
		return nil
	}

	reports, err := c.reports.ReportsInWindow(ctx, req.Start, req.End)
	if err != nil {
		c.metrics.RequestErrors.Inc()
		c.logger.Error("report fetch failed", "error", err, "start", req.Start, "end", req.End)
		reports = nil
	}

	c.publish(ctx, Event{Type: EventReportsData, Features: reportFeatures(reports)})
	return nil
}

func (c *Controller) deliverLayer(ctx context.Context, req LayerRequest) error {
	event := Event{Type: EventLayerData, Key: req.Key}

	layer, err := c.layers.LatestLayer(ctx, req.Key)
	switch {
	case errors.Is(err, ErrNotFound):
		// Deliver a null layer; the surface skips the overlay.
	case err != nil:
		c.metrics.RequestErrors.Inc()
		c.logger.Error("layer lookup failed", "error", err, "key", req.Key)
	default:
		event.Layer = layer
	}

	c.publish(ctx, event)
	return nil
}

func (c *Controller) publish(ctx context.Context, event Event) {
	if err := c.pub.Publish(ctx, event); err != nil {
		c.metrics.PublishErrors.Inc()
		c.logger.Error("publish failed", "error", err, "type", event.Type)
		return
	}
	c.metrics.EventsPublished.Inc()
}
