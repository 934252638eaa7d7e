package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/bswc/forecast-scoring-service/internal/domain"
)

// ReportRepository covers the report ingestion and listing queries.
type ReportRepository interface {
	CreateReport(ctx context.Context, report domain.Report) (string, error)
	ReportsInWindow(ctx context.Context, start, end time.Time) ([]domain.Report, error)
}

// RankingRepository lists aggregated contest scores.
type RankingRepository interface {
	RankingBetween(ctx context.Context, from, to string) ([]domain.RankingEntry, error)
}

// ReadinessChecker reports whether the service is ready to serve traffic.
type ReadinessChecker interface {
	CheckReadiness(ctx context.Context) error
}

// Server exposes the contest HTTP API plus health, readiness, and metrics
// endpoints.
type Server struct {
	httpServer *http.Server
	reports    ReportRepository
	ranking    RankingRepository
	ready      ReadinessChecker
	resolver   domain.WindowResolver
	logger     *slog.Logger
}

// NewServer wires the chi router. Report listings use plain calendar days in
// the contest offset, matching how observers date their reports.
func NewServer(addr string, reports ReportRepository, ranking RankingRepository, ready ReadinessChecker, resolver domain.WindowResolver, logger *slog.Logger) *Server {
	s := &Server{
		reports:  reports,
		ranking:  ranking,
		ready:    ready,
		resolver: resolver,
		logger:   logger,
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)
	r.Get("/readyz", s.handleReady)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Post("/reports", s.handleCreateReport)
		r.Get("/reports", s.handleListReports)
		r.Get("/ranking", s.handleRanking)
	})

	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	return s
}

// Start begins listening. Returns http.ErrServerClosed on graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully drains connections within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ServeHTTP delegates to the underlying handler, useful for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.httpServer.Handler.ServeHTTP(w, r)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := s.ready.CheckReadiness(ctx); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{
			"status": "not ready",
			"error":  err.Error(),
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

// createReportRequest is the ingestion payload. The report instant is either
// an explicit RFC 3339 reportedAt or a contest day plus an HH:MM clock time
// in the contest offset.
type createReportRequest struct {
	Hazard     string  `json:"hazard"`
	Severity   string  `json:"sev"`
	Lat        float64 `json:"lat"`
	Lon        float64 `json:"lon"`
	Author     string  `json:"author"`
	Day        string  `json:"day"`
	Time       string  `json:"time"`
	ReportedAt string  `json:"reportedAt"`
}

func (s *Server) handleCreateReport(w http.ResponseWriter, r *http.Request) {
	var req createReportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	if _, ok := domain.ParseHazard(req.Hazard); !ok {
		writeError(w, http.StatusBadRequest, "hazard must be one of hail, wind, tornado")
		return
	}
	if !finiteCoord(req.Lat, -90, 90) || !finiteCoord(req.Lon, -180, 180) {
		writeError(w, http.StatusBadRequest, "lat/lon out of range")
		return
	}

	reportedAt, err := s.reportInstant(req)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	id, err := s.reports.CreateReport(r.Context(), domain.Report{
		Hazard:     strings.ToLower(strings.TrimSpace(req.Hazard)),
		Severity:   req.Severity,
		Lat:        req.Lat,
		Lon:        req.Lon,
		Author:     req.Author,
		ReportedAt: reportedAt,
	})
	if err != nil {
		s.logger.Error("report insert failed", "error", err)
		writeError(w, http.StatusInternalServerError, "could not store report")
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"id": id})
}

func (s *Server) reportInstant(req createReportRequest) (time.Time, error) {
	if req.ReportedAt != "" {
		t, err := time.Parse(time.RFC3339, req.ReportedAt)
		if err != nil {
			return time.Time{}, errors.New("reportedAt must be RFC 3339")
		}
		return t, nil
	}
	if req.Day == "" {
		return time.Time{}, errors.New("day or reportedAt is required")
	}

	hour, minute := 0, 0
	if req.Time != "" {
		parts := strings.SplitN(req.Time, ":", 2)
		var errH, errM error
		if len(parts) == 2 {
			hour, errH = strconv.Atoi(parts[0])
			minute, errM = strconv.Atoi(parts[1])
		}
		if len(parts) != 2 || errH != nil || errM != nil || hour < 0 || hour > 23 || minute < 0 || minute > 59 {
			return time.Time{}, errors.New("time must be HH:MM")
		}
	}
	return s.resolver.At(req.Day, hour, minute)
}

func (s *Server) handleListReports(w http.ResponseWriter, r *http.Request) {
	day := r.URL.Query().Get("date")
	window, err := s.resolver.CalendarDay(day)
	if err != nil {
		writeError(w, http.StatusBadRequest, "date parameter must be YYYY-MM-DD")
		return
	}

	reports, err := s.reports.ReportsInWindow(r.Context(), window.Start, window.End)
	if err != nil {
		// Degrade to an empty collection; the map renders nothing.
		s.logger.Error("report listing failed", "error", err, "date", day)
		reports = nil
	}

	fc := geojson.NewFeatureCollection()
	for _, rep := range reports {
		if !rep.HasFiniteCoords() {
			continue
		}
		f := geojson.NewFeature(orb.Point{rep.Lon, rep.Lat})
		f.Properties = geojson.Properties{
			"hazard": rep.Hazard,
			"sev":    string(domain.ParseSeverity(rep.Severity)),
			"author": rep.Author,
			"time":   rep.ReportedAt.Format(time.RFC3339),
		}
		fc.Append(f)
	}
	writeJSON(w, http.StatusOK, fc)
}

func (s *Server) handleRanking(w http.ResponseWriter, r *http.Request) {
	from := r.URL.Query().Get("from")
	to := r.URL.Query().Get("to")
	if !validDay(from) || !validDay(to) {
		writeError(w, http.StatusBadRequest, "from and to parameters must be YYYY-MM-DD")
		return
	}

	entries, err := s.ranking.RankingBetween(r.Context(), from, to)
	if err != nil {
		s.logger.Error("ranking query failed", "error", err, "from", from, "to", to)
		writeError(w, http.StatusInternalServerError, "could not load ranking")
		return
	}
	if entries == nil {
		entries = []domain.RankingEntry{}
	}
	writeJSON(w, http.StatusOK, entries)
}

func validDay(day string) bool {
	_, err := time.Parse(domain.DayFormat, day)
	return err == nil
}

func finiteCoord(v, lo, hi float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0) && v >= lo && v <= hi
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck // best-effort response
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
