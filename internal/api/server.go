// Package api exposes the aggregator over HTTP. Handlers are thin: decode,
// delegate to the query layer or the venue catalogue, encode.
package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sort"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/goccy/go-json"

	"github.com/courtscan/courtscan/internal/pkg/config"
	"github.com/courtscan/courtscan/internal/pkg/geo"
	"github.com/courtscan/courtscan/internal/pkg/models"
	"github.com/courtscan/courtscan/internal/pkg/storage"
	"github.com/courtscan/courtscan/internal/query"
)

type Server struct {
	cfg      *config.APIConfig
	venues   storage.VenueCatalogue
	search   *query.Service
	geocoder query.Geocoder
}

func NewServer(cfg *config.APIConfig, venues storage.VenueCatalogue, search *query.Service, geocoder query.Geocoder) *Server {
	return &Server{cfg: cfg, venues: venues, search: search, geocoder: geocoder}
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)
	r.Get("/venues", s.handleVenues)
	r.Get("/venues/sports/{sport}", s.handleVenuesBySport)
	r.Get("/venues/near", s.handleVenuesNear)
	r.Post("/search/{sport}", s.handleSearch)
	return r
}

// ListenAndServe blocks until the context is cancelled, then shuts the server
// down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.ListenAddr,
		Handler:           s.Router(),
		ReadHeaderTimeout: s.cfg.ReadHeaderTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("API server listening", "addr", s.cfg.ListenAddr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleVenues(w http.ResponseWriter, r *http.Request) {
	venues, err := s.venues.ListAll(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, venues)
}

func (s *Server) handleVenuesBySport(w http.ResponseWriter, r *http.Request) {
	sport, err := models.ParseSport(chi.URLParam(r, "sport"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	venues, err := s.venues.ListOfferingSport(r.Context(), sport)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, venues)
}

type nearbyVenue struct {
	models.Venue
	DistanceMiles float64 `json:"distance_miles"`
}

func (s *Server) handleVenuesNear(w http.ResponseWriter, r *http.Request) {
	postcode := r.URL.Query().Get("postcode")
	if postcode == "" {
		writeError(w, http.StatusBadRequest, fmt.Errorf("postcode query parameter is required"))
		return
	}
	distance := 5.0
	if raw := r.URL.Query().Get("distance"); raw != "" {
		var err error
		if distance, err = strconv.ParseFloat(raw, 64); err != nil || distance <= 0 {
			writeError(w, http.StatusBadRequest, fmt.Errorf("invalid distance %q", raw))
			return
		}
	}

	origin, err := s.geocoder.Geocode(r.Context(), postcode)
	if err != nil {
		writeGeoError(w, err)
		return
	}
	venues, err := s.venues.ListAll(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}

	nearby := []nearbyVenue{}
	for _, v := range venues {
		d := geo.DistanceMiles(origin, geo.Point{Latitude: v.Latitude, Longitude: v.Longitude})
		if d <= distance {
			nearby = append(nearby, nearbyVenue{Venue: v, DistanceMiles: d})
		}
	}
	sort.Slice(nearby, func(i, j int) bool { return nearby[i].DistanceMiles < nearby[j].DistanceMiles })
	writeJSON(w, http.StatusOK, nearby)
}

// searchRequest is the POST /search/{sport} body.
type searchRequest struct {
	Date        string   `json:"date"`
	Postcode    string   `json:"postcode"`
	RadiusMiles float64  `json:"radius_miles"`
	StartTime   string   `json:"start_time"`
	EndTime     string   `json:"end_time"`
	Venues      []string `json:"venues"`
	SortBy      string   `json:"sort_by"`
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	sport, err := models.ParseSport(chi.URLParam(r, "sport"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	var req searchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("invalid request body: %w", err))
		return
	}
	criteria, err := req.toCriteria(sport)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	groups, err := s.search.Search(r.Context(), criteria)
	if err != nil {
		writeGeoError(w, err)
		return
	}
	if groups == nil {
		groups = []query.VenueGroup{}
	}
	writeJSON(w, http.StatusOK, groups)
}

func (r searchRequest) toCriteria(sport models.Sport) (query.Criteria, error) {
	date, err := time.Parse("2006-01-02", r.Date)
	if err != nil {
		return query.Criteria{}, fmt.Errorf("invalid date %q (want YYYY-MM-DD)", r.Date)
	}
	start := models.NewClockTime(0, 0)
	if r.StartTime != "" {
		if start, err = models.ParseClockTime(r.StartTime); err != nil {
			return query.Criteria{}, fmt.Errorf("invalid start_time: %w", err)
		}
	}
	end := models.NewClockTime(23, 59)
	if r.EndTime != "" {
		if end, err = models.ParseClockTime(r.EndTime); err != nil {
			return query.Criteria{}, fmt.Errorf("invalid end_time: %w", err)
		}
	}
	sortBy := r.SortBy
	switch sortBy {
	case "", query.SortByDistance:
		sortBy = query.SortByDistance
	case query.SortByPrice:
	default:
		return query.Criteria{}, fmt.Errorf("invalid sort_by %q (want distance or price)", r.SortBy)
	}
	radius := r.RadiusMiles
	if radius <= 0 {
		radius = 5
	}
	return query.Criteria{
		Sport:           sport,
		Date:            date,
		Postcode:        r.Postcode,
		RadiusMiles:     radius,
		StartTime:       start,
		EndTime:         end,
		SpecifiedVenues: r.Venues,
		SortBy:          sortBy,
	}, nil
}

func writeGeoError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, geo.ErrInvalidPostcode):
		writeError(w, http.StatusBadRequest, err)
	case errors.Is(err, storage.ErrVenueNotFound):
		writeError(w, http.StatusNotFound, err)
	default:
		writeError(w, http.StatusInternalServerError, err)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Warn("Response encoding failed", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, err error) {
	if status >= http.StatusInternalServerError {
		slog.Error("Request failed", "status", status, "error", err)
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
