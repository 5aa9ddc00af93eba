package api

import (
	"net/http"
)

func (s *Server) handleLocation(w http.ResponseWriter, r *http.Request) {
	query, err := searchQuery(r, "location")
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	loc, err := s.pipeline.Location(r.Context(), query)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, r, http.StatusOK, loc)
}

func (s *Server) handleWeather(w http.ResponseWriter, r *http.Request) {
	lat, lon, err := coordinates(r, "weather")
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	days, err := s.pipeline.Weather(r.Context(), lat, lon)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, r, http.StatusOK, days)
}

func (s *Server) handleTrails(w http.ResponseWriter, r *http.Request) {
	lat, lon, err := coordinates(r, "trails")
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	trails, err := s.pipeline.Trails(r.Context(), lat, lon)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, r, http.StatusOK, trails)
}

func (s *Server) handleMovies(w http.ResponseWriter, r *http.Request) {
	query, err := searchQuery(r, "movies")
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	movies, err := s.pipeline.Movies(r.Context(), query)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, r, http.StatusOK, movies)
}

func (s *Server) handleLocationTable(w http.ResponseWriter, r *http.Request) {
	rows, err := s.pipeline.LocationTable(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, r, http.StatusOK, rows)
}

type HealthStatus struct {
	Status          string `json:"status"`
	CachedLocations int    `json:"cached_locations"`
	Error           string `json:"error,omitempty"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	health := HealthStatus{
		Status:          "ok",
		CachedLocations: s.pipeline.CachedLocations(),
	}

	if err := s.store.Ping(r.Context()); err != nil {
		health.Status = "error"
		health.Error = err.Error()
		s.writeJSON(w, r, http.StatusServiceUnavailable, health)
		return
	}

	s.writeJSON(w, r, http.StatusOK, health)
}
