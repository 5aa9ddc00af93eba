package api

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
	"go.uber.org/zap"

	"github.com/lox/cityexplorer/internal/models"
)

// NotFoundBody is the fixed body for unmatched routes.
const NotFoundBody = "huh?"

// Pipeline is the lookup surface the handlers call. *lookup.Pipeline
// satisfies it.
type Pipeline interface {
	Location(ctx context.Context, query string) (models.Location, error)
	Weather(ctx context.Context, lat, lon float64) ([]models.WeatherDay, error)
	Trails(ctx context.Context, lat, lon float64) ([]models.Trail, error)
	Movies(ctx context.Context, query string) ([]models.MovieSummary, error)
	LocationTable(ctx context.Context) ([]models.LocationRow, error)
	CachedLocations() int
}

// Pinger reports store health.
type Pinger interface {
	Ping(ctx context.Context) error
}

type Server struct {
	pipeline Pipeline
	store    Pinger
	port     string
	log      *zap.Logger
}

func NewServer(pipeline Pipeline, store Pinger, port string, log *zap.Logger) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	return &Server{
		pipeline: pipeline,
		store:    store,
		port:     port,
		log:      log.Named("api"),
	}
}

func (s *Server) Handler() http.Handler {
	r := mux.NewRouter()
	r.HandleFunc("/location", s.handleLocation).Methods(http.MethodGet)
	r.HandleFunc("/weather", s.handleWeather).Methods(http.MethodGet)
	r.HandleFunc("/trails", s.handleTrails).Methods(http.MethodGet)
	r.HandleFunc("/movies", s.handleMovies).Methods(http.MethodGet)
	r.HandleFunc("/location_table", s.handleLocationTable).Methods(http.MethodGet)
	r.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)
	r.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)
	r.NotFoundHandler = http.HandlerFunc(handleNotFound)
	r.MethodNotAllowedHandler = http.HandlerFunc(handleNotFound)

	c := cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodHead},
	})

	// mux middleware skips the NotFoundHandler, so wrap the router instead
	return c.Handler(s.requestID(s.accessLog(r)))
}

func (s *Server) Run(ctx context.Context) error {
	server := &http.Server{
		Addr:              ":" + s.port,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			s.log.Warn("shutdown", zap.Error(err))
		}
	}()

	s.log.Info("listening", zap.String("addr", server.Addr))
	if err := server.ListenAndServe(); err != http.ErrServerClosed {
		return err
	}
	return nil
}

func handleNotFound(w http.ResponseWriter, r *http.Request) {
	writeText(w, http.StatusNotFound, NotFoundBody)
}

// writeError reports err to the client as a plain-text 500.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	loggerFrom(r.Context(), s.log).Warn("request failed",
		zap.String("path", r.URL.Path),
		zap.Error(err))
	writeText(w, http.StatusInternalServerError, err.Error())
}

func writeText(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(status)
	io.WriteString(w, body)
}

func (s *Server) writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		loggerFrom(r.Context(), s.log).Warn("write response", zap.Error(err))
	}
}
