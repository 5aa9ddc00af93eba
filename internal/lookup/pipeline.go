// Package lookup orchestrates provider calls, normalization and persistence
// for each query type.
package lookup

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/lox/cityexplorer/internal/metrics"
	"github.com/lox/cityexplorer/internal/models"
	"github.com/lox/cityexplorer/internal/normalize"
	"github.com/lox/cityexplorer/internal/provider"
)

// Provider is the outbound side of the pipeline. *provider.Client satisfies it.
type Provider interface {
	GeocodeRequest(query string) provider.Request
	Geocode(ctx context.Context, req provider.Request) (*provider.GeocodeResponse, error)
	Weather(ctx context.Context, lat, lon float64) (*provider.WeatherResponse, error)
	Trails(ctx context.Context, lat, lon float64) (*provider.TrailsResponse, error)
	Movies(ctx context.Context, query string) (*provider.MoviesResponse, error)
}

// LocationStore is the durable side of the geocode path. *store.Store
// satisfies it.
type LocationStore interface {
	InsertLocation(ctx context.Context, lat, lon float64, placeID string) (*models.LocationRow, error)
	ListLocations(ctx context.Context) ([]models.LocationRow, error)
}

type Pipeline struct {
	provider Provider
	store    LocationStore
	cache    *Cache
	loc      *time.Location
	log      *zap.Logger
}

type Option func(*Pipeline)

func WithLogger(log *zap.Logger) Option {
	return func(p *Pipeline) { p.log = log }
}

// WithTimezone sets the zone weather days are rendered in.
func WithTimezone(loc *time.Location) Option {
	return func(p *Pipeline) { p.loc = loc }
}

func NewPipeline(prov Provider, st LocationStore, cache *Cache, opts ...Option) *Pipeline {
	if cache == nil {
		cache = NewCache()
	}
	p := &Pipeline{
		provider: prov,
		store:    st,
		cache:    cache,
		loc:      time.UTC,
		log:      zap.NewNop(),
	}
	for _, opt := range opts {
		opt(p)
	}
	p.log = p.log.Named("lookup")
	return p
}

// Location geocodes query, serving repeats from the in-memory cache. A fresh
// result is persisted best-effort: a store failure is logged and counted but
// the location is still memoized and returned.
//
// Concurrent misses on the same query are not coalesced; each may call the
// provider and insert its own row.
func (p *Pipeline) Location(ctx context.Context, query string) (models.Location, error) {
	req := p.provider.GeocodeRequest(query)
	fingerprint := req.Target

	if loc, ok := p.cache.Get(fingerprint); ok {
		metrics.CacheLookupsTotal.WithLabelValues("hit").Inc()
		p.log.Debug("cache hit", zap.String("target", req.Redacted()))
		return loc, nil
	}
	metrics.CacheLookupsTotal.WithLabelValues("miss").Inc()

	resp, err := p.provider.Geocode(ctx, req)
	if err != nil {
		return models.Location{}, err
	}

	loc, err := normalize.Location(query, resp)
	if err != nil {
		var nre *normalize.NoResultError
		if errors.As(err, &nre) {
			nre.Target = req.Redacted()
		}
		return models.Location{}, err
	}

	// the write outlives a client that hangs up mid-request
	row, err := p.store.InsertLocation(context.WithoutCancel(ctx), loc.Latitude, loc.Longitude, loc.PlaceID)
	if err != nil {
		p.log.Error("persist location failed",
			zap.String("target", req.Redacted()),
			zap.String("place_id", loc.PlaceID),
			zap.Error(err))
	} else {
		p.log.Debug("persisted location", zap.Int64("id", row.ID), zap.String("place_id", row.PlaceID))
	}

	p.cache.Put(fingerprint, loc)
	return loc, nil
}

func (p *Pipeline) Weather(ctx context.Context, lat, lon float64) ([]models.WeatherDay, error) {
	resp, err := p.provider.Weather(ctx, lat, lon)
	if err != nil {
		return nil, err
	}
	return normalize.WeatherDays(resp, p.loc), nil
}

func (p *Pipeline) Trails(ctx context.Context, lat, lon float64) ([]models.Trail, error) {
	resp, err := p.provider.Trails(ctx, lat, lon)
	if err != nil {
		return nil, err
	}
	return normalize.Trails(resp), nil
}

func (p *Pipeline) Movies(ctx context.Context, query string) ([]models.MovieSummary, error) {
	resp, err := p.provider.Movies(ctx, query)
	if err != nil {
		return nil, err
	}
	return normalize.Movies(resp), nil
}

// LocationTable returns every persisted location. Unlike the geocode path, a
// store failure here fails the call.
func (p *Pipeline) LocationTable(ctx context.Context) ([]models.LocationRow, error) {
	return p.store.ListLocations(ctx)
}

// CachedLocations reports how many fingerprints are memoized.
func (p *Pipeline) CachedLocations() int {
	return p.cache.Len()
}
