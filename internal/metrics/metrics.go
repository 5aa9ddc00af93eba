package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ProviderCallsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cityexplorer_provider_calls_total",
			Help: "Total outbound provider calls",
		},
		[]string{"provider", "status"},
	)

	ProviderLatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "cityexplorer_provider_latency_seconds",
			Help:    "Provider call latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"provider"},
	)

	CacheLookupsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cityexplorer_location_cache_lookups_total",
			Help: "Geocode cache lookups by result",
		},
		[]string{"result"},
	)

	StoreErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cityexplorer_store_errors_total",
			Help: "Location store failures by operation",
		},
		[]string{"op"},
	)

	LocationsStored = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "cityexplorer_locations_stored_total",
			Help: "Total location rows inserted",
		},
	)
)
