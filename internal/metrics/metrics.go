package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics exposes the engine's counters. A single instance is shared by the
// upstream client, the cache, and the governor.
type Metrics struct {
	UpstreamRequests *prometheus.CounterVec
	UpstreamDuration *prometheus.HistogramVec
	UpstreamRetries  prometheus.Counter

	CacheHits    prometheus.Counter
	CacheMisses  prometheus.Counter
	CacheBypass  prometheus.Counter
	FlightShared prometheus.Counter
}

func New() *Metrics {
	return &Metrics{
		UpstreamRequests: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "pubg_upstream_requests_total",
			Help: "Upstream PUBG API calls by endpoint and outcome.",
		}, []string{"endpoint", "outcome"}),
		UpstreamDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "pubg_upstream_request_seconds",
			Help:    "Upstream PUBG API call latency.",
			Buckets: prometheus.DefBuckets,
		}, []string{"endpoint"}),
		UpstreamRetries: promauto.NewCounter(prometheus.CounterOpts{
			Name: "pubg_upstream_retries_total",
			Help: "Retries performed after throttling or transport failures.",
		}),
		CacheHits: promauto.NewCounter(prometheus.CounterOpts{
			Name: "stats_cache_hits_total",
			Help: "Aggregate cache reads served from a valid entry.",
		}),
		CacheMisses: promauto.NewCounter(prometheus.CounterOpts{
			Name: "stats_cache_misses_total",
			Help: "Aggregate cache reads that triggered a computation.",
		}),
		CacheBypass: promauto.NewCounter(prometheus.CounterOpts{
			Name: "stats_cache_bypass_total",
			Help: "Forced refreshes that skipped a valid entry.",
		}),
		FlightShared: promauto.NewCounter(prometheus.CounterOpts{
			Name: "stats_singleflight_shared_total",
			Help: "Callers that piggybacked on an in-flight computation.",
		}),
	}
}

// NewNop returns metrics backed by a throwaway registry, for tests and the
// CLI where nothing scrapes them.
func NewNop() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)
	return &Metrics{
		UpstreamRequests: factory.NewCounterVec(prometheus.CounterOpts{Name: "pubg_upstream_requests_total", Help: "unused"}, []string{"endpoint", "outcome"}),
		UpstreamDuration: factory.NewHistogramVec(prometheus.HistogramOpts{Name: "pubg_upstream_request_seconds", Help: "unused"}, []string{"endpoint"}),
		UpstreamRetries:  factory.NewCounter(prometheus.CounterOpts{Name: "pubg_upstream_retries_total", Help: "unused"}),
		CacheHits:        factory.NewCounter(prometheus.CounterOpts{Name: "stats_cache_hits_total", Help: "unused"}),
		CacheMisses:      factory.NewCounter(prometheus.CounterOpts{Name: "stats_cache_misses_total", Help: "unused"}),
		CacheBypass:      factory.NewCounter(prometheus.CounterOpts{Name: "stats_cache_bypass_total", Help: "unused"}),
		FlightShared:     factory.NewCounter(prometheus.CounterOpts{Name: "stats_singleflight_shared_total", Help: "unused"}),
	}
}
