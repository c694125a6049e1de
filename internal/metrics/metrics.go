package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Pool metrics
	PoolCount = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "swaprouter_pool_count",
		Help: "Total number of pools in the registry",
	})

	ReadyPoolCount = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "swaprouter_ready_pool_count",
		Help: "Number of active pools in the routing graph",
	})

	MintCount = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "swaprouter_mint_count",
		Help: "Number of mints with known decimals",
	})

	PoolUpdates = promauto.NewCounter(prometheus.CounterOpts{
		Name: "swaprouter_pool_updates_total",
		Help: "Total number of pool updates applied to the graph",
	})

	GraphSnapshotRebuilds = promauto.NewCounter(prometheus.CounterOpts{
		Name: "swaprouter_graph_snapshot_rebuilds_total",
		Help: "Total number of graph snapshot rebuilds",
	})

	// Persistence metrics
	PoolsPersisted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "swaprouter_pools_persisted_total",
		Help: "Total number of pool records written to disk",
	})

	PersistFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "swaprouter_persist_failures_total",
		Help: "Total number of failed persistence batches",
	})

	// Quote metrics
	QuoteRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "swaprouter_quote_requests_total",
			Help: "Total number of quote requests",
		},
		[]string{"side", "status"},
	)

	QuoteDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "swaprouter_quote_duration_seconds",
			Help:    "Quote request duration in seconds",
			Buckets: []float64{0.0001, 0.0005, 0.001, 0.002, 0.005, 0.01, 0.02, 0.05, 0.1},
		},
		[]string{"side"},
	)

	RoutesEnumerated = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "swaprouter_routes_enumerated",
		Help:    "Number of candidate routes evaluated per quote request",
		Buckets: []float64{0, 1, 2, 5, 10, 20, 50, 100, 500},
	})

	QuoteCacheHits = promauto.NewCounter(prometheus.CounterOpts{
		Name: "swaprouter_quote_cache_hits_total",
		Help: "Total number of quote cache hits",
	})

	QuoteCacheMisses = promauto.NewCounter(prometheus.CounterOpts{
		Name: "swaprouter_quote_cache_misses_total",
		Help: "Total number of quote cache misses",
	})

	QuoteCacheSize = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "swaprouter_quote_cache_size",
		Help: "Current number of entries in quote cache",
	})

	PriceImpact = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "swaprouter_price_impact_bps",
			Help:    "Price impact in basis points",
			Buckets: []float64{0, 10, 50, 100, 300, 500, 1000, 5000, 10000},
		},
		[]string{"severity"},
	)

	// HTTP metrics
	HTTPRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "swaprouter_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "swaprouter_http_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)
)
