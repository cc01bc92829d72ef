package store

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	upstreamFetches = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "population",
		Subsystem: "store",
		Name:      "upstream_fetches_total",
		Help:      "Upstream population fetches by outcome.",
	}, []string{"outcome"})

	cacheHits = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "population",
		Subsystem: "store",
		Name:      "cache_hits_total",
		Help:      "FetchOne calls served from the cache.",
	})

	cachedRecords = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "population",
		Subsystem: "store",
		Name:      "cached_records",
		Help:      "Records held by the most recently updated store.",
	})

	inflight = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "population",
		Subsystem: "store",
		Name:      "inflight_fetches",
		Help:      "Upstream population fetches currently in flight.",
	})
)
