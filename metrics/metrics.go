package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	LookupsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "postzone_lookups_total",
		Help: "Total number of /api/zone requests",
	})
	LookupDurationMs = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "postzone_lookup_duration_ms",
		Help:    "Lookup duration in milliseconds",
		Buckets: []float64{1, 5, 10, 20, 50, 100, 200, 500, 1000},
	})
	LookupHitsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "postzone_lookup_hits_total",
		Help: "Lookups resolved to a zone, by method",
	}, []string{"method"})
	LookupMissesTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "postzone_lookup_misses_total",
		Help: "Lookups that resolved to no zone",
	})
	RedisHitsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "postzone_redis_hits_total",
		Help: "Total redis cache hits",
	})
	RedisMissesTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "postzone_redis_misses_total",
		Help: "Total redis cache misses",
	})
)

func init() {
	prometheus.MustRegister(LookupsTotal)
	prometheus.MustRegister(LookupDurationMs)
	prometheus.MustRegister(LookupHitsTotal)
	prometheus.MustRegister(LookupMissesTotal)
	prometheus.MustRegister(RedisHitsTotal)
	prometheus.MustRegister(RedisMissesTotal)
}

// Handler exposes the registered collectors for scraping; mounted at
// /metrics by zone-api.
func Handler() http.Handler { return promhttp.Handler() }
