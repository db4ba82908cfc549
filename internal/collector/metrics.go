package collector

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	fetchDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "ratiochart_fetch_duration_seconds",
			Help:    "Latency of provider series fetches",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"provider", "granularity"},
	)

	fetchErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ratiochart_fetch_errors_total",
			Help: "Provider fetch failures by error kind",
		},
		[]string{"provider", "kind"},
	)

	breakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "ratiochart_breaker_state",
			Help: "Provider circuit breaker state (0 closed, 1 half-open, 2 open)",
		},
		[]string{"provider"},
	)

	collectTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ratiochart_collect_total",
			Help: "Ratio collections by outcome",
		},
		[]string{"outcome"},
	)
)
