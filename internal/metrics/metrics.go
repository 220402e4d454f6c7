// Package metrics holds the Prometheus collectors of the service.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Outcome labels.
const (
	OutcomeOK      = "ok"
	OutcomeInvalid = "invalid"
	OutcomeOutside = "outside"
	OutcomeError   = "error"
)

var (
	LocationQueries = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "dtw",
		Name:      "location_queries_total",
		Help:      "Location queries by outcome",
	}, []string{"outcome"})

	LocationQueryDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "dtw",
		Name:      "location_query_duration_seconds",
		Help:      "Location query latency in seconds",
		Buckets:   []float64{0.0005, 0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
	})

	Reprojections = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "dtw",
		Name:      "reprojections_total",
		Help:      "Coordinate reprojections by outcome",
	}, []string{"outcome"})
)

// ObserveLocation records one location query.
func ObserveLocation(outcome string, start time.Time) {
	LocationQueries.WithLabelValues(outcome).Inc()
	LocationQueryDuration.Observe(time.Since(start).Seconds())
}

// ObserveReprojection records one reprojection.
func ObserveReprojection(err error) {
	if err != nil {
		Reprojections.WithLabelValues(OutcomeError).Inc()
		return
	}
	Reprojections.WithLabelValues(OutcomeOK).Inc()
}

// Handler serves the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
