package handler

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	conversionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "bankconvert_conversions_total",
		Help: "Conversion requests by operation and outcome.",
	}, []string{"operation", "status"})

	rowsEmittedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "bankconvert_rows_emitted_total",
		Help: "Transaction rows emitted by operation.",
	}, []string{"operation"})

	conversionDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "bankconvert_conversion_duration_seconds",
		Help:    "End-to-end conversion request duration.",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation"})
)

func observe(operation, status string, rows int, elapsed time.Duration) {
	conversionsTotal.WithLabelValues(operation, status).Inc()
	if rows > 0 {
		rowsEmittedTotal.WithLabelValues(operation).Add(float64(rows))
	}
	conversionDuration.WithLabelValues(operation).Observe(elapsed.Seconds())
}
