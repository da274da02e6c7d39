// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package metrics holds the Prometheus collectors of the gateway.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ResolverCallDuration tracks the latency of calls into the external resolver.
	ResolverCallDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "vidgate_resolver_call_duration_seconds",
		Help:    "Latency of resolver calls by operation and result",
		Buckets: []float64{0.1, 0.25, 0.5, 1, 2, 3, 5, 8, 13, 20, 30},
	}, []string{"operation", "result"})

	// ResolverErrorsTotal counts classified resolver failures.
	ResolverErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "vidgate_resolver_errors_total",
		Help: "Resolver failures by operation and classified error code",
	}, []string{"operation", "code"})
)

// ObserveResolverCall records the duration and outcome of one resolver call.
func ObserveResolverCall(operation string, success bool, d time.Duration) {
	result := "failure"
	if success {
		result = "success"
	}
	ResolverCallDuration.WithLabelValues(operation, result).Observe(d.Seconds())
}

// IncResolverError records a classified resolver failure.
func IncResolverError(operation, code string) {
	ResolverErrorsTotal.WithLabelValues(operation, code).Inc()
}
