// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RelayBytesTotal counts bytes forwarded from the resolver to clients.
	RelayBytesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "vidgate_relay_bytes_total",
		Help: "Bytes relayed to clients by route",
	}, []string{"route"})

	// RelayOutcomeTotal counts terminal relay states.
	RelayOutcomeTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "vidgate_relay_outcome_total",
		Help: "Terminal relay states (completed, failed, cancelled) by route",
	}, []string{"route", "outcome"})

	// RelaysActive tracks relays currently streaming.
	RelaysActive = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "vidgate_relays_active",
		Help: "Relays currently streaming bytes to a client",
	})

	// CatalogBucketSize tracks how many descriptors each catalog bucket returned.
	CatalogBucketSize = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "vidgate_catalog_bucket_size",
		Help:    "Descriptors per catalog bucket",
		Buckets: []float64{0, 1, 2, 3, 4, 5},
	}, []string{"bucket"})
)

// AddRelayBytes records n relayed bytes.
func AddRelayBytes(route string, n int) {
	if n > 0 {
		RelayBytesTotal.WithLabelValues(route).Add(float64(n))
	}
}

// IncRelayOutcome records a terminal relay state.
func IncRelayOutcome(route, outcome string) {
	RelayOutcomeTotal.WithLabelValues(route, outcome).Inc()
}

// ObserveCatalogBucket records the size of one catalog bucket.
func ObserveCatalogBucket(bucket string, size int) {
	CatalogBucketSize.WithLabelValues(bucket).Observe(float64(size))
}
