// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func findFamily(t *testing.T, name string) *dto.MetricFamily {
	t.Helper()
	families, err := prometheus.DefaultGatherer.Gather()
	require.NoError(t, err)
	for _, mf := range families {
		if mf.GetName() == name {
			return mf
		}
	}
	t.Fatalf("metric family %s not registered", name)
	return nil
}

func TestRelayCounters(t *testing.T) {
	before := testutil.ToFloat64(RelayBytesTotal.WithLabelValues("/api/test"))
	AddRelayBytes("/api/test", 1024)
	AddRelayBytes("/api/test", 0)
	AddRelayBytes("/api/test", -5)
	assert.Equal(t, before+1024, testutil.ToFloat64(RelayBytesTotal.WithLabelValues("/api/test")))

	beforeOutcome := testutil.ToFloat64(RelayOutcomeTotal.WithLabelValues("/api/test", "cancelled"))
	IncRelayOutcome("/api/test", "cancelled")
	assert.Equal(t, beforeOutcome+1, testutil.ToFloat64(RelayOutcomeTotal.WithLabelValues("/api/test", "cancelled")))
}

func TestResolverMetrics(t *testing.T) {
	ObserveResolverCall("metadata", true, 150*time.Millisecond)
	ObserveResolverCall("metadata", false, time.Second)

	mf := findFamily(t, "vidgate_resolver_call_duration_seconds")
	assert.Equal(t, dto.MetricType_HISTOGRAM, mf.GetType())
	assert.GreaterOrEqual(t, len(mf.GetMetric()), 2)

	before := testutil.ToFloat64(ResolverErrorsTotal.WithLabelValues("download", "NOT_FOUND"))
	IncResolverError("download", "NOT_FOUND")
	assert.Equal(t, before+1, testutil.ToFloat64(ResolverErrorsTotal.WithLabelValues("download", "NOT_FOUND")))
}

func TestCatalogBucketHistogram(t *testing.T) {
	ObserveCatalogBucket("audio-only", 5)
	mf := findFamily(t, "vidgate_catalog_bucket_size")
	require.NotEmpty(t, mf.GetMetric())
	var total uint64
	for _, m := range mf.GetMetric() {
		total += m.GetHistogram().GetSampleCount()
	}
	assert.GreaterOrEqual(t, total, uint64(1))
}
