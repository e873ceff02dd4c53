package observability

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func collect(t *testing.T, reader *metric.ManualReader) map[string]metricdata.Metrics {
	t.Helper()
	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))

	out := map[string]metricdata.Metrics{}
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			out[m.Name] = m
		}
	}
	return out
}

func TestRecordAssignment(t *testing.T) {
	reader := metric.NewManualReader()
	o := NewWithReader("scoring-test", reader)
	defer o.Shutdown()

	o.RecordAssignment(context.Background(), "flag_based", 12*time.Millisecond)
	o.RecordAssignment(context.Background(), "flag_based", 8*time.Millisecond)
	o.RecordAssignment(context.Background(), "hybrid", time.Millisecond)

	got := collect(t, reader)

	sum, ok := got["scoring.assignments"].Data.(metricdata.Sum[int64])
	require.True(t, ok)
	total := int64(0)
	for _, dp := range sum.DataPoints {
		total += dp.Value
	}
	assert.Equal(t, int64(3), total)
	assert.Len(t, sum.DataPoints, 2)

	hist, ok := got["scoring.assignment.duration"].Data.(metricdata.Histogram[float64])
	require.True(t, ok)
	assert.Len(t, hist.DataPoints, 2)
}

func TestRecordJob(t *testing.T) {
	reader := metric.NewManualReader()
	o := NewWithReader("scoring-test", reader)

	o.RecordJobProcessed(context.Background(), "assign-test-result", "completed")
	o.RecordJobDuration(context.Background(), "assign-test-result", 30*time.Millisecond, "completed")

	got := collect(t, reader)
	assert.Contains(t, got, "jobs.processed")
	assert.Contains(t, got, "jobs.duration")
}

func TestZeroValueIsNoop(t *testing.T) {
	var o *Observability
	assert.NotPanics(t, func() {
		o.RecordAssignment(context.Background(), "hybrid", time.Second)
		o.RecordJobProcessed(context.Background(), "x", "failed")
		o.Shutdown()
	})
	assert.NotPanics(t, func() {
		(&Observability{}).RecordJobDuration(context.Background(), "x", time.Second, "failed")
	})
}
