package metrics_test

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/udoprog/livemix-go/metrics"
)

func TestDecodeErrorCountIsLabeled(t *testing.T) {
	metrics.DecodeErrorCount.Reset()
	metrics.DecodeErrorCount.With(prometheus.Labels{"kind": "buffer_underflow"}).Inc()

	got := testutil.ToFloat64(metrics.DecodeErrorCount.With(prometheus.Labels{"kind": "buffer_underflow"}))
	if got != 1 {
		t.Fatalf("DecodeErrorCount = %v, want 1", got)
	}
}

func TestTriggerCountIsLabeled(t *testing.T) {
	metrics.TriggerCount.Reset()
	metrics.TriggerCount.With(prometheus.Labels{"outcome": "ok"}).Inc()
	metrics.TriggerCount.With(prometheus.Labels{"outcome": "ok"}).Inc()
	metrics.TriggerCount.With(prometheus.Labels{"outcome": "skipped"}).Inc()

	if got := testutil.ToFloat64(metrics.TriggerCount.With(prometheus.Labels{"outcome": "ok"})); got != 2 {
		t.Fatalf("TriggerCount[ok] = %v, want 2", got)
	}
	if got := testutil.ToFloat64(metrics.TriggerCount.With(prometheus.Labels{"outcome": "skipped"})); got != 1 {
		t.Fatalf("TriggerCount[skipped] = %v, want 1", got)
	}
}

func TestFrameSizeHistogramObserves(t *testing.T) {
	metrics.FrameSizeHistogram.Observe(128)
	if got := testutil.CollectAndCount(metrics.FrameSizeHistogram); got != 1 {
		t.Fatalf("CollectAndCount = %d, want 1", got)
	}
}
