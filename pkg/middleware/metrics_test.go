package middleware

import (
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestPrometheusRecordsStream(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := Prometheus(WithRegistry(reg))

	if err := drain(t, m, suspenseTree()); err != nil {
		t.Fatalf("stream error: %v", err)
	}

	if got := testutil.ToFloat64(m.chunksTotal.WithLabelValues("shell")); got != 1 {
		t.Errorf("chunks_total{shell} = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.chunksTotal.WithLabelValues("patch")); got != 1 {
		t.Errorf("chunks_total{patch} = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.bytesTotal.WithLabelValues("patch")); got != float64(len("Done!")) {
		t.Errorf("chunk_bytes_total{patch} = %v", got)
	}
	if got := testutil.ToFloat64(m.streamsTotal.WithLabelValues("ok")); got != 1 {
		t.Errorf("streams_total{ok} = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.activeStreams); got != 0 {
		t.Errorf("active_streams = %v, want 0", got)
	}
	if n := testutil.CollectAndCount(m.streamDuration); n != 1 {
		t.Errorf("stream_duration_seconds series = %d, want 1", n)
	}
}

func TestPrometheusRecordsFault(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := Prometheus(WithRegistry(reg), WithNamespace("app"))

	if err := drain(t, m, failingTree(errors.New("db down"))); err == nil {
		t.Fatal("expected render fault")
	}

	if got := testutil.ToFloat64(m.streamsTotal.WithLabelValues("render_fault")); got != 1 {
		t.Errorf("streams_total{render_fault} = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.activeStreams); got != 0 {
		t.Errorf("active_streams = %v, want 0", got)
	}

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("Gather() error: %v", err)
	}
	found := false
	for _, f := range families {
		if f.GetName() == "app_streams_total" {
			found = true
		}
	}
	if !found {
		t.Error("namespace option not applied")
	}
}

func TestPrometheusOptions(t *testing.T) {
	config := defaultMetricsConfig()
	for _, opt := range []MetricsOption{
		WithNamespace("ns"),
		WithSubsystem("sub"),
		WithConstLabels(prometheus.Labels{"env": "test"}),
		WithBuckets([]float64{0.1, 1}),
	} {
		opt(&config)
	}
	if config.Namespace != "ns" || config.Subsystem != "sub" || config.ConstLabels["env"] != "test" || len(config.Buckets) != 2 {
		t.Errorf("options not applied: %+v", config)
	}
}
