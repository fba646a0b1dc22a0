package middleware

import (
	"context"
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/vango-dev/vstream/pkg/render"
)

// MetricsConfig configures the Prometheus observer.
type MetricsConfig struct {
	// Namespace is the metrics namespace (default: "vstream").
	Namespace string

	// Subsystem is the metrics subsystem (default: "").
	Subsystem string

	// ConstLabels are constant labels added to all metrics.
	ConstLabels prometheus.Labels

	// Buckets are the histogram buckets for latencies.
	// Default: prometheus.DefBuckets
	Buckets []float64

	// Registry is the Prometheus registry to use.
	// Default: prometheus.DefaultRegisterer
	Registry prometheus.Registerer
}

// MetricsOption configures the Prometheus observer.
type MetricsOption func(*MetricsConfig)

// WithNamespace sets the metrics namespace.
func WithNamespace(namespace string) MetricsOption {
	return func(c *MetricsConfig) {
		c.Namespace = namespace
	}
}

// WithSubsystem sets the metrics subsystem.
func WithSubsystem(subsystem string) MetricsOption {
	return func(c *MetricsConfig) {
		c.Subsystem = subsystem
	}
}

// WithConstLabels sets constant labels for all metrics.
func WithConstLabels(labels prometheus.Labels) MetricsOption {
	return func(c *MetricsConfig) {
		c.ConstLabels = labels
	}
}

// WithBuckets sets the histogram buckets.
func WithBuckets(buckets []float64) MetricsOption {
	return func(c *MetricsConfig) {
		c.Buckets = buckets
	}
}

// WithRegistry sets the Prometheus registry.
func WithRegistry(registry prometheus.Registerer) MetricsOption {
	return func(c *MetricsConfig) {
		c.Registry = registry
	}
}

func defaultMetricsConfig() MetricsConfig {
	return MetricsConfig{
		Namespace: "vstream",
		Buckets:   prometheus.DefBuckets,
		Registry:  prometheus.DefaultRegisterer,
	}
}

// Metrics is a render.Observer that records stream metrics.
type Metrics struct {
	streamsTotal   *prometheus.CounterVec
	activeStreams  prometheus.Gauge
	chunksTotal    *prometheus.CounterVec
	bytesTotal     *prometheus.CounterVec
	chunkLatency   *prometheus.HistogramVec
	streamDuration prometheus.Histogram
}

var _ render.Observer = (*Metrics)(nil)

// Prometheus creates an observer that collects Prometheus metrics for
// render streams. The metrics are registered on the configured registry,
// so call it once per registry.
//
// Metrics collected:
//   - vstream_streams_total: Counter of finished streams by result
//   - vstream_active_streams: Gauge of streams currently producing output
//   - vstream_chunks_total: Counter of chunks by kind (shell, patch)
//   - vstream_chunk_bytes_total: Counter of markup bytes by chunk kind
//   - vstream_chunk_latency_seconds: Histogram of time from stream start to each chunk
//   - vstream_stream_duration_seconds: Histogram of total stream duration
//
// Example:
//
//	reg := prometheus.NewRegistry()
//	r := render.NewRenderer(render.RendererConfig{
//	    Observer: middleware.Prometheus(middleware.WithRegistry(reg)),
//	})
//	http.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
func Prometheus(opts ...MetricsOption) *Metrics {
	config := defaultMetricsConfig()
	for _, opt := range opts {
		opt(&config)
	}
	factory := promauto.With(config.Registry)

	return &Metrics{
		streamsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "streams_total",
			Help:        "Total number of finished render streams by result",
			ConstLabels: config.ConstLabels,
		}, []string{"result"}),

		activeStreams: factory.NewGauge(prometheus.GaugeOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "active_streams",
			Help:        "Number of render streams currently producing output",
			ConstLabels: config.ConstLabels,
		}),

		chunksTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "chunks_total",
			Help:        "Total number of chunks handed to consumers",
			ConstLabels: config.ConstLabels,
		}, []string{"kind"}),

		bytesTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "chunk_bytes_total",
			Help:        "Total markup bytes handed to consumers",
			ConstLabels: config.ConstLabels,
		}, []string{"kind"}),

		chunkLatency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "chunk_latency_seconds",
			Help:        "Time from stream start until each chunk is ready",
			ConstLabels: config.ConstLabels,
			Buckets:     config.Buckets,
		}, []string{"kind"}),

		streamDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "stream_duration_seconds",
			Help:        "Total render stream duration in seconds",
			ConstLabels: config.ConstLabels,
			Buckets:     config.Buckets,
		}),
	}
}

// StreamStarted implements render.Observer.
func (m *Metrics) StreamStarted(ctx context.Context, sessionID string) context.Context {
	m.activeStreams.Inc()
	return ctx
}

// ChunkFlushed implements render.Observer.
func (m *Metrics) ChunkFlushed(ctx context.Context, c render.Chunk, elapsed time.Duration) {
	kind := c.Kind.String()
	m.chunksTotal.WithLabelValues(kind).Inc()
	m.bytesTotal.WithLabelValues(kind).Add(float64(len(c.Markup)))
	m.chunkLatency.WithLabelValues(kind).Observe(elapsed.Seconds())
}

// StreamEnded implements render.Observer.
func (m *Metrics) StreamEnded(ctx context.Context, err error, elapsed time.Duration) {
	m.activeStreams.Dec()
	m.streamDuration.Observe(elapsed.Seconds())
	m.streamsTotal.WithLabelValues(categorizeError(err)).Inc()
}

// categorizeError maps a terminal stream error to a low-cardinality label.
func categorizeError(err error) string {
	var (
		rf *render.RenderFault
		sf *render.StreamFault
		tf *render.TreeBuildFault
	)
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, render.ErrTaskTimeout):
		return "timeout"
	case errors.Is(err, render.ErrStreamClosed):
		return "closed"
	case errors.As(err, &sf):
		return "stream_fault"
	case errors.As(err, &rf):
		return "render_fault"
	case errors.As(err, &tf):
		return "build_fault"
	default:
		return "internal"
	}
}
