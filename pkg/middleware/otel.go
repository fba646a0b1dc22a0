package middleware

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/vango-dev/vstream/pkg/render"
)

// Default tracer name for vstream.
const defaultTracerName = "vstream"

// OTelConfig configures the OpenTelemetry observer.
type OTelConfig struct {
	// TracerName is the name of the tracer (default: "vstream").
	TracerName string

	// TracerProvider supplies the tracer.
	// Default: the global provider from otel.GetTracerProvider().
	TracerProvider trace.TracerProvider

	// Attributes are added to every stream span.
	Attributes []attribute.KeyValue

	// ChunkEvents records a span event per chunk. Enabled by default.
	ChunkEvents bool
}

// OTelOption configures the OpenTelemetry observer.
type OTelOption func(*OTelConfig)

// WithTracerName sets the tracer name.
func WithTracerName(name string) OTelOption {
	return func(c *OTelConfig) {
		c.TracerName = name
	}
}

// WithTracerProvider sets the tracer provider.
func WithTracerProvider(tp trace.TracerProvider) OTelOption {
	return func(c *OTelConfig) {
		c.TracerProvider = tp
	}
}

// WithAttributes adds static attributes to every stream span.
func WithAttributes(attrs ...attribute.KeyValue) OTelOption {
	return func(c *OTelConfig) {
		c.Attributes = append(c.Attributes, attrs...)
	}
}

// WithChunkEvents enables/disables per-chunk span events.
func WithChunkEvents(enabled bool) OTelOption {
	return func(c *OTelConfig) {
		c.ChunkEvents = enabled
	}
}

func defaultOTelConfig() OTelConfig {
	return OTelConfig{
		TracerName:  defaultTracerName,
		ChunkEvents: true,
	}
}

// Tracing is a render.Observer that wraps every stream in a span.
type Tracing struct {
	tracer trace.Tracer
	config OTelConfig
}

var _ render.Observer = (*Tracing)(nil)

// OpenTelemetry creates an observer that traces render streams.
//
// The observer:
//   - Starts a span when the walk begins, tagged with the session id
//   - Adds a "vstream.shell" or "vstream.patch" event per chunk
//   - Records the terminal fault and sets the span status
//
// The tracer uses the global OpenTelemetry tracer provider unless
// WithTracerProvider is given. Configure it in main() before rendering:
//
//	tp := sdktrace.NewTracerProvider(sdktrace.WithBatcher(exporter))
//	otel.SetTracerProvider(tp)
func OpenTelemetry(opts ...OTelOption) *Tracing {
	config := defaultOTelConfig()
	for _, opt := range opts {
		opt(&config)
	}
	tp := config.TracerProvider
	if tp == nil {
		tp = otel.GetTracerProvider()
	}
	return &Tracing{tracer: tp.Tracer(config.TracerName), config: config}
}

// StreamStarted implements render.Observer.
func (t *Tracing) StreamStarted(ctx context.Context, sessionID string) context.Context {
	attrs := append([]attribute.KeyValue{
		attribute.String("vstream.session_id", sessionID),
	}, t.config.Attributes...)

	ctx, _ = t.tracer.Start(ctx, "vstream.render",
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(attrs...),
	)
	return ctx
}

// ChunkFlushed implements render.Observer.
func (t *Tracing) ChunkFlushed(ctx context.Context, c render.Chunk, elapsed time.Duration) {
	if !t.config.ChunkEvents {
		return
	}
	span := trace.SpanFromContext(ctx)
	span.AddEvent("vstream."+c.Kind.String(), trace.WithAttributes(
		attribute.Int("vstream.slot", c.SlotID),
		attribute.Int("vstream.bytes", len(c.Markup)),
		attribute.Int64("vstream.elapsed_ms", elapsed.Milliseconds()),
	))
}

// StreamEnded implements render.Observer.
func (t *Tracing) StreamEnded(ctx context.Context, err error, elapsed time.Duration) {
	span := trace.SpanFromContext(ctx)
	span.SetAttributes(attribute.String("vstream.result", categorizeError(err)))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}
