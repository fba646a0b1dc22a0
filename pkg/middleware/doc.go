// Package middleware provides render.Observer implementations for
// production observability.
//
// This package includes:
//   - Prometheus metrics for stream counts, chunk sizes and latencies
//   - OpenTelemetry tracing with one span per stream and an event per chunk
//
// # Prometheus Metrics
//
//	reg := prometheus.NewRegistry()
//	metrics := middleware.Prometheus(
//	    middleware.WithRegistry(reg),
//	    middleware.WithNamespace("myapp"),
//	)
//
// # OpenTelemetry Tracing
//
//	tracing := middleware.OpenTelemetry(middleware.WithTracerName("my-app"))
//
// Observers are combined with render.Observers:
//
//	r := render.NewRenderer(render.RendererConfig{
//	    Observer: render.Observers{metrics, tracing},
//	})
package middleware
