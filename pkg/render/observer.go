package render

import (
	"context"
	"time"
)

// Observer receives stream lifecycle notifications, for metrics and
// tracing. Callbacks run on the goroutine pulling the stream.
type Observer interface {
	// StreamStarted is called once before the walk begins. The returned
	// context is passed to the later callbacks.
	StreamStarted(ctx context.Context, sessionID string) context.Context

	// ChunkFlushed is called each time a chunk is handed to the consumer.
	// elapsed is measured from the start of the stream.
	ChunkFlushed(ctx context.Context, c Chunk, elapsed time.Duration)

	// StreamEnded is called once with nil on normal completion, or with
	// the terminal fault.
	StreamEnded(ctx context.Context, err error, elapsed time.Duration)
}

// Observers fans notifications out to several observers in order.
type Observers []Observer

// StreamStarted implements Observer.
func (o Observers) StreamStarted(ctx context.Context, sessionID string) context.Context {
	for _, obs := range o {
		ctx = obs.StreamStarted(ctx, sessionID)
	}
	return ctx
}

// ChunkFlushed implements Observer.
func (o Observers) ChunkFlushed(ctx context.Context, c Chunk, elapsed time.Duration) {
	for _, obs := range o {
		obs.ChunkFlushed(ctx, c, elapsed)
	}
}

// StreamEnded implements Observer.
func (o Observers) StreamEnded(ctx context.Context, err error, elapsed time.Duration) {
	for _, obs := range o {
		obs.StreamEnded(ctx, err, elapsed)
	}
}
