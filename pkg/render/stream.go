package render

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/vango-dev/vstream/pkg/vdom"
)

// Sink accepts chunks in order. Transports implement it.
type Sink interface {
	WriteChunk(c Chunk) error
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(c Chunk) error

// WriteChunk implements Sink.
func (f SinkFunc) WriteChunk(c Chunk) error {
	return f(c)
}

// Stream is the lazily produced, finite, non-restartable chunk sequence of
// one render. The first chunk is the shell; patches follow in the order
// their content resolves. Next must not be called concurrently; Close may
// be called from any goroutine.
type Stream struct {
	session  *Session
	tree     *vdom.VNode
	observer Observer
	obsCtx   context.Context
	begun    time.Time

	started     bool
	done        bool
	err         error
	errReported bool

	abort     chan struct{}
	closeOnce sync.Once
}

func newStream(ctx context.Context, session *Session, tree *vdom.VNode, observer Observer) *Stream {
	return &Stream{
		session:  session,
		tree:     tree,
		observer: observer,
		obsCtx:   ctx,
		abort:    make(chan struct{}),
	}
}

// SessionID returns the id of the underlying render session.
func (s *Stream) SessionID() string {
	return s.session.ID
}

// Next returns the next chunk. It blocks until a chunk is ready, and
// returns io.EOF once every boundary has been flushed. A fault is reported
// exactly once; afterwards Next returns io.EOF.
func (s *Stream) Next(ctx context.Context) (Chunk, error) {
	for {
		select {
		case <-s.abort:
			if s.err == nil && !s.done {
				s.fail(&StreamFault{SessionID: s.session.ID, Err: ErrStreamClosed})
			}
		default:
		}

		if s.err != nil {
			if s.errReported {
				return Chunk{}, io.EOF
			}
			s.errReported = true
			return Chunk{}, s.err
		}

		if len(s.session.queue) > 0 {
			c := s.session.queue[0]
			s.session.queue = s.session.queue[1:]
			s.observer.ChunkFlushed(s.obsCtx, c, time.Since(s.begun))
			if c.Kind == ChunkShell {
				s.session.logger.Debug("shell flushed", "bytes", len(c.Markup))
			} else {
				s.session.logger.Debug("patch flushed", "slot", c.SlotID, "bytes", len(c.Markup))
			}
			return c, nil
		}

		if s.done {
			return Chunk{}, io.EOF
		}

		if !s.started {
			s.started = true
			s.begun = time.Now()
			s.obsCtx = s.observer.StreamStarted(s.obsCtx, s.session.ID)
			if err := s.session.start(s.tree); err != nil {
				s.fail(err)
			}
			continue
		}

		if s.session.finished() {
			s.done = true
			s.session.abort()
			s.observer.StreamEnded(s.obsCtx, nil, time.Since(s.begun))
			s.session.logger.Debug("stream complete", "bytes", s.session.written)
			continue
		}

		if s.session.sched.inflight == 0 {
			s.fail(fmt.Errorf("render: stream stalled with %d open boundaries", len(s.session.boundaries)))
			continue
		}

		c, err := s.session.sched.wait(ctx, s.abort)
		if err != nil {
			select {
			case <-s.abort:
				err = ErrStreamClosed
			default:
			}
			s.fail(&StreamFault{SessionID: s.session.ID, Err: err})
			continue
		}
		if err := s.session.sched.run(c); err != nil {
			s.fail(err)
		}
	}
}

// WriteTo pulls the stream to completion, handing every chunk to sink. A
// sink error aborts the stream and is returned as a StreamFault.
func (s *Stream) WriteTo(ctx context.Context, sink Sink) error {
	for {
		c, err := s.Next(ctx)
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
		if err := sink.WriteChunk(c); err != nil {
			fault := &StreamFault{SessionID: s.session.ID, Err: err}
			s.fail(fault)
			s.errReported = true
			return fault
		}
	}
}

// Collect drains the stream into a slice.
func (s *Stream) Collect(ctx context.Context) ([]Chunk, error) {
	var chunks []Chunk
	err := s.WriteTo(ctx, SinkFunc(func(c Chunk) error {
		chunks = append(chunks, c)
		return nil
	}))
	return chunks, err
}

// Close abandons the stream. Outstanding tasks are cancelled and no
// further chunks are produced.
func (s *Stream) Close() error {
	s.closeOnce.Do(func() {
		close(s.abort)
		s.session.abort()
	})
	return nil
}

// fail records the terminal error and abandons all outstanding tasks.
func (s *Stream) fail(err error) {
	if s.err != nil {
		return
	}
	s.err = err
	s.session.queue = nil
	s.session.abort()
	if s.started {
		s.observer.StreamEnded(s.obsCtx, err, time.Since(s.begun))
	}

	var sf *StreamFault
	if errors.As(err, &sf) {
		s.session.logger.Warn("stream aborted", "error", err)
	} else {
		s.session.logger.Error("render failed", "error", err)
	}
}
