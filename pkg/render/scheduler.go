package render

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"time"

	"github.com/vango-dev/vstream/pkg/vdom"
)

// RenderTask is the unit of work for one async component invocation.
type RenderTask struct {
	SlotID   int
	boundary *Boundary
	content  *segment

	// resume hands the computation's result back to the renderer. The
	// scheduler invokes it on the consumer goroutine, one task at a time.
	resume func(node *vdom.VNode, err error) error

	done      bool
	abandoned bool
}

// completion is a resolved dependency waiting to be resumed.
type completion struct {
	task  *RenderTask
	node  *vdom.VNode
	err   error
	panic any
	stack []byte
}

// scheduler starts async computations as soon as they are encountered and
// serializes their resumptions. Computations run on their own goroutines;
// resumptions only ever run on the goroutine that pulls the stream.
type scheduler struct {
	ctx         context.Context
	timeout     time.Duration
	completions chan completion
	inflight    int
}

func newScheduler(ctx context.Context, timeout time.Duration) *scheduler {
	return &scheduler{
		ctx:         ctx,
		timeout:     timeout,
		completions: make(chan completion),
	}
}

// start begins fn immediately without waiting for earlier tasks.
func (s *scheduler) start(task *RenderTask, fn vdom.AsyncFunc) {
	s.inflight++
	go func() {
		ctx := s.ctx
		if s.timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, s.timeout)
			defer cancel()
		}

		c := completion{task: task}
		func() {
			defer func() {
				if r := recover(); r != nil {
					c.panic = r
					c.stack = debug.Stack()
				}
			}()
			c.node, c.err = fn(ctx)
		}()
		if c.err != nil && errors.Is(ctx.Err(), context.DeadlineExceeded) && s.ctx.Err() == nil {
			c.err = fmt.Errorf("%w after %s: %v", ErrTaskTimeout, s.timeout, c.err)
		}

		select {
		case s.completions <- c:
		case <-s.ctx.Done():
			// Abandoned: nobody resumes this task.
		}
	}()
}

// wait blocks until a dependency resolves, ctx ends, or abort fires.
func (s *scheduler) wait(ctx context.Context, abort <-chan struct{}) (completion, error) {
	select {
	case c := <-s.completions:
		s.inflight--
		return c, nil
	case <-ctx.Done():
		return completion{}, ctx.Err()
	case <-s.ctx.Done():
		return completion{}, s.ctx.Err()
	case <-abort:
		return completion{}, ErrStreamClosed
	}
}

// run resumes a resolved task. Only one resumption runs at a time because
// run is only called from the stream's pull loop.
func (s *scheduler) run(c completion) error {
	if c.task.abandoned {
		return nil
	}
	if c.panic != nil {
		return c.task.resume(nil, &panicError{value: c.panic, stack: c.stack})
	}
	return c.task.resume(c.node, c.err)
}

// panicError carries a recovered panic from an async computation.
type panicError struct {
	value any
	stack []byte
}

func (p *panicError) Error() string {
	return fmt.Sprintf("panic: %v", p.value)
}
