package render

import (
	"errors"
	"fmt"
)

// Sentinel errors for stream conditions.
var (
	// ErrStreamClosed is the cause of the StreamFault reported after the
	// consumer closed the stream.
	ErrStreamClosed = errors.New("render: stream closed")

	// ErrAsyncInSync is returned when an async component is reached by a
	// synchronous render (RenderToString) or inside a Suspense fallback.
	ErrAsyncInSync = errors.New("render: async component in synchronous context")

	// ErrTaskTimeout is the cause of a RenderFault when an async component
	// exceeds the configured task timeout.
	ErrTaskTimeout = errors.New("render: async component timed out")
)

// TreeBuildFault reports malformed composition input. It is returned by
// Render before any output is produced.
type TreeBuildFault struct {
	Err error
}

// Error returns the error message.
func (f *TreeBuildFault) Error() string {
	return fmt.Sprintf("render: tree build fault: %v", f.Err)
}

// Unwrap returns the underlying error for errors.Is/As.
func (f *TreeBuildFault) Unwrap() error {
	return f.Err
}

// RenderFault reports a failing component: an async component returned an
// error, or a synchronous component panicked. Without a recovering
// boundary it aborts the whole stream. Bytes already delivered are not
// retracted.
type RenderFault struct {
	SessionID string
	SlotID    int    // slot of the failing async component, 0 for synchronous faults
	Panic     any    // recovered panic value, if any
	Stack     []byte // stack captured at the panic site
	Err       error
}

// Error returns the error message with session context.
func (f *RenderFault) Error() string {
	switch {
	case f.Panic != nil:
		return fmt.Sprintf("render: session %s: component panic: %v", f.SessionID, f.Panic)
	case f.SlotID != 0:
		return fmt.Sprintf("render: session %s: slot %d: %v", f.SessionID, f.SlotID, f.Err)
	default:
		return fmt.Sprintf("render: session %s: %v", f.SessionID, f.Err)
	}
}

// Unwrap returns the underlying error for errors.Is/As.
func (f *RenderFault) Unwrap() error {
	return f.Err
}

// StreamFault reports that the output could not be delivered: the
// consumer closed the stream, its context ended, or the sink rejected a
// write. All outstanding tasks are abandoned; nothing is retried.
type StreamFault struct {
	SessionID string
	Err       error
}

// Error returns the error message with session context.
func (f *StreamFault) Error() string {
	return fmt.Sprintf("render: session %s: stream fault: %v", f.SessionID, f.Err)
}

// Unwrap returns the underlying error for errors.Is/As.
func (f *StreamFault) Unwrap() error {
	return f.Err
}
