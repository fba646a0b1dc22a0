package render

import (
	mapset "github.com/deckarep/golang-set/v2"

	"github.com/vango-dev/vstream/pkg/vdom"
)

// BoundaryState is the lifecycle of a Suspense boundary.
type BoundaryState uint8

const (
	// BoundaryPending: at least one direct task is outstanding.
	BoundaryPending BoundaryState = iota
	// BoundaryResolving: every direct task completed; the content is final
	// in memory but not yet written to the stream.
	BoundaryResolving
	// BoundaryFlushed: the content was written, either inline or as a patch.
	BoundaryFlushed
)

// String returns the string representation of the BoundaryState.
func (s BoundaryState) String() string {
	switch s {
	case BoundaryPending:
		return "pending"
	case BoundaryResolving:
		return "resolving"
	case BoundaryFlushed:
		return "flushed"
	default:
		return "unknown"
	}
}

// Boundary is one declared Suspense region. The root of every render is an
// implicit boundary with ID 0 whose content is the shell.
type Boundary struct {
	ID     int
	parent *Boundary

	fallback *segment
	content  *segment
	onError  func(error) *vdom.VNode

	// pending holds the slot ids of outstanding tasks registered directly
	// beneath this boundary. Tasks under nested boundaries are not counted.
	pending mapset.Set[int]
	state   BoundaryState

	// placeholderSent is set once the fallback, wrapped in the slot's
	// markers, has been written to the stream. Only then may a patch
	// reference this boundary.
	placeholderSent bool
	recovered       bool
	discarded       bool
}

func newBoundary(id int, parent *Boundary, onError func(error) *vdom.VNode) *Boundary {
	return &Boundary{
		ID:       id,
		parent:   parent,
		fallback: newSegment(),
		content:  newSegment(),
		onError:  onError,
		pending:  mapset.NewThreadUnsafeSet[int](),
	}
}

// State returns the boundary's current lifecycle state.
func (b *Boundary) State() BoundaryState {
	return b.state
}

// Pending returns the number of outstanding direct tasks.
func (b *Boundary) Pending() int {
	return b.pending.Cardinality()
}

func (b *Boundary) isRoot() bool {
	return b.parent == nil
}

// register records a direct task.
func (b *Boundary) register(slot int) {
	b.pending.Add(slot)
}

// complete removes a direct task and reports whether the boundary just
// transitioned from pending to resolving.
func (b *Boundary) complete(slot int) bool {
	if !b.pending.Contains(slot) {
		return false
	}
	b.pending.Remove(slot)
	return b.settleIfIdle()
}

// settleIfIdle moves a pending boundary with no outstanding tasks to
// resolving. The transition fires at most once.
func (b *Boundary) settleIfIdle() bool {
	if b.state != BoundaryPending || b.pending.Cardinality() > 0 {
		return false
	}
	b.state = BoundaryResolving
	return true
}

// markFlushed records that the content is on the wire.
func (b *Boundary) markFlushed() {
	b.state = BoundaryFlushed
}

// canRecover reports whether a failure of a direct task can be absorbed by
// this boundary's error fallback. Recovery needs content that has not been
// written yet and happens at most once.
func (b *Boundary) canRecover() bool {
	return b.onError != nil && !b.recovered && b.state == BoundaryPending
}
