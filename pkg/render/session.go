package render

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"runtime/debug"
	"strings"

	"github.com/google/uuid"

	"github.com/vango-dev/vstream/pkg/vdom"
)

// Session is the state of one render pass: the slot counter, the open
// boundary table and the tasks awaiting resumption. It is owned by a single
// Stream and only touched from the goroutine pulling that stream.
type Session struct {
	ID string

	ctx    context.Context
	cancel context.CancelFunc
	sched  *scheduler
	logger *slog.Logger

	escape  Escaper
	memo    *MemoCache
	doctype bool

	// sync rejects async components; used for RenderToString.
	sync       bool
	inFallback int

	lastSlot   int
	root       *Boundary
	boundaries map[int]*Boundary // open boundaries by slot id
	tasks      map[int]*RenderTask

	queue   []Chunk
	written int64
}

func newSession(ctx context.Context, cfg RendererConfig, sync bool) *Session {
	ctx, cancel := context.WithCancel(ctx)
	id := uuid.NewString()
	return &Session{
		ID:         id,
		ctx:        ctx,
		cancel:     cancel,
		sched:      newScheduler(ctx, cfg.TaskTimeout),
		logger:     cfg.Logger.With("session", id),
		escape:     cfg.Escape,
		memo:       cfg.Memo,
		doctype:    cfg.Doctype,
		sync:       sync,
		boundaries: make(map[int]*Boundary),
		tasks:      make(map[int]*RenderTask),
	}
}

// start walks the tree. The shell is queued immediately when no async
// component sits outside every Suspense boundary.
func (s *Session) start(tree *vdom.VNode) error {
	s.root = newBoundary(0, nil, nil)
	if err := s.walk(s.root.content, tree, s.root); err != nil {
		return err
	}
	if s.root.settleIfIdle() {
		return s.flushBoundary(s.root)
	}
	s.logger.Debug("shell waiting on top-level tasks", "pending", s.root.Pending())
	return nil
}

// finished reports whether every opened boundary has been flushed.
func (s *Session) finished() bool {
	return s.root != nil && s.root.state == BoundaryFlushed && len(s.boundaries) == 0
}

// abort abandons all outstanding tasks.
func (s *Session) abort() {
	s.cancel()
}

func (s *Session) allocSlot() int {
	s.lastSlot++
	return s.lastSlot
}

// walk performs the pre-order traversal of node into seg. b is the
// registration target for async components found beneath node.
func (s *Session) walk(seg *segment, node *vdom.VNode, b *Boundary) error {
	if node == nil {
		return nil
	}
	if err := node.Err(); err != nil {
		return s.fault(0, err)
	}

	switch node.Kind {
	case vdom.KindText:
		_, err := io.WriteString(seg, s.escape(node.Text))
		return err
	case vdom.KindRaw:
		_, err := io.WriteString(seg, node.Text)
		return err
	case vdom.KindElement:
		return s.walkElement(seg, node, b)
	case vdom.KindFragment:
		return s.walkChildren(seg, node.Children, b)
	case vdom.KindComponent:
		return s.walkComponent(seg, node, b)
	case vdom.KindAsync:
		return s.walkAsync(seg, node, b)
	case vdom.KindSuspense:
		return s.walkSuspense(seg, node, b)
	default:
		return s.fault(0, fmt.Errorf("unknown node kind: %d", node.Kind))
	}
}

func (s *Session) walkChildren(seg *segment, children []*vdom.VNode, b *Boundary) error {
	for _, child := range children {
		if err := s.walk(seg, child, b); err != nil {
			return err
		}
	}
	return nil
}

func (s *Session) walkElement(seg *segment, node *vdom.VNode, b *Boundary) error {
	if err := writeOpenTag(seg, node); err != nil {
		return err
	}
	if vdom.IsVoidElement(node.Tag) {
		return nil
	}

	if raw, ok := node.Props["dangerouslySetInnerHTML"].(string); ok {
		if _, err := io.WriteString(seg, raw); err != nil {
			return err
		}
	} else if err := s.walkChildren(seg, node.Children, b); err != nil {
		return err
	}

	_, err := io.WriteString(seg, "</"+node.Tag+">")
	return err
}

func (s *Session) walkComponent(seg *segment, node *vdom.VNode, b *Boundary) error {
	if node.Comp == nil {
		return nil
	}
	if node.Memo != nil && s.memo != nil {
		return s.walkMemo(seg, node, b)
	}
	out, err := s.invoke(node.Comp.Render)
	if err != nil {
		return err
	}
	return s.walk(seg, out, b)
}

// walkMemo serves a memoized component from the cache, or renders it and
// caches the markup when the result contains no reserved slots.
func (s *Session) walkMemo(seg *segment, node *vdom.VNode, b *Boundary) error {
	key, keyed := s.memo.key(node.Memo)
	if keyed {
		if html, hit := s.memo.get(key); hit {
			_, err := io.WriteString(seg, html)
			return err
		}
	}

	out, err := s.invoke(node.Comp.Render)
	if err != nil {
		return err
	}
	tmp := newSegment()
	if err := s.walk(tmp, out, b); err != nil {
		return err
	}
	if keyed {
		if html, flat := tmp.flat(); flat {
			s.memo.put(key, html)
		}
	}
	seg.splice(tmp)
	return nil
}

// walkAsync starts the component's computation and reserves a slot for
// its result. The walk continues with the next sibling immediately.
func (s *Session) walkAsync(seg *segment, node *vdom.VNode, b *Boundary) error {
	if node.Async == nil {
		return nil
	}
	if s.sync || s.inFallback > 0 {
		return s.fault(0, ErrAsyncInSync)
	}

	task := &RenderTask{SlotID: s.allocSlot(), boundary: b}
	task.resume = func(out *vdom.VNode, err error) error {
		return s.resumeTask(task, out, err)
	}
	s.tasks[task.SlotID] = task
	seg.hole(task.SlotID)
	b.register(task.SlotID)
	s.sched.start(task, node.Async)
	return nil
}

// walkSuspense renders the fallback eagerly, then the children with the
// new boundary as registration target. A boundary with nothing pending
// after its children are walked resolves in place.
func (s *Session) walkSuspense(seg *segment, node *vdom.VNode, b *Boundary) error {
	if s.sync {
		return s.walkChildren(seg, node.Children, b)
	}

	nb := newBoundary(s.allocSlot(), b, node.OnError)
	s.boundaries[nb.ID] = nb
	seg.hole(nb.ID)

	s.inFallback++
	err := s.walk(nb.fallback, node.Fallback, b)
	s.inFallback--
	if err != nil {
		return err
	}

	if err := s.walkChildren(nb.content, node.Children, nb); err != nil {
		if !nb.canRecover() || !isRenderFault(err) {
			return err
		}
		if err := s.recoverBoundary(nb, err); err != nil {
			return err
		}
	}
	nb.settleIfIdle()
	return nil
}

// resumeTask is the resumption handle of a RenderTask: it walks the
// resolved subtree into the task's slot and settles the boundary when
// this was its last direct task.
func (s *Session) resumeTask(task *RenderTask, out *vdom.VNode, err error) error {
	b := task.boundary
	if task.abandoned || b.discarded {
		return nil
	}

	if err == nil {
		task.content = newSegment()
		err = s.walk(task.content, out, b)
	} else {
		err = s.asyncFault(task.SlotID, err)
	}
	if err != nil {
		if !b.canRecover() || !isRenderFault(err) {
			return err
		}
		if err := s.recoverBoundary(b, err); err != nil {
			return err
		}
		if b.settleIfIdle() {
			return s.flushBoundary(b)
		}
		return nil
	}

	task.done = true
	s.logger.Debug("task resolved", "slot", task.SlotID, "boundary", b.ID, "remaining", b.Pending()-1)
	if b.complete(task.SlotID) {
		return s.flushBoundary(b)
	}
	return nil
}

// recoverBoundary replaces b's content with its error fallback. Work
// already registered under the discarded content is abandoned.
func (s *Session) recoverBoundary(b *Boundary, cause error) error {
	s.logger.Warn("suspense boundary recovered from fault", "boundary", b.ID, "error", cause)

	s.discard(b.content)
	b.pending.Clear()
	b.recovered = true
	b.content = newSegment()

	out, err := s.invoke(func() *vdom.VNode { return b.onError(cause) })
	if err != nil {
		return err
	}
	return s.walk(b.content, out, b)
}

// flushBoundary is called once b reaches resolving. The root queues the
// shell; a boundary whose placeholder is already on the wire queues its
// patch; any other boundary waits to be inlined into its ancestor.
func (s *Session) flushBoundary(b *Boundary) error {
	switch {
	case b.isRoot():
		var buf strings.Builder
		if s.doctype {
			buf.WriteString("<!DOCTYPE html>")
		}
		if err := s.assemble(&buf, b.content); err != nil {
			return err
		}
		b.markFlushed()
		s.emit(Chunk{Kind: ChunkShell, Markup: buf.String()})

	case b.placeholderSent:
		var buf strings.Builder
		if err := s.assemble(&buf, b.content); err != nil {
			return err
		}
		b.markFlushed()
		delete(s.boundaries, b.ID)
		s.emit(Chunk{Kind: ChunkPatch, SlotID: b.ID, Markup: buf.String()})

	default:
		s.logger.Debug("boundary resolved ahead of its ancestor", "boundary", b.ID)
	}
	return nil
}

// assemble writes seg with every hole filled: resolved tasks and
// resolving boundaries inline, pending boundaries as their fallback
// wrapped in slot markers.
func (s *Session) assemble(buf *strings.Builder, seg *segment) error {
	seg.seal()
	for _, p := range seg.parts {
		if p.slot == 0 {
			buf.Write(p.literal)
			continue
		}

		if task, ok := s.tasks[p.slot]; ok {
			if !task.done {
				return fmt.Errorf("render: slot %d flushed before its task resolved", p.slot)
			}
			delete(s.tasks, p.slot)
			if err := s.assemble(buf, task.content); err != nil {
				return err
			}
			continue
		}

		nb, ok := s.boundaries[p.slot]
		if !ok {
			return fmt.Errorf("render: unknown slot %d", p.slot)
		}
		switch nb.state {
		case BoundaryResolving:
			s.discard(nb.fallback)
			delete(s.boundaries, nb.ID)
			nb.markFlushed()
			if err := s.assemble(buf, nb.content); err != nil {
				return err
			}
		case BoundaryPending:
			buf.WriteString(placeholderOpen(nb.ID))
			if err := s.assemble(buf, nb.fallback); err != nil {
				return err
			}
			buf.WriteString(placeholderClose(nb.ID))
			nb.placeholderSent = true
		default:
			return fmt.Errorf("render: boundary %d flushed twice", nb.ID)
		}
	}
	return nil
}

// discard abandons every task and boundary reachable from seg.
func (s *Session) discard(seg *segment) {
	for _, id := range seg.holes() {
		if task, ok := s.tasks[id]; ok {
			task.abandoned = true
			delete(s.tasks, id)
			if task.content != nil {
				s.discard(task.content)
			}
			continue
		}
		if nb, ok := s.boundaries[id]; ok {
			nb.discarded = true
			delete(s.boundaries, id)
			s.discard(nb.fallback)
			s.discard(nb.content)
		}
	}
}

func (s *Session) emit(c Chunk) {
	s.written += int64(len(c.Markup))
	s.queue = append(s.queue, c)
}

// invoke calls a synchronous component, converting a panic into a RenderFault.
func (s *Session) invoke(render func() *vdom.VNode) (out *vdom.VNode, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &RenderFault{
				SessionID: s.ID,
				Panic:     r,
				Stack:     debug.Stack(),
				Err:       fmt.Errorf("panic: %v", r),
			}
		}
	}()
	return render(), nil
}

func (s *Session) fault(slot int, err error) error {
	return &RenderFault{SessionID: s.ID, SlotID: slot, Err: err}
}

func (s *Session) asyncFault(slot int, err error) error {
	var p *panicError
	if errors.As(err, &p) {
		return &RenderFault{SessionID: s.ID, SlotID: slot, Panic: p.value, Stack: p.stack, Err: err}
	}
	return s.fault(slot, err)
}

func isRenderFault(err error) bool {
	var rf *RenderFault
	return errors.As(err, &rf)
}
