package render

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/vango-dev/vstream/pkg/vdom"
)

// gated returns an async component that resolves to out once release is
// called, and returns ctx.Err() if the render is abandoned first.
func gated(out *vdom.VNode) (node *vdom.VNode, release func()) {
	ch := make(chan struct{})
	var once sync.Once
	node = vdom.Async(func(ctx context.Context) (*vdom.VNode, error) {
		select {
		case <-ch:
			return out, nil
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	})
	return node, func() { once.Do(func() { close(ch) }) }
}

// failing returns an async component that fails with err once released.
func failing(err error) (node *vdom.VNode, release func()) {
	ch := make(chan struct{})
	var once sync.Once
	node = vdom.Async(func(ctx context.Context) (*vdom.VNode, error) {
		select {
		case <-ch:
			return nil, err
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	})
	return node, func() { once.Do(func() { close(ch) }) }
}

// immediate returns an async component that resolves without waiting.
func immediate(out *vdom.VNode) *vdom.VNode {
	return vdom.Async(func(ctx context.Context) (*vdom.VNode, error) {
		return out, nil
	})
}

func testContext(t *testing.T) context.Context {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	t.Cleanup(cancel)
	return ctx
}

func mustRender(t *testing.T, tree *vdom.VNode) *Stream {
	t.Helper()
	s, err := NewRenderer(RendererConfig{}).Render(testContext(t), tree)
	if err != nil {
		t.Fatalf("Render() error: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func mustNext(t *testing.T, s *Stream) Chunk {
	t.Helper()
	c, err := s.Next(testContext(t))
	if err != nil {
		t.Fatalf("Next() error: %v", err)
	}
	return c
}

func expectEOF(t *testing.T, s *Stream) {
	t.Helper()
	if _, err := s.Next(testContext(t)); !errors.Is(err, io.EOF) {
		t.Fatalf("Next() error = %v, want io.EOF", err)
	}
}

func mustReconstruct(t *testing.T, chunks []Chunk) string {
	t.Helper()
	doc, err := Reconstruct(chunks)
	if err != nil {
		t.Fatalf("Reconstruct() error: %v", err)
	}
	return doc
}

func mustString(t *testing.T, tree *vdom.VNode) string {
	t.Helper()
	html, err := RenderToString(tree)
	if err != nil {
		t.Fatalf("RenderToString() error: %v", err)
	}
	return html
}
