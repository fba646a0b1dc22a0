package render

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/vango-dev/vstream/pkg/vdom"
)

// RendererConfig configures the renderer.
type RendererConfig struct {
	// Escape escapes text content. Defaults to EscapeHTML.
	Escape Escaper

	// Memo enables memoized components. Nil disables memoization.
	Memo *MemoCache

	// TaskTimeout bounds each async component. Zero means no limit.
	TaskTimeout time.Duration

	// Doctype prefixes the shell with <!DOCTYPE html>.
	Doctype bool

	// Observer receives stream lifecycle notifications.
	Observer Observer

	// Logger is used for render diagnostics.
	// If nil, slog.Default() is used.
	Logger *slog.Logger
}

// Renderer turns VNode trees into markup. A Renderer holds only
// configuration and may be shared across concurrent renders; per-render
// state lives in a Session.
type Renderer struct {
	config RendererConfig
}

// NewRenderer creates a new Renderer with the given configuration.
func NewRenderer(config RendererConfig) *Renderer {
	if config.Escape == nil {
		config.Escape = EscapeHTML
	}
	if config.Observer == nil {
		config.Observer = Observers(nil)
	}
	if config.Logger == nil {
		config.Logger = slog.Default()
	}
	config.Logger = config.Logger.With("component", "render")
	return &Renderer{config: config}
}

// Render validates tree and returns its chunk stream. Malformed input
// fails with a TreeBuildFault before any output is produced. The walk
// starts on the first call to Next.
func (r *Renderer) Render(ctx context.Context, tree *vdom.VNode) (*Stream, error) {
	if err := vdom.Validate(tree); err != nil {
		return nil, &TreeBuildFault{Err: err}
	}
	session := newSession(ctx, r.config, false)
	return newStream(ctx, session, tree, r.config.Observer), nil
}

// RenderToString serializes a tree synchronously. Suspense boundaries
// render their children in place; async components are a RenderFault.
func (r *Renderer) RenderToString(node *vdom.VNode) (string, error) {
	if err := vdom.Validate(node); err != nil {
		return "", &TreeBuildFault{Err: err}
	}
	session := newSession(context.Background(), r.config, true)
	defer session.abort()

	seg := newSegment()
	if r.config.Doctype {
		seg.WriteString("<!DOCTYPE html>")
	}
	if err := session.walk(seg, node, newBoundary(0, nil, nil)); err != nil {
		return "", err
	}
	html, _ := seg.flat()
	return html, nil
}

// RenderToWriter writes the synchronous serialization of node to w.
func (r *Renderer) RenderToWriter(w io.Writer, node *vdom.VNode) error {
	html, err := r.RenderToString(node)
	if err != nil {
		return err
	}
	_, err = io.WriteString(w, html)
	return err
}

var defaultRenderer = NewRenderer(RendererConfig{})

// Render renders tree with the default configuration.
func Render(ctx context.Context, tree *vdom.VNode) (*Stream, error) {
	return defaultRenderer.Render(ctx, tree)
}

// RenderToString serializes tree synchronously with the default configuration.
func RenderToString(tree *vdom.VNode) (string, error) {
	return defaultRenderer.RenderToString(tree)
}
