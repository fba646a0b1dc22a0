package server

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/vango-dev/vstream/pkg/render"
	"github.com/vango-dev/vstream/pkg/vdom"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func delayed(d time.Duration, out *vdom.VNode) *vdom.VNode {
	return vdom.Async(func(ctx context.Context) (*vdom.VNode, error) {
		select {
		case <-time.After(d):
			return out, nil
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	})
}

func testPages() Pages {
	return Pages{
		IndexPage: func(r *http.Request) (*vdom.VNode, error) {
			return vdom.H1("Hello Hono!"), nil
		},
		"suspense": func(r *http.Request) (*vdom.VNode, error) {
			return vdom.Div(vdom.Suspense(vdom.Text("loading..."), delayed(10*time.Millisecond, vdom.Text("Done!")))), nil
		},
		"broken": func(r *http.Request) (*vdom.VNode, error) {
			return nil, errors.New("no data")
		},
	}
}

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv := New(&Config{Logger: testLogger()}, testPages())
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return ts
}

func TestStreamHandlerServesShellAndPatches(t *testing.T) {
	ts := newTestServer(t)

	resp, err := http.Get(ts.URL + "/suspense")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "text/html; charset=UTF-8" {
		t.Errorf("Content-Type = %q", ct)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	html := string(body)

	wantShell := `<!DOCTYPE html><div><template id="vs:1"></template>loading...<!--/vs:1--></div>`
	if !strings.HasPrefix(html, wantShell) {
		t.Errorf("body should start with the shell:\n%s", html)
	}
	wantPatch := render.ClientRuntime + `<template data-vs="1">Done!</template><script>__vs(1)</script>`
	if !strings.HasSuffix(html, wantPatch) {
		t.Errorf("body should end with the patch:\n%s", html)
	}
}

func TestStreamHandlerIndex(t *testing.T) {
	ts := newTestServer(t)

	resp, err := http.Get(ts.URL + "/")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	if string(body) != "<!DOCTYPE html><h1>Hello Hono!</h1>" {
		t.Errorf("body = %q", body)
	}
}

func TestStreamHandlerErrors(t *testing.T) {
	ts := newTestServer(t)

	tests := []struct {
		path string
		want int
	}{
		{"/missing", http.StatusNotFound},
		{"/broken", http.StatusInternalServerError},
		{"/ws/missing", http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			resp, err := http.Get(ts.URL + tt.path)
			if err != nil {
				t.Fatalf("GET: %v", err)
			}
			resp.Body.Close()
			if resp.StatusCode != tt.want {
				t.Errorf("status = %d, want %d", resp.StatusCode, tt.want)
			}
		})
	}
}

func TestStreamHandlerRenderFaultBeforeShell(t *testing.T) {
	page := func(r *http.Request) (*vdom.VNode, error) {
		return vdom.Div(vdom.Func(func() *vdom.VNode { panic("boom") })), nil
	}
	h := NewStreamHandler(render.NewRenderer(render.RendererConfig{Logger: testLogger()}), page, testLogger())

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", rec.Code)
	}
	if strings.Contains(rec.Body.String(), "<div>") {
		t.Error("no markup should be written after a fault before the shell")
	}
}

type flushRecorder struct {
	*httptest.ResponseRecorder
	mu      sync.Mutex
	flushes int
}

func (r *flushRecorder) Flush() {
	r.mu.Lock()
	r.flushes++
	r.mu.Unlock()
	r.ResponseRecorder.Flush()
}

func TestStreamHandlerFlushesEveryChunk(t *testing.T) {
	page := func(r *http.Request) (*vdom.VNode, error) {
		return vdom.Main(
			vdom.Suspense(vdom.Text("a"), delayed(5*time.Millisecond, vdom.P("A"))),
			vdom.Suspense(vdom.Text("b"), delayed(10*time.Millisecond, vdom.P("B"))),
		), nil
	}
	h := NewStreamHandler(render.NewRenderer(render.RendererConfig{Logger: testLogger()}), page, testLogger())

	rec := &flushRecorder{ResponseRecorder: httptest.NewRecorder()}
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	if rec.flushes != 3 {
		t.Errorf("flushes = %d, want 3 (shell + 2 patches)", rec.flushes)
	}
	if te := rec.Header().Get("Transfer-Encoding"); te != "chunked" {
		t.Errorf("Transfer-Encoding = %q", te)
	}
	if rec.Header().Get("X-Content-Type-Options") != "nosniff" {
		t.Error("missing nosniff header")
	}
}

func TestStreamHandlerClientDisconnect(t *testing.T) {
	abandoned := make(chan struct{})
	page := func(r *http.Request) (*vdom.VNode, error) {
		return vdom.Suspense(vdom.Text("..."), vdom.Async(func(ctx context.Context) (*vdom.VNode, error) {
			<-ctx.Done()
			close(abandoned)
			return nil, ctx.Err()
		})), nil
	}
	h := NewStreamHandler(render.NewRenderer(render.RendererConfig{Logger: testLogger()}), page, testLogger())

	ctx, cancel := context.WithCancel(context.Background())
	req := httptest.NewRequest(http.MethodGet, "/", nil).WithContext(ctx)
	rec := httptest.NewRecorder()

	done := make(chan struct{})
	go func() {
		defer close(done)
		h.ServeHTTP(rec, req)
	}()

	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("handler did not return after the client went away")
	}
	select {
	case <-abandoned:
	case <-time.After(2 * time.Second):
		t.Error("async component was not cancelled")
	}
}

func TestWebSocketHandlerSendsFrames(t *testing.T) {
	ts := newTestServer(t)

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws/suspense"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	var frames []Frame
	for {
		var f Frame
		if err := conn.ReadJSON(&f); err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure) {
				t.Fatalf("read: %v", err)
			}
			break
		}
		frames = append(frames, f)
	}

	want := []Frame{
		{Kind: "shell", Markup: `<!DOCTYPE html><div><template id="vs:1"></template>loading...<!--/vs:1--></div>`},
		{Kind: "patch", Slot: 1, Markup: "Done!"},
	}
	if len(frames) != len(want) {
		t.Fatalf("frames = %+v, want %+v", frames, want)
	}
	for i := range want {
		if frames[i] != want[i] {
			t.Errorf("frame %d = %+v, want %+v", i, frames[i], want[i])
		}
	}
}

func TestWebSocketHandlerRenderFault(t *testing.T) {
	ts := newTestServer(t)

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws/broken"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	_, _, err = conn.ReadMessage()
	if !websocket.IsCloseError(err, websocket.CloseInternalServerErr) {
		t.Errorf("read error = %v, want internal server error close", err)
	}
}

func TestWebSocketRejectsCrossOrigin(t *testing.T) {
	ts := newTestServer(t)

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws/suspense"
	header := http.Header{"Origin": []string{"http://evil.example"}}
	_, resp, err := websocket.DefaultDialer.Dial(wsURL, header)
	if err == nil {
		t.Fatal("expected cross-origin dial to fail")
	}
	if resp == nil || resp.StatusCode != http.StatusForbidden {
		t.Errorf("response = %v, want 403", resp)
	}
}

func TestSameOriginCheck(t *testing.T) {
	tests := []struct {
		name   string
		origin string
		host   string
		want   bool
	}{
		{"no origin", "", "example.com", true},
		{"same host", "https://example.com", "example.com", true},
		{"same host and port", "http://localhost:3000", "localhost:3000", true},
		{"different host", "https://evil.com", "example.com", false},
		{"different port", "http://localhost:4000", "localhost:3000", false},
		{"malformed origin", "://bad", "example.com", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/ws/x", nil)
			r.Host = tt.host
			if tt.origin != "" {
				r.Header.Set("Origin", tt.origin)
			}
			if got := SameOriginCheck(r); got != tt.want {
				t.Errorf("SameOriginCheck() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestConfigDefaults(t *testing.T) {
	cfg := (&Config{Address: ":3000"}).withDefaults()
	if cfg.Address != ":3000" {
		t.Errorf("Address = %q", cfg.Address)
	}
	if cfg.ReadBufferSize != 4096 || cfg.WriteBufferSize != 4096 {
		t.Errorf("buffer sizes = %d/%d", cfg.ReadBufferSize, cfg.WriteBufferSize)
	}
	if cfg.ShutdownTimeout != 30*time.Second {
		t.Errorf("ShutdownTimeout = %v", cfg.ShutdownTimeout)
	}
	if cfg.Renderer == nil || cfg.Logger == nil || cfg.CheckOrigin == nil {
		t.Error("renderer, logger and origin check should be defaulted")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() = %v", err)
	}

	if err := (&Config{ShutdownTimeout: -1}).Validate(); err == nil {
		t.Error("expected validation error")
	}
}

func TestPagesNames(t *testing.T) {
	got := testPages().Names()
	want := []string{"broken", "index", "suspense"}
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Errorf("Names() = %v, want %v", got, want)
	}
}
