package server

import (
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/vango-dev/vstream/pkg/render"
	"github.com/vango-dev/vstream/pkg/vdom"
)

// PageFunc builds the tree served for a request.
type PageFunc func(r *http.Request) (*vdom.VNode, error)

// StreamHandler serves a page as a chunked HTML response. The shell is
// written as soon as it is ready and every patch is flushed as its
// boundary resolves.
type StreamHandler struct {
	renderer *render.Renderer
	page     PageFunc
	logger   *slog.Logger
}

// NewStreamHandler creates a handler serving page with renderer.
func NewStreamHandler(renderer *render.Renderer, page PageFunc, logger *slog.Logger) *StreamHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &StreamHandler{renderer: renderer, page: page, logger: logger}
}

// ServeHTTP implements http.Handler.
func (h *StreamHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	logger := requestLogger(h.logger, r)

	stream, err := h.open(r)
	if err != nil {
		logger.Error("page build failed", "error", err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	defer stream.Close()
	logger = logger.With("session", stream.SessionID())

	// Pull the shell before committing to a status code so faults that
	// happen before any output still produce a 500.
	shell, err := stream.Next(r.Context())
	if err != nil {
		logger.Error("render failed before shell", "error", err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	header := w.Header()
	header.Set("Content-Type", "text/html; charset=UTF-8")
	header.Set("Transfer-Encoding", "chunked")
	header.Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(http.StatusOK)

	sink := newFlushSink(w)
	if err := sink.WriteChunk(shell); err != nil {
		logger.Debug("client went away before shell", "error", err)
		return
	}
	if err := stream.WriteTo(r.Context(), sink); err != nil {
		var sf *render.StreamFault
		if errors.As(err, &sf) {
			logger.Debug("stream aborted", "error", err, "bytes", sink.written)
		} else {
			logger.Error("render failed after shell", "error", err, "bytes", sink.written)
		}
		return
	}
	logger.Debug("stream complete", "bytes", sink.written)
}

func (h *StreamHandler) open(r *http.Request) (*render.Stream, error) {
	tree, err := h.page(r)
	if err != nil {
		return nil, err
	}
	return h.renderer.Render(r.Context(), tree)
}

// flushSink writes encoded chunks to w and flushes after each one when w
// supports it.
type flushSink struct {
	w       io.Writer
	flusher http.Flusher
	enc     render.Encoder
	written int64
}

func newFlushSink(w http.ResponseWriter) *flushSink {
	flusher, _ := w.(http.Flusher)
	return &flushSink{w: w, flusher: flusher}
}

// WriteChunk implements render.Sink.
func (s *flushSink) WriteChunk(c render.Chunk) error {
	n, err := s.w.Write(s.enc.Encode(c))
	s.written += int64(n)
	if err != nil {
		return err
	}
	if s.flusher != nil {
		s.flusher.Flush()
	}
	return nil
}

func requestLogger(logger *slog.Logger, r *http.Request) *slog.Logger {
	attrs := []any{"method", r.Method, "path", r.URL.Path}
	if id := middleware.GetReqID(r.Context()); id != "" {
		attrs = append(attrs, "request_id", id)
	}
	return logger.With(attrs...)
}
