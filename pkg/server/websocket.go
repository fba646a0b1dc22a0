package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/vango-dev/vstream/pkg/render"
)

// Frame is the JSON message carrying one chunk over a WebSocket.
type Frame struct {
	Kind   string `json:"kind"` // "shell" or "patch"
	Slot   int    `json:"slot"`
	Markup string `json:"markup"`
}

// FrameOf converts a chunk to its WebSocket frame.
func FrameOf(c render.Chunk) Frame {
	return Frame{Kind: c.Kind.String(), Slot: c.SlotID, Markup: c.Markup}
}

// WebSocketHandler streams a page's chunks as JSON frames. The connection
// is closed with a normal closure once the stream ends, or with an internal
// error status when the render faults. The client may close early, which
// abandons the render.
type WebSocketHandler struct {
	renderer  *render.Renderer
	page      PageFunc
	upgrader  websocket.Upgrader
	writeWait time.Duration
	logger    *slog.Logger
}

// NewWebSocketHandler creates a WebSocket handler for page. config must
// have its defaults applied.
func NewWebSocketHandler(config *Config, page PageFunc) *WebSocketHandler {
	return &WebSocketHandler{
		renderer: config.Renderer,
		page:     page,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  config.ReadBufferSize,
			WriteBufferSize: config.WriteBufferSize,
			CheckOrigin:     config.CheckOrigin,
		},
		writeWait: config.WriteWait,
		logger:    config.Logger,
	}
}

// ServeHTTP implements http.Handler.
func (h *WebSocketHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	logger := requestLogger(h.logger, r).With("transport", "websocket")

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// The upgrader has already replied with an HTTP error.
		logger.Warn("websocket upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	// The request context does not observe a hijacked connection going
	// away; the read loop below cancels instead.
	ctx, cancel := context.WithCancel(context.WithoutCancel(r.Context()))
	defer cancel()

	tree, err := h.page(r)
	if err != nil {
		logger.Error("page build failed", "error", err)
		h.close(conn, websocket.CloseInternalServerErr, "page build failed")
		return
	}
	stream, err := h.renderer.Render(ctx, tree)
	if err != nil {
		logger.Error("page build failed", "error", err)
		h.close(conn, websocket.CloseInternalServerErr, "page build failed")
		return
	}
	defer stream.Close()
	logger = logger.With("session", stream.SessionID())

	readDone := make(chan struct{})
	go func() {
		defer close(readDone)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				if websocket.IsUnexpectedCloseError(err,
					websocket.CloseGoingAway,
					websocket.CloseAbnormalClosure,
					websocket.CloseNormalClosure) {
					logger.Warn("read error", "error", err)
				}
				stream.Close()
				cancel()
				return
			}
		}
	}()

	frames := 0
	err = stream.WriteTo(ctx, render.SinkFunc(func(c render.Chunk) error {
		conn.SetWriteDeadline(time.Now().Add(h.writeWait))
		if err := conn.WriteJSON(FrameOf(c)); err != nil {
			return err
		}
		frames++
		return nil
	}))

	var sf *render.StreamFault
	switch {
	case err == nil:
		logger.Debug("stream complete", "frames", frames)
		h.close(conn, websocket.CloseNormalClosure, "")
	case errors.As(err, &sf):
		logger.Debug("stream aborted", "error", err, "frames", frames)
		h.close(conn, websocket.CloseGoingAway, "")
	default:
		logger.Error("render failed", "error", err, "frames", frames)
		h.close(conn, websocket.CloseInternalServerErr, "render failed")
	}

	// Wait for the peer to acknowledge the close.
	select {
	case <-readDone:
	case <-time.After(h.writeWait):
	}
}

func (h *WebSocketHandler) close(conn *websocket.Conn, code int, reason string) {
	msg := websocket.FormatCloseMessage(code, reason)
	_ = conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(h.writeWait))
}
