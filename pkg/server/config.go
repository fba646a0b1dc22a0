package server

import (
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/vango-dev/vstream/pkg/render"
)

// Config holds configuration for the HTTP/WebSocket server.
type Config struct {
	// Address is the address to listen on (e.g., ":8080" or "localhost:3000").
	// Default: ":8080".
	Address string

	// ReadHeaderTimeout bounds reading request headers.
	// Default: 10 seconds.
	ReadHeaderTimeout time.Duration

	// IdleTimeout bounds keep-alive connections.
	// Default: 120 seconds.
	IdleTimeout time.Duration

	// ShutdownTimeout is the maximum time to wait for graceful shutdown.
	// Default: 30 seconds.
	ShutdownTimeout time.Duration

	// WebSocket buffer sizes

	// ReadBufferSize is the WebSocket read buffer size.
	// Default: 4096.
	ReadBufferSize int

	// WriteBufferSize is the WebSocket write buffer size.
	// Default: 4096.
	WriteBufferSize int

	// WriteWait bounds a single WebSocket frame write.
	// Default: 10 seconds.
	WriteWait time.Duration

	// CheckOrigin is called to validate the WebSocket request origin.
	// Default: SameOriginCheck.
	CheckOrigin func(r *http.Request) bool

	// Renderer renders pages. Default: a Renderer emitting a doctype.
	Renderer *render.Renderer

	// Logger is the server logger. Default: slog.Default().
	Logger *slog.Logger
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Address:           ":8080",
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
		ShutdownTimeout:   30 * time.Second,
		ReadBufferSize:    4096,
		WriteBufferSize:   4096,
		WriteWait:         10 * time.Second,
		CheckOrigin:       SameOriginCheck,
	}
}

// withDefaults fills unset fields from DefaultConfig.
func (c *Config) withDefaults() *Config {
	out := DefaultConfig()
	if c == nil {
		c = &Config{}
	}
	if c.Address != "" {
		out.Address = c.Address
	}
	if c.ReadHeaderTimeout > 0 {
		out.ReadHeaderTimeout = c.ReadHeaderTimeout
	}
	if c.IdleTimeout > 0 {
		out.IdleTimeout = c.IdleTimeout
	}
	if c.ShutdownTimeout > 0 {
		out.ShutdownTimeout = c.ShutdownTimeout
	}
	if c.ReadBufferSize > 0 {
		out.ReadBufferSize = c.ReadBufferSize
	}
	if c.WriteBufferSize > 0 {
		out.WriteBufferSize = c.WriteBufferSize
	}
	if c.WriteWait > 0 {
		out.WriteWait = c.WriteWait
	}
	if c.CheckOrigin != nil {
		out.CheckOrigin = c.CheckOrigin
	}
	base := c.Logger
	if base == nil {
		base = slog.Default()
	}
	out.Logger = base.With("component", "server")
	out.Renderer = c.Renderer
	if out.Renderer == nil {
		out.Renderer = render.NewRenderer(render.RendererConfig{Doctype: true, Logger: base})
	}
	return out
}

// Validate reports configuration errors.
func (c *Config) Validate() error {
	var errs []error
	if c.Address == "" {
		errs = append(errs, errors.New("server: address is required"))
	}
	if c.ReadBufferSize < 0 || c.WriteBufferSize < 0 {
		errs = append(errs, errors.New("server: websocket buffer sizes must not be negative"))
	}
	if c.ShutdownTimeout < 0 {
		errs = append(errs, errors.New("server: shutdown timeout must not be negative"))
	}
	return errors.Join(errs...)
}

// SameOriginCheck validates that the WebSocket request origin matches the host.
// Requests without an Origin header (curl, same-origin navigation) are allowed.
func SameOriginCheck(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}

	originURL, err := url.Parse(origin)
	if err != nil {
		return false
	}
	if r.Host == "" {
		return false
	}
	return originURL.Host == r.Host
}
