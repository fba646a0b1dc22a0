package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"sort"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// IndexPage is the page served at "/".
const IndexPage = "index"

// Pages maps page names to their builders. A page named "about" is served
// over HTTP at /about and over WebSocket at /ws/about.
type Pages map[string]PageFunc

// Names returns the page names in sorted order.
func (p Pages) Names() []string {
	names := make([]string, 0, len(p))
	for name := range p {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Server is the HTTP/WebSocket server for streamed pages.
type Server struct {
	config     *Config
	router     chi.Router
	httpServer *http.Server
	logger     *slog.Logger

	streams map[string]*StreamHandler
	sockets map[string]*WebSocketHandler
}

// New creates a Server for pages. Unset config fields take their defaults.
func New(config *Config, pages Pages) *Server {
	config = config.withDefaults()
	s := &Server{
		config:  config,
		router:  chi.NewRouter(),
		logger:  config.Logger,
		streams: make(map[string]*StreamHandler, len(pages)),
		sockets: make(map[string]*WebSocketHandler, len(pages)),
	}
	for name, page := range pages {
		s.streams[name] = NewStreamHandler(config.Renderer, page, config.Logger)
		s.sockets[name] = NewWebSocketHandler(config, page)
	}

	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(middleware.Recoverer)
	s.router.Get("/", s.serveIndex)
	s.router.Get("/{page}", s.servePage)
	s.router.Get("/ws/{page}", s.serveWebSocket)
	return s
}

// Router returns the chi router for mounting additional routes such as
// /metrics.
func (s *Server) Router() chi.Router {
	return s.router
}

// Handler returns the server's http.Handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Config returns the server configuration.
func (s *Server) Config() *Config {
	return s.config
}

func (s *Server) serveIndex(w http.ResponseWriter, r *http.Request) {
	h, ok := s.streams[IndexPage]
	if !ok {
		http.NotFound(w, r)
		return
	}
	h.ServeHTTP(w, r)
}

func (s *Server) servePage(w http.ResponseWriter, r *http.Request) {
	h, ok := s.streams[chi.URLParam(r, "page")]
	if !ok {
		http.NotFound(w, r)
		return
	}
	h.ServeHTTP(w, r)
}

func (s *Server) serveWebSocket(w http.ResponseWriter, r *http.Request) {
	h, ok := s.sockets[chi.URLParam(r, "page")]
	if !ok {
		http.NotFound(w, r)
		return
	}
	h.ServeHTTP(w, r)
}

// Run starts the server and blocks until ctx is cancelled or the listener
// fails. Cancellation triggers a graceful shutdown.
func (s *Server) Run(ctx context.Context) error {
	if err := s.config.Validate(); err != nil {
		return err
	}

	s.httpServer = &http.Server{
		Addr:              s.config.Address,
		Handler:           s.router,
		ReadHeaderTimeout: s.config.ReadHeaderTimeout,
		IdleTimeout:       s.config.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server starting", "address", s.config.Address)
		errCh <- s.httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		s.logger.Info("shutting down...")
		return s.Shutdown(context.Background())
	}
}

// Shutdown gracefully shuts down the server. In-flight streams are allowed
// to finish until the shutdown timeout expires.
func (s *Server) Shutdown(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, s.config.ShutdownTimeout)
	defer cancel()

	if s.httpServer != nil {
		if err := s.httpServer.Shutdown(ctx); err != nil {
			s.logger.Error("shutdown error", "error", err)
			return err
		}
	}

	s.logger.Info("server shutdown complete")
	return nil
}
