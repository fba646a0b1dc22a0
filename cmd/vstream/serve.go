package main

import (
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/vango-dev/vstream/internal/config"
	"github.com/vango-dev/vstream/internal/errors"
	"github.com/vango-dev/vstream/pkg/middleware"
	"github.com/vango-dev/vstream/pkg/render"
	"github.com/vango-dev/vstream/pkg/server"
)

// demoDelay is how long the demo's async components take.
var demoDelay = time.Second

func serveCmd() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the demo pages",
		Long: `Serve the demo pages as chunked HTML at /{page} and as JSON frames
over WebSocket at /ws/{page}. Prometheus metrics are exposed at /metrics
unless disabled in the config.`,
		Example: `  vstream serve
  vstream serve --addr :3000
  vstream serve --config ./vstream.json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.Server.Addr = addr
			}
			logger := cfg.NewLogger(cmd.ErrOrStderr())

			srv := newServer(cfg, logger, newDemoSite(demoDelay))

			out := cmd.OutOrStdout()
			fmt.Fprint(out, banner)
			success(out, "Listening on %s", cfg.Server.Addr)
			for _, name := range srv.pages {
				info(out, "/%s", name)
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			if err := srv.Run(ctx); err != nil {
				return errors.New("E143").Wrap(err)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&addr, "addr", "a", "", "Address to listen on (overrides config)")

	return cmd
}

// demoServer is the server plus the page names it serves.
type demoServer struct {
	*server.Server
	pages []string
}

// newServer wires the renderer, observers and metrics endpoint for cfg.
func newServer(cfg *config.Config, logger *slog.Logger, site demoSite) *demoServer {
	var registry *prometheus.Registry
	if cfg.Metrics.Enabled {
		registry = prometheus.NewRegistry()
		registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
	}

	checkOrigin := server.SameOriginCheck
	if cfg.Server.AllowAnyOrigin {
		checkOrigin = func(*http.Request) bool { return true }
	}

	srv := server.New(&server.Config{
		Address:         cfg.Server.Addr,
		ShutdownTimeout: time.Duration(cfg.Server.ShutdownTimeout),
		WriteWait:       time.Duration(cfg.Server.WriteWait),
		CheckOrigin:     checkOrigin,
		Renderer:        newRenderer(cfg, logger, registry),
		Logger:          logger,
	}, site.serverPages())

	if registry != nil {
		srv.Router().Handle(cfg.Metrics.Path, promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	}
	return &demoServer{Server: srv, pages: site.names()}
}

// newRenderer builds the renderer described by cfg. Metrics are recorded
// on registry when it is non-nil.
func newRenderer(cfg *config.Config, logger *slog.Logger, registry *prometheus.Registry) *render.Renderer {
	var observers render.Observers
	if registry != nil {
		observers = append(observers, middleware.Prometheus(
			middleware.WithRegistry(registry),
			middleware.WithNamespace(cfg.Metrics.Namespace),
		))
	}
	if cfg.Tracing.Enabled {
		observers = append(observers, middleware.OpenTelemetry(
			middleware.WithTracerName(cfg.Tracing.TracerName),
		))
	}

	var memo *render.MemoCache
	if cfg.Render.Memo {
		memo = render.NewMemoCache()
	}
	return render.NewRenderer(render.RendererConfig{
		Memo:        memo,
		TaskTimeout: time.Duration(cfg.Render.TaskTimeout),
		Doctype:     cfg.Render.Doctype,
		Observer:    observers,
		Logger:      logger,
	})
}
