// atlas serves the canvas engine over HTTP: sessions, graph
// mutations, and an SSE event stream, backed by the document-analysis
// LLM service.
package main

import (
	"flag"
	"os"

	"github.com/prismdocs/atlas/pkg/api"
	"github.com/prismdocs/atlas/pkg/backend"
	"github.com/prismdocs/atlas/pkg/logging"
	"github.com/prismdocs/atlas/pkg/metrics"
	"github.com/prismdocs/atlas/pkg/pubsub"
	"github.com/prismdocs/atlas/pkg/server"
	"github.com/prismdocs/atlas/pkg/session"
	"github.com/prismdocs/atlas/pkg/viewport"
)

func main() {
	configPath := flag.String("config", "", "Path to YAML config file")
	flag.Parse()

	logger := logging.DefaultLogger().With(logging.String("service", "atlas"))

	cfg, err := api.LoadConfig(*configPath)
	if err != nil {
		logger.Error("config load failed", logging.Error(err))
		os.Exit(1)
	}

	reg := metrics.DefaultRegistry()
	client := backend.New(backend.Config{
		BaseURL: cfg.Backend.BaseURL,
		Token:   cfg.Backend.Token,
		Timeout: cfg.BackendTimeout(),
		Logger:  logger,
		Metrics: reg,
	})

	// Headless sessions lay out against a fixed virtual container
	bounds := func() viewport.Bounds {
		return viewport.Bounds{Width: cfg.Canvas.Width, Height: cfg.Canvas.Height}
	}

	bus := pubsub.NewBus()
	manager := session.NewManager(client, bus, bounds, logger, reg)

	srv := api.NewServer(cfg, manager, logger, reg)
	gs := server.NewGracefulServer(cfg.Addr(), srv.Routes(), logger)
	gs.OnShutdown(manager.Shutdown)

	logger.Info("atlas starting",
		logging.String("addr", cfg.Addr()),
		logging.String("backend", cfg.Backend.BaseURL),
	)
	if err := gs.Start(); err != nil {
		logger.Error("server failed", logging.Error(err))
		os.Exit(1)
	}
}
