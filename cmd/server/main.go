/*
main.go - Application entry point

PURPOSE:
  Initializes and starts the FieldPulse Finance Engine server. Handles
  configuration, dependency injection, and graceful shutdown.

STARTUP SEQUENCE:
  1. Parse command-line flags
  2. Load layered configuration (defaults <- YAML <- FINANCE_* env)
  3. Select the action item store (JSON file or SQLite by extension)
  4. Wire enricher, detection engine, tracker, metrics into the handler
  5. Start server with graceful shutdown

COMMAND-LINE FLAGS:
  -config  YAML configuration path (default: FINANCE_CONFIG env, or none)
  -addr    Listen address, overrides config (e.g. ":3000")

STORE SELECTION:
  task_store ending in .db or .sqlite opens the SQLite store; anything
  else is treated as a JSON document path.

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM:
  1. Stop accepting new connections
  2. Wait for active requests to complete (30s timeout)
  3. Close the store
  4. Exit

EXAMPLES:
  # Run with the built-in defaults (JSON store under output/tasks/)
  ./server

  # Run with a config file and SQLite store
  FINANCE_TASK_STORE=./data/tasks.db ./server -config=./config.yaml

SEE ALSO:
  - factory/config.go: configuration layering
  - api/server.go:     router configuration
*/
package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"

	"github.com/fieldpulse/finance-engine/api"
	"github.com/fieldpulse/finance-engine/factory"
	"github.com/fieldpulse/finance-engine/finance"
	"github.com/fieldpulse/finance-engine/insights"
	"github.com/fieldpulse/finance-engine/store/jsonfile"
	"github.com/fieldpulse/finance-engine/store/sqlite"
	"github.com/fieldpulse/finance-engine/tasks"
)

func main() {
	configPath := flag.String("config", "", "YAML configuration path")
	addr := flag.String("addr", "", "listen address, overrides config")
	flag.Parse()

	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})

	cfg, err := factory.Load(*configPath)
	if err != nil {
		logger.WithError(err).Fatal("failed to load configuration")
	}
	if *addr != "" {
		cfg.Addr = *addr
	}

	taxTable, err := cfg.TaxTable()
	if err != nil {
		logger.WithError(err).Fatal("failed to build tax table")
	}

	store, closeStore, err := openStore(cfg.TaskStore)
	if err != nil {
		logger.WithError(err).Fatal("failed to open action item store")
	}
	defer closeStore()

	enricher := &finance.Enricher{
		Rules:               cfg.Commission,
		HighCommissionRatio: cfg.HighCommissionRatio,
		Workers:             cfg.Workers,
		Logger:              logger,
	}
	engine := insights.NewEngine(cfg.Detection, logger)
	tracker := tasks.NewTracker(store, logger)
	metrics := api.NewMetrics(prometheus.DefaultRegisterer)

	handler := api.NewHandler(enricher, engine, tracker, taxTable, metrics, logger)
	server := api.NewServer(cfg.Addr, handler)

	go func() {
		logger.WithField("addr", cfg.Addr).Info("server starting")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.WithError(err).Fatal("server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.WithError(err).Fatal("server forced to shutdown")
	}
	logger.Info("server stopped")
}

// openStore picks a store implementation from the configured path.
func openStore(path string) (tasks.Store, func(), error) {
	if strings.HasSuffix(path, ".db") || strings.HasSuffix(path, ".sqlite") || path == ":memory:" {
		s, err := sqlite.New(path)
		if err != nil {
			return nil, nil, err
		}
		return s, func() { s.Close() }, nil
	}
	return jsonfile.New(path), func() {}, nil
}
