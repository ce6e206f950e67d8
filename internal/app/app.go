package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/vk/socketgrid/internal/config"
	"github.com/vk/socketgrid/internal/ctxlog"
	"github.com/vk/socketgrid/internal/dynamic"
	"github.com/vk/socketgrid/internal/metrics"
	"github.com/vk/socketgrid/internal/registry"
)

// App encapsulates the application's dependencies, configuration, and lifecycle.
type App struct {
	outW     io.Writer
	logger   *slog.Logger
	config   *Config
	model    *config.Model
	registry *registry.Registry
	metrics  *metrics.Registry

	httpServer *http.Server
}

// NewApp is the constructor for the main application. Reports go to outW and
// logs to logW. Definitions that fail to load or validate are a fatal
// startup error and panic; the entrypoint recovers them.
func NewApp(outW, logW io.Writer, cfg *Config, loader config.Loader) *App {
	logger := newLogger(cfg.LogLevel, cfg.LogFormat, logW)
	ctx := ctxlog.WithLogger(context.Background(), logger)
	logger.Debug("Logger configured successfully.")

	m := metrics.NewRegistry()
	reg := registry.New(dynamic.NewEngine(m))

	model, err := reg.Load(ctx, loader, cfg.paths()...)
	if err != nil {
		panic(fmt.Errorf("failed to load configuration: %w", err))
	}
	logger.Debug("Configuration loaded and translated into unified model.")

	if err := reg.ValidateRegistry(ctx); err != nil {
		panic(err)
	}
	logger.Debug("Registry validation passed.", "types", reg.Types())

	return &App{
		outW:     outW,
		logger:   logger,
		config:   cfg,
		model:    model,
		registry: reg,
		metrics:  m,
	}
}

// Registry returns the application's registry. This is primarily for testing.
func (a *App) Registry() *registry.Registry {
	return a.registry
}

// Metrics returns the application's metrics registry.
func (a *App) Metrics() *metrics.Registry {
	return a.metrics
}
