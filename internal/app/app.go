package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/vk/maestro/internal/config"
	"github.com/vk/maestro/internal/ctxlog"
	"github.com/vk/maestro/internal/orchestrator"
	"github.com/vk/maestro/internal/registry"
)

// App encapsulates one application instance: its logger, registry, loaded
// plan and, once Run is called, the orchestrator driving it.
type App struct {
	outW     io.Writer
	logger   *slog.Logger
	registry *registry.Registry
	model    *config.Model

	mu   sync.Mutex
	orch *orchestrator.Orchestrator
}

// NewApp is the constructor for the main application. It returns a fully
// initialized App with its own isolated logger and registry. Modules
// default to the built-in set when none are supplied; tests inject their
// own.
func NewApp(outW io.Writer, appConfig *Config, loader config.Loader, modules ...registry.Module) *App {
	logger := newLogger(appConfig.LogLevel, appConfig.LogFormat, outW)
	ctx := ctxlog.WithLogger(context.Background(), logger)
	logger.Debug("Logger configured successfully.")

	reg := registry.New()
	if len(modules) == 0 {
		modules = coreModules
	}
	for _, mod := range modules {
		mod.Register(reg)
	}
	logger.Debug("All modules registered.", "runners", reg.RunnerKinds(), "probe_kinds", reg.ProbeKinds())

	model, err := loader.Load(ctx, appConfig.PlanPath)
	if err != nil {
		// A failure to load the plan is a fatal startup error.
		panic(fmt.Errorf("failed to load plan: %w", err))
	}
	logger.Debug("Plan loaded and translated into unified model.")

	return &App{
		outW:     outW,
		logger:   logger,
		registry: reg,
		model:    model,
	}
}

// Registry returns the application's registry. This is primarily for testing.
func (a *App) Registry() *registry.Registry {
	return a.registry
}

// Model returns the loaded plan model. This is primarily for testing.
func (a *App) Model() *config.Model {
	return a.model
}

// setOrchestrator publishes the active run for the healthcheck endpoint.
func (a *App) setOrchestrator(o *orchestrator.Orchestrator) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.orch = o
}

func (a *App) currentOrchestrator() *orchestrator.Orchestrator {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.orch
}
