package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/vk/maestro/internal/ctxlog"
	"github.com/vk/maestro/internal/graph"
	"github.com/vk/maestro/internal/orchestrator"
)

// ErrRunFailed is returned by Run when the orchestration finishes but at
// least one enabled task did not complete.
var ErrRunFailed = errors.New("run finished with failures")

// Run executes the main application logic: build the graph and probes from
// the loaded plan, start the orchestrator and wait for the run to settle.
// Canceling the context tears down a pending connectivity retry loop.
func (a *App) Run(ctx context.Context, appConfig *Config) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	a.logger.Debug("App.Run method started.")

	if appConfig.HealthcheckPort > 0 {
		a.startHealthcheckServer(appConfig.HealthcheckPort)
	}

	g, err := a.buildGraph(ctx)
	if err != nil {
		return fmt.Errorf("failed to build dependency graph: %w", err)
	}
	if g.Len() == 0 {
		a.logger.Warn("No tasks found in plan, execution not required.")
		return nil
	}

	agg, err := a.buildProbes(ctx)
	if err != nil {
		return fmt.Errorf("failed to build connectivity probes: %w", err)
	}

	orch := orchestrator.New(g, agg, orchestrator.WithRetryInterval(a.model.Settings.RetryInterval))
	orch.OnNodeFinished(func(n *graph.Node, success bool) {
		if success {
			a.logger.Info("✅ Task finished", "task", n.Name(), "elapsed", n.Elapsed())
		} else {
			a.logger.Error("❌ Task failed", "task", n.Name(), "elapsed", n.Elapsed(), "error", n.Err())
		}
	})
	a.setOrchestrator(orch)

	a.logger.Info("🚀 Starting orchestration...", "tasks", g.Len())
	handle, err := orch.Start(ctx)
	if err != nil {
		return err
	}

	select {
	case <-handle.Done():
	case <-ctx.Done():
		a.logger.Warn("Context canceled, stopping the run.")
		handle.Stop()
		<-handle.Done()
	}

	if !handle.Success() {
		return ErrRunFailed
	}
	a.logger.Info("🏁 Orchestration finished.")
	return nil
}
