package app

import (
	"context"
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"

	"github.com/vk/maestro/internal/config"
	"github.com/vk/maestro/internal/connectivity"
	"github.com/vk/maestro/internal/ctxlog"
	"github.com/vk/maestro/internal/graph"
	"github.com/vk/maestro/internal/task"
)

// buildGraph turns the loaded plan into an executable node set: every task
// block becomes a task backed by its registered runner, arguments are
// decoded eagerly so a bad plan fails before anything runs, and dependency
// edges go through the cycle-checking builder.
func (a *App) buildGraph(ctx context.Context) (*graph.Graph, error) {
	logger := ctxlog.FromContext(ctx)

	var opts []graph.BuilderOption
	if a.model.Settings.StrictFailures {
		opts = append(opts, graph.WithStrictFailures())
	}
	builder := graph.NewBuilder(opts...)

	tasks := make(map[string]task.Task, len(a.model.Plan.Tasks))
	for _, t := range a.model.Plan.Tasks {
		built, err := a.buildTask(t)
		if err != nil {
			return nil, err
		}
		tasks[t.Name] = built
	}

	for _, t := range a.model.Plan.Tasks {
		deps := make([]task.Task, 0, len(t.DependsOn))
		for _, depName := range t.DependsOn {
			dep, ok := tasks[depName]
			if !ok {
				return nil, fmt.Errorf("task %q depends on unknown task %q", t.Name, depName)
			}
			deps = append(deps, dep)
		}
		if err := builder.Add(tasks[t.Name], deps...); err != nil {
			return nil, fmt.Errorf("wiring dependencies for task %q: %w", t.Name, err)
		}
	}

	g := builder.Build()
	logger.Debug("Dependency graph built.", "node_count", g.Len(), "requires_network", g.RequiresNetwork())
	return g, nil
}

// buildTask binds one task block to its runner, decoding the arguments
// block into the runner's input struct.
func (a *App) buildTask(t *config.Task) (task.Task, error) {
	runner, ok := a.registry.Runner(t.RunnerType)
	if !ok {
		return nil, fmt.Errorf("task %q: unknown runner type %q", t.Name, t.RunnerType)
	}

	var input any
	if runner.NewInput != nil {
		input = runner.NewInput()
		body := t.Arguments
		if body == nil {
			body = hcl.EmptyBody()
		}
		if diags := gohcl.DecodeBody(body, nil, input); diags.HasErrors() {
			return nil, fmt.Errorf("decoding arguments for task %q: %w", t.Name, diags)
		}
	}

	var opts []task.Option
	if !t.Enabled {
		opts = append(opts, task.Disabled())
	}
	if t.Timeout > 0 {
		opts = append(opts, task.WithTimeout(t.Timeout))
	}
	if t.ThreadSafe {
		opts = append(opts, task.ThreadSafe())
	}
	if t.RequiresNetwork {
		opts = append(opts, task.RequiresNetwork())
	}

	fn := runner.Fn
	return task.New(t.Name, func(ctx context.Context) (bool, error) {
		return fn(ctx, input)
	}, opts...), nil
}

// buildProbes constructs the connectivity aggregator from the plan's probe
// blocks.
func (a *App) buildProbes(ctx context.Context) (*connectivity.Aggregator, error) {
	logger := ctxlog.FromContext(ctx)

	probes := make([]connectivity.Probe, 0, len(a.model.Plan.Probes))
	for _, p := range a.model.Plan.Probes {
		built, err := a.buildProbe(p)
		if err != nil {
			return nil, err
		}
		probes = append(probes, built)
	}

	logger.Debug("Connectivity probes configured.", "count", len(probes))
	return connectivity.NewAggregator(probes...), nil
}

func (a *App) buildProbe(p *config.Probe) (connectivity.Probe, error) {
	registered, ok := a.registry.Probe(p.Kind)
	if !ok {
		return nil, fmt.Errorf("probe %q: unknown probe kind %q", p.Name, p.Kind)
	}

	var input any
	if registered.NewInput != nil {
		input = registered.NewInput()
		body := p.Arguments
		if body == nil {
			body = hcl.EmptyBody()
		}
		if diags := gohcl.DecodeBody(body, nil, input); diags.HasErrors() {
			return nil, fmt.Errorf("decoding arguments for probe %q: %w", p.Name, diags)
		}
	}

	built, err := registered.Build(p.Name, input)
	if err != nil {
		return nil, fmt.Errorf("constructing probe %q: %w", p.Name, err)
	}
	return built, nil
}
