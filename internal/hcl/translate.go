package hcl

import (
	"context"
	"fmt"
	"time"

	"github.com/vk/maestro/internal/config"
	"github.com/vk/maestro/internal/schema"
)

// translate converts the merged HCL schema into the agnostic model,
// applying defaults and validating what can be validated without a
// registry: unique names, known dependency references, sane settings.
func (l *Loader) translate(ctx context.Context, merged *schema.PlanConfig) (*config.Model, error) {
	plan := &config.Plan{}

	names := make(map[string]bool, len(merged.Tasks))
	for _, t := range merged.Tasks {
		if names[t.Name] {
			return nil, fmt.Errorf("duplicate task instance name %q", t.Name)
		}
		names[t.Name] = true
		ct, err := translateTask(t)
		if err != nil {
			return nil, err
		}
		plan.Tasks = append(plan.Tasks, ct)
	}

	for _, t := range plan.Tasks {
		for _, dep := range t.DependsOn {
			if !names[dep] {
				return nil, fmt.Errorf("task %q depends on undeclared task %q", t.Name, dep)
			}
		}
	}

	probeNames := make(map[string]bool, len(merged.Probes))
	for _, p := range merged.Probes {
		if probeNames[p.Name] {
			return nil, fmt.Errorf("duplicate probe instance name %q", p.Name)
		}
		probeNames[p.Name] = true
		cp := &config.Probe{Kind: p.Kind, Name: p.Name}
		if p.Arguments != nil {
			cp.Arguments = p.Arguments.Body
		}
		plan.Probes = append(plan.Probes, cp)
	}

	settings, err := translateSettings(merged.Settings)
	if err != nil {
		return nil, err
	}

	return &config.Model{Plan: plan, Settings: settings}, nil
}

// translateTask applies block defaults: tasks are enabled, non-thread-safe,
// network-independent and untimed unless the plan says otherwise.
func translateTask(t *schema.Task) (*config.Task, error) {
	ct := &config.Task{
		RunnerType: t.RunnerType,
		Name:       t.Name,
		DependsOn:  t.DependsOn,
		Enabled:    true,
	}
	if t.Enabled != nil {
		ct.Enabled = *t.Enabled
	}
	if t.ThreadSafe != nil {
		ct.ThreadSafe = *t.ThreadSafe
	}
	if t.Network != nil {
		ct.RequiresNetwork = *t.Network
	}
	if t.Timeout != nil {
		if *t.Timeout < 0 {
			return nil, fmt.Errorf("task %q: timeout_seconds must not be negative", t.Name)
		}
		ct.Timeout = time.Duration(*t.Timeout) * time.Second
	}
	if t.Arguments != nil {
		ct.Arguments = t.Arguments.Body
	}
	return ct, nil
}

// translateSettings fills defaults and enforces the retry interval floor.
func translateSettings(s *schema.Settings) (*config.Settings, error) {
	settings := &config.Settings{RetryInterval: config.DefaultRetryInterval}
	if s == nil {
		return settings, nil
	}
	if s.RetryIntervalSeconds != nil {
		interval := time.Duration(*s.RetryIntervalSeconds) * time.Second
		if interval < config.MinRetryInterval {
			return nil, fmt.Errorf("retry_interval_seconds must be at least %d", int(config.MinRetryInterval/time.Second))
		}
		settings.RetryInterval = interval
	}
	if s.StrictFailures != nil {
		settings.StrictFailures = *s.StrictFailures
	}
	return settings, nil
}
