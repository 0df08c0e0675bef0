package task

import (
	"context"
	"time"
)

// Task is the contract a unit of startup work implements. The orchestrator
// only ever reads the metadata accessors and invokes Run; what the work
// actually does is the caller's business.
type Task interface {
	// Name identifies the task in logs, events and dependency declarations.
	Name() string
	// Enabled reports whether the task participates in the run at all.
	// Disabled tasks are excluded from readiness and completion accounting.
	Enabled() bool
	// Timeout is the maximum duration Run is given before the node is
	// failed with ErrTimeout. Zero means no timeout.
	Timeout() time.Duration
	// ThreadSafe reports whether Run may execute concurrently with other
	// tasks of the same wave. Non-thread-safe tasks run one at a time on
	// the scheduling goroutine.
	ThreadSafe() bool
	// RequiresNetwork reports whether the task may only start once
	// connectivity has been confirmed by the probe aggregator.
	RequiresNetwork() bool
	// Run performs the work. The returned bool is the logical result of
	// the operation; it is distinct from the error, which signals a hard
	// failure.
	Run(ctx context.Context) (bool, error)
}

// RunFunc is the signature of a task operation.
type RunFunc func(ctx context.Context) (bool, error)

// Option mutates a task definition during construction.
type Option func(*definition)

// WithTimeout sets the per-run timeout. Zero or negative disables it.
func WithTimeout(d time.Duration) Option {
	return func(def *definition) {
		if d < 0 {
			d = 0
		}
		def.timeout = d
	}
}

// ThreadSafe marks the task as safe to run concurrently with its wave peers.
func ThreadSafe() Option {
	return func(def *definition) { def.threadSafe = true }
}

// RequiresNetwork gates the task behind a confirmed network connection.
func RequiresNetwork() Option {
	return func(def *definition) { def.requiresNetwork = true }
}

// Disabled excludes the task from the run without removing it from the graph.
func Disabled() Option {
	return func(def *definition) { def.enabled = false }
}

// New constructs a Task from a name and an operation. Tasks are enabled,
// non-thread-safe, network-independent and untimed unless options say
// otherwise.
func New(name string, run RunFunc, opts ...Option) Task {
	def := &definition{
		name:    name,
		enabled: true,
		run:     run,
	}
	for _, opt := range opts {
		opt(def)
	}
	return def
}

// definition is the concrete Task produced by New. It is un-exported to
// enforce interaction through the Task interface.
type definition struct {
	name            string
	enabled         bool
	timeout         time.Duration
	threadSafe      bool
	requiresNetwork bool
	run             RunFunc
}

func (d *definition) Name() string           { return d.name }
func (d *definition) Enabled() bool          { return d.enabled }
func (d *definition) Timeout() time.Duration { return d.timeout }
func (d *definition) ThreadSafe() bool       { return d.threadSafe }
func (d *definition) RequiresNetwork() bool  { return d.requiresNetwork }

func (d *definition) Run(ctx context.Context) (bool, error) {
	if d.run == nil {
		return true, nil
	}
	return d.run(ctx)
}
