package config

import (
	"time"

	"github.com/hashicorp/hcl/v2"
)

const (
	// DefaultRetryInterval applies when the settings block does not set one.
	DefaultRetryInterval = 60 * time.Second
	// MinRetryInterval is the smallest interval the loader accepts, so a
	// misconfigured plan cannot hammer the probes.
	MinRetryInterval = 5 * time.Second
)

// Model is the unified, format-agnostic representation of a loaded plan:
// the declared tasks and probes plus the run settings.
type Model struct {
	Plan     *Plan
	Settings *Settings
}

// Plan holds the user's declared task graph and connectivity probes.
type Plan struct {
	Tasks  []*Task
	Probes []*Probe
}

// Task is the format-agnostic representation of a `task` block.
type Task struct {
	// RunnerType names the registered runner that executes this task.
	RunnerType string
	// Name is the unique instance name, used in depends_on references.
	Name      string
	DependsOn []string

	Enabled         bool
	Timeout         time.Duration
	ThreadSafe      bool
	RequiresNetwork bool

	// Arguments is the raw, runner-specific argument body. Nil when the
	// block was omitted.
	Arguments hcl.Body
}

// Probe is the format-agnostic representation of a `probe` block.
type Probe struct {
	// Kind names the registered probe constructor ("http", "tcp", ...).
	Kind string
	Name string
	// Arguments is the raw, kind-specific argument body.
	Arguments hcl.Body
}

// Settings carries run-wide knobs from the `settings` block.
type Settings struct {
	// RetryInterval is how long the connectivity retry loop sleeps between
	// probes. The loader enforces the configured minimum.
	RetryInterval time.Duration
	// StrictFailures escalates a task's logical false result to a hard
	// failure instead of the default lenient completion.
	StrictFailures bool
}
