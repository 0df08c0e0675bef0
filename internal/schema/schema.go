// Package schema holds the HCL-specific block structures a plan file
// decodes into, before translation to the agnostic config model.
package schema

import "github.com/hashicorp/hcl/v2"

// ArgsBlock represents the content of an 'arguments' block. It is kept as a
// raw body so runner- and probe-specific input structs can decode it later.
type ArgsBlock struct {
	Body hcl.Body `hcl:",remain"`
}

// Task represents a `task` block from a user's plan file.
type Task struct {
	RunnerType string     `hcl:"runner_type,label"`
	Name       string     `hcl:"instance_name,label"`
	DependsOn  []string   `hcl:"depends_on,optional"`
	Enabled    *bool      `hcl:"enabled,optional"`
	Timeout    *int       `hcl:"timeout_seconds,optional"`
	ThreadSafe *bool      `hcl:"thread_safe,optional"`
	Network    *bool      `hcl:"requires_network,optional"`
	Arguments  *ArgsBlock `hcl:"arguments,block"`
}

// Probe represents a `probe` block declaring a connectivity probe.
type Probe struct {
	Kind      string     `hcl:"kind,label"`
	Name      string     `hcl:"instance_name,label"`
	Arguments *ArgsBlock `hcl:"arguments,block"`
}

// Settings represents the optional `settings` block.
type Settings struct {
	RetryIntervalSeconds *int  `hcl:"retry_interval_seconds,optional"`
	StrictFailures       *bool `hcl:"strict_failures,optional"`
}

// PlanConfig represents the top-level structure of a plan file.
type PlanConfig struct {
	Tasks    []*Task   `hcl:"task,block"`
	Probes   []*Probe  `hcl:"probe,block"`
	Settings *Settings `hcl:"settings,block"`
	Body     hcl.Body  `hcl:",remain"`
}
