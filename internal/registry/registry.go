package registry

import (
	"context"
	"fmt"

	"github.com/vk/maestro/internal/connectivity"
)

// Module is the interface all built-in and caller-supplied modules
// implement to contribute runners and probes to an application instance.
type Module interface {
	Register(r *Registry)
}

// RunnerHandler executes one task operation. The input is the decoded
// arguments struct produced by the runner's NewInput factory (nil when the
// runner declares no arguments). The bool is the task's logical result.
type RunnerHandler func(ctx context.Context, input any) (bool, error)

// RegisteredRunner ties a runner type name to its Go implementation.
type RegisteredRunner struct {
	// NewInput returns a pointer to a fresh arguments struct for HCL
	// decoding. Nil means the runner takes no arguments block.
	NewInput func() any
	Fn       RunnerHandler
}

// ProbeFactory builds a connectivity probe from its decoded arguments.
type ProbeFactory func(name string, input any) (connectivity.Probe, error)

// RegisteredProbe ties a probe kind to its constructor.
type RegisteredProbe struct {
	NewInput func() any
	Build    ProbeFactory
}

// Registry holds all registered runners and probe kinds for a single
// application instance. It is populated during startup and read-only
// afterwards; there is no process-wide shared registry.
type Registry struct {
	runners map[string]*RegisteredRunner
	probes  map[string]*RegisteredProbe
}

// New creates an empty Registry.
func New() *Registry {
	return &Registry{
		runners: make(map[string]*RegisteredRunner),
		probes:  make(map[string]*RegisteredProbe),
	}
}

// RegisterRunner adds a runner implementation under its type name. A
// duplicate or incomplete registration is a programmer error, so it panics.
func (r *Registry) RegisterRunner(kind string, runner *RegisteredRunner) {
	if runner == nil || runner.Fn == nil {
		panic(fmt.Sprintf("registry: runner %q registered without a handler", kind))
	}
	if _, exists := r.runners[kind]; exists {
		panic(fmt.Sprintf("registry: runner %q registered twice", kind))
	}
	r.runners[kind] = runner
}

// RegisterProbe adds a probe constructor under its kind name.
func (r *Registry) RegisterProbe(kind string, probe *RegisteredProbe) {
	if probe == nil || probe.Build == nil {
		panic(fmt.Sprintf("registry: probe %q registered without a constructor", kind))
	}
	if _, exists := r.probes[kind]; exists {
		panic(fmt.Sprintf("registry: probe %q registered twice", kind))
	}
	r.probes[kind] = probe
}

// Runner looks up a runner by type name.
func (r *Registry) Runner(kind string) (*RegisteredRunner, bool) {
	runner, ok := r.runners[kind]
	return runner, ok
}

// Probe looks up a probe constructor by kind.
func (r *Registry) Probe(kind string) (*RegisteredProbe, bool) {
	probe, ok := r.probes[kind]
	return probe, ok
}

// RunnerKinds returns the number of registered runners. Used for startup
// logging.
func (r *Registry) RunnerKinds() int { return len(r.runners) }

// ProbeKinds returns the number of registered probe kinds.
func (r *Registry) ProbeKinds() int { return len(r.probes) }
