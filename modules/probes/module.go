// Package probes registers the built-in connectivity probe kinds ("http"
// and "tcp") with the registry, so plans can declare them in probe blocks.
package probes

import (
	"time"

	"github.com/vk/maestro/internal/connectivity"
	"github.com/vk/maestro/internal/registry"
)

// Module implements the registry.Module interface for this package.
type Module struct{}

// HTTPInput defines the arguments for an "http" probe block.
type HTTPInput struct {
	URL            string `hcl:"url"`
	TimeoutSeconds int    `hcl:"timeout_seconds,optional"`
}

// TCPInput defines the arguments for a "tcp" probe block.
type TCPInput struct {
	Address        string `hcl:"address"`
	TimeoutSeconds int    `hcl:"timeout_seconds,optional"`
}

// Register registers both probe constructors with the registry.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterProbe("http", &registry.RegisteredProbe{
		NewInput: func() any { return new(HTTPInput) },
		Build: func(name string, input any) (connectivity.Probe, error) {
			in := input.(*HTTPInput)
			return connectivity.NewHTTPProbe(name, in.URL, time.Duration(in.TimeoutSeconds)*time.Second), nil
		},
	})
	r.RegisterProbe("tcp", &registry.RegisteredProbe{
		NewInput: func() any { return new(TCPInput) },
		Build: func(name string, input any) (connectivity.Probe, error) {
			in := input.(*TCPInput)
			return connectivity.NewTCPProbe(name, in.Address, time.Duration(in.TimeoutSeconds)*time.Second), nil
		},
	})
}
