// Package print provides a trivial runner that logs a message. Mostly
// useful as a marker step in plans and in tests.
package print

import (
	"context"

	"github.com/vk/maestro/internal/ctxlog"
	"github.com/vk/maestro/internal/registry"
)

// Module implements the registry.Module interface for this package.
type Module struct{}

// Input defines the arguments for the print runner.
type Input struct {
	Message string `hcl:"message"`
}

// OnRunPrint is the handler for the 'print' runner.
func OnRunPrint(ctx context.Context, input any) (bool, error) {
	in := input.(*Input)
	ctxlog.FromContext(ctx).Info(in.Message)
	return true, nil
}

// Register registers the handler with the registry.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterRunner("print", &registry.RegisteredRunner{
		NewInput: func() any { return new(Input) },
		Fn:       OnRunPrint,
	})
}
