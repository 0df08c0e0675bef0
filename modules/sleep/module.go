// Package sleep provides a runner that waits for a duration. Handy for
// sequencing demos and for exercising timeouts in tests.
package sleep

import (
	"context"
	"fmt"
	"time"

	"github.com/vk/maestro/internal/registry"
)

// Module implements the registry.Module interface for this package.
type Module struct{}

// Input defines the arguments for the sleep runner.
type Input struct {
	// Duration accepts Go duration syntax, e.g. "250ms" or "2s".
	Duration string `hcl:"duration"`
}

// OnRunSleep is the handler for the 'sleep' runner.
func OnRunSleep(ctx context.Context, input any) (bool, error) {
	in := input.(*Input)
	d, err := time.ParseDuration(in.Duration)
	if err != nil {
		return false, fmt.Errorf("invalid duration %q: %w", in.Duration, err)
	}

	select {
	case <-time.After(d):
		return true, nil
	case <-ctx.Done():
		return false, ctx.Err()
	}
}

// Register registers the handler with the registry.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterRunner("sleep", &registry.RegisteredRunner{
		NewInput: func() any { return new(Input) },
		Fn:       OnRunSleep,
	})
}
