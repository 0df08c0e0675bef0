// Package command provides a runner that executes an external program. A
// non-zero exit code is a logical failure; failing to launch at all is a
// hard error.
package command

import (
	"context"
	"errors"
	"os/exec"

	"github.com/vk/maestro/internal/ctxlog"
	"github.com/vk/maestro/internal/registry"
)

// Module implements the registry.Module interface for this package.
type Module struct{}

// Input defines the arguments for the command runner.
type Input struct {
	Command string   `hcl:"command"`
	Args    []string `hcl:"args,optional"`
	Dir     string   `hcl:"dir,optional"`
}

// OnRunCommand is the handler for the 'command' runner.
func OnRunCommand(ctx context.Context, input any) (bool, error) {
	in := input.(*Input)
	logger := ctxlog.FromContext(ctx).With("command", in.Command)

	cmd := exec.CommandContext(ctx, in.Command, in.Args...)
	cmd.Dir = in.Dir

	out, err := cmd.CombinedOutput()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			logger.Warn("Command exited non-zero.", "exit_code", exitErr.ExitCode(), "output", string(out))
			return false, nil
		}
		return false, err
	}

	logger.Debug("Command completed.", "output", string(out))
	return true, nil
}

// Register registers the handler with the registry.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterRunner("command", &registry.RegisteredRunner{
		NewInput: func() any { return new(Input) },
		Fn:       OnRunCommand,
	})
}
