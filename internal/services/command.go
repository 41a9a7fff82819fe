package services

import (
	"context"
	"errors"
	"os/exec"
	"strings"
)

// CommandRunner runs an external program. Tests swap in fakes.
type CommandRunner func(ctx context.Context, name string, args ...string) error

// RunCommand runs name with args and returns a *ToolError carrying the
// combined output when the command fails. A context deadline is reported as
// ErrTimeout.
func RunCommand(ctx context.Context, name string, args ...string) error {
	cmd := exec.CommandContext(ctx, name, args...) //nolint:gosec
	output, err := cmd.CombinedOutput()
	if err == nil {
		return nil
	}
	toolErr := &ToolError{Tool: name, Output: strings.TrimSpace(string(output)), Err: err}
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return Wrap(ErrTimeout, "", name, "deadline exceeded", toolErr)
	}
	return toolErr
}
