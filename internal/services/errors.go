package services

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrExternalTool  = errors.New("external tool error")
	ErrValidation    = errors.New("validation error")
	ErrConfiguration = errors.New("configuration error")
	ErrNotFound      = errors.New("not found")
	ErrIO            = errors.New("io error")
	ErrTimeout       = errors.New("timeout")
	ErrTransient     = errors.New("transient failure")
)

// Class buckets failures the way the CLI reports them.
type Class string

const (
	ClassFatalIO       Class = "fatal_io"
	ClassFatalExternal Class = "fatal_external"
	ClassConfiguration Class = "configuration"
	ClassFailure       Class = "failure"
)

// Wrap builds an error message that includes stage context while tagging it with
// the provided marker for later classification. The marker should be one
// of the exported sentinel errors above.
func Wrap(marker error, stage, operation, message string, err error) error {
	detail := buildDetail(stage, operation, message)
	if marker == nil {
		marker = ErrTransient
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// Classify maps an error to its failure class.
func Classify(err error) Class {
	switch {
	case err == nil:
		return ClassFailure
	case errors.Is(err, ErrIO), errors.Is(err, ErrNotFound):
		return ClassFatalIO
	case errors.Is(err, ErrExternalTool), errors.Is(err, ErrTimeout):
		return ClassFatalExternal
	case errors.Is(err, ErrConfiguration), errors.Is(err, ErrValidation):
		return ClassConfiguration
	default:
		return ClassFailure
	}
}

// ExitCode returns the process exit status for a failed command.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	switch Classify(err) {
	case ClassFatalIO:
		return 3
	case ClassFatalExternal:
		return 4
	case ClassConfiguration:
		return 2
	default:
		return 1
	}
}

// ToolError records a failed external command together with whatever it
// printed, so callers can show the captured output.
type ToolError struct {
	Tool   string
	Output string
	Err    error
}

func (e *ToolError) Error() string {
	msg := e.Tool
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	if out := strings.TrimSpace(e.Output); out != "" {
		msg += ": " + out
	}
	return msg
}

func (e *ToolError) Unwrap() error { return e.Err }

// CapturedOutput returns the subprocess output attached anywhere in err's chain.
func CapturedOutput(err error) string {
	var toolErr *ToolError
	if errors.As(err, &toolErr) {
		return toolErr.Output
	}
	return ""
}

func buildDetail(stage, operation, message string) string {
	parts := make([]string, 0, 3)
	if stage = strings.TrimSpace(stage); stage != "" {
		parts = append(parts, stage)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "service failure"
	}
	return strings.Join(parts, ": ")
}
