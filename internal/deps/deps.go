// Package deps reports whether the external programs cuesplice shells out
// to are installed.
package deps

import (
	"context"
	"fmt"
	"os/exec"
	"strings"

	"cuesplice/internal/services"
)

// Requirement defines an external dependency cuesplice relies on.
type Requirement struct {
	Name        string
	Command     string
	Description string
	Optional    bool
}

// Status reports the availability of a dependency.
type Status struct {
	Name        string `json:"name"`
	Command     string `json:"command"`
	Description string `json:"description,omitempty"`
	Optional    bool   `json:"optional,omitempty"`
	Available   bool   `json:"available"`
	Detail      string `json:"detail,omitempty"`
}

// CheckBinaries evaluates the provided requirements and reports availability.
func CheckBinaries(requirements []Requirement) []Status {
	results := make([]Status, 0, len(requirements))
	for _, req := range requirements {
		cmd := strings.TrimSpace(req.Command)
		status := Status{
			Name:        req.Name,
			Command:     cmd,
			Description: strings.TrimSpace(req.Description),
			Optional:    req.Optional,
		}
		if cmd == "" {
			status.Detail = "command not configured"
			results = append(results, status)
			continue
		}
		if _, err := exec.LookPath(cmd); err != nil {
			status.Detail = fmt.Sprintf("binary %q not found", cmd)
			results = append(results, status)
			continue
		}
		status.Available = true
		results = append(results, status)
	}
	return results
}

// CheckPythonModule reports whether python can import the top-level package
// of module. A nil run uses services.RunCommand.
func CheckPythonModule(ctx context.Context, python, module string, run services.CommandRunner) Status {
	pkg, _, _ := strings.Cut(strings.TrimSpace(module), ".")
	status := Status{
		Name:        pkg,
		Command:     python,
		Description: "Forced alignment of transcripts",
	}
	if pkg == "" {
		status.Detail = "module not configured"
		return status
	}
	if run == nil {
		run = services.RunCommand
	}
	if err := run(ctx, python, "-c", "import "+pkg); err != nil {
		status.Detail = fmt.Sprintf("cannot import %s with %s", pkg, python)
		if out := strings.TrimSpace(services.CapturedOutput(err)); out != "" {
			lines := strings.Split(out, "\n")
			status.Detail += ": " + lines[len(lines)-1]
		}
		return status
	}
	status.Available = true
	return status
}

// Missing returns the required dependencies that are unavailable.
func Missing(statuses []Status) []Status {
	var out []Status
	for _, s := range statuses {
		if !s.Available && !s.Optional {
			out = append(out, s)
		}
	}
	return out
}
