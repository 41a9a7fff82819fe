package preflight

import (
	"context"
	"strings"

	"cuesplice/internal/config"
	"cuesplice/internal/deps"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string `json:"name"`
	Passed bool   `json:"passed"`
	Detail string `json:"detail,omitempty"`
}

// RunAll checks the configured directories. The clips directory is only
// checked when one is configured and only needs to be readable.
func RunAll(ctx context.Context, cfg *config.Config) []Result {
	if cfg == nil {
		return nil
	}

	results := []Result{
		CheckDirectoryAccess("State directory", cfg.Paths.StateDir),
		CheckDirectoryAccess("Output directory", cfg.Paths.OutputDir),
	}
	if strings.TrimSpace(cfg.Paths.ClipsDir) != "" {
		results = append(results, CheckReadableDirectory("Clips directory", cfg.Paths.ClipsDir))
	}
	return results
}

// FirstFailure returns the first failed result, if any.
func FirstFailure(results []Result) (Result, bool) {
	for _, r := range results {
		if !r.Passed {
			return r, true
		}
	}
	return Result{}, false
}

// CheckSystemDeps evaluates the media tools and the aligner for cfg. The
// aligner is optional because refine and splice run without it.
func CheckSystemDeps(ctx context.Context, cfg *config.Config) []deps.Status {
	statuses := deps.CheckBinaries([]deps.Requirement{
		{
			Name:        "FFmpeg",
			Command:     cfg.FFmpegBinary(),
			Description: "Required for frame decoding and rendering",
		},
		{
			Name:        "FFprobe",
			Command:     cfg.FFprobeBinary(),
			Description: "Required for media inspection",
		},
		{
			Name:        "Python",
			Command:     cfg.PythonBinary(),
			Description: "Hosts the forced aligner",
			Optional:    true,
		},
	})
	if python := statuses[len(statuses)-1]; python.Available {
		module := deps.CheckPythonModule(ctx, cfg.PythonBinary(), alignerModule, nil)
		module.Optional = true
		statuses = append(statuses, module)
	}
	return statuses
}

const alignerModule = "aeneas.tools.execute_task"
