package pipeline

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"cuesplice/internal/alignment"
	"cuesplice/internal/logging"
	"cuesplice/internal/notifications"
	"cuesplice/internal/registry"
	"cuesplice/internal/services"
)

// RunRequest drives the whole flow. SubtitlePath skips alignment; otherwise
// AudioPath and TranscriptPath are aligned first. Scenes come from
// Variations, or from ClipsDir when Variations is empty.
type RunRequest struct {
	VideoPath      string `validate:"required"`
	SubtitlePath   string
	AudioPath      string `validate:"required_without=SubtitlePath"`
	TranscriptPath string `validate:"required_without=SubtitlePath"`
	ClipsDir       string
	Variations     []Variation
	OutputDir      string
	Project        string
}

// RunResult collects what every stage produced.
type RunResult struct {
	Alignment *alignment.Result
	Refine    RefineResult
	Splice    SpliceResult
}

// Run aligns (when needed), refines and splices in one go.
func (p *Pipeline) Run(ctx context.Context, req RunRequest) (RunResult, error) {
	var result RunResult
	spec := registry.RunSpec{Project: req.Project, VideoPath: req.VideoPath, SubtitlePath: req.SubtitlePath}
	err := p.recordRun(ctx, spec, func(ctx context.Context) ([]string, error) {
		var err error
		result, err = p.run(ctx, req)
		return result.Splice.Outputs, err
	})
	return result, err
}

func (p *Pipeline) run(ctx context.Context, req RunRequest) (RunResult, error) {
	var result RunResult
	if err := services.ValidateStruct("run", req); err != nil {
		return result, err
	}
	outDir := strings.TrimSpace(req.OutputDir)
	if outDir == "" {
		outDir = p.cfg.Paths.OutputDir
	}

	subtitlePath := req.SubtitlePath
	if strings.TrimSpace(subtitlePath) == "" {
		aligned, err := p.aligner.Align(services.WithStage(ctx, "align"), alignment.Request{
			AudioPath:      req.AudioPath,
			TranscriptPath: req.TranscriptPath,
			OutputDir:      outDir,
		})
		if err != nil {
			return result, err
		}
		result.Alignment = &aligned
		subtitlePath = aligned.SubtitlePath
	}

	vars := req.Variations
	if len(vars) == 0 {
		clipsDir := strings.TrimSpace(req.ClipsDir)
		if clipsDir == "" {
			clipsDir = p.cfg.Paths.ClipsDir
		}
		if clipsDir == "" {
			return result, services.Wrap(services.ErrValidation, "run", "scenes", "no variations and no clips directory", nil)
		}
		found, err := Variations(clipsDir, p.logger)
		if err != nil {
			return result, err
		}
		vars = found
	}
	if len(vars) == 0 {
		return result, services.Wrap(services.ErrValidation, "run", "scenes", "no replacement scenes found", nil)
	}

	refined, err := p.Refine(ctx, RefineRequest{
		VideoPath:    req.VideoPath,
		SubtitlePath: subtitlePath,
		Replacements: ReplacedIndices(vars),
	})
	if err != nil {
		return result, err
	}
	result.Refine = refined

	spliced, err := p.splice(ctx, SpliceRequest{
		VideoPath:    req.VideoPath,
		SubtitlePath: refined.OutputPath,
		Variations:   vars,
		OutputDir:    outDir,
		Project:      req.Project,
	})
	result.Splice = spliced
	return result, err
}

// recordRun tags ctx with a run id and, when a registry is attached, keeps
// the run's status there. Registry failures are logged, never returned.
func (p *Pipeline) recordRun(ctx context.Context, spec registry.RunSpec, fn func(context.Context) ([]string, error)) error {
	started := time.Now()
	var run *registry.Run
	if p.store != nil {
		var err error
		run, err = p.store.StartRun(ctx, spec)
		if err != nil {
			logging.WarnEvent(p.logger, "run not recorded", "registry_unavailable", logging.Error(err))
		}
	}

	id := uuid.NewString()
	if run != nil {
		id = run.ID
	}
	ctx = services.WithRunID(ctx, id)
	outputs, runErr := fn(ctx)

	// The run may have been cancelled; bookkeeping still has to land.
	done := context.WithoutCancel(ctx)
	if run != nil {
		if err := p.store.FinishRun(done, run.ID, outputs, runErr); err != nil {
			logging.WarnEvent(logging.WithContext(ctx, p.logger), "run status not saved", "registry_unavailable", logging.Error(err))
		}
	}
	p.notify(done, spec, outputs, runErr, time.Since(started))
	return runErr
}

func (p *Pipeline) notify(ctx context.Context, spec registry.RunSpec, outputs []string, runErr error, elapsed time.Duration) {
	if p.notifier == nil || errors.Is(runErr, context.Canceled) {
		return
	}
	event := notifications.EventRunCompleted
	payload := notifications.Payload{
		"project":  spec.Project,
		"video":    spec.VideoPath,
		"outputs":  len(outputs),
		"duration": elapsed,
	}
	if runErr != nil {
		event = notifications.EventRunFailed
		payload["error"] = runErr.Error()
	}
	if err := p.notifier.Publish(ctx, event, payload); err != nil {
		logging.WarnEvent(logging.WithContext(ctx, p.logger), "notification not sent", "notification_failed",
			logging.String("event", string(event)),
			logging.Error(err),
		)
	}
}
