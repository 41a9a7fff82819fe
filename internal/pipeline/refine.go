package pipeline

import (
	"context"
	"strings"

	"cuesplice/internal/changepoint"
	"cuesplice/internal/frames"
	"cuesplice/internal/logging"
	"cuesplice/internal/reconcile"
	"cuesplice/internal/services"
	"cuesplice/internal/subtitles"
)

// RefineRequest names the inputs of a refine pass.
type RefineRequest struct {
	VideoPath    string `validate:"required"`
	SubtitlePath string `validate:"required"`
	// Replacements are the 0-based subtitle indices that will be swapped
	// for scenes; their starts are nudged earlier.
	Replacements []int
	// OutputPath defaults to <subtitle stem>_refined.srt beside the input.
	OutputPath string
}

// RefineResult describes a completed refine pass.
type RefineResult struct {
	OutputPath string
	Entries    []subtitles.Entry
	Candidates []changepoint.Candidate
	Report     reconcile.Report
}

// Detection is the outcome of a caption scan.
type Detection struct {
	// Samples counts every frame-to-frame measurement.
	Samples int
	// Spikes holds samples over the confidence threshold, accepted or not.
	Spikes []frames.Sample
	// Candidates are the spikes that survived the glitch filter.
	Candidates []changepoint.Candidate
}

// Detect scans videoPath's caption band and returns the change points.
func (p *Pipeline) Detect(ctx context.Context, videoPath string) ([]changepoint.Candidate, error) {
	det, err := p.Scan(ctx, videoPath)
	return det.Candidates, err
}

// Scan measures videoPath's caption band and filters the measurements into
// change points.
func (p *Pipeline) Scan(ctx context.Context, videoPath string) (Detection, error) {
	ctx = services.WithStage(ctx, "scan")
	logger := logging.WithContext(ctx, p.logger)
	tuning := p.cfg.Tuning()

	src, err := p.open(ctx, videoPath)
	if err != nil {
		return Detection{}, err
	}
	scanner := frames.NewScanner(src, p.logger)
	scanner.Region = frames.Region{Bleed: tuning.ROIBleed, LineHeight: tuning.ROILineHeight}
	scanner.Cutoff = tuning.BinarizeCutoff
	scanner.MaxFrames = p.cfg.Detection.MaxFrames

	filter := changepoint.NewFilter(tuning.ConfidenceThreshold, tuning.GlitchInterval)
	var det Detection
	for sample, err := range scanner.Samples(ctx) {
		if err != nil {
			return Detection{}, err
		}
		det.Samples++
		if sample.Confidence > tuning.ConfidenceThreshold {
			det.Spikes = append(det.Spikes, sample)
		}
		if filter.Accept(sample) {
			det.Candidates = append(det.Candidates, changepoint.Candidate{
				FrameIndex: sample.FrameIndex,
				Timestamp:  sample.Timestamp,
				Confidence: sample.Confidence,
			})
		}
	}
	logger.Info("caption changes detected",
		logging.String("video", videoPath),
		logging.Int("samples", det.Samples),
		logging.Int("spikes", len(det.Spikes)),
		logging.Int("candidates", len(det.Candidates)),
	)
	return det, nil
}

// Refine detects caption changes in the video and snaps the subtitle
// boundaries onto them, writing the refined subtitles to disk.
func (p *Pipeline) Refine(ctx context.Context, req RefineRequest) (RefineResult, error) {
	if err := services.ValidateStruct("refine", req); err != nil {
		return RefineResult{}, err
	}
	entries, err := loadSubtitles(req.SubtitlePath)
	if err != nil {
		return RefineResult{}, err
	}
	candidates, err := p.Detect(ctx, req.VideoPath)
	if err != nil {
		return RefineResult{}, err
	}

	ctx = services.WithStage(ctx, "refine")
	reconciler := reconcile.New(reconcile.ParamsFromTuning(p.cfg.Tuning()), logging.WithContext(ctx, p.logger))
	refined, report := reconciler.Reconcile(entries, changepoint.NewCursor(candidates), reconcile.NewReplacementSet(req.Replacements...))

	out := strings.TrimSpace(req.OutputPath)
	if out == "" {
		out = subtitles.DerivedPath(req.SubtitlePath, "_refined", ".srt")
	}
	if err := subtitles.Save(out, refined); err != nil {
		return RefineResult{}, err
	}
	logging.WithContext(ctx, p.logger).Info("refined subtitles written",
		logging.String("path", out),
		logging.Int("subtitles", len(refined)),
	)
	return RefineResult{OutputPath: out, Entries: refined, Candidates: candidates, Report: report}, nil
}

func loadSubtitles(path string) ([]subtitles.Entry, error) {
	entries, err := subtitles.Load(path)
	if err != nil {
		if services.Classify(err) != services.ClassFailure {
			return nil, err
		}
		// Parse errors carry no marker; a malformed file is bad input.
		return nil, services.Wrap(services.ErrValidation, "subtitles", "load", "", err)
	}
	if len(entries) == 0 {
		return nil, services.Wrap(services.ErrValidation, "subtitles", "load", path+" has no cues", nil)
	}
	return entries, nil
}
