package pipeline

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/gofrs/flock"
	"golang.org/x/sync/errgroup"

	"cuesplice/internal/logging"
	"cuesplice/internal/registry"
	"cuesplice/internal/services"
	"cuesplice/internal/splice"
	"cuesplice/internal/staging"
)

// ErrBusy is returned when another process holds the splice lock.
var ErrBusy = errors.New("another splice is running")

// SpliceRequest names the inputs of a splice.
type SpliceRequest struct {
	VideoPath    string      `validate:"required"`
	SubtitlePath string      `validate:"required"`
	Variations   []Variation `validate:"min=1,dive"`
	// OutputDir defaults to the configured output directory.
	OutputDir string
	// Project labels the run in the registry.
	Project string
}

// SpliceResult lists the rendered variations in order.
type SpliceResult struct {
	Outputs   []string
	Timelines []splice.Timeline
}

// OutputName returns the file name of variation n.
func OutputName(n int) string {
	return fmt.Sprintf("output_variation_%d.mp4", n)
}

// Splice renders every requested variation and records the run.
func (p *Pipeline) Splice(ctx context.Context, req SpliceRequest) (SpliceResult, error) {
	var result SpliceResult
	spec := registry.RunSpec{Project: req.Project, VideoPath: req.VideoPath, SubtitlePath: req.SubtitlePath}
	err := p.recordRun(ctx, spec, func(ctx context.Context) ([]string, error) {
		var err error
		result, err = p.splice(ctx, req)
		return result.Outputs, err
	})
	return result, err
}

func (p *Pipeline) splice(ctx context.Context, req SpliceRequest) (SpliceResult, error) {
	ctx = services.WithStage(ctx, "splice")
	logger := logging.WithContext(ctx, p.logger)
	if err := services.ValidateStruct("splice", req); err != nil {
		return SpliceResult{}, err
	}
	aspect, err := p.cfg.Splice.Ratio()
	if err != nil {
		return SpliceResult{}, services.Wrap(services.ErrConfiguration, "splice", "aspect ratio", "", err)
	}

	unlock, err := p.lock()
	if err != nil {
		return SpliceResult{}, err
	}
	defer unlock()

	entries, err := loadSubtitles(req.SubtitlePath)
	if err != nil {
		return SpliceResult{}, err
	}
	host, scenes, err := p.probeAll(ctx, req)
	if err != nil {
		return SpliceResult{}, err
	}

	outDir := strings.TrimSpace(req.OutputDir)
	if outDir == "" {
		outDir = p.cfg.Paths.OutputDir
	}
	// Holding the lock means no other render is live, so any work directory
	// left in outDir belongs to a run that died.
	staging.CleanStale(ctx, outDir, 0, p.logger)

	opts := splice.PlanOptions{Aspect: aspect, Captions: p.cfg.Splice.Captions}

	var result SpliceResult
	for _, v := range req.Variations {
		vctx := services.WithVariation(ctx, v.Number)
		reps := make([]splice.Replacement, 0, len(v.Scenes))
		for _, idx := range v.Indices() {
			reps = append(reps, splice.Replacement{Index: idx, Media: scenes[v.Scenes[idx]]})
		}
		tl, err := splice.Plan(host, entries, reps, opts)
		if err != nil {
			return result, err
		}
		if len(tl.Skipped) > 0 {
			logger.Debug("replacements outside the subtitle range ignored",
				logging.Int("variation", v.Number),
				logging.Any("indices", tl.Skipped),
			)
		}
		dest := filepath.Join(outDir, OutputName(v.Number))
		if err := splice.Render(vctx, p.renderer, tl, dest, p.logger); err != nil {
			return result, err
		}
		result.Outputs = append(result.Outputs, dest)
		result.Timelines = append(result.Timelines, tl)
	}
	return result, nil
}

// lock takes the state-dir lock so two splices never write the same outputs.
func (p *Pipeline) lock() (func(), error) {
	if err := p.cfg.EnsureDirectories(); err != nil {
		return nil, services.Wrap(services.ErrIO, "splice", "lock", "ensure directories", err)
	}
	path := p.cfg.LockPath()
	fl := flock.New(path)
	ok, err := fl.TryLock()
	if err != nil {
		return nil, services.Wrap(services.ErrIO, "splice", "lock", path, err)
	}
	if !ok {
		return nil, services.Wrap(services.ErrTransient, "splice", "lock", path, ErrBusy)
	}
	return func() {
		if err := fl.Unlock(); err != nil {
			p.logger.Warn("failed to release splice lock", logging.String("path", path), logging.Error(err))
		}
	}, nil
}

// probeAll probes the host and every distinct scene in parallel.
func (p *Pipeline) probeAll(ctx context.Context, req SpliceRequest) (splice.Media, map[string]splice.Media, error) {
	paths := []string{req.VideoPath}
	seen := map[string]struct{}{req.VideoPath: {}}
	for _, v := range req.Variations {
		for _, idx := range v.Indices() {
			scene := v.Scenes[idx]
			if _, ok := seen[scene]; ok {
				continue
			}
			seen[scene] = struct{}{}
			paths = append(paths, scene)
		}
	}

	results := make([]splice.Media, len(paths))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(p.cfg.Splice.ProbeWorkers, 1))
	for i, path := range paths {
		g.Go(func() error {
			media, err := p.probe(gctx, path)
			if err != nil {
				return err
			}
			results[i] = media
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return splice.Media{}, nil, err
	}

	scenes := make(map[string]splice.Media, len(paths))
	for i, path := range paths {
		scenes[path] = results[i]
	}
	logging.WithContext(ctx, p.logger).Debug("media probed", logging.Int("files", len(paths)))
	return results[0], scenes, nil
}
