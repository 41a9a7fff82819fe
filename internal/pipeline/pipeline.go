package pipeline

import (
	"context"
	"log/slog"

	"cuesplice/internal/alignment"
	"cuesplice/internal/config"
	"cuesplice/internal/frames"
	"cuesplice/internal/logging"
	"cuesplice/internal/notifications"
	"cuesplice/internal/registry"
	"cuesplice/internal/splice"
)

// Aligner produces timed subtitles from audio and a plain transcript.
type Aligner interface {
	Align(ctx context.Context, req alignment.Request) (alignment.Result, error)
}

// SourceOpener returns a frame source for a video path.
type SourceOpener func(ctx context.Context, path string) (frames.Source, error)

// Prober reads media geometry and duration.
type Prober func(ctx context.Context, path string) (splice.Media, error)

// Pipeline runs the cuesplice stages against one configuration.
type Pipeline struct {
	cfg      *config.Config
	logger   *slog.Logger
	store    *registry.Store
	aligner  Aligner
	open     SourceOpener
	probe    Prober
	renderer splice.Renderer
	notifier notifications.Service
}

// Option customizes a Pipeline.
type Option func(*Pipeline)

// WithRegistry records runs in store.
func WithRegistry(store *registry.Store) Option {
	return func(p *Pipeline) { p.store = store }
}

// WithAligner replaces the forced-alignment subprocess.
func WithAligner(a Aligner) Option {
	return func(p *Pipeline) { p.aligner = a }
}

// WithSourceOpener replaces the ffmpeg frame source.
func WithSourceOpener(open SourceOpener) Option {
	return func(p *Pipeline) { p.open = open }
}

// WithProber replaces ffprobe.
func WithProber(probe Prober) Option {
	return func(p *Pipeline) { p.probe = probe }
}

// WithRenderer replaces the ffmpeg renderer.
func WithRenderer(r splice.Renderer) Option {
	return func(p *Pipeline) { p.renderer = r }
}

// WithNotifier replaces the configured ntfy notifier.
func WithNotifier(n notifications.Service) Option {
	return func(p *Pipeline) { p.notifier = n }
}

// New builds a pipeline. Collaborators not supplied through opts default to
// the ffmpeg, ffprobe and python tools named in cfg.
func New(cfg *config.Config, logger *slog.Logger, opts ...Option) *Pipeline {
	p := &Pipeline{
		cfg:    cfg,
		logger: logging.NewComponentLogger(logger, "pipeline"),
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.notifier == nil {
		p.notifier = notifications.NewService(cfg)
	}
	if p.aligner == nil {
		p.aligner = alignment.NewService(alignment.ConfigFrom(cfg), logger)
	}
	if p.open == nil {
		p.open = func(ctx context.Context, path string) (frames.Source, error) {
			return frames.Open(ctx, cfg.Detection.Decoder, cfg.FFmpegBinary(), cfg.FFprobeBinary(), path)
		}
	}
	if p.probe == nil {
		p.probe = func(ctx context.Context, path string) (splice.Media, error) {
			return splice.Probe(ctx, cfg.FFprobeBinary(), path)
		}
	}
	if p.renderer == nil {
		p.renderer = splice.NewFFmpegRenderer(cfg)
	}
	return p
}

// Config returns the configuration the pipeline was built with.
func (p *Pipeline) Config() *config.Config { return p.cfg }
