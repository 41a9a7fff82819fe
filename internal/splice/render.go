package splice

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"cuesplice/internal/config"
	"cuesplice/internal/logging"
	"cuesplice/internal/services"
	"cuesplice/internal/staging"
)

// Renderer turns planned segments into media files.
type Renderer interface {
	// RenderSegment encodes one segment, without audio, to dest.
	RenderSegment(ctx context.Context, seg Segment, dest string) error
	// Concat joins rendered parts in order and lays the host's audio under
	// them, cut to the timeline duration.
	Concat(ctx context.Context, parts []string, tl Timeline, dest string) error
}

// Render writes tl to dest through r. Intermediate parts go to a temporary
// directory beside dest that is removed afterwards.
func Render(ctx context.Context, r Renderer, tl Timeline, dest string, logger *slog.Logger) error {
	logger = logging.WithContext(ctx, logging.NewComponentLogger(logger, "splice"))
	if len(tl.Segments) == 0 {
		return services.Wrap(services.ErrValidation, "splice", "render", "timeline has no segments", nil)
	}
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return services.Wrap(services.ErrIO, "splice", "render", "create output dir", err)
	}
	workDir, err := os.MkdirTemp(filepath.Dir(dest), staging.PartsPrefix)
	if err != nil {
		return services.Wrap(services.ErrIO, "splice", "render", "create work dir", err)
	}
	defer func() {
		if err := os.RemoveAll(workDir); err != nil {
			logger.Warn("failed to remove work dir", logging.String("path", workDir), logging.Error(err))
		}
	}()

	parts := make([]string, 0, len(tl.Segments))
	for i, seg := range tl.Segments {
		if err := ctx.Err(); err != nil {
			return err
		}
		part := filepath.Join(workDir, fmt.Sprintf("segment_%04d.mp4", i))
		segCtx := services.WithSegment(ctx, seg.Index)
		if err := r.RenderSegment(segCtx, seg, part); err != nil {
			return services.Wrap(services.ErrExternalTool, "splice", "render segment", strconv.Itoa(seg.Index), err)
		}
		logger.Debug("segment rendered",
			logging.Int(logging.FieldSegment, seg.Index),
			logging.Bool("replaced", seg.Replaced),
			logging.Group("clip",
				logging.String("path", seg.Clip.Path),
				logging.Float64("offset", seg.Clip.Offset),
				logging.Float64("duration", seg.Clip.Duration),
				logging.Bool("looped", seg.Clip.Loop),
			),
		)
		parts = append(parts, part)
	}
	if err := r.Concat(ctx, parts, tl, dest); err != nil {
		return services.Wrap(services.ErrExternalTool, "splice", "concat", dest, err)
	}
	logger.Info("output rendered",
		logging.String("path", dest),
		logging.Int("segments", len(parts)),
		logging.Float64("duration_seconds", tl.Duration),
	)
	return nil
}

// FFmpegRenderer renders with the ffmpeg CLI.
type FFmpegRenderer struct {
	Binary     string
	VideoCodec string
	AudioCodec string
	Style      Style

	run services.CommandRunner
}

// NewFFmpegRenderer returns a renderer using cfg's tool and codec settings.
func NewFFmpegRenderer(cfg *config.Config) *FFmpegRenderer {
	r := &FFmpegRenderer{
		Binary:     "ffmpeg",
		VideoCodec: "libx264",
		AudioCodec: "aac",
	}
	if cfg != nil {
		r.Binary = cfg.FFmpegBinary()
		r.VideoCodec = cfg.Splice.VideoCodec
		r.AudioCodec = cfg.Splice.AudioCodec
		r.Style = StyleFromConfig(cfg.Splice)
	}
	return r
}

// WithCommandRunner replaces the subprocess runner (for testing).
func (r *FFmpegRenderer) WithCommandRunner(run services.CommandRunner) {
	r.run = run
}

func (r *FFmpegRenderer) exec(ctx context.Context, args ...string) error {
	if r.run != nil {
		return r.run(ctx, r.Binary, args...)
	}
	return services.RunCommand(ctx, r.Binary, args...)
}

// maxLoopFrames is the largest frame buffer ffmpeg's loop filter accepts.
const maxLoopFrames = 32767

// RenderSegment implements Renderer. Captions are written next to dest as a
// text file for drawtext.
func (r *FFmpegRenderer) RenderSegment(ctx context.Context, seg Segment, dest string) error {
	textFile := ""
	if seg.Caption != nil && strings.TrimSpace(seg.Caption.Text) != "" {
		textFile = strings.TrimSuffix(dest, filepath.Ext(dest)) + ".txt"
		lines := WrapCaption(seg.Caption.Text, seg.Clip.Width, r.Style)
		if err := os.WriteFile(textFile, []byte(strings.Join(lines, "\n")), 0o644); err != nil {
			return fmt.Errorf("write caption: %w", err)
		}
	}
	return r.exec(ctx, r.SegmentArgs(seg, dest, textFile)...)
}

// SegmentArgs returns the ffmpeg arguments for one segment. textFile may be
// empty when the segment has no caption.
func (r *FFmpegRenderer) SegmentArgs(seg Segment, dest, textFile string) []string {
	clip := seg.Clip
	args := []string{"-hide_banner", "-nostdin", "-v", "error", "-y"}

	wholeLoop := clip.Loop && clip.WholeSource()
	if wholeLoop {
		args = append(args, "-stream_loop", "-1")
	} else {
		if clip.Offset > 0 {
			args = append(args, "-ss", formatSeconds(clip.Offset))
		}
		args = append(args, "-t", formatSeconds(clip.Window))
	}
	args = append(args, "-i", clip.Path, "-map", "0:v:0", "-an", "-sn")

	filters := make([]string, 0, 6)
	if !clip.Crop.Empty() {
		filters = append(filters, fmt.Sprintf("crop=%d:%d:%d:%d", clip.Crop.Dx(), clip.Crop.Dy(), clip.Crop.Min.X, clip.Crop.Min.Y))
	}
	if clip.FrameRate > 0 {
		filters = append(filters, "fps="+strconv.FormatFloat(clip.FrameRate, 'f', -1, 64))
	}
	if clip.Width > 0 && clip.Height > 0 {
		filters = append(filters, fmt.Sprintf("scale=%d:%d", clip.Width, clip.Height), "setsar=1")
	}
	if clip.Loop && !wholeLoop {
		frames := int(math.Ceil(clip.Window * clip.FrameRate))
		frames = min(max(frames, 1), maxLoopFrames)
		filters = append(filters, fmt.Sprintf("loop=loop=-1:size=%d:start=0", frames))
	}
	if textFile != "" && seg.Caption != nil {
		filters = append(filters, drawTextFilter(r.Style, textFile, seg.Caption.Duration))
	}
	filters = append(filters, "format=yuv420p")

	args = append(args,
		"-vf", strings.Join(filters, ","),
		"-t", formatSeconds(clip.Duration),
		"-c:v", r.videoCodec(),
		dest,
	)
	return args
}

// Concat implements Renderer.
func (r *FFmpegRenderer) Concat(ctx context.Context, parts []string, tl Timeline, dest string) error {
	listFile := strings.TrimSuffix(dest, filepath.Ext(dest)) + ".concat.txt"
	if err := os.WriteFile(listFile, []byte(ConcatList(parts)), 0o644); err != nil {
		return fmt.Errorf("write concat list: %w", err)
	}
	defer os.Remove(listFile)
	return r.exec(ctx, r.ConcatArgs(listFile, tl, dest)...)
}

// ConcatArgs returns the ffmpeg arguments that join the parts in listFile
// and add the host audio.
func (r *FFmpegRenderer) ConcatArgs(listFile string, tl Timeline, dest string) []string {
	args := []string{
		"-hide_banner", "-nostdin", "-v", "error", "-y",
		"-f", "concat", "-safe", "0", "-i", listFile,
	}
	withAudio := tl.Host.Path != "" && tl.Host.HasAudio
	if withAudio {
		args = append(args, "-i", tl.Host.Path, "-map", "0:v:0", "-map", "1:a:0")
	} else {
		args = append(args, "-map", "0:v:0")
	}
	args = append(args, "-c:v", "copy")
	if withAudio {
		args = append(args, "-c:a", r.audioCodec())
	}
	args = append(args,
		"-t", formatSeconds(tl.Duration),
		"-movflags", "+faststart",
		dest,
	)
	return args
}

// ConcatList formats paths for ffmpeg's concat demuxer.
func ConcatList(paths []string) string {
	var b strings.Builder
	for _, p := range paths {
		b.WriteString("file ")
		b.WriteString(quoteFilterValue(p))
		b.WriteByte('\n')
	}
	return b.String()
}

func (r *FFmpegRenderer) videoCodec() string {
	if c := strings.TrimSpace(r.VideoCodec); c != "" {
		return c
	}
	return "libx264"
}

func (r *FFmpegRenderer) audioCodec() string {
	if c := strings.TrimSpace(r.AudioCodec); c != "" {
		return c
	}
	return "aac"
}
