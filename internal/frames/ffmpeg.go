package frames

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"io"
	"os/exec"
	"strings"
	"sync"
	"time"

	"cuesplice/internal/media/ffprobe"
	"cuesplice/internal/services"
)

// FFmpegSource decodes a video through an ffmpeg subprocess. Only the caption
// band is decoded: ffmpeg crops and converts to 8-bit gray, and frames come
// back as *image.Gray placed at the band's coordinates.
type FFmpegSource struct {
	Binary string
	Path   string
	Meta   Metadata
}

// ProbeFFmpegSource inspects path with ffprobe and returns a source for it.
func ProbeFFmpegSource(ctx context.Context, ffmpegBinary, ffprobeBinary, path string) (*FFmpegSource, error) {
	result, err := ffprobe.Inspect(ctx, ffprobeBinary, path)
	if err != nil {
		return nil, services.Wrap(services.ErrExternalTool, "scan", "ffprobe", path, err)
	}
	info, err := result.Video()
	if err != nil {
		return nil, services.Wrap(services.ErrValidation, "scan", "ffprobe", path, err)
	}
	return &FFmpegSource{
		Binary: ffmpegBinary,
		Path:   path,
		Meta: Metadata{
			FrameRate:  info.FrameRate,
			FrameCount: info.FrameCount,
			Width:      info.Width,
			Height:     info.Height,
		},
	}, nil
}

// Metadata implements Source.
func (s *FFmpegSource) Metadata() Metadata { return s.Meta }

// Args returns the ffmpeg arguments used to stream roi as raw gray frames.
func (s *FFmpegSource) Args(roi image.Rectangle) []string {
	return []string{
		"-hide_banner", "-nostdin", "-v", "error",
		"-i", s.Path,
		"-map", "0:v:0",
		"-an", "-sn",
		"-vf", fmt.Sprintf("crop=%d:%d:%d:%d,format=gray", roi.Dx(), roi.Dy(), roi.Min.X, roi.Min.Y),
		"-fps_mode", "passthrough",
		"-f", "rawvideo", "-pix_fmt", "gray",
		"pipe:1",
	}
}

// Open implements Source.
func (s *FFmpegSource) Open(ctx context.Context, roi image.Rectangle) (Reader, error) {
	binary := strings.TrimSpace(s.Binary)
	if binary == "" {
		binary = "ffmpeg"
	}
	if roi.Empty() {
		return nil, ErrEmptyRegion
	}

	cmdCtx, cancel := context.WithCancel(ctx)
	cmd := exec.CommandContext(cmdCtx, binary, s.Args(roi)...)
	cmd.WaitDelay = 5 * time.Second
	stderr := &tailBuffer{limit: 8 * 1024}
	cmd.Stderr = stderr
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		cancel()
		return nil, fmt.Errorf("ffmpeg stdout: %w", err)
	}
	if err := cmd.Start(); err != nil {
		cancel()
		return nil, &services.ToolError{Tool: binary, Err: err}
	}
	return &ffmpegReader{
		cmd:    cmd,
		cancel: cancel,
		stdout: stdout,
		stderr: stderr,
		binary: binary,
		frame:  image.NewGray(roi),
	}, nil
}

type ffmpegReader struct {
	cmd    *exec.Cmd
	cancel context.CancelFunc
	stdout io.ReadCloser
	stderr *tailBuffer
	binary string
	frame  *image.Gray
	done   bool
	once   sync.Once
	err    error
}

func (r *ffmpegReader) Next() (image.Image, error) {
	if r.done {
		return nil, io.EOF
	}
	_, err := io.ReadFull(r.stdout, r.frame.Pix)
	switch {
	case err == nil:
		return r.frame, nil
	case errors.Is(err, io.EOF):
		r.done = true
		if werr := r.wait(); werr != nil {
			return nil, werr
		}
		return nil, io.EOF
	case errors.Is(err, io.ErrUnexpectedEOF):
		r.done = true
		if werr := r.wait(); werr != nil {
			return nil, werr
		}
		return nil, fmt.Errorf("ffmpeg: truncated frame")
	default:
		return nil, err
	}
}

func (r *ffmpegReader) Close() error {
	r.cancel()
	werr := r.wait()
	if r.done {
		return werr
	}
	// Stopped early: the kill above is expected.
	return nil
}

func (r *ffmpegReader) wait() error {
	r.once.Do(func() {
		if err := r.cmd.Wait(); err != nil {
			r.err = &services.ToolError{Tool: r.binary, Output: strings.TrimSpace(r.stderr.String()), Err: err}
		}
		r.cancel()
	})
	return r.err
}

// tailBuffer keeps the last limit bytes written to it.
type tailBuffer struct {
	mu    sync.Mutex
	limit int
	buf   bytes.Buffer
}

func (t *tailBuffer) Write(p []byte) (int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	n := len(p)
	t.buf.Write(p)
	if extra := t.buf.Len() - t.limit; extra > 0 {
		t.buf.Next(extra)
	}
	return n, nil
}

func (t *tailBuffer) String() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.buf.String()
}
