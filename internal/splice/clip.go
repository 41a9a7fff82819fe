package splice

import (
	"context"
	"image"

	"cuesplice/internal/media/ffprobe"
	"cuesplice/internal/services"
)

// Media is a probed video file.
type Media struct {
	Path      string  `validate:"required"`
	Width     int     `validate:"gt=0"`
	Height    int     `validate:"gt=0"`
	FrameRate float64 `validate:"gt=0"`
	Duration  float64 `validate:"gt=0"`
	HasAudio  bool
}

// Aspect returns width/height.
func (m Media) Aspect() float64 {
	if m.Height == 0 {
		return 0
	}
	return float64(m.Width) / float64(m.Height)
}

// Probe reads m's geometry and duration with ffprobe.
func Probe(ctx context.Context, ffprobeBinary, path string) (Media, error) {
	result, err := ffprobe.Inspect(ctx, ffprobeBinary, path)
	if err != nil {
		return Media{}, services.Wrap(services.ErrExternalTool, "splice", "ffprobe", path, err)
	}
	info, err := result.Video()
	if err != nil {
		return Media{}, services.Wrap(services.ErrValidation, "splice", "ffprobe", path, err)
	}
	return Media{
		Path:      path,
		Width:     info.Width,
		Height:    info.Height,
		FrameRate: info.FrameRate,
		Duration:  info.Duration,
		HasAudio:  result.HasAudio(),
	}, nil
}

// Clip describes a piece of a source video as it will appear in the output.
// Window seconds are read from Path starting at Offset. When Loop is set the
// window repeats until Duration is reached.
type Clip struct {
	Path           string
	SourceDuration float64
	Offset         float64
	Window         float64
	Duration       float64
	Loop           bool
	FrameRate      float64
	Width          int
	Height         int
	// Crop is applied to the source frame before scaling. Empty means none.
	Crop image.Rectangle
}

// FromMedia returns a clip covering the whole of m.
func FromMedia(m Media) Clip {
	return Clip{
		Path:           m.Path,
		SourceDuration: m.Duration,
		Window:         m.Duration,
		Duration:       m.Duration,
		FrameRate:      m.FrameRate,
		Width:          m.Width,
		Height:         m.Height,
	}
}

// Subclip narrows c to [start, end) relative to its current offset. The
// window is clamped to the source so looping never reads past the end; a
// window that would be empty keeps one frame.
func (c Clip) Subclip(start, end float64) Clip {
	if start < 0 {
		start = 0
	}
	out := c
	out.Offset = c.Offset + start
	out.Window = end - start
	out.Duration = end - start
	out.Loop = false
	if c.SourceDuration > 0 && out.Offset+out.Window > c.SourceDuration {
		out.Window = c.SourceDuration - out.Offset
	}
	if out.Window <= 0 {
		frame := c.frameTime()
		if c.SourceDuration > 0 && out.Offset > c.SourceDuration-frame {
			out.Offset = max(0, c.SourceDuration-frame)
		}
		out.Window = frame
	}
	if out.Duration < 0 {
		out.Duration = 0
	}
	return out
}

func (c Clip) frameTime() float64 {
	if c.FrameRate > 0 {
		return 1 / c.FrameRate
	}
	return 1.0 / 30
}

// WholeSource reports whether the window spans the entire source file.
func (c Clip) WholeSource() bool {
	const eps = 1e-3
	return c.Offset <= eps && c.SourceDuration > 0 && c.Window >= c.SourceDuration-eps
}

// AdjustDuration returns c lasting exactly target seconds. A shorter clip
// loops from its start with the final repetition cut short; a longer one is
// trimmed to [0, target).
func AdjustDuration(c Clip, target float64) Clip {
	switch {
	case c.Duration < target:
		c.Loop = true
		c.Duration = target
	case c.Duration > target:
		c.Duration = target
		if c.Window > target {
			c.Window = target
		}
	}
	return c
}

// AlignProperties forces c's frame rate and frame size to match ref.
func AlignProperties(c Clip, ref Clip) Clip {
	c.FrameRate = ref.FrameRate
	c.Width = ref.Width
	c.Height = ref.Height
	return c
}

// FillLength caps a subtitle interval to the replacement's own duration so
// replacement footage is never looped just to cover the caption.
func FillLength(interval, sourceDuration float64) float64 {
	if interval >= sourceDuration {
		return sourceDuration
	}
	return interval
}

// CropToAspect returns the centered crop of a width x height frame with the
// given width/height ratio. A non-positive aspect returns the full frame.
func CropToAspect(width, height int, aspect float64) image.Rectangle {
	full := image.Rect(0, 0, width, height)
	if aspect <= 0 || width <= 0 || height <= 0 {
		return full
	}
	current := float64(width) / float64(height)
	var w, h, x, y int
	if current > aspect {
		w = int(aspect * float64(height))
		h = height
		x = (width - w) / 2
	} else {
		w = width
		h = int(float64(width) / aspect)
		y = (height - h) / 2
	}
	if w <= 0 || h <= 0 {
		return full
	}
	return image.Rect(x, y, x+w, y+h)
}
