package frames

import (
	"context"
	"errors"
	"image"
	"io"
)

// Metadata describes the decoded video stream.
type Metadata struct {
	FrameRate  float64
	FrameCount int
	Width      int
	Height     int
}

// Source produces frames for a video.
type Source interface {
	Metadata() Metadata
	// Open starts decoding. roi is the region the scanner will read; sources
	// may return whole frames or just that region placed at roi coordinates.
	Open(ctx context.Context, roi image.Rectangle) (Reader, error)
}

// Reader yields decoded frames in order. Next returns io.EOF after the last
// frame. The returned image is only valid until the following call.
type Reader interface {
	Next() (image.Image, error)
	Close() error
}

// ImageSource serves frames from memory.
type ImageSource struct {
	Meta   Metadata
	Frames []image.Image
	// OpenErr, when set, is returned from Open.
	OpenErr error
	// FailAt makes Next fail with FailErr once that many frames were served.
	// Zero disables the failure.
	FailAt  int
	FailErr error
}

// Metadata implements Source.
func (s *ImageSource) Metadata() Metadata { return s.Meta }

// Open implements Source.
func (s *ImageSource) Open(ctx context.Context, _ image.Rectangle) (Reader, error) {
	if s.OpenErr != nil {
		return nil, s.OpenErr
	}
	return &imageReader{ctx: ctx, src: s}, nil
}

type imageReader struct {
	ctx  context.Context
	src  *ImageSource
	next int
}

var errInjected = errors.New("frame read failed")

func (r *imageReader) Next() (image.Image, error) {
	if err := r.ctx.Err(); err != nil {
		return nil, err
	}
	if r.src.FailAt > 0 && r.next == r.src.FailAt {
		if r.src.FailErr != nil {
			return nil, r.src.FailErr
		}
		return nil, errInjected
	}
	if r.next >= len(r.src.Frames) {
		return nil, io.EOF
	}
	img := r.src.Frames[r.next]
	r.next++
	return img, nil
}

func (r *imageReader) Close() error { return nil }
