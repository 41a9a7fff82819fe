//go:build gocv

package frames

import (
	"context"
	"fmt"
	"image"
	"io"

	"gocv.io/x/gocv"

	"cuesplice/internal/services"
)

func init() {
	openGoCV = func(path string) (Source, error) {
		src, err := OpenGoCVSource(path)
		if err != nil {
			return nil, services.Wrap(services.ErrIO, "scan", "open", path, err)
		}
		return src, nil
	}
}

// GoCVSource decodes frames with OpenCV. Build with -tags gocv.
type GoCVSource struct {
	Path string
	meta Metadata
}

// OpenGoCVSource reads stream properties from path.
func OpenGoCVSource(path string) (*GoCVSource, error) {
	capture, err := gocv.VideoCaptureFile(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer capture.Close()
	if !capture.IsOpened() {
		return nil, fmt.Errorf("open %s: capture not opened", path)
	}
	return &GoCVSource{
		Path: path,
		meta: Metadata{
			FrameRate:  capture.Get(gocv.VideoCaptureFPS),
			FrameCount: int(capture.Get(gocv.VideoCaptureFrameCount)),
			Width:      int(capture.Get(gocv.VideoCaptureFrameWidth)),
			Height:     int(capture.Get(gocv.VideoCaptureFrameHeight)),
		},
	}, nil
}

// Metadata implements Source.
func (s *GoCVSource) Metadata() Metadata { return s.meta }

// Open implements Source.
func (s *GoCVSource) Open(ctx context.Context, roi image.Rectangle) (Reader, error) {
	capture, err := gocv.VideoCaptureFile(s.Path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", s.Path, err)
	}
	return &gocvReader{
		ctx:     ctx,
		capture: capture,
		roi:     roi,
		frame:   gocv.NewMat(),
		gray:    gocv.NewMat(),
	}, nil
}

type gocvReader struct {
	ctx     context.Context
	capture *gocv.VideoCapture
	roi     image.Rectangle
	frame   gocv.Mat
	gray    gocv.Mat
}

func (r *gocvReader) Next() (image.Image, error) {
	if err := r.ctx.Err(); err != nil {
		return nil, err
	}
	if ok := r.capture.Read(&r.frame); !ok || r.frame.Empty() {
		return nil, io.EOF
	}
	band := r.frame.Region(r.roi)
	defer band.Close()
	gocv.CvtColor(band, &r.gray, gocv.ColorBGRToGray)
	img, err := r.gray.ToImage()
	if err != nil {
		return nil, fmt.Errorf("convert frame: %w", err)
	}
	gray, ok := img.(*image.Gray)
	if !ok {
		return nil, fmt.Errorf("convert frame: unexpected image type %T", img)
	}
	gray.Rect = gray.Rect.Add(r.roi.Min)
	return gray, nil
}

func (r *gocvReader) Close() error {
	r.gray.Close()
	r.frame.Close()
	return r.capture.Close()
}
