package frames

import (
	"context"
	"errors"
	"fmt"
	"io"
	"iter"
	"log/slog"

	"cuesplice/internal/logging"
	"cuesplice/internal/services"
)

// Sample is the change measured between frame FrameIndex-1 and FrameIndex.
type Sample struct {
	FrameIndex int
	Timestamp  float64
	// Confidence is the percentage of caption-band pixels that flipped.
	Confidence float64
}

// Scanner measures how much the caption band changes from frame to frame.
type Scanner struct {
	Source Source
	Region Region
	Cutoff uint8
	// MaxFrames stops reading after this many frames. Zero reads to the end.
	MaxFrames int
	Logger    *slog.Logger
}

// NewScanner returns a scanner with the default region and cutoff.
func NewScanner(src Source, logger *slog.Logger) *Scanner {
	return &Scanner{
		Source: src,
		Region: DefaultRegion(),
		Cutoff: DefaultCutoff,
		Logger: logger,
	}
}

// Samples returns a lazy sequence of samples, one per frame after the first.
// Every range over the sequence decodes the video again from the start.
//
// A source that cannot be opened yields a single error and no samples. A read
// failure part way through is logged and ends the sequence; samples already
// produced stand. Context cancellation is yielded as an error.
func (s *Scanner) Samples(ctx context.Context) iter.Seq2[Sample, error] {
	return func(yield func(Sample, error) bool) {
		logger := logging.NewComponentLogger(s.Logger, "frames")

		meta := s.Source.Metadata()
		if meta.FrameRate <= 0 {
			yield(Sample{}, services.Wrap(services.ErrValidation, "scan", "metadata", fmt.Sprintf("invalid frame rate %v", meta.FrameRate), nil))
			return
		}
		roi, err := s.Region.Rect(meta.Width, meta.Height)
		if err != nil {
			yield(Sample{}, services.Wrap(services.ErrValidation, "scan", "region", "", err))
			return
		}

		reader, err := s.Source.Open(ctx, roi)
		if err != nil {
			yield(Sample{}, services.Wrap(services.ErrIO, "scan", "open video", "", err))
			return
		}
		defer func() {
			if cerr := reader.Close(); cerr != nil {
				logger.Warn("frame reader close failed", logging.Error(cerr))
			}
		}()

		logger.Debug("scanning caption band",
			logging.Int("width", roi.Dx()),
			logging.Int("height", roi.Dy()),
			logging.Int("top", roi.Min.Y),
			logging.Float64("fps", meta.FrameRate),
			logging.Int("frame_count", meta.FrameCount),
		)

		var prev, cur []byte
		for index := 0; s.MaxFrames <= 0 || index < s.MaxFrames; index++ {
			img, err := reader.Next()
			if errors.Is(err, io.EOF) {
				return
			}
			if err != nil {
				if ctxErr := ctx.Err(); ctxErr != nil {
					yield(Sample{}, ctxErr)
					return
				}
				logging.WarnEvent(logger, "frame read failed; ending scan early", "frame_read_failed",
					logging.Int("frame", index),
					logging.Error(err),
				)
				return
			}

			cur = Binarize(img, roi, s.Cutoff, cur)
			if index > 0 {
				sample := Sample{
					FrameIndex: index,
					Timestamp:  float64(index) / meta.FrameRate,
					Confidence: DiffPercent(prev, cur),
				}
				if !yield(sample, nil) {
					return
				}
			}
			prev, cur = cur, prev
		}
	}
}

// Scan collects every sample. On a mid-stream read failure the samples read
// so far are returned without error.
func (s *Scanner) Scan(ctx context.Context) ([]Sample, error) {
	var out []Sample
	for sample, err := range s.Samples(ctx) {
		if err != nil {
			return out, err
		}
		out = append(out, sample)
	}
	return out, nil
}
