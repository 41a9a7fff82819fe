package frames

import (
	"context"
	"errors"
	"fmt"

	"cuesplice/internal/services"
)

// ErrDecoderUnavailable is returned when the requested decoder was not
// compiled into this binary.
var ErrDecoderUnavailable = errors.New("frame decoder not available")

// openGoCV is set by gocv.go when built with the gocv tag.
var openGoCV func(path string) (Source, error)

// Open returns a Source for path using the named decoder. An empty decoder
// means ffmpeg.
func Open(ctx context.Context, decoder, ffmpegBinary, ffprobeBinary, path string) (Source, error) {
	switch decoder {
	case "", "ffmpeg":
		src, err := ProbeFFmpegSource(ctx, ffmpegBinary, ffprobeBinary, path)
		if err != nil {
			return nil, err
		}
		return src, nil
	case "gocv":
		if openGoCV == nil {
			return nil, services.Wrap(services.ErrConfiguration, "scan", "open", "gocv (rebuild with -tags gocv)", ErrDecoderUnavailable)
		}
		return openGoCV(path)
	default:
		return nil, services.Wrap(services.ErrConfiguration, "scan", "open", fmt.Sprintf("unknown frame decoder %q", decoder), nil)
	}
}
