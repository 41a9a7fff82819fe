package frames

import (
	"errors"
	"fmt"
	"image"
)

// ErrEmptyRegion is returned when the caption band does not fit inside the frame.
var ErrEmptyRegion = errors.New("empty caption region")

// Region describes the caption band near the bottom of a frame. Bleed keeps
// the band away from the left, right and bottom edges; LineHeight is the
// band's height.
type Region struct {
	Bleed      int
	LineHeight int
}

// DefaultRegion returns the band used for burned-in single-line captions.
func DefaultRegion() Region {
	return Region{Bleed: 40, LineHeight: 60}
}

// Rect returns the band for a width x height frame:
// rows [H-bleed-lineHeight, H-bleed) and columns [bleed, W-bleed).
func (r Region) Rect(width, height int) (image.Rectangle, error) {
	if r.Bleed < 0 || r.LineHeight <= 0 {
		return image.Rectangle{}, fmt.Errorf("%w: bleed=%d line_height=%d", ErrEmptyRegion, r.Bleed, r.LineHeight)
	}
	// image.Rect swaps inverted corners, so the bounds are checked raw.
	top, right, bottom := height-r.Bleed-r.LineHeight, width-r.Bleed, height-r.Bleed
	if top < 0 || right <= r.Bleed || bottom <= top {
		return image.Rectangle{}, fmt.Errorf("%w: %dx%d frame cannot hold bleed=%d line_height=%d", ErrEmptyRegion, width, height, r.Bleed, r.LineHeight)
	}
	return image.Rect(r.Bleed, top, right, bottom), nil
}
