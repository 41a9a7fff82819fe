package testsupport

import (
	"image"
	"image/color"
)

// CaptionFrame returns a black RGBA frame with a white block covering the
// first lit columns of band, mimicking a burned-in caption of that width.
func CaptionFrame(width, height int, band image.Rectangle, lit int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for i := 3; i < len(img.Pix); i += 4 {
		img.Pix[i] = 0xff
	}
	white := color.RGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}
	for y := band.Min.Y; y < band.Max.Y; y++ {
		for x := band.Min.X; x < band.Min.X+lit && x < band.Max.X; x++ {
			img.SetRGBA(x, y, white)
		}
	}
	return img
}

// CaptionTrack builds a frame sequence where each entry of widths is held for
// hold frames. Changing widths produce caption-change spikes.
func CaptionTrack(width, height int, band image.Rectangle, hold int, widths ...int) []image.Image {
	var frames []image.Image
	for _, w := range widths {
		frame := CaptionFrame(width, height, band, w)
		for range hold {
			frames = append(frames, frame)
		}
	}
	return frames
}
