package frames

import (
	"image"
)

// DefaultCutoff is the luminance above which a pixel counts as caption text.
const DefaultCutoff uint8 = 200

// Luma converts 8-bit RGB to gray using the BT.601 weights in 14-bit fixed
// point, the same rounding OpenCV applies for BGR to gray conversion.
func Luma(r, g, b uint8) uint8 {
	return uint8((uint32(r)*4899 + uint32(g)*9617 + uint32(b)*1868 + 8192) >> 14)
}

// Binarize thresholds the roi of img into dst, one byte per pixel in row
// order: 255 where luma > cutoff, 0 elsewhere. Pixels of roi outside the image
// bounds count as 0. dst is reused when large enough.
func Binarize(img image.Image, roi image.Rectangle, cutoff uint8, dst []byte) []byte {
	n := roi.Dx() * roi.Dy()
	if n <= 0 {
		return dst[:0]
	}
	if cap(dst) < n {
		dst = make([]byte, n)
	}
	dst = dst[:n]

	bounds := img.Bounds()
	i := 0
	switch src := img.(type) {
	case *image.Gray:
		for y := roi.Min.Y; y < roi.Max.Y; y++ {
			for x := roi.Min.X; x < roi.Max.X; x++ {
				dst[i] = 0
				if (image.Point{X: x, Y: y}).In(bounds) && src.Pix[src.PixOffset(x, y)] > cutoff {
					dst[i] = 255
				}
				i++
			}
		}
	case *image.RGBA:
		for y := roi.Min.Y; y < roi.Max.Y; y++ {
			for x := roi.Min.X; x < roi.Max.X; x++ {
				dst[i] = 0
				if (image.Point{X: x, Y: y}).In(bounds) {
					o := src.PixOffset(x, y)
					if Luma(src.Pix[o], src.Pix[o+1], src.Pix[o+2]) > cutoff {
						dst[i] = 255
					}
				}
				i++
			}
		}
	case *image.YCbCr:
		for y := roi.Min.Y; y < roi.Max.Y; y++ {
			for x := roi.Min.X; x < roi.Max.X; x++ {
				dst[i] = 0
				if (image.Point{X: x, Y: y}).In(bounds) && src.Y[src.YOffset(x, y)] > cutoff {
					dst[i] = 255
				}
				i++
			}
		}
	default:
		for y := roi.Min.Y; y < roi.Max.Y; y++ {
			for x := roi.Min.X; x < roi.Max.X; x++ {
				dst[i] = 0
				if (image.Point{X: x, Y: y}).In(bounds) {
					r, g, b, _ := img.At(x, y).RGBA()
					if Luma(uint8(r>>8), uint8(g>>8), uint8(b>>8)) > cutoff {
						dst[i] = 255
					}
				}
				i++
			}
		}
	}
	return dst
}

// DiffPercent returns the share of positions where prev and cur differ, as a
// percentage of the longer buffer. Two empty buffers differ by 0.
func DiffPercent(prev, cur []byte) float64 {
	total := max(len(prev), len(cur))
	if total == 0 {
		return 0
	}
	common := min(len(prev), len(cur))
	differing := total - common
	for i := range common {
		if prev[i] != cur[i] {
			differing++
		}
	}
	return float64(differing) / float64(total) * 100
}
