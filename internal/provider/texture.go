package provider

import (
	"image"

	"gonum.org/v1/gonum/stat"
)

// TextureAnalyzer measures the forensic texture group: watermark gradient
// density, security thread runs, intaglio relief variance, and
// color-shifting ink covariance. These measurements back pass/fail evidence
// only; the normalizer applies the configured cutoffs.
type TextureAnalyzer struct{}

func NewTextureAnalyzer() *TextureAnalyzer {
	return &TextureAnalyzer{}
}

// WatermarkDensity returns the fraction of pixels in the note's left third
// with a strong local luminance gradient. A pressed watermark shows up as a
// field of soft gradients rather than flat paper tone.
func (t *TextureAnalyzer) WatermarkDensity(img image.Image) Measurement {
	gray := toGray(img)
	bounds := gray.Bounds()
	region := image.Rect(bounds.Min.X, bounds.Min.Y, bounds.Min.X+bounds.Dx()/3, bounds.Max.Y)

	total, strong := 0, 0
	for y := region.Min.Y + 1; y < region.Max.Y-1; y++ {
		for x := region.Min.X + 1; x < region.Max.X-1; x++ {
			total++
			dx := int(gray.GrayAt(x+1, y).Y) - int(gray.GrayAt(x-1, y).Y)
			dy := int(gray.GrayAt(x, y+1).Y) - int(gray.GrayAt(x, y-1).Y)
			if dx < 0 {
				dx = -dx
			}
			if dy < 0 {
				dy = -dy
			}
			if dx+dy > 20 && dx+dy < 120 {
				strong++
			}
		}
	}
	if total == 0 {
		return Measurement{Raw: 0}
	}
	return Measurement{Raw: float64(strong) / float64(total)}
}

// ThreadRun returns the longest uninterrupted dark vertical run found in
// any column, as a fraction of image height. An embedded security thread
// reads as a near-full-height dark streak.
func (t *TextureAnalyzer) ThreadRun(img image.Image) Measurement {
	gray := toGray(img)
	bounds := gray.Bounds()
	height := bounds.Dy()
	if height == 0 {
		return Measurement{Raw: 0}
	}

	best := 0
	for x := bounds.Min.X; x < bounds.Max.X; x++ {
		run := 0
		for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
			if gray.GrayAt(x, y).Y < 80 {
				run++
				if run > best {
					best = run
				}
			} else {
				run = 0
			}
		}
	}
	return Measurement{Raw: float64(best) / float64(height)}
}

// IntaglioVariance returns the variance of the Laplacian response across
// the image. Raised intaglio printing produces a much rougher micro-texture
// than flat offset reproduction.
func (t *TextureAnalyzer) IntaglioVariance(img image.Image) Measurement {
	gray := toGray(img)
	bounds := gray.Bounds()

	var responses []float64
	for y := bounds.Min.Y + 1; y < bounds.Max.Y-1; y += 2 {
		for x := bounds.Min.X + 1; x < bounds.Max.X-1; x += 2 {
			lap := 4*int(gray.GrayAt(x, y).Y) -
				int(gray.GrayAt(x-1, y).Y) - int(gray.GrayAt(x+1, y).Y) -
				int(gray.GrayAt(x, y-1).Y) - int(gray.GrayAt(x, y+1).Y)
			responses = append(responses, float64(lap))
		}
	}
	if len(responses) < 2 {
		return Measurement{Raw: 0}
	}
	return Measurement{Raw: stat.Variance(responses, nil)}
}

// ColorShiftCovariance returns the magnitude of the red/blue channel
// covariance over a sampled grid. Optically variable ink couples the two
// channels while ordinary ink leaves them close to independent.
func (t *TextureAnalyzer) ColorShiftCovariance(img image.Image) Measurement {
	bounds := img.Bounds()

	var reds, blues []float64
	for y := bounds.Min.Y; y < bounds.Max.Y; y += 4 {
		for x := bounds.Min.X; x < bounds.Max.X; x += 4 {
			r, _, b, _ := img.At(x, y).RGBA()
			reds = append(reds, float64(r>>8))
			blues = append(blues, float64(b>>8))
		}
	}
	if len(reds) < 2 {
		return Measurement{Raw: 0}
	}
	cov := stat.Covariance(reds, blues, nil)
	if cov < 0 {
		cov = -cov
	}
	return Measurement{Raw: cov}
}
