package provider

import (
	"image"
	"image/color"
)

// PortraitDetector locates portrait-like regions: compact areas whose
// engraved detail gives them far more local contrast than the surrounding
// field, with a darker core than rim. It fills the Haar cascade contract
// by sampling candidate windows across the note, the same way the finder
// patterns of machine-readable codes are probed.
type PortraitDetector struct {
	// Minimum interior contrast (mean absolute deviation of luminance)
	// for a window to qualify as engraved detail.
	MinContrast float64

	// Minimum darkening of the window core relative to its rim.
	MinCoreDrop float64
}

func NewPortraitDetector() *PortraitDetector {
	return &PortraitDetector{
		MinContrast: 28.0,
		MinCoreDrop: 12.0,
	}
}

// Detect returns the number of portrait regions found and an overlay with
// each region boxed in blue.
func (d *PortraitDetector) Detect(img image.Image) Measurement {
	gray := toGray(img)
	bounds := gray.Bounds()
	width, height := bounds.Dx(), bounds.Dy()

	// Portraits occupy a meaningful fraction of a note photo; a window a
	// third of the short side is the smallest worth probing.
	side := min(width, height) / 3
	if side < 24 {
		return Measurement{Raw: 0}
	}

	var found []image.Rectangle
	step := side / 2

	for y := bounds.Min.Y; y+side <= bounds.Max.Y; y += step {
		for x := bounds.Min.X; x+side <= bounds.Max.X; x += step {
			window := image.Rect(x, y, x+side, y+side)
			if overlapsAny(window, found) {
				continue
			}
			if d.isPortraitWindow(gray, window) {
				found = append(found, window)
			}
		}
	}

	overlay := cloneRGBA(img)
	boxColor := color.RGBA{R: 0, G: 0, B: 255, A: 255}
	for _, r := range found {
		drawRect(overlay, r, boxColor)
	}

	return Measurement{Raw: float64(len(found)), Visual: overlay}
}

func (d *PortraitDetector) isPortraitWindow(gray *image.Gray, r image.Rectangle) bool {
	coreMean, coreDev := regionStats(gray, insetRect(r, r.Dx()/4))
	rimMean, _ := regionStats(gray, r)

	// Engraved faces are busy: high deviation inside the core.
	if coreDev < d.MinContrast {
		return false
	}
	// And ink-dense: the core sits darker than the window as a whole.
	return rimMean-coreMean >= d.MinCoreDrop
}

// regionStats returns the mean luminance and mean absolute deviation of a
// region, sampling every other pixel.
func regionStats(gray *image.Gray, r image.Rectangle) (mean, dev float64) {
	var sum float64
	count := 0
	for y := r.Min.Y; y < r.Max.Y; y += 2 {
		for x := r.Min.X; x < r.Max.X; x += 2 {
			sum += float64(gray.GrayAt(x, y).Y)
			count++
		}
	}
	if count == 0 {
		return 0, 0
	}
	mean = sum / float64(count)

	var devSum float64
	for y := r.Min.Y; y < r.Max.Y; y += 2 {
		for x := r.Min.X; x < r.Max.X; x += 2 {
			diff := float64(gray.GrayAt(x, y).Y) - mean
			if diff < 0 {
				diff = -diff
			}
			devSum += diff
		}
	}
	return mean, devSum / float64(count)
}

func insetRect(r image.Rectangle, by int) image.Rectangle {
	inset := r.Inset(by)
	if inset.Empty() {
		return r
	}
	return inset
}

func overlapsAny(r image.Rectangle, existing []image.Rectangle) bool {
	for _, e := range existing {
		if r.Overlaps(e) {
			return true
		}
	}
	return false
}

func drawRect(dst *image.RGBA, r image.Rectangle, c color.RGBA) {
	for x := r.Min.X; x < r.Max.X; x++ {
		dst.SetRGBA(x, r.Min.Y, c)
		dst.SetRGBA(x, r.Max.Y-1, c)
	}
	for y := r.Min.Y; y < r.Max.Y; y++ {
		dst.SetRGBA(r.Min.X, y, c)
		dst.SetRGBA(r.Max.X-1, y, c)
	}
}
