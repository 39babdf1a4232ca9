package provider

import (
	"image"
	"image/color"
)

const (
	// Gradient magnitude above which a pixel counts as an edge.
	edgeMagnitude = 100

	// Minimum run of consecutive edge pixels that counts as a security
	// line, matching the minimum line length of the Hough contract.
	minLineLength = 50

	// Gaps up to this many pixels are bridged inside a run.
	maxLineGap = 10
)

// StructuralDetector counts straight security lines in the note's printed
// grid. It stands in for the Canny edge + probabilistic Hough contract:
// a Sobel edge map followed by straight-run extraction along both axes.
type StructuralDetector struct{}

func NewStructuralDetector() *StructuralDetector {
	return &StructuralDetector{}
}

// Detect returns the number of detected lines and an overlay with each
// detected segment drawn in green. Images smaller than the minimum line
// length yield zero lines, never an error.
func (d *StructuralDetector) Detect(img image.Image) Measurement {
	gray := toGray(img)
	edges := sobelEdges(gray, edgeMagnitude)
	overlay := cloneRGBA(img)

	lineColor := color.RGBA{R: 0, G: 255, B: 0, A: 255}
	count := 0

	bounds := edges.Bounds()
	// Horizontal runs.
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for _, run := range edgeRuns(func(i int) bool {
			return edges.GrayAt(i, y).Y > 0
		}, bounds.Min.X, bounds.Max.X) {
			count++
			for x := run[0]; x < run[1]; x++ {
				overlay.SetRGBA(x, y, lineColor)
			}
		}
	}
	// Vertical runs.
	for x := bounds.Min.X; x < bounds.Max.X; x++ {
		for _, run := range edgeRuns(func(i int) bool {
			return edges.GrayAt(x, i).Y > 0
		}, bounds.Min.Y, bounds.Max.Y) {
			count++
			for y := run[0]; y < run[1]; y++ {
				overlay.SetRGBA(x, y, lineColor)
			}
		}
	}

	return Measurement{Raw: float64(count), Visual: overlay}
}

// sobelEdges returns a binary edge map: 255 where the Sobel gradient
// magnitude exceeds the threshold, 0 elsewhere.
func sobelEdges(gray *image.Gray, threshold int) *image.Gray {
	bounds := gray.Bounds()
	edges := image.NewGray(bounds)

	for y := bounds.Min.Y + 1; y < bounds.Max.Y-1; y++ {
		for x := bounds.Min.X + 1; x < bounds.Max.X-1; x++ {
			gx := int(gray.GrayAt(x+1, y-1).Y) + 2*int(gray.GrayAt(x+1, y).Y) + int(gray.GrayAt(x+1, y+1).Y) -
				int(gray.GrayAt(x-1, y-1).Y) - 2*int(gray.GrayAt(x-1, y).Y) - int(gray.GrayAt(x-1, y+1).Y)
			gy := int(gray.GrayAt(x-1, y+1).Y) + 2*int(gray.GrayAt(x, y+1).Y) + int(gray.GrayAt(x+1, y+1).Y) -
				int(gray.GrayAt(x-1, y-1).Y) - 2*int(gray.GrayAt(x, y-1).Y) - int(gray.GrayAt(x+1, y-1).Y)
			if gx < 0 {
				gx = -gx
			}
			if gy < 0 {
				gy = -gy
			}
			if gx+gy > threshold {
				edges.SetGray(x, y, color.Gray{Y: 255})
			}
		}
	}
	return edges
}

// edgeRuns extracts [start, end) intervals of edge pixels along one scan
// line, bridging gaps up to maxLineGap and keeping runs of at least
// minLineLength.
func edgeRuns(isEdge func(i int) bool, lo, hi int) [][2]int {
	var runs [][2]int
	start := -1
	gap := 0

	for i := lo; i < hi; i++ {
		if isEdge(i) {
			if start < 0 {
				start = i
			}
			gap = 0
			continue
		}
		if start < 0 {
			continue
		}
		gap++
		if gap > maxLineGap {
			end := i - gap + 1
			if end-start >= minLineLength {
				runs = append(runs, [2]int{start, end})
			}
			start = -1
			gap = 0
		}
	}
	if start >= 0 {
		end := hi - gap
		if end-start >= minLineLength {
			runs = append(runs, [2]int{start, end})
		}
	}
	return runs
}
