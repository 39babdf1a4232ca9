// Package provider implements the signal providers. Each provider consumes a
// decoded, read-only image and produces one raw measurement plus an optional
// visualization artifact. Providers never fail on a decodable image; they
// degrade to a neutral raw value so a single weak detector cannot abort the
// whole analysis.
package provider

import (
	"image"
	"image/draw"
)

// Measurement is one provider output.
type Measurement struct {
	// Raw is the provider-specific numeric: count, text length, density
	// ratio, variance, reconstruction error.
	Raw float64

	// Degraded marks a sentinel produced because the provider could not
	// run fully (engine failure). The session records it so the caller
	// can display reduced availability instead of silently trusting zero.
	Degraded bool

	// Visual is an optional annotated artifact for the UI; nil when the
	// provider renders nothing.
	Visual image.Image
}

func toGray(img image.Image) *image.Gray {
	bounds := img.Bounds()
	gray := image.NewGray(bounds)
	draw.Draw(gray, bounds, img, bounds.Min, draw.Src)
	return gray
}

func cloneRGBA(img image.Image) *image.RGBA {
	bounds := img.Bounds()
	dst := image.NewRGBA(bounds)
	draw.Draw(dst, bounds, img, bounds.Min, draw.Src)
	return dst
}
