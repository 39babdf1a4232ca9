package provider

import (
	"image"
	"image/color"
	"testing"
)

// noiseImage fills an image with deterministic pseudo-random luminance.
func noiseImage(width, height int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	seed := uint32(2463534242)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			seed ^= seed << 13
			seed ^= seed >> 17
			seed ^= seed << 5
			v := uint8(seed)
			img.Set(x, y, color.NRGBA{R: v, G: v, B: v, A: 255})
		}
	}
	return img
}

func TestTextureAnalyzer_ThreadRun(t *testing.T) {
	a := NewTextureAnalyzer()

	blank := uniformImage(100, 100, 255)
	if got := a.ThreadRun(blank).Raw; got != 0 {
		t.Errorf("blank thread run = %v, want 0", got)
	}

	withThread := uniformImage(100, 100, 255)
	for y := 0; y < 100; y++ {
		withThread.Set(50, y, color.NRGBA{A: 255})
		withThread.Set(51, y, color.NRGBA{A: 255})
	}
	if got := a.ThreadRun(withThread).Raw; got != 1 {
		t.Errorf("full-height thread run = %v, want 1", got)
	}
}

func TestTextureAnalyzer_IntaglioVariance(t *testing.T) {
	a := NewTextureAnalyzer()

	if got := a.IntaglioVariance(uniformImage(100, 100, 128)).Raw; got != 0 {
		t.Errorf("flat image variance = %v, want 0", got)
	}

	rough := a.IntaglioVariance(noiseImage(100, 100)).Raw
	if rough <= 120 {
		t.Errorf("noisy texture variance = %v, want above the intaglio cutoff", rough)
	}
}

func TestTextureAnalyzer_WatermarkDensity(t *testing.T) {
	a := NewTextureAnalyzer()

	if got := a.WatermarkDensity(uniformImage(120, 120, 180)).Raw; got != 0 {
		t.Errorf("flat image gradient density = %v, want 0", got)
	}

	// Soft vertical banding in the left third reads as watermark relief.
	banded := uniformImage(120, 120, 180)
	for y := 0; y < 120; y++ {
		for x := 0; x < 40; x++ {
			v := uint8(128 + 30*((x/2)%2))
			banded.Set(x, y, color.NRGBA{R: v, G: v, B: v, A: 255})
		}
	}
	if got := a.WatermarkDensity(banded).Raw; got <= 0.04 {
		t.Errorf("banded gradient density = %v, want above the watermark cutoff", got)
	}
}

func TestTextureAnalyzer_ColorShiftCovariance(t *testing.T) {
	a := NewTextureAnalyzer()

	if got := a.ColorShiftCovariance(uniformImage(100, 100, 128)).Raw; got != 0 {
		t.Errorf("flat image covariance = %v, want 0", got)
	}

	// Red and blue sweeping together across the note couples the channels.
	coupled := image.NewNRGBA(image.Rect(0, 0, 100, 100))
	for y := 0; y < 100; y++ {
		for x := 0; x < 100; x++ {
			v := uint8(x * 2)
			coupled.Set(x, y, color.NRGBA{R: v, G: 128, B: v, A: 255})
		}
	}
	if got := a.ColorShiftCovariance(coupled).Raw; got <= 18 {
		t.Errorf("coupled-channel covariance = %v, want above the color shift cutoff", got)
	}
}
