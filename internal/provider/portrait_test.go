package provider

import (
	"image"
	"image/color"
	"testing"
)

// engravePortrait fills a square with high-contrast horizontal banding,
// darker on average than the surrounding field, the way an engraved
// portrait reads in grayscale.
func engravePortrait(img *image.NRGBA, r image.Rectangle) {
	for y := r.Min.Y; y < r.Max.Y; y++ {
		var v uint8
		if y%4 >= 2 {
			v = 255
		}
		for x := r.Min.X; x < r.Max.X; x++ {
			img.Set(x, y, color.NRGBA{R: v, G: v, B: v, A: 255})
		}
	}
}

func TestPortraitDetector_BlankImage(t *testing.T) {
	d := NewPortraitDetector()
	if got := d.Detect(uniformImage(300, 300, 220)).Raw; got != 0 {
		t.Errorf("blank image face count = %v, want 0", got)
	}
}

func TestPortraitDetector_FindsEngravedRegion(t *testing.T) {
	img := uniformImage(300, 300, 220)
	// Engrave the core of one candidate window.
	engravePortrait(img, image.Rect(75, 75, 125, 125))

	d := NewPortraitDetector()
	m := d.Detect(img)

	if m.Raw < 1 {
		t.Errorf("face count = %v, want >= 1", m.Raw)
	}
	if m.Visual == nil {
		t.Error("expected an annotated overlay")
	}
}

func TestPortraitDetector_TooSmallImage(t *testing.T) {
	d := NewPortraitDetector()
	if got := d.Detect(uniformImage(40, 40, 128)).Raw; got != 0 {
		t.Errorf("small image face count = %v, want 0", got)
	}
}
