// Package anomaly wraps the convolutional autoencoder trained on genuine
// notes. The capability has exactly two variants, resolved once at process
// start and fixed for the process lifetime: Active (ONNX session loaded)
// and Disabled (model unavailable, sentinel scores). Requests never probe
// or retry the model themselves.
package anomaly

import (
	"image"
)

// Score is one autoencoder evaluation of a note image.
type Score struct {
	// ReconstructionError is the mean-squared error between the input
	// tensor and its reconstruction. Non-negative, typically below 1 for
	// genuine notes.
	ReconstructionError float64

	// Heatmap visualizes where the latent representation concentrates.
	Heatmap image.Image

	// Reconstruction is the decoded image the model believes a genuine
	// note should look like.
	Reconstruction image.Image
}

// Scorer is the autoencoder capability consumed by the analysis session.
type Scorer interface {
	// Active reports whether a real model backs the scores. When false,
	// Evaluate returns the zero sentinel and its signal must be marked
	// non-authoritative.
	Active() bool

	// Evaluate runs the autoencoder over the image. Safe for concurrent
	// use by many requests.
	Evaluate(img image.Image) (Score, error)

	// Close releases model resources.
	Close() error
}

// Disabled is the sentinel variant used when the model could not be
// initialized. It reports zero reconstruction error so the fused score is
// unaffected; the session flags the signal as degraded instead.
type Disabled struct{}

func (Disabled) Active() bool { return false }

func (Disabled) Evaluate(image.Image) (Score, error) { return Score{}, nil }

func (Disabled) Close() error { return nil }
