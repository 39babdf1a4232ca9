package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// TextureThresholds holds the cutoffs for the forensic texture checks
// (watermark, security thread, intaglio relief, color-shifting ink).
// These produce pass/fail evidence only and never move the fused score.
type TextureThresholds struct {
	// Minimum fraction of pixels with a strong local luminance gradient
	// for the watermark region check.
	WatermarkGradientDensity float64 `yaml:"watermark_gradient_density"`

	// Minimum fraction of image height covered by an uninterrupted dark
	// vertical run for the security thread check.
	ThreadRunFraction float64 `yaml:"thread_run_fraction"`

	// Minimum Laplacian texture variance for the intaglio relief check.
	IntaglioVariance float64 `yaml:"intaglio_variance"`

	// Minimum red/blue channel covariance magnitude for the
	// optically-variable ink check.
	ColorShiftCovariance float64 `yaml:"color_shift_covariance"`
}

// DefaultTextureThresholds returns the built-in cutoffs.
func DefaultTextureThresholds() TextureThresholds {
	return TextureThresholds{
		WatermarkGradientDensity: 0.04,
		ThreadRunFraction:        0.55,
		IntaglioVariance:         120.0,
		ColorShiftCovariance:     18.0,
	}
}

// LoadTextureThresholds reads cutoff overrides from a YAML file. Fields left
// at zero in the file keep their defaults. An empty path returns defaults.
func LoadTextureThresholds(path string) (TextureThresholds, error) {
	th := DefaultTextureThresholds()
	if path == "" {
		return th, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return th, fmt.Errorf("read texture thresholds: %w", err)
	}

	var overrides TextureThresholds
	if err := yaml.Unmarshal(data, &overrides); err != nil {
		return th, fmt.Errorf("decode texture thresholds: %w", err)
	}

	if overrides.WatermarkGradientDensity > 0 {
		th.WatermarkGradientDensity = overrides.WatermarkGradientDensity
	}
	if overrides.ThreadRunFraction > 0 {
		th.ThreadRunFraction = overrides.ThreadRunFraction
	}
	if overrides.IntaglioVariance > 0 {
		th.IntaglioVariance = overrides.IntaglioVariance
	}
	if overrides.ColorShiftCovariance > 0 {
		th.ColorShiftCovariance = overrides.ColorShiftCovariance
	}
	return th, nil
}
