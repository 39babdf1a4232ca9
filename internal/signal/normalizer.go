package signal

import (
	"go-currency-guardian/internal/config"
)

// Mode selects the weighting variant. It is resolved once at process start
// from the anomaly model probe and fixed for the process lifetime.
type Mode string

const (
	// ModeHybrid weights the print check at 2: the autoencoder already
	// covers print fidelity, so OCR evidence counts for less.
	ModeHybrid Mode = "hybrid"

	// ModeLegacy is the CV-only weighting with the print check at 4.
	ModeLegacy Mode = "legacy"
)

// Cutoffs and weights for the scored signals. The normalizer is the single
// source of truth for this table; no other package hardcodes these.
const (
	structuralWeight  = 4.0
	portraitWeight    = 4.0
	printWeightLegacy = 4.0
	printWeightHybrid = 2.0
	anomalyWeight     = 6.0

	structuralCutoff = 5.0 // line count
	printCutoff      = 5.0 // extracted characters

	// Anomaly contribution: derived = max(0, ceiling - raw*gain), then
	// scaled. A zero reconstruction error yields the full 6.0.
	anomalyScale     = 0.6
	anomalyCeiling   = 10.0
	anomalyErrorGain = 100.0
	anomalyPassBar   = 5.0 // derived score above this counts as a pass
)

// AnomalyDerived maps a reconstruction error to the 0-10 derived score:
// zero error scores the full ceiling, errors of 0.1 and above score zero.
func AnomalyDerived(raw float64) float64 {
	derived := anomalyCeiling - raw*anomalyErrorGain
	if derived < 0 {
		return 0
	}
	return derived
}

// Normalizer converts raw signals into weighted partial scores and pass
// flags. Texture cutoffs are configurable; scored-signal cutoffs are fixed.
type Normalizer struct {
	mode    Mode
	texture config.TextureThresholds
}

func NewNormalizer(mode Mode, texture config.TextureThresholds) *Normalizer {
	return &Normalizer{mode: mode, texture: texture}
}

// Mode reports the active weighting variant.
func (n *Normalizer) Mode() Mode {
	return n.mode
}

// Weight returns the nominal maximum contribution of a kind under the
// active mode. Texture kinds carry pass/fail evidence only and weigh zero.
func (n *Normalizer) Weight(k Kind) float64 {
	switch k {
	case KindStructural:
		return structuralWeight
	case KindPortrait:
		return portraitWeight
	case KindPrint:
		if n.mode == ModeHybrid {
			return printWeightHybrid
		}
		return printWeightLegacy
	case KindAnomaly:
		return anomalyWeight
	default:
		return 0
	}
}

// Normalize applies the kind-specific cutoff and weight. Disabled signals
// bypass normalization entirely: zero partial, not passed, excluded from
// the maximum possible score. Degraded signals keep their sentinel raw
// value but contribute nothing and are marked non-authoritative.
func (n *Normalizer) Normalize(s Signal) Normalized {
	out := Normalized{
		Kind:          s.Kind,
		Raw:           s.Raw,
		Enabled:       s.Enabled,
		Weight:        n.Weight(s.Kind),
		Authoritative: !s.Degraded,
	}
	if !s.Enabled || s.Degraded {
		return out
	}

	switch s.Kind {
	case KindStructural:
		out.Passed = s.Raw > structuralCutoff
		if out.Passed {
			out.Partial = structuralWeight
		}
	case KindPortrait:
		out.Passed = s.Raw > 0
		if out.Passed {
			out.Partial = portraitWeight
		}
	case KindPrint:
		out.Passed = s.Raw > printCutoff
		if out.Passed {
			out.Partial = n.Weight(KindPrint)
		}
	case KindAnomaly:
		derived := AnomalyDerived(s.Raw)
		out.Partial = anomalyScale * derived
		out.Passed = derived > anomalyPassBar
	case KindWatermark:
		out.Passed = s.Raw >= n.texture.WatermarkGradientDensity
	case KindThread:
		out.Passed = s.Raw >= n.texture.ThreadRunFraction
	case KindIntaglio:
		out.Passed = s.Raw >= n.texture.IntaglioVariance
	case KindColorShift:
		out.Passed = s.Raw >= n.texture.ColorShiftCovariance
	}
	return out
}
