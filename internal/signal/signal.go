package signal

import "fmt"

// Kind identifies one independent forensic measurement.
type Kind string

const (
	KindAnomaly    Kind = "anomaly"
	KindStructural Kind = "structural"
	KindPortrait   Kind = "portrait"
	KindPrint      Kind = "print"
	KindWatermark  Kind = "watermark"
	KindThread     Kind = "thread"
	KindIntaglio   Kind = "intaglio"
	KindColorShift Kind = "color_shift"
)

// EvaluationOrder is the fixed order providers run in. The deep-learning
// anomaly check runs first, then the legacy structural modules, then the
// texture evidence group. Display logic assumes every signal is resolved
// before fusion, so this order must stay deterministic.
var EvaluationOrder = []Kind{
	KindAnomaly,
	KindStructural,
	KindPortrait,
	KindPrint,
	KindWatermark,
	KindThread,
	KindIntaglio,
	KindColorShift,
}

// DisplayName returns the human-readable feature label for a kind.
func (k Kind) DisplayName() string {
	switch k {
	case KindAnomaly:
		return "Forensic Anomaly"
	case KindStructural:
		return "Structural Grid"
	case KindPortrait:
		return "Portrait Recognition"
	case KindPrint:
		return "Print Authenticity"
	case KindWatermark:
		return "Watermark"
	case KindThread:
		return "Security Thread"
	case KindIntaglio:
		return "Intaglio Relief"
	case KindColorShift:
		return "Color-Shifting Ink"
	default:
		return string(k)
	}
}

// Signal is one raw measurement from a provider. Created fresh per request,
// never persisted, immutable once produced.
type Signal struct {
	Kind Kind

	// Provider-specific numeric: line count, face count, text length,
	// reconstruction error, density ratio, variance.
	Raw float64

	// Whether the caller requested this signal for this run.
	Enabled bool

	// Degraded marks a signal whose provider could not run fully (model
	// unavailable, OCR engine failure) and returned a neutral sentinel.
	// A degraded signal never contributes and is excluded from the
	// maximum possible score.
	Degraded bool
}

// Normalized is a Signal converted into a bounded, comparable contribution.
type Normalized struct {
	Kind    Kind
	Raw     float64
	Enabled bool

	// Partial is the weighted score contribution; always zero for
	// disabled or degraded signals.
	Partial float64

	// Passed is the pass/fail flag at the kind-specific cutoff. A
	// disabled signal never passes and never fails.
	Passed bool

	// Weight is the nominal maximum contribution for this kind, used to
	// compute the maximum possible score.
	Weight float64

	// Authoritative is false when the measurement is a sentinel the
	// caller must not trust (degraded provider).
	Authoritative bool
}

// FormatRaw renders the raw value the way the feature breakdown expects:
// counts and lengths as integers, error and texture metrics with decimals.
func (n Normalized) FormatRaw() string {
	switch n.Kind {
	case KindStructural, KindPortrait, KindPrint:
		return fmt.Sprintf("%d", int(n.Raw))
	case KindAnomaly:
		return fmt.Sprintf("%.4f", n.Raw)
	default:
		return fmt.Sprintf("%.2f", n.Raw)
	}
}
