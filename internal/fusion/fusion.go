// Package fusion combines normalized forensic signals into one aggregate
// score and a binary verdict. The combination is a linear weighted sum on
// purpose: each signal's contribution stays independently interpretable, so
// a human can explain any verdict from the per-signal breakdown.
package fusion

import (
	"go-currency-guardian/internal/signal"
)

// Result is the aggregate of one analysis request. Constructed once,
// immutable, never persisted.
type Result struct {
	// TotalScore is the sum of weighted partial scores. Not clamped; it
	// may exceed the nominal maximum if weights ever overlap.
	TotalScore float64

	// MaxPossibleScore is the sum of nominal weights of the enabled,
	// authoritative signals, independent of whether they passed.
	MaxPossibleScore float64

	// IsGenuine is true when TotalScore >= threshold. Equality counts as
	// genuine.
	IsGenuine bool

	// ConfidencePct is 100 * TotalScore / MaxPossibleScore, and 0 when
	// nothing could have scored. Descriptive only; it never affects the
	// verdict.
	ConfidencePct float64

	// Signals preserves insertion order, which is the evaluation order.
	Signals []signal.Normalized
}

// Fuse sums the partial scores of the given signals and applies the
// threshold. Pure and stateless: no hysteresis, no smoothing across
// requests. The threshold is in the same unit scale as TotalScore.
func Fuse(signals []signal.Normalized, threshold float64) Result {
	result := Result{
		Signals: make([]signal.Normalized, len(signals)),
	}
	copy(result.Signals, signals)

	for _, s := range signals {
		if !s.Enabled {
			continue
		}
		result.TotalScore += s.Partial
		if s.Authoritative {
			result.MaxPossibleScore += s.Weight
		}
	}

	result.IsGenuine = result.TotalScore >= threshold
	if result.MaxPossibleScore > 0 {
		result.ConfidencePct = 100 * result.TotalScore / result.MaxPossibleScore
	}
	return result
}
