package service

import (
	"time"

	"go-currency-guardian/internal/provider"
	"go-currency-guardian/internal/signal"
)

// Config is the caller-supplied per-request analysis configuration.
type Config struct {
	// Enabled holds the signal kinds the caller wants evaluated. A nil
	// map means every kind runs.
	Enabled map[signal.Kind]bool

	// Threshold is the decision cutoff on the fused score, in the same
	// unit scale as the score itself (not a percentage).
	Threshold float64

	// ExpectedText, when set, is compared against the OCR extraction
	// (serial number or denomination text).
	ExpectedText string
}

// DefaultConfig enables every signal at the given threshold.
func DefaultConfig(threshold float64) Config {
	enabled := make(map[signal.Kind]bool, len(signal.EvaluationOrder))
	for _, k := range signal.EvaluationOrder {
		enabled[k] = true
	}
	return Config{Enabled: enabled, Threshold: threshold}
}

// SignalEnabled reports whether a kind should be evaluated under this
// config.
func (c Config) SignalEnabled(k signal.Kind) bool {
	if c.Enabled == nil {
		return true
	}
	return c.Enabled[k]
}

// FeatureStatus values shown in the per-signal breakdown.
const (
	StatusPass = "PASS"
	StatusFail = "FAIL"

	// StatusInitializing marks a non-authoritative sentinel: the signal
	// ran degraded and its value must not be trusted.
	StatusInitializing = "INITIALIZING"
)

// Feature is one row of the per-signal breakdown.
type Feature struct {
	Name   string `json:"name"`
	Status string `json:"status"`
	Val    string `json:"val"`
}

// Report is the immutable outcome of one completed analysis session.
type Report struct {
	IsReal     bool    `json:"is_real"`
	Score      float64 `json:"score"`
	Confidence float64 `json:"confidence"`

	AnomalyScore float64 `json:"anomaly_score"`
	AIActive     bool    `json:"ai_active"`
	AIConfidence float64 `json:"ai_confidence"`

	Features []Feature `json:"features"`

	// Visuals maps artifact names to base64 JPEG payloads.
	Visuals map[string]string `json:"visuals"`

	OCR *provider.PrintDetail `json:"ocr,omitempty"`

	ProcessingTimeSec float64   `json:"processing_time_sec"`
	Timestamp         time.Time `json:"timestamp"`
}
