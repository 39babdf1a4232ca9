package signal

import (
	"testing"

	"go-currency-guardian/internal/config"
)

func newTestNormalizer(mode Mode) *Normalizer {
	return NewNormalizer(mode, config.DefaultTextureThresholds())
}

func TestNormalize_ScoredCutoffs(t *testing.T) {
	n := newTestNormalizer(ModeLegacy)

	tests := []struct {
		name        string
		sig         Signal
		wantPartial float64
		wantPassed  bool
	}{
		{"structural above cutoff", Signal{Kind: KindStructural, Raw: 6, Enabled: true}, 4, true},
		{"structural at cutoff fails", Signal{Kind: KindStructural, Raw: 5, Enabled: true}, 0, false},
		{"structural zero lines", Signal{Kind: KindStructural, Raw: 0, Enabled: true}, 0, false},
		{"portrait one face", Signal{Kind: KindPortrait, Raw: 1, Enabled: true}, 4, true},
		{"portrait no face", Signal{Kind: KindPortrait, Raw: 0, Enabled: true}, 0, false},
		{"print ten chars legacy", Signal{Kind: KindPrint, Raw: 10, Enabled: true}, 4, true},
		{"print five chars fails", Signal{Kind: KindPrint, Raw: 5, Enabled: true}, 0, false},
		{"anomaly zero error", Signal{Kind: KindAnomaly, Raw: 0, Enabled: true}, 6, true},
		{"anomaly moderate error", Signal{Kind: KindAnomaly, Raw: 0.05, Enabled: true}, 3, false},
		{"anomaly large error floors at zero", Signal{Kind: KindAnomaly, Raw: 0.5, Enabled: true}, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := n.Normalize(tt.sig)
			if got.Partial != tt.wantPartial {
				t.Errorf("Partial = %v, want %v", got.Partial, tt.wantPartial)
			}
			if got.Passed != tt.wantPassed {
				t.Errorf("Passed = %v, want %v", got.Passed, tt.wantPassed)
			}
			if !got.Authoritative {
				t.Error("expected authoritative signal")
			}
		})
	}
}

func TestNormalize_PrintWeightByMode(t *testing.T) {
	sig := Signal{Kind: KindPrint, Raw: 10, Enabled: true}

	if got := newTestNormalizer(ModeLegacy).Normalize(sig).Partial; got != 4 {
		t.Errorf("legacy print partial = %v, want 4", got)
	}
	if got := newTestNormalizer(ModeHybrid).Normalize(sig).Partial; got != 2 {
		t.Errorf("hybrid print partial = %v, want 2", got)
	}
}

func TestNormalize_DisabledBypassesEntirely(t *testing.T) {
	n := newTestNormalizer(ModeLegacy)

	for _, kind := range EvaluationOrder {
		got := n.Normalize(Signal{Kind: kind, Raw: 100, Enabled: false})
		if got.Partial != 0 {
			t.Errorf("%s: disabled signal contributed %v", kind, got.Partial)
		}
		if got.Passed {
			t.Errorf("%s: disabled signal passed", kind)
		}
	}
}

func TestNormalize_DegradedIsNonAuthoritative(t *testing.T) {
	n := newTestNormalizer(ModeHybrid)

	got := n.Normalize(Signal{Kind: KindAnomaly, Raw: 0, Enabled: true, Degraded: true})
	if got.Authoritative {
		t.Error("degraded signal must not be authoritative")
	}
	if got.Partial != 0 {
		t.Errorf("degraded signal contributed %v", got.Partial)
	}
	if got.Passed {
		t.Error("degraded signal must not pass")
	}
}

func TestNormalize_TextureCutoffs(t *testing.T) {
	n := newTestNormalizer(ModeLegacy)
	th := config.DefaultTextureThresholds()

	tests := []struct {
		name       string
		sig        Signal
		wantPassed bool
	}{
		{"watermark above", Signal{Kind: KindWatermark, Raw: th.WatermarkGradientDensity + 0.01, Enabled: true}, true},
		{"watermark below", Signal{Kind: KindWatermark, Raw: th.WatermarkGradientDensity / 2, Enabled: true}, false},
		{"thread above", Signal{Kind: KindThread, Raw: th.ThreadRunFraction + 0.1, Enabled: true}, true},
		{"intaglio below", Signal{Kind: KindIntaglio, Raw: th.IntaglioVariance - 1, Enabled: true}, false},
		{"color shift above", Signal{Kind: KindColorShift, Raw: th.ColorShiftCovariance + 1, Enabled: true}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := n.Normalize(tt.sig)
			if got.Passed != tt.wantPassed {
				t.Errorf("Passed = %v, want %v", got.Passed, tt.wantPassed)
			}
			if got.Partial != 0 {
				t.Errorf("texture signal carries score weight %v, want 0", got.Partial)
			}
			if got.Weight != 0 {
				t.Errorf("texture nominal weight = %v, want 0", got.Weight)
			}
		})
	}
}

func TestAnomalyDerived(t *testing.T) {
	tests := []struct {
		raw  float64
		want float64
	}{
		{0, 10},
		{0.05, 5},
		{0.1, 0},
		{2.5, 0},
	}
	for _, tt := range tests {
		if got := AnomalyDerived(tt.raw); got != tt.want {
			t.Errorf("AnomalyDerived(%v) = %v, want %v", tt.raw, got, tt.want)
		}
	}
}

func TestWeight_Table(t *testing.T) {
	legacy := newTestNormalizer(ModeLegacy)
	hybrid := newTestNormalizer(ModeHybrid)

	if got := legacy.Weight(KindStructural); got != 4 {
		t.Errorf("structural weight = %v, want 4", got)
	}
	if got := legacy.Weight(KindPortrait); got != 4 {
		t.Errorf("portrait weight = %v, want 4", got)
	}
	if got := legacy.Weight(KindPrint); got != 4 {
		t.Errorf("legacy print weight = %v, want 4", got)
	}
	if got := hybrid.Weight(KindPrint); got != 2 {
		t.Errorf("hybrid print weight = %v, want 2", got)
	}
	if got := hybrid.Weight(KindAnomaly); got != 6 {
		t.Errorf("anomaly weight = %v, want 6", got)
	}
	if got := hybrid.Weight(KindWatermark); got != 0 {
		t.Errorf("watermark weight = %v, want 0", got)
	}
}
