package main

import (
	"testing"

	"go-currency-guardian/internal/signal"
)

func TestParseSignals(t *testing.T) {
	enabled, err := parseSignals("Structural, portrait,ANOMALY")
	if err != nil {
		t.Fatalf("parseSignals: %v", err)
	}
	for _, kind := range []signal.Kind{signal.KindStructural, signal.KindPortrait, signal.KindAnomaly} {
		if !enabled[kind] {
			t.Errorf("expected %s enabled", kind)
		}
	}
	if len(enabled) != 3 {
		t.Errorf("enabled count = %d, want 3", len(enabled))
	}
}

func TestParseSignalsRejectsUnknown(t *testing.T) {
	if _, err := parseSignals("structural,hologram"); err == nil {
		t.Fatal("expected error for an unknown signal kind")
	}
}
