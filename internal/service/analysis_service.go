package service

import (
	"bytes"
	"context"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"math"
	"time"

	"github.com/sirupsen/logrus"

	"go-currency-guardian/internal/anomaly"
	apperrors "go-currency-guardian/internal/errors"
	"go-currency-guardian/internal/fusion"
	"go-currency-guardian/internal/logger"
	"go-currency-guardian/internal/provider"
	"go-currency-guardian/internal/render"
	"go-currency-guardian/internal/signal"
)

// AnalysisService runs one forensic analysis per call: decode, evaluate the
// enabled providers in fixed order, fuse, report.
type AnalysisService interface {
	Analyze(ctx context.Context, imageBytes []byte, cfg Config) (*Report, error)
	AnalyzeImage(ctx context.Context, img image.Image, cfg Config) (*Report, error)
}

type analysisService struct {
	normalizer *signal.Normalizer
	scorer     anomaly.Scorer
	structural *provider.StructuralDetector
	portrait   *provider.PortraitDetector
	print      *provider.PrintDetector
	texture    *provider.TextureAnalyzer
}

// NewAnalysisService wires the providers and the fusion pipeline. The
// anomaly scorer is injected: the fusion core stays testable without a
// real model, and the Active/Disabled selection stays a startup concern.
func NewAnalysisService(
	normalizer *signal.Normalizer,
	scorer anomaly.Scorer,
	recognizer provider.TextRecognizer,
) AnalysisService {
	return &analysisService{
		normalizer: normalizer,
		scorer:     scorer,
		structural: provider.NewStructuralDetector(),
		portrait:   provider.NewPortraitDetector(),
		print:      provider.NewPrintDetector(recognizer),
		texture:    provider.NewTextureAnalyzer(),
	}
}

// Analyze decodes the raw bytes and runs a session. Undecodable bytes are
// the only fatal error: no partial result is returned.
func (s *analysisService) Analyze(ctx context.Context, imageBytes []byte, cfg Config) (*Report, error) {
	img, _, err := image.Decode(bytes.NewReader(imageBytes))
	if err != nil {
		return nil, apperrors.NewInvalidImageError("bytes could not be decoded into an image", err)
	}
	return s.AnalyzeImage(ctx, img, cfg)
}

// AnalyzeImage runs a session over an already-decoded image.
func (s *analysisService) AnalyzeImage(ctx context.Context, img image.Image, cfg Config) (*Report, error) {
	sess := newSession(cfg, img)
	return sess.run(ctx, s)
}

// sessionState tracks a session through its lifecycle. A session either
// completes with an immutable report or fails outright on undecodable
// input; it is discarded afterwards and shares no state across requests.
type sessionState string

const (
	statePending    sessionState = "pending"
	stateEvaluating sessionState = "evaluating"
	stateComplete   sessionState = "complete"
)

type session struct {
	state   sessionState
	cfg     Config
	img     image.Image
	signals []signal.Normalized
	visuals map[string]string
	ocr     *provider.PrintDetail

	anomalyRaw    float64
	anomalyActive bool
}

func newSession(cfg Config, img image.Image) *session {
	return &session{
		state:   statePending,
		cfg:     cfg,
		img:     img,
		visuals: make(map[string]string),
	}
}

// run evaluates every signal kind in the declared order. Providers run
// sequentially to completion: display logic assumes all signals are
// resolved before fusion, and visualization artifacts must be reproducible.
func (s *session) run(ctx context.Context, svc *analysisService) (*Report, error) {
	start := time.Now()
	s.state = stateEvaluating

	s.visuals["original"] = render.EncodeJPEGBase64(s.img)

	for _, kind := range signal.EvaluationOrder {
		raw := s.evaluate(svc, kind)
		s.signals = append(s.signals, svc.normalizer.Normalize(raw))
	}

	result := fusion.Fuse(s.signals, s.cfg.Threshold)
	s.state = stateComplete

	report := s.buildReport(svc, result, start)

	logger.WithFields(logrus.Fields{
		"is_real":    report.IsReal,
		"score":      report.Score,
		"confidence": report.Confidence,
		"ai_active":  report.AIActive,
		"threshold":  s.cfg.Threshold,
	}).Info("Currency analysis completed")

	return report, nil
}

// evaluate runs one provider and records its visual artifacts. Disabled
// kinds bypass their provider entirely.
func (s *session) evaluate(svc *analysisService, kind signal.Kind) signal.Signal {
	if !s.cfg.SignalEnabled(kind) {
		return signal.Signal{Kind: kind, Enabled: false}
	}

	var m provider.Measurement
	switch kind {
	case signal.KindAnomaly:
		return s.evaluateAnomaly(svc)
	case signal.KindStructural:
		m = svc.structural.Detect(s.img)
		s.addVisual("cv_features", m.Visual)
	case signal.KindPortrait:
		m = svc.portrait.Detect(s.img)
		s.addVisual("portrait_map", m.Visual)
	case signal.KindPrint:
		var detail provider.PrintDetail
		m, detail = svc.print.Detect(s.img, s.cfg.ExpectedText)
		s.ocr = &detail
	case signal.KindWatermark:
		m = svc.texture.WatermarkDensity(s.img)
	case signal.KindThread:
		m = svc.texture.ThreadRun(s.img)
	case signal.KindIntaglio:
		m = svc.texture.IntaglioVariance(s.img)
	case signal.KindColorShift:
		m = svc.texture.ColorShiftCovariance(s.img)
	}

	return signal.Signal{Kind: kind, Raw: m.Raw, Enabled: true, Degraded: m.Degraded}
}

func (s *session) evaluateAnomaly(svc *analysisService) signal.Signal {
	if !svc.scorer.Active() {
		// Model unavailable for the whole process lifetime; the signal
		// carries the zero sentinel and is marked non-authoritative.
		return signal.Signal{Kind: signal.KindAnomaly, Enabled: true, Degraded: true}
	}

	score, err := svc.scorer.Evaluate(s.img)
	if err != nil {
		logger.WithError(err).Warn("Anomaly model evaluation failed, signal degraded")
		return signal.Signal{Kind: signal.KindAnomaly, Enabled: true, Degraded: true}
	}

	s.anomalyRaw = score.ReconstructionError
	s.anomalyActive = true
	s.addVisual("ai_attention", score.Heatmap)
	s.addVisual("reconstruction", score.Reconstruction)

	return signal.Signal{Kind: signal.KindAnomaly, Raw: score.ReconstructionError, Enabled: true}
}

func (s *session) addVisual(name string, img image.Image) {
	if encoded := render.EncodeJPEGBase64(img); encoded != "" {
		s.visuals[name] = encoded
	}
}

func (s *session) buildReport(svc *analysisService, result fusion.Result, start time.Time) *Report {
	report := &Report{
		IsReal:            result.IsGenuine,
		Score:             round1(result.TotalScore),
		Confidence:        round1(result.ConfidencePct),
		AnomalyScore:      round4(s.anomalyRaw),
		AIActive:          s.anomalyActive,
		Visuals:           s.visuals,
		OCR:               s.ocr,
		ProcessingTimeSec: time.Since(start).Seconds(),
		Timestamp:         start.UTC(),
	}

	for _, n := range result.Signals {
		if !n.Enabled {
			continue
		}
		status := StatusFail
		switch {
		case !n.Authoritative:
			status = StatusInitializing
		case n.Passed:
			status = StatusPass
		}
		report.Features = append(report.Features, Feature{
			Name:   n.Kind.DisplayName(),
			Status: status,
			Val:    n.FormatRaw(),
		})

		if n.Kind == signal.KindAnomaly && n.Authoritative {
			// AI confidence on a 0-100 scale from the derived score.
			report.AIConfidence = round1(signal.AnomalyDerived(n.Raw) * 10)
		}
	}
	return report
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

func round4(v float64) float64 {
	return math.Round(v*10000) / 10000
}
