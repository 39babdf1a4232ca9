package container

import (
	"fmt"
	"net/http"

	"go-currency-guardian/internal/anomaly"
	"go-currency-guardian/internal/config"
	"go-currency-guardian/internal/logger"
	"go-currency-guardian/internal/provider"
	"go-currency-guardian/internal/service"
	"go-currency-guardian/internal/signal"
	"go-currency-guardian/internal/storage"
	"go-currency-guardian/internal/transport"
)

// Container holds all application dependencies. The anomaly model is probed
// exactly once here; the outcome (Active or Disabled) is fixed for the
// process lifetime and shared read-only by every request.
type Container struct {
	config          *config.Config
	scorer          anomaly.Scorer
	noteFetcher     storage.NoteFetcher
	analysisService service.AnalysisService
	handler         http.Handler
}

// NewContainer builds the dependency graph.
func NewContainer(cfg *config.Config) (*Container, error) {
	scorer := probeModel(cfg)

	mode := signal.ModeLegacy
	if scorer.Active() {
		mode = signal.ModeHybrid
	}

	texture, err := config.LoadTextureThresholds(cfg.TextureThresholdsPath)
	if err != nil {
		return nil, fmt.Errorf("load texture thresholds: %w", err)
	}

	noteFetcher, err := newNoteFetcher(cfg)
	if err != nil {
		return nil, fmt.Errorf("initialize note storage: %w", err)
	}

	normalizer := signal.NewNormalizer(mode, texture)
	analysisService := service.NewAnalysisService(normalizer, scorer, provider.NewTesseractRecognizer())
	handler := transport.NewHandler(analysisService, noteFetcher, cfg, scorer.Active())

	return &Container{
		config:          cfg,
		scorer:          scorer,
		noteFetcher:     noteFetcher,
		analysisService: analysisService,
		handler:         handler,
	}, nil
}

// probeModel attempts the one-time autoencoder initialization. Failure is
// not fatal: the service runs in CV-only mode and every request sees the
// same Disabled capability without re-probing.
func probeModel(cfg *config.Config) anomaly.Scorer {
	if cfg.ModelPath == "" {
		logger.Info("No model path configured, running in CV-only mode")
		return anomaly.Disabled{}
	}

	model, err := anomaly.LoadModel(cfg.ModelPath, cfg.ONNXSharedLibrary)
	if err != nil {
		logger.WithError(err).Warn("AI core initialization failed, falling back to CV-only mode")
		return anomaly.Disabled{}
	}

	logger.WithField("model_path", cfg.ModelPath).Info("Anomaly model loaded")
	return model
}

func newNoteFetcher(cfg *config.Config) (storage.NoteFetcher, error) {
	switch cfg.StorageBackend {
	case config.StorageAzure:
		return storage.NewAzureNoteFetcher(cfg.AzureStorageAccount, cfg.AzureStorageKey)
	case config.StorageHTTP:
		return storage.NewHTTPNoteFetcher(cfg.ImageFetchTimeout, cfg.MaxRequestBodySize), nil
	default:
		return nil, fmt.Errorf("unsupported storage backend: %q", cfg.StorageBackend)
	}
}

// Handler returns the HTTP handler.
func (c *Container) Handler() http.Handler {
	return c.handler
}

// Config returns the configuration.
func (c *Container) Config() *config.Config {
	return c.config
}

// AnalysisService returns the analysis service.
func (c *Container) AnalysisService() service.AnalysisService {
	return c.analysisService
}

// Close releases the model resources.
func (c *Container) Close() error {
	return c.scorer.Close()
}
