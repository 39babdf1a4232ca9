package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadFromEnvDefaults(t *testing.T) {
	for _, key := range []string{
		"HOST", "PORT", "REQUEST_TIMEOUT", "IMAGE_FETCH_TIMEOUT",
		"MAX_REQUEST_BODY_SIZE", "DEFAULT_THRESHOLD", "MODEL_PATH",
		"STORAGE_BACKEND", "TEXTURE_THRESHOLDS_PATH",
	} {
		t.Setenv(key, "")
	}

	cfg, err := LoadFromEnv()
	if err != nil {
		t.Fatalf("LoadFromEnv: %v", err)
	}

	if cfg.Host != "0.0.0.0" || cfg.Port != "8080" {
		t.Errorf("address defaults = %s:%s", cfg.Host, cfg.Port)
	}
	if cfg.RequestTimeout != 30*time.Second {
		t.Errorf("RequestTimeout = %s, want 30s", cfg.RequestTimeout)
	}
	if cfg.MaxRequestBodySize != 10*1024*1024 {
		t.Errorf("MaxRequestBodySize = %d, want 10MB", cfg.MaxRequestBodySize)
	}
	if cfg.DefaultThreshold != 8.0 {
		t.Errorf("DefaultThreshold = %g, want 8", cfg.DefaultThreshold)
	}
	if cfg.StorageBackend != StorageHTTP {
		t.Errorf("StorageBackend = %q, want http", cfg.StorageBackend)
	}
	if cfg.ModelPath != "" {
		t.Errorf("ModelPath = %q, want empty for CV-only default", cfg.ModelPath)
	}
}

func TestLoadFromEnvOverrides(t *testing.T) {
	t.Setenv("HOST", "127.0.0.1")
	t.Setenv("PORT", "9090")
	t.Setenv("REQUEST_TIMEOUT", "45s")
	t.Setenv("DEFAULT_THRESHOLD", "6.5")
	t.Setenv("MODEL_PATH", "/models/autoencoder.onnx")

	cfg, err := LoadFromEnv()
	if err != nil {
		t.Fatalf("LoadFromEnv: %v", err)
	}

	if cfg.Host != "127.0.0.1" || cfg.Port != "9090" {
		t.Errorf("address = %s", cfg.ServerAddress())
	}
	if cfg.RequestTimeout != 45*time.Second {
		t.Errorf("RequestTimeout = %s, want 45s", cfg.RequestTimeout)
	}
	if cfg.DefaultThreshold != 6.5 {
		t.Errorf("DefaultThreshold = %g, want 6.5", cfg.DefaultThreshold)
	}
	if cfg.ModelPath != "/models/autoencoder.onnx" {
		t.Errorf("ModelPath = %q", cfg.ModelPath)
	}
}

func TestLoadFromEnvRejectsInvalid(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{"non-numeric port", "PORT", "not-a-port"},
		{"port out of range", "PORT", "70000"},
		{"negative threshold", "DEFAULT_THRESHOLD", "-1"},
		{"negative body size", "MAX_REQUEST_BODY_SIZE", "-5"},
		{"unknown storage backend", "STORAGE_BACKEND", "ftp"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			if _, err := LoadFromEnv(); err == nil {
				t.Errorf("expected error for %s=%q", tt.key, tt.value)
			}
		})
	}
}

func TestLoadFromEnvAzureRequiresCredentials(t *testing.T) {
	t.Setenv("STORAGE_BACKEND", "azure")
	t.Setenv("AZURE_STORAGE_ACCOUNT", "")
	t.Setenv("AZURE_STORAGE_KEY", "")

	if _, err := LoadFromEnv(); err == nil {
		t.Fatal("expected error without azure credentials")
	}

	t.Setenv("AZURE_STORAGE_ACCOUNT", "notesacct")
	t.Setenv("AZURE_STORAGE_KEY", "c2VjcmV0")

	cfg, err := LoadFromEnv()
	if err != nil {
		t.Fatalf("LoadFromEnv: %v", err)
	}
	if cfg.StorageBackend != StorageAzure {
		t.Errorf("StorageBackend = %q, want azure", cfg.StorageBackend)
	}
}

func TestServerAddress(t *testing.T) {
	cfg := &Config{Host: " localhost ", Port: " 8080 "}
	if got := cfg.ServerAddress(); got != "localhost:8080" {
		t.Errorf("ServerAddress() = %q, want localhost:8080", got)
	}
}

func TestLoadTextureThresholdsEmptyPath(t *testing.T) {
	th, err := LoadTextureThresholds("")
	if err != nil {
		t.Fatalf("LoadTextureThresholds: %v", err)
	}
	if th != DefaultTextureThresholds() {
		t.Errorf("empty path must return defaults, got %+v", th)
	}
}

func TestLoadTextureThresholdsPartialOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "thresholds.yaml")
	data := "watermark_gradient_density: 0.1\nintaglio_variance: 200\n"
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	th, err := LoadTextureThresholds(path)
	if err != nil {
		t.Fatalf("LoadTextureThresholds: %v", err)
	}

	if th.WatermarkGradientDensity != 0.1 {
		t.Errorf("WatermarkGradientDensity = %g, want 0.1", th.WatermarkGradientDensity)
	}
	if th.IntaglioVariance != 200 {
		t.Errorf("IntaglioVariance = %g, want 200", th.IntaglioVariance)
	}
	// Unset fields keep their defaults.
	defaults := DefaultTextureThresholds()
	if th.ThreadRunFraction != defaults.ThreadRunFraction {
		t.Errorf("ThreadRunFraction = %g, want default %g", th.ThreadRunFraction, defaults.ThreadRunFraction)
	}
	if th.ColorShiftCovariance != defaults.ColorShiftCovariance {
		t.Errorf("ColorShiftCovariance = %g, want default %g", th.ColorShiftCovariance, defaults.ColorShiftCovariance)
	}
}

func TestLoadTextureThresholdsMissingFile(t *testing.T) {
	if _, err := LoadTextureThresholds("/nonexistent/thresholds.yaml"); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestLoadTextureThresholdsMalformedYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.yaml")
	if err := os.WriteFile(path, []byte("{not yaml"), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	if _, err := LoadTextureThresholds(path); err == nil {
		t.Fatal("expected error for malformed yaml")
	}
}
