package config

import (
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"
	"time"
)

// StorageBackend selects how banknote images referenced by URL are fetched.
type StorageBackend string

const (
	StorageHTTP  StorageBackend = "http"
	StorageAzure StorageBackend = "azure"
)

type Config struct {
	Host               string
	Port               string
	RequestTimeout     time.Duration
	ImageFetchTimeout  time.Duration
	MaxRequestBodySize int64

	// Decision cutoff applied when the caller does not supply one.
	// Same unit scale as the fused score, not a percentage.
	DefaultThreshold float64

	// Autoencoder artifact. An empty ModelPath means the service runs in
	// CV-only mode from the start.
	ModelPath         string
	ONNXSharedLibrary string

	StorageBackend      StorageBackend
	AzureStorageAccount string
	AzureStorageKey     string

	// Optional YAML file overriding the forensic texture cutoffs.
	TextureThresholdsPath string
}

func (c *Config) ServerAddress() string {
	host := strings.TrimSpace(c.Host)
	port := strings.TrimSpace(c.Port)
	return net.JoinHostPort(host, port)
}

func LoadFromEnv() (*Config, error) {
	cfg := &Config{
		Host:                  getEnvOrDefault("HOST", "0.0.0.0"),
		Port:                  getEnvOrDefault("PORT", "8080"),
		RequestTimeout:        parseDurationOrDefault("REQUEST_TIMEOUT", 30*time.Second),
		ImageFetchTimeout:     parseDurationOrDefault("IMAGE_FETCH_TIMEOUT", 15*time.Second),
		MaxRequestBodySize:    parseIntOrDefault("MAX_REQUEST_BODY_SIZE", 10*1024*1024), // 10MB
		DefaultThreshold:      parseFloatOrDefault("DEFAULT_THRESHOLD", 8.0),
		ModelPath:             os.Getenv("MODEL_PATH"),
		ONNXSharedLibrary:     os.Getenv("ONNX_SHARED_LIBRARY"),
		StorageBackend:        StorageBackend(getEnvOrDefault("STORAGE_BACKEND", string(StorageHTTP))),
		AzureStorageAccount:   os.Getenv("AZURE_STORAGE_ACCOUNT"),
		AzureStorageKey:       os.Getenv("AZURE_STORAGE_KEY"),
		TextureThresholdsPath: os.Getenv("TEXTURE_THRESHOLDS_PATH"),
	}

	p, err := strconv.Atoi(strings.TrimSpace(cfg.Port))
	if err != nil || p < 1 || p > 65535 {
		return nil, fmt.Errorf("invalid PORT: %q", cfg.Port)
	}
	if cfg.MaxRequestBodySize <= 0 {
		return nil, fmt.Errorf("MAX_REQUEST_BODY_SIZE must be > 0 (got %d)", cfg.MaxRequestBodySize)
	}
	if cfg.RequestTimeout <= 0 || cfg.ImageFetchTimeout <= 0 {
		return nil, fmt.Errorf("timeouts must be > 0 (got request=%s, fetch=%s)",
			cfg.RequestTimeout, cfg.ImageFetchTimeout)
	}
	if cfg.DefaultThreshold < 0 {
		return nil, fmt.Errorf("DEFAULT_THRESHOLD must be >= 0 (got %g)", cfg.DefaultThreshold)
	}
	switch cfg.StorageBackend {
	case StorageHTTP:
	case StorageAzure:
		if cfg.AzureStorageAccount == "" || cfg.AzureStorageKey == "" {
			return nil, fmt.Errorf("azure storage backend requires AZURE_STORAGE_ACCOUNT and AZURE_STORAGE_KEY")
		}
	default:
		return nil, fmt.Errorf("unsupported STORAGE_BACKEND: %q", cfg.StorageBackend)
	}
	return cfg, nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func parseDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(strings.TrimSpace(value)); err == nil && duration > 0 {
			return duration
		}
	}
	return defaultValue
}

func parseIntOrDefault(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func parseFloatOrDefault(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(strings.TrimSpace(value), 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}
