package transport

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"go-currency-guardian/internal/config"
	apperrors "go-currency-guardian/internal/errors"
	"go-currency-guardian/internal/logger"
	"go-currency-guardian/internal/service"
	"go-currency-guardian/internal/signal"
	"go-currency-guardian/internal/storage"
)

// AnalysisRequest is the JSON body of the URL-based intake. The multipart
// intake uses form fields with the same names instead.
type AnalysisRequest struct {
	URL          string   `json:"url" binding:"required,url"`
	Threshold    *float64 `json:"threshold,omitempty"`
	Signals      []string `json:"signals,omitempty"`
	ExpectedText string   `json:"expected_text,omitempty"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// NewHandler wires the HTTP routes. aiActive feeds the health endpoint so
// operators can see which mode the process settled into at startup.
func NewHandler(svc service.AnalysisService, fetcher storage.NoteFetcher, cfg *config.Config, aiActive bool) http.Handler {
	r := gin.Default()

	r.Use(
		requestSizeLimiter(cfg.MaxRequestBodySize),
		errorHandler(),
	)

	r.GET("/health", healthCheck(aiActive))
	r.POST("/analyze", analyzeNote(svc, fetcher, cfg))

	return r
}

func analyzeNote(svc service.AnalysisService, fetcher storage.NoteFetcher, cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		startTime := time.Now()
		ctx, cancel := context.WithTimeout(c.Request.Context(), cfg.RequestTimeout)
		defer cancel()

		logger.WithFields(logrus.Fields{
			"method":     c.Request.Method,
			"path":       c.Request.URL.Path,
			"user_agent": c.Request.UserAgent(),
			"ip":         c.ClientIP(),
		}).Info("Processing currency analysis request")

		var (
			imageBytes []byte
			reqCfg     service.Config
			err        error
		)
		if strings.HasPrefix(c.ContentType(), "multipart/form-data") {
			imageBytes, reqCfg, err = intakeUpload(c, cfg)
		} else {
			imageBytes, reqCfg, err = intakeURL(ctx, c, fetcher, cfg)
		}
		if err != nil {
			respondError(c, apperrors.GetStatusCode(err), "invalid analysis request", err)
			return
		}

		report, err := svc.Analyze(ctx, imageBytes, reqCfg)
		if err != nil {
			respondError(c, apperrors.GetStatusCode(err), "analysis failed", err)
			return
		}

		logger.WithFields(logrus.Fields{
			"is_real":            report.IsReal,
			"score":              report.Score,
			"confidence":         report.Confidence,
			"processing_time_ms": time.Since(startTime).Milliseconds(),
		}).Info("Currency analysis request completed")

		c.JSON(http.StatusOK, report)
	}
}

// intakeUpload reads the multipart "file" part plus optional form fields.
func intakeUpload(c *gin.Context, cfg *config.Config) ([]byte, service.Config, error) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		return nil, service.Config{}, apperrors.NewValidationError("missing file upload", err)
	}

	file, err := fileHeader.Open()
	if err != nil {
		return nil, service.Config{}, apperrors.NewValidationError("unreadable file upload", err)
	}
	defer file.Close()

	imageBytes, err := io.ReadAll(io.LimitReader(file, cfg.MaxRequestBodySize))
	if err != nil {
		return nil, service.Config{}, apperrors.NewValidationError("unreadable file upload", err)
	}

	reqCfg, err := buildConfig(cfg, c.PostForm("threshold"), splitSignals(c.PostForm("signals")), c.PostForm("expected_text"))
	if err != nil {
		return nil, service.Config{}, err
	}
	return imageBytes, reqCfg, nil
}

// intakeURL binds the JSON body and fetches the referenced image.
func intakeURL(ctx context.Context, c *gin.Context, fetcher storage.NoteFetcher, cfg *config.Config) ([]byte, service.Config, error) {
	var req AnalysisRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		return nil, service.Config{}, apperrors.NewValidationError("invalid request format", err)
	}
	if err := validateNoteURL(req.URL); err != nil {
		return nil, service.Config{}, err
	}

	threshold := ""
	if req.Threshold != nil {
		threshold = strconv.FormatFloat(*req.Threshold, 'f', -1, 64)
	}
	reqCfg, err := buildConfig(cfg, threshold, req.Signals, req.ExpectedText)
	if err != nil {
		return nil, service.Config{}, err
	}

	imageBytes, err := fetcher.FetchNote(ctx, req.URL)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, service.Config{}, apperrors.NewTimeoutError("note image fetch timeout", err)
		}
		return nil, service.Config{}, apperrors.NewNetworkError("failed to fetch note image", err)
	}
	return imageBytes, reqCfg, nil
}

// buildConfig resolves the per-request analysis config: the default is
// every signal at the configured threshold; callers can narrow the signal
// set and tune the cutoff.
func buildConfig(cfg *config.Config, threshold string, signals []string, expectedText string) (service.Config, error) {
	reqCfg := service.DefaultConfig(cfg.DefaultThreshold)
	reqCfg.ExpectedText = expectedText

	if threshold != "" {
		v, err := strconv.ParseFloat(strings.TrimSpace(threshold), 64)
		if err != nil || v < 0 {
			return service.Config{}, apperrors.NewValidationError(
				fmt.Sprintf("invalid threshold %q", threshold), err)
		}
		reqCfg.Threshold = v
	}

	if len(signals) > 0 {
		enabled := make(map[signal.Kind]bool, len(signals))
		for _, name := range signals {
			kind, err := parseKind(name)
			if err != nil {
				return service.Config{}, err
			}
			enabled[kind] = true
		}
		reqCfg.Enabled = enabled
	}
	return reqCfg, nil
}

func parseKind(name string) (signal.Kind, error) {
	kind := signal.Kind(strings.ToLower(strings.TrimSpace(name)))
	for _, known := range signal.EvaluationOrder {
		if kind == known {
			return kind, nil
		}
	}
	return "", apperrors.NewValidationError(fmt.Sprintf("unknown signal kind %q", name), nil)
}

func splitSignals(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	return strings.Split(raw, ",")
}

func validateNoteURL(noteURL string) error {
	parsedURL, err := url.Parse(noteURL)
	if err != nil {
		return apperrors.NewValidationError("Invalid URL format", err)
	}
	if parsedURL.Host == "" {
		return apperrors.NewValidationError("URL must have a valid host", nil)
	}
	return nil
}

func healthCheck(aiActive bool) gin.HandlerFunc {
	mode := string(signal.ModeLegacy)
	if aiActive {
		mode = string(signal.ModeHybrid)
	}
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":    "available",
			"version":   "1.0.0",
			"ai_active": aiActive,
			"mode":      mode,
			"time":      time.Now().UTC().Format(time.RFC3339),
		})
	}
}

// Middleware and helper functions
func requestSizeLimiter(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}

func errorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) > 0 {
			err := c.Errors.Last()
			respondError(c, determineStatusCode(err), "request processing failed", err)
		}
	}
}

func determineStatusCode(err error) int {
	if appErr, ok := err.(*apperrors.AppError); ok {
		return appErr.StatusCode
	}

	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.Is(err, context.Canceled):
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

func respondError(c *gin.Context, code int, message string, err error) {
	logger.WithError(err).WithFields(logrus.Fields{
		"status_code": code,
		"message":     message,
		"path":        c.Request.URL.Path,
		"method":      c.Request.Method,
		"ip":          c.ClientIP(),
	}).Error("Request failed")

	c.AbortWithStatusJSON(code, ErrorResponse{
		Error:   http.StatusText(code),
		Message: fmt.Sprintf("%s: %v", message, err),
	})
}
