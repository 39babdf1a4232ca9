package storage

import (
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"net/http"
	"time"
)

// NoteFetcher retrieves banknote image bytes referenced by URL. Decoding is
// the analysis session's job so that undecodable payloads surface as the
// session's invalid-image error, not a transport error.
type NoteFetcher interface {
	FetchNote(ctx context.Context, noteURL string) ([]byte, error)
}

// HTTPNoteFetcher fetches note photos over HTTP with bounded retries.
type HTTPNoteFetcher struct {
	client   *http.Client
	maxBytes int64
}

func NewHTTPNoteFetcher(timeout time.Duration, maxBytes int64) *HTTPNoteFetcher {
	transport := &http.Transport{
		MaxIdleConns:        10,
		MaxIdleConnsPerHost: 2,
		IdleConnTimeout:     30 * time.Second,

		TLSHandshakeTimeout:   10 * time.Second,
		ResponseHeaderTimeout: 10 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,

		MaxResponseHeaderBytes: 4096,

		TLSClientConfig: &tls.Config{
			InsecureSkipVerify: true,
		},
	}

	return &HTTPNoteFetcher{
		client: &http.Client{
			Transport: transport,
			Timeout:   timeout,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= 3 {
					return fmt.Errorf("too many redirects (limit: 3)")
				}
				return nil
			},
		},
		maxBytes: maxBytes,
	}
}

// FetchNote downloads the image payload, retrying transient failures up to
// three attempts. 4xx responses are not retried.
func (h *HTTPNoteFetcher) FetchNote(ctx context.Context, noteURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, noteURL, nil)
	if err != nil {
		return nil, fmt.Errorf("invalid URL: %w", err)
	}
	req.Header.Set("Accept", "image/jpeg, image/png, image/webp, */*")
	req.Header.Set("User-Agent", "Currency-Guardian/1.0")

	var lastErr error
	for attempt := 0; attempt < 3; attempt++ {
		resp, err := h.client.Do(req)
		if err != nil {
			lastErr = err
		} else {
			data, done, ferr := h.consume(resp)
			if done {
				return data, ferr
			}
			lastErr = ferr
		}

		if attempt < 2 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(time.Duration(attempt+1) * time.Second):
			}
		}
	}
	return nil, fmt.Errorf("failed to fetch note image after 3 attempts: %w", lastErr)
}

// consume reads one response. done is true when the result is final (either
// success or a non-retryable client error).
func (h *HTTPNoteFetcher) consume(resp *http.Response) (data []byte, done bool, err error) {
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
		body, err := io.ReadAll(io.LimitReader(resp.Body, h.maxBytes+1))
		if err != nil {
			return nil, false, fmt.Errorf("read response body: %w", err)
		}
		if int64(len(body)) > h.maxBytes {
			return nil, true, fmt.Errorf("note image exceeds %d bytes", h.maxBytes)
		}
		return body, true, nil
	case resp.StatusCode >= 400 && resp.StatusCode < 500:
		return nil, true, fmt.Errorf("client error: status code %d", resp.StatusCode)
	default:
		return nil, false, fmt.Errorf("server error: status code %d", resp.StatusCode)
	}
}
