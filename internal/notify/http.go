package notify

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/manav03panchal/indexlog/internal/config"
	"github.com/manav03panchal/indexlog/internal/logging"
)

// userAgent identifies indexlog to remote endpoints.
const userAgent = "indexlog/1.0"

// HTTPClient handles HTTP requests with retry logic.
type HTTPClient struct {
	client     *http.Client
	maxRetries int
	retryDelay []time.Duration
}

// NewHTTPClient creates a new HTTP client with settings from config.Global.
func NewHTTPClient() *HTTPClient {
	return NewHTTPClientWithConfig(config.Global.HTTP)
}

// NewHTTPClientWithConfig creates a new HTTP client with the given settings.
func NewHTTPClientWithConfig(cfg config.HTTPConfig) *HTTPClient {
	return &HTTPClient{
		client: &http.Client{
			Timeout: cfg.Timeout,
		},
		maxRetries: cfg.MaxRetries,
		retryDelay: cfg.RetryDelays,
	}
}

// SendResult contains the result of a send operation.
type SendResult struct {
	StatusCode int
	Body       []byte
	Duration   time.Duration
	Attempts   int
	Error      error
}

// delay returns the wait before the given attempt. Attempts past the end
// of the schedule reuse its last entry.
func (c *HTTPClient) delay(attempt int) time.Duration {
	if len(c.retryDelay) == 0 {
		return 0
	}
	if attempt < len(c.retryDelay) {
		return c.retryDelay[attempt]
	}
	return c.retryDelay[len(c.retryDelay)-1]
}

// Send sends a POST request to the given URL with retry logic.
// Network errors, 429, and 5xx responses are retried; other 4xx responses
// are not.
func (c *HTTPClient) Send(ctx context.Context, url string, contentType string, body []byte) *SendResult {
	result := &SendResult{}
	start := time.Now()

	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		result.Attempts = attempt + 1

		// Wait before retry (except first attempt)
		if attempt > 0 {
			logging.DebugLog("retrying scoring request",
				logging.KeyURL, logging.MaskURL(url),
				logging.KeyAttempt, attempt+1,
				logging.KeyError, result.Error,
			)
			select {
			case <-ctx.Done():
				result.Error = ctx.Err()
				result.Duration = time.Since(start)
				return result
			case <-time.After(c.delay(attempt)):
			}
		}

		// Create request
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
		if err != nil {
			result.Error = fmt.Errorf("failed to create request: %w", err)
			result.Duration = time.Since(start)
			return result
		}

		req.Header.Set("Content-Type", contentType)
		req.Header.Set("User-Agent", userAgent)

		// Send request
		resp, err := c.client.Do(req)
		if err != nil {
			result.Error = fmt.Errorf("request failed: %w", err)
			if ctx.Err() != nil {
				result.Duration = time.Since(start)
				return result
			}
			continue
		}

		// Read and close body
		bodyBytes, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
		resp.Body.Close()

		result.StatusCode = resp.StatusCode
		result.Body = bodyBytes

		// Check for success
		if resp.StatusCode >= 200 && resp.StatusCode < 300 {
			result.Error = nil
			result.Duration = time.Since(start)
			return result
		}

		// Rate limiting - should retry
		if resp.StatusCode == http.StatusTooManyRequests {
			result.Error = fmt.Errorf("rate limited (HTTP 429)")
			continue
		}

		// Server error - should retry
		if resp.StatusCode >= 500 {
			result.Error = fmt.Errorf("server error (HTTP %d): %s", resp.StatusCode, string(bodyBytes))
			continue
		}

		// Client error - don't retry
		result.Error = fmt.Errorf("client error (HTTP %d): %s", resp.StatusCode, string(bodyBytes))
		result.Duration = time.Since(start)
		return result
	}

	result.Duration = time.Since(start)
	if result.Error == nil {
		result.Error = fmt.Errorf("max retries exceeded")
	}
	return result
}
