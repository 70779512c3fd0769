// internal/fetch/http.go
package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/valpere/MediaScrapexter/internal/utils"
)

// HTTPConfig configures the plain HTTP page fetcher
type HTTPConfig struct {
	Timeout    time.Duration
	MaxRetries int // total attempts, including the first
	RetryDelay time.Duration
	UserAgent  string
}

// HTTPFetcher fetches pages over plain HTTP. Server errors and timeouts are
// retried with exponential backoff; client errors fail the page immediately.
type HTTPFetcher struct {
	client *http.Client
	config HTTPConfig
	logger utils.Logger
}

// NewHTTPFetcher creates an HTTP page fetcher
func NewHTTPFetcher(config HTTPConfig, logger utils.Logger) *HTTPFetcher {
	if config.Timeout == 0 {
		config.Timeout = 30 * time.Second
	}
	if config.MaxRetries <= 0 {
		config.MaxRetries = 3
	}
	if config.RetryDelay == 0 {
		config.RetryDelay = time.Second
	}
	if logger == nil {
		logger = utils.NewNopLogger()
	}

	return &HTTPFetcher{
		client: &http.Client{Timeout: config.Timeout},
		config: config,
		logger: logger,
	}
}

// FetchPage retrieves the page body as a string
func (f *HTTPFetcher) FetchPage(ctx context.Context, url string) (string, error) {
	var lastErr error

	for attempt := 1; attempt <= f.config.MaxRetries; attempt++ {
		if attempt > 1 {
			delay := f.config.RetryDelay << (attempt - 2)
			f.logger.Warnf("retrying page fetch in %v (attempt %d/%d): %s",
				delay, attempt, f.config.MaxRetries, url)
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return "", ctx.Err()
			}
		}

		body, err := f.fetchOnce(ctx, url)
		if err == nil {
			return body, nil
		}
		lastErr = err
		if !utils.IsRetryable(err) {
			return "", err
		}
	}

	return "", lastErr
}

func (f *HTTPFetcher) fetchOnce(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", utils.NewPermanentError(utils.ErrCodeInvalidURL,
			fmt.Sprintf("invalid page URL: %s", url), err)
	}
	if f.config.UserAgent != "" {
		req.Header.Set("User-Agent", f.config.UserAgent)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		var netErr net.Error
		if errors.As(err, &netErr) && netErr.Timeout() {
			return "", utils.NewTransientError(utils.ErrCodeNetworkTimeout,
				fmt.Sprintf("page fetch timed out: %s", url), err)
		}
		return "", utils.NewTransientError(utils.ErrCodeNetworkUnreachable,
			fmt.Sprintf("page fetch failed: %v", err), err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		code := utils.ErrCodePageUnavailable
		msg := fmt.Sprintf("page returned HTTP %d: %s", resp.StatusCode, url)
		if resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests {
			return "", utils.NewTransientError(code, msg, nil)
		}
		return "", utils.NewPermanentError(code, msg, nil)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", utils.NewTransientError(utils.ErrCodeNetworkUnreachable,
			fmt.Sprintf("failed to read page body: %v", err), err)
	}
	if len(body) == 0 {
		return "", utils.NewPermanentError(utils.ErrCodeEmptyBody,
			fmt.Sprintf("page returned an empty body: %s", url), nil)
	}

	return string(body), nil
}

// Close is a no-op for the HTTP fetcher
func (f *HTTPFetcher) Close() error { return nil }
