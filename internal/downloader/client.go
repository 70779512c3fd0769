// internal/downloader/client.go
package downloader

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/time/rate"

	"github.com/valpere/MediaScrapexter/internal/utils"
)

// defaultUserAgent mirrors a mainstream browser so CDNs serve the same bytes
// a visitor would get
const defaultUserAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) " +
	"AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

// ClientConfig defines configuration options for the streaming media client
type ClientConfig struct {
	Timeout    time.Duration
	MaxRetries int
	RetryDelay time.Duration // base backoff, doubled per attempt
	ChunkSize  int
	UserAgent  string
	RateLimit  float64 // requests per second, 0 disables limiting
	RateBurst  int
}

// Client performs streamed media transfers with bounded retry and
// exponential backoff. Response bodies are copied to disk in chunks and are
// never buffered fully in memory.
type Client struct {
	httpClient  *http.Client
	rateLimiter *rate.Limiter
	config      ClientConfig
	logger      utils.Logger
}

// FetchResult describes one completed transfer
type FetchResult struct {
	Path     string
	Size     int64
	Ext      string
	Attempts int
}

// NewClient creates a media client with the given configuration
func NewClient(config ClientConfig, logger utils.Logger) *Client {
	if config.Timeout == 0 {
		config.Timeout = 30 * time.Second
	}
	if config.MaxRetries == 0 {
		config.MaxRetries = 3
	}
	if config.RetryDelay == 0 {
		config.RetryDelay = time.Second
	}
	if config.ChunkSize == 0 {
		config.ChunkSize = 8192
	}
	if config.UserAgent == "" {
		config.UserAgent = defaultUserAgent
	}
	if logger == nil {
		logger = utils.NewNopLogger()
	}

	var limiter *rate.Limiter
	if config.RateLimit > 0 {
		burst := config.RateBurst
		if burst <= 0 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(config.RateLimit), burst)
	}

	return &Client{
		httpClient: &http.Client{
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		rateLimiter: limiter,
		config:      config,
		logger:      logger,
	}
}

// FetchToFile downloads rawURL into destDir under baseName plus the detected
// extension. Each attempt restarts the stream from scratch; partial writes
// from a failed attempt are removed before the next one. The error of the
// final attempt is returned when the retry budget is exhausted.
func (c *Client) FetchToFile(ctx context.Context, rawURL, destDir, baseName string) (*FetchResult, error) {
	if err := validateFetchURL(rawURL); err != nil {
		return nil, err
	}

	var lastErr error
	for attempt := 1; attempt <= c.config.MaxRetries; attempt++ {
		if attempt > 1 {
			backoff := c.config.RetryDelay << (attempt - 2)
			c.logger.Debugf("backing off %s before attempt %d for %s", backoff, attempt, rawURL)
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return nil, fmt.Errorf("canceled while backing off: %w", ctx.Err())
			}
		}

		result, err := c.fetchOnce(ctx, rawURL, destDir, baseName)
		if err == nil {
			result.Attempts = attempt
			return result, nil
		}

		lastErr = err
		if !utils.IsRetryable(err) {
			c.logger.Warnf("permanent failure for %s: %v", rawURL, err)
			return nil, err
		}
		c.logger.Warnf("attempt %d/%d failed for %s: %v", attempt, c.config.MaxRetries, rawURL, err)
	}

	return nil, lastErr
}

// fetchOnce performs a single streamed transfer attempt
func (c *Client) fetchOnce(ctx context.Context, rawURL, destDir, baseName string) (*FetchResult, error) {
	if c.rateLimiter != nil {
		if err := c.rateLimiter.Wait(ctx); err != nil {
			return nil, utils.NewPermanentError(utils.ErrCodeDownloadFailed, "rate limiter interrupted", err)
		}
	}

	reqCtx, cancel := context.WithTimeout(ctx, c.config.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, utils.NewPermanentError(utils.ErrCodeInvalidURL, "failed to create request", err)
	}
	req.Header.Set("User-Agent", c.config.UserAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, classifyTransportError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, classifyStatus(resp.StatusCode)
	}

	ext := DetectExtension(resp.Header.Get("Content-Type"), rawURL)
	finalPath := filepath.Join(destDir, baseName+ext)
	partPath := finalPath + ".part"

	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return nil, utils.NewPermanentError(utils.ErrCodeDownloadFailed, "failed to create output directory", err)
	}

	size, err := c.streamToFile(resp.Body, partPath)
	if err != nil {
		os.Remove(partPath)
		return nil, err
	}

	if err := os.Rename(partPath, finalPath); err != nil {
		os.Remove(partPath)
		return nil, utils.NewPermanentError(utils.ErrCodeDownloadFailed, "failed to finalize file", err)
	}

	return &FetchResult{Path: finalPath, Size: size, Ext: ext}, nil
}

// streamToFile copies the body to path in configured chunks
func (c *Client) streamToFile(body io.Reader, path string) (int64, error) {
	f, err := os.Create(path)
	if err != nil {
		return 0, utils.NewPermanentError(utils.ErrCodeDownloadFailed, "failed to create file", err)
	}

	buf := make([]byte, c.config.ChunkSize)
	size, err := io.CopyBuffer(f, body, buf)
	if closeErr := f.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return 0, utils.NewTransientError(utils.ErrCodeDownloadFailed, "stream interrupted", err)
	}

	return size, nil
}

// validateFetchURL rejects malformed or non-http(s) URLs without consuming
// retry budget
func validateFetchURL(rawURL string) error {
	u, err := url.Parse(rawURL)
	if err != nil {
		return utils.NewPermanentError(utils.ErrCodeInvalidURL, fmt.Sprintf("malformed URL %q", rawURL), err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return utils.NewError(utils.ErrCodeUnsupportedScheme, fmt.Sprintf("unsupported scheme %q", u.Scheme))
	}
	return nil
}

// classifyTransportError maps transport failures onto the retry taxonomy:
// timeouts and connection-level failures are transient.
func classifyTransportError(err error) error {
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return utils.NewTransientError(utils.ErrCodeNetworkTimeout, "request timed out", err)
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return utils.NewTransientError(utils.ErrCodeNetworkTimeout, "request timed out", err)
	}
	if errors.Is(err, context.Canceled) {
		return utils.NewPermanentError(utils.ErrCodeDownloadFailed, "request canceled", err)
	}
	// connection resets, refused connections, DNS hiccups
	return utils.NewTransientError(utils.ErrCodeNetworkUnreachable, "transport failure", err)
}

// classifyStatus maps HTTP status codes onto the retry taxonomy: 5xx and 429
// are transient, every other non-2xx is permanent.
func classifyStatus(status int) error {
	msg := fmt.Sprintf("HTTP %d", status)
	if status >= 500 || status == http.StatusTooManyRequests {
		return utils.NewTransientError(utils.ErrCodeHTTPStatus, msg, nil).WithContext("status", status)
	}
	return utils.NewPermanentError(utils.ErrCodeHTTPStatus, msg, nil).WithContext("status", status)
}
