// internal/fetch/browser.go
package fetch

import (
	"context"
	"fmt"
	"time"

	"github.com/chromedp/chromedp"

	"github.com/valpere/MediaScrapexter/internal/utils"
)

// BrowserConfig configures the headless-browser page fetcher
type BrowserConfig struct {
	Timeout    time.Duration // per-page navigation timeout
	UserAgent  string
	SettleTime time.Duration // wait after load for lazy content to populate
}

// BrowserFetcher renders pages through headless Chrome before extraction.
// Sites that populate srcset attributes or inject video players from
// JavaScript only expose their media after rendering; the fetcher scrolls
// the page once so lazy loaders fire before the markup is captured.
type BrowserFetcher struct {
	allocCtx    context.Context
	allocCancel context.CancelFunc
	config      BrowserConfig
	logger      utils.Logger
}

// NewBrowserFetcher starts the Chrome allocator shared by all pages
func NewBrowserFetcher(config BrowserConfig, logger utils.Logger) (*BrowserFetcher, error) {
	if config.Timeout == 0 {
		config.Timeout = 45 * time.Second
	}
	if config.SettleTime == 0 {
		config.SettleTime = 2 * time.Second
	}
	if logger == nil {
		logger = utils.NewNopLogger()
	}

	opts := []chromedp.ExecAllocatorOption{
		chromedp.NoFirstRun,
		chromedp.NoDefaultBrowserCheck,
		chromedp.DisableGPU,
		chromedp.NoSandbox, // Required for Docker environments
		chromedp.Headless,
	}
	if config.UserAgent != "" {
		opts = append(opts, chromedp.UserAgent(config.UserAgent))
	}

	allocCtx, allocCancel := chromedp.NewExecAllocator(context.Background(), opts...)

	return &BrowserFetcher{
		allocCtx:    allocCtx,
		allocCancel: allocCancel,
		config:      config,
		logger:      logger,
	}, nil
}

// FetchPage renders the page and returns its post-JavaScript markup. Each
// page gets a fresh tab so one broken page cannot poison the next.
func (f *BrowserFetcher) FetchPage(ctx context.Context, url string) (string, error) {
	tabCtx, cancel := chromedp.NewContext(f.allocCtx)
	defer cancel()

	tabCtx, timeoutCancel := context.WithTimeout(tabCtx, f.config.Timeout)
	defer timeoutCancel()

	// stop early if the caller's context is canceled
	go func() {
		select {
		case <-ctx.Done():
			cancel()
		case <-tabCtx.Done():
		}
	}()

	f.logger.Debugf("rendering page: %s", url)

	var html string
	err := chromedp.Run(tabCtx,
		chromedp.Navigate(url),
		chromedp.WaitReady("body"),
		chromedp.Evaluate(`window.scrollTo(0, document.body.scrollHeight)`, nil),
		chromedp.Sleep(f.config.SettleTime),
		chromedp.Evaluate(`window.scrollTo(0, 0)`, nil),
		chromedp.OuterHTML("html", &html),
	)
	if err != nil {
		return "", utils.NewPermanentError(utils.ErrCodePageUnavailable,
			fmt.Sprintf("failed to render page: %s", url), err)
	}
	if html == "" {
		return "", utils.NewPermanentError(utils.ErrCodeEmptyBody,
			fmt.Sprintf("rendered page is empty: %s", url), nil)
	}

	return html, nil
}

// Close shuts the Chrome allocator down
func (f *BrowserFetcher) Close() error {
	f.allocCancel()
	return nil
}
