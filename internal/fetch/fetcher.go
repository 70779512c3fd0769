// internal/fetch/fetcher.go

// Package fetch retrieves page markup for extraction. The plain HTTP
// fetcher covers static pages; the browser fetcher renders JavaScript-heavy
// pages through headless Chrome before handing the markup over.
package fetch

import "context"

// Fetcher retrieves the markup of one page
type Fetcher interface {
	// FetchPage returns the page HTML. An error means the page is
	// unavailable and should be skipped; it never aborts the whole run.
	FetchPage(ctx context.Context, url string) (string, error)

	// Close releases fetcher resources
	Close() error
}
