// internal/extractor/canonical.go
package extractor

import (
	"net/url"
	"strings"

	"github.com/valpere/MediaScrapexter/internal/utils"
)

// trackingParams are query parameters known to carry only analytics state.
// The list is deliberately short: a parameter that might vary resolution is
// never stripped, erring toward under-deduplication.
var trackingParams = map[string]bool{
	"fbclid":  true,
	"gclid":   true,
	"dclid":   true,
	"msclkid": true,
	"igshid":  true,
	"mc_cid":  true,
	"mc_eid":  true,
	"ref":     true,
	"ref_src": true,
	"_ga":     true,
}

// CanonicalURL normalizes a URL for duplicate detection only; the original
// URL is the one fetched. Scheme and host are lowercased, default ports and
// fragments dropped, tracking parameters removed, and the remaining query
// sorted.
func CanonicalURL(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}

	u.Scheme = strings.ToLower(u.Scheme)
	u.Host = strings.ToLower(u.Host)
	u.Fragment = ""

	if (u.Scheme == "http" && strings.HasSuffix(u.Host, ":80")) ||
		(u.Scheme == "https" && strings.HasSuffix(u.Host, ":443")) {
		u.Host = u.Hostname()
	}

	if u.RawQuery != "" {
		values := u.Query()
		for key := range values {
			if isTrackingParam(key) {
				values.Del(key)
			}
		}
		u.RawQuery = values.Encode() // Encode sorts keys
	}

	return u.String()
}

func isTrackingParam(key string) bool {
	lower := strings.ToLower(key)
	return trackingParams[lower] || strings.HasPrefix(lower, "utm_")
}

// Deduplicator suppresses assets whose canonical URL was already selected
// earlier in the same page's processing, regardless of origin. State is
// page-scoped; a fresh deduplicator is created per page.
type Deduplicator struct {
	seen   map[string]bool
	logger utils.Logger
}

// NewDeduplicator creates an empty page-scoped deduplicator
func NewDeduplicator(logger utils.Logger) *Deduplicator {
	if logger == nil {
		logger = utils.NewNopLogger()
	}
	return &Deduplicator{
		seen:   make(map[string]bool),
		logger: logger,
	}
}

// Admit reports whether the URL survives deduplication, recording it when it
// does
func (d *Deduplicator) Admit(rawURL string) bool {
	canonical := CanonicalURL(rawURL)
	if d.seen[canonical] {
		d.logger.Debugf("suppressing duplicate: %s (canonical %s)", rawURL, canonical)
		return false
	}
	d.seen[canonical] = true
	return true
}
