// internal/extractor/types.go
package extractor

import (
	"fmt"
	"regexp"
)

// Options configures reference extraction and quality selection
type Options struct {
	// IgnorePatterns are case-insensitive regular expressions matched against
	// candidate URLs and descriptors; matching candidates are discarded
	// before ranking, so a thumbnail never wins a group.
	IgnorePatterns []string `yaml:"ignore_patterns" json:"ignore_patterns"`

	// UnwrapImageProxies rewrites image-optimizer URLs (such as Next.js
	// /_next/image) back to the underlying asset URL.
	UnwrapImageProxies bool `yaml:"unwrap_image_proxies" json:"unwrap_image_proxies"`
}

// DefaultIgnorePatterns covers thumbnails, small variants, UI chrome, and
// tracker pixels.
func DefaultIgnorePatterns() []string {
	return []string{
		`thumb`, `thumbnail`, `\bsmall\b`, `\btiny\b`,
		`\d{1,3}x\d{1,3}`,
		`(icon|logo|avatar)`,
		`-sm\b`, `-xs\b`, `-mini\b`,
		`(facebook\.com/tr|google-analytics|doubleclick|pixel\.gif)`,
		`(tracking|beacon|analytics)`,
	}
}

// lazyAttributes are the data attributes lazy-loading libraries stash real
// sources in; each is equivalent to its non-prefixed counterpart.
var lazyAttributes = []string{"data-srcset", "data-src", "data-original", "data-image", "data-lazy"}

var (
	cssURLPattern     = regexp.MustCompile(`url\(["']?([^"'()]+)["']?\)`)
	resolutionPattern = regexp.MustCompile(`(?i)([0-9]{3,4})p`)
	manifestPattern   = regexp.MustCompile(`https?://[^\s"'<>\\]+?\.(?:m3u8|mpd)(?:\?[^\s"'<>\\]*)?`)

	youtubePattern    = regexp.MustCompile(`(?:youtube\.com/embed/|youtu\.be/)([a-zA-Z0-9_-]{11})|youtube\.com`)
	vimeoPattern      = regexp.MustCompile(`(?:player\.)?vimeo\.com/(?:video/)?(\d+)`)
	cloudflarePattern = regexp.MustCompile(`cloudflarestream\.com|cdn-cgi/video`)
	directVideoEnding = regexp.MustCompile(`(?i)\.(mp4|webm|m3u8|mpd)(\?|$)`)
)

// compileIgnorePatterns compiles the configured patterns case-insensitively
func compileIgnorePatterns(patterns []string) ([]*regexp.Regexp, error) {
	compiled := make([]*regexp.Regexp, 0, len(patterns))
	for _, p := range patterns {
		re, err := regexp.Compile(`(?i)` + p)
		if err != nil {
			return nil, fmt.Errorf("invalid ignore pattern %q: %w", p, err)
		}
		compiled = append(compiled, re)
	}
	return compiled, nil
}
