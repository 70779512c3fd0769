// internal/extractor/video.go
package extractor

import (
	"net/url"
	"strings"

	"github.com/valpere/MediaScrapexter/internal/media"
)

// VideoTypeOf classifies a video candidate by platform, MIME type, or URL
// extension: mp4, webm, ogv, hls, dash, youtube, vimeo, cloudflare_stream,
// or unknown.
func VideoTypeOf(rawURL, mimeType string) string {
	switch {
	case youtubePattern.MatchString(rawURL):
		return "youtube"
	case vimeoPattern.MatchString(rawURL):
		return "vimeo"
	case cloudflarePattern.MatchString(rawURL):
		return "cloudflare_stream"
	}

	mime := strings.ToLower(mimeType)
	switch {
	case strings.Contains(mime, "mp4"):
		return "mp4"
	case strings.Contains(mime, "webm"):
		return "webm"
	case strings.Contains(mime, "ogg"), strings.Contains(mime, "ogv"):
		return "ogv"
	}

	switch pathExtension(rawURL) {
	case ".mp4":
		return "mp4"
	case ".webm":
		return "webm"
	case ".ogv", ".ogg":
		return "ogv"
	case ".m3u8":
		return "hls"
	case ".mpd":
		return "dash"
	}

	return "unknown"
}

// IsExternalVideoType reports whether assets of this type are recorded as
// external references rather than fetched (platform embeds and streaming
// manifests; their content is DRM-gated or segmented).
func IsExternalVideoType(videoType string) bool {
	switch videoType {
	case "hls", "dash", "youtube", "vimeo", "cloudflare_stream":
		return true
	}
	return false
}

// videoFormatPriority orders containers for the video tie-break
func videoFormatPriority(c media.Candidate) int {
	switch VideoTypeOf(c.URL, c.MimeType) {
	case "mp4":
		return 10
	case "webm":
		return 5
	default:
		return 1
	}
}

// pathExtension returns the lowercased extension of the URL path, query and
// fragment excluded
func pathExtension(rawURL string) string {
	path := rawURL
	if u, err := url.Parse(rawURL); err == nil && u.Path != "" {
		path = u.Path
	}
	path = strings.ToLower(path)
	if i := strings.LastIndexByte(path, '.'); i >= 0 && i > strings.LastIndexByte(path, '/') {
		return path[i:]
	}
	return ""
}
