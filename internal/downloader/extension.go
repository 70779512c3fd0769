// internal/downloader/extension.go
package downloader

import (
	"net/url"
	"strings"
)

// mimeToExt maps transfer content types to preserved file extensions
var mimeToExt = map[string]string{
	"image/jpeg":      ".jpg",
	"image/jpg":       ".jpg",
	"image/png":       ".png",
	"image/gif":       ".gif",
	"image/webp":      ".webp",
	"image/avif":      ".avif",
	"image/svg+xml":   ".svg",
	"video/mp4":       ".mp4",
	"video/webm":      ".webm",
	"video/quicktime": ".mov",
	"video/x-msvideo": ".avi",
}

// knownExtensions are accepted when inferring from the URL path
var knownExtensions = []string{
	".jpg", ".jpeg", ".png", ".gif", ".webp", ".avif", ".svg",
	".mp4", ".webm", ".mov", ".avi", ".ogv", ".ogg",
}

// unknownExtension marks downloads whose type could not be identified; such
// files are discarded rather than kept under a meaningless name.
const unknownExtension = ".bin"

// DetectExtension infers the file extension from the declared content type,
// falling back to the URL path, then to the unknown marker.
func DetectExtension(contentType, rawURL string) string {
	ct := strings.ToLower(contentType)
	for mime, ext := range mimeToExt {
		if strings.Contains(ct, mime) {
			return ext
		}
	}

	path := rawURL
	if u, err := url.Parse(rawURL); err == nil {
		path = u.Path
	}
	lower := strings.ToLower(path)
	for _, ext := range knownExtensions {
		if strings.HasSuffix(lower, ext) {
			return ext
		}
	}

	return unknownExtension
}
