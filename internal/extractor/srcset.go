// internal/extractor/srcset.go
package extractor

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/valpere/MediaScrapexter/internal/media"
	"github.com/valpere/MediaScrapexter/internal/utils"
)

// DescriptorParser expands raw references into individual candidates,
// resolving srcset member URLs against the page base. Malformed descriptor
// tokens drop the single offending pair, never the whole reference.
type DescriptorParser struct {
	baseURL *url.URL
	logger  utils.Logger
}

// NewDescriptorParser creates a parser resolving against baseURL
func NewDescriptorParser(baseURL string, logger utils.Logger) (*DescriptorParser, error) {
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid base URL %q: %w", baseURL, err)
	}
	if logger == nil {
		logger = utils.NewNopLogger()
	}
	return &DescriptorParser{baseURL: base, logger: logger}, nil
}

// ExpandAll expands every reference, preserving extraction order
func (p *DescriptorParser) ExpandAll(refs []media.Reference) []media.Candidate {
	var candidates []media.Candidate
	for _, ref := range refs {
		candidates = append(candidates, p.Expand(ref)...)
	}
	return candidates
}

// Expand turns one reference into one or more candidates
func (p *DescriptorParser) Expand(ref media.Reference) []media.Candidate {
	if ref.RawDescriptor != "" {
		return p.expandSrcset(ref)
	}

	descriptor := media.Unknown()
	if ref.Kind == media.KindVideo {
		if label := resolutionFromURL(ref.URL); label != "" {
			descriptor = media.Resolution(label)
		}
	}

	return []media.Candidate{{
		URL:          ref.URL,
		Kind:         ref.Kind,
		Origin:       ref.Origin,
		Descriptor:   descriptor,
		ElementIndex: ref.ElementIndex,
		MimeType:     ref.MimeType,
	}}
}

// expandSrcset parses a comma-separated "url descriptor" list
func (p *DescriptorParser) expandSrcset(ref media.Reference) []media.Candidate {
	var candidates []media.Candidate

	for _, entry := range strings.Split(ref.RawDescriptor, ",") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}

		rawURL, token := splitSrcsetEntry(entry)
		descriptor, ok := parseDescriptorToken(token)
		if !ok {
			p.logger.Warnf("skipping malformed descriptor %q in srcset", token)
			continue
		}

		resolved := p.resolveMember(rawURL)
		if resolved == "" {
			continue
		}

		candidates = append(candidates, media.Candidate{
			URL:          resolved,
			Kind:         ref.Kind,
			Origin:       ref.Origin,
			Descriptor:   descriptor,
			ElementIndex: ref.ElementIndex,
			MimeType:     ref.MimeType,
		})
	}

	return candidates
}

// splitSrcsetEntry separates an entry into URL and descriptor token; entries
// without a token yield an empty token.
func splitSrcsetEntry(entry string) (string, string) {
	fields := strings.Fields(entry)
	switch len(fields) {
	case 0:
		return "", ""
	case 1:
		return fields[0], ""
	default:
		return fields[0], fields[len(fields)-1]
	}
}

// parseDescriptorToken parses a width ("2560w") or density ("3x") token.
// An empty token is a valid bare URL (Unknown); anything else malformed
// reports false.
func parseDescriptorToken(token string) (media.ResolvedDescriptor, bool) {
	if token == "" {
		return media.Unknown(), true
	}

	switch {
	case strings.HasSuffix(token, "w"):
		px, err := strconv.Atoi(strings.TrimSuffix(token, "w"))
		if err != nil || px <= 0 {
			return media.Unknown(), false
		}
		return media.Width(px), true
	case strings.HasSuffix(token, "x"):
		mult, err := strconv.ParseFloat(strings.TrimSuffix(token, "x"), 64)
		if err != nil || mult <= 0 {
			return media.Unknown(), false
		}
		return media.Density(mult), true
	default:
		return media.Unknown(), false
	}
}

// resolveMember resolves a srcset member URL to an absolute http(s) URL
func (p *DescriptorParser) resolveMember(raw string) string {
	if raw == "" {
		return ""
	}
	if i := strings.IndexByte(raw, '#'); i >= 0 {
		raw = raw[:i]
	}

	u, err := p.baseURL.Parse(raw)
	if err != nil {
		p.logger.Debugf("ignoring unparseable srcset URL %q: %v", raw, err)
		return ""
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return ""
	}
	return u.String()
}

// resolutionFromURL extracts a named resolution label ("1080p") from the URL
// path or filename; absence yields the empty string.
func resolutionFromURL(rawURL string) string {
	u, err := url.Parse(rawURL)
	path := rawURL
	if err == nil {
		path = u.Path
	}

	m := resolutionPattern.FindStringSubmatch(path)
	if m == nil {
		return ""
	}
	return strings.ToLower(m[0])
}
