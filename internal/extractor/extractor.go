// internal/extractor/extractor.go
package extractor

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/valpere/MediaScrapexter/internal/media"
	"github.com/valpere/MediaScrapexter/internal/utils"
)

// noElement marks references that carry no usable element identity; their
// logical group falls back to the URL.
const noElement = -1

// Extractor scans a page's markup and style text and produces the flat list
// of raw media references. Extraction is read-only over the input and
// assigns a synthetic element index used for logical grouping downstream.
type Extractor struct {
	baseURL *url.URL
	opts    Options
	logger  utils.Logger

	nextElem int
	refs     []media.Reference
}

// New creates an extractor resolving relative URLs against baseURL
func New(baseURL string, opts Options, logger utils.Logger) (*Extractor, error) {
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid base URL %q: %w", baseURL, err)
	}
	if logger == nil {
		logger = utils.NewNopLogger()
	}

	return &Extractor{
		baseURL: base,
		opts:    opts,
		logger:  logger,
	}, nil
}

// Extract parses html and returns every media reference found in markup,
// inline styles, style blocks, and script-adjacent manifest URLs.
func (e *Extractor) Extract(html string) ([]media.Reference, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}

	e.refs = nil
	e.nextElem = 0

	e.extractPictures(doc)
	e.extractImages(doc)
	e.extractLazyLoaded(doc)
	e.extractInlineStyles(doc)
	e.extractStyleBlocks(doc)
	e.extractVideos(doc)
	e.extractIframes(doc)
	e.extractScriptManifests(doc)

	e.logger.Infof("extracted %d media references", len(e.refs))
	return e.refs, nil
}

// extractPictures handles <picture> elements; every <source> and the inner
// <img> of one picture share an element index and therefore one logical group.
func (e *Extractor) extractPictures(doc *goquery.Document) {
	doc.Find("picture").Each(func(_ int, picture *goquery.Selection) {
		elem := e.newElement()

		picture.Find("source").Each(func(_ int, source *goquery.Selection) {
			if srcset, ok := source.Attr("srcset"); ok && strings.TrimSpace(srcset) != "" {
				e.addRaw(media.Reference{
					Kind:          media.KindImage,
					Origin:        media.OriginPictureSource,
					RawDescriptor: srcset,
					ElementIndex:  elem,
					MimeType:      source.AttrOr("type", ""),
				})
			}
		})

		picture.Find("img").Each(func(_ int, img *goquery.Selection) {
			e.addImageElement(img, elem)
		})
	})
}

// extractImages handles standalone <img> tags (those inside <picture> were
// already claimed by their picture element)
func (e *Extractor) extractImages(doc *goquery.Document) {
	doc.Find("img").Each(func(_ int, img *goquery.Selection) {
		if img.Closest("picture").Length() > 0 {
			return
		}
		e.addImageElement(img, e.newElement())
	})
}

// addImageElement records the srcset and src of one image element under the
// given element index
func (e *Extractor) addImageElement(img *goquery.Selection, elem int) {
	if srcset, ok := img.Attr("srcset"); ok && strings.TrimSpace(srcset) != "" {
		e.addRaw(media.Reference{
			Kind:          media.KindImage,
			Origin:        media.OriginImgSrcset,
			RawDescriptor: srcset,
			ElementIndex:  elem,
		})
	}
	if src, ok := img.Attr("src"); ok {
		e.addURL(media.Reference{
			Kind:         media.KindImage,
			Origin:       media.OriginImgSrcset,
			ElementIndex: elem,
		}, src)
	}
}

// extractLazyLoaded scans img, div, span, and anchor elements for
// lazy-loading data attributes. Attribute names are matched
// case-insensitively; values behave like their non-prefixed counterparts.
func (e *Extractor) extractLazyLoaded(doc *goquery.Document) {
	doc.Find("img, div, span, a").Each(func(_ int, sel *goquery.Selection) {
		node := sel.Get(0)
		if node == nil {
			return
		}

		attrs := make(map[string]string, len(node.Attr))
		for _, attr := range node.Attr {
			attrs[strings.ToLower(attr.Key)] = attr.Val
		}

		// first attribute in priority order wins for this element
		for _, name := range lazyAttributes {
			value, ok := attrs[name]
			if !ok || strings.TrimSpace(value) == "" {
				continue
			}

			elem := e.newElement()
			if name == "data-srcset" {
				e.addRaw(media.Reference{
					Kind:          media.KindImage,
					Origin:        media.OriginLazyAttr,
					RawDescriptor: value,
					ElementIndex:  elem,
				})
			} else {
				e.addURL(media.Reference{
					Kind:         media.KindImage,
					Origin:       media.OriginLazyAttr,
					ElementIndex: elem,
				}, value)
			}
			break
		}
	})
}

// extractInlineStyles pulls url(...) tokens out of style attributes
func (e *Extractor) extractInlineStyles(doc *goquery.Document) {
	doc.Find("[style]").Each(func(_ int, sel *goquery.Selection) {
		style := sel.AttrOr("style", "")
		for _, raw := range cssURLs(style) {
			e.addURL(media.Reference{
				Kind:         media.KindImage,
				Origin:       media.OriginCssBackground,
				ElementIndex: noElement,
			}, raw)
		}
	})
}

// extractStyleBlocks pulls url(...) tokens out of <style> blocks
func (e *Extractor) extractStyleBlocks(doc *goquery.Document) {
	doc.Find("style").Each(func(_ int, sel *goquery.Selection) {
		for _, raw := range cssURLs(sel.Text()) {
			e.addURL(media.Reference{
				Kind:         media.KindImage,
				Origin:       media.OriginCssBackground,
				ElementIndex: noElement,
			}, raw)
		}
	})
}

// cssURLs extracts url(...) arguments from a chunk of CSS text
func cssURLs(css string) []string {
	matches := cssURLPattern.FindAllStringSubmatch(css, -1)
	urls := make([]string, 0, len(matches))
	for _, m := range matches {
		urls = append(urls, strings.TrimSpace(m[1]))
	}
	return urls
}

// extractVideos handles <video> elements; all <source> children of one video
// share its element index so selection picks a single variant per player.
func (e *Extractor) extractVideos(doc *goquery.Document) {
	doc.Find("video").Each(func(_ int, video *goquery.Selection) {
		elem := e.newElement()

		video.Find("source").Each(func(_ int, source *goquery.Selection) {
			if src, ok := source.Attr("src"); ok {
				e.addURL(media.Reference{
					Kind:         media.KindVideo,
					Origin:       videoOrigin(src),
					ElementIndex: elem,
					MimeType:     source.AttrOr("type", ""),
				}, src)
			}
		})

		if src, ok := video.Attr("src"); ok {
			e.addURL(media.Reference{
				Kind:         media.KindVideo,
				Origin:       videoOrigin(src),
				ElementIndex: elem,
			}, src)
		}
	})
}

// videoOrigin tags streaming manifests distinctly from direct video sources
func videoOrigin(src string) media.Origin {
	if isManifestURL(src) {
		return media.OriginStreamManifest
	}
	return media.OriginVideoTag
}

func isManifestURL(raw string) bool {
	lower := strings.ToLower(raw)
	if i := strings.IndexAny(lower, "?#"); i >= 0 {
		lower = lower[:i]
	}
	return strings.HasSuffix(lower, ".m3u8") || strings.HasSuffix(lower, ".mpd")
}

// extractIframes records third-party player embeds. Only URLs matching a
// known video host pattern (or pointing straight at a video file) are kept;
// generic iframes are not media.
func (e *Extractor) extractIframes(doc *goquery.Document) {
	doc.Find("iframe").Each(func(_ int, iframe *goquery.Selection) {
		src, ok := iframe.Attr("src")
		if !ok || strings.TrimSpace(src) == "" {
			return
		}

		resolved := e.resolve(src)
		if resolved == "" {
			return
		}
		if !isEmbedURL(resolved) {
			e.logger.Debugf("skipping non-video iframe: %s", resolved)
			return
		}

		e.refs = append(e.refs, media.Reference{
			URL:          resolved,
			Kind:         media.KindVideo,
			Origin:       media.OriginIframeEmbed,
			ElementIndex: e.newElement(),
		})
	})
}

// isEmbedURL reports whether the URL belongs to a known video platform or a
// directly addressed video file
func isEmbedURL(u string) bool {
	return youtubePattern.MatchString(u) ||
		vimeoPattern.MatchString(u) ||
		cloudflarePattern.MatchString(u) ||
		directVideoEnding.MatchString(u)
}

// extractScriptManifests finds HLS/DASH manifest URLs sitting in script text.
// Manifests are recorded as external references; their segments are never
// fetched.
func (e *Extractor) extractScriptManifests(doc *goquery.Document) {
	doc.Find("script").Each(func(_ int, script *goquery.Selection) {
		for _, m := range manifestPattern.FindAllString(script.Text(), -1) {
			e.refs = append(e.refs, media.Reference{
				URL:          m,
				Kind:         media.KindVideo,
				Origin:       media.OriginStreamManifest,
				ElementIndex: noElement,
			})
		}
	})
}

// addRaw records a reference that still carries an unparsed descriptor list.
// Its member URLs are resolved later during descriptor expansion.
func (e *Extractor) addRaw(ref media.Reference) {
	e.refs = append(e.refs, ref)
}

// addURL resolves a single-URL reference and records it when the URL is a
// usable http(s) target
func (e *Extractor) addURL(ref media.Reference, raw string) {
	resolved := e.resolve(raw)
	if resolved == "" {
		return
	}
	ref.URL = resolved
	e.refs = append(e.refs, ref)
}

// resolve turns raw into an absolute http(s) URL, dropping fragments and
// unwrapping image-optimizer proxies; returns "" for unusable URLs.
func (e *Extractor) resolve(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	if i := strings.IndexByte(raw, '#'); i >= 0 {
		raw = raw[:i]
	}

	u, err := e.baseURL.Parse(raw)
	if err != nil {
		e.logger.Debugf("ignoring unparseable URL %q: %v", raw, err)
		return ""
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		e.logger.Debugf("ignoring non-http(s) URL: %s", raw)
		return ""
	}
	if u.Host == "" {
		return ""
	}

	if e.opts.UnwrapImageProxies {
		if unwrapped := unwrapImageProxy(u, e.baseURL); unwrapped != "" {
			return unwrapped
		}
	}

	return u.String()
}

// unwrapImageProxy recovers the original asset URL from optimizer endpoints
// that recompress on the fly (Next.js /_next/image?url=...). Returns "" when
// the URL is not a known proxy.
func unwrapImageProxy(u *url.URL, base *url.URL) string {
	if !strings.HasPrefix(u.Path, "/_next/image") {
		return ""
	}
	inner := u.Query().Get("url")
	if inner == "" {
		return ""
	}
	resolved, err := base.Parse(inner)
	if err != nil || (resolved.Scheme != "http" && resolved.Scheme != "https") {
		return ""
	}
	return resolved.String()
}

func (e *Extractor) newElement() int {
	idx := e.nextElem
	e.nextElem++
	return idx
}
