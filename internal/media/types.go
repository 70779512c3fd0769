// internal/media/types.go
package media

import "fmt"

// Kind distinguishes image and video assets. The two kinds are numbered
// independently and land in separate output subdirectories.
type Kind int

const (
	KindImage Kind = iota
	KindVideo
)

// String returns the string representation of the media kind
func (k Kind) String() string {
	switch k {
	case KindImage:
		return "image"
	case KindVideo:
		return "video"
	default:
		return "unknown"
	}
}

// Origin identifies the syntactic source a reference was extracted from.
// The set is closed so that downstream switches can be exhaustive.
type Origin int

const (
	OriginImgSrcset Origin = iota
	OriginPictureSource
	OriginLazyAttr
	OriginCssBackground
	OriginVideoTag
	OriginIframeEmbed
	OriginStreamManifest
)

// String returns the string representation of the origin
func (o Origin) String() string {
	switch o {
	case OriginImgSrcset:
		return "img/srcset"
	case OriginPictureSource:
		return "picture/source"
	case OriginLazyAttr:
		return "lazy"
	case OriginCssBackground:
		return "css/background"
	case OriginVideoTag:
		return "video_tag"
	case OriginIframeEmbed:
		return "iframe"
	case OriginStreamManifest:
		return "stream_manifest"
	default:
		return "unknown"
	}
}

// DescriptorKind discriminates the variants of ResolvedDescriptor
type DescriptorKind int

const (
	DescriptorUnknown DescriptorKind = iota
	DescriptorWidth
	DescriptorDensity
	DescriptorResolution
)

// ResolvedDescriptor is the quality signal attached to a candidate: a pixel
// width ("2560w"), a pixel density ("3x"), a named resolution ("1080p"), or
// nothing at all. Exactly one variant field is meaningful per Kind.
type ResolvedDescriptor struct {
	Kind    DescriptorKind
	Width   int     // DescriptorWidth
	Density float64 // DescriptorDensity
	Label   string  // DescriptorResolution, e.g. "1080p"
}

// Unknown returns the zero-information descriptor
func Unknown() ResolvedDescriptor {
	return ResolvedDescriptor{Kind: DescriptorUnknown}
}

// Width returns a width descriptor in pixels
func Width(px int) ResolvedDescriptor {
	return ResolvedDescriptor{Kind: DescriptorWidth, Width: px}
}

// Density returns a pixel-density descriptor
func Density(multiplier float64) ResolvedDescriptor {
	return ResolvedDescriptor{Kind: DescriptorDensity, Density: multiplier}
}

// Resolution returns a named-resolution descriptor
func Resolution(label string) ResolvedDescriptor {
	return ResolvedDescriptor{Kind: DescriptorResolution, Label: label}
}

// String renders the descriptor the way it appears in markup
func (d ResolvedDescriptor) String() string {
	switch d.Kind {
	case DescriptorWidth:
		return fmt.Sprintf("%dw", d.Width)
	case DescriptorDensity:
		return fmt.Sprintf("%gx", d.Density)
	case DescriptorResolution:
		return d.Label
	default:
		return "unknown"
	}
}

// Reference is a raw media pointer found in markup or style text, before
// descriptor expansion. ElementIndex is a synthetic identity assigned during
// extraction; references sharing an index came from the same DOM element and
// form one logical group.
type Reference struct {
	URL           string
	Kind          Kind
	Origin        Origin
	RawDescriptor string // srcset-style list, empty when the source had none
	ElementIndex  int
	MimeType      string // type attribute of the source tag, when present
}

// Candidate is one (url, descriptor) pair expanded from a Reference
type Candidate struct {
	URL          string
	Kind         Kind
	Origin       Origin
	Descriptor   ResolvedDescriptor
	ElementIndex int
	MimeType     string
}

// GroupKey returns the logical-group identity for the candidate. Extraction
// assigns a distinct element index to every element it visits; candidates
// from sources without element identity fall back to the descriptor-stripped
// base URL.
func (c Candidate) GroupKey() string {
	if c.ElementIndex >= 0 {
		return fmt.Sprintf("elem:%d", c.ElementIndex)
	}
	return "url:" + c.URL
}

// SelectedAsset is the winning candidate of a logical group, carrying its
// page-scoped sequential id ("img_001", "vid_001", ...)
type SelectedAsset struct {
	AssetID      string
	Candidate    Candidate
	CanonicalURL string // normalized form used for duplicate detection only
	VideoType    string // mp4/webm/ogv/hls/dash/youtube/vimeo/..., videos only
	External     bool   // recorded as a reference, never fetched
}

// DownloadStatus is the terminal state of a download task
type DownloadStatus int

const (
	StatusSuccess DownloadStatus = iota
	StatusFailed
)

// String returns the string representation of the download status
func (s DownloadStatus) String() string {
	if s == StatusSuccess {
		return "success"
	}
	return "failed"
}

// DownloadResult records the outcome of fetching one selected asset. Failed
// results stay in the page report; ExternalReference is set instead of
// LocalPath for embeds and streaming manifests.
type DownloadResult struct {
	Asset             SelectedAsset
	Status            DownloadStatus
	FailureReason     string
	LocalPath         string
	FileSize          int64
	ExternalReference string
	Attempts          int
}
