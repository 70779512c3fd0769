// internal/pipeline/pipeline.go
package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/valpere/MediaScrapexter/internal/downloader"
	"github.com/valpere/MediaScrapexter/internal/extractor"
	"github.com/valpere/MediaScrapexter/internal/media"
	"github.com/valpere/MediaScrapexter/internal/utils"
	"github.com/valpere/MediaScrapexter/pkg/types"
)

// Metrics receives pipeline events; a nil Metrics disables instrumentation
type Metrics interface {
	ReferencesExtracted(count int)
	AssetsSelected(count int)
	DuplicatesSuppressed(count int)
	DownloadCompleted(success bool, attempts int, bytes int64)
	PageProcessed(images, videos, failures int)
}

// Config holds the immutable pipeline configuration
type Config struct {
	Extractor  extractor.Options
	Downloader downloader.ManagerConfig
}

// Pipeline processes one page end-to-end: extraction, descriptor expansion,
// quality selection, deduplication, download, and report assembly. Discovery
// through dedup run sequentially on the already-fetched text; only downloads
// are concurrent. A Pipeline holds no per-page state and may be reused for
// any number of pages.
type Pipeline struct {
	config   Config
	selector *extractor.Selector
	manager  *downloader.Manager
	metrics  Metrics
	logger   utils.Logger
}

// New creates a pipeline. index may be nil to disable the cross-run download
// skip, metrics may be nil to disable instrumentation.
func New(config Config, index downloader.Index, metrics Metrics, logger utils.Logger) (*Pipeline, error) {
	if logger == nil {
		logger = utils.NewNopLogger()
	}

	patterns := config.Extractor.IgnorePatterns
	if patterns == nil {
		patterns = extractor.DefaultIgnorePatterns()
	}
	selector, err := extractor.NewSelector(patterns, logger)
	if err != nil {
		return nil, fmt.Errorf("invalid selector configuration: %w", err)
	}

	return &Pipeline{
		config:   config,
		selector: selector,
		manager:  downloader.NewManager(config.Downloader, index, logger),
		metrics:  metrics,
		logger:   logger,
	}, nil
}

// ProcessPage runs the full pipeline over one page's markup and returns its
// report. Errors are returned only for failures that prevent any processing
// at all (unparseable base URL); individual asset failures land in the
// report instead.
func (p *Pipeline) ProcessPage(ctx context.Context, pageID, sourceURL, html string) (*types.PageReport, error) {
	log := p.logger.WithField("page", pageID)
	log.Infof("processing page: %s", sourceURL)

	ext, err := extractor.New(sourceURL, p.config.Extractor, log)
	if err != nil {
		return nil, fmt.Errorf("failed to set up extraction: %w", err)
	}
	refs, err := ext.Extract(html)
	if err != nil {
		return nil, fmt.Errorf("failed to parse page markup: %w", err)
	}
	if p.metrics != nil {
		p.metrics.ReferencesExtracted(len(refs))
	}

	parser, err := extractor.NewDescriptorParser(sourceURL, log)
	if err != nil {
		return nil, fmt.Errorf("failed to set up descriptor parsing: %w", err)
	}
	candidates := parser.ExpandAll(refs)

	winners := p.selector.Select(candidates)
	assets, suppressed := p.assignAssets(winners, log)
	if p.metrics != nil {
		p.metrics.AssetsSelected(len(assets))
		p.metrics.DuplicatesSuppressed(suppressed)
	}

	results := p.manager.DownloadAll(ctx, pageID, assets)
	if p.metrics != nil {
		for _, r := range results {
			p.metrics.DownloadCompleted(r.Status == media.StatusSuccess, r.Attempts, r.FileSize)
		}
	}

	report := p.buildReport(pageID, sourceURL, results)
	if p.metrics != nil {
		p.metrics.PageProcessed(len(report.Images), len(report.Videos), report.Summary.FailedAssets)
	}

	log.Infof("page done: %d images, %d videos, %d failed",
		len(report.Images), len(report.Videos), report.Summary.FailedAssets)
	return report, nil
}

// assignAssets deduplicates winning candidates and assigns sequential asset
// ids per kind in selection order. IDs are assigned after dedup so the
// per-kind sequences stay contiguous and 1-based.
func (p *Pipeline) assignAssets(winners []media.Candidate, log utils.Logger) ([]media.SelectedAsset, int) {
	dedup := extractor.NewDeduplicator(log)
	var assets []media.SelectedAsset
	suppressed := 0
	imageSeq, videoSeq := 0, 0

	for _, w := range winners {
		if !dedup.Admit(w.URL) {
			suppressed++
			continue
		}

		asset := media.SelectedAsset{
			Candidate:    w,
			CanonicalURL: extractor.CanonicalURL(w.URL),
		}

		switch w.Kind {
		case media.KindImage:
			imageSeq++
			asset.AssetID = fmt.Sprintf("img_%03d", imageSeq)
		case media.KindVideo:
			videoSeq++
			asset.AssetID = fmt.Sprintf("vid_%03d", videoSeq)
			asset.VideoType = extractor.VideoTypeOf(w.URL, w.MimeType)
			asset.External = w.Origin == media.OriginIframeEmbed ||
				w.Origin == media.OriginStreamManifest ||
				extractor.IsExternalVideoType(asset.VideoType)
		}

		assets = append(assets, asset)
	}

	return assets, suppressed
}

// buildReport assembles the page report from download results, preserving
// assignment order. Assembly and ordering only; no selection or retry
// decisions are made here.
func (p *Pipeline) buildReport(pageID, sourceURL string, results []media.DownloadResult) *types.PageReport {
	report := &types.PageReport{
		PageID:    pageID,
		SourceURL: sourceURL,
		Timestamp: time.Now().UTC(),
		Images:    []types.ImageRecord{},
		Videos:    []types.VideoRecord{},
	}

	for _, r := range results {
		switch r.Asset.Candidate.Kind {
		case media.KindImage:
			report.Images = append(report.Images, imageRecord(r))
		case media.KindVideo:
			report.Videos = append(report.Videos, videoRecord(r))
		}

		if r.Status == media.StatusFailed {
			report.Summary.FailedAssets++
		}
		report.Summary.TotalBytes += r.FileSize
	}

	report.Summary.TotalImages = len(report.Images)
	report.Summary.TotalVideos = len(report.Videos)
	return report
}

// imageRecord converts one download result to the external report shape
func imageRecord(r media.DownloadResult) types.ImageRecord {
	rec := types.ImageRecord{
		ImageID:     r.Asset.AssetID,
		OriginalURL: r.Asset.Candidate.URL,
		Descriptor:  r.Asset.Candidate.Descriptor.String(),
		Source:      r.Asset.Candidate.Origin.String(),
		LocalPath:   r.LocalPath,
		Status:      r.Status.String(),
		Error:       r.FailureReason,
	}

	switch r.Asset.Candidate.Descriptor.Kind {
	case media.DescriptorWidth:
		w := r.Asset.Candidate.Descriptor.Width
		rec.Width = &w
	case media.DescriptorDensity:
		d := r.Asset.Candidate.Descriptor.Density
		rec.PixelDensity = &d
	}

	if r.Status == media.StatusSuccess && r.LocalPath != "" {
		size := r.FileSize
		rec.FileSize = &size
	}

	return rec
}

// videoRecord converts one download result to the external report shape.
// local_path_or_reference carries the local file for direct downloads and
// the original URL for embeds and manifests.
func videoRecord(r media.DownloadResult) types.VideoRecord {
	rec := types.VideoRecord{
		VideoID:     r.Asset.AssetID,
		OriginalURL: r.Asset.Candidate.URL,
		Type:        r.Asset.VideoType,
		Source:      r.Asset.Candidate.Origin.String(),
		Status:      r.Status.String(),
		Error:       r.FailureReason,
	}

	if r.Asset.Candidate.Descriptor.Kind == media.DescriptorResolution {
		rec.Resolution = r.Asset.Candidate.Descriptor.Label
	}

	switch {
	case r.ExternalReference != "":
		rec.LocalPathOrReference = r.ExternalReference
	case r.LocalPath != "":
		rec.LocalPathOrReference = r.LocalPath
	}

	if r.Status == media.StatusSuccess && r.LocalPath != "" {
		size := r.FileSize
		rec.FileSize = &size
	}

	return rec
}
