// internal/output/types.go
package output

import (
	"context"

	"github.com/valpere/MediaScrapexter/pkg/types"
)

// Sink receives finished page reports. The JSON report on disk is always
// written; sinks are additive destinations (databases, workbooks) configured
// per run.
type Sink interface {
	// Name identifies the sink in logs and error messages
	Name() string

	// WritePage persists one page report
	WritePage(ctx context.Context, report *types.PageReport) error

	// Close flushes and releases the sink
	Close() error
}

// assetRow is the flattened per-asset form shared by the SQL sinks. One page
// report becomes one pages row plus one assetRow per image and video.
type assetRow struct {
	AssetID     string
	URL         string
	Kind        string
	Descriptor  string
	Source      string
	LocalPath   string
	FileSize    int64
	Status      string
	FailureNote string
}

// flattenReport converts a report to asset rows, images before videos
func flattenReport(report *types.PageReport) []assetRow {
	rows := make([]assetRow, 0, len(report.Images)+len(report.Videos))

	for _, img := range report.Images {
		row := assetRow{
			AssetID:     img.ImageID,
			URL:         img.OriginalURL,
			Kind:        "image",
			Descriptor:  img.Descriptor,
			Source:      img.Source,
			LocalPath:   img.LocalPath,
			Status:      img.Status,
			FailureNote: img.Error,
		}
		if img.FileSize != nil {
			row.FileSize = *img.FileSize
		}
		rows = append(rows, row)
	}

	for _, vid := range report.Videos {
		row := assetRow{
			AssetID:     vid.VideoID,
			URL:         vid.OriginalURL,
			Kind:        "video",
			Descriptor:  vid.Resolution,
			Source:      vid.Source,
			LocalPath:   vid.LocalPathOrReference,
			Status:      vid.Status,
			FailureNote: vid.Error,
		}
		if vid.FileSize != nil {
			row.FileSize = *vid.FileSize
		}
		rows = append(rows, row)
	}

	return rows
}
