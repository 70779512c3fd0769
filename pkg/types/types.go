// pkg/types/types.go
package types

import (
	"encoding/json"
	"fmt"
	"time"
)

// ImageRecord is one image entry of a page report. Field names are part of
// the external JSON contract and must not change.
type ImageRecord struct {
	ImageID      string   `json:"image_id" bson:"image_id"`
	OriginalURL  string   `json:"original_url" bson:"original_url"`
	Descriptor   string   `json:"descriptor" bson:"descriptor"`
	Source       string   `json:"source" bson:"source"`
	LocalPath    string   `json:"local_path,omitempty" bson:"local_path,omitempty"`
	Width        *int     `json:"width,omitempty" bson:"width,omitempty"`
	PixelDensity *float64 `json:"pixel_density,omitempty" bson:"pixel_density,omitempty"`
	FileSize     *int64   `json:"file_size,omitempty" bson:"file_size,omitempty"`
	Status       string   `json:"status" bson:"status"`
	Error        string   `json:"error,omitempty" bson:"error,omitempty"`
}

// VideoRecord is one video entry of a page report
type VideoRecord struct {
	VideoID              string `json:"video_id" bson:"video_id"`
	OriginalURL          string `json:"original_url" bson:"original_url"`
	Type                 string `json:"type" bson:"type"`
	Resolution           string `json:"resolution,omitempty" bson:"resolution,omitempty"`
	Source               string `json:"source" bson:"source"`
	LocalPathOrReference string `json:"local_path_or_reference,omitempty" bson:"local_path_or_reference,omitempty"`
	FileSize             *int64 `json:"file_size,omitempty" bson:"file_size,omitempty"`
	Status               string `json:"status" bson:"status"`
	Error                string `json:"error,omitempty" bson:"error,omitempty"`
}

// PageReport is the per-page output document. Images and videos are ordered
// by asset id (assignment order), never by download completion order.
type PageReport struct {
	PageID    string        `json:"page_id" bson:"page_id"`
	SourceURL string        `json:"source_url" bson:"source_url"`
	Timestamp time.Time     `json:"extraction_timestamp" bson:"extraction_timestamp"`
	Images    []ImageRecord `json:"images" bson:"images"`
	Videos    []VideoRecord `json:"videos" bson:"videos"`
	Summary   ReportSummary `json:"summary" bson:"summary"`
}

// ReportSummary aggregates per-page totals
type ReportSummary struct {
	TotalImages  int   `json:"total_images" bson:"total_images"`
	TotalVideos  int   `json:"total_videos" bson:"total_videos"`
	FailedAssets int   `json:"failed_assets" bson:"failed_assets"`
	TotalBytes   int64 `json:"total_bytes" bson:"total_bytes"`
}

// Validate checks the structural invariants of the report: contiguous 1-based
// asset ids per kind and no duplicate URLs.
func (r *PageReport) Validate() error {
	if r.PageID == "" {
		return fmt.Errorf("page_id cannot be empty")
	}

	seen := make(map[string]bool)
	for i, img := range r.Images {
		expected := fmt.Sprintf("img_%03d", i+1)
		if img.ImageID != expected {
			return fmt.Errorf("image %d: expected id %s, got %s", i, expected, img.ImageID)
		}
		if seen[img.OriginalURL] {
			return fmt.Errorf("duplicate image URL in report: %s", img.OriginalURL)
		}
		seen[img.OriginalURL] = true
	}
	for i, vid := range r.Videos {
		expected := fmt.Sprintf("vid_%03d", i+1)
		if vid.VideoID != expected {
			return fmt.Errorf("video %d: expected id %s, got %s", i, expected, vid.VideoID)
		}
		if seen[vid.OriginalURL] {
			return fmt.Errorf("duplicate video URL in report: %s", vid.OriginalURL)
		}
		seen[vid.OriginalURL] = true
	}

	return nil
}

// MarshalIndent renders the report as the externally consumed JSON document
func (r *PageReport) MarshalIndent() ([]byte, error) {
	return json.MarshalIndent(r, "", "  ")
}
