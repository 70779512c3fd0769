// pkg/types/types_test.go
package types

import (
	"encoding/json"
	"strings"
	"testing"
	"time"
)

func validReport() *PageReport {
	return &PageReport{
		PageID:    "page_001",
		SourceURL: "https://example.com",
		Timestamp: time.Now().UTC(),
		Images: []ImageRecord{
			{ImageID: "img_001", OriginalURL: "https://cdn.example.com/a.jpg", Descriptor: "2560w", Source: "img/srcset", Status: "success"},
			{ImageID: "img_002", OriginalURL: "https://cdn.example.com/b.png", Descriptor: "unknown", Source: "css/background", Status: "failed", Error: "HTTP 404"},
		},
		Videos: []VideoRecord{
			{VideoID: "vid_001", OriginalURL: "https://cdn.example.com/v.mp4", Type: "mp4", Source: "video_tag", Status: "success"},
		},
	}
}

func TestValidate(t *testing.T) {
	if err := validReport().Validate(); err != nil {
		t.Errorf("valid report rejected: %v", err)
	}
}

func TestValidateRejectsGappedIDs(t *testing.T) {
	report := validReport()
	report.Images[1].ImageID = "img_003"

	if err := report.Validate(); err == nil {
		t.Error("expected error for non-contiguous image ids")
	}
}

func TestValidateRejectsDuplicateURLs(t *testing.T) {
	report := validReport()
	report.Images[1].OriginalURL = report.Images[0].OriginalURL

	if err := report.Validate(); err == nil {
		t.Error("expected error for duplicate URLs")
	}
}

func TestValidateRejectsEmptyPageID(t *testing.T) {
	report := validReport()
	report.PageID = ""

	if err := report.Validate(); err == nil {
		t.Error("expected error for empty page id")
	}
}

func TestMarshalIndentFieldNames(t *testing.T) {
	data, err := validReport().MarshalIndent()
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}

	// field names are the external contract
	for _, key := range []string{
		`"page_id"`, `"source_url"`, `"extraction_timestamp"`,
		`"image_id"`, `"original_url"`, `"descriptor"`, `"source"`,
		`"video_id"`, `"type"`, `"summary"`,
	} {
		if !strings.Contains(string(data), key) {
			t.Errorf("expected JSON key %s in output", key)
		}
	}

	// optional fields stay absent when unset
	if strings.Contains(string(data), `"width"`) {
		t.Error("unset width must be omitted")
	}

	var decoded PageReport
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if len(decoded.Images) != 2 || len(decoded.Videos) != 1 {
		t.Errorf("round trip lost records: %+v", decoded)
	}
}
