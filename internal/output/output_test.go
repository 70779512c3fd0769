// internal/output/output_test.go
package output

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/valpere/MediaScrapexter/internal/config"
	"github.com/valpere/MediaScrapexter/pkg/types"
)

func sampleReport() *types.PageReport {
	size := int64(2048)
	width := 2560
	return &types.PageReport{
		PageID:    "page_001",
		SourceURL: "https://example.com/gallery",
		Timestamp: time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC),
		Images: []types.ImageRecord{
			{
				ImageID:     "img_001",
				OriginalURL: "https://cdn.example.com/a-2560w.jpg",
				Descriptor:  "2560w",
				Source:      "img/srcset",
				LocalPath:   "output/page_001/images/img_001.jpg",
				Width:       &width,
				FileSize:    &size,
				Status:      "success",
			},
			{
				ImageID:     "img_002",
				OriginalURL: "https://cdn.example.com/broken.png",
				Descriptor:  "unknown",
				Source:      "css/background",
				Status:      "failed",
				Error:       "HTTP 404",
			},
		},
		Videos: []types.VideoRecord{
			{
				VideoID:              "vid_001",
				OriginalURL:          "https://www.youtube.com/embed/abc123",
				Type:                 "youtube",
				Source:               "iframe",
				LocalPathOrReference: "https://www.youtube.com/embed/abc123",
				Status:               "success",
			},
		},
		Summary: types.ReportSummary{
			TotalImages:  2,
			TotalVideos:  1,
			FailedAssets: 1,
			TotalBytes:   2048,
		},
	}
}

func TestJSONWriterWritesMetadata(t *testing.T) {
	root := t.TempDir()
	writer, err := NewJSONWriter(root)
	if err != nil {
		t.Fatalf("failed to create writer: %v", err)
	}
	defer writer.Close()

	report := sampleReport()
	if err := writer.WritePage(context.Background(), report); err != nil {
		t.Fatalf("failed to write report: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(root, "page_001", "metadata.json"))
	if err != nil {
		t.Fatalf("metadata.json not written: %v", err)
	}

	var decoded types.PageReport
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("metadata.json is not valid JSON: %v", err)
	}
	if decoded.PageID != "page_001" || len(decoded.Images) != 2 {
		t.Errorf("round trip lost data: %+v", decoded)
	}
	if decoded.Images[0].Width == nil || *decoded.Images[0].Width != 2560 {
		t.Errorf("width not preserved: %+v", decoded.Images[0])
	}
	if decoded.Images[1].LocalPath != "" {
		t.Errorf("failed asset must have no local path: %+v", decoded.Images[1])
	}

	// no stale temp file
	if _, err := os.Stat(filepath.Join(root, "page_001", "metadata.json.part")); !os.IsNotExist(err) {
		t.Error("temporary report file left behind")
	}
}

func TestSQLiteStoreRoundTrip(t *testing.T) {
	store, err := NewSQLiteStore(filepath.Join(t.TempDir(), "media.db"))
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	defer store.Close()

	ctx := context.Background()
	if err := store.WritePage(ctx, sampleReport()); err != nil {
		t.Fatalf("failed to write report: %v", err)
	}

	// re-processing a page replaces its rows instead of erroring
	if err := store.WritePage(ctx, sampleReport()); err != nil {
		t.Fatalf("rewriting the same page failed: %v", err)
	}

	var assets int
	if err := store.db.QueryRow(`SELECT COUNT(*) FROM assets WHERE page_id = ?`, "page_001").Scan(&assets); err != nil {
		t.Fatalf("failed to count assets: %v", err)
	}
	if assets != 3 {
		t.Errorf("expected 3 asset rows after rewrite, got %d", assets)
	}
}

func TestSQLiteStoreDownloadIndex(t *testing.T) {
	store, err := NewSQLiteStore(filepath.Join(t.TempDir(), "media.db"))
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	defer store.Close()

	canonical := "https://cdn.example.com/a.jpg"
	if _, _, ok := store.Lookup(canonical); ok {
		t.Fatal("lookup must miss before record")
	}

	if err := store.Record(canonical, "output/page_001/images/img_001.jpg", 2048); err != nil {
		t.Fatalf("failed to record download: %v", err)
	}

	path, size, ok := store.Lookup(canonical)
	if !ok {
		t.Fatal("lookup must hit after record")
	}
	if path != "output/page_001/images/img_001.jpg" || size != 2048 {
		t.Errorf("unexpected index entry: %s %d", path, size)
	}

	// re-recording the same URL updates in place
	if err := store.Record(canonical, "output/page_002/images/img_001.jpg", 4096); err != nil {
		t.Fatalf("failed to re-record download: %v", err)
	}
	if path, size, _ = store.Lookup(canonical); size != 4096 {
		t.Errorf("re-record did not update: %s %d", path, size)
	}
}

func TestExcelSummarySaves(t *testing.T) {
	path := filepath.Join(t.TempDir(), "summary.xlsx")
	summary, err := NewExcelSummary(path)
	if err != nil {
		t.Fatalf("failed to create summary: %v", err)
	}

	if err := summary.WritePage(context.Background(), sampleReport()); err != nil {
		t.Fatalf("failed to add page: %v", err)
	}
	if err := summary.Close(); err != nil {
		t.Fatalf("failed to save workbook: %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("workbook not written: %v", err)
	}
	if info.Size() == 0 {
		t.Error("workbook is empty")
	}
}

func TestManagerWritesJSONAndIndex(t *testing.T) {
	root := t.TempDir()
	cfg := config.Default()
	cfg.OutputRoot = root
	cfg.Outputs.SQLite = &config.SQLiteConfig{Path: filepath.Join(root, "media.db")}

	manager, err := NewManager(context.Background(), cfg, nil)
	if err != nil {
		t.Fatalf("failed to create manager: %v", err)
	}
	defer manager.Close()

	if manager.DownloadIndex() == nil {
		t.Fatal("SQLite output must expose the download index")
	}

	if err := manager.WritePage(context.Background(), sampleReport()); err != nil {
		t.Fatalf("failed to write page: %v", err)
	}
	if _, err := os.Stat(filepath.Join(root, "page_001", "metadata.json")); err != nil {
		t.Errorf("JSON report not written: %v", err)
	}
}
