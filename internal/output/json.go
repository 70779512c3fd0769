// internal/output/json.go
package output

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/valpere/MediaScrapexter/pkg/types"
)

// JSONWriter writes each page report as metadata.json inside the page's
// output directory, next to its images/ and videos/ subdirectories.
type JSONWriter struct {
	root string
}

// NewJSONWriter creates a JSON report writer rooted at the output directory
func NewJSONWriter(root string) (*JSONWriter, error) {
	if root == "" {
		return nil, fmt.Errorf("output root is required")
	}
	if err := os.MkdirAll(root, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output root: %w", err)
	}
	return &JSONWriter{root: root}, nil
}

// Name identifies the sink
func (w *JSONWriter) Name() string { return "json" }

// WritePage writes output_root/{page_id}/metadata.json. The file is written
// through a temporary name and renamed so a crash never leaves a truncated
// report behind.
func (w *JSONWriter) WritePage(_ context.Context, report *types.PageReport) error {
	data, err := report.MarshalIndent()
	if err != nil {
		return fmt.Errorf("failed to marshal report for %s: %w", report.PageID, err)
	}

	dir := filepath.Join(w.root, report.PageID)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create page directory: %w", err)
	}

	path := filepath.Join(dir, "metadata.json")
	tmp := path + ".part"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to finalize report: %w", err)
	}

	return nil
}

// Close is a no-op; every report is flushed as it is written
func (w *JSONWriter) Close() error { return nil }
