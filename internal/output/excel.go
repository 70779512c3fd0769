// internal/output/excel.go
package output

import (
	"context"
	"fmt"
	"sync"

	"github.com/xuri/excelize/v2"

	"github.com/valpere/MediaScrapexter/pkg/types"
)

// ExcelSummary collects one row per page and one row per asset into a
// two-sheet workbook saved when the run finishes. Meant for people reviewing
// a run, not for machine consumption; the JSON reports stay authoritative.
type ExcelSummary struct {
	mu   sync.Mutex
	file *excelize.File
	path string

	pageRow  int
	assetRow int
}

const (
	pagesSheet  = "Pages"
	assetsSheet = "Assets"
)

// NewExcelSummary creates the workbook with its header rows
func NewExcelSummary(path string) (*ExcelSummary, error) {
	if path == "" {
		return nil, fmt.Errorf("Excel file path is required")
	}

	file := excelize.NewFile()
	file.SetSheetName("Sheet1", pagesSheet)
	if _, err := file.NewSheet(assetsSheet); err != nil {
		return nil, fmt.Errorf("failed to create assets sheet: %w", err)
	}

	pageHeaders := []interface{}{"Page ID", "Source URL", "Extracted", "Images", "Videos", "Failed", "Bytes"}
	if err := file.SetSheetRow(pagesSheet, "A1", &pageHeaders); err != nil {
		return nil, fmt.Errorf("failed to write page headers: %w", err)
	}

	assetHeaders := []interface{}{"Page ID", "Asset ID", "Kind", "URL", "Descriptor", "Source", "Status", "Local Path", "Size", "Error"}
	if err := file.SetSheetRow(assetsSheet, "A1", &assetHeaders); err != nil {
		return nil, fmt.Errorf("failed to write asset headers: %w", err)
	}

	return &ExcelSummary{
		file:     file,
		path:     path,
		pageRow:  2,
		assetRow: 2,
	}, nil
}

// Name identifies the sink
func (s *ExcelSummary) Name() string { return "excel" }

// WritePage appends the page's rows to both sheets
func (s *ExcelSummary) WritePage(_ context.Context, report *types.PageReport) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	pageCell, err := excelize.CoordinatesToCellName(1, s.pageRow)
	if err != nil {
		return fmt.Errorf("failed to compute cell name: %w", err)
	}
	pageValues := []interface{}{
		report.PageID, report.SourceURL, report.Timestamp.Format("2006-01-02 15:04:05"),
		report.Summary.TotalImages, report.Summary.TotalVideos,
		report.Summary.FailedAssets, report.Summary.TotalBytes,
	}
	if err := s.file.SetSheetRow(pagesSheet, pageCell, &pageValues); err != nil {
		return fmt.Errorf("failed to write page row: %w", err)
	}
	s.pageRow++

	for _, row := range flattenReport(report) {
		cell, err := excelize.CoordinatesToCellName(1, s.assetRow)
		if err != nil {
			return fmt.Errorf("failed to compute cell name: %w", err)
		}
		values := []interface{}{
			report.PageID, row.AssetID, row.Kind, row.URL, row.Descriptor,
			row.Source, row.Status, row.LocalPath, row.FileSize, row.FailureNote,
		}
		if err := s.file.SetSheetRow(assetsSheet, cell, &values); err != nil {
			return fmt.Errorf("failed to write asset row: %w", err)
		}
		s.assetRow++
	}

	return nil
}

// Close saves the workbook
func (s *ExcelSummary) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.file.SaveAs(s.path); err != nil {
		return fmt.Errorf("failed to save workbook: %w", err)
	}
	return s.file.Close()
}
