// =============================================================================
// Settlement Report Enricher - XLSX Parser Module
// =============================================================================
//
// Some settlement partners export reports as spreadsheets rather than CSV.
// This module reads the first sheet of an XLSX workbook and feeds the raw
// cell grid through the shared csvparser classification, so spreadsheet
// input behaves identically to CSV input for the rest of the pipeline:
// first row is the column header line, later rows are classified as data
// rows or section headers by the same rule.
//
// Only the first sheet is consulted; settlement exports are single-sheet
// workbooks.
//
// =============================================================================

package xlsxparser

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/settleops/settlement-enricher/internal/csvparser"
	"github.com/settleops/settlement-enricher/internal/types"
)

// ParseFile reads a settlement report from an XLSX workbook.
func ParseFile(path string) (*types.Dataset, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	ds, err := parseWorkbook(f)
	if err != nil {
		return nil, err
	}
	ds.SourceFile = path
	return ds, nil
}

// parseWorkbook extracts the first sheet's cell grid and classifies it.
func parseWorkbook(f *excelize.File) (*types.Dataset, error) {
	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("workbook has no sheets")
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", sheets[0], err)
	}

	ds, err := csvparser.FromRecords(rows)
	if err != nil {
		return nil, fmt.Errorf("sheet %q: %w", sheets[0], err)
	}
	return ds, nil
}
