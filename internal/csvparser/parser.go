// =============================================================================
// Settlement Report Enricher - CSV Parser Module
// =============================================================================
//
// This module parses settlement report CSV files into a Dataset and
// classifies each row as either a data row or a section header.
//
// Settlement reports group transactions under label rows: a line where only
// the first field carries a value (typically a currency or corridor name)
// and every other field is blank. These rows are not records; they must be
// carried through the pipeline untouched and re-emitted at their original
// positions.
//
// CLASSIFICATION RULE (exact):
//   A row is a section header iff its first-column value is non-empty AND
//   every other column is empty or whitespace-only. Anything else is a
//   data row. The first column is not trimmed: a whitespace-only label
//   still counts, and is carried through verbatim.
//
// The column set is established from the file's first physical line and is
// deliberately lenient: later records with fewer fields pad missing columns
// with "", records with extra fields have the surplus ignored.
//
// =============================================================================

package csvparser

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/settleops/settlement-enricher/internal/types"
)

// =============================================================================
// PARSER FUNCTIONS
// =============================================================================

// ParseFile reads a settlement report CSV from disk.
func ParseFile(path string) (*types.Dataset, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	ds, err := Parse(bufio.NewReader(file))
	if err != nil {
		return nil, err
	}
	ds.SourceFile = path
	return ds, nil
}

// Parse reads a settlement report CSV from a reader and returns the
// classified dataset.
func Parse(r io.Reader) (*types.Dataset, error) {
	reader := csv.NewReader(r)

	// Settlement exports are not strictly RFC 4180: section-header lines
	// have fewer fields than the header and quoting is inconsistent.
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV: %w", err)
	}

	return FromRecords(records)
}

// FromRecords builds a classified dataset from raw records. The first
// record is the column header line; every later record becomes a Row.
//
// This is the shared entry point for both the CSV and the XLSX front ends,
// so classification behaves identically regardless of input format.
func FromRecords(records [][]string) (*types.Dataset, error) {
	if len(records) == 0 {
		return nil, fmt.Errorf("report is empty")
	}

	columns := cleanHeader(records[0])
	if len(columns) == 0 {
		return nil, fmt.Errorf("report has no columns")
	}

	ds := &types.Dataset{
		Columns: columns,
		Rows:    make([]types.Row, 0, len(records)-1),
	}

	for _, record := range records[1:] {
		ds.Rows = append(ds.Rows, classify(record, columns))
	}

	return ds, nil
}

// =============================================================================
// CLASSIFICATION
// =============================================================================

// classify tags a single record as a section header or a data row.
func classify(record []string, columns []string) types.Row {
	if isSectionHeader(record) {
		return types.Row{
			Kind:  types.SectionHeader,
			Label: record[0],
		}
	}

	fields := make(map[string]string, len(columns))
	for i, col := range columns {
		if i < len(record) {
			fields[col] = record[i]
		} else {
			fields[col] = ""
		}
	}

	return types.Row{
		Kind:   types.DataRow,
		Fields: fields,
	}
}

// isSectionHeader applies the exact classification rule: first field
// non-empty (whitespace alone still counts), every other field empty or
// whitespace-only.
func isSectionHeader(record []string) bool {
	if len(record) == 0 || record[0] == "" {
		return false
	}
	for _, value := range record[1:] {
		if strings.TrimSpace(value) != "" {
			return false
		}
	}
	return true
}

// cleanHeader trims whitespace and a possible BOM from the header line and
// drops trailing empty column names.
func cleanHeader(header []string) []string {
	columns := make([]string, 0, len(header))
	for i, name := range header {
		if i == 0 {
			name = strings.TrimPrefix(name, "\uFEFF")
		}
		columns = append(columns, strings.TrimSpace(name))
	}
	for len(columns) > 0 && columns[len(columns)-1] == "" {
		columns = columns[:len(columns)-1]
	}
	return columns
}
