// =============================================================================
// Settlement Report Enricher - CSV Writer Module
// =============================================================================
//
// This module re-serializes an enriched dataset back to CSV text. The output
// contract is stricter than what encoding/csv produces, so the document is
// built by hand:
//
//   - The header line lists every column name, each double-quoted.
//   - Section-header rows are emitted as bare lines: the raw label only,
//     never quoted or escaped, at their original positions.
//   - Data-row fields are quoted only when they contain a comma, a double
//     quote or a newline; embedded quotes are doubled. Everything else is
//     written raw.
//   - Lines are joined with a single "\n" and there is no trailing newline.
//
// Given an unenriched dataset this reproduces the input text, which is what
// makes the pipeline's output diffable against the source report.
//
// =============================================================================

package csvwriter

import (
	"strings"

	"github.com/settleops/settlement-enricher/internal/types"
)

// Serialize renders the dataset as CSV text, preserving the original
// interleaving of section headers and data rows.
func Serialize(ds *types.Dataset) []byte {
	var buf strings.Builder

	writeHeaderLine(&buf, ds.Columns)

	for i := range ds.Rows {
		buf.WriteByte('\n')
		row := &ds.Rows[i]
		if row.IsSectionHeader() {
			buf.WriteString(row.Label)
			continue
		}
		writeDataLine(&buf, row, ds.Columns)
	}

	return []byte(buf.String())
}

// writeHeaderLine emits the column names, each double-quoted.
func writeHeaderLine(buf *strings.Builder, columns []string) {
	for i, col := range columns {
		if i > 0 {
			buf.WriteByte(',')
		}
		buf.WriteByte('"')
		buf.WriteString(strings.ReplaceAll(col, `"`, `""`))
		buf.WriteByte('"')
	}
}

// writeDataLine emits one data row in column order. Missing fields
// serialize as the empty string.
func writeDataLine(buf *strings.Builder, row *types.Row, columns []string) {
	for i, col := range columns {
		if i > 0 {
			buf.WriteByte(',')
		}
		buf.WriteString(escapeField(row.Fields[col]))
	}
}

// escapeField applies the standard CSV quoting rule, but only when the
// value actually needs it.
func escapeField(value string) string {
	if !strings.ContainsAny(value, ",\"\n") {
		return value
	}
	return `"` + strings.ReplaceAll(value, `"`, `""`) + `"`
}
