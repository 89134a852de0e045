// =============================================================================
// Settlement Report Enricher - Validation Module
// =============================================================================
//
// This module gates a parsed dataset before enrichment. Validation operates
// only on data rows; section headers pass through untouched.
//
// VALIDATION STRATEGY:
//   1. Schema-level: the dataset must contain at least one data row, and
//      the required transfer-id column must be present in the column set.
//      Either failure is fatal and aborts the run before any lookup.
//   2. Row-level: a blank transfer-id value is reported as a warning.
//      Processing continues; the enricher marks such rows NOT_FOUND
//      without contacting the store.
//
// ERROR HANDLING:
//   - Problems are collected, not thrown immediately
//   - Each problem carries enough context (row number, column, value) to
//     troubleshoot the source report
//
// =============================================================================

package validation

import (
	"errors"
	"fmt"
	"strings"

	"github.com/settleops/settlement-enricher/internal/types"
)

// ErrSchemaInvalid is the fatal classification for datasets the pipeline
// cannot process: no data rows, or the required column is missing.
var ErrSchemaInvalid = errors.New("schema invalid")

// =============================================================================
// PROBLEM AND RESULT TYPES
// =============================================================================

// Severity grades a validation finding.
type Severity string

const (
	// SeverityError marks a fatal finding; processing must stop.
	SeverityError Severity = "error"

	// SeverityWarning marks an informational finding; processing continues.
	SeverityWarning Severity = "warning"
)

// Problem is a single validation finding.
type Problem struct {
	// Severity grades the finding.
	Severity Severity

	// Column is the column the finding relates to, when applicable.
	Column string

	// RowNumber is the 1-based data-row index, 0 for dataset-level findings.
	RowNumber int

	// Message is a human-readable description.
	Message string
}

// String renders the problem for logs.
func (p Problem) String() string {
	if p.RowNumber > 0 {
		return fmt.Sprintf("[%s] data row %d, column %q: %s",
			strings.ToUpper(string(p.Severity)), p.RowNumber, p.Column, p.Message)
	}
	return fmt.Sprintf("[%s] %s", strings.ToUpper(string(p.Severity)), p.Message)
}

// Result contains the outcome of validating one dataset.
type Result struct {
	// IsValid is true when there are no fatal problems. Warnings do not
	// affect it.
	IsValid bool

	// Problems holds every finding, fatal and warning, in discovery order.
	Problems []Problem

	// WarningCount is the number of non-fatal findings.
	WarningCount int
}

// Err converts a fatal result into an error suitable for aborting the run.
// It returns nil when the result is valid.
func (r Result) Err() error {
	if r.IsValid {
		return nil
	}
	for _, p := range r.Problems {
		if p.Severity == SeverityError {
			return fmt.Errorf("%w: %s", ErrSchemaInvalid, p.Message)
		}
	}
	return fmt.Errorf("%w: dataset failed validation", ErrSchemaInvalid)
}

// =============================================================================
// VALIDATION
// =============================================================================

// Validate checks a parsed dataset against the report schema requirements.
//
// requiredColumn is the transfer-id column name, matched exactly and
// case-sensitively.
func Validate(ds *types.Dataset, requiredColumn string) Result {
	result := Result{IsValid: true}

	dataRows := ds.DataRows()
	if len(dataRows) == 0 {
		result.IsValid = false
		result.Problems = append(result.Problems, Problem{
			Severity: SeverityError,
			Message:  "report contains no data rows",
		})
		return result
	}

	if !hasColumn(ds.Columns, requiredColumn) {
		result.IsValid = false
		result.Problems = append(result.Problems, Problem{
			Severity: SeverityError,
			Column:   requiredColumn,
			Message:  fmt.Sprintf("required column %q not found in report", requiredColumn),
		})
		return result
	}

	// Blank transfer ids are legal but will never resolve; surface them so
	// operators can chase the gaps in the source report.
	for i, row := range dataRows {
		if strings.TrimSpace(row.Fields[requiredColumn]) == "" {
			result.WarningCount++
			result.Problems = append(result.Problems, Problem{
				Severity:  SeverityWarning,
				Column:    requiredColumn,
				RowNumber: i + 1,
				Message:   "transfer id is blank; row will be marked NOT_FOUND",
			})
		}
	}

	return result
}

func hasColumn(columns []string, name string) bool {
	for _, col := range columns {
		if col == name {
			return true
		}
	}
	return false
}
