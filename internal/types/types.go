// =============================================================================
// Settlement Report Enricher - Shared Types
// =============================================================================
//
// This package contains shared types used across multiple modules to avoid
// import cycles. Types defined here are used by:
//   - csvparser / xlsxparser
//   - validation
//   - enricher
//   - csvwriter
//
// =============================================================================

package types

// =============================================================================
// ROW AND DATASET TYPES
// =============================================================================

// RowKind distinguishes data rows from section-header rows.
type RowKind int

const (
	// DataRow is a regular transaction record.
	DataRow RowKind = iota

	// SectionHeader is a grouping label row: only the first column carries a
	// value, every other field is empty or whitespace. Section headers are
	// preserved verbatim in the output, interleaved at their original
	// positions.
	SectionHeader
)

// Row is one parsed line of a settlement report.
//
// A row is either a section header, in which case only Label is meaningful,
// or a data row, in which case Fields holds the values keyed by column name.
// The two shapes are never mixed: a SectionHeader row has nil Fields and a
// DataRow has an empty Label.
type Row struct {
	// Kind tags the row as a data row or a section header.
	Kind RowKind

	// Label is the raw first-column value of a section-header row.
	// It is emitted as a bare line during serialization, unquoted.
	Label string

	// Fields maps column name -> value for a data row.
	// The enricher writes the resolved home transaction id into this map
	// under the configured output column.
	Fields map[string]string
}

// IsSectionHeader reports whether the row is a grouping label.
func (r *Row) IsSectionHeader() bool {
	return r.Kind == SectionHeader
}

// Dataset is the parsed settlement report: the fixed column set established
// from the file's header line, plus every subsequent row in original order.
//
// Invariant: the relative order of section-header rows and data rows in
// Rows equals the input file order exactly, and serialization preserves it.
type Dataset struct {
	// Columns holds the column names in file order.
	// The enricher appends the output column here after enrichment.
	Columns []string

	// Rows holds all rows (data and section headers) in file order.
	Rows []Row

	// SourceFile is the path of the file this dataset was parsed from.
	// Empty when parsed from an in-memory reader.
	SourceFile string
}

// DataRows returns pointers to the data rows in file order, skipping
// section headers. The pointers alias Rows, so mutations are visible to
// the serializer.
func (d *Dataset) DataRows() []*Row {
	rows := make([]*Row, 0, len(d.Rows))
	for i := range d.Rows {
		if d.Rows[i].Kind == DataRow {
			rows = append(rows, &d.Rows[i])
		}
	}
	return rows
}

// =============================================================================
// RUN STATISTICS
// =============================================================================

// RunStatistics accumulates per-row outcomes over one enrichment run.
// Counts only increase during a run; once the run completes the struct is
// returned to the caller and never mutated again.
//
// Invariant after a successful run:
//
//	Processed == Found + NotFound + Errors == TotalDataRows
type RunStatistics struct {
	// TotalDataRows is the number of data rows in the dataset
	// (section headers excluded).
	TotalDataRows int

	// Processed is the number of data rows the engine has handled so far.
	Processed int

	// Found counts rows whose home transaction id was resolved.
	Found int

	// NotFound counts rows with a blank transfer id, no matching store key,
	// or a payload missing the target field.
	NotFound int

	// Errors counts rows where the lookup or payload decode failed.
	Errors int
}

// =============================================================================
// PROGRESS REPORTING
// =============================================================================

// ProgressStage identifies a lifecycle point of an enrichment run.
type ProgressStage string

const (
	StageReading    ProgressStage = "reading"
	StageValidating ProgressStage = "validating"
	StageConnecting ProgressStage = "connecting"
	StageProcessing ProgressStage = "processing"
	StageWriting    ProgressStage = "writing"
	StageComplete   ProgressStage = "complete"
)

// ProgressUpdate is a staged status callback payload.
type ProgressUpdate struct {
	// Stage is the lifecycle point being reported.
	Stage ProgressStage

	// Message is a human-readable description of the stage.
	Message string

	// Percent is the completion percentage, 0-100.
	// It is -1 for stages that do not carry a percentage.
	Percent int
}

// Reporter receives staged status callbacks from the enrichment pipeline.
// The consumer may relay updates over any transport; the CLI logs them.
type Reporter interface {
	Report(update ProgressUpdate)
}

// NopReporter discards all progress updates.
type NopReporter struct{}

// Report implements Reporter.
func (NopReporter) Report(ProgressUpdate) {}
