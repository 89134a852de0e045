// =============================================================================
// Settlement Report Enricher - Enrichment Engine
// =============================================================================
//
// This module is the pipeline around which the tool is built. For one
// settlement report it:
//
//   1. Parses the file into a classified dataset (CSV or XLSX front end)
//   2. Validates the data rows (required column, blank transfer ids)
//   3. Opens the key-value store connection
//   4. Resolves a home transaction id for every data row, sequentially
//   5. Serializes the dataset back to CSV with the new column appended
//   6. Writes the output file
//
// LOOKUP STRATEGY:
//   For transfer id T the store is queried under "<prefix>_in_<T>" first,
//   then "<prefix>_out_<T>". The first key that exists wins; its JSON
//   payload's "homeTransactionId" field is the resolved value. A hit whose
//   payload lacks the field counts as a miss, without falling through to
//   the second key.
//
// FAILURE MODEL:
//   Setup failures (unreadable report, schema problems, store unreachable)
//   abort the run before any row is touched and produce no output file.
//   Per-row failures are absorbed: the row is marked with the ERROR
//   sentinel, the error statistic increments, and the run continues. A miss
//   is not an error; it renders the NOT_FOUND sentinel. A blank transfer id
//   renders the same NOT_FOUND sentinel as a genuine miss.
//
// Rows are enriched strictly sequentially. Statistics accumulation and the
// monotone progress percentage both depend on each lookup completing before
// the next row starts.
//
// =============================================================================

package enricher

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/tidwall/gjson"

	"github.com/settleops/settlement-enricher/internal/config"
	"github.com/settleops/settlement-enricher/internal/csvparser"
	"github.com/settleops/settlement-enricher/internal/csvwriter"
	"github.com/settleops/settlement-enricher/internal/kvstore"
	"github.com/settleops/settlement-enricher/internal/types"
	"github.com/settleops/settlement-enricher/internal/validation"
	"github.com/settleops/settlement-enricher/internal/xlsxparser"
)

// =============================================================================
// SENTINELS AND OUTCOMES
// =============================================================================

const (
	// SentinelNotFound marks rows whose transfer id was blank, matched no
	// store key, or matched a payload without the target field.
	SentinelNotFound = "NOT_FOUND"

	// SentinelError marks rows whose lookup or payload decode failed.
	SentinelError = "ERROR"

	// homeTransactionField is the payload field carrying the resolved id.
	homeTransactionField = "homeTransactionId"
)

// outcome classifies a single row's enrichment result.
type outcome int

const (
	outcomeFound outcome = iota
	outcomeNotFound
	outcomeError
)

// =============================================================================
// RESULT STRUCTURE
// =============================================================================

// Result represents the outcome of processing a single report file.
type Result struct {
	// InputFile is the report that was processed.
	InputFile string

	// OutputFile is the enriched CSV that was written.
	// Empty if processing failed.
	OutputFile string

	// Success indicates whether the run completed.
	Success bool

	// Error contains the fatal setup error if the run aborted.
	Error error

	// Stats contains the per-row accounting for the run.
	Stats types.RunStatistics

	// Warnings is the number of validation warnings (blank transfer ids).
	Warnings int

	// Duration is the wall-clock time of the run.
	Duration time.Duration
}

// =============================================================================
// ENRICHER STRUCTURE
// =============================================================================

// Enricher processes a single settlement report file.
type Enricher struct {
	inputPath  string
	outputPath string
	cfg        *config.Config

	// store, when preset via WithStore, is used instead of dialing the
	// configured Redis URL. The enricher only closes connections it opened.
	store kvstore.Store

	reporter types.Reporter
	logger   *slog.Logger
}

// New creates an Enricher for one input file. The output path names the
// enriched CSV to write on success.
func New(inputPath, outputPath string, cfg *config.Config) *Enricher {
	return &Enricher{
		inputPath:  inputPath,
		outputPath: outputPath,
		cfg:        cfg,
		reporter:   types.NopReporter{},
		logger:     slog.Default(),
	}
}

// WithReporter sets the progress callback consumer.
func (e *Enricher) WithReporter(r types.Reporter) *Enricher {
	e.reporter = r
	return e
}

// WithLogger sets the logger.
func (e *Enricher) WithLogger(l *slog.Logger) *Enricher {
	e.logger = l
	return e
}

// WithStore presets the key-value store, bypassing the connection step.
// The caller keeps ownership of the store's lifecycle.
func (e *Enricher) WithStore(s kvstore.Store) *Enricher {
	e.store = s
	return e
}

// =============================================================================
// RUN
// =============================================================================

// Run executes the pipeline for the file.
func (e *Enricher) Run(ctx context.Context) Result {
	start := time.Now()
	result := Result{InputFile: e.inputPath}

	fail := func(err error) Result {
		result.Error = err
		result.Duration = time.Since(start)
		e.logger.Error("run failed", "file", e.inputPath, "error", err)
		return result
	}

	// Step 1: parse and classify.
	e.report(types.StageReading, "reading settlement report", -1)
	ds, err := ReadReport(e.inputPath)
	if err != nil {
		return fail(fmt.Errorf("failed to read report: %w", err))
	}

	// Step 2: validate.
	e.report(types.StageValidating, "validating data rows", -1)
	vr := validation.Validate(ds, e.cfg.RequiredColumn)
	if err := vr.Err(); err != nil {
		return fail(err)
	}
	result.Warnings = vr.WarningCount
	for _, p := range vr.Problems {
		e.logger.Warn("validation", "file", e.inputPath, "problem", p.String())
	}

	// Step 3: connect to the store, unless one was injected.
	store := e.store
	if store == nil {
		e.report(types.StageConnecting, "connecting to key-value store", -1)
		store, err = kvstore.Open(e.cfg.RedisURL, e.cfg.ConnectTimeout.Std())
		if err != nil {
			return fail(fmt.Errorf("failed to connect to store: %w", err))
		}
		defer func() {
			if cerr := store.Close(); cerr != nil {
				e.logger.Warn("closing store connection", "error", cerr)
			}
		}()
	}

	// Step 4: enrich every data row in place.
	result.Stats = e.Process(ctx, ds, store)

	// Step 5: serialize with the original row interleaving.
	e.report(types.StageWriting, "writing enriched report", -1)
	output := csvwriter.Serialize(ds)

	if err := os.WriteFile(e.outputPath, output, 0644); err != nil {
		return fail(fmt.Errorf("failed to write output: %w", err))
	}

	result.OutputFile = e.outputPath
	result.Success = true
	result.Duration = time.Since(start)

	e.report(types.StageComplete, fmt.Sprintf(
		"enriched %d rows: %d found, %d not found, %d errors",
		result.Stats.Processed, result.Stats.Found, result.Stats.NotFound, result.Stats.Errors), 100)

	return result
}

// =============================================================================
// PROCESS
// =============================================================================

// Process resolves a home transaction id for every data row of the dataset,
// in original order, annotating each row and accumulating statistics. The
// output column is appended to the dataset's column set.
//
// Per-row lookup failures are logged and absorbed; Process never aborts.
func (e *Enricher) Process(ctx context.Context, ds *types.Dataset, store kvstore.Store) types.RunStatistics {
	dataRows := ds.DataRows()
	stats := types.RunStatistics{TotalDataRows: len(dataRows)}

	ds.Columns = append(ds.Columns, e.cfg.OutputColumn)

	for _, row := range dataRows {
		transferID := strings.TrimSpace(row.Fields[e.cfg.RequiredColumn])

		var value string
		var class outcome

		if transferID == "" {
			// Blank id: skip the store entirely. Renders the same sentinel
			// as a genuine miss, which keeps the output contract of the
			// original report format.
			class = outcomeNotFound
		} else {
			value, class = e.resolve(ctx, store, transferID)
		}

		switch class {
		case outcomeFound:
			row.Fields[e.cfg.OutputColumn] = value
			stats.Found++
		case outcomeNotFound:
			row.Fields[e.cfg.OutputColumn] = SentinelNotFound
			stats.NotFound++
		case outcomeError:
			row.Fields[e.cfg.OutputColumn] = SentinelError
			stats.Errors++
		}
		stats.Processed++

		if stats.Processed%e.cfg.ProgressInterval == 0 || stats.Processed == stats.TotalDataRows {
			percent := stats.Processed * 100 / stats.TotalDataRows
			e.report(types.StageProcessing,
				fmt.Sprintf("processed %d of %d rows", stats.Processed, stats.TotalDataRows), percent)
		}
	}

	return stats
}

// resolve performs the two-key fallback lookup for one transfer id.
//
// Only key absence falls through to the second key: a hit with an
// undecodable payload is an error, and a hit without the target field is a
// miss, in both cases without consulting the other key.
func (e *Enricher) resolve(ctx context.Context, store kvstore.Store, transferID string) (string, outcome) {
	keys := []string{
		fmt.Sprintf("%s_in_%s", e.cfg.KeyPrefix, transferID),
		fmt.Sprintf("%s_out_%s", e.cfg.KeyPrefix, transferID),
	}

	for _, key := range keys {
		payload, found, err := store.Get(ctx, key)
		if err != nil {
			e.logger.Warn("lookup failed", "key", key, "error", err)
			return "", outcomeError
		}
		if !found {
			continue
		}

		if !gjson.Valid(payload) {
			e.logger.Warn("undecodable payload", "key", key)
			return "", outcomeError
		}

		field := gjson.Get(payload, homeTransactionField)
		if !field.Exists() {
			return "", outcomeNotFound
		}
		return field.String(), outcomeFound
	}

	return "", outcomeNotFound
}

// report sends a staged progress update. percent is -1 for stages without a
// meaningful percentage.
func (e *Enricher) report(stage types.ProgressStage, message string, percent int) {
	e.reporter.Report(types.ProgressUpdate{
		Stage:   stage,
		Message: message,
		Percent: percent,
	})
}

// =============================================================================
// REPORT READING
// =============================================================================

// ReadReport parses a settlement report file, dispatching on the extension:
// .xlsx files go through the spreadsheet front end, everything else is
// treated as CSV. Both paths produce identically classified datasets.
func ReadReport(path string) (*types.Dataset, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm":
		return xlsxparser.ParseFile(path)
	default:
		return csvparser.ParseFile(path)
	}
}
