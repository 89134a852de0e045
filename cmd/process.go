// =============================================================================
// Settlement Report Enricher - Process Command
// =============================================================================
//
// This file defines the 'process' command, which runs the enrichment
// pipeline over staged settlement reports.
//
// COMMAND USAGE:
//   enricher process [flags]
//
// FLAGS:
//   --file        : Process a single report instead of scanning the input dir
//   --no-archive  : Leave processed input files in place
//
// PROCESSING PIPELINE (per file):
//   1. Parse and classify the report (CSV or XLSX)
//   2. Validate the data rows
//   3. Connect to the transfer key-value store
//   4. Resolve a home transaction id for every data row
//   5. Write the enriched CSV to the output directory
//   6. Archive the input file
//
// Each file is an independent run with its own store connection; a fatal
// error in one file does not stop the batch unless continue_on_error is
// disabled in the configuration.
//
// =============================================================================

package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/settleops/settlement-enricher/internal/enricher"
	"github.com/settleops/settlement-enricher/pkg/utils"
)

// singleFile, when set, names one report to process instead of scanning
// the input directory.
var singleFile string

// noArchive leaves processed input files in place.
var noArchive bool

// processCmd represents the 'process' command.
var processCmd = &cobra.Command{
	Use:   "process",
	Short: "Enrich settlement reports with home transaction ids",
	Long: `The process command scans the input directory for settlement reports
(CSV or XLSX), resolves the home transaction id for every transaction row
against the transfer key-value store, and writes enriched CSVs to the
output directory.

Section-header rows in the reports are preserved verbatim at their original
positions. Rows that cannot be resolved are marked NOT_FOUND; rows whose
lookup fails are marked ERROR and counted separately.

On successful processing the input file is moved to the archive directory.
On a fatal error (unreadable file, missing Transfer ID column, store
unreachable) no output file is produced for that report.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runProcess(cmd.Context())
	},
}

func init() {
	rootCmd.AddCommand(processCmd)

	processCmd.Flags().StringVar(
		&singleFile,
		"file",
		"",
		"Process a single report file instead of scanning the input directory",
	)

	processCmd.Flags().BoolVar(
		&noArchive,
		"no-archive",
		false,
		"Leave processed input files in place",
	)
}

// runProcess orchestrates one batch.
func runProcess(ctx context.Context) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	logger := newLogger(cfg)

	fm := utils.NewFileManager(cfg.InputDir, cfg.OutputDir, cfg.ArchiveDir)
	if err := fm.EnsureDirectories(); err != nil {
		return err
	}

	// Resolve the work list: one explicit file, or everything staged.
	var files []string
	fromStaging := singleFile == ""
	if fromStaging {
		files, err = fm.DiscoverInputFiles()
		if err != nil {
			return err
		}
	} else {
		if !utils.FileExists(singleFile) {
			return fmt.Errorf("input file not found: %s", singleFile)
		}
		files = []string{singleFile}
	}

	if len(files) == 0 {
		logger.Info("no settlement reports found", "dir", cfg.InputDir)
		return nil
	}

	logger.Info("starting batch", "reports", len(files))

	var failed int
	for _, file := range files {
		outputPath := fm.OutputPath(file, cfg.OutputNameFormat)

		result := enricher.New(file, outputPath, cfg).
			WithLogger(logger).
			WithReporter(enricher.NewLogReporter(logger)).
			Run(ctx)

		if !result.Success {
			failed++
			logger.Error("report failed", "file", file, "error", result.Error)
			if !cfg.ContinueOnError {
				return fmt.Errorf("processing %s: %w", file, result.Error)
			}
			continue
		}

		logger.Info("report enriched",
			"file", file,
			"output", result.OutputFile,
			"rows", result.Stats.Processed,
			"found", result.Stats.Found,
			"not_found", result.Stats.NotFound,
			"errors", result.Stats.Errors,
			"warnings", result.Warnings,
			"duration", result.Duration,
		)

		if fromStaging && !noArchive {
			archived, err := fm.ArchiveInputFile(file)
			if err != nil {
				logger.Warn("failed to archive input", "file", file, "error", err)
			} else {
				logger.Debug("input archived", "file", archived)
			}
		}
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d reports failed", failed, len(files))
	}
	return nil
}
