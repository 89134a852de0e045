// =============================================================================
// Settlement Report Enricher - Validate Command
// =============================================================================
//
// This file defines the 'validate' command, a dry check of the configuration
// and the staged input files. It parses and validates every report but never
// contacts the key-value store and writes nothing.
//
// COMMAND USAGE:
//   enricher validate
//
// =============================================================================

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/settleops/settlement-enricher/internal/enricher"
	"github.com/settleops/settlement-enricher/internal/validation"
	"github.com/settleops/settlement-enricher/pkg/utils"
)

// validateCmd represents the 'validate' command.
var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate configuration and staged reports without processing",
	Long: `The validate command loads the configuration, then parses and validates
every settlement report staged in the input directory. It reports schema
problems (missing Transfer ID column, empty reports) and warnings (blank
transfer ids) without contacting the key-value store or writing output.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runValidate()
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func runValidate() error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	logger := newLogger(cfg)

	fm := utils.NewFileManager(cfg.InputDir, cfg.OutputDir, cfg.ArchiveDir)
	files, err := fm.DiscoverInputFiles()
	if err != nil {
		return err
	}

	if len(files) == 0 {
		logger.Info("no settlement reports found", "dir", cfg.InputDir)
		return nil
	}

	var invalid int
	for _, file := range files {
		ds, err := enricher.ReadReport(file)
		if err != nil {
			invalid++
			logger.Error("unreadable report", "file", file, "error", err)
			continue
		}

		result := validation.Validate(ds, cfg.RequiredColumn)
		for _, p := range result.Problems {
			logger.Warn("validation", "file", file, "problem", p.String())
		}

		if !result.IsValid {
			invalid++
			continue
		}
		logger.Info("report valid",
			"file", file,
			"data_rows", len(ds.DataRows()),
			"warnings", result.WarningCount,
		)
	}

	if invalid > 0 {
		return fmt.Errorf("%d of %d reports failed validation", invalid, len(files))
	}
	return nil
}
