// =============================================================================
// Settlement Report Enricher - Root Command
// =============================================================================
//
// This file defines the root command for the Cobra CLI and the shared
// configuration plumbing used by the subcommands.
//
// COMMAND STRUCTURE:
//   enricher
//   ├── process   (enrich staged settlement reports)
//   ├── validate  (check config and input files, no store contact)
//   └── version
//
// CONFIGURATION LAYERING:
//   1. config.yaml (or --config), parsed by internal/config
//   2. Environment overrides via Viper with the ENRICHER_ prefix
//      (ENRICHER_REDIS_URL, ENRICHER_LOG_LEVEL), with a local .env file
//      picked up through godotenv when present
//
// The assembled config struct is passed explicitly into the pipeline; no
// package below cmd reads flags or the environment.
//
// =============================================================================

package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/settleops/settlement-enricher/internal/config"
	"github.com/settleops/settlement-enricher/pkg/utils"
)

// cfgFile holds the path to the configuration file.
// Overridden with the --config flag.
var cfgFile string

// verbose enables debug logging regardless of the configured level.
var verbose bool

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "enricher",
	Short: "Settlement Report Enricher - augment settlement CSVs with home transaction ids",
	Long: `Settlement Report Enricher ingests settlement report files (CSV or XLSX),
looks up the home transaction id for every transaction row in the transfer
key-value store, and writes an enriched CSV that preserves the report's
section-header rows in their original positions.

Rows that cannot be resolved are marked NOT_FOUND; rows whose lookup fails
are marked ERROR. A per-run statistics summary is printed on completion.

Example Usage:
  enricher process                      # Enrich all reports in the input directory
  enricher process --file report.csv    # Enrich a single report
  enricher validate                     # Check config and staged files only`,
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
}

// Execute adds all child commands to the root command and runs it.
// Called once from main.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initEnv)

	rootCmd.PersistentFlags().StringVar(
		&cfgFile,
		"config",
		"config.yaml",
		"Path to the configuration file",
	)

	rootCmd.PersistentFlags().BoolVarP(
		&verbose,
		"verbose",
		"v",
		false,
		"Enable debug logging",
	)
}

// initEnv wires the environment override layer: a local .env file if one
// exists, then ENRICHER_-prefixed variables through Viper.
func initEnv() {
	// Missing .env is the normal case.
	_ = godotenv.Load()

	viper.SetEnvPrefix("ENRICHER")
	viper.AutomaticEnv()
}

// loadConfig assembles the effective configuration: file, then environment
// overrides. A missing config file falls back to defaults so the tool runs
// out of the box.
func loadConfig() (*config.Config, error) {
	var cfg *config.Config
	var err error

	if utils.FileExists(cfgFile) {
		cfg, err = config.Load(cfgFile)
		if err != nil {
			return nil, err
		}
	} else {
		cfg = config.Default()
	}

	if v := viper.GetString("redis_url"); v != "" {
		cfg.RedisURL = v
	}
	if v := viper.GetString("log_level"); v != "" {
		cfg.LogLevel = v
	}

	return cfg, nil
}

// newLogger builds the process logger from the configured level, with
// --verbose forcing debug.
func newLogger(cfg *config.Config) *slog.Logger {
	level := slog.LevelInfo
	switch cfg.LogLevel {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}
	if verbose {
		level = slog.LevelDebug
	}

	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}
