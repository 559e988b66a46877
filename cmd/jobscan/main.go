package main

import (
	"fmt"
	"io"
	"os"

	"github.com/go-json-experiment/json"
	"github.com/go-json-experiment/json/jsontext"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	// Global flags
	verbose bool
	cfgPath string
	jsonOut bool

	// Loaded configuration, file values overridden by flags
	cfg = defaultConfig()

	// Logger
	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "jobscan",
	Short: "jobscan - payload scanner for job metric JSON documents",
	Long: `jobscan locates the per-node "data" payloads inside job metric JSON
documents without building a document tree.

A document maps metric names to records carrying a "series" array of
per-node measurements; jobscan tokenizes the document in one pass, walks
the token stream in a second pass, and reports one payload descriptor per
"data" member it finds. It reads plain, gzip, zstd and lz4 compressed
files, one at a time or across a whole sharded job archive.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		zcfg := zap.NewProductionConfig()
		if verbose {
			zcfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}

		var err error
		logger, err = zcfg.Build()
		if err != nil {
			return fmt.Errorf("initializing logger: %w", err)
		}

		if cfgPath != "" {
			if err := cfg.Load(cfgPath); err != nil {
				return err
			}
			logger.Debug("configuration loaded", zap.String("path", cfgPath))
		}

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", "", "YAML configuration file")
	rootCmd.PersistentFlags().BoolVar(&jsonOut, "json", false, "Emit reports as JSON")

	rootCmd.AddCommand(scanCmd)
	rootCmd.AddCommand(archiveCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// writeJSON renders a report value as indented JSON.
func writeJSON(w io.Writer, v any) error {
	if err := json.MarshalWrite(w, v, jsontext.WithIndent("  ")); err != nil {
		return fmt.Errorf("encoding report: %w", err)
	}
	_, err := fmt.Fprintln(w)

	return err
}
