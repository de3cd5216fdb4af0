package cmd

import (
	"github.com/spf13/cobra"
)

var (
	// Version is set by main.go from build flags
	Version = "dev"

	// Global flags
	configFlag  string
	envFileFlag string
	sourceFlag  string
	logLevel    string
)

var rootCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Dataset ingestion and model training pipeline",
	Long: `Ingest reads a tabular dataset, keeps a raw copy, splits it into train and
test artifacts, fits a preprocessor and selects a regression model.

Commands:
  run     Run every stage once (default)
  ingest  Run the ingestion stage only
  watch   Re-run the pipeline whenever the source dataset changes
  status  Print the state of the last run
  config  Print the effective configuration`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFlag, "config", "c", "config.yaml", "config file path")
	rootCmd.PersistentFlags().StringVar(&envFileFlag, "env-file", "", "dotenv file with INGEST_* overrides (default: .env if present)")
	rootCmd.PersistentFlags().StringVarP(&sourceFlag, "source", "s", "", "source dataset (overrides ingestion.source)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level: debug/info/warn/error/silent")

	// run is the default command when no subcommand is provided
	rootCmd.RunE = func(cmd *cobra.Command, args []string) error {
		return runPipeline(cmd, args)
	}
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

// SetVersion sets the version for the root command
func SetVersion(v string) {
	Version = v
	rootCmd.Version = v
}
