package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/YoungY620/ingest/ingestion"
)

var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Run the ingestion stage only",
	Long:  `Reads the source dataset, writes the raw copy and the train/test split, then prints the two paths.`,
	RunE:  runIngest,
}

func init() {
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, args []string) error {
	cfg, log, err := loadConfigAndSetup()
	if err != nil {
		return err
	}

	trainPath, testPath, err := ingestion.New(cfg.Splitter(), log.WithComponent("ingestion")).Run()
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), trainPath)
	fmt.Fprintln(cmd.OutOrStdout(), testPath)
	return nil
}
