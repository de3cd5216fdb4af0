package cmd

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/YoungY620/ingest/pipeline"
)

var quietFlag bool

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run ingestion, transformation and training once",
	Long:  `Runs every stage once and prints a summary of the produced artifacts. This is the default command.`,
	RunE:  runPipeline,
}

func init() {
	runCmd.Flags().BoolVarP(&quietFlag, "quiet", "q", false, "print only the test r2 score")
	rootCmd.AddCommand(runCmd)
}

func runPipeline(cmd *cobra.Command, args []string) error {
	cfg, log, err := loadConfigAndSetup()
	if err != nil {
		return err
	}

	p, err := pipeline.New(cfg, log)
	if err != nil {
		return err
	}
	defer p.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	res, err := p.Run(ctx)
	if err != nil {
		return err
	}
	if quietFlag {
		fmt.Fprintln(cmd.OutOrStdout(), res.Score)
		return nil
	}
	pipeline.PrintSummary(cmd.OutOrStdout(), res)
	return nil
}
