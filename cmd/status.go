package cmd

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/YoungY620/ingest/pipeline"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Print the state of the last run",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, _, err := loadConfigAndSetup()
		if err != nil {
			return err
		}
		if cfg.Output.StatusPath == "" {
			return errors.New("output.status_path is not configured")
		}
		data, err := json.MarshalIndent(pipeline.GetStatus(cfg.Output.StatusPath), "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(data))
		return nil
	},
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Print the effective configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, _, err := loadConfigAndSetup()
		if err != nil {
			return err
		}
		fmt.Fprint(cmd.OutOrStdout(), cfg.PrettyYAML())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(statusCmd, configCmd)
}
