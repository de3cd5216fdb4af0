package cmd

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/YoungY620/ingest/pipeline"
)

var skipInitial bool

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Re-run the pipeline whenever the source dataset changes",
	Long: `Watches the source dataset and re-runs every stage once a burst of writes
settles. Changes made while a run is in progress trigger one more run afterwards.`,
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().BoolVar(&skipInitial, "skip-initial", false, "skip the run at startup")
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	cfg, log, err := loadConfigAndSetup()
	if err != nil {
		return err
	}

	p, err := pipeline.New(cfg, log, pipeline.WithHistorySource("watch"))
	if err != nil {
		return err
	}
	defer p.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	watcher, err := pipeline.NewWatcher([]string{cfg.Ingestion.Source}, cfg.Watch.DebounceMs, cfg.Watch.MaxWaitMs,
		log.WithComponent("watch"), func(files []string) {
			log.Infof("Triggered by %d changed file(s)", len(files))
			log.Debugf("Changed files: %v", files)
			res, err := p.Run(ctx)
			if err != nil {
				log.Errorf("Run failed: %v", err)
				return
			}
			pipeline.PrintSummary(cmd.OutOrStdout(), res)
		})
	if err != nil {
		return err
	}
	defer watcher.Close()

	go func() {
		if err := watcher.Run(); err != nil {
			log.Errorf("Watcher error: %v", err)
		}
	}()

	if !skipInitial {
		watcher.Trigger()
	} else {
		log.Infof("Skipping initial run (--skip-initial)")
	}
	log.Infof("Watching %s", cfg.Ingestion.Source)

	<-ctx.Done()
	log.Infof("Shutting down...")
	// The deferred p.Close must not race a run still writing history.
	if err := watcher.Close(); err != nil {
		log.Warnf("Closing watcher: %v", err)
	}
	watcher.Wait()
	return nil
}
