package main

import (
	"os"

	"github.com/YoungY620/ingest/cmd"
	"github.com/YoungY620/ingest/pipeline"
)

// Version is overridden at build time with -ldflags "-X main.Version=..."
var Version = "dev"

func main() {
	cmd.SetVersion(Version)
	if err := cmd.Execute(); err != nil {
		pipeline.PrintFailure(os.Stderr, err)
		os.Exit(1)
	}
}
