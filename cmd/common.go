package cmd

import (
	"github.com/YoungY620/ingest/core/config"
	"github.com/YoungY620/ingest/core/logging"
)

// loadConfigAndSetup resolves the configuration (dotenv, file, environment,
// flags, in increasing precedence) and builds the logger.
func loadConfigAndSetup() (*config.Config, *logging.Logger, error) {
	if err := config.LoadEnvFile(envFileFlag); err != nil {
		return nil, nil, err
	}
	cfg, err := config.Load(configFlag)
	if err != nil {
		return nil, nil, err
	}
	cfg.ApplyOverrides(sourceFlag, logLevel)
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}

	log := logging.New(logging.WithLevel(cfg.Level()))
	if src := cfg.Source(); src != "" {
		log.Debugf("Config loaded from %s", src)
	}
	log.Debugf("Config: source=%s, seed=%d, test_size=%g, target=%s",
		cfg.Ingestion.Source, cfg.Ingestion.Seed, cfg.Ingestion.TestSize, cfg.Transformation.Target)
	return cfg, log, nil
}
