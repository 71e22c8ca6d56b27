package main

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/tidemark/tidemark/internal/collector"
	"github.com/tidemark/tidemark/internal/collector/yahoo"
	"github.com/tidemark/tidemark/internal/config"
	"github.com/tidemark/tidemark/internal/storage/archive"
	"github.com/tidemark/tidemark/internal/strategy"
	"github.com/tidemark/tidemark/internal/strategy/ma_crossover"
)

// loadConfig loads the config file when given, defaults otherwise.
func loadConfig(log *zap.Logger) (*config.Config, error) {
	var cfg *config.Config
	var err error

	if cfgFile != "" {
		cfg, err = config.Load(cfgFile)
		if err != nil {
			return nil, fmt.Errorf("loading config: %w", err)
		}
	} else {
		cfg = config.Defaults()
		log.Debug("no config file specified, using defaults")
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}

// buildLoader wires the configured provider behind the cached loader.
func buildLoader(cfg *config.Config, log *zap.Logger) (*collector.Loader, error) {
	return collector.NewLoader(yahoo.New(), collector.LoaderOptions{
		CacheDir: cfg.Data.CacheDir,
		CacheTTL: time.Duration(cfg.Data.CacheTTLHours) * time.Hour,
		Logger:   log,
	})
}

// buildRegistry registers the built-in strategies.
func buildRegistry() *strategy.Registry {
	reg := strategy.NewRegistry()
	reg.Register("ma_crossover", ma_crossover.NewFromParams)
	return reg
}

// buildArchive constructs the configured archive backend.
func buildArchive(cfg *config.Config) (archive.Storage, error) {
	switch cfg.Archive.Type {
	case "s3":
		return archive.NewS3(archive.S3Config{
			Bucket:    cfg.Archive.S3.Bucket,
			Endpoint:  cfg.Archive.S3.Endpoint,
			Region:    cfg.Archive.S3.Region,
			AccessKey: cfg.Archive.S3.AccessKey,
			SecretKey: cfg.Archive.S3.SecretKey,
			Prefix:    cfg.Archive.S3.Prefix,
		})
	default:
		return archive.NewLocalFS(cfg.Archive.Path)
	}
}
