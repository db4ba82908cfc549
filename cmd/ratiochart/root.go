package main

import (
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"

	"RatioChart/internal/collector"
	"RatioChart/internal/config"
	"RatioChart/internal/recorder"
)

func newRootCmd() *cobra.Command {
	var cfgPath string
	root := &cobra.Command{
		Use:          "ratiochart",
		Short:        "Two-symbol price ratio charts, grouped by day",
		SilenceUsage: true,
	}
	defaultPath := "configs/config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		defaultPath = v
	}
	root.PersistentFlags().StringVar(&cfgPath, "config", defaultPath, "path to config.yaml")

	root.AddCommand(newServeCmd(&cfgPath), newRatioCmd(&cfgPath))
	return root
}

func loadConfig(path string) (*config.Config, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}
	return cfg, nil
}

// newFetcher builds the configured provider behind the rate limit and breaker.
func newFetcher(cfg *config.Config) collector.Fetcher {
	var fetcher collector.Fetcher
	switch cfg.DataSource.Provider {
	case config.ProviderREST:
		fetcher = collector.NewRESTFetcher(cfg.DataSource.BaseURL, cfg.DataSource.APIKey, cfg.Proxy)
	case config.ProviderAlpaca:
		fetcher = collector.NewAlpacaFetcher(cfg.DataSource.APIKey, cfg.DataSource.APISecret, cfg.DataSource.BaseURL)
	case config.ProviderMock:
		log.Println("[INFO] data source: mock")
		return &collector.MockFetcher{}
	default:
		fetcher = collector.NewYahooFetcher(cfg.Proxy, cfg.DataSource.RelayURL)
	}
	log.Printf("[INFO] data source: %s", fetcher.Name())
	return collector.NewGuard(fetcher, collector.GuardConfig{
		RequestsPerSecond: cfg.Limits.RequestsPerSecond,
		Burst:             cfg.Limits.Burst,
		BreakerFailures:   cfg.Limits.BreakerFailures,
		BreakerTimeout:    cfg.Limits.BreakerTimeout,
	})
}

func newRecorder(cfg *config.Config) recorder.Recorder {
	if cfg.Database.SQLitePath == "" {
		return recorder.NewNoopRecorder()
	}
	sr, err := recorder.NewSQLiteRecorder(cfg.Database.SQLitePath)
	if err != nil {
		log.Printf("[WARN] init sqlite recorder failed, using noop: %v", err)
		return recorder.NewNoopRecorder()
	}
	return sr
}
