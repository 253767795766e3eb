package cmd

import (
	"context"
	"fmt"
	"io"

	"ddi-sync/core/config"
	"ddi-sync/core/ddi"
	"ddi-sync/core/logger"
	"ddi-sync/core/storage"
	"ddi-sync/feature/inventory"

	"go.uber.org/zap"
)

// setup loads configuration and builds the logger. Every subcommand starts
// here.
func setup() (*config.Config, *zap.Logger, error) {
	cfg, err := config.LoadConfig(".")
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}

	l, err := logger.New(&cfg.Log)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	return cfg, l, nil
}

// targetClient builds the DDI client or reports the unconfigured target.
func targetClient(cfg *config.Config) (ddi.Client, error) {
	client, err := ddi.NewClient(cfg.Target)
	if err != nil {
		return nil, fmt.Errorf("failed to build target store client: %w", err)
	}
	return client, nil
}

// openExport opens a local file or, with fromStorage set, an object from the
// configured bucket. Callers close the reader.
func openExport(ctx context.Context, cfg *config.Config, name string, fromStorage bool) (io.ReadCloser, inventory.Format, error) {
	if !fromStorage {
		return inventory.NewLoader(nil, "").FromFile(name)
	}

	store, err := storage.NewClient(cfg.Storage)
	if err != nil {
		return nil, "", fmt.Errorf("failed to connect to storage: %w", err)
	}
	return inventory.NewLoader(store, cfg.Storage.Bucket).FromObject(ctx, name)
}
