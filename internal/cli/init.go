// Package cli holds the start-up steps shared by the fintrack binaries.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"sort"
	"syscall"

	"github.com/joho/godotenv"

	"fintrack/internal/config"
	"fintrack/internal/log"
	"fintrack/internal/services"
)

// LoadEnvFile loads .env files for local development. A missing file is not
// an error.
func LoadEnvFile(filenames ...string) error {
	if err := godotenv.Load(filenames...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("load env file: %w", err)
	}
	return nil
}

// SetupLogger builds the process logger at the configured level and makes it
// the slog default.
func SetupLogger(cfg *config.Config, component string) *log.Logger {
	logCfg := log.DefaultConfig()
	logCfg.Component = component
	if level, err := cfg.SlogLevel(); err == nil {
		logCfg.Level = level
	}
	logger := log.New(logCfg)
	log.SetDefault(logger)
	return logger
}

// LoadAndValidateConfig loads the configuration and runs validate on it.
// A nil validate means (*config.Config).Validate.
func LoadAndValidateConfig(validate func(*config.Config) error) (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if validate == nil {
		validate = (*config.Config).Validate
	}
	if err := validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// SignalContext is cancelled on SIGINT or SIGTERM.
func SignalContext(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
}

// SeedLedger applies the configured budgets and imports the seed file, if
// any. Seed lines that fail are logged and skipped.
func SeedLedger(ctx context.Context, svc *services.TransactionService, cfg *config.Config) (services.ImportResult, error) {
	categories := make([]string, 0, len(cfg.Budgets))
	for c := range cfg.Budgets {
		categories = append(categories, c)
	}
	sort.Strings(categories)
	for _, c := range categories {
		if err := svc.SetBudget(ctx, c, cfg.Budgets[c]); err != nil {
			return services.ImportResult{}, err
		}
	}

	result := services.ImportResult{Errors: []string{}}
	if cfg.SeedFile == "" {
		return result, nil
	}
	raw, err := os.ReadFile(cfg.SeedFile)
	if err != nil {
		return result, fmt.Errorf("read seed file: %w", err)
	}
	result = svc.ImportCSV(ctx, string(raw))

	logger := log.FromContext(ctx)
	for _, e := range result.Errors {
		logger.WarnContext(ctx, "Seed line skipped", log.FieldError, e)
	}
	logger.InfoContext(ctx, "Ledger seeded",
		"file", cfg.SeedFile,
		"imported", result.Imported,
		"failed", len(result.Errors))
	return result, nil
}
