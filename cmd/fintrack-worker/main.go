package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"

	"golang.org/x/sync/errgroup"

	"fintrack/internal/amqp"
	"fintrack/internal/cli"
	"fintrack/internal/config"
	"fintrack/internal/log"
	"fintrack/internal/sheets"
	"fintrack/internal/sheets/google"
	"fintrack/internal/sheets/memory"
	"fintrack/internal/worker"
)

const amqpConnectAttempts = 10

func main() {
	mirrorKind := flag.String("mirror", "sheets", "mirror target: sheets or memory")
	flag.Parse()

	if err := cli.LoadEnvFile(); err != nil {
		log.New(log.DefaultConfig()).Error("Failed to load .env", log.FieldError, err)
		os.Exit(1)
	}

	validate := (*config.Config).ValidateWorker
	if *mirrorKind == "memory" {
		validate = validateMemoryWorker
	}
	cfg, err := cli.LoadAndValidateConfig(validate)
	if err != nil {
		log.New(log.DefaultConfig()).Error("Configuration validation failed", log.FieldError, err)
		os.Exit(1)
	}

	logger := cli.SetupLogger(cfg, log.ComponentWorker)
	if err := run(cfg, logger, *mirrorKind); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Worker stopped with error", log.FieldError, err)
		os.Exit(1)
	}
	logger.Info("Worker stopped gracefully")
}

func validateMemoryWorker(c *config.Config) error {
	if err := c.Validate(); err != nil {
		return err
	}
	if !c.AMQPEnabled() {
		return errors.New("worker configuration incomplete: AMQP_URL required")
	}
	return nil
}

func run(cfg *config.Config, logger *log.Logger, mirrorKind string) error {
	ctx, stop := cli.SignalContext(context.Background())
	defer stop()
	ctx = log.NewContext(ctx, logger)

	mirror, err := newMirror(ctx, cfg, mirrorKind)
	if err != nil {
		return err
	}

	client, err := amqp.ConnectWithRetry(ctx, cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue, amqpConnectAttempts)
	if err != nil {
		return err
	}
	defer client.Close()

	w := worker.NewMirrorWorker(mirror)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return w.Run(gctx, client)
	})
	return g.Wait()
}

func newMirror(ctx context.Context, cfg *config.Config, kind string) (sheets.LedgerMirror, error) {
	switch kind {
	case "memory":
		log.FromContext(ctx).Info("Mirroring into memory", "mirror", kind)
		return memory.New(), nil
	case "sheets":
		client, err := google.New(ctx, google.Options{
			SpreadsheetID:   cfg.GoogleSpreadsheetID,
			SheetName:       cfg.GoogleSheetName,
			CredentialsFile: cfg.GoogleServiceAccountFile,
			CredentialsJSON: cfg.GoogleServiceAccountJSON,
		})
		if err != nil {
			return nil, err
		}
		if err := client.EnsureHeader(ctx); err != nil {
			return nil, err
		}
		return client, nil
	default:
		return nil, fmt.Errorf("unknown mirror %q: want sheets or memory", kind)
	}
}
