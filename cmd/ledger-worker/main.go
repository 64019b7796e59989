package main

import (
	"context"
	"errors"
	"os"
	"time"

	"tutornotes/internal/amqp"
	"tutornotes/internal/cli"
	"tutornotes/internal/ledger/google"
	applog "tutornotes/internal/log"
	"tutornotes/internal/worker"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(os.Getenv("LOG_LEVEL"), applog.ComponentWorker)
	logger.Info("Starting ledger-worker")

	cfg := cli.LoadAndValidateConfig(logger)
	if err := cfg.ValidateLedgerSync(); err != nil {
		logger.Error("Configuration validation failed", applog.FieldError, err)
		os.Exit(1)
	}

	repo := cli.InitSQLite(logger, cfg.SQLiteDBPath)

	sheets, err := google.New(context.Background(), cfg.GoogleSpreadsheetID, cfg.LedgerSheetName, google.Credentials{
		JSON: cfg.GoogleServiceAccountJSON,
		File: cfg.GoogleServiceAccountFile,
	})
	if err != nil {
		logger.Error("Failed to initialize Google Sheets client", applog.FieldError, err)
		os.Exit(1)
	}
	logger.Info("Google Sheets client initialized", "spreadsheet_id", cfg.GoogleSpreadsheetID, "sheet", cfg.LedgerSheetName)

	amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", applog.FieldError, err)
		os.Exit(1)
	}

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, func() {
		if err := amqpClient.Close(); err != nil {
			logger.Error("Failed to close AMQP client", applog.FieldError, err)
		}
		if err := repo.Close(); err != nil {
			logger.Error("Failed to close SQLite repository", applog.FieldError, err)
		}
	})

	syncWorker := worker.NewLedgerSyncWorker(repo, sheets, cfg.SyncBatchSize, logger.WithComponent(applog.ComponentWorker))

	// Notes issued while the worker was down are still pending.
	logger.Info("Performing startup sync check...")
	if err := syncWorker.StartupSyncCheck(ctx); err != nil {
		logger.Error("Failed startup sync check", applog.FieldError, err)
	}

	go syncWorker.RunPeriodic(ctx, cfg.SyncInterval)

	if err := amqpClient.ConsumeNoteIssued(ctx, syncWorker.HandleNoteIssued); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Message consumption failed", applog.FieldError, err)
		os.Exit(1)
	}
	cli.WaitForShutdown(ctx, done)
}
