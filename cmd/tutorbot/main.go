package main

import (
	"context"
	"os"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"tutornotes/internal/bot"
	"tutornotes/internal/cli"
	"tutornotes/internal/llm"
	applog "tutornotes/internal/log"
	"tutornotes/internal/vocab"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(os.Getenv("LOG_LEVEL"), applog.ComponentApp)
	logger.Info("Starting tutorbot")

	cfg := cli.LoadAndValidateConfig(logger)
	if cfg.TelegramToken == "" {
		logger.Error("TG_BOT_TOKEN is required")
		os.Exit(1)
	}
	table := cli.LoadCodes(logger, cfg.CodesFile)

	startCtx, cancelStart := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancelStart()

	pipeline, err := cli.NewPipeline(startCtx, cfg, table, logger)
	if err != nil {
		logger.Error("Failed to initialize debit note pipeline", applog.FieldError, err)
		os.Exit(1)
	}

	opts := bot.Options{
		Notes:         pipeline.Notes,
		Vocab:         pipeline.Renderer,
		Codes:         table,
		InputDir:      cfg.InputDir,
		Logger:        logger.WithComponent(applog.ComponentBot),
		ChatPerMinute: cfg.ChatRatePerMinute,
	}

	var llmClient *llm.Client
	if cfg.GeminiAPIKey != "" {
		llmClient, err = llm.New(startCtx, cfg.GeminiAPIKey, cfg.GeminiModel, logger.WithComponent(applog.ComponentLLM))
		if err != nil {
			logger.Warn("Failed to initialize Gemini client, chat and meaning lookup disabled", applog.FieldError, err)
		} else {
			opts.Chatter = llmClient
			opts.Filler = vocab.NewResolver(llmClient, cfg.VocabLookupConcurrency, logger.WithComponent(applog.ComponentVocab))
		}
	} else {
		logger.Info("GEMINI_API_KEY not set, chat and meaning lookup disabled")
	}

	api, err := tgbotapi.NewBotAPI(cfg.TelegramToken)
	if err != nil {
		logger.Error("Failed to connect to Telegram", applog.FieldError, err)
		os.Exit(1)
	}
	logger.Info("Authorized on Telegram", "account", api.Self.UserName)

	ctx, done := cli.GracefulShutdown(logger, 10*time.Second, func() {
		api.StopReceivingUpdates()
		if llmClient != nil {
			if err := llmClient.Close(); err != nil {
				logger.Error("Failed to close Gemini client", applog.FieldError, err)
			}
		}
		if err := pipeline.Close(); err != nil {
			logger.Error("Failed to close backend", applog.FieldError, err)
		}
	})

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	if err := bot.New(api, opts).Run(ctx, api.GetUpdatesChan(u)); err != nil && err != context.Canceled {
		logger.Error("Bot stopped", applog.FieldError, err)
	}
	cli.WaitForShutdown(ctx, done)
}
