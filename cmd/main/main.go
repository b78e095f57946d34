package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/Houeta/catalog-flow/internal/bot"
	"github.com/Houeta/catalog-flow/internal/config"
	"github.com/Houeta/catalog-flow/internal/notification"
	"github.com/Houeta/catalog-flow/internal/repository/sqlite"
	"github.com/Houeta/catalog-flow/internal/services/checker"
	"github.com/Houeta/catalog-flow/internal/storefront"
)

// Constants for different environment types.
const (
	envLocal = "local"
	envDev   = "development"
	envProd  = "production"
)

// main is the entry point of the application.
func main() {
	// Create a context that will be canceled when an interrupt signal is received.
	// This allows for graceful shutdown.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := config.MustLoad()

	// Set up the logger based on the environment.
	logger := setupLogger(cfg.Env)

	fetcher := storefront.NewClient(logger, cfg.BaseURL,
		storefront.WithHTTPClient(&http.Client{Timeout: cfg.Shop.HTTPTimeout}),
		storefront.WithUserAgent(cfg.Shop.UserAgent),
		storefront.WithLocalization(cfg.Shop.Country, cfg.Shop.Currency),
		storefront.WithMaxPages(cfg.Shop.MaxPages),
	)
	formatter := notification.NewFormatter(cfg.BaseURL, notification.WithCurrency(cfg.Shop.Currency))

	notifiers := []notification.Notifier{
		notification.NewNtfy(logger, cfg.Ntfy.URL, cfg.Ntfy.Topic, notification.WithAccessToken(cfg.Ntfy.Token)),
	}

	if cfg.Tg.Enabled() {
		if err := os.MkdirAll(filepath.Dir(cfg.StoragePath), 0o750); err != nil {
			log.Fatalf("Failed to create storage directory: %v", err)
		}

		repo, err := sqlite.NewRepository(ctx, logger, cfg.StoragePath)
		if err != nil {
			log.Fatalf("Failed to init storage: %v", err)
		}
		defer repo.Close()

		tgBot, err := bot.NewBot(logger, cfg.Tg.Token, cfg.Tg.Timeout, repo, cfg.ProductIDs)
		if err != nil {
			log.Fatalf("Failed to init bot: %v", err)
		}

		// Start the bot in a goroutine to allow main to run the checker.
		go tgBot.Start()
		defer tgBot.Stop()

		notifiers = append(notifiers, tgBot)
	}

	updateChecker := checker.NewChecker(
		logger,
		fetcher,
		formatter,
		notification.NewMulti(logger, notifiers...),
		cfg.ProductIDs,
	)

	// Log that the application has started.
	logger.InfoContext(ctx, "Application started. Press Ctrl+C to stop.",
		"products", cfg.ProductIDs,
		"poll_interval", cfg.PollInterval,
		"retry_interval", cfg.RetryInterval,
	)

	// Run blocks until the context is canceled (e.g., by Ctrl+C).
	if err := updateChecker.Run(ctx, cfg.PollInterval, cfg.RetryInterval); err != nil {
		logger.ErrorContext(ctx, "Checker stopped with error", "error", err)
	}

	// Log graceful shutdown completion.
	logger.InfoContext(ctx, "Application stopped gracefully.")
}

// setupLogger initializes and returns a logger based on the environment provided.
func setupLogger(env string) *slog.Logger {
	var log *slog.Logger

	switch env {
	case envLocal:
		log = slog.New(
			slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
				Level:     slog.LevelDebug,
				AddSource: true,
			}),
		)
	case envDev:
		log = slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
				Level: slog.LevelInfo,
			}),
		)
	case envProd:
		log = slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
				Level:       slog.LevelWarn,
				ReplaceAttr: dropTime,
			}),
		)
	default:
		log = slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
				Level:       slog.LevelError,
				ReplaceAttr: dropTime,
			}),
		)

		log.Error(
			"The env parameter was not specified or was invalid. Logging will be minimal, by default.",
			slog.String("available_envs", "local, development, production"))
	}

	return log
}

func dropTime(_ []string, a slog.Attr) slog.Attr {
	if a.Key == slog.TimeKey {
		return slog.Attr{}
	}
	return a
}
