package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/verdicthq/verdict/internal/api"
	"github.com/verdicthq/verdict/internal/config"
	"github.com/verdicthq/verdict/internal/events"
	"github.com/verdicthq/verdict/internal/openrouter"
	"github.com/verdicthq/verdict/internal/pipeline"
	"github.com/verdicthq/verdict/internal/processor"
	"github.com/verdicthq/verdict/internal/store"
)

func main() {
	cfg := config.Load()
	setupLogging(cfg.LogLevel)

	slog.Info("verdict starting", "port", cfg.Port)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Database
	if cfg.DatabaseURL == "" {
		slog.Error("DATABASE_URL is required")
		os.Exit(1)
	}
	db, err := store.New(ctx, cfg.DatabaseURL)
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()
	slog.Info("database connected")

	// OpenRouter client
	if cfg.OpenRouterAPIKey == "" {
		slog.Error("OPENROUTER_API_KEY is required")
		os.Exit(1)
	}
	llm := openrouter.NewClient(cfg.OpenRouterAPIKey, cfg.PrimaryModel, cfg.FallbackModel, cfg.RequestTimeout, slog.Default())
	llm.SetBaseURL(cfg.OpenRouterBaseURL)
	llm.SetAppInfo(cfg.AppURL, "VERDICT")
	slog.Info("openrouter client ready", "primary", cfg.PrimaryModel, "fallback", cfg.FallbackModel)

	// NATS
	ev, err := events.NewClient(cfg.NatsURL, cfg.NatsToken, slog.Default())
	if err != nil {
		slog.Error("failed to connect to NATS", "error", err)
		os.Exit(1)
	}
	defer ev.Close()
	slog.Info("NATS connected", "url", cfg.NatsURL)

	// Judgment pipeline, fed by payment confirmations
	pipe := pipeline.New(db, llm, ev, slog.Default())
	proc := processor.New(pipe, slog.Default())

	if err := ev.Subscribe(events.SubjectCasePaid, proc.HandleCasePaid); err != nil {
		slog.Error("failed to subscribe to payment events", "error", err)
		os.Exit(1)
	}

	// HTTP API
	srv := api.NewServer(api.Config{
		Port:          cfg.Port,
		APIToken:      cfg.APIToken,
		AppURL:        cfg.AppURL,
		CheckoutURL:   cfg.CheckoutURL,
		WebhookSecret: cfg.WebhookSecret,
		PriceAmount:   cfg.PriceAmount,
		PriceCurrency: cfg.PriceCurrency,
	}, db, ev, slog.Default())
	go func() {
		if err := srv.Start(); err != nil {
			slog.Error("HTTP server error", "error", err)
		}
	}()

	if err := ev.Publish(events.SubjectServiceStarted, map[string]any{
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"port":      cfg.Port,
	}); err != nil {
		slog.Warn("failed to publish startup event", "error", err)
	}

	slog.Info("verdict ready", "port", cfg.Port)

	// Graceful shutdown
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh
	slog.Info("shutting down")
	cancel()
	slog.Info("verdict stopped")
}

func setupLogging(level string) {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: lvl})
	slog.SetDefault(slog.New(handler))
}
