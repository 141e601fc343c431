package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/MikeSquared-Agency/doorstep/internal/anthropic"
	"github.com/MikeSquared-Agency/doorstep/internal/api"
	"github.com/MikeSquared-Agency/doorstep/internal/archive"
	"github.com/MikeSquared-Agency/doorstep/internal/coach"
	"github.com/MikeSquared-Agency/doorstep/internal/config"
	"github.com/MikeSquared-Agency/doorstep/internal/conversation"
	"github.com/MikeSquared-Agency/doorstep/internal/extractor"
	"github.com/MikeSquared-Agency/doorstep/internal/hermes"
	"github.com/MikeSquared-Agency/doorstep/internal/knowledge"
	"github.com/MikeSquared-Agency/doorstep/internal/prompt"
	"github.com/MikeSquared-Agency/doorstep/internal/slack"
	"github.com/MikeSquared-Agency/doorstep/internal/store"
	"github.com/MikeSquared-Agency/doorstep/web"
)

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "failed to read .env: %v\n", err)
	}

	cfg := config.Load()
	setupLogging(cfg.LogLevel)

	slog.Info("doorstep starting", "port", cfg.Port)

	if err := cfg.Validate(); err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Database
	if err := store.Migrate(cfg.DatabaseURL, slog.Default()); err != nil {
		slog.Error("failed to migrate database", "error", err)
		os.Exit(1)
	}
	db, err := store.New(ctx, cfg.DatabaseURL)
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()
	slog.Info("database connected")

	persona, err := prompt.LoadPersona(cfg.PersonaFile)
	if err != nil {
		slog.Error("failed to load persona", "error", err)
		os.Exit(1)
	}

	// Anthropic client
	llm := anthropic.NewClient(cfg.AnthropicAPIKey, cfg.AnthropicModel)
	slog.Info("anthropic client ready", "model", cfg.AnthropicModel, "timeout", cfg.ModelTimeout)

	ext := extractor.New(llm, cfg.MaxTokens, slog.Default())

	// NATS/Hermes (optional, events are best effort)
	var (
		hermesClient *hermes.Client
		knowledgePub knowledge.Publisher
		archivePub   archive.Publisher
	)
	if cfg.NatsURL != "" {
		hermesClient, err = hermes.NewClient(ctx, cfg.NatsURL, cfg.NatsToken, slog.Default())
		if err != nil {
			slog.Error("failed to connect to NATS", "error", err)
			os.Exit(1)
		}
		defer hermesClient.Close()
		knowledgePub, archivePub = hermesClient, hermesClient
		slog.Info("NATS connected", "url", cfg.NatsURL)
	} else {
		slog.Warn("NATS not configured, running without events")
	}

	// Slack poster (optional)
	var notifier archive.Notifier
	if cfg.SlackBotToken != "" && cfg.SlackChannel != "" {
		notifier = slack.NewPoster(cfg.SlackBotToken, cfg.SlackChannel, slog.Default())
		slog.Info("slack poster ready", "channel", cfg.SlackChannel)
	}

	kn := knowledge.New(db, knowledge.NewCache(cfg.KnowledgeCacheTTL, nil), knowledgePub, slog.Default())
	if hermesClient != nil {
		if err := hermesClient.Subscribe(hermes.SubjectKnowledgeChanged, kn.HandleKnowledgeChanged); err != nil {
			slog.Error("failed to subscribe to knowledge events", "error", err)
			os.Exit(1)
		}
	}

	registry := conversation.NewRegistry()
	registry.StartSweeper(ctx, sweepInterval(cfg.SessionIdleTTL), cfg.SessionIdleTTL, slog.Default())

	arch := archive.New(db, archivePub, notifier, slog.Default())
	practice := coach.New(registry, kn, llm, ext, coach.Options{
		Persona:      persona,
		MaxTokens:    cfg.MaxTokens,
		ModelTimeout: cfg.ModelTimeout,
	}, slog.Default())

	if cfg.ManagerPIN == "" {
		slog.Warn("MANAGER_PIN not set, manager views are locked")
	}

	// HTTP API
	srv := api.NewServer(api.Deps{
		Coach:      practice,
		Archive:    arch,
		Knowledge:  kn,
		ManagerPIN: cfg.ManagerPIN,
		Model:      llm.Model(),
		Sessions:   registry,
		Static:     web.Handler(),
		Logger:     slog.Default(),
	})
	httpSrv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	go func() {
		slog.Info("API server starting", "addr", httpSrv.Addr)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("HTTP server error", "error", err)
			stop()
		}
	}()

	slog.Info("doorstep ready", "port", cfg.Port)

	<-ctx.Done()
	slog.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		slog.Error("forced shutdown", "error", err)
	}
	arch.Wait()
	slog.Info("doorstep stopped")
}

// sweepInterval checks for idle conversations a few times per idle window.
func sweepInterval(idle time.Duration) time.Duration {
	if idle <= 0 {
		return 0
	}
	return max(idle/4, time.Minute)
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
