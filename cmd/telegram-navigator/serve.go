package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/codex-k8s/telegram-navigator/internal/config"
	httpapi "github.com/codex-k8s/telegram-navigator/internal/http"
	"github.com/codex-k8s/telegram-navigator/internal/i18n"
	"github.com/codex-k8s/telegram-navigator/internal/log"
	"github.com/codex-k8s/telegram-navigator/internal/metrics"
	"github.com/codex-k8s/telegram-navigator/internal/state"
	"github.com/codex-k8s/telegram-navigator/internal/telegram"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the bot and its HTTP endpoints",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("config error: %w", err)
		}
		if err := cfg.RequireToken(); err != nil {
			return err
		}
		return serve(cmd.Context(), cfg)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func serve(parent context.Context, cfg config.Config) error {
	logger := log.New(cfg.LogLevel, cfg.ServiceName)

	catalog, err := openCatalog(cfg.DataDir)
	if err != nil {
		return fmt.Errorf("load trees: %w", err)
	}
	if err := requireLanguage(catalog, cfg.DefaultLang); err != nil {
		return err
	}
	logger.Info("Trees loaded", "languages", catalog.Languages(), "data_dir", cfg.DataDir)

	messages, err := i18n.LoadAll(append(catalog.Languages(), cfg.Lang, cfg.DefaultLang)...)
	if err != nil {
		return fmt.Errorf("load i18n: %w", err)
	}

	server := httpapi.New(cfg.HTTPAddr(), logger)
	store, closeStore := openStore(cfg, server, logger)
	defer closeStore()

	m := metrics.New()
	baseCtx, cancel := context.WithCancel(parent)
	defer cancel()

	service, err := telegram.New(baseCtx, cfg, telegram.Deps{
		Source:   catalog,
		Store:    store,
		Messages: messages,
		Metrics:  m,
	}, logger)
	if err != nil {
		return fmt.Errorf("init telegram service: %w", err)
	}

	server.Handle("/metrics", m.Handler())
	server.Handle("/resolve", httpapi.NewResolveHandler(catalog, httpapi.ResolveOptions{
		DefaultLang: cfg.DefaultLang,
		BotUsername: service.BotUsername(),
		Placement:   telegram.Placement(cfg),
	}, m, logger))
	if webhook := service.WebhookHandler(); webhook != nil {
		server.Handle("/webhook", webhook)
	}

	if err := service.Start(baseCtx); err != nil {
		return fmt.Errorf("start telegram updates: %w", err)
	}
	server.SetReady(true)

	errCh := make(chan error, 1)
	go func() { errCh <- server.ListenAndServe() }()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT, syscall.SIGHUP)

	select {
	case sig := <-sigCh:
		logger.Info("shutdown requested", "signal", sig.String())
	case err := <-errCh:
		logger.Error("http server stopped", "error", err)
	}

	cancel()
	server.SetReady(false)
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer shutdownCancel()
	_ = server.Shutdown(shutdownCtx)
	_ = service.Stop(shutdownCtx)
	return nil
}

// openStore picks Redis when configured and registers its ping as a readiness check.
func openStore(cfg config.Config, server *httpapi.Server, logger *slog.Logger) (state.Store, func()) {
	if !cfg.RedisEnabled() {
		logger.Info("User state kept in memory")
		return state.NewMemory(), func() {}
	}
	store := state.NewRedis(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB,
		state.WithPrefix(cfg.RedisPrefix),
		state.WithTTL(cfg.StateTTL),
	)
	server.AddReadyCheck(store.Ping)
	logger.Info("User state kept in redis", "addr", cfg.RedisAddr, "prefix", cfg.RedisPrefix)
	return store, func() {
		if err := store.Close(); err != nil {
			logger.Warn("Failed to close redis client", "error", err)
		}
	}
}
