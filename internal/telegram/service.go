package telegram

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/mymmrac/telego"

	"github.com/codex-k8s/telegram-navigator/internal/callmess"
	"github.com/codex-k8s/telegram-navigator/internal/config"
	"github.com/codex-k8s/telegram-navigator/internal/i18n"
	"github.com/codex-k8s/telegram-navigator/internal/lang"
	"github.com/codex-k8s/telegram-navigator/internal/metrics"
	"github.com/codex-k8s/telegram-navigator/internal/state"
	"github.com/codex-k8s/telegram-navigator/internal/telegram/handlers"
	"github.com/codex-k8s/telegram-navigator/internal/telegram/updates"
	"github.com/codex-k8s/telegram-navigator/internal/voice"
)

// Service manages the Telegram bot lifecycle.
type Service struct {
	source  updates.Source
	handler *handlers.Handler
	// username is the bot identity used for the bot_username placeholder.
	username string
	log      *slog.Logger
}

// Deps are the collaborators shared with the HTTP API.
type Deps struct {
	Source   lang.Source
	Store    state.Store
	Messages map[string]i18n.Messages
	Metrics  *metrics.Metrics
}

// New creates a new Telegram service.
func New(ctx context.Context, cfg config.Config, deps Deps, log *slog.Logger) (*Service, error) {
	bot, err := telego.NewBot(cfg.Token, telego.WithLogger(telegoLogger{log: log, token: cfg.Token}))
	if err != nil {
		return nil, err
	}

	username := cfg.BotUsername
	if username == "" {
		me, err := bot.GetMe(ctx)
		if err != nil {
			return nil, fmt.Errorf("get bot identity: %w", err)
		}
		username = me.Username
	}

	var source updates.Source
	if cfg.WebhookEnabled() {
		source = updates.NewWebhook(bot, cfg.WebhookURL, cfg.WebhookSecret, cfg.WebhookQueue, log)
	} else {
		source = updates.NewLongPolling(bot, cfg.PollTimeout, log)
	}

	var transcriber voice.Transcriber
	if cfg.OpenAIAPIKey != "" {
		transcriber = voice.NewOpenAITranscriber(cfg.OpenAIAPIKey, cfg.STTModel, cfg.STTTimeout, log)
	}

	handler := handlers.NewHandler(bot, handlers.Options{
		Source:      deps.Source,
		Store:       deps.Store,
		Messages:    deps.Messages,
		Lang:        cfg.Lang,
		DefaultLang: cfg.DefaultLang,
		HomeStatus:  cfg.HomeStatus,
		BotUsername: username,
		ParseMode:   cfg.ParseMode,
		Placement:   Placement(cfg),
		Transcriber: transcriber,
		Metrics:     deps.Metrics,
	}, log)

	log.Info("Telegram bot ready", "username", username, "webhook", cfg.WebhookEnabled(), "voice", transcriber != nil)
	return &Service{source: source, handler: handler, username: username, log: log}, nil
}

// Placement maps the row gap setting onto a placement policy.
func Placement(cfg config.Config) callmess.RowPlacement {
	if cfg.RowGap {
		return callmess.RowGapAfterExisting
	}
	return callmess.RowContiguous
}

// BotUsername returns the configured or discovered bot username.
func (s *Service) BotUsername() string {
	return s.username
}

// Handler exposes the update handler, e.g. to register extra routes.
func (s *Service) Handler() *handlers.Handler {
	return s.handler
}

// Start begins receiving Telegram updates.
func (s *Service) Start(ctx context.Context) error {
	if err := s.source.Start(ctx); err != nil {
		return err
	}
	go s.handler.Run(ctx, s.source.Updates())
	return nil
}

// Stop shuts down Telegram update processing.
func (s *Service) Stop(ctx context.Context) error {
	return s.source.Stop(ctx)
}

// WebhookHandler returns the webhook HTTP handler if enabled.
func (s *Service) WebhookHandler() http.Handler {
	return s.source.Handler()
}
