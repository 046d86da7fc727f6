package updates

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/mymmrac/telego"
)

// LongPolling delivers Telegram updates via long polling.
type LongPolling struct {
	bot     *telego.Bot
	timeout int
	updates <-chan telego.Update
	log     *slog.Logger
}

// NewLongPolling creates a new long polling source waiting up to timeout seconds per request.
func NewLongPolling(bot *telego.Bot, timeout int, log *slog.Logger) *LongPolling {
	return &LongPolling{bot: bot, timeout: timeout, log: log}
}

// Start initializes long polling updates.
func (l *LongPolling) Start(ctx context.Context) error {
	// A webhook left over from a previous run blocks getUpdates.
	if err := l.bot.DeleteWebhook(ctx, &telego.DeleteWebhookParams{}); err != nil {
		l.log.Warn("Failed to delete webhook before polling", "error", err)
	}
	params := &telego.GetUpdatesParams{
		Timeout:        l.timeout,
		AllowedUpdates: allowedUpdates,
	}
	updates, err := l.bot.UpdatesViaLongPolling(ctx, params)
	if err != nil {
		return err
	}
	l.updates = updates
	l.log.Info("Telegram updates started via long polling", "timeout", l.timeout)
	return nil
}

// Updates returns the updates channel.
func (l *LongPolling) Updates() <-chan telego.Update {
	return l.updates
}

// Stop is a no-op; polling ends with the context passed to Start.
func (l *LongPolling) Stop(context.Context) error {
	return nil
}

// Handler is not used for long polling.
func (l *LongPolling) Handler() http.Handler {
	return nil
}
