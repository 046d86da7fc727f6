package telegram

import (
	"fmt"
	"log/slog"
	"strings"
)

const tokenMask = "BOT_TOKEN"

// telegoLogger adapts slog logger to telego.Logger and masks the bot token.
type telegoLogger struct {
	log   *slog.Logger
	token string
}

func (l telegoLogger) Debugf(format string, args ...any) {
	l.log.Debug("telegram", "message", l.format(format, args...))
}

func (l telegoLogger) Errorf(format string, args ...any) {
	l.log.Error("telegram", "message", l.format(format, args...))
}

func (l telegoLogger) format(format string, args ...any) string {
	msg := format
	if len(args) > 0 {
		msg = fmt.Sprintf(format, args...)
	}
	if l.token != "" {
		msg = strings.ReplaceAll(msg, l.token, tokenMask)
	}
	return msg
}
