package shared

import (
	"strings"

	"github.com/mymmrac/telego"
)

// ParseMode maps the configured markup to a Telegram parse mode.
func ParseMode(markup string) string {
	switch strings.ToLower(strings.TrimSpace(markup)) {
	case "markdown", "markdownv2":
		return telego.ModeMarkdownV2
	default:
		return telego.ModeHTML
	}
}

// Escape escapes value so it renders literally under parseMode.
func Escape(parseMode, value string) string {
	switch parseMode {
	case telego.ModeMarkdownV2:
		return EscapeMarkdownV2(value)
	case telego.ModeHTML:
		return EscapeHTML(value)
	default:
		return value
	}
}

// Escaper returns Escape bound to parseMode.
func Escaper(parseMode string) func(string) string {
	return func(value string) string {
		return Escape(parseMode, value)
	}
}

// EscapeHTML escapes text for Telegram HTML mode.
func EscapeHTML(value string) string {
	replacer := strings.NewReplacer(
		"&", "&amp;",
		"<", "&lt;",
		">", "&gt;",
		`"`, "&quot;",
		"'", "&#39;",
	)
	return replacer.Replace(value)
}

// EscapeMarkdownV2 escapes text for Telegram MarkdownV2 mode.
func EscapeMarkdownV2(value string) string {
	return escapeWithSet(value, "_*[]()~`>#+-=|{}.!\\")
}

func escapeWithSet(value, escapedRunes string) string {
	if value == "" {
		return value
	}
	var builder strings.Builder
	builder.Grow(len(value) * 2)
	for _, r := range value {
		if strings.ContainsRune(escapedRunes, r) {
			builder.WriteByte('\\')
		}
		builder.WriteRune(r)
	}
	return builder.String()
}
