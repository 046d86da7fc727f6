package config

import (
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config describes runtime configuration for telegram-navigator.
type Config struct {
	// ServiceName is a human-friendly service name for logs.
	ServiceName string `env:"TG_NAVIGATOR_SERVICE_NAME" envDefault:"telegram-navigator"`
	// HTTPHost is the HTTP listen host.
	HTTPHost string `env:"TG_NAVIGATOR_HTTP_HOST" envDefault:"0.0.0.0"`
	// HTTPPort is the HTTP listen port.
	HTTPPort int `env:"TG_NAVIGATOR_HTTP_PORT" envDefault:"8080"`
	// LogLevel controls log verbosity (debug, info, warn, error).
	LogLevel string `env:"TG_NAVIGATOR_LOG_LEVEL" envDefault:"info"`
	// Lang is the preferred language for users without one.
	Lang string `env:"TG_NAVIGATOR_LANG" envDefault:"en"`
	// DefaultLang is used when the requested language has no text tree.
	DefaultLang string `env:"TG_NAVIGATOR_DEFAULT_LANG" envDefault:"en"`
	// Token is the Telegram bot token.
	Token string `env:"TG_NAVIGATOR_TOKEN"`
	// BotUsername overrides the username reported by getMe.
	BotUsername string `env:"TG_NAVIGATOR_BOT_USERNAME"`
	// DataDir holds language/ and callback/ trees; empty uses the bundled ones.
	DataDir string `env:"TG_NAVIGATOR_DATA_DIR"`
	// HomeStatus is where /start and the home callback lead.
	HomeStatus string `env:"TG_NAVIGATOR_HOME_STATUS" envDefault:"home@main"`
	// RowGap leaves one free row position after existing keyboard rows.
	RowGap bool `env:"TG_NAVIGATOR_ROW_GAP" envDefault:"true"`
	// ParseMode is html or markdown.
	ParseMode string `env:"TG_NAVIGATOR_PARSE_MODE" envDefault:"html"`
	// RedisAddr enables the Redis state store when set.
	RedisAddr string `env:"TG_NAVIGATOR_REDIS_ADDR"`
	// RedisPassword is the Redis password.
	RedisPassword string `env:"TG_NAVIGATOR_REDIS_PASSWORD"`
	// RedisDB is the Redis database index.
	RedisDB int `env:"TG_NAVIGATOR_REDIS_DB" envDefault:"0"`
	// RedisPrefix prefixes every Redis key.
	RedisPrefix string `env:"TG_NAVIGATOR_REDIS_PREFIX" envDefault:"navigator:"`
	// StateTTL expires idle users; zero disables expiry.
	StateTTL time.Duration `env:"TG_NAVIGATOR_STATE_TTL" envDefault:"0s"`
	// PollTimeout is the long polling timeout in seconds.
	PollTimeout int `env:"TG_NAVIGATOR_POLL_TIMEOUT" envDefault:"10"`
	// WebhookURL enables webhook mode when set with WebhookSecret.
	WebhookURL string `env:"TG_NAVIGATOR_WEBHOOK_URL"`
	// WebhookSecret is the Telegram webhook secret token.
	WebhookSecret string `env:"TG_NAVIGATOR_WEBHOOK_SECRET"`
	// WebhookQueue is the number of webhook updates buffered before new ones are refused.
	WebhookQueue int `env:"TG_NAVIGATOR_WEBHOOK_QUEUE" envDefault:"128"`
	// OpenAIAPIKey enables voice navigation.
	OpenAIAPIKey string `env:"TG_NAVIGATOR_OPENAI_API_KEY"`
	// STTModel is the OpenAI model for transcription.
	STTModel string `env:"TG_NAVIGATOR_STT_MODEL" envDefault:"gpt-4o-mini-transcribe"`
	// STTTimeout is the OpenAI transcription timeout.
	STTTimeout time.Duration `env:"TG_NAVIGATOR_STT_TIMEOUT" envDefault:"30s"`
	// ShutdownTimeout is the graceful shutdown timeout.
	ShutdownTimeout time.Duration `env:"TG_NAVIGATOR_SHUTDOWN_TIMEOUT" envDefault:"10s"`
}

// Load parses configuration from environment variables, reading .env first when present.
func Load() (Config, error) {
	// .env is optional; variables may come from the environment directly.
	_ = godotenv.Load()

	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return Config{}, err
	}
	if err := cfg.normalize(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) normalize() error {
	c.Lang = strings.ToLower(strings.TrimSpace(c.Lang))
	c.DefaultLang = strings.ToLower(strings.TrimSpace(c.DefaultLang))
	if c.DefaultLang == "" {
		c.DefaultLang = "en"
	}
	if c.Lang == "" {
		c.Lang = c.DefaultLang
	}
	c.BotUsername = strings.TrimPrefix(strings.TrimSpace(c.BotUsername), "@")

	if strings.TrimSpace(c.HomeStatus) == "" {
		return fmt.Errorf("home status is required")
	}
	if !strings.Contains(c.HomeStatus, "@") {
		return fmt.Errorf("home status must look like category@state")
	}

	c.ParseMode = strings.ToLower(strings.TrimSpace(c.ParseMode))
	switch c.ParseMode {
	case "html", "markdown":
	default:
		return fmt.Errorf("parse mode must be html or markdown")
	}

	if c.HTTPPort < 1 || c.HTTPPort > 65535 {
		return fmt.Errorf("http port must be between 1 and 65535")
	}
	if c.StateTTL < 0 {
		return fmt.Errorf("state ttl must not be negative")
	}
	if c.PollTimeout < 0 {
		return fmt.Errorf("poll timeout must not be negative")
	}
	if c.WebhookQueue < 1 {
		return fmt.Errorf("webhook queue must be positive")
	}
	if (c.WebhookURL == "") != (c.WebhookSecret == "") {
		return fmt.Errorf("webhook url and secret must be set together")
	}
	return nil
}

// RequireToken reports an error when no bot token is configured.
func (c Config) RequireToken() error {
	if strings.TrimSpace(c.Token) == "" {
		return fmt.Errorf("TG_NAVIGATOR_TOKEN is required")
	}
	return nil
}

// HTTPAddr returns a listen address for the HTTP server.
func (c Config) HTTPAddr() string {
	return net.JoinHostPort(strings.TrimSpace(c.HTTPHost), fmt.Sprintf("%d", c.HTTPPort))
}

// WebhookEnabled reports whether webhook mode is configured.
func (c Config) WebhookEnabled() bool {
	return c.WebhookURL != "" && c.WebhookSecret != ""
}

// RedisEnabled reports whether users are kept in Redis.
func (c Config) RedisEnabled() bool {
	return strings.TrimSpace(c.RedisAddr) != ""
}
