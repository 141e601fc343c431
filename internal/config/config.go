package config

import (
	"errors"
	"os"
	"strconv"
	"time"
)

type Config struct {
	Port              int
	DatabaseURL       string
	LogLevel          string
	AnthropicAPIKey   string
	AnthropicModel    string
	MaxTokens         int
	ModelTimeout      time.Duration
	ManagerPIN        string
	KnowledgeCacheTTL time.Duration
	SessionIdleTTL    time.Duration
	PersonaFile       string
	NatsURL           string
	NatsToken         string
	SlackBotToken     string
	SlackChannel      string
}

func Load() Config {
	return Config{
		Port:              envInt("DOORSTEP_PORT", 8760),
		DatabaseURL:       envStr("DATABASE_URL", ""),
		LogLevel:          envStr("LOG_LEVEL", "info"),
		AnthropicAPIKey:   envStr("ANTHROPIC_API_KEY", ""),
		AnthropicModel:    envStr("DOORSTEP_MODEL", "claude-sonnet-4-20250514"),
		MaxTokens:         envInt("DOORSTEP_MAX_TOKENS", 1024),
		ModelTimeout:      envDuration("MODEL_TIMEOUT", 0),
		ManagerPIN:        envStr("MANAGER_PIN", ""),
		KnowledgeCacheTTL: envDuration("KNOWLEDGE_CACHE_TTL", 60*time.Second),
		SessionIdleTTL:    envDuration("SESSION_IDLE_TTL", 2*time.Hour),
		PersonaFile:       envStr("PERSONA_FILE", ""),
		NatsURL:           envStr("NATS_URL", ""),
		NatsToken:         envStr("NATS_TOKEN", ""),
		SlackBotToken:     envStr("SLACK_BOT_TOKEN", ""),
		SlackChannel:      envStr("SLACK_MANAGER_CHANNEL", ""),
	}
}

// Validate reports settings the service cannot start without.
func (c Config) Validate() error {
	var errs []error
	if c.DatabaseURL == "" {
		errs = append(errs, errors.New("DATABASE_URL is required"))
	}
	if c.AnthropicAPIKey == "" {
		errs = append(errs, errors.New("ANTHROPIC_API_KEY is required"))
	}
	return errors.Join(errs...)
}

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

// envDuration accepts Go durations ("90s", "2h") or a bare number of seconds.
func envDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	if d, err := time.ParseDuration(v); err == nil {
		return d
	}
	if n, err := strconv.Atoi(v); err == nil {
		return time.Duration(n) * time.Second
	}
	return fallback
}
