// Package config provides application configuration loaded from environment
// variables with defaults and validation. It centralizes bot settings such as
// the Telegram token, database path, logging, moderation defaults, outbound
// send throttling, the ops HTTP listener, and observability.
package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"
)

// OpsConfig defines the internal operations HTTP listener (health, metrics).
type OpsConfig struct {
	Enabled           bool          // OPS_ENABLED
	Port              string        // OPS_PORT (just the number)
	ReadTimeout       time.Duration // e.g. 15s
	ReadHeaderTimeout time.Duration // e.g. 10s
	WriteTimeout      time.Duration // e.g. 20s
	IdleTimeout       time.Duration // e.g. 60s
	GinMode           string        // debug|release|test
}

// OTELConfig defines OpenTelemetry observability settings.
type OTELConfig struct {
	Enabled     bool    // OTEL_ENABLED
	Endpoint    string  // OTEL_EXPORTER_OTLP_ENDPOINT (e.g. "otel:4317")
	Insecure    bool    // OTEL_EXPORTER_OTLP_INSECURE (true if no TLS)
	ServiceName string  // OTEL_SERVICE_NAME (e.g. "go-guard-bot")
	SampleRatio float64 // OTEL_TRACES_SAMPLER_ARG in [0..1]
}

// Config holds all configuration values for the application.
type Config struct {
	// Telegram
	BotToken string // BOT_TOKEN (required)

	// Logging
	LogLevel  string // debug|info|warn|error|fatal|panic
	LogPretty bool   // pretty console logs in dev

	// App
	DBPath         string        // SQLite path
	CaptchaTimeout time.Duration // configured challenge window; informational only
	// DefaultBannedWords is seeded into a group's banned-word list exactly
	// once, when the group row is first created. It is not a live override.
	DefaultBannedWords []string
	// FlaggedStickerEmojis marks sticker attachments that are deleted outright.
	FlaggedStickerEmojis []string

	// Outbound send throttle (Telegram API calls)
	SendRPS   float64 // tokens per second (>= 0)
	SendBurst int     // bucket size (>= 1)

	// Ops listener
	Ops OpsConfig

	// Observability
	OTEL OTELConfig
}

// MustLoad loads the configuration and panics if validation fails.
func MustLoad() Config {
	cfg, err := Load()
	if err != nil {
		panic(err)
	}
	return cfg
}

// Load reads configuration from environment variables,
// applies defaults, normalizes values, and validates the result.
func Load() (Config, error) {
	cfg := Config{
		// Telegram
		BotToken: getenv("BOT_TOKEN", ""),

		// Logging
		LogLevel:  strings.ToLower(getenv("LOG_LEVEL", "info")),
		LogPretty: getbool("LOG_PRETTY", false),

		// App
		DBPath:               getenv("DB_PATH", "guard.db"),
		CaptchaTimeout:       getdur("CAPTCHA_TIMEOUT", 30*time.Second),
		DefaultBannedWords:   splitCSV(getenv("DEFAULT_BANNED_WORDS", "")),
		FlaggedStickerEmojis: splitCSV(getenv("FLAGGED_STICKER_EMOJIS", "🔞,🍓")),

		// Send throttle
		SendRPS:   getfloat("SEND_RPS", 20.0),
		SendBurst: getint("SEND_BURST", 5),

		// Ops listener
		Ops: OpsConfig{
			Enabled:           getbool("OPS_ENABLED", true),
			Port:              getenv("OPS_PORT", "8080"),
			ReadTimeout:       getdur("OPS_READ_TIMEOUT", 15*time.Second),
			ReadHeaderTimeout: getdur("OPS_READ_HEADER_TIMEOUT", 10*time.Second),
			WriteTimeout:      getdur("OPS_WRITE_TIMEOUT", 20*time.Second),
			IdleTimeout:       getdur("OPS_IDLE_TIMEOUT", 60*time.Second),
			GinMode:           strings.ToLower(getenv("GIN_MODE", "release")),
		},

		// Observability (OpenTelemetry)
		OTEL: OTELConfig{
			Enabled:     getbool("OTEL_ENABLED", false),
			Endpoint:    getenv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317"),
			Insecure:    getbool("OTEL_EXPORTER_OTLP_INSECURE", true),
			ServiceName: getenv("OTEL_SERVICE_NAME", "go-guard-bot"),
			SampleRatio: getfloat("OTEL_TRACES_SAMPLER_ARG", 1.0),
		},
	}

	// --- normalization ---
	if cfg.LogLevel == "warning" {
		cfg.LogLevel = "warn"
	}
	switch cfg.Ops.GinMode {
	case "debug", "release", "test":
	default:
		cfg.Ops.GinMode = "release"
	}
	for i, w := range cfg.DefaultBannedWords {
		cfg.DefaultBannedWords[i] = strings.ToLower(w)
	}

	// --- validation ---
	if strings.TrimSpace(cfg.BotToken) == "" {
		return cfg, errors.New("BOT_TOKEN must not be empty")
	}
	switch cfg.LogLevel {
	case "debug", "info", "warn", "error", "fatal", "panic":
	default:
		return cfg, errors.New("LOG_LEVEL must be one of: debug, info, warn, error, fatal, panic")
	}
	if strings.TrimSpace(cfg.DBPath) == "" {
		return cfg, errors.New("DB_PATH must not be empty")
	}
	if cfg.CaptchaTimeout <= 0 {
		return cfg, errors.New("CAPTCHA_TIMEOUT must be > 0")
	}
	if cfg.SendRPS < 0 {
		return cfg, errors.New("SEND_RPS must be >= 0")
	}
	if cfg.SendBurst < 1 {
		return cfg, errors.New("SEND_BURST must be >= 1")
	}
	if cfg.Ops.Enabled {
		if strings.TrimSpace(cfg.Ops.Port) == "" {
			return cfg, errors.New("OPS_PORT must not be empty")
		}
		if cfg.Ops.ReadTimeout <= 0 || cfg.Ops.ReadHeaderTimeout <= 0 ||
			cfg.Ops.WriteTimeout <= 0 || cfg.Ops.IdleTimeout <= 0 {
			return cfg, errors.New("ops timeouts must be positive durations")
		}
	}
	if cfg.OTEL.SampleRatio < 0 || cfg.OTEL.SampleRatio > 1 {
		return cfg, errors.New("OTEL_TRACES_SAMPLER_ARG must be in [0,1]")
	}

	return cfg, nil
}

// ---- helpers (no external deps) ----

func getenv(k, def string) string {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		return v
	}
	return def
}

func getfloat(k string, def float64) float64 {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return def
}

func getint(k string, def int) int {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}

func getbool(k string, def bool) bool {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "1", "true", "yes", "y", "on":
			return true
		case "0", "false", "no", "n", "off":
			return false
		}
	}
	return def
}

func getdur(k string, def time.Duration) time.Duration {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

func splitCSV(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		t := strings.TrimSpace(p)
		if t != "" {
			out = append(out, t)
		}
	}
	return out
}
