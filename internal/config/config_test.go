package config

import (
	"reflect"
	"strings"
	"testing"
	"time"
)

// --- MustLoad ---

func TestMustLoad_PanicsOnInvalidConfig(t *testing.T) {
	t.Setenv("BOT_TOKEN", "token")
	t.Setenv("LOG_LEVEL", "verbose") // invalid -> Load() error
	defer func() {
		if r := recover(); r == nil {
			t.Fatalf("MustLoad should panic on invalid config")
		}
	}()
	_ = MustLoad()
}

// --- Load success + normalization + parsing ---

func TestLoad_Success_DefaultsAndOverrides(t *testing.T) {
	// t.Setenv isolates per test.
	t.Setenv("BOT_TOKEN", "123:abc")

	// Logging
	t.Setenv("LOG_LEVEL", "warning") // will normalize to "warn"
	t.Setenv("LOG_PRETTY", "yes")

	// App
	t.Setenv("DB_PATH", "moderation.db")
	t.Setenv("CAPTCHA_TIMEOUT", "45s")
	t.Setenv("DEFAULT_BANNED_WORDS", " Spam , КРИПТА ,, casino ")
	t.Setenv("FLAGGED_STICKER_EMOJIS", "🔞")

	// Send throttle (use invalids for parse to fall back to defaults)
	t.Setenv("SEND_RPS", "x")     // -> default 20.0
	t.Setenv("SEND_BURST", "huh") // -> default 5

	// Ops listener
	t.Setenv("OPS_PORT", "9090")
	t.Setenv("OPS_READ_TIMEOUT", "2s")
	t.Setenv("OPS_READ_HEADER_TIMEOUT", "1s")
	t.Setenv("OPS_WRITE_TIMEOUT", "3s")
	t.Setenv("OPS_IDLE_TIMEOUT", "4s")
	t.Setenv("GIN_MODE", "weird") // will normalize to "release"

	// OTEL
	t.Setenv("OTEL_ENABLED", "1")
	t.Setenv("OTEL_EXPORTER_OTLP_ENDPOINT", "otel:4317")
	t.Setenv("OTEL_EXPORTER_OTLP_INSECURE", "0")
	t.Setenv("OTEL_SERVICE_NAME", "svc")
	t.Setenv("OTEL_TRACES_SAMPLER_ARG", "0.75")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.BotToken != "123:abc" {
		t.Fatalf("BotToken unexpected: %+v", cfg)
	}
	if cfg.LogLevel != "warn" || !cfg.LogPretty {
		t.Fatalf("logging fields unexpected: %+v", cfg)
	}
	if cfg.DBPath != "moderation.db" || cfg.CaptchaTimeout != 45*time.Second {
		t.Fatalf("app fields unexpected: %+v", cfg)
	}
	// Seed list is trimmed, empties dropped, and lowercased.
	if !reflect.DeepEqual(cfg.DefaultBannedWords, []string{"spam", "крипта", "casino"}) {
		t.Fatalf("DefaultBannedWords unexpected: %#v", cfg.DefaultBannedWords)
	}
	if !reflect.DeepEqual(cfg.FlaggedStickerEmojis, []string{"🔞"}) {
		t.Fatalf("FlaggedStickerEmojis unexpected: %#v", cfg.FlaggedStickerEmojis)
	}
	if cfg.SendRPS != 20.0 || cfg.SendBurst != 5 {
		t.Fatalf("send throttle fallbacks unexpected: %+v", cfg)
	}
	if cfg.Ops.Port != "9090" ||
		cfg.Ops.ReadTimeout != 2*time.Second ||
		cfg.Ops.ReadHeaderTimeout != 1*time.Second ||
		cfg.Ops.WriteTimeout != 3*time.Second ||
		cfg.Ops.IdleTimeout != 4*time.Second ||
		cfg.Ops.GinMode != "release" {
		t.Fatalf("ops fields unexpected: %+v", cfg.Ops)
	}
	if !cfg.OTEL.Enabled || cfg.OTEL.Endpoint != "otel:4317" ||
		cfg.OTEL.Insecure || cfg.OTEL.ServiceName != "svc" ||
		cfg.OTEL.SampleRatio != 0.75 {
		t.Fatalf("otel fields unexpected: %+v", cfg.OTEL)
	}
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("BOT_TOKEN", "token")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.LogLevel != "info" || cfg.LogPretty {
		t.Fatalf("logging defaults unexpected: %+v", cfg)
	}
	if cfg.DBPath != "guard.db" || cfg.CaptchaTimeout != 30*time.Second {
		t.Fatalf("app defaults unexpected: %+v", cfg)
	}
	if cfg.DefaultBannedWords != nil {
		t.Fatalf("expected empty seed list by default: %#v", cfg.DefaultBannedWords)
	}
	if !reflect.DeepEqual(cfg.FlaggedStickerEmojis, []string{"🔞", "🍓"}) {
		t.Fatalf("sticker defaults unexpected: %#v", cfg.FlaggedStickerEmojis)
	}
	if !cfg.Ops.Enabled || cfg.Ops.Port != "8080" || cfg.Ops.GinMode != "release" {
		t.Fatalf("ops defaults unexpected: %+v", cfg.Ops)
	}
	if cfg.OTEL.Enabled || cfg.OTEL.SampleRatio != 1.0 {
		t.Fatalf("otel defaults unexpected: %+v", cfg.OTEL)
	}
}

// --- Load validation failures ---

func TestLoad_ValidationFailures(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		wantSub string
	}{
		{"missing token", map[string]string{"BOT_TOKEN": ""}, "BOT_TOKEN"},
		{"bad log level", map[string]string{"BOT_TOKEN": "t", "LOG_LEVEL": "loud"}, "LOG_LEVEL"},
		{"empty db path", map[string]string{"BOT_TOKEN": "t", "DB_PATH": " "}, "DB_PATH"},
		{"zero captcha timeout", map[string]string{"BOT_TOKEN": "t", "CAPTCHA_TIMEOUT": "0s"}, "CAPTCHA_TIMEOUT"},
		{"negative rps", map[string]string{"BOT_TOKEN": "t", "SEND_RPS": "-1"}, "SEND_RPS"},
		{"zero burst", map[string]string{"BOT_TOKEN": "t", "SEND_BURST": "0"}, "SEND_BURST"},
		{"empty ops port", map[string]string{"BOT_TOKEN": "t", "OPS_PORT": " "}, "OPS_PORT"},
		{"bad ops timeout", map[string]string{"BOT_TOKEN": "t", "OPS_READ_TIMEOUT": "-1s"}, "ops timeouts"},
		{"bad sample ratio", map[string]string{"BOT_TOKEN": "t", "OTEL_TRACES_SAMPLER_ARG": "1.5"}, "OTEL_TRACES_SAMPLER_ARG"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load()
			if err == nil {
				t.Fatalf("expected validation error")
			}
			if !strings.Contains(err.Error(), tt.wantSub) {
				t.Fatalf("error %q does not mention %q", err, tt.wantSub)
			}
		})
	}
}

// --- env helpers ---

func TestHelpers_Parsing(t *testing.T) {
	t.Setenv("S", "val")
	t.Setenv("F", "2.5")
	t.Setenv("I", "7")
	t.Setenv("B", "off")
	t.Setenv("D", "90s")

	if getenv("S", "d") != "val" || getenv("MISSING", "d") != "d" {
		t.Fatalf("getenv")
	}
	if getfloat("F", 1) != 2.5 || getfloat("MISSING", 1) != 1 {
		t.Fatalf("getfloat")
	}
	if getint("I", 1) != 7 || getint("MISSING", 1) != 1 {
		t.Fatalf("getint")
	}
	if getbool("B", true) || !getbool("MISSING", true) {
		t.Fatalf("getbool")
	}
	if getdur("D", time.Second) != 90*time.Second || getdur("MISSING", time.Second) != time.Second {
		t.Fatalf("getdur")
	}
}

func TestSplitCSV(t *testing.T) {
	if got := splitCSV(""); got != nil {
		t.Fatalf("empty input: %#v", got)
	}
	got := splitCSV(" a, ,b ,, c")
	if !reflect.DeepEqual(got, []string{"a", "b", "c"}) {
		t.Fatalf("splitCSV: %#v", got)
	}
}
