// Command bot runs the group moderation bot: it connects to the Telegram
// API, pulls updates over long polling, and pushes every one of them through
// the moderation pipeline (group registration, censorship, verification
// gate) before any downstream handling. An internal ops HTTP listener
// exposes liveness and Prometheus metrics.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/PaulSonOfLars/gotgbot/v2"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/tbourn/go-guard-bot/internal/admin"
	botapi "github.com/tbourn/go-guard-bot/internal/bot"
	"github.com/tbourn/go-guard-bot/internal/censor"
	"github.com/tbourn/go-guard-bot/internal/config"
	httpapi "github.com/tbourn/go-guard-bot/internal/http"
	"github.com/tbourn/go-guard-bot/internal/observability"
	"github.com/tbourn/go-guard-bot/internal/pipeline"
	"github.com/tbourn/go-guard-bot/internal/repo"
	"github.com/tbourn/go-guard-bot/internal/services"
	"github.com/tbourn/go-guard-bot/internal/telegram"
)

// version is stamped into traces and the startup log.
const version = "1.0.0"

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg := config.MustLoad()
	setupLogger(cfg)

	log.Info().
		Str("version", version).
		Str("db_path", cfg.DBPath).
		Dur("captcha_timeout", cfg.CaptchaTimeout).
		Int("default_banned_words", len(cfg.DefaultBannedWords)).
		Msg("starting guard bot")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Tracing first, so the DB plugin and gin middleware find a provider.
	shutdownOTel, err := observability.SetupOTel(ctx, cfg.OTEL, version)
	if err != nil {
		log.Fatal().Err(err).Msg("otel setup failed")
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownOTel(shutdownCtx); err != nil {
			log.Warn().Err(err).Msg("otel shutdown failed")
		}
	}()

	db, err := repo.OpenSQLite(cfg.DBPath)
	if err != nil {
		log.Fatal().Err(err).Str("db_path", cfg.DBPath).Msg("open database failed")
	}
	if cfg.OTEL.Enabled {
		if err := repo.EnableTracing(db); err != nil {
			log.Warn().Err(err).Msg("db tracing unavailable")
		}
	}
	if err := repo.AutoMigrate(db); err != nil {
		log.Fatal().Err(err).Msg("migrate database failed")
	}

	tg, err := gotgbot.NewBot(cfg.BotToken, nil)
	if err != nil {
		log.Fatal().Err(err).Msg("telegram connection failed")
	}
	log.Info().Str("bot", tg.Username).Msg("telegram connected")

	transport := telegram.NewClient(tg, cfg.SendRPS, cfg.SendBurst, log.Logger)

	dispatcher := buildDispatcher(db, transport, cfg)

	// Ops listener runs beside the poller; its failure is not fatal to
	// moderation.
	var opsServer *http.Server
	if cfg.Ops.Enabled {
		gin.SetMode(cfg.Ops.GinMode)
		engine := gin.New()
		httpapi.RegisterRoutes(engine, cfg)
		opsServer = httpapi.NewServer(cfg, engine)
		go func() {
			log.Info().Str("addr", opsServer.Addr).Msg("ops listener up")
			if err := opsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Error().Err(err).Msg("ops listener failed")
			}
		}()
	}

	poller := &telegram.Poller{
		Bot:      tg,
		Dispatch: dispatcher.Dispatch,
		Log:      log.Logger,
	}
	poller.Run(ctx)

	log.Info().Msg("shutting down")
	if opsServer != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := opsServer.Shutdown(shutdownCtx); err != nil {
			log.Warn().Err(err).Msg("ops listener shutdown failed")
		}
	}
}

// buildDispatcher assembles the moderation chain in its declared order:
// registration, censorship, verification, downstream.
func buildDispatcher(db *gorm.DB, transport botapi.Transport, cfg config.Config) *pipeline.Dispatcher {
	guard := &services.GuardService{
		Transport:            transport,
		FlaggedStickerEmojis: cfg.FlaggedStickerEmojis,
		Log:                  log.Logger,
	}
	policy := &services.PolicyService{DB: db}
	filter := censor.NewFilter(censor.NewStemNormalizer())

	steps := []pipeline.Step{
		pipeline.GroupRegistration(cfg.DefaultBannedWords),
		pipeline.Censorship(filter, transport),
		pipeline.Verification(guard),
	}

	// Downstream application handler. Moderation is the product here, so
	// admitted messages are only logged.
	downstream := func(ctx context.Context, _ *gorm.DB, ev botapi.MessageEvent, env *pipeline.Env) error {
		env.Log.Debug().
			Int64("chat_id", ev.ChatID).
			Str("handle", ev.Sender.Handle()).
			Msg("message admitted")
		return nil
	}

	return &pipeline.Dispatcher{
		DB:       db,
		Pipeline: pipeline.New(db, steps, downstream),
		Guard:    guard,
		Admin:    admin.New(transport, policy, log.Logger),
		Log:      log.Logger,
	}
}

// setupLogger configures the global zerolog logger from the config.
func setupLogger(cfg config.Config) {
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
	zerolog.TimeFieldFormat = time.RFC3339
	if cfg.LogPretty {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}
}
