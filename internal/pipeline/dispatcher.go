// Package pipeline – update dispatcher.
//
// The dispatcher is the single entry point for inbound updates. It attaches
// an event-scoped logger with a correlation id, opens a span per update, and
// routes by event kind: group messages into the step chain, private messages
// to the admin surface (falling through to the chain, whose moderation steps
// no-op outside groups), and callbacks by payload prefix.
package pipeline

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"gorm.io/gorm"

	"github.com/tbourn/go-guard-bot/internal/bot"
	"github.com/tbourn/go-guard-bot/internal/services"
)

// AdminSurface is the private-chat management interface consumed by the
// dispatcher. The concrete implementation lives in the admin package.
type AdminSurface interface {
	// HandleMessage consumes a private message when it belongs to an admin
	// flow (command or pending input). It reports whether it did.
	HandleMessage(ctx context.Context, ev bot.MessageEvent) (bool, error)
	// HandleCallback processes one admin keyboard press.
	HandleCallback(ctx context.Context, ev bot.CallbackEvent) error
	// Handles reports whether the callback payload belongs to the admin
	// surface.
	Handles(data string) bool
}

// Dispatcher routes inbound events. All fields must be set except Admin,
// which may be nil when no admin surface is mounted.
type Dispatcher struct {
	DB       *gorm.DB
	Pipeline *Pipeline
	Guard    *services.GuardService
	Admin    AdminSurface
	Log      zerolog.Logger
}

// Dispatch processes one update to completion. It never returns an error:
// per-event failures are logged and absorbed so update consumption cannot
// stall. Events are expected to arrive one at a time per connection; state
// consistency across concurrent updates is guarded at the storage layer.
func (d *Dispatcher) Dispatch(ctx context.Context, ev bot.Event) {
	tracer := otel.Tracer("github.com/tbourn/go-guard-bot/internal/pipeline")

	lg := d.Log.With().Str("update_id", uuid.NewString()).Logger()

	switch e := ev.(type) {
	case bot.MessageEvent:
		updatesTotal.WithLabelValues("message").Inc()
		ctx, span := tracer.Start(ctx, "dispatch.message")
		span.SetAttributes(attribute.Int64("chat.id", e.ChatID), attribute.String("chat.kind", string(e.ChatKind)))
		defer span.End()
		d.dispatchMessage(ctx, e, lg)
	case bot.CallbackEvent:
		updatesTotal.WithLabelValues("callback").Inc()
		ctx, span := tracer.Start(ctx, "dispatch.callback")
		span.SetAttributes(attribute.Int64("chat.id", e.ChatID))
		defer span.End()
		d.dispatchCallback(ctx, e, lg)
	default:
		updatesTotal.WithLabelValues("other").Inc()
	}
}

func (d *Dispatcher) dispatchMessage(ctx context.Context, ev bot.MessageEvent, lg zerolog.Logger) {
	if !ev.ChatKind.IsGroup() && d.Admin != nil {
		handled, err := d.Admin.HandleMessage(ctx, ev)
		if err != nil {
			lg.Error().Err(err).Int64("chat_id", ev.ChatID).Msg("admin message failed")
			return
		}
		if handled {
			return
		}
	}
	d.Pipeline.Handle(ctx, ev, lg)
}

func (d *Dispatcher) dispatchCallback(ctx context.Context, ev bot.CallbackEvent, lg zerolog.Logger) {
	switch {
	case strings.HasPrefix(ev.Data, services.ChallengeCallbackPrefix):
		err := d.DB.WithContext(ctx).Connection(func(sess *gorm.DB) error {
			verified, err := d.Guard.ConfirmChallenge(ctx, sess, ev)
			if verified {
				verificationsTotal.Inc()
				lg.Info().Int64("chat_id", ev.ChatID).Msg("member verified")
			}
			return err
		})
		if err != nil {
			lg.Error().Err(err).Int64("chat_id", ev.ChatID).Msg("challenge callback failed")
		}
	case d.Admin != nil && d.Admin.Handles(ev.Data):
		if err := d.Admin.HandleCallback(ctx, ev); err != nil {
			lg.Error().Err(err).Int64("chat_id", ev.ChatID).Msg("admin callback failed")
		}
	default:
		lg.Debug().Str("data", ev.Data).Msg("unrouted callback")
	}
}
