// Package pipeline composes the moderation steps into one ordered chain per
// inbound event and routes updates between the chain, the challenge handler,
// and the admin surface.
//
// The chain is declared explicitly at startup as an ordered slice of steps,
// not assembled through ambient registration, and every step receives the
// per-event persistence session as an explicit parameter. A step can let the
// event continue, or terminate the chain (with or without a side effect such
// as a deletion or a challenge).
package pipeline

import (
	"context"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/tbourn/go-guard-bot/internal/bot"
	"github.com/tbourn/go-guard-bot/internal/domain"
)

// Result tells the pipeline whether to keep evaluating steps.
type Result int

const (
	// Continue passes the event to the next step.
	Continue Result = iota
	// Stop terminates the chain; the downstream handler is not invoked.
	Stop
)

// Env is the per-event scratch state shared by the steps of one chain run.
// It replaces ambient "supplementary data" with an explicit parameter.
type Env struct {
	// Log is the event-scoped logger.
	Log zerolog.Logger
	// Group is set by the registration step for group-type chats and stays
	// nil otherwise.
	Group *domain.Group
}

// Step is one interceptor in the chain. sess is the event-scoped persistence
// session; a returned error aborts the event (it is logged by Handle and
// never escapes further).
type Step func(ctx context.Context, sess *gorm.DB, ev bot.MessageEvent, env *Env) (Result, error)

// Handler is the downstream application handler invoked when no step stopped
// the chain.
type Handler func(ctx context.Context, sess *gorm.DB, ev bot.MessageEvent, env *Env) error

// Pipeline runs an ordered step chain over inbound messages.
type Pipeline struct {
	db         *gorm.DB
	steps      []Step
	downstream Handler
}

// New builds a pipeline from the given ordered steps and downstream handler.
// A nil downstream is replaced with a no-op.
func New(db *gorm.DB, steps []Step, downstream Handler) *Pipeline {
	if downstream == nil {
		downstream = func(context.Context, *gorm.DB, bot.MessageEvent, *Env) error { return nil }
	}
	return &Pipeline{db: db, steps: steps, downstream: downstream}
}

// Handle processes one message event to completion. It acquires a dedicated
// connection for the duration of the event, so every step observes and
// mutates state through the same session, and the connection is released on
// every exit path. Errors are logged and absorbed here: nothing thrown by a
// step may crash update processing.
//
// Individual writes commit independently; there is deliberately no
// transaction spanning the steps. A crash between member creation and
// challenge issuance is repaired by the next message from the same sender
// re-evaluating the not-yet-challenged transition.
func (p *Pipeline) Handle(ctx context.Context, ev bot.MessageEvent, lg zerolog.Logger) {
	env := &Env{Log: lg}
	err := p.db.WithContext(ctx).Connection(func(sess *gorm.DB) error {
		for _, step := range p.steps {
			res, err := step(ctx, sess, ev, env)
			if err != nil {
				return err
			}
			if res == Stop {
				return nil
			}
		}
		eventsForwarded.Inc()
		return p.downstream(ctx, sess, ev, env)
	})
	if err != nil {
		lg.Error().Err(err).Int64("chat_id", ev.ChatID).Msg("pipeline event failed")
	}
}
