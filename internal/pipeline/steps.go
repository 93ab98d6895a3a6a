// Package pipeline – step implementations.
//
// The production chain is, in order: group registration, censorship,
// verification gate. Each step no-ops for non-group chats, which is how
// direct/private messages fall straight through to downstream handling.
package pipeline

import (
	"context"

	"gorm.io/gorm"

	"github.com/tbourn/go-guard-bot/internal/bot"
	"github.com/tbourn/go-guard-bot/internal/censor"
	"github.com/tbourn/go-guard-bot/internal/repo"
	"github.com/tbourn/go-guard-bot/internal/services"
)

// GroupRegistration returns the step that idempotently registers the chat as
// a moderated group. On the call that actually creates the group row, the
// configured default banned words are seeded exactly once; the list is never
// consulted again as a live override.
func GroupRegistration(seedWords []string) Step {
	return func(ctx context.Context, sess *gorm.DB, ev bot.MessageEvent, env *Env) (Result, error) {
		if !ev.ChatKind.IsGroup() {
			return Continue, nil
		}
		group, created, err := repo.EnsureGroup(ctx, sess, ev.ChatID)
		if err != nil {
			return Stop, err
		}
		if created {
			env.Log.Info().Int64("chat_id", ev.ChatID).Uint("group_id", group.ID).Msg("group registered")
			if len(seedWords) > 0 {
				if err := repo.SeedBannedWords(ctx, sess, group.ID, seedWords); err != nil {
					return Stop, err
				}
			}
		}
		env.Group = group
		return Continue, nil
	}
}

// Censorship returns the step that deletes messages matching the group's
// banned-word list. It runs only when the group's settings have filtering
// enabled, and it runs before the verification gate: a censored message is
// deleted even for a verified sender, and the gate never sees that event.
func Censorship(filter *censor.Filter, transport bot.Transport) Step {
	return func(ctx context.Context, sess *gorm.DB, ev bot.MessageEvent, env *Env) (Result, error) {
		if !ev.ChatKind.IsGroup() || env.Group == nil || ev.Text == "" {
			return Continue, nil
		}
		settings, err := repo.GetSettings(ctx, sess, env.Group.ID)
		if err != nil {
			return Stop, err
		}
		if !settings.FilterBannedWords {
			return Continue, nil
		}
		words, err := repo.ListBannedWords(ctx, sess, env.Group.ID)
		if err != nil {
			return Stop, err
		}
		banned := make([]string, len(words))
		for i, w := range words {
			banned[i] = w.Word
		}
		if !filter.Censored(ev.Text, banned) {
			return Continue, nil
		}
		if err := transport.DeleteMessage(ctx, ev.Ref()); err != nil {
			env.Log.Warn().Err(err).Int64("chat_id", ev.ChatID).Msg("delete censored message failed")
		}
		deletionsTotal.WithLabelValues("censored").Inc()
		env.Log.Info().Int64("chat_id", ev.ChatID).Str("handle", ev.Sender.Handle()).Msg("message censored")
		return Stop, nil
	}
}

// Verification returns the step that runs the verification gate. The gate's
// decision is translated into pipeline flow: only admitted events continue.
func Verification(guard *services.GuardService) Step {
	return func(ctx context.Context, sess *gorm.DB, ev bot.MessageEvent, env *Env) (Result, error) {
		if !ev.ChatKind.IsGroup() || env.Group == nil {
			return Continue, nil
		}
		decision, err := guard.CheckMessage(ctx, sess, ev, env.Group)
		if err != nil {
			return Stop, err
		}
		observeDecision(decision)
		if decision.Admitted() {
			return Continue, nil
		}
		env.Log.Info().
			Int64("chat_id", ev.ChatID).
			Str("handle", ev.Sender.Handle()).
			Str("decision", decision.String()).
			Msg("gate stopped message")
		return Stop, nil
	}
}

// observeDecision maps a gate decision onto the pipeline counters.
func observeDecision(d services.Decision) {
	switch d {
	case services.DeletedSticker, services.DeletedBanned, services.DeletedPending:
		deletionsTotal.WithLabelValues(d.String()).Inc()
	case services.ChallengedNew:
		deletionsTotal.WithLabelValues(d.String()).Inc()
		challengesTotal.Inc()
	case services.Challenged:
		challengesTotal.Inc()
	}
}
