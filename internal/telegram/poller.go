package telegram

import (
	"context"
	"time"

	"github.com/PaulSonOfLars/gotgbot/v2"
	"github.com/rs/zerolog"

	botapi "github.com/tbourn/go-guard-bot/internal/bot"
)

// pollTimeout is the long-poll window requested from the API. The HTTP
// request timeout must exceed it.
const pollTimeout = 30 * time.Second

// Poller consumes updates via long polling and feeds them, one at a time,
// to the dispatch function. Single-consumer by construction: an update is
// handled to completion before the next one is read, which is the
// consistency model the pipeline assumes.
type Poller struct {
	Bot      *gotgbot.Bot
	Dispatch func(ctx context.Context, ev botapi.Event)
	Log      zerolog.Logger
}

// Run polls until ctx is canceled. Transient API errors back off briefly and
// polling resumes; they never terminate the loop.
func (p *Poller) Run(ctx context.Context) {
	var offset int64
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		updates, err := p.Bot.GetUpdates(&gotgbot.GetUpdatesOpts{
			Offset:         offset,
			Timeout:        int64(pollTimeout / time.Second),
			AllowedUpdates: []string{"message", "callback_query"},
			RequestOpts: &gotgbot.RequestOpts{
				Timeout: pollTimeout + 10*time.Second,
			},
		})
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			p.Log.Warn().Err(err).Msg("get updates failed")
			select {
			case <-time.After(3 * time.Second):
			case <-ctx.Done():
				return
			}
			continue
		}

		for _, u := range updates {
			offset = u.UpdateId + 1
			ev, ok := FromUpdate(u)
			if !ok {
				continue
			}
			p.Dispatch(ctx, ev)
		}
	}
}
