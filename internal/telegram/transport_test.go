package telegram

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"

	botapi "github.com/tbourn/go-guard-bot/internal/bot"
)

func TestToInlineKeyboard(t *testing.T) {
	kb := &botapi.Keyboard{Rows: [][]botapi.Button{
		{{Text: "a", Data: "pay:a"}, {Text: "b", Data: "pay:b"}},
		{{Text: "c", Data: "pay:c"}},
	}}

	markup := toInlineKeyboard(kb)
	if len(markup.InlineKeyboard) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(markup.InlineKeyboard))
	}
	if len(markup.InlineKeyboard[0]) != 2 || len(markup.InlineKeyboard[1]) != 1 {
		t.Fatalf("unexpected row shapes: %+v", markup.InlineKeyboard)
	}
	first := markup.InlineKeyboard[0][0]
	if first.Text != "a" || first.CallbackData != "pay:a" {
		t.Fatalf("unexpected button: %+v", first)
	}
}

func TestNewClient_CoercesBurst(t *testing.T) {
	c := NewClient(nil, 10, 0, zerolog.Nop())
	if c.lim.Burst() != 1 {
		t.Fatalf("burst <= 0 must be coerced to 1, got %d", c.lim.Burst())
	}
	c = NewClient(nil, 10, 5, zerolog.Nop())
	if c.lim.Burst() != 5 {
		t.Fatalf("burst not applied: %d", c.lim.Burst())
	}
}

func TestClient_ThrottleHonorsContext(t *testing.T) {
	// Zero rate and an exhausted bucket: Wait can only end via the context,
	// so the call must fail before ever touching the API.
	c := NewClient(nil, 0, 1, zerolog.Nop())
	c.lim.Allow() // drain the single token

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	if err := c.SendMessage(ctx, 1, "hi", nil); err == nil {
		t.Fatalf("expected context error from the throttle")
	}
	if err := c.DeleteMessage(ctx, botapi.MessageRef{ChatID: 1, MessageID: 2}); err == nil {
		t.Fatalf("expected context error from the throttle")
	}
	if _, err := c.ChatAdmins(ctx, 1); err == nil {
		t.Fatalf("expected context error from the throttle")
	}
}
