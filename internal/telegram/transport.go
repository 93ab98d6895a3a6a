// Package telegram adapts the Telegram Bot API (via gotgbot) to the
// transport and event contracts of the moderation core. It is the only
// package that knows platform wire types; everything inward speaks
// bot.Event and bot.Transport.
package telegram

import (
	"context"

	"github.com/PaulSonOfLars/gotgbot/v2"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	botapi "github.com/tbourn/go-guard-bot/internal/bot"
)

// Client implements bot.Transport over a gotgbot connection. Outbound calls
// pass through a token-bucket throttle so bursts of moderation actions stay
// under the platform's flood limits.
//
// The throttle is process-local, which matches the single-connection
// deployment model; a horizontally scaled bot would need a shared limiter.
type Client struct {
	bot *gotgbot.Bot
	lim *rate.Limiter
	log zerolog.Logger
}

// NewClient wraps an established gotgbot.Bot. rps is tokens per second for
// outbound calls; burst <= 0 is coerced to 1.
func NewClient(b *gotgbot.Bot, rps float64, burst int, log zerolog.Logger) *Client {
	if burst <= 0 {
		burst = 1
	}
	return &Client{
		bot: b,
		lim: rate.NewLimiter(rate.Limit(rps), burst),
		log: log,
	}
}

// SendMessage posts text into a chat, with an optional inline keyboard.
func (c *Client) SendMessage(ctx context.Context, chatID int64, text string, kb *botapi.Keyboard) error {
	if err := c.lim.Wait(ctx); err != nil {
		return err
	}
	opts := &gotgbot.SendMessageOpts{}
	if kb != nil {
		opts.ReplyMarkup = toInlineKeyboard(kb)
	}
	_, err := c.bot.SendMessage(chatID, text, opts)
	return err
}

// DeleteMessage removes one message.
func (c *Client) DeleteMessage(ctx context.Context, ref botapi.MessageRef) error {
	if err := c.lim.Wait(ctx); err != nil {
		return err
	}
	_, err := c.bot.DeleteMessage(ref.ChatID, ref.MessageID, nil)
	return err
}

// EditMessageText replaces a message's text and, when kb is non-nil, its
// inline keyboard.
func (c *Client) EditMessageText(ctx context.Context, ref botapi.MessageRef, text string, kb *botapi.Keyboard) error {
	if err := c.lim.Wait(ctx); err != nil {
		return err
	}
	opts := &gotgbot.EditMessageTextOpts{
		ChatId:    ref.ChatID,
		MessageId: ref.MessageID,
	}
	if kb != nil {
		opts.ReplyMarkup = toInlineKeyboard(kb)
	}
	_, _, err := c.bot.EditMessageText(text, opts)
	return err
}

// EditMessageKeyboard replaces only the inline keyboard of a message.
func (c *Client) EditMessageKeyboard(ctx context.Context, ref botapi.MessageRef, kb *botapi.Keyboard) error {
	if err := c.lim.Wait(ctx); err != nil {
		return err
	}
	opts := &gotgbot.EditMessageReplyMarkupOpts{
		ChatId:    ref.ChatID,
		MessageId: ref.MessageID,
	}
	if kb != nil {
		opts.ReplyMarkup = toInlineKeyboard(kb)
	}
	_, _, err := c.bot.EditMessageReplyMarkup(opts)
	return err
}

// AnswerCallback acknowledges an inline-button press.
func (c *Client) AnswerCallback(ctx context.Context, callbackID, text string, showAlert bool) error {
	if err := c.lim.Wait(ctx); err != nil {
		return err
	}
	_, err := c.bot.AnswerCallbackQuery(callbackID, &gotgbot.AnswerCallbackQueryOpts{
		Text:      text,
		ShowAlert: showAlert,
	})
	return err
}

// ChatAdmins returns the usernames of a chat's administrators. Members
// without a username are omitted.
func (c *Client) ChatAdmins(ctx context.Context, chatID int64) ([]string, error) {
	if err := c.lim.Wait(ctx); err != nil {
		return nil, err
	}
	members, err := c.bot.GetChatAdministrators(chatID, nil)
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(members))
	for _, m := range members {
		if u := m.MergeChatMember().User; u.Username != "" {
			out = append(out, u.Username)
		}
	}
	return out, nil
}

// ChatTitle returns the chat's title.
func (c *Client) ChatTitle(ctx context.Context, chatID int64) (string, error) {
	if err := c.lim.Wait(ctx); err != nil {
		return "", err
	}
	info, err := c.bot.GetChat(chatID, nil)
	if err != nil {
		return "", err
	}
	return info.Title, nil
}

// toInlineKeyboard converts the core keyboard model to the wire type.
func toInlineKeyboard(kb *botapi.Keyboard) gotgbot.InlineKeyboardMarkup {
	rows := make([][]gotgbot.InlineKeyboardButton, 0, len(kb.Rows))
	for _, row := range kb.Rows {
		btns := make([]gotgbot.InlineKeyboardButton, 0, len(row))
		for _, b := range row {
			btns = append(btns, gotgbot.InlineKeyboardButton{
				Text:         b.Text,
				CallbackData: b.Data,
			})
		}
		rows = append(rows, btns)
	}
	return gotgbot.InlineKeyboardMarkup{InlineKeyboard: rows}
}
