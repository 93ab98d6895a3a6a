package telegram

import (
	"github.com/PaulSonOfLars/gotgbot/v2"

	botapi "github.com/tbourn/go-guard-bot/internal/bot"
)

// FromUpdate converts a Telegram update into the core event union. The
// second return is false for update kinds the moderation core does not
// consume (edits, joins, polls, and so on).
func FromUpdate(u gotgbot.Update) (botapi.Event, bool) {
	switch {
	case u.Message != nil:
		return fromMessage(u.Message), true
	case u.CallbackQuery != nil:
		return fromCallback(u.CallbackQuery), true
	default:
		return nil, false
	}
}

func fromMessage(m *gotgbot.Message) botapi.MessageEvent {
	ev := botapi.MessageEvent{
		ChatID:    m.Chat.Id,
		ChatKind:  chatKind(m.Chat.Type),
		MessageID: m.MessageId,
		Text:      m.Text,
	}
	if m.From != nil {
		ev.Sender = botapi.User{
			ID:        m.From.Id,
			Username:  m.From.Username,
			FirstName: m.From.FirstName,
		}
	}
	if m.Sticker != nil {
		ev.StickerEmoji = m.Sticker.Emoji
	}
	return ev
}

func fromCallback(q *gotgbot.CallbackQuery) botapi.CallbackEvent {
	ev := botapi.CallbackEvent{
		ID:   q.Id,
		Data: q.Data,
		Sender: botapi.User{
			ID:        q.From.Id,
			Username:  q.From.Username,
			FirstName: q.From.FirstName,
		},
	}
	// The bound message may be inaccessible (too old); chat and id are
	// still available through the wrapper.
	if q.Message != nil {
		chat := q.Message.GetChat()
		ev.ChatID = chat.Id
		ev.ChatKind = chatKind(chat.Type)
		ev.MessageID = q.Message.GetMessageId()
	}
	return ev
}

// chatKind maps Telegram chat types onto the core's ChatKind. Unknown types
// are treated as channels, which the moderation steps ignore.
func chatKind(t string) botapi.ChatKind {
	switch t {
	case "private":
		return botapi.ChatPrivate
	case "group":
		return botapi.ChatGroup
	case "supergroup":
		return botapi.ChatSupergroup
	case "channel":
		return botapi.ChatChannel
	default:
		return botapi.ChatChannel
	}
}
