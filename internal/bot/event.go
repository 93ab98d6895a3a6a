// Package bot defines the platform-facing contracts of the moderation core:
// the inbound event model and the outbound transport interface. It has no
// dependency on persistence or business logic, so every other layer can
// speak these types without import cycles.
//
// Inbound updates are modeled as a small tagged union (MessageEvent,
// CallbackEvent) rather than one loosely-typed envelope: each kind carries
// only the fields relevant to it, and consumers dispatch with an exhaustive
// type switch.
package bot

import "fmt"

// ChatKind classifies the chat an event originated from.
type ChatKind string

const (
	// ChatPrivate is a direct one-to-one chat with the bot.
	ChatPrivate ChatKind = "private"
	// ChatGroup is a basic multi-party group.
	ChatGroup ChatKind = "group"
	// ChatSupergroup is a large-form group; moderated identically to ChatGroup.
	ChatSupergroup ChatKind = "supergroup"
	// ChatChannel is a broadcast channel; the moderation steps ignore it.
	ChatChannel ChatKind = "channel"
)

// IsGroup reports whether moderation applies in this chat kind.
func (k ChatKind) IsGroup() bool {
	return k == ChatGroup || k == ChatSupergroup
}

// User identifies the sender of an event.
type User struct {
	ID        int64
	Username  string // may be empty; Handle() falls back to the numeric id
	FirstName string
}

// Handle returns the stable identifier used to key Member records: the
// platform username, or a synthesized fallback built from the numeric id
// when no username is set.
func (u User) Handle() string {
	if u.Username != "" {
		return u.Username
	}
	return fmt.Sprintf("id_%d", u.ID)
}

// DisplayName returns the friendliest available name for prompts.
func (u User) DisplayName() string {
	if u.FirstName != "" {
		return u.FirstName
	}
	return u.Handle()
}

// MessageRef points at one message for delete/edit operations.
type MessageRef struct {
	ChatID    int64
	MessageID int64
}

// Event is the closed set of inbound event kinds. Consumers must type-switch
// over MessageEvent and CallbackEvent.
type Event interface {
	isEvent()
}

// MessageEvent is an inbound chat message.
type MessageEvent struct {
	ChatID    int64
	ChatKind  ChatKind
	MessageID int64
	Sender    User
	Text      string
	// StickerEmoji is the emoji bound to a sticker attachment, or empty when
	// the message carries no sticker.
	StickerEmoji string
}

func (MessageEvent) isEvent() {}

// Ref returns the message's delete/edit reference.
func (e MessageEvent) Ref() MessageRef {
	return MessageRef{ChatID: e.ChatID, MessageID: e.MessageID}
}

// CallbackEvent is the user pressing an interactive control. ChatID,
// ChatKind, and MessageID describe the message the control was attached to.
type CallbackEvent struct {
	ID        string // platform callback identifier, used for acknowledgments
	ChatID    int64
	ChatKind  ChatKind
	MessageID int64
	Sender    User
	Data      string // opaque payload, e.g. "captcha_ok:<handle>"
}

func (CallbackEvent) isEvent() {}

// Ref returns the reference of the message the control is attached to.
func (e CallbackEvent) Ref() MessageRef {
	return MessageRef{ChatID: e.ChatID, MessageID: e.MessageID}
}
