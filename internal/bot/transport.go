package bot

import "context"

// Button is one interactive control on an inline keyboard. Data is the
// opaque payload echoed back in the resulting CallbackEvent.
type Button struct {
	Text string
	Data string
}

// Keyboard is rows of buttons attached to an outbound message.
type Keyboard struct {
	Rows [][]Button
}

// SingleButton builds a one-row, one-button keyboard.
func SingleButton(text, data string) *Keyboard {
	return &Keyboard{Rows: [][]Button{{{Text: text, Data: data}}}}
}

// Transport is the messaging platform as seen by the moderation core. The
// core only calls it; implementations live at the edge (see the telegram
// package). Failures are "transport errors" in the pipeline's error model:
// the caller logs and swallows them, because a failed delete or send must not
// wedge event processing, and must not be mistaken for success either.
type Transport interface {
	// SendMessage posts text into a chat, optionally with an inline keyboard.
	SendMessage(ctx context.Context, chatID int64, text string, kb *Keyboard) error

	// DeleteMessage removes one message. Deleting an already-gone message is
	// an error at this level; callers decide whether that matters.
	DeleteMessage(ctx context.Context, ref MessageRef) error

	// EditMessageText replaces the text of an existing message, optionally
	// swapping its inline keyboard (nil removes it).
	EditMessageText(ctx context.Context, ref MessageRef, text string, kb *Keyboard) error

	// EditMessageKeyboard replaces only the inline keyboard of an existing
	// message, leaving its text untouched.
	EditMessageKeyboard(ctx context.Context, ref MessageRef, kb *Keyboard) error

	// AnswerCallback acknowledges an interactive-control press, optionally
	// with a toast (showAlert=false) or a modal notice (showAlert=true).
	AnswerCallback(ctx context.Context, callbackID, text string, showAlert bool) error

	// ChatAdmins returns the usernames of a chat's administrators. Used by
	// the admin surface to decide who may manage a group.
	ChatAdmins(ctx context.Context, chatID int64) ([]string, error)

	// ChatTitle returns the human-readable title of a chat.
	ChatTitle(ctx context.Context, chatID int64) (string, error)
}
