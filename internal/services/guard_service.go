// Package services – GuardService
//
// This file implements the verification gate: the per-message state machine
// that decides whether a sender is admitted to downstream handling, deleted,
// or challenged. It also handles the challenge-response callback that moves a
// member to the verified state.
//
// States per (handle, group): unknown → pending_challenge → verified, with
// banned as a sticky side channel checked first. The transition table is
// evaluated in a fixed order for every inbound group message; see
// CheckMessage.
package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/tbourn/go-guard-bot/internal/bot"
	"github.com/tbourn/go-guard-bot/internal/domain"
	"github.com/tbourn/go-guard-bot/internal/repo"
)

// ChallengeCallbackPrefix tags challenge-response payloads. The full payload
// is the prefix plus the sender's handle; handles contain no ':' by platform
// convention, and parsing splits on the first ':' only regardless.
const ChallengeCallbackPrefix = "captcha_ok:"

// Decision is the outcome of evaluating one group message against the gate.
type Decision int

const (
	// Admit forwards the event to the downstream handler.
	Admit Decision = iota
	// DeletedSticker: the message carried a flagged sticker and was deleted.
	DeletedSticker
	// DeletedBanned: the sender is globally banned; message deleted.
	DeletedBanned
	// ChallengedNew: first contact; member created, message deleted,
	// challenge issued.
	ChallengedNew
	// Challenged: known but silent member; challenge issued, message kept.
	Challenged
	// DeletedPending: member still awaiting their challenge; message deleted.
	DeletedPending
)

// Admitted reports whether the pipeline may continue past the gate.
func (d Decision) Admitted() bool { return d == Admit }

// String names the decision for logs and metric labels.
func (d Decision) String() string {
	switch d {
	case Admit:
		return "admit"
	case DeletedSticker:
		return "flagged_sticker"
	case DeletedBanned:
		return "banned"
	case ChallengedNew:
		return "challenged_new"
	case Challenged:
		return "challenged"
	case DeletedPending:
		return "pending_challenge"
	default:
		return "unknown"
	}
}

// GuardService implements the verification gate over the membership registry
// and the messaging transport. All persistence goes through the per-event
// session handle passed into each call; the service itself is stateless and
// safe for concurrent use.
type GuardService struct {
	// Transport performs deletions, challenge prompts, and acknowledgments.
	Transport bot.Transport
	// FlaggedStickerEmojis are sticker attachments deleted outright,
	// independent of the sender's state.
	FlaggedStickerEmojis []string
	// Log receives transport failures, which are logged and swallowed.
	Log zerolog.Logger
}

// CheckMessage runs the gate's transition table, in order, for one inbound
// group message:
//
//  1. flagged sticker        → delete, stop
//  2. sender globally banned → delete, stop
//  3. no member row          → create, delete message, challenge, stop
//  4. unverified, never challenged → challenge, stop
//  5. unverified, challenge pending → delete, stop
//  6. verified               → admit
//
// Transport failures are logged and swallowed: a delete that fails must not
// block the pipeline, and is not reported as success either. Persistence
// errors are returned and abort the event.
func (s *GuardService) CheckMessage(ctx context.Context, sess *gorm.DB, ev bot.MessageEvent, group *domain.Group) (Decision, error) {
	// 1. Disallowed attachment marker.
	if s.stickerFlagged(ev.StickerEmoji) {
		s.deleteMessage(ctx, ev.Ref())
		return DeletedSticker, nil
	}

	handle := ev.Sender.Handle()

	// 2. Sticky global ban, keyed by handle alone: banned anywhere blocks
	// everywhere.
	banned, err := repo.IsBanned(ctx, sess, handle)
	if err != nil {
		return Admit, err
	}
	if banned {
		s.deleteMessage(ctx, ev.Ref())
		return DeletedBanned, nil
	}

	// 3. First contact from this (handle, group) pair.
	member, err := repo.FindMember(ctx, sess, handle, group.ID)
	if errors.Is(err, repo.ErrNotFound) {
		member, err = repo.CreateMember(ctx, sess, handle, group.ID)
		if errors.Is(err, repo.ErrConflict) {
			// Concurrent first message won the insert; fall through with
			// the row it created.
			member, err = repo.FindMember(ctx, sess, handle, group.ID)
		}
		if err != nil {
			return Admit, err
		}
		s.deleteMessage(ctx, ev.Ref())
		if err := s.issueChallenge(ctx, sess, ev, member); err != nil {
			return Admit, err
		}
		return ChallengedNew, nil
	}
	if err != nil {
		return Admit, err
	}

	// 4. Known but never challenged.
	if !member.Verified && !member.ChallengeSent {
		if err := s.issueChallenge(ctx, sess, ev, member); err != nil {
			return Admit, err
		}
		return Challenged, nil
	}

	// 5. Challenge outstanding.
	if !member.Verified {
		s.deleteMessage(ctx, ev.Ref())
		return DeletedPending, nil
	}

	// 6. Verified.
	return Admit, nil
}

// ConfirmChallenge processes a challenge-response callback. It returns true
// when a member transitioned to verified.
//
// Responses are accepted only from group-type chats; a press arriving from a
// private context gets a visible notice and changes nothing. An unknown
// handle gets a neutral acknowledgment and changes nothing.
func (s *GuardService) ConfirmChallenge(ctx context.Context, sess *gorm.DB, ev bot.CallbackEvent) (bool, error) {
	if !ev.ChatKind.IsGroup() {
		s.answer(ctx, ev.ID, "The captcha only works in group chats.", true)
		return false, nil
	}

	// Split on the first ':' only; the handle is everything after it.
	prefix, handle, ok := strings.Cut(ev.Data, ":")
	if !ok || prefix+":" != ChallengeCallbackPrefix || handle == "" {
		s.answer(ctx, ev.ID, "", false)
		return false, nil
	}

	group, _, err := repo.EnsureGroup(ctx, sess, ev.ChatID)
	if err != nil {
		return false, err
	}

	member, err := repo.FindMember(ctx, sess, handle, group.ID)
	if errors.Is(err, repo.ErrNotFound) {
		s.answer(ctx, ev.ID, "User not found. Write in the chat again.", false)
		return false, nil
	}
	if err != nil {
		return false, err
	}

	if err := repo.MarkVerified(ctx, sess, member); err != nil {
		return false, err
	}

	text := "✅ Verified."
	if settings, err := repo.GetSettings(ctx, sess, group.ID); err == nil && settings.WelcomeEnabled {
		text = "✅ Captcha passed. Welcome!"
	}
	if err := s.Transport.EditMessageText(ctx, ev.Ref(), text, nil); err != nil {
		s.Log.Warn().Err(err).Int64("chat_id", ev.ChatID).Msg("edit challenge prompt failed")
	}
	s.answer(ctx, ev.ID, "Thanks, you are verified ✅", true)
	return true, nil
}

// issueChallenge sends the verification prompt and records the transition to
// pending_challenge. The flag is only persisted after the prompt went out,
// so a failed send is retried by the member's next message.
func (s *GuardService) issueChallenge(ctx context.Context, sess *gorm.DB, ev bot.MessageEvent, member *domain.Member) error {
	prompt := fmt.Sprintf("Hi, %s! Please confirm you are not a bot 👇", ev.Sender.DisplayName())
	kb := bot.SingleButton("✅ I am not a bot", ChallengeCallbackPrefix+member.Handle)
	if err := s.Transport.SendMessage(ctx, ev.ChatID, prompt, kb); err != nil {
		s.Log.Warn().Err(err).Int64("chat_id", ev.ChatID).Str("handle", member.Handle).Msg("send challenge failed")
		return nil
	}
	return repo.MarkChallengeSent(ctx, sess, member)
}

func (s *GuardService) stickerFlagged(emoji string) bool {
	if emoji == "" {
		return false
	}
	for _, e := range s.FlaggedStickerEmojis {
		if e == emoji {
			return true
		}
	}
	return false
}

func (s *GuardService) deleteMessage(ctx context.Context, ref bot.MessageRef) {
	if err := s.Transport.DeleteMessage(ctx, ref); err != nil {
		s.Log.Warn().Err(err).Int64("chat_id", ref.ChatID).Int64("message_id", ref.MessageID).Msg("delete message failed")
	}
}

func (s *GuardService) answer(ctx context.Context, callbackID, text string, alert bool) {
	if err := s.Transport.AnswerCallback(ctx, callbackID, text, alert); err != nil {
		s.Log.Warn().Err(err).Str("callback_id", callbackID).Msg("answer callback failed")
	}
}
