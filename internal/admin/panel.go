// Package admin implements the administrative surface: a private-chat,
// inline-keyboard flow for managing group settings and banned-word lists
// through the policy service. Only chats where the caller is a platform
// administrator are offered for management.
//
// Callback payloads follow the "<action>:<args>" convention of the challenge
// flow: "group:<id>" opens a group, "toggle:<flag>:<id>" flips a setting,
// "add_badword:<id>" arms a pending word input, "show_badwords:<id>" prints
// the list. The pending word input is the one piece of conversational state
// the bot keeps, held in memory per admin user.
package admin

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"github.com/tbourn/go-guard-bot/internal/bot"
	"github.com/tbourn/go-guard-bot/internal/domain"
	"github.com/tbourn/go-guard-bot/internal/repo"
	"github.com/tbourn/go-guard-bot/internal/services"
)

// Callback payload prefixes owned by the admin surface.
const (
	prefixGroup     = "group:"
	prefixToggle    = "toggle:"
	prefixAddWord   = "add_badword:"
	prefixShowWords = "show_badwords:"
)

// adminCommand opens the panel from a private chat.
const adminCommand = "/admin"

// Panel is the admin surface. Safe for concurrent use.
type Panel struct {
	Transport bot.Transport
	Policy    *services.PolicyService
	Log       zerolog.Logger

	mu sync.Mutex
	// pendingWord maps an admin's user id to the group awaiting a banned
	// word from them. Armed by the add-word button, consumed by the next
	// private message.
	pendingWord map[int64]uint
}

// New builds a Panel over the given transport and policy service.
func New(transport bot.Transport, policy *services.PolicyService, log zerolog.Logger) *Panel {
	return &Panel{
		Transport:   transport,
		Policy:      policy,
		Log:         log,
		pendingWord: make(map[int64]uint),
	}
}

// Handles reports whether the callback payload belongs to this surface.
func (p *Panel) Handles(data string) bool {
	return strings.HasPrefix(data, prefixGroup) ||
		strings.HasPrefix(data, prefixToggle) ||
		strings.HasPrefix(data, prefixAddWord) ||
		strings.HasPrefix(data, prefixShowWords)
}

// HandleMessage consumes a private message when it opens the panel or
// answers a pending word prompt. Group messages and unrelated private
// messages are left to the pipeline (returns false).
func (p *Panel) HandleMessage(ctx context.Context, ev bot.MessageEvent) (bool, error) {
	if ev.ChatKind != bot.ChatPrivate {
		return false, nil
	}

	if strings.TrimSpace(ev.Text) == adminCommand {
		return true, p.openPanel(ctx, ev)
	}

	if groupID, ok := p.takePending(ev.Sender.ID); ok {
		return true, p.acceptWord(ctx, ev, groupID)
	}

	return false, nil
}

// HandleCallback processes one admin keyboard press, routed by prefix.
func (p *Panel) HandleCallback(ctx context.Context, ev bot.CallbackEvent) error {
	action, args, _ := strings.Cut(ev.Data, ":")
	switch action + ":" {
	case prefixGroup:
		return p.showGroup(ctx, ev, args)
	case prefixToggle:
		return p.toggle(ctx, ev, args)
	case prefixAddWord:
		return p.armAddWord(ctx, ev, args)
	case prefixShowWords:
		return p.showWords(ctx, ev, args)
	default:
		return nil
	}
}

// openPanel lists the registered groups the caller administers.
func (p *Panel) openPanel(ctx context.Context, ev bot.MessageEvent) error {
	if ev.Sender.Username == "" {
		return p.Transport.SendMessage(ctx, ev.ChatID,
			"❗ You have no username set. Add one in your profile settings first.", nil)
	}

	groups, err := p.Policy.Groups(ctx)
	if err != nil {
		return err
	}

	var rows [][]bot.Button
	for _, g := range groups {
		admins, err := p.Transport.ChatAdmins(ctx, g.ChatID)
		if err != nil {
			// The bot may have been removed from the chat; skip it.
			p.Log.Debug().Err(err).Int64("chat_id", g.ChatID).Msg("chat admins unavailable")
			continue
		}
		if !contains(admins, ev.Sender.Username) {
			continue
		}
		title, err := p.Transport.ChatTitle(ctx, g.ChatID)
		if err != nil || title == "" {
			title = fmt.Sprintf("group %d", g.ID)
		}
		rows = append(rows, []bot.Button{{Text: title, Data: prefixGroup + strconv.FormatUint(uint64(g.ID), 10)}})
	}

	if len(rows) == 0 {
		return p.Transport.SendMessage(ctx, ev.ChatID,
			"❗ You are not an administrator of any registered group.", nil)
	}
	return p.Transport.SendMessage(ctx, ev.ChatID,
		"Choose a group to manage:", &bot.Keyboard{Rows: rows})
}

// showGroup renders the settings keyboard for one group.
func (p *Panel) showGroup(ctx context.Context, ev bot.CallbackEvent, args string) error {
	groupID, err := parseGroupID(args)
	if err != nil {
		return p.ackAlert(ctx, ev, "Malformed group reference.")
	}
	settings, err := p.Policy.Settings(ctx, groupID)
	if err != nil {
		return err
	}
	if err := p.Transport.EditMessageText(ctx, ev.Ref(),
		fmt.Sprintf("⚙️ Managing group (ID: %d)", groupID),
		settingsKeyboard(groupID, settings)); err != nil {
		p.Log.Warn().Err(err).Msg("edit panel message failed")
	}
	return p.ack(ctx, ev, "")
}

// toggle flips a settings flag and re-renders the keyboard.
func (p *Panel) toggle(ctx context.Context, ev bot.CallbackEvent, args string) error {
	flag, rest, _ := strings.Cut(args, ":")
	groupID, err := parseGroupID(rest)
	if err != nil {
		return p.ackAlert(ctx, ev, "Malformed toggle reference.")
	}
	settings, err := p.Policy.Toggle(ctx, groupID, flag)
	if err != nil {
		if errors.Is(err, services.ErrSettingsNotFound) || errors.Is(err, repo.ErrUnknownFlag) {
			return p.ackAlert(ctx, ev, "Group settings not found.")
		}
		return err
	}
	if err := p.Transport.EditMessageKeyboard(ctx, ev.Ref(), settingsKeyboard(groupID, settings)); err != nil {
		p.Log.Warn().Err(err).Msg("edit settings keyboard failed")
	}
	return p.ack(ctx, ev, "✅ Settings updated")
}

// armAddWord records that the admin's next private message is a banned word
// for this group.
func (p *Panel) armAddWord(ctx context.Context, ev bot.CallbackEvent, args string) error {
	groupID, err := parseGroupID(args)
	if err != nil {
		return p.ackAlert(ctx, ev, "Malformed group reference.")
	}
	p.mu.Lock()
	p.pendingWord[ev.Sender.ID] = groupID
	p.mu.Unlock()
	if err := p.Transport.SendMessage(ctx, ev.ChatID, "✏️ Send the word to add to the ban list:", nil); err != nil {
		return err
	}
	return p.ack(ctx, ev, "")
}

// acceptWord consumes the pending word input for groupID.
func (p *Panel) acceptWord(ctx context.Context, ev bot.MessageEvent, groupID uint) error {
	w, err := p.Policy.AddBannedWord(ctx, groupID, ev.Text)
	switch {
	case errors.Is(err, services.ErrEmptyWord):
		// Keep the prompt armed so the admin can try again.
		p.mu.Lock()
		p.pendingWord[ev.Sender.ID] = groupID
		p.mu.Unlock()
		return p.Transport.SendMessage(ctx, ev.ChatID, "❗ Send a non-empty word.", nil)
	case errors.Is(err, services.ErrDuplicateWord):
		word := strings.ToLower(strings.TrimSpace(ev.Text))
		return p.Transport.SendMessage(ctx, ev.ChatID,
			fmt.Sprintf("⚠️ The word %q is already in the ban list.", word), nil)
	case err != nil:
		return err
	default:
		return p.Transport.SendMessage(ctx, ev.ChatID,
			fmt.Sprintf("✅ The word %q was added to the ban list.", w.Word), nil)
	}
}

// showWords prints the group's ban list, or alerts when it is empty.
func (p *Panel) showWords(ctx context.Context, ev bot.CallbackEvent, args string) error {
	groupID, err := parseGroupID(args)
	if err != nil {
		return p.ackAlert(ctx, ev, "Malformed group reference.")
	}
	words, err := p.Policy.BannedWords(ctx, groupID)
	if err != nil {
		return err
	}
	if len(words) == 0 {
		return p.ackAlert(ctx, ev, "📭 The ban list is empty.")
	}
	var b strings.Builder
	b.WriteString("🚫 Banned words:\n")
	for i, w := range words {
		fmt.Fprintf(&b, "%d. %s\n", i+1, w.Word)
	}
	if err := p.Transport.SendMessage(ctx, ev.ChatID, b.String(), nil); err != nil {
		return err
	}
	return p.ack(ctx, ev, "")
}

// takePending removes and returns the pending group for userID, if any.
func (p *Panel) takePending(userID int64) (uint, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	groupID, ok := p.pendingWord[userID]
	if ok {
		delete(p.pendingWord, userID)
	}
	return groupID, ok
}

func (p *Panel) ack(ctx context.Context, ev bot.CallbackEvent, text string) error {
	if err := p.Transport.AnswerCallback(ctx, ev.ID, text, false); err != nil {
		p.Log.Warn().Err(err).Str("callback_id", ev.ID).Msg("answer callback failed")
	}
	return nil
}

func (p *Panel) ackAlert(ctx context.Context, ev bot.CallbackEvent, text string) error {
	if err := p.Transport.AnswerCallback(ctx, ev.ID, text, true); err != nil {
		p.Log.Warn().Err(err).Str("callback_id", ev.ID).Msg("answer callback failed")
	}
	return nil
}

// settingsKeyboard renders the toggle buttons plus the word-list actions.
func settingsKeyboard(groupID uint, s *domain.GroupSettings) *bot.Keyboard {
	id := strconv.FormatUint(uint64(groupID), 10)
	return &bot.Keyboard{Rows: [][]bot.Button{
		{{Text: flagLabel("Filter banned words", s.FilterBannedWords), Data: prefixToggle + repo.FlagFilterBannedWords + ":" + id}},
		{{Text: flagLabel("Welcome message", s.WelcomeEnabled), Data: prefixToggle + repo.FlagWelcomeEnabled + ":" + id}},
		{{Text: flagLabel("AI filtering", s.AIFiltering), Data: prefixToggle + repo.FlagAIFiltering + ":" + id}},
		{{Text: "➕ Add banned word", Data: prefixAddWord + id}},
		{{Text: "📜 Show banned words", Data: prefixShowWords + id}},
	}}
}

func flagLabel(name string, on bool) string {
	if on {
		return name + " ✅"
	}
	return name
}

func parseGroupID(s string) (uint, error) {
	id, err := strconv.ParseUint(s, 10, 32)
	return uint(id), err
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
