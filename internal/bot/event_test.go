package bot

import "testing"

func TestChatKind_IsGroup(t *testing.T) {
	if !ChatGroup.IsGroup() || !ChatSupergroup.IsGroup() {
		t.Fatalf("group kinds must report IsGroup")
	}
	if ChatPrivate.IsGroup() || ChatChannel.IsGroup() {
		t.Fatalf("non-group kinds must not report IsGroup")
	}
}

func TestUser_HandleAndDisplayName(t *testing.T) {
	u := User{ID: 7, Username: "alice", FirstName: "Alice"}
	if u.Handle() != "alice" || u.DisplayName() != "Alice" {
		t.Fatalf("unexpected names: %q %q", u.Handle(), u.DisplayName())
	}

	// No username: deterministic fallback derived from the id.
	u = User{ID: 7}
	if u.Handle() != "id_7" {
		t.Fatalf("unexpected fallback handle: %q", u.Handle())
	}
	if u.DisplayName() != "id_7" {
		t.Fatalf("display name should fall back to the handle: %q", u.DisplayName())
	}

	u = User{ID: 7, FirstName: "Bob"}
	if u.DisplayName() != "Bob" {
		t.Fatalf("first name should win: %q", u.DisplayName())
	}
}

func TestMessageEvent_Ref(t *testing.T) {
	ev := MessageEvent{ChatID: -1, MessageID: 9}
	if ev.Ref() != (MessageRef{ChatID: -1, MessageID: 9}) {
		t.Fatalf("unexpected ref: %+v", ev.Ref())
	}
}

func TestSingleButton(t *testing.T) {
	kb := SingleButton("press", "data:1")
	if len(kb.Rows) != 1 || len(kb.Rows[0]) != 1 {
		t.Fatalf("unexpected shape: %+v", kb)
	}
	if kb.Rows[0][0] != (Button{Text: "press", Data: "data:1"}) {
		t.Fatalf("unexpected button: %+v", kb.Rows[0][0])
	}
}
