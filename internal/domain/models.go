// Package domain defines the persistence models for moderated groups, their
// settings, banned words, and members. These types are mapped with GORM and
// form the core data layer of the moderation bot.
package domain

import (
	"time"
)

// Group represents one moderated chat. A group is created the first time a
// message is observed from that chat and is never explicitly deleted; if a
// deletion path is ever added, children are removed by the FK constraints.
//
// Fields:
//   - ID: autoincrement primary key.
//   - ChatID: the platform chat identifier (unique).
//   - CreatedAt / UpdatedAt: timestamps managed by GORM.
type Group struct {
	ID        uint      `json:"id"         gorm:"primaryKey"`
	ChatID    int64     `json:"chat_id"    gorm:"uniqueIndex;not null"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName returns the database table name for Group.
func (Group) TableName() string { return "groups" }

// GroupSettings holds the moderation toggles for one group. The row is
// created lazily on first access with every flag enabled, and there is at
// most one settings row per group (unique FK index).
//
// Fields:
//   - FilterBannedWords: enables the censorship step for the group.
//   - WelcomeEnabled: enables the welcome text shown after verification.
//   - AIFiltering: enables AI-assisted filtering (reserved toggle).
type GroupSettings struct {
	ID                uint      `json:"id"                  gorm:"primaryKey"`
	GroupID           uint      `json:"group_id"            gorm:"uniqueIndex;not null"`
	FilterBannedWords bool      `json:"filter_banned_words" gorm:"not null;default:true"`
	WelcomeEnabled    bool      `json:"welcome_enabled"     gorm:"not null;default:true"`
	AIFiltering       bool      `json:"ai_filtering"        gorm:"not null;default:true"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`

	// Group is the owning chat. Settings are cascade-deleted with it.
	Group Group `json:"-" gorm:"foreignKey:GroupID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

// TableName returns the database table name for GroupSettings.
func (GroupSettings) TableName() string { return "group_settings" }

// BannedWord is one (group, normalized word) pair. Entries are only ever
// inserted, never updated, and the pair is unique per group.
type BannedWord struct {
	ID        uint      `json:"id"         gorm:"primaryKey"`
	GroupID   uint      `json:"group_id"   gorm:"not null;index;uniqueIndex:ux_group_word,priority:1"`
	Word      string    `json:"word"       gorm:"type:varchar(128);not null;uniqueIndex:ux_group_word,priority:2"`
	CreatedAt time.Time `json:"created_at"`

	// Group is the owning chat. Words are cascade-deleted with it.
	Group Group `json:"-" gorm:"foreignKey:GroupID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

// TableName returns the database table name for BannedWord.
func (BannedWord) TableName() string { return "banned_words" }

// Member identifies a user within one group's moderation scope. The same
// person in two different groups is two independent Member rows: identity is
// the (handle, group) pair, enforced by the composite unique index, never the
// handle alone.
//
// Lifecycle: created on first observed message with all flags false, then
// ChallengeSent becomes true when a verification challenge is issued, and
// Verified becomes true when the user resolves it. Banned is set only by
// external moderation action but is checked on every message.
type Member struct {
	ID            uint      `json:"id"             gorm:"primaryKey"`
	Handle        string    `json:"handle"         gorm:"type:varchar(64);not null;uniqueIndex:ux_member_group,priority:1"`
	GroupID       uint      `json:"group_id"       gorm:"not null;uniqueIndex:ux_member_group,priority:2"`
	Verified      bool      `json:"verified"       gorm:"not null;default:false"`
	Banned        bool      `json:"banned"         gorm:"not null;default:false"`
	ChallengeSent bool      `json:"challenge_sent" gorm:"not null;default:false"`
	Admin         bool      `json:"admin"          gorm:"not null;default:false"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`

	// Group is the owning chat. Members are cascade-deleted with it.
	Group Group `json:"-" gorm:"foreignKey:GroupID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

// TableName returns the database table name for Member.
func (Member) TableName() string { return "members" }

// MemberState is the verification state derived from a Member's flags.
type MemberState string

const (
	// StateUnknown: the member exists but no challenge has been issued yet.
	StateUnknown MemberState = "unknown"
	// StatePendingChallenge: a challenge was issued and not yet resolved.
	StatePendingChallenge MemberState = "pending_challenge"
	// StateVerified: the member resolved a challenge. Terminal.
	StateVerified MemberState = "verified"
	// StateBanned: set by external moderation. Sticky and checked first.
	StateBanned MemberState = "banned"
)

// State derives the gate state from the member's flags. Banned wins over
// everything, then Verified, then the challenge progression.
func (m Member) State() MemberState {
	switch {
	case m.Banned:
		return StateBanned
	case m.Verified:
		return StateVerified
	case m.ChallengeSent:
		return StatePendingChallenge
	default:
		return StateUnknown
	}
}
