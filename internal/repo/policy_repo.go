// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the policy
// store: per-group settings and banned-word lists.
package repo

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/tbourn/go-guard-bot/internal/domain"
)

// Settings flag names accepted by ToggleSetting.
const (
	FlagFilterBannedWords = "filter"
	FlagWelcomeEnabled    = "welcome"
	FlagAIFiltering       = "ai"
)

// ErrUnknownFlag is returned by ToggleSetting for a flag name outside the
// known set.
var ErrUnknownFlag = errors.New("unknown settings flag")

// GetSettings returns the settings row for groupID, creating it with every
// flag enabled when absent. At most one row exists per group (unique index);
// a lost create race is retried as a lookup.
func GetSettings(ctx context.Context, db *gorm.DB, groupID uint) (*domain.GroupSettings, error) {
	var s domain.GroupSettings
	err := db.WithContext(ctx).Where("group_id = ?", groupID).First(&s).Error
	if err == nil {
		return &s, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	s = domain.GroupSettings{
		GroupID:           groupID,
		FilterBannedWords: true,
		WelcomeEnabled:    true,
		AIFiltering:       true,
	}
	if err := db.WithContext(ctx).Create(&s).Error; err != nil {
		if isDuplicate(err) {
			var again domain.GroupSettings
			if err2 := db.WithContext(ctx).Where("group_id = ?", groupID).First(&again).Error; err2 != nil {
				return nil, err2
			}
			return &again, nil
		}
		return nil, err
	}
	return &s, nil
}

// ToggleSetting flips one settings flag for groupID and returns the updated
// row. It returns ErrNotFound when no settings row exists (callers are
// expected to have passed through GetSettings first) and ErrUnknownFlag for
// an unrecognized flag name.
func ToggleSetting(ctx context.Context, db *gorm.DB, groupID uint, flag string) (*domain.GroupSettings, error) {
	var s domain.GroupSettings
	if err := db.WithContext(ctx).Where("group_id = ?", groupID).First(&s).Error; err != nil {
		return nil, err
	}

	var column string
	var value bool
	switch flag {
	case FlagFilterBannedWords:
		column, value = "filter_banned_words", !s.FilterBannedWords
		s.FilterBannedWords = value
	case FlagWelcomeEnabled:
		column, value = "welcome_enabled", !s.WelcomeEnabled
		s.WelcomeEnabled = value
	case FlagAIFiltering:
		column, value = "ai_filtering", !s.AIFiltering
		s.AIFiltering = value
	default:
		return nil, ErrUnknownFlag
	}

	if err := db.WithContext(ctx).
		Model(&domain.GroupSettings{}).
		Where("id = ?", s.ID).
		Update(column, value).Error; err != nil {
		return nil, err
	}
	return &s, nil
}

// ListBannedWords returns the group's banned words ordered by insertion
// (id ascending). An empty list is returned when the group has none.
func ListBannedWords(ctx context.Context, db *gorm.DB, groupID uint) ([]domain.BannedWord, error) {
	var out []domain.BannedWord
	err := db.WithContext(ctx).
		Where("group_id = ?", groupID).
		Order("id asc").
		Find(&out).Error
	return out, err
}

// AddBannedWord inserts one (group, word) pair. The caller is responsible
// for normalizing the word (trim + lowercase) beforehand. A duplicate pair
// yields ErrConflict.
func AddBannedWord(ctx context.Context, db *gorm.DB, groupID uint, word string) (*domain.BannedWord, error) {
	w := &domain.BannedWord{GroupID: groupID, Word: word}
	if err := db.WithContext(ctx).Create(w).Error; err != nil {
		if isDuplicate(err) {
			return nil, ErrConflict
		}
		return nil, err
	}
	return w, nil
}

// SeedBannedWords inserts the given words for groupID, skipping any that are
// already present. Used once per group, right after registration, to apply
// the configured default list.
func SeedBannedWords(ctx context.Context, db *gorm.DB, groupID uint, words []string) error {
	for _, word := range words {
		if _, err := AddBannedWord(ctx, db, groupID, word); err != nil {
			if errors.Is(err, ErrConflict) {
				continue
			}
			return err
		}
	}
	return nil
}
