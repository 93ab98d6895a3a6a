// Package services – PolicyService
//
// This file implements the policy operations behind the administrative
// surface: reading and toggling per-group settings and maintaining the
// per-group banned-word lists. It validates and normalizes input and maps
// repository sentinels onto the service-level errors that the admin layer
// renders as user-visible notices.
package services

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/tbourn/go-guard-bot/internal/domain"
	"github.com/tbourn/go-guard-bot/internal/repo"
)

// PolicyService exposes the policy store to the admin surface. It holds its
// own DB handle: admin interactions are not pipeline events and acquire no
// per-event session.
type PolicyService struct {
	// DB is the GORM handle used for persistence.
	DB *gorm.DB
}

// Groups lists every registered group, oldest first.
func (s *PolicyService) Groups(ctx context.Context) ([]domain.Group, error) {
	return repo.ListGroups(ctx, s.DB)
}

// Settings returns the group's settings, lazily creating the row with all
// flags enabled on first access.
func (s *PolicyService) Settings(ctx context.Context, groupID uint) (*domain.GroupSettings, error) {
	return repo.GetSettings(ctx, s.DB, groupID)
}

// Toggle flips one of the settings flags (repo.FlagFilterBannedWords,
// repo.FlagWelcomeEnabled, repo.FlagAIFiltering) and returns the updated
// settings. A missing settings row yields ErrSettingsNotFound; in the
// intended call order (Settings before Toggle) this cannot happen.
func (s *PolicyService) Toggle(ctx context.Context, groupID uint, flag string) (*domain.GroupSettings, error) {
	settings, err := repo.ToggleSetting(ctx, s.DB, groupID, flag)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, ErrSettingsNotFound
	}
	return settings, err
}

// BannedWords returns the group's banned words in insertion order.
func (s *PolicyService) BannedWords(ctx context.Context, groupID uint) ([]domain.BannedWord, error) {
	return repo.ListBannedWords(ctx, s.DB, groupID)
}

// AddBannedWord normalizes word (trim + lowercase) and inserts it for the
// group. An input that is empty after trimming yields ErrEmptyWord; an
// already-present word yields ErrDuplicateWord, which callers report as an
// informational outcome, not a failure.
func (s *PolicyService) AddBannedWord(ctx context.Context, groupID uint, word string) (*domain.BannedWord, error) {
	normalized := strings.ToLower(strings.TrimSpace(word))
	if normalized == "" {
		return nil, ErrEmptyWord
	}
	w, err := repo.AddBannedWord(ctx, s.DB, groupID, normalized)
	if errors.Is(err, repo.ErrConflict) {
		return nil, ErrDuplicateWord
	}
	return w, err
}
