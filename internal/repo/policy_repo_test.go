package repo

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	sqlite "github.com/glebarez/sqlite" // pure-Go SQLite
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/tbourn/go-guard-bot/internal/domain"
)

func newPolicyRepoDB(t *testing.T, migrate ...any) *gorm.DB {
	t.Helper()

	dsn := filepath.Join(t.TempDir(), fmt.Sprintf("policy_repo_test_%d.db", time.Now().UnixNano()))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}

	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	if len(migrate) > 0 {
		if err := db.AutoMigrate(migrate...); err != nil {
			t.Fatalf("automigrate: %v", err)
		}
	}
	return db
}

func TestGetSettings_CreatesAllEnabled(t *testing.T) {
	db := newPolicyRepoDB(t, &domain.Group{}, &domain.GroupSettings{})
	g, _, err := EnsureGroup(context.Background(), db, 1)
	if err != nil {
		t.Fatalf("seed group: %v", err)
	}

	s, err := GetSettings(context.Background(), db, g.ID)
	if err != nil {
		t.Fatalf("GetSettings (create): %v", err)
	}
	if !s.FilterBannedWords || !s.WelcomeEnabled || !s.AIFiltering {
		t.Fatalf("expected every flag enabled on lazy create: %+v", s)
	}

	// Second call returns the same row.
	again, err := GetSettings(context.Background(), db, g.ID)
	if err != nil {
		t.Fatalf("GetSettings (lookup): %v", err)
	}
	if again.ID != s.ID {
		t.Fatalf("expected same settings row id %d, got %d", s.ID, again.ID)
	}

	var n int64
	if err := db.Model(&domain.GroupSettings{}).Count(&n).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	if n != 1 {
		t.Fatalf("expected 1 settings row, got %d", n)
	}
}

func TestToggleSetting_FlipsEachFlag(t *testing.T) {
	db := newPolicyRepoDB(t, &domain.Group{}, &domain.GroupSettings{})
	g, _, err := EnsureGroup(context.Background(), db, 1)
	if err != nil {
		t.Fatalf("seed group: %v", err)
	}
	if _, err := GetSettings(context.Background(), db, g.ID); err != nil {
		t.Fatalf("seed settings: %v", err)
	}

	s, err := ToggleSetting(context.Background(), db, g.ID, FlagFilterBannedWords)
	if err != nil {
		t.Fatalf("ToggleSetting filter: %v", err)
	}
	if s.FilterBannedWords {
		t.Fatalf("expected filter flag off after toggle")
	}

	// Toggle back on.
	s, err = ToggleSetting(context.Background(), db, g.ID, FlagFilterBannedWords)
	if err != nil {
		t.Fatalf("ToggleSetting filter (again): %v", err)
	}
	if !s.FilterBannedWords {
		t.Fatalf("expected filter flag back on")
	}

	if s, err = ToggleSetting(context.Background(), db, g.ID, FlagWelcomeEnabled); err != nil || s.WelcomeEnabled {
		t.Fatalf("welcome toggle failed: settings=%+v err=%v", s, err)
	}
	if s, err = ToggleSetting(context.Background(), db, g.ID, FlagAIFiltering); err != nil || s.AIFiltering {
		t.Fatalf("ai toggle failed: settings=%+v err=%v", s, err)
	}

	// Persisted, not just in-memory.
	reload, err := GetSettings(context.Background(), db, g.ID)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if reload.WelcomeEnabled || reload.AIFiltering || !reload.FilterBannedWords {
		t.Fatalf("unexpected persisted flags: %+v", reload)
	}
}

func TestToggleSetting_Errors(t *testing.T) {
	db := newPolicyRepoDB(t, &domain.Group{}, &domain.GroupSettings{})
	g, _, err := EnsureGroup(context.Background(), db, 1)
	if err != nil {
		t.Fatalf("seed group: %v", err)
	}

	// No settings row yet.
	if _, err := ToggleSetting(context.Background(), db, g.ID, FlagFilterBannedWords); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	if _, err := GetSettings(context.Background(), db, g.ID); err != nil {
		t.Fatalf("seed settings: %v", err)
	}
	if _, err := ToggleSetting(context.Background(), db, g.ID, "bogus"); !errors.Is(err, ErrUnknownFlag) {
		t.Fatalf("expected ErrUnknownFlag, got %v", err)
	}
}

func TestAddBannedWord_AndDuplicate(t *testing.T) {
	db := newPolicyRepoDB(t, &domain.Group{}, &domain.BannedWord{})
	g, _, err := EnsureGroup(context.Background(), db, 1)
	if err != nil {
		t.Fatalf("seed group: %v", err)
	}

	w, err := AddBannedWord(context.Background(), db, g.ID, "spam")
	if err != nil {
		t.Fatalf("AddBannedWord: %v", err)
	}
	if w.ID == 0 || w.Word != "spam" {
		t.Fatalf("unexpected word row: %+v", w)
	}

	if _, err := AddBannedWord(context.Background(), db, g.ID, "spam"); !errors.Is(err, ErrConflict) {
		t.Fatalf("expected ErrConflict on duplicate, got %v", err)
	}
}

func TestAddBannedWord_SameWordDifferentGroups(t *testing.T) {
	db := newPolicyRepoDB(t, &domain.Group{}, &domain.BannedWord{})
	g1, _, _ := EnsureGroup(context.Background(), db, 1)
	g2, _, _ := EnsureGroup(context.Background(), db, 2)

	if _, err := AddBannedWord(context.Background(), db, g1.ID, "spam"); err != nil {
		t.Fatalf("g1 add: %v", err)
	}
	if _, err := AddBannedWord(context.Background(), db, g2.ID, "spam"); err != nil {
		t.Fatalf("uniqueness must be per group, got %v", err)
	}
}

func TestListBannedWords_InsertionOrder(t *testing.T) {
	db := newPolicyRepoDB(t, &domain.Group{}, &domain.BannedWord{})
	g, _, err := EnsureGroup(context.Background(), db, 1)
	if err != nil {
		t.Fatalf("seed group: %v", err)
	}

	for _, w := range []string{"casino", "crypto", "spam"} {
		if _, err := AddBannedWord(context.Background(), db, g.ID, w); err != nil {
			t.Fatalf("add %q: %v", w, err)
		}
	}

	list, err := ListBannedWords(context.Background(), db, g.ID)
	if err != nil {
		t.Fatalf("ListBannedWords: %v", err)
	}
	if len(list) != 3 {
		t.Fatalf("expected 3 words, got %d", len(list))
	}
	if list[0].Word != "casino" || list[1].Word != "crypto" || list[2].Word != "spam" {
		t.Fatalf("unexpected order: %#v", list)
	}
}

func TestSeedBannedWords_SkipsExisting(t *testing.T) {
	db := newPolicyRepoDB(t, &domain.Group{}, &domain.BannedWord{})
	g, _, err := EnsureGroup(context.Background(), db, 1)
	if err != nil {
		t.Fatalf("seed group: %v", err)
	}

	if _, err := AddBannedWord(context.Background(), db, g.ID, "crypto"); err != nil {
		t.Fatalf("pre-seed: %v", err)
	}
	if err := SeedBannedWords(context.Background(), db, g.ID, []string{"spam", "crypto", "casino"}); err != nil {
		t.Fatalf("SeedBannedWords: %v", err)
	}

	list, err := ListBannedWords(context.Background(), db, g.ID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 3 {
		t.Fatalf("expected 3 distinct words after seed, got %d: %#v", len(list), list)
	}
}
