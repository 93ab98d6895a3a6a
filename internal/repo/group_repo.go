// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the Group
// model: the membership registry's group side.
//
// All functions are context-aware and accept a *gorm.DB handle, making them
// safe for use within transactions or connection-scoped operations.
// They follow the "thin repository" approach: no business logic, only CRUD
// persistence and query composition.
//
// Error semantics:
//   - When a group is not found, functions return gorm.ErrRecordNotFound
//     (also exported here as ErrNotFound for convenience).
//   - Unique-constraint violations surface as ErrConflict.
//   - On other DB errors (connectivity issues, etc.), the raw gorm error is
//     propagated.
package repo

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/tbourn/go-guard-bot/internal/domain"
)

// ErrNotFound is returned when a requested record does not exist.
// It aliases gorm.ErrRecordNotFound for convenience and consistency
// across the service layer and handlers.
var ErrNotFound = gorm.ErrRecordNotFound

// ErrConflict is returned when an insert violates a uniqueness constraint.
// Callers that raced a concurrent create should retry as a lookup.
var ErrConflict = errors.New("record already exists")

// EnsureGroup looks up the group registered for chatID, creating it when
// absent. The returned bool reports whether a new row was created this call,
// which lets the registration step seed defaults exactly once.
//
// The operation is idempotent and safe to run on every inbound event: the
// unique index on chat_id closes the concurrent-first-message race, and the
// losing insert is retried as a lookup.
func EnsureGroup(ctx context.Context, db *gorm.DB, chatID int64) (*domain.Group, bool, error) {
	var g domain.Group
	err := db.WithContext(ctx).Where("chat_id = ?", chatID).First(&g).Error
	if err == nil {
		return &g, false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, err
	}

	g = domain.Group{ChatID: chatID}
	if err := db.WithContext(ctx).Create(&g).Error; err != nil {
		if isDuplicate(err) {
			// Lost the race; the row exists now.
			var again domain.Group
			if err2 := db.WithContext(ctx).Where("chat_id = ?", chatID).First(&again).Error; err2 != nil {
				return nil, false, err2
			}
			return &again, false, nil
		}
		return nil, false, err
	}
	return &g, true, nil
}

// GetGroup fetches a group by its internal id, or ErrNotFound if missing.
func GetGroup(ctx context.Context, db *gorm.DB, id uint) (*domain.Group, error) {
	var g domain.Group
	if err := db.WithContext(ctx).First(&g, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &g, nil
}

// ListGroups returns every registered group ordered by id ascending.
// Used by the admin surface to offer a group picker.
func ListGroups(ctx context.Context, db *gorm.DB) ([]domain.Group, error) {
	var out []domain.Group
	err := db.WithContext(ctx).Order("id asc").Find(&out).Error
	return out, err
}

// isDuplicate attempts to detect unique-constraint violations across drivers
// that may not map to gorm.ErrDuplicatedKey.
func isDuplicate(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	// SQLite typically: "UNIQUE constraint failed"
	// Postgres typically: "duplicate key value violates unique constraint"
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint") ||
		strings.Contains(msg, "duplicate key")
}
