// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the Member
// model: the membership registry's per-user side.
//
// Identity note: the forward-path lookups (FindMember, CreateMember) key on
// the (handle, group) pair, so the same handle in two groups is two rows.
// The ban and verification helpers are deliberately coarser and match the
// handle anywhere, preserving "banned anywhere blocks everywhere".
package repo

import (
	"context"

	"gorm.io/gorm"

	"github.com/tbourn/go-guard-bot/internal/domain"
)

// FindMember fetches the member row for (handle, groupID), or ErrNotFound.
func FindMember(ctx context.Context, db *gorm.DB, handle string, groupID uint) (*domain.Member, error) {
	var m domain.Member
	err := db.WithContext(ctx).
		Where("handle = ? AND group_id = ?", handle, groupID).
		First(&m).Error
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// CreateMember inserts a new member row for (handle, groupID) with every
// flag false. If the pair already exists it returns ErrConflict; callers are
// expected to FindMember first and treat a conflict as losing a create race.
func CreateMember(ctx context.Context, db *gorm.DB, handle string, groupID uint) (*domain.Member, error) {
	m := &domain.Member{
		Handle:  handle,
		GroupID: groupID,
	}
	if err := db.WithContext(ctx).Create(m).Error; err != nil {
		if isDuplicate(err) {
			return nil, ErrConflict
		}
		return nil, err
	}
	return m, nil
}

// MarkChallengeSent records that a verification challenge was issued to the
// member. The flag is persisted immediately and mirrored on the passed value.
func MarkChallengeSent(ctx context.Context, db *gorm.DB, m *domain.Member) error {
	res := db.WithContext(ctx).
		Model(&domain.Member{}).
		Where("id = ?", m.ID).
		Update("challenge_sent", true)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	m.ChallengeSent = true
	return nil
}

// MarkVerified records that the member resolved their challenge. The flag is
// persisted immediately and mirrored on the passed value.
func MarkVerified(ctx context.Context, db *gorm.DB, m *domain.Member) error {
	res := db.WithContext(ctx).
		Model(&domain.Member{}).
		Where("id = ?", m.ID).
		Update("verified", true)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	m.Verified = true
	return nil
}

// IsBanned reports whether any member row with this handle, in any group,
// carries the banned flag. Intentionally handle-only: a ban anywhere blocks
// everywhere.
func IsBanned(ctx context.Context, db *gorm.DB, handle string) (bool, error) {
	var n int64
	err := db.WithContext(ctx).
		Model(&domain.Member{}).
		Where("handle = ? AND banned = ?", handle, true).
		Count(&n).Error
	return n > 0, err
}

// IsVerified reports whether any member row with this handle, in any group,
// carries the verified flag. Handle-only, same scope as IsBanned; the gate's
// forward path uses the per-group row instead.
func IsVerified(ctx context.Context, db *gorm.DB, handle string) (bool, error) {
	var n int64
	err := db.WithContext(ctx).
		Model(&domain.Member{}).
		Where("handle = ? AND verified = ?", handle, true).
		Count(&n).Error
	return n > 0, err
}
