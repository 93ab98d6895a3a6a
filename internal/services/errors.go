// Package services defines the business logic of the moderation bot: the
// verification gate and the policy operations behind the admin surface.
// This file centralizes common service-level error values so that they can be
// consistently returned by service methods and checked by callers.
//
// These errors are intended for internal use by the service layer; translation
// into user-facing notices is performed at the dispatcher/admin layer. None of
// them is fatal: every one maps to a visible reply or a silent acknowledgment.
package services

import "errors"

var (
	// ErrSettingsNotFound indicates a toggle was attempted for a group that
	// has no settings row yet. In the intended call order (settings are
	// lazily created on first read) this cannot happen; it is surfaced as a
	// "not found" notice rather than treated as a bug.
	ErrSettingsNotFound = errors.New("group settings not found")

	// ErrEmptyWord is returned when an added banned word is empty after
	// trimming. Surfaced as a correction request to the admin.
	ErrEmptyWord = errors.New("banned word is empty")

	// ErrDuplicateWord is returned when the normalized word already exists
	// for the group. Surfaced as an informational reply, not an error.
	ErrDuplicateWord = errors.New("banned word already exists")
)
