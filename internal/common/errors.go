// Package common defines shared sentinel and typed errors used across
// campaignstore layers. Callers should use errors.Is for sentinels and
// errors.As for the typed values.
package common

import (
	"errors"
	"fmt"
	"time"
)

var (
	// Repository-level errors.
	ErrNotFound = errors.New("not found")

	// Save-path errors.
	ErrDuplicateName = errors.New("campaign name already in use")
	ErrAccessDenied  = errors.New("access denied")

	// Auth errors (invalid or malformed token).
	ErrInvalidToken = errors.New("invalid token")
)

// ConflictError reports that the stored campaign is newer than the version
// the caller last observed and was written by a different actor. The caller
// is expected to reload and reapply its changes.
type ConflictError struct {
	UpdatedBy string
	UpdatedAt time.Time
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("save conflict: campaign updated by %s at %s", e.UpdatedBy, e.UpdatedAt.Format(time.RFC3339))
}

// UploadError reports a failed inline-payload upload. It aborts the whole
// save before any subtree mutation, so the previously persisted tree is
// left untouched.
type UploadError struct {
	Key string
	Err error
}

func (e *UploadError) Error() string {
	return fmt.Sprintf("upload %s: %v", e.Key, e.Err)
}

func (e *UploadError) Unwrap() error {
	return e.Err
}
