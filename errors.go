package vitalsync

import (
	"errors"
	"fmt"
)

// Common errors returned by the vitalsync client.
var (
	// ErrSyncInProgress is returned when an upload is rejected by the
	// engine's single-flight guard.
	ErrSyncInProgress = errors.New("sync already in progress")

	// ErrRemoteUnavailable is returned when the remote document store
	// cannot be reached or answers with a transport-level failure.
	ErrRemoteUnavailable = errors.New("remote store unavailable")

	// ErrPermissionDenied is returned when the remote store rejects the
	// operation. Retrying with the same credentials will not help.
	ErrPermissionDenied = errors.New("remote store permission denied")

	// ErrNotFound is returned when a document or local record is absent.
	ErrNotFound = errors.New("record not found")

	// ErrStoreClosed is returned when operating on a closed store.
	ErrStoreClosed = errors.New("store is closed")

	// ErrOffline is returned when a remote operation is attempted without
	// a configured remote store.
	ErrOffline = errors.New("operation unavailable in offline mode")

	// ErrInvalidDate is returned when a calendar date is not YYYY-MM-DD.
	ErrInvalidDate = errors.New("invalid calendar date")

	// ErrEmptyUserID is returned when an operation is missing its user.
	ErrEmptyUserID = errors.New("user id cannot be empty")

	// ErrEmptyReading is returned when a reading carries no measurement.
	ErrEmptyReading = errors.New("reading has no measurements")

	// ErrReadingOutOfRange is returned when a measurement is outside
	// physiological plausibility bounds.
	ErrReadingOutOfRange = errors.New("reading outside plausible range")
)

// ValidationError is returned when configuration validation fails.
// Extractable via errors.As().
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("config: %s: %s", e.Field, e.Message)
}

// SyncError is returned when a remote operation fails with details.
// Extractable via errors.As(). Supports Unwrap(), so errors.Is sees the
// underlying sentinel (ErrRemoteUnavailable, ErrPermissionDenied, ...).
type SyncError struct {
	Operation  string
	StatusCode int
	Err        error
}

func (e *SyncError) Error() string {
	return fmt.Sprintf("sync: %s failed (status %d): %v", e.Operation, e.StatusCode, e.Err)
}

func (e *SyncError) Unwrap() error { return e.Err }
