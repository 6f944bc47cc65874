package sync

import (
	"errors"
	"fmt"
)

// SyncErrorCode categorizes replication errors.
type SyncErrorCode string

const (
	// ErrCodeWriteRejected indicates the remote store refused a write
	// (permissions) and no fallback workspace absorbed it.
	ErrCodeWriteRejected SyncErrorCode = "WRITE_REJECTED"

	// ErrCodeBadSnapshot indicates an inbound snapshot did not decode.
	ErrCodeBadSnapshot SyncErrorCode = "BAD_SNAPSHOT"

	// ErrCodeCacheFailed indicates the local durable cache could not
	// persist state. Unlike remote failures this is not buffered away;
	// it surfaces to the caller.
	ErrCodeCacheFailed SyncErrorCode = "CACHE_FAILED"
)

// SyncError is an error detected on the replication path. It carries
// structured fields so callers can react per category.
type SyncError struct {
	Code     SyncErrorCode
	Category Category
	Path     string
	Message  string
	Err      error
}

func (e *SyncError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("%s: %s (category=%s, path=%s)", e.Code, e.Message, e.Category, e.Path)
	}
	return fmt.Sprintf("%s: %s (category=%s)", e.Code, e.Message, e.Category)
}

func (e *SyncError) Unwrap() error {
	return e.Err
}

// IsWriteRejected reports whether err is a rejected-write error.
// Uses errors.As to handle wrapped errors.
func IsWriteRejected(err error) bool {
	var se *SyncError
	return errors.As(err, &se) && se.Code == ErrCodeWriteRejected
}

// IsBadSnapshot reports whether err is an undecodable-snapshot error.
func IsBadSnapshot(err error) bool {
	var se *SyncError
	return errors.As(err, &se) && se.Code == ErrCodeBadSnapshot
}

func newCacheError(cat Category, err error) *SyncError {
	return &SyncError{
		Code:     ErrCodeCacheFailed,
		Category: cat,
		Message:  "local cache write failed",
		Err:      err,
	}
}

func newSnapshotError(cat Category, err error) *SyncError {
	return &SyncError{
		Code:     ErrCodeBadSnapshot,
		Category: cat,
		Message:  "snapshot did not decode",
		Err:      err,
	}
}
