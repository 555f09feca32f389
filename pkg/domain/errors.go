package domain

import (
	"errors"
	"fmt"
)

// ValidationError reports malformed or missing submission input. Nothing is
// persisted; the caller may correct the field and resubmit.
type ValidationError struct {
	Field  string
	Reason string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// IsValidation reports whether err is a ValidationError.
func IsValidation(err error) bool {
	var ve ValidationError
	return errors.As(err, &ve)
}

// StoreUnavailableError reports a transport or IO failure reaching the request
// store. Nothing was written; the attempted action must be retried manually.
type StoreUnavailableError struct {
	Op  string
	Err error
}

func (e StoreUnavailableError) Error() string {
	return fmt.Sprintf("request store unavailable during %s: %v", e.Op, e.Err)
}

func (e StoreUnavailableError) Unwrap() error { return e.Err }

// IsStoreUnavailable reports whether err is a StoreUnavailableError.
func IsStoreUnavailable(err error) bool {
	var se StoreUnavailableError
	return errors.As(err, &se)
}

// VersionConflictError reports that another writer updated the store between
// load and save. Handled internally by the sync coordinator's bounded retry.
type VersionConflictError struct {
	Expected VersionToken
	Current  VersionToken
}

func (e VersionConflictError) Error() string {
	return fmt.Sprintf("version conflict: expected %q, store at %q", e.Expected, e.Current)
}

// IsVersionConflict reports whether err is a VersionConflictError.
func IsVersionConflict(err error) bool {
	var ce VersionConflictError
	return errors.As(err, &ce)
}

// SyncFailedError reports that a mutation was not applied: either the store
// was unreachable or the conflict retry budget was exhausted. The guarantee in
// both cases is that nothing was written; the caller must retry explicitly.
type SyncFailedError struct {
	Op       string
	Attempts int
	Err      error
}

func (e SyncFailedError) Error() string {
	return fmt.Sprintf("%s not applied after %d attempt(s): %v", e.Op, e.Attempts, e.Err)
}

func (e SyncFailedError) Unwrap() error { return e.Err }

// IsSyncFailed reports whether err is a SyncFailedError.
func IsSyncFailed(err error) bool {
	var se SyncFailedError
	return errors.As(err, &se)
}

// NotFoundError reports that no record with the given identifier exists in the
// loaded snapshot.
type NotFoundError struct {
	ID string
}

func (e NotFoundError) Error() string {
	return fmt.Sprintf("request %q not found", e.ID)
}

// IsNotFound reports whether err is a NotFoundError.
func IsNotFound(err error) bool {
	var ne NotFoundError
	return errors.As(err, &ne)
}
