/*
store.go - Persistence interface and errors for action items

The store is shared mutable state; implementations must be safe for a
single tracker doing read-modify-write cycles and should write
atomically (temp file + rename, or a real database transaction) so
concurrent readers never observe a partial file.
*/
package tasks

import (
	"context"
	"errors"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrNotFound is returned when the target action item id does not exist.
	ErrNotFound = errors.New("action item not found")

	// ErrInvalidStatus is returned for a status outside {OPEN, RESOLVED}.
	// Rejected before any store access - no partial writes on failure.
	ErrInvalidStatus = errors.New("invalid action item status")

	// ErrAlreadyResolved is returned on an attempt to reopen a resolved
	// item. RESOLVED is terminal.
	ErrAlreadyResolved = errors.New("action item already resolved")

	// ErrStoreCorrupted is returned when the backing store exists but
	// cannot be decoded. Fatal: the tracker must never silently reset
	// the store to empty.
	ErrStoreCorrupted = errors.New("action item store corrupted")
)

// IsClientError reports whether the error is the caller's fault rather
// than a storage failure.
func IsClientError(err error) bool {
	return errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrInvalidStatus) ||
		errors.Is(err, ErrAlreadyResolved)
}

// =============================================================================
// STORE
// =============================================================================

// Store persists action items. A missing or empty backing store reads as
// empty; a corrupted one surfaces ErrStoreCorrupted.
type Store interface {
	// LoadAll returns every item, oldest first.
	LoadAll(ctx context.Context) ([]ActionItem, error)

	// Get returns the item with the given id.
	Get(ctx context.Context, id string) (ActionItem, bool, error)

	// Append persists a new item.
	Append(ctx context.Context, item ActionItem) error

	// UpdateStatus sets the status of the item with the given id,
	// reporting whether it was found. Not-found performs no write.
	UpdateStatus(ctx context.Context, id string, status Status) (bool, error)

	// Delete removes the item permanently, reporting whether it existed.
	Delete(ctx context.Context, id string) (bool, error)
}
