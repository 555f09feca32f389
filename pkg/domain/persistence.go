package domain

import "context"

// VersionToken is an opaque value identifying a specific revision of the
// request store, used for conflict detection on conditional writes.
type VersionToken string

// NoVersion is the token of a store that has never been written.
const NoVersion VersionToken = ""

// SnapshotStore is the durable collection of request records. Implementations
// persist the sequence as a flat snapshot under a load-modify-save discipline:
// Save always replaces the full sequence and is the only mutating operation.
//
// LoadAll returns a StoreUnavailableError when the resource cannot be read.
// Save returns a VersionConflictError when expected no longer matches the
// resource's current version, and a StoreUnavailableError on transport
// failure. A failed Save never alters the stored content.
type SnapshotStore interface {
	LoadAll(ctx context.Context) ([]RequestRecord, VersionToken, error)
	Save(ctx context.Context, records []RequestRecord, expected VersionToken) (VersionToken, error)
}
