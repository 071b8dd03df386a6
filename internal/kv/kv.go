// Package kv defines the transactional key-value store contract the
// repositories are built on, plus the bolt and redis drivers implementing it.
//
// Every stored key carries an opaque version token that changes on each write.
// The only coordination primitive is the atomic check-then-write transaction:
// a set of version checks plus writes/deletes that commit together or not at
// all. A check against Absent asserts the key does not exist.
package kv

import (
	"context"
	"errors"
)

// MaxBatch is the largest number of keys a single GetMany call accepts.
const MaxBatch = 10

var (
	// ErrConflict is returned by Commit when any version check failed.
	// Nothing was written.
	ErrConflict = errors.New("kv: commit conflict")

	// ErrBatchTooLarge is returned by GetMany for more than MaxBatch keys.
	ErrBatchTooLarge = errors.New("kv: batch exceeds max size")
)

// Version is an opaque per-key revision token. A fresh write always yields a
// new token. The zero value means "key absent".
type Version uint64

// Absent asserts in a Check that the key does not exist.
const Absent Version = 0

// Entry is a stored key with its value and current version token.
type Entry struct {
	Key     string
	Value   []byte
	Version Version
}

// Lookup is one GetMany result, aligned with the input key slice.
type Lookup struct {
	Entry
	Found bool
}

// Page controls list pagination. A zero Cursor starts from the beginning;
// Limit <= 0 uses the driver default.
type Page struct {
	Limit  int
	Cursor string
}

// DefaultPageLimit applies when Page.Limit is not positive.
const DefaultPageLimit = 100

// Consistency selects the read path for Get.
type Consistency int

const (
	// ReadStrong returns the latest committed value.
	ReadStrong Consistency = iota
	// ReadRelaxed permits a slightly stale value in exchange for latency.
	// Drivers treat this as a hint; embedded drivers read strongly anyway.
	ReadRelaxed
)

// ReadOption configures a single Get call.
type ReadOption func(*ReadOptions)

// ReadOptions holds resolved read settings for drivers.
type ReadOptions struct {
	Consistency Consistency
}

// WithRelaxedConsistency marks the read as tolerant of staleness.
func WithRelaxedConsistency() ReadOption {
	return func(o *ReadOptions) { o.Consistency = ReadRelaxed }
}

// ResolveReadOptions folds options into a ReadOptions for driver use.
func ResolveReadOptions(opts []ReadOption) ReadOptions {
	var resolved ReadOptions
	for _, opt := range opts {
		opt(&resolved)
	}
	return resolved
}

// Store is the transactional key-value store. Implementations are safe for
// concurrent use. Construct one explicitly and Close it on shutdown; there is
// no process-global handle.
type Store interface {
	// Get returns the entry for key, reporting whether it exists.
	Get(ctx context.Context, key string, opts ...ReadOption) (Entry, bool, error)

	// GetMany returns lookups aligned with keys (len(keys) <= MaxBatch).
	GetMany(ctx context.Context, keys []string) ([]Lookup, error)

	// List returns entries whose key starts with prefix, in key order,
	// plus a cursor to resume from ("" once exhausted).
	List(ctx context.Context, prefix string, page Page) ([]Entry, string, error)

	// Atomic starts building a check-then-write transaction.
	Atomic() Atomic

	Close() error
}

// Atomic accumulates checks and writes for one transaction. Builders are for
// single-goroutine use; Commit evaluates every check against the current
// state and applies every write only if all checks pass.
type Atomic interface {
	Check(key string, version Version) Atomic
	Set(key string, value []byte) Atomic
	Delete(key string) Atomic

	// Commit returns ErrConflict if any check failed; no partial effect.
	Commit(ctx context.Context) error
}

// op is a single buffered mutation shared by the drivers.
type op struct {
	kind  opKind
	key   string
	value []byte
}

type opKind int

const (
	opSet opKind = iota
	opDelete
)

// check is a buffered version assertion shared by the drivers.
type check struct {
	key     string
	version Version
}
