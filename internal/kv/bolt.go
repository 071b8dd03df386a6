package kv

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"strings"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/zzeleznick/saaskit/internal/metrics"
)

var boltBucket = []byte("kv")

// versionPrefixLen is the number of bytes each stored value is prefixed with
// to carry the key's version token.
const versionPrefixLen = 8

// BoltStore is the embedded driver, backed by a single bbolt bucket. Version
// tokens are issued from the bucket sequence, so every write in the store gets
// a distinct, monotonically increasing token.
type BoltStore struct {
	db *bolt.DB
}

var _ Store = (*BoltStore)(nil)

// OpenBolt opens (or creates) the database file at path.
func OpenBolt(path string) (*BoltStore, error) {
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("open bolt database: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(boltBucket)
		return err
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create kv bucket: %w", err)
	}

	return &BoltStore{db: db}, nil
}

// Close releases the underlying database file.
func (s *BoltStore) Close() error {
	return s.db.Close()
}

func (s *BoltStore) Get(ctx context.Context, key string, opts ...ReadOption) (Entry, bool, error) {
	// The resolved options are accepted for contract compatibility; an
	// embedded store has no relaxed read path.
	_ = ResolveReadOptions(opts)

	if err := ctx.Err(); err != nil {
		return Entry{}, false, err
	}

	var (
		entry Entry
		found bool
	)
	err := s.db.View(func(tx *bolt.Tx) error {
		entry, found = readEntry(tx.Bucket(boltBucket), key)
		return nil
	})
	metrics.ObserveStoreOp("get", err)
	if err != nil {
		return Entry{}, false, fmt.Errorf("get %q: %w", key, err)
	}
	return entry, found, nil
}

func (s *BoltStore) GetMany(ctx context.Context, keys []string) ([]Lookup, error) {
	if len(keys) > MaxBatch {
		return nil, ErrBatchTooLarge
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	lookups := make([]Lookup, len(keys))
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(boltBucket)
		for i, key := range keys {
			entry, found := readEntry(b, key)
			lookups[i] = Lookup{Entry: entry, Found: found}
		}
		return nil
	})
	metrics.ObserveStoreOp("get_many", err)
	if err != nil {
		return nil, fmt.Errorf("get many: %w", err)
	}
	return lookups, nil
}

func (s *BoltStore) List(ctx context.Context, prefix string, page Page) ([]Entry, string, error) {
	if err := ctx.Err(); err != nil {
		return nil, "", err
	}

	start := prefix
	if page.Cursor != "" {
		after, err := decodeCursor(page.Cursor)
		if err != nil {
			return nil, "", err
		}
		// Resume strictly after the cursor key. Appending a zero byte
		// seeks to the next possible key.
		start = after + "\x00"
	}
	limit := pageLimit(page)

	var (
		entries []Entry
		more    bool
	)
	err := s.db.View(func(tx *bolt.Tx) error {
		c := tx.Bucket(boltBucket).Cursor()
		for k, v := c.Seek([]byte(start)); k != nil; k, v = c.Next() {
			key := string(k)
			if !strings.HasPrefix(key, prefix) {
				return nil
			}
			if len(entries) == limit {
				more = true
				return nil
			}
			version, value := splitVersioned(v)
			entries = append(entries, Entry{Key: key, Value: value, Version: version})
		}
		return nil
	})
	metrics.ObserveStoreOp("list", err)
	if err != nil {
		return nil, "", fmt.Errorf("list %q: %w", prefix, err)
	}

	if !more {
		return entries, "", nil
	}
	return entries, encodeCursor(entries[len(entries)-1].Key), nil
}

func (s *BoltStore) Atomic() Atomic {
	return &boltAtomic{store: s}
}

type boltAtomic struct {
	store  *BoltStore
	checks []check
	ops    []op
}

func (a *boltAtomic) Check(key string, version Version) Atomic {
	a.checks = append(a.checks, check{key: key, version: version})
	return a
}

func (a *boltAtomic) Set(key string, value []byte) Atomic {
	a.ops = append(a.ops, op{kind: opSet, key: key, value: value})
	return a
}

func (a *boltAtomic) Delete(key string) Atomic {
	a.ops = append(a.ops, op{kind: opDelete, key: key})
	return a
}

func (a *boltAtomic) Commit(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	err := a.store.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(boltBucket)

		for _, c := range a.checks {
			entry, found := readEntry(b, c.key)
			current := Absent
			if found {
				current = entry.Version
			}
			if current != c.version {
				return ErrConflict
			}
		}

		for _, o := range a.ops {
			switch o.kind {
			case opSet:
				seq, err := b.NextSequence()
				if err != nil {
					return fmt.Errorf("next version: %w", err)
				}
				if err := b.Put([]byte(o.key), versioned(Version(seq), o.value)); err != nil {
					return fmt.Errorf("put %q: %w", o.key, err)
				}
			case opDelete:
				if err := b.Delete([]byte(o.key)); err != nil {
					return fmt.Errorf("delete %q: %w", o.key, err)
				}
			}
		}
		return nil
	})
	switch {
	case err == nil:
		metrics.ObserveStoreCommit(metrics.CommitOK)
		return nil
	case errors.Is(err, ErrConflict):
		metrics.ObserveStoreCommit(metrics.CommitConflict)
		return err
	default:
		metrics.ObserveStoreCommit(metrics.CommitError)
		return fmt.Errorf("commit: %w", err)
	}
}

func readEntry(b *bolt.Bucket, key string) (Entry, bool) {
	raw := b.Get([]byte(key))
	if raw == nil {
		return Entry{}, false
	}
	version, value := splitVersioned(raw)
	return Entry{Key: key, Value: value, Version: version}, true
}

func versioned(version Version, value []byte) []byte {
	buf := make([]byte, versionPrefixLen+len(value))
	binary.BigEndian.PutUint64(buf, uint64(version))
	copy(buf[versionPrefixLen:], value)
	return buf
}

func splitVersioned(raw []byte) (Version, []byte) {
	version := Version(binary.BigEndian.Uint64(raw[:versionPrefixLen]))
	// Copy out of the bolt mmap; the slice is invalid after the txn ends.
	value := make([]byte, len(raw)-versionPrefixLen)
	copy(value, raw[versionPrefixLen:])
	return version, value
}
