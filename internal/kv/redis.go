package kv

import (
	"context"
	"fmt"
	"strconv"

	goredis "github.com/redis/go-redis/v9"

	"github.com/zzeleznick/saaskit/internal/metrics"
)

const (
	redisHashPrefix = "saaskit:k:"
	redisIndexKey   = "saaskit:keys"
	redisSeqKey     = "saaskit:seq"

	fieldValue   = "val"
	fieldVersion = "ver"
)

// commitScript runs one check-then-write transaction server-side. The Go side
// always emits checks before mutations, so every check is evaluated against
// the state as of the start of the script. Version tokens come from a global
// counter so a rewritten key never repeats a token.
//
// KEYS: [1]=version counter, [2]=key index zset.
// ARGV: flat op list, 4 slots each: kind("c"|"s"|"d"), key, version, value.
// Returns 1 on commit, 0 on conflict (nothing written).
var commitScript = goredis.NewScript(`
local i = 1
while i <= #ARGV do
	local kind, key, ver, val = ARGV[i], ARGV[i+1], ARGV[i+2], ARGV[i+3]
	local hash = 'saaskit:k:' .. key
	if kind == 'c' then
		local cur = redis.call('HGET', hash, 'ver')
		if not cur then cur = '0' end
		if cur ~= ver then return 0 end
	elseif kind == 's' then
		local next = redis.call('INCR', KEYS[1])
		redis.call('HSET', hash, 'val', val, 'ver', tostring(next))
		redis.call('ZADD', KEYS[2], 0, key)
	elseif kind == 'd' then
		redis.call('DEL', hash)
		redis.call('ZREM', KEYS[2], key)
	end
	i = i + 4
end
return 1
`)

// RedisStore is the networked driver. Each logical key lives in a hash
// carrying its value and version token; key order for List comes from a
// lexicographic zset maintained alongside every write.
type RedisStore struct {
	rdb *goredis.Client
}

var _ Store = (*RedisStore)(nil)

// OpenRedis connects to the store at redisURL (e.g. "redis://localhost:6379").
func OpenRedis(redisURL string) (*RedisStore, error) {
	opts, err := goredis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis URL: %w", err)
	}
	return &RedisStore{rdb: goredis.NewClient(opts)}, nil
}

// Ping verifies the connection.
func (s *RedisStore) Ping(ctx context.Context) error {
	return s.rdb.Ping(ctx).Err()
}

func (s *RedisStore) Close() error {
	return s.rdb.Close()
}

func (s *RedisStore) Get(ctx context.Context, key string, opts ...ReadOption) (Entry, bool, error) {
	// Relaxed reads are a hint; against a single primary they share the
	// strong path.
	_ = ResolveReadOptions(opts)

	vals, err := s.rdb.HMGet(ctx, redisHashPrefix+key, fieldValue, fieldVersion).Result()
	metrics.ObserveStoreOp("get", err)
	if err != nil {
		return Entry{}, false, fmt.Errorf("get %q: %w", key, err)
	}
	return entryFromHash(key, vals)
}

func (s *RedisStore) GetMany(ctx context.Context, keys []string) ([]Lookup, error) {
	if len(keys) > MaxBatch {
		return nil, ErrBatchTooLarge
	}

	pipe := s.rdb.Pipeline()
	cmds := make([]*goredis.SliceCmd, len(keys))
	for i, key := range keys {
		cmds[i] = pipe.HMGet(ctx, redisHashPrefix+key, fieldValue, fieldVersion)
	}
	_, err := pipe.Exec(ctx)
	metrics.ObserveStoreOp("get_many", err)
	if err != nil {
		return nil, fmt.Errorf("get many: %w", err)
	}

	lookups := make([]Lookup, len(keys))
	for i, cmd := range cmds {
		entry, found, err := entryFromHash(keys[i], cmd.Val())
		if err != nil {
			return nil, err
		}
		lookups[i] = Lookup{Entry: entry, Found: found}
	}
	return lookups, nil
}

func (s *RedisStore) List(ctx context.Context, prefix string, page Page) ([]Entry, string, error) {
	min, max := "["+prefix, prefixUpperBound(prefix)
	if prefix == "" {
		min = "-"
	}
	if page.Cursor != "" {
		after, err := decodeCursor(page.Cursor)
		if err != nil {
			return nil, "", err
		}
		min = "(" + after
	}
	limit := pageLimit(page)

	// Fetch one extra key to learn whether another page exists.
	keys, err := s.rdb.ZRangeByLex(ctx, redisIndexKey, &goredis.ZRangeBy{
		Min:   min,
		Max:   max,
		Count: int64(limit + 1),
	}).Result()
	metrics.ObserveStoreOp("list", err)
	if err != nil {
		return nil, "", fmt.Errorf("list %q: %w", prefix, err)
	}

	more := len(keys) > limit
	if more {
		keys = keys[:limit]
	}

	entries := make([]Entry, 0, len(keys))
	for _, key := range keys {
		vals, err := s.rdb.HMGet(ctx, redisHashPrefix+key, fieldValue, fieldVersion).Result()
		if err != nil {
			return nil, "", fmt.Errorf("list %q: %w", prefix, err)
		}
		entry, found, err := entryFromHash(key, vals)
		if err != nil {
			return nil, "", err
		}
		if !found {
			// Key deleted between the index read and the hash read.
			continue
		}
		entries = append(entries, entry)
	}

	if !more || len(keys) == 0 {
		return entries, "", nil
	}
	return entries, encodeCursor(keys[len(keys)-1]), nil
}

func (s *RedisStore) Atomic() Atomic {
	return &redisAtomic{store: s}
}

type redisAtomic struct {
	store  *RedisStore
	checks []check
	ops    []op
}

func (a *redisAtomic) Check(key string, version Version) Atomic {
	a.checks = append(a.checks, check{key: key, version: version})
	return a
}

func (a *redisAtomic) Set(key string, value []byte) Atomic {
	a.ops = append(a.ops, op{kind: opSet, key: key, value: value})
	return a
}

func (a *redisAtomic) Delete(key string) Atomic {
	a.ops = append(a.ops, op{kind: opDelete, key: key})
	return a
}

func (a *redisAtomic) Commit(ctx context.Context) error {
	argv := make([]any, 0, 4*(len(a.checks)+len(a.ops)))
	for _, c := range a.checks {
		argv = append(argv, "c", c.key, strconv.FormatUint(uint64(c.version), 10), "")
	}
	for _, o := range a.ops {
		switch o.kind {
		case opSet:
			argv = append(argv, "s", o.key, "", string(o.value))
		case opDelete:
			argv = append(argv, "d", o.key, "", "")
		}
	}

	result, err := commitScript.Run(ctx, a.store.rdb, []string{redisSeqKey, redisIndexKey}, argv...).Int()
	if err != nil {
		metrics.ObserveStoreCommit(metrics.CommitError)
		return fmt.Errorf("commit: %w", err)
	}
	if result == 0 {
		metrics.ObserveStoreCommit(metrics.CommitConflict)
		return ErrConflict
	}
	metrics.ObserveStoreCommit(metrics.CommitOK)
	return nil
}

// prefixUpperBound returns the exclusive lex bound covering every key that
// starts with prefix: the prefix with its last incrementable byte bumped,
// trailing 0xff bytes dropped. A prefix with no successor (empty, or all
// 0xff) is unbounded.
func prefixUpperBound(prefix string) string {
	b := []byte(prefix)
	for i := len(b) - 1; i >= 0; i-- {
		if b[i] < 0xff {
			b[i]++
			return "(" + string(b[:i+1])
		}
	}
	return "+"
}

func entryFromHash(key string, vals []any) (Entry, bool, error) {
	if len(vals) != 2 || vals[0] == nil || vals[1] == nil {
		return Entry{}, false, nil
	}
	value, ok := vals[0].(string)
	if !ok {
		return Entry{}, false, fmt.Errorf("get %q: unexpected value type %T", key, vals[0])
	}
	rawVersion, ok := vals[1].(string)
	if !ok {
		return Entry{}, false, fmt.Errorf("get %q: unexpected version type %T", key, vals[1])
	}
	version, err := strconv.ParseUint(rawVersion, 10, 64)
	if err != nil {
		return Entry{}, false, fmt.Errorf("get %q: corrupt version token: %w", key, err)
	}
	return Entry{Key: key, Value: []byte(value), Version: Version(version)}, true, nil
}
