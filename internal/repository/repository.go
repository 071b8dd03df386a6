package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/zzeleznick/saaskit/internal/kv"
)

// getManyChunked resolves keys through the store's bounded multi-get,
// batching in groups of kv.MaxBatch and concatenating results in input order.
func getManyChunked(ctx context.Context, store kv.Store, keys []string) ([]kv.Lookup, error) {
	lookups := make([]kv.Lookup, 0, len(keys))
	for len(keys) > 0 {
		batch := keys
		if len(batch) > kv.MaxBatch {
			batch = batch[:kv.MaxBatch]
		}
		keys = keys[len(batch):]

		result, err := store.GetMany(ctx, batch)
		if err != nil {
			return nil, err
		}
		lookups = append(lookups, result...)
	}
	return lookups, nil
}

func decodeRecord[T any](entry kv.Entry) (*T, error) {
	var record T
	if err := json.Unmarshal(entry.Value, &record); err != nil {
		return nil, fmt.Errorf("decode record at %q: %w", entry.Key, err)
	}
	return &record, nil
}

func encodeRecord(record any) ([]byte, error) {
	value, err := json.Marshal(record)
	if err != nil {
		return nil, fmt.Errorf("encode record: %w", err)
	}
	return value, nil
}
