package kv

import (
	"encoding/base64"
	"fmt"
)

// Cursors are the last returned key, base64-wrapped so callers treat them as
// opaque. Both drivers resume strictly after the decoded key.

func encodeCursor(lastKey string) string {
	return base64.RawURLEncoding.EncodeToString([]byte(lastKey))
}

func decodeCursor(cursor string) (string, error) {
	raw, err := base64.RawURLEncoding.DecodeString(cursor)
	if err != nil {
		return "", fmt.Errorf("invalid list cursor: %w", err)
	}
	return string(raw), nil
}

func pageLimit(page Page) int {
	if page.Limit <= 0 {
		return DefaultPageLimit
	}
	return page.Limit
}
