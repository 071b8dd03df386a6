// Package rank computes the normalized time-decay ranking score and its
// lexicographically sortable key encoding.
package rank

import (
	"math"
	"strings"
	"time"
)

const (
	// KeyDigits is the fixed width of an encoded rank key.
	KeyDigits = 18

	msPerDay = 86_400_000

	// minAgeDays floors the item age so just-created items do not blow up
	// the decay term.
	minAgeDays = 0.01

	minScore = 0.1
	maxScore = 1.0

	recencyWeight = 0.2
	votesWeight   = 0.8
)

// Score blends a slow recency-decay curve with a vote-count saturation term
// into a value clamped to [0.1, 1.0]. Zero votes pin the score to the 0.5
// midpoint regardless of age.
func Score(votes int64, createdAt, now time.Time) float64 {
	if votes == 0 {
		return 0.5
	}

	ageDays := float64(now.Sub(createdAt).Milliseconds()) / msPerDay
	ageDays = math.Max(minAgeDays, ageDays)

	// Double-nested square root: the curve flattens out for old items
	// instead of burying them.
	recency := math.Exp2(-math.Sqrt(math.Sqrt(1 + ageDays)))

	// Approaches 1 as votes grow, 0.5 as votes -> 0 from above.
	saturation := (1 + math.Log1p(float64(votes))) / (2 + math.Log1p(float64(votes)))

	blended := recencyWeight*recency + votesWeight*saturation
	return math.Min(maxScore, math.Max(minScore, blended))
}

// Key renders score as the KeyDigits fractional decimal digits of its
// fixed-point form, zero-padded, with the leading "0." stripped. Plain string
// comparison of keys orders the same way as the underlying scores.
//
// Digits are truncated, not rounded, so no value below 1.0 can round up into
// the slot reserved for 1.0 itself: the clamped maximum maps to all nines and
// always sorts last.
func Key(score float64) string {
	score = math.Min(maxScore, math.Max(minScore, score))
	if score >= maxScore {
		return strings.Repeat("9", KeyDigits)
	}

	scaled := uint64(score * 1e18)
	digits := make([]byte, KeyDigits)
	for i := KeyDigits - 1; i >= 0; i-- {
		digits[i] = '0' + byte(scaled%10)
		scaled /= 10
	}
	return string(digits)
}

// ItemKey is the composed form used by the reporting tools.
func ItemKey(votes int64, createdAt, now time.Time) string {
	return Key(Score(votes, createdAt, now))
}
