package rank

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

func TestScore_ZeroVotesIsMidpoint(t *testing.T) {
	for _, age := range []time.Duration{0, time.Minute, 24 * time.Hour, 365 * 24 * time.Hour} {
		assert.Equal(t, 0.5, Score(0, now.Add(-age), now), "age %v", age)
	}
}

func TestKey_MidpointEncoding(t *testing.T) {
	want := "5" + strings.Repeat("0", 17)
	assert.Equal(t, want, Key(Score(0, now.Add(-time.Hour), now)))
}

func TestScore_MonotonicInVotes(t *testing.T) {
	createdAt := now.Add(-48 * time.Hour)

	prev := Score(0, createdAt, now)
	for votes := int64(1); votes <= 1_000_000; votes *= 10 {
		score := Score(votes, createdAt, now)
		require.GreaterOrEqual(t, score, prev, "votes %d", votes)
		prev = score
	}
}

func TestScore_NewerBeatsOlderAtEqualVotes(t *testing.T) {
	ages := []time.Duration{
		time.Minute,
		time.Hour,
		24 * time.Hour,
		7 * 24 * time.Hour,
		90 * 24 * time.Hour,
		3650 * 24 * time.Hour,
	}

	for _, votes := range []int64{1, 10, 500} {
		prev := 2.0
		for _, age := range ages {
			score := Score(votes, now.Add(-age), now)
			require.LessOrEqual(t, score, prev, "votes %d age %v", votes, age)
			prev = score
		}
	}
}

func TestScore_ClampedRange(t *testing.T) {
	cases := []struct {
		votes int64
		age   time.Duration
	}{
		{1, time.Second},
		{1, 100 * 365 * 24 * time.Hour},
		{1 << 40, time.Second},
		{1 << 40, 100 * 365 * 24 * time.Hour},
	}
	for _, tc := range cases {
		score := Score(tc.votes, now.Add(-tc.age), now)
		assert.GreaterOrEqual(t, score, 0.1)
		assert.LessOrEqual(t, score, 1.0)
	}
}

func TestScore_FutureCreatedAtFlooredNotBlownUp(t *testing.T) {
	// Clock skew can put createdAt after now; the age floor keeps the
	// decay term finite.
	score := Score(3, now.Add(time.Hour), now)
	assert.GreaterOrEqual(t, score, 0.1)
	assert.LessOrEqual(t, score, 1.0)
}

func TestKey_FixedWidth(t *testing.T) {
	for _, votes := range []int64{0, 1, 42, 1 << 30} {
		key := Key(Score(votes, now.Add(-time.Hour), now))
		assert.Len(t, key, KeyDigits)
	}
}

func TestKey_MaxSortsLast(t *testing.T) {
	max := Key(1.0)
	assert.Equal(t, strings.Repeat("9", KeyDigits), max)

	for _, score := range []float64{0.1, 0.5, 0.9, 0.9999999} {
		assert.Less(t, Key(score), max, "score %v", score)
	}
}

func TestKey_StringOrderMatchesScoreOrder(t *testing.T) {
	scores := []float64{0.1, 0.1000001, 0.25, 0.5, 0.500000001, 0.73, 0.9, 0.99999, 1.0}

	for i := 1; i < len(scores); i++ {
		a, b := Key(scores[i-1]), Key(scores[i])
		require.True(t, a < b, "Key(%v)=%s must sort before Key(%v)=%s",
			scores[i-1], a, scores[i], b)
	}
}

func TestKey_ClampsOutOfRangeInput(t *testing.T) {
	assert.Equal(t, Key(0.1), Key(0.05))
	assert.Equal(t, Key(1.0), Key(1.5))
}
