package glicko

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var epoch0 = time.Date(2024, 3, 1, 18, 0, 0, 0, time.UTC)

func testMatch(id, a, b int64, scoreA, scoreB, pingA, pingB int, at time.Duration) Match {
	return Match{
		ID: id, PlayerA: a, PlayerB: b,
		ScoreA: scoreA, ScoreB: scoreB,
		PingA: pingA, PingB: pingB,
		RatingA: 1500, RatingB: 1600,
		DeviationA: 200, DeviationB: 80,
		VolatilityA: 0.06, VolatilityB: 0.06,
		Epoch: epoch0.Add(at),
	}
}

func TestViewedFrom(t *testing.T) {
	m := testMatch(1, 7, 9, 10, 5, 40, 90, 0)

	same := m.ViewedFrom(7)
	assert.Equal(t, m, same)

	flipped := m.ViewedFrom(9)
	assert.Equal(t, int64(9), flipped.PlayerA)
	assert.Equal(t, int64(7), flipped.PlayerB)
	assert.Equal(t, 5, flipped.ScoreA)
	assert.Equal(t, 10, flipped.ScoreB)
	assert.Equal(t, 90, flipped.PingA)
	assert.Equal(t, 40, flipped.PingB)
	assert.Equal(t, 1600.0, flipped.RatingA)
	assert.Equal(t, 80.0, flipped.DeviationA)
	assert.Equal(t, m.Epoch, flipped.Epoch)

	// input untouched
	assert.Equal(t, int64(7), m.PlayerA)
	assert.Equal(t, 10, m.ScoreA)
}

func TestActualScore(t *testing.T) {
	assert.Equal(t, 1.0, testMatch(1, 1, 2, 22, 0, 0, 0, 0).ActualScore())
	assert.Equal(t, 0.6, testMatch(1, 1, 2, 18, 12, 0, 0, 0).ActualScore())
	assert.True(t, math.IsNaN(testMatch(1, 1, 2, 0, 0, 0, 0, 0).ActualScore()))
}

func TestMergeMatches(t *testing.T) {
	cfg := DefaultConfig()

	tests := []struct {
		name     string
		matches  []Match
		expected []Match
	}{{
		"same opponent an hour apart",
		[]Match{
			testMatch(1, 1, 2, 10, 5, 50, 60, 0),
			testMatch(2, 1, 2, 8, 7, 50, 60, time.Hour),
		},
		[]Match{testMatch(1, 1, 2, 18, 12, 50, 60, 0)},
	}, {
		"too far apart",
		[]Match{
			testMatch(1, 1, 2, 10, 5, 50, 60, 0),
			testMatch(2, 1, 2, 8, 7, 50, 60, 5*time.Hour),
		},
		[]Match{
			testMatch(1, 1, 2, 10, 5, 50, 60, 0),
			testMatch(2, 1, 2, 8, 7, 50, 60, 5*time.Hour),
		},
	}, {
		"different opponents",
		[]Match{
			testMatch(1, 1, 3, 8, 7, 50, 60, 0),
			testMatch(2, 1, 2, 10, 5, 50, 60, time.Minute),
		},
		[]Match{
			testMatch(2, 1, 2, 10, 5, 50, 60, time.Minute),
			testMatch(1, 1, 3, 8, 7, 50, 60, 0),
		},
	}, {
		"similar ping is averaged",
		[]Match{
			testMatch(1, 1, 2, 10, 5, 50, 60, 0),
			testMatch(2, 1, 2, 8, 7, 61, 75, 30*time.Minute),
		},
		[]Match{testMatch(1, 1, 2, 18, 12, 55, 67, 0)},
	}, {
		"dissimilar ping",
		[]Match{
			testMatch(1, 1, 2, 10, 5, 20, 60, 0),
			testMatch(2, 1, 2, 8, 7, 250, 60, 30*time.Minute),
		},
		[]Match{
			testMatch(1, 1, 2, 10, 5, 20, 60, 0),
			testMatch(2, 1, 2, 8, 7, 250, 60, 30*time.Minute),
		},
	}, {
		"session of four collapses over passes",
		[]Match{
			testMatch(4, 1, 2, 3, 1, 50, 60, 3*time.Hour),
			testMatch(1, 1, 2, 5, 2, 50, 60, 0),
			testMatch(3, 1, 2, 1, 4, 50, 60, 2*time.Hour),
			testMatch(2, 1, 2, 2, 2, 50, 60, time.Hour),
		},
		[]Match{testMatch(1, 1, 2, 11, 9, 50, 60, 0)},
	}}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			assert.Equal(t, test.expected, cfg.MergeMatches(test.matches))
		})
	}
}

func TestMergeMatchesDoesNotModifyInput(t *testing.T) {
	cfg := DefaultConfig()
	in := []Match{
		testMatch(2, 1, 2, 8, 7, 50, 60, time.Hour),
		testMatch(1, 1, 2, 10, 5, 50, 60, 0),
	}
	cp := append([]Match(nil), in...)

	out := cfg.MergeMatches(in)
	require.Len(t, out, 1)
	assert.Equal(t, cp, in)
}
