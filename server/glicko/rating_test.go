package glicko

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const self int64 = 1

// Glickman's worked example: 1500/200/0.06 against 1400/30 (won),
// 1550/100 (lost) and 1700/300 (lost). Pings are zero so Ability is inert.
func paperMatches() []Match {
	opp := func(id int64, r, rd float64, won bool) Match {
		m := Match{
			ID: id, PlayerA: self, PlayerB: id + 10,
			RatingA: 1500, DeviationA: 200, VolatilityA: 0.06,
			RatingB: r, DeviationB: rd, VolatilityB: 0.06,
			Epoch: epoch0.Add(time.Duration(id) * 24 * time.Hour),
		}
		if won {
			m.ScoreA = 22
		} else {
			m.ScoreB = 22
		}
		return m
	}
	return []Match{
		opp(1, 1400, 30, true),
		opp(2, 1550, 100, false),
		opp(3, 1700, 300, false),
	}
}

func TestRateReferenceVector(t *testing.T) {
	for _, canonical := range []bool{false, true} {
		cfg := DefaultConfig()
		cfg.CanonicalVolatility = canonical

		got, err := cfg.RateForElapsedPeriods(self, Glicko2{1500, 200, 0.06}, paperMatches(), 1)
		require.NoError(t, err)
		assert.InDelta(t, 1464.06, got.Rating, 1.0)
		assert.InDelta(t, 151.52, got.Deviation, 1.0)
		assert.InDelta(t, 0.05999, got.Volatility, 1e-4)
	}
}

func TestRateSideIndependent(t *testing.T) {
	cfg := DefaultConfig()
	matches := paperMatches()
	flipped := make([]Match, len(matches))
	for i, m := range matches {
		flipped[i] = m.ViewedFrom(m.PlayerB)
	}

	a, err := cfg.RateForElapsedPeriods(self, Glicko2{1500, 200, 0.06}, matches, 1)
	require.NoError(t, err)
	b, err := cfg.RateForElapsedPeriods(self, Glicko2{1500, 200, 0.06}, flipped, 1)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

// The volatility step uses the player's rating where Glicko-2 uses the
// deviation. Both forms are pinned here; away from 1500 they diverge.
func TestRateVolatilityForms(t *testing.T) {
	current := Glicko2{2100, 200, 0.06}

	cfg := DefaultConfig()
	preserved, err := cfg.RateForElapsedPeriods(self, current, paperMatches(), 1)
	require.NoError(t, err)

	cfg.CanonicalVolatility = true
	canonical, err := cfg.RateForElapsedPeriods(self, current, paperMatches(), 1)
	require.NoError(t, err)

	assert.InDelta(t, 0.0600041, preserved.Volatility, 1e-6)
	assert.InDelta(t, 0.0600207, canonical.Volatility, 1e-6)
	assert.NotEqual(t, preserved.Volatility, canonical.Volatility)
	assert.InDelta(t, 1803.89, preserved.Rating, 0.01)
}

func TestRateNoMatches(t *testing.T) {
	cfg := DefaultConfig()
	current := Glicko2{1612.25, 180, 0.071}

	for _, elapsed := range []float64{0, 0.25, 1, 3} {
		got, err := cfg.RateForElapsedPeriods(self, current, nil, elapsed)
		require.NoError(t, err)

		assert.Equal(t, current.Rating, got.Rating)
		assert.Equal(t, current.Volatility, got.Volatility)

		phi := DeviationFromPublic(current.Deviation)
		want := DeviationToPublic(math.Sqrt(phi*phi + elapsed*current.Volatility*current.Volatility))
		assert.InDelta(t, want, got.Deviation, 1e-9)
	}
}

func TestRateNoMatchesZeroElapsed(t *testing.T) {
	got, err := DefaultConfig().RateForElapsedPeriods(self, Glicko2{1500, 200, 0.06}, nil, 0)
	require.NoError(t, err)
	assert.InDelta(t, 200.0, got.Deviation, 1e-9)
}

func TestRateMergedDiffersFromUnmerged(t *testing.T) {
	cfg := DefaultConfig()
	current := Glicko2{1500, 200, 0.06}
	session := []Match{
		testMatch(1, self, 2, 10, 5, 50, 60, 0),
		testMatch(2, self, 2, 8, 7, 50, 60, time.Hour),
	}

	merged := cfg.MergeMatches(session)
	require.Len(t, merged, 1)
	assert.Equal(t, 18, merged[0].ScoreA)
	assert.Equal(t, 12, merged[0].ScoreB)
	assert.Equal(t, 50, merged[0].PingA)
	assert.Equal(t, 60, merged[0].PingB)

	viaUpdater, err := cfg.RateForElapsedPeriods(self, current, session, 1)
	require.NoError(t, err)
	single, err := cfg.RateForElapsedPeriods(self, current, merged, 1)
	require.NoError(t, err)
	assert.Equal(t, single, viaUpdater)

	// Same two matches a day apart are two observations.
	apart := []Match{session[0], testMatch(2, self, 2, 8, 7, 50, 60, 24*time.Hour)}
	unmerged, err := cfg.RateForElapsedPeriods(self, current, apart, 1)
	require.NoError(t, err)

	assert.NotEqual(t, single.Rating, unmerged.Rating)
	assert.Less(t, unmerged.Deviation, single.Deviation)
}

func TestRatePartialPeriod(t *testing.T) {
	cfg := DefaultConfig()
	current := Glicko2{1500, 200, 0.06}

	early, err := cfg.RateForElapsedPeriods(self, current, paperMatches(), 0.1)
	require.NoError(t, err)
	late, err := cfg.RateForElapsedPeriods(self, current, paperMatches(), 1)
	require.NoError(t, err)

	assert.Less(t, early.Deviation, late.Deviation)
	assert.Equal(t, early.Volatility, late.Volatility)
}

func TestRateDoesNotConverge(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxIterations = 1
	cfg.Epsilon = 0
	current := Glicko2{1500, 200, 0.06}

	got, err := cfg.RateForElapsedPeriods(self, current, paperMatches(), 1)
	assert.ErrorIs(t, err, ErrNoConvergence)
	assert.Equal(t, current, got)
}
