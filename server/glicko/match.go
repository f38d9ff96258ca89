package glicko

import "time"

// Match is an immutable snapshot of one contest between two players.
// Ratings, deviations and volatilities are public-scale values as they
// stood when the match was recorded, so recomputing a period always
// reproduces the same result.
type Match struct {
	ID           int64     `json:"id"`
	RatingPeriod int64     `json:"rating_period"`
	PlayerA      int64     `json:"player_a"`
	PlayerB      int64     `json:"player_b"`
	ScoreA       int       `json:"score_a"`
	ScoreB       int       `json:"score_b"`
	PingA        int       `json:"ping_a"`
	PingB        int       `json:"ping_b"`
	RatingA      float64   `json:"rating_a"`
	RatingB      float64   `json:"rating_b"`
	DeviationA   float64   `json:"deviation_a"`
	DeviationB   float64   `json:"deviation_b"`
	VolatilityA  float64   `json:"volatility_a"`
	VolatilityB  float64   `json:"volatility_b"`
	Epoch        time.Time `json:"epoch"`
}

// Involves reports whether the player took part in the match.
func (m Match) Involves(playerID int64) bool {
	return m.PlayerA == playerID || m.PlayerB == playerID
}

// ViewedFrom returns a copy of the match relabelled so that playerID is
// side A. The receiver is left untouched.
func (m Match) ViewedFrom(playerID int64) Match {
	if m.PlayerA == playerID {
		return m
	}
	m.PlayerA, m.PlayerB = m.PlayerB, m.PlayerA
	m.ScoreA, m.ScoreB = m.ScoreB, m.ScoreA
	m.PingA, m.PingB = m.PingB, m.PingA
	m.RatingA, m.RatingB = m.RatingB, m.RatingA
	m.DeviationA, m.DeviationB = m.DeviationB, m.DeviationA
	m.VolatilityA, m.VolatilityB = m.VolatilityB, m.VolatilityA
	return m
}

// ActualScore is side A's share of the points scored. A 0-0 match has no
// defined share and yields NaN.
func (m Match) ActualScore() float64 {
	return float64(m.ScoreA) / float64(m.ScoreA+m.ScoreB)
}
