package glicko

// Estimate holds the per-period sufficient statistics of Glicko-2.
type Estimate struct {
	// Variance is the estimated variance of the rating based only on the
	// period's outcomes.
	Variance float64
	// Delta is the estimated improvement, Variance * Improvement.
	Delta float64
	// Improvement is Σ g(φj)·(s − E) over the period's matches.
	Improvement float64
}

// Estimate aggregates the period's matches for a player rated mu (private
// scale). Matches must be viewed from the player; opponent snapshots are
// converted to the private scale here.
func (c Config) Estimate(mu float64, matches []Match) Estimate {
	var sumG2E float64 // Σ g² · E · (1-E)
	var sumGSE float64 // Σ g · (s - E)
	for _, m := range matches {
		muB, phiB := toMuPhi(m.RatingB, m.DeviationB)
		gB := G(phiB)
		e := c.ExpectedScore(mu, muB, phiB, m.PingA, m.PingB)
		sumG2E += gB * gB * e * (1.0 - e)
		sumGSE += gB * (m.ActualScore() - e)
	}
	v := 1.0 / sumG2E
	return Estimate{Variance: v, Delta: v * sumGSE, Improvement: sumGSE}
}
