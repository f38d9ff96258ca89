package glicko

import (
	"fmt"
	"math"
)

// RateForElapsedPeriods returns the player's rating after the given
// fraction of a rating period, taking the period's matches into account.
//
// elapsed is 1 when a period closes; live previews pass the fraction of the
// current period that has passed. Matches may list the player on either
// side. The call has no side effects, so it serves both committing a
// closed period and previewing an open one.
func (c Config) RateForElapsedPeriods(playerID int64, current Glicko2, matches []Match, elapsed float64) (Glicko2, error) {
	mu, phi := toMuPhi(current.Rating, current.Deviation)

	// No games: only the deviation grows.
	if len(matches) == 0 {
		phiStar := math.Sqrt(phi*phi + elapsed*current.Volatility*current.Volatility)
		return Glicko2{
			Rating:     current.Rating,
			Deviation:  DeviationToPublic(phiStar),
			Volatility: current.Volatility,
		}, nil
	}

	viewed := make([]Match, 0, len(matches))
	for _, m := range matches {
		viewed = append(viewed, m.ViewedFrom(playerID))
	}
	merged := c.MergeMatches(viewed)

	est := c.Estimate(mu, merged)

	sigma, err := c.SolveVolatility(VolatilityInput{
		Rating:     mu,
		Deviation:  phi,
		Volatility: current.Volatility,
		Variance:   est.Variance,
		Delta:      est.Delta,
	})
	if err != nil {
		return current, fmt.Errorf("rate player %d: %w", playerID, err)
	}

	phiStar := math.Sqrt(phi*phi + elapsed*sigma*sigma)
	phiNew := 1.0 / math.Sqrt(1.0/(phiStar*phiStar)+1.0/est.Variance)
	muNew := mu + phiNew*phiNew*est.Improvement

	r, rd := fromMuPhi(muNew, phiNew)
	return Glicko2{Rating: r, Deviation: rd, Volatility: sigma}, nil
}
