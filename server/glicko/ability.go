package glicko

import "math"

const pi2 = math.Pi * math.Pi

// Sech is the hyperbolic secant, 2 / (e^n + e^-n).
func Sech(n float64) float64 {
	return 2.0 / (math.Exp(n) + math.Exp(-n))
}

// PingAbility is the fraction of a player's public rating that survives a
// ping of pingMS milliseconds. It is 1 at zero ping and decays towards 0.
func (c Config) PingAbility(pingMS int) float64 {
	return Sech(float64(pingMS) / c.PingInfluence)
}

// Ability returns the ping adjusted rating of a player on the private scale.
//
// The penalty is applied on the public scale: the private scale is centred
// on zero, so scaling it directly would pull every rating towards 1500
// instead of towards zero points.
func (c Config) Ability(rating float64, pingMS int) float64 {
	if pingMS == 0 {
		return rating
	}
	return RatingFromPublic(RatingToPublic(rating) * c.PingAbility(pingMS))
}

// G is the Glicko impact weight of an opponent with deviation phi.
func G(phi float64) float64 { return 1.0 / math.Sqrt(1.0+3.0*phi*phi/pi2) }

// ExpectedScore is the probability-like share of the points the player is
// expected to take from the opponent. All ratings are on the private scale.
func (c Config) ExpectedScore(rating, oppRating, oppDeviation float64, ping, oppPing int) float64 {
	diff := c.Ability(rating, ping) - c.Ability(oppRating, oppPing)
	return 1.0 / (1.0 + math.Exp(-G(oppDeviation)*diff))
}
