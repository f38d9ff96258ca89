package glicko

import "time"

// Public-scale defaults for a player that has never been rated.
const (
	DefaultRatingValue     = 1500.0
	DefaultDeviationValue  = 350.0
	DefaultVolatilityValue = 0.06
)

// Config holds the system constants the rating algorithm depends on.
// The zero value is not usable; start from DefaultConfig.
type Config struct {
	// Tau constrains how fast volatility can change between periods.
	Tau float64
	// PingInfluence is the ping (ms) scale of the sech falloff used by Ability.
	PingInfluence float64
	// MergeWindow is the largest epoch gap between two matches that may be merged.
	MergeWindow time.Duration
	// PingAbilityTolerance is the largest per-side ping ability difference
	// still considered "similar ping" when merging.
	PingAbilityTolerance float64
	// Epsilon is the convergence tolerance of the volatility solver.
	Epsilon float64
	// MaxIterations caps both the bracket search and the Illinois loop.
	MaxIterations int
	// CanonicalVolatility makes the volatility solver use the player's
	// deviation in f(x), as in the published Glicko-2 algorithm. When false
	// the player's rating is used instead, which is what every stored rating
	// history was computed with.
	CanonicalVolatility bool
}

// DefaultConfig returns the constants the service has always run with.
func DefaultConfig() Config {
	return Config{
		Tau:                  0.5,
		PingInfluence:        300.0,
		MergeWindow:          4 * time.Hour,
		PingAbilityTolerance: 0.1,
		Epsilon:              0.000001,
		MaxIterations:        10000,
		CanonicalVolatility:  false,
	}
}

// Glicko2 holds the public "1500-scale" values (not mu/phi).
type Glicko2 struct {
	Rating     float64 `json:"rating"`
	Deviation  float64 `json:"deviation"`
	Volatility float64 `json:"volatility"`
}

// NewGlicko2 returns a fresh player at the standard defaults.
func NewGlicko2() Glicko2 {
	return Glicko2{Rating: DefaultRatingValue, Deviation: DefaultDeviationValue, Volatility: DefaultVolatilityValue}
}
