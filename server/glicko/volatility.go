package glicko

import (
	"errors"
	"math"
)

// ErrNoConvergence is returned when the volatility solver exceeds
// Config.MaxIterations, which only happens on non-finite or otherwise
// invalid inputs.
var ErrNoConvergence = errors.New("glicko: volatility did not converge")

// VolatilityInput is the private-scale state the volatility solver needs.
type VolatilityInput struct {
	Rating     float64 // mu
	Deviation  float64 // phi
	Volatility float64 // sigma
	Variance   float64 // v
	Delta      float64
}

// SolveVolatility finds the new volatility sigma' with the Illinois variant
// of regula falsi.
func (c Config) SolveVolatility(in VolatilityInput) (float64, error) {
	tau2 := c.Tau * c.Tau
	a := math.Log(in.Volatility * in.Volatility)

	// s² is mu² unless the canonical form is requested.
	s2 := in.Rating * in.Rating
	if c.CanonicalVolatility {
		s2 = in.Deviation * in.Deviation
	}
	d2 := in.Delta * in.Delta
	f := func(x float64) float64 {
		ex := math.Exp(x)
		num := ex * (d2 - s2 - in.Variance - ex)
		den := 2.0 * (s2 + in.Variance + ex) * (s2 + in.Variance + ex)
		return num/den - (x-a)/tau2
	}

	A := a
	var B float64
	phi2 := in.Deviation * in.Deviation
	if d2 > phi2+in.Variance {
		B = math.Log(d2 - phi2 - in.Variance)
	} else {
		k := 1
		for f(a-float64(k)*c.Tau) < 0 {
			k++
			if k > c.MaxIterations {
				return 0, ErrNoConvergence
			}
		}
		B = a - float64(k)*c.Tau
	}

	fA := f(A)
	fB := f(B)
	for it := 0; math.Abs(B-A) > c.Epsilon; it++ {
		if it >= c.MaxIterations {
			return 0, ErrNoConvergence
		}
		C := A + (A-B)*fA/(fB-fA)
		fC := f(C)
		if fC*fB <= 0 {
			A = B
			fA = fB
		} else {
			fA /= 2.0
		}
		B = C
		fB = fC
	}

	return math.Exp(A / 2.0), nil
}
