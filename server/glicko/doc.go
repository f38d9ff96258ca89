// Package glicko rates players with a Glicko-2 variant that compensates for
// network latency and merges repeated matches against the same opponent
// before rating.
//
// Names follow Glickman's paper where it helps: mu and phi are the rating
// and deviation on the private (Glicko-2) scale, sigma is the volatility.
// Exported values are on the public 1500-centred scale unless noted.
//
// See http://www.glicko.net/glicko/glicko2.pdf.
package glicko
