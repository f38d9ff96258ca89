package glicko

import (
	"math"
	"sort"
)

// MergeMatches collapses repeated matches against the same opponent into
// single observations, so a best-of-N session counts once. All matches must
// already be viewed from the rated player (side A).
//
// Adjacent matches are merged pairwise, pass after pass, until a pass makes
// no merge. The input slice is not modified.
func (c Config) MergeMatches(matches []Match) []Match {
	if len(matches) < 2 {
		return append([]Match(nil), matches...)
	}

	merged := append([]Match(nil), matches...)
	sort.SliceStable(merged, func(i, j int) bool {
		if merged[i].PlayerB != merged[j].PlayerB {
			return merged[i].PlayerB < merged[j].PlayerB
		}
		return merged[i].Epoch.Before(merged[j].Epoch)
	})

	for {
		next := make([]Match, 0, len(merged))
		merges := 0
		for i := 0; i < len(merged); i++ {
			if i+1 < len(merged) && c.canMerge(merged[i], merged[i+1]) {
				next = append(next, mergePair(merged[i], merged[i+1]))
				merges++
				i++
				continue
			}
			next = append(next, merged[i])
		}
		merged = next
		if merges == 0 {
			return merged
		}
	}
}

func (c Config) canMerge(first, second Match) bool {
	if first.PlayerB != second.PlayerB {
		return false
	}
	gap := second.Epoch.Sub(first.Epoch)
	if gap < 0 {
		gap = -gap
	}
	if gap > c.MergeWindow {
		return false
	}
	return c.similarPing(first, second)
}

func (c Config) similarPing(first, second Match) bool {
	if first.PingA == second.PingA && first.PingB == second.PingB {
		return true
	}
	diffA := math.Abs(c.PingAbility(first.PingA) - c.PingAbility(second.PingA))
	diffB := math.Abs(c.PingAbility(first.PingB) - c.PingAbility(second.PingB))
	return diffA <= c.PingAbilityTolerance && diffB <= c.PingAbilityTolerance
}

// mergePair keeps the first match's metadata and snapshots.
func mergePair(first, second Match) Match {
	out := first
	out.ScoreA = first.ScoreA + second.ScoreA
	out.ScoreB = first.ScoreB + second.ScoreB
	out.PingA = (first.PingA + second.PingA) / 2
	out.PingB = (first.PingB + second.PingB) / 2
	return out
}
