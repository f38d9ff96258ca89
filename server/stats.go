package main

import (
	"math"
	"net/http"

	"github.com/go-chi/chi/v5"

	"lunars/server/glicko"
	"lunars/server/store"
)

// PlayerRecord summarises every match a player has played, across all
// rating periods.
type PlayerRecord struct {
	Player        store.Player `json:"player"`
	Matches       int          `json:"matches"`
	Wins          int          `json:"wins"`
	Losses        int          `json:"losses"`
	Draws         int          `json:"draws"`
	PointsFor     int          `json:"points_for"`
	PointsAgainst int          `json:"points_against"`
	MeanPing      float64      `json:"mean_ping"`

	// Win rate counting draws as half, with its 95% Wilson interval.
	WinRate     float64 `json:"win_rate"`
	WinRateLow  float64 `json:"win_rate_low"`
	WinRateHigh float64 `json:"win_rate_high"`
}

func buildRecord(p store.Player, matches []glicko.Match) PlayerRecord {
	rec := PlayerRecord{Player: p}
	var pings int
	for _, m := range matches {
		if !m.Involves(p.ID) {
			continue
		}
		v := m.ViewedFrom(p.ID)
		rec.Matches++
		rec.PointsFor += v.ScoreA
		rec.PointsAgainst += v.ScoreB
		pings += v.PingA
		switch {
		case v.ScoreA > v.ScoreB:
			rec.Wins++
		case v.ScoreA < v.ScoreB:
			rec.Losses++
		default:
			rec.Draws++
		}
	}
	if rec.Matches > 0 {
		rec.MeanPing = float64(pings) / float64(rec.Matches)
		rec.WinRate = (float64(rec.Wins) + 0.5*float64(rec.Draws)) / float64(rec.Matches)
	}
	rec.WinRateLow, rec.WinRateHigh = WilsonCI95(rec.Wins, rec.Draws, rec.Matches)
	return rec
}

// WilsonCI95 is the 95% Wilson score interval of a win rate where ties
// count as half a win.
func WilsonCI95(wins, ties, total int) (low, hi float64) {
	if total <= 0 {
		return 0, 1
	}
	z := 1.96
	n := float64(total)
	p := (float64(wins) + 0.5*float64(ties)) / n
	den := 1 + (z*z)/n
	center := p + (z*z)/(2*n)
	half := z * math.Sqrt((p*(1-p))/n+(z*z)/(4*n*n))
	return (center - half) / den, (center + half) / den
}

func (a *api) getPlayerRecord(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	p, err := a.store.PlayerByIDOrName(ctx, chi.URLParam(r, "query"))
	if err != nil {
		writeError(w, err)
		return
	}
	matches, err := a.store.ListMatches(ctx, store.QueryParams{HasPlayer: []int64{p.ID}})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, buildRecord(p, matches))
}
