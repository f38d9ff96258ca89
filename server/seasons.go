package main

import (
	"net/http"

	"lunars/server/glicko"
)

func (a *api) listSeasons(w http.ResponseWriter, r *http.Request) {
	q, err := parseSeasonQuery(r)
	if err != nil {
		writeError(w, err)
		return
	}
	periods, err := a.store.ListRatingPeriods(r.Context(), q)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, periods)
}

func (a *api) getSeason(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}
	p, err := a.store.RatingPeriodByID(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (a *api) activeSeason(w http.ResponseWriter, r *http.Request) {
	p, ok, err := a.activePeriod(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	if !ok {
		writeError(w, errStatus(http.StatusNotFound))
		return
	}
	writeJSON(w, http.StatusOK, p)
}

type systemConstants struct {
	DefaultRating            float64 `json:"default_rating"`
	DefaultDeviation         float64 `json:"default_deviation"`
	DefaultVolatility        float64 `json:"default_volatility"`
	Tau                      float64 `json:"tau"`
	PingInfluence            float64 `json:"ping_influence"`
	RatingPeriodDurationDays int     `json:"rating_period_duration_days"`
}

func (a *api) constants(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, systemConstants{
		DefaultRating:            glicko.DefaultRatingValue,
		DefaultDeviation:         glicko.DefaultDeviationValue,
		DefaultVolatility:        glicko.DefaultVolatilityValue,
		Tau:                      a.glicko.Tau,
		PingInfluence:            a.glicko.PingInfluence,
		RatingPeriodDurationDays: int(a.period.Hours() / 24),
	})
}
