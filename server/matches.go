package main

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"lunars/server/glicko"
	"lunars/server/logging"
	"lunars/server/store"
)

const (
	maxScore = 22
	maxPing  = 65000
)

func (a *api) listMatches(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	q, refs, err := parseMatchQuery(r)
	if err != nil {
		writeError(w, err)
		return
	}
	for _, ref := range refs {
		p, err := a.store.PlayerByIDOrName(ctx, ref)
		if err != nil {
			writeError(w, err)
			return
		}
		q.HasPlayer = append(q.HasPlayer, p.ID)
	}
	matches, err := a.store.ListMatches(ctx, q)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, matches)
}

func (a *api) getMatch(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}
	m, err := a.store.MatchByID(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, m)
}

type addMatchRequest struct {
	PlayerA string `json:"player_a"`
	PlayerB string `json:"player_b"`
	PingA   int    `json:"ping_a"`
	PingB   int    `json:"ping_b"`
	ScoreA  int    `json:"score_a"`
	ScoreB  int    `json:"score_b"`
}

func (req addMatchRequest) validate() error {
	for _, s := range []struct {
		name  string
		value int
	}{{"score_a", req.ScoreA}, {"score_b", req.ScoreB}} {
		if s.value < 0 || s.value > maxScore {
			return errScore(fmt.Sprintf("%s must be between 0 and %d", s.name, maxScore))
		}
	}
	if req.ScoreA == 0 && req.ScoreB == 0 {
		return errScore("a match needs at least one point scored")
	}
	if req.PingA < 0 || req.PingA > maxPing {
		return errInvalid(fmt.Sprintf("ping_a must be between 0 and %d", maxPing))
	}
	if req.PingB < 0 || req.PingB > maxPing {
		return errInvalid(fmt.Sprintf("ping_b must be between 0 and %d", maxPing))
	}
	return nil
}

// addMatchResponse carries the match and both players' live ratings
// with the match counted.
type addMatchResponse struct {
	Created glicko.Match `json:"created"`
	LiveA   store.Player `json:"live_a"`
	LiveB   store.Player `json:"live_b"`
}

func (a *api) addMatch(w http.ResponseWriter, r *http.Request) {
	a.submitMatch(w, r, true)
}

// addDummyMatch answers as addMatch would without storing anything.
func (a *api) addDummyMatch(w http.ResponseWriter, r *http.Request) {
	a.submitMatch(w, r, false)
}

func (a *api) submitMatch(w http.ResponseWriter, r *http.Request, persist bool) {
	started := time.Now()
	var req addMatchRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, errStatus(http.StatusBadRequest))
		return
	}
	if err := req.validate(); err != nil {
		writeError(w, err)
		return
	}
	resp, err := a.recordMatch(r.Context(), req, persist)
	if err != nil {
		writeError(w, err)
		return
	}
	logging.Info("match submitted",
		zap.Bool("persisted", persist),
		zap.Int64("match_id", resp.Created.ID),
		zap.String("player_a", resp.LiveA.Name),
		zap.String("player_b", resp.LiveB.Name),
		zap.Duration("took", time.Since(started)))
	status := http.StatusOK
	if persist {
		status = http.StatusCreated
	}
	writeJSON(w, status, resp)
}

func (a *api) recordMatch(ctx context.Context, req addMatchRequest, persist bool) (addMatchResponse, error) {
	pa, err := a.store.PlayerByIDOrName(ctx, req.PlayerA)
	if err != nil {
		return addMatchResponse{}, err
	}
	pb, err := a.store.PlayerByIDOrName(ctx, req.PlayerB)
	if err != nil {
		return addMatchResponse{}, err
	}
	if pa.ID == pb.ID {
		logging.Warn("match against self rejected", zap.String("player", pa.Name))
		return addMatchResponse{}, errSamePlayer
	}

	period, ok, err := a.activePeriod(ctx)
	if err != nil {
		return addMatchResponse{}, err
	}
	if !ok {
		return addMatchResponse{}, errStatus(http.StatusServiceUnavailable)
	}

	m := glicko.Match{
		RatingPeriod: period.ID,
		PlayerA:      pa.ID,
		PlayerB:      pb.ID,
		ScoreA:       req.ScoreA,
		ScoreB:       req.ScoreB,
		PingA:        req.PingA,
		PingB:        req.PingB,
		RatingA:      pa.Rating,
		RatingB:      pb.Rating,
		DeviationA:   pa.Deviation,
		DeviationB:   pb.Deviation,
		VolatilityA:  pa.Volatility,
		VolatilityB:  pb.Volatility,
		Epoch:        a.now().UTC(),
	}

	matchesA, err := a.store.PlayerMatchesForPeriod(ctx, pa.ID, period.ID)
	if err != nil {
		return addMatchResponse{}, err
	}
	matchesB, err := a.store.PlayerMatchesForPeriod(ctx, pb.ID, period.ID)
	if err != nil {
		return addMatchResponse{}, err
	}

	if persist {
		if m, err = a.store.AddMatch(ctx, m); err != nil {
			return addMatchResponse{}, err
		}
	}

	liveA, err := a.rateLive(pa, append(matchesA, m), period)
	if err != nil {
		return addMatchResponse{}, err
	}
	liveB, err := a.rateLive(pb, append(matchesB, m), period)
	if err != nil {
		return addMatchResponse{}, err
	}
	return addMatchResponse{Created: m, LiveA: liveA, LiveB: liveB}, nil
}
