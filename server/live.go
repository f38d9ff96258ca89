package main

import (
	"context"
	"errors"

	"lunars/server/glicko"
	"lunars/server/season"
	"lunars/server/store"
)

// Live ratings are what a player's rating would be if the active period
// ended now. They are computed on request and never stored.

// activePeriod returns the active rating period. ok is false when none
// exists, which only happens while the season handler is between periods.
func (a *api) activePeriod(ctx context.Context) (p store.RatingPeriod, ok bool, err error) {
	p, err = a.store.ActiveRatingPeriod(ctx, a.now())
	if errors.Is(err, store.ErrNotFound) {
		return store.RatingPeriod{}, false, nil
	}
	if err != nil {
		return store.RatingPeriod{}, false, err
	}
	return p, true, nil
}

func (a *api) rateLive(p store.Player, matches []glicko.Match, period store.RatingPeriod) (store.Player, error) {
	g, err := a.glicko.RateForElapsedPeriods(p.ID, p.Glicko2, matches, period.Completion(a.now()))
	if err != nil {
		return p, err
	}
	p.Glicko2 = g
	return p, nil
}

func (a *api) livePlayer(ctx context.Context, p store.Player) (store.Player, error) {
	period, ok, err := a.activePeriod(ctx)
	if err != nil || !ok {
		return p, err
	}
	matches, err := a.store.PlayerMatchesForPeriod(ctx, p.ID, period.ID)
	if err != nil {
		return p, err
	}
	return a.rateLive(p, matches, period)
}

// livePlayers rates every player. Players whose rating fails to converge
// keep their stored rating.
func (a *api) livePlayers(ctx context.Context) ([]store.Player, error) {
	players, err := a.store.ListPlayers(ctx, store.QueryParams{})
	if err != nil {
		return nil, err
	}
	period, ok, err := a.activePeriod(ctx)
	if err != nil || !ok {
		return players, err
	}
	matches, err := a.store.MatchesForPeriod(ctx, period.ID)
	if err != nil {
		return nil, err
	}
	return season.RatePlayers(a.glicko, players, matches, period.Completion(a.now())), nil
}
