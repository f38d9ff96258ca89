package main

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"sync"
	"time"

	"lunars/server/glicko"
	"lunars/server/store"
)

// memStore is an in-memory Store for handler tests.
type memStore struct {
	mu      sync.Mutex
	players []store.Player
	matches []glicko.Match
	periods []store.RatingPeriod
	pingErr error

	// beforeAdd runs inside AddMatch with the lock held.
	beforeAdd func()
}

var _ Store = (*memStore)(nil)

func (m *memStore) Ping(context.Context) error { return m.pingErr }

func (m *memStore) ActiveRatingPeriod(_ context.Context, now time.Time) (store.RatingPeriod, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.periods {
		if !p.Processed && p.Active(now) {
			return p, nil
		}
	}
	return store.RatingPeriod{}, store.ErrNotFound
}

func (m *memStore) CreateRatingPeriod(_ context.Context, start, end time.Time) (store.RatingPeriod, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p := store.RatingPeriod{ID: int64(len(m.periods) + 1), Start: start, End: end}
	m.periods = append(m.periods, p)
	return p, nil
}

func (m *memStore) UnprocessedRatingPeriods(_ context.Context, now time.Time) ([]store.RatingPeriod, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []store.RatingPeriod
	for _, p := range m.periods {
		if !p.Processed && !p.End.After(now) {
			out = append(out, p)
		}
	}
	return out, nil
}

func (m *memStore) CommitRatingPeriod(_ context.Context, id int64, rate store.RateFunc) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.periods {
		if m.periods[i].ID != id {
			continue
		}
		if m.periods[i].Processed {
			return store.ErrPeriodClosed
		}
		var matches []glicko.Match
		for _, match := range m.matches {
			if match.RatingPeriod == id {
				matches = append(matches, match)
			}
		}
		m.players = rate(append([]store.Player(nil), m.players...), matches)
		m.periods[i].Processed = true
		return nil
	}
	return store.ErrNotFound
}

func (m *memStore) RatingPeriodByID(_ context.Context, id int64) (store.RatingPeriod, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.periods {
		if p.ID == id {
			return p, nil
		}
	}
	return store.RatingPeriod{}, store.ErrNotFound
}

func (m *memStore) ListRatingPeriods(context.Context, store.QueryParams) ([]store.RatingPeriod, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]store.RatingPeriod(nil), m.periods...), nil
}

func (m *memStore) CreatePlayer(_ context.Context, name string, g glicko.Glicko2) (store.Player, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.players {
		if p.Name == name {
			return store.Player{}, store.ErrNameTaken
		}
	}
	p := store.Player{ID: int64(len(m.players) + 1), Name: name, Glicko2: g}
	m.players = append(m.players, p)
	return p, nil
}

func (m *memStore) PlayerByIDOrName(_ context.Context, query string) (store.Player, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	id, idErr := strconv.ParseInt(query, 10, 64)
	for _, p := range m.players {
		if (idErr == nil && p.ID == id) || p.Name == query {
			return p, nil
		}
	}
	return store.Player{}, store.ErrNotFound
}

func (m *memStore) ListPlayers(_ context.Context, q store.QueryParams) ([]store.Player, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return q.ApplyToPlayers(append([]store.Player(nil), m.players...)), nil
}

func (m *memStore) SearchPlayers(_ context.Context, search string, q store.QueryParams) ([]store.Player, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []store.Player
	for _, p := range m.players {
		if strings.Contains(strings.ToLower(p.Name), strings.ToLower(search)) {
			out = append(out, p)
		}
	}
	return q.ApplyToPlayers(out), nil
}

func (m *memStore) AddMatch(_ context.Context, match glicko.Match) (glicko.Match, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.beforeAdd != nil {
		m.beforeAdd()
	}
	if match.PlayerA == match.PlayerB {
		return glicko.Match{}, errors.New("matches_players_differ")
	}
	if !m.periodOpen(match.RatingPeriod) {
		return glicko.Match{}, store.ErrPeriodClosed
	}
	match.ID = int64(len(m.matches) + 1)
	m.matches = append(m.matches, match)
	return match, nil
}

func (m *memStore) periodOpen(id int64) bool {
	for _, p := range m.periods {
		if p.ID == id {
			return !p.Processed
		}
	}
	return false
}

func (m *memStore) MatchByID(_ context.Context, id int64) (glicko.Match, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, match := range m.matches {
		if match.ID == id {
			return match, nil
		}
	}
	return glicko.Match{}, store.ErrNotFound
}

func (m *memStore) ListMatches(_ context.Context, q store.QueryParams) ([]glicko.Match, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []glicko.Match
	for _, match := range m.matches {
		if q.RatingPeriod != nil && match.RatingPeriod != *q.RatingPeriod {
			continue
		}
		if len(q.HasPlayer) > 0 && !involvesAny(match, q.HasPlayer) {
			continue
		}
		out = append(out, match)
	}
	return out, nil
}

func involvesAny(m glicko.Match, ids []int64) bool {
	for _, id := range ids {
		if m.Involves(id) {
			return true
		}
	}
	return false
}

func (m *memStore) MatchesForPeriod(_ context.Context, periodID int64) ([]glicko.Match, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []glicko.Match
	for _, match := range m.matches {
		if match.RatingPeriod == periodID {
			out = append(out, match)
		}
	}
	return out, nil
}

func (m *memStore) PlayerMatchesForPeriod(ctx context.Context, playerID, periodID int64) ([]glicko.Match, error) {
	all, _ := m.MatchesForPeriod(ctx, periodID)
	var out []glicko.Match
	for _, match := range all {
		if match.Involves(playerID) {
			out = append(out, match)
		}
	}
	return out, nil
}
