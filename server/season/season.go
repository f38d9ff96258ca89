// Package season drives the rating-period lifecycle: it keeps one period
// active, and when a period ends it commits every player's rating for it.
package season

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"lunars/server/glicko"
	"lunars/server/logging"
	"lunars/server/store"
)

// Store is the persistence the handler needs. *store.DB implements it.
type Store interface {
	ActiveRatingPeriod(ctx context.Context, now time.Time) (store.RatingPeriod, error)
	CreateRatingPeriod(ctx context.Context, start, end time.Time) (store.RatingPeriod, error)
	UnprocessedRatingPeriods(ctx context.Context, now time.Time) ([]store.RatingPeriod, error)
	CommitRatingPeriod(ctx context.Context, id int64, rate store.RateFunc) error
}

// DefaultRetryDelay is how long Run waits before retrying a failed step.
const DefaultRetryDelay = time.Minute

type Handler struct {
	store  Store
	cfg    glicko.Config
	length time.Duration
	retry  time.Duration

	now   func() time.Time
	after func(time.Duration) <-chan time.Time
}

func NewHandler(s Store, cfg glicko.Config, length time.Duration) *Handler {
	return &Handler{
		store:  s,
		cfg:    cfg,
		length: length,
		retry:  DefaultRetryDelay,
		now:    time.Now,
		after:  time.After,
	}
}

// Run processes periods that ended while the service was down, then
// closes the active period each time it ends until ctx is cancelled.
// Failed steps are logged and retried; Run only returns once ctx is done.
func (h *Handler) Run(ctx context.Context) {
	var active store.RatingPeriod
	ok := h.until(ctx, "start rating periods", func() (err error) {
		if err = h.CatchUp(ctx); err != nil {
			return err
		}
		active, err = h.EnsureActive(ctx)
		return err
	})

	for ok && ctx.Err() == nil {
		wait := active.End.Sub(h.now())
		logging.Info("waiting for end of rating period",
			zap.Int64("period_id", active.ID),
			zap.Time("end", active.End),
			zap.Duration("wait", wait))

		select {
		case <-ctx.Done():
			return
		case <-h.after(wait):
		}

		ok = h.until(ctx, "close rating period", func() error {
			return h.Close(ctx, active)
		}) && h.until(ctx, "start next rating period", func() error {
			next, err := h.next(ctx, active)
			if err != nil {
				return err
			}
			active = next
			return nil
		})
	}
}

// until runs step until it succeeds, waiting h.retry between attempts.
// It reports false if ctx ends first.
func (h *Handler) until(ctx context.Context, what string, step func() error) bool {
	for {
		err := step()
		if err == nil {
			return true
		}
		logging.Error(what+" failed", zap.Duration("retry_in", h.retry), zap.Error(err))
		select {
		case <-ctx.Done():
			return false
		case <-h.after(h.retry):
		}
	}
}

// CatchUp closes every period that has ended but was never processed.
func (h *Handler) CatchUp(ctx context.Context) error {
	pending, err := h.store.UnprocessedRatingPeriods(ctx, h.now())
	if err != nil {
		return err
	}
	for _, p := range pending {
		if err := h.Close(ctx, p); err != nil {
			return err
		}
	}
	return nil
}

// EnsureActive returns the active period, creating one starting now if
// there is none.
func (h *Handler) EnsureActive(ctx context.Context) (store.RatingPeriod, error) {
	now := h.now()
	p, err := h.store.ActiveRatingPeriod(ctx, now)
	if err == nil {
		return p, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return store.RatingPeriod{}, err
	}
	return h.create(ctx, now)
}

// next starts the period following prev. Periods are contiguous unless the
// service was down past the end of the following one too.
func (h *Handler) next(ctx context.Context, prev store.RatingPeriod) (store.RatingPeriod, error) {
	start := prev.End
	if now := h.now(); !now.Before(start.Add(h.length)) {
		start = now
	}
	return h.create(ctx, start)
}

func (h *Handler) create(ctx context.Context, start time.Time) (store.RatingPeriod, error) {
	p, err := h.store.CreateRatingPeriod(ctx, start, start.Add(h.length))
	if err != nil {
		return store.RatingPeriod{}, err
	}
	logging.Info("created rating period",
		zap.Int64("period_id", p.ID),
		zap.Time("start", p.Start),
		zap.Time("end", p.End))
	return p, nil
}

// Close rates every player for the whole period and commits the result
// together with the period's processed flag. Closing a period that is
// already processed is a no-op.
func (h *Handler) Close(ctx context.Context, p store.RatingPeriod) error {
	started := time.Now()

	var players, matches int
	err := h.store.CommitRatingPeriod(ctx, p.ID, func(ps []store.Player, ms []glicko.Match) []store.Player {
		players, matches = len(ps), len(ms)
		return RatePlayers(h.cfg, ps, ms, 1)
	})
	if errors.Is(err, store.ErrPeriodClosed) {
		logging.Info("rating period already closed", zap.Int64("period_id", p.ID))
		return nil
	}
	if err != nil {
		return fmt.Errorf("close rating period %d: %w", p.ID, err)
	}

	logging.Info("rating period closed",
		zap.Int64("period_id", p.ID),
		zap.Int("players", players),
		zap.Int("matches", matches),
		zap.Duration("took", time.Since(started)))
	return nil
}

// RatePlayers rates each player with their share of the period's matches.
// A player whose update fails keeps their current rating.
func RatePlayers(cfg glicko.Config, players []store.Player, matches []glicko.Match, elapsed float64) []store.Player {
	byPlayer := make(map[int64][]glicko.Match, len(players))
	for _, m := range matches {
		byPlayer[m.PlayerA] = append(byPlayer[m.PlayerA], m)
		byPlayer[m.PlayerB] = append(byPlayer[m.PlayerB], m)
	}

	out := make([]store.Player, len(players))
	for i, p := range players {
		out[i] = RatePlayer(cfg, p, byPlayer[p.ID], elapsed)
	}
	return out
}

// RatePlayer is RatePlayers for a single player whose matches are already
// selected.
func RatePlayer(cfg glicko.Config, p store.Player, matches []glicko.Match, elapsed float64) store.Player {
	g, err := cfg.RateForElapsedPeriods(p.ID, p.Glicko2, matches, elapsed)
	if err != nil {
		logging.Warn("keeping previous rating",
			zap.Int64("player_id", p.ID),
			zap.String("player", p.Name),
			zap.Int("matches", len(matches)),
			zap.Error(err))
		return p
	}
	p.Glicko2 = g
	return p
}
