package main

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"lunars/server/glicko"
	"lunars/server/logging"
	"lunars/server/season"
	"lunars/server/store"
)

// Store is everything the HTTP handlers read and write. *store.DB
// implements it.
type Store interface {
	season.Store

	Ping(ctx context.Context) error

	ListPlayers(ctx context.Context, q store.QueryParams) ([]store.Player, error)
	MatchesForPeriod(ctx context.Context, periodID int64) ([]glicko.Match, error)

	CreatePlayer(ctx context.Context, name string, g glicko.Glicko2) (store.Player, error)
	PlayerByIDOrName(ctx context.Context, query string) (store.Player, error)
	SearchPlayers(ctx context.Context, search string, q store.QueryParams) ([]store.Player, error)

	AddMatch(ctx context.Context, m glicko.Match) (glicko.Match, error)
	MatchByID(ctx context.Context, id int64) (glicko.Match, error)
	ListMatches(ctx context.Context, q store.QueryParams) ([]glicko.Match, error)
	PlayerMatchesForPeriod(ctx context.Context, playerID, periodID int64) ([]glicko.Match, error)

	RatingPeriodByID(ctx context.Context, id int64) (store.RatingPeriod, error)
	ListRatingPeriods(ctx context.Context, q store.QueryParams) ([]store.RatingPeriod, error)
}

type api struct {
	store  Store
	glicko glicko.Config
	period time.Duration
	now    func() time.Time
}

func Router(s Store, cfg Config) http.Handler {
	a := &api{store: s, glicko: cfg.Glicko, period: cfg.RatingPeriod, now: time.Now}
	return a.routes(cfg.RequestTimeout)
}

func (a *api) routes(timeout time.Duration) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)
	if timeout > 0 {
		r.Use(middleware.Timeout(timeout))
	}
	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, errStatus(http.StatusNotFound))
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, errStatus(http.StatusMethodNotAllowed))
	})

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", a.health)

		r.Route("/players", func(r chi.Router) {
			r.Get("/", a.listPlayers)
			r.Post("/", a.addPlayer)
			r.Get("/live", a.listLivePlayers)
			r.Get("/search/{name}", a.searchPlayers)
			r.Get("/{query}", a.getPlayer)
			r.Get("/{query}/live", a.getLivePlayer)
			r.Get("/{query}/record", a.getPlayerRecord)
		})

		r.Route("/matches", func(r chi.Router) {
			r.Get("/", a.listMatches)
			r.Post("/", a.addMatch)
			r.Post("/dummy", a.addDummyMatch)
			r.Get("/{id}", a.getMatch)
		})

		r.Route("/seasons", func(r chi.Router) {
			r.Get("/", a.listSeasons)
			r.Get("/active", a.activeSeason)
			r.Get("/{id}", a.getSeason)
		})

		r.Get("/system/constants", a.constants)
	})
	return r
}

func (a *api) health(w http.ResponseWriter, r *http.Request) {
	if err := a.store.Ping(r.Context()); err != nil {
		logging.Error("health check failed", zap.Error(err))
		writeError(w, errStatus(http.StatusServiceUnavailable))
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		started := time.Now()
		defer func() {
			logging.Info("request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Int("bytes", ww.BytesWritten()),
				zap.Duration("took", time.Since(started)),
				zap.String("request_id", middleware.GetReqID(r.Context())))
		}()
		next.ServeHTTP(ww, r)
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}

func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}
