package main

import (
	"math"
	"net/http"
	"regexp"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"lunars/server/glicko"
	"lunars/server/logging"
)

// In-game names, optionally with a platform discriminator.
var playerNameRe = regexp.MustCompile(`^[A-Za-z0-9_.-]{2,24}(#\d{3})?$`)

func (a *api) listPlayers(w http.ResponseWriter, r *http.Request) {
	q, err := parsePlayerQuery(r)
	if err != nil {
		writeError(w, err)
		return
	}
	players, err := a.store.ListPlayers(r.Context(), q)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, players)
}

func (a *api) searchPlayers(w http.ResponseWriter, r *http.Request) {
	q, err := parsePlayerQuery(r)
	if err != nil {
		writeError(w, err)
		return
	}
	players, err := a.store.SearchPlayers(r.Context(), chi.URLParam(r, "name"), q)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, players)
}

func (a *api) getPlayer(w http.ResponseWriter, r *http.Request) {
	p, err := a.store.PlayerByIDOrName(r.Context(), chi.URLParam(r, "query"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (a *api) getLivePlayer(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	p, err := a.store.PlayerByIDOrName(ctx, chi.URLParam(r, "query"))
	if err != nil {
		writeError(w, err)
		return
	}
	if p, err = a.livePlayer(ctx, p); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (a *api) listLivePlayers(w http.ResponseWriter, r *http.Request) {
	q, err := parsePlayerQuery(r)
	if err != nil {
		writeError(w, err)
		return
	}
	players, err := a.livePlayers(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, q.ApplyToPlayers(players))
}

type addPlayerRequest struct {
	Name       string   `json:"name"`
	Rating     *float64 `json:"rating"`
	Deviation  *float64 `json:"deviation"`
	Volatility *float64 `json:"volatility"`
}

// rating fills unset fields with the defaults and validates the rest.
func (req addPlayerRequest) rating() (glicko.Glicko2, error) {
	g := glicko.NewGlicko2()
	if req.Rating != nil {
		if math.IsNaN(*req.Rating) || math.IsInf(*req.Rating, 0) {
			return g, errInvalid("rating must be a finite number")
		}
		g.Rating = *req.Rating
	}
	if req.Deviation != nil {
		if !(*req.Deviation > 0) || math.IsInf(*req.Deviation, 0) {
			return g, errInvalid("deviation must be positive")
		}
		g.Deviation = *req.Deviation
	}
	if req.Volatility != nil {
		if !(*req.Volatility > 0) || math.IsInf(*req.Volatility, 0) {
			return g, errInvalid("volatility must be positive")
		}
		g.Volatility = *req.Volatility
	}
	return g, nil
}

func validPlayerName(name string) error {
	if strings.TrimSpace(name) == "" {
		return errInvalid("name must not be empty")
	}
	// Names share the path segment with ids.
	if _, err := strconv.ParseInt(name, 10, 64); err == nil {
		return errInvalid("name cannot be a valid id")
	}
	if !playerNameRe.MatchString(name) {
		return errInvalid("name is not a valid player name")
	}
	return nil
}

func (a *api) addPlayer(w http.ResponseWriter, r *http.Request) {
	var req addPlayerRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, errStatus(http.StatusBadRequest))
		return
	}
	if err := validPlayerName(req.Name); err != nil {
		logging.Warn("rejected player name", zap.String("name", req.Name), zap.Error(err))
		writeError(w, err)
		return
	}
	g, err := req.rating()
	if err != nil {
		writeError(w, err)
		return
	}

	p, err := a.store.CreatePlayer(r.Context(), req.Name, g)
	if err != nil {
		writeError(w, err)
		return
	}
	logging.Info("player added", zap.Int64("player_id", p.ID), zap.String("name", p.Name))
	writeJSON(w, http.StatusCreated, p)
}
