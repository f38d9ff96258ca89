package main

import (
	"errors"
	"net/http"

	"go.uber.org/zap"

	"lunars/server/glicko"
	"lunars/server/logging"
	"lunars/server/store"
)

// apiError is the JSON error body. Code 0 means the HTTP status says it all.
type apiError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Status  int    `json:"-"`
}

func (e *apiError) Error() string { return e.Message }

const (
	codeStatus         = 0
	codeNameTaken      = 3
	codeInvalidParam   = 4
	codeSamePlayer     = 5
	codeScore          = 6
	codeRatingDiverged = 7
)

func errStatus(status int) *apiError {
	return &apiError{Code: codeStatus, Message: http.StatusText(status), Status: status}
}

func errInvalid(msg string) *apiError {
	return &apiError{Code: codeInvalidParam, Message: msg, Status: http.StatusBadRequest}
}

var (
	errNameTaken = &apiError{
		Code: codeNameTaken, Message: "A player with that name already exists.", Status: http.StatusBadRequest,
	}
	errSamePlayer = &apiError{
		Code: codeSamePlayer, Message: "player_a and player_b are the same player.", Status: http.StatusBadRequest,
	}
	errRatingDiverged = &apiError{
		Code: codeRatingDiverged, Message: "Rating calculation did not converge.", Status: http.StatusInternalServerError,
	}
)

func errScore(msg string) *apiError {
	return &apiError{Code: codeScore, Message: msg, Status: http.StatusBadRequest}
}

// toAPIError maps store and kernel errors onto the API's error codes.
// Anything unrecognised is logged and reported as a 500.
func toAPIError(err error) *apiError {
	var ae *apiError
	switch {
	case errors.As(err, &ae):
		return ae
	case errors.Is(err, store.ErrNotFound):
		return errStatus(http.StatusNotFound)
	case errors.Is(err, store.ErrNameTaken):
		return errNameTaken
	case errors.Is(err, store.ErrPeriodClosed):
		return &apiError{
			Code: codeStatus, Message: "The rating period closed; submit the match again.", Status: http.StatusConflict,
		}
	case errors.Is(err, glicko.ErrNoConvergence):
		logging.Warn("rating did not converge", zap.Error(err))
		return errRatingDiverged
	default:
		logging.Error("internal error", zap.Error(err))
		return errStatus(http.StatusInternalServerError)
	}
}

func writeError(w http.ResponseWriter, err error) {
	ae := toAPIError(err)
	writeJSON(w, ae.Status, ae)
}
