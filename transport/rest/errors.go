package rest

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/rocketscienceinc/gridgames-backend/internal/apperror"
)

// ErrBadRequest marks malformed input from a client.
var ErrBadRequest = errors.New("bad request")

type errorResponse struct {
	Error string `json:"error"`
}

// StatusFor maps domain errors to HTTP status codes. Anything unknown is a
// 500 and its text stays in the logs.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, ErrBadRequest),
		errors.Is(err, apperror.ErrUnknownGameKind),
		errors.Is(err, apperror.ErrInvalidRoster),
		errors.Is(err, apperror.ErrInvalidBoard),
		errors.Is(err, apperror.ErrInvalidPlayer):
		return http.StatusBadRequest
	case errors.Is(err, apperror.ErrGameNotFound),
		errors.Is(err, apperror.ErrTurnNotFound),
		errors.Is(err, apperror.ErrPlayerNotFound),
		errors.Is(err, apperror.ErrBotNotFound):
		return http.StatusNotFound
	case errors.Is(err, apperror.ErrMoveAlreadyRecorded),
		errors.Is(err, apperror.ErrTurnNotCurrent),
		errors.Is(err, apperror.ErrPlayerNotAlive),
		errors.Is(err, apperror.ErrGameFinished):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func (that *Handlers) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := StatusFor(err)
	message := err.Error()

	if status == http.StatusInternalServerError {
		that.logger.Error("request failed", "path", r.URL.Path, "requestID", middleware.GetReqID(r.Context()), "error", err)
		message = http.StatusText(status)
	}

	that.writeJSON(w, status, errorResponse{Error: message})
}
