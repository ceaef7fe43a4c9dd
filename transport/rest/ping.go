package rest

import (
	"context"
	"net/http"
	"time"
)

const pingTimeout = 2 * time.Second

type PingHandler interface {
	PingHandler(w http.ResponseWriter, r *http.Request)
}

type pingHandler struct {
	check func(ctx context.Context) error
}

// NewPingHandler answers pong while check succeeds. A nil check always passes.
func NewPingHandler(check func(ctx context.Context) error) PingHandler {
	return &pingHandler{check: check}
}

func (that *pingHandler) PingHandler(w http.ResponseWriter, r *http.Request) {
	if that.check != nil {
		ctx, cancel := context.WithTimeout(r.Context(), pingTimeout)
		defer cancel()

		if err := that.check(ctx); err != nil {
			http.Error(w, "storage unavailable", http.StatusServiceUnavailable)
			return
		}
	}

	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte("pong")); err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
}
