package websocket

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"github.com/rocketscienceinc/gridgames-backend/internal/apperror"
	"github.com/rocketscienceinc/gridgames-backend/internal/entity"
	"github.com/rocketscienceinc/gridgames-backend/transport/rest"
)

type gameReader interface {
	GetGame(ctx context.Context, sessionID, gameID string) (*entity.GameState, error)
}

type moveSubmitter interface {
	SubmitMove(ctx context.Context, sessionID, gameID, playerID string, turnNumber, cell int) (*entity.Move, error)
}

// Server streams one game per connection. It expects the chi URL params
// sessionID and gameID.
type Server struct {
	logger   *slog.Logger
	hub      *Hub
	games    gameReader
	moves    moveSubmitter
	upgrader websocket.Upgrader

	handlers map[string]func(ctx context.Context, c *client, message *Message) error
}

func New(logger *slog.Logger, hub *Hub, games gameReader, moves moveSubmitter) *Server {
	server := &Server{
		logger: logger.With("component", "websocket"),
		hub:    hub,
		games:  games,
		moves:  moves,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(*http.Request) bool { return true },
		},

		handlers: make(map[string]func(context.Context, *client, *Message) error),
	}

	server.handlers[actionState] = server.handleState
	server.handlers[actionMove] = server.handleMove

	return server
}

func (that *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	key := gameKey{sessionID: chi.URLParam(r, "sessionID"), gameID: chi.URLParam(r, "gameID")}
	log := that.logger.With("method", "ServeHTTP", "sessionID", key.sessionID, "gameID", key.gameID)

	state, err := that.games.GetGame(ctx, key.sessionID, key.gameID)
	switch {
	case errors.Is(err, apperror.ErrGameNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	case err != nil:
		log.Error("failed to load game", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	conn, err := that.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Error("failed to upgrade connection", "error", err)
		return
	}
	defer conn.Close()

	conn.SetReadLimit(maxMessageSize)

	c := newClient(conn, key)
	that.hub.register(c)
	defer that.hub.unregister(c)

	go func() {
		if err := c.writePump(); err != nil {
			log.Debug("write failed", "error", err)
		}
	}()

	if msg, err := newMessage(actionState, ResponsePayload{GameID: key.gameID, Game: state}); err == nil {
		c.enqueue(msg)
	}

	log.Info("WebSocket connection established")

	that.handleMessages(ctx, log, c)
}

// handleMessages processes client messages until the connection closes.
func (that *Server) handleMessages(ctx context.Context, log *slog.Logger, c *client) {
	for {
		var message Message
		if err := c.conn.ReadJSON(&message); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.Warn("connection closed unexpectedly", "error", err)
			}

			return
		}

		handler, ok := that.handlers[message.Action]
		if !ok {
			c.enqueue(errorMessage(message.Action, "unknown action"))
			continue
		}

		if err := handler(ctx, c, &message); err != nil {
			c.enqueue(errorMessage(message.Action, that.clientError(log, message.Action, err)))
		}
	}
}

// clientError hides the text of unexpected errors the same way the REST API does.
func (that *Server) clientError(log *slog.Logger, action string, err error) string {
	status := rest.StatusFor(err)
	if status == http.StatusInternalServerError {
		log.Error("error processing message", "action", action, "error", err)
		return http.StatusText(status)
	}

	log.Debug("message rejected", "action", action, "error", err)

	return err.Error()
}
