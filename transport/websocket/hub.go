package websocket

import (
	"context"
	"fmt"
	"log/slog"
	"maps"
	"slices"
	"sync"

	"github.com/rocketscienceinc/gridgames-backend/internal/entity"
	"github.com/rocketscienceinc/gridgames-backend/internal/repository"
)

type turnFeed interface {
	Subscribe(ctx context.Context, channel string) (<-chan entity.GameEvent, error)
	GetTurn(ctx context.Context, sessionID, gameID string, turnNumber int) (*entity.Turn, error)
}

// Hub fans every committed turn out to the connections watching its game.
type Hub struct {
	feed   turnFeed
	logger *slog.Logger

	mu      sync.RWMutex
	clients map[gameKey]map[*client]struct{}
}

func NewHub(feed turnFeed, logger *slog.Logger) *Hub {
	return &Hub{
		feed:    feed,
		logger:  logger.With("component", "websocket_hub"),
		clients: make(map[gameKey]map[*client]struct{}),
	}
}

// Run forwards turn events until ctx is done, then closes every connection.
func (that *Hub) Run(ctx context.Context) error {
	events, err := that.feed.Subscribe(ctx, repository.TurnsChannel)
	if err != nil {
		return fmt.Errorf("failed to subscribe to turns: %w", err)
	}

	defer that.closeAll()

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-events:
			if !ok {
				return nil
			}

			that.broadcast(ctx, event)
		}
	}
}

// Watchers returns the number of open connections of a game.
func (that *Hub) Watchers(sessionID, gameID string) int {
	that.mu.RLock()
	defer that.mu.RUnlock()

	return len(that.clients[gameKey{sessionID: sessionID, gameID: gameID}])
}

func (that *Hub) broadcast(ctx context.Context, event entity.GameEvent) {
	log := that.logger.With("method", "broadcast", "sessionID", event.SessionID, "gameID", event.GameID, "turnNumber", event.TurnNumber)
	key := gameKey{sessionID: event.SessionID, gameID: event.GameID}

	that.mu.RLock()
	targets := slices.Collect(maps.Keys(that.clients[key]))
	that.mu.RUnlock()

	if len(targets) == 0 {
		return
	}

	turn, err := that.feed.GetTurn(ctx, event.SessionID, event.GameID, event.TurnNumber)
	if err != nil {
		log.Error("failed to load turn", "error", err)
		return
	}

	msg, err := newMessage(actionTurn, ResponsePayload{GameID: event.GameID, Turn: turn})
	if err != nil {
		log.Error("failed to build message", "error", err)
		return
	}

	for _, c := range targets {
		if !c.enqueue(msg) {
			log.Warn("dropping slow connection")
			that.unregister(c)
		}
	}
}

func (that *Hub) register(c *client) {
	that.mu.Lock()
	defer that.mu.Unlock()

	watchers, ok := that.clients[c.key]
	if !ok {
		watchers = make(map[*client]struct{})
		that.clients[c.key] = watchers
	}
	watchers[c] = struct{}{}
}

func (that *Hub) unregister(c *client) {
	that.mu.Lock()
	defer that.mu.Unlock()

	c.close()

	watchers := that.clients[c.key]
	delete(watchers, c)
	if len(watchers) == 0 {
		delete(that.clients, c.key)
	}
}

func (that *Hub) closeAll() {
	that.mu.Lock()
	defer that.mu.Unlock()

	for _, watchers := range that.clients {
		for c := range watchers {
			c.close()
		}
	}
	clear(that.clients)
}
