package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/rocketscienceinc/gridgames-backend/internal/apperror"
	"github.com/rocketscienceinc/gridgames-backend/internal/battlesnake"
	"github.com/rocketscienceinc/gridgames-backend/internal/entity"
	"github.com/rocketscienceinc/gridgames-backend/internal/metrics"
)

const maxResponseBytes = 64 << 10

type botGameStore interface {
	GetGame(ctx context.Context, sessionID, gameID string) (*entity.GameState, error)
	RecordMove(ctx context.Context, sessionID string, move *entity.Move) error
}

type botDirectory interface {
	GetBots(ctx context.Context, ids []string) (map[string]*entity.Bot, error)
}

// BotNotifier asks every alive bot of a turn for its move and records the
// answers. A failing bot only loses its move for that turn.
type BotNotifier struct {
	games          botGameStore
	bots           botDirectory
	client         *http.Client
	logger         *slog.Logger
	rulesetVersion string
	now            func() time.Time
}

func NewBotNotifier(
	games botGameStore,
	bots botDirectory,
	logger *slog.Logger,
	requestTimeout time.Duration,
	rulesetVersion string,
) *BotNotifier {
	return &BotNotifier{
		games:          games,
		bots:           bots,
		client:         &http.Client{Timeout: requestTimeout},
		logger:         logger.With("component", "bot_notifier"),
		rulesetVersion: rulesetVersion,
		now:            time.Now,
	}
}

func (that *BotNotifier) NotifyBots(ctx context.Context, sessionID, gameID string, turnNumber int) {
	log := that.logger.With("method", "NotifyBots", "sessionID", sessionID, "gameID", gameID, "turnNumber", turnNumber)

	state, err := that.games.GetGame(ctx, sessionID, gameID)
	if err != nil {
		log.Error("failed to load game", "error", err)
		return
	}

	turn, ok := state.Turn(turnNumber)
	if !ok {
		log.Error("turn does not exist", "turns", len(state.Turns))
		return
	}

	if turn.GameOver || state.GameOver {
		log.Debug("game is over")
		return
	}

	ids := battlesnake.AliveBots(&state.Setup, turn)
	if len(ids) == 0 {
		log.Debug("no bots in turn")
		return
	}

	bots, err := that.bots.GetBots(ctx, ids)
	if err != nil {
		log.Error("failed to resolve bots", "error", err)
		return
	}

	colours := make(map[string]string, len(bots))
	for id, bot := range bots {
		colours[id] = bot.Colour
	}

	var wg sync.WaitGroup
	for _, id := range ids {
		bot, ok := bots[id]
		if !ok {
			log.Warn("bot is not registered", "botID", id)
			continue
		}

		request := battlesnake.BuildMoveRequest(battlesnake.RequestInput{
			RulesetVersion: that.rulesetVersion,
			GameID:         gameID,
			Setup:          &state.Setup,
			Turn:           turn,
			YouID:          id,
			BotColours:     colours,
		})

		wg.Add(1)
		go func() {
			defer wg.Done()
			that.askBot(ctx, log.With("botID", bot.ID), sessionID, state, turn, bot, request)
		}()
	}
	wg.Wait()

	log.Info("bot notification finished", "bots", len(ids))
}

func (that *BotNotifier) askBot(
	ctx context.Context,
	log *slog.Logger,
	sessionID string,
	state *entity.GameState,
	turn *entity.Turn,
	bot *entity.Bot,
	request *battlesnake.MoveRequest,
) {
	started := time.Now()
	direction, err := that.requestMove(ctx, bot.URL, request)
	metrics.BotRequestDuration.Observe(time.Since(started).Seconds())

	if err != nil {
		result := metrics.BotTransportError
		if errors.Is(err, apperror.ErrMalformedBotResponse) || errors.Is(err, apperror.ErrUnexpectedBotStatus) {
			result = metrics.BotBadResponse
		}

		metrics.BotRequests.WithLabelValues(result).Inc()
		log.Error("bot move request failed", "error", err)

		return
	}

	head := turn.PlayerPieces[bot.ID]
	if len(head) == 0 {
		log.Warn("bot has no body")
		return
	}

	move := &entity.Move{
		GameID:     state.GameID,
		TurnNumber: turn.TurnNumber,
		PlayerID:   bot.ID,
		Move:       battlesnake.DirectionToIndex(direction, head[0], state.Setup.BoardWidth, state.Setup.BoardHeight),
		Timestamp:  that.now(),
	}

	if err = that.games.RecordMove(ctx, sessionID, move); err != nil {
		metrics.BotRequests.WithLabelValues(metrics.BotRejected).Inc()
		log.Warn("bot move rejected", "error", err, "direction", direction)

		return
	}

	metrics.BotRequests.WithLabelValues(metrics.BotOK).Inc()
	log.Debug("bot move recorded", "direction", direction, "move", move.Move)
}

func (that *BotNotifier) requestMove(ctx context.Context, url string, request *battlesnake.MoveRequest) (string, error) {
	body, err := json.Marshal(request)
	if err != nil {
		return "", fmt.Errorf("failed to marshal move request: %w", err)
	}

	endpoint := strings.TrimSuffix(url, "/") + "/move"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to build move request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := that.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to call bot: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: %d", apperror.ErrUnexpectedBotStatus, resp.StatusCode)
	}

	payload, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return "", fmt.Errorf("failed to read bot response: %w", err)
	}

	return battlesnake.ParseMoveResponse(payload)
}
