package rest

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/rocketscienceinc/gridgames-backend/internal/entity"
)

const maxBodyBytes = 1 << 20

type gameUseCase interface {
	StartGame(ctx context.Context, sessionID string, setup entity.GameSetup) (*entity.GameState, error)
	GetGame(ctx context.Context, sessionID, gameID string) (*entity.GameState, error)
	GetTurn(ctx context.Context, sessionID, gameID string, turnNumber int) (*entity.Turn, error)
}

type moveUseCase interface {
	SubmitMove(ctx context.Context, sessionID, gameID, playerID string, turnNumber, cell int) (*entity.Move, error)
}

type playerUseCase interface {
	SaveUser(ctx context.Context, user *entity.User) error
	SaveBot(ctx context.Context, bot *entity.Bot) error
	GetPublicInfo(ctx context.Context, id string) (*entity.PlayerPublicInfo, error)
}

type Handlers struct {
	logger  *slog.Logger
	games   gameUseCase
	moves   moveUseCase
	players playerUseCase
}

func NewHandlers(logger *slog.Logger, games gameUseCase, moves moveUseCase, players playerUseCase) *Handlers {
	return &Handlers{
		logger:  logger.With("component", "rest_handlers"),
		games:   games,
		moves:   moves,
		players: players,
	}
}

type moveRequest struct {
	PlayerID   string `json:"playerID"`
	TurnNumber int    `json:"turnNumber"`
	Move       int    `json:"move"`
}

func (that *Handlers) StartGame(w http.ResponseWriter, r *http.Request) {
	var setup entity.GameSetup
	if err := decodeBody(w, r, &setup); err != nil {
		that.writeError(w, r, err)
		return
	}

	state, err := that.games.StartGame(r.Context(), chi.URLParam(r, "sessionID"), setup)
	if err != nil {
		that.writeError(w, r, err)
		return
	}

	that.writeJSON(w, http.StatusCreated, state)
}

func (that *Handlers) GetGame(w http.ResponseWriter, r *http.Request) {
	state, err := that.games.GetGame(r.Context(), chi.URLParam(r, "sessionID"), chi.URLParam(r, "gameID"))
	if err != nil {
		that.writeError(w, r, err)
		return
	}

	that.writeJSON(w, http.StatusOK, state)
}

func (that *Handlers) GetTurn(w http.ResponseWriter, r *http.Request) {
	turnNumber, err := strconv.Atoi(chi.URLParam(r, "turnNumber"))
	if err != nil || turnNumber < 0 {
		that.writeError(w, r, fmt.Errorf("%w: turn number must be a non-negative integer", ErrBadRequest))
		return
	}

	turn, err := that.games.GetTurn(r.Context(), chi.URLParam(r, "sessionID"), chi.URLParam(r, "gameID"), turnNumber)
	if err != nil {
		that.writeError(w, r, err)
		return
	}

	that.writeJSON(w, http.StatusOK, turn)
}

func (that *Handlers) SubmitMove(w http.ResponseWriter, r *http.Request) {
	var req moveRequest
	if err := decodeBody(w, r, &req); err != nil {
		that.writeError(w, r, err)
		return
	}

	move, err := that.moves.SubmitMove(
		r.Context(),
		chi.URLParam(r, "sessionID"),
		chi.URLParam(r, "gameID"),
		req.PlayerID,
		req.TurnNumber,
		req.Move,
	)
	if err != nil {
		that.writeError(w, r, err)
		return
	}

	that.writeJSON(w, http.StatusCreated, move)
}

func (that *Handlers) GetPlayer(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "playerID")
	if id == "" {
		id = r.URL.Query().Get("playerID")
	}

	if id == "" {
		that.writeError(w, r, fmt.Errorf("%w: playerID is required", ErrBadRequest))
		return
	}

	info, err := that.players.GetPublicInfo(r.Context(), id)
	if err != nil {
		that.writeError(w, r, err)
		return
	}

	that.writeJSON(w, http.StatusOK, info)
}

func (that *Handlers) SaveUser(w http.ResponseWriter, r *http.Request) {
	var user entity.User
	if err := decodeBody(w, r, &user); err != nil {
		that.writeError(w, r, err)
		return
	}
	user.ID = chi.URLParam(r, "userID")

	if err := that.players.SaveUser(r.Context(), &user); err != nil {
		that.writeError(w, r, err)
		return
	}

	that.writeJSON(w, http.StatusOK, user)
}

func (that *Handlers) SaveBot(w http.ResponseWriter, r *http.Request) {
	var bot entity.Bot
	if err := decodeBody(w, r, &bot); err != nil {
		that.writeError(w, r, err)
		return
	}
	bot.ID = chi.URLParam(r, "botID")

	if err := that.players.SaveBot(r.Context(), &bot); err != nil {
		that.writeError(w, r, err)
		return
	}

	that.writeJSON(w, http.StatusOK, bot)
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(v); err != nil {
		return fmt.Errorf("%w: %w", ErrBadRequest, err)
	}

	return nil
}

func (that *Handlers) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		that.logger.Error("failed to write response", "error", err)
	}
}
