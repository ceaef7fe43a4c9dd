package websocket

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rocketscienceinc/gridgames-backend/transport/rest"
)

func (that *Server) handleState(ctx context.Context, c *client, msg *Message) error {
	state, err := that.games.GetGame(ctx, c.key.sessionID, c.key.gameID)
	if err != nil {
		return err
	}

	response, err := newMessage(msg.Action, ResponsePayload{GameID: c.key.gameID, Game: state})
	if err != nil {
		return err
	}

	c.enqueue(response)

	return nil
}

func (that *Server) handleMove(ctx context.Context, c *client, msg *Message) error {
	var payload MovePayload
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		return fmt.Errorf("%w: %w", rest.ErrBadRequest, err)
	}

	move, err := that.moves.SubmitMove(ctx, c.key.sessionID, c.key.gameID, payload.PlayerID, payload.TurnNumber, payload.Move)
	if err != nil {
		return err
	}

	response, err := newMessage(msg.Action, ResponsePayload{GameID: c.key.gameID, Move: move})
	if err != nil {
		return err
	}

	c.enqueue(response)

	return nil
}
