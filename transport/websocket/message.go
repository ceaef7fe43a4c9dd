package websocket

import (
	"encoding/json"
	"fmt"

	"github.com/rocketscienceinc/gridgames-backend/internal/entity"
)

const (
	actionState = "game:state"
	actionTurn  = "game:turn"
	actionMove  = "game:move"
)

// Message represents a WebSocket message with an action type and a payload.
type Message struct {
	Action  string          `json:"action"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

type MovePayload struct {
	PlayerID   string `json:"playerID"`
	TurnNumber int    `json:"turnNumber"`
	Move       int    `json:"move"`
}

type ResponsePayload struct {
	GameID string            `json:"gameID,omitempty"`
	Game   *entity.GameState `json:"game,omitempty"`
	Turn   *entity.Turn      `json:"turn,omitempty"`
	Move   *entity.Move      `json:"move,omitempty"`
	Error  string            `json:"error,omitempty"`
}

func newMessage(action string, payload ResponsePayload) (Message, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return Message{}, fmt.Errorf("failed to marshal %s payload: %w", action, err)
	}

	return Message{Action: action, Payload: raw}, nil
}

func errorMessage(action, text string) Message {
	msg, _ := newMessage(action, ResponsePayload{Error: text})
	return msg
}
