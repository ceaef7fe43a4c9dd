package apperror

import "errors"

// configuration errors, raised when a game starts.
var (
	ErrUnknownGameKind = errors.New("unknown game kind")
	ErrInvalidRoster   = errors.New("invalid player roster")
	ErrInvalidBoard    = errors.New("invalid board dimensions")
)

var (
	ErrGameNotFound        = errors.New("game not found")
	ErrGameAlreadyExists   = errors.New("game already exists")
	ErrGameFinished        = errors.New("game is already finished")
	ErrTurnNotFound        = errors.New("turn not found")
	ErrTurnNotCurrent      = errors.New("turn is not the current turn")
	ErrTurnCeilingExceeded = errors.New("turn number exceeds the sanity ceiling")
	ErrMoveAlreadyRecorded = errors.New("move already recorded for this turn")
	ErrPlayerNotAlive      = errors.New("player is not alive in this turn")
	ErrPlayerNotFound      = errors.New("player not found")
	ErrInvalidPlayer       = errors.New("invalid player")
	ErrBotNotFound         = errors.New("bot not found")
	ErrInvalidTask         = errors.New("invalid task payload")
)

var (
	ErrMalformedBotResponse = errors.New("malformed bot response")
	ErrUnexpectedBotStatus  = errors.New("unexpected bot response status")
)
