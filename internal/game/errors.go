package game

import "errors"

var (
	ErrRoomExists        = errors.New("room already exists")
	ErrRoomNotFound      = errors.New("room not found")
	ErrRoomFull          = errors.New("room full")
	ErrDuplicateUsername = errors.New("username already taken")
	ErrPlayerNotFound    = errors.New("player not found")
	ErrNotHost           = errors.New("caller is not the host")
	ErrGameInProgress    = errors.New("game already in progress")
	ErrInvalidTransition = errors.New("invalid phase transition")
	ErrNoTournament      = errors.New("no tournament in this room")
	ErrTournamentDone    = errors.New("tournament already complete")
	ErrSessionExpired    = errors.New("session expired")
	ErrBotNotFound       = errors.New("bot not found")
	ErrTooManyBots       = errors.New("bot limit reached")
)
