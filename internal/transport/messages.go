package transport

import (
	"encoding/json"
	"fmt"
)

// envelope is the raw shape of every client message.
type envelope struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

// Inbound is the closed set of client message kinds. Every concrete payload
// implements the marker, so dispatch is an exhaustive type switch and adding
// a kind is a compile-time-checked change.
type Inbound interface {
	isInbound()
}

type CreateGame struct {
	GameCode     string `json:"gameCode"`
	RoomName     string `json:"roomName"`
	Language     string `json:"language"`
	HostUsername string `json:"hostUsername"`
	Avatar       string `json:"avatar"`
}

type Join struct {
	GameCode string `json:"gameCode"`
	Username string `json:"username"`
	Avatar   string `json:"avatar"`
}

type Rejoin struct {
	GameCode   string `json:"gameCode"`
	Username   string `json:"username"`
	GuestToken string `json:"guestToken"`
}

type Leave struct{}

type StartGame struct {
	LetterGrid    [][]string `json:"letterGrid"`
	TimerSeconds  int        `json:"timerSeconds"`
	Language      string     `json:"language"`
	MinWordLength int        `json:"minWordLength"`
}

type EndGame struct{}

type SubmitWord struct {
	Word       string `json:"word"`
	ComboLevel int    `json:"comboLevel"`
}

type SubmitWordVote struct {
	Word     string `json:"word"`
	VoteType string `json:"voteType"`
}

type AddBot struct {
	Difficulty string `json:"difficulty"`
}

type RemoveBot struct {
	BotID string `json:"botId"`
}

type CreateTournament struct {
	Name        string `json:"name"`
	TotalRounds int    `json:"totalRounds"`
}

type StartTournamentRound struct {
	StartGame
}

type CancelTournament struct{}

type PresenceHeartbeat struct {
	IsWindowFocused bool `json:"isWindowFocused"`
}

type HostKeepAlive struct{}

type GetActiveRooms struct{}

func (CreateGame) isInbound()           {}
func (Join) isInbound()                 {}
func (Rejoin) isInbound()               {}
func (Leave) isInbound()                {}
func (StartGame) isInbound()            {}
func (EndGame) isInbound()              {}
func (SubmitWord) isInbound()           {}
func (SubmitWordVote) isInbound()       {}
func (AddBot) isInbound()               {}
func (RemoveBot) isInbound()            {}
func (CreateTournament) isInbound()     {}
func (StartTournamentRound) isInbound() {}
func (CancelTournament) isInbound()     {}
func (PresenceHeartbeat) isInbound()    {}
func (HostKeepAlive) isInbound()        {}
func (GetActiveRooms) isInbound()       {}

// Decode parses one raw client frame into its typed message.
func Decode(raw []byte) (Inbound, error) {
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("malformed envelope: %w", err)
	}
	var (
		msg Inbound
		err error
	)
	switch env.Type {
	case "createGame":
		msg, err = decodeAs[CreateGame](env.Data)
	case "join":
		msg, err = decodeAs[Join](env.Data)
	case "rejoin":
		msg, err = decodeAs[Rejoin](env.Data)
	case "leave":
		msg, err = decodeAs[Leave](env.Data)
	case "startGame":
		msg, err = decodeAs[StartGame](env.Data)
	case "endGame":
		msg, err = decodeAs[EndGame](env.Data)
	case "submitWord":
		msg, err = decodeAs[SubmitWord](env.Data)
	case "submitWordVote":
		msg, err = decodeAs[SubmitWordVote](env.Data)
	case "addBot":
		msg, err = decodeAs[AddBot](env.Data)
	case "removeBot":
		msg, err = decodeAs[RemoveBot](env.Data)
	case "createTournament":
		msg, err = decodeAs[CreateTournament](env.Data)
	case "startTournamentRound":
		msg, err = decodeAs[StartTournamentRound](env.Data)
	case "cancelTournament":
		msg, err = decodeAs[CancelTournament](env.Data)
	case "presenceHeartbeat":
		msg, err = decodeAs[PresenceHeartbeat](env.Data)
	case "hostKeepAlive", "hostReactivate":
		msg, err = decodeAs[HostKeepAlive](env.Data)
	case "getActiveRooms":
		msg, err = decodeAs[GetActiveRooms](env.Data)
	default:
		return nil, fmt.Errorf("unknown message type %q", env.Type)
	}
	return msg, err
}

func decodeAs[T Inbound](data json.RawMessage) (T, error) {
	var payload T
	if len(data) == 0 {
		return payload, nil
	}
	if err := json.Unmarshal(data, &payload); err != nil {
		return payload, fmt.Errorf("malformed payload: %w", err)
	}
	return payload, nil
}
