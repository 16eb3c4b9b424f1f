package models

// Wire-facing shapes shared by the game core and the websocket handlers.

type UserSummary struct {
	Username       string `json:"username"`
	Avatar         string `json:"avatar"`
	IsHost         bool   `json:"isHost"`
	IsBot          bool   `json:"isBot"`
	Connected      bool   `json:"connected"`
	PresenceStatus string `json:"presenceStatus"`
	Score          int    `json:"score"`
}

type LeaderboardEntry struct {
	Username string `json:"username"`
	Score    int    `json:"score"`
	Words    int    `json:"words"`
}

// WordResult is one row of the end-of-round results payload.
type WordResult struct {
	Word        string `json:"word"`
	Username    string `json:"username"`
	Score       int    `json:"score"`
	IsDuplicate bool   `json:"isDuplicate"`
	IsValid     bool   `json:"isValid"`
}

type RoomSnapshot struct {
	GameCode     string              `json:"gameCode"`
	DisplayName  string              `json:"roomName"`
	Language     string              `json:"language"`
	Phase        string              `json:"phase"`
	Round        int                 `json:"round"`
	Grid         [][]string          `json:"letterGrid,omitempty"`
	TimerSeconds int                 `json:"timerSeconds"`
	MinWordLen   int                 `json:"minWordLength"`
	RemainingMs  int64               `json:"remainingMs"`
	Users        []UserSummary       `json:"users"`
	Scores       map[string]int      `json:"scores"`
	FoundWords   map[string][]string `json:"foundWords"`
}

// RoomDescription is the lightweight listing entry for getActiveRooms.
type RoomDescription struct {
	GameCode    string `json:"gameCode"`
	DisplayName string `json:"roomName"`
	Language    string `json:"language"`
	Phase       string `json:"phase"`
	Players     int    `json:"players"`
	MaxPlayers  int    `json:"maxPlayers"`
}

type Achievement struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

// FinalPlayerStats is what gets pushed to the profile service after a game.
type FinalPlayerStats struct {
	Username   string   `json:"username"`
	AuthUserID string   `json:"authUserId,omitempty"`
	Score      int      `json:"score"`
	Words      []string `json:"words"`
	Round      int      `json:"round"`
	GameCode   string   `json:"gameCode"`
}
