package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ohadf2015/boggle-new-sub010/internal/config"
	"github.com/ohadf2015/boggle-new-sub010/internal/constants"
	"github.com/ohadf2015/boggle-new-sub010/internal/dictionary"
	"github.com/ohadf2015/boggle-new-sub010/internal/game"
	"github.com/ohadf2015/boggle-new-sub010/internal/profile"
	"github.com/ohadf2015/boggle-new-sub010/internal/ratelimit"
)

type nullSender struct{}

func (nullSender) Send(string, any) {}

func newTestRouter(t *testing.T) (*gin.Engine, *game.Registry) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	cfg := &config.Config{
		ReconnectGrace:     time.Minute,
		HostMigrationGrace: time.Minute,
		VoteDeadline:       time.Second,
	}
	reg := game.NewRegistry(cfg, dictionary.NewStatic(), dictionary.NoArbiter{}, nil)
	gate := ratelimit.NewGate(100, 100, 10*time.Second, time.Minute, time.Hour)
	h := New(cfg, reg, gate, profile.NewClient("", ""))

	router := gin.New()
	h.Register(router)
	return router, reg
}

func TestHealthzHandler(t *testing.T) {
	router, reg := newTestRouter(t)
	_, err := reg.CreateRoom("ROOM01", "alice", "conn-1", nullSender{}, game.RoomOptions{})
	require.NoError(t, err)
	t.Cleanup(func() { reg.DeleteRoom("ROOM01") })

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, float64(1), body["rooms"])
	assert.NotEmpty(t, body["uptime"])
}

func TestRoomsHandler(t *testing.T) {
	router, reg := newTestRouter(t)
	_, err := reg.CreateRoom("ROOM01", "alice", "conn-1", nullSender{}, game.RoomOptions{DisplayName: "friday night"})
	require.NoError(t, err)
	t.Cleanup(func() { reg.DeleteRoom("ROOM01") })

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/rooms", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var body struct {
		Rooms []struct {
			GameCode   string `json:"gameCode"`
			RoomName   string `json:"roomName"`
			Phase      string `json:"phase"`
			Players    int    `json:"players"`
			MaxPlayers int    `json:"maxPlayers"`
		} `json:"rooms"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Len(t, body.Rooms, 1)
	assert.Equal(t, "ROOM01", body.Rooms[0].GameCode)
	assert.Equal(t, "friday night", body.Rooms[0].RoomName)
	assert.Equal(t, "waiting", body.Rooms[0].Phase)
	assert.Equal(t, 1, body.Rooms[0].Players)
}

func TestRoomCodePattern(t *testing.T) {
	valid := []string{"ABCD", "ROOM01", "12345678"}
	for _, code := range valid {
		assert.True(t, roomCodePattern.MatchString(code), "code %q", code)
	}
	invalid := []string{"", "abc", "ab!", "TOOLONGCODE", "lower1"}
	for _, code := range invalid {
		assert.False(t, roomCodePattern.MatchString(code), "code %q", code)
	}
}

func TestGenerateRoomCode(t *testing.T) {
	for i := 0; i < 10; i++ {
		code := generateRoomCode()
		assert.Len(t, code, constants.RoomCodeLength)
		assert.True(t, roomCodePattern.MatchString(code), "code %q", code)
	}
}

func TestValidUsername(t *testing.T) {
	assert.True(t, validUsername("alice"))
	assert.False(t, validUsername(""))
	assert.False(t, validUsername("this-username-is-way-too-long-to-accept"))
}
