package transport

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecode_TypedPayloads(t *testing.T) {
	cases := []struct {
		name string
		raw  string
		want Inbound
	}{
		{
			"createGame",
			`{"type":"createGame","data":{"gameCode":"ABC123","roomName":"friday","language":"en","hostUsername":"alice","avatar":"cat"}}`,
			CreateGame{GameCode: "ABC123", RoomName: "friday", Language: "en", HostUsername: "alice", Avatar: "cat"},
		},
		{
			"join",
			`{"type":"join","data":{"gameCode":"ABC123","username":"bob"}}`,
			Join{GameCode: "ABC123", Username: "bob"},
		},
		{
			"rejoin carries the guest token",
			`{"type":"rejoin","data":{"gameCode":"ABC123","username":"bob","guestToken":"tok"}}`,
			Rejoin{GameCode: "ABC123", Username: "bob", GuestToken: "tok"},
		},
		{
			"submitWord",
			`{"type":"submitWord","data":{"word":"cat","comboLevel":3}}`,
			SubmitWord{Word: "cat", ComboLevel: 3},
		},
		{
			"submitWordVote",
			`{"type":"submitWordVote","data":{"word":"cax","voteType":"valid"}}`,
			SubmitWordVote{Word: "cax", VoteType: "valid"},
		},
		{
			"startGame",
			`{"type":"startGame","data":{"letterGrid":[["a","b"],["c","d"]],"timerSeconds":90,"minWordLength":3}}`,
			StartGame{LetterGrid: [][]string{{"a", "b"}, {"c", "d"}}, TimerSeconds: 90, MinWordLength: 3},
		},
		{
			"startTournamentRound embeds the round options",
			`{"type":"startTournamentRound","data":{"timerSeconds":60}}`,
			StartTournamentRound{StartGame: StartGame{TimerSeconds: 60}},
		},
		{
			"addBot",
			`{"type":"addBot","data":{"difficulty":"hard"}}`,
			AddBot{Difficulty: "hard"},
		},
		{
			"presenceHeartbeat",
			`{"type":"presenceHeartbeat","data":{"isWindowFocused":false}}`,
			PresenceHeartbeat{IsWindowFocused: false},
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Decode([]byte(tc.raw))
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestDecode_EmptyDataMessages(t *testing.T) {
	got, err := Decode([]byte(`{"type":"leave"}`))
	require.NoError(t, err)
	assert.Equal(t, Leave{}, got)

	got, err = Decode([]byte(`{"type":"getActiveRooms"}`))
	require.NoError(t, err)
	assert.Equal(t, GetActiveRooms{}, got)
}

func TestDecode_HostReactivateAlias(t *testing.T) {
	got, err := Decode([]byte(`{"type":"hostReactivate"}`))
	require.NoError(t, err)
	assert.Equal(t, HostKeepAlive{}, got)

	got, err = Decode([]byte(`{"type":"hostKeepAlive"}`))
	require.NoError(t, err)
	assert.Equal(t, HostKeepAlive{}, got)
}

func TestDecode_Malformed(t *testing.T) {
	_, err := Decode([]byte(`{"type":"teleport"}`))
	assert.ErrorContains(t, err, "unknown message type")

	_, err = Decode([]byte(`not json`))
	assert.ErrorContains(t, err, "malformed envelope")

	_, err = Decode([]byte(`{"type":"submitWord","data":{"word":5}}`))
	assert.ErrorContains(t, err, "malformed payload")
}
