package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ohadf2015/boggle-new-sub010/internal/dictionary"
)

func TestCreateTournament_Guards(t *testing.T) {
	f := newFixture(t, testConfig(), dictionary.NoArbiter{}, "alice", "bob")

	_, err := f.room.CreateTournament("bob", "cup", 2)
	assert.ErrorIs(t, err, ErrNotHost)

	f.startRound(t, "alice")
	_, err = f.room.CreateTournament("alice", "cup", 2)
	assert.ErrorIs(t, err, ErrGameInProgress, "tournaments only start from a waiting room")
}

func TestTournament_StandingsAccumulateAcrossRounds(t *testing.T) {
	f := newFixture(t, testConfig(), dictionary.NoArbiter{}, "alice", "bob")

	tour, err := f.room.CreateTournament("alice", "cup", 2)
	require.NoError(t, err)
	assert.Equal(t, TournamentCreated, tour.Status)
	assert.True(t, f.senders["bob"].has(EvtTournamentCreated))

	// Round one: alice finds cat, bob finds tex.
	require.NoError(t, f.room.StartNextRound("alice", StartOptions{Grid: testGrid(), MinWordLength: 3}))
	_, err = f.room.SubmitWord("alice", "cat")
	require.NoError(t, err)
	_, err = f.room.SubmitWord("bob", "tex")
	require.NoError(t, err)
	require.NoError(t, f.room.EndGame(EventEnd))

	standings, err := f.room.Standings()
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"alice": 2, "bob": 2}, standings)
	assert.True(t, f.senders["alice"].has(EvtTournamentRoundDone))

	// Round two: only alice scores; the totals fold together.
	require.NoError(t, f.room.StartNextRound("alice", StartOptions{Grid: testGrid(), MinWordLength: 3}))
	_, err = f.room.SubmitWord("alice", "tax")
	require.NoError(t, err)
	require.NoError(t, f.room.EndGame(EventEnd))

	standings, err = f.room.Standings()
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"alice": 4, "bob": 2}, standings)
	assert.True(t, f.senders["bob"].has(EvtTournamentComplete))

	assert.ErrorIs(t, f.room.StartNextRound("alice", StartOptions{Grid: testGrid()}), ErrTournamentDone)
}

func TestTournament_StartNextRoundRequiresTournament(t *testing.T) {
	f := newFixture(t, testConfig(), dictionary.NoArbiter{}, "alice")
	assert.ErrorIs(t, f.room.StartNextRound("alice", StartOptions{Grid: testGrid()}), ErrNoTournament)
}

func TestTournament_Cancel(t *testing.T) {
	f := newFixture(t, testConfig(), dictionary.NoArbiter{}, "alice", "bob")
	_, err := f.room.CreateTournament("alice", "cup", 3)
	require.NoError(t, err)

	assert.ErrorIs(t, f.room.CancelTournament("bob"), ErrNotHost)
	require.NoError(t, f.room.CancelTournament("alice"))
	assert.True(t, f.senders["bob"].has(EvtTournamentCancelled))

	_, err = f.room.Standings()
	assert.ErrorIs(t, err, ErrNoTournament)
	assert.ErrorIs(t, f.room.CancelTournament("alice"), ErrNoTournament)
}

func TestTournament_PlainRoundsLeaveStandingsAlone(t *testing.T) {
	f := newFixture(t, testConfig(), dictionary.NoArbiter{}, "alice")
	f.startRound(t, "alice")
	_, err := f.room.SubmitWord("alice", "cat")
	require.NoError(t, err)
	require.NoError(t, f.room.EndGame(EventEnd))

	_, err = f.room.Standings()
	assert.ErrorIs(t, err, ErrNoTournament, "rounds outside a tournament never create standings")
}
