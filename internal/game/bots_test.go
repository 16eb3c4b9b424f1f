package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ohadf2015/boggle-new-sub010/internal/constants"
	"github.com/ohadf2015/boggle-new-sub010/internal/dictionary"
)

func TestAddBot_HostOnly(t *testing.T) {
	f := newFixture(t, testConfig(), dictionary.NoArbiter{}, "alice", "bob")

	_, err := f.room.AddBot("bob", BotEasy)
	assert.ErrorIs(t, err, ErrNotHost)
	_, err = f.room.AddBot("ghost", BotEasy)
	assert.ErrorIs(t, err, ErrPlayerNotFound)

	bot, err := f.room.AddBot("alice", BotHard)
	require.NoError(t, err)
	assert.Equal(t, BotHard, bot.Difficulty)
	assert.NotEmpty(t, bot.Username)
	assert.True(t, f.senders["bob"].has(EvtUpdateUsers))

	found := false
	for _, u := range f.room.Players() {
		if u.Username == bot.Username {
			found = true
			assert.True(t, u.IsBot)
			assert.True(t, u.Connected)
		}
	}
	assert.True(t, found, "the bot takes an ordinary seat")
}

func TestAddBot_UnknownDifficultyFallsBackToEasy(t *testing.T) {
	f := newFixture(t, testConfig(), dictionary.NoArbiter{}, "alice")
	bot, err := f.room.AddBot("alice", "nightmare")
	require.NoError(t, err)
	assert.Equal(t, BotEasy, bot.Difficulty)
}

func TestAddBot_CapEnforced(t *testing.T) {
	f := newFixture(t, testConfig(), dictionary.NoArbiter{}, "alice")
	for i := 0; i < constants.MaxBotsPerRoom; i++ {
		_, err := f.room.AddBot("alice", BotEasy)
		require.NoError(t, err)
	}
	_, err := f.room.AddBot("alice", BotEasy)
	assert.ErrorIs(t, err, ErrTooManyBots)
	assert.Len(t, f.room.ListBots(), constants.MaxBotsPerRoom)
}

func TestRemoveBot(t *testing.T) {
	f := newFixture(t, testConfig(), dictionary.NoArbiter{}, "alice", "bob")
	bot, err := f.room.AddBot("alice", BotMedium)
	require.NoError(t, err)

	assert.ErrorIs(t, f.room.RemoveBot("bob", bot.ID), ErrNotHost)
	assert.ErrorIs(t, f.room.RemoveBot("alice", "no-such-bot"), ErrBotNotFound)

	require.NoError(t, f.room.RemoveBot("alice", bot.ID))
	assert.Empty(t, f.room.ListBots())
	for _, u := range f.room.Players() {
		assert.NotEqual(t, bot.Username, u.Username)
	}
}

func TestBotInterval_ScalesWithDifficulty(t *testing.T) {
	assert.Less(t, botInterval(BotHard), botInterval(BotMedium))
	assert.Less(t, botInterval(BotMedium), botInterval(BotEasy))
}

func TestPickBotWord_SkipsWordsAlreadyFound(t *testing.T) {
	f := newFixture(t, testConfig(), dictionary.NoArbiter{}, "alice")
	bot, err := f.room.AddBot("alice", BotEasy)
	require.NoError(t, err)
	f.startRound(t, "alice")

	// Exhaust the pool through the bot's own seat.
	for {
		word, ok := f.room.pickBotWord(bot.Username, BotEasy)
		if !ok {
			break
		}
		res, err := f.room.SubmitWord(bot.Username, word)
		require.NoError(t, err)
		require.Equal(t, WordAccepted, res.Outcome, "the pool only holds words on the board and in the dictionary")
	}
	assert.NotEmpty(t, f.room.FoundWords(bot.Username))

	_, ok := f.room.pickBotWord(bot.Username, BotHard)
	assert.False(t, ok, "an exhausted pool yields nothing at any difficulty")
}
