package game

import (
	"math/rand"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"

	"github.com/ohadf2015/boggle-new-sub010/internal/constants"
	"github.com/ohadf2015/boggle-new-sub010/internal/util"
)

const (
	BotEasy   = "easy"
	BotMedium = "medium"
	BotHard   = "hard"
)

// Bot is a synthetic player that submits words on a difficulty-scaled timer.
// It goes through the ordinary submission pipeline; there is no scoring
// shortcut.
type Bot struct {
	ID                   string
	Username             string
	Difficulty           string
	Avatar               string
	SubmissionIntervalMs int

	stop chan struct{}
}

func botInterval(difficulty string) time.Duration {
	switch difficulty {
	case BotHard:
		return 5 * time.Second
	case BotMedium:
		return 8 * time.Second
	default:
		return 12 * time.Second
	}
}

// AddBot seats a bot in the room. Host only.
func (r *Room) AddBot(requestedBy, difficulty string) (*Bot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	caller, ok := r.players[requestedBy]
	if !ok {
		return nil, ErrPlayerNotFound
	}
	if !caller.IsHost {
		return nil, ErrNotHost
	}
	if len(r.bots) >= constants.MaxBotsPerRoom {
		return nil, ErrTooManyBots
	}
	if len(r.players) >= constants.MaxPlayersPerRoom {
		return nil, ErrRoomFull
	}
	if difficulty != BotEasy && difficulty != BotMedium && difficulty != BotHard {
		difficulty = BotEasy
	}

	id := uuid.NewString()
	bot := &Bot{
		ID:                   id,
		Username:             "Bot-" + id[:8],
		Difficulty:           difficulty,
		Avatar:               "robot",
		SubmissionIntervalMs: int(botInterval(difficulty).Milliseconds()),
	}
	p := r.addPlayerLocked(bot.Username, "", nil, RoomOptions{Avatar: bot.Avatar}, false)
	p.IsBot = true
	p.Connected = true
	r.bots = append(r.bots, bot)

	if r.phase == PhaseInProgress {
		r.startBotLocked(bot)
	}
	r.broadcast(EvtUpdateUsers, map[string]any{"users": r.userSummaries()})
	util.LogInfo("Room %s added %s bot %s", r.Code, difficulty, bot.Username)
	return bot, nil
}

// RemoveBot tears down one bot. Host only.
func (r *Room) RemoveBot(requestedBy, botID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	caller, ok := r.players[requestedBy]
	if !ok {
		return ErrPlayerNotFound
	}
	if !caller.IsHost {
		return ErrNotHost
	}
	bot, found := lo.Find(r.bots, func(b *Bot) bool { return b.ID == botID })
	if !found {
		return ErrBotNotFound
	}
	if bot.stop != nil {
		close(bot.stop)
		bot.stop = nil
	}
	r.bots = lo.Without(r.bots, bot)
	delete(r.players, bot.Username)
	delete(r.scores, bot.Username)
	delete(r.foundWords, bot.Username)
	r.broadcast(EvtUpdateUsers, map[string]any{"users": r.userSummaries()})
	return nil
}

// ListBots returns copies of the room's bots.
func (r *Room) ListBots() []Bot {
	r.mu.Lock()
	defer r.mu.Unlock()
	bots := make([]Bot, 0, len(r.bots))
	for _, b := range r.bots {
		bots = append(bots, Bot{
			ID:                   b.ID,
			Username:             b.Username,
			Difficulty:           b.Difficulty,
			Avatar:               b.Avatar,
			SubmissionIntervalMs: b.SubmissionIntervalMs,
		})
	}
	return bots
}

// startBotTimersLocked launches submission loops for every bot at round
// start. Requires r.mu.
func (r *Room) startBotTimersLocked() {
	for _, bot := range r.bots {
		r.startBotLocked(bot)
	}
}

func (r *Room) startBotLocked(bot *Bot) {
	if bot.stop != nil {
		return
	}
	stop := make(chan struct{})
	bot.stop = stop
	go r.runBot(bot.Username, bot.Difficulty, stop)
}

func (r *Room) stopBotTimersLocked() {
	for _, bot := range r.bots {
		if bot.stop != nil {
			close(bot.stop)
			bot.stop = nil
		}
	}
}

func (r *Room) runBot(username, difficulty string, stop chan struct{}) {
	ticker := time.NewTicker(botInterval(difficulty))
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			word, ok := r.pickBotWord(username, difficulty)
			if !ok {
				continue
			}
			if _, err := r.SubmitWord(username, word); err != nil {
				return
			}
		}
	}
}

// pickBotWord draws from the precomputed words-on-this-grid set, skipping
// words the bot already has. Higher difficulties lean toward the longer
// still-unsubmitted words.
func (r *Room) pickBotWord(username, difficulty string) (string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.phase != PhaseInProgress {
		return "", false
	}
	candidates := lo.Filter(r.botWords, func(w string, _ int) bool {
		_, found := r.foundWords[username][w]
		return !found
	})
	if len(candidates) == 0 {
		return "", false
	}
	switch difficulty {
	case BotHard:
		sort.Slice(candidates, func(i, j int) bool { return len(candidates[i]) > len(candidates[j]) })
		top := len(candidates) / 4
		if top < 1 {
			top = 1
		}
		return candidates[rand.Intn(top)], true
	case BotMedium:
		sort.Slice(candidates, func(i, j int) bool { return len(candidates[i]) > len(candidates[j]) })
		top := len(candidates) / 2
		if top < 1 {
			top = 1
		}
		return candidates[rand.Intn(top)], true
	default:
		return candidates[rand.Intn(len(candidates))], true
	}
}
