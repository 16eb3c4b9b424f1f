package game

import (
	"sort"
	"sync"
	"time"

	"github.com/samber/lo"

	"github.com/ohadf2015/boggle-new-sub010/internal/config"
	"github.com/ohadf2015/boggle-new-sub010/internal/constants"
	"github.com/ohadf2015/boggle-new-sub010/internal/dictionary"
	"github.com/ohadf2015/boggle-new-sub010/internal/grid"
	"github.com/ohadf2015/boggle-new-sub010/internal/models"
	"github.com/ohadf2015/boggle-new-sub010/internal/util"
)

// Sender delivers one server event to one client connection. Implemented by
// the websocket layer; nil for bots and disconnected players.
type Sender interface {
	Send(event string, payload any)
}

// StatsSink receives final per-player results. The room never blocks on it.
type StatsSink interface {
	PushStats(stats []models.FinalPlayerStats)
}

// Server -> client event names.
const (
	EvtJoined              = "joined"
	EvtError               = "error"
	EvtUpdateUsers         = "updateUsers"
	EvtStartGame           = "startGame"
	EvtGameEnded           = "gameEnded"
	EvtWordAccepted        = "wordAccepted"
	EvtWordRejected        = "wordRejected"
	EvtWordAlreadyFound    = "wordAlreadyFound"
	EvtWordNotOnBoard      = "wordNotOnBoard"
	EvtWordNeedsValidation = "wordNeedsValidation"
	EvtWordBecameValid     = "wordBecameValid"
	EvtValidationComplete  = "validationComplete"
	EvtUpdateLeaderboard   = "updateLeaderboard"
	EvtAchievement         = "liveAchievementUnlocked"
	EvtTournamentCreated   = "tournamentCreated"
	EvtTournamentRound     = "tournamentRoundStarting"
	EvtTournamentRoundDone = "tournamentRoundCompleted"
	EvtTournamentComplete  = "tournamentComplete"
	EvtTournamentCancelled = "tournamentCancelled"
	EvtHostTransferred     = "hostTransferred"
	EvtHostDisconnected    = "hostDisconnected"
	EvtHostLeftRoomClosing = "hostLeftRoomClosing"
	EvtPlayerDisconnected  = "playerDisconnected"
	EvtPlayerReconnected   = "playerReconnected"
	EvtPlayerLeft          = "playerLeft"
	EvtRateLimited         = "rateLimited"
)

// wordEntry tracks one word one player found this round.
type wordEntry struct {
	score     int
	valid     bool
	pending   bool
	duplicate bool
}

// Player is a seat in a room. It survives disconnects; only an explicit leave
// or room deletion removes it.
type Player struct {
	Username        string
	ConnectionID    string
	AuthUserID      string
	Avatar          string
	IsHost          bool
	IsBot           bool
	Connected       bool
	IsWindowFocused bool
	LastHeartbeatAt time.Time
	LastActivityAt  time.Time
	DisconnectedAt  time.Time
	JoinedAt        time.Time
	joinOrder       int

	comboLevel int
	lastWordAt time.Time

	sender Sender
}

// Room owns one isolated play session. All mutation goes through methods that
// hold mu, so concurrent submissions against the same room apply in arrival
// order.
type Room struct {
	mu sync.Mutex

	Code         string
	DisplayName  string
	Language     string
	HostUsername string

	phase         Phase
	grid          grid.Grid
	timerSeconds  int
	minWordLength int
	startedAt     time.Time
	endedAt       time.Time
	lastActivity  time.Time
	round         int

	players     map[string]*Player
	joinCounter int
	scores      map[string]int
	foundWords  map[string]map[string]*wordEntry

	bots       []*Bot
	botWords   []string
	tournament *Tournament
	pending    []*PendingWord

	roundTimer    *time.Timer
	migrationTmr  *time.Timer
	migrationOpen bool

	cfg     *config.Config
	dict    dictionary.Lookup
	arbiter dictionary.Arbiter
	stats   StatsSink

	// set by the registry so timer callbacks can request deletion
	onEmpty func(code string)
}

type RoomOptions struct {
	DisplayName string
	Language    string
	Avatar      string
	AuthUserID  string
}

func newRoom(code string, opts RoomOptions, cfg *config.Config, dict dictionary.Lookup, arbiter dictionary.Arbiter, stats StatsSink) *Room {
	lang := opts.Language
	if lang == "" {
		lang = "en"
	}
	return &Room{
		Code:          code,
		DisplayName:   opts.DisplayName,
		Language:      lang,
		phase:         PhaseWaiting,
		timerSeconds:  constants.DefaultTimerSecs,
		minWordLength: constants.DefaultMinWordLen,
		lastActivity:  time.Now(),
		players:       make(map[string]*Player),
		scores:        make(map[string]int),
		foundWords:    make(map[string]map[string]*wordEntry),
		cfg:           cfg,
		dict:          dict,
		arbiter:       arbiter,
		stats:         stats,
	}
}

func (r *Room) Phase() Phase {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.phase
}

func (r *Room) Round() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.round
}

func (r *Room) LastActivity() time.Time {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.lastActivity
}

func (r *Room) touch() {
	r.lastActivity = time.Now()
}

// broadcast sends an event to every connected player. Callers must hold mu;
// delivery itself is non-blocking (senders buffer internally).
func (r *Room) broadcast(event string, payload any) {
	for _, p := range r.players {
		if p.Connected && p.sender != nil {
			p.sender.Send(event, payload)
		}
	}
}

func (r *Room) sendTo(username, event string, payload any) {
	p, ok := r.players[username]
	if !ok || !p.Connected || p.sender == nil {
		return
	}
	p.sender.Send(event, payload)
}

func (r *Room) userSummaries() []models.UserSummary {
	now := time.Now()
	users := lo.MapToSlice(r.players, func(_ string, p *Player) models.UserSummary {
		return models.UserSummary{
			Username:       p.Username,
			Avatar:         p.Avatar,
			IsHost:         p.IsHost,
			IsBot:          p.IsBot,
			Connected:      p.Connected,
			PresenceStatus: presenceStatusAt(p, now, r.cfg),
			Score:          r.scores[p.Username],
		}
	})
	sort.Slice(users, func(i, j int) bool { return users[i].Username < users[j].Username })
	return users
}

func (r *Room) leaderboard() []models.LeaderboardEntry {
	entries := lo.MapToSlice(r.scores, func(username string, s int) models.LeaderboardEntry {
		return models.LeaderboardEntry{Username: username, Score: s, Words: len(r.foundWords[username])}
	})
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Score != entries[j].Score {
			return entries[i].Score > entries[j].Score
		}
		return entries[i].Username < entries[j].Username
	})
	return entries
}

// snapshot assembles the full replay payload for joins and reconnects.
// Callers must hold mu.
func (r *Room) snapshot() models.RoomSnapshot {
	var remaining int64
	if r.phase == PhaseInProgress && !r.startedAt.IsZero() {
		deadline := r.startedAt.Add(time.Duration(r.timerSeconds) * time.Second)
		if ms := time.Until(deadline).Milliseconds(); ms > 0 {
			remaining = ms
		}
	}
	found := make(map[string][]string, len(r.foundWords))
	for username, words := range r.foundWords {
		list := lo.Keys(words)
		sort.Strings(list)
		found[username] = list
	}
	var cells [][]string
	if r.phase == PhaseInProgress {
		cells = r.grid
	}
	return models.RoomSnapshot{
		GameCode:     r.Code,
		DisplayName:  r.DisplayName,
		Language:     r.Language,
		Phase:        r.phase.String(),
		Round:        r.round,
		Grid:         cells,
		TimerSeconds: r.timerSeconds,
		MinWordLen:   r.minWordLength,
		RemainingMs:  remaining,
		Users:        r.userSummaries(),
		Scores:       lo.Assign(map[string]int{}, r.scores),
		FoundWords:   found,
	}
}

func (r *Room) description() models.RoomDescription {
	return models.RoomDescription{
		GameCode:    r.Code,
		DisplayName: r.DisplayName,
		Language:    r.Language,
		Phase:       r.phase.String(),
		Players:     len(r.players),
		MaxPlayers:  constants.MaxPlayersPerRoom,
	}
}

// StartOptions carries the host-supplied round parameters.
type StartOptions struct {
	Grid          [][]string
	TimerSeconds  int
	Language      string
	MinWordLength int
}

// StartGame applies the START transition: stamps startedAt, resets per-round
// word and score state, increments the round, and snapshots the grid and
// timer supplied by the host.
func (r *Room) StartGame(username string, opts StartOptions) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.startGameLocked(username, opts)
}

func (r *Room) startGameLocked(username string, opts StartOptions) error {
	p, ok := r.players[username]
	if !ok {
		return ErrPlayerNotFound
	}
	if !p.IsHost {
		return ErrNotHost
	}
	next, err := nextPhase(r.phase, EventStart)
	if err != nil {
		return err
	}

	if len(opts.Grid) == 0 {
		opts.Grid = grid.Generate(constants.DefaultGridSize)
	}
	if opts.TimerSeconds > 0 {
		r.timerSeconds = opts.TimerSeconds
	}
	if opts.MinWordLength > 0 {
		r.minWordLength = opts.MinWordLength
	}
	if opts.Language != "" {
		r.Language = opts.Language
	}

	r.phase = next
	r.grid = grid.New(opts.Grid)
	r.startedAt = time.Now()
	r.endedAt = time.Time{}
	r.round++
	r.scores = make(map[string]int)
	r.foundWords = make(map[string]map[string]*wordEntry)
	r.pending = nil
	for _, pl := range r.players {
		pl.comboLevel = 0
		pl.lastWordAt = time.Time{}
	}
	r.touch()

	r.botWords = r.grid.Solve(r.dict, r.Language, r.minWordLength, constants.MaxWordLength)
	r.startBotTimersLocked()

	if r.roundTimer != nil {
		r.roundTimer.Stop()
	}
	r.roundTimer = time.AfterFunc(time.Duration(r.timerSeconds)*time.Second, func() {
		if err := r.EndGame(EventTimeout); err != nil {
			util.LogWarn("Round timeout for room %s ignored: %v", r.Code, err)
		}
	})

	r.broadcast(EvtStartGame, map[string]any{
		"letterGrid":    opts.Grid,
		"timerSeconds":  r.timerSeconds,
		"minWordLength": r.minWordLength,
		"round":         r.round,
	})
	util.LogInfo("Room %s round %d started (%d bot words on grid)", r.Code, r.round, len(r.botWords))
	return nil
}

// EndGame applies END or TIMEOUT: stamps endedAt and freezes submissions,
// then runs duplicate arbitration and either enters validation or loops back
// to waiting when nothing is left to validate.
func (r *Room) EndGame(event LifecycleEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.endGameLocked(event)
}

func (r *Room) endGameLocked(event LifecycleEvent) error {
	next, err := nextPhase(r.phase, event)
	if err != nil {
		return err
	}
	r.phase = next
	r.endedAt = time.Now()
	r.touch()
	if r.roundTimer != nil {
		r.roundTimer.Stop()
		r.roundTimer = nil
	}
	r.stopBotTimersLocked()

	results := r.arbitrateDuplicatesLocked()
	r.broadcast(EvtGameEnded, map[string]any{
		"results":     results,
		"leaderboard": r.leaderboard(),
	})

	if len(r.pending) > 0 {
		if next, err := nextPhase(r.phase, EventValidate); err == nil {
			r.phase = next
		}
		return nil
	}
	return r.completeRoundLocked(EventSkipValidation)
}

/// completeRoundLocked closes out the round: tournament standings accumulate,
// final stats go to the profile service, and timestamps clear for the next
// round.
func (r *Room) completeRoundLocked(event LifecycleEvent) error {
	next, err := nextPhase(r.phase, event)
	if err != nil {
		return err
	}
	r.phase = next

	// Words validated after the round ended can collide with each other;
	// settle duplicates again before the final scores go out.
	r.arbitrateDuplicatesLocked()

	if r.tournament != nil {
		r.accumulateStandingsLocked()
	}
	r.pushFinalStatsLocked()

	r.startedAt = time.Time{}
	r.endedAt = time.Time{}
	r.broadcast(EvtValidationComplete, map[string]any{"scores": lo.Assign(map[string]int{}, r.scores)})
	return nil
}

// Reset applies RESET from the finished phase without validation.
func (r *Room) Reset(username string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.players[username]
	if !ok {
		return ErrPlayerNotFound
	}
	if !p.IsHost {
		return ErrNotHost
	}
	return r.completeRoundLocked(EventReset)
}

func (r *Room) pushFinalStatsLocked() {
	if r.stats == nil {
		return
	}
	all := make([]models.FinalPlayerStats, 0, len(r.players))
	for username, p := range r.players {
		if p.IsBot {
			continue
		}
		words := lo.Keys(r.foundWords[username])
		sort.Strings(words)
		all = append(all, models.FinalPlayerStats{
			Username:   username,
			AuthUserID: p.AuthUserID,
			Score:      r.scores[username],
			Words:      words,
			Round:      r.round,
			GameCode:   r.Code,
		})
	}
	// Fire and forget; the profile service must never block the room.
	go r.stats.PushStats(all)
}

func (r *Room) connectedHumansLocked() []*Player {
	return lo.Filter(lo.Values(r.players), func(p *Player, _ int) bool {
		return p.Connected && !p.IsBot
	})
}

// NotifyClosing tells every member the room is going away. Used when an
// internal fault evicts the room.
func (r *Room) NotifyClosing(code, message string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.broadcast(EvtError, map[string]any{"code": code, "message": message})
}

// teardown stops every timer and bot. Called by the registry during delete
// with the room lock held by the caller chain.
func (r *Room) teardownLocked() {
	if r.roundTimer != nil {
		r.roundTimer.Stop()
		r.roundTimer = nil
	}
	if r.migrationTmr != nil {
		r.migrationTmr.Stop()
		r.migrationTmr = nil
	}
	for _, pw := range r.pending {
		if pw.timer != nil {
			pw.timer.Stop()
		}
	}
	r.stopBotTimersLocked()
	r.bots = nil
}
