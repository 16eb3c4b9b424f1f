package game

import (
	"github.com/google/uuid"
	"github.com/samber/lo"

	"github.com/ohadf2015/boggle-new-sub010/internal/util"
)

type TournamentStatus string

const (
	TournamentCreated   TournamentStatus = "created"
	TournamentRunning   TournamentStatus = "running"
	TournamentComplete  TournamentStatus = "complete"
	TournamentCancelled TournamentStatus = "cancelled"
)

// Tournament sequences multiple rounds in one room and accumulates standings
// across them.
type Tournament struct {
	ID           string
	Name         string
	TotalRounds  int
	CurrentRound int
	Standings    map[string]int
	Status       TournamentStatus
}

// CreateTournament sets up a multi-round tournament. Host only; a room can
// hold at most one live tournament.
func (r *Room) CreateTournament(requestedBy, name string, totalRounds int) (*Tournament, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	caller, ok := r.players[requestedBy]
	if !ok {
		return nil, ErrPlayerNotFound
	}
	if !caller.IsHost {
		return nil, ErrNotHost
	}
	if r.phase != PhaseWaiting {
		return nil, ErrGameInProgress
	}
	if r.tournament != nil && r.tournament.Status != TournamentComplete && r.tournament.Status != TournamentCancelled {
		return nil, ErrGameInProgress
	}
	if totalRounds < 1 {
		totalRounds = 1
	}

	t := &Tournament{
		ID:          uuid.NewString(),
		Name:        name,
		TotalRounds: totalRounds,
		Standings:   make(map[string]int),
		Status:      TournamentCreated,
	}
	r.tournament = t
	r.broadcast(EvtTournamentCreated, map[string]any{
		"id":          t.ID,
		"name":        t.Name,
		"totalRounds": t.TotalRounds,
	})
	util.LogInfo("Room %s tournament %q created (%d rounds)", r.Code, name, totalRounds)
	return t, nil
}

// StartNextRound drives the lifecycle through a fresh START for the next
// tournament round.
func (r *Room) StartNextRound(requestedBy string, opts StartOptions) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	t := r.tournament
	if t == nil || t.Status == TournamentCancelled {
		return ErrNoTournament
	}
	if t.Status == TournamentComplete {
		return ErrTournamentDone
	}
	if err := r.startGameLocked(requestedBy, opts); err != nil {
		return err
	}
	t.Status = TournamentRunning
	t.CurrentRound++
	r.broadcast(EvtTournamentRound, map[string]any{
		"round":       t.CurrentRound,
		"totalRounds": t.TotalRounds,
	})
	return nil
}

// Standings returns the cumulative scores across completed rounds.
func (r *Room) Standings() (map[string]int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.tournament == nil {
		return nil, ErrNoTournament
	}
	return lo.Assign(map[string]int{}, r.tournament.Standings), nil
}

// CancelTournament discards the tournament object. Scores already recorded
// on the room are untouched.
func (r *Room) CancelTournament(requestedBy string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	caller, ok := r.players[requestedBy]
	if !ok {
		return ErrPlayerNotFound
	}
	if !caller.IsHost {
		return ErrNotHost
	}
	if r.tournament == nil {
		return ErrNoTournament
	}
	r.tournament.Status = TournamentCancelled
	r.tournament = nil
	r.broadcast(EvtTournamentCancelled, map[string]any{})
	return nil
}

// accumulateStandingsLocked folds the finished round's scores into the
// standings; reaching the final round freezes them. Requires r.mu.
func (r *Room) accumulateStandingsLocked() {
	t := r.tournament
	if t == nil || t.Status != TournamentRunning {
		return
	}
	for username, s := range r.scores {
		t.Standings[username] += s
	}
	if t.CurrentRound >= t.TotalRounds {
		t.Status = TournamentComplete
		r.broadcast(EvtTournamentComplete, map[string]any{
			"standings": lo.Assign(map[string]int{}, t.Standings),
		})
		return
	}
	r.broadcast(EvtTournamentRoundDone, map[string]any{
		"round":     t.CurrentRound,
		"standings": lo.Assign(map[string]int{}, t.Standings),
	})
}
