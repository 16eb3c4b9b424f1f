package game

import (
	"sort"
	"time"

	"github.com/samber/lo"

	"github.com/ohadf2015/boggle-new-sub010/internal/models"
	"github.com/ohadf2015/boggle-new-sub010/internal/util"
)

// HandleDisconnect reconciles a dropped connection: the seat stays, the
// indexes are purged, and host loss opens the migration grace window. The
// room is only deleted outright when no human seat remains at all.
func (reg *Registry) HandleDisconnect(connID string) {
	reg.mu.Lock()
	defer reg.mu.Unlock()

	code, ok := reg.roomByConn[connID]
	if !ok {
		return
	}
	username := reg.userByConn[connID]
	delete(reg.roomByConn, connID)
	delete(reg.userByConn, connID)

	r, ok := reg.rooms[code]
	if !ok {
		return
	}

	r.mu.Lock()
	p, ok := r.players[username]
	if !ok || p.ConnectionID != connID {
		// A takeover already rebound this seat; nothing left to do.
		r.mu.Unlock()
		return
	}
	now := time.Now()
	p.Connected = false
	p.ConnectionID = ""
	p.sender = nil
	p.DisconnectedAt = now
	r.touch()

	r.broadcast(EvtPlayerDisconnected, map[string]any{"username": username})
	if p.IsHost {
		r.broadcast(EvtHostDisconnected, map[string]any{
			"gracePeriodMs": r.cfg.HostMigrationGrace.Milliseconds(),
		})
		r.scheduleHostMigrationLocked()
	}
	r.broadcast(EvtUpdateUsers, map[string]any{"users": r.userSummaries()})
	r.mu.Unlock()
}

// Reconnect rebinds a returning connection to its seat. Within the grace
// window the player keeps host status, score, and found words; outside it the
// stale seat is discarded and the client must rejoin fresh. If the username
// is still actively connected elsewhere the older connection is superseded.
func (reg *Registry) Reconnect(code, username, connID string, sender Sender) (models.RoomSnapshot, error) {
	reg.mu.Lock()
	defer reg.mu.Unlock()

	r, ok := reg.rooms[code]
	if !ok {
		return models.RoomSnapshot{}, ErrRoomNotFound
	}

	r.mu.Lock()
	p, ok := r.players[username]
	if !ok {
		r.mu.Unlock()
		return models.RoomSnapshot{}, ErrPlayerNotFound
	}

	now := time.Now()
	if !p.Connected && !p.DisconnectedAt.IsZero() && now.Sub(p.DisconnectedAt) > r.cfg.ReconnectGrace {
		// Stale session: discard the seat entirely.
		delete(r.players, username)
		delete(r.scores, username)
		delete(r.foundWords, username)
		r.broadcast(EvtUpdateUsers, map[string]any{"users": r.userSummaries()})
		r.mu.Unlock()
		return models.RoomSnapshot{}, ErrSessionExpired
	}

	if p.Connected && p.ConnectionID != "" {
		// Session takeover: the newer connection wins.
		old := p.ConnectionID
		if p.sender != nil {
			p.sender.Send(EvtError, map[string]any{
				"message": "session superseded by a newer connection",
				"code":    "SESSION_SUPERSEDED",
			})
		}
		delete(reg.roomByConn, old)
		delete(reg.userByConn, old)
		util.LogInfo("Session takeover for %s in room %s", username, code)
	}

	p.ConnectionID = connID
	p.Connected = true
	p.sender = sender
	p.DisconnectedAt = time.Time{}
	p.LastActivityAt = now
	r.touch()
	if p.IsHost {
		r.cancelHostMigrationLocked()
	}

	snap := r.snapshot()
	r.broadcast(EvtPlayerReconnected, map[string]any{"username": username})
	r.broadcast(EvtUpdateUsers, map[string]any{"users": r.userSummaries()})
	r.mu.Unlock()

	reg.roomByConn[connID] = code
	reg.userByConn[connID] = username
	return snap, nil
}

// scheduleHostMigrationLocked arms the grace timer; a reconnecting or
// keep-alive host disarms it. Requires r.mu.
func (r *Room) scheduleHostMigrationLocked() {
	if r.migrationTmr != nil {
		r.migrationTmr.Stop()
	}
	r.migrationOpen = true
	r.migrationTmr = time.AfterFunc(r.cfg.HostMigrationGrace, r.migrateHost)
}

func (r *Room) cancelHostMigrationLocked() {
	if r.migrationTmr != nil {
		r.migrationTmr.Stop()
		r.migrationTmr = nil
	}
	r.migrationOpen = false
}

// migrateHost transfers host status to the earliest-joined connected human
// after the grace period elapsed without the host returning.
func (r *Room) migrateHost() {
	r.mu.Lock()
	if !r.migrationOpen {
		r.mu.Unlock()
		return
	}
	r.migrationOpen = false
	r.migrationTmr = nil

	old, ok := r.players[r.HostUsername]
	if ok && old.Connected {
		// Host came back without a keep-alive racing the timer.
		r.mu.Unlock()
		return
	}

	candidates := r.connectedHumansLocked()
	if len(candidates) == 0 {
		code := r.Code
		onEmpty := r.onEmpty
		r.mu.Unlock()
		if onEmpty != nil {
			onEmpty(code)
		}
		return
	}
	sort.Slice(candidates, func(i, j int) bool { return candidates[i].joinOrder < candidates[j].joinOrder })
	next := candidates[0]

	if ok {
		old.IsHost = false
	}
	next.IsHost = true
	r.HostUsername = next.Username
	r.touch()
	util.LogInfo("Room %s host migrated to %s", r.Code, next.Username)

	r.broadcast(EvtHostTransferred, map[string]any{"newHost": next.Username})
	r.broadcast(EvtUpdateUsers, map[string]any{"users": r.userSummaries()})
	r.mu.Unlock()
}

// IsHost reports whether the username currently holds host status.
func (r *Room) IsHost(username string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.players[username]
	return ok && p.IsHost
}

// Players returns the current user summaries.
func (r *Room) Players() []models.UserSummary {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.userSummaries()
}

// Snapshot returns the full replay payload.
func (r *Room) Snapshot() models.RoomSnapshot {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.snapshot()
}

// Score returns a player's current score.
func (r *Room) Score(username string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.scores[username]
}

// FoundWords returns the words a player has on the board this round.
func (r *Room) FoundWords(username string) []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	words := lo.Keys(r.foundWords[username])
	sort.Strings(words)
	return words
}
