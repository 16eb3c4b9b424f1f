package game

import (
	"sort"
	"sync"
	"time"

	"github.com/samber/lo"

	"github.com/ohadf2015/boggle-new-sub010/internal/config"
	"github.com/ohadf2015/boggle-new-sub010/internal/constants"
	"github.com/ohadf2015/boggle-new-sub010/internal/dictionary"
	"github.com/ohadf2015/boggle-new-sub010/internal/models"
	"github.com/ohadf2015/boggle-new-sub010/internal/util"
)

// Registry owns every active room plus the secondary indexes from connection
// id to room code and username. It is constructed once at process start and
// injected; no ambient globals. Lock order is always registry before room.
type Registry struct {
	mu         sync.RWMutex
	rooms      map[string]*Room
	roomByConn map[string]string
	userByConn map[string]string

	cfg     *config.Config
	dict    dictionary.Lookup
	arbiter dictionary.Arbiter
	stats   StatsSink
}

func NewRegistry(cfg *config.Config, dict dictionary.Lookup, arbiter dictionary.Arbiter, stats StatsSink) *Registry {
	if arbiter == nil {
		arbiter = dictionary.NoArbiter{}
	}
	return &Registry{
		rooms:      make(map[string]*Room),
		roomByConn: make(map[string]string),
		userByConn: make(map[string]string),
		cfg:        cfg,
		dict:       dict,
		arbiter:    arbiter,
		stats:      stats,
	}
}

// CreateRoom creates a room with its host already seated.
func (reg *Registry) CreateRoom(code, hostUsername, connID string, sender Sender, opts RoomOptions) (*Room, error) {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	if _, exists := reg.rooms[code]; exists {
		return nil, ErrRoomExists
	}
	r := newRoom(code, opts, reg.cfg, reg.dict, reg.arbiter, reg.stats)
	r.onEmpty = reg.deleteRoomAsync
	reg.rooms[code] = r

	r.mu.Lock()
	r.addPlayerLocked(hostUsername, connID, sender, opts, true)
	r.mu.Unlock()

	reg.roomByConn[connID] = code
	reg.userByConn[connID] = hostUsername
	util.LogInfo("Room %s created by %s", code, hostUsername)
	return r, nil
}

func (reg *Registry) GetRoom(code string) *Room {
	reg.mu.RLock()
	defer reg.mu.RUnlock()
	return reg.rooms[code]
}

// DeleteRoom removes the room and purges every index entry pointing at it.
// Deleting a missing room is a no-op.
func (reg *Registry) DeleteRoom(code string) {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	reg.deleteRoomLocked(code)
}

func (reg *Registry) deleteRoomLocked(code string) {
	r, ok := reg.rooms[code]
	if !ok {
		return
	}
	delete(reg.rooms, code)
	for connID, roomCode := range reg.roomByConn {
		if roomCode == code {
			delete(reg.roomByConn, connID)
			delete(reg.userByConn, connID)
		}
	}
	r.mu.Lock()
	r.teardownLocked()
	r.mu.Unlock()
	util.LogInfo("Room %s deleted", code)
}

// deleteRoomAsync is handed to rooms so timer callbacks can request deletion
// without holding the room lock.
func (reg *Registry) deleteRoomAsync(code string) {
	go reg.DeleteRoom(code)
}

// AddPlayer seats a new player and atomically updates both secondary indexes.
func (reg *Registry) AddPlayer(code, username, connID string, sender Sender, opts RoomOptions) (*Room, error) {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	r, ok := reg.rooms[code]
	if !ok {
		return nil, ErrRoomNotFound
	}

	r.mu.Lock()
	if _, taken := r.players[username]; taken {
		r.mu.Unlock()
		return nil, ErrDuplicateUsername
	}
	if len(r.players) >= constants.MaxPlayersPerRoom {
		r.mu.Unlock()
		return nil, ErrRoomFull
	}
	r.addPlayerLocked(username, connID, sender, opts, false)
	users := r.userSummaries()
	r.broadcast(EvtUpdateUsers, map[string]any{"users": users})
	r.mu.Unlock()

	reg.roomByConn[connID] = code
	reg.userByConn[connID] = username
	return r, nil
}

// addPlayerLocked requires r.mu.
func (r *Room) addPlayerLocked(username, connID string, sender Sender, opts RoomOptions, isHost bool) *Player {
	now := time.Now()
	p := &Player{
		Username:        username,
		ConnectionID:    connID,
		AuthUserID:      opts.AuthUserID,
		Avatar:          opts.Avatar,
		IsHost:          isHost,
		Connected:       connID != "",
		IsWindowFocused: true,
		LastActivityAt:  now,
		JoinedAt:        now,
		joinOrder:       r.joinCounter,
		sender:          sender,
	}
	r.joinCounter++
	r.players[username] = p
	if isHost {
		r.HostUsername = username
	}
	r.touch()
	return p
}

// RemovePlayer handles an explicit leave. A host leaving closes the room.
func (reg *Registry) RemovePlayer(code, username string) {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	r, ok := reg.rooms[code]
	if !ok {
		return
	}

	r.mu.Lock()
	p, ok := r.players[username]
	if !ok {
		r.mu.Unlock()
		return
	}
	wasHost := p.IsHost
	delete(r.players, username)
	delete(r.scores, username)
	delete(r.foundWords, username)
	r.touch()
	connID := p.ConnectionID

	if wasHost {
		r.broadcast(EvtHostLeftRoomClosing, map[string]any{"gameCode": code})
	} else {
		r.broadcast(EvtPlayerLeft, map[string]any{"username": username})
		r.broadcast(EvtUpdateUsers, map[string]any{"users": r.userSummaries()})
	}
	humansLeft := lo.SomeBy(lo.Values(r.players), func(pl *Player) bool { return !pl.IsBot })
	r.mu.Unlock()

	if connID != "" {
		delete(reg.roomByConn, connID)
		delete(reg.userByConn, connID)
	}

	if wasHost || !humansLeft {
		reg.deleteRoomLocked(code)
	}
}

// RoomByConnection resolves the room an open connection belongs to.
func (reg *Registry) RoomByConnection(connID string) *Room {
	reg.mu.RLock()
	defer reg.mu.RUnlock()
	code, ok := reg.roomByConn[connID]
	if !ok {
		return nil
	}
	return reg.rooms[code]
}

func (reg *Registry) UsernameByConnection(connID string) (string, bool) {
	reg.mu.RLock()
	defer reg.mu.RUnlock()
	username, ok := reg.userByConn[connID]
	return username, ok
}

// Descriptions lists active rooms for getActiveRooms without holding any room
// lock longer than one snapshot.
func (reg *Registry) Descriptions() []models.RoomDescription {
	reg.mu.RLock()
	rooms := lo.Values(reg.rooms)
	reg.mu.RUnlock()

	descs := make([]models.RoomDescription, 0, len(rooms))
	for _, r := range rooms {
		r.mu.Lock()
		descs = append(descs, r.description())
		r.mu.Unlock()
	}
	sort.Slice(descs, func(i, j int) bool { return descs[i].GameCode < descs[j].GameCode })
	return descs
}

func (reg *Registry) Count() int {
	reg.mu.RLock()
	defer reg.mu.RUnlock()
	return len(reg.rooms)
}

// SweepStale deletes rooms idle past maxIdle.
func (reg *Registry) SweepStale(now time.Time, maxIdle time.Duration) int {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	removed := 0
	for code, r := range reg.rooms {
		if now.Sub(r.LastActivity()) > maxIdle {
			reg.deleteRoomLocked(code)
			removed++
		}
	}
	if removed > 0 {
		util.LogInfo("Reaper removed %d stale rooms", removed)
	}
	return removed
}

// SweepEmpty deletes rooms that have no players left at all.
func (reg *Registry) SweepEmpty() int {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	removed := 0
	for code, r := range reg.rooms {
		r.mu.Lock()
		empty := len(r.players) == 0 || lo.EveryBy(lo.Values(r.players), func(p *Player) bool { return p.IsBot })
		r.mu.Unlock()
		if empty {
			reg.deleteRoomLocked(code)
			removed++
		}
	}
	if removed > 0 {
		util.LogInfo("Reaper removed %d empty rooms", removed)
	}
	return removed
}
