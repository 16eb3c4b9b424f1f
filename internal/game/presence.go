package game

import (
	"time"

	"github.com/ohadf2015/boggle-new-sub010/internal/config"
)

const (
	PresenceActive = "active"
	PresenceIdle   = "idle"
	PresenceAfk    = "afk"
)

// presenceStatusAt derives a player's presence from their last activity and
// window focus. An unfocused window is at best idle.
func presenceStatusAt(p *Player, now time.Time, cfg *config.Config) string {
	if p.IsBot {
		return PresenceActive
	}
	gap := now.Sub(p.LastActivityAt)
	switch {
	case gap > cfg.AfkThreshold:
		return PresenceAfk
	case gap > cfg.IdleThreshold || !p.IsWindowFocused:
		return PresenceIdle
	default:
		return PresenceActive
	}
}

// Heartbeat records a liveness ping. It reports a recovery when the previous
// heartbeat is older than the configured timeout; the first heartbeat of a
// session is never a recovery.
func (r *Room) Heartbeat(username string, focused bool) (recovery bool, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.players[username]
	if !ok {
		return false, ErrPlayerNotFound
	}
	now := time.Now()
	if !p.LastHeartbeatAt.IsZero() && now.Sub(p.LastHeartbeatAt) > r.cfg.HeartbeatTimeout {
		recovery = true
	}
	p.LastHeartbeatAt = now
	p.IsWindowFocused = focused
	if focused {
		p.LastActivityAt = now
	}
	r.touch()
	return recovery, nil
}

// PresenceStatus reports the player's current presence bucket.
func (r *Room) PresenceStatus(username string) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.players[username]
	if !ok {
		return "", ErrPlayerNotFound
	}
	return presenceStatusAt(p, time.Now(), r.cfg), nil
}

// HostKeepAlive refreshes the host's activity clock and cancels a pending
// host migration, used by hostKeepAlive/hostReactivate messages.
func (r *Room) HostKeepAlive(username string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.players[username]
	if !ok {
		return ErrPlayerNotFound
	}
	if !p.IsHost {
		return ErrNotHost
	}
	p.LastActivityAt = time.Now()
	r.touch()
	r.cancelHostMigrationLocked()
	return nil
}
