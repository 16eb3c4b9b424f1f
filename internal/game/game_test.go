package game

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/ohadf2015/boggle-new-sub010/internal/config"
	"github.com/ohadf2015/boggle-new-sub010/internal/dictionary"
)

// fakeSender records every event delivered to one connection.
type fakeSender struct {
	mu     sync.Mutex
	events []recordedEvent
}

type recordedEvent struct {
	Event   string
	Payload any
}

func (s *fakeSender) Send(event string, payload any) {
	s.mu.Lock()
	s.events = append(s.events, recordedEvent{Event: event, Payload: payload})
	s.mu.Unlock()
}

func (s *fakeSender) has(event string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, e := range s.events {
		if e.Event == event {
			return true
		}
	}
	return false
}

func (s *fakeSender) last(event string) (recordedEvent, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := len(s.events) - 1; i >= 0; i-- {
		if s.events[i].Event == event {
			return s.events[i], true
		}
	}
	return recordedEvent{}, false
}

// stubArbiter answers every verdict with a fixed value.
type stubArbiter struct {
	verdict bool
}

func (a stubArbiter) Verdict(ctx context.Context, language, word string) (bool, error) {
	return a.verdict, nil
}

func testConfig() *config.Config {
	return &config.Config{
		IdleThreshold:      30 * time.Second,
		AfkThreshold:       120 * time.Second,
		HeartbeatTimeout:   45 * time.Second,
		ReconnectGrace:     time.Minute,
		HostMigrationGrace: 25 * time.Millisecond,
		VoteDeadline:       2 * time.Second,
		StaleRoomAfter:     2 * time.Hour,
	}
}

func testDict() *dictionary.Static {
	d := dictionary.NewStatic()
	d.Load("en", []string{"cat", "tax", "tex", "tea", "eat", "dog"})
	return d
}

// testGrid has no vertical-only words; everything reachable uses horizontal
// and diagonal steps.
func testGrid() [][]string {
	return [][]string{
		{"c", "a", "t"},
		{"x", "e", "x"},
	}
}

type fixture struct {
	reg     *Registry
	room    *Room
	senders map[string]*fakeSender
}

func connID(username string) string { return "conn-" + username }

// newFixture creates a room hosted by the first username with the rest seated
// as regular players.
func newFixture(t *testing.T, cfg *config.Config, arbiter dictionary.Arbiter, usernames ...string) *fixture {
	t.Helper()
	require.NotEmpty(t, usernames)
	reg := NewRegistry(cfg, testDict(), arbiter, nil)

	f := &fixture{reg: reg, senders: make(map[string]*fakeSender)}
	host := usernames[0]
	f.senders[host] = &fakeSender{}
	room, err := reg.CreateRoom("ROOM01", host, connID(host), f.senders[host], RoomOptions{DisplayName: "test room"})
	require.NoError(t, err)
	f.room = room

	for _, username := range usernames[1:] {
		f.senders[username] = &fakeSender{}
		_, err := reg.AddPlayer("ROOM01", username, connID(username), f.senders[username], RoomOptions{})
		require.NoError(t, err)
	}
	t.Cleanup(func() { reg.DeleteRoom("ROOM01") })
	return f
}

func (f *fixture) startRound(t *testing.T, host string) {
	t.Helper()
	require.NoError(t, f.room.StartGame(host, StartOptions{Grid: testGrid(), MinWordLength: 3}))
}

func fillRoom(t *testing.T, f *fixture, total int) {
	t.Helper()
	for i := len(f.room.Players()); i < total; i++ {
		username := fmt.Sprintf("extra%02d", i)
		_, err := f.reg.AddPlayer("ROOM01", username, connID(username), &fakeSender{}, RoomOptions{})
		require.NoError(t, err)
	}
}
