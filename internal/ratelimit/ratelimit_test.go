package ratelimit

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func newTestGate() *Gate {
	return NewGate(5, 20, 10*time.Second, 60*time.Second, time.Hour)
}

func TestGate_BudgetThenThrottleOnce(t *testing.T) {
	g := newTestGate()
	now := time.Now()

	for i := 0; i < 5; i++ {
		assert.Equal(t, Allow, g.Check("conn1", "1.2.3.4", now), "message %d within budget", i+1)
	}
	// One past the budget: single throttle notice, then silent drops.
	assert.Equal(t, Throttle, g.Check("conn1", "1.2.3.4", now))
	assert.Equal(t, Drop, g.Check("conn1", "1.2.3.4", now))
	assert.Equal(t, Drop, g.Check("conn1", "1.2.3.4", now.Add(30*time.Second)))
}

func TestGate_ResumesAfterBlock(t *testing.T) {
	g := newTestGate()
	now := time.Now()

	for i := 0; i < 6; i++ {
		g.Check("conn1", "1.2.3.4", now)
	}
	// The block elapsed and the window refilled; no manual reset needed.
	later := now.Add(61 * time.Second)
	assert.Equal(t, Allow, g.Check("conn1", "1.2.3.4", later))
}

func TestGate_OriginBudgetIsIndependent(t *testing.T) {
	g := newTestGate()
	now := time.Now()

	// 20 messages spread over 20 connections exhaust the shared origin.
	for i := 0; i < 20; i++ {
		conn := fmt.Sprintf("conn%d", i)
		assert.Equal(t, Allow, g.Check(conn, "9.9.9.9", now))
	}
	assert.Equal(t, Throttle, g.Check("conn-new", "9.9.9.9", now))
}

func TestGate_ForgetAndSweep(t *testing.T) {
	g := newTestGate()
	now := time.Now()

	g.Check("conn1", "1.2.3.4", now)
	g.Forget("conn1")
	assert.NotContains(t, g.conns, "conn1")

	g.Check("conn2", "5.6.7.8", now)
	g.Sweep(now.Add(2 * time.Hour))
	assert.Empty(t, g.conns)
	assert.Empty(t, g.origins)
}
