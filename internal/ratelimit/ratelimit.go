package ratelimit

import (
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/ohadf2015/boggle-new-sub010/internal/util"
)

// Decision is the gate's verdict for one inbound message.
type Decision int

const (
	// Allow lets the message through to the room layer.
	Allow Decision = iota
	// Throttle drops the message and tells the caller to emit the single
	// notice for this block window.
	Throttle
	// Drop silently discards the message.
	Drop
)

type entry struct {
	lim          *rate.Limiter
	blockedUntil time.Time
	noticed      bool
	lastAccess   time.Time
}

// Gate enforces two independent sliding windows: one per connection and one
// per origin address. It runs before any room lookup.
type Gate struct {
	mu           sync.Mutex
	conns        map[string]*entry
	origins      map[string]*entry
	connBudget   int
	originBudget int
	window       time.Duration
	block        time.Duration
	ttl          time.Duration
}

func NewGate(connBudget, originBudget int, window, block, ttl time.Duration) *Gate {
	if connBudget <= 0 {
		connBudget = 1
	}
	if originBudget <= 0 {
		originBudget = 1
	}
	return &Gate{
		conns:        make(map[string]*entry),
		origins:      make(map[string]*entry),
		connBudget:   connBudget,
		originBudget: originBudget,
		window:       window,
		block:        block,
		ttl:          ttl,
	}
}

// Check consumes one message worth of budget for both identities and returns
// the combined verdict. The explicit clock keeps the gate testable.
func (g *Gate) Check(connID, origin string, now time.Time) Decision {
	g.mu.Lock()
	defer g.mu.Unlock()

	connVerdict := g.check(g.conns, connID, g.connBudget, now)
	originVerdict := g.check(g.origins, origin, g.originBudget, now)

	if connVerdict == Throttle || originVerdict == Throttle {
		return Throttle
	}
	if connVerdict == Drop || originVerdict == Drop {
		return Drop
	}
	return Allow
}

func (g *Gate) check(table map[string]*entry, key string, budget int, now time.Time) Decision {
	e, ok := table[key]
	if !ok {
		e = &entry{lim: rate.NewLimiter(rate.Every(g.window/time.Duration(budget)), budget)}
		table[key] = e
	}
	e.lastAccess = now

	if now.Before(e.blockedUntil) {
		if !e.noticed {
			e.noticed = true
			return Throttle
		}
		return Drop
	}

	if !e.lim.AllowN(now, 1) {
		e.blockedUntil = now.Add(g.block)
		e.noticed = true
		return Throttle
	}
	e.noticed = false
	return Allow
}

// Forget drops the per-connection state when a connection closes. Origin
// counters stay; they age out via Sweep.
func (g *Gate) Forget(connID string) {
	g.mu.Lock()
	delete(g.conns, connID)
	g.mu.Unlock()
}

// Sweep removes counters idle past the TTL.
func (g *Gate) Sweep(now time.Time) {
	g.mu.Lock()
	defer g.mu.Unlock()
	removed := 0
	cutoff := now.Add(-g.ttl)
	for _, table := range []map[string]*entry{g.conns, g.origins} {
		for key, e := range table {
			if e.lastAccess.Before(cutoff) && now.After(e.blockedUntil) {
				delete(table, key)
				removed++
			}
		}
	}
	if removed > 0 {
		util.LogInfo("Cleaned up %d stale rate limiters", removed)
	}
}
