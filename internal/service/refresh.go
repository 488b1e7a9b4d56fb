package service

import (
	"sync"
	"time"
)

// RefreshGate enforces the cooldown on manual recommendation refreshes.
type RefreshGate struct {
	mu       sync.Mutex
	cooldown time.Duration
	last     time.Time
	now      func() time.Time
}

// NewRefreshGate creates a gate with the given cooldown.
func NewRefreshGate(cooldown time.Duration) *RefreshGate {
	return &RefreshGate{cooldown: cooldown, now: time.Now}
}

// TryAcquire consumes the gate if the cooldown has elapsed. When it has
// not, it returns false and the remaining wait.
func (g *RefreshGate) TryAcquire() (bool, time.Duration) {
	g.mu.Lock()
	defer g.mu.Unlock()

	now := g.now()
	elapsed := now.Sub(g.last)
	if !g.last.IsZero() && elapsed < g.cooldown {
		return false, g.cooldown - elapsed
	}
	g.last = now
	return true, 0
}

// RetryAfter returns the remaining cooldown without consuming the gate.
func (g *RefreshGate) RetryAfter() time.Duration {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.last.IsZero() {
		return 0
	}
	remaining := g.cooldown - g.now().Sub(g.last)
	if remaining < 0 {
		return 0
	}
	return remaining
}
