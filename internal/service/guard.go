package service

import "sync"

// ExchangeGuard tracks sessions with an exchange mid-flight so a second
// submission (or a switch away from the session) can be rejected instead
// of interleaving turns.
type ExchangeGuard struct {
	mu       sync.Mutex
	inFlight map[string]struct{}
}

func NewExchangeGuard() *ExchangeGuard {
	return &ExchangeGuard{
		inFlight: make(map[string]struct{}),
	}
}

// TryAcquire marks the session busy. Returns false when an exchange is
// already running for it.
func (g *ExchangeGuard) TryAcquire(sessionID string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, busy := g.inFlight[sessionID]; busy {
		return false
	}
	g.inFlight[sessionID] = struct{}{}
	return true
}

func (g *ExchangeGuard) Release(sessionID string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.inFlight, sessionID)
}

func (g *ExchangeGuard) InFlight(sessionID string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	_, busy := g.inFlight[sessionID]
	return busy
}
