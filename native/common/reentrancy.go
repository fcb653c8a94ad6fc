package common

import (
	"errors"
	"sync"
)

// ErrReentrant is returned when a Submit (or equivalent top-level entry
// point) is invoked recursively against the same pool while another
// invocation is already in flight on this process. The host chain's own
// invocation guard is out of scope (see spec's collaborator list), but a
// flash-loan receiver calling back into the same pool's Submit must still be
// rejected per §4.2/§5 — this type is that rejection, scoped per pool ID so
// unrelated pools never contend.
var ErrReentrant = errors.New("reentrant submit rejected")

// ReentrancyGuard tracks which pool IDs currently have an in-flight Submit.
type ReentrancyGuard struct {
	mu     sync.Mutex
	active map[string]bool
}

// NewReentrancyGuard constructs an empty guard.
func NewReentrancyGuard() *ReentrancyGuard {
	return &ReentrancyGuard{active: make(map[string]bool)}
}

// Enter marks poolID as active, returning ErrReentrant if it already is. The
// returned func must be deferred to release the guard.
func (g *ReentrancyGuard) Enter(poolID string) (func(), error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.active[poolID] {
		return nil, ErrReentrant
	}
	g.active[poolID] = true
	return func() {
		g.mu.Lock()
		delete(g.active, poolID)
		g.mu.Unlock()
	}, nil
}
