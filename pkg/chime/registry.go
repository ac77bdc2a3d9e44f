// ABOUTME: Registry of outstanding requests
// ABOUTME: Tracks live requests, arbitrates callbacks and coordinates the drain
package chime

import (
	"sync"

	"github.com/google/uuid"
)

type registry struct {
	mu       sync.Mutex
	requests map[uuid.UUID]*request
	draining bool
	// callbacks claimed by Cancel that have not been delivered yet
	pending int
	drained *sync.Cond
}

func newRegistry() *registry {
	g := &registry{requests: make(map[uuid.UUID]*request)}
	g.drained = sync.NewCond(&g.mu)
	return g
}

// register adds r. It fails once the drain has started.
func (g *registry) register(r *request) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.draining {
		return false
	}
	g.requests[r.key] = r
	return true
}

func (g *registry) unregister(r *request) {
	g.mu.Lock()
	defer g.mu.Unlock()

	delete(g.requests, r.key)
	g.signalLocked()
}

// claim marks r dead and reports whether the caller won the right to deliver its callback
func (g *registry) claim(r *request) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	if r.dead {
		return false
	}
	r.dead = true
	return true
}

// markDead marks every live request with the given id dead and returns them.
// The caller owes each returned request its callback and must call delivered afterwards.
func (g *registry) markDead(id uint32) []*request {
	g.mu.Lock()
	defer g.mu.Unlock()

	var matched []*request
	for _, r := range g.requests {
		if r.id == id && !r.dead {
			r.dead = true
			matched = append(matched, r)
		}
	}
	g.pending += len(matched)
	return matched
}

func (g *registry) delivered(n int) {
	if n == 0 {
		return
	}
	g.mu.Lock()
	defer g.mu.Unlock()

	g.pending -= n
	g.signalLocked()
}

// drain stops new registrations and marks every live request dead.
// It returns false if the drain had already started.
func (g *registry) drain() ([]*request, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.draining {
		return nil, false
	}
	g.draining = true

	var live []*request
	for _, r := range g.requests {
		if !r.dead {
			r.dead = true
			live = append(live, r)
		}
	}
	return live, true
}

// wait blocks until every request has deregistered and every claimed callback was delivered
func (g *registry) wait() {
	g.mu.Lock()
	defer g.mu.Unlock()

	for len(g.requests) > 0 || g.pending > 0 {
		g.drained.Wait()
	}
}

func (g *registry) playing(id uint32) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	for _, r := range g.requests {
		if r.id == id && !r.dead {
			return true
		}
	}
	return false
}

func (g *registry) closed() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.draining
}

func (g *registry) signalLocked() {
	if g.draining && len(g.requests) == 0 && g.pending == 0 {
		g.drained.Broadcast()
	}
}
