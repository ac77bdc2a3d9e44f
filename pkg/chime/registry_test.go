// ABOUTME: Tests for the request registry
// ABOUTME: Exercises claim arbitration and drain signaling without workers
package chime

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
)

func testRequest(id uint32) *request {
	ctx, cancel := context.WithCancel(context.Background())
	return &request{key: uuid.New(), id: id, ctx: ctx, cancel: cancel}
}

func TestRegistryClaimOnce(t *testing.T) {
	g := newRegistry()
	r := testRequest(1)
	g.register(r)

	if !g.claim(r) {
		t.Fatal("first claim should win")
	}
	if g.claim(r) {
		t.Error("second claim should lose")
	}
	if got := g.markDead(1); len(got) != 0 {
		t.Errorf("dead request matched by markDead: %d", len(got))
	}
}

func TestRegistryMarkDead(t *testing.T) {
	g := newRegistry()
	a, b, c := testRequest(9), testRequest(9), testRequest(4)
	for _, r := range []*request{a, b, c} {
		g.register(r)
	}

	matched := g.markDead(9)
	if len(matched) != 2 {
		t.Fatalf("expected 2 matches, got %d", len(matched))
	}
	if g.playing(9) {
		t.Error("id 9 still playing")
	}
	if !g.playing(4) {
		t.Error("id 4 should be playing")
	}
	if g.claim(a) || g.claim(b) {
		t.Error("worker claimed a canceled request")
	}
	g.delivered(len(matched))
}

func TestRegistryDrain(t *testing.T) {
	g := newRegistry()
	a, b := testRequest(1), testRequest(2)
	g.register(a)
	g.register(b)

	canceled := g.markDead(1)

	live, ok := g.drain()
	if !ok {
		t.Fatal("first drain should start")
	}
	if len(live) != 1 || live[0] != b {
		t.Fatalf("expected only request 2 live, got %d", len(live))
	}
	if _, ok := g.drain(); ok {
		t.Error("second drain should fail")
	}
	if g.register(testRequest(3)) {
		t.Error("register accepted while draining")
	}

	done := make(chan struct{})
	go func() {
		g.wait()
		close(done)
	}()

	g.unregister(a)
	g.unregister(b)

	select {
	case <-done:
		t.Fatal("wait returned with a callback still pending")
	case <-time.After(50 * time.Millisecond):
	}

	g.delivered(len(canceled))

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("wait did not return after drain completed")
	}
}

func TestRegistryWaitEmpty(t *testing.T) {
	g := newRegistry()
	g.drain()

	done := make(chan struct{})
	go func() {
		g.wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("wait blocked on an empty registry")
	}
}
