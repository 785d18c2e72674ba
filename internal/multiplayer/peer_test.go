package multiplayer

import (
	"errors"
	"testing"

	"github.com/vovakirdan/snakenet/internal/wire"
)

func TestChannelPeerDropsOldest(t *testing.T) {
	p := NewChannelPeer("alice", 2)
	for tick := uint64(1); tick <= 3; tick++ {
		if err := p.Send(wire.Snapshot{Tick: tick}); err != nil {
			t.Fatalf("Send failed: %v", err)
		}
	}

	got := []uint64{(<-p.Messages()).(wire.Snapshot).Tick, (<-p.Messages()).(wire.Snapshot).Tick}
	if got[0] != 2 || got[1] != 3 {
		t.Errorf("got ticks %v, expected [2 3]", got)
	}

	p.Close()
	p.Close()
	if err := p.Send(wire.Snapshot{}); !errors.Is(err, ErrPeerClosed) {
		t.Errorf("expected ErrPeerClosed, got %v", err)
	}
}

func TestRegistryUnregisterOnlySameInstance(t *testing.T) {
	r := NewPeerRegistry()
	old := NewChannelPeer("alice", 1)
	if err := r.Register(old); err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	old.Close()

	fresh := NewChannelPeer("alice", 1)
	if err := r.Register(fresh); err != nil {
		t.Fatalf("closed peer's slot should be reusable: %v", err)
	}
	if r.Unregister(old) {
		t.Error("stale peer must not remove its replacement")
	}
	if got, _ := r.Get("alice"); got != Peer(fresh) {
		t.Error("replacement peer missing")
	}
	if !r.Unregister(fresh) || r.Count() != 0 {
		t.Error("Unregister of the current peer failed")
	}
}
