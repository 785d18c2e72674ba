package multiplayer

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/vovakirdan/snakenet/internal/core"
	"github.com/vovakirdan/snakenet/internal/games/snake"
	"github.com/vovakirdan/snakenet/internal/wire"
)

func startTestHost(t *testing.T) (*Host, *snake.Engine, string) {
	t.Helper()
	engine := snake.New(core.RuntimeConfig{Width: 30, Height: 20, Seed: 5})
	h := NewHost(DefaultHostConfig(), engine, nil)
	t.Cleanup(func() { h.Close() })

	addr, err := h.Listen(context.Background(), "127.0.0.1:0")
	if err != nil {
		t.Fatalf("Listen failed: %v", err)
	}
	return h, engine, addr.String()
}

func TestClientMirrorsSnapshotsAndSendsIntents(t *testing.T) {
	h, engine, addr := startTestHost(t)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	c, err := Dial(ctx, addr, "alice", core.ColorOrange)
	if err != nil {
		t.Fatalf("Dial failed: %v", err)
	}
	defer c.Close()

	if c.Status() != StatusOpen {
		t.Fatalf("status = %s, expected open", c.Status())
	}
	waitFor(t, "host sees client", func() bool { return h.PeerCount() == 1 })

	if _, ok := c.Latest(); ok {
		t.Error("no snapshot should be mirrored before the first broadcast")
	}
	engine.Begin()
	engine.AdvanceTick()
	h.Broadcast(engine.Snapshot())

	waitFor(t, "snapshot", func() bool {
		snap, ok := c.Latest()
		return ok && snap.Tick == 1
	})
	snap, _ := c.Latest()
	me, ok := snap.Player("alice")
	if !ok || me.Color != "orange" || !me.Alive {
		t.Errorf("unexpected mirrored player %+v", me)
	}

	// Wholesale replace.
	engine.AdvanceTick()
	h.Broadcast(engine.Snapshot())
	waitFor(t, "second snapshot", func() bool {
		snap, _ := c.Latest()
		return snap.Tick == 2
	})

	before, _ := engine.Player("alice")
	c.Send(core.DirUp)
	waitFor(t, "intent applied", func() bool {
		engine.AdvanceTick()
		p, _ := engine.Player("alice")
		return p.Direction == core.DirUp
	})
	if before.Direction != core.DirRight {
		t.Errorf("unexpected starting heading %v", before.Direction)
	}
}

func TestClientSendIsNoOpWhenClosed(t *testing.T) {
	_, _, addr := startTestHost(t)

	c, err := Dial(context.Background(), addr, "alice", core.ColorRed)
	if err != nil {
		t.Fatalf("Dial failed: %v", err)
	}
	if err := c.Close(); err != nil {
		t.Errorf("Close failed: %v", err)
	}
	if c.Status() != StatusClosed {
		t.Errorf("status = %s, expected closed", c.Status())
	}

	// Must not panic or block.
	c.Send(core.DirUp)
}

func TestClientReportsHostLoss(t *testing.T) {
	h, _, addr := startTestHost(t)

	c, err := Dial(context.Background(), addr, "alice", core.ColorRed)
	if err != nil {
		t.Fatalf("Dial failed: %v", err)
	}
	defer c.Close()
	waitFor(t, "host sees client", func() bool { return h.PeerCount() == 1 })

	h.Close()

	select {
	case <-c.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("client did not notice the host going away")
	}
	if s := c.Status(); s != StatusClosed && s != StatusErrored {
		t.Errorf("status = %s, expected closed or errored", s)
	}

	var sawOpen bool
	for len(c.Events()) > 0 {
		if evt, ok := (<-c.Events()).(StatusEvent); ok && evt.Status == StatusOpen {
			sawOpen = true
		}
	}
	if !sawOpen {
		t.Error("expected an open status event")
	}
}

func TestDialFailureIsTransportError(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen failed: %v", err)
	}
	addr := ln.Addr().String()
	ln.Close()

	_, err = Dial(context.Background(), addr, "alice", core.ColorRed)
	if _, ok := err.(*TransportError); !ok {
		t.Errorf("expected *TransportError, got %T %v", err, err)
	}
}

func TestDialRejectsBadHandshakeLocally(t *testing.T) {
	_, err := Dial(context.Background(), "127.0.0.1:1", "", core.ColorRed)
	if _, ok := err.(*wire.HandshakeError); !ok {
		t.Errorf("expected *wire.HandshakeError, got %T %v", err, err)
	}
}

func TestWebSocketTransport(t *testing.T) {
	engine := snake.New(core.RuntimeConfig{Width: 30, Height: 20, Seed: 9})
	h := NewHost(DefaultHostConfig(), engine, nil)
	defer h.Close()

	addr, err := h.ServeWS(context.Background(), "127.0.0.1:0")
	if err != nil {
		t.Fatalf("ServeWS failed: %v", err)
	}

	c, err := Dial(context.Background(), "ws://"+addr.String()+"/ws", "bob", core.ColorGreen)
	if err != nil {
		t.Fatalf("Dial failed: %v", err)
	}
	defer c.Close()
	waitFor(t, "host sees ws client", func() bool { return h.PeerCount() == 1 })

	h.Broadcast(engine.Snapshot())
	waitFor(t, "ws snapshot", func() bool {
		_, ok := c.Latest()
		return ok
	})
	snap, _ := c.Latest()
	if _, ok := snap.Player("bob"); !ok {
		t.Error("bob missing from snapshot")
	}
}
