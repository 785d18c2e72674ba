package multiplayer

import (
	"github.com/vovakirdan/snakenet/internal/games/snake"
	"github.com/vovakirdan/snakenet/internal/wire"
)

// SessionEvent is delivered to the local UI of a session.
type SessionEvent interface {
	sessionEvent()
}

// SnapshotEvent carries the world after a tick (host, solo) or as received
// from the host (client).
type SnapshotEvent struct {
	Snapshot wire.Snapshot
}

func (SnapshotEvent) sessionEvent() {}

// StatusEvent reports a change of the connection status.
type StatusEvent struct {
	Status Status
	Err    error // set for StatusErrored
}

func (StatusEvent) sessionEvent() {}

// PeerJoinedEvent is sent when a client finished its handshake.
type PeerJoinedEvent struct {
	ID    string
	Color string
}

func (PeerJoinedEvent) sessionEvent() {}

// PeerLeftEvent is sent when a client connection went away.
type PeerLeftEvent struct {
	ID  string
	Err error // nil for a clean close
}

func (PeerLeftEvent) sessionEvent() {}

// StateChangedEvent is sent when the session begins running or is reset.
type StateChangedEvent struct {
	State snake.State
}

func (StateChangedEvent) sessionEvent() {}

// DeathEvent is sent for every player that died during a tick.
type DeathEvent struct {
	ID     string
	Length int
	Tick   uint64
}

func (DeathEvent) sessionEvent() {}
