// Package multiplayer connects players to the authoritative snake world.
// A Host accepts client connections over TCP or WebSocket and fans world
// snapshots out to them, a Client mirrors the host's latest snapshot, and a
// Session drives the tick loop for the solo, host and client roles.
package multiplayer

import "github.com/vovakirdan/snakenet/internal/core"

// DefaultPort is the well-known TCP port a host listens on.
const DefaultPort = 54000

// Role defines how a session takes part in a game.
type Role int

const (
	// RoleSolo runs the engine locally with no network.
	RoleSolo Role = iota

	// RoleHost runs the authoritative engine and serves clients.
	RoleHost

	// RoleClient mirrors a remote host.
	RoleClient
)

// String returns a human-readable name for the role.
func (r Role) String() string {
	switch r {
	case RoleSolo:
		return "solo"
	case RoleHost:
		return "host"
	case RoleClient:
		return "client"
	default:
		return "unknown"
	}
}

// Status is the lifecycle of a connection.
type Status int

const (
	StatusIdle       Status = iota // not started
	StatusConnecting               // dialing and handshaking
	StatusOpen                     // handshake done, frames flowing
	StatusClosed                   // closed locally or by the peer
	StatusErrored                  // transport failure
)

// String returns a human-readable name for the status.
func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusConnecting:
		return "connecting"
	case StatusOpen:
		return "open"
	case StatusClosed:
		return "closed"
	case StatusErrored:
		return "disconnected"
	default:
		return "unknown"
	}
}

// World is the part of the engine that connection goroutines may touch.
// Every method is safe for concurrent use and none of them mutates bodies
// mid-tick.
type World interface {
	Rejoin(id string, color core.Color) error
	ApplyIntent(id string, dir core.Direction) error
	Kill(id string) error
}

// DeathData describes a player death for persistence.
type DeathData struct {
	SessionID string
	PlayerID  string
	Color     string
	Length    int
	Tick      uint64
}

// SessionData describes a finished session for persistence.
type SessionData struct {
	SessionID string
	Role      string
	Ticks     uint64
	Players   int
	StartedAt int64 // unix seconds
	EndedAt   int64
}

// ResultSaver is implemented by anything that can persist game results.
// It lets sessions record deaths without depending on the storage package.
type ResultSaver interface {
	SaveDeath(data DeathData) error
	SaveSessionResult(data SessionData) error
}
