package multiplayer

import (
	"errors"
	"fmt"
)

var (
	ErrNotHost       = errors.New("multiplayer: only the host controls the world")
	ErrNoLocalPlayer = errors.New("multiplayer: session has no local player")
	ErrPeerClosed    = errors.New("multiplayer: peer closed")
	ErrDuplicatePeer = errors.New("multiplayer: peer id already connected")
	ErrHostClosed    = errors.New("multiplayer: host closed")
	ErrStarted       = errors.New("multiplayer: session already started")
)

// TransportError reports a broken connection. It only ever degrades the
// connection it names.
type TransportError struct {
	Op   string // "dial", "read", "write", "listen"
	Peer string
	Err  error
}

func (e *TransportError) Error() string {
	if e.Peer != "" {
		return fmt.Sprintf("multiplayer: %s %s: %v", e.Op, e.Peer, e.Err)
	}
	return fmt.Sprintf("multiplayer: %s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }
